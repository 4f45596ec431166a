package ports

import (
	"github.com/alejandrodnm/courtline/internal/domain"
)

// FeedStore lee los artefactos de feed cacheados en disco.
// Cada getter parsea el artefacto completo; los errores de I/O y de
// formato se devuelven sin envolver en fallbacks, porque el auditor
// necesita distinguir "falta" de "corrupto".
type FeedStore interface {
	// Meta devuelve el estado (ruta, fuente, timestamp) de un feed sin
	// interpretar su payload.
	Meta(feed string) (domain.FeedMeta, error)

	// Ratings devuelve los ratings de eficiencia por nombre canónico.
	Ratings() (map[string]*domain.TeamRating, error)

	// Injuries devuelve el parte de lesiones completo.
	Injuries() ([]domain.Injury, error)

	// Rest devuelve las penalizaciones de descanso por nombre canónico.
	// Los equipos ausentes del artefacto se completan a penalización cero.
	Rest() (map[string]*domain.RestPenalty, error)

	// Impacts devuelve los on/off ratings por equipo y jugador.
	Impacts() (map[string]domain.TeamImpacts, error)

	// Odds devuelve los snapshots de mercado keyed por "Away @ Home".
	Odds() (map[string]domain.GameOdds, error)

	// Schedule devuelve el calendario cacheado por fecha (YYYY-MM-DD).
	Schedule() (map[string][]domain.ScheduledGame, error)

	// News devuelve las noticias cacheadas.
	News() ([]domain.Article, error)
}
