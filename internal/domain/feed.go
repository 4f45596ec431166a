package domain

import "time"

// Nombres de los feeds que alimentan el modelo. Cada uno es un artefacto
// con payload, etiqueta de fuente y timestamp de última actualización;
// los producen colaboradores externos y se sobreescriben en cada refresh.
const (
	FeedRatings  = "ratings"
	FeedInjuries = "injuries"
	FeedImpact   = "impact"
	FeedRest     = "rest"
	FeedOdds     = "odds"
	FeedSchedule = "schedule"
	FeedNews     = "news"
)

// FeedNames lista todos los feeds en orden de presentación.
func FeedNames() []string {
	return []string{
		FeedRatings, FeedInjuries, FeedImpact, FeedRest,
		FeedOdds, FeedSchedule, FeedNews,
	}
}

// FeedMeta describe el estado de un artefacto de feed sin interpretar
// su payload.
type FeedMeta struct {
	Name        string
	Source      string
	LastUpdated time.Time // zero value = timestamp ausente o no parseable
	Path        string
}

// Age devuelve la antigüedad del feed respecto a now.
// Para un timestamp ausente devuelve una edad enorme — un feed sin
// timestamp se trata como stale, nunca como fresco.
func (m FeedMeta) Age(now time.Time) time.Duration {
	if m.LastUpdated.IsZero() {
		return time.Duration(1<<62 - 1)
	}
	return now.Sub(m.LastUpdated)
}

// Stale devuelve true si el feed supera el umbral de frescura.
func (m FeedMeta) Stale(now time.Time, threshold time.Duration) bool {
	return m.Age(now) > threshold
}

// TeamRating son los ratings de eficiencia de un equipo.
// HomeNet/RoadNet alimentan el término dinámico de ventaja de cancha.
type TeamRating struct {
	Name      string
	OffRating float64
	DefRating float64
	NetRating float64
	Pace      float64
	HomeNet   float64
	RoadNet   float64
}

// Injury es un registro del parte de lesiones.
type Injury struct {
	Team   string
	Player string
	Status string
	Date   string
}

// RestPenalty es la penalización por fatiga/back-to-back de un equipo.
// Positiva = el equipo llega en desventaja; rango válido [-4, +4].
type RestPenalty struct {
	Team    string
	Penalty float64
}

// TeamImpacts mapea nombre de jugador (lowercase) → on/off rating crudo
// para un equipo. El valor se clampa a [-15, +15] antes de usarse.
type TeamImpacts map[string]float64

// GameOdds es el snapshot de mercado de un partido.
type GameOdds struct {
	Away          string
	Home          string
	AwayFull      string
	HomeFull      string
	ConsensusLine float64
	HasConsensus  bool
	Spreads       map[string]float64 // book → línea del home
	FetchedAt     time.Time
}

// BookCount devuelve cuántas casas aportan línea a este snapshot.
func (g GameOdds) BookCount() int { return len(g.Spreads) }

// SpreadVariance devuelve la diferencia entre la línea más alta y la más
// baja entre casas. Una varianza grande sugiere un book stale.
func (g GameOdds) SpreadVariance() float64 {
	if len(g.Spreads) == 0 {
		return 0
	}
	first := true
	var lo, hi float64
	for _, v := range g.Spreads {
		if first {
			lo, hi = v, v
			first = false
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return hi - lo
}

// ScheduledGame es un partido del calendario cacheado.
type ScheduledGame struct {
	Away string
	Home string
	Time string // hora de tip-off tal como la reporta la fuente
}

// Article es una noticia cacheada (título + resumen).
type Article struct {
	Title   string
	Summary string
}
