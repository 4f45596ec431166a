package domain

import "strings"

// statusWeights mapea keywords de estado de lesión → peso del star tax.
// El orden importa: los estados compuestos van antes que "out" para que
// "out for the season" no resuelva por el keyword corto (mismo peso hoy,
// pero el orden protege ante futuros ajustes de tabla).
var statusWeights = []struct {
	keyword string
	weight  float64
}{
	{"out for the season", 1.0},
	{"out for season", 1.0},
	{"out_for_season", 1.0},
	{"doubtful", 0.8},
	{"game time decision", 0.5},
	{"game_time_decision", 0.5},
	{"day to day", 0.5},
	{"day-to-day", 0.5},
	{"day_to_day", 0.5},
	{"questionable", 0.4},
	{"probable", 0.1},
	{"out", 1.0},
}

// StatusWeight devuelve el peso [0,1] con el que el impacto de un jugador
// lesionado entra al star tax. Match case-insensitive por keyword;
// un estado no reconocido pesa 0 — nunca penalizamos por datos que no
// entendemos.
func StatusWeight(status string) float64 {
	s := strings.ToLower(strings.TrimSpace(status))
	if s == "" {
		return 0
	}
	for _, sw := range statusWeights {
		if strings.Contains(s, sw.keyword) {
			return sw.weight
		}
	}
	return 0
}

// KnownStatus devuelve true si el estado contiene algún keyword reconocido.
func KnownStatus(status string) bool {
	return StatusWeight(status) > 0
}

// Volatile devuelve true para estados de disponibilidad incierta
// (GTD, questionable, doubtful, day-to-day). Estos jugadores alimentan la
// guardia de volatilidad: bajan la confianza del modelo sin mover la línea
// tanto como un OUT confirmado.
func Volatile(status string) bool {
	w := StatusWeight(status)
	return w > 0 && w < 1.0
}
