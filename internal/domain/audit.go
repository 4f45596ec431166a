package domain

import "time"

// AuditStatus es el resultado del último preflight, persistido en un slot
// de un solo elemento: cada auditoría lo sobreescribe. Las apuestas que se
// registran mientras el slot está vigente heredan su ID y veredicto como
// sello de procedencia.
type AuditStatus struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Summary   string    `json:"summary"`
	Passed    bool      `json:"pass"`
	Checks    int       `json:"checks"`
	Warns     int       `json:"warns"`
	Fails     int       `json:"fails"`
}

// Valid devuelve true si el sello existe y sigue dentro de su ventana de
// vigencia. Un sello viejo no sella apuestas nuevas: los feeds que validó
// ya no son los feeds que alimentan la predicción.
func (a AuditStatus) Valid(now time.Time, maxAge time.Duration) bool {
	if a.ID == "" || a.Timestamp.IsZero() {
		return false
	}
	return now.Sub(a.Timestamp) <= maxAge
}

// StampValue devuelve el valor de la columna AuditCheck para una apuesta
// registrada bajo este sello.
func (a AuditStatus) StampValue() string {
	if a.Passed {
		return "PASS:" + a.ID
	}
	return "FAIL:" + a.ID
}
