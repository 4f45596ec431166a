package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Resultados posibles de una apuesta registrada.
const (
	ResultPending = "PENDING"
	ResultWin     = "WIN"
	ResultLoss    = "LOSS"
	ResultPush    = "PUSH"
)

// canonicalColumns es el esquema vigente del ledger CSV, en orden.
// Cualquier cambio de esquema se hace añadiendo columnas al final o en
// posición fija y registrando el conteo nuevo en la tabla de migración.
var canonicalColumns = []string{
	"ID", "Timestamp", "Away", "Home",
	"Fair", "Market", "Edge", "RawEdge", "EdgeCapped",
	"Kelly", "Confidence", "Pick", "Type", "Book", "Odds",
	"Bet", "ToWin", "Result", "Payout", "Notes",
	"ClosingLine", "CLV", "AuditCheck", "AuditNote",
}

// CanonicalColumns devuelve el header vigente del ledger (24 columnas).
func CanonicalColumns() []string {
	out := make([]string, len(canonicalColumns))
	copy(out, canonicalColumns)
	return out
}

// WagerRecord es una fila del ledger en el esquema vigente. Los campos se
// mantienen como string: el ledger es un documento que el operador edita a
// mano y el parseo numérico es responsabilidad de quien valida, no de
// quien persiste.
type WagerRecord struct {
	ID          string
	Timestamp   string
	Away        string
	Home        string
	Fair        string
	Market      string
	Edge        string
	RawEdge     string
	EdgeCapped  string
	Kelly       string
	Confidence  string
	Pick        string
	Type        string
	Book        string
	Odds        string
	Bet         string
	ToWin       string
	Result      string
	Payout      string
	Notes       string
	ClosingLine string
	CLV         string
	AuditCheck  string
	AuditNote   string
}

// Row serializa el registro en el orden del esquema vigente.
func (w WagerRecord) Row() []string {
	return []string{
		w.ID, w.Timestamp, w.Away, w.Home,
		w.Fair, w.Market, w.Edge, w.RawEdge, w.EdgeCapped,
		w.Kelly, w.Confidence, w.Pick, w.Type, w.Book, w.Odds,
		w.Bet, w.ToWin, w.Result, w.Payout, w.Notes,
		w.ClosingLine, w.CLV, w.AuditCheck, w.AuditNote,
	}
}

// WagerFromRow construye un registro desde una fila ya migrada al esquema
// vigente. Filas de otro largo son un error: la migración va primero.
func WagerFromRow(row []string) (WagerRecord, error) {
	if len(row) != len(canonicalColumns) {
		return WagerRecord{}, fmt.Errorf("domain.WagerFromRow: fila de %d columnas, se esperan %d", len(row), len(canonicalColumns))
	}
	return WagerRecord{
		ID: row[0], Timestamp: row[1], Away: row[2], Home: row[3],
		Fair: row[4], Market: row[5], Edge: row[6], RawEdge: row[7], EdgeCapped: row[8],
		Kelly: row[9], Confidence: row[10], Pick: row[11], Type: row[12], Book: row[13], Odds: row[14],
		Bet: row[15], ToWin: row[16], Result: row[17], Payout: row[18], Notes: row[19],
		ClosingLine: row[20], CLV: row[21], AuditCheck: row[22], AuditNote: row[23],
	}, nil
}

// Settled devuelve true si el resultado de la apuesta ya se conoce.
func (w WagerRecord) Settled() bool {
	switch strings.ToUpper(strings.TrimSpace(w.Result)) {
	case ResultWin, ResultLoss, ResultPush:
		return true
	}
	return false
}

// Stamped devuelve true si la fila ya tiene sello de auditoría.
func (w WagerRecord) Stamped() bool {
	return strings.TrimSpace(w.AuditCheck) != ""
}

// Num parsea un campo numérico del registro. Campo vacío no es error:
// devuelve ok=false para que el caller lo trate como dato ausente.
func Num(field string) (float64, bool) {
	s := strings.TrimSpace(field)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ClosingLineValue mide cuántos puntos mejor que el cierre se tomó la
// línea, siempre orientado al lado apostado: positivo = la línea se movió
// a favor del pick después de apostar.
//
// Con líneas en convención home: pick home con mercado -5.5 y cierre -7.0
// da CLV +1.5 (el home cerró más favorito de lo que pagamos).
func ClosingLineValue(pick, home string, market, closing float64) float64 {
	if strings.EqualFold(Canonicalize(pick), Canonicalize(home)) {
		return round2(market - closing)
	}
	return round2(closing - market)
}

// PayoutForWin devuelve la ganancia neta de una apuesta ganada con cuota
// americana. -110 con $110 paga $100; +150 con $100 paga $150.
func PayoutForWin(bet, americanOdds float64) float64 {
	if bet <= 0 || americanOdds == 0 {
		return 0
	}
	if americanOdds > 0 {
		return round2(bet * americanOdds / 100)
	}
	return round2(bet * 100 / -americanOdds)
}

// SettlePayout devuelve el payout neto según resultado: WIN paga la cuota,
// LOSS pierde la apuesta, PUSH devuelve cero.
func SettlePayout(result string, bet, americanOdds float64) float64 {
	switch strings.ToUpper(strings.TrimSpace(result)) {
	case ResultWin:
		return PayoutForWin(bet, americanOdds)
	case ResultLoss:
		return round2(-bet)
	default:
		return 0
	}
}

// NewWagerTimestamp formatea el timestamp de registro de una apuesta.
func NewWagerTimestamp(now time.Time) string {
	return now.Format("2006-01-02 15:04:05")
}
