package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWagerRoundTrip(t *testing.T) {
	w := WagerRecord{
		ID: "42", Timestamp: "2026-01-15 19:05:00",
		Away: "Boston Celtics", Home: "Denver Nuggets",
		Fair: "-7.5", Market: "-5.5", Edge: "2.0", RawEdge: "2.0", EdgeCapped: "false",
		Kelly: "1.85", Confidence: "HIGH", Pick: "Denver Nuggets",
		Type: "spread", Book: "consensus", Odds: "-110",
		Bet: "55.00", ToWin: "50.00", Result: "PENDING",
	}
	row := w.Row()
	assert.Len(t, row, len(CanonicalColumns()))

	back, err := WagerFromRow(row)
	assert.NoError(t, err)
	assert.Equal(t, w, back)
}

func TestWagerFromRow_WrongWidthFails(t *testing.T) {
	_, err := WagerFromRow(make([]string, 20))
	assert.Error(t, err)
}

func TestWagerSettledAndStamped(t *testing.T) {
	w := WagerRecord{Result: "PENDING"}
	assert.False(t, w.Settled())
	assert.False(t, w.Stamped())

	w.Result = "win"
	w.AuditCheck = "PASS:abc-123"
	assert.True(t, w.Settled())
	assert.True(t, w.Stamped())
}

func TestNum_EmptyIsAbsentNotZero(t *testing.T) {
	_, ok := Num("")
	assert.False(t, ok)

	v, ok := Num(" -5.5 ")
	assert.True(t, ok)
	assert.Equal(t, -5.5, v)
}

// --- CLV ---

func TestClosingLineValue_HomePickLineMovedInFavor(t *testing.T) {
	// pick home a -5.5, cierre -7.0 → tomamos 1.5 puntos mejor que el cierre
	clv := ClosingLineValue("Denver Nuggets", "Denver Nuggets", -5.5, -7.0)
	assert.Equal(t, 1.5, clv)
}

func TestClosingLineValue_AwayPickOppositeOrientation(t *testing.T) {
	// pick away con el mismo movimiento de línea: el cierre nos perjudica
	clv := ClosingLineValue("Boston Celtics", "Denver Nuggets", -5.5, -7.0)
	assert.Equal(t, -1.5, clv)
}

func TestClosingLineValue_ResolvesTeamVariants(t *testing.T) {
	// el pick puede venir como apodo y el home como nombre completo
	clv := ClosingLineValue("Nuggets", "Denver Nuggets", -5.5, -7.0)
	assert.Equal(t, 1.5, clv)
}

// --- Payout ---

func TestPayoutForWin_NegativeOdds(t *testing.T) {
	assert.Equal(t, 100.0, PayoutForWin(110, -110))
	assert.Equal(t, 50.0, PayoutForWin(55, -110))
}

func TestPayoutForWin_PositiveOdds(t *testing.T) {
	assert.Equal(t, 150.0, PayoutForWin(100, 150))
}

func TestSettlePayout_ByResult(t *testing.T) {
	assert.Equal(t, 50.0, SettlePayout("WIN", 55, -110))
	assert.Equal(t, -55.0, SettlePayout("loss", 55, -110))
	assert.Equal(t, 0.0, SettlePayout("PUSH", 55, -110))
	assert.Equal(t, 0.0, SettlePayout("PENDING", 55, -110))
}
