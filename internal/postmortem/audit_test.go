package postmortem

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/courtline/internal/adapters/ledger"
	"github.com/alejandrodnm/courtline/internal/domain"
)

var day = time.Date(2026, 1, 15, 20, 0, 0, 0, time.UTC)

func appendWager(t *testing.T, store *ledger.Store, w domain.WagerRecord) {
	t.Helper()
	require.NoError(t, store.Append(w, nil, day))
}

// consistentWager arma una fila cuya matemática cierra exactamente:
// fair -7.5 vs mercado -5.5, raw edge 2.0, sin cap, pick home.
func consistentWager() domain.WagerRecord {
	edge := domain.ComputeEdge(-7.5, -5.5, 10)
	return domain.WagerRecord{
		Away: "Boston Celtics", Home: "Denver Nuggets",
		Fair: "-7.50", Market: "-5.50",
		Edge: "2.00", RawEdge: "2.00",
		Kelly: fmt.Sprintf("%.2f", domain.KellyStake(edge.Capped)),
		Pick:  "Denver Nuggets",
		Odds:  "-110", Bet: "55.00", Result: "WIN", Payout: "50.00",
	}
}

// stampedWager es la misma fila con sello: una fila liquidada sin sello
// pesa WARN por sí sola.
func stampedWager() domain.WagerRecord {
	w := consistentWager()
	w.AuditCheck = "PASS:run-1"
	return w
}

func TestAuditLedger_ConsistentRowIsClean(t *testing.T) {
	store, err := ledger.NewStore(t.TempDir())
	require.NoError(t, err)
	appendWager(t, store, stampedWager())

	a := New(store, 10)
	res, err := a.AuditLedger(store.PathFor(day))
	require.NoError(t, err)

	assert.Equal(t, 1, res.Wagers)
	assert.Equal(t, VerdictClean, res.Verdict())
	for _, f := range res.Findings {
		assert.Equal(t, SeverityInfo, f.Severity, f.Message)
	}
}

func TestAuditLedger_EdgeMismatchIsError(t *testing.T) {
	store, err := ledger.NewStore(t.TempDir())
	require.NoError(t, err)
	w := consistentWager()
	w.Edge = "4.00" // no sale de fair/market
	w.RawEdge = "4.00"
	appendWager(t, store, w)

	res, err := New(store, 10).AuditLedger(store.PathFor(day))
	require.NoError(t, err)

	assert.Equal(t, VerdictError, res.Verdict())
}

func TestAuditLedger_KellyRederivedFromRecordedEdge(t *testing.T) {
	store, err := ledger.NewStore(t.TempDir())
	require.NoError(t, err)
	w := consistentWager()
	w.Kelly = "9.99"
	appendWager(t, store, w)

	res, err := New(store, 10).AuditLedger(store.PathFor(day))
	require.NoError(t, err)

	assert.Equal(t, VerdictError, res.Verdict())
	found := false
	for _, f := range res.Findings {
		if f.Severity == SeverityError {
			assert.Contains(t, f.Message, "kelly")
			found = true
		}
	}
	assert.True(t, found)
}

func TestAuditLedger_PickAgainstEdgeDirectionIsError(t *testing.T) {
	store, err := ledger.NewStore(t.TempDir())
	require.NoError(t, err)
	w := consistentWager()
	w.Pick = "Boston Celtics" // fair más negativa que mercado pide el home
	appendWager(t, store, w)

	res, err := New(store, 10).AuditLedger(store.PathFor(day))
	require.NoError(t, err)
	assert.Equal(t, VerdictError, res.Verdict())
}

func TestAuditLedger_CLVRederived(t *testing.T) {
	store, err := ledger.NewStore(t.TempDir())
	require.NoError(t, err)
	w := stampedWager()
	w.ClosingLine = "-7.00"
	w.CLV = "1.50" // pick home: market - closing = -5.5 - (-7.0)
	appendWager(t, store, w)

	res, err := New(store, 10).AuditLedger(store.PathFor(day))
	require.NoError(t, err)
	assert.Equal(t, VerdictClean, res.Verdict())

	// CLV con el signo volteado es ERROR
	w2 := stampedWager()
	w2.ClosingLine = "-7.00"
	w2.CLV = "-1.50"
	store2, err := ledger.NewStore(t.TempDir())
	require.NoError(t, err)
	appendWager(t, store2, w2)

	res2, err := New(store2, 10).AuditLedger(store2.PathFor(day))
	require.NoError(t, err)
	assert.Equal(t, VerdictError, res2.Verdict())
}

func TestAuditLedger_LegacyRowMissingRawEdgeIsInfo(t *testing.T) {
	store, err := ledger.NewStore(t.TempDir())
	require.NoError(t, err)
	w := stampedWager()
	w.RawEdge = ""
	appendWager(t, store, w)

	res, err := New(store, 10).AuditLedger(store.PathFor(day))
	require.NoError(t, err)

	assert.Equal(t, VerdictClean, res.Verdict())
	require.NotEmpty(t, res.Findings)
	assert.Equal(t, SeverityInfo, res.Findings[0].Severity)
}

func TestAuditLedger_PayoutInconsistentIsWarn(t *testing.T) {
	store, err := ledger.NewStore(t.TempDir())
	require.NoError(t, err)
	w := stampedWager()
	w.Payout = "500.00" // -110 con 55 paga 50
	appendWager(t, store, w)

	res, err := New(store, 10).AuditLedger(store.PathFor(day))
	require.NoError(t, err)
	assert.Equal(t, VerdictWarn, res.Verdict())
	found := false
	for _, f := range res.Findings {
		if f.Severity == SeverityWarn {
			assert.Contains(t, f.Message, "payout")
			found = true
		}
	}
	assert.True(t, found)
}

func TestAuditLedger_SettledRowWithoutStampIsWarn(t *testing.T) {
	store, err := ledger.NewStore(t.TempDir())
	require.NoError(t, err)
	appendWager(t, store, consistentWager()) // WIN, sin sello

	res, err := New(store, 10).AuditLedger(store.PathFor(day))
	require.NoError(t, err)

	assert.Equal(t, VerdictWarn, res.Verdict())
	found := false
	for _, f := range res.Findings {
		if f.Severity == SeverityWarn {
			assert.Contains(t, f.Message, "sin sello")
			found = true
		}
	}
	assert.True(t, found)
}

func TestAuditLedger_PendingRowWithoutStampIsNotWarn(t *testing.T) {
	store, err := ledger.NewStore(t.TempDir())
	require.NoError(t, err)
	w := consistentWager()
	w.Result = "PENDING"
	w.Payout = ""
	appendWager(t, store, w)

	res, err := New(store, 10).AuditLedger(store.PathFor(day))
	require.NoError(t, err)
	assert.Equal(t, VerdictClean, res.Verdict())
}

func TestAuditAll_WinRatesSplitByStamp(t *testing.T) {
	store, err := ledger.NewStore(t.TempDir())
	require.NoError(t, err)

	verified := consistentWager()
	verified.AuditCheck = "PASS:run-1"
	appendWager(t, store, verified)

	unverifiedLoss := consistentWager()
	unverifiedLoss.Result = "LOSS"
	unverifiedLoss.Payout = "-55.00"
	appendWager(t, store, unverifiedLoss)

	pending := consistentWager()
	pending.Result = "PENDING"
	pending.Payout = ""
	appendWager(t, store, pending)

	_, rates, err := New(store, 10).AuditAll()
	require.NoError(t, err)

	assert.Equal(t, 1, rates.VerifiedWins)
	assert.Equal(t, 0, rates.VerifiedLosses)
	assert.Equal(t, 1, rates.UnverifiedLosses)
	assert.InDelta(t, 50.0, rates.VerifiedNet, 0.001)
	assert.InDelta(t, -55.0, rates.UnverifiedNet, 0.001)

	v, u := rates.Rate()
	assert.Equal(t, 1.0, v)
	assert.Equal(t, 0.0, u)
}
