package history_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/courtline/internal/adapters/history"
	"github.com/alejandrodnm/courtline/internal/domain"
)

func makeStatus(offset time.Duration, passed bool) domain.AuditStatus {
	return domain.AuditStatus{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC().Add(offset).Truncate(time.Second),
		Passed:    passed,
		Checks:    40, Warns: 2, Fails: 0,
	}
}

func TestSQLiteHistory_SaveAndRecentRuns(t *testing.T) {
	db, err := history.NewSQLiteHistory(":memory:")
	require.NoError(t, err)
	defer db.Close()

	older := makeStatus(-2*time.Hour, true)
	newer := makeStatus(-10*time.Minute, true)
	require.NoError(t, db.SaveRun(context.Background(), older, "full", "PASS", 3.2))
	require.NoError(t, db.SaveRun(context.Background(), newer, "quick", "PASS_WITH_WARNINGS", 0.4))

	runs, err := db.RecentRuns(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// más reciente primero
	assert.Equal(t, newer.ID, runs[0].ID)
	assert.Equal(t, "quick", runs[0].Mode)
	assert.Equal(t, "PASS", runs[1].Verdict)
	assert.InDelta(t, 3.2, runs[1].Duration, 0.001)
}

func TestSQLiteHistory_RecentRunsLimit(t *testing.T) {
	db, err := history.NewSQLiteHistory(":memory:")
	require.NoError(t, err)
	defer db.Close()

	for i := 0; i < 5; i++ {
		require.NoError(t, db.SaveRun(context.Background(),
			makeStatus(-time.Duration(i)*time.Minute, true), "full", "PASS", 1.0))
	}

	runs, err := db.RecentRuns(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}

func TestSQLiteHistory_PruneDropsOldRuns(t *testing.T) {
	db, err := history.NewSQLiteHistory(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ancient := makeStatus(-100*24*time.Hour, false)
	recent := makeStatus(-time.Hour, true)
	require.NoError(t, db.SaveRun(context.Background(), ancient, "full", "FAIL", 2.0))
	require.NoError(t, db.SaveRun(context.Background(), recent, "full", "PASS", 2.0))

	pruned, err := db.Prune(context.Background(), 90)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pruned)

	runs, err := db.RecentRuns(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, recent.ID, runs[0].ID)
}
