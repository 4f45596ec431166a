package preflight

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/courtline/config"
	"github.com/alejandrodnm/courtline/internal/adapters/feeds"
	"github.com/alejandrodnm/courtline/internal/adapters/ledger"
	"github.com/alejandrodnm/courtline/internal/domain"
)

// healthyFeeds escribe un set completo de artefactos válidos y frescos.
func healthyFeeds(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	now := time.Now().UTC()
	stamp := now.Format(time.RFC3339)
	today := now.Format("2006-01-02")

	writeFile(t, dir, "ratings.json", healthyRatingsJSON())

	writeFile(t, dir, "injuries.csv",
		"# timestamp: "+stamp+"\n"+
			"team,player,status,date\n"+
			"Denver Nuggets,Nikola Jokic,Questionable,"+today+"\n")

	writeFile(t, dir, "rest.csv",
		"# timestamp: "+stamp+"\n"+
			"team,penalty\n"+
			"Boston Celtics,1.5\n")

	writeFile(t, dir, "impact.json", fmt.Sprintf(
		`{"timestamp":%q,"source":"on-off","teams":{"1610612743":{"players":{"Nikola Jokic":11.8}}}}`, stamp))

	writeFile(t, dir, "odds.json", fmt.Sprintf(
		`{"timestamp":%q,"source":"lines","games":{"Boston Celtics @ Denver Nuggets":{
			"away":"BOS","home":"DEN","away_full":"Boston Celtics","home_full":"Denver Nuggets",
			"consensus_line":-5.5,"spreads":{"bookA":-5.5,"bookB":-6.0},"fetched_at":%q}}}`,
		stamp, stamp))

	writeFile(t, dir, "schedule.json", fmt.Sprintf(
		`{"timestamp":%q,"source":"nba","dates":{%q:{"games":[{"away":"Boston Celtics","home":"Denver Nuggets","time":"9:00 PM ET"}]}}}`,
		stamp, today))

	writeFile(t, dir, "news.json", fmt.Sprintf(
		`{"timestamp":%q,"source":"wire","articles":[{"title":"t","summary":"s"}]}`, stamp))

	return dir
}

// healthyRatingsJSON arma un ratings fresco con los 30 equipos en rango.
func healthyRatingsJSON() string {
	var teams []string
	for i, team := range domain.Teams() {
		off := 108.0 + float64(i%8)
		def := 110.0 + float64(i%6)
		teams = append(teams, fmt.Sprintf(
			`{"name":%q,"off_rating":%.1f,"def_rating":%.1f,"net_rating":%.1f,"pace":%.1f,"home_net":3.0,"road_net":-1.0}`,
			team.Name, off, def, off-def, 96.0+float64(i%10)))
	}
	return fmt.Sprintf(`{"timestamp":%q,"source":"nba-stats","teams":[%s]}`,
		time.Now().UTC().Format(time.RFC3339), strings.Join(teams, ","))
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func newTestAuditor(t *testing.T, feedsDir string) (*Auditor, *ledger.Store) {
	t.Helper()
	store, err := ledger.NewStore(t.TempDir())
	require.NoError(t, err)
	return New(Options{
		Feeds:  feeds.NewFileStore(feedsDir),
		Ledger: store,
		Bankroll: config.BankrollConfig{
			StartingBankroll: 2500, UnitSize: 25, EdgeCap: 10,
		},
	}), store
}

func TestRun_HealthyFixturesPass(t *testing.T) {
	a, store := newTestAuditor(t, healthyFeeds(t))

	report, err := a.Run(context.Background(), ModeFull)
	require.NoError(t, err)

	assert.True(t, report.Passed(), report.Summary())
	_, _, fails := report.Counts()
	assert.Zero(t, fails, "failures: %v", report.Failures())
	// las 12 secciones presentes
	assert.Len(t, report.Sections, 12)

	status, err := store.ReadStatus()
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.Equal(t, report.RunID, status.ID)
	assert.True(t, status.Passed)
}

func TestRun_BrokenRatingsFailsWithoutAbortingOtherSections(t *testing.T) {
	dir := healthyFeeds(t)
	// def_rating imposible: el scraper de ratings está roto
	writeFile(t, dir, "ratings.json",
		`{"timestamp":"`+time.Now().UTC().Format(time.RFC3339)+`","source":"nba-stats",
		  "teams":[{"name":"Denver Nuggets","off_rating":117,"def_rating":420,"net_rating":5,"pace":99,"home_net":3,"road_net":-1}]}`)

	a, store := newTestAuditor(t, dir)
	report, err := a.Run(context.Background(), ModeFull)
	require.NoError(t, err)

	assert.Equal(t, VerdictFail, report.Verdict())
	// el resto de secciones corrió igual
	assert.Len(t, report.Sections, 12)

	var ratingsFails int
	for _, f := range report.Failures() {
		if strings.HasPrefix(f.ID, "ratings.") || strings.HasPrefix(f.ID, "cross.ratings") {
			ratingsFails++
			assert.NotEmpty(t, f.FixHint)
		}
	}
	assert.Greater(t, ratingsFails, 0)

	// el slot registra el FAIL; las apuestas nuevas no heredarán PASS
	status, err := store.ReadStatus()
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.False(t, status.Passed)
}

func TestRun_MissingFeedFailsExistenceAndPipeline(t *testing.T) {
	dir := healthyFeeds(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "odds.json")))

	a, _ := newTestAuditor(t, dir)
	report, err := a.Run(context.Background(), ModeFull)
	require.NoError(t, err)

	assert.Equal(t, VerdictFail, report.Verdict())
	ids := failureIDs(report)
	assert.Contains(t, ids, "odds.exists")
	assert.Contains(t, ids, "pipeline.artifacts")
}

func TestRun_QuickSkipsOnlyModelAndLedger(t *testing.T) {
	a, _ := newTestAuditor(t, healthyFeeds(t))

	report, err := a.Run(context.Background(), ModeQuick)
	require.NoError(t, err)

	assert.True(t, report.Passed())
	// 7 feeds + bankroll + cross + pipeline; solo model y ledger fuera
	assert.Len(t, report.Sections, 11)
	names := sectionNames(report)
	assert.NotContains(t, names, "model")
	assert.NotContains(t, names, "ledger")
	assert.Contains(t, names, "cross")
	assert.Contains(t, names, "pipeline")
}

func TestRun_QuickStillCatchesCorruptFeed(t *testing.T) {
	dir := healthyFeeds(t)
	// fresco pero corrupto: quick tiene que atraparlo igual, porque un
	// PASS suyo escribe el slot y sella las apuestas de hoy
	writeFile(t, dir, "ratings.json",
		`{"timestamp":"`+time.Now().UTC().Format(time.RFC3339)+`","source":"nba-stats",
		  "teams":[{"name":"Denver Nuggets","off_rating":117,"def_rating":420,"net_rating":5,"pace":99,"home_net":3,"road_net":-1}]}`)

	a, store := newTestAuditor(t, dir)
	report, err := a.Run(context.Background(), ModeQuick)
	require.NoError(t, err)

	assert.False(t, report.Passed())
	assert.Contains(t, failureIDs(report), "ratings.ranges")

	status, err := store.ReadStatus()
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.False(t, status.Passed)
}

// repairCollector reescribe ratings.json sano cuando se le pide refrescar.
type repairCollector struct {
	dir       string
	refreshed []string
}

func (c *repairCollector) Refresh(_ context.Context, feed string) error {
	c.refreshed = append(c.refreshed, feed)
	if feed == "ratings" {
		return os.WriteFile(filepath.Join(c.dir, "ratings.json"), []byte(healthyRatingsJSON()), 0o644)
	}
	return nil
}

func TestRun_FixRefreshesBeforeDeepSections(t *testing.T) {
	dir := healthyFeeds(t)
	writeFile(t, dir, "ratings.json",
		`{"timestamp":"`+time.Now().UTC().Format(time.RFC3339)+`","source":"nba-stats",
		  "teams":[{"name":"Denver Nuggets","off_rating":117,"def_rating":420,"net_rating":5,"pace":99,"home_net":3,"road_net":-1}]}`)

	store, err := ledger.NewStore(t.TempDir())
	require.NoError(t, err)
	col := &repairCollector{dir: dir}
	a := New(Options{
		Feeds:     feeds.NewFileStore(dir),
		Ledger:    store,
		Collector: col,
		Bankroll: config.BankrollConfig{
			StartingBankroll: 2500, UnitSize: 25, EdgeCap: 10,
		},
	})

	report, err := a.Run(context.Background(), ModeFix)
	require.NoError(t, err)

	// solo el feed roto se refresca, y las secciones profundas (cross,
	// model, ledger) se calculan contra el feed ya refrescado
	assert.Equal(t, []string{"ratings"}, col.refreshed)
	assert.True(t, report.Passed(), report.Summary())
	assert.Empty(t, failureIDs(report))
}

func TestRun_Idempotent(t *testing.T) {
	a, _ := newTestAuditor(t, healthyFeeds(t))

	first, err := a.Run(context.Background(), ModeFull)
	require.NoError(t, err)
	second, err := a.Run(context.Background(), ModeFull)
	require.NoError(t, err)

	c1, w1, f1 := first.Counts()
	c2, w2, f2 := second.Counts()
	assert.Equal(t, c1, c2)
	assert.Equal(t, w1, w2)
	assert.Equal(t, f1, f2)
	assert.Equal(t, first.Verdict(), second.Verdict())
}

func TestRun_PassStampsTodaysUnstampedWagers(t *testing.T) {
	a, store := newTestAuditor(t, healthyFeeds(t))
	now := time.Now()
	require.NoError(t, store.Append(domain.WagerRecord{
		Away: "Boston Celtics", Home: "Denver Nuggets", Pick: "Denver Nuggets",
		Fair: "-7.5", Market: "-5.5", Bet: "25.00",
	}, nil, now))

	report, err := a.Run(context.Background(), ModeFull)
	require.NoError(t, err)
	require.True(t, report.Passed(), report.Summary())

	records, err := store.Load(store.PathFor(now))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "PASS:"+report.RunID, records[0].AuditCheck)
}

func TestRun_FailDoesNotStamp(t *testing.T) {
	dir := healthyFeeds(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "ratings.json")))

	a, store := newTestAuditor(t, dir)
	now := time.Now()
	require.NoError(t, store.Append(domain.WagerRecord{Away: "a", Home: "b"}, nil, now))

	report, err := a.Run(context.Background(), ModeFull)
	require.NoError(t, err)
	require.False(t, report.Passed())

	records, err := store.Load(store.PathFor(now))
	require.NoError(t, err)
	assert.False(t, records[0].Stamped())
}

func TestRun_BackfillMigratesLegacyLedgers(t *testing.T) {
	a, store := newTestAuditor(t, healthyFeeds(t))
	legacy := "ID,Away,Home,Fair,Market,Edge,Kelly,Pick,Book,Odds,Bet,Result,Payout,Notes\n" +
		"1,Boston Celtics,Denver Nuggets,-7.5,-5.5,2.0,1.85,Denver Nuggets,bookA,-110,55.00,WIN,50.00,\n"
	path := filepath.Join(store.Dir(), "wagers_2025-11-01.csv")
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	report, err := a.Run(context.Background(), ModeBackfill)
	require.NoError(t, err)
	require.Len(t, report.Sections, 1)
	assert.True(t, report.Passed())

	records, err := store.Load(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Contains(t, records[0].AuditNote, "no verificable")

	// backfill no escribe el slot: no es una validación
	status, err := store.ReadStatus()
	require.NoError(t, err)
	assert.Nil(t, status)
}

func TestRun_BankrollMisconfiguredFails(t *testing.T) {
	store, err := ledger.NewStore(t.TempDir())
	require.NoError(t, err)
	a := New(Options{
		Feeds:    feeds.NewFileStore(healthyFeeds(t)),
		Ledger:   store,
		Bankroll: config.BankrollConfig{}, // todo ausente
	})

	report, err := a.Run(context.Background(), ModeFull)
	require.NoError(t, err)

	ids := failureIDs(report)
	assert.Contains(t, ids, "bankroll.starting")
	assert.Contains(t, ids, "bankroll.unit")
}

func TestRun_StaleFeedFailsFreshness(t *testing.T) {
	dir := healthyFeeds(t)
	old := time.Now().UTC().Add(-48 * time.Hour).Format(time.RFC3339)
	writeFile(t, dir, "news.json", fmt.Sprintf(
		`{"timestamp":%q,"source":"wire","articles":[{"title":"t","summary":"s"}]}`, old))

	a, _ := newTestAuditor(t, dir)
	report, err := a.Run(context.Background(), ModeFull)
	require.NoError(t, err)

	assert.Contains(t, failureIDs(report), "news.fresh")
}

func failureIDs(r *Report) []string {
	var ids []string
	for _, f := range r.Failures() {
		ids = append(ids, f.ID)
	}
	return ids
}

func sectionNames(r *Report) []string {
	var names []string
	for _, s := range r.Sections {
		names = append(names, s.Name)
	}
	return names
}
