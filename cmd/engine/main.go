// El motor interactivo: predice líneas justas para los partidos de hoy,
// compara contra el mercado que teclea el operador y registra apuestas.
// Es deliberadamente advisory: corre aunque el preflight haya fallado,
// pero las apuestas solo heredan sello de una corrida aprobada vigente.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alejandrodnm/courtline/config"
	"github.com/alejandrodnm/courtline/internal/adapters/feeds"
	"github.com/alejandrodnm/courtline/internal/adapters/ledger"
	"github.com/alejandrodnm/courtline/internal/adapters/notify"
	"github.com/alejandrodnm/courtline/internal/domain"
	"github.com/alejandrodnm/courtline/internal/postmortem"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}
	if *verbose {
		cfg.Log.Level = "debug"
	}
	setupLogger(cfg.Log)

	store, err := ledger.NewStore(cfg.Paths.LedgerDir)
	if err != nil {
		slog.Error("failed to open ledger dir", "err", err, "dir", cfg.Paths.LedgerDir)
		os.Exit(1)
	}
	store.SetStatusMaxAge(cfg.StatusMaxAge())

	e := &engine{
		cfg:     cfg,
		feeds:   feeds.NewFileStore(cfg.Paths.FeedsDir),
		store:   store,
		console: notify.NewConsole(*verbose),
		in:      bufio.NewReader(os.Stdin),
	}
	e.run()
}

type engine struct {
	cfg     *config.Config
	feeds   *feeds.FileStore
	store   *ledger.Store
	console *notify.Console
	in      *bufio.Reader
}

func (e *engine) run() {
	now := time.Now()

	var metas []domain.FeedMeta
	for _, name := range domain.FeedNames() {
		meta, err := e.feeds.Meta(name)
		if err != nil {
			meta = domain.FeedMeta{Name: name}
		}
		metas = append(metas, meta)
	}
	e.console.PrintFreshness(metas, now, e.cfg.StaleThreshold())

	if status, err := e.store.ReadStatus(); err == nil && status != nil {
		state := "vencido"
		if status.Valid(now, e.cfg.StatusMaxAge()) {
			state = "vigente"
		}
		fmt.Printf("\n  último preflight: %s (%s)\n", status.Summary, state)
	} else {
		fmt.Println("\n  sin preflight registrado: correr preflight antes de apostar")
	}

	games := e.todaysGames(now)
	e.console.PrintSchedule(games)

	for {
		fmt.Print("\n[G#] analizar partido  [B] ledger de hoy  [V] postmortem  [Q] salir > ")
		input, err := e.in.ReadString('\n')
		if err != nil {
			return
		}
		input = strings.ToUpper(strings.TrimSpace(input))
		switch {
		case input == "Q":
			return
		case input == "B":
			e.showLedger(now)
		case input == "V":
			e.runPostmortem()
		case strings.HasPrefix(input, "G"):
			idx, err := strconv.Atoi(strings.TrimPrefix(input, "G"))
			if err != nil || idx < 1 || idx > len(games) {
				fmt.Println("  partido inválido")
				continue
			}
			e.analyze(games[idx-1], now)
		default:
			fmt.Println("  comando no reconocido")
		}
	}
}

func (e *engine) todaysGames(now time.Time) []domain.ScheduledGame {
	sched, err := e.feeds.Schedule()
	if err != nil {
		slog.Warn("schedule unavailable", "err", err)
		return nil
	}
	return sched[now.Format("2006-01-02")]
}

// analyze predice la línea justa del partido, pide la línea de mercado y
// ofrece registrar la apuesta.
func (e *engine) analyze(g domain.ScheduledGame, now time.Time) {
	ratings, _ := e.feeds.Ratings()
	rest, _ := e.feeds.Rest()
	injuries, injErr := e.feeds.Injuries()
	impacts, impErr := e.feeds.Impacts()

	m := domain.MatchupData{
		InjuryFeedPresent: injErr == nil,
		ImpactFeedPresent: impErr == nil,
	}
	if ratings != nil {
		m.AwayRating, m.HomeRating = ratings[g.Away], ratings[g.Home]
	}
	if rest != nil {
		m.AwayRest, m.HomeRest = rest[g.Away], rest[g.Home]
	}
	for _, inj := range injuries {
		switch inj.Team {
		case g.Away:
			m.AwayInjuries = append(m.AwayInjuries, inj)
		case g.Home:
			m.HomeInjuries = append(m.HomeInjuries, inj)
		}
	}
	if impacts != nil {
		m.AwayImpacts, m.HomeImpacts = impacts[g.Away], impacts[g.Home]
	}

	line := domain.PredictFairLine(m)

	market, ok := e.promptMarketLine(g)
	if !ok {
		return
	}

	edge := domain.ComputeEdge(line.Spread, market, e.cfg.Bankroll.EdgeCap)
	kelly := domain.KellyStake(edge.Capped)
	conf := domain.ConfidenceFor(line.DegradedTerms, len(line.Questionable))
	tier := domain.ClassifySignal(edge, conf)
	pick := domain.RecommendPick(line.Spread, market, g.Away, g.Home)

	e.console.PrintAnalysis(g, line, market, edge, kelly, conf, tier, pick)

	if tier == domain.TierReviewRequired {
		fmt.Println("  edge capado: revisar lesiones y noticias antes de apostar")
	}
	fmt.Print("  registrar apuesta? [y/N] > ")
	answer, _ := e.in.ReadString('\n')
	if strings.ToLower(strings.TrimSpace(answer)) != "y" {
		return
	}

	bet := kelly / 100 * e.cfg.Bankroll.StartingBankroll
	w := domain.WagerRecord{
		Away: g.Away, Home: g.Home,
		Fair:       fmt.Sprintf("%.2f", line.Spread),
		Market:     fmt.Sprintf("%.2f", market),
		Edge:       fmt.Sprintf("%.2f", edge.Capped),
		RawEdge:    fmt.Sprintf("%.2f", edge.Raw),
		EdgeCapped: strconv.FormatBool(edge.WasCap),
		Kelly:      fmt.Sprintf("%.2f", kelly),
		Confidence: conf.String(),
		Pick:       pick,
		Type:       "spread",
		Book:       "consensus",
		Odds:       "-110",
		Bet:        fmt.Sprintf("%.2f", bet),
		ToWin:      fmt.Sprintf("%.2f", domain.PayoutForWin(bet, -110)),
	}

	// el sello se hereda solo de una corrida vigente; vencida o fallida
	// deja la fila sin sellar y el próximo preflight aprobado la sella
	status, err := e.store.ReadStatus()
	if err != nil {
		slog.Warn("audit status unreadable", "err", err)
		status = nil
	}
	if err := e.store.Append(w, status, now); err != nil {
		slog.Error("failed to append wager", "err", err)
		return
	}
	fmt.Printf("  registrada en %s\n", e.store.PathFor(now))
}

func (e *engine) promptMarketLine(g domain.ScheduledGame) (float64, bool) {
	fmt.Printf("  línea de mercado para %s (home, ej. -5.5) > ", g.Home)
	input, err := e.in.ReadString('\n')
	if err != nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(input), 64)
	if err != nil {
		fmt.Println("  línea inválida")
		return 0, false
	}
	if v < -30 || v > 30 {
		fmt.Println("  línea fuera de rango NBA")
		return 0, false
	}
	return v, true
}

func (e *engine) showLedger(now time.Time) {
	records, err := e.store.Load(e.store.PathFor(now))
	if err != nil {
		fmt.Println("  sin apuestas hoy")
		return
	}
	for _, w := range records {
		stamp := "sin sello"
		if w.Stamped() {
			stamp = w.AuditCheck
		}
		fmt.Printf("  #%s %s @ %s  pick %s  edge %s  bet %s  %s  [%s]\n",
			w.ID, w.Away, w.Home, w.Pick, w.Edge, w.Bet, w.Result, stamp)
	}
}

func (e *engine) runPostmortem() {
	results, rates, err := postmortem.New(e.store, e.cfg.Bankroll.EdgeCap).AuditAll()
	if err != nil {
		slog.Error("postmortem failed", "err", err)
		return
	}
	e.console.PrintPostmortem(results, rates)
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
