package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/courtline/config"
	"github.com/alejandrodnm/courtline/internal/adapters/collect"
	"github.com/alejandrodnm/courtline/internal/adapters/feeds"
	"github.com/alejandrodnm/courtline/internal/adapters/history"
	"github.com/alejandrodnm/courtline/internal/adapters/ledger"
	"github.com/alejandrodnm/courtline/internal/adapters/notify"
	"github.com/alejandrodnm/courtline/internal/ports"
	"github.com/alejandrodnm/courtline/internal/preflight"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	quick := flag.Bool("quick", false, "existence and freshness checks only")
	fix := flag.Bool("fix", false, "refresh stale/broken feeds and re-validate")
	backfill := flag.Bool("backfill", false, "migrate historical ledgers to the current schema")
	runs := flag.Int("runs", 0, "print the last N audit runs and exit")
	verbose := flag.Bool("verbose", false, "show passing checks and set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}
	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := ledger.NewStore(cfg.Paths.LedgerDir)
	if err != nil {
		slog.Error("failed to open ledger dir", "err", err, "dir", cfg.Paths.LedgerDir)
		os.Exit(1)
	}
	store.SetStatusMaxAge(cfg.StatusMaxAge())

	hist, err := history.NewSQLiteHistory(cfg.History.DSN)
	if err != nil {
		slog.Error("failed to open audit history", "err", err, "dsn", cfg.History.DSN)
		os.Exit(1)
	}
	defer hist.Close()

	console := notify.NewConsole(*verbose)

	if *runs > 0 {
		recent, err := hist.RecentRuns(ctx, *runs)
		if err != nil {
			slog.Error("failed to read audit history", "err", err)
			os.Exit(1)
		}
		console.PrintRecentRuns(recent)
		return
	}

	var collector ports.Collector
	mode := preflight.ModeFull
	switch {
	case *backfill:
		mode = preflight.ModeBackfill
	case *quick:
		mode = preflight.ModeQuick
	case *fix:
		mode = preflight.ModeFix
		if cfg.Fix.CollectorCommand == "" {
			slog.Warn("fix mode without fix.collector_command, running full validation only")
		} else {
			collector, err = collect.NewExecCollector(cfg.Fix.CollectorCommand, cfg.RefreshInterval(), slog.Default())
			if err != nil {
				slog.Error("failed to build collector", "err", err)
				os.Exit(1)
			}
		}
	}

	auditor := preflight.New(preflight.Options{
		Feeds:          feeds.NewFileStore(cfg.Paths.FeedsDir),
		Ledger:         store,
		Collector:      collector,
		History:        hist,
		Bankroll:       cfg.Bankroll,
		StaleThreshold: cfg.StaleThreshold(),
		SpotCheckGames: cfg.Audit.SpotCheckGames,
		Workers:        cfg.Audit.Workers,
	})

	report, err := auditor.Run(ctx, mode)
	if err != nil {
		slog.Error("preflight failed", "err", err)
		os.Exit(1)
	}

	console.PrintReport(report)

	// contrato con los scripts: exit 0 solo si se puede operar
	if !report.Passed() {
		os.Exit(1)
	}
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
