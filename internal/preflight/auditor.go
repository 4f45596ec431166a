// Package preflight implementa la auditoría de integridad que corre antes
// de operar. El pipeline acopla colectores externos por archivos y el
// preflight es el único punto donde esos contratos se verifican de punta
// a punta.
package preflight

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alejandrodnm/courtline/config"
	"github.com/alejandrodnm/courtline/internal/domain"
	"github.com/alejandrodnm/courtline/internal/ports"
)

// Modos de corrida.
const (
	ModeFull     = "full"
	ModeQuick    = "quick"
	ModeFix      = "fix"
	ModeBackfill = "backfill"
)

// Auditor corre las secciones de validación y administra el sello.
type Auditor struct {
	feeds     ports.FeedStore
	ledger    ports.LedgerStore
	collector ports.Collector
	history   ports.AuditHistory

	bankroll   config.BankrollConfig
	staleAfter time.Duration
	spotGames  int
	workers    int

	logger *slog.Logger
	nowFn  func() time.Time
}

// Options son los colaboradores y parámetros del auditor. Collector e
// History son opcionales: sin Collector el modo fix degrada a full, sin
// History las corridas no se registran.
type Options struct {
	Feeds     ports.FeedStore
	Ledger    ports.LedgerStore
	Collector ports.Collector
	History   ports.AuditHistory

	Bankroll       config.BankrollConfig
	StaleThreshold time.Duration
	SpotCheckGames int
	Workers        int

	Logger *slog.Logger
	Now    func() time.Time
}

// New crea un Auditor con defaults razonables para lo no provisto.
func New(opts Options) *Auditor {
	a := &Auditor{
		feeds:      opts.Feeds,
		ledger:     opts.Ledger,
		collector:  opts.Collector,
		history:    opts.History,
		bankroll:   opts.Bankroll,
		staleAfter: opts.StaleThreshold,
		spotGames:  opts.SpotCheckGames,
		workers:    opts.Workers,
		logger:     opts.Logger,
		nowFn:      opts.Now,
	}
	if a.staleAfter <= 0 {
		a.staleAfter = 18 * time.Hour
	}
	if a.spotGames <= 0 {
		a.spotGames = 5
	}
	if a.workers <= 0 {
		a.workers = 4
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	if a.nowFn == nil {
		a.nowFn = time.Now
	}
	return a
}

func (a *Auditor) now() time.Time { return a.nowFn() }

// Run ejecuta una corrida completa en el modo dado y devuelve el reporte
// terminado. El error es solo de infraestructura (persistir el sello o el
// histórico); los problemas de datos viven dentro del reporte.
func (a *Auditor) Run(ctx context.Context, mode string) (*Report, error) {
	start := a.now()
	report := NewReport(uuid.NewString(), mode, start)
	a.logger.Info("preflight starting", "run_id", report.RunID, "mode", mode)

	if mode == ModeBackfill {
		report.Add(a.runBackfill())
		report.Finish(a.now())
		a.logger.Info("preflight finished", "run_id", report.RunID, "summary", report.Summary())
		return report, a.record(ctx, report, false)
	}

	quick := mode == ModeQuick

	// Las secciones de feeds son I/O independiente: un worker pool las
	// corre en paralelo. Los resultados se reensamblan en orden fijo
	// para que dos corridas iguales impriman lo mismo.
	feedSections := []func() Section{
		a.checkRatings, a.checkInjuries, a.checkImpact, a.checkRest,
		a.checkOdds, a.checkSchedule, a.checkNews,
	}
	sections := a.runConcurrent(feedSections)

	// el refresco va antes de las secciones dependientes: cross, model y
	// ledger deben ver los feeds ya refrescados, no la vista previa
	if mode == ModeFix && a.collector != nil {
		sections = a.fixAndRevalidate(ctx, sections)
	}

	sections = append(sections,
		a.safely("bankroll", a.checkBankroll),
		a.safely("cross", a.checkCrossConsistency),
	)

	// quick recorta solo model y ledger; los feeds se validan completos
	if !quick {
		sections = append(sections,
			a.safely("model", a.checkModelSpot),
			a.safely("ledger", a.checkLedgers),
		)
	}
	sections = append(sections, a.safely("pipeline", a.checkPipeline))

	for _, s := range sections {
		report.Add(s)
	}
	report.Finish(a.now())
	a.logger.Info("preflight finished", "run_id", report.RunID, "summary", report.Summary())

	return report, a.record(ctx, report, true)
}

// runConcurrent corre las secciones de feeds en paralelo preservando el
// orden de presentación.
func (a *Auditor) runConcurrent(checks []func() Section) []Section {
	out := make([]Section, len(checks))

	workCh := make(chan int, len(checks))
	var wg sync.WaitGroup
	for w := 0; w < a.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range workCh {
				out[i] = a.safely(fmt.Sprintf("feed#%d", i), checks[i])
			}
		}()
	}
	for i := range checks {
		workCh <- i
	}
	close(workCh)
	wg.Wait()

	return out
}

// safely corre una sección capturando panics: un bug en un check produce
// una fila FAIL, nunca tumba la corrida ni se come las demás secciones.
func (a *Auditor) safely(name string, check func() Section) (s Section) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("check panicked", "section", name, "panic", r)
			s = Section{Name: name, Results: []CheckResult{
				fail(name+".panic", "el check abortó inesperadamente", fmt.Sprint(r), ""),
			}}
		}
	}()
	return check()
}

// fixAndRevalidate refresca los feeds cuyas secciones fallaron y vuelve a
// correr solo esas secciones. Un refresh fallido se tolera: la sección
// conserva su FAIL original.
func (a *Auditor) fixAndRevalidate(ctx context.Context, sections []Section) []Section {
	rerun := map[string]func() Section{
		"ratings":  a.checkRatings,
		"injuries": a.checkInjuries,
		"impact":   a.checkImpact,
		"rest":     a.checkRest,
		"odds":     a.checkOdds,
		"schedule": a.checkSchedule,
		"news":     a.checkNews,
	}

	for i, s := range sections {
		check, fixable := rerun[s.Name]
		if !fixable {
			continue
		}
		if _, _, fails := s.Counts(); fails == 0 {
			continue
		}

		a.logger.Info("fix mode: refreshing feed", "feed", s.Name)
		if err := a.collector.Refresh(ctx, s.Name); err != nil {
			a.logger.Warn("feed refresh failed", "feed", s.Name, "err", err)
			continue
		}
		sections[i] = a.safely(s.Name, check)
	}
	return sections
}

// runBackfill reescribe todos los ledgers al esquema vigente.
func (a *Auditor) runBackfill() Section {
	s := Section{Name: "backfill"}

	paths, err := a.ledger.List()
	if err != nil {
		s.Results = append(s.Results, fail("backfill.list", "directorio de ledgers ilegible", err.Error(), ""))
		return s
	}
	if len(paths) == 0 {
		s.Results = append(s.Results, pass("backfill", "sin ledgers que migrar"))
		return s
	}

	for _, path := range paths {
		name := filepath.Base(path)
		migrated, err := a.ledger.Backfill(path, a.now())
		switch {
		case err != nil:
			s.Results = append(s.Results, fail("backfill."+name, "migración falló", err.Error(), ""))
		case migrated:
			s.Results = append(s.Results, pass("backfill."+name, "migrado al esquema vigente"))
		default:
			s.Results = append(s.Results, pass("backfill."+name, "ya estaba al día"))
		}
	}
	return s
}

// record persiste el resultado: slot de estado, sello de las apuestas de
// hoy si la corrida aprobó, y fila en el histórico.
func (a *Auditor) record(ctx context.Context, report *Report, writeSlot bool) error {
	checks, warns, fails := report.Counts()
	status := domain.AuditStatus{
		ID:        report.RunID,
		Timestamp: report.StartedAt,
		Summary:   report.Verdict().String(),
		Passed:    report.Passed(),
		Checks:    checks,
		Warns:     warns,
		Fails:     fails,
	}

	if writeSlot {
		if err := a.ledger.WriteStatus(status); err != nil {
			return fmt.Errorf("preflight: persistir slot: %w", err)
		}
		if report.Passed() {
			if err := a.stampToday(status); err != nil {
				return fmt.Errorf("preflight: sellar ledger de hoy: %w", err)
			}
		}
	}

	if a.history != nil {
		if err := a.history.SaveRun(ctx, status, report.Mode, report.Verdict().String(),
			report.Duration.Seconds()); err != nil {
			// el histórico es observabilidad: se loguea, no se falla
			a.logger.Warn("failed to save audit run", "err", err)
		}
	}
	return nil
}

func (a *Auditor) stampToday(status domain.AuditStatus) error {
	paths, err := a.ledger.List()
	if err != nil {
		return err
	}
	today := a.now().Format("2006-01-02")
	for _, path := range paths {
		if !containsDate(path, today) {
			continue
		}
		n, err := a.ledger.Stamp(path, status)
		if err != nil {
			return err
		}
		if n > 0 {
			a.logger.Info("stamped wagers", "path", path, "rows", n)
		}
	}
	return nil
}

func containsDate(path, date string) bool {
	return filepath.Base(path) == "wagers_"+date+".csv"
}
