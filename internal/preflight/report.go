package preflight

import (
	"fmt"
	"time"
)

// Status es el resultado de un check individual.
type Status int

const (
	StatusPass Status = iota
	StatusWarn
	StatusFail
)

func (s Status) String() string {
	switch s {
	case StatusPass:
		return "PASS"
	case StatusWarn:
		return "WARN"
	default:
		return "FAIL"
	}
}

// Verdict es el estado agregado de una corrida de auditoría.
type Verdict int

const (
	VerdictNotRun Verdict = iota
	VerdictRunning
	VerdictPass
	VerdictPassWithWarnings
	VerdictFail
)

func (v Verdict) String() string {
	switch v {
	case VerdictNotRun:
		return "NOT_RUN"
	case VerdictRunning:
		return "RUNNING"
	case VerdictPass:
		return "PASS"
	case VerdictPassWithWarnings:
		return "PASS_WITH_WARNINGS"
	default:
		return "FAIL"
	}
}

// CheckResult es el resultado de un check con su contexto accionable.
// FixHint dice qué comando o acción repara el problema; vacío cuando el
// check pasa o no hay reparación automática.
type CheckResult struct {
	ID      string
	Status  Status
	Message string
	Detail  string
	FixHint string
}

// Section agrupa los checks de un área (un feed, el ledger, el modelo).
type Section struct {
	Name    string
	Results []CheckResult
}

// Counts devuelve (checks, warns, fails) de la sección.
func (s Section) Counts() (checks, warns, fails int) {
	checks = len(s.Results)
	for _, r := range s.Results {
		switch r.Status {
		case StatusWarn:
			warns++
		case StatusFail:
			fails++
		}
	}
	return
}

// Report acumula las secciones de una corrida y deriva el veredicto.
// El veredicto solo avanza: NOT_RUN → RUNNING → terminal.
type Report struct {
	RunID     string
	Mode      string
	StartedAt time.Time
	Duration  time.Duration
	Sections  []Section

	verdict Verdict
}

// NewReport crea un reporte en estado RUNNING.
func NewReport(runID, mode string, now time.Time) *Report {
	return &Report{RunID: runID, Mode: mode, StartedAt: now, verdict: VerdictRunning}
}

// Add incorpora una sección terminada.
func (r *Report) Add(s Section) {
	r.Sections = append(r.Sections, s)
}

// Finish cierra la corrida y fija el veredicto terminal.
// Cero FAILs = aprobado; los WARNs degradan la etiqueta, no el veredicto.
func (r *Report) Finish(now time.Time) {
	r.Duration = now.Sub(r.StartedAt)
	_, warns, fails := r.Counts()
	switch {
	case fails > 0:
		r.verdict = VerdictFail
	case warns > 0:
		r.verdict = VerdictPassWithWarnings
	default:
		r.verdict = VerdictPass
	}
}

// Verdict devuelve el estado actual de la corrida.
func (r *Report) Verdict() Verdict {
	if r == nil {
		return VerdictNotRun
	}
	return r.verdict
}

// Passed devuelve true si la corrida terminó sin FAILs.
func (r *Report) Passed() bool {
	return r.verdict == VerdictPass || r.verdict == VerdictPassWithWarnings
}

// Counts devuelve los totales (checks, warns, fails) de todas las secciones.
func (r *Report) Counts() (checks, warns, fails int) {
	for _, s := range r.Sections {
		c, w, f := s.Counts()
		checks += c
		warns += w
		fails += f
	}
	return
}

// Summary devuelve la línea de resumen de la corrida.
func (r *Report) Summary() string {
	checks, warns, fails := r.Counts()
	return fmt.Sprintf("%s: %d checks, %d warns, %d fails (%s)",
		r.Verdict(), checks, warns, fails, r.Duration.Round(time.Millisecond))
}

// Failures devuelve todos los checks en FAIL, en orden de sección.
func (r *Report) Failures() []CheckResult {
	var out []CheckResult
	for _, s := range r.Sections {
		for _, res := range s.Results {
			if res.Status == StatusFail {
				out = append(out, res)
			}
		}
	}
	return out
}

// pass/warn/fail construyen resultados con menos ruido en los checks.
func pass(id, msg string) CheckResult {
	return CheckResult{ID: id, Status: StatusPass, Message: msg}
}

func warn(id, msg, detail string) CheckResult {
	return CheckResult{ID: id, Status: StatusWarn, Message: msg, Detail: detail}
}

func fail(id, msg, detail, fixHint string) CheckResult {
	return CheckResult{ID: id, Status: StatusFail, Message: msg, Detail: detail, FixHint: fixHint}
}
