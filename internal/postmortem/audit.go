// Package postmortem re-deriva la matemática de apuestas ya registradas.
// Los feeds que originaron cada apuesta ya no existen, así que solo se
// verifica lo verificable algebraicamente desde la propia fila: edge,
// cap, Kelly y dirección del pick. Distinto del preflight, que valida
// insumos; esto valida que lo registrado sea internamente consistente.
package postmortem

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/alejandrodnm/courtline/internal/domain"
	"github.com/alejandrodnm/courtline/internal/ports"
)

// Severidades de un hallazgo.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarn
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "ERROR"
	case SeverityWarn:
		return "WARN"
	default:
		return "INFO"
	}
}

// Finding es una inconsistencia encontrada en una fila.
type Finding struct {
	WagerID  string
	Severity Severity
	Message  string
}

// LedgerVerdict es el resultado agregado de un ledger.
type LedgerVerdict int

const (
	VerdictClean LedgerVerdict = iota
	VerdictWarn
	VerdictError
)

func (v LedgerVerdict) String() string {
	switch v {
	case VerdictError:
		return "ERROR"
	case VerdictWarn:
		return "WARN"
	default:
		return "CLEAN"
	}
}

// LedgerResult es el postmortem de un ledger.
type LedgerResult struct {
	Path     string
	Wagers   int
	Findings []Finding
}

// Verdict deriva el veredicto del peor hallazgo.
func (r LedgerResult) Verdict() LedgerVerdict {
	v := VerdictClean
	for _, f := range r.Findings {
		switch f.Severity {
		case SeverityError:
			return VerdictError
		case SeverityWarn:
			v = VerdictWarn
		}
	}
	return v
}

// WinRates compara el rendimiento de apuestas selladas contra no selladas.
// La hipótesis operativa es que apostar solo tras un preflight aprobado
// rinde mejor; esta tabla la mide en vez de asumirla.
type WinRates struct {
	VerifiedWins, VerifiedLosses     int
	UnverifiedWins, UnverifiedLosses int
	VerifiedNet, UnverifiedNet       float64
}

// Rate devuelve (verificadas, no verificadas) como fracción de aciertos.
func (w WinRates) Rate() (verified, unverified float64) {
	if n := w.VerifiedWins + w.VerifiedLosses; n > 0 {
		verified = float64(w.VerifiedWins) / float64(n)
	}
	if n := w.UnverifiedWins + w.UnverifiedLosses; n > 0 {
		unverified = float64(w.UnverifiedWins) / float64(n)
	}
	return
}

// Auditor recorre los ledgers y produce los postmortems.
type Auditor struct {
	ledger  ports.LedgerStore
	edgeCap float64
}

// New crea un Auditor. edgeCap <= 0 usa el default del dominio.
func New(store ports.LedgerStore, edgeCap float64) *Auditor {
	if edgeCap <= 0 {
		edgeCap = domain.DefaultEdgeCap
	}
	return &Auditor{ledger: store, edgeCap: edgeCap}
}

// Tolerancia de redondeo: las filas guardan dos decimales.
const tolerance = 0.015

// AuditAll corre el postmortem sobre todos los ledgers.
func (a *Auditor) AuditAll() ([]LedgerResult, WinRates, error) {
	paths, err := a.ledger.List()
	if err != nil {
		return nil, WinRates{}, fmt.Errorf("postmortem.AuditAll: %w", err)
	}

	var results []LedgerResult
	var rates WinRates
	for _, path := range paths {
		res, err := a.AuditLedger(path)
		if err != nil {
			return nil, WinRates{}, err
		}
		results = append(results, res)

		records, err := a.ledger.Load(path)
		if err != nil {
			return nil, WinRates{}, fmt.Errorf("postmortem.AuditAll: %w", err)
		}
		tallyWinRates(&rates, records)
	}
	return results, rates, nil
}

// AuditLedger re-deriva cada fila de un ledger.
func (a *Auditor) AuditLedger(path string) (LedgerResult, error) {
	records, err := a.ledger.Load(path)
	if err != nil {
		return LedgerResult{}, fmt.Errorf("postmortem.AuditLedger: %s: %w", filepath.Base(path), err)
	}

	res := LedgerResult{Path: path, Wagers: len(records)}
	for _, w := range records {
		res.Findings = append(res.Findings, a.checkWager(w)...)
	}
	return res, nil
}

// checkWager re-deriva la matemática de una fila.
func (a *Auditor) checkWager(w domain.WagerRecord) []Finding {
	var out []Finding
	add := func(sev Severity, format string, args ...any) {
		out = append(out, Finding{WagerID: w.ID, Severity: sev, Message: fmt.Sprintf(format, args...)})
	}

	fair, fairOK := domain.Num(w.Fair)
	market, marketOK := domain.Num(w.Market)
	if !fairOK || !marketOK {
		add(SeverityWarn, "fair/market no numéricos, fila no verificable")
		return out
	}

	expected := domain.ComputeEdge(fair, market, a.edgeCap)

	// edge crudo (columna presente solo desde el esquema 20)
	if raw, ok := domain.Num(w.RawEdge); ok {
		if math.Abs(raw-expected.Raw) > tolerance {
			add(SeverityError, "raw edge registrado %.2f, derivado %.2f", raw, expected.Raw)
		}
	} else {
		add(SeverityInfo, "sin raw edge registrado (esquema viejo)")
	}

	// edge capado
	if edge, ok := domain.Num(w.Edge); ok {
		if math.Abs(edge-expected.Capped) > tolerance {
			add(SeverityError, "edge registrado %.2f, derivado %.2f (cap %.1f)", edge, expected.Capped, a.edgeCap)
		}
	}

	// Kelly re-derivado del edge registrado, no del derivado: verifica la
	// consistencia interna de la fila aunque el cap de entonces difiera
	if kelly, ok := domain.Num(w.Kelly); ok {
		if edge, ok := domain.Num(w.Edge); ok {
			if rederived := domain.KellyStake(edge); math.Abs(kelly-rederived) > tolerance {
				add(SeverityError, "kelly registrado %.2f, derivado %.2f del edge %.2f", kelly, rederived, edge)
			}
		}
	}

	// dirección del pick
	if w.Pick != "" && fair != market {
		want := domain.RecommendPick(fair, market, domain.Canonicalize(w.Away), domain.Canonicalize(w.Home))
		if domain.Canonicalize(w.Pick) != want {
			add(SeverityError, "pick %s contradice la dirección del edge (esperado %s)", w.Pick, want)
		}
	}

	// CLV re-derivado si hay línea de cierre
	if closing, ok := domain.Num(w.ClosingLine); ok {
		if clv, ok := domain.Num(w.CLV); ok {
			want := domain.ClosingLineValue(w.Pick, domain.Canonicalize(w.Home), market, closing)
			if math.Abs(clv-want) > tolerance {
				add(SeverityError, "CLV registrado %.2f, derivado %.2f", clv, want)
			}
		}
	}

	// liquidada sin sello: el resultado no está respaldado por ninguna
	// corrida de preflight
	if w.Settled() && !w.Stamped() {
		add(SeverityWarn, "fila liquidada sin sello de auditoría")
	}

	// payout coherente con resultado
	if w.Settled() {
		bet, betOK := domain.Num(w.Bet)
		odds, oddsOK := domain.Num(w.Odds)
		payout, payOK := domain.Num(w.Payout)
		if betOK && oddsOK && payOK {
			want := domain.SettlePayout(w.Result, bet, odds)
			if math.Abs(payout-want) > tolerance {
				add(SeverityWarn, "payout registrado %.2f, esperado %.2f para %s", payout, want, strings.ToUpper(w.Result))
			}
		}
	}

	return out
}

// tallyWinRates acumula aciertos separando selladas de no selladas.
func tallyWinRates(rates *WinRates, records []domain.WagerRecord) {
	for _, w := range records {
		if !w.Settled() {
			continue
		}
		payout, _ := domain.Num(w.Payout)
		win := strings.EqualFold(strings.TrimSpace(w.Result), domain.ResultWin)
		loss := strings.EqualFold(strings.TrimSpace(w.Result), domain.ResultLoss)

		verified := w.Stamped() && strings.HasPrefix(w.AuditCheck, "PASS:")
		switch {
		case verified && win:
			rates.VerifiedWins++
		case verified && loss:
			rates.VerifiedLosses++
		case !verified && win:
			rates.UnverifiedWins++
		case !verified && loss:
			rates.UnverifiedLosses++
		}
		if verified {
			rates.VerifiedNet += payout
		} else {
			rates.UnverifiedNet += payout
		}
	}
}
