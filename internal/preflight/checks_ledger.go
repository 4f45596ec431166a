package preflight

// checks_ledger.go — sección 11: integridad del ledger.
//
// Dos niveles: conformidad de esquema sobre todos los ledgers (barato,
// solo conteo de columnas) y check profundo del ledger de hoy (campos
// numéricos, picks que resuelven, resultados válidos).

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alejandrodnm/courtline/internal/domain"
)

func (a *Auditor) checkLedgers() Section {
	s := Section{Name: "ledger"}

	paths, err := a.ledger.List()
	if err != nil {
		s.Results = append(s.Results, fail("ledger.list", "directorio de ledgers ilegible", err.Error(), ""))
		return s
	}
	if len(paths) == 0 {
		s.Results = append(s.Results, pass("ledger.list", "sin ledgers todavía"))
		return s
	}

	// conformidad de esquema sobre todo el histórico
	legacy, broken := 0, 0
	var brokenNames []string
	for _, path := range paths {
		if _, err := a.ledger.Load(path); err != nil {
			broken++
			if len(brokenNames) < 3 {
				brokenNames = append(brokenNames, filepath.Base(path)+": "+err.Error())
			}
			continue
		}
		if migrated, err := a.peekLegacy(path); err == nil && migrated {
			legacy++
		}
	}
	switch {
	case broken > 0:
		s.Results = append(s.Results, fail("ledger.schema",
			fmt.Sprintf("%d/%d ledgers no migran", broken, len(paths)),
			strings.Join(brokenNames, "; "), "revisar los archivos a mano; el esquema no se reconoce"))
	case legacy > 0:
		s.Results = append(s.Results, warn("ledger.schema",
			fmt.Sprintf("%d/%d ledgers en esquema viejo", legacy, len(paths)),
			"migran en memoria al leer; preflight -backfill los reescribe"))
	default:
		s.Results = append(s.Results, pass("ledger.schema",
			fmt.Sprintf("%d ledgers en esquema vigente", len(paths))))
	}

	// check profundo del ledger de hoy
	todayPath := ""
	today := a.now().Format("2006-01-02")
	for _, p := range paths {
		if strings.Contains(filepath.Base(p), today) {
			todayPath = p
			break
		}
	}
	if todayPath == "" {
		s.Results = append(s.Results, pass("ledger.today", "sin apuestas hoy"))
		return s
	}

	records, err := a.ledger.Load(todayPath)
	if err != nil {
		s.Results = append(s.Results, fail("ledger.today", "ledger de hoy ilegible", err.Error(), ""))
		return s
	}

	badNum, badPick, badResult, unstamped := 0, 0, 0, 0
	for _, w := range records {
		for _, field := range []string{w.Fair, w.Market, w.Bet} {
			if _, ok := domain.Num(field); !ok && strings.TrimSpace(field) != "" {
				badNum++
			}
		}
		if w.Pick != "" && !domain.IsCanonical(domain.Canonicalize(w.Pick)) {
			badPick++
		}
		r := strings.ToUpper(strings.TrimSpace(w.Result))
		if r != "" && r != domain.ResultPending && r != domain.ResultWin &&
			r != domain.ResultLoss && r != domain.ResultPush {
			badResult++
		}
		if !w.Stamped() {
			unstamped++
		}
	}

	if badNum+badPick+badResult > 0 {
		s.Results = append(s.Results, fail("ledger.today",
			fmt.Sprintf("%d filas con campos inválidos", badNum+badPick+badResult),
			fmt.Sprintf("numéricos %d, picks %d, resultados %d", badNum, badPick, badResult),
			"corregir el CSV a mano"))
	} else {
		s.Results = append(s.Results, pass("ledger.today",
			fmt.Sprintf("%d apuestas bien formadas", len(records))))
	}
	if unstamped > 0 {
		s.Results = append(s.Results, warn("ledger.stamps",
			fmt.Sprintf("%d apuestas de hoy sin sello", unstamped),
			"un preflight aprobado las sella"))
	}
	return s
}

// peekLegacy detecta si un ledger está en esquema viejo sin migrarlo,
// mirando solo los anchos de fila.
func (a *Auditor) peekLegacy(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return false, err
	}
	for _, row := range rows {
		if len(row) != len(domain.CanonicalColumns()) {
			return true, nil
		}
	}
	return false, nil
}
