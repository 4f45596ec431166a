// Package notify presenta reportes y predicciones en la consola.
// Es la única capa que formatea; nadie más imprime tablas.
package notify

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/courtline/internal/domain"
	"github.com/alejandrodnm/courtline/internal/ports"
	"github.com/alejandrodnm/courtline/internal/postmortem"
	"github.com/alejandrodnm/courtline/internal/preflight"
)

// Console escribe reportes formateados a un writer.
type Console struct {
	out     io.Writer
	verbose bool
}

// NewConsole crea una consola sobre stdout.
func NewConsole(verbose bool) *Console {
	return &Console{out: os.Stdout, verbose: verbose}
}

// NewConsoleWriter crea una consola para tests.
func NewConsoleWriter(w io.Writer, verbose bool) *Console {
	return &Console{out: w, verbose: verbose}
}

// PrintReport imprime el reporte completo de una corrida de preflight.
// En modo no verboso solo se listan WARN y FAIL; los PASS se resumen.
func (c *Console) PrintReport(r *preflight.Report) {
	fmt.Fprintf(c.out, "\n=== PREFLIGHT %s — run %s ===\n",
		strings.ToUpper(r.Mode), shortID(r.RunID))

	for _, section := range r.Sections {
		checks, warns, fails := section.Counts()
		if !c.verbose && warns == 0 && fails == 0 {
			fmt.Fprintf(c.out, "  [PASS] %-10s %d checks\n", section.Name, checks)
			continue
		}

		fmt.Fprintf(c.out, "  ---- %s ----\n", section.Name)
		table := tablewriter.NewWriter(c.out)
		table.Header("Status", "Check", "Message", "Fix")
		for _, res := range section.Results {
			if !c.verbose && res.Status == preflight.StatusPass {
				continue
			}
			msg := res.Message
			if res.Detail != "" {
				msg += " | " + res.Detail
			}
			table.Append(res.Status.String(), res.ID, msg, res.FixHint)
		}
		table.Render()
	}

	fmt.Fprintf(c.out, "\n  %s\n\n", r.Summary())
}

// PrintPostmortem imprime los veredictos por ledger y la comparación de
// rendimiento entre apuestas selladas y no selladas.
func (c *Console) PrintPostmortem(results []postmortem.LedgerResult, rates postmortem.WinRates) {
	fmt.Fprintln(c.out, "\n=== POSTMORTEM ===")
	if len(results) == 0 {
		fmt.Fprintln(c.out, "  sin ledgers que auditar")
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("Ledger", "Wagers", "Verdict", "Findings")
	for _, res := range results {
		table.Append(shortPath(res.Path),
			fmt.Sprintf("%d", res.Wagers),
			res.Verdict().String(),
			fmt.Sprintf("%d", len(res.Findings)))
	}
	table.Render()

	for _, res := range results {
		for _, f := range res.Findings {
			if f.Severity == postmortem.SeverityInfo && !c.verbose {
				continue
			}
			fmt.Fprintf(c.out, "  [%s] %s #%s: %s\n",
				f.Severity, shortPath(res.Path), f.WagerID, f.Message)
		}
	}

	v, u := rates.Rate()
	fmt.Fprintf(c.out, "\n  Selladas:    %d-%d (%.1f%%)  net %+.2f\n",
		rates.VerifiedWins, rates.VerifiedLosses, v*100, rates.VerifiedNet)
	fmt.Fprintf(c.out, "  Sin sellar:  %d-%d (%.1f%%)  net %+.2f\n\n",
		rates.UnverifiedWins, rates.UnverifiedLosses, u*100, rates.UnverifiedNet)
}

// PrintFreshness imprime la cabecera de frescura de feeds del motor.
func (c *Console) PrintFreshness(metas []domain.FeedMeta, now time.Time, stale time.Duration) {
	table := tablewriter.NewWriter(c.out)
	table.Header("Feed", "Source", "Age", "State")
	for _, m := range metas {
		state := "fresh"
		if m.Stale(now, stale) {
			state = "STALE"
		}
		table.Append(m.Name, m.Source, ageLabel(m.Age(now)), state)
	}
	table.Render()
}

// PrintSchedule imprime los partidos del día.
func (c *Console) PrintSchedule(games []domain.ScheduledGame) {
	if len(games) == 0 {
		fmt.Fprintln(c.out, "  sin partidos hoy")
		return
	}
	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Matchup", "Tip-off")
	for i, g := range games {
		table.Append(fmt.Sprintf("%d", i+1), g.Away+" @ "+g.Home, g.Time)
	}
	table.Render()
}

// PrintAnalysis imprime el desglose de una predicción contra el mercado.
func (c *Console) PrintAnalysis(
	g domain.ScheduledGame, line domain.FairLine,
	market float64, edge domain.Edge, kelly float64,
	conf domain.Confidence, tier domain.SignalTier, pick string,
) {
	fmt.Fprintf(c.out, "\n  %s @ %s\n", g.Away, g.Home)

	table := tablewriter.NewWriter(c.out)
	table.Header("Term", "Value")
	table.Append("Efficiency", fmt.Sprintf("%+.2f", line.Efficiency))
	table.Append("Home court", fmt.Sprintf("%+.2f", line.HomeCourt))
	table.Append("Rest", fmt.Sprintf("%+.2f", line.Rest))
	table.Append("Star tax", fmt.Sprintf("%+.2f", line.StarTax))
	table.Append("Fair line", fmt.Sprintf("%+.2f", line.Spread))
	table.Append("Market", fmt.Sprintf("%+.2f", market))
	table.Append("Edge", edgeLabel(edge))
	table.Append("Kelly", fmt.Sprintf("%.2f%% bankroll", kelly))
	table.Append("Confidence", conf.String())
	table.Append("Signal", tier.String())
	table.Append("Pick", pick)
	table.Render()

	if len(line.Questionable) > 0 {
		fmt.Fprintf(c.out, "  cuidado: %s en duda\n", strings.Join(line.Questionable, ", "))
	}
	if line.DegradedTerms > 0 {
		fmt.Fprintf(c.out, "  %d términos degradados por datos faltantes\n", line.DegradedTerms)
	}
}

// PrintRecentRuns imprime el histórico de corridas.
func (c *Console) PrintRecentRuns(runs []ports.AuditRun) {
	if len(runs) == 0 {
		fmt.Fprintln(c.out, "  sin corridas registradas")
		return
	}
	table := tablewriter.NewWriter(c.out)
	table.Header("Run", "At", "Mode", "Verdict", "C/W/F", "Took")
	for _, r := range runs {
		table.Append(shortID(r.ID), r.RunAt, r.Mode, r.Verdict,
			fmt.Sprintf("%d/%d/%d", r.Checks, r.Warns, r.Fails),
			fmt.Sprintf("%.1fs", r.Duration))
	}
	table.Render()
}

func edgeLabel(e domain.Edge) string {
	if e.WasCap {
		return fmt.Sprintf("%.2f (raw %.2f, CAPPED)", e.Capped, e.Raw)
	}
	return fmt.Sprintf("%.2f", e.Capped)
}

func ageLabel(age time.Duration) string {
	if age > 100*365*24*time.Hour {
		return "unknown"
	}
	return age.Round(time.Minute).String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func shortPath(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}
