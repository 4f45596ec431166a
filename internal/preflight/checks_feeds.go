package preflight

// checks_feeds.go — secciones 1 a 8: un feed por sección, más bankroll.
//
// Cada sección valida en capas: existencia → parseabilidad → frescura →
// campos → cardinalidad → rangos. Una capa rota corta la sección (no
// tiene sentido validar rangos de un archivo que no parsea), pero nunca
// corta la corrida: las demás secciones siguen.

import (
	"fmt"
	"strings"
	"time"

	"github.com/alejandrodnm/courtline/internal/domain"
)

// Rangos plausibles de los valores de feeds. Un valor fuera de rango es
// casi siempre un scraper roto, no un dato real.
const (
	paceMin, paceMax     = 92.0, 108.0
	ratingMin, ratingMax = 100.0, 125.0
	netAbsMax            = 20.0
	spreadAbsMax         = 30.0
	impactAbsMax         = 30.0
	restAbsMax           = 4.0
)

func (a *Auditor) checkRatings() Section {
	s := Section{Name: "ratings"}
	if _, ok := a.feedBasics(&s, domain.FeedRatings); !ok {
		return s
	}

	ratings, err := a.feeds.Ratings()
	if err != nil {
		s.Results = append(s.Results, fail("ratings.parse", "ratings no parsea", err.Error(), fixRefresh(domain.FeedRatings)))
		return s
	}
	s.Results = append(s.Results, pass("ratings.parse", fmt.Sprintf("%d equipos parseados", len(ratings))))

	s.Results = append(s.Results, checkCardinality("ratings", mapKeys(ratings)))

	bad := 0
	var detail []string
	for name, r := range ratings {
		for _, v := range []struct {
			field string
			value float64
			lo    float64
			hi    float64
		}{
			{"off_rating", r.OffRating, ratingMin, ratingMax},
			{"def_rating", r.DefRating, ratingMin, ratingMax},
			{"net_rating", r.NetRating, -netAbsMax, netAbsMax},
			{"pace", r.Pace, paceMin, paceMax},
		} {
			if v.value < v.lo || v.value > v.hi {
				bad++
				if len(detail) < 5 {
					detail = append(detail, fmt.Sprintf("%s %s=%.1f", name, v.field, v.value))
				}
			}
		}
	}
	if bad > 0 {
		s.Results = append(s.Results, fail("ratings.ranges",
			fmt.Sprintf("%d valores fuera de rango", bad),
			strings.Join(detail, "; "), fixRefresh(domain.FeedRatings)))
	} else {
		s.Results = append(s.Results, pass("ratings.ranges", "todos los valores en rango"))
	}

	missingSplit := 0
	for _, r := range ratings {
		if r.HomeNet == 0 && r.RoadNet == 0 {
			missingSplit++
		}
	}
	if missingSplit > 0 {
		s.Results = append(s.Results, warn("ratings.splits",
			fmt.Sprintf("%d equipos sin split home/road", missingSplit),
			"el término de cancha degrada al baseline para esos equipos"))
	}
	return s
}

func (a *Auditor) checkInjuries() Section {
	s := Section{Name: "injuries"}
	if _, ok := a.feedBasics(&s, domain.FeedInjuries); !ok {
		return s
	}

	injuries, err := a.feeds.Injuries()
	if err != nil {
		s.Results = append(s.Results, fail("injuries.parse", "injuries no parsea", err.Error(), fixRefresh(domain.FeedInjuries)))
		return s
	}
	s.Results = append(s.Results, pass("injuries.parse", fmt.Sprintf("%d registros parseados", len(injuries))))

	unknownTeams, unknownStatuses := 0, map[string]bool{}
	for _, inj := range injuries {
		if !domain.IsCanonical(inj.Team) {
			unknownTeams++
		}
		if !domain.KnownStatus(inj.Status) {
			unknownStatuses[inj.Status] = true
		}
	}
	if unknownTeams > 0 {
		s.Results = append(s.Results, fail("injuries.teams",
			fmt.Sprintf("%d registros con equipo no resoluble", unknownTeams),
			"", fixRefresh(domain.FeedInjuries)))
	} else {
		s.Results = append(s.Results, pass("injuries.teams", "todos los equipos resuelven"))
	}
	// un estado desconocido pesa 0 en el modelo: se avisa, no se bloquea
	if len(unknownStatuses) > 0 {
		var names []string
		for st := range unknownStatuses {
			names = append(names, st)
		}
		s.Results = append(s.Results, warn("injuries.statuses",
			fmt.Sprintf("%d estados no reconocidos", len(unknownStatuses)), strings.Join(names, "; ")))
	}
	return s
}

func (a *Auditor) checkImpact() Section {
	s := Section{Name: "impact"}
	if _, ok := a.feedBasics(&s, domain.FeedImpact); !ok {
		return s
	}

	impacts, err := a.feeds.Impacts()
	if err != nil {
		s.Results = append(s.Results, fail("impact.parse", "impact no parsea", err.Error(), fixRefresh(domain.FeedImpact)))
		return s
	}
	s.Results = append(s.Results, pass("impact.parse", fmt.Sprintf("%d equipos con impactos", len(impacts))))

	bad := 0
	for team, players := range impacts {
		for player, raw := range players {
			if raw < -impactAbsMax || raw > impactAbsMax {
				bad++
				if bad == 1 {
					s.Results = append(s.Results, warn("impact.ranges",
						"impactos fuera de rango plausible",
						fmt.Sprintf("%s / %s = %.1f (se clampa a ±15 al usar)", team, player, raw)))
				}
			}
		}
	}
	if bad == 0 {
		s.Results = append(s.Results, pass("impact.ranges", "impactos en rango"))
	}
	return s
}

func (a *Auditor) checkRest() Section {
	s := Section{Name: "rest"}
	if _, ok := a.feedBasics(&s, domain.FeedRest); !ok {
		return s
	}

	rest, err := a.feeds.Rest()
	if err != nil {
		s.Results = append(s.Results, fail("rest.parse", "rest no parsea", err.Error(), fixRefresh(domain.FeedRest)))
		return s
	}
	s.Results = append(s.Results, checkCardinality("rest", restKeys(rest)))

	bad, nonZero := 0, 0
	for _, r := range rest {
		if r.Penalty < -restAbsMax || r.Penalty > restAbsMax {
			bad++
		}
		if r.Penalty != 0 {
			nonZero++
		}
	}
	if bad > 0 {
		s.Results = append(s.Results, fail("rest.ranges",
			fmt.Sprintf("%d penalizaciones fuera de ±%.0f", bad, restAbsMax), "", fixRefresh(domain.FeedRest)))
	} else {
		s.Results = append(s.Results, pass("rest.ranges", "penalizaciones en rango"))
	}
	if nonZero == 0 {
		s.Results = append(s.Results, warn("rest.coverage",
			"ninguna penalización distinta de cero",
			"sospechoso en temporada: siempre hay equipos en back-to-back"))
	}
	return s
}

func (a *Auditor) checkOdds() Section {
	s := Section{Name: "odds"}
	if _, ok := a.feedBasics(&s, domain.FeedOdds); !ok {
		return s
	}

	odds, err := a.feeds.Odds()
	if err != nil {
		s.Results = append(s.Results, fail("odds.parse", "odds no parsea", err.Error(), fixRefresh(domain.FeedOdds)))
		return s
	}
	s.Results = append(s.Results, pass("odds.parse", fmt.Sprintf("%d partidos con mercado", len(odds))))

	noConsensus, badRange, staleVariance := 0, 0, 0
	for _, g := range odds {
		if !g.HasConsensus {
			noConsensus++
			continue
		}
		if g.ConsensusLine < -spreadAbsMax || g.ConsensusLine > spreadAbsMax {
			badRange++
		}
		if g.SpreadVariance() > 3.0 {
			staleVariance++
		}
	}
	if badRange > 0 {
		s.Results = append(s.Results, fail("odds.ranges",
			fmt.Sprintf("%d líneas fuera de ±%.0f", badRange, spreadAbsMax), "", fixRefresh(domain.FeedOdds)))
	} else {
		s.Results = append(s.Results, pass("odds.ranges", "líneas en rango"))
	}
	if noConsensus > 0 {
		s.Results = append(s.Results, warn("odds.consensus",
			fmt.Sprintf("%d partidos sin línea de consenso", noConsensus),
			"sin consenso no hay edge calculable para esos partidos"))
	}
	if staleVariance > 0 {
		s.Results = append(s.Results, warn("odds.variance",
			fmt.Sprintf("%d partidos con >3 puntos de varianza entre casas", staleVariance),
			"alguna casa probablemente está stale"))
	}
	return s
}

func (a *Auditor) checkSchedule() Section {
	s := Section{Name: "schedule"}
	if _, ok := a.feedBasics(&s, domain.FeedSchedule); !ok {
		return s
	}

	sched, err := a.feeds.Schedule()
	if err != nil {
		s.Results = append(s.Results, fail("schedule.parse", "schedule no parsea", err.Error(), fixRefresh(domain.FeedSchedule)))
		return s
	}

	today := a.now().Format("2006-01-02")
	games := sched[today]
	s.Results = append(s.Results, pass("schedule.parse",
		fmt.Sprintf("%d fechas, %d partidos hoy", len(sched), len(games))))

	badTeams := 0
	for _, g := range games {
		if !domain.IsCanonical(g.Away) || !domain.IsCanonical(g.Home) {
			badTeams++
		}
	}
	if badTeams > 0 {
		s.Results = append(s.Results, fail("schedule.teams",
			fmt.Sprintf("%d partidos de hoy con equipos no resolubles", badTeams), "", fixRefresh(domain.FeedSchedule)))
	} else if len(games) > 0 {
		s.Results = append(s.Results, pass("schedule.teams", "equipos de hoy resuelven"))
	}
	return s
}

func (a *Auditor) checkNews() Section {
	s := Section{Name: "news"}
	if _, ok := a.feedBasics(&s, domain.FeedNews); !ok {
		return s
	}

	articles, err := a.feeds.News()
	if err != nil {
		// las noticias son contexto, no insumo del modelo
		s.Results = append(s.Results, warn("news.parse", "news no parsea", err.Error()))
		return s
	}
	if len(articles) == 0 {
		s.Results = append(s.Results, warn("news.empty", "news sin artículos", ""))
		return s
	}
	s.Results = append(s.Results, pass("news.parse", fmt.Sprintf("%d artículos", len(articles))))
	return s
}

func (a *Auditor) checkBankroll() Section {
	s := Section{Name: "bankroll"}
	b := a.bankroll

	if b.StartingBankroll <= 0 {
		s.Results = append(s.Results, fail("bankroll.starting",
			"starting_bankroll ausente o no positivo", "", "definir bankroll.starting_bankroll en config.yaml"))
	} else {
		s.Results = append(s.Results, pass("bankroll.starting", fmt.Sprintf("bankroll %.2f", b.StartingBankroll)))
	}

	if b.UnitSize <= 0 {
		s.Results = append(s.Results, fail("bankroll.unit",
			"unit_size ausente o no positivo", "", "definir bankroll.unit_size en config.yaml"))
	} else if b.StartingBankroll > 0 && b.UnitSize > b.StartingBankroll*0.05 {
		s.Results = append(s.Results, warn("bankroll.unit",
			fmt.Sprintf("unit_size %.2f supera el 5%% del bankroll", b.UnitSize),
			"sizing agresivo para quarter-Kelly"))
	} else {
		s.Results = append(s.Results, pass("bankroll.unit", fmt.Sprintf("unidad %.2f", b.UnitSize)))
	}

	if b.EdgeCap <= 0 {
		s.Results = append(s.Results, warn("bankroll.edge_cap",
			"edge_cap sin definir", fmt.Sprintf("se usa el default %.1f", domain.DefaultEdgeCap)))
	} else {
		s.Results = append(s.Results, pass("bankroll.edge_cap", fmt.Sprintf("edge cap %.1f", b.EdgeCap)))
	}
	return s
}

// feedBasics corre existencia y frescura de un feed. Devuelve false si la
// sección debe cortarse (artefacto ausente).
func (a *Auditor) feedBasics(s *Section, feed string) (domain.FeedMeta, bool) {
	meta, err := a.feeds.Meta(feed)
	if err != nil {
		s.Results = append(s.Results, fail(feed+".exists",
			feed+" ausente o ilegible", err.Error(), fixRefresh(feed)))
		return meta, false
	}
	s.Results = append(s.Results, pass(feed+".exists", meta.Path))

	age := meta.Age(a.now())
	if meta.Stale(a.now(), a.staleAfter) {
		s.Results = append(s.Results, fail(feed+".fresh",
			feed+" stale", fmt.Sprintf("edad %s, umbral %s", fmtAge(age), a.staleAfter), fixRefresh(feed)))
	} else {
		s.Results = append(s.Results, pass(feed+".fresh", fmt.Sprintf("edad %s", fmtAge(age))))
	}
	return meta, true
}

// checkCardinality valida que un feed por-equipo cubra los 30 canónicos.
func checkCardinality(feed string, names []string) CheckResult {
	canonical := domain.CanonicalNames()
	present := make(map[string]bool, len(names))
	for _, n := range names {
		present[n] = true
	}

	var missing, extra []string
	for name := range canonical {
		if !present[name] {
			missing = append(missing, name)
		}
	}
	for _, n := range names {
		if !canonical[n] {
			extra = append(extra, n)
		}
	}

	if len(missing) == 0 && len(extra) == 0 {
		return pass(feed+".cardinality", "30/30 equipos")
	}
	detail := ""
	if len(missing) > 0 {
		detail = "faltan: " + strings.Join(missing, ", ")
	}
	if len(extra) > 0 {
		if detail != "" {
			detail += "; "
		}
		detail += "desconocidos: " + strings.Join(extra, ", ")
	}
	return fail(feed+".cardinality",
		fmt.Sprintf("%d/30 equipos canónicos", 30-len(missing)), detail, fixRefresh(feed))
}

func fixRefresh(feed string) string {
	return "refrescar el feed: preflight -fix, o correr el colector de " + feed
}

func fmtAge(age time.Duration) string {
	if age > 100*365*24*time.Hour {
		return "desconocida"
	}
	return age.Round(time.Minute).String()
}

func mapKeys(m map[string]*domain.TeamRating) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func restKeys(m map[string]*domain.RestPenalty) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
