package preflight

// checks_model.go — sección 10: spot check del modelo.
//
// Re-predice unos pocos partidos de hoy con los feeds tal como están y
// valida que la salida sea razonable: spread finito y en rango, edge y
// Kelly dentro de sus cotas. No valida que el modelo acierte, valida que
// no esté escupiendo basura con datos corruptos que pasaron los checks
// estructurales.

import (
	"fmt"
	"math"
	"strings"

	"github.com/alejandrodnm/courtline/internal/domain"
)

const (
	kellyMax   = 15.0
	edgeAbsMax = 30.0
)

func (a *Auditor) checkModelSpot() Section {
	s := Section{Name: "model"}

	sched, err := a.feeds.Schedule()
	if err != nil {
		s.Results = append(s.Results, warn("model.inputs", "schedule ilegible, spot check omitido", err.Error()))
		return s
	}
	games := sched[a.now().Format("2006-01-02")]
	if len(games) == 0 {
		s.Results = append(s.Results, pass("model.spot", "sin partidos hoy, spot check vacío"))
		return s
	}
	if len(games) > a.spotGames {
		games = games[:a.spotGames]
	}

	ratings, _ := a.feeds.Ratings()
	rest, _ := a.feeds.Rest()
	injuries, injErr := a.feeds.Injuries()
	impacts, impErr := a.feeds.Impacts()
	odds, _ := a.feeds.Odds()

	for _, g := range games {
		id := fmt.Sprintf("model.spot.%s@%s", abbrev(g.Away), abbrev(g.Home))
		line := domain.PredictFairLine(a.buildMatchup(g, ratings, rest, injuries, impacts, injErr == nil, impErr == nil))

		if math.IsNaN(line.Spread) || math.IsInf(line.Spread, 0) {
			s.Results = append(s.Results, fail(id, "spread no finito", "", ""))
			continue
		}
		if line.Spread < -spreadAbsMax || line.Spread > spreadAbsMax {
			s.Results = append(s.Results, fail(id,
				fmt.Sprintf("spread %.2f fuera de ±%.0f", line.Spread, spreadAbsMax),
				breakdown(line), ""))
			continue
		}

		msg := fmt.Sprintf("fair %.2f (%d términos degradados)", line.Spread, line.DegradedTerms)
		if o, ok := matchOdds(odds, g); ok && o.HasConsensus {
			edge := domain.ComputeEdge(line.Spread, o.ConsensusLine, a.edgeCap())
			kelly := domain.KellyStake(edge.Capped)
			if edge.Raw > edgeAbsMax {
				s.Results = append(s.Results, fail(id,
					fmt.Sprintf("edge %.1f fuera de rango", edge.Raw), breakdown(line), ""))
				continue
			}
			if kelly < 0 || kelly > kellyMax {
				s.Results = append(s.Results, fail(id,
					fmt.Sprintf("kelly %.2f fuera de [0, %.0f]", kelly, kellyMax), "", ""))
				continue
			}
			msg = fmt.Sprintf("fair %.2f vs mercado %.2f, edge %.2f, kelly %.2f%%",
				line.Spread, o.ConsensusLine, edge.Capped, kelly)
		}

		if line.DegradedTerms >= 2 {
			s.Results = append(s.Results, warn(id, msg, "confianza LOW por términos degradados"))
		} else {
			s.Results = append(s.Results, pass(id, msg))
		}
	}
	return s
}

func (a *Auditor) buildMatchup(
	g domain.ScheduledGame,
	ratings map[string]*domain.TeamRating,
	rest map[string]*domain.RestPenalty,
	injuries []domain.Injury,
	impacts map[string]domain.TeamImpacts,
	injOK, impOK bool,
) domain.MatchupData {
	m := domain.MatchupData{
		InjuryFeedPresent: injOK,
		ImpactFeedPresent: impOK,
	}
	if ratings != nil {
		m.AwayRating = ratings[g.Away]
		m.HomeRating = ratings[g.Home]
	}
	if rest != nil {
		m.AwayRest = rest[g.Away]
		m.HomeRest = rest[g.Home]
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
		m.AwayImpacts = impacts[g.Away]
		m.HomeImpacts = impacts[g.Home]
	}
	return m
}

func (a *Auditor) edgeCap() float64 {
	if a.bankroll.EdgeCap > 0 {
		return a.bankroll.EdgeCap
	}
	return domain.DefaultEdgeCap
}

func breakdown(line domain.FairLine) string {
	return fmt.Sprintf("eff %.2f, cancha %.2f, descanso %.2f, star tax %.2f",
		line.Efficiency, line.HomeCourt, line.Rest, line.StarTax)
}

func abbrev(name string) string {
	if t, ok := domain.ResolveTeam(name); ok {
		return t.Abbrev
	}
	return strings.ReplaceAll(name, " ", "")
}
