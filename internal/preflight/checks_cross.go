package preflight

// checks_cross.go — sección 9: consistencia entre feeds.
//
// Cada feed puede estar sano en aislamiento y aun así contradecir a los
// demás: el calendario lista un partido sin mercado, una lesión de un
// equipo que no juega, un impacto de un jugador que nadie reporta
// lesionado. Son los bugs que ningún check por-feed ve.

import (
	"fmt"
	"strings"

	"github.com/alejandrodnm/courtline/internal/domain"
)

func (a *Auditor) checkCrossConsistency() Section {
	s := Section{Name: "cross"}

	sched, err := a.feeds.Schedule()
	if err != nil {
		s.Results = append(s.Results, warn("cross.schedule",
			"schedule ilegible, consistencia no evaluable", err.Error()))
		return s
	}
	odds, oddsErr := a.feeds.Odds()
	ratings, ratingsErr := a.feeds.Ratings()
	injuries, injErr := a.feeds.Injuries()
	impacts, impErr := a.feeds.Impacts()

	today := a.now().Format("2006-01-02")
	games := sched[today]
	if len(games) == 0 {
		s.Results = append(s.Results, pass("cross.games", "sin partidos hoy, nada que cruzar"))
		return s
	}

	// calendario ↔ mercado
	if oddsErr == nil {
		missing := 0
		var names []string
		for _, g := range games {
			if _, ok := matchOdds(odds, g); !ok {
				missing++
				if len(names) < 3 {
					names = append(names, g.Away+" @ "+g.Home)
				}
			}
		}
		if missing > 0 {
			s.Results = append(s.Results, warn("cross.odds",
				fmt.Sprintf("%d/%d partidos de hoy sin mercado", missing, len(games)),
				strings.Join(names, "; ")))
		} else {
			s.Results = append(s.Results, pass("cross.odds", "todos los partidos de hoy con mercado"))
		}
	}

	// calendario ↔ ratings
	if ratingsErr == nil {
		missing := 0
		for _, g := range games {
			if _, ok := ratings[g.Away]; !ok {
				missing++
			}
			if _, ok := ratings[g.Home]; !ok {
				missing++
			}
		}
		if missing > 0 {
			s.Results = append(s.Results, fail("cross.ratings",
				fmt.Sprintf("%d equipos de hoy sin rating", missing), "",
				fixRefresh(domain.FeedRatings)))
		} else {
			s.Results = append(s.Results, pass("cross.ratings", "todos los equipos de hoy con rating"))
		}
	}

	// lesiones ↔ impactos: un lesionado relevante sin impacto conocido no
	// mueve la línea, lo que silenciosamente infla la confianza
	if injErr == nil && impErr == nil {
		todayTeams := make(map[string]bool, len(games)*2)
		for _, g := range games {
			todayTeams[g.Away] = true
			todayTeams[g.Home] = true
		}
		uncovered := 0
		var names []string
		for _, inj := range injuries {
			if !todayTeams[inj.Team] || domain.StatusWeight(inj.Status) == 0 {
				continue
			}
			team, ok := impacts[inj.Team]
			if !ok {
				uncovered++
				continue
			}
			if _, ok := team[strings.ToLower(strings.TrimSpace(inj.Player))]; !ok {
				uncovered++
				if len(names) < 3 {
					names = append(names, inj.Player)
				}
			}
		}
		if uncovered > 0 {
			s.Results = append(s.Results, warn("cross.impact",
				fmt.Sprintf("%d lesionados de hoy sin impacto conocido", uncovered),
				strings.Join(names, "; ")))
		} else {
			s.Results = append(s.Results, pass("cross.impact", "lesionados de hoy cubiertos por impactos"))
		}
	}

	return s
}

// matchOdds busca el mercado de un partido, primero por la key
// "Away @ Home" canónica y después por los nombres completos del snapshot.
func matchOdds(odds map[string]domain.GameOdds, g domain.ScheduledGame) (domain.GameOdds, bool) {
	if o, ok := odds[g.Away+" @ "+g.Home]; ok {
		return o, true
	}
	for _, o := range odds {
		if domain.Canonicalize(o.AwayFull) == g.Away && domain.Canonicalize(o.HomeFull) == g.Home {
			return o, true
		}
	}
	return domain.GameOdds{}, false
}
