package domain

import (
	"math"
	"strings"
)

// model.go — motor de línea justa.
//
// Convención de signo (contrato testeado, no herencia del modelo viejo):
// la línea justa se cotiza como un spread de mercado para el HOME —
// negativa = home favorito por |x| puntos. Igual que la línea que el
// operador teclea ("-5.5" = home da 5.5).
//
// Cada término se calcula en espacio "margen del home" (positivo = home
// gana por eso) y el spread final es el margen negado. Un término sin
// datos aporta 0 y suma al contador de términos degradados — el motor
// nunca falla: menos datos es menos confianza, no un error.

// Baselines de liga para cuando un feed falta por completo.
const (
	baselineOffRating = 112.0
	baselineDefRating = 112.0
	baselinePace      = 99.5
	baselineHomeCourt = 2.5
)

// Parámetros del modelo.
const (
	// Amortiguación del diferencial de eficiencia hacia la media.
	// Ratings de ventanas cortas sobre-reaccionan; 0.75 regresa el 25%.
	effRegression = 0.75

	// Límites del término dinámico de cancha: medio split home/road,
	// acotado a un rango plausible NBA.
	homeCourtMin = 0.5
	homeCourtMax = 4.5

	// Clamp del on/off rating individual antes de pesarlo por estado.
	impactClampLo = -15.0
	impactClampHi = 15.0
)

// Clamp acota v a [lo, hi]. Idempotente por construcción.
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// MatchupData son los insumos cacheados para predecir un partido.
// Cualquier campo puede venir nil/vacío: el término correspondiente
// degrada a cero.
type MatchupData struct {
	AwayRating *TeamRating
	HomeRating *TeamRating

	AwayRest *RestPenalty
	HomeRest *RestPenalty

	AwayInjuries []Injury
	HomeInjuries []Injury

	AwayImpacts TeamImpacts
	HomeImpacts TeamImpacts

	// InjuryFeedPresent/ImpactFeedPresent distinguen "feed ausente"
	// (término degradado) de "liga sana / sin impactos listados"
	// (término legítimamente cero).
	InjuryFeedPresent bool
	ImpactFeedPresent bool
}

// FairLine es la línea justa con el desglose por término.
type FairLine struct {
	Spread float64 // convención home: negativo = home favorito

	// Términos en espacio margen-del-home.
	Efficiency float64
	HomeCourt  float64
	Rest       float64
	StarTax    float64

	// DegradedTerms cuenta cuántos de los 4 términos cayeron a su
	// fallback por falta de datos. Alimenta la confianza del señal.
	DegradedTerms int

	// Questionable lista jugadores con disponibilidad incierta en el
	// partido (guardia de volatilidad).
	Questionable []string
}

// PredictFairLine calcula la línea justa para (away @ home).
// Nunca falla y siempre devuelve un spread finito: sin ningún feed
// presente degrada a los baselines de liga.
func PredictFairLine(m MatchupData) FairLine {
	var out FairLine

	out.Efficiency, out.HomeCourt = efficiencyAndHomeCourt(m, &out.DegradedTerms)
	out.Rest = restTerm(m, &out.DegradedTerms)
	out.StarTax, out.Questionable = starTaxTerm(m, &out.DegradedTerms)

	homeMargin := out.Efficiency + out.HomeCourt + out.Rest + out.StarTax
	out.Spread = round2(-homeMargin)
	return out
}

// efficiencyAndHomeCourt calcula el diferencial de eficiencia escalado por
// pace y el término dinámico de cancha. Comparten feed (ratings), pero
// degradan por separado: un cache sin splits home/road aún aporta
// eficiencia.
func efficiencyAndHomeCourt(m MatchupData, degraded *int) (eff, hca float64) {
	home, away := m.HomeRating, m.AwayRating

	if home == nil || away == nil {
		*degraded += 2 // eficiencia y cancha caen juntos sin ratings
		return 0, baselineHomeCourt
	}

	rawDiff := (home.OffRating - away.DefRating) - (away.OffRating - home.DefRating)
	avgPace := (home.Pace + away.Pace) / 2
	if avgPace <= 0 {
		avgPace = baselinePace
	}
	eff = rawDiff * (avgPace / 100) * effRegression

	// Ventaja de cancha por equipo: la mitad del split home/road de net
	// rating del home, acotada. Split ausente (ambos cero) degrada al
	// baseline plano.
	split := home.HomeNet - home.RoadNet
	if home.HomeNet == 0 && home.RoadNet == 0 {
		*degraded++
		return eff, baselineHomeCourt
	}
	hca = Clamp(split/2, homeCourtMin, homeCourtMax)
	return eff, hca
}

// restTerm devuelve la contribución de descanso en margen-del-home:
// la penalización del away empuja el margen a favor del home y viceversa.
func restTerm(m MatchupData, degraded *int) float64 {
	if m.AwayRest == nil && m.HomeRest == nil {
		*degraded++
		return 0
	}
	var away, home float64
	if m.AwayRest != nil {
		away = Clamp(m.AwayRest.Penalty, -4, 4)
	}
	if m.HomeRest != nil {
		home = Clamp(m.HomeRest.Penalty, -4, 4)
	}
	return away - home
}

// starTaxTerm suma el impacto de los jugadores señalados en el parte de
// lesiones, clampeado y pesado por estado. La pérdida del home resta
// margen; la del away lo suma — signos opuestos para mantener una sola
// convención de spread.
func starTaxTerm(m MatchupData, degraded *int) (float64, []string) {
	if !m.InjuryFeedPresent || !m.ImpactFeedPresent {
		*degraded++
		return 0, questionablePlayers(m.AwayInjuries, m.HomeInjuries)
	}

	awayLoss := teamImpactLoss(m.AwayInjuries, m.AwayImpacts)
	homeLoss := teamImpactLoss(m.HomeInjuries, m.HomeImpacts)
	return round2(awayLoss - homeLoss), questionablePlayers(m.AwayInjuries, m.HomeInjuries)
}

// teamImpactLoss suma clamp(onOff) × peso(status) sobre los lesionados
// del equipo con impacto conocido.
func teamImpactLoss(injuries []Injury, impacts TeamImpacts) float64 {
	var loss float64
	for _, inj := range injuries {
		w := StatusWeight(inj.Status)
		if w == 0 {
			continue
		}
		raw, ok := impacts[strings.ToLower(strings.TrimSpace(inj.Player))]
		if !ok {
			continue
		}
		loss += Clamp(raw, impactClampLo, impactClampHi) * w
	}
	return loss
}

// questionablePlayers lista jugadores con estado volátil en el partido.
func questionablePlayers(groups ...[]Injury) []string {
	var out []string
	for _, injuries := range groups {
		for _, inj := range injuries {
			if Volatile(inj.Status) {
				out = append(out, inj.Player)
			}
		}
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
