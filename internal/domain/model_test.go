package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func fullMatchup() MatchupData {
	return MatchupData{
		AwayRating: &TeamRating{
			Name: "Boston Celtics", OffRating: 118.0, DefRating: 110.0,
			NetRating: 8.0, Pace: 98.0, HomeNet: 10.0, RoadNet: 6.0,
		},
		HomeRating: &TeamRating{
			Name: "Denver Nuggets", OffRating: 116.0, DefRating: 112.0,
			NetRating: 4.0, Pace: 99.0, HomeNet: 9.0, RoadNet: -1.0,
		},
		AwayRest:          &RestPenalty{Team: "Boston Celtics", Penalty: 1.5},
		HomeRest:          &RestPenalty{Team: "Denver Nuggets", Penalty: 0},
		InjuryFeedPresent: true,
		ImpactFeedPresent: true,
	}
}

func TestPredictFairLine_SpreadIsNegatedHomeMargin(t *testing.T) {
	line := PredictFairLine(fullMatchup())
	margin := line.Efficiency + line.HomeCourt + line.Rest + line.StarTax
	assert.InDelta(t, -margin, line.Spread, 0.005)
}

func TestPredictFairLine_FullDataNoDegradation(t *testing.T) {
	line := PredictFairLine(fullMatchup())
	assert.Equal(t, 0, line.DegradedTerms)
}

func TestPredictFairLine_NoDataDegradesEverything(t *testing.T) {
	line := PredictFairLine(MatchupData{})
	// eficiencia, cancha, descanso y star tax caen a fallback
	assert.Equal(t, 4, line.DegradedTerms)
	assert.InDelta(t, -baselineHomeCourt, line.Spread, 0.005)
}

func TestEfficiencyTerm_PaceScaledAndRegressed(t *testing.T) {
	m := fullMatchup()
	var deg int
	eff, _ := efficiencyAndHomeCourt(m, &deg)
	// rawDiff = (116-110) - (118-112) = 0 para este par
	assert.InDelta(t, 0.0, eff, 0.005)

	// Subir la ofensiva del home 4 puntos mueve el término completo:
	// rawDiff=4, pace medio 98.5 → 4 × 0.985 × 0.75 = 2.955
	m.HomeRating.OffRating = 120.0
	deg = 0
	eff, _ = efficiencyAndHomeCourt(m, &deg)
	assert.InDelta(t, 2.955, eff, 0.005)
	assert.Equal(t, 0, deg)
}

func TestHomeCourt_DerivedFromSplitAndClamped(t *testing.T) {
	m := fullMatchup()
	var deg int
	_, hca := efficiencyAndHomeCourt(m, &deg)
	// split = 9 - (-1) = 10 → 5.0, clamp a 4.5
	assert.Equal(t, 4.5, hca)

	m.HomeRating.HomeNet = 2.0
	m.HomeRating.RoadNet = 1.0
	deg = 0
	_, hca = efficiencyAndHomeCourt(m, &deg)
	// split = 1 → 0.5, justo en el piso
	assert.Equal(t, 0.5, hca)
}

func TestHomeCourt_MissingSplitFallsBackToBaseline(t *testing.T) {
	m := fullMatchup()
	m.HomeRating.HomeNet = 0
	m.HomeRating.RoadNet = 0
	var deg int
	_, hca := efficiencyAndHomeCourt(m, &deg)
	assert.Equal(t, baselineHomeCourt, hca)
	assert.Equal(t, 1, deg)
}

func TestRestTerm_AwayPenaltyFavorsHome(t *testing.T) {
	m := fullMatchup()
	var deg int
	// away penalizado 1.5, home 0 → +1.5 de margen para el home
	assert.Equal(t, 1.5, restTerm(m, &deg))
	assert.Equal(t, 0, deg)
}

func TestRestTerm_PenaltiesClampedToFour(t *testing.T) {
	m := fullMatchup()
	m.AwayRest.Penalty = 9.0
	var deg int
	assert.Equal(t, 4.0, restTerm(m, &deg))
}

func TestStarTax_OutStarShiftsLineTowardOpponent(t *testing.T) {
	m := fullMatchup()
	m.HomeInjuries = []Injury{{Team: "Denver Nuggets", Player: "Nikola Jokic", Status: "Out"}}
	m.HomeImpacts = TeamImpacts{"nikola jokic": 12.0}
	var deg int
	tax, _ := starTaxTerm(m, &deg)
	// pérdida del home resta margen del home
	assert.InDelta(t, -12.0, tax, 0.005)
	assert.Equal(t, 0, deg)
}

func TestStarTax_ImpactClampedBeforeWeighting(t *testing.T) {
	m := fullMatchup()
	m.AwayInjuries = []Injury{{Team: "Boston Celtics", Player: "Jayson Tatum", Status: "Doubtful"}}
	m.AwayImpacts = TeamImpacts{"jayson tatum": 40.0}
	var deg int
	tax, _ := starTaxTerm(m, &deg)
	// clamp(40) = 15, × 0.8 doubtful = 12, lado away suma margen
	assert.InDelta(t, 12.0, tax, 0.005)
}

func TestStarTax_MissingFeedDegradesInsteadOfZeroSilently(t *testing.T) {
	m := fullMatchup()
	m.ImpactFeedPresent = false
	var deg int
	tax, _ := starTaxTerm(m, &deg)
	assert.Equal(t, 0.0, tax)
	assert.Equal(t, 1, deg)
}

func TestStarTax_QuestionablePlayersReported(t *testing.T) {
	m := fullMatchup()
	m.AwayInjuries = []Injury{
		{Player: "Jrue Holiday", Status: "Questionable"},
		{Player: "Al Horford", Status: "Out"},
	}
	_, q := starTaxTerm(m, new(int))
	assert.Equal(t, []string{"Jrue Holiday"}, q)
}

func TestClamp_Idempotent(t *testing.T) {
	assert.Equal(t, 4.0, Clamp(Clamp(9.0, -4, 4), -4, 4))
	assert.Equal(t, 2.5, Clamp(2.5, -4, 4))
}
