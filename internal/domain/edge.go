package domain

import "math"

// edge.go — edge contra mercado y sizing por Kelly fraccional.

// Parámetros del Kelly conservador. La probabilidad de cubrir se mapea
// linealmente desde el edge en puntos y se acota a un rango creíble:
// ningún edge de spread justifica >70% implícito.
const (
	kellyFraction = 0.25 // quarter-Kelly
	kellyPayout   = 0.91 // decimal neto de una línea -110
	probBase      = 0.524
	probPerPoint  = 0.015
	probFloor     = 0.48
	probCeiling   = 0.70
)

// DefaultEdgeCap es el techo de edge cuando la config no define otro.
// Un edge mayor casi siempre significa que el mercado sabe algo que el
// modelo no — se marca para revisión, no se apuesta más grande.
const DefaultEdgeCap = 10.0

// Edge es el resultado de comparar línea justa contra mercado.
type Edge struct {
	Raw    float64 // |fair - market|
	Capped float64 // min(Raw, cap)
	WasCap bool    // Raw > cap
}

// ComputeEdge calcula el edge capado entre la línea justa y la de mercado.
// cap <= 0 usa DefaultEdgeCap.
func ComputeEdge(fair, market, cap float64) Edge {
	if cap <= 0 {
		cap = DefaultEdgeCap
	}
	raw := round2(math.Abs(fair - market))
	e := Edge{Raw: raw, Capped: raw, WasCap: raw > cap}
	if e.WasCap {
		e.Capped = cap
	}
	return e
}

// WinProbability mapea edge en puntos → probabilidad implícita de cubrir.
func WinProbability(edge float64) float64 {
	if edge <= 0 {
		return probFloor
	}
	return Clamp(probBase+edge*probPerPoint, probFloor, probCeiling)
}

// KellyStake devuelve el porcentaje de bankroll a arriesgar (quarter-Kelly)
// para un edge dado. Guarda dura: edge <= 0 → stake 0, nunca negativo.
func KellyStake(edge float64) float64 {
	if edge <= 0 {
		return 0
	}
	p := WinProbability(edge)
	f := (kellyPayout*p - (1 - p)) / kellyPayout
	if f < 0 {
		f = 0
	}
	return round2(f * kellyFraction * 100)
}

// Confidence es el grado de confianza del modelo en una predicción.
type Confidence int

const (
	ConfidenceHigh Confidence = iota
	ConfidenceMedium
	ConfidenceLow
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceHigh:
		return "HIGH"
	case ConfidenceMedium:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

// ConfidenceFor deriva la confianza del número de términos degradados del
// motor y de la volatilidad de lesiones (jugadores GTD/questionable).
func ConfidenceFor(degradedTerms, questionable int) Confidence {
	switch {
	case degradedTerms >= 2 || questionable >= 2:
		return ConfidenceLow
	case degradedTerms == 1 || questionable == 1:
		return ConfidenceMedium
	default:
		return ConfidenceHigh
	}
}

// SignalTier clasifica una recomendación por fuerza de señal.
type SignalTier int

const (
	TierReviewRequired SignalTier = iota // edge capado: sospechoso, no accionable
	TierStrong
	TierLean
	TierLowEdge
)

func (t SignalTier) String() string {
	switch t {
	case TierReviewRequired:
		return "REVIEW REQUIRED"
	case TierStrong:
		return "STRONG SIGNAL"
	case TierLean:
		return "LEAN"
	default:
		return "LOW EDGE"
	}
}

// ClassifySignal cuantiza (edge, confianza) en un tier de señal.
// Un edge capado siempre es REVIEW REQUIRED por delante de todo lo demás.
func ClassifySignal(e Edge, c Confidence) SignalTier {
	switch {
	case e.WasCap:
		return TierReviewRequired
	case e.Capped >= 5 && c == ConfidenceHigh:
		return TierStrong
	case e.Capped >= 3:
		return TierLean
	default:
		return TierLowEdge
	}
}

// RecommendPick devuelve el lado que el modelo recomienda.
// Con líneas en convención home (negativa = home favorito): si la línea
// justa es más negativa que la de mercado, el modelo ve al home mejor de
// lo que paga el mercado → home; si no → away.
func RecommendPick(fair, market float64, away, home string) string {
	if fair < market {
		return home
	}
	return away
}
