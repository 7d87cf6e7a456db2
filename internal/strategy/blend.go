package strategy

import "math"

// Regime classifies a momentum reading against the absolute threshold.
type Regime string

const (
	RegimeRiskOn  Regime = "RISK_ON"
	RegimeBlend   Regime = "BLEND"
	RegimeRiskOff Regime = "RISK_OFF"
)

// WeightingMode selects how slot strengths are assigned.
type WeightingMode string

const (
	// WeightEqual gives every selected slot the same strength.
	WeightEqual WeightingMode = "equal"
	// WeightMomentum sizes slots by positive momentum.
	WeightMomentum WeightingMode = "momentum"
)

// ClassifyMomentum maps a momentum reading to a regime and a risk-on
// ratio in [0, 1].
// ⭐ SSOT: 절대 모멘텀 판정은 여기서만
//
// The band [threshold-width, threshold+width] interpolates linearly
// between fully defensive (0) and fully invested (1). Width zero makes
// the switch binary at the threshold. NaN momentum is treated as risk
// off so missing data never buys risk assets.
func ClassifyMomentum(momentum, threshold, width float64) (Regime, float64) {
	if math.IsNaN(momentum) {
		return RegimeRiskOff, 0
	}
	if width <= 0 {
		if momentum >= threshold {
			return RegimeRiskOn, 1
		}
		return RegimeRiskOff, 0
	}
	switch {
	case momentum >= threshold+width:
		return RegimeRiskOn, 1
	case momentum <= threshold-width:
		return RegimeRiskOff, 0
	default:
		return RegimeBlend, (momentum - (threshold - width)) / (2 * width)
	}
}
