package risk

import (
	"math"
	"sort"
)

// VaRResult holds one historical VaR/CVaR reading
// ⭐ SSOT: 손실은 양수로 표현 (VaR=0.05 → 5% 손실 가능)
type VaRResult struct {
	Confidence float64 `json:"confidence"`
	VaR        float64 `json:"var"`
	CVaR       float64 `json:"cvar"`
}

// CalculateVaR computes historical-simulation VaR and CVaR from a
// daily return series. Returns are signed (gain positive); the result
// reports losses as positive magnitudes. A series with no losses at
// the confidence level yields zero.
func CalculateVaR(returns []float64, confidence float64) VaRResult {
	out := VaRResult{Confidence: confidence}
	if len(returns) == 0 || confidence <= 0 || confidence >= 1 {
		return out
	}

	sorted := make([]float64, len(returns))
	copy(sorted, returns)
	sort.Float64s(sorted)

	// 95% VaR reads the lower 5% percentile.
	idx := int(math.Floor((1 - confidence) * float64(len(sorted))))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}

	if sorted[idx] < 0 {
		out.VaR = -sorted[idx]
	}
	out.CVaR = tailLoss(sorted, idx)
	return out
}

// tailLoss averages the sorted returns up to and including idx,
// reported as a positive loss.
func tailLoss(sorted []float64, idx int) float64 {
	if len(sorted) == 0 || idx < 0 {
		return 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}

	sum := 0.0
	for i := 0; i <= idx; i++ {
		sum += sorted[i]
	}
	avg := sum / float64(idx+1)
	if avg < 0 {
		return -avg
	}
	return 0
}
