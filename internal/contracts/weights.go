package contracts

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// WeightEpsilon is the tolerance for the target weight sum invariant
const WeightEpsilon = 1e-9

// TargetWeights represents the target portfolio weights for one rebalance
// ⭐ SSOT: Translator → Executor 목표 비중 전달
// 비중의 합은 1.0을 넘을 수 없음 (남는 부분은 현금)
type TargetWeights struct {
	Date         time.Time          `json:"date"`
	Weights      map[string]float64 `json:"weights"`
	FallbackUsed bool               `json:"fallback_used"` // optimizer fell back to strategy weights
}

// NewTargetWeights creates an empty target for the given date
func NewTargetWeights(date time.Time) TargetWeights {
	return TargetWeights{
		Date:    date,
		Weights: make(map[string]float64),
	}
}

// Total returns the sum of all weights
func (tw TargetWeights) Total() float64 {
	total := 0.0
	for _, w := range tw.Weights {
		total += w
	}
	return total
}

// CashWeight returns the implied cash fraction, clamped at zero
func (tw TargetWeights) CashWeight() float64 {
	cash := 1.0 - tw.Total()
	if cash < 0 {
		return 0
	}
	return cash
}

// Symbols returns the target symbols in deterministic order
func (tw TargetWeights) Symbols() []string {
	symbols := make([]string, 0, len(tw.Weights))
	for sym := range tw.Weights {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)
	return symbols
}

// Add accumulates weight for a symbol
func (tw TargetWeights) Add(symbol string, weight float64) {
	tw.Weights[symbol] += weight
}

// Count returns the number of target symbols
func (tw TargetWeights) Count() int {
	return len(tw.Weights)
}

// Validate checks the long-only weight invariants.
// 위반 시 치명적: 주문 생성 전에 반드시 호출
func (tw TargetWeights) Validate() error {
	for sym, w := range tw.Weights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("target weights: %s is not finite", sym)
		}
		if w < 0 {
			return fmt.Errorf("target weights: %s is negative (%f), long-only", sym, w)
		}
		if w > 1+WeightEpsilon {
			return fmt.Errorf("target weights: %s exceeds 1.0 (%f)", sym, w)
		}
	}
	if total := tw.Total(); total > 1+WeightEpsilon {
		return fmt.Errorf("target weights: sum %.12f exceeds 1.0", total)
	}
	return nil
}

// Clone returns a deep copy
func (tw TargetWeights) Clone() TargetWeights {
	out := TargetWeights{
		Date:         tw.Date,
		Weights:      make(map[string]float64, len(tw.Weights)),
		FallbackUsed: tw.FallbackUsed,
	}
	for sym, w := range tw.Weights {
		out.Weights[sym] = w
	}
	return out
}
