package strategy

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/schlafen318/dual-momentum-sub001/internal/contracts"
)

// Compile-time interface check.
var _ contracts.Strategy = (*DualMomentum)(nil)

// DualMomentum ranks the risk universe by trailing momentum (relative
// momentum), keeps the top N, then checks each survivor against the
// absolute momentum threshold. Slots that fail the absolute check
// rotate into the safe asset; readings inside the blend band split the
// slot between both.
type DualMomentum struct {
	universe   []string
	safeSymbol string
	lookback   int
	topN       int
	threshold  float64
	width      float64
	weighting  WeightingMode
	frequency  contracts.Frequency
}

// NewDualMomentum validates params and builds the strategy.
func NewDualMomentum(p Params) (*DualMomentum, error) {
	if len(p.Universe) == 0 {
		return nil, fmt.Errorf("dual_momentum: universe is empty")
	}
	if p.Lookback < 1 {
		return nil, fmt.Errorf("dual_momentum: lookback must be >= 1, got %d", p.Lookback)
	}
	topN := p.TopN
	if topN < 1 {
		topN = 1
	}
	if topN > len(p.Universe) {
		topN = len(p.Universe)
	}
	if p.BlendWidth < 0 {
		return nil, fmt.Errorf("dual_momentum: blend_width must be >= 0, got %f", p.BlendWidth)
	}
	weighting := p.Weighting
	if weighting == "" {
		weighting = WeightEqual
	}
	if weighting != WeightEqual && weighting != WeightMomentum {
		return nil, fmt.Errorf("dual_momentum: unknown weighting %q", weighting)
	}
	frequency := p.Frequency
	if frequency == "" {
		frequency = contracts.FrequencyMonthly
	}
	if !frequency.IsValid() {
		return nil, fmt.Errorf("dual_momentum: invalid frequency %q", frequency)
	}

	universe := make([]string, len(p.Universe))
	copy(universe, p.Universe)
	sort.Strings(universe)

	return &DualMomentum{
		universe:   universe,
		safeSymbol: p.SafeSymbol,
		lookback:   p.Lookback,
		topN:       topN,
		threshold:  p.AbsThreshold,
		width:      p.BlendWidth,
		weighting:  weighting,
		frequency:  frequency,
	}, nil
}

// Name returns the registry key.
func (s *DualMomentum) Name() string { return "dual_momentum" }

// MinHistory returns the bars needed to compute one momentum reading.
func (s *DualMomentum) MinHistory() int { return s.lookback + 1 }

// Frequency returns the configured rebalance cadence.
func (s *DualMomentum) Frequency() contracts.Frequency { return s.frequency }

type scoredSymbol struct {
	symbol   string
	momentum float64
}

// Evaluate scores the universe as of date and emits one signal per
// kept slot. Symbols without enough history are skipped, and an empty
// result means no allocation at all.
func (s *DualMomentum) Evaluate(_ context.Context, date time.Time, quotes contracts.QuoteView) (contracts.SignalList, error) {
	scored := make([]scoredSymbol, 0, len(s.universe))
	for _, symbol := range s.universe {
		m, ok := s.momentum(symbol, date, quotes)
		if !ok {
			continue
		}
		scored = append(scored, scoredSymbol{symbol: symbol, momentum: m})
	}
	if len(scored) == 0 {
		return nil, nil
	}

	// Rank by momentum descending; ties break on symbol so runs with
	// identical inputs always produce identical output.
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].momentum != scored[j].momentum {
			return scored[i].momentum > scored[j].momentum
		}
		return scored[i].symbol < scored[j].symbol
	})

	top := scored
	if len(top) > s.topN {
		top = top[:s.topN]
	}

	signals := make(contracts.SignalList, 0, len(top))
	for _, cand := range top {
		regime, ratio := ClassifyMomentum(cand.momentum, s.threshold, s.width)
		strength := s.strength(cand.momentum)

		switch regime {
		case RegimeRiskOn:
			signals = append(signals, contracts.NewSignal(cand.symbol, date, strength, cand.momentum))
		case RegimeBlend:
			signals = append(signals, contracts.NewBlendSignal(cand.symbol, date, strength, cand.momentum, ratio))
		case RegimeRiskOff:
			if s.safeSymbol == "" {
				// No safe asset configured: the slot stays in cash.
				continue
			}
			signals = append(signals, contracts.NewDefensiveSignal(s.safeSymbol, date, strength))
		}
	}
	return signals, nil
}

// momentum computes close(t)/close(t-lookback) - 1 on the carry-forward
// aligned calendar.
func (s *DualMomentum) momentum(symbol string, date time.Time, quotes contracts.QuoteView) (float64, bool) {
	if quotes.BarCount(symbol, date) < s.MinHistory() {
		return 0, false
	}
	closes := quotes.Closes(symbol, date, s.MinHistory())
	if len(closes) < s.MinHistory() {
		return 0, false
	}
	base := closes[0]
	last := closes[len(closes)-1]
	if base <= 0 || math.IsNaN(base) || math.IsNaN(last) {
		return 0, false
	}
	return last/base - 1, true
}

func (s *DualMomentum) strength(momentum float64) float64 {
	if s.weighting == WeightMomentum {
		return math.Max(momentum, 0)
	}
	return 1
}
