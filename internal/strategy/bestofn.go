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
var _ contracts.Strategy = (*BestOfN)(nil)

// BestOfN is the classic single-winner rotation: hold the one universe
// symbol with the highest trailing momentum, or the safe asset when
// even the winner fails the absolute threshold. The blend band does
// not apply here; the switch is binary.
type BestOfN struct {
	universe   []string
	safeSymbol string
	lookback   int
	threshold  float64
	frequency  contracts.Frequency
}

// NewBestOfN validates params and builds the strategy.
func NewBestOfN(p Params) (*BestOfN, error) {
	if len(p.Universe) == 0 {
		return nil, fmt.Errorf("best_of_n: universe is empty")
	}
	if p.Lookback < 1 {
		return nil, fmt.Errorf("best_of_n: lookback must be >= 1, got %d", p.Lookback)
	}
	frequency := p.Frequency
	if frequency == "" {
		frequency = contracts.FrequencyMonthly
	}
	if !frequency.IsValid() {
		return nil, fmt.Errorf("best_of_n: invalid frequency %q", frequency)
	}

	universe := make([]string, len(p.Universe))
	copy(universe, p.Universe)
	sort.Strings(universe)

	return &BestOfN{
		universe:   universe,
		safeSymbol: p.SafeSymbol,
		lookback:   p.Lookback,
		threshold:  p.AbsThreshold,
		frequency:  frequency,
	}, nil
}

// Name returns the registry key.
func (s *BestOfN) Name() string { return "best_of_n" }

// MinHistory returns the bars needed to compute one momentum reading.
func (s *BestOfN) MinHistory() int { return s.lookback + 1 }

// Frequency returns the configured rebalance cadence.
func (s *BestOfN) Frequency() contracts.Frequency { return s.frequency }

// Evaluate picks the single best momentum symbol as of date.
func (s *BestOfN) Evaluate(_ context.Context, date time.Time, quotes contracts.QuoteView) (contracts.SignalList, error) {
	best := ""
	bestMomentum := math.Inf(-1)
	for _, symbol := range s.universe {
		if quotes.BarCount(symbol, date) < s.MinHistory() {
			continue
		}
		closes := quotes.Closes(symbol, date, s.MinHistory())
		if len(closes) < s.MinHistory() {
			continue
		}
		base := closes[0]
		last := closes[len(closes)-1]
		if base <= 0 || math.IsNaN(base) || math.IsNaN(last) {
			continue
		}
		m := last/base - 1
		if m > bestMomentum {
			best = symbol
			bestMomentum = m
		}
	}
	if best == "" {
		return nil, nil
	}

	if bestMomentum >= s.threshold {
		return contracts.SignalList{contracts.NewSignal(best, date, 1, bestMomentum)}, nil
	}
	if s.safeSymbol == "" {
		return nil, nil
	}
	return contracts.SignalList{contracts.NewDefensiveSignal(s.safeSymbol, date, 1)}, nil
}
