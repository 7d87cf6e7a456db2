package backtest

import (
	"time"

	"github.com/schlafen318/dual-momentum-sub001/internal/contracts"
	"github.com/schlafen318/dual-momentum-sub001/internal/timeseries"
)

// Clock owns the simulation calendar and the rebalance cadence. The
// calendar is the sorted union of every symbol's bar dates inside the
// run window; valuation happens on every date, rebalancing only when
// the frequency period rolls over.
type Clock struct {
	dates     []time.Time
	frequency contracts.Frequency
}

// NewClock builds a clock from raw bar dates. Input order does not
// matter; the calendar is sorted and deduplicated here so the rest of
// the engine can rely on it.
func NewClock(dates []time.Time, frequency contracts.Frequency) (*Clock, error) {
	if len(dates) == 0 {
		return nil, ErrNoTradingDates
	}
	return &Clock{
		dates:     timeseries.UnionDates(dates),
		frequency: frequency,
	}, nil
}

// Dates returns the full trading calendar, ascending.
func (c *Clock) Dates() []time.Time {
	out := make([]time.Time, len(c.dates))
	copy(out, c.dates)
	return out
}

// Len returns the number of trading days.
func (c *Clock) Len() int { return len(c.dates) }

// ShouldRebalance reports whether date starts a new rebalance period
// relative to the last rebalance. The first call of a run (zero
// lastRebalance) always rebalances.
func (c *Clock) ShouldRebalance(date, lastRebalance time.Time) bool {
	if lastRebalance.IsZero() {
		return true
	}
	return periodKey(date, c.frequency) != periodKey(lastRebalance, c.frequency)
}

// periodKey collapses a date onto its rebalance period so that cadence
// checks are a simple comparison.
func periodKey(date time.Time, f contracts.Frequency) [2]int {
	d := date.UTC()
	switch f {
	case contracts.FrequencyDaily:
		return [2]int{d.Year(), d.YearDay()}
	case contracts.FrequencyWeekly:
		year, week := d.ISOWeek()
		return [2]int{year, week}
	case contracts.FrequencyMonthly:
		return [2]int{d.Year(), int(d.Month())}
	case contracts.FrequencyQuarterly:
		return [2]int{d.Year(), (int(d.Month()) - 1) / 3}
	default:
		return [2]int{d.Year(), d.YearDay()}
	}
}
