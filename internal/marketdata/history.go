package marketdata

import (
	"sort"
	"time"

	"github.com/schlafen318/dual-momentum-sub001/internal/contracts"
	"github.com/schlafen318/dual-momentum-sub001/internal/timeseries"
)

// Compile-time interface check.
var _ contracts.QuoteView = (*History)(nil)

// History is the immutable in-memory price history for one simulation.
// It indexes per-symbol close series plus the union trading calendar,
// so every lookup during the run is a binary search, never I/O.
type History struct {
	closes   map[string]*timeseries.Series
	symbols  []string
	calendar []time.Time
	calIndex map[time.Time]int
}

// NewHistory builds a History from raw bars. Non-positive and NaN
// closes are kept as-is; the execution stage decides what to do with
// them. Duplicate (symbol, date) pairs keep the last bar seen.
func NewHistory(bars []Bar) *History {
	points := make(map[string][]timeseries.Point)
	for _, b := range bars {
		points[b.Symbol] = append(points[b.Symbol], timeseries.Point{
			Date:  b.Date,
			Value: b.Close,
		})
	}

	h := &History{
		closes:   make(map[string]*timeseries.Series, len(points)),
		symbols:  make([]string, 0, len(points)),
		calIndex: make(map[time.Time]int),
	}

	dateSets := make([][]time.Time, 0, len(points))
	for symbol, pts := range points {
		s := timeseries.New(pts)
		h.closes[symbol] = s
		h.symbols = append(h.symbols, symbol)
		dateSets = append(dateSets, s.Dates())
	}
	sort.Strings(h.symbols)

	h.calendar = timeseries.UnionDates(dateSets...)
	for i, d := range h.calendar {
		h.calIndex[d] = i
	}
	return h
}

// Close returns the close for an exact trading date.
func (h *History) Close(symbol string, date time.Time) (float64, bool) {
	s, ok := h.closes[symbol]
	if !ok {
		return 0, false
	}
	return s.At(date)
}

// CloseAtOrBefore returns the last known close at or before date along
// with the date it was observed.
func (h *History) CloseAtOrBefore(symbol string, date time.Time) (float64, time.Time, bool) {
	s, ok := h.closes[symbol]
	if !ok {
		return 0, time.Time{}, false
	}
	p, ok := s.PointAtOrBefore(date)
	if !ok {
		return 0, time.Time{}, false
	}
	return p.Value, p.Date, true
}

// Closes returns up to n trailing closes ending at date, carry-forward
// aligned on the trading calendar, oldest first. Calendar days before
// the symbol's first bar are omitted, so short listings return fewer
// than n values.
func (h *History) Closes(symbol string, date time.Time, n int) []float64 {
	s, ok := h.closes[symbol]
	if !ok || n <= 0 {
		return nil
	}

	end := h.calendarIndexAtOrBefore(date)
	if end < 0 {
		return nil
	}
	start := end - n + 1
	if start < 0 {
		start = 0
	}

	out := make([]float64, 0, end-start+1)
	for i := start; i <= end; i++ {
		v, ok := s.AtOrBefore(h.calendar[i])
		if !ok {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Symbols returns all symbols in ascending order.
func (h *History) Symbols() []string {
	out := make([]string, len(h.symbols))
	copy(out, h.symbols)
	return out
}

// TradingDates returns the union of all symbols' bar dates within
// [from, to], ascending.
func (h *History) TradingDates(from, to time.Time) []time.Time {
	f := timeseries.Normalize(from)
	t := timeseries.Normalize(to)
	lo := sort.Search(len(h.calendar), func(i int) bool { return !h.calendar[i].Before(f) })
	hi := sort.Search(len(h.calendar), func(i int) bool { return h.calendar[i].After(t) })
	if lo >= hi {
		return nil
	}
	out := make([]time.Time, hi-lo)
	copy(out, h.calendar[lo:hi])
	return out
}

// BarCount returns the number of real bars for symbol at or before
// date. Carried-forward calendar days do not count.
func (h *History) BarCount(symbol string, date time.Time) int {
	s, ok := h.closes[symbol]
	if !ok {
		return 0
	}
	return s.CountAtOrBefore(date)
}

// Series exposes the close series for a symbol. Benchmark alignment in
// the performance stage reads prices through this.
func (h *History) Series(symbol string) (*timeseries.Series, bool) {
	s, ok := h.closes[symbol]
	return s, ok
}

func (h *History) calendarIndexAtOrBefore(date time.Time) int {
	d := timeseries.Normalize(date)
	i := sort.Search(len(h.calendar), func(i int) bool { return h.calendar[i].After(d) })
	return i - 1
}
