// Package timeseries provides date-indexed value series sorted in
// ascending order. The market data and performance layers build on it
// for price lookups, calendar alignment, and return computation.
package timeseries

import (
	"fmt"
	"sort"
	"time"
)

// Point is a single dated observation.
type Point struct {
	Date  time.Time
	Value float64
}

// Series is an immutable date-indexed series. Dates are strictly
// increasing and normalized to UTC midnight, so binary search lookups
// are valid on every method.
type Series struct {
	dates  []time.Time
	values []float64
}

// Normalize truncates a timestamp to UTC midnight. All series dates and
// lookup arguments pass through here so intraday components never break
// date equality.
func Normalize(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// New builds a series from unordered points. Duplicate dates keep the
// last value seen, matching upsert semantics of the storage backends.
func New(points []Point) *Series {
	byDate := make(map[time.Time]float64, len(points))
	for _, p := range points {
		byDate[Normalize(p.Date)] = p.Value
	}

	dates := make([]time.Time, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	values := make([]float64, len(dates))
	for i, d := range dates {
		values[i] = byDate[d]
	}
	return &Series{dates: dates, values: values}
}

// FromSorted wraps pre-sorted parallel slices without copying. The
// caller must not mutate the slices afterwards.
func FromSorted(dates []time.Time, values []float64) (*Series, error) {
	if len(dates) != len(values) {
		return nil, fmt.Errorf("timeseries.FromSorted: %d dates vs %d values", len(dates), len(values))
	}
	for i := 1; i < len(dates); i++ {
		if !dates[i-1].Before(dates[i]) {
			return nil, fmt.Errorf("timeseries.FromSorted: dates not strictly increasing at index %d", i)
		}
	}
	return &Series{dates: dates, values: values}, nil
}

// Len returns the number of observations.
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.dates)
}

// Date returns the i-th observation date.
func (s *Series) Date(i int) time.Time { return s.dates[i] }

// Value returns the i-th observation value.
func (s *Series) Value(i int) float64 { return s.values[i] }

// First returns the earliest observation.
func (s *Series) First() (Point, bool) {
	if s.Len() == 0 {
		return Point{}, false
	}
	return Point{Date: s.dates[0], Value: s.values[0]}, true
}

// Last returns the most recent observation.
func (s *Series) Last() (Point, bool) {
	if s.Len() == 0 {
		return Point{}, false
	}
	n := len(s.dates) - 1
	return Point{Date: s.dates[n], Value: s.values[n]}, true
}

// indexAtOrBefore returns the index of the most recent observation at
// or before date, or -1 when the date precedes the series.
func (s *Series) indexAtOrBefore(date time.Time) int {
	if s.Len() == 0 {
		return -1
	}
	d := Normalize(date)
	// First index strictly after d; the answer is the one before it.
	i := sort.Search(len(s.dates), func(i int) bool { return s.dates[i].After(d) })
	return i - 1
}

// At returns the value observed exactly on date.
func (s *Series) At(date time.Time) (float64, bool) {
	i := s.indexAtOrBefore(date)
	if i < 0 || !s.dates[i].Equal(Normalize(date)) {
		return 0, false
	}
	return s.values[i], true
}

// AtOrBefore returns the most recent value at or before date. This is
// the carry-forward lookup used for valuation on days an asset did not
// trade.
func (s *Series) AtOrBefore(date time.Time) (float64, bool) {
	i := s.indexAtOrBefore(date)
	if i < 0 {
		return 0, false
	}
	return s.values[i], true
}

// PointAtOrBefore is AtOrBefore with the observation date included.
func (s *Series) PointAtOrBefore(date time.Time) (Point, bool) {
	i := s.indexAtOrBefore(date)
	if i < 0 {
		return Point{}, false
	}
	return Point{Date: s.dates[i], Value: s.values[i]}, true
}

// CountAtOrBefore returns the number of observations at or before date.
func (s *Series) CountAtOrBefore(date time.Time) int {
	return s.indexAtOrBefore(date) + 1
}

// Slice returns the sub-series with from <= date <= to. The result
// shares backing arrays with the receiver.
func (s *Series) Slice(from, to time.Time) *Series {
	if s.Len() == 0 {
		return &Series{}
	}
	f := Normalize(from)
	t := Normalize(to)
	lo := sort.Search(len(s.dates), func(i int) bool { return !s.dates[i].Before(f) })
	hi := sort.Search(len(s.dates), func(i int) bool { return s.dates[i].After(t) })
	if lo >= hi {
		return &Series{}
	}
	return &Series{dates: s.dates[lo:hi], values: s.values[lo:hi]}
}

// Dates returns a copy of the observation dates.
func (s *Series) Dates() []time.Time {
	out := make([]time.Time, s.Len())
	copy(out, s.dates)
	return out
}

// Values returns a copy of the observation values.
func (s *Series) Values() []float64 {
	out := make([]float64, s.Len())
	copy(out, s.values)
	return out
}

// Align projects the series onto a calendar using carry-forward.
// Calendar dates before the first observation are dropped, so the
// aligned series always starts with a real value.
func (s *Series) Align(calendar []time.Time) *Series {
	dates := make([]time.Time, 0, len(calendar))
	values := make([]float64, 0, len(calendar))
	for _, d := range calendar {
		v, ok := s.AtOrBefore(d)
		if !ok {
			continue
		}
		dates = append(dates, Normalize(d))
		values = append(values, v)
	}
	return &Series{dates: dates, values: values}
}

// Returns computes simple period returns between consecutive
// observations. The result has Len()-1 entries.
func (s *Series) Returns() []float64 {
	if s.Len() < 2 {
		return nil
	}
	out := make([]float64, 0, s.Len()-1)
	for i := 1; i < s.Len(); i++ {
		prev := s.values[i-1]
		if prev == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, s.values[i]/prev-1)
	}
	return out
}

// UnionDates merges multiple sorted date sets into one ascending
// calendar without duplicates.
func UnionDates(sets ...[]time.Time) []time.Time {
	seen := make(map[time.Time]struct{})
	for _, set := range sets {
		for _, d := range set {
			seen[Normalize(d)] = struct{}{}
		}
	}
	out := make([]time.Time, 0, len(seen))
	for d := range seen {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
