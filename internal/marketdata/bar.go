// Package marketdata loads daily price history from pluggable storage
// backends and serves it to the simulation through an immutable view.
package marketdata

import (
	"fmt"
	"math"
	"time"

	"github.com/schlafen318/dual-momentum-sub001/internal/timeseries"
)

// Bar is a single daily OHLCV observation
// ⭐ SSOT: 일봉 데이터는 이 구조체로만
type Bar struct {
	Symbol string    `json:"symbol"`
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Validate checks structural fields only. Price sanity is deliberately
// not enforced here: bad closes must survive loading so the execution
// stage can skip and warn on them.
func (b Bar) Validate() error {
	if b.Symbol == "" {
		return fmt.Errorf("marketdata: bar missing symbol")
	}
	if b.Date.IsZero() {
		return fmt.Errorf("marketdata: bar for %s missing date", b.Symbol)
	}
	return nil
}

// HasValidClose reports whether the close is usable for pricing orders.
func (b Bar) HasValidClose() bool {
	return !math.IsNaN(b.Close) && !math.IsInf(b.Close, 0) && b.Close > 0
}

// NormalizeDate returns the bar date truncated to UTC midnight.
func (b Bar) NormalizeDate() time.Time {
	return timeseries.Normalize(b.Date)
}
