package contracts

import (
	"context"
	"time"
)

// QuoteView provides read-only access to the price history during a run.
// ⭐ SSOT: 엔진/전략/트랜슬레이터의 시세 접근은 이 인터페이스로만
// Implementations must be immutable for the duration of a simulation.
type QuoteView interface {
	// Close returns the close for an exact trading date.
	Close(symbol string, date time.Time) (float64, bool)

	// CloseAtOrBefore returns the last known close at or before date,
	// with the date it was observed. Used for carry-forward valuation.
	CloseAtOrBefore(symbol string, date time.Time) (float64, time.Time, bool)

	// Closes returns up to n trailing closes ending at date, carry-forward
	// aligned on the trading calendar, oldest first.
	Closes(symbol string, date time.Time, n int) []float64

	// Symbols returns all symbols in ascending order.
	Symbols() []string

	// TradingDates returns the union of all symbols' bar dates within
	// [from, to], ascending.
	TradingDates(from, to time.Time) []time.Time

	// BarCount returns the number of bars available for symbol at or
	// before date. Strategies use it to gate on minimum history.
	BarCount(symbol string, date time.Time) int
}

// Strategy produces signals for a rebalance date (S1)
// ⭐ SSOT: 전략 시그널 산출 인터페이스
type Strategy interface {
	// Name returns the unique identifier for this strategy.
	Name() string

	// MinHistory returns the minimum number of bars a symbol needs
	// before the strategy can score it.
	MinHistory() int

	// Frequency returns the rebalance cadence the strategy wants the
	// simulation clock to drive.
	Frequency() Frequency

	// Evaluate returns the signals for the given date. An empty list
	// means hold the current portfolio for this rebalance.
	Evaluate(ctx context.Context, date time.Time, quotes QuoteView) (SignalList, error)
}

// Optimizer computes portfolio weights from a returns matrix (S2 substitution)
type Optimizer interface {
	// Name returns the unique identifier for this optimizer.
	Name() string

	// MinHistory returns the minimum return observations per symbol.
	MinHistory() int

	// Weights returns weights summing to 1.0 over the matrix symbols.
	Weights(returns ReturnsMatrix) (map[string]float64, error)
}

// RiskManager transforms target weights before execution (S2 overlay)
type RiskManager interface {
	// Adjust returns the adjusted weights. Implementations must not
	// increase the total weight.
	Adjust(ctx context.Context, date time.Time, weights TargetWeights) (TargetWeights, error)
}

// ReturnsMatrix holds aligned daily return series for a set of symbols.
// Series[i] belongs to Symbols[i]; all series have equal length, oldest first.
type ReturnsMatrix struct {
	Symbols []string    `json:"symbols"`
	Series  [][]float64 `json:"series"`
}

// Observations returns the common series length
func (m ReturnsMatrix) Observations() int {
	if len(m.Series) == 0 {
		return 0
	}
	return len(m.Series[0])
}

// Validate checks the matrix is rectangular and non-empty
func (m ReturnsMatrix) Validate() error {
	if len(m.Symbols) == 0 {
		return ErrEmptyReturns
	}
	if len(m.Symbols) != len(m.Series) {
		return ErrRaggedReturns
	}
	n := len(m.Series[0])
	for _, s := range m.Series {
		if len(s) != n {
			return ErrRaggedReturns
		}
	}
	if n == 0 {
		return ErrEmptyReturns
	}
	return nil
}
