package backtest

import "errors"

var (
	// ErrNegativeCash means execution left the cash balance below zero.
	// This is an accounting invariant violation, never clamped, and it
	// aborts the whole run.
	ErrNegativeCash = errors.New("cash balance went negative after execution")

	// ErrOverAllocated means target weights summed above one before
	// any order was generated for the date.
	ErrOverAllocated = errors.New("target weights sum above one")

	// ErrNoTradingDates means the requested window contains no bars.
	ErrNoTradingDates = errors.New("no trading dates in the requested window")
)
