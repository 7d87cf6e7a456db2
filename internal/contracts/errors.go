package contracts

import "errors"

// Shared sentinel errors raised across pipeline stages
var (
	// ErrInsufficientData not enough history for the requested computation
	ErrInsufficientData = errors.New("insufficient data")

	// ErrEmptyReturns a returns matrix with no symbols or observations
	ErrEmptyReturns = errors.New("empty returns matrix")

	// ErrRaggedReturns return series of unequal length
	ErrRaggedReturns = errors.New("ragged returns matrix")

	// ErrNoQuote no price available for a symbol on or before a date
	ErrNoQuote = errors.New("no quote available")
)
