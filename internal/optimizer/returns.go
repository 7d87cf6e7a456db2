package optimizer

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/schlafen318/dual-momentum-sub001/internal/contracts"
)

// BuildMatrix assembles an aligned daily returns matrix for the given
// symbols, ending at date, with window return observations each. The
// matrix is the common input to every optimizer; a symbol without
// enough usable history fails the whole build so the caller can fall
// back to strategy-native weights.
func BuildMatrix(quotes contracts.QuoteView, symbols []string, date time.Time, window int) (contracts.ReturnsMatrix, error) {
	if window < 1 {
		return contracts.ReturnsMatrix{}, fmt.Errorf("optimizer: window must be >= 1, got %d", window)
	}
	if len(symbols) == 0 {
		return contracts.ReturnsMatrix{}, contracts.ErrEmptyReturns
	}

	sorted := make([]string, len(symbols))
	copy(sorted, symbols)
	sort.Strings(sorted)

	m := contracts.ReturnsMatrix{
		Symbols: sorted,
		Series:  make([][]float64, len(sorted)),
	}
	for i, symbol := range sorted {
		closes := quotes.Closes(symbol, date, window+1)
		if len(closes) < window+1 {
			return contracts.ReturnsMatrix{}, fmt.Errorf("optimizer: %s has %d closes, need %d: %w",
				symbol, len(closes), window+1, contracts.ErrInsufficientData)
		}
		series := make([]float64, window)
		for j := 1; j < len(closes); j++ {
			prev, curr := closes[j-1], closes[j]
			if prev <= 0 || math.IsNaN(prev) || math.IsNaN(curr) {
				return contracts.ReturnsMatrix{}, fmt.Errorf("optimizer: %s has unusable close in window: %w",
					symbol, contracts.ErrInsufficientData)
			}
			series[j-1] = curr/prev - 1
		}
		m.Series[i] = series
	}
	return m, m.Validate()
}
