package marketdata

import (
	"context"
	"fmt"
	"time"
)

// Catalog is the storage abstraction for daily bars. Each backend
// (memory, SQLite, Parquet, Postgres) implements it; the engine only
// ever sees a History built from one.
type Catalog interface {
	// SaveBars upserts bars, last write wins per (symbol, date).
	SaveBars(ctx context.Context, bars []Bar) error

	// LoadBars returns bars for symbol with from <= date <= to,
	// ascending by date.
	LoadBars(ctx context.Context, symbol string, from, to time.Time) ([]Bar, error)

	// Symbols lists all stored symbols in ascending order.
	Symbols(ctx context.Context) ([]string, error)

	// Close releases backend resources.
	Close() error
}

// LoadHistory pulls the requested symbols from a catalog and builds the
// immutable History the simulation runs against. Symbols with no bars
// in range are reported as an error rather than silently dropped.
func LoadHistory(ctx context.Context, c Catalog, symbols []string, from, to time.Time) (*History, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("marketdata.LoadHistory: no symbols requested")
	}

	var all []Bar
	for _, symbol := range symbols {
		bars, err := c.LoadBars(ctx, symbol, from, to)
		if err != nil {
			return nil, fmt.Errorf("marketdata.LoadHistory: %s: %w", symbol, err)
		}
		if len(bars) == 0 {
			return nil, fmt.Errorf("marketdata.LoadHistory: no bars for %s in [%s, %s]",
				symbol, from.Format("2006-01-02"), to.Format("2006-01-02"))
		}
		all = append(all, bars...)
	}
	return NewHistory(all), nil
}
