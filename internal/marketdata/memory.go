package marketdata

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/schlafen318/dual-momentum-sub001/internal/timeseries"
)

// Compile-time interface check.
var _ Catalog = (*MemoryCatalog)(nil)

// MemoryCatalog keeps bars in process memory. It backs unit tests and
// synthetic scenarios where no storage file is wanted.
type MemoryCatalog struct {
	mu   sync.RWMutex
	bars map[string]map[time.Time]Bar
}

// NewMemoryCatalog returns an empty in-memory catalog.
func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{bars: make(map[string]map[time.Time]Bar)}
}

// SaveBars upserts bars keyed by (symbol, date).
func (c *MemoryCatalog) SaveBars(_ context.Context, bars []Bar) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, b := range bars {
		if err := b.Validate(); err != nil {
			return err
		}
		d := b.NormalizeDate()
		if c.bars[b.Symbol] == nil {
			c.bars[b.Symbol] = make(map[time.Time]Bar)
		}
		b.Date = d
		c.bars[b.Symbol][d] = b
	}
	return nil
}

// LoadBars returns the stored bars for symbol within [from, to].
func (c *MemoryCatalog) LoadBars(_ context.Context, symbol string, from, to time.Time) ([]Bar, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	f := timeseries.Normalize(from)
	t := timeseries.Normalize(to)

	var out []Bar
	for d, b := range c.bars[symbol] {
		if d.Before(f) || d.After(t) {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// Symbols lists stored symbols ascending.
func (c *MemoryCatalog) Symbols(_ context.Context) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]string, 0, len(c.bars))
	for s := range c.bars {
		out = append(out, s)
	}
	sort.Strings(out)
	return out, nil
}

// Close is a no-op for the in-memory backend.
func (c *MemoryCatalog) Close() error { return nil }
