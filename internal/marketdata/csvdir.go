package marketdata

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/schlafen318/dual-momentum-sub001/internal/timeseries"
)

// Compile-time interface check.
var _ Catalog = (*CSVCatalog)(nil)

// CSVCatalog serves bars from a flat directory of <SYMBOL>.csv files.
// It suits small research universes kept under version control; large
// archives belong in the sqlite/parquet/postgres backends.
type CSVCatalog struct {
	dir string
}

// NewCSVCatalog uses dir as the bar file root, created lazily on the
// first write.
func NewCSVCatalog(dir string) *CSVCatalog {
	return &CSVCatalog{dir: dir}
}

func (c *CSVCatalog) path(symbol string) string {
	return filepath.Join(c.dir, symbol+".csv")
}

// SaveBars merges bars into the per-symbol files, last write winning
// per (symbol, date). Each touched file is rewritten whole, sorted.
func (c *CSVCatalog) SaveBars(_ context.Context, bars []Bar) error {
	bySymbol := make(map[string][]Bar)
	for _, b := range bars {
		if err := b.Validate(); err != nil {
			return err
		}
		b.Date = b.NormalizeDate()
		bySymbol[b.Symbol] = append(bySymbol[b.Symbol], b)
	}
	if len(bySymbol) == 0 {
		return nil
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("marketdata.CSVCatalog: %w", err)
	}

	for symbol, incoming := range bySymbol {
		merged := make(map[time.Time]Bar)

		existing, err := ReadCSVFile(c.path(symbol), symbol)
		switch {
		case err == nil:
			for _, b := range existing {
				merged[b.NormalizeDate()] = b
			}
		case errors.Is(err, fs.ErrNotExist):
			// First write for this symbol.
		default:
			return err
		}

		for _, b := range incoming {
			merged[b.Date] = b
		}

		out := make([]Bar, 0, len(merged))
		for _, b := range merged {
			out = append(out, b)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })

		if err := WriteCSVFile(c.path(symbol), out); err != nil {
			return err
		}
	}
	return nil
}

// LoadBars reads one symbol file and filters to [from, to]. A missing
// file is an empty range, matching the database backends.
func (c *CSVCatalog) LoadBars(_ context.Context, symbol string, from, to time.Time) ([]Bar, error) {
	bars, err := ReadCSVFile(c.path(symbol), symbol)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	f := timeseries.Normalize(from)
	t := timeseries.Normalize(to)

	var out []Bar
	for _, b := range bars {
		d := b.NormalizeDate()
		if d.Before(f) || d.After(t) {
			continue
		}
		b.Date = d
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// Symbols lists one entry per .csv file, ascending.
func (c *CSVCatalog) Symbols(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(c.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("marketdata.CSVCatalog: %w", err)
	}

	var out []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".csv") {
			continue
		}
		out = append(out, strings.TrimSuffix(name, ".csv"))
	}
	sort.Strings(out)
	return out, nil
}

// Close is a no-op; files are opened per call.
func (c *CSVCatalog) Close() error { return nil }
