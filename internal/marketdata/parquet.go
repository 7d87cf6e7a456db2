package marketdata

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/schlafen318/dual-momentum-sub001/internal/timeseries"
)

// Compile-time interface check.
var _ Catalog = (*ParquetCatalog)(nil)

// ParquetCatalog stores bars as Parquet files on disk, one file per
// symbol and year:
//
//	<DataDir>/daily/<SYMBOL>/<YYYY>.parquet
//
// Parquet keeps multi-decade archives compact and is readable by the
// usual analysis tooling outside this program.
type ParquetCatalog struct {
	DataDir string
}

// NewParquetCatalog creates a catalog rooted at the given directory.
func NewParquetCatalog(dataDir string) *ParquetCatalog {
	return &ParquetCatalog{DataDir: dataDir}
}

// barRecord is the Parquet schema for daily bar data.
type barRecord struct {
	Symbol    string  `parquet:"symbol"`
	Timestamp int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
	Open      float64 `parquet:"open"`
	High      float64 `parquet:"high"`
	Low       float64 `parquet:"low"`
	Close     float64 `parquet:"close"`
	Volume    int64   `parquet:"volume"`
}

// SaveBars writes bars grouped by symbol and year, merging with any
// records already on disk. Existing rows for the same date are
// replaced.
func (c *ParquetCatalog) SaveBars(_ context.Context, bars []Bar) error {
	if len(bars) == 0 {
		return nil
	}

	type key struct {
		symbol string
		year   int
	}
	groups := make(map[key][]barRecord)
	for _, b := range bars {
		if err := b.Validate(); err != nil {
			return err
		}
		d := b.NormalizeDate()
		k := key{symbol: b.Symbol, year: d.Year()}
		groups[k] = append(groups[k], barRecord{
			Symbol:    b.Symbol,
			Timestamp: d.UnixMilli(),
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Volume:    b.Volume,
		})
	}

	for k, records := range groups {
		path := c.barPath(k.symbol, k.year)

		// Read existing records to merge.
		existing, _ := readParquetFile[barRecord](path)
		merged := mergeBarRecords(existing, records)

		if err := writeParquetFile(path, merged); err != nil {
			return fmt.Errorf("marketdata: writing bars for %s/%d: %w", k.symbol, k.year, err)
		}
	}
	return nil
}

// LoadBars reads bars for symbol within [from, to], ascending.
func (c *ParquetCatalog) LoadBars(_ context.Context, symbol string, from, to time.Time) ([]Bar, error) {
	f := timeseries.Normalize(from)
	t := timeseries.Normalize(to)

	var bars []Bar
	for year := f.Year(); year <= t.Year(); year++ {
		records, err := readParquetFile[barRecord](c.barPath(symbol, year))
		if err != nil {
			// No file for this year.
			continue
		}
		for _, r := range records {
			ts := time.UnixMilli(r.Timestamp).UTC()
			if ts.Before(f) || ts.After(t) {
				continue
			}
			bars = append(bars, Bar{
				Symbol: r.Symbol,
				Date:   ts,
				Open:   r.Open,
				High:   r.High,
				Low:    r.Low,
				Close:  r.Close,
				Volume: r.Volume,
			})
		}
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}

// Symbols lists symbols with on-disk data, ascending.
func (c *ParquetCatalog) Symbols(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(c.DataDir, "daily"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var symbols []string
	for _, e := range entries {
		if e.IsDir() {
			symbols = append(symbols, e.Name())
		}
	}
	sort.Strings(symbols)
	return symbols, nil
}

// Close is a no-op; files are opened per call.
func (c *ParquetCatalog) Close() error { return nil }

// barPath returns the file path for a symbol and year.
func (c *ParquetCatalog) barPath(symbol string, year int) string {
	return filepath.Join(c.DataDir, "daily", strings.ToUpper(symbol), fmt.Sprintf("%d.parquet", year))
}

func writeParquetFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}

func readParquetFile[T any](path string) ([]T, error) {
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// mergeBarRecords deduplicates by (symbol, timestamp), preferring
// incoming records, and sorts by timestamp.
func mergeBarRecords(existing, incoming []barRecord) []barRecord {
	type key struct {
		symbol string
		ts     int64
	}
	seen := make(map[key]barRecord, len(existing)+len(incoming))
	for _, r := range existing {
		seen[key{r.Symbol, r.Timestamp}] = r
	}
	for _, r := range incoming {
		seen[key{r.Symbol, r.Timestamp}] = r
	}

	merged := make([]barRecord, 0, len(seen))
	for _, r := range seen {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Timestamp < merged[j].Timestamp
	})
	return merged
}
