package marketdata

import (
	"context"
	"path/filepath"
	"testing"
)

// catalogRoundTrip exercises the Catalog contract shared by every
// backend: upsert, windowed load, symbol listing.
func catalogRoundTrip(t *testing.T, c Catalog) {
	t.Helper()
	ctx := context.Background()

	bars := []Bar{
		{Symbol: "SPY", Date: day(2024, 1, 2), Open: 100, High: 102, Low: 99, Close: 101, Volume: 1000},
		{Symbol: "SPY", Date: day(2024, 1, 3), Open: 101, High: 103, Low: 100, Close: 102, Volume: 900},
		{Symbol: "AGG", Date: day(2024, 1, 2), Open: 50, High: 50.5, Low: 49.5, Close: 50, Volume: 500},
	}
	if err := c.SaveBars(ctx, bars); err != nil {
		t.Fatalf("SaveBars: %v", err)
	}

	// Upsert replaces the existing row.
	update := []Bar{{Symbol: "SPY", Date: day(2024, 1, 3), Open: 101, High: 104, Low: 100, Close: 103, Volume: 950}}
	if err := c.SaveBars(ctx, update); err != nil {
		t.Fatalf("SaveBars upsert: %v", err)
	}

	got, err := c.LoadBars(ctx, "SPY", day(2024, 1, 1), day(2024, 12, 31))
	if err != nil {
		t.Fatalf("LoadBars: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("LoadBars returned %d bars, want 2", len(got))
	}
	if !got[0].Date.Before(got[1].Date) {
		t.Error("LoadBars must return ascending dates")
	}
	if got[1].Close != 103 {
		t.Errorf("upserted close = %v, want 103", got[1].Close)
	}

	// Window excludes out-of-range dates.
	windowed, err := c.LoadBars(ctx, "SPY", day(2024, 1, 3), day(2024, 1, 3))
	if err != nil {
		t.Fatalf("LoadBars windowed: %v", err)
	}
	if len(windowed) != 1 {
		t.Fatalf("windowed LoadBars returned %d bars, want 1", len(windowed))
	}

	symbols, err := c.Symbols(ctx)
	if err != nil {
		t.Fatalf("Symbols: %v", err)
	}
	if len(symbols) != 2 || symbols[0] != "AGG" || symbols[1] != "SPY" {
		t.Errorf("Symbols() = %v, want [AGG SPY]", symbols)
	}
}

func TestMemoryCatalog(t *testing.T) {
	catalogRoundTrip(t, NewMemoryCatalog())
}

func TestSQLiteCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bars.db")
	c, err := NewSQLiteCatalog(path)
	if err != nil {
		t.Fatalf("NewSQLiteCatalog: %v", err)
	}
	defer c.Close()

	catalogRoundTrip(t, c)
}

func TestParquetCatalog(t *testing.T) {
	c := NewParquetCatalog(t.TempDir())
	catalogRoundTrip(t, c)
}

func TestCSVCatalog(t *testing.T) {
	c := NewCSVCatalog(t.TempDir())
	catalogRoundTrip(t, c)
}

func TestCSVCatalog_MissingSymbol(t *testing.T) {
	c := NewCSVCatalog(t.TempDir())

	got, err := c.LoadBars(context.Background(), "SPY", day(2024, 1, 1), day(2024, 12, 31))
	if err != nil {
		t.Fatalf("LoadBars on empty catalog: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("LoadBars = %d bars, want none", len(got))
	}
}

func TestParquetCatalog_BarPath(t *testing.T) {
	c := NewParquetCatalog("/data")
	got := c.barPath("spy", 2024)
	want := filepath.Join("/data", "daily", "SPY", "2024.parquet")
	if got != want {
		t.Errorf("barPath = %s, want %s", got, want)
	}
}

func TestLoadHistory(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCatalog()
	bars := []Bar{
		{Symbol: "SPY", Date: day(2024, 1, 2), Close: 100},
		{Symbol: "AGG", Date: day(2024, 1, 2), Close: 50},
	}
	if err := c.SaveBars(ctx, bars); err != nil {
		t.Fatalf("SaveBars: %v", err)
	}

	h, err := LoadHistory(ctx, c, []string{"SPY", "AGG"}, day(2024, 1, 1), day(2024, 1, 31))
	if err != nil {
		t.Fatalf("LoadHistory: %v", err)
	}
	if len(h.Symbols()) != 2 {
		t.Errorf("history symbols = %v, want 2 entries", h.Symbols())
	}

	// A requested symbol with no data is an error, not a silent skip.
	if _, err := LoadHistory(ctx, c, []string{"SPY", "TLT"}, day(2024, 1, 1), day(2024, 1, 31)); err == nil {
		t.Error("LoadHistory should fail when a symbol has no bars")
	}

	if _, err := LoadHistory(ctx, c, nil, day(2024, 1, 1), day(2024, 1, 31)); err == nil {
		t.Error("LoadHistory should fail with no symbols")
	}
}
