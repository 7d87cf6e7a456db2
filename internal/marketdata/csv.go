package marketdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// csvLayout maps header names to column indices. The symbol column is
// optional; files without one need the symbol passed by the caller.
type csvLayout struct {
	symbol, date, open, high, low, close, volume int
}

// ReadCSVFile reads daily bars from a CSV file. See ReadCSV.
func ReadCSVFile(path, symbol string) ([]Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("marketdata.ReadCSVFile: %w", err)
	}
	defer f.Close()
	return ReadCSV(f, symbol)
}

// ReadCSV parses daily bars from CSV. The header row names the columns
// (date, open, high, low, close, volume, optionally symbol) in any
// order. Dates are YYYY-MM-DD. When the file has no symbol column the
// given symbol applies to every row.
func ReadCSV(r io.Reader, symbol string) ([]Bar, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("marketdata.ReadCSV: header: %w", err)
	}
	layout, err := parseHeader(header)
	if err != nil {
		return nil, err
	}
	if layout.symbol < 0 && symbol == "" {
		return nil, fmt.Errorf("marketdata.ReadCSV: no symbol column and no symbol given")
	}

	var bars []Bar
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("marketdata.ReadCSV: line %d: %w", line+1, err)
		}
		line++

		bar, err := parseRecord(record, layout, symbol)
		if err != nil {
			return nil, fmt.Errorf("marketdata.ReadCSV: line %d: %w", line, err)
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

// WriteCSVFile writes bars as CSV with the canonical column order.
func WriteCSVFile(path string, bars []Bar) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("marketdata.WriteCSVFile: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"symbol", "date", "open", "high", "low", "close", "volume"}); err != nil {
		return err
	}
	for _, b := range bars {
		row := []string{
			b.Symbol,
			b.Date.Format("2006-01-02"),
			formatFloat(b.Open),
			formatFloat(b.High),
			formatFloat(b.Low),
			formatFloat(b.Close),
			strconv.FormatInt(b.Volume, 10),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func parseHeader(header []string) (csvLayout, error) {
	layout := csvLayout{symbol: -1, date: -1, open: -1, high: -1, low: -1, close: -1, volume: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "symbol", "ticker", "code":
			layout.symbol = i
		case "date", "trade_date":
			layout.date = i
		case "open":
			layout.open = i
		case "high":
			layout.high = i
		case "low":
			layout.low = i
		case "close", "adj_close", "adjclose":
			layout.close = i
		case "volume", "vol":
			layout.volume = i
		}
	}
	if layout.date < 0 || layout.close < 0 {
		return layout, fmt.Errorf("marketdata: CSV header needs at least date and close columns, got %v", header)
	}
	return layout, nil
}

func parseRecord(record []string, layout csvLayout, fallbackSymbol string) (Bar, error) {
	var bar Bar

	bar.Symbol = fallbackSymbol
	if layout.symbol >= 0 && layout.symbol < len(record) {
		bar.Symbol = strings.TrimSpace(record[layout.symbol])
	}

	date, err := time.Parse("2006-01-02", strings.TrimSpace(record[layout.date]))
	if err != nil {
		return bar, fmt.Errorf("bad date %q: %w", record[layout.date], err)
	}
	bar.Date = date

	get := func(idx int) (float64, error) {
		if idx < 0 || idx >= len(record) || strings.TrimSpace(record[idx]) == "" {
			return 0, nil
		}
		return strconv.ParseFloat(strings.TrimSpace(record[idx]), 64)
	}
	if bar.Open, err = get(layout.open); err != nil {
		return bar, fmt.Errorf("bad open: %w", err)
	}
	if bar.High, err = get(layout.high); err != nil {
		return bar, fmt.Errorf("bad high: %w", err)
	}
	if bar.Low, err = get(layout.low); err != nil {
		return bar, fmt.Errorf("bad low: %w", err)
	}
	if bar.Close, err = get(layout.close); err != nil {
		return bar, fmt.Errorf("bad close: %w", err)
	}

	if layout.volume >= 0 && layout.volume < len(record) && strings.TrimSpace(record[layout.volume]) != "" {
		v, err := strconv.ParseInt(strings.TrimSpace(record[layout.volume]), 10, 64)
		if err != nil {
			return bar, fmt.Errorf("bad volume: %w", err)
		}
		bar.Volume = v
	}

	return bar, bar.Validate()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
