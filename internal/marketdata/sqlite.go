package marketdata

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS bars (
    symbol TEXT    NOT NULL,
    date   TEXT    NOT NULL,  -- YYYY-MM-DD, UTC
    open   REAL    NOT NULL DEFAULT 0,
    high   REAL    NOT NULL DEFAULT 0,
    low    REAL    NOT NULL DEFAULT 0,
    close  REAL    NOT NULL DEFAULT 0,
    volume INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (symbol, date)
);

CREATE INDEX IF NOT EXISTS idx_bars_date ON bars(date);
`

// Compile-time interface check.
var _ Catalog = (*SQLiteCatalog)(nil)

// SQLiteCatalog stores bars in a single local SQLite file. This is the
// default backend for laptop runs, no server required.
type SQLiteCatalog struct {
	db *sql.DB
}

// NewSQLiteCatalog opens (or creates) the database at path and applies
// the schema.
func NewSQLiteCatalog(path string) (*SQLiteCatalog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("marketdata.NewSQLiteCatalog: open %q: %w", path, err)
	}
	// SQLite is single-writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("marketdata.NewSQLiteCatalog: apply schema: %w", err)
	}
	return &SQLiteCatalog{db: db}, nil
}

// SaveBars upserts bars inside one transaction.
func (c *SQLiteCatalog) SaveBars(ctx context.Context, bars []Bar) error {
	if len(bars) == 0 {
		return nil
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("marketdata.SaveBars: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO bars (symbol, date, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (symbol, date) DO UPDATE SET
			open = excluded.open,
			high = excluded.high,
			low = excluded.low,
			close = excluded.close,
			volume = excluded.volume
	`)
	if err != nil {
		return fmt.Errorf("marketdata.SaveBars: prepare: %w", err)
	}
	defer stmt.Close()

	for _, b := range bars {
		if err := b.Validate(); err != nil {
			return err
		}
		_, err := stmt.ExecContext(ctx,
			b.Symbol, b.NormalizeDate().Format("2006-01-02"),
			b.Open, b.High, b.Low, b.Close, b.Volume,
		)
		if err != nil {
			return fmt.Errorf("marketdata.SaveBars: %s %s: %w", b.Symbol, b.Date.Format("2006-01-02"), err)
		}
	}
	return tx.Commit()
}

// LoadBars returns bars for symbol within [from, to], ascending.
func (c *SQLiteCatalog) LoadBars(ctx context.Context, symbol string, from, to time.Time) ([]Bar, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT symbol, date, open, high, low, close, volume
		FROM bars
		WHERE symbol = ? AND date BETWEEN ? AND ?
		ORDER BY date ASC
	`, symbol, from.Format("2006-01-02"), to.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("marketdata.LoadBars: %w", err)
	}
	defer rows.Close()

	var bars []Bar
	for rows.Next() {
		var b Bar
		var dateStr string
		if err := rows.Scan(&b.Symbol, &dateStr, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("marketdata.LoadBars: scan: %w", err)
		}
		b.Date, err = time.Parse("2006-01-02", dateStr)
		if err != nil {
			return nil, fmt.Errorf("marketdata.LoadBars: bad stored date %q: %w", dateStr, err)
		}
		bars = append(bars, b)
	}
	return bars, rows.Err()
}

// Symbols lists distinct symbols ascending.
func (c *SQLiteCatalog) Symbols(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT DISTINCT symbol FROM bars ORDER BY symbol ASC`)
	if err != nil {
		return nil, fmt.Errorf("marketdata.Symbols: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		symbols = append(symbols, s)
	}
	return symbols, rows.Err()
}

// Close closes the underlying database connection.
func (c *SQLiteCatalog) Close() error {
	return c.db.Close()
}
