package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Compile-time interface check.
var _ Catalog = (*PostgresCatalog)(nil)

// PostgresCatalog stores bars in PostgreSQL. Shared storage for teams
// running sweeps against the same history.
// ⭐ SSOT: Postgres 가격 데이터 접근은 여기서만
type PostgresCatalog struct {
	pool *pgxpool.Pool
}

// NewPostgresCatalog wraps an existing connection pool.
func NewPostgresCatalog(pool *pgxpool.Pool) *PostgresCatalog {
	return &PostgresCatalog{pool: pool}
}

// EnsureSchema creates the market schema and bars table if missing.
func (c *PostgresCatalog) EnsureSchema(ctx context.Context) error {
	ddl := `
		CREATE SCHEMA IF NOT EXISTS market;

		CREATE TABLE IF NOT EXISTS market.daily_bars (
			symbol     TEXT             NOT NULL,
			trade_date DATE             NOT NULL,
			open       DOUBLE PRECISION NOT NULL DEFAULT 0,
			high       DOUBLE PRECISION NOT NULL DEFAULT 0,
			low        DOUBLE PRECISION NOT NULL DEFAULT 0,
			close      DOUBLE PRECISION NOT NULL DEFAULT 0,
			volume     BIGINT           NOT NULL DEFAULT 0,
			PRIMARY KEY (symbol, trade_date)
		);
	`
	if _, err := c.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("marketdata.EnsureSchema: %w", err)
	}
	return nil
}

// SaveBars upserts bars one at a time.
func (c *PostgresCatalog) SaveBars(ctx context.Context, bars []Bar) error {
	query := `
		INSERT INTO market.daily_bars (symbol, trade_date, open, high, low, close, volume)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (symbol, trade_date) DO UPDATE SET
			open = EXCLUDED.open,
			high = EXCLUDED.high,
			low = EXCLUDED.low,
			close = EXCLUDED.close,
			volume = EXCLUDED.volume
	`

	for _, b := range bars {
		if err := b.Validate(); err != nil {
			return err
		}
		_, err := c.pool.Exec(ctx, query,
			b.Symbol, b.NormalizeDate(), b.Open, b.High, b.Low, b.Close, b.Volume,
		)
		if err != nil {
			return fmt.Errorf("marketdata.SaveBars: %s %s: %w", b.Symbol, b.Date.Format("2006-01-02"), err)
		}
	}
	return nil
}

// LoadBars returns bars for symbol within [from, to], ascending.
func (c *PostgresCatalog) LoadBars(ctx context.Context, symbol string, from, to time.Time) ([]Bar, error) {
	query := `
		SELECT symbol, trade_date, open, high, low, close, volume
		FROM market.daily_bars
		WHERE symbol = $1 AND trade_date BETWEEN $2 AND $3
		ORDER BY trade_date ASC
	`

	rows, err := c.pool.Query(ctx, query, symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("marketdata.LoadBars: %w", err)
	}
	defer rows.Close()

	var bars []Bar
	for rows.Next() {
		var b Bar
		if err := rows.Scan(&b.Symbol, &b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("marketdata.LoadBars: scan: %w", err)
		}
		bars = append(bars, b)
	}
	return bars, rows.Err()
}

// Symbols lists distinct symbols ascending.
func (c *PostgresCatalog) Symbols(ctx context.Context) ([]string, error) {
	rows, err := c.pool.Query(ctx, `SELECT DISTINCT symbol FROM market.daily_bars ORDER BY symbol ASC`)
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

// Close is a no-op; the pool is owned by the caller.
func (c *PostgresCatalog) Close() error { return nil }
