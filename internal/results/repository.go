package results

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound reports a run id with no saved row.
var ErrNotFound = errors.New("results: run not found")

const schema = `
CREATE TABLE IF NOT EXISTS backtest_runs (
    id              UUID PRIMARY KEY,
    name            TEXT NOT NULL,
    config_hash     TEXT NOT NULL,
    config_yaml     TEXT NOT NULL DEFAULT '',
    strategy        TEXT NOT NULL,
    start_date      DATE NOT NULL,
    end_date        DATE NOT NULL,
    trading_days    INTEGER NOT NULL,
    initial_capital DOUBLE PRECISION NOT NULL,
    final_capital   DOUBLE PRECISION NOT NULL,
    total_return    DOUBLE PRECISION NOT NULL,
    cagr            DOUBLE PRECISION NOT NULL,
    volatility      DOUBLE PRECISION NOT NULL,
    sharpe_ratio    DOUBLE PRECISION NOT NULL,
    sortino_ratio   DOUBLE PRECISION NOT NULL,
    max_drawdown    DOUBLE PRECISION NOT NULL,
    win_rate        DOUBLE PRECISION NOT NULL,
    num_trades      INTEGER NOT NULL,
    rebalance_count INTEGER NOT NULL,
    fallback_count  INTEGER NOT NULL,
    summary         JSONB NOT NULL,
    equity_curve    JSONB NOT NULL,
    elapsed_ms      BIGINT NOT NULL DEFAULT 0,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS backtest_runs_created_at ON backtest_runs (created_at DESC);
CREATE INDEX IF NOT EXISTS backtest_runs_config_hash ON backtest_runs (config_hash);
`

// Repository handles run result persistence
// ⭐ SSOT: 백테스트 결과 저장/조회는 여기서만
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a results repository on an existing pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// EnsureSchema creates the runs table and its indexes when absent.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure results schema: %w", err)
	}
	return nil
}

// Save upserts one record. Saving the same id twice overwrites the
// row, so a retried save never duplicates a run.
func (r *Repository) Save(ctx context.Context, rec *Record) error {
	summaryJSON, err := json.Marshal(rec.Summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	curveJSON, err := json.Marshal(rec.EquityCurve)
	if err != nil {
		return fmt.Errorf("failed to marshal equity curve: %w", err)
	}

	query := `
		INSERT INTO backtest_runs (
			id, name, config_hash, config_yaml, strategy,
			start_date, end_date, trading_days, initial_capital, final_capital,
			total_return, cagr, volatility, sharpe_ratio, sortino_ratio,
			max_drawdown, win_rate, num_trades, rebalance_count, fallback_count,
			summary, equity_curve, elapsed_ms, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24
		)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			config_hash = EXCLUDED.config_hash,
			config_yaml = EXCLUDED.config_yaml,
			strategy = EXCLUDED.strategy,
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			trading_days = EXCLUDED.trading_days,
			initial_capital = EXCLUDED.initial_capital,
			final_capital = EXCLUDED.final_capital,
			total_return = EXCLUDED.total_return,
			cagr = EXCLUDED.cagr,
			volatility = EXCLUDED.volatility,
			sharpe_ratio = EXCLUDED.sharpe_ratio,
			sortino_ratio = EXCLUDED.sortino_ratio,
			max_drawdown = EXCLUDED.max_drawdown,
			win_rate = EXCLUDED.win_rate,
			num_trades = EXCLUDED.num_trades,
			rebalance_count = EXCLUDED.rebalance_count,
			fallback_count = EXCLUDED.fallback_count,
			summary = EXCLUDED.summary,
			equity_curve = EXCLUDED.equity_curve,
			elapsed_ms = EXCLUDED.elapsed_ms
	`

	_, err = r.pool.Exec(ctx, query,
		rec.ID, rec.Name, rec.ConfigHash, rec.ConfigYAML, rec.Strategy,
		rec.StartDate, rec.EndDate, rec.TradingDays, rec.InitialCapital, rec.FinalCapital,
		rec.TotalReturn, rec.CAGR, rec.Volatility, rec.Sharpe, rec.Sortino,
		rec.MaxDrawdown, rec.WinRate, rec.NumTrades, rec.RebalanceCount, rec.FallbackCount,
		summaryJSON, curveJSON, rec.Elapsed.Milliseconds(), rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", rec.ID, err)
	}

	return nil
}

// GetByID retrieves one run including its summary and equity curve.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Record, error) {
	query := `
		SELECT id, name, config_hash, config_yaml, strategy,
		       start_date, end_date, trading_days, initial_capital, final_capital,
		       total_return, cagr, volatility, sharpe_ratio, sortino_ratio,
		       max_drawdown, win_rate, num_trades, rebalance_count, fallback_count,
		       summary, equity_curve, elapsed_ms, created_at
		FROM backtest_runs
		WHERE id = $1
	`

	rec, err := scanRecord(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", id, err)
	}

	return rec, nil
}

// ListRecent returns the newest runs first. Equity curves are left
// empty; load a single run with GetByID when the curve is needed.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, name, config_hash, strategy,
		       start_date, end_date, trading_days, initial_capital, final_capital,
		       total_return, cagr, volatility, sharpe_ratio, sortino_ratio,
		       max_drawdown, win_rate, num_trades, rebalance_count, fallback_count,
		       elapsed_ms, created_at
		FROM backtest_runs
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0, limit)

	for rows.Next() {
		var rec Record
		var elapsedMs int64

		err := rows.Scan(
			&rec.ID, &rec.Name, &rec.ConfigHash, &rec.Strategy,
			&rec.StartDate, &rec.EndDate, &rec.TradingDays, &rec.InitialCapital, &rec.FinalCapital,
			&rec.TotalReturn, &rec.CAGR, &rec.Volatility, &rec.Sharpe, &rec.Sortino,
			&rec.MaxDrawdown, &rec.WinRate, &rec.NumTrades, &rec.RebalanceCount, &rec.FallbackCount,
			&elapsedMs, &rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		rec.Elapsed = time.Duration(elapsedMs) * time.Millisecond
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return records, nil
}

// ListByConfigHash returns every run saved for one exact config, so
// repeated runs of the same document can be compared for drift.
func (r *Repository) ListByConfigHash(ctx context.Context, hash string) ([]Record, error) {
	query := `
		SELECT id, name, config_hash, strategy,
		       start_date, end_date, trading_days, initial_capital, final_capital,
		       total_return, cagr, volatility, sharpe_ratio, sortino_ratio,
		       max_drawdown, win_rate, num_trades, rebalance_count, fallback_count,
		       elapsed_ms, created_at
		FROM backtest_runs
		WHERE config_hash = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs by hash: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0)

	for rows.Next() {
		var rec Record
		var elapsedMs int64

		err := rows.Scan(
			&rec.ID, &rec.Name, &rec.ConfigHash, &rec.Strategy,
			&rec.StartDate, &rec.EndDate, &rec.TradingDays, &rec.InitialCapital, &rec.FinalCapital,
			&rec.TotalReturn, &rec.CAGR, &rec.Volatility, &rec.Sharpe, &rec.Sortino,
			&rec.MaxDrawdown, &rec.WinRate, &rec.NumTrades, &rec.RebalanceCount, &rec.FallbackCount,
			&elapsedMs, &rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		rec.Elapsed = time.Duration(elapsedMs) * time.Millisecond
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return records, nil
}

// Delete removes one run.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM backtest_runs WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete run %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func scanRecord(row pgx.Row) (*Record, error) {
	var rec Record
	var summaryJSON, curveJSON []byte
	var elapsedMs int64

	err := row.Scan(
		&rec.ID, &rec.Name, &rec.ConfigHash, &rec.ConfigYAML, &rec.Strategy,
		&rec.StartDate, &rec.EndDate, &rec.TradingDays, &rec.InitialCapital, &rec.FinalCapital,
		&rec.TotalReturn, &rec.CAGR, &rec.Volatility, &rec.Sharpe, &rec.Sortino,
		&rec.MaxDrawdown, &rec.WinRate, &rec.NumTrades, &rec.RebalanceCount, &rec.FallbackCount,
		&summaryJSON, &curveJSON, &elapsedMs, &rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(summaryJSON, &rec.Summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal summary: %w", err)
	}
	if err := json.Unmarshal(curveJSON, &rec.EquityCurve); err != nil {
		return nil, fmt.Errorf("failed to unmarshal equity curve: %w", err)
	}
	rec.Elapsed = time.Duration(elapsedMs) * time.Millisecond

	return &rec, nil
}
