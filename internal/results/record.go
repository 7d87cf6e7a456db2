// Package results persists finished backtest runs to Postgres. It is
// entirely optional: the engine never touches storage, and the CLI
// only wires a Repository when a database URL is configured.
package results

import (
	"time"

	"github.com/google/uuid"

	"github.com/schlafen318/dual-momentum-sub001/internal/backtest"
	"github.com/schlafen318/dual-momentum-sub001/internal/contracts"
	"github.com/schlafen318/dual-momentum-sub001/internal/performance"
)

// Record is one saved run. Headline metrics are flattened into
// columns so runs can be filtered and ranked in SQL; the full summary
// and the equity curve ride along as jsonb.
type Record struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	ConfigHash string    `json:"config_hash"`

	// ConfigYAML is the exact document the run was loaded from, so a
	// saved row can be re-run without the original file.
	ConfigYAML string `json:"config_yaml,omitempty"`

	Strategy       string    `json:"strategy"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	TradingDays    int       `json:"trading_days"`
	InitialCapital float64   `json:"initial_capital"`
	FinalCapital   float64   `json:"final_capital"`

	TotalReturn float64 `json:"total_return"`
	CAGR        float64 `json:"cagr"`
	Volatility  float64 `json:"volatility"`
	Sharpe      float64 `json:"sharpe_ratio"`
	Sortino     float64 `json:"sortino_ratio"`
	MaxDrawdown float64 `json:"max_drawdown"`
	WinRate     float64 `json:"win_rate"`
	NumTrades   int     `json:"num_trades"`

	RebalanceCount int `json:"rebalance_count"`
	FallbackCount  int `json:"fallback_count"`

	Summary     performance.Summary     `json:"summary"`
	EquityCurve []contracts.EquityPoint `json:"equity_curve,omitempty"`

	Elapsed   time.Duration `json:"elapsed"`
	CreatedAt time.Time     `json:"created_at"`
}

// NewRecord flattens a finished run into a saveable record with a
// fresh id. The config hash ties the row back to the exact inputs.
func NewRecord(name, configHash string, configYAML []byte, res *backtest.Result) *Record {
	return &Record{
		ID:         uuid.New(),
		Name:       name,
		ConfigHash: configHash,
		ConfigYAML: string(configYAML),

		Strategy:       res.Strategy,
		StartDate:      res.StartDate,
		EndDate:        res.EndDate,
		TradingDays:    res.TradingDays,
		InitialCapital: res.InitialCapital,
		FinalCapital:   res.FinalCapital,

		TotalReturn: res.Summary.TotalReturn,
		CAGR:        res.Summary.CAGR,
		Volatility:  res.Summary.Volatility,
		Sharpe:      res.Summary.Sharpe,
		Sortino:     res.Summary.Sortino,
		MaxDrawdown: res.Summary.MaxDrawdown,
		WinRate:     res.Summary.WinRate,
		NumTrades:   res.Summary.NumTrades,

		RebalanceCount: res.RebalanceCount,
		FallbackCount:  res.FallbackCount,

		Summary:     res.Summary,
		EquityCurve: res.EquityCurve,

		Elapsed:   res.Elapsed,
		CreatedAt: time.Now().UTC(),
	}
}
