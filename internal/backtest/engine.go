package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/schlafen318/dual-momentum-sub001/internal/contracts"
	"github.com/schlafen318/dual-momentum-sub001/internal/performance"
	"github.com/schlafen318/dual-momentum-sub001/pkg/logger"
)

// Engine drives one full simulation: clock, signals, translation,
// execution, and final performance calculation
// ⭐ SSOT: 백테스트 실행 오케스트레이션
//
// A run is strictly single threaded and deterministic. An engine is
// safe to reuse for sequential runs; parallel runs need one engine
// each, sharing only the immutable QuoteView.
type Engine struct {
	strategy   contracts.Strategy
	quotes     contracts.QuoteView
	translator *Translator
	executor   *Executor
	log        *logger.Logger
}

// Config bounds one run.
type Config struct {
	StartDate      time.Time `json:"start_date" yaml:"start_date"`
	EndDate        time.Time `json:"end_date" yaml:"end_date"`
	InitialCapital float64   `json:"initial_capital" yaml:"initial_capital"`

	// Benchmark is compared against the equity curve when set.
	Benchmark string `json:"benchmark,omitempty" yaml:"benchmark,omitempty"`

	// RiskFreeRate is annual, used for excess-return ratios.
	RiskFreeRate float64 `json:"risk_free_rate" yaml:"risk_free_rate"`
}

// Validate checks the run bounds.
func (c Config) Validate() error {
	if c.StartDate.IsZero() || c.EndDate.IsZero() {
		return fmt.Errorf("start_date and end_date are required")
	}
	if c.EndDate.Before(c.StartDate) {
		return fmt.Errorf("end_date %s is before start_date %s",
			c.EndDate.Format("2006-01-02"), c.StartDate.Format("2006-01-02"))
	}
	if c.InitialCapital <= 0 {
		return fmt.Errorf("initial_capital must be positive: %f", c.InitialCapital)
	}
	return nil
}

// Result is the complete outcome of one run, built once at the end
// and read-only thereafter.
type Result struct {
	Strategy       string                        `json:"strategy"`
	Frequency      contracts.Frequency           `json:"frequency"`
	StartDate      time.Time                     `json:"start_date"`
	EndDate        time.Time                     `json:"end_date"`
	TradingDays    int                           `json:"trading_days"`
	InitialCapital float64                       `json:"initial_capital"`
	FinalCapital   float64                       `json:"final_capital"`
	RebalanceCount int                           `json:"rebalance_count"`
	FallbackCount  int                           `json:"fallback_count"`
	EquityCurve    []contracts.EquityPoint       `json:"equity_curve"`
	BenchmarkCurve []contracts.EquityPoint       `json:"benchmark_curve,omitempty"`
	Trades         []contracts.Trade             `json:"trades"`
	Snapshots      []contracts.PortfolioSnapshot `json:"snapshots"`
	Stats          Stats                         `json:"stats"`
	Summary        performance.Summary           `json:"summary"`
	Elapsed        time.Duration                 `json:"elapsed"`
}

// NewEngine wires the engine's collaborators.
func NewEngine(strategy contracts.Strategy, quotes contracts.QuoteView, translator *Translator, executor *Executor, log *logger.Logger) *Engine {
	return &Engine{
		strategy:   strategy,
		quotes:     quotes,
		translator: translator,
		executor:   executor,
		log:        log,
	}
}

// Run executes the simulation loop over [cfg.StartDate, cfg.EndDate].
//
// Every trading date is marked to market and snapshotted; rebalance
// dates additionally run signals, translation, and execution. Any
// stage failure aborts the whole run with a StageError; partial
// results are never returned.
func (e *Engine) Run(ctx context.Context, cfg Config) (*Result, error) {
	started := time.Now()

	if err := cfg.Validate(); err != nil {
		return nil, contracts.NewStageError(contracts.StageData, time.Time{}, err)
	}

	dates := e.quotes.TradingDates(cfg.StartDate, cfg.EndDate)
	clock, err := NewClock(dates, e.strategy.Frequency())
	if err != nil {
		return nil, contracts.NewStageError(contracts.StageData, cfg.StartDate, err)
	}

	pf := NewPortfolio(cfg.InitialCapital)
	ledger := NewLedger()

	e.log.WithFields(map[string]interface{}{
		"strategy":  e.strategy.Name(),
		"frequency": e.strategy.Frequency().String(),
		"start":     clock.Dates()[0].Format("2006-01-02"),
		"end":       clock.Dates()[clock.Len()-1].Format("2006-01-02"),
		"days":      clock.Len(),
		"capital":   cfg.InitialCapital,
	}).Info("Backtest started")

	var lastRebalance time.Time
	rebalances := 0
	fallbacks := 0

	for _, date := range clock.Dates() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if clock.ShouldRebalance(date, lastRebalance) {
			signals, err := e.strategy.Evaluate(ctx, date, e.quotes)
			if err != nil {
				return nil, contracts.NewStageError(contracts.StageSignals, date, err)
			}

			// An empty signal list holds the current portfolio.
			if len(signals) > 0 {
				weights, err := e.translator.Translate(ctx, date, signals, e.quotes)
				if err != nil {
					return nil, contracts.NewStageError(contracts.StageTranslation, date, err)
				}
				if weights.FallbackUsed {
					fallbacks++
				}
				if err := e.executor.Rebalance(date, weights, pf, ledger, e.quotes); err != nil {
					return nil, contracts.NewStageError(contracts.StageExecution, date, err)
				}
			}
			lastRebalance = date
			rebalances++
		}

		// Mark to market daily, rebalance or not.
		ledger.RecordEquity(date, pf.TotalValue(date, e.quotes), cfg.InitialCapital)

		snap := pf.Snapshot(date, e.quotes)
		if err := snap.Validate(); err != nil {
			return nil, contracts.NewStageError(contracts.StageExecution, date, err)
		}
		ledger.RecordSnapshot(snap)
	}

	curve := ledger.EquityCurve()
	result := &Result{
		Strategy:       e.strategy.Name(),
		Frequency:      e.strategy.Frequency(),
		StartDate:      clock.Dates()[0],
		EndDate:        clock.Dates()[clock.Len()-1],
		TradingDays:    clock.Len(),
		InitialCapital: cfg.InitialCapital,
		FinalCapital:   curve[len(curve)-1].Equity,
		RebalanceCount: rebalances,
		FallbackCount:  fallbacks,
		EquityCurve:    curve,
		Trades:         ledger.Trades(),
		Snapshots:      ledger.Snapshots(),
		Stats:          ledger.Stats(),
	}

	opts := performance.Options{RiskFreeRate: cfg.RiskFreeRate}
	summary, err := performance.Calculate(result.EquityCurve, result.Trades, opts)
	if err != nil {
		return nil, contracts.NewStageError(contracts.StagePerformance, result.EndDate, err)
	}

	if cfg.Benchmark != "" {
		bench, err := performance.AlignBenchmark(result.EquityCurve, e.quotes, cfg.Benchmark)
		if err != nil {
			return nil, contracts.NewStageError(contracts.StagePerformance, result.EndDate, err)
		}
		cmp := performance.CompareBenchmark(result.EquityCurve, bench, cfg.Benchmark, opts)
		summary.Benchmark = &cmp
		result.BenchmarkCurve = bench
	}
	result.Summary = summary
	result.Elapsed = time.Since(started)

	e.log.WithFields(map[string]interface{}{
		"final_capital": result.FinalCapital,
		"total_return":  fmt.Sprintf("%.2f%%", summary.TotalReturn*100),
		"sharpe":        fmt.Sprintf("%.2f", summary.Sharpe),
		"max_drawdown":  fmt.Sprintf("%.2f%%", summary.MaxDrawdown*100),
		"rebalances":    rebalances,
		"trades":        len(result.Trades),
		"elapsed":       result.Elapsed.String(),
	}).Info("Backtest completed")

	return result, nil
}
