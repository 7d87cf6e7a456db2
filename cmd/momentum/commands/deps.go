package commands

import (
	"context"
	"fmt"
	"sort"

	"github.com/schlafen318/dual-momentum-sub001/internal/backtest"
	"github.com/schlafen318/dual-momentum-sub001/internal/marketdata"
	"github.com/schlafen318/dual-momentum-sub001/internal/optimizer"
	"github.com/schlafen318/dual-momentum-sub001/internal/risk"
	"github.com/schlafen318/dual-momentum-sub001/internal/runconfig"
	"github.com/schlafen318/dual-momentum-sub001/internal/strategy"
	"github.com/schlafen318/dual-momentum-sub001/pkg/config"
	"github.com/schlafen318/dual-momentum-sub001/pkg/database"
	"github.com/schlafen318/dual-momentum-sub001/pkg/logger"
)

// appConfig loads the process environment, honoring --verbose.
func appConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// openCatalog selects the bar storage backend from the environment.
// For the postgres backend the cleanup also closes the shared pool.
func openCatalog(ctx context.Context, cfg *config.Config) (marketdata.Catalog, func(), error) {
	switch cfg.Data.Backend {
	case "sqlite":
		cat, err := marketdata.NewSQLiteCatalog(cfg.Data.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return cat, func() { _ = cat.Close() }, nil

	case "parquet":
		cat := marketdata.NewParquetCatalog(cfg.Data.Dir)
		return cat, func() { _ = cat.Close() }, nil

	case "csv":
		cat := marketdata.NewCSVCatalog(cfg.Data.Dir)
		return cat, func() { _ = cat.Close() }, nil

	case "postgres":
		db, err := database.New(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		cat := marketdata.NewPostgresCatalog(db.Pool)
		if err := cat.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return cat, db.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown data backend %q", cfg.Data.Backend)
	}
}

// buildEngine assembles an independent engine for one run config, so
// concurrent trials never share mutable state.
func buildEngine(runCfg *runconfig.Config, hist *marketdata.History, log *logger.Logger) (*backtest.Engine, error) {
	params, err := runCfg.Strategy.Params()
	if err != nil {
		return nil, fmt.Errorf("strategy params: %w", err)
	}
	strat, err := strategy.DefaultRegistry().Build(runCfg.Strategy.Name, params)
	if err != nil {
		return nil, err
	}

	tcfg := backtest.TranslatorConfig{
		SafeSymbol:      runCfg.Strategy.SafeSymbol,
		OptimizerWindow: runCfg.Translator.OptimizerWindow,
	}
	if runCfg.Translator.Optimizer != "" {
		opt, err := optimizer.DefaultRegistry().Get(runCfg.Translator.Optimizer)
		if err != nil {
			return nil, err
		}
		tcfg.Optimizer = opt
	}
	if runCfg.Risk.LimitsEnabled() {
		rm, err := risk.NewManager(runCfg.Risk.Limits)
		if err != nil {
			return nil, err
		}
		tcfg.RiskManager = rm
	}

	translator := backtest.NewTranslator(tcfg, log)
	executor := backtest.NewExecutor(runCfg.Execution, log)

	return backtest.NewEngine(strat, hist, translator, executor, log), nil
}

// runSymbols collects every symbol the run touches: the universe, the
// safe leg, and the benchmark.
func runSymbols(runCfg *runconfig.Config) []string {
	set := make(map[string]bool, len(runCfg.Strategy.Universe)+2)
	for _, s := range runCfg.Strategy.Universe {
		set[s] = true
	}
	if runCfg.Strategy.SafeSymbol != "" {
		set[runCfg.Strategy.SafeSymbol] = true
	}
	if runCfg.Run.Benchmark != "" {
		set[runCfg.Run.Benchmark] = true
	}

	syms := make([]string, 0, len(set))
	for s := range set {
		syms = append(syms, s)
	}
	sort.Strings(syms)
	return syms
}

// loadRunHistory loads bars with enough warmup before the run start
// that the first rebalance already has its full lookback. Sweeps pass
// their largest grid lookback as minWarmupBars.
func loadRunHistory(ctx context.Context, cat marketdata.Catalog, runCfg *runconfig.Config, minWarmupBars int) (*marketdata.History, error) {
	warmupBars := runCfg.Strategy.Lookback
	if w := runCfg.Translator.OptimizerWindow; w > warmupBars {
		warmupBars = w
	}
	if minWarmupBars > warmupBars {
		warmupBars = minWarmupBars
	}

	// Trading days to calendar days, with slack for holidays.
	warmupDays := warmupBars*2 + 14
	from := runCfg.Run.StartDate.AddDate(0, 0, -warmupDays)

	return marketdata.LoadHistory(ctx, cat, runSymbols(runCfg), from, runCfg.Run.EndDate)
}
