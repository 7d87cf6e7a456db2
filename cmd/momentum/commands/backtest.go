package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/schlafen318/dual-momentum-sub001/internal/backtest"
	"github.com/schlafen318/dual-momentum-sub001/internal/performance"
	"github.com/schlafen318/dual-momentum-sub001/internal/results"
	"github.com/schlafen318/dual-momentum-sub001/internal/risk"
	"github.com/schlafen318/dual-momentum-sub001/internal/runconfig"
	"github.com/schlafen318/dual-momentum-sub001/pkg/config"
	"github.com/schlafen318/dual-momentum-sub001/pkg/database"
	"github.com/schlafen318/dual-momentum-sub001/pkg/logger"
)

// backtestCmd represents the backtest command
var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "백테스트 실행",
	Long: `하나의 YAML 설정으로 기술된 백테스트를 실행합니다.

시뮬레이션은 다음을 검증합니다:
- 전략 수익률 (CAGR, 총수익)
- 리스크 지표 (Sharpe, Sortino, MDD)
- 승률 및 거래 통계
- 벤치마크 대비 성과

Example:
  go run ./cmd/momentum backtest run --config config/run.example.yaml
  go run ./cmd/momentum backtest run --config my-run.yaml --save`,
}

var (
	backtestRunCmd = &cobra.Command{
		Use:   "run",
		Short: "설정 파일 하나로 백테스트 실행",
		Long: `지정된 설정 파일의 기간/전략/비용 모델로 백테스트를 실행합니다.

Flags:
  --config   실행 설정 YAML (필수)
  --save     결과를 Postgres에 저장 (DATABASE_URL 필요)
  --trades   출력할 체결 테이블 행 수 (0이면 생략, 기본 15)

Example:
  go run ./cmd/momentum backtest run --config config/run.example.yaml
  go run ./cmd/momentum backtest run --config my-run.yaml --save --trades 30`,
		RunE: runBacktest,
	}

	// Flags
	backtestConfigPath string
	backtestSave       bool
	backtestTradeRows  int
)

func init() {
	rootCmd.AddCommand(backtestCmd)
	backtestCmd.AddCommand(backtestRunCmd)

	// Flags
	backtestRunCmd.Flags().StringVar(&backtestConfigPath, "config", "", "run config YAML (required)")
	backtestRunCmd.Flags().BoolVar(&backtestSave, "save", false, "save the result to Postgres")
	backtestRunCmd.Flags().IntVar(&backtestTradeRows, "trades", 15, "trade rows to print (0 hides the table)")

	backtestRunCmd.MarkFlagRequired("config")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := appConfig()
	if err != nil {
		return err
	}
	log := logger.New(cfg)

	runCfg, rawYAML, err := runconfig.Load(backtestConfigPath)
	if err != nil {
		return fmt.Errorf("load run config: %w", err)
	}
	hash, err := runconfig.Hash(runCfg)
	if err != nil {
		return fmt.Errorf("hash run config: %w", err)
	}

	fmt.Println("=== Dual Momentum Backtest ===")
	fmt.Printf("\n📋 Run: %s (config %s)\n", runCfg.Name, hash[:12])
	fmt.Printf("📅 Period: %s ~ %s\n",
		runCfg.Run.StartDate.Format("2006-01-02"),
		runCfg.Run.EndDate.Format("2006-01-02"))
	fmt.Printf("💰 Initial Capital: %s\n", formatMoney(runCfg.Run.InitialCapital))
	fmt.Printf("🧭 Strategy: %s over [%s] (lookback %d, %s)\n",
		runCfg.Strategy.Name,
		strings.Join(runCfg.Strategy.Universe, ", "),
		runCfg.Strategy.Lookback,
		runCfg.Strategy.Frequency)
	fmt.Printf("💸 Costs: commission %.3f%%, slippage %.3f%%\n\n",
		runCfg.Execution.CommissionRate*100,
		runCfg.Execution.SlippageRate*100)

	printWarnings(runconfig.Warn(runCfg))

	cat, cleanup, err := openCatalog(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	hist, err := loadRunHistory(ctx, cat, runCfg, 0)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	engine, err := buildEngine(runCfg, hist, log)
	if err != nil {
		return err
	}

	fmt.Println("🚀 Starting backtest...")
	fmt.Println()

	result, err := engine.Run(ctx, runCfg.Run)
	if err != nil {
		return fmt.Errorf("backtest failed: %w", err)
	}

	printBacktestResult(result)
	printRiskReport(result, runCfg.Risk)

	if backtestSave {
		if err := saveResult(ctx, cfg, runCfg, hash, rawYAML, result); err != nil {
			return fmt.Errorf("save result: %w", err)
		}
	}

	return nil
}

func printBacktestResult(result *backtest.Result) {
	fmt.Println("\n✅ Backtest Completed")
	fmt.Println(strings.Repeat("═", 61))
	fmt.Println()

	// Summary
	fmt.Println("📊 Summary")
	fmt.Printf("Period: %s ~ %s (%d trading days)\n",
		result.StartDate.Format("2006-01-02"),
		result.EndDate.Format("2006-01-02"),
		result.TradingDays)
	fmt.Printf("Strategy: %s (%s rebalancing)\n", result.Strategy, result.Frequency)
	fmt.Printf("Rebalances: %d times", result.RebalanceCount)
	if result.FallbackCount > 0 {
		fmt.Printf(" (optimizer fallbacks: %d)", result.FallbackCount)
	}
	fmt.Println()
	fmt.Printf("Duration: %.2f seconds\n", result.Elapsed.Seconds())
	fmt.Println()

	// Performance
	fmt.Println("💰 Performance")
	fmt.Printf("Initial Capital: %s\n", formatMoney(result.InitialCapital))
	fmt.Printf("Final Capital:   %s\n", formatMoney(result.FinalCapital))
	fmt.Printf("P&L:             %s (%s)\n",
		formatMoney(result.FinalCapital-result.InitialCapital),
		formatPct(result.Summary.TotalReturn))
	fmt.Println()
	fmt.Printf("CAGR:            %s\n", formatPct(result.Summary.CAGR))
	fmt.Printf("Volatility:      %.2f%%\n", result.Summary.Volatility*100)
	fmt.Println()

	// Risk Metrics
	fmt.Println("📉 Risk Metrics")
	fmt.Printf("Sharpe Ratio:    %.2f%s\n", result.Summary.Sharpe, sharpeBadge(result.Summary.Sharpe))
	fmt.Printf("Sortino Ratio:   %.2f\n", result.Summary.Sortino)
	fmt.Printf("Calmar Ratio:    %.2f\n", result.Summary.Calmar)
	fmt.Printf("Max Drawdown:    %.2f%%\n", result.Summary.MaxDrawdown*100)
	fmt.Printf("Avg Drawdown:    %.2f%%\n", result.Summary.AvgDrawdown*100)
	fmt.Println()

	// Trades
	fmt.Println("🔄 Trades")
	fmt.Printf("Count: %d  Win Rate: %.1f%%  Profit Factor: %.2f\n",
		result.Summary.NumTrades,
		result.Summary.WinRate*100,
		result.Summary.ProfitFactor)
	fmt.Printf("Avg Win: %s  Avg Loss: %s\n",
		formatMoney(result.Summary.AvgWin),
		formatMoney(result.Summary.AvgLoss))
	if backtestTradeRows > 0 && len(result.Trades) > 0 {
		fmt.Println()
		printTrades(os.Stdout, result.Trades, backtestTradeRows)
	}

	// Benchmark
	if bench := result.Summary.Benchmark; bench != nil {
		fmt.Println()
		fmt.Println("🆚 Benchmark")
		fmt.Printf("%s Return:       %s\n", bench.Symbol, formatPct(bench.Return))
		fmt.Printf("Excess Return:    %s\n", formatPct(result.Summary.TotalReturn-bench.Return))
		fmt.Printf("Alpha:            %+.4f  Beta: %.2f\n", bench.Alpha, bench.Beta)
		fmt.Printf("Information Ratio: %.2f\n", bench.InformationRatio)
	}
}

// printRiskReport runs the optional VaR and bootstrap calculators on
// the realized daily returns.
func printRiskReport(result *backtest.Result, riskCfg runconfig.Risk) {
	if !riskCfg.VaR && riskCfg.Bootstrap == nil {
		return
	}

	returns := performance.PeriodReturns(result.EquityCurve)

	fmt.Println()
	fmt.Println("🎲 Risk Report")

	if riskCfg.VaR {
		for _, conf := range []float64{0.95, 0.99} {
			v := risk.CalculateVaR(returns, conf)
			fmt.Printf("VaR %.0f%%: %.2f%%   CVaR %.0f%%: %.2f%%\n",
				conf*100, v.VaR*100, conf*100, v.CVaR*100)
		}
	}

	if riskCfg.Bootstrap != nil {
		boot, err := risk.NewBootstrap(*riskCfg.Bootstrap)
		if err != nil {
			fmt.Printf("⚠️  bootstrap skipped: %v\n", err)
			return
		}
		dist, err := boot.Run(returns)
		if err != nil {
			fmt.Printf("⚠️  bootstrap skipped: %v\n", err)
			return
		}

		fmt.Printf("Bootstrap (%d paths, %d-day horizon):\n", dist.Simulations, dist.Horizon)
		fmt.Printf("  Mean: %s  StdDev: %.2f%%\n", formatPct(dist.Mean), dist.StdDev*100)
		fmt.Printf("  VaR95: %.2f%%  CVaR95: %.2f%%  VaR99: %.2f%%  CVaR99: %.2f%%\n",
			dist.VaR95*100, dist.CVaR95*100, dist.VaR99*100, dist.CVaR99*100)
		fmt.Printf("  Quantiles: p05 %s  p50 %s  p95 %s\n",
			formatPct(dist.Quantiles["p05"]),
			formatPct(dist.Quantiles["p50"]),
			formatPct(dist.Quantiles["p95"]))
	}
}

// saveResult persists the finished run when --save is set.
func saveResult(ctx context.Context, cfg *config.Config, runCfg *runconfig.Config, hash string, rawYAML []byte, result *backtest.Result) error {
	if cfg.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is not configured")
	}

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	repo := results.NewRepository(db.Pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}

	rec := results.NewRecord(runCfg.Name, hash, rawYAML, result)
	if err := repo.Save(ctx, rec); err != nil {
		return err
	}

	fmt.Printf("\n💾 Saved run %s\n", rec.ID)
	return nil
}
