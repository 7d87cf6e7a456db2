package commands

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/schlafen318/dual-momentum-sub001/internal/backtest"
	"github.com/schlafen318/dual-momentum-sub001/internal/runconfig"
	"github.com/schlafen318/dual-momentum-sub001/internal/sweep"
	"github.com/schlafen318/dual-momentum-sub001/pkg/logger"
)

// sweepCmd represents the sweep command
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "파라미터 스윕 실행",
	Long: `하나의 기준 설정에서 파라미터 그리드를 전개하여 병렬 백테스트합니다.

각 트라이얼은 독립된 엔진과 포트폴리오 상태를 가지며,
가격 히스토리만 읽기 전용으로 공유합니다.

Example:
  go run ./cmd/momentum sweep run --config config/run.example.yaml --lookbacks 63,126,252
  go run ./cmd/momentum sweep run --config my-run.yaml --lookbacks 126,252 --top-n 1,2 --workers 4`,
}

var (
	sweepRunCmd = &cobra.Command{
		Use:   "run",
		Short: "그리드 전개 후 전체 조합 백테스트",
		Long: `지정한 차원들의 데카르트 곱을 전개해 조합별 백테스트를 실행합니다.

Flags:
  --config      기준 설정 YAML (필수)
  --lookbacks   모멘텀 룩백 그리드 (예: 63,126,252)
  --top-n       보유 종목 수 그리드 (예: 1,2,3)
  --optimizers  옵티마이저 그리드 (예: equal_weight,inverse_volatility)
  --workers     동시 실행 수 (0: SWEEP_WORKERS, 그다음 CPU당 1개)

최소 한 개의 그리드 차원을 지정해야 합니다.

Example:
  go run ./cmd/momentum sweep run --config my-run.yaml --lookbacks 63,126,252 --optimizers equal_weight,inverse_volatility`,
		RunE: runSweep,
	}

	// Flags
	sweepConfigPath string
	sweepLookbacks  string
	sweepTopN       string
	sweepOptimizers string
	sweepWorkers    int
)

func init() {
	rootCmd.AddCommand(sweepCmd)
	sweepCmd.AddCommand(sweepRunCmd)

	// Flags
	sweepRunCmd.Flags().StringVar(&sweepConfigPath, "config", "", "base run config YAML (required)")
	sweepRunCmd.Flags().StringVar(&sweepLookbacks, "lookbacks", "", "comma-separated lookback bars, e.g. 63,126,252")
	sweepRunCmd.Flags().StringVar(&sweepTopN, "top-n", "", "comma-separated top_n values, e.g. 1,2,3")
	sweepRunCmd.Flags().StringVar(&sweepOptimizers, "optimizers", "", "comma-separated optimizer names, e.g. equal_weight,inverse_volatility")
	sweepRunCmd.Flags().IntVar(&sweepWorkers, "workers", 0, "concurrent trials (0: SWEEP_WORKERS env, then one per CPU)")

	sweepRunCmd.MarkFlagRequired("config")
}

func runSweep(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := appConfig()
	if err != nil {
		return err
	}
	log := logger.New(cfg)

	base, _, err := runconfig.Load(sweepConfigPath)
	if err != nil {
		return fmt.Errorf("load base config: %w", err)
	}

	lookbacks, err := parseIntList(sweepLookbacks)
	if err != nil {
		return fmt.Errorf("--lookbacks: %w", err)
	}
	topNs, err := parseIntList(sweepTopN)
	if err != nil {
		return fmt.Errorf("--top-n: %w", err)
	}
	optimizers := parseNameList(sweepOptimizers)

	if len(lookbacks) == 0 && len(topNs) == 0 && len(optimizers) == 0 {
		return fmt.Errorf("no sweep dimensions: pass at least one of --lookbacks, --top-n, --optimizers")
	}

	// Unvaried dimensions collapse to the base value.
	varyLB, varyTN, varyOpt := len(lookbacks) > 0, len(topNs) > 0, len(optimizers) > 0
	if !varyLB {
		lookbacks = []int{base.Strategy.Lookback}
	}
	if !varyTN {
		topNs = []int{base.Strategy.TopN}
	}
	if !varyOpt {
		optimizers = []string{base.Translator.Optimizer}
	}

	workers := sweepWorkers
	if workers <= 0 {
		workers = cfg.Sweep.Workers
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	cat, cleanup, err := openCatalog(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	// One shared read-only history serves every trial. Warm up for the
	// largest lookback in the grid so short-lookback trials simply
	// ignore the extra bars.
	maxLookback := 0
	for _, lb := range lookbacks {
		if lb > maxLookback {
			maxLookback = lb
		}
	}
	hist, err := loadRunHistory(ctx, cat, base, maxLookback)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	// Expand the grid. Engines are built up front so a bad combination
	// (unknown optimizer, zero lookback) fails the whole sweep before
	// any trial runs.
	var trials []sweep.Trial
	for _, lb := range lookbacks {
		for _, tn := range topNs {
			for _, opt := range optimizers {
				clone := base.Clone()
				clone.Strategy.Lookback = lb
				clone.Strategy.TopN = tn
				clone.Translator.Optimizer = opt

				var parts []string
				if varyLB {
					parts = append(parts, fmt.Sprintf("lookback=%d", lb))
				}
				if varyTN {
					parts = append(parts, fmt.Sprintf("top_n=%d", tn))
				}
				if varyOpt {
					name := opt
					if name == "" {
						name = "none"
					}
					parts = append(parts, "optimizer="+name)
				}
				comboName := strings.Join(parts, ",")
				clone.Name = base.Name + "/" + comboName

				if err := runconfig.Validate(clone); err != nil {
					return fmt.Errorf("trial %s: %w", comboName, err)
				}
				engine, err := buildEngine(clone, hist, log)
				if err != nil {
					return fmt.Errorf("trial %s: %w", comboName, err)
				}

				runCfg := clone.Run
				trials = append(trials, sweep.Trial{
					Name: comboName,
					Run: func(ctx context.Context) (*backtest.Result, error) {
						return engine.Run(ctx, runCfg)
					},
				})
			}
		}
	}

	fmt.Println("=== Parameter Sweep ===")
	fmt.Printf("\n📋 Base: %s (%s ~ %s)\n",
		base.Name,
		base.Run.StartDate.Format("2006-01-02"),
		base.Run.EndDate.Format("2006-01-02"))
	fmt.Printf("🧪 Trials: %d  Workers: %d\n\n", len(trials), workers)

	fmt.Println("🚀 Starting sweep...")
	started := time.Now()

	results := sweep.NewRunner(workers, log).Run(ctx, trials)

	fmt.Println()
	fmt.Println("📊 Results")
	tbl := tablewriter.NewWriter(os.Stdout)
	tbl.Header("#", "Trial", "Return", "CAGR", "Sharpe", "MaxDD", "Trades", "Fallbacks", "Time")
	for _, res := range results {
		if res.Failed() {
			tbl.Append(
				fmt.Sprintf("%d", res.Index+1),
				res.Name,
				"❌ "+res.Err.Error(), "", "", "", "", "", "",
			)
			continue
		}
		s := res.Result.Summary
		tbl.Append(
			fmt.Sprintf("%d", res.Index+1),
			res.Name,
			formatPct(s.TotalReturn),
			formatPct(s.CAGR),
			fmt.Sprintf("%.2f", s.Sharpe),
			fmt.Sprintf("%.2f%%", s.MaxDrawdown*100),
			fmt.Sprintf("%d", s.NumTrades),
			fmt.Sprintf("%d", res.Result.FallbackCount),
			fmt.Sprintf("%.1fs", res.Elapsed.Seconds()),
		)
	}
	tbl.Render()

	best := -1
	failed := 0
	for i, res := range results {
		if res.Failed() {
			failed++
			continue
		}
		if best < 0 || res.Result.Summary.Sharpe > results[best].Result.Summary.Sharpe {
			best = i
		}
	}

	fmt.Println()
	if best >= 0 {
		bestSharpe := results[best].Result.Summary.Sharpe
		fmt.Printf("🏆 Best Sharpe: %s (%.2f%s)\n", results[best].Name, bestSharpe, sharpeBadge(bestSharpe))
	}
	if failed > 0 {
		fmt.Printf("⚠️  %d of %d trials failed\n", failed, len(results))
	}
	fmt.Printf("✅ Sweep finished in %.1f seconds\n", time.Since(started).Seconds())

	if failed == len(results) {
		return fmt.Errorf("all %d trials failed", failed)
	}
	return nil
}

// parseIntList splits "63,126,252". Empty input yields nil.
func parseIntList(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", p)
		}
		out = append(out, n)
	}
	return out, nil
}

// parseNameList splits "equal_weight,inverse_volatility", dropping blanks.
func parseNameList(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
