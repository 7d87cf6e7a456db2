package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/schlafen318/dual-momentum-sub001/internal/marketdata"
	"github.com/schlafen318/dual-momentum-sub001/pkg/config"
	"github.com/schlafen318/dual-momentum-sub001/pkg/database"
)

// dataCmd represents the data command
var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "가격 데이터 적재/점검",
	Long: `백테스트용 일봉 데이터를 저장소에 적재하고 상태를 점검합니다.

저장소 백엔드는 DATA_BACKEND 환경변수로 선택합니다
(sqlite, parquet, csv, postgres).

Example:
  go run ./cmd/momentum data import prices/SPY.csv prices/AGG.csv
  go run ./cmd/momentum data check`,
}

var (
	dataImportCmd = &cobra.Command{
		Use:   "import [file.csv ...]",
		Short: "CSV 일봉 파일을 저장소로 적재",
		Long: `CSV 파일의 일봉을 읽어 설정된 백엔드에 업서트합니다.

심볼은 --symbol 플래그, CSV의 symbol 컬럼, 파일명 순서로 결정합니다.
같은 (심볼, 날짜)는 마지막 적재가 이깁니다.

Example:
  go run ./cmd/momentum data import prices/SPY.csv prices/AGG.csv
  go run ./cmd/momentum data import download.csv --symbol SPY`,
		Args: cobra.MinimumNArgs(1),
		RunE: runDataImport,
	}

	dataCheckCmd = &cobra.Command{
		Use:   "check",
		Short: "심볼별 데이터 범위/공백 점검",
		Long: `저장소의 심볼별 커버리지를 표로 보여줍니다:
바 개수, 첫/마지막 날짜, 날짜 공백 수.

Example:
  go run ./cmd/momentum data check`,
		RunE: runDataCheck,
	}

	// Flags
	dataImportSymbol string
)

func init() {
	rootCmd.AddCommand(dataCmd)
	dataCmd.AddCommand(dataImportCmd)
	dataCmd.AddCommand(dataCheckCmd)

	// Flags
	dataImportCmd.Flags().StringVar(&dataImportSymbol, "symbol", "", "symbol override (single file only)")
}

func runDataImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if dataImportSymbol != "" && len(args) > 1 {
		return fmt.Errorf("--symbol applies to a single file, got %d files", len(args))
	}

	cfg, err := appConfig()
	if err != nil {
		return err
	}

	cat, cleanup, err := openCatalog(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	fmt.Printf("=== Data Import (%s) ===\n\n", cfg.Data.Backend)

	total := 0
	for _, path := range args {
		symbol := dataImportSymbol
		if symbol == "" {
			// Fallback for files without a symbol column: SPY.csv → SPY.
			base := filepath.Base(path)
			symbol = strings.ToUpper(strings.TrimSuffix(base, filepath.Ext(base)))
		}

		bars, err := marketdata.ReadCSVFile(path, symbol)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		if len(bars) == 0 {
			fmt.Printf("⚠️  %s: no rows, skipped\n", path)
			continue
		}

		if err := cat.SaveBars(ctx, bars); err != nil {
			return fmt.Errorf("save %s: %w", path, err)
		}

		first, last := bars[0].Date, bars[len(bars)-1].Date
		fmt.Printf("✅ %s: %d bars (%s ~ %s)\n",
			bars[0].Symbol, len(bars),
			first.Format("2006-01-02"), last.Format("2006-01-02"))
		total += len(bars)
	}

	fmt.Printf("\n💾 Imported %d bars from %d files\n", total, len(args))
	return nil
}

func runDataCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := appConfig()
	if err != nil {
		return err
	}

	cat, cleanup, err := openCatalog(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	fmt.Printf("=== Data Check (%s) ===\n\n", cfg.Data.Backend)

	symbols, err := cat.Symbols(ctx)
	if err != nil {
		return fmt.Errorf("list symbols: %w", err)
	}
	if len(symbols) == 0 {
		fmt.Println("⚠️  No symbols stored. Run `data import` first.")
		return nil
	}

	// Wide enough for any daily bar archive. The parquet backend walks
	// one file per year, so the range stays bounded.
	from := time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Now().UTC().AddDate(1, 0, 0)

	tbl := tablewriter.NewWriter(os.Stdout)
	tbl.Header("Symbol", "Bars", "First", "Last", "Gaps")
	totalBars := 0
	for _, symbol := range symbols {
		bars, err := cat.LoadBars(ctx, symbol, from, to)
		if err != nil {
			return fmt.Errorf("load %s: %w", symbol, err)
		}
		if len(bars) == 0 {
			tbl.Append(symbol, "0", "-", "-", "-")
			continue
		}
		tbl.Append(
			symbol,
			fmt.Sprintf("%d", len(bars)),
			bars[0].Date.Format("2006-01-02"),
			bars[len(bars)-1].Date.Format("2006-01-02"),
			fmt.Sprintf("%d", countGaps(bars)),
		)
		totalBars += len(bars)
	}
	tbl.Render()

	fmt.Printf("\n📊 %d symbols, %d bars total\n", len(symbols), totalBars)

	if cfg.Data.Backend == "postgres" {
		printDBHealth(cmd, cfg)
	}
	return nil
}

// countGaps counts consecutive-bar intervals longer than 4 calendar
// days. Weekends and single holidays pass; longer holes are flagged.
func countGaps(bars []marketdata.Bar) int {
	gaps := 0
	for i := 1; i < len(bars); i++ {
		if bars[i].Date.Sub(bars[i-1].Date) > 4*24*time.Hour {
			gaps++
		}
	}
	return gaps
}

// printDBHealth pings the shared pool and reports connection stats.
func printDBHealth(cmd *cobra.Command, cfg *config.Config) {
	ctx := cmd.Context()

	db, err := database.New(cfg)
	if err != nil {
		fmt.Printf("\n⚠️  database unreachable: %v\n", err)
		return
	}
	defer db.Close()

	status, err := db.HealthCheck(ctx)
	if err != nil {
		fmt.Printf("\n⚠️  database health check failed: %v\n", err)
		return
	}

	fmt.Println("\n🗄️  Database")
	fmt.Printf("Healthy: %v  Response: %s\n", status.Healthy, status.ResponseTime)
	fmt.Printf("Connections: %d total, %d idle (max %d)\n",
		status.Stats.TotalConns, status.Stats.IdleConns, status.Stats.MaxConns)
}
