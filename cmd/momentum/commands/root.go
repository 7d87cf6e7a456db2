package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "momentum",
	Short: "듀얼 모멘텀 백테스트 엔진",
	Long: `Dual Momentum Backtest CLI

일별 종가 기반 듀얼 모멘텀 시뮬레이터.
하나의 YAML 설정으로 시그널 → 비중 → 체결 → 성과 평가까지.

Usage:
  go run ./cmd/momentum [command]

Examples:
  go run ./cmd/momentum backtest run --config config/run.example.yaml
  go run ./cmd/momentum sweep run --config config/run.example.yaml --lookbacks 63,126,252
  go run ./cmd/momentum config validate --config config/run.example.yaml
  go run ./cmd/momentum data import SPY.csv EFA.csv
  go run ./cmd/momentum data check`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
}
