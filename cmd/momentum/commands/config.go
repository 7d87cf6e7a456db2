package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/schlafen318/dual-momentum-sub001/internal/optimizer"
	"github.com/schlafen318/dual-momentum-sub001/internal/runconfig"
	"github.com/schlafen318/dual-momentum-sub001/internal/strategy"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "실행 설정 검증",
	Long: `백테스트 실행 설정 YAML을 검증합니다.

Example:
  go run ./cmd/momentum config validate --config config/run.example.yaml`,
}

var (
	configValidateCmd = &cobra.Command{
		Use:   "validate",
		Short: "설정 파일 구조/값/레지스트리 이름 검증",
		Long: `설정을 3단계로 검증합니다:
1. YAML 구조 (알 수 없는 필드 거부)
2. 값 제약 (기간, 룩백, 비용률 등)
3. 레지스트리 이름 (전략/옵티마이저 실제 생성)

Example:
  go run ./cmd/momentum config validate --config my-run.yaml`,
		RunE: runConfigValidate,
	}

	// Flags
	configValidatePath string
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configValidateCmd)

	// Flags
	configValidateCmd.Flags().StringVar(&configValidatePath, "config", "", "run config YAML (required)")
	configValidateCmd.MarkFlagRequired("config")
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	runCfg, _, err := runconfig.Load(configValidatePath)
	if err != nil {
		var verr runconfig.ValidationError
		if errors.As(err, &verr) {
			fmt.Printf("❌ %s\n", configValidatePath)
			fmt.Printf("   field:   %s\n", verr.Field)
			fmt.Printf("   problem: %s\n", verr.Message)
			return fmt.Errorf("config invalid")
		}
		return err
	}

	// Structure and values hold. Now resolve the names against the
	// live registries: the only way to be sure a strategy builds is
	// to build it.
	params, err := runCfg.Strategy.Params()
	if err != nil {
		return err
	}
	if _, err := strategy.DefaultRegistry().Build(runCfg.Strategy.Name, params); err != nil {
		fmt.Printf("❌ %v\n", err)
		return fmt.Errorf("config invalid")
	}
	if opt := runCfg.Translator.Optimizer; opt != "" {
		if _, err := optimizer.DefaultRegistry().Get(opt); err != nil {
			fmt.Printf("❌ %v\n", err)
			return fmt.Errorf("config invalid")
		}
	}

	hash, err := runconfig.Hash(runCfg)
	if err != nil {
		return err
	}

	fmt.Printf("✅ %s is valid\n\n", configValidatePath)
	fmt.Printf("📋 Run: %s\n", runCfg.Name)
	fmt.Printf("📅 Period: %s ~ %s\n",
		runCfg.Run.StartDate.Format("2006-01-02"),
		runCfg.Run.EndDate.Format("2006-01-02"))
	fmt.Printf("🧭 Strategy: %s [%s]\n",
		runCfg.Strategy.Name,
		strings.Join(runCfg.Strategy.Universe, ", "))
	if runCfg.Translator.Optimizer != "" {
		fmt.Printf("⚖️  Optimizer: %s (window %d)\n",
			runCfg.Translator.Optimizer, runCfg.Translator.OptimizerWindow)
	}
	fmt.Printf("🔑 Config hash: %s\n", hash)

	if warnings := runconfig.Warn(runCfg); len(warnings) > 0 {
		fmt.Println()
		printWarnings(warnings)
	}
	return nil
}
