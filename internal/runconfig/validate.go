package runconfig

import (
	"fmt"

	"github.com/schlafen318/dual-momentum-sub001/internal/contracts"
	"github.com/schlafen318/dual-momentum-sub001/internal/strategy"
)

// ValidationError names the failing field, so a config mistake reads
// as "strategy.lookback: must be >= 1" instead of a bare message.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning flags a legal but suspicious setting (non-fatal).
type Warning struct {
	Code    string
	Message string
}

// Validate checks all hard constraints. First failure wins.
// 실패 시 error 반환 (실행 중단)
func Validate(cfg *Config) error {
	if cfg.Name == "" {
		return ValidationError{"name", "required"}
	}

	// === Run ===
	if err := cfg.Run.Validate(); err != nil {
		return ValidationError{"run", err.Error()}
	}

	// === Strategy ===
	s := cfg.Strategy
	if s.Name == "" {
		return ValidationError{"strategy.name", "required"}
	}
	if len(s.Universe) == 0 {
		return ValidationError{"strategy.universe", "must not be empty"}
	}
	seen := make(map[string]bool, len(s.Universe))
	for i, sym := range s.Universe {
		if sym == "" {
			return ValidationError{fmt.Sprintf("strategy.universe[%d]", i), "empty symbol"}
		}
		if seen[sym] {
			return ValidationError{
				Field:   fmt.Sprintf("strategy.universe[%d]", i),
				Message: fmt.Sprintf("duplicate symbol %q", sym),
			}
		}
		seen[sym] = true
	}
	if s.Lookback < 1 {
		return ValidationError{"strategy.lookback", fmt.Sprintf("must be >= 1, got %d", s.Lookback)}
	}
	if s.TopN < 0 {
		return ValidationError{"strategy.top_n", fmt.Sprintf("must be >= 0, got %d", s.TopN)}
	}
	if s.BlendWidth < 0 {
		return ValidationError{"strategy.blend_width", fmt.Sprintf("must be >= 0, got %f", s.BlendWidth)}
	}
	switch strategy.WeightingMode(s.Weighting) {
	case "", strategy.WeightEqual, strategy.WeightMomentum:
	default:
		return ValidationError{"strategy.weighting", fmt.Sprintf("unknown mode %q", s.Weighting)}
	}
	if s.Frequency != "" {
		if _, err := contracts.ParseFrequency(s.Frequency); err != nil {
			return ValidationError{"strategy.frequency", err.Error()}
		}
	}

	// === Translator ===
	// Optimizer name membership is a registry concern; the caller
	// resolves it against whatever registry it wired.
	if cfg.Translator.OptimizerWindow < 0 {
		return ValidationError{
			Field:   "translator.optimizer_window",
			Message: fmt.Sprintf("must be >= 0, got %d", cfg.Translator.OptimizerWindow),
		}
	}

	// === Execution ===
	if err := cfg.Execution.Validate(); err != nil {
		return ValidationError{"execution", err.Error()}
	}

	// === Risk ===
	if err := cfg.Risk.Limits.Validate(); err != nil {
		return ValidationError{"risk.limits", err.Error()}
	}
	if cfg.Risk.Bootstrap != nil {
		if err := cfg.Risk.Bootstrap.Validate(); err != nil {
			return ValidationError{"risk.bootstrap", err.Error()}
		}
	}

	return nil
}

// Warn checks recommended constraints (non-fatal)
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	if cfg.Execution.CommissionRate == 0 && cfg.Execution.SlippageRate == 0 {
		warnings = append(warnings, Warning{
			Code:    "ZERO_COSTS",
			Message: "commission and slippage are both zero: results assume frictionless fills",
		})
	}

	if cfg.Strategy.Lookback >= 1 && cfg.Strategy.Lookback < 20 {
		warnings = append(warnings, Warning{
			Code:    "SHORT_LOOKBACK",
			Message: fmt.Sprintf("lookback %d is under one trading month: momentum ranking will be noisy", cfg.Strategy.Lookback),
		})
	}

	if cfg.Translator.Optimizer != "" && cfg.Translator.OptimizerWindow >= 1 && cfg.Translator.OptimizerWindow < 20 {
		warnings = append(warnings, Warning{
			Code:    "SHORT_OPTIMIZER_WINDOW",
			Message: fmt.Sprintf("optimizer window %d gives unstable covariance estimates", cfg.Translator.OptimizerWindow),
		})
	}

	if cfg.Run.Benchmark == "" {
		warnings = append(warnings, Warning{
			Code:    "NO_BENCHMARK",
			Message: "no benchmark configured: alpha/beta and relative return are skipped",
		})
	}

	return warnings
}
