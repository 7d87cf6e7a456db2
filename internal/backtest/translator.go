package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/schlafen318/dual-momentum-sub001/internal/contracts"
	"github.com/schlafen318/dual-momentum-sub001/internal/optimizer"
	"github.com/schlafen318/dual-momentum-sub001/pkg/logger"
)

// TranslatorConfig configures signal-to-weight translation.
type TranslatorConfig struct {
	// SafeSymbol receives the defensive share of blended slots.
	// Empty means the defensive share stays in cash.
	SafeSymbol string

	// Optimizer reallocates the risk sleeve. Nil keeps the
	// strategy-native slot weights.
	Optimizer       contracts.Optimizer
	OptimizerWindow int

	// RiskManager applies a final adjustment pass. Nil skips it.
	RiskManager contracts.RiskManager
}

// Translator converts strategy signals into target portfolio weights
// ⭐ SSOT: 시그널 → 목표 비중 변환은 여기서만
//
// Translation is stateless; a fallback to strategy-native weights is
// reported on the returned TargetWeights, never accumulated here.
type Translator struct {
	cfg TranslatorConfig
	log *logger.Logger
}

// NewTranslator creates a translator with the given config
func NewTranslator(cfg TranslatorConfig, log *logger.Logger) *Translator {
	return &Translator{cfg: cfg, log: log}
}

// Translate converts a signal list into target weights for one rebalance.
//
// The risk sleeve is normalized by signal strength, optionally
// reallocated by the optimizer, then split per signal between the
// signal's symbol and the safe asset according to its blend ratio.
// Defensive slots route wholesale to their own symbol. Any weight sum
// above 1.0 (beyond epsilon) is a hard error before any order exists.
func (t *Translator) Translate(ctx context.Context, date time.Time, signals contracts.SignalList, quotes contracts.QuoteView) (contracts.TargetWeights, error) {
	tw := contracts.NewTargetWeights(date)
	if len(signals) == 0 {
		return tw, nil
	}

	if err := signals.Validate(); err != nil {
		return tw, fmt.Errorf("translate: %w", err)
	}

	slotWeights := slotWeights(signals)
	risk := signals.Risk()

	// Optimizer substitution applies to the risk sleeve only and
	// preserves the sleeve's total budget.
	riskWeights := make(map[string]float64, len(risk))
	riskBudget := 0.0
	for i, sig := range signals {
		if sig.IsRisk() {
			riskWeights[sig.Symbol] += slotWeights[i]
			riskBudget += slotWeights[i]
		}
	}

	if t.cfg.Optimizer != nil && len(riskWeights) >= 2 && riskBudget > contracts.WeightEpsilon {
		optimized, err := t.optimizeRiskSleeve(riskWeights, riskBudget, date, quotes)
		if err != nil {
			tw.FallbackUsed = true
			t.log.WithError(err).WithFields(map[string]interface{}{
				"optimizer": t.cfg.Optimizer.Name(),
				"date":      date.Format("2006-01-02"),
				"assets":    len(riskWeights),
			}).Warn("Optimizer failed, falling back to strategy weights")
		} else {
			riskWeights = optimized
		}
	}

	// Blend: the risky fraction of each slot stays on the signal's
	// symbol, the rest rotates into the safe asset (or cash).
	blendRatios := make(map[string]float64, len(risk))
	for _, sig := range risk {
		blendRatios[sig.Symbol] = sig.BlendRatio
	}

	safeShare := 0.0
	for sym, w := range riskWeights {
		ratio := blendRatios[sym]
		tw.Add(sym, w*ratio)
		safeShare += w * (1 - ratio)
	}
	if safeShare > contracts.WeightEpsilon {
		if t.cfg.SafeSymbol != "" {
			tw.Add(t.cfg.SafeSymbol, safeShare)
		}
		// No safe symbol: the defensive share stays in cash.
	}

	// Defensive slots carry their own destination symbol.
	for i, sig := range signals {
		if sig.IsDefensive() {
			tw.Add(sig.Symbol, slotWeights[i])
		}
	}

	dropDust(tw)

	// Nothing investable survived: rotate wholesale into the safe
	// asset when one is configured, otherwise hold cash.
	if tw.Count() == 0 && t.cfg.SafeSymbol != "" {
		tw.Add(t.cfg.SafeSymbol, 1.0)
	}

	if total := tw.Total(); total > 1+contracts.WeightEpsilon {
		return tw, fmt.Errorf("%w: weight sum %.12f on %s", ErrOverAllocated, total, date.Format("2006-01-02"))
	}

	if t.cfg.RiskManager != nil {
		adjusted, err := t.cfg.RiskManager.Adjust(ctx, date, tw)
		if err != nil {
			return tw, fmt.Errorf("risk adjustment: %w", err)
		}
		if adjusted.Total() > tw.Total()+contracts.WeightEpsilon {
			return tw, fmt.Errorf("risk adjustment increased total weight from %.6f to %.6f", tw.Total(), adjusted.Total())
		}
		adjusted.FallbackUsed = tw.FallbackUsed
		tw = adjusted
		dropDust(tw)
	}

	if err := tw.Validate(); err != nil {
		return tw, err
	}
	return tw, nil
}

// optimizeRiskSleeve asks the optimizer for sleeve weights and scales
// them back to the sleeve's budget.
func (t *Translator) optimizeRiskSleeve(native map[string]float64, budget float64, date time.Time, quotes contracts.QuoteView) (map[string]float64, error) {
	symbols := make([]string, 0, len(native))
	for sym := range native {
		symbols = append(symbols, sym)
	}

	window := t.cfg.OptimizerWindow
	if min := t.cfg.Optimizer.MinHistory(); window < min {
		window = min
	}

	matrix, err := optimizer.BuildMatrix(quotes, symbols, date, window)
	if err != nil {
		return nil, err
	}

	weights, err := t.cfg.Optimizer.Weights(matrix)
	if err != nil {
		return nil, err
	}

	// Optimizer weights sum to 1 over the sleeve; rescale to budget.
	out := make(map[string]float64, len(weights))
	for sym, w := range weights {
		out[sym] = w * budget
	}
	return out, nil
}

// slotWeights normalizes signal strengths into slot shares.
// 강도 합이 0이면 균등 분배
func slotWeights(signals contracts.SignalList) []float64 {
	out := make([]float64, len(signals))
	total := signals.TotalStrength()
	if total <= contracts.WeightEpsilon {
		for i := range out {
			out[i] = 1.0 / float64(len(signals))
		}
		return out
	}
	for i, sig := range signals {
		out[i] = sig.Strength / total
	}
	return out
}

// dropDust removes weights too small to trade.
func dropDust(tw contracts.TargetWeights) {
	for sym, w := range tw.Weights {
		if w < contracts.WeightEpsilon {
			delete(tw.Weights, sym)
		}
	}
}
