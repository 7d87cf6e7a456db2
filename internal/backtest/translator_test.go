package backtest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schlafen318/dual-momentum-sub001/internal/contracts"
	"github.com/schlafen318/dual-momentum-sub001/internal/marketdata"
	"github.com/schlafen318/dual-momentum-sub001/pkg/logger"
)

// fixedOptimizer returns canned weights or a canned error.
type fixedOptimizer struct {
	min     int
	weights map[string]float64
	err     error
}

func (f fixedOptimizer) Name() string { return "fixed" }

func (f fixedOptimizer) MinHistory() int {
	if f.min == 0 {
		return 1
	}
	return f.min
}

func (f fixedOptimizer) Weights(contracts.ReturnsMatrix) (map[string]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.weights, nil
}

type cappingRiskManager struct{ cap float64 }

func (c cappingRiskManager) Adjust(_ context.Context, _ time.Time, tw contracts.TargetWeights) (contracts.TargetWeights, error) {
	out := tw.Clone()
	for sym, w := range out.Weights {
		if w > c.cap {
			out.Weights[sym] = c.cap
		}
	}
	return out, nil
}

type inflatingRiskManager struct{}

func (inflatingRiskManager) Adjust(_ context.Context, _ time.Time, tw contracts.TargetWeights) (contracts.TargetWeights, error) {
	out := tw.Clone()
	out.Weights["EXTRA"] = 0.5
	return out, nil
}

func translatorQuotes() *marketdata.History {
	bars := append(flatBars("AAA", day(2024, 1, 1), 10, 100),
		flatBars("BBB", day(2024, 1, 1), 10, 50)...)
	return marketdata.NewHistory(bars)
}

func translate(t *testing.T, cfg TranslatorConfig, signals contracts.SignalList) (contracts.TargetWeights, error) {
	t.Helper()
	tr := NewTranslator(cfg, logger.NewNop())
	return tr.Translate(context.Background(), day(2024, 1, 10), signals, translatorQuotes())
}

func TestTranslator_StrengthProportional(t *testing.T) {
	date := day(2024, 1, 10)
	signals := contracts.SignalList{
		contracts.NewSignal("AAA", date, 3, 0.3),
		contracts.NewSignal("BBB", date, 1, 0.1),
	}

	tw, err := translate(t, TranslatorConfig{}, signals)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, tw.Weights["AAA"], 1e-12)
	assert.InDelta(t, 0.25, tw.Weights["BBB"], 1e-12)
	assert.False(t, tw.FallbackUsed)
}

func TestTranslator_ZeroStrengthSplitsEqually(t *testing.T) {
	date := day(2024, 1, 10)
	signals := contracts.SignalList{
		contracts.NewSignal("AAA", date, 0, 0.3),
		contracts.NewSignal("BBB", date, 0, 0.1),
	}

	tw, err := translate(t, TranslatorConfig{}, signals)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, tw.Weights["AAA"], 1e-12)
	assert.InDelta(t, 0.5, tw.Weights["BBB"], 1e-12)
}

func TestTranslator_BlendSplitsSlotWithSafeAsset(t *testing.T) {
	date := day(2024, 1, 10)
	signals := contracts.SignalList{
		contracts.NewSignal("AAA", date, 1, 0.3),
		contracts.NewBlendSignal("BBB", date, 1, 0.01, 0.5),
	}

	tw, err := translate(t, TranslatorConfig{SafeSymbol: "SAFE"}, signals)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, tw.Weights["AAA"], 1e-12)
	assert.InDelta(t, 0.25, tw.Weights["BBB"], 1e-12)
	assert.InDelta(t, 0.25, tw.Weights["SAFE"], 1e-12)
	assert.InDelta(t, 1.0, tw.Total(), 1e-12)
}

func TestTranslator_BlendWithoutSafeAssetLeavesCash(t *testing.T) {
	date := day(2024, 1, 10)
	signals := contracts.SignalList{
		contracts.NewBlendSignal("AAA", date, 1, 0.0, 0.5),
	}

	tw, err := translate(t, TranslatorConfig{}, signals)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, tw.Weights["AAA"], 1e-12)
	assert.InDelta(t, 0.5, tw.CashWeight(), 1e-12)
}

func TestTranslator_DefensiveRoutesToOwnSymbol(t *testing.T) {
	date := day(2024, 1, 10)
	signals := contracts.SignalList{
		contracts.NewSignal("AAA", date, 1, 0.3),
		contracts.NewDefensiveSignal("SAFE", date, 1),
	}

	tw, err := translate(t, TranslatorConfig{SafeSymbol: "SAFE"}, signals)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, tw.Weights["AAA"], 1e-12)
	assert.InDelta(t, 0.5, tw.Weights["SAFE"], 1e-12)
}

func TestTranslator_AllFlatRotatesToSafe(t *testing.T) {
	date := day(2024, 1, 10)
	signals := contracts.SignalList{
		{Symbol: "AAA", Date: date, Direction: contracts.DirectionFlat, Reason: contracts.ReasonMomentum, Strength: 1},
	}

	tw, err := translate(t, TranslatorConfig{SafeSymbol: "SAFE"}, signals)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, tw.Weights["SAFE"], 1e-12)

	// Without a safe asset the same signals hold pure cash.
	tw, err = translate(t, TranslatorConfig{}, signals)
	require.NoError(t, err)
	assert.Equal(t, 0, tw.Count())
	assert.InDelta(t, 1.0, tw.CashWeight(), 1e-12)
}

func TestTranslator_EmptySignals(t *testing.T) {
	tw, err := translate(t, TranslatorConfig{SafeSymbol: "SAFE"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, tw.Count())
}

func TestTranslator_OptimizerReallocatesRiskSleeve(t *testing.T) {
	date := day(2024, 1, 10)
	signals := contracts.SignalList{
		contracts.NewSignal("AAA", date, 1, 0.3),
		contracts.NewSignal("BBB", date, 1, 0.1),
		contracts.NewDefensiveSignal("SAFE", date, 1),
	}

	cfg := TranslatorConfig{
		SafeSymbol:      "SAFE",
		Optimizer:       fixedOptimizer{weights: map[string]float64{"AAA": 0.25, "BBB": 0.75}},
		OptimizerWindow: 3,
	}

	tw, err := translate(t, cfg, signals)
	require.NoError(t, err)

	// Risk budget is 2/3, redistributed 25/75 instead of 50/50.
	assert.InDelta(t, 2.0/3.0*0.25, tw.Weights["AAA"], 1e-12)
	assert.InDelta(t, 2.0/3.0*0.75, tw.Weights["BBB"], 1e-12)
	assert.InDelta(t, 1.0/3.0, tw.Weights["SAFE"], 1e-12)
	assert.False(t, tw.FallbackUsed)
}

func TestTranslator_OptimizerFailureFallsBack(t *testing.T) {
	date := day(2024, 1, 10)
	signals := contracts.SignalList{
		contracts.NewSignal("AAA", date, 3, 0.3),
		contracts.NewSignal("BBB", date, 1, 0.1),
	}

	cfg := TranslatorConfig{
		Optimizer:       fixedOptimizer{err: errors.New("singular covariance")},
		OptimizerWindow: 3,
	}

	tw, err := translate(t, cfg, signals)
	require.NoError(t, err)
	assert.True(t, tw.FallbackUsed)
	assert.InDelta(t, 0.75, tw.Weights["AAA"], 1e-12)
	assert.InDelta(t, 0.25, tw.Weights["BBB"], 1e-12)
}

func TestTranslator_InsufficientHistoryFallsBack(t *testing.T) {
	date := day(2024, 1, 10)
	signals := contracts.SignalList{
		contracts.NewSignal("AAA", date, 1, 0.3),
		contracts.NewSignal("BBB", date, 1, 0.1),
	}

	// History has 10 bars; the optimizer wants 100.
	cfg := TranslatorConfig{
		Optimizer:       fixedOptimizer{min: 100, weights: map[string]float64{"AAA": 1.0}},
		OptimizerWindow: 100,
	}

	tw, err := translate(t, cfg, signals)
	require.NoError(t, err)
	assert.True(t, tw.FallbackUsed)
	assert.InDelta(t, 0.5, tw.Weights["AAA"], 1e-12)
	assert.InDelta(t, 0.5, tw.Weights["BBB"], 1e-12)
}

func TestTranslator_OverAllocationIsFatal(t *testing.T) {
	date := day(2024, 1, 10)
	signals := contracts.SignalList{
		contracts.NewSignal("AAA", date, 1, 0.3),
		contracts.NewSignal("BBB", date, 1, 0.1),
	}

	// A broken optimizer that hands back more than the whole sleeve.
	cfg := TranslatorConfig{
		Optimizer:       fixedOptimizer{weights: map[string]float64{"AAA": 1.5, "BBB": 1.2}},
		OptimizerWindow: 3,
	}

	_, err := translate(t, cfg, signals)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOverAllocated)
}

func TestTranslator_RiskManagerCapsWeights(t *testing.T) {
	date := day(2024, 1, 10)
	signals := contracts.SignalList{
		contracts.NewSignal("AAA", date, 3, 0.3),
		contracts.NewSignal("BBB", date, 1, 0.1),
	}

	cfg := TranslatorConfig{RiskManager: cappingRiskManager{cap: 0.4}}

	tw, err := translate(t, cfg, signals)
	require.NoError(t, err)
	assert.InDelta(t, 0.4, tw.Weights["AAA"], 1e-12)
	assert.InDelta(t, 0.25, tw.Weights["BBB"], 1e-12)
}

func TestTranslator_RiskManagerCannotIncreaseTotal(t *testing.T) {
	date := day(2024, 1, 10)
	signals := contracts.SignalList{
		contracts.NewSignal("AAA", date, 1, 0.3),
	}

	cfg := TranslatorConfig{RiskManager: inflatingRiskManager{}}

	_, err := translate(t, cfg, signals)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "increased total weight")
}

func TestTranslator_InvalidSignalRejected(t *testing.T) {
	date := day(2024, 1, 10)
	signals := contracts.SignalList{
		{Symbol: "", Date: date, Direction: contracts.DirectionLong, Reason: contracts.ReasonMomentum, Strength: 1},
	}

	_, err := translate(t, TranslatorConfig{}, signals)
	assert.Error(t, err)
}
