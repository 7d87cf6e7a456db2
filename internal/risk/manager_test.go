package risk

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schlafen318/dual-momentum-sub001/internal/contracts"
)

func targets(weights map[string]float64) contracts.TargetWeights {
	tw := contracts.NewTargetWeights(time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC))
	for sym, w := range weights {
		tw.Add(sym, w)
	}
	return tw
}

func TestManagerConfig_Validate(t *testing.T) {
	assert.NoError(t, ManagerConfig{}.Validate())
	assert.NoError(t, ManagerConfig{MaxPositionWeight: 0.25, MaxGrossExposure: 1}.Validate())
	assert.Error(t, ManagerConfig{MaxPositionWeight: -0.1}.Validate())
	assert.Error(t, ManagerConfig{MaxPositionWeight: 1.5}.Validate())
	assert.Error(t, ManagerConfig{MaxGrossExposure: 1.01}.Validate())
}

func TestManager_PositionCapRedistributes(t *testing.T) {
	m, err := NewManager(ManagerConfig{MaxPositionWeight: 0.25})
	require.NoError(t, err)

	in := targets(map[string]float64{"AAA": 0.5, "BBB": 0.3, "CCC": 0.2})
	out, err := m.Adjust(context.Background(), in.Date, in)
	require.NoError(t, err)

	// Everyone lands on the cap; the surplus stays in cash.
	assert.InDelta(t, 0.25, out.Weights["AAA"], 1e-12)
	assert.InDelta(t, 0.25, out.Weights["BBB"], 1e-12)
	assert.InDelta(t, 0.25, out.Weights["CCC"], 1e-12)
	assert.LessOrEqual(t, out.Total(), in.Total()+contracts.WeightEpsilon)
}

func TestManager_SpilloverKeepsTotal(t *testing.T) {
	m, err := NewManager(ManagerConfig{MaxPositionWeight: 0.3})
	require.NoError(t, err)

	in := targets(map[string]float64{"AAA": 0.4, "BBB": 0.25, "CCC": 0.2, "DDD": 0.1})
	out, err := m.Adjust(context.Background(), in.Date, in)
	require.NoError(t, err)

	// The 0.1 excess spills pro rata over the under-cap positions
	// without anyone crossing the cap, so nothing is lost.
	assert.InDelta(t, 0.3, out.Weights["AAA"], 1e-12)
	assert.InDelta(t, 0.25+0.1*0.25/0.55, out.Weights["BBB"], 1e-12)
	assert.InDelta(t, 0.2+0.1*0.2/0.55, out.Weights["CCC"], 1e-12)
	assert.InDelta(t, 0.1+0.1*0.1/0.55, out.Weights["DDD"], 1e-12)
	assert.InDelta(t, in.Total(), out.Total(), 1e-9)

	for sym, w := range out.Weights {
		assert.LessOrEqual(t, w, 0.3+contracts.WeightEpsilon, sym)
	}
}

func TestManager_ChainedSpillover(t *testing.T) {
	m, err := NewManager(ManagerConfig{MaxPositionWeight: 0.25})
	require.NoError(t, err)

	// The spill pushes BBB over the cap on the second round.
	in := targets(map[string]float64{"AAA": 0.9, "BBB": 0.05})
	out, err := m.Adjust(context.Background(), in.Date, in)
	require.NoError(t, err)

	assert.InDelta(t, 0.25, out.Weights["AAA"], 1e-12)
	assert.InDelta(t, 0.25, out.Weights["BBB"], 1e-12)
}

func TestManager_GrossExposureScalesDown(t *testing.T) {
	m, err := NewManager(ManagerConfig{MaxGrossExposure: 0.8})
	require.NoError(t, err)

	in := targets(map[string]float64{"AAA": 0.6, "BBB": 0.4})
	out, err := m.Adjust(context.Background(), in.Date, in)
	require.NoError(t, err)

	assert.InDelta(t, 0.48, out.Weights["AAA"], 1e-12)
	assert.InDelta(t, 0.32, out.Weights["BBB"], 1e-12)
	assert.InDelta(t, 0.8, out.Total(), 1e-12)
}

func TestManager_NoLimitsIsIdentity(t *testing.T) {
	m, err := NewManager(ManagerConfig{})
	require.NoError(t, err)

	in := targets(map[string]float64{"AAA": 0.6, "BBB": 0.4})
	out, err := m.Adjust(context.Background(), in.Date, in)
	require.NoError(t, err)

	assert.Equal(t, in.Weights, out.Weights)
}

func TestManager_AdjustDoesNotMutateInput(t *testing.T) {
	m, err := NewManager(ManagerConfig{MaxPositionWeight: 0.25})
	require.NoError(t, err)

	in := targets(map[string]float64{"AAA": 0.5, "BBB": 0.5})
	_, err = m.Adjust(context.Background(), in.Date, in)
	require.NoError(t, err)

	assert.Equal(t, 0.5, in.Weights["AAA"])
	assert.Equal(t, 0.5, in.Weights["BBB"])
}
