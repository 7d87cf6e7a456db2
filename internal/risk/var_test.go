package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateVaR_LossPositiveConvention(t *testing.T) {
	// 20 returns sorted: the 95% VaR index is floor(0.05*20)=1, the
	// second worst day.
	returns := []float64{
		-0.10, -0.06, -0.04, -0.03, -0.02,
		-0.01, 0.00, 0.01, 0.01, 0.02,
		0.02, 0.02, 0.03, 0.03, 0.03,
		0.04, 0.04, 0.05, 0.05, 0.06,
	}

	r := CalculateVaR(returns, 0.95)
	assert.Equal(t, 0.95, r.Confidence)
	assert.InDelta(t, 0.06, r.VaR, 1e-12)
	// CVaR averages the tail {-0.10, -0.06}.
	assert.InDelta(t, 0.08, r.CVaR, 1e-12)
}

func TestCalculateVaR_AllGainsYieldZero(t *testing.T) {
	returns := []float64{0.01, 0.02, 0.03, 0.04, 0.05}

	r := CalculateVaR(returns, 0.95)
	assert.Zero(t, r.VaR)
	assert.Zero(t, r.CVaR)
}

func TestCalculateVaR_DegenerateInputs(t *testing.T) {
	assert.Zero(t, CalculateVaR(nil, 0.95).VaR)
	assert.Zero(t, CalculateVaR([]float64{-0.1}, 0).VaR)
	assert.Zero(t, CalculateVaR([]float64{-0.1}, 1).VaR)

	// A single losing day is the whole distribution.
	r := CalculateVaR([]float64{-0.1}, 0.95)
	assert.InDelta(t, 0.1, r.VaR, 1e-12)
	assert.InDelta(t, 0.1, r.CVaR, 1e-12)
}

func TestCalculateVaR_HigherConfidenceDeepensTail(t *testing.T) {
	returns := make([]float64, 0, 100)
	for i := 0; i < 100; i++ {
		returns = append(returns, -0.001*float64(i))
	}

	var95 := CalculateVaR(returns, 0.95)
	var99 := CalculateVaR(returns, 0.99)
	assert.Greater(t, var99.VaR, var95.VaR)
	assert.GreaterOrEqual(t, var99.CVaR, var99.VaR)
}
