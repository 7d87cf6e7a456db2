package optimizer

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/schlafen318/dual-momentum-sub001/internal/contracts"
)

// Compile-time interface check.
var _ contracts.Optimizer = RiskParity{}

const (
	riskParityIterations = 200
	riskParityTolerance  = 1e-10
)

// RiskParity equalizes each asset's contribution to portfolio variance
// using the cyclical multiplicative update
//
//	w_i <- w_i * (sigma_p^2 / n) / RC_i
//
// renormalized each pass, where RC_i = w_i * (Sigma w)_i.
type RiskParity struct{}

func (RiskParity) Name() string    { return "risk_parity" }
func (RiskParity) MinHistory() int { return 2 }

func (RiskParity) Weights(m contracts.ReturnsMatrix) (map[string]float64, error) {
	if err := checkMatrix(m, 2); err != nil {
		return nil, err
	}

	n := len(m.Symbols)
	cov := covarianceMatrix(m)

	w := make([]float64, n)
	for i := range w {
		w[i] = 1.0 / float64(n)
	}

	sigmaW := make([]float64, n)
	for iter := 0; iter < riskParityIterations; iter++ {
		// sigmaW = Sigma * w
		wv := mat.NewVecDense(n, w)
		var out mat.VecDense
		out.MulVec(cov, wv)

		portVar := 0.0
		for i := 0; i < n; i++ {
			sigmaW[i] = out.AtVec(i)
			portVar += w[i] * sigmaW[i]
		}
		if portVar <= 0 {
			return nil, fmt.Errorf("risk_parity: non-positive portfolio variance")
		}

		target := portVar / float64(n)
		maxDelta := 0.0
		total := 0.0
		for i := 0; i < n; i++ {
			rc := w[i] * sigmaW[i]
			if rc <= 0 {
				return nil, fmt.Errorf("risk_parity: non-positive risk contribution for %s", m.Symbols[i])
			}
			maxDelta = math.Max(maxDelta, math.Abs(rc-target))
			w[i] *= target / rc
			total += w[i]
		}
		for i := range w {
			w[i] /= total
		}
		if maxDelta < riskParityTolerance {
			break
		}
	}

	out := make(map[string]float64, n)
	for i, symbol := range m.Symbols {
		out[symbol] = w[i]
	}
	return out, nil
}
