package optimizer

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/schlafen318/dual-momentum-sub001/internal/contracts"
)

// minVol floors volatility so inverse-risk weights stay finite when an
// asset barely moves inside the window.
const minVol = 1e-8

// ridgeScale sizes the diagonal loading added before factorizing a
// covariance matrix. Short windows over similar ETFs produce
// near-singular matrices without it.
const ridgeScale = 1e-8

// observationMatrix lays the returns out as an (observations x assets)
// dense matrix, the orientation gonum's stat functions expect.
func observationMatrix(m contracts.ReturnsMatrix) *mat.Dense {
	obs := m.Observations()
	n := len(m.Symbols)
	data := make([]float64, obs*n)
	for j, series := range m.Series {
		for i, v := range series {
			data[i*n+j] = v
		}
	}
	return mat.NewDense(obs, n, data)
}

// covarianceMatrix computes the sample covariance with ridge loading on
// the diagonal.
func covarianceMatrix(m contracts.ReturnsMatrix) *mat.SymDense {
	x := observationMatrix(m)
	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, x, nil)

	n := cov.SymmetricDim()
	trace := 0.0
	for i := 0; i < n; i++ {
		trace += cov.At(i, i)
	}
	ridge := ridgeScale * (trace/float64(n) + 1)
	for i := 0; i < n; i++ {
		cov.SetSym(i, i, cov.At(i, i)+ridge)
	}
	return &cov
}

// correlationMatrix computes the sample correlation matrix.
func correlationMatrix(m contracts.ReturnsMatrix) *mat.SymDense {
	x := observationMatrix(m)
	var corr mat.SymDense
	stat.CorrelationMatrix(&corr, x, nil)
	return &corr
}

// volatilities returns the per-symbol sample standard deviations,
// floored at minVol.
func volatilities(m contracts.ReturnsMatrix) []float64 {
	out := make([]float64, len(m.Series))
	for i, series := range m.Series {
		sd := stat.StdDev(series, nil)
		if sd < minVol {
			sd = minVol
		}
		out[i] = sd
	}
	return out
}

// meanReturns returns the per-symbol mean daily returns.
func meanReturns(m contracts.ReturnsMatrix) []float64 {
	out := make([]float64, len(m.Series))
	for i, series := range m.Series {
		out[i] = stat.Mean(series, nil)
	}
	return out
}

// solveSym solves cov * x = b via Cholesky factorization.
func solveSym(cov *mat.SymDense, b []float64) ([]float64, error) {
	var chol mat.Cholesky
	if ok := chol.Factorize(cov); !ok {
		return nil, fmt.Errorf("optimizer: covariance matrix is not positive definite")
	}
	var x mat.VecDense
	if err := chol.SolveVecTo(&x, mat.NewVecDense(len(b), b)); err != nil {
		return nil, fmt.Errorf("optimizer: solve failed: %w", err)
	}
	out := make([]float64, len(b))
	for i := range out {
		out[i] = x.AtVec(i)
	}
	return out, nil
}

// longOnly clips negative raw weights to zero and renormalizes to sum
// one. Raises an error when nothing positive remains.
func longOnly(symbols []string, raw []float64) (map[string]float64, error) {
	total := 0.0
	for _, w := range raw {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return nil, fmt.Errorf("optimizer: no positive weights after long-only clip")
	}

	out := make(map[string]float64, len(symbols))
	for i, symbol := range symbols {
		w := raw[i]
		if w < 0 {
			w = 0
		}
		out[symbol] = w / total
	}
	return out, nil
}

// checkMatrix validates the matrix against an optimizer's minimum
// observation requirement.
func checkMatrix(m contracts.ReturnsMatrix, minObs int) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if m.Observations() < minObs {
		return fmt.Errorf("optimizer: %d observations, need %d: %w",
			m.Observations(), minObs, contracts.ErrInsufficientData)
	}
	return nil
}
