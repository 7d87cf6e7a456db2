package optimizer

import (
	"fmt"

	"github.com/schlafen318/dual-momentum-sub001/internal/contracts"
)

// Compile-time interface checks.
var _ contracts.Optimizer = MinVariance{}
var _ contracts.Optimizer = MaxSharpe{}
var _ contracts.Optimizer = MaxDiversification{}

// MinVariance solves for the unconstrained minimum variance portfolio
// w proportional to Sigma^-1 * 1, then clips to long-only.
type MinVariance struct{}

func (MinVariance) Name() string    { return "min_variance" }
func (MinVariance) MinHistory() int { return 2 }

func (MinVariance) Weights(m contracts.ReturnsMatrix) (map[string]float64, error) {
	if err := checkMatrix(m, 2); err != nil {
		return nil, err
	}

	ones := make([]float64, len(m.Symbols))
	for i := range ones {
		ones[i] = 1
	}
	raw, err := solveSym(covarianceMatrix(m), ones)
	if err != nil {
		return nil, fmt.Errorf("min_variance: %w", err)
	}
	return longOnly(m.Symbols, raw)
}

// MaxSharpe solves for the tangency portfolio w proportional to
// Sigma^-1 * mu with a zero risk-free rate. When every mean return is
// negative the clip leaves nothing, which correctly forces the caller
// back to strategy-native weights.
type MaxSharpe struct{}

func (MaxSharpe) Name() string    { return "max_sharpe" }
func (MaxSharpe) MinHistory() int { return 2 }

func (MaxSharpe) Weights(m contracts.ReturnsMatrix) (map[string]float64, error) {
	if err := checkMatrix(m, 2); err != nil {
		return nil, err
	}

	raw, err := solveSym(covarianceMatrix(m), meanReturns(m))
	if err != nil {
		return nil, fmt.Errorf("max_sharpe: %w", err)
	}
	return longOnly(m.Symbols, raw)
}

// MaxDiversification maximizes the diversification ratio by solving
// w proportional to Sigma^-1 * sigma.
type MaxDiversification struct{}

func (MaxDiversification) Name() string    { return "max_diversification" }
func (MaxDiversification) MinHistory() int { return 2 }

func (MaxDiversification) Weights(m contracts.ReturnsMatrix) (map[string]float64, error) {
	if err := checkMatrix(m, 2); err != nil {
		return nil, err
	}

	raw, err := solveSym(covarianceMatrix(m), volatilities(m))
	if err != nil {
		return nil, fmt.Errorf("max_diversification: %w", err)
	}
	return longOnly(m.Symbols, raw)
}
