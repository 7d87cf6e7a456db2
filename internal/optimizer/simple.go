package optimizer

import (
	"github.com/schlafen318/dual-momentum-sub001/internal/contracts"
)

// Compile-time interface checks.
var _ contracts.Optimizer = EqualWeight{}
var _ contracts.Optimizer = InverseVolatility{}

// EqualWeight assigns 1/n to every symbol. The baseline everything
// else is measured against.
type EqualWeight struct{}

func (EqualWeight) Name() string    { return "equal_weight" }
func (EqualWeight) MinHistory() int { return 1 }

func (EqualWeight) Weights(m contracts.ReturnsMatrix) (map[string]float64, error) {
	if err := checkMatrix(m, 1); err != nil {
		return nil, err
	}
	w := 1.0 / float64(len(m.Symbols))
	out := make(map[string]float64, len(m.Symbols))
	for _, symbol := range m.Symbols {
		out[symbol] = w
	}
	return out, nil
}

// InverseVolatility sizes positions proportional to 1/sigma, so each
// asset contributes roughly equal standalone risk.
type InverseVolatility struct{}

func (InverseVolatility) Name() string    { return "inverse_volatility" }
func (InverseVolatility) MinHistory() int { return 2 }

func (InverseVolatility) Weights(m contracts.ReturnsMatrix) (map[string]float64, error) {
	if err := checkMatrix(m, 2); err != nil {
		return nil, err
	}

	vols := volatilities(m)
	raw := make([]float64, len(vols))
	for i, sd := range vols {
		raw[i] = 1 / sd
	}
	return longOnly(m.Symbols, raw)
}
