package risk

import (
	"context"
	"fmt"
	"time"

	"github.com/schlafen318/dual-momentum-sub001/internal/contracts"
)

// Compile-time interface check.
var _ contracts.RiskManager = (*Manager)(nil)

// ManagerConfig bounds the overlay. A zero value disables that limit.
type ManagerConfig struct {
	// MaxPositionWeight caps any single position. Excess weight is
	// redistributed pro rata; whatever cannot be placed stays in cash.
	MaxPositionWeight float64 `json:"max_position_weight" yaml:"max_position_weight"`

	// MaxGrossExposure caps the weight sum; above it every position
	// is scaled down proportionally.
	MaxGrossExposure float64 `json:"max_gross_exposure" yaml:"max_gross_exposure"`
}

// Validate checks the limit bounds.
func (c ManagerConfig) Validate() error {
	if c.MaxPositionWeight < 0 || c.MaxPositionWeight > 1 {
		return fmt.Errorf("max_position_weight must be in [0, 1]: %f", c.MaxPositionWeight)
	}
	if c.MaxGrossExposure < 0 || c.MaxGrossExposure > 1 {
		return fmt.Errorf("max_gross_exposure must be in [0, 1]: %f", c.MaxGrossExposure)
	}
	return nil
}

// Manager applies position and exposure caps to target weights
// ⭐ SSOT: 실행 전 비중 조정은 이 오버레이로만
//
// Adjust never increases the total weight; trimmed weight falls back
// to cash.
type Manager struct {
	cfg ManagerConfig
}

// NewManager validates the config and builds the overlay.
func NewManager(cfg ManagerConfig) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Manager{cfg: cfg}, nil
}

// Adjust caps per-position weights, then the gross exposure.
func (m *Manager) Adjust(_ context.Context, _ time.Time, weights contracts.TargetWeights) (contracts.TargetWeights, error) {
	out := weights.Clone()

	if m.cfg.MaxPositionWeight > 0 {
		capPositions(out.Weights, m.cfg.MaxPositionWeight)
	}

	if limit := m.cfg.MaxGrossExposure; limit > 0 {
		if total := out.Total(); total > limit {
			scale := limit / total
			for sym := range out.Weights {
				out.Weights[sym] *= scale
			}
		}
	}
	return out, nil
}

// capPositions clamps weights above the limit and spills the excess
// pro rata onto the remaining positions. Spill can push a receiver
// over the limit, so the pass repeats; each round parks at least one
// more symbol at the limit, bounding the loop by the symbol count.
func capPositions(weights map[string]float64, limit float64) {
	for range weights {
		excess := 0.0
		below := 0.0
		for _, w := range weights {
			if w > limit {
				excess += w - limit
			} else if w < limit {
				below += w
			}
		}
		if excess <= contracts.WeightEpsilon {
			return
		}

		for sym, w := range weights {
			if w > limit {
				weights[sym] = limit
			}
		}
		// Nobody left to receive: the excess stays in cash.
		if below <= contracts.WeightEpsilon {
			return
		}
		for sym, w := range weights {
			if w < limit {
				weights[sym] = w + excess*(w/below)
			}
		}
	}

	for sym, w := range weights {
		if w > limit {
			weights[sym] = limit
		}
	}
}
