// Package strategy provides momentum strategy implementations and a
// Registry for looking them up by name at run configuration time.
package strategy

import (
	"fmt"
	"sort"

	"github.com/schlafen318/dual-momentum-sub001/internal/contracts"
)

// Params carries the strategy section of a run configuration. Each
// strategy reads the fields it needs and validates them at build time.
type Params struct {
	Universe     []string
	SafeSymbol   string
	Lookback     int
	TopN         int
	AbsThreshold float64
	BlendWidth   float64
	Weighting    WeightingMode
	Frequency    contracts.Frequency
}

// Builder constructs a configured strategy from params.
type Builder func(p Params) (contracts.Strategy, error)

// Registry holds named strategy builders. It is a plain value wired
// through the callers, never a package-level global.
type Registry struct {
	builders map[string]Builder
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{builders: make(map[string]Builder)}
}

// DefaultRegistry returns a registry with the built-in strategies.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("dual_momentum", func(p Params) (contracts.Strategy, error) {
		return NewDualMomentum(p)
	})
	r.Register("best_of_n", func(p Params) (contracts.Strategy, error) {
		return NewBestOfN(p)
	})
	return r
}

// Register adds a builder under name, replacing any previous entry.
func (r *Registry) Register(name string, b Builder) {
	r.builders[name] = b
}

// Build constructs the named strategy.
func (r *Registry) Build(name string, p Params) (contracts.Strategy, error) {
	b, ok := r.builders[name]
	if !ok {
		return nil, fmt.Errorf("strategy: unknown strategy %q (have %v)", name, r.List())
	}
	return b(p)
}

// List returns the registered names in ascending order.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
