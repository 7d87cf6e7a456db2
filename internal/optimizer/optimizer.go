// Package optimizer implements the pluggable weight optimizers the
// translation stage can substitute for strategy-native weights. Every
// optimizer consumes an aligned returns matrix and produces long-only
// weights summing to one; any error falls back to the strategy's own
// weights upstream.
package optimizer

import (
	"fmt"
	"sort"

	"github.com/schlafen318/dual-momentum-sub001/internal/contracts"
)

// Registry holds named optimizers. Like the strategy registry it is a
// value wired through callers, not a package global.
type Registry struct {
	optimizers map[string]contracts.Optimizer
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{optimizers: make(map[string]contracts.Optimizer)}
}

// DefaultRegistry returns a registry with all built-in optimizers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, o := range []contracts.Optimizer{
		EqualWeight{},
		InverseVolatility{},
		RiskParity{},
		MinVariance{},
		MaxSharpe{},
		MaxDiversification{},
		HRP{},
	} {
		r.Register(o)
	}
	return r
}

// Register adds an optimizer keyed by its Name().
func (r *Registry) Register(o contracts.Optimizer) {
	r.optimizers[o.Name()] = o
}

// Get retrieves an optimizer by name.
func (r *Registry) Get(name string) (contracts.Optimizer, error) {
	o, ok := r.optimizers[name]
	if !ok {
		return nil, fmt.Errorf("optimizer: unknown optimizer %q (have %v)", name, r.List())
	}
	return o, nil
}

// List returns the registered names in ascending order.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.optimizers))
	for name := range r.optimizers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
