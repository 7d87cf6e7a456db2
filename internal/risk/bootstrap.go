package risk

import (
	"fmt"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/schlafen318/dual-momentum-sub001/internal/contracts"
)

// DefaultSeed keeps unseeded bootstrap runs reproducible.
const DefaultSeed = 1

// BootstrapConfig tunes the resampler.
type BootstrapConfig struct {
	// Simulations is the number of resampled paths.
	Simulations int `json:"simulations" yaml:"simulations"`

	// Horizon is the number of daily returns compounded per path.
	Horizon int `json:"horizon" yaml:"horizon"`

	// MinSamples rejects input series too short to resample from.
	// Zero applies the default of 20.
	MinSamples int `json:"min_samples" yaml:"min_samples"`

	// Seed fixes the RNG; zero uses DefaultSeed.
	// 같은 시드면 같은 분포
	Seed int64 `json:"seed" yaml:"seed"`
}

// Validate checks the simulation bounds.
func (c BootstrapConfig) Validate() error {
	if c.Simulations <= 0 {
		return fmt.Errorf("bootstrap: simulations must be > 0, got %d", c.Simulations)
	}
	if c.Horizon <= 0 {
		return fmt.Errorf("bootstrap: horizon must be > 0, got %d", c.Horizon)
	}
	if c.MinSamples < 0 {
		return fmt.Errorf("bootstrap: min_samples must be >= 0, got %d", c.MinSamples)
	}
	return nil
}

func (c BootstrapConfig) minSamples() int {
	if c.MinSamples == 0 {
		return 20
	}
	return c.MinSamples
}

func (c BootstrapConfig) seed() int64 {
	if c.Seed == 0 {
		return DefaultSeed
	}
	return c.Seed
}

// Distribution summarizes the simulated horizon-return distribution.
type Distribution struct {
	Simulations int                `json:"simulations"`
	Horizon     int                `json:"horizon"`
	Mean        float64            `json:"mean"`
	StdDev      float64            `json:"std_dev"`
	VaR95       float64            `json:"var_95"`
	CVaR95      float64            `json:"cvar_95"`
	VaR99       float64            `json:"var_99"`
	CVaR99      float64            `json:"cvar_99"`
	Quantiles   map[string]float64 `json:"quantiles"`
}

// Bootstrap resamples a realized daily return series with replacement
// and compounds each path over the horizon. Same seed, same output.
type Bootstrap struct {
	cfg BootstrapConfig
}

// NewBootstrap validates the config and builds the resampler.
func NewBootstrap(cfg BootstrapConfig) (*Bootstrap, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Bootstrap{cfg: cfg}, nil
}

// Run simulates the horizon-return distribution from daily returns.
func (b *Bootstrap) Run(returns []float64) (*Distribution, error) {
	if len(returns) < b.cfg.minSamples() {
		return nil, fmt.Errorf("%w: %d daily returns, need %d",
			contracts.ErrInsufficientData, len(returns), b.cfg.minSamples())
	}

	rng := rand.New(rand.NewSource(b.cfg.seed()))
	sims := make([]float64, b.cfg.Simulations)
	for i := range sims {
		growth := 1.0
		for d := 0; d < b.cfg.Horizon; d++ {
			growth *= 1 + returns[rng.Intn(len(returns))]
		}
		sims[i] = growth - 1
	}
	return b.summarize(sims), nil
}

func (b *Bootstrap) summarize(sims []float64) *Distribution {
	sorted := make([]float64, len(sims))
	copy(sorted, sims)
	sort.Float64s(sorted)

	var95 := CalculateVaR(sims, 0.95)
	var99 := CalculateVaR(sims, 0.99)

	quantiles := make(map[string]float64, 5)
	for label, p := range map[string]float64{
		"p05": 0.05, "p25": 0.25, "p50": 0.50, "p75": 0.75, "p95": 0.95,
	} {
		quantiles[label] = stat.Quantile(p, stat.Empirical, sorted, nil)
	}

	return &Distribution{
		Simulations: b.cfg.Simulations,
		Horizon:     b.cfg.Horizon,
		Mean:        stat.Mean(sims, nil),
		StdDev:      stat.StdDev(sims, nil),
		VaR95:       var95.VaR,
		CVaR95:      var95.CVaR,
		VaR99:       var99.VaR,
		CVaR99:      var99.CVaR,
		Quantiles:   quantiles,
	}
}
