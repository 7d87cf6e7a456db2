// Package runconfig loads, validates, and fingerprints the YAML
// document that fully describes one backtest run: the simulation
// window and capital, the strategy and its parameters, translation
// settings, the execution cost model, and the optional risk section.
//
// Loading is strict. Unknown keys fail the decode, so a typo never
// silently falls back to a default.
package runconfig

import (
	"github.com/schlafen318/dual-momentum-sub001/internal/backtest"
	"github.com/schlafen318/dual-momentum-sub001/internal/contracts"
	"github.com/schlafen318/dual-momentum-sub001/internal/risk"
	"github.com/schlafen318/dual-momentum-sub001/internal/strategy"
)

// Config is the complete description of one run.
// ⭐ SSOT: 하나의 YAML이 백테스트 실행 전체를 기술한다
type Config struct {
	// Name keys saved results and sweep trials.
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	Run        backtest.Config          `yaml:"run" json:"run"`
	Strategy   Strategy                 `yaml:"strategy" json:"strategy"`
	Translator Translator               `yaml:"translator,omitempty" json:"translator"`
	Execution  backtest.ExecutionConfig `yaml:"execution" json:"execution"`
	Risk       Risk                     `yaml:"risk,omitempty" json:"risk"`
}

// Strategy names a registry entry and carries its parameters. The
// registry itself stays in the caller; this section is plain data.
type Strategy struct {
	Name         string   `yaml:"name" json:"name"`
	Universe     []string `yaml:"universe" json:"universe"`
	SafeSymbol   string   `yaml:"safe_symbol,omitempty" json:"safe_symbol,omitempty"`
	Lookback     int      `yaml:"lookback" json:"lookback"`
	TopN         int      `yaml:"top_n,omitempty" json:"top_n,omitempty"`
	AbsThreshold float64  `yaml:"abs_threshold,omitempty" json:"abs_threshold,omitempty"`
	BlendWidth   float64  `yaml:"blend_width,omitempty" json:"blend_width,omitempty"`
	Weighting    string   `yaml:"weighting,omitempty" json:"weighting,omitempty"`
	Frequency    string   `yaml:"frequency,omitempty" json:"frequency,omitempty"`
}

// Params converts the section into build-ready strategy parameters.
// Frequency is normalized here; empty stays empty so the strategy
// builder applies its own default cadence.
func (s Strategy) Params() (strategy.Params, error) {
	p := strategy.Params{
		Universe:     s.Universe,
		SafeSymbol:   s.SafeSymbol,
		Lookback:     s.Lookback,
		TopN:         s.TopN,
		AbsThreshold: s.AbsThreshold,
		BlendWidth:   s.BlendWidth,
		Weighting:    strategy.WeightingMode(s.Weighting),
	}
	if s.Frequency != "" {
		freq, err := contracts.ParseFrequency(s.Frequency)
		if err != nil {
			return strategy.Params{}, err
		}
		p.Frequency = freq
	}
	return p, nil
}

// Translator configures the signal-to-weights stage. Optimizer names
// an optimizer registry entry; empty keeps strategy-native weights.
type Translator struct {
	Optimizer       string `yaml:"optimizer,omitempty" json:"optimizer,omitempty"`
	OptimizerWindow int    `yaml:"optimizer_window,omitempty" json:"optimizer_window,omitempty"`
}

// Risk configures the pre-trade overlay and the post-run calculators.
// The zero value disables all of it.
type Risk struct {
	Limits risk.ManagerConfig `yaml:"limits,omitempty" json:"limits"`

	// VaR toggles the historical VaR/CVaR report over the realized
	// daily returns.
	VaR bool `yaml:"var,omitempty" json:"var"`

	// Bootstrap, when present, resamples the realized returns into a
	// horizon distribution.
	Bootstrap *risk.BootstrapConfig `yaml:"bootstrap,omitempty" json:"bootstrap,omitempty"`
}

// LimitsEnabled reports whether any overlay cap is configured.
func (r Risk) LimitsEnabled() bool {
	return r.Limits != (risk.ManagerConfig{})
}

// DefaultConfig returns the baseline monthly dual-momentum run.
// Callers clone and override it; Load never merges these values in.
func DefaultConfig() *Config {
	return &Config{
		Name: "dual-momentum",
		Run: backtest.Config{
			InitialCapital: 100_000,
		},
		Strategy: Strategy{
			Name:      "dual_momentum",
			Lookback:  252,
			TopN:      1,
			Weighting: string(strategy.WeightEqual),
			Frequency: string(contracts.FrequencyMonthly),
		},
		Translator: Translator{
			OptimizerWindow: 63,
		},
		Execution: backtest.ExecutionConfig{
			CommissionRate: 0.001,
			SlippageRate:   0.0005,
			Cash: backtest.CashPolicy{
				StrategicPct: 0.05,
				BufferPct:    0.02,
			},
		},
	}
}

// Clone deep-copies the config so sweep grids can vary one field per
// trial without sharing slices.
func (c *Config) Clone() *Config {
	out := *c
	out.Strategy.Universe = append([]string(nil), c.Strategy.Universe...)
	if c.Risk.Bootstrap != nil {
		b := *c.Risk.Bootstrap
		out.Risk.Bootstrap = &b
	}
	return &out
}
