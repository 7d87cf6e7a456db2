package performance

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/schlafen318/dual-momentum-sub001/internal/contracts"
)

// BenchmarkSummary compares a run against its aligned benchmark.
type BenchmarkSummary struct {
	Symbol           string  `json:"symbol"`
	Return           float64 `json:"return"`
	Alpha            float64 `json:"alpha"` // annualized regression intercept
	Beta             float64 `json:"beta"`
	InformationRatio float64 `json:"information_ratio"`
}

// AlignBenchmark re-indexes a benchmark symbol onto the equity curve.
//
// The benchmark is restricted to the curve's dates and scaled so that
// its first value equals the curve's first value exactly; comparing
// two series only makes sense when they start at the same notional
// over the same window. Dates the benchmark did not trade carry its
// last close forward.
func AlignBenchmark(equity []contracts.EquityPoint, quotes contracts.QuoteView, symbol string) ([]contracts.EquityPoint, error) {
	if len(equity) == 0 {
		return nil, fmt.Errorf("benchmark align: empty equity curve")
	}

	base, _, ok := quotes.CloseAtOrBefore(symbol, equity[0].Date)
	if !ok || math.IsNaN(base) || base <= 0 {
		return nil, fmt.Errorf("benchmark %s has no usable close at or before %s", symbol, equity[0].Date.Format("2006-01-02"))
	}

	initial := equity[0].Equity
	out := make([]contracts.EquityPoint, len(equity))
	for i, pt := range equity {
		price, _, ok := quotes.CloseAtOrBefore(symbol, pt.Date)
		if !ok || math.IsNaN(price) || price <= 0 {
			price = base
		}
		value := price / base * initial
		out[i] = contracts.EquityPoint{
			Date:   pt.Date,
			Equity: value,
			Return: price/base - 1,
		}
	}
	return out, nil
}

// CompareBenchmark computes relative metrics between a strategy curve
// and an already aligned benchmark curve of the same length.
func CompareBenchmark(strategy, benchmark []contracts.EquityPoint, symbol string, opts Options) BenchmarkSummary {
	out := BenchmarkSummary{Symbol: symbol}
	if len(benchmark) == 0 || benchmark[0].Equity <= 0 {
		return out
	}
	out.Return = benchmark[len(benchmark)-1].Equity/benchmark[0].Equity - 1

	stratReturns := PeriodReturns(strategy)
	benchReturns := PeriodReturns(benchmark)
	if len(stratReturns) != len(benchReturns) || len(stratReturns) < 2 {
		return out
	}

	perYear := opts.periodsPerYear()
	alpha, beta := stat.LinearRegression(benchReturns, stratReturns, nil, false)
	out.Alpha = alpha * perYear
	out.Beta = beta

	active := make([]float64, len(stratReturns))
	for i := range stratReturns {
		active[i] = stratReturns[i] - benchReturns[i]
	}
	if std := stat.StdDev(active, nil); std > 0 {
		out.InformationRatio = stat.Mean(active, nil) / std * math.Sqrt(perYear)
	}
	return out
}
