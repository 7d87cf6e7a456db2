package performance

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/schlafen318/dual-momentum-sub001/internal/contracts"
)

// DefaultPeriodsPerYear assumes daily equity points.
const DefaultPeriodsPerYear = 252.0

// Options tunes metric calculation.
type Options struct {
	// RiskFreeRate is annual; it is de-annualized per period for
	// excess-return ratios.
	RiskFreeRate float64

	// PeriodsPerYear defaults to 252 when zero.
	PeriodsPerYear float64
}

func (o Options) periodsPerYear() float64 {
	if o.PeriodsPerYear <= 0 {
		return DefaultPeriodsPerYear
	}
	return o.PeriodsPerYear
}

// Summary holds every scalar metric a run produces
// ⭐ SSOT: 성과 지표는 이 구조체로만 보고
type Summary struct {
	TotalReturn float64 `json:"total_return"`
	CAGR        float64 `json:"cagr"`
	Volatility  float64 `json:"volatility"` // annualized
	Sharpe      float64 `json:"sharpe_ratio"`
	Sortino     float64 `json:"sortino_ratio"`
	MaxDrawdown float64 `json:"max_drawdown"` // positive fraction
	AvgDrawdown float64 `json:"avg_drawdown"` // mean completed excursion depth
	Calmar      float64 `json:"calmar_ratio"`

	NumTrades    int     `json:"num_trades"`
	WinRate      float64 `json:"win_rate"`
	ProfitFactor float64 `json:"profit_factor"`
	AvgWin       float64 `json:"avg_win"`
	AvgLoss      float64 `json:"avg_loss"`

	// Benchmark is nil when the run had no benchmark.
	Benchmark *BenchmarkSummary `json:"benchmark,omitempty"`
}

// Scalars flattens the summary into a named metric map for generic
// consumers (reports, row builders). Benchmark entries appear only
// when the run had a benchmark.
func (s Summary) Scalars() map[string]float64 {
	m := map[string]float64{
		"total_return":  s.TotalReturn,
		"cagr":          s.CAGR,
		"volatility":    s.Volatility,
		"sharpe_ratio":  s.Sharpe,
		"sortino_ratio": s.Sortino,
		"calmar_ratio":  s.Calmar,
		"max_drawdown":  s.MaxDrawdown,
		"avg_drawdown":  s.AvgDrawdown,
		"num_trades":    float64(s.NumTrades),
		"win_rate":      s.WinRate,
		"profit_factor": s.ProfitFactor,
		"avg_win":       s.AvgWin,
		"avg_loss":      s.AvgLoss,
	}
	if s.Benchmark != nil {
		m["benchmark_return"] = s.Benchmark.Return
		m["alpha"] = s.Benchmark.Alpha
		m["beta"] = s.Benchmark.Beta
		m["information_ratio"] = s.Benchmark.InformationRatio
	}
	return m
}

// Calculate derives all metrics from a finalized equity curve and
// trade ledger. The curve must hold at least one point.
func Calculate(equity []contracts.EquityPoint, trades []contracts.Trade, opts Options) (Summary, error) {
	var s Summary
	if len(equity) == 0 {
		return s, fmt.Errorf("performance: empty equity curve")
	}

	initial := equity[0].Equity
	final := equity[len(equity)-1].Equity
	if initial <= 0 {
		return s, fmt.Errorf("performance: initial equity %.2f is not positive", initial)
	}

	perYear := opts.periodsPerYear()
	s.TotalReturn = final/initial - 1

	periods := float64(len(equity) - 1)
	if periods > 0 && final > 0 {
		s.CAGR = math.Pow(final/initial, perYear/periods) - 1
	}

	returns := PeriodReturns(equity)
	if len(returns) > 1 {
		rfPerPeriod := opts.RiskFreeRate / perYear
		std := stat.StdDev(returns, nil)
		s.Volatility = std * math.Sqrt(perYear)

		excess := make([]float64, len(returns))
		for i, r := range returns {
			excess[i] = r - rfPerPeriod
		}
		if std > 0 {
			s.Sharpe = stat.Mean(excess, nil) / std * math.Sqrt(perYear)
		}

		if downside := downsideDeviation(returns); downside > 0 {
			s.Sortino = stat.Mean(excess, nil) * perYear / (downside * math.Sqrt(perYear))
		}
	}

	s.MaxDrawdown, s.AvgDrawdown = drawdowns(equity)
	if s.MaxDrawdown > 0 {
		s.Calmar = s.CAGR / s.MaxDrawdown
	}

	s.fillTradeStats(trades)
	return s, nil
}

// PeriodReturns derives simple returns between consecutive points.
func PeriodReturns(equity []contracts.EquityPoint) []float64 {
	if len(equity) < 2 {
		return nil
	}
	out := make([]float64, 0, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		prev := equity[i-1].Equity
		if prev == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, equity[i].Equity/prev-1)
	}
	return out
}

// downsideDeviation is the standard deviation of negative returns only.
func downsideDeviation(returns []float64) float64 {
	negative := make([]float64, 0, len(returns))
	for _, r := range returns {
		if r < 0 {
			negative = append(negative, r)
		}
	}
	if len(negative) < 2 {
		return 0
	}
	return stat.StdDev(negative, nil)
}

// fillTradeStats aggregates the sell-side trade ledger. Wins and
// losses only exist on sells; buys have no realized PnL.
func (s *Summary) fillTradeStats(trades []contracts.Trade) {
	s.NumTrades = len(trades)

	var wins, losses int
	var grossWin, grossLoss float64
	for _, t := range trades {
		if t.Side != contracts.OrderSideSell {
			continue
		}
		switch {
		case t.PnL > 0:
			wins++
			grossWin += t.PnL
		case t.PnL < 0:
			losses++
			grossLoss += -t.PnL
		}
	}

	if wins+losses > 0 {
		s.WinRate = float64(wins) / float64(wins+losses)
	}
	if wins > 0 {
		s.AvgWin = grossWin / float64(wins)
	}
	if losses > 0 {
		s.AvgLoss = -grossLoss / float64(losses)
	}
	// ProfitFactor stays zero with no losing trades; Inf would not
	// survive JSON round-trips in result persistence.
	if grossLoss > 0 {
		s.ProfitFactor = grossWin / grossLoss
	}
}
