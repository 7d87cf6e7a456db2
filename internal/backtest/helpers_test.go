package backtest

import (
	"context"
	"time"

	"github.com/schlafen318/dual-momentum-sub001/internal/contracts"
	"github.com/schlafen318/dual-momentum-sub001/internal/marketdata"
	"github.com/schlafen318/dual-momentum-sub001/pkg/logger"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// linearBars builds one bar per calendar day with the close moving
// linearly from first to last inclusive.
func linearBars(symbol string, start time.Time, days int, first, last float64) []marketdata.Bar {
	bars := make([]marketdata.Bar, 0, days)
	for i := 0; i < days; i++ {
		price := first
		if days > 1 {
			price = first + (last-first)*float64(i)/float64(days-1)
		}
		bars = append(bars, marketdata.Bar{
			Symbol: symbol,
			Date:   start.AddDate(0, 0, i),
			Open:   price,
			High:   price,
			Low:    price,
			Close:  price,
			Volume: 1000,
		})
	}
	return bars
}

func flatBars(symbol string, start time.Time, days int, price float64) []marketdata.Bar {
	return linearBars(symbol, start, days, price, price)
}

// scriptedStrategy lets a test decide the signals per date.
type scriptedStrategy struct {
	name      string
	frequency contracts.Frequency
	evaluate  func(date time.Time, quotes contracts.QuoteView) (contracts.SignalList, error)
}

var _ contracts.Strategy = (*scriptedStrategy)(nil)

func (s *scriptedStrategy) Name() string {
	if s.name == "" {
		return "scripted"
	}
	return s.name
}

func (s *scriptedStrategy) MinHistory() int { return 1 }

func (s *scriptedStrategy) Frequency() contracts.Frequency {
	if s.frequency == "" {
		return contracts.FrequencyMonthly
	}
	return s.frequency
}

func (s *scriptedStrategy) Evaluate(_ context.Context, date time.Time, quotes contracts.QuoteView) (contracts.SignalList, error) {
	if s.evaluate == nil {
		return nil, nil
	}
	return s.evaluate(date, quotes)
}

// allocateTo emits one full-strength risk signal per symbol.
func allocateTo(date time.Time, symbols ...string) contracts.SignalList {
	signals := make(contracts.SignalList, 0, len(symbols))
	for _, sym := range symbols {
		signals = append(signals, contracts.NewSignal(sym, date, 1.0, 0.1))
	}
	return signals
}

func newTestEngine(strategy contracts.Strategy, quotes contracts.QuoteView, tcfg TranslatorConfig, ecfg ExecutionConfig) *Engine {
	log := logger.NewNop()
	return NewEngine(strategy, quotes, NewTranslator(tcfg, log), NewExecutor(ecfg, log), log)
}
