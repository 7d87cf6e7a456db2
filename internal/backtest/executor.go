package backtest

import (
	"fmt"
	"math"
	"time"

	"github.com/schlafen318/dual-momentum-sub001/internal/contracts"
	"github.com/schlafen318/dual-momentum-sub001/pkg/logger"
)

// minTradeNotional is the smallest order the executor will place.
// Smaller diffs are treated as already at target.
const minTradeNotional = 1e-6

// cashEpsilon absorbs float noise in the cash invariant check.
const cashEpsilon = 1e-6

// ExecutionConfig holds the cost model and cash policy for fills.
type ExecutionConfig struct {
	CommissionRate float64    `json:"commission_rate" yaml:"commission_rate"` // fraction of fill notional
	SlippageRate   float64    `json:"slippage_rate" yaml:"slippage_rate"`     // price impact, always against the trader
	Cash           CashPolicy `json:"cash" yaml:"cash"`
}

// Validate checks the cost model bounds.
func (c ExecutionConfig) Validate() error {
	if c.CommissionRate < 0 || c.CommissionRate >= 1 {
		return fmt.Errorf("commission_rate must be in [0, 1): %f", c.CommissionRate)
	}
	if c.SlippageRate < 0 || c.SlippageRate >= 1 {
		return fmt.Errorf("slippage_rate must be in [0, 1): %f", c.SlippageRate)
	}
	return c.Cash.Validate()
}

// Executor turns target weights into fills against the close
// ⭐ SSOT: 포지션/현금 변경은 이 컴포넌트를 통해서만
//
// Sells always settle before buys so that rotation proceeds are
// spendable within the same rebalance. Buys that would overdraw the
// post-sell cash are scaled down pro rata by target notional.
type Executor struct {
	cfg ExecutionConfig
	log *logger.Logger
}

// NewExecutor creates an executor with the given cost model.
func NewExecutor(cfg ExecutionConfig, log *logger.Logger) *Executor {
	return &Executor{cfg: cfg, log: log}
}

type buyOrder struct {
	symbol  string
	deficit float64 // notional shortfall at the reference close
	price   float64 // reference close before slippage
}

// Rebalance diffs the portfolio against the target weights and
// executes the difference. Orders price at the exact close of date;
// a symbol with no usable close that day is never traded, only
// marked to its last known price.
func (e *Executor) Rebalance(date time.Time, tw contracts.TargetWeights, pf *Portfolio, ledger *Ledger, quotes contracts.QuoteView) error {
	portfolioValue := pf.TotalValue(date, quotes)
	if portfolioValue <= 0 {
		return fmt.Errorf("portfolio value is %.2f on %s, nothing to allocate", portfolioValue, date.Format("2006-01-02"))
	}

	if err := e.sellPhase(date, tw, pf, ledger, quotes, portfolioValue); err != nil {
		return err
	}

	// Reserves come off the post-sell cash so rotation proceeds are
	// counted before the buy budget is fixed.
	reserves := e.cfg.Cash.Reserves(pf.TotalValue(date, quotes), pf.Cash())
	e.buyPhase(date, tw, pf, ledger, quotes, portfolioValue, reserves.Available)

	if pf.Cash() < -cashEpsilon {
		return fmt.Errorf("%w: cash %.6f after rebalance on %s", ErrNegativeCash, pf.Cash(), date.Format("2006-01-02"))
	}
	return nil
}

// sellPhase liquidates overweight positions. Proceeds settle into
// cash immediately so the buy phase can spend them.
func (e *Executor) sellPhase(date time.Time, tw contracts.TargetWeights, pf *Portfolio, ledger *Ledger, quotes contracts.QuoteView, portfolioValue float64) error {
	for _, sym := range pf.Symbols() {
		pos, held := pf.Position(sym)
		if !held {
			continue
		}
		target := tw.Weights[sym]
		targetNotional := target * portfolioValue

		price, ok := quotes.Close(sym, date)
		if !ok || !usablePrice(price) {
			carried := pos.MarketValue(pf.markPrice(sym, date, quotes))
			if carried-targetNotional > minTradeNotional {
				e.warnSkip(date, sym, contracts.OrderSideSell, price)
				ledger.RecordSkippedOrder()
			}
			continue
		}

		excess := pos.Quantity*price - targetNotional
		if excess <= minTradeNotional {
			continue
		}

		qty := excess / price
		if target <= contracts.WeightEpsilon {
			// Full liquidation, no residual dust position.
			qty = pos.Quantity
		}

		fill := price * (1 - e.cfg.SlippageRate)
		commission := e.cfg.CommissionRate * qty * fill
		pnl, returnPct, err := pf.ApplySell(sym, qty, fill, commission)
		if err != nil {
			return fmt.Errorf("sell %s on %s: %w", sym, date.Format("2006-01-02"), err)
		}

		ledger.RecordTrade(contracts.Trade{
			Date:       date,
			Symbol:     sym,
			Side:       contracts.OrderSideSell,
			Quantity:   qty,
			Price:      fill,
			Notional:   qty * fill,
			Commission: commission,
			Slippage:   qty * price * e.cfg.SlippageRate,
			PnL:        pnl,
			ReturnPct:  returnPct,
		})

		e.log.WithFields(map[string]interface{}{
			"symbol":   sym,
			"quantity": qty,
			"price":    fill,
			"pnl":      pnl,
		}).Debug("Sell executed")
	}
	return nil
}

// buyPhase fills underweight targets from the post-sell cash budget.
func (e *Executor) buyPhase(date time.Time, tw contracts.TargetWeights, pf *Portfolio, ledger *Ledger, quotes contracts.QuoteView, portfolioValue, available float64) {
	orders := make([]buyOrder, 0, tw.Count())
	totalCost := 0.0

	for _, sym := range tw.Symbols() {
		weight := tw.Weights[sym]
		if weight <= contracts.WeightEpsilon {
			continue
		}

		price, ok := quotes.Close(sym, date)
		if !ok || !usablePrice(price) {
			current := 0.0
			if pos, held := pf.Position(sym); held {
				current = pos.MarketValue(pf.markPrice(sym, date, quotes))
			}
			if weight*portfolioValue-current > minTradeNotional {
				e.warnSkip(date, sym, contracts.OrderSideBuy, price)
				ledger.RecordSkippedOrder()
			}
			continue
		}

		current := 0.0
		if pos, held := pf.Position(sym); held {
			current = pos.Quantity * price
		}
		deficit := weight*portfolioValue - current
		if deficit <= minTradeNotional {
			continue
		}

		orders = append(orders, buyOrder{symbol: sym, deficit: deficit, price: price})
		totalCost += deficit * (1 + e.cfg.SlippageRate) * (1 + e.cfg.CommissionRate)
	}

	if len(orders) == 0 || available <= minTradeNotional {
		return
	}

	// 현금 부족 시 목표 금액 기준 비례 축소
	scale := 1.0
	if totalCost > available {
		scale = available / totalCost
		e.log.WithFields(map[string]interface{}{
			"date":      date.Format("2006-01-02"),
			"required":  totalCost,
			"available": available,
			"scale":     scale,
		}).Debug("Scaling buys down to available cash")
	}

	for _, o := range orders {
		budget := o.deficit * (1 + e.cfg.SlippageRate) * (1 + e.cfg.CommissionRate) * scale
		if budget < minTradeNotional {
			continue
		}

		fill := o.price * (1 + e.cfg.SlippageRate)
		qty := budget / (fill * (1 + e.cfg.CommissionRate))
		commission := e.cfg.CommissionRate * qty * fill
		pf.ApplyBuy(o.symbol, qty, fill, commission)

		ledger.RecordTrade(contracts.Trade{
			Date:       date,
			Symbol:     o.symbol,
			Side:       contracts.OrderSideBuy,
			Quantity:   qty,
			Price:      fill,
			Notional:   qty * fill,
			Commission: commission,
			Slippage:   qty * o.price * e.cfg.SlippageRate,
		})

		e.log.WithFields(map[string]interface{}{
			"symbol":   o.symbol,
			"quantity": qty,
			"price":    fill,
			"cost":     budget,
		}).Debug("Buy executed")
	}
}

func (e *Executor) warnSkip(date time.Time, symbol string, side contracts.OrderSide, price float64) {
	e.log.WithFields(map[string]interface{}{
		"symbol": symbol,
		"side":   string(side),
		"date":   date.Format("2006-01-02"),
		"price":  price,
	}).Warn("Order skipped: no usable price")
}

// usablePrice reports whether a close can price an order.
func usablePrice(price float64) bool {
	return !math.IsNaN(price) && !math.IsInf(price, 0) && price > 0
}
