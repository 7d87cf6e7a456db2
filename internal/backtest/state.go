package backtest

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/schlafen318/dual-momentum-sub001/internal/contracts"
)

// positionEpsilon is the share count below which a position is treated
// as fully closed. Pro-rata float arithmetic can leave dust that would
// otherwise survive forever.
const positionEpsilon = 1e-9

// Portfolio tracks cash and open positions during a simulation
// ⭐ SSOT: 시뮬레이션 포트폴리오 상태는 여기서만
type Portfolio struct {
	cash      float64
	positions map[string]*contracts.Position
}

// NewPortfolio starts a portfolio with the given cash and no positions.
func NewPortfolio(initialCash float64) *Portfolio {
	return &Portfolio{
		cash:      initialCash,
		positions: make(map[string]*contracts.Position),
	}
}

// Cash returns the current cash balance.
func (p *Portfolio) Cash() float64 { return p.cash }

// Position returns a copy of the position for symbol.
func (p *Portfolio) Position(symbol string) (contracts.Position, bool) {
	pos, ok := p.positions[symbol]
	if !ok {
		return contracts.Position{}, false
	}
	return *pos, true
}

// Symbols returns the held symbols in ascending order.
func (p *Portfolio) Symbols() []string {
	out := make([]string, 0, len(p.positions))
	for symbol := range p.positions {
		out = append(out, symbol)
	}
	sort.Strings(out)
	return out
}

// markPrice returns the valuation price for a held symbol using
// carry-forward. A position can only exist after a fill, so a close at
// or before date is always on record; the entry price covers the
// unreachable miss.
func (p *Portfolio) markPrice(symbol string, date time.Time, quotes contracts.QuoteView) float64 {
	if price, _, ok := quotes.CloseAtOrBefore(symbol, date); ok && !math.IsNaN(price) && price > 0 {
		return price
	}
	return p.positions[symbol].AvgPrice
}

// TotalValue marks the portfolio to market as of date.
func (p *Portfolio) TotalValue(date time.Time, quotes contracts.QuoteView) float64 {
	total := p.cash
	for symbol, pos := range p.positions {
		total += pos.MarketValue(p.markPrice(symbol, date, quotes))
	}
	return total
}

// ApplyBuy fills a buy and debits cash including commission.
func (p *Portfolio) ApplyBuy(symbol string, qty, price, commission float64) {
	totalCost := qty*price + commission
	p.cash -= totalCost
	if p.cash < 0 && p.cash > -cashEpsilon {
		// float residue from a full-budget spend, not an overdraft
		p.cash = 0
	}

	if pos, exists := p.positions[symbol]; exists {
		pos.Quantity += qty
		pos.CostBasis += totalCost
		pos.AvgPrice = pos.CostBasis / pos.Quantity
		return
	}
	p.positions[symbol] = &contracts.Position{
		Symbol:    symbol,
		Quantity:  qty,
		AvgPrice:  totalCost / qty, // commission folded into basis
		CostBasis: totalCost,
	}
}

// ApplySell fills a sell, credits net proceeds, and returns the
// realized PnL against pro-rata cost basis.
func (p *Portfolio) ApplySell(symbol string, qty, price, commission float64) (pnl, returnPct float64, err error) {
	pos, exists := p.positions[symbol]
	if !exists {
		return 0, 0, fmt.Errorf("no position to sell: %s", symbol)
	}
	if qty > pos.Quantity+positionEpsilon {
		return 0, 0, fmt.Errorf("insufficient shares of %s: need %f, have %f", symbol, qty, pos.Quantity)
	}
	if qty > pos.Quantity {
		qty = pos.Quantity
	}

	proceeds := qty*price - commission
	costBasis := pos.CostBasis * (qty / pos.Quantity)
	pnl = proceeds - costBasis
	if costBasis > 0 {
		returnPct = pnl / costBasis
	}

	p.cash += proceeds
	pos.Quantity -= qty
	pos.CostBasis -= costBasis
	if pos.Quantity <= positionEpsilon {
		delete(p.positions, symbol)
	}
	return pnl, returnPct, nil
}

// Snapshot captures the portfolio state as of date for the ledger.
func (p *Portfolio) Snapshot(date time.Time, quotes contracts.QuoteView) contracts.PortfolioSnapshot {
	snap := contracts.PortfolioSnapshot{
		Date: date,
		Cash: p.cash,
	}
	for _, symbol := range p.Symbols() {
		pos := p.positions[symbol]
		price := p.markPrice(symbol, date, quotes)
		snap.Positions = append(snap.Positions, contracts.PositionValue{
			Symbol:   symbol,
			Quantity: pos.Quantity,
			Price:    price,
			Value:    pos.MarketValue(price),
		})
	}

	snap.TotalValue = snap.Cash + snap.PositionsValue()
	if snap.TotalValue != 0 {
		snap.CashPct = snap.Cash / snap.TotalValue
		for i := range snap.Positions {
			snap.Positions[i].Weight = snap.Positions[i].Value / snap.TotalValue
		}
	}
	return snap
}

// Stats aggregates trade-level statistics for one run.
type Stats struct {
	TotalTrades     int     `json:"total_trades"`
	WinningTrades   int     `json:"winning_trades"`
	LosingTrades    int     `json:"losing_trades"`
	TotalCommission float64 `json:"total_commission"`
	TotalSlippage   float64 `json:"total_slippage"`
	SkippedOrders   int     `json:"skipped_orders"`
}

// Ledger records everything a run produces: the daily equity curve,
// executed trades, and the daily mark-to-market snapshots.
type Ledger struct {
	equity    []contracts.EquityPoint
	trades    []contracts.Trade
	snapshots []contracts.PortfolioSnapshot
	stats     Stats
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// RecordEquity appends a daily valuation point.
func (l *Ledger) RecordEquity(date time.Time, equity, initialCapital float64) {
	point := contracts.EquityPoint{Date: date, Equity: equity}
	if initialCapital != 0 {
		point.Return = equity/initialCapital - 1
	}
	l.equity = append(l.equity, point)
}

// RecordTrade appends an executed trade and updates statistics.
func (l *Ledger) RecordTrade(t contracts.Trade) {
	l.trades = append(l.trades, t)
	l.stats.TotalTrades++
	l.stats.TotalCommission += t.Commission
	l.stats.TotalSlippage += t.Slippage
	if t.Side == contracts.OrderSideSell {
		if t.PnL > 0 {
			l.stats.WinningTrades++
		} else if t.PnL < 0 {
			l.stats.LosingTrades++
		}
	}
}

// RecordSkippedOrder counts an order dropped for an unusable price.
func (l *Ledger) RecordSkippedOrder() {
	l.stats.SkippedOrders++
}

// RecordSnapshot appends one daily snapshot row.
func (l *Ledger) RecordSnapshot(s contracts.PortfolioSnapshot) {
	l.snapshots = append(l.snapshots, s)
}

// EquityCurve returns the recorded equity points.
func (l *Ledger) EquityCurve() []contracts.EquityPoint { return l.equity }

// Trades returns the recorded trades.
func (l *Ledger) Trades() []contracts.Trade { return l.trades }

// Snapshots returns the recorded snapshots.
func (l *Ledger) Snapshots() []contracts.PortfolioSnapshot { return l.snapshots }

// Stats returns the aggregated statistics.
func (l *Ledger) Stats() Stats { return l.stats }
