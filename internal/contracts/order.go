package contracts

import "time"

// OrderSide represents the side of an order
type OrderSide string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

// Order represents one intended fill against the close of a simulation date
// ⭐ 계약: Translator는 비중만 산출, Executor가 수량/현금을 계산
type Order struct {
	Date     time.Time `json:"date"`
	Symbol   string    `json:"symbol"`
	Side     OrderSide `json:"side"`
	Quantity float64   `json:"quantity"` // fractional shares
	Notional float64   `json:"notional"` // quantity * reference close
}

// Position represents an open holding
type Position struct {
	Symbol    string  `json:"symbol"`
	Quantity  float64 `json:"quantity"`
	AvgPrice  float64 `json:"avg_price"`  // average fill price
	CostBasis float64 `json:"cost_basis"` // total cost including commission
}

// MarketValue returns the position value at the given price
func (p *Position) MarketValue(price float64) float64 {
	return p.Quantity * price
}

// Trade represents a completed fill recorded in the ledger.
// PnL and ReturnPct are populated on sells, against pro-rata cost basis.
type Trade struct {
	Date       time.Time `json:"date"`
	Symbol     string    `json:"symbol"`
	Side       OrderSide `json:"side"`
	Quantity   float64   `json:"quantity"`
	Price      float64   `json:"price"` // fill price after slippage
	Notional   float64   `json:"notional"`
	Commission float64   `json:"commission"`
	Slippage   float64   `json:"slippage"`
	PnL        float64   `json:"pnl"`
	ReturnPct  float64   `json:"return_pct"`
}

// IsWin reports whether a closed trade was profitable
func (t Trade) IsWin() bool {
	return t.Side == OrderSideSell && t.PnL > 0
}
