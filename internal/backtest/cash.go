package backtest

import "fmt"

// CashPolicy configures the two independent cash reserves: a standing
// strategic allocation and an operational buffer for transaction
// friction. Both are validated once at construction, zero values mean
// fully invested.
type CashPolicy struct {
	// StrategicPct is the standing cash allocation as a fraction of
	// total portfolio value.
	StrategicPct float64 `json:"strategic_cash_pct" yaml:"strategic_cash_pct"`

	// BufferPct is the operational liquidity buffer as a fraction of
	// total portfolio value.
	BufferPct float64 `json:"operational_buffer_pct" yaml:"operational_buffer_pct"`

	// MinBuffer is the absolute floor under the operational buffer.
	MinBuffer float64 `json:"min_buffer" yaml:"min_buffer"`
}

// Validate checks the policy fields.
func (p CashPolicy) Validate() error {
	if p.StrategicPct < 0 || p.StrategicPct >= 1 {
		return fmt.Errorf("cash policy: strategic_cash_pct must be in [0, 1), got %f", p.StrategicPct)
	}
	if p.BufferPct < 0 || p.BufferPct >= 1 {
		return fmt.Errorf("cash policy: operational_buffer_pct must be in [0, 1), got %f", p.BufferPct)
	}
	if p.StrategicPct+p.BufferPct >= 1 {
		return fmt.Errorf("cash policy: strategic + buffer reserves %f leave nothing to invest",
			p.StrategicPct+p.BufferPct)
	}
	if p.MinBuffer < 0 {
		return fmt.Errorf("cash policy: min_buffer must be >= 0, got %f", p.MinBuffer)
	}
	return nil
}

// CashReserves is the reserve breakdown for one rebalance date.
// ⭐ SSOT: 현금 예약 계산은 여기서만
type CashReserves struct {
	Strategic float64 `json:"strategic"`
	Buffer    float64 `json:"buffer"`
	Available float64 `json:"available"`
}

// Reserves computes the reserve breakdown from the current total value
// and cash balance. Available never goes below zero: when reserves
// exceed cash on hand the engine simply cannot buy until sells free up
// liquidity.
func (p CashPolicy) Reserves(totalValue, cash float64) CashReserves {
	r := CashReserves{
		Strategic: totalValue * p.StrategicPct,
		Buffer:    totalValue * p.BufferPct,
	}
	if r.Buffer < p.MinBuffer {
		r.Buffer = p.MinBuffer
	}
	r.Available = cash - r.Strategic - r.Buffer
	if r.Available < 0 {
		r.Available = 0
	}
	return r
}
