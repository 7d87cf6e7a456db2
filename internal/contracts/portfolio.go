package contracts

import (
	"fmt"
	"math"
	"time"
)

// SnapshotTolerance is the relative tolerance for the snapshot value invariant
const SnapshotTolerance = 1e-6

// PositionValue represents one marked-to-market holding inside a snapshot
type PositionValue struct {
	Symbol   string  `json:"symbol"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"` // close used for valuation (carry-forward)
	Value    float64 `json:"value"`
	Weight   float64 `json:"weight"` // fraction of total value
}

// PortfolioSnapshot represents the portfolio state at the end of one date
// ⭐ SSOT: 일별 상태 기록은 이 타입으로만, Positions는 심볼 오름차순
type PortfolioSnapshot struct {
	Date       time.Time       `json:"date"`
	Cash       float64         `json:"cash"`
	CashPct    float64         `json:"cash_pct"`
	Positions  []PositionValue `json:"positions"`
	TotalValue float64         `json:"total_value"`
}

// PositionsValue returns the sum of all position values
func (s *PortfolioSnapshot) PositionsValue() float64 {
	total := 0.0
	for _, p := range s.Positions {
		total += p.Value
	}
	return total
}

// Get finds a position value by symbol
func (s *PortfolioSnapshot) Get(symbol string) (*PositionValue, bool) {
	for i := range s.Positions {
		if s.Positions[i].Symbol == symbol {
			return &s.Positions[i], true
		}
	}
	return nil, false
}

// Validate checks the accounting invariant of the snapshot:
// cash >= 0 and cash + positions == total within relative tolerance.
// 위반은 엔진 버그를 의미하며 치명적 에러로 처리
func (s *PortfolioSnapshot) Validate() error {
	if s.Cash < 0 {
		return fmt.Errorf("snapshot %s: negative cash %.6f", s.Date.Format("2006-01-02"), s.Cash)
	}
	sum := s.Cash + s.PositionsValue()
	diff := math.Abs(sum - s.TotalValue)
	scale := math.Max(math.Abs(s.TotalValue), 1.0)
	if diff/scale > SnapshotTolerance {
		return fmt.Errorf("snapshot %s: cash+positions=%.6f != total=%.6f",
			s.Date.Format("2006-01-02"), sum, s.TotalValue)
	}
	return nil
}

// EquityPoint represents a point in the equity curve
type EquityPoint struct {
	Date   time.Time `json:"date"`
	Equity float64   `json:"equity"`
	Return float64   `json:"return"` // cumulative return since start
}
