package contracts

import (
	"fmt"
	"time"
)

// Direction represents the direction of a signal
type Direction string

const (
	DirectionLong Direction = "LONG"
	DirectionFlat Direction = "FLAT"
)

// SignalReason explains why a signal was emitted
type SignalReason string

const (
	// ReasonMomentum 모멘텀 기반 진입 시그널
	ReasonMomentum SignalReason = "MOMENTUM"

	// ReasonDefensive 방어 전환: 해당 슬롯은 안전자산으로 배정
	ReasonDefensive SignalReason = "DEFENSIVE_ROTATION"

	// ReasonOverride Manual or external override
	ReasonOverride SignalReason = "OVERRIDE"
)

// Signal represents a single strategy signal for one symbol
// ⭐ SSOT: Strategy → Translator 시그널 전달은 이 타입으로만
//
// BlendRatio is the fraction of this signal's slot allocated to Symbol;
// the remainder rotates into the safe asset. Use the constructors below
// so the ratio is always set explicitly.
type Signal struct {
	Symbol     string       `json:"symbol"`
	Date       time.Time    `json:"date"`
	Direction  Direction    `json:"direction"`
	Reason     SignalReason `json:"reason"`
	Strength   float64      `json:"strength"`    // slot share, >= 0
	BlendRatio float64      `json:"blend_ratio"` // 0.0 ~ 1.0
	Momentum   float64      `json:"momentum"`    // raw momentum behind the signal
}

// NewSignal creates a fully risk-on signal (BlendRatio = 1).
func NewSignal(symbol string, date time.Time, strength, momentum float64) Signal {
	return Signal{
		Symbol:     symbol,
		Date:       date,
		Direction:  DirectionLong,
		Reason:     ReasonMomentum,
		Strength:   strength,
		BlendRatio: 1.0,
		Momentum:   momentum,
	}
}

// NewBlendSignal creates a partially risk-on signal. ratio is the risky
// fraction of the slot; (1 - ratio) goes to the safe asset.
func NewBlendSignal(symbol string, date time.Time, strength, momentum, ratio float64) Signal {
	return Signal{
		Symbol:     symbol,
		Date:       date,
		Direction:  DirectionLong,
		Reason:     ReasonMomentum,
		Strength:   strength,
		BlendRatio: ratio,
		Momentum:   momentum,
	}
}

// NewDefensiveSignal creates a defensive rotation signal. The slot is
// allocated entirely to the safe asset held in symbol.
func NewDefensiveSignal(symbol string, date time.Time, strength float64) Signal {
	return Signal{
		Symbol:     symbol,
		Date:       date,
		Direction:  DirectionLong,
		Reason:     ReasonDefensive,
		Strength:   strength,
		BlendRatio: 0.0,
	}
}

// Validate checks signal fields for structural errors
func (s Signal) Validate() error {
	if s.Symbol == "" {
		return fmt.Errorf("signal: symbol is required")
	}
	if s.Direction != DirectionLong && s.Direction != DirectionFlat {
		return fmt.Errorf("signal %s: invalid direction %q", s.Symbol, s.Direction)
	}
	if s.Strength < 0 {
		return fmt.Errorf("signal %s: strength must be >= 0, got %f", s.Symbol, s.Strength)
	}
	if s.BlendRatio < 0 || s.BlendRatio > 1 {
		return fmt.Errorf("signal %s: blend_ratio must be in [0, 1], got %f", s.Symbol, s.BlendRatio)
	}
	return nil
}

// IsRisk reports whether the signal claims a risky allocation
func (s Signal) IsRisk() bool {
	return s.Direction == DirectionLong && s.Reason != ReasonDefensive
}

// IsDefensive reports whether the signal rotates its slot into the safe asset
func (s Signal) IsDefensive() bool {
	return s.Direction == DirectionLong && s.Reason == ReasonDefensive
}

// SignalList is a set of signals emitted for a single rebalance date
type SignalList []Signal

// Validate checks every signal in the list
func (l SignalList) Validate() error {
	for _, s := range l {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Risk returns the risky (non-defensive) long signals
func (l SignalList) Risk() SignalList {
	out := make(SignalList, 0, len(l))
	for _, s := range l {
		if s.IsRisk() {
			out = append(out, s)
		}
	}
	return out
}

// Defensive returns the defensive rotation signals
func (l SignalList) Defensive() SignalList {
	out := make(SignalList, 0, len(l))
	for _, s := range l {
		if s.IsDefensive() {
			out = append(out, s)
		}
	}
	return out
}

// TotalStrength returns the sum of slot shares
func (l SignalList) TotalStrength() float64 {
	total := 0.0
	for _, s := range l {
		total += s.Strength
	}
	return total
}
