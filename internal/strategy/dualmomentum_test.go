package strategy

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/schlafen318/dual-momentum-sub001/internal/contracts"
	"github.com/schlafen318/dual-momentum-sub001/internal/marketdata"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// seriesBars emits one bar per consecutive day starting at start.
func seriesBars(symbol string, start time.Time, closes ...float64) []marketdata.Bar {
	bars := make([]marketdata.Bar, len(closes))
	for i, c := range closes {
		bars[i] = marketdata.Bar{Symbol: symbol, Date: start.AddDate(0, 0, i), Close: c}
	}
	return bars
}

func momentumHistory() *marketdata.History {
	start := day(2024, 1, 1)
	var bars []marketdata.Bar
	bars = append(bars, seriesBars("AAA", start, 100, 110, 120, 130)...) // +30%
	bars = append(bars, seriesBars("BBB", start, 100, 101, 102, 103)...) // +3%
	bars = append(bars, seriesBars("CCC", start, 100, 95, 90, 85)...)    // -15%
	bars = append(bars, seriesBars("SAFE", start, 50, 50, 50, 50)...)
	return marketdata.NewHistory(bars)
}

func TestDualMomentum_RankingAndTopN(t *testing.T) {
	s, err := NewDualMomentum(Params{
		Universe:   []string{"AAA", "BBB", "CCC"},
		SafeSymbol: "SAFE",
		Lookback:   3,
		TopN:       2,
	})
	if err != nil {
		t.Fatalf("NewDualMomentum: %v", err)
	}

	signals, err := s.Evaluate(context.Background(), day(2024, 1, 4), momentumHistory())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(signals) != 2 {
		t.Fatalf("got %d signals, want 2", len(signals))
	}
	if signals[0].Symbol != "AAA" || signals[1].Symbol != "BBB" {
		t.Errorf("ranked symbols = %s, %s; want AAA, BBB", signals[0].Symbol, signals[1].Symbol)
	}
	for _, sig := range signals {
		if !sig.IsRisk() {
			t.Errorf("%s should be risk on above threshold 0", sig.Symbol)
		}
		if sig.Strength != 1 {
			t.Errorf("%s strength = %v, want 1 under equal weighting", sig.Symbol, sig.Strength)
		}
	}

	epsilon := 1e-9
	if diff := signals[0].Momentum - 0.30; math.Abs(diff) > epsilon {
		t.Errorf("AAA momentum = %v, want 0.30", signals[0].Momentum)
	}
}

func TestDualMomentum_DefensiveRotation(t *testing.T) {
	s, err := NewDualMomentum(Params{
		Universe:     []string{"AAA", "BBB", "CCC"},
		SafeSymbol:   "SAFE",
		Lookback:     3,
		TopN:         2,
		AbsThreshold: 0.05,
	})
	if err != nil {
		t.Fatalf("NewDualMomentum: %v", err)
	}

	signals, err := s.Evaluate(context.Background(), day(2024, 1, 4), momentumHistory())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(signals) != 2 {
		t.Fatalf("got %d signals, want 2", len(signals))
	}

	// AAA passes the 5% absolute check, BBB's slot rotates to SAFE.
	if signals[0].Symbol != "AAA" || !signals[0].IsRisk() {
		t.Errorf("signals[0] = %+v, want risk AAA", signals[0])
	}
	if signals[1].Symbol != "SAFE" || !signals[1].IsDefensive() {
		t.Errorf("signals[1] = %+v, want defensive SAFE", signals[1])
	}
}

func TestDualMomentum_BlendBand(t *testing.T) {
	s, err := NewDualMomentum(Params{
		Universe:     []string{"AAA", "BBB", "CCC"},
		SafeSymbol:   "SAFE",
		Lookback:     3,
		TopN:         2,
		AbsThreshold: 0.05,
		BlendWidth:   0.03,
	})
	if err != nil {
		t.Fatalf("NewDualMomentum: %v", err)
	}

	signals, err := s.Evaluate(context.Background(), day(2024, 1, 4), momentumHistory())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(signals) != 2 {
		t.Fatalf("got %d signals, want 2", len(signals))
	}

	// BBB momentum 0.03 sits inside [0.02, 0.08]: ratio (0.03-0.02)/0.06.
	blended := signals[1]
	if blended.Symbol != "BBB" {
		t.Fatalf("signals[1].Symbol = %s, want BBB", blended.Symbol)
	}
	want := (0.03 - 0.02) / 0.06
	if math.Abs(blended.BlendRatio-want) > 1e-9 {
		t.Errorf("BBB BlendRatio = %v, want %v", blended.BlendRatio, want)
	}
}

func TestDualMomentum_InsufficientHistory(t *testing.T) {
	s, err := NewDualMomentum(Params{
		Universe: []string{"AAA", "BBB", "CCC"},
		Lookback: 3,
		TopN:     2,
	})
	if err != nil {
		t.Fatalf("NewDualMomentum: %v", err)
	}

	// Only two bars exist by Jan 2; nothing is scoreable yet.
	signals, err := s.Evaluate(context.Background(), day(2024, 1, 2), momentumHistory())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(signals) != 0 {
		t.Errorf("got %d signals before MinHistory, want 0", len(signals))
	}
}

func TestDualMomentum_MomentumWeighting(t *testing.T) {
	s, err := NewDualMomentum(Params{
		Universe:  []string{"AAA", "BBB", "CCC"},
		Lookback:  3,
		TopN:      2,
		Weighting: WeightMomentum,
	})
	if err != nil {
		t.Fatalf("NewDualMomentum: %v", err)
	}

	signals, err := s.Evaluate(context.Background(), day(2024, 1, 4), momentumHistory())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(signals) != 2 {
		t.Fatalf("got %d signals, want 2", len(signals))
	}
	if math.Abs(signals[0].Strength-0.30) > 1e-9 {
		t.Errorf("AAA strength = %v, want its momentum 0.30", signals[0].Strength)
	}
	if math.Abs(signals[1].Strength-0.03) > 1e-9 {
		t.Errorf("BBB strength = %v, want its momentum 0.03", signals[1].Strength)
	}
}

func TestDualMomentum_ValidatesParams(t *testing.T) {
	tests := []struct {
		name string
		p    Params
	}{
		{"empty universe", Params{Lookback: 3}},
		{"zero lookback", Params{Universe: []string{"AAA"}}},
		{"negative blend width", Params{Universe: []string{"AAA"}, Lookback: 3, BlendWidth: -0.1}},
		{"bad weighting", Params{Universe: []string{"AAA"}, Lookback: 3, Weighting: "sharpe"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewDualMomentum(tt.p); err == nil {
				t.Error("NewDualMomentum should fail")
			}
		})
	}
}

func TestBestOfN(t *testing.T) {
	ctx := context.Background()
	h := momentumHistory()

	s, err := NewBestOfN(Params{
		Universe:   []string{"AAA", "BBB", "CCC"},
		SafeSymbol: "SAFE",
		Lookback:   3,
	})
	if err != nil {
		t.Fatalf("NewBestOfN: %v", err)
	}

	signals, err := s.Evaluate(ctx, day(2024, 1, 4), h)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(signals) != 1 || signals[0].Symbol != "AAA" || !signals[0].IsRisk() {
		t.Fatalf("signals = %+v, want single risk AAA", signals)
	}

	// Threshold above the winner forces the defensive rotation.
	s2, err := NewBestOfN(Params{
		Universe:     []string{"AAA", "BBB", "CCC"},
		SafeSymbol:   "SAFE",
		Lookback:     3,
		AbsThreshold: 0.50,
	})
	if err != nil {
		t.Fatalf("NewBestOfN: %v", err)
	}
	signals, err = s2.Evaluate(ctx, day(2024, 1, 4), h)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(signals) != 1 || signals[0].Symbol != "SAFE" || !signals[0].IsDefensive() {
		t.Fatalf("signals = %+v, want single defensive SAFE", signals)
	}
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()

	names := r.List()
	if len(names) != 2 || names[0] != "best_of_n" || names[1] != "dual_momentum" {
		t.Errorf("List() = %v, want [best_of_n dual_momentum]", names)
	}

	built, err := r.Build("dual_momentum", Params{Universe: []string{"AAA"}, Lookback: 3})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	var _ contracts.Strategy = built
	if built.Name() != "dual_momentum" {
		t.Errorf("built.Name() = %s, want dual_momentum", built.Name())
	}
	if built.MinHistory() != 4 {
		t.Errorf("MinHistory() = %d, want lookback+1 = 4", built.MinHistory())
	}
	if built.Frequency() != contracts.FrequencyMonthly {
		t.Errorf("Frequency() = %v, want monthly default", built.Frequency())
	}

	weekly, err := r.Build("best_of_n", Params{
		Universe:  []string{"AAA"},
		Lookback:  3,
		Frequency: contracts.FrequencyWeekly,
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if weekly.Frequency() != contracts.FrequencyWeekly {
		t.Errorf("Frequency() = %v, want weekly", weekly.Frequency())
	}

	if _, err := r.Build("nope", Params{}); err == nil {
		t.Error("Build(unknown) should fail")
	}
}
