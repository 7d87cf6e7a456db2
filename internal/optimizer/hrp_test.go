package optimizer

import (
	"math"
	"testing"

	"github.com/schlafen318/dual-momentum-sub001/internal/contracts"
)

func TestQuasiDiagonalOrder_GroupsCorrelatedAssets(t *testing.T) {
	// Assets 0 and 2 are identical (distance 0); asset 1 is far from
	// both. The ordering must place 0 and 2 next to each other.
	dist := [][]float64{
		{0, 1.0, 0},
		{1.0, 0, 1.0},
		{0, 1.0, 0},
	}

	order := quasiDiagonalOrder(dist)
	if len(order) != 3 {
		t.Fatalf("order len = %d, want 3", len(order))
	}

	pos := make(map[int]int, 3)
	for i, asset := range order {
		pos[asset] = i
	}
	if d := pos[0] - pos[2]; d != 1 && d != -1 {
		t.Errorf("assets 0 and 2 not adjacent in order %v", order)
	}
}

func TestHRP_SingleAsset(t *testing.T) {
	m := contracts.ReturnsMatrix{
		Symbols: []string{"ONLY"},
		Series:  [][]float64{alternating(0.01, 10)},
	}
	w, err := HRP{}.Weights(m)
	if err != nil {
		t.Fatalf("Weights: %v", err)
	}
	if w["ONLY"] != 1 {
		t.Errorf("weight[ONLY] = %v, want 1", w["ONLY"])
	}
}

func TestHRP_FavorsLowVolatility(t *testing.T) {
	// Identical shape, different amplitude: the calmer asset should
	// end up with the larger weight.
	m := contracts.ReturnsMatrix{
		Symbols: []string{"CALM", "WILD"},
		Series: [][]float64{
			alternating(0.01, 20),
			alternating(0.05, 20),
		},
	}
	w, err := HRP{}.Weights(m)
	if err != nil {
		t.Fatalf("Weights: %v", err)
	}
	if w["CALM"] <= w["WILD"] {
		t.Errorf("weight[CALM] = %v should exceed weight[WILD] = %v", w["CALM"], w["WILD"])
	}

	total := w["CALM"] + w["WILD"]
	if math.Abs(total-1) > 1e-9 {
		t.Errorf("weights sum to %v, want 1", total)
	}
}

func TestClusterVariance_MatchesSingleAsset(t *testing.T) {
	m := syntheticMatrix(30)
	cov := covarianceMatrix(m)

	// A one-asset cluster's variance is just its own covariance entry.
	got := clusterVariance(cov, []int{1})
	want := cov.At(1, 1)
	if math.Abs(got-want) > 1e-15 {
		t.Errorf("clusterVariance = %v, want %v", got, want)
	}
}
