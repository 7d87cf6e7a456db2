package optimizer

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/schlafen318/dual-momentum-sub001/internal/contracts"
)

// Compile-time interface check.
var _ contracts.Optimizer = HRP{}

// HRP implements hierarchical risk parity: cluster assets on
// correlation distance, order them quasi-diagonally, then split risk
// top-down with inverse-variance allocations inside each cluster. It
// needs no matrix inversion, which keeps it stable on windows where
// the covariance estimate is poor.
type HRP struct{}

func (HRP) Name() string    { return "hrp" }
func (HRP) MinHistory() int { return 2 }

func (HRP) Weights(m contracts.ReturnsMatrix) (map[string]float64, error) {
	if err := checkMatrix(m, 2); err != nil {
		return nil, err
	}

	n := len(m.Symbols)
	if n == 1 {
		return map[string]float64{m.Symbols[0]: 1}, nil
	}

	cov := covarianceMatrix(m)
	corr := correlationMatrix(m)

	// Correlation distance: d = sqrt(0.5 * (1 - rho)).
	dist := make([][]float64, n)
	for i := 0; i < n; i++ {
		dist[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			d := 0.5 * (1 - corr.At(i, j))
			if d < 0 {
				d = 0
			}
			dist[i][j] = math.Sqrt(d)
		}
	}

	order := quasiDiagonalOrder(dist)
	raw := recursiveBisection(cov, order)
	return longOnly(m.Symbols, raw)
}

// hrpNode is one node of the single-linkage cluster tree. Leaves carry
// the asset index; internal nodes carry child node indices.
type hrpNode struct {
	leaf        int
	left, right int
}

// quasiDiagonalOrder clusters assets by single linkage over the
// distance matrix and returns the leaf order of the resulting tree,
// which places correlated assets next to each other.
func quasiDiagonalOrder(dist [][]float64) []int {
	n := len(dist)

	nodes := make([]hrpNode, 0, 2*n-1)
	members := make(map[int][]int, n)
	active := make([]int, 0, n)
	for i := 0; i < n; i++ {
		nodes = append(nodes, hrpNode{leaf: i, left: -1, right: -1})
		members[i] = []int{i}
		active = append(active, i)
	}

	// Single linkage: cluster distance is the minimum pairwise asset
	// distance across the two clusters.
	clusterDist := func(a, b int) float64 {
		best := math.Inf(1)
		for _, i := range members[a] {
			for _, j := range members[b] {
				if dist[i][j] < best {
					best = dist[i][j]
				}
			}
		}
		return best
	}

	for len(active) > 1 {
		bestA, bestB := 0, 1
		best := math.Inf(1)
		for ai := 0; ai < len(active); ai++ {
			for bi := ai + 1; bi < len(active); bi++ {
				d := clusterDist(active[ai], active[bi])
				if d < best {
					best = d
					bestA, bestB = ai, bi
				}
			}
		}

		a, b := active[bestA], active[bestB]
		id := len(nodes)
		nodes = append(nodes, hrpNode{leaf: -1, left: a, right: b})
		members[id] = append(append([]int{}, members[a]...), members[b]...)

		// Remove the higher index first so the lower stays valid.
		active = append(active[:bestB], active[bestB+1:]...)
		active = append(active[:bestA], active[bestA+1:]...)
		active = append(active, id)
	}

	// Leaf order by depth-first traversal from the root.
	order := make([]int, 0, n)
	stack := []int{active[0]}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node := nodes[id]
		if node.leaf >= 0 {
			order = append(order, node.leaf)
			continue
		}
		// Push right first so left is visited first.
		stack = append(stack, node.right, node.left)
	}
	return order
}

// recursiveBisection walks the ordered assets top-down, splitting each
// contiguous cluster in half and scaling the halves by inverse cluster
// variance.
func recursiveBisection(cov *mat.SymDense, order []int) []float64 {
	n := cov.SymmetricDim()
	weights := make([]float64, n)
	for _, i := range order {
		weights[i] = 1
	}

	stack := [][]int{order}
	for len(stack) > 0 {
		items := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if len(items) < 2 {
			continue
		}

		split := len(items) / 2
		left, right := items[:split], items[split:]

		varL := clusterVariance(cov, left)
		varR := clusterVariance(cov, right)
		alpha := 0.5
		if varL+varR > 0 {
			alpha = 1 - varL/(varL+varR)
		}

		for _, i := range left {
			weights[i] *= alpha
		}
		for _, i := range right {
			weights[i] *= 1 - alpha
		}
		stack = append(stack, left, right)
	}
	return weights
}

// clusterVariance is the variance of the inverse-variance weighted
// sub-portfolio over the given asset indices.
func clusterVariance(cov *mat.SymDense, items []int) float64 {
	ivp := make([]float64, len(items))
	total := 0.0
	for k, i := range items {
		v := cov.At(i, i)
		if v <= 0 {
			v = minVol * minVol
		}
		ivp[k] = 1 / v
		total += ivp[k]
	}
	for k := range ivp {
		ivp[k] /= total
	}

	variance := 0.0
	for a, i := range items {
		for b, j := range items {
			variance += ivp[a] * ivp[b] * cov.At(i, j)
		}
	}
	return variance
}
