package game

import "math"

// Weights are the coefficients of the board heuristic.
type Weights struct {
	Empty     float64 `json:"empty" toml:"empty"`
	Monotonic float64 `json:"monotonic" toml:"monotonic"`
	Smooth    float64 `json:"smooth" toml:"smooth"`
	CornerMax float64 `json:"corner_max" toml:"corner_max"`
	Merge     float64 `json:"merge" toml:"merge"`
}

// NumGenes is the number of coefficients in Weights.
const NumGenes = 5

// DefaultWeights is a hand-tuned starting point for auto-play.
var DefaultWeights = Weights{
	Empty:     200,
	Monotonic: 50,
	Smooth:    -3,
	CornerMax: 10000,
	Merge:     100,
}

// Genes returns the weights in declaration order.
func (w Weights) Genes() [NumGenes]float64 {
	return [NumGenes]float64{w.Empty, w.Monotonic, w.Smooth, w.CornerMax, w.Merge}
}

func WeightsFromGenes(g [NumGenes]float64) Weights {
	return Weights{Empty: g[0], Monotonic: g[1], Smooth: g[2], CornerMax: g[3], Merge: g[4]}
}

// Score is the weighted sum of the features.
func (w Weights) Score(f Features) float64 {
	return w.Empty*f.Empty +
		w.Monotonic*f.Monotonic +
		w.Smooth*f.Smooth +
		w.CornerMax*f.CornerMax +
		w.Merge*f.Merge
}

// Features are the raw heuristic terms of a board.
type Features struct {
	Empty     float64
	Monotonic float64
	Smooth    float64
	CornerMax float64
	Merge     float64
}

// Evaluate scores a board for a weight vector.
type Evaluate func(b *Board, w Weights) float64

// EvaluateBoard is the linear heuristic used by the greedy selector.
func EvaluateBoard(b *Board, w Weights) float64 {
	return w.Score(ExtractFeatures(b))
}

// ExtractFeatures computes every heuristic term in one pass over the
// adjacent pairs of the grid.
//
// Monotonicity counts each row and each column independently: a non-zero pair
// that does not increase left-to-right (or top-to-bottom) scores +1, an
// increasing one -1. The corner term compares against the maximum cell, so an
// empty board counts as having its maximum in a corner.
func ExtractFeatures(b *Board) Features {
	n := b.size
	var f Features
	max := 0
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			v := b.cells[r*n+c]
			if v == 0 {
				f.Empty++
				continue
			}
			if v > max {
				max = v
			}
			if c+1 < n {
				pairFeatures(&f, v, b.cells[r*n+c+1])
			}
			if r+1 < n {
				pairFeatures(&f, v, b.cells[(r+1)*n+c])
			}
		}
	}

	last := n - 1
	if b.At(0, 0) == max || b.At(0, last) == max || b.At(last, 0) == max || b.At(last, last) == max {
		f.CornerMax = 1
	} else {
		f.CornerMax = -1
	}
	return f
}

// pairFeatures accumulates the pairwise terms for a non-zero cell a and its
// right or lower neighbour next.
func pairFeatures(f *Features, a, next int) {
	if next == 0 {
		return
	}
	if a >= next {
		f.Monotonic++
	} else {
		f.Monotonic--
	}
	f.Smooth -= math.Abs(math.Log2(float64(a)) - math.Log2(float64(next)))
	if a == next {
		f.Merge++
	}
}
