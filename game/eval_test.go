package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractFeatures(t *testing.T) {
	t.Run("empty board counts its zero maximum as cornered", func(t *testing.T) {
		b := NewBoardFromRows([][]int{
			{0, 0, 0, 0},
			{0, 0, 0, 0},
			{0, 0, 0, 0},
			{0, 0, 0, 0},
		}, 1)

		f := ExtractFeatures(b)
		require.Equal(t, Features{Empty: 16, CornerMax: 1}, f)
		require.Equal(t, 16*DefaultWeights.Empty+DefaultWeights.CornerMax, EvaluateBoard(b, DefaultWeights))
	})

	t.Run("pairwise terms", func(t *testing.T) {
		b := NewBoardFromRows([][]int{
			{4, 2},
			{2, 2},
		}, 1)

		f := ExtractFeatures(b)
		require.Equal(t, 0.0, f.Empty)
		require.Equal(t, 4.0, f.Monotonic)
		require.InDelta(t, -2.0, f.Smooth, 1e-12)
		require.Equal(t, 2.0, f.Merge)
		require.Equal(t, 1.0, f.CornerMax)
	})

	t.Run("increasing pair is penalised and zero pairs are skipped", func(t *testing.T) {
		b := NewBoardFromRows([][]int{
			{2, 8, 0},
			{0, 0, 0},
			{0, 0, 2},
		}, 1)

		f := ExtractFeatures(b)
		require.Equal(t, 6.0, f.Empty)
		require.Equal(t, -1.0, f.Monotonic)
		require.InDelta(t, -2.0, f.Smooth, 1e-12)
		require.Equal(t, 0.0, f.Merge)
		require.Equal(t, -1.0, f.CornerMax, "maximum 8 is on an edge, not a corner")
	})

	t.Run("maximum away from the corners", func(t *testing.T) {
		b := NewBoardFromRows([][]int{
			{2, 0, 2},
			{0, 4, 0},
			{2, 0, 2},
		}, 1)

		f := ExtractFeatures(b)
		require.Equal(t, Features{Empty: 4, CornerMax: -1}, f)
	})

	t.Run("row and column descent both count", func(t *testing.T) {
		b := NewBoardFromRows([][]int{
			{8, 4},
			{4, 2},
		}, 1)

		f := ExtractFeatures(b)
		require.Equal(t, 4.0, f.Monotonic)
		require.Equal(t, 1.0, f.CornerMax)
	})
}

func TestEvaluateBoard(t *testing.T) {
	b := NewBoardFromRows([][]int{
		{4, 2},
		{2, 2},
	}, 1)
	w := Weights{Empty: 1, Monotonic: 2, Smooth: 3, CornerMax: 4, Merge: 5}

	got := EvaluateBoard(b, w)
	require.InDelta(t, 0*1+4*2+(-2)*3+1*4+2*5, got, 1e-9)

	rows := b.Rows()
	EvaluateBoard(b, w)
	require.Equal(t, rows, b.Rows(), "evaluation must not touch the board")
}

func TestWeightsGenes(t *testing.T) {
	w := Weights{Empty: 1, Monotonic: 2, Smooth: 3, CornerMax: 4, Merge: 5}
	require.Equal(t, [NumGenes]float64{1, 2, 3, 4, 5}, w.Genes())
	require.Equal(t, w, WeightsFromGenes(w.Genes()))
}
