package searcher

import (
	"testing"

	"ai2048/game"

	"github.com/stretchr/testify/require"
)

func scoreOnly(b *game.Board, _ game.Weights) float64 {
	return float64(b.Score())
}

func constant(*game.Board, game.Weights) float64 {
	return 1
}

func TestGreedyFindMove(t *testing.T) {
	t.Run("picks the highest scoring direction, earliest on ties", func(t *testing.T) {
		b := game.NewBoardFromRows([][]int{
			{2, 2, 0, 0},
			{4, 0, 0, 0},
			{4, 0, 0, 0},
			{0, 0, 0, 0},
		}, 1)
		g := NewGreedy(game.DefaultWeights, WithEvaluationFn(scoreOnly))

		// Up and Down both merge for 8, Up comes first.
		require.Equal(t, game.Up, g.FindMove(b))
	})

	t.Run("skips illegal directions", func(t *testing.T) {
		b := game.NewBoardFromRows([][]int{
			{2, 0},
			{0, 0},
		}, 1)
		g := NewGreedy(game.DefaultWeights, WithEvaluationFn(constant))

		require.Equal(t, game.Right, g.FindMove(b))
	})

	t.Run("terminal board returns left", func(t *testing.T) {
		b := game.NewBoardFromRows([][]int{
			{2, 4},
			{4, 2},
		}, 1)
		g := NewGreedy(game.DefaultWeights)

		require.True(t, b.IsGameOver())
		require.Equal(t, game.Left, g.FindMove(b))
	})

	t.Run("does not mutate the board", func(t *testing.T) {
		b := game.NewBoard(game.DefaultSize, 9)
		rows, score := b.Rows(), b.Score()

		NewGreedy(game.DefaultWeights).FindMove(b)
		require.Equal(t, rows, b.Rows())
		require.Equal(t, score, b.Score())
	})

	t.Run("nil evaluation keeps the default heuristic", func(t *testing.T) {
		g := NewGreedy(game.DefaultWeights, WithEvaluationFn(nil))
		require.NotNil(t, g.evaluate)
		require.Equal(t, game.DefaultWeights, g.Weights())
	})
}

func TestStep(t *testing.T) {
	b := game.NewBoardFromRows([][]int{
		{0, 0, 0, 2},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}, 3)

	d, moved := Step(b, NewGreedy(game.DefaultWeights, WithEvaluationFn(constant)))
	require.Equal(t, game.Left, d)
	require.True(t, moved)
	require.Equal(t, 2, b.At(0, 0))
}

func TestRandomFindMove(t *testing.T) {
	b := game.NewBoardFromRows([][]int{
		{2, 4},
		{8, 0},
	}, 1)
	r := NewRandom(5)
	for i := 0; i < 50; i++ {
		d := r.FindMove(b)
		require.Contains(t, []game.Direction{game.Right, game.Down}, d)
	}

	full := game.NewBoardFromRows([][]int{{2, 4}, {4, 2}}, 1)
	require.Equal(t, game.Left, r.FindMove(full))
}
