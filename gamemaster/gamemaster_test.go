package gamemaster

import (
	"math"
	"testing"

	"ai2048/engine"
	"ai2048/fitness"
	"ai2048/game"
	"ai2048/genetic"

	"github.com/stretchr/testify/require"
)

func arenaPopulation(size int) genetic.Population {
	pop := genetic.NewOptimizer(8).NewPopulation(size)
	pop.Individuals[0].Weights = game.DefaultWeights
	return pop
}

func runArena(t *testing.T, a *Arena) int {
	t.Helper()
	for ticks := 1; ticks < 1_000_000; ticks++ {
		if a.StepAll() {
			return ticks
		}
	}
	t.Fatal("arena did not finish")
	return 0
}

func TestArenaNew(t *testing.T) {
	pop := arenaPopulation(3)
	pop.Generation = 4
	snap := NewArena(pop, 4, 1).Snapshot()

	require.Equal(t, 4, snap.Generation)
	require.Len(t, snap.Agents, 3)
	require.False(t, snap.Finished)
	for i, ag := range snap.Agents {
		require.Equal(t, pop.Individuals[i].Weights, ag.Weights)
		require.Equal(t, 2, countTiles(ag.Board.Rows))
		require.Zero(t, ag.Steps)
		require.False(t, ag.Finished)
	}
}

func TestArenaPlaysFullGames(t *testing.T) {
	pop := arenaPopulation(3)
	a := NewArena(pop, 4, 9)
	runArena(t, a)

	require.True(t, a.Finished())
	snap := a.Snapshot()
	require.True(t, snap.Finished)

	for i, ag := range snap.Agents {
		want := engine.Play(4, fitness.GameSeed(9, i), pop.Individuals[i].Weights, math.MaxInt32)
		require.True(t, ag.Finished)
		require.True(t, ag.Board.GameOver)
		require.Equal(t, want.Score, ag.Board.Score)
		require.Equal(t, want.Moves, ag.Steps)
		require.Equal(t, ag.Board.Score, ag.BestScore)
		require.LessOrEqual(t, ag.BestMoves, ag.Steps)
	}

	scores := make([]int, len(snap.Agents))
	for i, ag := range snap.Agents {
		scores[i] = ag.Board.Score
	}
	for _, s := range scores {
		require.LessOrEqual(t, s, scores[snap.Leader])
	}
}

func TestArenaResults(t *testing.T) {
	pop := arenaPopulation(2)
	pop.Generation = 7
	a := NewArena(pop, 4, 2)
	runArena(t, a)

	results := a.Results()
	snap := a.Snapshot()
	require.Equal(t, 7, results.Generation)
	for i, ind := range results.Individuals {
		require.Equal(t, pop.Individuals[i].Weights, ind.Weights)
		require.Equal(t, float64(snap.Agents[i].BestScore), ind.Fitness)
		require.Equal(t, snap.Agents[i].BestScore, ind.BestScore)
		require.Equal(t, snap.Agents[i].BestMoves, ind.BestMoves)
	}
	require.Zero(t, pop.Individuals[0].Fitness, "input population untouched")
}

func TestArenaDeterminism(t *testing.T) {
	a := NewArena(arenaPopulation(2), 4, 11)
	b := NewArena(arenaPopulation(2), 4, 11)
	for i := 0; i < 50; i++ {
		require.Equal(t, a.StepAll(), b.StepAll())
	}
	require.Equal(t, a.Snapshot(), b.Snapshot())
}

func TestArenaReset(t *testing.T) {
	pop := arenaPopulation(2)
	a := NewArena(pop, 4, 3)
	for i := 0; i < 30; i++ {
		a.StepAll()
	}

	next := arenaPopulation(3)
	next.Generation = 1
	a.Reset(next)
	snap := a.Snapshot()

	require.Equal(t, 1, snap.Generation)
	require.Len(t, snap.Agents, 3)
	for _, ag := range snap.Agents {
		require.Zero(t, ag.Steps)
		require.Zero(t, ag.BestScore)
		require.Equal(t, 2, countTiles(ag.Board.Rows))
	}
}

func TestArenaEmpty(t *testing.T) {
	a := NewArena(genetic.Population{}, 4, 1)
	require.True(t, a.StepAll())
	require.Equal(t, -1, a.Snapshot().Leader)
}
