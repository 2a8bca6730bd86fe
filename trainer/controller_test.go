package trainer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ai2048/config"
	"ai2048/fitness"
	"ai2048/genetic"
	"ai2048/store"

	"github.com/stretchr/testify/require"
)

func testSettings(t *testing.T, generations int) config.Training {
	t.Helper()
	s := config.Default().Training
	s.PopulationSize = 4
	s.Generations = generations
	s.Seed = 42
	s.BoardSize = 3
	s.PopulationFile = filepath.Join(t.TempDir(), "population.txt")
	return s
}

func testHarness() *fitness.Harness {
	return fitness.NewHarness(fitness.WithGames(2), fitness.WithMaxMoves(30), fitness.WithWorkers(2), fitness.WithBoardSize(3))
}

func TestTrainingController(t *testing.T) {
	t.Run("runs the configured generations", func(t *testing.T) {
		settings := testSettings(t, 2)
		history := store.NewMemoryHistory()
		artifacts := t.TempDir()
		c := NewTrainingController(settings, testHarness(), genetic.NewOptimizer(1),
			WithHistory(history), WithArtifacts(artifacts, true), WithRunID("run-1"))

		require.NoError(t, c.Run(context.Background()))

		pop, ok := store.Load(settings.PopulationFile, settings.PopulationSize, genetic.NewOptimizer(2))
		require.True(t, ok)
		require.Equal(t, 2, pop.Generation)
		require.Equal(t, 4, pop.Size())

		summaries, err := history.Generations(context.Background(), "run-1")
		require.NoError(t, err)
		require.Len(t, summaries, 2)
		require.Equal(t, 0, summaries[0].Generation)
		require.Equal(t, 1, summaries[1].Generation)
		for _, s := range summaries {
			require.GreaterOrEqual(t, s.BestFitness, s.MeanFitness)
			require.Equal(t, 4, s.Size)
		}

		csvs, err := filepath.Glob(filepath.Join(artifacts, "training", "*", "generations.csv"))
		require.NoError(t, err)
		require.Len(t, csvs, 1)
		_, err = os.Stat(filepath.Join(filepath.Dir(csvs[0]), "fitness.png"))
		require.NoError(t, err)
	})

	t.Run("resumes from the saved generation", func(t *testing.T) {
		settings := testSettings(t, 1)
		saved := genetic.NewOptimizer(3).NewPopulation(4)
		saved.Generation = 5
		require.NoError(t, store.Save(settings.PopulationFile, saved))

		c := NewTrainingController(settings, testHarness(), genetic.NewOptimizer(1))
		require.NoError(t, c.Run(context.Background()))

		pop, ok := store.Load(settings.PopulationFile, 4, genetic.NewOptimizer(2))
		require.True(t, ok)
		require.Equal(t, 6, pop.Generation)
	})

	t.Run("is reproducible for a seed", func(t *testing.T) {
		read := func() string {
			settings := testSettings(t, 2)
			c := NewTrainingController(settings, testHarness(), genetic.NewOptimizer(9))
			require.NoError(t, c.Run(context.Background()))
			content, err := os.ReadFile(settings.PopulationFile)
			require.NoError(t, err)
			return string(content)
		}
		require.Equal(t, read(), read())
	})

	t.Run("cancelled before the first generation", func(t *testing.T) {
		settings := testSettings(t, 0)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		c := NewTrainingController(settings, testHarness(), genetic.NewOptimizer(1))
		require.NoError(t, c.Run(ctx))
		_, err := os.Stat(settings.PopulationFile)
		require.True(t, os.IsNotExist(err))
	})

	t.Run("generates a run id", func(t *testing.T) {
		a := NewTrainingController(testSettings(t, 1), testHarness(), genetic.NewOptimizer(1))
		b := NewTrainingController(testSettings(t, 1), testHarness(), genetic.NewOptimizer(1))
		require.NotEmpty(t, a.RunID())
		require.NotEqual(t, a.RunID(), b.RunID())
	})

	t.Run("rejects an empty population", func(t *testing.T) {
		settings := testSettings(t, 1)
		settings.PopulationSize = 0
		require.Panics(t, func() { NewTrainingController(settings, testHarness(), genetic.NewOptimizer(1)) })
	})
}

func TestLiveController(t *testing.T) {
	live := config.Live{
		StepInterval:    config.Duration{Duration: time.Millisecond},
		GenerationPause: config.Duration{},
	}

	t.Run("evolves once every board is finished", func(t *testing.T) {
		settings := testSettings(t, 1)
		history := store.NewMemoryHistory()
		c := NewLiveController(settings, live, genetic.NewOptimizer(1), WithHistory(history), WithRunID("live"))

		require.NoError(t, c.Run(context.Background()))

		pop, ok := store.Load(settings.PopulationFile, settings.PopulationSize, genetic.NewOptimizer(2))
		require.True(t, ok)
		require.Equal(t, 1, pop.Generation)

		summaries, err := history.Generations(context.Background(), "live")
		require.NoError(t, err)
		require.Len(t, summaries, 1)
		require.Equal(t, float64(summaries[0].BestScore), summaries[0].BestFitness)

		snap := c.Snapshot()
		require.Equal(t, 1, snap.Generation)
		require.Len(t, snap.Agents, 4)
		for _, ag := range snap.Agents {
			require.Zero(t, ag.Steps)
		}
	})

	t.Run("stops on cancel", func(t *testing.T) {
		settings := testSettings(t, 0)
		slow := live
		slow.GenerationPause = config.Duration{Duration: time.Hour}
		c := NewLiveController(settings, slow, genetic.NewOptimizer(1))

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		require.NoError(t, c.Run(ctx))
		require.Equal(t, 0, c.Snapshot().Generation)
	})

	t.Run("rejects a zero step interval", func(t *testing.T) {
		require.Panics(t, func() { NewLiveController(testSettings(t, 1), config.Live{}, genetic.NewOptimizer(1)) })
	})
}
