package trainer

import (
	"context"
	"fmt"
	"time"

	"ai2048/config"
	"ai2048/experiments/metrics"
	"ai2048/fitness"
	"ai2048/genetic"
	"ai2048/store"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Controller runs a training loop until it completes or ctx is cancelled.
type Controller interface {
	Run(ctx context.Context) error
}

type Option func(c *base)

// WithHistory records every generation summary in h. The controller
// initialises h but does not close it.
func WithHistory(h store.History) Option {
	return func(c *base) {
		if h != nil {
			c.history = h
		}
	}
}

// WithArtifacts writes generations.csv, and fitness.png when plot is set,
// under <dir>/<name>/<timestamp>/ once the run ends.
func WithArtifacts(dir string, plot bool) Option {
	return func(c *base) {
		c.artifactDir = dir
		c.plot = plot
	}
}

func WithRunID(id string) Option {
	return func(c *base) {
		if id != "" {
			c.runID = id
		}
	}
}

// base holds what both controllers share: settings, the optimizer, the
// generation log and where it goes.
type base struct {
	name        string
	settings    config.Training
	optimizer   *genetic.Optimizer
	history     store.History
	runID       string
	artifactDir string
	plot        bool
	records     []metrics.GenerationRecord
}

func newBase(name string, settings config.Training, optimizer *genetic.Optimizer, options []Option) base {
	if settings.PopulationSize <= 0 {
		panic("population size must be positive")
	}
	b := base{
		name:      name,
		settings:  settings,
		optimizer: optimizer,
		history:   store.NewMemoryHistory(),
		runID:     uuid.NewString(),
	}
	for _, option := range options {
		option(&b)
	}
	return b
}

func (b *base) RunID() string {
	return b.runID
}

func (b *base) load() genetic.Population {
	pop, ok := store.Load(b.settings.PopulationFile, b.settings.PopulationSize, b.optimizer)
	if ok {
		log.Info().Msgf("loaded generation %d (%d individuals) from %s", pop.Generation, pop.Size(), b.settings.PopulationFile)
	}
	return pop
}

// finishGeneration logs and records an evaluated population, then evolves and
// persists the next one.
func (b *base) finishGeneration(ctx context.Context, evaluated genetic.Population, took time.Duration) (genetic.Population, error) {
	summary := store.Summarize(b.runID, evaluated, took)
	log.Info().Msgf("generation %d: best fitness %.1f, mean %.1f, best game %d in %d moves (%s)",
		summary.Generation, summary.BestFitness, summary.MeanFitness, summary.BestScore, summary.BestMoves, took.Round(time.Millisecond))
	log.Debug().Msgf("generation %d best weights %+v", summary.Generation, summary.BestWeights)

	if err := b.history.SaveGeneration(ctx, summary); err != nil {
		return genetic.Population{}, fmt.Errorf("failed to record generation %d: %w", summary.Generation, err)
	}
	b.records = append(b.records, metrics.GenerationRecord{
		Generation:  summary.Generation,
		BestFitness: summary.BestFitness,
		MeanFitness: summary.MeanFitness,
		BestScore:   summary.BestScore,
		BestMoves:   summary.BestMoves,
		Duration:    took,
	})

	next := b.optimizer.Evolve(evaluated, b.settings.EliteRate, b.settings.MutationRate)
	if err := store.Save(b.settings.PopulationFile, next); err != nil {
		return genetic.Population{}, err
	}
	return next, nil
}

func (b *base) done(completed int) bool {
	return b.settings.Generations > 0 && completed >= b.settings.Generations
}

// writeArtifacts dumps the generation log of this run, if any was requested.
func (b *base) writeArtifacts() error {
	if b.artifactDir == "" || len(b.records) == 0 {
		return nil
	}
	w, err := metrics.NewWriter(b.artifactDir, b.name)
	if err != nil {
		return err
	}
	if err := w.WriteGenerationRecords(b.records); err != nil {
		return err
	}
	if b.plot {
		if _, err := w.WriteFitnessPlot(b.records); err != nil {
			return err
		}
	}
	log.Info().Msgf("run %s artifacts written to %s", b.runID, w.Dir())
	return nil
}

type trainingController struct {
	base
	harness *fitness.Harness
}

// NewTrainingController scores every individual with the harness, evolves and
// persists, once per generation. Each generation plays its own set of games,
// derived from the settings seed and the generation number.
func NewTrainingController(settings config.Training, harness *fitness.Harness, optimizer *genetic.Optimizer, options ...Option) *trainingController {
	return &trainingController{
		base:    newBase("training", settings, optimizer, options),
		harness: harness,
	}
}

// Run stops between generations; a generation in progress always completes.
func (c *trainingController) Run(ctx context.Context) error {
	if err := c.history.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialise history: %w", err)
	}
	pop := c.load()
	log.Info().Msgf("training run %s started at generation %d", c.runID, pop.Generation)

	completed := 0
	for !c.done(completed) && ctx.Err() == nil {
		start := time.Now()
		h := c.harness.Reseeded(fitness.GameSeed(c.settings.Seed, pop.Generation))
		evaluated := h.EvaluatePopulation(pop)

		next, err := c.finishGeneration(ctx, evaluated, time.Since(start))
		if err != nil {
			return err
		}
		pop = next
		completed++
	}

	log.Info().Msgf("training run %s stopped after %d generations", c.runID, completed)
	return c.writeArtifacts()
}
