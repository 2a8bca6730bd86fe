package trainer

import (
	"context"
	"fmt"
	"time"

	"ai2048/config"
	"ai2048/gamemaster"
	"ai2048/genetic"

	"github.com/rs/zerolog/log"
)

type liveController struct {
	base
	live  config.Live
	arena *gamemaster.Arena
}

// NewLiveController plays one board per individual, advancing every board
// once per step interval. When all boards are finished it waits the
// generation pause, takes each individual's best score as its fitness, then
// evolves, persists and deals new boards.
func NewLiveController(settings config.Training, live config.Live, optimizer *genetic.Optimizer, options ...Option) *liveController {
	if live.StepInterval.Duration <= 0 {
		panic("step interval must be positive")
	}
	return &liveController{
		base:  newBase("live", settings, optimizer, options),
		live:  live,
		arena: gamemaster.NewArena(genetic.Population{}, settings.BoardSize, settings.Seed),
	}
}

// Snapshot returns the live state of every board.
func (c *liveController) Snapshot() gamemaster.ArenaSnapshot {
	return c.arena.Snapshot()
}

func (c *liveController) Run(ctx context.Context) error {
	if err := c.history.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialise history: %w", err)
	}
	pop := c.load()
	c.arena.Reset(pop)
	log.Info().Msgf("live run %s started at generation %d", c.runID, pop.Generation)

	ticker := time.NewTicker(c.live.StepInterval.Duration)
	defer ticker.Stop()

	completed := 0
	start := time.Now()
	for !c.done(completed) {
		select {
		case <-ctx.Done():
			log.Info().Msgf("live run %s stopped after %d generations", c.runID, completed)
			return c.writeArtifacts()
		case <-ticker.C:
		}
		if !c.arena.StepAll() {
			continue
		}

		if !sleep(ctx, c.live.GenerationPause.Duration) {
			continue
		}
		next, err := c.finishGeneration(ctx, c.arena.Results(), time.Since(start))
		if err != nil {
			return err
		}
		c.arena.Reset(next)
		completed++
		start = time.Now()
	}

	log.Info().Msgf("live run %s stopped after %d generations", c.runID, completed)
	return c.writeArtifacts()
}

// sleep waits for d and reports false if ctx was cancelled first.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
