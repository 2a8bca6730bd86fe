package experiments

import (
	"fmt"

	"ai2048/experiments/metrics"
	"ai2048/fitness"
	"ai2048/game"

	"github.com/rs/zerolog/log"
)

// ThroughputConfig describes one run of the throughput experiment.
type ThroughputConfig struct {
	Weights      game.Weights
	Games        int
	MaxMoves     int
	Seed         uint64
	WorkerCounts []int
	OutputDir    string // records are only written when set
}

// RunThroughputExperiment evaluates the same weights once per worker count and
// records games and moves per second. Every configuration plays the same
// seeded games, so the aggregate must not change with the worker count; a
// mismatch is returned as an error.
func RunThroughputExperiment(cfg ThroughputConfig) ([]metrics.ThroughputRecord, error) {
	if len(cfg.WorkerCounts) == 0 {
		cfg.WorkerCounts = DefaultWorkerCounts
	}

	log.Info().Msgf("starting throughput experiment with %d games per configuration...", cfg.Games)

	records := make([]metrics.ThroughputRecord, 0, len(cfg.WorkerCounts))
	var baseline fitness.Result
	for i, workers := range cfg.WorkerCounts {
		collector := metrics.NewCollector()
		harness := fitness.NewHarness(
			fitness.WithGames(cfg.Games),
			fitness.WithMaxMoves(cfg.MaxMoves),
			fitness.WithWorkers(workers),
			fitness.WithSeed(cfg.Seed),
			fitness.WithMetrics(collector),
		)
		result := harness.Evaluate(cfg.Weights)
		metric := harness.Metric()

		if i == 0 {
			baseline = result
		} else if result != baseline {
			return records, fmt.Errorf("workers=%d produced %+v, workers=%d produced %+v", workers, result, cfg.WorkerCounts[0], baseline)
		}

		records = append(records, metrics.ThroughputRecord{
			ID:               i + 1,
			Fitness:          result.Fitness,
			EvaluationMetric: metric,
		})
		log.Info().Msgf("workers=%d: %d games in %s (%.1f games/s, %.0f moves/s), fitness %.1f",
			metric.Workers, metric.Games, metric.Duration, metric.GamesPerSecond(), metric.MovesPerSecond(), result.Fitness)
	}

	log.Info().Msg("completed throughput experiment")

	if cfg.OutputDir != "" {
		if _, err := writeThroughput(cfg.OutputDir, records); err != nil {
			return records, err
		}
	}
	return records, nil
}
