package experiments

import (
	"fmt"

	"ai2048/experiments/metrics"

	"github.com/rs/zerolog/log"
)

const (
	NumGames = 64 // Per worker configuration
	MaxMoves = 1000
)

// DefaultWorkerCounts are the pool sizes compared by the throughput
// experiment.
var DefaultWorkerCounts = []int{1, 2, 4, 8, 16, 32}

func writeThroughput(root string, records []metrics.ThroughputRecord) (string, error) {
	writer, err := metrics.NewWriter(root, "throughput")
	if err != nil {
		return "", fmt.Errorf("failed to create experiment writer: %w", err)
	}
	if err := writer.WriteThroughputRecords(records); err != nil {
		return "", fmt.Errorf("failed to store throughput records: %w", err)
	}
	log.Info().Str("dir", writer.Dir()).Msg("stored throughput records")
	return writer.Dir(), nil
}
