package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// GenerationRecord is one row of a training run's generation log.
type GenerationRecord struct {
	Generation  int
	BestFitness float64
	MeanFitness float64
	BestScore   int
	BestMoves   int
	Duration    time.Duration
}

// ThroughputRecord is one row of a worker-count experiment.
type ThroughputRecord struct {
	ID      int
	Fitness float64
	EvaluationMetric
}

type Writer struct {
	baseDir string
}

// NewWriter creates <root>/<name>/<timestamp>/ for the run's artifacts.
func NewWriter(root, name string) (*Writer, error) {
	// Create a subfolder named by current timestamp
	timestamp := time.Now().UTC().Format("20060102T150405Z")
	baseDir := filepath.Join(root, name, timestamp)
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

func (w *Writer) Dir() string {
	return w.baseDir
}

func (w *Writer) WriteGenerationRecords(records []GenerationRecord) error {
	header := []string{"generation", "best_fitness", "mean_fitness", "best_score", "best_moves", "duration"}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.Generation),
			strconv.FormatFloat(record.BestFitness, 'f', -1, 64),
			strconv.FormatFloat(record.MeanFitness, 'f', -1, 64),
			strconv.Itoa(record.BestScore),
			strconv.Itoa(record.BestMoves),
			record.Duration.String(),
		})
	}
	return w.writeCSV("generations.csv", header, rows)
}

func (w *Writer) WriteThroughputRecords(records []ThroughputRecord) error {
	header := []string{"id", "workers", "games", "moves", "wins", "duration", "games_per_second", "moves_per_second", "fitness"}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.ID),
			strconv.Itoa(record.Workers),
			strconv.Itoa(record.Games),
			strconv.Itoa(record.Moves),
			strconv.Itoa(record.Wins),
			record.Duration.String(),
			strconv.FormatFloat(record.GamesPerSecond(), 'f', 2, 64),
			strconv.FormatFloat(record.MovesPerSecond(), 'f', 2, 64),
			strconv.FormatFloat(record.Fitness, 'f', -1, 64),
		})
	}
	return w.writeCSV("throughput.csv", header, rows)
}

func (w *Writer) writeCSV(name string, header []string, rows [][]string) error {
	// Create a file
	path := filepath.Join(w.baseDir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)

	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write %s header: %w", name, err)
	}

	// Write each row
	for _, row := range rows {
		err = writer.Write(row)
		if err != nil {
			return fmt.Errorf("failed to write %s row: %w", name, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
