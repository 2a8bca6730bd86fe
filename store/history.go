package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"ai2048/game"
	"ai2048/genetic"
)

// GenerationSummary records the outcome of one evaluated generation.
type GenerationSummary struct {
	RunID       string
	Generation  int
	Size        int
	BestFitness float64
	MeanFitness float64
	BestScore   int
	BestMoves   int
	BestWeights game.Weights
	Duration    time.Duration
	RecordedAt  time.Time
}

// Summarize builds the summary of an evaluated population.
func Summarize(runID string, pop genetic.Population, duration time.Duration) GenerationSummary {
	s := GenerationSummary{
		RunID:       runID,
		Generation:  pop.Generation,
		Size:        pop.Size(),
		MeanFitness: pop.MeanFitness(),
		Duration:    duration,
		RecordedAt:  time.Now().UTC(),
	}
	if best, ok := pop.Best(); ok {
		s.BestFitness = best.Fitness
		s.BestScore = best.BestScore
		s.BestMoves = best.BestMoves
		s.BestWeights = best.Weights
	}
	return s
}

// History keeps generation summaries across runs.
type History interface {
	Init(ctx context.Context) error
	SaveGeneration(ctx context.Context, summary GenerationSummary) error
	Generations(ctx context.Context, runID string) ([]GenerationSummary, error)
	Close() error
}

// NewHistory returns the backend named by kind: "none", "memory" or "sqlite".
func NewHistory(kind, sqlitePath string) (History, error) {
	switch kind {
	case "", "none":
		return noHistory{}, nil
	case "memory":
		return NewMemoryHistory(), nil
	case "sqlite":
		return NewSQLiteHistory(sqlitePath), nil
	default:
		return nil, fmt.Errorf("unsupported history backend: %s", kind)
	}
}

type noHistory struct{}

func (noHistory) Init(context.Context) error                              { return nil }
func (noHistory) SaveGeneration(context.Context, GenerationSummary) error { return nil }
func (noHistory) Generations(context.Context, string) ([]GenerationSummary, error) {
	return nil, nil
}
func (noHistory) Close() error { return nil }

type MemoryHistory struct {
	mu   sync.RWMutex
	runs map[string]map[int]GenerationSummary
}

func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{runs: make(map[string]map[int]GenerationSummary)}
}

func (h *MemoryHistory) Init(context.Context) error { return nil }

func (h *MemoryHistory) SaveGeneration(_ context.Context, summary GenerationSummary) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	run, ok := h.runs[summary.RunID]
	if !ok {
		run = make(map[int]GenerationSummary)
		h.runs[summary.RunID] = run
	}
	run[summary.Generation] = summary
	return nil
}

func (h *MemoryHistory) Generations(_ context.Context, runID string) ([]GenerationSummary, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]GenerationSummary, 0, len(h.runs[runID]))
	for _, s := range h.runs[runID] {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Generation < out[j].Generation })
	return out, nil
}

func (h *MemoryHistory) Close() error { return nil }
