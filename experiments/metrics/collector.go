package metrics

import (
	"sync/atomic"
	"time"
)

// EvaluationMetric summarises the work done by one fitness evaluation.
type EvaluationMetric struct {
	Workers  int
	Duration time.Duration
	Games    int
	Moves    int
	Wins     int
}

func (m EvaluationMetric) GamesPerSecond() float64 {
	if m.Duration <= 0 {
		return 0
	}
	return float64(m.Games) / m.Duration.Seconds()
}

func (m EvaluationMetric) MovesPerSecond() float64 {
	if m.Duration <= 0 {
		return 0
	}
	return float64(m.Moves) / m.Duration.Seconds()
}

// Collector counts games as workers finish them. Implementations are safe for
// concurrent use.
type Collector interface {
	Start(workers int)
	AddGame(moves int, won bool)
	Complete() EvaluationMetric
}

type collector struct {
	workers   int
	startTime time.Time
	games     atomic.Int64
	moves     atomic.Int64
	wins      atomic.Int64
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start(workers int) {
	m.startTime = time.Now()
	m.workers = workers
	m.games.Store(0)
	m.moves.Store(0)
	m.wins.Store(0)
}

func (m *collector) AddGame(moves int, won bool) {
	m.games.Add(1)
	m.moves.Add(int64(moves))
	if won {
		m.wins.Add(1)
	}
}

func (m *collector) Complete() EvaluationMetric {
	return EvaluationMetric{
		Workers:  m.workers,
		Duration: time.Since(m.startTime),
		Games:    int(m.games.Load()),
		Moves:    int(m.moves.Load()),
		Wins:     int(m.wins.Load()),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(workers int)           {}
func (m *dummyCollector) AddGame(moves int, won bool) {}
func (m *dummyCollector) Complete() EvaluationMetric  { return EvaluationMetric{} }
