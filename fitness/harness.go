package fitness

import (
	"runtime"

	"ai2048/engine"
	"ai2048/experiments/metrics"
	"ai2048/game"
	"ai2048/genetic"
	"ai2048/searcher"

	"golang.org/x/sync/errgroup"
)

const DefaultGames = 10

// Result aggregates every game played for one weight vector.
type Result struct {
	Fitness   float64 // mean final score
	BestScore int
	BestMoves int
	Games     int
}

// StrategyFactory builds the move strategy used for one game.
type StrategyFactory func(weights game.Weights, seed uint64) searcher.Strategy

// GreedyStrategy is the default factory.
func GreedyStrategy(weights game.Weights, _ uint64) searcher.Strategy {
	return searcher.NewGreedy(weights)
}

type Option func(h *Harness)

func WithGames(games int) Option {
	return func(h *Harness) {
		if games >= 0 {
			h.games = games
		}
	}
}

func WithMaxMoves(maxMoves int) Option {
	return func(h *Harness) {
		if maxMoves >= 0 {
			h.maxMoves = maxMoves
		}
	}
}

// WithWorkers sets the size of the worker pool, 0 uses every CPU.
func WithWorkers(workers int) Option {
	return func(h *Harness) {
		if workers >= 0 {
			h.workers = workers
		}
	}
}

func WithBoardSize(size int) Option {
	return func(h *Harness) {
		if size > 0 {
			h.boardSize = size
		}
	}
}

// WithSeed sets the run seed every game seed is derived from.
func WithSeed(seed uint64) Option {
	return func(h *Harness) {
		h.seed = seed
	}
}

func WithStrategy(factory StrategyFactory) Option {
	return func(h *Harness) {
		if factory != nil {
			h.strategy = factory
		}
	}
}

func WithMetrics(collector metrics.Collector) Option {
	return func(h *Harness) {
		if collector != nil {
			h.metrics = collector
		}
	}
}

// Harness scores weight vectors by playing many independent games on a pool
// of goroutines. Game i always uses the same seed for a given run seed, so
// results do not depend on the number of workers.
type Harness struct {
	games     int
	maxMoves  int
	workers   int
	boardSize int
	seed      uint64
	strategy  StrategyFactory
	metrics   metrics.Collector
}

func NewHarness(options ...Option) *Harness {
	h := &Harness{ // Default values
		games:     DefaultGames,
		maxMoves:  engine.MaxMoves,
		boardSize: game.DefaultSize,
		strategy:  GreedyStrategy,
		metrics:   metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(h)
	}
	return h
}

// Reseeded returns a copy of h drawing its games from seed.
func (h *Harness) Reseeded(seed uint64) *Harness {
	c := *h
	c.seed = seed
	return &c
}

// Metric returns the collector's view of the last evaluation.
func (h *Harness) Metric() metrics.EvaluationMetric {
	return h.metrics.Complete()
}

// taskResult is the local aggregate of one worker. Best is the earliest game
// of the task reaching the task's highest score.
type taskResult struct {
	total     int64
	bestScore int
	bestMoves int
	found     bool
}

// Evaluate plays the configured number of games for w and blocks until every
// worker has finished.
func (h *Harness) Evaluate(w game.Weights) Result {
	if h.games == 0 {
		return Result{}
	}

	tasks := h.tasks()
	h.metrics.Start(tasks)
	results := make([]taskResult, tasks)

	var g errgroup.Group
	start := 0
	for i, count := range Partition(h.games, tasks) {
		i, from, to := i, start, start+count
		start = to
		g.Go(func() error {
			results[i] = h.runTask(w, from, to)
			return nil
		})
	}
	_ = g.Wait() // tasks never fail

	// Fold in task order: tasks cover ascending game ranges, so the best game
	// is the earliest one with the maximum score whatever the worker count.
	var total int64
	result := Result{Games: h.games}
	found := false
	for _, r := range results {
		total += r.total
		if r.found && (!found || r.bestScore > result.BestScore) {
			result.BestScore = r.bestScore
			result.BestMoves = r.bestMoves
			found = true
		}
	}
	result.Fitness = float64(total) / float64(h.games)
	return result
}

func (h *Harness) runTask(w game.Weights, from, to int) taskResult {
	var r taskResult
	for i := from; i < to; i++ {
		seed := GameSeed(h.seed, i)
		board := game.NewBoard(h.boardSize, seed)
		res := engine.New(board, h.strategy(w, seed), h.maxMoves, engine.WithMetrics(h.metrics)).Run()

		r.total += int64(res.Score)
		if !r.found || res.Score > r.bestScore {
			r.bestScore = res.Score
			r.bestMoves = res.Moves
			r.found = true
		}
	}
	return r
}

// EvaluatePopulation evaluates every individual in order and returns a new
// population carrying the results. pop itself is not modified.
func (h *Harness) EvaluatePopulation(pop genetic.Population) genetic.Population {
	evaluated := pop.Clone()
	for i, ind := range evaluated.Individuals {
		r := h.Evaluate(ind.Weights)
		evaluated.Individuals[i] = ind.WithEvaluation(r.Fitness, r.BestScore, r.BestMoves)
	}
	return evaluated
}

func (h *Harness) tasks() int {
	workers := h.workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	return max(1, min(h.games, workers))
}

// Partition splits games into tasks counts differing by at most one, the
// first tasks taking the remainder.
func Partition(games, tasks int) []int {
	counts := make([]int, tasks)
	base, remainder := games/tasks, games%tasks
	for i := range counts {
		counts[i] = base
		if i < remainder {
			counts[i]++
		}
	}
	return counts
}

// GameSeed derives the seed of game index from the run seed with a
// splitmix64 step.
func GameSeed(runSeed uint64, index int) uint64 {
	z := runSeed + uint64(index+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
