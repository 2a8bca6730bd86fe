package engine

import (
	"ai2048/experiments/metrics"
	"ai2048/game"
	"ai2048/searcher"
)

// MaxMoves is the default move cap per game.
const MaxMoves = 1000

// Result is the outcome of one game.
type Result struct {
	Score   int
	Moves   int
	MaxTile int
	Won     bool
}

type Option func(e *Engine)

func WithMetrics(collector metrics.Collector) Option {
	return func(e *Engine) {
		if collector != nil {
			e.metrics = collector
		}
	}
}

// Engine drives one board to the end of a game with a strategy.
type Engine struct {
	board    *game.Board
	strategy searcher.Strategy
	maxMoves int
	metrics  metrics.Collector
}

func New(board *game.Board, strategy searcher.Strategy, maxMoves int, options ...Option) *Engine {
	if maxMoves < 0 {
		panic("move cap must not be negative")
	}
	e := &Engine{
		board:    board,
		strategy: strategy,
		maxMoves: maxMoves,
		metrics:  metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(e)
	}
	return e
}

// Run plays until the game is over, the move cap is reached, or the strategy
// returns a direction that does not change the board.
func (e *Engine) Run() Result {
	moves := 0
	for !e.board.IsGameOver() && moves < e.maxMoves {
		if _, moved := searcher.Step(e.board, e.strategy); !moved {
			break
		}
		moves++
	}

	result := Result{
		Score:   e.board.Score(),
		Moves:   moves,
		MaxTile: e.board.MaxTile(),
		Won:     e.board.IsWin(),
	}
	e.metrics.AddGame(result.Moves, result.Won)
	return result
}

// Play runs a fresh greedy game for the weights on a board seeded with seed.
func Play(size int, seed uint64, weights game.Weights, maxMoves int) Result {
	board := game.NewBoard(size, seed)
	return New(board, searcher.NewGreedy(weights), maxMoves).Run()
}
