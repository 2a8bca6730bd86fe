package searcher

import (
	"math"

	"ai2048/game"
)

type Option func(g *Greedy)

// WithEvaluationFn replaces the board heuristic.
func WithEvaluationFn(evaluate game.Evaluate) Option {
	return func(g *Greedy) {
		if evaluate != nil {
			g.evaluate = evaluate
		}
	}
}

// Greedy is a one-ply lookahead: it plays every direction on a scratch copy
// and keeps the one whose resulting board scores highest.
type Greedy struct {
	weights  game.Weights
	evaluate game.Evaluate
}

func NewGreedy(weights game.Weights, options ...Option) *Greedy {
	g := &Greedy{
		weights:  weights,
		evaluate: game.EvaluateBoard,
	}
	for _, option := range options {
		option(g)
	}
	return g
}

func (g *Greedy) Weights() game.Weights {
	return g.weights
}

// FindMove returns the best legal direction, the earliest one on ties. On a
// board with no legal move it returns game.Left; callers check IsGameOver
// first.
func (g *Greedy) FindMove(b *game.Board) game.Direction {
	best := game.Left
	bestScore := math.Inf(-1)
	for _, d := range game.Directions {
		scratch := b.Copy()
		if !scratch.Move(d) {
			continue
		}
		if score := g.evaluate(scratch, g.weights); score > bestScore {
			bestScore = score
			best = d
		}
	}
	return best
}
