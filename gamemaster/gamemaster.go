package gamemaster

import (
	"sync"

	"ai2048/fitness"
	"ai2048/game"
	"ai2048/genetic"
	"ai2048/searcher"
	"ai2048/utils"
)

// AgentSnapshot is the live state of one individual's board.
type AgentSnapshot struct {
	Weights   game.Weights
	Board     Snapshot
	Steps     int
	BestScore int
	BestMoves int
	Finished  bool
}

type ArenaSnapshot struct {
	Generation int
	Agents     []AgentSnapshot
	Leader     int // index of the agent with the highest score, -1 if empty
	Finished   bool
}

type agent struct {
	board     *game.Board
	strategy  *searcher.Greedy
	steps     int
	bestScore int
	bestMoves int
	finished  bool
}

// record keeps the best score seen so far and the step count it was reached at.
func (a *agent) record() {
	if score := a.board.Score(); score > a.bestScore {
		a.bestScore = score
		a.bestMoves = a.steps
	}
}

// Arena runs one live board per individual, every board advancing one greedy
// move per StepAll. It is safe for concurrent use.
type Arena struct {
	mu     sync.Mutex
	size   int
	seed   uint64
	rounds int
	pop    genetic.Population
	agents []*agent
}

// NewArena deals a fresh board to every individual of pop. Board seeds are
// derived from seed, so two arenas built alike play identical games.
func NewArena(pop genetic.Population, size int, seed uint64) *Arena {
	a := &Arena{size: size, seed: seed}
	a.deal(pop)
	return a
}

func (a *Arena) deal(pop genetic.Population) {
	a.pop = pop.Clone()
	a.agents = make([]*agent, pop.Size())
	for i, ind := range a.pop.Individuals {
		index := a.rounds*pop.Size() + i
		a.agents[i] = &agent{
			board:    game.NewBoard(a.size, fitness.GameSeed(a.seed, index)),
			strategy: searcher.NewGreedy(ind.Weights),
		}
	}
	a.rounds++
}

// StepAll advances every unfinished board by one move and reports whether all
// boards are finished.
func (a *Arena) StepAll() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	done := true
	for _, ag := range a.agents {
		if ag.finished {
			continue
		}
		if ag.board.IsGameOver() {
			ag.record()
			ag.finished = true
			continue
		}
		if _, moved := searcher.Step(ag.board, ag.strategy); !moved {
			ag.record()
			ag.finished = true
			continue
		}
		ag.steps++
		ag.record()
		done = false
	}
	return done
}

func (a *Arena) Finished() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, ag := range a.agents {
		if !ag.finished {
			return false
		}
	}
	return true
}

func (a *Arena) Snapshot() ArenaSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := ArenaSnapshot{
		Generation: a.pop.Generation,
		Agents:     make([]AgentSnapshot, len(a.agents)),
		Finished:   true,
	}
	scores := make([]int, len(a.agents))
	for i, ag := range a.agents {
		s.Agents[i] = AgentSnapshot{
			Weights:   a.pop.Individuals[i].Weights,
			Board:     snapshot(ag.board, ag.steps),
			Steps:     ag.steps,
			BestScore: ag.bestScore,
			BestMoves: ag.bestMoves,
			Finished:  ag.finished,
		}
		scores[i] = ag.board.Score()
		if !ag.finished {
			s.Finished = false
		}
	}
	s.Leader = utils.ArgMax(scores)
	return s
}

// Results returns the population with each individual's live game written
// onto it: fitness is the best score reached.
func (a *Arena) Results() genetic.Population {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := a.pop.Clone()
	for i, ag := range a.agents {
		out.Individuals[i] = out.Individuals[i].WithEvaluation(float64(ag.bestScore), ag.bestScore, ag.bestMoves)
	}
	return out
}

// Reset replaces the population and deals fresh boards.
func (a *Arena) Reset(pop genetic.Population) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.deal(pop)
}
