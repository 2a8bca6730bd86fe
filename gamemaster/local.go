package gamemaster

import (
	"sync"

	"ai2048/game"
	"ai2048/searcher"
)

// Snapshot is a copy of one board's visible state.
type Snapshot struct {
	Rows     [][]int
	Score    int
	Moves    int
	MaxTile  int
	Won      bool
	GameOver bool
	Hash     game.BoardHash
}

func snapshot(b *game.Board, moves int) Snapshot {
	return Snapshot{
		Rows:     b.Rows(),
		Score:    b.Score(),
		Moves:    moves,
		MaxTile:  b.MaxTile(),
		Won:      b.IsWin(),
		GameOver: b.IsGameOver(),
		Hash:     b.Hash(),
	}
}

// Session is one interactive board driven by direction commands or single
// greedy steps. It is safe for concurrent use.
type Session struct {
	mu    sync.Mutex
	board *game.Board
	moves int
}

func NewSession(size int, seed uint64) *Session {
	return &Session{board: game.NewBoard(size, seed)}
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot(s.board, s.moves)
}

// Move applies d and reports whether the board changed.
func (s *Session) Move(d game.Direction) (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	moved := s.board.Move(d)
	if moved {
		s.moves++
	}
	return snapshot(s.board, s.moves), moved
}

// AutoStep plays the move the greedy selector picks for weights, or for
// game.DefaultWeights when weights is nil.
func (s *Session) AutoStep(weights *game.Weights) (game.Direction, Snapshot, bool) {
	w := game.DefaultWeights
	if weights != nil {
		w = *weights
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d, moved := searcher.Step(s.board, searcher.NewGreedy(w))
	if moved {
		s.moves++
	}
	return d, snapshot(s.board, s.moves), moved
}

// Reset starts a new game on the same board and random source.
func (s *Session) Reset() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.board.Reset()
	s.moves = 0
	return snapshot(s.board, s.moves)
}
