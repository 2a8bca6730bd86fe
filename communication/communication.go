package communication

import (
	"ai2048/game"
	"ai2048/gamemaster"
)

// BoardState is the JSON view of one board.
type BoardState struct {
	Rows     [][]int `json:"rows"`
	Score    int     `json:"score"`
	Moves    int     `json:"moves"`
	MaxTile  int     `json:"max_tile"`
	Won      bool    `json:"won"`
	GameOver bool    `json:"game_over"`
}

func NewBoardState(s gamemaster.Snapshot) BoardState {
	return BoardState{
		Rows:     s.Rows,
		Score:    s.Score,
		Moves:    s.Moves,
		MaxTile:  s.MaxTile,
		Won:      s.Won,
		GameOver: s.GameOver,
	}
}

type MoveRequest struct {
	Direction string `json:"direction"`
}

// MoveResponse answers both a manual move and an auto step. Moved is false
// when the direction did not change the board.
type MoveResponse struct {
	Direction string     `json:"direction"`
	Moved     bool       `json:"moved"`
	Board     BoardState `json:"board"`
}

// StepRequest selects the weights for an auto step; nil means the defaults.
type StepRequest struct {
	Weights *game.Weights `json:"weights,omitempty"`
}

type AgentState struct {
	Weights   game.Weights `json:"weights"`
	Board     BoardState   `json:"board"`
	Steps     int          `json:"steps"`
	BestScore int          `json:"best_score"`
	BestMoves int          `json:"best_moves"`
	Finished  bool         `json:"finished"`
}

type PopulationState struct {
	Generation int          `json:"generation"`
	Leader     int          `json:"leader"`
	Finished   bool         `json:"finished"`
	Agents     []AgentState `json:"agents"`
}

func NewPopulationState(s gamemaster.ArenaSnapshot) PopulationState {
	state := PopulationState{
		Generation: s.Generation,
		Leader:     s.Leader,
		Finished:   s.Finished,
		Agents:     make([]AgentState, len(s.Agents)),
	}
	for i, a := range s.Agents {
		state.Agents[i] = AgentState{
			Weights:   a.Weights,
			Board:     NewBoardState(a.Board),
			Steps:     a.Steps,
			BestScore: a.BestScore,
			BestMoves: a.BestMoves,
			Finished:  a.Finished,
		}
	}
	return state
}

type ErrorResponse struct {
	Error string `json:"error"`
}
