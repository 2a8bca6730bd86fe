package searcher

import (
	"ai2048/game"

	"golang.org/x/exp/rand"
)

// Strategy picks the next direction for a board. Implementations must not
// mutate the board they are given.
type Strategy interface {
	FindMove(b *game.Board) game.Direction
}

// Step asks s for a direction and applies it to b. It reports the direction
// and whether the board changed.
func Step(b *game.Board, s Strategy) (game.Direction, bool) {
	d := s.FindMove(b)
	return d, b.Move(d)
}

// Random picks uniformly among the directions that change the board.
type Random struct {
	rng *rand.Rand
}

func NewRandom(seed uint64) *Random {
	return &Random{rng: rand.New(rand.NewSource(seed))}
}

func (r *Random) FindMove(b *game.Board) game.Direction {
	legal := make([]game.Direction, 0, len(game.Directions))
	for _, d := range game.Directions {
		if b.CanMove(d) {
			legal = append(legal, d)
		}
	}
	if len(legal) == 0 {
		return game.Left
	}
	return legal[r.rng.Intn(len(legal))]
}
