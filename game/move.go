package game

import (
	"fmt"
	"strings"
)

// Direction is a sliding direction on the board.
type Direction int

const (
	Left Direction = iota
	Right
	Up
	Down
)

// Directions lists every direction in the order the selector tries them.
var Directions = [...]Direction{Left, Right, Up, Down}

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// ParseDirection accepts a direction name, case-insensitive.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left", "l":
		return Left, nil
	case "right", "r":
		return Right, nil
	case "up", "u":
		return Up, nil
	case "down", "d":
		return Down, nil
	}
	return Left, fmt.Errorf("unknown direction %q", s)
}

// line returns the cell indices of the i-th row or column, ordered from the
// end tiles slide towards.
func (d Direction) line(size, i int, out []int) []int {
	out = out[:0]
	for j := 0; j < size; j++ {
		switch d {
		case Left:
			out = append(out, i*size+j)
		case Right:
			out = append(out, i*size+size-1-j)
		case Up:
			out = append(out, j*size+i)
		case Down:
			out = append(out, (size-1-j)*size+i)
		}
	}
	return out
}
