package game

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"strings"

	"golang.org/x/exp/rand"
)

const (
	DefaultSize = 4
	WinTile     = 2048
)

type BoardHash uint64

// Board is one game of 2048: an N×N grid, the running score and the random
// source used for spawning tiles. Cells are stored row-major, 0 is empty.
type Board struct {
	size  int
	score int
	cells []int
	rng   *rand.Rand

	line []int // scratch buffers reused across moves
	vals []int
}

// NewBoard creates a size×size board seeded with seed and spawns the two
// starting tiles.
func NewBoard(size int, seed uint64) *Board {
	b := newBoard(size, rand.New(rand.NewSource(seed)))
	b.Reset()
	return b
}

// NewBoardFromRows builds a board holding exactly the given rows, with a zero
// score and no spawned tiles.
func NewBoardFromRows(rows [][]int, seed uint64) *Board {
	b := newBoard(len(rows), rand.New(rand.NewSource(seed)))
	for r, row := range rows {
		if len(row) != b.size {
			panic(fmt.Sprintf("row %d has %d cells, want %d", r, len(row), b.size))
		}
		copy(b.cells[r*b.size:], row)
	}
	return b
}

func newBoard(size int, rng *rand.Rand) *Board {
	if size < 1 {
		panic("board size must be positive")
	}
	return &Board{
		size:  size,
		cells: make([]int, size*size),
		rng:   rng,
		line:  make([]int, 0, size),
		vals:  make([]int, 0, size),
	}
}

// Copy returns an independent grid with the same score. The copy shares the
// random source, so it must stay on the goroutine that owns b.
func (b *Board) Copy() *Board {
	c := newBoard(b.size, b.rng)
	c.score = b.score
	copy(c.cells, b.cells)
	return c
}

// Reset clears the grid and score, then spawns two tiles.
func (b *Board) Reset() {
	b.score = 0
	for i := range b.cells {
		b.cells[i] = 0
	}
	b.spawn()
	b.spawn()
}

func (b *Board) Size() int  { return b.size }
func (b *Board) Score() int { return b.score }

// At returns the value at row r, column c.
func (b *Board) At(r, c int) int {
	return b.cells[r*b.size+c]
}

// Rows returns a copy of the grid.
func (b *Board) Rows() [][]int {
	rows := make([][]int, b.size)
	for r := range rows {
		rows[r] = append([]int(nil), b.cells[r*b.size:(r+1)*b.size]...)
	}
	return rows
}

func (b *Board) MaxTile() int {
	max := 0
	for _, v := range b.cells {
		if v > max {
			max = v
		}
	}
	return max
}

func (b *Board) EmptyCells() int {
	n := 0
	for _, v := range b.cells {
		if v == 0 {
			n++
		}
	}
	return n
}

func (b *Board) MoveLeft() bool  { return b.Move(Left) }
func (b *Board) MoveRight() bool { return b.Move(Right) }
func (b *Board) MoveUp() bool    { return b.Move(Up) }
func (b *Board) MoveDown() bool  { return b.Move(Down) }

// Move slides the board in d and spawns one tile if anything changed. The
// returned flag is the only legality signal: an unchanged board means the
// move was illegal and nothing, including the score, was touched.
func (b *Board) Move(d Direction) bool {
	if !b.shift(d) {
		return false
	}
	b.spawn()
	return true
}

// CanMove reports whether d would change the board, without spawning or
// touching the random source.
func (b *Board) CanMove(d Direction) bool {
	return b.Copy().shift(d)
}

// shift applies the slide and merges without spawning.
func (b *Board) shift(d Direction) bool {
	changed := false
	for i := 0; i < b.size; i++ {
		b.line = d.line(b.size, i, b.line)
		b.vals = b.vals[:0]
		for _, idx := range b.line {
			b.vals = append(b.vals, b.cells[idx])
		}
		gained, moved := slideLeft(b.vals)
		if !moved {
			continue
		}
		changed = true
		b.score += gained
		for j, idx := range b.line {
			b.cells[idx] = b.vals[j]
		}
	}
	return changed
}

// slideLeft compacts row towards index 0 and merges equal neighbours pairwise
// from the front, each tile merging at most once. It returns the merge score
// and whether the row changed.
func slideLeft(row []int) (int, bool) {
	gained := 0
	out := 0
	last := 0 // value at out-1 still eligible for a merge, 0 if none
	changed := false
	for i, v := range row {
		if v == 0 {
			continue
		}
		if last == v {
			row[out-1] = 2 * v
			gained += 2 * v
			last = 0
			changed = true
		} else {
			if out != i {
				changed = true
			}
			row[out] = v
			out++
			last = v
		}
	}
	for i := out; i < len(row); i++ {
		row[i] = 0
	}
	return gained, changed
}

// spawn puts a 2 (90%) or a 4 (10%) on a uniformly chosen empty cell.
func (b *Board) spawn() {
	empty := b.EmptyCells()
	if empty == 0 {
		return
	}
	pick := b.rng.Intn(empty)
	for i, v := range b.cells {
		if v != 0 {
			continue
		}
		if pick == 0 {
			if b.rng.Intn(10) == 9 {
				b.cells[i] = 4
			} else {
				b.cells[i] = 2
			}
			return
		}
		pick--
	}
}

func (b *Board) IsWin() bool {
	return b.MaxTile() >= WinTile
}

// IsGameOver reports whether no direction could change the board.
func (b *Board) IsGameOver() bool {
	n := b.size
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			v := b.cells[r*n+c]
			if v == 0 {
				return false
			}
			if c+1 < n && v == b.cells[r*n+c+1] {
				return false
			}
			if r+1 < n && v == b.cells[(r+1)*n+c] {
				return false
			}
		}
	}
	return true
}

// Hash identifies the grid and score, used to skip unchanged snapshots.
func (b *Board) Hash() BoardHash {
	h := fnv.New64a()
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(b.score))
	h.Write(buf)
	for _, v := range b.cells {
		binary.LittleEndian.PutUint64(buf, uint64(v))
		h.Write(buf)
	}
	return BoardHash(h.Sum64())
}

func (b *Board) String() string {
	var sb strings.Builder
	for r := 0; r < b.size; r++ {
		for c := 0; c < b.size; c++ {
			if c > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%5d", b.At(r, c))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
