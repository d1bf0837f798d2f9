package game

import (
	"fmt"
	"strings"

	"github.com/OneOfOne/xxhash"
	"golang.org/x/exp/rand"
)

// Cell is one intersection of the board.
type Cell uint8

const (
	Empty Cell = iota
	Black      // Player1's stones
	White      // Player2's stones
)

const (
	// DefaultBoardSize is the traditional gomoku board.
	DefaultBoardSize = 15
	// MinBoardSize is the smallest board a winning line fits on.
	MinBoardSize = 5
	// MaxBoardSize is bounded by the single-character coordinate labels.
	MaxBoardSize = 19

	winLength = 5
)

// labels renders board coordinates 0..18 as single characters.
const labels = "0123456789ABCDEFGHI"

var cellMarks = [...]byte{'.', 'X', 'O'}

var lineDirections = [4][2]int{{1, 0}, {0, 1}, {1, 1}, {1, -1}}

// Placement is a stone placed at column X, row Y.
type Placement struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (m Placement) String() string {
	return fmt.Sprintf("[%d, %d]", m.X, m.Y)
}

// ParsePlacement reads a coordinate typed as row label then column label,
// for example "3B" on a board large enough to have a column B.
func ParsePlacement(s string, size int) (Placement, error) {
	text := strings.ToUpper(strings.TrimSpace(s))
	if len(text) != 2 {
		return Placement{}, fmt.Errorf("bad coordinate %q: want row then column, e.g. %c%c", s, labels[size-1], labels[0])
	}
	y := strings.IndexByte(labels[:size], text[0])
	x := strings.IndexByte(labels[:size], text[1])
	if y < 0 || x < 0 {
		return Placement{}, fmt.Errorf("bad coordinate %q: labels run 0-%c", s, labels[size-1])
	}
	return Placement{X: x, Y: y}, nil
}

// GomokuState is a five-in-a-row position on a square board: players
// alternate placing stones, five adjacent stones in any line win, and a
// full board without a line is a draw. It implements State.
type GomokuState struct {
	size   int
	cells  []Cell
	player Player
	lastX  int // -1 before the first stone
	lastY  int
	empty  []Placement
}

// NewGomokuState returns an empty board with Player1 to move. The size
// must lie within [MinBoardSize, MaxBoardSize]; anything else panics.
func NewGomokuState(size int) *GomokuState {
	if size < MinBoardSize || size > MaxBoardSize {
		panic(fmt.Sprintf("gomoku: board size %d out of range %d..%d", size, MinBoardSize, MaxBoardSize))
	}
	g := &GomokuState{
		size:   size,
		cells:  make([]Cell, size*size),
		player: Player1,
		lastX:  -1,
		lastY:  -1,
		empty:  make([]Placement, 0, size*size),
	}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			g.empty = append(g.empty, Placement{X: x, Y: y})
		}
	}
	return g
}

func (g *GomokuState) Clone() State {
	c := *g
	c.cells = append([]Cell(nil), g.cells...)
	c.empty = append([]Placement(nil), g.empty...)
	return &c
}

func (g *GomokuState) Player() Player {
	return g.player
}

func (g *GomokuState) LegalMoves() []Move {
	if g.winner() != Empty {
		return nil
	}
	moves := make([]Move, len(g.empty))
	for i, m := range g.empty {
		moves[i] = m
	}
	return moves
}

func (g *GomokuState) HasMoves() bool {
	return len(g.empty) > 0 && g.winner() == Empty
}

func (g *GomokuState) Play(move Move) {
	m, ok := move.(Placement)
	if !ok {
		panic(fmt.Sprintf("gomoku: foreign move %v", move))
	}
	for i, e := range g.empty {
		if e == m {
			g.placeAt(i)
			return
		}
	}
	panic(fmt.Sprintf("gomoku: illegal move %v", m))
}

func (g *GomokuState) PlayRandom(rng *rand.Rand) {
	g.placeAt(rng.Intn(len(g.empty)))
}

// placeAt plays the i-th frontier cell for the player to move.
func (g *GomokuState) placeAt(i int) {
	m := g.empty[i]
	last := len(g.empty) - 1
	g.empty[i] = g.empty[last]
	g.empty = g.empty[:last]
	g.cells[g.index(m.X, m.Y)] = Cell(g.player)
	g.lastX, g.lastY = m.X, m.Y
	g.player = g.player.Opponent()
}

// Result scores the finished game for p. Calling it while the game can
// still continue is a bug and panics.
func (g *GomokuState) Result(p Player) float64 {
	w := g.winner()
	if w == Empty {
		if len(g.empty) > 0 {
			panic("gomoku: result of an unfinished game")
		}
		return 0.5
	}
	if w == Cell(p) {
		return 1
	}
	return 0
}

func (g *GomokuState) Hash() uint64 {
	buf := make([]byte, len(g.cells)+1)
	for i, c := range g.cells {
		buf[i] = byte(c)
	}
	buf[len(g.cells)] = byte(g.player)
	return xxhash.Checksum64(buf)
}

func (g *GomokuState) Size() int {
	return g.size
}

func (g *GomokuState) CellAt(x, y int) Cell {
	return g.cells[g.index(x, y)]
}

// LastPlacement is the most recent stone, if any stone has been placed.
func (g *GomokuState) LastPlacement() (Placement, bool) {
	if g.lastX < 0 {
		return Placement{}, false
	}
	return Placement{X: g.lastX, Y: g.lastY}, true
}

// Winner reports who completed a line, if anyone has.
func (g *GomokuState) Winner() (Player, bool) {
	w := g.winner()
	if w == Empty {
		return 0, false
	}
	return Player(w), true
}

// Rows renders the board as one string per row, stones as 'X' and 'O'
// and free cells as '.'.
func (g *GomokuState) Rows() []string {
	rows := make([]string, g.size)
	var b strings.Builder
	for y := 0; y < g.size; y++ {
		b.Reset()
		for x := 0; x < g.size; x++ {
			b.WriteByte(cellMarks[g.cells[g.index(x, y)]])
		}
		rows[y] = b.String()
	}
	return rows
}

func (g *GomokuState) String() string {
	var b strings.Builder
	b.WriteString("\n  ")
	for x := 0; x < g.size; x++ {
		if x > 0 {
			b.WriteByte(' ')
		}
		b.WriteByte(labels[x])
	}
	b.WriteByte('\n')
	for y := 0; y < g.size; y++ {
		b.WriteByte(labels[y])
		b.WriteByte('|')
		for x := 0; x < g.size; x++ {
			if x > 0 {
				b.WriteByte(' ')
			}
			b.WriteByte(cellMarks[g.cells[g.index(x, y)]])
		}
		b.WriteString("|\n")
	}
	b.WriteString(" +")
	b.WriteString(strings.Repeat("-", 2*g.size-1))
	b.WriteString("+\n")
	b.WriteString(fmt.Sprintf("%c to move\n", cellMarks[g.player]))
	return b.String()
}

// winner checks only the lines through the last stone; earlier stones
// cannot have completed a line without being caught at their own turn.
func (g *GomokuState) winner() Cell {
	if g.lastX < 0 {
		return Empty
	}
	piece := g.cells[g.index(g.lastX, g.lastY)]
	for _, d := range lineDirections {
		run := 1 + g.countRun(piece, d[0], d[1]) + g.countRun(piece, -d[0], -d[1])
		if run >= winLength {
			return piece
		}
	}
	return Empty
}

func (g *GomokuState) countRun(piece Cell, dx, dy int) int {
	n := 0
	for x, y := g.lastX+dx, g.lastY+dy; x >= 0 && x < g.size && y >= 0 && y < g.size && g.cells[g.index(x, y)] == piece; x, y = x+dx, y+dy {
		n++
	}
	return n
}

func (g *GomokuState) index(x, y int) int {
	return y*g.size + x
}
