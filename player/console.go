package player

import (
	"bufio"
	"fmt"
	"io"

	"gomoku/game"
	"gomoku/searcher"
)

// Console asks a human for moves, reading coordinates line by line.
type Console struct {
	name string
	in   *bufio.Scanner
	out  io.Writer
}

// NewConsole creates a player that prompts on out and reads moves from in.
func NewConsole(name string, in io.Reader, out io.Writer) *Console {
	return &Console{name: name, in: bufio.NewScanner(in), out: out}
}

func (p *Console) Name() string {
	return p.name
}

// NextMove prints the board and prompts until it reads a legal placement.
// It fails when the input ends or the state is not a gomoku board.
func (p *Console) NextMove(state game.State) (game.Move, searcher.SearchMetric, error) {
	board, ok := state.(*game.GomokuState)
	if !ok {
		return nil, searcher.SearchMetric{}, fmt.Errorf("player: console play needs a gomoku board, got %T", state)
	}

	fmt.Fprintf(p.out, "%v\n", board)
	for {
		fmt.Fprintf(p.out, "%s, your move (row then column, e.g. 23): ", p.name)
		if !p.in.Scan() {
			if err := p.in.Err(); err != nil {
				return nil, searcher.SearchMetric{}, fmt.Errorf("player: reading move: %w", err)
			}
			return nil, searcher.SearchMetric{}, fmt.Errorf("player: input ended before %s moved", p.name)
		}

		move, err := game.ParsePlacement(p.in.Text(), board.Size())
		if err != nil {
			fmt.Fprintf(p.out, "%v\n", err)
			continue
		}
		if board.CellAt(move.X, move.Y) != game.Empty {
			fmt.Fprintf(p.out, "%v is taken\n", move)
			continue
		}
		return move, searcher.SearchMetric{}, nil
	}
}
