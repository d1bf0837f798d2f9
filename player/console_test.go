package player

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"gomoku/game"
)

// flatState is a non-gomoku State for exercising the console's type check.
type flatState struct{}

func (flatState) Clone() game.State          { return flatState{} }
func (flatState) Player() game.Player        { return game.Player1 }
func (flatState) LegalMoves() []game.Move    { return nil }
func (flatState) HasMoves() bool             { return false }
func (flatState) Play(game.Move)             {}
func (flatState) PlayRandom(*rand.Rand)      {}
func (flatState) Result(game.Player) float64 { return 0.5 }
func (flatState) Hash() uint64               { return 0 }

func TestConsoleNextMove(t *testing.T) {
	t.Run("a well-formed line becomes a placement", func(t *testing.T) {
		out := &bytes.Buffer{}
		p := NewConsole("ann", strings.NewReader("23\n"), out)

		move, _, err := p.NextMove(game.NewGomokuState(5))

		require.NoError(t, err)
		require.Equal(t, game.Placement{X: 3, Y: 2}, move)
		require.Contains(t, out.String(), "ann, your move")
		require.Contains(t, out.String(), "X to move")
	})

	t.Run("bad and taken squares are prompted again", func(t *testing.T) {
		board := game.NewGomokuState(5)
		board.Play(game.Placement{X: 0, Y: 0})
		out := &bytes.Buffer{}
		p := NewConsole("ann", strings.NewReader("zz\n00\n10\n"), out)

		move, _, err := p.NextMove(board)

		require.NoError(t, err)
		require.Equal(t, game.Placement{X: 0, Y: 1}, move)
		require.Contains(t, out.String(), "is taken")
		require.Equal(t, 3, strings.Count(out.String(), "your move"),
			"Each rejected line should prompt again")
	})

	t.Run("exhausted input is an error", func(t *testing.T) {
		p := NewConsole("ann", strings.NewReader(""), &bytes.Buffer{})

		_, _, err := p.NextMove(game.NewGomokuState(5))

		require.ErrorContains(t, err, "input ended")
	})

	t.Run("only gomoku boards are playable", func(t *testing.T) {
		p := NewConsole("ann", strings.NewReader("00\n"), &bytes.Buffer{})

		_, _, err := p.NextMove(flatState{})

		require.ErrorContains(t, err, "gomoku board")
	})
}
