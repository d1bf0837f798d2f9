package game

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

// play applies placements in order, alternating players from Player1.
func play(t *testing.T, g *GomokuState, placements ...Placement) {
	t.Helper()
	for _, p := range placements {
		g.Play(p)
	}
}

// playPattern fills a board from row strings of 'X', 'O' and '.'. Stones
// are interleaved X first, so the position is reachable by legal play as
// long as X has one stone more than or as many stones as O.
func playPattern(t *testing.T, rows []string) *GomokuState {
	t.Helper()
	g := NewGomokuState(len(rows))
	var xs, os []Placement
	for y, row := range rows {
		for x := 0; x < len(row); x++ {
			switch row[x] {
			case 'X':
				xs = append(xs, Placement{X: x, Y: y})
			case 'O':
				os = append(os, Placement{X: x, Y: y})
			}
		}
	}
	require.True(t, len(xs) == len(os) || len(xs) == len(os)+1,
		"Pattern must be reachable by alternating play")
	for i := range xs {
		g.Play(xs[i])
		if i < len(os) {
			g.Play(os[i])
		}
	}
	return g
}

func TestNewGomokuState(t *testing.T) {
	t.Run("an empty board belongs to player 1", func(t *testing.T) {
		g := NewGomokuState(7)

		require.Equal(t, Player1, g.Player())
		require.Equal(t, 7, g.Size())
		require.Len(t, g.LegalMoves(), 49, "Every cell starts legal")
		require.True(t, g.HasMoves())
		_, placed := g.LastPlacement()
		require.False(t, placed)
	})

	t.Run("sizes outside the label range panic", func(t *testing.T) {
		require.Panics(t, func() { NewGomokuState(MinBoardSize - 1) })
		require.Panics(t, func() { NewGomokuState(MaxBoardSize + 1) })
	})
}

func TestPlay(t *testing.T) {
	t.Run("a placement claims the cell and passes the turn", func(t *testing.T) {
		g := NewGomokuState(7)

		g.Play(Placement{X: 3, Y: 2})

		require.Equal(t, Black, g.CellAt(3, 2))
		require.Equal(t, Player2, g.Player())
		require.Len(t, g.LegalMoves(), 48, "A played cell leaves the frontier")
		last, placed := g.LastPlacement()
		require.True(t, placed)
		require.Equal(t, Placement{X: 3, Y: 2}, last)
	})

	t.Run("an occupied cell is illegal", func(t *testing.T) {
		g := NewGomokuState(7)
		g.Play(Placement{X: 3, Y: 2})

		require.Panics(t, func() { g.Play(Placement{X: 3, Y: 2}) })
	})

	t.Run("a placement off the board is illegal", func(t *testing.T) {
		g := NewGomokuState(7)

		require.Panics(t, func() { g.Play(Placement{X: 7, Y: 0}) })
		require.Panics(t, func() { g.Play(Placement{X: -1, Y: 3}) })
	})
}

func TestWinDetection(t *testing.T) {
	lines := map[string][]Placement{
		"five in a row": {
			{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 0},
			{X: 2, Y: 1}, {X: 3, Y: 0}, {X: 3, Y: 1}, {X: 4, Y: 0},
		},
		"five in a column": {
			{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 0, Y: 2},
			{X: 1, Y: 2}, {X: 0, Y: 3}, {X: 1, Y: 3}, {X: 0, Y: 4},
		},
		"five in a diagonal": {
			{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 0}, {X: 2, Y: 2},
			{X: 3, Y: 0}, {X: 3, Y: 3}, {X: 4, Y: 0}, {X: 4, Y: 4},
		},
		"five in an antidiagonal": {
			{X: 4, Y: 0}, {X: 0, Y: 0}, {X: 3, Y: 1}, {X: 1, Y: 0}, {X: 2, Y: 2},
			{X: 2, Y: 0}, {X: 1, Y: 3}, {X: 3, Y: 0}, {X: 0, Y: 4},
		},
	}
	for name, placements := range lines {
		t.Run(name+" ends the game for the winner", func(t *testing.T) {
			g := NewGomokuState(5)
			play(t, g, placements...)

			winner, won := g.Winner()
			require.True(t, won)
			require.Equal(t, Player1, winner)
			require.False(t, g.HasMoves(), "A won game has no moves left")
			require.Nil(t, g.LegalMoves())
			require.Equal(t, 1.0, g.Result(Player1))
			require.Equal(t, 0.0, g.Result(Player2))
		})
	}

	t.Run("a line longer than five still wins", func(t *testing.T) {
		g := NewGomokuState(7)
		play(t, g, []Placement{
			{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 0}, {X: 1, Y: 1},
			{X: 2, Y: 0}, {X: 2, Y: 1}, {X: 4, Y: 0}, {X: 4, Y: 1},
			{X: 5, Y: 0}, {X: 5, Y: 1}, {X: 3, Y: 0},
		}...)

		winner, won := g.Winner()
		require.True(t, won, "Filling the gap makes six in a row")
		require.Equal(t, Player1, winner)
	})

	t.Run("four in a row is not enough", func(t *testing.T) {
		g := NewGomokuState(5)
		play(t, g, []Placement{
			{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 0}, {X: 1, Y: 1},
			{X: 2, Y: 0}, {X: 2, Y: 1}, {X: 3, Y: 0},
		}...)

		_, won := g.Winner()
		require.False(t, won)
		require.True(t, g.HasMoves())
	})
}

func TestDraw(t *testing.T) {
	t.Run("a full board without a line is a draw", func(t *testing.T) {
		g := playPattern(t, []string{
			"XXOOX",
			"OOXXO",
			"XXOOX",
			"OOXXO",
			"XXOOX",
		})

		require.False(t, g.HasMoves())
		_, won := g.Winner()
		require.False(t, won)
		require.Equal(t, 0.5, g.Result(Player1), "A draw scores half for both sides")
		require.Equal(t, 0.5, g.Result(Player2))
	})

	t.Run("scoring an unfinished game is a contract violation", func(t *testing.T) {
		g := NewGomokuState(5)
		g.Play(Placement{X: 2, Y: 2})

		require.Panics(t, func() { g.Result(Player1) })
	})
}

func TestClone(t *testing.T) {
	t.Run("clones diverge without touching the original", func(t *testing.T) {
		g := NewGomokuState(7)
		g.Play(Placement{X: 1, Y: 1})
		before := g.Hash()

		c := g.Clone()
		c.Play(Placement{X: 2, Y: 2})

		require.Equal(t, before, g.Hash(), "Playing on a clone must not change the original")
		require.Equal(t, Empty, g.CellAt(2, 2))
		require.Len(t, g.LegalMoves(), 48)
		require.Len(t, c.LegalMoves(), 47)
	})
}

func TestHash(t *testing.T) {
	t.Run("the hash follows the position", func(t *testing.T) {
		g := NewGomokuState(7)
		c := g.Clone()
		require.Equal(t, g.Hash(), c.Hash(), "Equal positions hash equally")

		c.Play(Placement{X: 0, Y: 0})
		require.NotEqual(t, g.Hash(), c.Hash(), "A stone changes the hash")
	})
}

func TestPlayRandom(t *testing.T) {
	t.Run("random playouts shrink the frontier one cell at a time", func(t *testing.T) {
		g := NewGomokuState(7)
		rng := rand.New(rand.NewSource(3))

		for i := 1; i <= 5; i++ {
			g.PlayRandom(rng)
			require.Len(t, g.LegalMoves(), 49-i)
		}
	})

	t.Run("the same seed replays the same game", func(t *testing.T) {
		a := NewGomokuState(7)
		b := NewGomokuState(7)
		rngA := rand.New(rand.NewSource(11))
		rngB := rand.New(rand.NewSource(11))

		for i := 0; i < 10; i++ {
			a.PlayRandom(rngA)
			b.PlayRandom(rngB)
		}

		require.Equal(t, a.Hash(), b.Hash())
	})
}

func TestParsePlacement(t *testing.T) {
	t.Run("row label then column label", func(t *testing.T) {
		m, err := ParsePlacement("00", 15)
		require.NoError(t, err)
		require.Equal(t, Placement{X: 0, Y: 0}, m)

		m, err = ParsePlacement("3B", 15)
		require.NoError(t, err)
		require.Equal(t, Placement{X: 11, Y: 3}, m)

		m, err = ParsePlacement(" a0 ", 15)
		require.NoError(t, err)
		require.Equal(t, Placement{X: 0, Y: 10}, m, "Lowercase and padding are fine")
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		for _, input := range []string{"", "5", "123", "zz", "5!"} {
			_, err := ParsePlacement(input, 15)
			require.Error(t, err, "input %q", input)
		}
	})

	t.Run("labels beyond the board are rejected", func(t *testing.T) {
		_, err := ParsePlacement("05", 5)
		require.Error(t, err, "Column 5 does not exist on a 5x5 board")
	})
}

func TestString(t *testing.T) {
	t.Run("the board renders with labels and the side to move", func(t *testing.T) {
		g := NewGomokuState(5)
		g.Play(Placement{X: 2, Y: 0})

		s := g.String()

		require.Contains(t, s, "  0 1 2 3 4")
		require.Contains(t, s, "0|. . X . .|")
		require.Contains(t, s, "O to move")
		require.Equal(t, []string{"..X..", ".....", ".....", ".....", "....."}, g.Rows())
	})
}
