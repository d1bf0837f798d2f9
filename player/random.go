package player

import (
	"golang.org/x/exp/rand"

	"gomoku/game"
	"gomoku/searcher"
)

// Random plays uniformly random legal moves. It serves as a baseline
// opponent in experiments.
type Random struct {
	name string
	rng  *rand.Rand
}

// NewRandom creates a random player seeded for reproducible games.
func NewRandom(name string, seed uint64) *Random {
	return &Random{name: name, rng: rand.New(rand.NewSource(seed))}
}

func (p *Random) Name() string {
	return p.name
}

func (p *Random) NextMove(state game.State) (game.Move, searcher.SearchMetric, error) {
	moves := state.LegalMoves()
	if len(moves) == 0 {
		return nil, searcher.SearchMetric{}, nil
	}
	return moves[p.rng.Intn(len(moves))], searcher.SearchMetric{}, nil
}
