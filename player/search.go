package player

import (
	"gomoku/game"
	"gomoku/searcher"
)

// Search plays moves picked by a Monte Carlo tree search.
type Search struct {
	name string
	mcts *searcher.MCTS
}

// NewSearch creates a player backed by the given search engine.
func NewSearch(name string, mcts *searcher.MCTS) *Search {
	return &Search{name: name, mcts: mcts}
}

func (p *Search) Name() string {
	return p.name
}

func (p *Search) NextMove(state game.State) (game.Move, searcher.SearchMetric, error) {
	return p.mcts.ComputeMove(state)
}
