package engine

import (
	"time"

	"gomoku/game"
	"gomoku/searcher"
)

// MaxMoves guards against runaway games between misbehaving players.
const MaxMoves = 10000

// Player takes turns in a match.
type Player interface {
	Name() string
	// NextMove picks a move for the side to move at state. Search-backed
	// players also report how their search went.
	NextMove(state game.State) (game.Move, searcher.SearchMetric, error)
}

// MoveRecord is one played move with the search behind it.
type MoveRecord struct {
	Step   int
	Player game.Player
	Move   game.Move
	Search searcher.SearchMetric
}

// Result describes a finished match.
type Result struct {
	Winner   game.Player // 0 on a draw
	Moves    int
	Duration time.Duration
	Records  []MoveRecord
}
