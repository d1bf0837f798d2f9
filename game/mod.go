package game

import (
	"fmt"

	"golang.org/x/exp/rand"
)

// Player identifies one of the two players. Play alternates strictly.
type Player int

const (
	Player1 Player = 1
	Player2 Player = 2
)

// Opponent returns the other player.
func (p Player) Opponent() Player {
	return 3 - p
}

func (p Player) String() string {
	return fmt.Sprintf("player %d", int(p))
}

// Move is one placement or action in a game. Implementations must be
// comparable values so moves can key aggregation maps; the nil Move is
// the "no move" sentinel.
type Move interface {
	fmt.Stringer
}

// State is the contract a game implements to be searchable. The searcher
// only ever sees positions through this interface.
//
// States are mutable: Play and PlayRandom modify the receiver and advance
// the player to move. Callers that need to branch must Clone first; clones
// share nothing with their origin.
type State interface {
	// Clone returns an independent deep copy.
	Clone() State
	// Player is the player whose turn it is.
	Player() Player
	// LegalMoves lists the legal moves, empty iff the game is over.
	LegalMoves() []Move
	// HasMoves reports whether the game can continue.
	HasMoves() bool
	// Play applies a legal move. Illegal moves panic.
	Play(move Move)
	// PlayRandom applies a uniformly random legal move.
	PlayRandom(rng *rand.Rand)
	// Result scores a finished game for p: 1 win, 0.5 draw, 0 loss.
	// Only valid once HasMoves reports false.
	Result(p Player) float64
	// Hash is a cheap fingerprint of the position and player to move.
	Hash() uint64
}
