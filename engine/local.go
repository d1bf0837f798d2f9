package engine

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"gomoku/game"
)

// Local plays a match between two players on one machine, advancing the
// given state in place until the game ends.
type Local struct {
	state   game.State
	players map[game.Player]Player
}

// NewLocal pairs two players on state: first moves as player 1, second
// as player 2, whoever's turn the state says it is.
func NewLocal(state game.State, first, second Player) *Local {
	return &Local{
		state: state,
		players: map[game.Player]Player{
			game.Player1: first,
			game.Player2: second,
		},
	}
}

// State exposes the match position, final once Run has returned.
func (l *Local) State() game.State {
	return l.state
}

// Run plays the game to its end and reports the outcome. Players see
// clones of the position, so only the engine advances the real one.
func (l *Local) Run() (Result, error) {
	start := time.Now()
	var records []MoveRecord

	step := 1
	for ; l.state.HasMoves(); step++ {
		if step > MaxMoves {
			return Result{}, fmt.Errorf("engine: no winner after %d moves", MaxMoves)
		}
		mover := l.state.Player()
		p := l.players[mover]

		move, metric, err := p.NextMove(l.state.Clone())
		if err != nil {
			return Result{}, fmt.Errorf("engine: %s: %w", p.Name(), err)
		}
		if move == nil {
			return Result{}, fmt.Errorf("engine: %s passed on a live position", p.Name())
		}

		l.state.Play(move)
		log.Debug().Msgf("%s (%s) plays %v", p.Name(), mover, move)
		records = append(records, MoveRecord{Step: step, Player: mover, Move: move, Search: metric})
	}

	result := Result{
		Winner:   winnerOf(l.state),
		Moves:    step - 1,
		Duration: time.Since(start),
		Records:  records,
	}
	if result.Winner == 0 {
		log.Info().Msgf("game over: draw after %d moves", result.Moves)
	} else {
		log.Info().Msgf("game over: %s (%s) wins after %d moves",
			l.players[result.Winner].Name(), result.Winner, result.Moves)
	}
	return result, nil
}

// winnerOf reads the terminal scores back into a player.
func winnerOf(state game.State) game.Player {
	switch {
	case state.Result(game.Player1) == 1:
		return game.Player1
	case state.Result(game.Player2) == 1:
		return game.Player2
	}
	return 0
}
