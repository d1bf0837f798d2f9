package searcher

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"golang.org/x/exp/slices"

	"gomoku/game"
)

// node is one position in a search tree. Statistics accumulate from the
// perspective of the player who made the move into the node, so a node's
// win rate tells its parent how good that move is for the side choosing it.
// Trees are private to one goroutine and need no locking.
type node struct {
	move     game.Move // nil at the root
	parent   *node
	player   game.Player
	wins     float64
	visits   int
	untried  []game.Move
	children []*node
}

// newRoot starts a tree at state. The root's perspective belongs to the
// opponent of the side to move, the same convention every child follows.
func newRoot(state game.State) *node {
	return &node{
		player:  state.Player().Opponent(),
		untried: state.LegalMoves(),
	}
}

func (n *node) hasUntried() bool {
	return len(n.untried) > 0
}

func (n *node) hasChildren() bool {
	return len(n.children) > 0
}

// untriedMove picks an untried move uniformly at random. The move stays
// on the frontier until addChild expands it.
func (n *node) untriedMove(rng *rand.Rand) game.Move {
	return n.untried[rng.Intn(len(n.untried))]
}

// selectChild applies the UCT rule: exploit the child's win rate, explore
// children visited rarely relative to the parent. Ties keep the earliest
// child, so selection is deterministic.
func (n *node) selectChild() *node {
	var best *node
	bestScore := math.Inf(-1)
	for _, child := range n.children {
		if child.visits == 0 {
			panic("searcher: selecting among unvisited children")
		}
		score := child.wins/float64(child.visits) +
			math.Sqrt(2*math.Log(float64(n.visits))/float64(child.visits))
		if score > bestScore {
			best = child
			bestScore = score
		}
	}
	return best
}

// addChild expands move, which must be on the untried frontier: the move
// leaves the frontier and a child built from state, the position after
// the move, joins the children in insertion order.
func (n *node) addChild(move game.Move, state game.State) *node {
	i := slices.Index(n.untried, move)
	if i < 0 {
		panic(fmt.Sprintf("searcher: expanding %v: not an untried move", move))
	}
	n.untried = append(n.untried[:i], n.untried[i+1:]...)
	child := &node{
		move:    move,
		parent:  n,
		player:  state.Player().Opponent(),
		untried: state.LegalMoves(),
	}
	n.children = append(n.children, child)
	return child
}

// update records one playout outcome seen from this node's perspective.
func (n *node) update(result float64) {
	n.visits++
	n.wins += result
}

// bestChild is the most visited child, first one on ties. Diagnostics
// only: move selection happens on statistics merged across trees.
func (n *node) bestChild() *node {
	var best *node
	for _, child := range n.children {
		if best == nil || child.visits > best.visits {
			best = child
		}
	}
	return best
}
