package searcher

import (
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"gomoku/game"
)

// MCTS searches positions with UCT and root parallelism: every goroutine
// grows an independent tree from its own copy of the root position, and
// the move is chosen on the merged statistics of all root children.
type MCTS struct {
	goroutines int
	iterations int
	duration   time.Duration
	verbose    bool
	metrics    Collector
}

type Option func(*MCTS)

// WithIterations caps the number of playouts per goroutine.
func WithIterations(iterations int) Option {
	return func(m *MCTS) {
		if iterations > 0 {
			m.iterations = iterations
		}
	}
}

// WithDuration caps the wall-clock search time per goroutine. The budget
// is checked once per completed playout, so a search always finishes the
// playout it is in.
func WithDuration(duration time.Duration) Option {
	return func(m *MCTS) {
		if duration > 0 {
			m.duration = duration
		}
	}
}

// WithVerbose logs candidate statistics and throughput for every search.
func WithVerbose() Option {
	return func(m *MCTS) {
		m.verbose = true
	}
}

// WithMetrics records search statistics for the caller.
func WithMetrics() Option {
	return func(m *MCTS) {
		m.metrics = NewCollector()
	}
}

// New configures a search. At least one of WithIterations and
// WithDuration must be given: an unbounded search is a configuration
// error, refused before any work starts.
func New(goroutines int, options ...Option) (*MCTS, error) {
	m := &MCTS{
		goroutines: goroutines,
		metrics:    NewDummyCollector(),
	}
	for _, option := range options {
		option(m)
	}
	if m.goroutines < 1 {
		return nil, fmt.Errorf("searcher: need at least one goroutine, got %d", m.goroutines)
	}
	if m.iterations <= 0 && m.duration <= 0 {
		return nil, errors.New("searcher: an iteration or duration budget is required")
	}
	return m, nil
}

// ComputeMove searches state and returns the strongest move found. A nil
// move with a nil error means the game is already over at state. When the
// position has exactly one legal move it is returned without searching.
func (m *MCTS) ComputeMove(state game.State) (game.Move, SearchMetric, error) {
	moves := state.LegalMoves()
	if len(moves) == 0 {
		return nil, SearchMetric{}, nil
	}
	if len(moves) == 1 {
		return moves[0], SearchMetric{}, nil
	}

	m.metrics.Start(m.goroutines)
	start := time.Now()

	// One seed per search, shared by every worker: under a pure iteration
	// budget the trees are identical and merging only sharpens the
	// estimate, while time-limited workers drift apart as scheduling
	// varies their playout counts.
	seed := drawSeed()

	workers := *m
	workers.verbose = false

	roots := make([]*node, m.goroutines)
	errs := make([]error, m.goroutines)
	var wg sync.WaitGroup
	for i := 0; i < m.goroutines; i++ {
		root := state.Clone()
		wg.Add(1)
		go func(i int, root game.State) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					errs[i] = fmt.Errorf("searcher: worker %d: %v", i, r)
				}
			}()
			roots[i] = workers.buildTree(root, seed)
		}(i, root)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, SearchMetric{}, err
		}
	}

	stats, games := mergeRoots(roots)
	best := bestMove(stats)
	metric := m.metrics.Complete()

	if m.verbose {
		for _, s := range stats {
			log.Info().Msgf("move %v: %2.0f%% visits, %2.0f%% wins",
				s.move, 100*float64(s.visits)/float64(games), 100*s.wins/float64(s.visits))
		}
		elapsed := time.Since(start).Seconds()
		log.Info().Msgf("best %v: %.1f%% visits, %.1f%% wins",
			best.move, 100*float64(best.visits)/float64(games), 100*best.wins/float64(best.visits))
		log.Info().Msgf("%d games played in %.2f s (%.0f / second, %d goroutines)",
			games, elapsed, float64(games)/elapsed, m.goroutines)
	}

	return best.move, metric, nil
}

// buildTree grows one tree below state until a budget runs out. Each
// playout selects by UCT down to the frontier, expands one untried move,
// finishes the game uniformly at random, and backs the result up the
// path, scoring every node from its own stored perspective.
func (m *MCTS) buildTree(state game.State, seed uint64) *node {
	rng := rand.New(rand.NewSource(seed))
	root := newRoot(state)

	start := time.Now()
	lastReport := start
	for iteration := 1; m.iterations <= 0 || iteration <= m.iterations; iteration++ {
		current := root
		working := state.Clone()

		for !current.hasUntried() && current.hasChildren() {
			current = current.selectChild()
			working.Play(current.move)
		}

		if current.hasUntried() {
			move := current.untriedMove(rng)
			working.Play(move)
			current = current.addChild(move, working)
		}

		for working.HasMoves() {
			working.PlayRandom(rng)
		}
		m.metrics.AddPlayout()

		for n := current; n != nil; n = n.parent {
			n.update(working.Result(n.player))
		}

		if m.verbose {
			now := time.Now()
			if now.Sub(lastReport) >= time.Second || iteration == m.iterations {
				if secs := now.Sub(start).Seconds(); secs > 0 {
					log.Info().Msgf("%d games played (%.0f / second)", iteration, float64(iteration)/secs)
				}
				lastReport = now
			}
		}
		if m.duration > 0 && time.Since(start) >= m.duration {
			break
		}
	}

	if m.verbose {
		if best := root.bestChild(); best != nil {
			log.Debug().Msgf("deepest line starts at %v: %d/%d", best.move, int(best.wins), best.visits)
		}
	}
	return root
}

// moveStats aggregates one move's outcomes across every worker tree.
type moveStats struct {
	move   game.Move
	visits int
	wins   float64
}

// mergeRoots sums the direct children of all roots per move, in
// first-seen order, along with the total games played in all trees.
func mergeRoots(roots []*node) ([]*moveStats, int) {
	index := make(map[game.Move]*moveStats)
	var merged []*moveStats
	games := 0
	for _, root := range roots {
		games += root.visits
		for _, child := range root.children {
			s := index[child.move]
			if s == nil {
				s = &moveStats{move: child.move}
				index[child.move] = s
				merged = append(merged, s)
			}
			s.visits += child.visits
			s.wins += child.wins
		}
	}
	return merged, games
}

// bestMove picks the merged move with the highest expected success rate
// under a uniform Beta(1, 1) prior, so a lightly visited move cannot win
// on a lucky streak. Strict comparison keeps the first-seen move on ties,
// making the choice deterministic for fixed statistics.
func bestMove(stats []*moveStats) *moveStats {
	if len(stats) == 0 {
		panic("searcher: selecting a move from no statistics")
	}
	var best *moveStats
	bestScore := -1.0
	for _, s := range stats {
		score := (s.wins + 1) / (float64(s.visits) + 2)
		if score > bestScore {
			best = s
			bestScore = score
		}
	}
	return best
}

// drawSeed asks the operating system for a fresh seed.
func drawSeed() uint64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return uint64(time.Now().UnixNano())
	}
	return binary.LittleEndian.Uint64(b[:])
}
