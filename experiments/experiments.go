package experiments

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"gomoku/engine"
	"gomoku/experiments/metrics"
	"gomoku/game"
	"gomoku/player"
	"gomoku/searcher"
)

const (
	NumGames   = 10 // Per matchup
	BoardSize  = 9
	TimeBudget = 100 * time.Millisecond
)

var parallelConfigs = []metrics.AgentConfig{
	{ID: 1, Goroutines: 1, Duration: TimeBudget},
	{ID: 2, Goroutines: 2, Duration: TimeBudget},
	{ID: 3, Goroutines: 4, Duration: TimeBudget},
	{ID: 4, Goroutines: 8, Duration: TimeBudget},
	{ID: 5, Goroutines: 16, Duration: TimeBudget},
	{ID: 6, Goroutines: 32, Duration: TimeBudget},
}

// RunThroughputExperiment measures how playout throughput scales with
// goroutines. Each matchup uses the same config for both players for the
// same playing strength and similar game length.
func RunThroughputExperiment() error {
	matchUps := [][]metrics.AgentConfig{}
	for _, config := range parallelConfigs {
		matchUps = append(matchUps, []metrics.AgentConfig{config, config})
	}

	return runExperiment("parallelization_to_throughput", parallelConfigs, matchUps)
}

// RunStrengthExperiment pairs every parallel config against the
// sequential baseline.
func RunStrengthExperiment() error {
	baseline := metrics.AgentConfig{ID: 0, Goroutines: 1, Duration: TimeBudget}
	matchUps := [][]metrics.AgentConfig{}
	for _, config := range parallelConfigs {
		matchUps = append(matchUps, []metrics.AgentConfig{baseline, config})
	}

	return runExperiment("parallelization_to_strength", append(parallelConfigs, baseline), matchUps)
}

func runExperiment(name string, configs []metrics.AgentConfig, matchUps [][]metrics.AgentConfig) error {
	count := 0
	gameRecords := []metrics.GameRecord{}
	moveRecords := []metrics.MoveRecord{}

	log.Info().Msgf("starting %s experiment...", name)

	for mi, matchup := range matchUps {
		config1 := matchup[0]
		config2 := matchup[1]

		log.Info().Msgf("starting matchup %d of %d between agent1=%+v and agent2=%+v...", mi+1, len(matchUps), config1, config2)

		for i := 0; i < NumGames; i++ {
			result, err := runGame(config1, config2)
			if err != nil {
				return fmt.Errorf("matchup %d game %d: %w", mi+1, i+1, err)
			}
			count++
			gameRecords = append(gameRecords, metrics.GameRecord{
				ID:       count,
				Agent1:   config1.ID,
				Agent2:   config2.ID,
				Winner:   int(result.Winner),
				Moves:    result.Moves,
				Duration: result.Duration,
			})
			for _, record := range result.Records {
				moveRecords = append(moveRecords, metrics.MoveRecord{
					Game:      count,
					Step:      record.Step,
					Player:    int(record.Player),
					Move:      fmt.Sprintf("%v", record.Move),
					Duration:  record.Search.Duration,
					Playouts:  record.Search.Playouts,
					PerSecond: record.Search.PerSecond(),
				})
			}

			log.Info().Msgf("completed matchup %d of %d game %d of %d with winner: %d", mi+1, len(matchUps), i+1, NumGames, result.Winner)
		}
		log.Info().Msgf("completed matchup %d of %d", mi+1, len(matchUps))
	}

	log.Info().Msgf("completed %s experiment", name)

	return storeResults(name, configs, gameRecords, moveRecords)
}

func storeResults(name string, configs []metrics.AgentConfig, gameRecords []metrics.GameRecord, moveRecords []metrics.MoveRecord) error {
	writer, err := metrics.NewWriter(name)
	if err != nil {
		return fmt.Errorf("failed to create experiment writer: %w", err)
	}

	if err := writer.WriteAgentConfigs(configs); err != nil {
		return fmt.Errorf("failed to store agent configs: %w", err)
	}
	log.Info().Msg("stored agent configs")

	if err := writer.WriteGameRecords(gameRecords); err != nil {
		return fmt.Errorf("failed to write game records: %w", err)
	}
	log.Info().Msg("stored game records")

	if err := writer.WriteMoveRecords(moveRecords); err != nil {
		return fmt.Errorf("failed to write move records: %w", err)
	}
	log.Info().Msgf("stored move records under %s", writer.Dir())

	return nil
}

// runGame executes a single game between two search agents.
func runGame(config1, config2 metrics.AgentConfig) (engine.Result, error) {
	first, err := newAgent("agent1", config1)
	if err != nil {
		return engine.Result{}, err
	}
	second, err := newAgent("agent2", config2)
	if err != nil {
		return engine.Result{}, err
	}

	l := engine.NewLocal(game.NewGomokuState(BoardSize), first, second)
	return l.Run()
}

func newAgent(name string, config metrics.AgentConfig) (*player.Search, error) {
	options := []searcher.Option{searcher.WithMetrics()}
	if config.Iterations > 0 {
		options = append(options, searcher.WithIterations(config.Iterations))
	}
	if config.Duration > 0 {
		options = append(options, searcher.WithDuration(config.Duration))
	}

	mcts, err := searcher.New(config.Goroutines, options...)
	if err != nil {
		return nil, err
	}
	return player.NewSearch(name, mcts), nil
}
