package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"gomoku/config"
	"gomoku/engine"
	"gomoku/experiments"
	"gomoku/game"
	"gomoku/player"
	"gomoku/searcher"
	"gomoku/server"
)

const usage = `Usage: gomoku <command> [options]

Commands:
  play        play a game in the terminal, engine against you by default
  serve       serve the HTTP and websocket API
  experiment  run a self-play experiment and store CSV results

Run 'gomoku <command> -h' for the options of a command.
`

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("loading config")
	}

	var runErr error
	switch os.Args[1] {
	case "play":
		runErr = runPlay(cfg, os.Args[2:])
	case "serve":
		runErr = runServe(cfg, os.Args[2:])
	case "experiment":
		runErr = runExperiment(os.Args[2:])
	case "help", "-h", "--help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}

	if runErr != nil {
		if errors.Is(runErr, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatal().Err(runErr).Msg("command failed")
	}
}

func runPlay(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("play", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	size := fs.Int("size", cfg.BoardSize, "board size")
	goroutines := fs.Int("goroutines", cfg.Goroutines, "parallel search goroutines")
	iterations := fs.Int("iterations", cfg.Iterations, "playouts per goroutine, 0 for no cap")
	maxTime := fs.Duration("max-time", cfg.MaxTime(), "search time per move, 0 for no cap")
	verbose := fs.Bool("verbose", cfg.Verbose, "log search statistics")
	human := fs.Bool("human", true, "play the white stones yourself; the engine plays black")
	name := fs.String("name", "you", "name to prompt the human with")
	ai2Iterations := fs.Int("ai2-iterations", 100, "playouts for the second engine with -human=false")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	if *size < game.MinBoardSize || *size > game.MaxBoardSize {
		return fmt.Errorf("board size must be between %d and %d", game.MinBoardSize, game.MaxBoardSize)
	}

	mcts, err := buildSearcher(*goroutines, *iterations, *maxTime, *verbose)
	if err != nil {
		return err
	}
	first := player.NewSearch("engine", mcts)

	var second engine.Player
	if *human {
		second = player.NewConsole(*name, os.Stdin, os.Stdout)
	} else {
		mcts2, err := buildSearcher(*goroutines, *ai2Iterations, 0, *verbose)
		if err != nil {
			return err
		}
		second = player.NewSearch("engine2", mcts2)
	}

	l := engine.NewLocal(game.NewGomokuState(*size), first, second)
	result, err := l.Run()
	if err != nil {
		return err
	}

	fmt.Printf("\nFinal state:\n%v\n", l.State())
	switch result.Winner {
	case game.Player1:
		fmt.Println("Player 1 wins!")
	case game.Player2:
		fmt.Println("Player 2 wins!")
	default:
		fmt.Println("Draw!")
	}
	return nil
}

func runServe(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	listen := fs.String("listen", cfg.ListenAddr, "listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	serveCfg := *cfg
	serveCfg.ListenAddr = *listen
	s, err := server.New(&serveCfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}

func runExperiment(args []string) error {
	fs := flag.NewFlagSet("experiment", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	name := fs.String("name", "throughput", "experiment to run: throughput or strength")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch *name {
	case "throughput":
		return experiments.RunThroughputExperiment()
	case "strength":
		return experiments.RunStrengthExperiment()
	default:
		return fmt.Errorf("unknown experiment %q", *name)
	}
}

func buildSearcher(goroutines, iterations int, maxTime time.Duration, verbose bool) (*searcher.MCTS, error) {
	options := []searcher.Option{searcher.WithMetrics()}
	if iterations > 0 {
		options = append(options, searcher.WithIterations(iterations))
	}
	if maxTime > 0 {
		options = append(options, searcher.WithDuration(maxTime))
	}
	if verbose {
		options = append(options, searcher.WithVerbose())
	}
	return searcher.New(goroutines, options...)
}
