package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"ai2048/communication/server"
	"ai2048/config"
	"ai2048/engine"
	"ai2048/experiments"
	"ai2048/fitness"
	"ai2048/game"
	"ai2048/gamemaster"
	"ai2048/genetic"
	"ai2048/searcher"
	"ai2048/store"
	"ai2048/trainer"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const usage = `usage: ai2048 <command> [flags]

commands:
  train   evolve heuristic weights by playing simulated games
  live    evolve on live boards and serve them over HTTP
  play    play one game and print the final board
  serve   serve an interactive board over HTTP
  bench   compare fitness evaluation throughput across worker counts`

// options are the flags shared by every command. Flags left unset keep the
// value from the config file.
type options struct {
	fs          *flag.FlagSet
	configPath  string
	logLevel    string
	population  string
	size        int
	generations int
	games       int
	maxMoves    int
	workers     int
	seed        uint64
	boardSize   int
	addr        string
	history     string
	metricsDir  string
}

func newOptions(name string) *options {
	o := &options{fs: flag.NewFlagSet(name, flag.ExitOnError)}
	o.fs.StringVar(&o.configPath, "config", "", "TOML config file")
	o.fs.StringVar(&o.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	o.fs.StringVar(&o.population, "population", "", "population file")
	o.fs.IntVar(&o.size, "size", 0, "population size")
	o.fs.IntVar(&o.generations, "generations", 0, "generations to run, 0 runs until interrupted")
	o.fs.IntVar(&o.games, "games", 0, "games per evaluation")
	o.fs.IntVar(&o.maxMoves, "max-moves", 0, "move cap per game")
	o.fs.IntVar(&o.workers, "workers", 0, "worker goroutines, 0 uses every CPU")
	o.fs.Uint64Var(&o.seed, "seed", 0, "run seed, 0 derives one from the clock")
	o.fs.IntVar(&o.boardSize, "board", 0, "board size")
	o.fs.StringVar(&o.addr, "addr", "", "HTTP listen address")
	o.fs.StringVar(&o.history, "history", "", "generation history backend (none, memory, sqlite)")
	o.fs.StringVar(&o.metricsDir, "metrics-dir", "", "directory for run artifacts")
	return o
}

// load parses args, sets up logging and returns the validated config.
func (o *options) load(args []string) (config.Config, error) {
	if err := o.fs.Parse(args); err != nil {
		return config.Config{}, err
	}
	if err := setupLogging(o.logLevel); err != nil {
		return config.Config{}, err
	}

	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return config.Config{}, err
		}
	}
	o.apply(&cfg)
	if cfg.Training.Seed == 0 {
		cfg.Training.Seed = uint64(time.Now().UnixNano())
		log.Info().Msgf("using seed %d", cfg.Training.Seed)
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (o *options) apply(cfg *config.Config) {
	o.fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "population":
			cfg.Training.PopulationFile = o.population
		case "size":
			cfg.Training.PopulationSize = o.size
		case "generations":
			cfg.Training.Generations = o.generations
		case "games":
			cfg.Training.GamesPerIndividual = o.games
		case "max-moves":
			cfg.Training.MaxMoves = o.maxMoves
		case "workers":
			cfg.Training.Workers = o.workers
		case "seed":
			cfg.Training.Seed = o.seed
		case "board":
			cfg.Training.BoardSize = o.boardSize
		case "addr":
			cfg.Server.Addr = o.addr
		case "history":
			cfg.History.Kind = o.history
		case "metrics-dir":
			cfg.Metrics.Dir = o.metricsDir
		}
	})
}

func (o *options) isSet(name string) bool {
	set := false
	o.fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func setupLogging(level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	return nil
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd, args := os.Args[1], os.Args[2:]
	var err error
	switch cmd {
	case "train":
		err = runTrain(ctx, args)
	case "live":
		err = runLive(ctx, args)
	case "play":
		err = runPlay(args)
	case "serve":
		err = runServe(ctx, args)
	case "bench":
		err = runBench(args)
	case "help", "-h", "--help":
		fmt.Println(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s\n", cmd, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatal().Err(err).Msgf("%s failed", cmd)
	}
}

func newHarness(t config.Training) *fitness.Harness {
	return fitness.NewHarness(
		fitness.WithGames(t.GamesPerIndividual),
		fitness.WithMaxMoves(t.MaxMoves),
		fitness.WithWorkers(t.Workers),
		fitness.WithBoardSize(t.BoardSize),
		fitness.WithSeed(t.Seed),
	)
}

func openHistory(ctx context.Context, cfg config.History) (store.History, error) {
	h, err := store.NewHistory(cfg.Kind, cfg.Path)
	if err != nil {
		return nil, err
	}
	if err := h.Init(ctx); err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	return h, nil
}

func runTrain(ctx context.Context, args []string) error {
	cfg, err := newOptions("train").load(args)
	if err != nil {
		return err
	}
	history, err := openHistory(ctx, cfg.History)
	if err != nil {
		return err
	}
	defer history.Close()

	controller := trainer.NewTrainingController(cfg.Training, newHarness(cfg.Training), genetic.NewOptimizer(cfg.Training.Seed),
		trainer.WithHistory(history), trainer.WithArtifacts(cfg.Metrics.Dir, cfg.Metrics.Plot))
	return controller.Run(ctx)
}

func runLive(ctx context.Context, args []string) error {
	cfg, err := newOptions("live").load(args)
	if err != nil {
		return err
	}
	history, err := openHistory(ctx, cfg.History)
	if err != nil {
		return err
	}
	defer history.Close()

	controller := trainer.NewLiveController(cfg.Training, cfg.Live, genetic.NewOptimizer(cfg.Training.Seed),
		trainer.WithHistory(history), trainer.WithArtifacts(cfg.Metrics.Dir, cfg.Metrics.Plot))
	runner := trainer.NewRunner(controller)
	if err := runner.Start(ctx); err != nil {
		return err
	}

	session := gamemaster.NewSession(cfg.Training.BoardSize, cfg.Training.Seed)
	srv := server.NewServer(session, server.WithPopulation(controller), server.WithStreamInterval(cfg.Live.StepInterval.Duration))
	serveErr := srv.ListenAndServe(ctx, cfg.Server.Addr)
	return errors.Join(serveErr, runner.Stop())
}

func runServe(ctx context.Context, args []string) error {
	cfg, err := newOptions("serve").load(args)
	if err != nil {
		return err
	}
	session := gamemaster.NewSession(cfg.Training.BoardSize, cfg.Training.Seed)
	return server.NewServer(session).ListenAndServe(ctx, cfg.Server.Addr)
}

func runPlay(args []string) error {
	o := newOptions("play")
	weights := o.fs.String("weights", "", "comma separated weights: empty,monotonic,smooth,corner_max,merge")
	random := o.fs.Bool("random", false, "play uniformly random legal moves")
	cfg, err := o.load(args)
	if err != nil {
		return err
	}

	w := game.DefaultWeights
	if *weights != "" {
		if w, err = parseWeights(*weights); err != nil {
			return err
		}
	}
	var strategy searcher.Strategy = searcher.NewGreedy(w)
	if *random {
		strategy = searcher.NewRandom(cfg.Training.Seed)
	}

	board := game.NewBoard(cfg.Training.BoardSize, cfg.Training.Seed)
	result := engine.New(board, strategy, cfg.Training.MaxMoves).Run()
	fmt.Print(board)
	log.Info().Msgf("score %d after %d moves, max tile %d, won %t", result.Score, result.Moves, result.MaxTile, result.Won)
	return nil
}

func runBench(args []string) error {
	o := newOptions("bench")
	workerList := o.fs.String("worker-counts", "", "comma separated worker counts")
	cfg, err := o.load(args)
	if err != nil {
		return err
	}

	games := experiments.NumGames
	if o.isSet("games") {
		games = cfg.Training.GamesPerIndividual
	}
	var counts []int
	if *workerList != "" {
		if counts, err = parseInts(*workerList); err != nil {
			return err
		}
	}
	_, err = experiments.RunThroughputExperiment(experiments.ThroughputConfig{
		Weights:      game.DefaultWeights,
		Games:        games,
		MaxMoves:     cfg.Training.MaxMoves,
		Seed:         cfg.Training.Seed,
		WorkerCounts: counts,
		OutputDir:    cfg.Metrics.Dir,
	})
	return err
}

func parseWeights(s string) (game.Weights, error) {
	fields := strings.Split(s, ",")
	if len(fields) != game.NumGenes {
		return game.Weights{}, fmt.Errorf("want %d weights, got %d", game.NumGenes, len(fields))
	}
	var genes [game.NumGenes]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return game.Weights{}, fmt.Errorf("invalid weight %q: %w", f, err)
		}
		genes[i] = v
	}
	return game.WeightsFromGenes(genes), nil
}

func parseInts(s string) ([]int, error) {
	var out []int
	for _, f := range strings.Split(s, ",") {
		v, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil || v <= 0 {
			return nil, fmt.Errorf("invalid worker count %q", f)
		}
		out = append(out, v)
	}
	return out, nil
}
