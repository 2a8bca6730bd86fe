package config

import (
	"errors"
	"fmt"
	"time"

	"ai2048/meta"

	"github.com/BurntSushi/toml"
)

// Duration decodes TOML strings such as "50ms".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

type Training struct {
	PopulationSize     int     `toml:"population_size"`
	EliteRate          float64 `toml:"elite_rate"`
	MutationRate       float64 `toml:"mutation_rate"`
	GamesPerIndividual int     `toml:"games_per_individual"`
	MaxMoves           int     `toml:"max_moves"`
	Workers            int     `toml:"workers"`
	Generations        int     `toml:"generations"` // 0 runs until stopped
	Seed               uint64  `toml:"seed"`        // 0 derives one from the clock
	BoardSize          int     `toml:"board_size"`
	PopulationFile     string  `toml:"population_file"`
}

type Live struct {
	StepInterval    Duration `toml:"step_interval"`
	GenerationPause Duration `toml:"generation_pause"`
}

type History struct {
	Kind string `toml:"kind"` // none, memory or sqlite
	Path string `toml:"path"`
}

type Metrics struct {
	Dir  string `toml:"dir"` // empty disables run artifacts
	Plot bool   `toml:"plot"`
}

type Server struct {
	Addr string `toml:"addr"`
}

type Config struct {
	Training Training `toml:"training"`
	Live     Live     `toml:"live"`
	History  History  `toml:"history"`
	Metrics  Metrics  `toml:"metrics"`
	Server   Server   `toml:"server"`
}

// Default returns the documented defaults.
func Default() Config {
	return Config{
		Training: Training{
			PopulationSize:     meta.POPULATION_SIZE,
			EliteRate:          meta.ELITE_RATE,
			MutationRate:       meta.MUTATION_RATE,
			GamesPerIndividual: meta.GAMES_PER_INDIVIDUAL,
			MaxMoves:           meta.MAX_MOVES,
			Workers:            meta.WORKERS,
			BoardSize:          meta.BOARD_SIZE,
			PopulationFile:     meta.POPULATION_FILE,
		},
		Live: Live{
			StepInterval:    Duration{meta.STEP_INTERVAL},
			GenerationPause: Duration{meta.GENERATION_PAUSE},
		},
		History: History{Kind: "none", Path: "history.db"},
		Metrics: Metrics{Plot: true},
		Server:  Server{Addr: meta.SERVER_ADDR},
	}
}

// Load reads a TOML file over the defaults. Keys missing from the file keep
// their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to decode config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("unknown config keys in %s: %v", path, undecoded)
	}
	return cfg, nil
}

// Validate rejects settings the training core does not accept.
func (c Config) Validate() error {
	t := c.Training
	var errs []error
	if t.PopulationSize <= 0 {
		errs = append(errs, fmt.Errorf("population_size must be positive, got %d", t.PopulationSize))
	}
	if t.EliteRate < 0 || t.EliteRate > 1 {
		errs = append(errs, fmt.Errorf("elite_rate must be within [0, 1], got %v", t.EliteRate))
	}
	if t.MutationRate < 0 || t.MutationRate > 1 {
		errs = append(errs, fmt.Errorf("mutation_rate must be within [0, 1], got %v", t.MutationRate))
	}
	if t.GamesPerIndividual < 0 {
		errs = append(errs, fmt.Errorf("games_per_individual must not be negative, got %d", t.GamesPerIndividual))
	}
	if t.MaxMoves < 0 {
		errs = append(errs, fmt.Errorf("max_moves must not be negative, got %d", t.MaxMoves))
	}
	if t.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", t.Workers))
	}
	if t.Generations < 0 {
		errs = append(errs, fmt.Errorf("generations must not be negative, got %d", t.Generations))
	}
	if t.BoardSize < 2 {
		errs = append(errs, fmt.Errorf("board_size must be at least 2, got %d", t.BoardSize))
	}
	if t.PopulationFile == "" {
		errs = append(errs, errors.New("population_file is required"))
	}
	if c.Live.StepInterval.Duration <= 0 {
		errs = append(errs, errors.New("step_interval must be positive"))
	}
	if c.Live.GenerationPause.Duration < 0 {
		errs = append(errs, errors.New("generation_pause must not be negative"))
	}
	switch c.History.Kind {
	case "", "none", "memory":
	case "sqlite":
		if c.History.Path == "" {
			errs = append(errs, errors.New("history path is required for sqlite"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported history kind %q", c.History.Kind))
	}
	return errors.Join(errs...)
}
