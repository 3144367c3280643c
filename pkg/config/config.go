package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/limaJavier/classweek/pkg/model"
	"github.com/mitchellh/mapstructure"
)

const (
	FileName      = "config.json"
	EnvConfigPath = "CLASSWEEK_CONFIG"
	EnvTimeout    = "CLASSWEEK_TIMEOUT"
	EnvWorkers    = "CLASSWEEK_WORKERS"
)

type Grid struct {
	Days         uint64   `mapstructure:"days" validate:"gte=1,lte=7"`
	BlocksPerDay uint64   `mapstructure:"blocksPerDay" validate:"gte=1,lte=24"`
	DayNames     []string `mapstructure:"dayNames"`
	BlockNames   []string `mapstructure:"blockNames"`
}

type Rules struct {
	MaxSessionsPerDay  int `mapstructure:"maxSessionsPerDay" validate:"gte=1"`
	MaxDaysUsed        int `mapstructure:"maxDaysUsed" validate:"gte=1"`
	DistinctDaysWeight int `mapstructure:"distinctDaysWeight" validate:"gte=0"`
	MaxDaysWeight      int `mapstructure:"maxDaysWeight" validate:"gte=0"`
	ContiguityWeight   int `mapstructure:"contiguityWeight" validate:"gte=0"`
}

type Search struct {
	MaxSolutions       int           `mapstructure:"maxSolutions" validate:"gte=0"`
	MaxNodes           uint64        `mapstructure:"maxNodes"`
	Timeout            time.Duration `mapstructure:"timeout" validate:"gte=0"`
	Workers            int           `mapstructure:"workers" validate:"gte=1,lte=256"`
	MatchingScopeLimit int           `mapstructure:"matchingScopeLimit" validate:"gte=0"`
	BranchAndBound     bool          `mapstructure:"branchAndBound"`
}

type Config struct {
	Grid    Grid              `mapstructure:"grid"`
	Rules   Rules             `mapstructure:"rules"`
	Search  Search            `mapstructure:"search"`
	Solvers map[string]string `mapstructure:"solvers" validate:"dive,keys,oneof=kissat cadical minisat glucose slime,endkeys,required"`
}

func Default() Config {
	grid := model.DefaultGrid()
	rules := model.DefaultRules()
	options := model.DefaultOptions()
	return Config{
		Grid: Grid{
			Days:         grid.Days,
			BlocksPerDay: grid.BlocksPerDay,
		},
		Rules: Rules{
			MaxSessionsPerDay:  rules.MaxSessionsPerDay,
			MaxDaysUsed:        rules.MaxDaysUsed,
			DistinctDaysWeight: rules.DistinctDaysWeight,
			MaxDaysWeight:      rules.MaxDaysWeight,
			ContiguityWeight:   rules.ContiguityWeight,
		},
		Search: Search{
			MaxSolutions:       options.MaxSolutions,
			MaxNodes:           options.MaxNodes,
			Timeout:            options.Timeout,
			Workers:            options.Workers,
			MatchingScopeLimit: rules.MatchingScopeLimit,
			BranchAndBound:     options.BranchAndBound,
		},
		Solvers: make(map[string]string),
	}
}

// Load reads the configuration file on top of the defaults. The path is taken from the argument,
// then from CLASSWEEK_CONFIG and finally from the executable's directory; only the last one may be
// missing. Variables from a .env file in the working directory are loaded before the overrides.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("cannot load .env file: %w", err)
	}

	config := Default()

	required := true
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		required = false
		executable, err := os.Executable()
		if err != nil {
			return Config{}, fmt.Errorf("cannot determine executable path: %w", err)
		}
		path = filepath.Join(filepath.Dir(executable), FileName)
	}

	bytes, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decode(bytes, &config); err != nil {
			return Config{}, err
		}
	case required || !errors.Is(err, fs.ErrNotExist):
		return Config{}, fmt.Errorf("cannot read config file: %w", err)
	}

	if err := applyEnvironment(&config); err != nil {
		return Config{}, err
	}

	if err := validator.New().Struct(config); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

func decode(bytes []byte, config *Config) error {
	var inputJson map[string]any
	if err := json.Unmarshal(bytes, &inputJson); err != nil {
		return fmt.Errorf("cannot parse config file: %w", err)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           config,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(inputJson); err != nil {
		return fmt.Errorf("cannot decode config file: %w", err)
	}
	return nil
}

func applyEnvironment(config *Config) error {
	if value, ok := os.LookupEnv(EnvTimeout); ok && value != "" {
		timeout, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid %v: %w", EnvTimeout, err)
		}
		config.Search.Timeout = timeout
	}
	if value, ok := os.LookupEnv(EnvWorkers); ok && value != "" {
		workers, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid %v: %w", EnvWorkers, err)
		}
		config.Search.Workers = workers
	}
	return nil
}

// ModelGrid returns the grid, naming days and blocks with the defaults when no names are set
func (config Config) ModelGrid() model.Grid {
	grid := model.Grid{
		Days:         config.Grid.Days,
		BlocksPerDay: config.Grid.BlocksPerDay,
		DayNames:     config.Grid.DayNames,
		BlockNames:   config.Grid.BlockNames,
	}
	if len(grid.DayNames) == 0 {
		grid.DayNames = model.DefaultDayNames[:min(grid.Days, uint64(len(model.DefaultDayNames)))]
	}
	if len(grid.BlockNames) == 0 && grid.BlocksPerDay == uint64(len(model.DefaultBlockNames)) {
		grid.BlockNames = model.DefaultBlockNames
	}
	return grid
}

func (config Config) ModelRules() model.Rules {
	return model.Rules{
		MaxSessionsPerDay:  config.Rules.MaxSessionsPerDay,
		MaxDaysUsed:        config.Rules.MaxDaysUsed,
		DistinctDaysWeight: config.Rules.DistinctDaysWeight,
		MaxDaysWeight:      config.Rules.MaxDaysWeight,
		ContiguityWeight:   config.Rules.ContiguityWeight,
		MatchingScopeLimit: config.Search.MatchingScopeLimit,
	}
}

func (config Config) SearchOptions() model.Options {
	return model.Options{
		MaxSolutions:   config.Search.MaxSolutions,
		MaxNodes:       config.Search.MaxNodes,
		Timeout:        config.Search.Timeout,
		Workers:        config.Search.Workers,
		BranchAndBound: config.Search.BranchAndBound,
	}
}

// SolverPath returns the configured executable of a solver (empty when unset)
func (config Config) SolverPath(solver string) string {
	return config.Solvers[solver]
}
