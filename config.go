package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds the search parameters. Adjust these to trade speed for
// solution quality.
type Config struct {
	// Iterations is the number of construct + local search cycles.
	Iterations int `json:"iterations" yaml:"iterations" validate:"gte=0"`
	// Reactive enables the self-tuning alpha pool; otherwise Alpha is used for every iteration.
	Reactive bool `json:"reactive" yaml:"reactive"`
	// Alpha is the fixed greediness parameter: 0 is pure greedy, 1 pure random.
	Alpha float64 `json:"alpha" yaml:"alpha" validate:"gte=0,lte=1"`
	// AlphaPool lists the candidate alphas of the reactive controller.
	AlphaPool []float64 `json:"alpha_pool" yaml:"alpha_pool" validate:"omitempty,unique,dive,gte=0,lte=1"`
	// UpdateFrequency is how many iterations pass between probability rebalances.
	UpdateFrequency int `json:"update_frequency" yaml:"update_frequency" validate:"gte=0"`
	// Seed drives every random draw; 0 selects a fixed default seed.
	Seed int64 `json:"seed" yaml:"seed"`
	// Workers is the number of iterations run concurrently per batch.
	Workers int `json:"workers" yaml:"workers" validate:"gte=1,lte=1024"`
	// TimeLimit stops the run between iterations once exceeded; 0 means no limit.
	TimeLimit time.Duration `json:"time_limit" yaml:"time_limit" validate:"gte=0"`
	// Epsilon is the minimum cost change local search treats as an improvement.
	// The default 0 accepts every strict improvement; a positive value ends the
	// climb earlier and no longer guarantees a strict local optimum.
	Epsilon float64 `json:"epsilon" yaml:"epsilon" validate:"gte=0"`
	// MaxLocalMoves caps accepted local search moves per iteration; 0 = until local optimum.
	MaxLocalMoves int `json:"max_local_moves" yaml:"max_local_moves" validate:"gte=0"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`
}

// DefaultConfig returns the parameters used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Iterations:      100,
		Reactive:        true,
		Alpha:           0.1,
		AlphaPool:       append([]float64(nil), DefaultAlphaPool...),
		UpdateFrequency: 10,
		Workers:         1,
		LogLevel:        "info",
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field ranges.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			v := verrs[0]
			return fmt.Errorf("%s failed %q (value %v): %w", v.Namespace(), v.Tag(), v.Value(), ErrInvalidConfig)
		}
		return fmt.Errorf("%v: %w", err, ErrInvalidConfig)
	}
	if c.Reactive && len(c.AlphaPool) == 0 {
		return fmt.Errorf("alpha_pool must not be empty when reactive: %w", ErrInvalidConfig)
	}
	return nil
}

// LoadConfig loads configuration with priority: env > file > defaults.
// A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		if err := loadConfigFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}
	if err := loadConfigFromEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func loadConfigFromEnv(cfg *Config) error {
	if v := os.Getenv("GRASP_ITERATIONS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("GRASP_ITERATIONS=%q: %w", v, ErrInvalidConfig)
		}
		cfg.Iterations = n
	}
	if v := os.Getenv("GRASP_SEED"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("GRASP_SEED=%q: %w", v, ErrInvalidConfig)
		}
		cfg.Seed = n
	}
	if v := os.Getenv("GRASP_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("GRASP_WORKERS=%q: %w", v, ErrInvalidConfig)
		}
		cfg.Workers = n
	}
	if v := os.Getenv("GRASP_TIME_LIMIT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("GRASP_TIME_LIMIT=%q: %w", v, ErrInvalidConfig)
		}
		cfg.TimeLimit = d
	}
	if v := os.Getenv("GRASP_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	return nil
}

// alphaSelector builds the alpha policy described by c.
func (c Config) alphaSelector(dir Direction) (AlphaSelector, error) {
	if !c.Reactive {
		return FixedAlpha(c.Alpha), nil
	}
	return NewReactiveAlpha(c.AlphaPool, c.UpdateFrequency, DefaultScoreFunc(dir))
}
