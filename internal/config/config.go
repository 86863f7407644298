// Package config resolves application configuration in layers: built-in
// defaults, an optional YAML file, then COMPETENCES_* environment
// variables. A .env file in the working directory is loaded first so
// local overrides need no shell setup.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store"`
	Quiz       QuizConfig       `yaml:"quiz"`
	Retry      RetryConfig      `yaml:"retry"`
	Cache      CacheConfig      `yaml:"cache"`
	Competency CompetencyConfig `yaml:"competency"`
}

// StoreConfig selects and locates the backing store.
type StoreConfig struct {
	// Driver selects the store implementation. Values: "sqlite", "json".
	Driver string `yaml:"driver"`

	// Path is the store file. Empty resolves the platform default under
	// the user data directory.
	Path string `yaml:"path"`

	// SnapshotDir holds in-progress session snapshots. Empty derives a
	// "snapshots" directory next to the store file.
	SnapshotDir string `yaml:"snapshot_dir"`
}

// QuizConfig configures session behavior.
type QuizConfig struct {
	// TimeLimitMinutes bounds a scored assessment. 0 disables the timer.
	TimeLimitMinutes int `yaml:"time_limit_minutes"`
}

// RetryConfig configures the retrying gateway on store reads and writes.
type RetryConfig struct {
	MaxRetries  int `yaml:"max_retries"`
	BaseDelayMs int `yaml:"base_delay_ms"`
}

// CacheConfig configures per-query-kind cache lifetimes.
type CacheConfig struct {
	QuestionTTLMinutes int `yaml:"question_ttl_minutes"`
	ResultTTLMinutes   int `yaml:"result_ttl_minutes"`
}

// CompetencyConfig configures progress tracking.
type CompetencyConfig struct {
	// AssessmentIntervalMonths is how far ahead the next assessment is
	// scheduled after one is recorded.
	AssessmentIntervalMonths int `yaml:"assessment_interval_months"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Store: StoreConfig{
			Driver: "sqlite",
		},
		Quiz: QuizConfig{
			TimeLimitMinutes: 30,
		},
		Retry: RetryConfig{
			MaxRetries:  3,
			BaseDelayMs: 1000,
		},
		Cache: CacheConfig{
			QuestionTTLMinutes: 5,
			ResultTTLMinutes:   5,
		},
		Competency: CompetencyConfig{
			AssessmentIntervalMonths: 6,
		},
	}
}

// Load resolves configuration: defaults, then the YAML file at path when
// given, then environment variables. A missing .env file is fine.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overlays COMPETENCES_* environment variables onto cfg.
func applyEnv(cfg *Config) {
	if v := os.Getenv("COMPETENCES_STORE_DRIVER"); v != "" {
		cfg.Store.Driver = v
	}
	if v := os.Getenv("COMPETENCES_DB"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("COMPETENCES_SNAPSHOT_DIR"); v != "" {
		cfg.Store.SnapshotDir = v
	}
	if n, ok := envInt("COMPETENCES_TIME_LIMIT_MINUTES"); ok {
		cfg.Quiz.TimeLimitMinutes = n
	}
	if n, ok := envInt("COMPETENCES_RETRY_MAX"); ok {
		cfg.Retry.MaxRetries = n
	}
	if n, ok := envInt("COMPETENCES_RETRY_BASE_DELAY_MS"); ok {
		cfg.Retry.BaseDelayMs = n
	}
	if n, ok := envInt("COMPETENCES_QUESTION_TTL_MINUTES"); ok {
		cfg.Cache.QuestionTTLMinutes = n
	}
	if n, ok := envInt("COMPETENCES_RESULT_TTL_MINUTES"); ok {
		cfg.Cache.ResultTTLMinutes = n
	}
	if n, ok := envInt("COMPETENCES_ASSESSMENT_INTERVAL_MONTHS"); ok {
		cfg.Competency.AssessmentIntervalMonths = n
	}
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %s=%q is not a number, ignoring\n", key, v)
		return 0, false
	}
	return n, true
}

// Validate checks that the configuration is internally consistent.
func (c Config) Validate() error {
	switch c.Store.Driver {
	case "sqlite", "json":
	default:
		return fmt.Errorf("unknown store driver: %q", c.Store.Driver)
	}
	if c.Quiz.TimeLimitMinutes < 0 {
		return fmt.Errorf("time limit must not be negative")
	}
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("max retries must not be negative")
	}
	if c.Retry.BaseDelayMs <= 0 {
		return fmt.Errorf("retry base delay must be positive")
	}
	if c.Competency.AssessmentIntervalMonths <= 0 {
		return fmt.Errorf("assessment interval must be positive")
	}
	return nil
}

// TimeLimit returns the session time limit as a duration, 0 when
// disabled.
func (c Config) TimeLimit() time.Duration {
	return time.Duration(c.Quiz.TimeLimitMinutes) * time.Minute
}

// RetryBaseDelay returns the gateway base delay as a duration.
func (c Config) RetryBaseDelay() time.Duration {
	return time.Duration(c.Retry.BaseDelayMs) * time.Millisecond
}

// QuestionTTL returns the question cache TTL as a duration.
func (c Config) QuestionTTL() time.Duration {
	return time.Duration(c.Cache.QuestionTTLMinutes) * time.Minute
}

// ResultTTL returns the result-history cache TTL as a duration.
func (c Config) ResultTTL() time.Duration {
	return time.Duration(c.Cache.ResultTTLMinutes) * time.Minute
}
