package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults mirror the shipped app behavior.
const (
	DefaultBaseURL        = "http://localhost:3001"
	DefaultRequestTimeout = 10 * time.Second

	DefaultMissionStale        = 5 * time.Minute
	DefaultMissionRetain       = 10 * time.Minute
	DefaultParticipationStale  = 2 * time.Minute
	DefaultParticipationRetain = 5 * time.Minute

	DefaultRetries        = 2
	DefaultSearchDebounce = 500 * time.Millisecond
	DefaultLogLevel       = "info"
)

// Config collects everything tunable about the client: where the backend
// lives, how long cached collections stay fresh, and how chatty the logs
// are.
type Config struct {
	BaseURL        string        `yaml:"base_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`

	Missions       CacheWindow `yaml:"missions"`
	Participations CacheWindow `yaml:"participations"`

	Retries        int           `yaml:"retries"`
	SearchDebounce time.Duration `yaml:"search_debounce"`

	LogLevel string `yaml:"log_level"`
	DataDir  string `yaml:"data_dir"`
}

// CacheWindow holds the freshness and retention windows for one cached
// collection.
type CacheWindow struct {
	StaleAfter time.Duration `yaml:"stale_after"`
	RetainFor  time.Duration `yaml:"retain_for"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		BaseURL:        DefaultBaseURL,
		RequestTimeout: DefaultRequestTimeout,
		Missions: CacheWindow{
			StaleAfter: DefaultMissionStale,
			RetainFor:  DefaultMissionRetain,
		},
		Participations: CacheWindow{
			StaleAfter: DefaultParticipationStale,
			RetainFor:  DefaultParticipationRetain,
		},
		Retries:        DefaultRetries,
		SearchDebounce: DefaultSearchDebounce,
		LogLevel:       DefaultLogLevel,
		DataDir:        defaultDataDir(),
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ecoaction"
	}
	return filepath.Join(home, ".ecoaction")
}

// Load builds the configuration from defaults, an optional YAML file, and
// ECOACTION_* environment overrides, in that order of precedence.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("failed to read config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("ECOACTION_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("ECOACTION_REQUEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RequestTimeout = d
		}
	}
	if v := os.Getenv("ECOACTION_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Retries = n
		}
	}
	if v := os.Getenv("ECOACTION_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("ECOACTION_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
}

// Validate rejects values the rest of the system cannot work with.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url must not be empty")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.Retries < 0 {
		return fmt.Errorf("retries must not be negative, got %d", c.Retries)
	}
	for name, w := range map[string]CacheWindow{"missions": c.Missions, "participations": c.Participations} {
		if w.StaleAfter <= 0 || w.RetainFor <= 0 {
			return fmt.Errorf("%s cache windows must be positive", name)
		}
		if w.RetainFor < w.StaleAfter {
			return fmt.Errorf("%s retain_for must be at least stale_after", name)
		}
	}
	return nil
}
