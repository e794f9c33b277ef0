package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all decoyforge configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Workspace root; the store database and logs live under it.
	Workspace string `yaml:"workspace"`

	// LLM provider configuration
	LLM LLMConfig `yaml:"llm"`

	// Generation pipeline configuration
	Generation GenerationConfig `yaml:"generation"`

	// Filesystem population configuration
	Populate PopulateConfig `yaml:"populate"`

	// Storage configuration
	Storage StorageConfig `yaml:"storage"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// GenerationConfig configures the content generator and validation pipeline.
type GenerationConfig struct {
	// Minimum aggregate realism score for content to be accepted (default 0.7)
	RealismThreshold float64 `yaml:"realism_threshold"`

	// Maximum generation attempts before ValidationExhausted (default 3)
	MaxAttempts int `yaml:"max_attempts"`

	// Base sampling temperature; raised on each retry
	BaseTemperature float64 `yaml:"base_temperature"`

	// Temperature increment applied per failed attempt
	TemperatureStep float64 `yaml:"temperature_step"`

	// Maximum tokens requested from the provider per completion
	MaxTokens int `yaml:"max_tokens"`
}

// StorageConfig configures the SQLite-backed ledger and generation log.
type StorageConfig struct {
	// DatabasePath is the SQLite file; ":memory:" is accepted for tests.
	DatabasePath string `yaml:"database_path"`

	// LookupCacheSize bounds the in-memory honeytoken lookup cache.
	LookupCacheSize int `yaml:"lookup_cache_size"`
}

// LoggingConfig configures the category logger.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Categories map[string]bool `yaml:"categories"`
	Level      string          `yaml:"level"`
	JSONFormat bool            `yaml:"json_format"`
}

// Default returns a Config populated with production defaults.
func Default() *Config {
	return &Config{
		Name:      "decoyforge",
		Version:   "1.0.0",
		Workspace: ".",
		LLM: LLMConfig{
			Provider:         "openai",
			Model:            "gpt-4o-mini",
			Timeout:          Duration(2 * time.Minute),
			MaxRetries:       4,
			RetryBackoffBase: Duration(time.Second),
			RetryBackoffMax:  Duration(30 * time.Second),
			RequestsPerSec:   2,
			Burst:            4,
		},
		Generation: GenerationConfig{
			RealismThreshold: 0.7,
			MaxAttempts:      3,
			BaseTemperature:  0.7,
			TemperatureStep:  0.15,
			MaxTokens:        4096,
		},
		Populate: PopulateConfig{
			OutputBasePath: "decoys",
			MaxConcurrent:  4,
			TimestampWindow: TimestampWindow{
				MinAge: Duration(24 * time.Hour),
				MaxAge: Duration(180 * 24 * time.Hour),
			},
			Permissions: DefaultPermissions(),
		},
		Storage: StorageConfig{
			DatabasePath:    filepath.Join(".decoyforge", "decoyforge.db"),
			LookupCacheSize: 1024,
		},
		Logging: LoggingConfig{
			DebugMode: false,
			Level:     "info",
		},
	}
}

// Load reads a YAML config file, layering it over defaults and then applying
// DECOYFORGE_* environment overrides. A missing file is not an error: defaults
// plus environment are returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks invariants that would otherwise surface deep in the pipeline.
func (c *Config) Validate() error {
	if c.Generation.MaxAttempts < 1 {
		return fmt.Errorf("generation.max_attempts must be >= 1, got %d", c.Generation.MaxAttempts)
	}
	if c.Generation.RealismThreshold < 0 || c.Generation.RealismThreshold > 1 {
		return fmt.Errorf("generation.realism_threshold must be in [0,1], got %f", c.Generation.RealismThreshold)
	}
	if c.Populate.MaxConcurrent < 1 {
		return fmt.Errorf("populate.max_concurrent must be >= 1, got %d", c.Populate.MaxConcurrent)
	}
	if c.Populate.TimestampWindow.MinAge >= c.Populate.TimestampWindow.MaxAge {
		return fmt.Errorf("populate.timestamp_window: min_age must be < max_age")
	}
	if c.LLM.RetryBackoffBase <= 0 || c.LLM.RetryBackoffMax < c.LLM.RetryBackoffBase {
		return fmt.Errorf("llm: retry backoff base/max misconfigured")
	}
	return nil
}
