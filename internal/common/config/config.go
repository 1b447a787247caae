// internal/common/config/config.go
package config

import (
	"time"

	apperrors "omnisearch/internal/common/errors"
)

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Search    SearchConfig    `mapstructure:"search"`
	Synthesis SynthesisConfig `mapstructure:"synthesis"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// SearchConfig controls the fan-out over the external sources.
type SearchConfig struct {
	PerSourceTimeout int      `mapstructure:"per_source_timeout"` // milliseconds
	MaxParallel      int      `mapstructure:"max_parallel"`
	MaxResults       int      `mapstructure:"max_results"` // global override; 0 keeps per-source defaults
	SourcesEnabled   []string `mapstructure:"sources_enabled"`
	UserAgent        string   `mapstructure:"user_agent"`
}

// Timeout returns the per-source timeout as a duration.
func (s SearchConfig) Timeout() time.Duration {
	return time.Duration(s.PerSourceTimeout) * time.Millisecond
}

// SynthesisConfig controls context building and answer generation.
type SynthesisConfig struct {
	ContextBudget int      `mapstructure:"context_budget"` // bytes
	Persona       string   `mapstructure:"persona"`
	PersonasPath  string   `mapstructure:"personas_path"`
	Priority      []string `mapstructure:"priority"` // source order; empty = declaration order
	Temperature   float64  `mapstructure:"temperature"`
	MaxTokens     int      `mapstructure:"max_tokens"`
	ContextWindow int      `mapstructure:"context_window"` // model token window
	ModelBaseURL  string   `mapstructure:"model_base_url"`
	LoadTimeout   int      `mapstructure:"load_timeout"` // milliseconds
}

// LoadTimeoutDuration returns the model load timeout as a duration.
func (s SynthesisConfig) LoadTimeoutDuration() time.Duration {
	return time.Duration(s.LoadTimeout) * time.Millisecond
}

type CacheConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TTL      int    `mapstructure:"ttl"` // seconds
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "omnisearch"
	}
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Search.PerSourceTimeout == 0 {
		cfg.Search.PerSourceTimeout = 10000
	}
	if cfg.Search.UserAgent == "" {
		cfg.Search.UserAgent = "omnisearch/1.0"
	}
	if cfg.Synthesis.ContextBudget == 0 {
		cfg.Synthesis.ContextBudget = 6000
	}
	if cfg.Synthesis.Temperature == 0 {
		cfg.Synthesis.Temperature = 0.7
	}
	if cfg.Synthesis.MaxTokens == 0 {
		cfg.Synthesis.MaxTokens = 512
	}
	if cfg.Synthesis.ContextWindow == 0 {
		cfg.Synthesis.ContextWindow = 4096
	}
	if cfg.Synthesis.LoadTimeout == 0 {
		cfg.Synthesis.LoadTimeout = 60000
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 300
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
}

// validateConfig rejects configurations that would make every request fail.
// This is the only error path that fires before any network activity.
func validateConfig(cfg *Config) error {
	if len(cfg.Search.SourcesEnabled) == 0 {
		return apperrors.NewInvalidConfigError("search.sources_enabled is empty: no sources to query")
	}
	if cfg.Search.PerSourceTimeout <= 0 {
		return apperrors.NewInvalidConfigError("search.per_source_timeout must be positive, got %d", cfg.Search.PerSourceTimeout)
	}
	if cfg.Search.MaxParallel < 0 {
		return apperrors.NewInvalidConfigError("search.max_parallel must not be negative, got %d", cfg.Search.MaxParallel)
	}
	if cfg.Synthesis.ContextBudget < 0 {
		return apperrors.NewInvalidConfigError("synthesis.context_budget must not be negative, got %d", cfg.Synthesis.ContextBudget)
	}
	if cfg.Synthesis.Temperature < 0.0 || cfg.Synthesis.Temperature > 2.0 {
		return apperrors.NewInvalidConfigError("synthesis.temperature must be within [0.0, 2.0], got %v", cfg.Synthesis.Temperature)
	}
	if cfg.Synthesis.MaxTokens <= 0 {
		return apperrors.NewInvalidConfigError("synthesis.max_tokens must be positive, got %d", cfg.Synthesis.MaxTokens)
	}
	if cfg.Cache.Enabled && cfg.Cache.Address == "" {
		return apperrors.NewInvalidConfigError("cache.enabled is true but cache.address is empty")
	}
	return nil
}
