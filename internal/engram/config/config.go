// Package config loads engram configuration from an optional YAML file with
// environment-variable overrides. The file is parsed then validated as one
// step; a config that parses but fails validation is never returned.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mcostea/engram/common/environment"
)

// Config is the full engram configuration.
type Config struct {
	// DBPath is the SQLite database location.
	DBPath string `yaml:"db_path"`

	GenAI  GenAI  `yaml:"genai"`
	Engine Engine `yaml:"engine"`
}

// GenAI configures the text-generation provider for the primary extraction
// strategy. Without an API key the engine runs on rule-based extraction
// only.
type GenAI struct {
	APIKey  string        `yaml:"api_key"`
	BaseURL string        `yaml:"base_url"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

// Engine tunes the memory pipeline.
type Engine struct {
	// Pacing is the delay between turns during generative batch extraction.
	Pacing time.Duration `yaml:"pacing"`
	// RecencyHorizonDays is the e-folding time of retrieval recency decay.
	RecencyHorizonDays float64 `yaml:"recency_horizon_days"`
	// RateLimit caps generative calls per user per RateWindow.
	RateLimit int `yaml:"rate_limit"`
	// RateWindow is the sliding window for RateLimit.
	RateWindow time.Duration `yaml:"rate_window"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DBPath: "engram.db",
		Engine: Engine{
			Pacing:             500 * time.Millisecond,
			RecencyHorizonDays: 30,
			RateLimit:          30,
			RateWindow:         time.Minute,
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (when
// non-empty), then environment overrides, then validation.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides config fields from ENGRAM_* environment variables.
func (c *Config) applyEnv() {
	c.DBPath = environment.StringOr("ENGRAM_DB", c.DBPath)

	c.GenAI.APIKey = environment.StringOr("ENGRAM_GENAI_API_KEY", c.GenAI.APIKey)
	c.GenAI.BaseURL = environment.StringOr("ENGRAM_GENAI_BASE_URL", c.GenAI.BaseURL)
	c.GenAI.Model = environment.StringOr("ENGRAM_GENAI_MODEL", c.GenAI.Model)
	c.GenAI.Timeout = environment.DurationOr("ENGRAM_GENAI_TIMEOUT", c.GenAI.Timeout)

	c.Engine.Pacing = environment.DurationOr("ENGRAM_PACING", c.Engine.Pacing)
	c.Engine.RecencyHorizonDays = environment.FloatOr("ENGRAM_RECENCY_HORIZON_DAYS", c.Engine.RecencyHorizonDays)
	c.Engine.RateLimit = environment.IntOr("ENGRAM_RATE_LIMIT", c.Engine.RateLimit)
	c.Engine.RateWindow = environment.DurationOr("ENGRAM_RATE_WINDOW", c.Engine.RateWindow)
}

// Validate checks the configuration for structural correctness. It returns
// the first problem found.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("config: db_path must not be empty")
	}
	if c.Engine.Pacing < 0 {
		return fmt.Errorf("config: engine.pacing must not be negative")
	}
	if c.Engine.RecencyHorizonDays <= 0 {
		return fmt.Errorf("config: engine.recency_horizon_days must be positive")
	}
	if c.Engine.RateLimit < 0 {
		return fmt.Errorf("config: engine.rate_limit must not be negative")
	}
	if c.Engine.RateWindow < 0 {
		return fmt.Errorf("config: engine.rate_window must not be negative")
	}
	if c.GenAI.Timeout < 0 {
		return fmt.Errorf("config: genai.timeout must not be negative")
	}
	return nil
}
