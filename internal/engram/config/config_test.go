package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "engram.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPath != "engram.db" {
		t.Errorf("DBPath = %s", cfg.DBPath)
	}
	if cfg.Engine.Pacing != 500*time.Millisecond {
		t.Errorf("Pacing = %v", cfg.Engine.Pacing)
	}
	if cfg.Engine.RecencyHorizonDays != 30 {
		t.Errorf("RecencyHorizonDays = %v", cfg.Engine.RecencyHorizonDays)
	}
	if cfg.Engine.RateLimit != 30 || cfg.Engine.RateWindow != time.Minute {
		t.Errorf("rate limit defaults = %d per %v", cfg.Engine.RateLimit, cfg.Engine.RateWindow)
	}
	if cfg.GenAI.APIKey != "" {
		t.Errorf("APIKey should default empty, got %q", cfg.GenAI.APIKey)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
db_path: /var/lib/engram/memory.db
genai:
  api_key: test-key
  model: gpt-4o
engine:
  pacing: 250ms
  recency_horizon_days: 14
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPath != "/var/lib/engram/memory.db" {
		t.Errorf("DBPath = %s", cfg.DBPath)
	}
	if cfg.GenAI.APIKey != "test-key" || cfg.GenAI.Model != "gpt-4o" {
		t.Errorf("genai = %+v", cfg.GenAI)
	}
	if cfg.Engine.Pacing != 250*time.Millisecond {
		t.Errorf("Pacing = %v", cfg.Engine.Pacing)
	}
	if cfg.Engine.RecencyHorizonDays != 14 {
		t.Errorf("RecencyHorizonDays = %v", cfg.Engine.RecencyHorizonDays)
	}
	// Untouched fields keep their defaults.
	if cfg.Engine.RateLimit != 30 {
		t.Errorf("RateLimit = %d, want default 30", cfg.Engine.RateLimit)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, "db_path: from-file.db\n")

	t.Setenv("ENGRAM_DB", "from-env.db")
	t.Setenv("ENGRAM_GENAI_API_KEY", "env-key")
	t.Setenv("ENGRAM_PACING", "1s")
	t.Setenv("ENGRAM_RATE_LIMIT", "5")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPath != "from-env.db" {
		t.Errorf("DBPath = %s, want env override", cfg.DBPath)
	}
	if cfg.GenAI.APIKey != "env-key" {
		t.Errorf("APIKey = %s", cfg.GenAI.APIKey)
	}
	if cfg.Engine.Pacing != time.Second {
		t.Errorf("Pacing = %v", cfg.Engine.Pacing)
	}
	if cfg.Engine.RateLimit != 5 {
		t.Errorf("RateLimit = %d", cfg.Engine.RateLimit)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected an error for a missing config file")
	}
}

func TestLoadUnparsableFile(t *testing.T) {
	path := writeConfigFile(t, "db_path: [not: valid\n")
	if _, err := Load(path); err == nil {
		t.Error("expected a parse error")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		problem string
	}{
		{"empty db path", func(c *Config) { c.DBPath = "" }, "db_path"},
		{"negative pacing", func(c *Config) { c.Engine.Pacing = -time.Second }, "pacing"},
		{"zero horizon", func(c *Config) { c.Engine.RecencyHorizonDays = 0 }, "recency_horizon_days"},
		{"negative rate limit", func(c *Config) { c.Engine.RateLimit = -1 }, "rate_limit"},
		{"negative timeout", func(c *Config) { c.GenAI.Timeout = -time.Second }, "timeout"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !strings.Contains(err.Error(), tc.problem) {
				t.Errorf("error %q does not name %q", err, tc.problem)
			}
		})
	}

	if err := Default().Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}
