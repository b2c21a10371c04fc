// Package cli implements the engram CLI commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcostea/engram/internal/engram/config"
	"github.com/mcostea/engram/internal/engram/genai"
	"github.com/mcostea/engram/internal/engram/memory"
	"github.com/mcostea/engram/internal/engram/store"
)

var (
	configPath string
	userID     string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "engram",
	Short: "Conversational long-term memory engine",
	Long: "engram distills conversation turns into typed memory facts, " +
		"retrieves the most relevant ones on demand, and consolidates them " +
		"into a compact per-user profile for prompt injection.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (YAML); env vars override")
	RootCmd.PersistentFlags().StringVarP(&userID, "user", "u", "default", "User the memories belong to")
}

// openEngine builds the engine from configuration. The returned close func
// releases the underlying database.
func openEngine() (*memory.Engine, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}

	var provider genai.Provider
	if cfg.GenAI.APIKey != "" {
		provider = genai.New(genai.Config{
			APIKey:  cfg.GenAI.APIKey,
			BaseURL: cfg.GenAI.BaseURL,
			Model:   cfg.GenAI.Model,
			Timeout: cfg.GenAI.Timeout,
		})
	}

	engine := memory.NewEngine(
		memory.NewSQLiteStore(st.DB(), nil),
		provider,
		memory.EngineConfig{
			Pacing:             cfg.Engine.Pacing,
			RecencyHorizonDays: cfg.Engine.RecencyHorizonDays,
			RateLimit:          cfg.Engine.RateLimit,
			RateWindow:         cfg.Engine.RateWindow,
		},
		nil,
	)

	return engine, func() { st.Close() }, nil
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
