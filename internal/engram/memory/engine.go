package memory

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mcostea/engram/internal/engram/genai"
)

// EngineConfig tunes the memory engine.
type EngineConfig struct {
	// Pacing is the delay between turns during generative batch extraction.
	// Zero uses DefaultPacing; ingestion with rules only is never paced.
	Pacing time.Duration

	// RecencyHorizonDays is the e-folding time of retrieval recency decay.
	// Zero uses DefaultRecencyHorizonDays.
	RecencyHorizonDays float64

	// RateLimit caps generative extraction calls per user per RateWindow.
	// Zero uses genai.DefaultRateLimit.
	RateLimit int

	// RateWindow is the sliding window for RateLimit. Zero means one minute.
	RateWindow time.Duration
}

// Engine wires the extraction, persistence, retrieval, and consolidation
// components behind one front door. The host application constructs it once
// and threads an explicit user id through every call; there is no singleton
// subject.
type Engine struct {
	store    Store
	provider genai.Provider // nil → rule-based extraction only
	limiter  *genai.RateLimiter
	cfg      EngineConfig
	logger   *slog.Logger
}

// NewEngine creates an Engine over the given store. provider may be nil to
// run extraction purely on local rules. If logger is nil, the default slog
// logger is used.
func NewEngine(store Store, provider genai.Provider, cfg EngineConfig, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pacing <= 0 {
		cfg.Pacing = DefaultPacing
	}
	if cfg.RecencyHorizonDays <= 0 {
		cfg.RecencyHorizonDays = DefaultRecencyHorizonDays
	}

	var limiter *genai.RateLimiter
	if provider != nil {
		limiter = genai.NewRateLimiter(cfg.RateLimit, cfg.RateWindow)
	}

	return &Engine{
		store:    store,
		provider: provider,
		limiter:  limiter,
		cfg:      cfg,
		logger:   logger,
	}
}

// IngestBatch extracts memory items from the turns and persists them for the
// user. Per-turn failures are isolated inside the batch; a cancelled context
// persists the items extracted up to that point (no rollback). The persisted
// items are returned.
func (e *Engine) IngestBatch(ctx context.Context, userID string, turns []Turn, startingID int) ([]Item, error) {
	provider := e.provider
	if provider != nil {
		provider = genai.Limited(provider, e.limiter, userID)
	}

	coordinator := NewBatchCoordinator(NewTurnExtractor(provider, e.logger), e.logger)
	coordinator.Pacing = e.cfg.Pacing

	items := coordinator.ExtractBatch(ctx, turns, startingID)
	if len(items) == 0 {
		return nil, nil
	}

	if err := e.store.SaveItems(ctx, userID, items); err != nil {
		return nil, fmt.Errorf("engine: persist extracted items: %w", err)
	}

	e.logger.Info("engine: ingested batch",
		"user_id", userID, "turns", len(turns), "items", len(items))
	return items, nil
}

// Consolidate rebuilds the user's profile from the full item corpus and
// persists it, returning the new profile.
func (e *Engine) Consolidate(ctx context.Context, userID string) (Profile, error) {
	items, err := e.store.LoadItems(ctx, userID)
	if err != nil {
		return Profile{}, fmt.Errorf("engine: load items for consolidation: %w", err)
	}

	profile := Consolidate(userID, items)
	if err := e.store.SaveProfile(ctx, profile); err != nil {
		return Profile{}, fmt.Errorf("engine: persist profile: %w", err)
	}

	e.logger.Info("engine: consolidated profile",
		"user_id", userID, "items", len(items))
	return profile, nil
}

// Recall returns the user's top memories for the query.
func (e *Engine) Recall(ctx context.Context, userID string, q Query) []ScoredMemory {
	return e.retriever().Search(ctx, userID, q)
}

// ContextBlock renders the prompt-ready memory block for the keywords.
// Empty when no memories qualify.
func (e *Engine) ContextBlock(ctx context.Context, userID string, keywords []string, limit int) string {
	return e.retriever().GenerateContext(ctx, userID, keywords, limit)
}

// Profile returns the user's consolidated profile, nil when the user has
// never been consolidated.
func (e *Engine) Profile(ctx context.Context, userID string) (*Profile, error) {
	return e.store.LoadProfile(ctx, userID)
}

// ProfileSummary returns the prompt-ready profile rendering, empty when the
// user has never been consolidated.
func (e *Engine) ProfileSummary(ctx context.Context, userID string) (string, error) {
	profile, err := e.store.LoadProfile(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("engine: load profile: %w", err)
	}
	if profile == nil {
		return "", nil
	}
	return profile.SummaryText(), nil
}

func (e *Engine) retriever() *Retriever {
	r := NewRetriever(e.store, e.logger)
	r.HorizonDays = e.cfg.RecencyHorizonDays
	return r
}
