package memory

import (
	"context"
	"log/slog"
	"strconv"
	"time"
)

// DefaultPacing is the delay inserted between turns when the generative
// extraction strategy is in use, bounding the request rate against the
// text-generation API.
const DefaultPacing = 500 * time.Millisecond

// generativeReporter is implemented by extractors that can tell whether
// they make network-backed generation calls. Extractors that do not
// implement it are paced unconditionally.
type generativeReporter interface {
	Generative() bool
}

// BatchCoordinator drives an Extractor over many turns. Its defining
// contract is partial-failure isolation: one bad turn is logged and skipped,
// it never aborts the remainder of the batch.
type BatchCoordinator struct {
	Extractor Extractor
	// Pacing is the fixed delay between turns when the extractor uses the
	// generative strategy. Zero disables pacing.
	Pacing time.Duration
	Logger *slog.Logger
}

// NewBatchCoordinator creates a coordinator with the default pacing delay.
// If logger is nil, the default slog logger is used.
func NewBatchCoordinator(extractor Extractor, logger *slog.Logger) *BatchCoordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchCoordinator{
		Extractor: extractor,
		Pacing:    DefaultPacing,
		Logger:    logger,
	}
}

// ExtractBatch extracts memory items from turns in order, assigning each
// turn the derived conversation id startingID+index. The returned slice is
// the concatenation of all successful extractions, preserving turn order.
//
// Cancelling ctx stops the batch at the current turn; items extracted so far
// are returned (partial batches are a valid, inspectable state).
func (c *BatchCoordinator) ExtractBatch(ctx context.Context, turns []Turn, startingID int) []Item {
	var all []Item

	for i, turn := range turns {
		if ctx.Err() != nil {
			c.Logger.Warn("batch: cancelled",
				"processed", i, "total", len(turns))
			return all
		}

		conversationID := strconv.Itoa(startingID + i)

		items, err := c.Extractor.Extract(ctx, turn, conversationID)
		if err != nil {
			c.Logger.Warn("batch: turn extraction failed, skipping",
				"conversation_id", conversationID,
				"err", err,
			)
			continue
		}
		all = append(all, items...)

		if i < len(turns)-1 && c.pacing() > 0 {
			select {
			case <-ctx.Done():
				c.Logger.Warn("batch: cancelled during pacing",
					"processed", i+1, "total", len(turns))
				return all
			case <-time.After(c.pacing()):
			}
		}
	}

	c.Logger.Info("batch: extraction complete",
		"turns", len(turns), "items", len(all))
	return all
}

// pacing returns the effective inter-turn delay: zero when the extractor
// reports it runs purely on local rules.
func (c *BatchCoordinator) pacing() time.Duration {
	if r, ok := c.Extractor.(generativeReporter); ok && !r.Generative() {
		return 0
	}
	return c.Pacing
}
