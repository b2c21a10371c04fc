package memory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mcostea/engram/common/retry"
	"github.com/mcostea/engram/internal/engram/genai"
)

// extractionSystemPrompt instructs the model to return the fixed-shape
// extraction object. JSON mode on the provider side guarantees a single
// JSON object; the schema in payload.go guards the field shapes.
const extractionSystemPrompt = `You distill one conversation turn into structured memory.

Given the user and assistant messages, extract everything worth remembering
about the user long-term.

Respond ONLY with a JSON object of this exact shape (omit or leave empty any
array with nothing to report; every array element is a plain string):
{
  "facts":       ["factual statements about the user"],
  "preferences": ["things the user likes, dislikes, or prefers"],
  "emotions":    ["emotional statements the user expressed"],
  "topics":      ["normalized topic tags for this turn"],
  "entities":    ["named people, places, or things mentioned"],
  "questions":   ["questions the user asked"],
  "goals":       ["things the user wants, needs, or hopes to do"]
}

No markdown, no code fences, no commentary outside the JSON.`

// Extractor turns one conversation turn into zero or more memory items.
// Implementations must never panic; a returned error marks the whole turn
// as failed and the batch coordinator will log and skip it.
type Extractor interface {
	Extract(ctx context.Context, turn Turn, conversationID string) ([]Item, error)
}

// TurnExtractor is the production Extractor. When a text-generation provider
// is configured it runs the generative strategy first and falls back to the
// local rule-based strategy on any failure: transport errors, timeouts, rate
// limits, or a payload that deviates from the expected shape. Without a
// provider it runs the rule-based strategy directly.
//
// Extract itself never fails; degradation to rules is the answer to every
// primary-path problem.
type TurnExtractor struct {
	Provider genai.Provider // nil → rule-based extraction only
	Retry    retry.Config   // backoff for the generative call
	Logger   *slog.Logger
}

// NewTurnExtractor creates a TurnExtractor. provider may be nil to disable
// the generative strategy. If logger is nil, the default slog logger is used.
func NewTurnExtractor(provider genai.Provider, logger *slog.Logger) *TurnExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &TurnExtractor{
		Provider: provider,
		Retry: retry.Config{
			MaxAttempts:  2,
			InitialDelay: retry.DefaultConfig.InitialDelay,
			// Rate limits and malformed output do not heal on immediate retry.
			ShouldRetry: func(err error) bool {
				return !errors.Is(err, genai.ErrRateLimit)
			},
		},
		Logger: logger,
	}
}

// Generative reports whether the generative strategy is configured. The
// batch coordinator uses this to decide whether pacing between turns is
// needed.
func (e *TurnExtractor) Generative() bool {
	return e.Provider != nil
}

// Extract turns one conversation turn into memory items. A turn with an
// empty user or assistant half carries no extractable exchange and yields an
// empty result without error.
func (e *TurnExtractor) Extract(ctx context.Context, turn Turn, conversationID string) ([]Item, error) {
	if turn.UserText == "" || turn.AssistantText == "" {
		return nil, nil
	}

	if e.Provider == nil {
		return ruleExtract(turn, conversationID), nil
	}

	payload, err := e.generate(ctx, turn)
	if err != nil {
		e.Logger.Warn("extractor: generative strategy failed, using rules",
			"conversation_id", conversationID,
			"err", err,
		)
		return ruleExtract(turn, conversationID), nil
	}

	items := itemsFromPayload(payload, turn, conversationID)
	e.Logger.Debug("extractor: generative extraction succeeded",
		"conversation_id", conversationID,
		"items", len(items),
	)
	return items, nil
}

// generate runs the generative strategy: prompt, retry on transient failure,
// schema-validated parse.
func (e *TurnExtractor) generate(ctx context.Context, turn Turn) (Payload, error) {
	userPrompt := fmt.Sprintf("User: %s\nAssistant: %s", turn.UserText, turn.AssistantText)

	var raw string
	err := retry.Do(ctx, e.Retry, func() error {
		var callErr error
		raw, callErr = e.Provider.Complete(ctx, extractionSystemPrompt, userPrompt)
		return callErr
	})
	if err != nil {
		return Payload{}, err
	}

	return ParsePayload(raw)
}

// itemsFromPayload maps every non-empty payload entry to an item of the
// corresponding kind. The turn's topics and entities are shared context and
// are copied onto every item produced from the turn.
func itemsFromPayload(p Payload, turn Turn, conversationID string) []Item {
	topics := dropEmpty(p.Topics)
	entities := dropEmpty(p.Entities)

	var items []Item
	add := func(kind Kind, content string, sentiment Sentiment) {
		items = append(items, Item{
			ID:             NewItemID(turn.Timestamp),
			ConversationID: conversationID,
			Timestamp:      turn.Timestamp,
			Kind:           kind,
			Content:        content,
			Topics:         topics,
			Entities:       entities,
			Sentiment:      sentiment,
			Importance:     kind.Importance(),
		})
	}

	for _, content := range dropEmpty(p.Facts) {
		add(KindFact, content, SentimentNeutral)
	}
	for _, content := range dropEmpty(p.Preferences) {
		add(KindPreference, content, SentimentNeutral)
	}
	for _, content := range dropEmpty(p.Emotions) {
		add(KindEmotion, content, scoreSentiment(content))
	}
	for _, content := range dropEmpty(p.Questions) {
		add(KindQuestion, content, SentimentNeutral)
	}
	for _, content := range dropEmpty(p.Goals) {
		add(KindGoal, content, SentimentNeutral)
	}

	return items
}

func dropEmpty(values []string) []string {
	var kept []string
	for _, v := range values {
		if v != "" {
			kept = append(kept, v)
		}
	}
	return kept
}
