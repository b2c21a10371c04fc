// Package genai provides the text-generation capability used by the primary
// memory extraction strategy.
//
// The package deliberately exposes a single narrow interface: send one
// prompt, receive one textual payload. Interpretation of the payload (JSON
// shape validation, fallback on deviation) belongs to the caller; the
// provider only reports transport-level outcomes.
package genai

import (
	"context"
	"errors"
)

// ErrRateLimit is returned when the upstream API reports a rate-limiting
// condition (HTTP 429) or when the local per-user limiter denies a call.
// Callers should degrade to the rule-based extraction path rather than
// retrying immediately.
var ErrRateLimit = errors.New("genai: rate limit exceeded")

// Provider generates one completion per call.
//
// Implementations must be safe for concurrent use from multiple goroutines.
// When the provider is unavailable (network error, timeout), it returns a
// descriptive error; callers are expected to degrade gracefully to local
// rule-based extraction.
type Provider interface {
	// Complete sends the system and user prompts to the underlying model
	// and returns the raw textual payload of the first choice.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
