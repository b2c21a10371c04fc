package genai

import "context"

// limitedProvider wraps a Provider behind a per-key sliding-window rate
// limiter. Calls denied by the limiter fail with ErrRateLimit without
// touching the network.
type limitedProvider struct {
	inner   Provider
	limiter *RateLimiter
	key     string
}

// Limited returns a Provider whose calls count against the given limiter
// under key (typically the user id the calls are made on behalf of).
// A nil limiter returns the provider unchanged.
func Limited(p Provider, limiter *RateLimiter, key string) Provider {
	if limiter == nil {
		return p
	}
	return &limitedProvider{inner: p, limiter: limiter, key: key}
}

func (l *limitedProvider) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if !l.limiter.Allow(l.key) {
		return "", ErrRateLimit
	}
	return l.inner.Complete(ctx, systemPrompt, userPrompt)
}
