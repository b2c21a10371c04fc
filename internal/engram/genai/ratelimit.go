package genai

import (
	"sync"
	"time"
)

const (
	// DefaultRateLimit is the maximum number of generation calls allowed
	// per user per window when no explicit limit is configured.
	DefaultRateLimit = 30

	// defaultRateLimitWindow is the sliding window duration.
	defaultRateLimitWindow = time.Minute
)

// RateLimiter enforces a per-user sliding-window cap on generation calls.
// It holds the call timestamps for each user within the current window and
// prunes stale entries on every Allow call, keeping memory bounded to
// O(limit) entries per active user.
//
// RateLimiter is safe for concurrent use from multiple goroutines.
type RateLimiter struct {
	mu       sync.Mutex
	limit    int
	window   time.Duration
	counters map[string][]time.Time // userID → call timestamps in window
}

// NewRateLimiter returns a RateLimiter that allows at most limit calls per
// user within window. If limit ≤ 0 it defaults to DefaultRateLimit; if
// window ≤ 0 it defaults to one minute.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = DefaultRateLimit
	}
	if window <= 0 {
		window = defaultRateLimitWindow
	}
	return &RateLimiter{
		limit:    limit,
		window:   window,
		counters: make(map[string][]time.Time),
	}
}

// Allow reports whether the user may make another generation call right now,
// recording the call when permitted.
func (r *RateLimiter) Allow(userID string) bool {
	return r.allowAt(userID, time.Now())
}

// allowAt is the time-injectable core of Allow (for testing).
func (r *RateLimiter) allowAt(userID string, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := now.Add(-r.window)
	calls := r.counters[userID]

	// Prune timestamps that fell out of the window.
	kept := calls[:0]
	for _, t := range calls {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= r.limit {
		r.counters[userID] = kept
		return false
	}

	r.counters[userID] = append(kept, now)
	return true
}
