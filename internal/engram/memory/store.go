package memory

import (
	"context"
	"errors"
	"sync"
)

// ErrStoreUnavailable wraps load/save failures of the durable store. Ingest
// and consolidation surface it to their caller; retrieval degrades to an
// empty result instead, since "no memories" is a safe state.
var ErrStoreUnavailable = errors.New("memory: store unavailable")

// Store is the narrow persistence façade the engine reads and writes
// through. It owns no ranking, filtering, or business logic.
//
// Implementations must make SaveItems atomic with respect to concurrent
// LoadItems: a reader observes either none or all of a saved batch, never a
// partially written collection.
type Store interface {
	// SaveItems appends items to the user's persisted collection. Existing
	// items are never updated or dropped.
	SaveItems(ctx context.Context, userID string, items []Item) error

	// LoadItems returns the user's full item collection in insertion order.
	// A store with no record for the user returns an empty slice, not an
	// error.
	LoadItems(ctx context.Context, userID string) ([]Item, error)

	// SaveProfile overwrites the user's single profile record.
	SaveProfile(ctx context.Context, profile Profile) error

	// LoadProfile returns the user's profile, or nil without error when the
	// user has never been consolidated.
	LoadProfile(ctx context.Context, userID string) (*Profile, error)
}

// MemoryStore is an in-memory Store used as the test double and for
// ephemeral deployments. It is safe for concurrent use; all reads return
// copies so callers cannot mutate stored state.
type MemoryStore struct {
	mu       sync.Mutex
	items    map[string][]Item
	profiles map[string]Profile
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items:    make(map[string][]Item),
		profiles: make(map[string]Profile),
	}
}

func (s *MemoryStore) SaveItems(_ context.Context, userID string, items []Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[userID] = append(s.items[userID], items...)
	return nil
}

func (s *MemoryStore) LoadItems(_ context.Context, userID string) ([]Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := s.items[userID]
	out := make([]Item, len(stored))
	copy(out, stored)
	return out, nil
}

func (s *MemoryStore) SaveProfile(_ context.Context, profile Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profile.UserID] = profile
	return nil
}

func (s *MemoryStore) LoadProfile(_ context.Context, userID string) (*Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// Compile-time interface satisfaction check.
var _ Store = (*MemoryStore)(nil)
