package blacklist

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process revocation list used in tests and as a
// fallback when Redis is unreachable at startup.  Entries are pruned
// lazily whenever the store is touched.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]time.Time // token digest -> expiry of the entry
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]time.Time)}
}

func (s *MemoryStore) Revoke(_ context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prune()
	s.entries[token] = time.Now().Add(ttl)
	return nil
}

func (s *MemoryStore) IsRevoked(_ context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prune()
	_, ok := s.entries[token]
	return ok, nil
}

// prune drops entries whose backing token has expired naturally.
// Callers must hold the mutex.
func (s *MemoryStore) prune() {
	now := time.Now()
	for k, exp := range s.entries {
		if now.After(exp) {
			delete(s.entries, k)
		}
	}
}
