package kvstore

import (
	"context"
	"sync"

	appErrors "github.com/noah-isme/mindsetu-api/pkg/errors"
)

// MemoryStore is a map-backed store for tests and local development. Values
// are copied on read and write so callers never share backing arrays.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Get returns the value stored under key.
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.data[key]
	if !ok {
		return nil, appErrors.ErrKeyMiss
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, nil
}

// Set stores the value under key.
func (s *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]byte, len(value))
	copy(stored, value)
	s.data[key] = stored
	return nil
}
