// settings/memory.go
package settings

import (
	"context"
	"sync"
)

// MemoryStore keeps settings in memory. It is used in tests and by the CLI's
// "memory" backend for dry runs.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
	closed bool
}

// NewMemoryStore creates a store seeded with initial (which may be nil).
func NewMemoryStore(initial map[string]string) *MemoryStore {
	values := make(map[string]string, len(initial))
	for k, v := range initial {
		values[k] = v
	}
	return &MemoryStore{values: values}
}

// Get returns the value under key.
func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return "", ErrClosed
	}
	v, ok := s.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// Apply writes changes under one lock.
func (s *MemoryStore) Apply(_ context.Context, changes []Change) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	applyChanges(s.values, changes)
	return nil
}

// Values returns a copy of the stored map.
func (s *MemoryStore) Values() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Close marks the store closed.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func applyChanges(values map[string]string, changes []Change) {
	for _, c := range changes {
		if c.Value == nil {
			delete(values, c.Key)
			continue
		}
		values[c.Key] = *c.Value
	}
}
