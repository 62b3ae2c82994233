// Package blob provides the archival object stores snapshot export writes
// to. Consumers declare their own narrow interface over these types; the
// package only ships concrete backends.
package blob

import (
	"context"
	"sync"

	dErrors "namelease/pkg/domain-errors"
)

// MemoryStore is an in-process object store for development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

// Put stores data under key, overwriting any previous object.
func (s *MemoryStore) Put(_ context.Context, key string, data []byte, _ string) error {
	if key == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "object key is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	buf := make([]byte, len(data))
	copy(buf, data)
	s.objects[key] = buf
	return nil
}

// Get returns the object stored under key.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.objects[key]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "object not found")
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	return buf, nil
}

// Len reports how many objects the store holds.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

// Close is a no-op; it exists so all backends share a lifecycle.
func (s *MemoryStore) Close() error {
	return nil
}
