// Package store provides lease and settings persistence. Every backend keeps
// the same contract: names are exact-match keys, absent records surface as
// sentinel.ErrNotFound, and writes are whole-record upserts (a lease is never
// deleted, only overwritten).
package store

import (
	"context"
	"sort"
	"sync"

	"namelease/internal/registrar/models"
	"namelease/pkg/platform/sentinel"
)

// MemoryStore keeps leases and settings in process memory. It is the default
// backend for tests and single-node development runs.
type MemoryStore struct {
	mu       sync.RWMutex
	leases   map[string]models.Lease
	settings *models.Settings
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		leases: make(map[string]models.Lease),
	}
}

// Find retrieves a lease by exact name match.
// Returns sentinel.ErrNotFound if no record exists.
func (s *MemoryStore) Find(_ context.Context, name string) (*models.Lease, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lease, ok := s.leases[name]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	// Return a copy so callers cannot mutate stored state.
	return &lease, nil
}

// Put upserts the whole lease record.
func (s *MemoryStore) Put(_ context.Context, lease *models.Lease) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leases[lease.Name] = *lease
	return nil
}

// LoadSettings retrieves the settings singleton.
// Returns sentinel.ErrNotFound until the registry has been seeded.
func (s *MemoryStore) LoadSettings(_ context.Context) (*models.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.settings == nil {
		return nil, sentinel.ErrNotFound
	}
	copied := *s.settings
	return &copied, nil
}

// SaveSettings upserts the settings singleton.
func (s *MemoryStore) SaveSettings(_ context.Context, settings *models.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *settings
	s.settings = &copied
	return nil
}

// DumpLeases returns every lease record ordered by name. Used by snapshot
// exports, never by request handling.
func (s *MemoryStore) DumpLeases(_ context.Context) ([]models.Lease, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Lease, 0, len(s.leases))
	for _, lease := range s.leases {
		out = append(out, lease)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
