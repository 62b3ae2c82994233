package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	id "namelease/pkg/domain"
)

// MemoryStore keeps the journal and balance in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	entries []Entry
	balance int64
}

// NewMemory constructs an empty in-memory ledger store.
func NewMemory() *MemoryStore {
	return &MemoryStore{}
}

// Append journals an entry and bumps the balance.
func (s *MemoryStore) Append(_ context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	s.balance += entry.Amount
	return nil
}

// PayoutAll zeroes the balance, journals the payout, and returns the amount.
func (s *MemoryStore) PayoutAll(_ context.Context, to id.AccountID, payoutID uuid.UUID, at time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	amount := s.balance
	if amount == 0 {
		return 0, nil
	}
	s.balance = 0
	s.entries = append(s.entries, Entry{
		ID:      payoutID,
		Kind:    KindPayout,
		Account: to,
		Amount:  -amount,
		At:      at,
	})
	return amount, nil
}

// Balance returns the current balance.
func (s *MemoryStore) Balance(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balance, nil
}

// Entries returns a copy of the journal. Test helper.
func (s *MemoryStore) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}
