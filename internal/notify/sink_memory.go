package notify

import (
	"context"
	"sync"
)

// MemorySink keeps the most recent events in a bounded ring. It backs tests
// and single-process deployments that only need a recent-events view; when
// the ring is full the oldest event is evicted.
type MemorySink struct {
	mu       sync.Mutex
	events   []Event
	head     int
	count    int
	capacity int
	evicted  uint64
}

// NewMemorySink creates a ring holding up to capacity events. A
// non-positive capacity falls back to DefaultBuffer.
func NewMemorySink(capacity int) *MemorySink {
	if capacity <= 0 {
		capacity = DefaultBuffer
	}
	return &MemorySink{
		events:   make([]Event, capacity),
		capacity: capacity,
	}
}

// Publish records the event, evicting the oldest when the ring is full.
func (s *MemorySink) Publish(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tail := (s.head + s.count) % s.capacity
	s.events[tail] = event
	if s.count == s.capacity {
		s.head = (s.head + 1) % s.capacity
		s.evicted++
	} else {
		s.count++
	}
	return nil
}

// Events returns the retained events oldest first.
func (s *MemorySink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Event, s.count)
	for i := 0; i < s.count; i++ {
		out[i] = s.events[(s.head+i)%s.capacity]
	}
	return out
}

// Len reports how many events the ring currently holds.
func (s *MemorySink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Evicted reports how many events were pushed out by newer ones.
func (s *MemorySink) Evicted() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evicted
}

// Close is a no-op; the ring needs no teardown.
func (s *MemorySink) Close() error {
	return nil
}
