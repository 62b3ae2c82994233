package notify

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"

	"namelease/pkg/requestcontext"
)

// DefaultBuffer is the inbox capacity used when the caller does not pick one.
const DefaultBuffer = 1024

// Publisher accepts events from mutations and hands them to the drain
// worker over a buffered inbox. Emit never blocks: when the inbox is full
// the event is dropped and counted rather than stalling the caller.
type Publisher struct {
	inbox   chan Event
	logger  *slog.Logger
	dropped atomic.Uint64
}

// PublisherOption configures optional publisher dependencies.
type PublisherOption func(*Publisher)

// WithPublisherLogger sets the logger used for drop warnings.
func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// NewPublisher creates a publisher with an inbox of the given capacity.
// A non-positive capacity falls back to DefaultBuffer.
func NewPublisher(buffer int, opts ...PublisherOption) *Publisher {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}

	p := &Publisher{
		inbox:  make(chan Event, buffer),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit stamps the event and enqueues it for delivery. Missing IDs are
// assigned and a zero At is filled from the request clock so the event
// carries the same instant the mutation observed.
func (p *Publisher) Emit(ctx context.Context, event Event) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.At.IsZero() {
		event.At = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}

	select {
	case p.inbox <- event:
	default:
		p.dropped.Add(1)
		p.logger.WarnContext(ctx, "notification dropped, inbox full",
			slog.String("event_type", string(event.Type)),
			slog.String("name", event.Name),
			slog.Uint64("dropped_total", p.dropped.Load()),
		)
	}
}

// Inbox exposes the receive side for the drain worker.
func (p *Publisher) Inbox() <-chan Event {
	return p.inbox
}

// Dropped reports how many events were discarded because the inbox was full.
func (p *Publisher) Dropped() uint64 {
	return p.dropped.Load()
}

// Close closes the inbox. The drain worker finishes the buffered events and
// exits. Emit must not be called after Close.
func (p *Publisher) Close() {
	close(p.inbox)
}
