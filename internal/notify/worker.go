package notify

import (
	"context"
	"log/slog"

	"namelease/pkg/platform/circuit"
)

// Sink delivers events somewhere durable or observable. Implementations
// must tolerate being called from a single goroutine only.
type Sink interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Worker drains a publisher inbox into a sink on a single goroutine,
// preserving the order mutations emitted in. A circuit breaker guards the
// sink: after a run of delivery failures the worker drops events instead
// of hammering a downstream that is already struggling.
type Worker struct {
	sink    Sink
	inbox   <-chan Event
	breaker *circuit.Breaker
	logger  *slog.Logger
}

// WorkerOption configures optional worker dependencies.
type WorkerOption func(*Worker)

// WithWorkerLogger sets the logger used for delivery failures.
func WithWorkerLogger(logger *slog.Logger) WorkerOption {
	return func(w *Worker) {
		w.logger = logger
	}
}

// WithWorkerBreaker replaces the default sink breaker, mainly to tune
// thresholds and cooldown.
func WithWorkerBreaker(breaker *circuit.Breaker) WorkerOption {
	return func(w *Worker) {
		w.breaker = breaker
	}
}

// NewWorker wires a drain worker to an inbox and sink.
func NewWorker(sink Sink, inbox <-chan Event, opts ...WorkerOption) *Worker {
	w := &Worker{
		sink:    sink,
		inbox:   inbox,
		breaker: circuit.New("notify-sink"),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run delivers events until the context is cancelled or the inbox closes.
// A failed delivery is logged and the event abandoned so one bad event
// cannot wedge the stream behind it. While the breaker is open, events are
// dropped outright except for one probe per cooldown window.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.inbox:
			if !ok {
				return nil
			}
			if !w.breaker.Allow() {
				w.logger.WarnContext(ctx, "notification dropped, sink circuit open",
					slog.String("event_type", string(event.Type)),
					slog.String("event_id", event.ID.String()),
				)
				continue
			}
			if err := w.sink.Publish(ctx, event); err != nil {
				w.logger.ErrorContext(ctx, "notification delivery failed",
					slog.String("event_type", string(event.Type)),
					slog.String("event_id", event.ID.String()),
					slog.String("error", err.Error()),
				)
				if _, change := w.breaker.RecordFailure(); change.Opened {
					w.logger.WarnContext(ctx, "sink circuit opened after repeated delivery failures",
						slog.String("sink", w.breaker.Name()),
					)
				}
				continue
			}
			if _, change := w.breaker.RecordSuccess(); change.Closed {
				w.logger.InfoContext(ctx, "sink circuit closed, deliveries resumed",
					slog.String("sink", w.breaker.Name()),
				)
			}
		}
	}
}
