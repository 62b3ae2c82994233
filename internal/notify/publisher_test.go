package notify

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "namelease/pkg/domain"
	"namelease/pkg/requestcontext"
)

func TestPublisher_StampsEvent(t *testing.T) {
	pub := NewPublisher(4)

	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), at)
	ctx = requestcontext.WithRequestID(ctx, "req-123")

	pub.Emit(ctx, Event{
		Type:   EventDomainRegistered,
		Name:   "example.test",
		Caller: id.NewAccountID(),
		Amount: 5000,
		Years:  5,
	})

	select {
	case event := <-pub.Inbox():
		assert.NotEqual(t, uuid.Nil, event.ID)
		assert.Equal(t, at, event.At)
		assert.Equal(t, "req-123", event.RequestID)
		assert.Equal(t, EventDomainRegistered, event.Type)
		assert.Equal(t, "example.test", event.Name)
	default:
		t.Fatal("expected a buffered event")
	}
}

func TestPublisher_PreservesExistingStamp(t *testing.T) {
	pub := NewPublisher(4)

	eventID := uuid.New()
	at := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	pub.Emit(context.Background(), Event{
		ID:   eventID,
		Type: EventPaused,
		At:   at,
	})

	event := <-pub.Inbox()
	assert.Equal(t, eventID, event.ID)
	assert.Equal(t, at, event.At)
}

func TestPublisher_DropsWhenFull(t *testing.T) {
	pub := NewPublisher(1)

	for range 5 {
		pub.Emit(context.Background(), Event{Type: EventPriceChanged, Price: 1200})
	}

	assert.Equal(t, uint64(4), pub.Dropped())
	assert.Len(t, pub.Inbox(), 1)
}

func TestPublisher_CloseStopsWorker(t *testing.T) {
	pub := NewPublisher(8)
	sink := NewMemorySink(8)
	worker := NewWorker(sink, pub.Inbox())

	pub.Emit(context.Background(), Event{Type: EventUnpaused})
	pub.Close()

	err := worker.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sink.Len())
}

func TestEvent_Key(t *testing.T) {
	lease := Event{Type: EventDomainRenewed, Name: "example.test"}
	assert.Equal(t, "example.test", lease.Key())

	registryWide := Event{Type: EventMultiplierChanged}
	assert.Equal(t, "multiplier_changed", registryWide.Key())
}
