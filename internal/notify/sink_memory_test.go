package notify

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySink_EvictsOldest(t *testing.T) {
	sink := NewMemorySink(2)
	ctx := context.Background()

	for i := range 3 {
		err := sink.Publish(ctx, Event{
			Type: EventDomainRegistered,
			Name: fmt.Sprintf("domain%d.test", i),
		})
		require.NoError(t, err)
	}

	events := sink.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "domain1.test", events[0].Name)
	assert.Equal(t, "domain2.test", events[1].Name)
	assert.Equal(t, uint64(1), sink.Evicted())
	assert.Equal(t, 2, sink.Len())
}

func TestMemorySink_EventsCopiesOut(t *testing.T) {
	sink := NewMemorySink(4)
	require.NoError(t, sink.Publish(context.Background(), Event{Type: EventPaused}))

	first := sink.Events()
	first[0].Type = EventUnpaused

	assert.Equal(t, EventPaused, sink.Events()[0].Type)
}
