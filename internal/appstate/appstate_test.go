package appstate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus_PublishDeliversToSubscribers(t *testing.T) {
	bus := NewEventBus()
	ch, unsubscribe := bus.Subscribe(4)
	defer unsubscribe()

	assert.Equal(t, 1, bus.SubscriberCount())
	bus.Publish(Event{Kind: EventIndexingStatus, RequestID: "r1"})

	select {
	case ev := <-ch:
		assert.Equal(t, EventIndexingStatus, ev.Kind)
		assert.Equal(t, "r1", ev.RequestID)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestEventBus_UnsubscribeStopsDelivery(t *testing.T) {
	bus := NewEventBus()
	_, unsubscribe := bus.Subscribe(1)
	unsubscribe()
	assert.Equal(t, 0, bus.SubscriberCount())
	// Publishing after unsubscribe must not panic.
	bus.Publish(Event{Kind: EventProposalChanged})
}

func TestEventBus_FullBufferDropsRatherThanBlocks(t *testing.T) {
	bus := NewEventBus()
	ch, unsubscribe := bus.Subscribe(1)
	defer unsubscribe()

	bus.Publish(Event{Kind: EventToolCallRequested, RequestID: "a"})
	bus.Publish(Event{Kind: EventToolCallRequested, RequestID: "b"})

	first := <-ch
	assert.Equal(t, "a", first.RequestID)
	select {
	case <-ch:
		t.Fatal("expected only one buffered event to survive")
	default:
	}
}

func TestManager_MutateIsSerializedAndVisible(t *testing.T) {
	state := New(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	mgr := NewManager(ctx, state)

	err := mgr.Mutate(ctx, func(s *AppState) {
		s.Chat.Append(ChatMessage{ID: "1", Role: "user", Content: "hi"})
	})
	require.NoError(t, err)

	msgs := state.Chat.Snapshot()
	require.Len(t, msgs, 1)
	assert.Equal(t, "hi", msgs[0].Content)
}
