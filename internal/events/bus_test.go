package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBus_PublishSubscribe(t *testing.T) {
	bus := NewBus(zap.NewNop())
	ch, cancel := bus.Subscribe()
	defer cancel()

	bus.Publish(context.Background(), Event{Type: TypeOrderPlaced, Message: "new order", EntityID: "ORD1"})

	select {
	case ev := <-ch:
		assert.Equal(t, TypeOrderPlaced, ev.Type)
		assert.Equal(t, "ORD1", ev.EntityID)
		assert.False(t, ev.At.IsZero())
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestBus_SlowSubscriberDoesNotBlock(t *testing.T) {
	bus := NewBus(zap.NewNop())
	_, cancel := bus.Subscribe()
	defer cancel()

	// Fill well past the buffer; Publish must never block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*3; i++ {
			bus.Publish(context.Background(), Event{Type: TypeMessageSent})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestBus_CancelStopsDelivery(t *testing.T) {
	bus := NewBus(zap.NewNop())
	ch, cancel := bus.Subscribe()
	cancel()
	cancel() // idempotent

	_, open := <-ch
	require.False(t, open)
}
