package eventbus

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus_SubscribePublish(t *testing.T) {
	bus := NewEventBus(nil)

	var seen Event
	bus.Subscribe(EventTypeSessionCreated, func(ctx context.Context, event Event) error {
		seen = event
		return nil
	})

	err := bus.Publish(context.Background(),
		NewBasicEventWithSource(EventTypeSessionCreated, "session-1", "auth"))

	require.NoError(t, err)
	require.NotNil(t, seen)
	assert.Equal(t, EventTypeSessionCreated, seen.Type())
	assert.Equal(t, "session-1", seen.Data())
	assert.Equal(t, "auth", seen.Source())
}

func TestEventBus_PublishWithoutHandlers(t *testing.T) {
	bus := NewEventBus(nil)
	err := bus.Publish(context.Background(), NewBasicEvent(EventTypeLoginFailed, "ghost@example.com"))
	assert.NoError(t, err)
}

func TestEventBus_AsyncPublish_FansOutToAllHandlers(t *testing.T) {
	bus := NewEventBusWithConfig(nil, BusConfig{AsyncProcessing: true})

	// Publish waits for the handler fan-out, so a plain counter is enough.
	var handled atomic.Int32
	for i := 0; i < 3; i++ {
		bus.Subscribe(EventTypeSessionRevoked, func(ctx context.Context, event Event) error {
			handled.Add(1)
			return nil
		})
	}

	err := bus.Publish(context.Background(), NewBasicEvent(EventTypeSessionRevoked, "session-1"))

	require.NoError(t, err)
	assert.Equal(t, int32(3), handled.Load())
}

func TestEventBus_RetriesFailingHandler(t *testing.T) {
	bus := NewEventBusWithConfig(nil, BusConfig{MaxRetries: 2, RetryDelay: time.Millisecond})

	var attempts atomic.Int32
	bus.Subscribe(EventTypeUserAuthenticated, func(ctx context.Context, event Event) error {
		if attempts.Add(1) < 3 {
			return errors.New("transient failure")
		}
		return nil
	})

	err := bus.Publish(context.Background(), NewBasicEvent(EventTypeUserAuthenticated, "user-1"))

	require.NoError(t, err)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestEventBus_ReportsExhaustedRetries(t *testing.T) {
	bus := NewEventBusWithConfig(nil, BusConfig{MaxRetries: 1, RetryDelay: time.Millisecond})

	bus.Subscribe(EventTypeUserLoggedOut, func(ctx context.Context, event Event) error {
		return errors.New("handler is broken")
	})

	err := bus.Publish(context.Background(), NewBasicEvent(EventTypeUserLoggedOut, "user-1"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 attempts")
}

func TestEventBus_Unsubscribe(t *testing.T) {
	bus := NewEventBus(nil)
	bus.Subscribe(EventTypeSessionCreated, func(ctx context.Context, event Event) error { return nil })
	assert.Equal(t, 1, bus.GetSubscriberCount(EventTypeSessionCreated))

	bus.Unsubscribe(EventTypeSessionCreated)
	assert.Equal(t, 0, bus.GetSubscriberCount(EventTypeSessionCreated))
}

func TestEventBus_GetEventTypes(t *testing.T) {
	bus := NewEventBus(nil)
	bus.Subscribe(EventTypeSessionCreated, func(ctx context.Context, event Event) error { return nil })
	bus.Subscribe(EventTypeLoginFailed, func(ctx context.Context, event Event) error { return nil })

	types := bus.GetEventTypes()
	assert.Contains(t, types, EventTypeSessionCreated)
	assert.Contains(t, types, EventTypeLoginFailed)
}

func TestEventBus_PublishAndForget(t *testing.T) {
	bus := NewEventBus(nil)

	var wg sync.WaitGroup
	wg.Add(1)
	bus.Subscribe(EventTypeSessionRevoked, func(ctx context.Context, event Event) error {
		wg.Done()
		return nil
	})

	bus.PublishAndForget(context.Background(), NewBasicEvent(EventTypeSessionRevoked, "session-1"))

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for PublishAndForget delivery")
	}
}
