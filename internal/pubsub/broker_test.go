package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func receive[T any](t *testing.T, ch <-chan Event[T]) Event[T] {
	t.Helper()
	select {
	case event, ok := <-ch:
		require.True(t, ok, "channel closed before event arrived")
		return event
	case <-time.After(time.Second):
		require.FailNow(t, "timeout waiting for event")
	}
	return Event[T]{}
}

func TestBroker_Subscribe(t *testing.T) {
	broker := NewBroker[string]()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := broker.Subscribe(ctx)
	broker.Publish(PaneEvent, "item added")

	event := receive(t, ch)
	require.Equal(t, "item added", event.Payload)
	require.Equal(t, PaneEvent, event.Type)
	require.False(t, event.Timestamp.IsZero())
}

func TestBroker_FanOut(t *testing.T) {
	broker := NewBroker[int]()
	defer broker.Close()

	ctx := context.Background()
	subs := []<-chan Event[int]{
		broker.Subscribe(ctx),
		broker.Subscribe(ctx),
		broker.Subscribe(ctx),
	}
	require.Equal(t, 3, broker.SubscriberCount())

	broker.Publish(LayoutEvent, 7)

	for i, ch := range subs {
		event := receive(t, ch)
		require.Equal(t, 7, event.Payload, "subscriber %d", i)
		require.Equal(t, LayoutEvent, event.Type, "subscriber %d", i)
	}
}

func TestBroker_ContextCancellationUnsubscribes(t *testing.T) {
	broker := NewBroker[string]()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch := broker.Subscribe(ctx)
	require.Equal(t, 1, broker.SubscriberCount())

	cancel()
	require.Eventually(t, func() bool { return broker.SubscriberCount() == 0 }, time.Second, 5*time.Millisecond)

	_, ok := <-ch
	require.False(t, ok, "channel should be closed")
}

func TestBroker_FullSubscriberDropsInsteadOfBlocking(t *testing.T) {
	broker := NewBrokerWithBuffer[int](1)
	defer broker.Close()

	ch := broker.Subscribe(context.Background())
	broker.Publish(PaneEvent, 1)

	done := make(chan struct{})
	go func() {
		broker.Publish(PaneEvent, 2)
		broker.Publish(PaneEvent, 3)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		require.FailNow(t, "Publish blocked on a full subscriber")
	}

	require.Equal(t, 1, receive(t, ch).Payload)
	require.Equal(t, int64(2), broker.Dropped())
}

func TestBroker_BufferSizeFloor(t *testing.T) {
	broker := NewBrokerWithBuffer[int](0)
	defer broker.Close()

	ch := broker.Subscribe(context.Background())
	broker.Publish(PaneEvent, 42)
	require.Equal(t, 42, receive(t, ch).Payload)
}

func TestBroker_Close(t *testing.T) {
	broker := NewBroker[string]()
	ctx := context.Background()

	ch1 := broker.Subscribe(ctx)
	ch2 := broker.Subscribe(ctx)

	broker.Close()
	broker.Close()

	_, ok1 := <-ch1
	_, ok2 := <-ch2
	require.False(t, ok1)
	require.False(t, ok2)
	require.Equal(t, 0, broker.SubscriberCount())

	late := broker.Subscribe(ctx)
	_, ok := <-late
	require.False(t, ok, "subscribe after close returns a closed channel")

	broker.Publish(LogEvent, "ignored")
}
