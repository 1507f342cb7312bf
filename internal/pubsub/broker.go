package pubsub

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

const defaultBufferSize = 64

// Broker fans published events out to every live subscriber.
type Broker[T any] struct {
	mu         sync.RWMutex
	subs       map[chan Event[T]]struct{}
	done       chan struct{}
	bufferSize int
	dropped    atomic.Int64
}

// NewBroker creates a broker whose subscriber channels hold 64 events.
func NewBroker[T any]() *Broker[T] {
	return NewBrokerWithBuffer[T](defaultBufferSize)
}

// NewBrokerWithBuffer creates a broker with a custom subscriber buffer size.
func NewBrokerWithBuffer[T any](size int) *Broker[T] {
	if size < 1 {
		size = 1
	}
	return &Broker[T]{
		subs:       make(map[chan Event[T]]struct{}),
		done:       make(chan struct{}),
		bufferSize: size,
	}
}

// Subscribe returns a channel that receives every event published after the
// call. The channel is closed when ctx ends or the broker is closed.
func (b *Broker[T]) Subscribe(ctx context.Context) <-chan Event[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.isClosed() {
		ch := make(chan Event[T])
		close(ch)
		return ch
	}

	sub := make(chan Event[T], b.bufferSize)
	b.subs[sub] = struct{}{}

	go func() {
		select {
		case <-ctx.Done():
		case <-b.done:
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.isClosed() {
			return
		}
		delete(b.subs, sub)
		close(sub)
	}()

	return sub
}

// Publish delivers payload to all subscribers. A subscriber whose buffer is
// full misses the event; the miss is counted in Dropped.
func (b *Broker[T]) Publish(eventType EventType, payload T) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.isClosed() {
		return
	}

	event := Event[T]{
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now(),
	}
	for sub := range b.subs {
		select {
		case sub <- event:
		default:
			b.dropped.Add(1)
		}
	}
}

// Close closes every subscriber channel. Safe to call more than once.
func (b *Broker[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.isClosed() {
		return
	}
	close(b.done)
	for sub := range b.subs {
		close(sub)
	}
	b.subs = nil
}

// SubscriberCount returns the number of live subscriptions.
func (b *Broker[T]) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Dropped returns how many deliveries were skipped because a subscriber was full.
func (b *Broker[T]) Dropped() int64 {
	return b.dropped.Load()
}

// isClosed must be called with mu held.
func (b *Broker[T]) isClosed() bool {
	select {
	case <-b.done:
		return true
	default:
		return false
	}
}
