// Package pubsub provides the generic publish/subscribe plumbing that carries
// workspace, pane and log notifications to observers.
package pubsub

import (
	"context"
	"time"
)

// EventType classifies a published event.
type EventType string

const (
	// LogEvent carries a formatted log line.
	LogEvent EventType = "log"
	// PaneEvent carries an item-level change inside one pane.
	PaneEvent EventType = "pane"
	// LayoutEvent carries a change to the pane tree shape or the active pane.
	LayoutEvent EventType = "layout"
	// ProjectEvent carries a change reported by the backing project.
	ProjectEvent EventType = "project"
)

// Event is a published notification with a typed payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber hands out subscription channels.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher publishes payloads. Implementations never block the caller.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}
