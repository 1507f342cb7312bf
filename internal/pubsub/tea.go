package pubsub

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// ListenCmd returns a tea.Cmd that blocks for the next event on ch and hands
// it to the update loop as a tea.Msg. It yields nil once ctx ends or ch closes.
func ListenCmd[T any](ctx context.Context, ch <-chan Event[T]) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-ch:
			if !ok {
				return nil
			}
			return event
		}
	}
}

// ContinuousListener keeps one subscription alive across Update calls.
// Call Listen again after handling each event to keep receiving.
type ContinuousListener[T any] struct {
	ctx context.Context
	ch  <-chan Event[T]
}

// NewContinuousListener subscribes to sub for the lifetime of ctx.
func NewContinuousListener[T any](ctx context.Context, sub Subscriber[T]) *ContinuousListener[T] {
	return &ContinuousListener[T]{
		ctx: ctx,
		ch:  sub.Subscribe(ctx),
	}
}

// Listen returns a tea.Cmd that waits for the next event.
func (l *ContinuousListener[T]) Listen() tea.Cmd {
	return ListenCmd(l.ctx, l.ch)
}
