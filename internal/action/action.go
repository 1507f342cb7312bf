// Package action routes named user actions through a stack of handlers.
//
// Handlers are consulted innermost first. A handler that does not act on an
// action returns Propagate so the next handler out gets a chance.
package action

import (
	"context"
	"fmt"
	"sync"

	"github.com/zjrosen/panekit/internal/log"
)

// Name identifies an action, namespaced as "scope::Verb".
type Name string

const (
	CloseActivePaneItem Name = "workspace::CloseActivePaneItem"
	SplitRight          Name = "workspace::SplitRight"
	SplitDown           Name = "workspace::SplitDown"
	ClosePane           Name = "workspace::ClosePane"
	FocusNextPane       Name = "workspace::FocusNextPane"
	FocusPrevPane       Name = "workspace::FocusPrevPane"
	Open                Name = "workspace::Open" // Arg is an absolute path
	ActivateNextItem    Name = "pane::ActivateNextItem"
	ActivatePrevItem    Name = "pane::ActivatePrevItem"
	OpenLog             Name = "app::OpenLog"
	Quit                Name = "app::Quit"
)

// Action is one dispatched request.
type Action struct {
	Name Name
	Arg  string
}

func (a Action) String() string {
	if a.Arg == "" {
		return string(a.Name)
	}
	return fmt.Sprintf("%s(%s)", a.Name, a.Arg)
}

// Result says whether a handler consumed an action.
type Result int

const (
	Propagate Result = iota
	Handled
)

func (r Result) String() string {
	if r == Handled {
		return "handled"
	}
	return "propagate"
}

// Handler acts on actions.
type Handler interface {
	HandleAction(ctx context.Context, a Action) (Result, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, a Action) (Result, error)

// HandleAction implements Handler.
func (f HandlerFunc) HandleAction(ctx context.Context, a Action) (Result, error) {
	return f(ctx, a)
}

// Dispatcher walks a handler stack, innermost first.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers []Handler
}

// NewDispatcher creates a dispatcher. handlers are given outermost first,
// the way they would be pushed.
func NewDispatcher(handlers ...Handler) *Dispatcher {
	d := &Dispatcher{}
	for _, h := range handlers {
		d.Push(h)
	}
	return d
}

// Push adds h as the new innermost handler.
func (d *Dispatcher) Push(h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers = append(d.handlers, h)
}

// Dispatch offers a to each handler until one handles it or fails. It
// returns Propagate when no handler acted.
func (d *Dispatcher) Dispatch(ctx context.Context, a Action) (Result, error) {
	d.mu.RLock()
	handlers := make([]Handler, len(d.handlers))
	copy(handlers, d.handlers)
	d.mu.RUnlock()

	for i := len(handlers) - 1; i >= 0; i-- {
		res, err := handlers[i].HandleAction(ctx, a)
		if err != nil {
			log.ErrorErr(log.CatAction, "action failed", err, "action", a, "depth", len(handlers)-1-i)
			return Handled, fmt.Errorf("%s: %w", a.Name, err)
		}
		if res == Handled {
			log.Debug(log.CatAction, "action handled", "action", a, "depth", len(handlers)-1-i)
			return Handled, nil
		}
	}
	log.Debug(log.CatAction, "action unhandled", "action", a)
	return Propagate, nil
}
