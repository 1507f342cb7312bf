// Package workspace coordinates the pane tree of one window: opening project
// content as pane items, deduplicating already-open entries, and moving
// focus between items and panes.
//
// All workspace state is owned by a single update loop (see Run). Public
// methods that read or change state submit a closure to that loop and wait
// for it; project resolution and loading happen on the caller's goroutine
// before anything is submitted, so a slow load never blocks other updates.
package workspace

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/panekit/internal/item"
	"github.com/zjrosen/panekit/internal/log"
	"github.com/zjrosen/panekit/internal/pane"
	"github.com/zjrosen/panekit/internal/project"
	"github.com/zjrosen/panekit/internal/pubsub"
	"github.com/zjrosen/panekit/internal/registry"
	"github.com/zjrosen/panekit/internal/tracing"
)

var (
	// ErrClosed is returned once the update loop has stopped.
	ErrClosed = errors.New("workspace closed")
	// ErrNilItem is returned when a nil model or item is opened or added.
	ErrNilItem = errors.New("item cannot be nil")
	// ErrPaneNotFound is returned for pane ids that are not in the tree.
	ErrPaneNotFound = pane.ErrPaneNotFound
)

// LayoutChanged is published on LayoutEvent when panes are added, removed or
// focused.
type LayoutChanged struct {
	ActivePane pane.ID
	Panes      int
}

// Option configures a Workspace.
type Option func(*Workspace)

// WithRegistry sets the item registry. Defaults to registry.Default().
func WithRegistry(r *registry.Registry) Option {
	return func(w *Workspace) {
		w.registry = r
	}
}

// WithEvents publishes pane and layout events on bus. Without it the
// workspace creates its own broker, closed by Close.
func WithEvents(bus *pubsub.Broker[any]) Option {
	return func(w *Workspace) {
		w.events = bus
	}
}

// WithTracer records workspace.open and workspace.update spans.
func WithTracer(t trace.Tracer) Option {
	return func(w *Workspace) {
		w.tracer = t
	}
}

// WithQueueCapacity sets the update queue buffer size.
func WithQueueCapacity(n int) Option {
	return func(w *Workspace) {
		w.queueCapacity = n
	}
}

// WithMiddleware adds update middleware after the built-in logging and
// tracing middleware.
func WithMiddleware(mw ...Middleware) Option {
	return func(w *Workspace) {
		w.middleware = append(w.middleware, mw...)
	}
}

// Workspace is a tree of panes over one project.
type Workspace struct {
	id       string
	project  project.Project
	registry *registry.Registry
	events   *pubsub.Broker[any]
	ownsBus  bool
	tracer   trace.Tracer

	queueCapacity int
	middleware    []Middleware
	updates       *updater

	// Owned by the update loop.
	tree         *pane.Tree
	nextPaneID   pane.ID
	activePaneID pane.ID
}

var _ item.Host = (*Workspace)(nil)

// New creates a workspace with a single empty pane (id 0). Call Run or
// Start before using it.
func New(proj project.Project, opts ...Option) *Workspace {
	w := &Workspace{
		id:            uuid.NewString(),
		project:       proj,
		queueCapacity: DefaultQueueCapacity,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.registry == nil {
		w.registry = registry.Default()
	}
	if w.events == nil {
		w.events = pubsub.NewBroker[any]()
		w.ownsBus = true
	}
	if w.tracer == nil {
		w.tracer = noop.NewTracerProvider().Tracer("workspace")
	}

	mw := append([]Middleware{LoggingMiddleware(), TracingMiddleware(w.tracer)}, w.middleware...)
	w.updates = newUpdater(w.queueCapacity, mw...)

	w.tree = pane.NewTree(w.newPane(0))
	w.nextPaneID = 1
	w.activePaneID = 0
	return w
}

// ID implements item.Host.
func (w *Workspace) ID() string {
	return w.id
}

// Project implements item.Host.
func (w *Workspace) Project() project.Project {
	return w.project
}

// Registry returns the registry items are built from.
func (w *Workspace) Registry() *registry.Registry {
	return w.registry
}

// Run processes updates until ctx ends or Close is called. It blocks.
func (w *Workspace) Run(ctx context.Context) {
	log.Info(log.CatWorkspace, "workspace started", "workspace", w.id)
	w.updates.run(ctx)
	log.Info(log.CatWorkspace, "workspace stopped", "workspace", w.id)
}

// Start runs the update loop in the background and waits until it accepts
// updates.
func (w *Workspace) Start(ctx context.Context) error {
	go w.Run(ctx)
	return w.updates.waitForReady(ctx)
}

// Close stops the update loop. Pending updates fail with ErrClosed.
func (w *Workspace) Close() {
	w.updates.stop()
	if w.ownsBus {
		w.events.Close()
	}
}

// Subscribe implements pubsub.Subscriber: pane events (pane.Event on
// PaneEvent) and layout events (LayoutChanged on LayoutEvent).
func (w *Workspace) Subscribe(ctx context.Context) <-chan pubsub.Event[any] {
	return w.events.Subscribe(ctx)
}

// OpenAbsPath resolves locator in the project and opens it.
func (w *Workspace) OpenAbsPath(ctx context.Context, locator string) (item.ProjectItem, error) {
	ctx, span := w.tracer.Start(ctx, tracing.SpanWorkspaceOpen,
		trace.WithAttributes(
			attribute.String(tracing.AttrWorkspaceID, w.id),
			attribute.String(tracing.AttrLocator, locator),
		))
	defer span.End()

	p, err := w.project.ResolveAbsPath(ctx, locator)
	if err != nil {
		return nil, w.openFailed(span, "resolve failed", err, "locator", locator)
	}
	span.AddEvent(tracing.EventResolved, trace.WithAttributes(attribute.String(tracing.AttrProjectPath, p.String())))
	return w.open(ctx, span, p)
}

// Open loads the model at p and opens it.
func (w *Workspace) Open(ctx context.Context, p project.Path) (item.ProjectItem, error) {
	ctx, span := w.tracer.Start(ctx, tracing.SpanWorkspaceOpen,
		trace.WithAttributes(
			attribute.String(tracing.AttrWorkspaceID, w.id),
			attribute.String(tracing.AttrProjectPath, p.String()),
		))
	defer span.End()
	return w.open(ctx, span, p)
}

func (w *Workspace) open(ctx context.Context, span trace.Span, p project.Path) (item.ProjectItem, error) {
	model, err := w.project.Open(ctx, p)
	if err != nil {
		return nil, w.openFailed(span, "load failed", err, "path", p)
	}
	span.AddEvent(tracing.EventLoaded)

	it, deduped, err := w.openItem(ctx, model)
	if err != nil {
		return nil, w.openFailed(span, "open item failed", err, "path", p)
	}
	span.SetAttributes(
		attribute.Bool(tracing.AttrDeduped, deduped),
		attribute.String(tracing.AttrItemKind, registry.KindOf(it).String()),
	)
	span.SetStatus(codes.Ok, "")
	return it, nil
}

func (w *Workspace) openFailed(span trace.Span, msg string, err error, fields ...any) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		log.Debug(log.CatWorkspace, msg, append(fields, "error", err)...)
	} else {
		log.Warn(log.CatWorkspace, msg, append(fields, "error", err)...)
	}
	return err
}

// OpenItem shows model in the active pane. If the pane already holds an
// item for the same entry, that item is activated and returned; otherwise a
// new item is built through the registry, appended and activated. The check
// and the insert happen in one update, so concurrent opens of one entry
// produce a single item.
func (w *Workspace) OpenItem(ctx context.Context, model project.Item) (item.ProjectItem, error) {
	it, _, err := w.openItem(ctx, model)
	return it, err
}

func (w *Workspace) openItem(ctx context.Context, model project.Item) (item.ProjectItem, bool, error) {
	if model == nil {
		return nil, false, ErrNilItem
	}
	var (
		result  item.ProjectItem
		deduped bool
	)
	err := w.updates.submitAndWait(ctx, "open_item", func(ctx context.Context) error {
		p := w.activePane()
		if existing, ok := p.ActivateProjectItem(w.registry, model); ok {
			result, deduped = existing, true
			trace.SpanFromContext(ctx).AddEvent(tracing.EventItemReused)
			return nil
		}

		built, err := w.registry.Build(w, model)
		if err != nil {
			return err
		}
		p.AddItem(built)
		if last := p.Len() - 1; p.ActiveIndex() != last {
			p.ActivateItem(last)
		}
		result = built
		trace.SpanFromContext(ctx).AddEvent(tracing.EventItemBuilt,
			trace.WithAttributes(attribute.Int(tracing.AttrPaneID, int(p.ID()))))
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return result, deduped, nil
}

// AddItem appends a non-project item (a log view, say) to the active pane
// and activates it.
func (w *Workspace) AddItem(ctx context.Context, it item.PaneItem) error {
	if it == nil {
		return ErrNilItem
	}
	return w.updates.submitAndWait(ctx, "add_item", func(context.Context) error {
		p := w.activePane()
		p.AddItem(it)
		if last := p.Len() - 1; p.ActiveIndex() != last {
			p.ActivateItem(last)
		}
		return nil
	})
}

// ShowItem activates it when the active pane already holds that exact item,
// and adds it otherwise.
func (w *Workspace) ShowItem(ctx context.Context, it item.PaneItem) error {
	if it == nil {
		return ErrNilItem
	}
	return w.updates.submitAndWait(ctx, "show_item", func(context.Context) error {
		p := w.activePane()
		if ix := p.IndexOf(it); ix >= 0 {
			if p.ActiveIndex() != ix {
				p.ActivateItem(ix)
			}
			return nil
		}
		p.AddItem(it)
		if last := p.Len() - 1; p.ActiveIndex() != last {
			p.ActivateItem(last)
		}
		return nil
	})
}

// CloseActivePaneItem closes the active item of the active pane. It reports
// false when the pane is empty, leaving the action to an outer handler.
func (w *Workspace) CloseActivePaneItem(ctx context.Context) (bool, error) {
	var closed bool
	err := w.updates.submitAndWait(ctx, "close_active_item", func(context.Context) error {
		closed = w.activePane().CloseActiveItem()
		return nil
	})
	return closed, err
}

// ActivateItem activates the item at index in the active pane.
func (w *Workspace) ActivateItem(ctx context.Context, index int) (bool, error) {
	var ok bool
	err := w.updates.submitAndWait(ctx, "activate_item", func(context.Context) error {
		ok = w.activePane().ActivateItem(index)
		return nil
	})
	return ok, err
}

// CycleItem moves the active item of the active pane by delta, wrapping
// around. It reports false for an empty pane.
func (w *Workspace) CycleItem(ctx context.Context, delta int) (bool, error) {
	var ok bool
	err := w.updates.submitAndWait(ctx, "cycle_item", func(context.Context) error {
		p := w.activePane()
		n := p.Len()
		if n == 0 {
			return nil
		}
		ok = p.ActivateItem(wrap(p.ActiveIndex()+delta, n))
		return nil
	})
	return ok, err
}

// SplitActivePane adds a new empty pane next to the active one and focuses
// it. It returns the new pane's id.
func (w *Workspace) SplitActivePane(ctx context.Context, orientation pane.Orientation) (pane.ID, error) {
	var id pane.ID
	err := w.updates.submitAndWait(ctx, "split_pane", func(context.Context) error {
		np := w.newPane(w.nextPaneID)
		if err := w.tree.Split(w.activePaneID, np, orientation); err != nil {
			return err
		}
		w.nextPaneID++
		w.activePaneID = np.ID()
		id = np.ID()
		w.layoutChanged()
		return nil
	})
	return id, err
}

// ActivatePane focuses the pane with the given id.
func (w *Workspace) ActivatePane(ctx context.Context, id pane.ID) error {
	return w.updates.submitAndWait(ctx, "activate_pane", func(context.Context) error {
		if _, ok := w.tree.FindPane(id); !ok {
			return fmt.Errorf("%w: %d", ErrPaneNotFound, id)
		}
		if w.activePaneID != id {
			w.activePaneID = id
			w.layoutChanged()
		}
		return nil
	})
}

// CyclePane moves focus by delta panes in depth-first order, wrapping
// around.
func (w *Workspace) CyclePane(ctx context.Context, delta int) (pane.ID, error) {
	var id pane.ID
	err := w.updates.submitAndWait(ctx, "cycle_pane", func(context.Context) error {
		panes := w.tree.Panes()
		for i, p := range panes {
			if p.ID() == w.activePaneID {
				id = panes[wrap(i+delta, len(panes))].ID()
				break
			}
		}
		if id != w.activePaneID {
			w.activePaneID = id
			w.layoutChanged()
		}
		return nil
	})
	return id, err
}

// ClosePane removes a pane and its items. Focus moves to a neighbouring
// pane when the closed pane was active. The last pane cannot be closed
// (pane.ErrLastPane).
func (w *Workspace) ClosePane(ctx context.Context, id pane.ID) error {
	return w.updates.submitAndWait(ctx, "close_pane", func(context.Context) error {
		return w.removePane(id)
	})
}

// CloseActivePane closes the focused pane.
func (w *Workspace) CloseActivePane(ctx context.Context) error {
	return w.updates.submitAndWait(ctx, "close_active_pane", func(context.Context) error {
		return w.removePane(w.activePaneID)
	})
}

// CloseActivePaneIfEmpty closes the focused pane only if it holds no items,
// checking and removing in one update. It reports false when the pane has
// items, and fails with pane.ErrLastPane for the last pane.
func (w *Workspace) CloseActivePaneIfEmpty(ctx context.Context) (bool, error) {
	var closed bool
	err := w.updates.submitAndWait(ctx, "close_active_pane_if_empty", func(context.Context) error {
		if w.activePane().Len() > 0 {
			return nil
		}
		if err := w.removePane(w.activePaneID); err != nil {
			return err
		}
		closed = true
		return nil
	})
	return closed, err
}

func (w *Workspace) removePane(id pane.ID) error {
	neighbor, hasNeighbor := w.tree.Neighbor(id)
	if err := w.tree.Remove(id); err != nil {
		return err
	}
	if w.activePaneID == id && hasNeighbor {
		w.activePaneID = neighbor.ID()
	}
	w.layoutChanged()
	return nil
}

// ActivePaneID returns the focused pane's id.
func (w *Workspace) ActivePaneID(ctx context.Context) (pane.ID, error) {
	var id pane.ID
	err := w.updates.submitAndWait(ctx, "active_pane", func(context.Context) error {
		id = w.activePaneID
		return nil
	})
	return id, err
}

// ActiveItem returns the active item of the active pane, or false when that
// pane is empty.
func (w *Workspace) ActiveItem(ctx context.Context) (item.PaneItem, bool, error) {
	var (
		it item.PaneItem
		ok bool
	)
	err := w.updates.submitAndWait(ctx, "active_item", func(context.Context) error {
		it, ok = w.activePane().ActiveItem()
		return nil
	})
	return it, ok, err
}

// activePane must only be called on the update loop.
func (w *Workspace) activePane() *pane.Pane {
	if p, ok := w.tree.FindPane(w.activePaneID); ok {
		return p
	}
	// Every tree-changing update keeps activePaneID valid; recover anyway.
	first := w.tree.Panes()[0]
	log.Error(log.CatWorkspace, "active pane missing, refocusing", "missing", w.activePaneID, "pane", first.ID())
	w.activePaneID = first.ID()
	return first
}

func (w *Workspace) newPane(id pane.ID) *pane.Pane {
	return pane.New(id, pane.WithEvents(w.events))
}

func (w *Workspace) layoutChanged() {
	panes := len(w.tree.Panes())
	log.Debug(log.CatWorkspace, "layout changed", "active_pane", w.activePaneID, "panes", panes)
	w.events.Publish(pubsub.LayoutEvent, LayoutChanged{ActivePane: w.activePaneID, Panes: panes})
}

func wrap(i, n int) int {
	return ((i % n) + n) % n
}
