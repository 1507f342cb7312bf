// Package registry maps model kinds to pane item constructors, and item kinds
// back to their project-item capability.
//
// Registrations happen at startup, one Register call per supported content
// kind. After that the workspace only reads: Build constructs new items and
// ToProjectItem recovers the model-backed view of a stored item.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/zjrosen/panekit/internal/item"
	"github.com/zjrosen/panekit/internal/log"
	"github.com/zjrosen/panekit/internal/project"
)

// ErrUnregisteredKind matches every *UnregisteredKindError.
var ErrUnregisteredKind = errors.New("no pane item registered for model kind")

// ErrNilModel is returned when Build is handed a nil model.
var ErrNilModel = errors.New("model cannot be nil")

// UnregisteredKindError names the model kind that has no builder.
type UnregisteredKindError struct {
	Kind Kind
}

func (e *UnregisteredKindError) Error() string {
	return fmt.Sprintf("%s: %s", ErrUnregisteredKind, e.Kind)
}

func (e *UnregisteredKindError) Is(target error) bool {
	return target == ErrUnregisteredKind
}

type buildFunc func(host item.Host, model project.Item) (item.ProjectItem, error)

type convertFunc func(item.PaneItem) (item.ProjectItem, bool)

// Registration describes one registered model kind / item kind pair.
type Registration struct {
	ModelKind Kind
	ItemKind  Kind
}

// Registry holds the builder and converter tables.
type Registry struct {
	mu         sync.RWMutex
	builders   map[Kind]buildFunc
	converters map[Kind]convertFunc
	pairs      map[Kind]Kind // model kind -> item kind
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		builders:   make(map[Kind]buildFunc),
		converters: make(map[Kind]convertFunc),
		pairs:      make(map[Kind]Kind),
	}
}

var defaultRegistry = New()

// Default returns the process-wide registry.
func Default() *Registry {
	return defaultRegistry
}

// Register records how to build a V for every model of kind M, and how to
// recover a V from a stored pane item. deps is handed to every ctor call.
//
// Registering the same model or item kind again replaces the earlier entry.
func Register[M project.Item, V item.ProjectItem, D any](r *Registry, deps D, ctor func(host item.Host, model M, deps D) V) {
	modelKind := KindFor[M]()
	itemKind := KindFor[V]()

	build := func(host item.Host, model project.Item) (item.ProjectItem, error) {
		m, ok := model.(M)
		if !ok {
			return nil, &UnregisteredKindError{Kind: KindOf(model)}
		}
		return ctor(host, m, deps), nil
	}
	convert := func(pi item.PaneItem) (item.ProjectItem, bool) {
		v, ok := pi.(V)
		if !ok {
			return nil, false
		}
		return v, true
	}

	r.mu.Lock()
	_, replaced := r.builders[modelKind]
	r.builders[modelKind] = build
	r.converters[itemKind] = convert
	r.pairs[modelKind] = itemKind
	r.mu.Unlock()

	if replaced {
		log.Warn(log.CatRegistry, "replaced existing registration", "model", modelKind, "item", itemKind)
	} else {
		log.Debug(log.CatRegistry, "registered item kind", "model", modelKind, "item", itemKind)
	}
}

// Build constructs a new item for model using the builder registered for
// the model's dynamic kind.
func (r *Registry) Build(host item.Host, model project.Item) (item.ProjectItem, error) {
	if model == nil {
		return nil, ErrNilModel
	}
	kind := KindOf(model)

	r.mu.RLock()
	build, ok := r.builders[kind]
	r.mu.RUnlock()
	if !ok {
		return nil, &UnregisteredKindError{Kind: kind}
	}
	return build(host, model)
}

// ToProjectItem returns the model-backed view of pi, or false when pi's kind
// was never registered as a project item kind.
func (r *Registry) ToProjectItem(pi item.PaneItem) (item.ProjectItem, bool) {
	if pi == nil {
		return nil, false
	}
	r.mu.RLock()
	convert, ok := r.converters[KindOf(pi)]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return convert(pi)
}

// Has reports whether a builder exists for kind.
func (r *Registry) Has(kind Kind) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.builders[kind]
	return ok
}

// Registrations lists the registered pairs sorted by model kind name.
func (r *Registry) Registrations() []Registration {
	r.mu.RLock()
	out := make([]Registration, 0, len(r.pairs))
	for model, it := range r.pairs {
		out = append(out, Registration{ModelKind: model, ItemKind: it})
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].ModelKind.String() < out[j].ModelKind.String()
	})
	return out
}
