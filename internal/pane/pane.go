// Package pane implements panes (ordered item lists with an active cursor)
// and the recursive split tree that arranges them.
package pane

import (
	"reflect"
	"slices"

	"github.com/zjrosen/panekit/internal/item"
	"github.com/zjrosen/panekit/internal/log"
	"github.com/zjrosen/panekit/internal/project"
	"github.com/zjrosen/panekit/internal/pubsub"
)

// ID identifies a pane. IDs are unique within one tree.
type ID int

// Converter recovers the project-item view of a stored pane item.
// *registry.Registry satisfies it.
type Converter interface {
	ToProjectItem(item.PaneItem) (item.ProjectItem, bool)
}

// Pane owns an ordered list of items and tracks which one is active.
//
// After CloseActiveItem removes the last item in the list the raw active
// index can point one past the end; ActiveIndex and ActiveItem clamp it.
type Pane struct {
	id     ID
	items  []item.PaneItem
	active int
	events pubsub.Publisher[any]
}

// Option configures a Pane.
type Option func(*Pane)

// WithEvents publishes an Event for every change to pub.
func WithEvents(pub pubsub.Publisher[any]) Option {
	return func(p *Pane) {
		p.events = pub
	}
}

// New creates an empty pane.
func New(id ID, opts ...Option) *Pane {
	p := &Pane{id: id}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (*Pane) node() {}

// ID returns the pane's identifier.
func (p *Pane) ID() ID {
	return p.id
}

// Len returns the number of items.
func (p *Pane) Len() int {
	return len(p.items)
}

// Items returns a copy of the item list in display order.
func (p *Pane) Items() []item.PaneItem {
	out := make([]item.PaneItem, len(p.items))
	copy(out, p.items)
	return out
}

// ActiveIndex returns the active position, clamped into range. It returns -1
// for an empty pane.
func (p *Pane) ActiveIndex() int {
	if len(p.items) == 0 {
		return -1
	}
	return min(p.active, len(p.items)-1)
}

// ActiveItem returns the active item, or false when the pane is empty.
func (p *Pane) ActiveItem() (item.PaneItem, bool) {
	ix := p.ActiveIndex()
	if ix < 0 {
		return nil, false
	}
	return p.items[ix], true
}

// ActivateProjectItem looks for an item backed by the same entry as
// candidate. The first match, scanning left to right, becomes active and is
// returned. Nothing changes when there is no match or when candidate has no
// entry id, so content without a durable identity is never deduplicated.
// A nil candidate never matches.
func (p *Pane) ActivateProjectItem(conv Converter, candidate project.Item) (item.ProjectItem, bool) {
	if candidate == nil {
		return nil, false
	}
	want, ok := candidate.EntryID()
	if !ok {
		return nil, false
	}
	for ix, pi := range p.items {
		projectItem, ok := conv.ToProjectItem(pi)
		if !ok {
			continue
		}
		got, ok := projectItem.ProjectItem().EntryID()
		if !ok || got != want {
			continue
		}
		p.active = ix
		p.notify(ItemActivated, ix, pi)
		return projectItem, true
	}
	return nil, false
}

// AddItem appends it. The active index only moves when the pane was empty,
// in which case the new item becomes active.
func (p *Pane) AddItem(it item.PaneItem) {
	if len(p.items) == 0 {
		p.active = 0
	}
	p.items = append(p.items, it)
	p.notify(ItemAdded, len(p.items)-1, it)
}

// IndexOf returns the position of it, compared by identity, or -1. Items of
// non-comparable types never match.
func (p *Pane) IndexOf(it item.PaneItem) int {
	if it == nil || !reflect.TypeOf(it).Comparable() {
		return -1
	}
	for ix, pi := range p.items {
		if reflect.TypeOf(pi) == reflect.TypeOf(it) && pi == it {
			return ix
		}
	}
	return -1
}

// ActivateItem makes the item at index active. It reports false when index
// is out of range.
func (p *Pane) ActivateItem(index int) bool {
	if index < 0 || index >= len(p.items) {
		return false
	}
	p.active = index
	p.notify(ItemActivated, index, p.items[index])
	return true
}

// CloseActiveItem removes the active item and returns true. The numeric
// active index is left alone so it now names the following item. It returns
// false without changing anything when the pane is empty.
func (p *Pane) CloseActiveItem() bool {
	ix := p.ActiveIndex()
	if ix < 0 {
		return false
	}
	closed := p.items[ix]
	p.items = slices.Delete(p.items, ix, ix+1)
	p.active = ix
	p.notify(ItemClosed, ix, closed)
	return true
}

func (p *Pane) notify(kind EventKind, index int, it item.PaneItem) {
	log.Debug(log.CatPane, "pane changed", "pane", p.id, "kind", kind, "index", index, "items", len(p.items))
	if p.events == nil {
		return
	}
	p.events.Publish(pubsub.PaneEvent, Event{
		PaneID: p.id,
		Kind:   kind,
		Index:  index,
		Title:  it.Title(),
	})
}
