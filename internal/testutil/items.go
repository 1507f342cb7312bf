package testutil

import (
	"github.com/zjrosen/panekit/internal/item"
	"github.com/zjrosen/panekit/internal/project"
	"github.com/zjrosen/panekit/internal/registry"
)

// TextItem is a minimal project item over a *project.Buffer.
type TextItem struct {
	Host   item.Host
	Buffer *project.Buffer
}

// Title implements item.PaneItem.
func (t *TextItem) Title() string {
	if p := t.Buffer.Path(); p.Rel != "" {
		return p.Base()
	}
	return "untitled"
}

// ProjectItem implements item.ProjectItem.
func (t *TextItem) ProjectItem() project.Item {
	return t.Buffer
}

// Label is a plain pane item with no project model.
type Label string

// Title implements item.PaneItem.
func (l Label) Title() string {
	return string(l)
}

// NewRegistry returns a registry that builds *TextItem for buffers.
func NewRegistry() *registry.Registry {
	r := registry.New()
	registry.Register(r, struct{}{}, func(host item.Host, b *project.Buffer, _ struct{}) *TextItem {
		return &TextItem{Host: host, Buffer: b}
	})
	return r
}
