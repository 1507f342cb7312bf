// Package item defines the capability interfaces for things shown in panes.
//
// PaneItem is the minimal displayable item every pane stores. ProjectItem is
// a strict superset for items backed by a project model; panes recover it on
// demand through the registry rather than by asserting on concrete types.
package item

import (
	"github.com/zjrosen/panekit/internal/project"
)

// PaneItem is anything a pane can display.
type PaneItem interface {
	Title() string
}

// ProjectItem is a pane item that wraps a project model.
type ProjectItem interface {
	PaneItem
	ProjectItem() project.Item
}

// Host is what an item constructor may use from the workspace creating it.
type Host interface {
	ID() string
	Project() project.Project
}

// Renderer is implemented by items that can draw their content into a
// width x height cell area.
type Renderer interface {
	Render(width, height int) string
}
