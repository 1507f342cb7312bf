// Package items registers the built-in pane item kinds.
package items

import (
	"github.com/zjrosen/panekit/internal/items/editor"
	"github.com/zjrosen/panekit/internal/items/hexview"
	"github.com/zjrosen/panekit/internal/items/markdown"
	"github.com/zjrosen/panekit/internal/registry"
)

// Settings groups the per-kind settings.
type Settings struct {
	Editor   editor.Settings   `mapstructure:"editor"`
	Markdown markdown.Settings `mapstructure:"markdown"`
	Hex      hexview.Settings  `mapstructure:"hex"`
}

// DefaultSettings returns every kind's defaults.
func DefaultSettings() Settings {
	return Settings{
		Editor:   editor.DefaultSettings(),
		Markdown: markdown.DefaultSettings(),
		Hex:      hexview.DefaultSettings(),
	}
}

// RegisterAll registers Buffer -> editor, Document -> markdown preview and
// Blob -> hex view.
func RegisterAll(r *registry.Registry, s Settings) {
	editor.Register(r, s.Editor)
	markdown.Register(r, s.Markdown)
	hexview.Register(r, s.Hex)
}
