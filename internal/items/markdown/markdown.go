// Package markdown is the pane item that previews markdown documents.
package markdown

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"

	"github.com/zjrosen/panekit/internal/item"
	"github.com/zjrosen/panekit/internal/log"
	"github.com/zjrosen/panekit/internal/project"
	"github.com/zjrosen/panekit/internal/registry"
)

// noMarginStyle drops glamour's document margins.
const noMarginStyle = `{
	"document": {
		"margin": 0,
		"block_prefix": "",
		"block_suffix": ""
	}
}`

// Settings configures previews.
type Settings struct {
	// Style is a glamour style name ("dark", "light", "notty", ...) or a
	// path to a JSON style file.
	Style string `mapstructure:"style"`
}

// DefaultSettings returns the dark style. A fixed style avoids the
// terminal background query glamour's auto style sends, whose reply leaks
// into bubbletea's input.
func DefaultSettings() Settings {
	return Settings{Style: "dark"}
}

// Preview renders a *project.Document.
type Preview struct {
	doc      *project.Document
	settings Settings

	mu       sync.Mutex
	renderer *glamour.TermRenderer
	width    int
}

var (
	_ item.ProjectItem = (*Preview)(nil)
	_ item.Renderer    = (*Preview)(nil)
)

// New creates a preview of doc.
func New(_ item.Host, doc *project.Document, settings Settings) *Preview {
	if settings.Style == "" {
		settings.Style = DefaultSettings().Style
	}
	return &Preview{doc: doc, settings: settings}
}

// Register makes the registry build previews for documents.
func Register(r *registry.Registry, settings Settings) {
	registry.Register(r, settings, New)
}

// Title implements item.PaneItem.
func (p *Preview) Title() string {
	return p.doc.Path().Base() + " (preview)"
}

// ProjectItem implements item.ProjectItem.
func (p *Preview) ProjectItem() project.Item {
	return p.doc
}

// Render word-wraps the rendered document to width and keeps the first
// height lines. When glamour fails the raw source is shown.
func (p *Preview) Render(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	out, err := p.render(width)
	if err != nil {
		log.ErrorErr(log.CatUI, "markdown render failed", err, "path", p.doc.Path())
		out = p.doc.Source()
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}

func (p *Preview) render(width int) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.renderer == nil || p.width != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithStylePath(p.settings.Style),
			glamour.WithStylesFromJSONBytes([]byte(noMarginStyle)),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return "", err
		}
		p.renderer, p.width = r, width
	}
	return p.renderer.Render(p.doc.Source())
}
