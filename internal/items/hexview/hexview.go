// Package hexview is the pane item for binary blobs.
package hexview

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/muesli/reflow/truncate"

	"github.com/zjrosen/panekit/internal/item"
	"github.com/zjrosen/panekit/internal/project"
	"github.com/zjrosen/panekit/internal/registry"
)

// Settings configures hex views.
type Settings struct {
	// MaxBytes caps how much of a blob is dumped.
	MaxBytes int `mapstructure:"max_bytes"`
}

// DefaultSettings dumps up to 64 KiB.
func DefaultSettings() Settings {
	return Settings{MaxBytes: 64 * 1024}
}

// View shows a *project.Blob as a hex dump.
type View struct {
	blob     *project.Blob
	settings Settings
}

var (
	_ item.ProjectItem = (*View)(nil)
	_ item.Renderer    = (*View)(nil)
)

// New creates a hex view of blob.
func New(_ item.Host, blob *project.Blob, settings Settings) *View {
	if settings.MaxBytes <= 0 {
		settings.MaxBytes = DefaultSettings().MaxBytes
	}
	return &View{blob: blob, settings: settings}
}

// Register makes the registry build hex views for blobs.
func Register(r *registry.Registry, settings Settings) {
	registry.Register(r, settings, New)
}

// Title implements item.PaneItem.
func (v *View) Title() string {
	return fmt.Sprintf("%s [%s]", v.blob.Path().Base(), v.blob.MimeType())
}

// ProjectItem implements item.ProjectItem.
func (v *View) ProjectItem() project.Item {
	return v.blob
}

// Dump returns the hex dump of the blob, up to MaxBytes.
func (v *View) Dump() string {
	data := v.blob.Bytes()
	if len(data) > v.settings.MaxBytes {
		data = data[:v.settings.MaxBytes]
	}
	return hex.Dump(data)
}

// Render keeps the first height-1 dump lines under a size header.
func (v *View) Render(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	header := fmt.Sprintf("%d bytes, %s", v.blob.Size(), v.blob.MimeType())
	lines := append([]string{header}, strings.Split(strings.TrimRight(v.Dump(), "\n"), "\n")...)
	if len(lines) > height {
		lines = lines[:height]
	}
	for i, l := range lines {
		lines[i] = truncate.String(l, uint(width)) //nolint:gosec // width > 0
	}
	return strings.Join(lines, "\n")
}
