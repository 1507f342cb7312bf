// Package editor is the pane item for text buffers.
package editor

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/zjrosen/panekit/internal/item"
	"github.com/zjrosen/panekit/internal/project"
	"github.com/zjrosen/panekit/internal/registry"
)

// Settings configures editors.
type Settings struct {
	TabWidth        int  `mapstructure:"tab_width"`
	ShowLineNumbers bool `mapstructure:"line_numbers"`
}

// DefaultSettings returns 4-column tabs with line numbers.
func DefaultSettings() Settings {
	return Settings{TabWidth: 4, ShowLineNumbers: true}
}

// Editor shows and edits a *project.Buffer.
type Editor struct {
	host     item.Host
	buffer   *project.Buffer
	settings Settings
}

var (
	_ item.ProjectItem = (*Editor)(nil)
	_ item.Renderer    = (*Editor)(nil)
)

// New creates an editor over buf.
func New(host item.Host, buf *project.Buffer, settings Settings) *Editor {
	if settings.TabWidth <= 0 {
		settings.TabWidth = DefaultSettings().TabWidth
	}
	return &Editor{host: host, buffer: buf, settings: settings}
}

// Register makes the registry build editors for buffers.
func Register(r *registry.Registry, settings Settings) {
	registry.Register(r, settings, New)
}

// Title is the file name, or "untitled", with a dot when modified.
func (e *Editor) Title() string {
	title := "untitled"
	if p := e.buffer.Path(); p.Rel != "" {
		title = p.Base()
	}
	if e.buffer.Dirty() {
		title += " ●"
	}
	return title
}

// ProjectItem implements item.ProjectItem.
func (e *Editor) ProjectItem() project.Item {
	return e.buffer
}

// Buffer returns the edited buffer.
func (e *Editor) Buffer() *project.Buffer {
	return e.buffer
}

// Host returns the workspace that created the editor.
func (e *Editor) Host() item.Host {
	return e.host
}

// Replace swaps the buffer text.
func (e *Editor) Replace(text string) {
	e.buffer.SetText(text)
}

// Changes counts characters inserted and deleted since the buffer was
// loaded.
func (e *Editor) Changes() (inserted, deleted int) {
	for _, d := range e.diffs() {
		n := len([]rune(d.Text))
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			inserted += n
		case diffmatchpatch.DiffDelete:
			deleted += n
		}
	}
	return inserted, deleted
}

// Patch returns the unsaved changes as patch text, empty when clean.
func (e *Editor) Patch() string {
	if !e.buffer.Dirty() {
		return ""
	}
	dmp := diffmatchpatch.New()
	return dmp.PatchToText(dmp.PatchMake(e.buffer.SavedText(), e.diffs()))
}

func (e *Editor) diffs() []diffmatchpatch.Diff {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(e.buffer.SavedText(), e.buffer.Text(), false)
	return dmp.DiffCleanupSemantic(diffs)
}

// Render draws the first height lines, tabs expanded, each cut to width.
func (e *Editor) Render(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	lines := strings.Split(e.buffer.Text(), "\n")
	if len(lines) > 1 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) > height {
		lines = lines[:height]
	}

	gutter := len(fmt.Sprint(len(lines)))
	out := make([]string, len(lines))
	for i, line := range lines {
		line = expandTabs(line, e.settings.TabWidth)
		if e.settings.ShowLineNumbers {
			line = fmt.Sprintf("%*d │ %s", gutter, i+1, line)
		}
		out[i] = truncate.StringWithTail(line, uint(width), "…") //nolint:gosec // width > 0
	}
	return strings.Join(out, "\n")
}

// expandTabs replaces tabs with spaces up to the next tab stop, counting
// display columns so wide runes take two.
func expandTabs(line string, tabWidth int) string {
	if !strings.Contains(line, "\t") {
		return line
	}
	var b strings.Builder
	col := 0
	for _, r := range line {
		if r == '\t' {
			pad := tabWidth - col%tabWidth
			b.WriteString(strings.Repeat(" ", pad))
			col += pad
			continue
		}
		b.WriteRune(r)
		col += runewidth.RuneWidth(r)
	}
	return b.String()
}
