// Package logview is a pane item that follows the debug log.
package logview

import (
	"context"
	"strings"
	"sync"

	"github.com/muesli/reflow/wordwrap"

	"github.com/zjrosen/panekit/internal/item"
	"github.com/zjrosen/panekit/internal/pubsub"
)

// DefaultCapacity is the number of lines kept.
const DefaultCapacity = 500

// View keeps the most recent log lines. It is not backed by a project
// model, so the workspace never deduplicates it.
type View struct {
	mu       sync.Mutex
	lines    []string
	capacity int
}

var _ item.Renderer = (*View)(nil)

// New creates an empty view holding up to capacity lines.
func New(capacity int) *View {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &View{capacity: capacity}
}

// Follow appends lines from ch until ctx ends or ch closes. A nil ch (logging
// disabled) returns at once.
func (v *View) Follow(ctx context.Context, ch <-chan pubsub.Event[string]) {
	if ch == nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			v.Append(ev.Payload)
		}
	}
}

// Append adds one line, dropping the oldest beyond capacity.
func (v *View) Append(line string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.lines = append(v.lines, strings.TrimRight(line, "\n"))
	if over := len(v.lines) - v.capacity; over > 0 {
		v.lines = append(v.lines[:0], v.lines[over:]...)
	}
}

// Lines returns a copy of the buffered lines, oldest first.
func (v *View) Lines() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]string, len(v.lines))
	copy(out, v.lines)
	return out
}

// Title implements item.PaneItem.
func (v *View) Title() string {
	return "log"
}

// Render word-wraps lines to width and shows the newest height rows.
func (v *View) Render(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	lines := v.Lines()
	if len(lines) == 0 {
		return "no log output (run with --debug)"
	}
	var rows []string
	for _, l := range lines {
		rows = append(rows, strings.Split(wordwrap.String(l, width), "\n")...)
	}
	if len(rows) > height {
		rows = rows[len(rows)-height:]
	}
	return strings.Join(rows, "\n")
}
