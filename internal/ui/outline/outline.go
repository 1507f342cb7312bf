// Package outline renders a workspace snapshot as an indented tree of
// splits, panes and items. It only reads snapshots; it never changes the
// workspace.
package outline

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/truncate"

	"github.com/zjrosen/panekit/internal/workspace"
)

// SnapshotMsg delivers a fresh snapshot to the outline.
type SnapshotMsg struct {
	Snapshot workspace.Snapshot
}

// Model is the outline view.
type Model struct {
	snap   workspace.Snapshot
	loaded bool
	width  int
	height int
	styles Styles
}

// New creates an outline with the default styles.
func New() Model {
	return Model{styles: DefaultStyles()}
}

// WithStyles replaces the styles.
func (m Model) WithStyles(s Styles) Model {
	m.styles = s
	return m
}

// SetSize sets the drawing area.
func (m Model) SetSize(width, height int) Model {
	m.width, m.height = width, height
	return m
}

// SetSnapshot replaces the rendered snapshot.
func (m Model) SetSnapshot(s workspace.Snapshot) Model {
	m.snap, m.loaded = s, true
	return m
}

// Snapshot returns the snapshot being rendered.
func (m Model) Snapshot() workspace.Snapshot {
	return m.snap
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case SnapshotMsg:
		return m.SetSnapshot(msg.Snapshot), nil
	case tea.WindowSizeMsg:
		return m.SetSize(msg.Width, msg.Height), nil
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.loaded {
		return m.styles.Placeholder.Render("loading…")
	}
	var lines []string
	m.renderNode(&lines, m.snap.Root, 0)
	if m.height > 0 && len(lines) > m.height {
		lines = lines[:m.height]
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderNode(lines *[]string, n workspace.NodeSnapshot, depth int) {
	indent := strings.Repeat("  ", depth)
	switch {
	case n.Split != nil:
		*lines = append(*lines, m.fit(indent+m.styles.Split.Render("┬ "+n.Split.Orientation.String())))
		for _, c := range n.Split.Children {
			m.renderNode(lines, c, depth+1)
		}
	case n.Pane != nil:
		m.renderPane(lines, *n.Pane, indent)
	}
}

func (m Model) renderPane(lines *[]string, p workspace.PaneSnapshot, indent string) {
	label := fmt.Sprintf("pane %d", p.ID)
	style := m.styles.Pane
	marker := "  "
	if p.ID == m.snap.ActivePane {
		style = m.styles.ActivePane
		marker = m.styles.Indicator.Render("▸ ")
	}
	*lines = append(*lines, m.fit(indent+marker+style.Render(label)))

	itemIndent := indent + "    "
	if len(p.Items) == 0 {
		*lines = append(*lines, m.fit(itemIndent+m.styles.Empty.Render("(empty)")))
		return
	}
	for i, it := range p.Items {
		title, style := it.Title, m.styles.Item
		prefix := "  "
		if i == p.Active {
			style = m.styles.ActiveItem
			prefix = m.styles.Indicator.Render("> ")
		}
		rendered := style.Render(title)
		if strings.HasSuffix(title, " ●") {
			rendered = style.Render(strings.TrimSuffix(title, " ●")) + " " + m.styles.Modified.Render("●")
		}
		*lines = append(*lines, m.fit(itemIndent+prefix+rendered))
	}
}

// fit cuts a styled line to the outline width.
func (m Model) fit(line string) string {
	if m.width <= 0 {
		return line
	}
	return truncate.StringWithTail(line, uint(m.width), "…") //nolint:gosec // width > 0
}
