package outline

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/panekit/internal/pane"
	"github.com/zjrosen/panekit/internal/workspace"
)

func twoPaneSnapshot() workspace.Snapshot {
	return workspace.Snapshot{
		ActivePane: 1,
		Root: workspace.NodeSnapshot{Split: &workspace.SplitSnapshot{
			Orientation: pane.Horizontal,
			Children: []workspace.NodeSnapshot{
				{Pane: &workspace.PaneSnapshot{ID: 0, Active: 1, Items: []workspace.ItemSnapshot{
					{Title: "a.go"},
					{Title: "b.go ●"},
				}}},
				{Pane: &workspace.PaneSnapshot{ID: 1, Active: -1}},
			},
		}},
	}
}

func TestView_Placeholder(t *testing.T) {
	require.Contains(t, ansi.Strip(New().View()), "loading")
}

func TestView_Tree(t *testing.T) {
	m := New().SetSnapshot(twoPaneSnapshot())
	got := strings.Split(ansi.Strip(m.View()), "\n")
	require.Equal(t, []string{
		"┬ horizontal",
		"    pane 0",
		"        a.go",
		"      > b.go ●",
		"  ▸ pane 1",
		"      (empty)",
	}, got)
}

func TestView_TruncatesAndClips(t *testing.T) {
	snap := workspace.Snapshot{Root: workspace.NodeSnapshot{Pane: &workspace.PaneSnapshot{
		ID: 0, Active: 0, Items: []workspace.ItemSnapshot{
			{Title: "a-very-long-file-name-that-will-not-fit.go"},
			{Title: "second.go"},
		},
	}}}
	m := New().SetSnapshot(snap).SetSize(20, 2)
	lines := strings.Split(m.View(), "\n")
	require.Len(t, lines, 2)
	for _, l := range lines {
		require.LessOrEqual(t, ansi.StringWidth(l), 20)
	}
	require.Contains(t, ansi.Strip(lines[1]), "…")
}

func TestUpdate_Messages(t *testing.T) {
	var m tea.Model = New()
	m, _ = m.Update(tea.WindowSizeMsg{Width: 30, Height: 10})
	m, _ = m.Update(SnapshotMsg{Snapshot: twoPaneSnapshot()})
	om := m.(Model)
	require.Equal(t, 30, om.width)
	require.Equal(t, pane.ID(1), om.Snapshot().ActivePane)
}

func TestTeatest_RendersSnapshot(t *testing.T) {
	tm := teatest.NewTestModel(t, New(), teatest.WithInitialTermSize(40, 10))
	tm.Send(SnapshotMsg{Snapshot: twoPaneSnapshot()})

	teatest.WaitFor(t, tm.Output(), func(b []byte) bool {
		return strings.Contains(ansi.Strip(string(b)), "b.go")
	}, teatest.WithDuration(2*time.Second))

	require.NoError(t, tm.Quit())
	final := tm.FinalModel(t, teatest.WithFinalTimeout(2*time.Second)).(Model)
	require.Len(t, final.Snapshot().Panes(), 2)
}
