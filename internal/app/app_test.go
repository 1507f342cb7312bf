package app

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/panekit/internal/action"
	"github.com/zjrosen/panekit/internal/items/logview"
	"github.com/zjrosen/panekit/internal/keys"
	"github.com/zjrosen/panekit/internal/pane"
	"github.com/zjrosen/panekit/internal/testutil"
	"github.com/zjrosen/panekit/internal/workspace"
)

func newTestApp(t *testing.T) (Model, *workspace.Workspace) {
	t.Helper()
	ws := workspace.New(testutil.ScenarioProject(), workspace.WithRegistry(testutil.NewRegistry()))
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, ws.Start(ctx))
	m := New(ws, keys.DefaultKeyMap())
	t.Cleanup(func() {
		m.Close()
		ws.Close()
		cancel()
	})
	return m, ws
}

func paneCount(t *testing.T, ws *workspace.Workspace) int {
	t.Helper()
	snap, err := ws.Snapshot(context.Background())
	require.NoError(t, err)
	return len(snap.Panes())
}

func TestDispatch_CloseItemOnEmptyPaneClosesPane(t *testing.T) {
	m, ws := newTestApp(t)
	ctx := context.Background()

	id, err := ws.SplitActivePane(ctx, pane.Horizontal)
	require.NoError(t, err)
	require.Equal(t, pane.ID(1), id)

	res, err := m.Dispatcher().Dispatch(ctx, action.Action{Name: action.CloseActivePaneItem})
	require.NoError(t, err)
	require.Equal(t, action.Handled, res)
	require.Equal(t, 1, paneCount(t, ws))

	active, err := ws.ActivePaneID(ctx)
	require.NoError(t, err)
	require.Equal(t, pane.ID(0), active)
}

func TestDispatch_CloseItemOnLastEmptyPanePropagates(t *testing.T) {
	m, ws := newTestApp(t)

	res, err := m.Dispatcher().Dispatch(context.Background(), action.Action{Name: action.CloseActivePaneItem})
	require.NoError(t, err)
	require.Equal(t, action.Propagate, res)
	require.Equal(t, 1, paneCount(t, ws))
}

func TestDispatch_CloseItemPrefersItemOverPane(t *testing.T) {
	m, ws := newTestApp(t)
	ctx := context.Background()

	_, err := ws.SplitActivePane(ctx, pane.Vertical)
	require.NoError(t, err)
	_, err = ws.OpenAbsPath(ctx, testutil.PathA)
	require.NoError(t, err)

	res, err := m.Dispatcher().Dispatch(ctx, action.Action{Name: action.CloseActivePaneItem})
	require.NoError(t, err)
	require.Equal(t, action.Handled, res)
	require.Equal(t, 2, paneCount(t, ws), "the item is closed, the pane stays")
}

func TestDispatch_CloseItemKeepsPaneFilledMeanwhile(t *testing.T) {
	_, ws := newTestApp(t)
	ctx := context.Background()

	_, err := ws.SplitActivePane(ctx, pane.Horizontal)
	require.NoError(t, err)

	// Between the workspace declining the close and the fallback running,
	// another action opens a file into the empty pane.
	opener := action.HandlerFunc(func(ctx context.Context, a action.Action) (action.Result, error) {
		if a.Name == action.CloseActivePaneItem {
			if _, err := ws.OpenAbsPath(ctx, testutil.PathA); err != nil {
				return action.Handled, err
			}
		}
		return action.Propagate, nil
	})
	d := action.NewDispatcher(newFallback(ctx, ws, logview.New(0)), opener, ws)

	res, err := d.Dispatch(ctx, action.Action{Name: action.CloseActivePaneItem})
	require.NoError(t, err)
	require.Equal(t, action.Propagate, res)
	require.Equal(t, 2, paneCount(t, ws))

	it, ok, err := ws.ActiveItem(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "a", it.Title())
}

func TestDispatch_OpenLog(t *testing.T) {
	m, ws := newTestApp(t)
	ctx := context.Background()

	res, err := m.Dispatcher().Dispatch(ctx, action.Action{Name: action.OpenLog})
	require.NoError(t, err)
	require.Equal(t, action.Handled, res)

	it, ok, err := ws.ActiveItem(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "log", it.Title())

	_, err = ws.OpenAbsPath(ctx, testutil.PathA)
	require.NoError(t, err)
	_, err = m.Dispatcher().Dispatch(ctx, action.Action{Name: action.OpenLog})
	require.NoError(t, err)

	snap, err := ws.Snapshot(ctx)
	require.NoError(t, err)
	p, ok := snap.FindPane(snap.ActivePane)
	require.True(t, ok)
	require.Len(t, p.Items, 2, "the log view is focused, not added again")
	require.Equal(t, 0, p.Active)
}

func TestUpdate_QuitKey(t *testing.T) {
	m, _ := newTestApp(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
}

func TestUpdate_HelpToggle(t *testing.T) {
	m, _ := newTestApp(t)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}})
	require.Nil(t, cmd)
	require.True(t, next.(Model).help.ShowAll)
}

func TestUpdate_DispatchErrorShown(t *testing.T) {
	m, _ := newTestApp(t)
	next, _ := m.Update(dispatchedMsg{
		action: action.Action{Name: action.Open, Arg: "/elsewhere"},
		result: action.Handled,
		err:    context.DeadlineExceeded,
	})
	require.Contains(t, ansi.Strip(next.(Model).View()), context.DeadlineExceeded.Error())
}

func TestTeatest_KeysDriveWorkspace(t *testing.T) {
	m, ws := newTestApp(t)
	_, err := ws.OpenAbsPath(context.Background(), testutil.PathA)
	require.NoError(t, err)

	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(100, 20))
	teatest.WaitFor(t, tm.Output(), func(b []byte) bool {
		return strings.Contains(ansi.Strip(string(b)), "> a")
	}, teatest.WithDuration(3*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'|'}})
	teatest.WaitFor(t, tm.Output(), func(b []byte) bool {
		return strings.Contains(ansi.Strip(string(b)), "pane 1")
	}, teatest.WithDuration(3*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	final := tm.FinalModel(t, teatest.WithFinalTimeout(3*time.Second)).(Model)
	require.Len(t, final.outline.Snapshot().Panes(), 2)
	require.Equal(t, pane.ID(1), final.outline.Snapshot().ActivePane)
}
