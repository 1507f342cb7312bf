// Package app contains the root application model.
package app

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/panekit/internal/action"
	"github.com/zjrosen/panekit/internal/item"
	"github.com/zjrosen/panekit/internal/items/logview"
	"github.com/zjrosen/panekit/internal/keys"
	"github.com/zjrosen/panekit/internal/log"
	"github.com/zjrosen/panekit/internal/pubsub"
	"github.com/zjrosen/panekit/internal/ui/outline"
	"github.com/zjrosen/panekit/internal/workspace"
)

// outlineWidth is the width of the outline column.
const outlineWidth = 32

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#C0392B", Dark: "#FF6B6B"})
	contentStyle = lipgloss.NewStyle().PaddingLeft(1).
			BorderStyle(lipgloss.NormalBorder()).BorderLeft(true).
			BorderForeground(lipgloss.AdaptiveColor{Light: "#D0D0D0", Dark: "#404040"})
	titleStyle = lipgloss.NewStyle().Bold(true)
)

// refreshedMsg carries what the view needs after the workspace changed.
type refreshedMsg struct {
	snapshot workspace.Snapshot
	active   item.PaneItem
	err      error
}

// dispatchedMsg reports the outcome of an action.
type dispatchedMsg struct {
	action action.Action
	result action.Result
	err    error
}

// Model is the root application state.
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	ws         *workspace.Workspace
	dispatcher *action.Dispatcher
	listener   *pubsub.ContinuousListener[any]

	keys    keys.KeyMap
	help    help.Model
	outline outline.Model
	logView *logview.View

	active item.PaneItem
	err    error

	width  int
	height int
}

// New creates the root model over a running workspace. Actions go to the
// workspace first and then to the app's own handler.
func New(ws *workspace.Workspace, km keys.KeyMap) Model {
	ctx, cancel := context.WithCancel(context.Background())
	logView := logview.New(logview.DefaultCapacity)

	return Model{
		ctx:        ctx,
		cancel:     cancel,
		ws:         ws,
		dispatcher: action.NewDispatcher(newFallback(ctx, ws, logView), ws),
		listener:   pubsub.NewContinuousListener[any](ctx, ws),
		keys:       km,
		help:       help.New(),
		outline:    outline.New(),
		logView:    logView,
	}
}

// Close stops the event listener and the log follower.
func (m Model) Close() {
	m.cancel()
}

// Dispatcher returns the action dispatcher so callers can push handlers.
func (m Model) Dispatcher() *action.Dispatcher {
	return m.dispatcher
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.listener.Listen(), m.refresh())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.outline = m.outline.SetSize(outlineWidth, m.bodyHeight())
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Help) {
			m.help.ShowAll = !m.help.ShowAll
			m.outline = m.outline.SetSize(outlineWidth, m.bodyHeight())
			return m, nil
		}
		a, ok := m.keys.Action(msg)
		if !ok {
			return m, nil
		}
		if a.Name == action.Quit {
			return m, tea.Quit
		}
		return m, m.dispatch(a)

	case dispatchedMsg:
		m.err = msg.err
		if msg.err == nil && msg.result == action.Propagate {
			log.Debug(log.CatUI, "action had no effect", "action", msg.action)
		}
		return m, m.refresh()

	case refreshedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.outline = m.outline.SetSnapshot(msg.snapshot)
		m.active = msg.active
		return m, nil

	case pubsub.Event[any]:
		return m, tea.Batch(m.refresh(), m.listener.Listen())
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(outlineWidth).Render(m.outline.View()),
		contentStyle.Render(m.renderActive()),
	)

	status := m.help.View(m.keys)
	if m.err != nil {
		status = errorStyle.Render(m.err.Error())
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, status)
}

func (m Model) renderActive() string {
	if m.active == nil {
		return ""
	}
	title := titleStyle.Render(m.active.Title())
	r, ok := m.active.(item.Renderer)
	if !ok {
		return title
	}
	width := m.width - outlineWidth - 2
	height := m.bodyHeight() - 1
	if width <= 0 || height <= 0 {
		return title
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, r.Render(width, height))
}

// bodyHeight is the height left after the status line.
func (m Model) bodyHeight() int {
	helpHeight := 1
	if m.help.ShowAll {
		helpHeight = len(m.keys.FullHelp()[1])
	}
	return max(m.height-helpHeight, 0)
}

func (m Model) dispatch(a action.Action) tea.Cmd {
	ctx, d := m.ctx, m.dispatcher
	return func() tea.Msg {
		res, err := d.Dispatch(ctx, a)
		return dispatchedMsg{action: a, result: res, err: err}
	}
}

func (m Model) refresh() tea.Cmd {
	ctx, ws := m.ctx, m.ws
	return func() tea.Msg {
		snap, err := ws.Snapshot(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return refreshedMsg{err: err}
		}
		active, _, err := ws.ActiveItem(ctx)
		if err != nil && errors.Is(err, context.Canceled) {
			return nil
		}
		return refreshedMsg{snapshot: snap, active: active, err: err}
	}
}
