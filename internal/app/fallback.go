package app

import (
	"context"
	"errors"
	"sync"

	"github.com/zjrosen/panekit/internal/action"
	"github.com/zjrosen/panekit/internal/items/logview"
	"github.com/zjrosen/panekit/internal/log"
	"github.com/zjrosen/panekit/internal/pane"
	"github.com/zjrosen/panekit/internal/workspace"
)

// fallback is the outermost action handler. It sees what the workspace
// left unhandled.
type fallback struct {
	ws      *workspace.Workspace
	logView *logview.View

	// followCtx bounds the log follower goroutine.
	followCtx  context.Context
	followOnce sync.Once
}

func newFallback(ctx context.Context, ws *workspace.Workspace, logView *logview.View) *fallback {
	return &fallback{ws: ws, logView: logView, followCtx: ctx}
}

// HandleAction implements action.Handler.
func (f *fallback) HandleAction(ctx context.Context, a action.Action) (action.Result, error) {
	switch a.Name {
	case action.CloseActivePaneItem:
		// Nothing to close in the pane, so close the pane itself. The pane
		// may have gained items since the workspace declined the action.
		closed, err := f.ws.CloseActivePaneIfEmpty(ctx)
		if errors.Is(err, pane.ErrLastPane) {
			return action.Propagate, nil
		}
		if err != nil {
			return action.Handled, err
		}
		if !closed {
			return action.Propagate, nil
		}
		return action.Handled, nil

	case action.OpenLog:
		f.followOnce.Do(func() {
			go f.logView.Follow(f.followCtx, log.Subscribe(f.followCtx))
		})
		return action.Handled, f.ws.ShowItem(ctx, f.logView)
	}
	return action.Propagate, nil
}
