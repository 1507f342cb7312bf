package workspace

import (
	"context"
	"errors"

	"github.com/zjrosen/panekit/internal/action"
	"github.com/zjrosen/panekit/internal/pane"
)

var _ action.Handler = (*Workspace)(nil)

// HandleAction implements action.Handler for workspace and pane actions.
func (w *Workspace) HandleAction(ctx context.Context, a action.Action) (action.Result, error) {
	switch a.Name {
	case action.CloseActivePaneItem:
		closed, err := w.CloseActivePaneItem(ctx)
		return handledIf(closed), err

	case action.ActivateNextItem, action.ActivatePrevItem:
		delta := 1
		if a.Name == action.ActivatePrevItem {
			delta = -1
		}
		ok, err := w.CycleItem(ctx, delta)
		return handledIf(ok), err

	case action.SplitRight, action.SplitDown:
		orientation := pane.Horizontal
		if a.Name == action.SplitDown {
			orientation = pane.Vertical
		}
		_, err := w.SplitActivePane(ctx, orientation)
		return action.Handled, err

	case action.FocusNextPane, action.FocusPrevPane:
		delta := 1
		if a.Name == action.FocusPrevPane {
			delta = -1
		}
		_, err := w.CyclePane(ctx, delta)
		return action.Handled, err

	case action.ClosePane:
		err := w.CloseActivePane(ctx)
		if errors.Is(err, pane.ErrLastPane) {
			return action.Propagate, nil
		}
		return action.Handled, err

	case action.Open:
		_, err := w.OpenAbsPath(ctx, a.Arg)
		return action.Handled, err

	default:
		return action.Propagate, nil
	}
}

func handledIf(ok bool) action.Result {
	if ok {
		return action.Handled
	}
	return action.Propagate
}
