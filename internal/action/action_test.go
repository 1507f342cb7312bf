package action

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func recorder(name string, calls *[]string, res Result, err error) Handler {
	return HandlerFunc(func(_ context.Context, a Action) (Result, error) {
		*calls = append(*calls, name)
		return res, err
	})
}

func TestDispatch_InnermostFirst(t *testing.T) {
	var calls []string
	d := NewDispatcher(
		recorder("outer", &calls, Handled, nil),
		recorder("inner", &calls, Handled, nil),
	)

	res, err := d.Dispatch(context.Background(), Action{Name: CloseActivePaneItem})
	require.NoError(t, err)
	require.Equal(t, Handled, res)
	require.Equal(t, []string{"inner"}, calls)
}

func TestDispatch_PropagatesOutward(t *testing.T) {
	var calls []string
	d := NewDispatcher(recorder("outer", &calls, Handled, nil))
	d.Push(recorder("inner", &calls, Propagate, nil))

	res, err := d.Dispatch(context.Background(), Action{Name: CloseActivePaneItem})
	require.NoError(t, err)
	require.Equal(t, Handled, res)
	require.Equal(t, []string{"inner", "outer"}, calls)
}

func TestDispatch_Unhandled(t *testing.T) {
	var calls []string
	d := NewDispatcher(recorder("only", &calls, Propagate, nil))

	res, err := d.Dispatch(context.Background(), Action{Name: Quit})
	require.NoError(t, err)
	require.Equal(t, Propagate, res)
	require.Equal(t, []string{"only"}, calls)

	res, err = NewDispatcher().Dispatch(context.Background(), Action{Name: Quit})
	require.NoError(t, err)
	require.Equal(t, Propagate, res)
}

func TestDispatch_ErrorStopsWalk(t *testing.T) {
	boom := errors.New("boom")
	var calls []string
	d := NewDispatcher(
		recorder("outer", &calls, Handled, nil),
		recorder("inner", &calls, Propagate, boom),
	)

	_, err := d.Dispatch(context.Background(), Action{Name: Open, Arg: "/x"})
	require.ErrorIs(t, err, boom)
	require.ErrorContains(t, err, string(Open))
	require.Equal(t, []string{"inner"}, calls)
}

func TestAction_String(t *testing.T) {
	require.Equal(t, "workspace::ClosePane", Action{Name: ClosePane}.String())
	require.Equal(t, "workspace::Open(/a)", Action{Name: Open, Arg: "/a"}.String())
	require.Equal(t, "handled", Handled.String())
	require.Equal(t, "propagate", Propagate.String())
}
