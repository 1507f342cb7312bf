package keys

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/panekit/internal/action"
)

func TestDefaultKeyMap_KeyAssignments(t *testing.T) {
	km := DefaultKeyMap()
	tests := []struct {
		name     string
		binding  key.Binding
		expected []string
	}{
		{"CloseItem", km.CloseItem, []string{"ctrl+w", "x"}},
		{"SplitRight", km.SplitRight, []string{"|"}},
		{"SplitDown", km.SplitDown, []string{"-"}},
		{"ClosePane", km.ClosePane, []string{"ctrl+x"}},
		{"Quit", km.Quit, []string{"q", "ctrl+c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.binding.Keys())
			require.NotEmpty(t, tt.binding.Help().Desc)
		})
	}
}

func TestAction_MapsKeysToActions(t *testing.T) {
	km := DefaultKeyMap()
	tests := []struct {
		msg  tea.KeyMsg
		want action.Name
	}{
		{tea.KeyMsg{Type: tea.KeyCtrlW}, action.CloseActivePaneItem},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")}, action.CloseActivePaneItem},
		{tea.KeyMsg{Type: tea.KeyTab}, action.ActivateNextItem},
		{tea.KeyMsg{Type: tea.KeyShiftTab}, action.ActivatePrevItem},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("|")}, action.SplitRight},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("-")}, action.SplitDown},
		{tea.KeyMsg{Type: tea.KeyCtrlX}, action.ClosePane},
		{tea.KeyMsg{Type: tea.KeyDown}, action.FocusNextPane},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("L")}, action.OpenLog},
		{tea.KeyMsg{Type: tea.KeyCtrlC}, action.Quit},
	}
	for _, tt := range tests {
		t.Run(tt.msg.String(), func(t *testing.T) {
			got, ok := km.Action(tt.msg)
			require.True(t, ok)
			require.Equal(t, tt.want, got.Name)
		})
	}

	_, ok := km.Action(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("z")})
	require.False(t, ok)
}

func TestRebind(t *testing.T) {
	km := DefaultKeyMap()
	require.NoError(t, km.Rebind(map[string][]string{
		string(action.CloseActivePaneItem): {"ctrl+q"},
	}))
	require.Equal(t, []string{"ctrl+q"}, km.CloseItem.Keys())
	require.Equal(t, "close item", km.CloseItem.Help().Desc)

	got, ok := km.Action(tea.KeyMsg{Type: tea.KeyCtrlQ})
	require.True(t, ok)
	require.Equal(t, action.CloseActivePaneItem, got.Name)

	require.NoError(t, km.Rebind(map[string][]string{"pane::activatenextitem": {"n"}}))
	require.Equal(t, []string{"n"}, km.NextItem.Keys())

	require.ErrorContains(t, km.Rebind(map[string][]string{"nope::Nope": {"a"}}), "unknown action")
	require.ErrorContains(t, km.Rebind(map[string][]string{string(action.Quit): nil}), "at least one key")
}

func TestHelp(t *testing.T) {
	km := DefaultKeyMap()
	require.Len(t, km.ShortHelp(), 4)
	require.Len(t, km.FullHelp(), 3)
}
