// Package keys contains keybinding definitions.
package keys

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/panekit/internal/action"
)

// KeyMap binds keys to workspace actions.
type KeyMap struct {
	// Items
	CloseItem key.Binding
	NextItem  key.Binding
	PrevItem  key.Binding

	// Panes
	SplitRight key.Binding
	SplitDown  key.Binding
	ClosePane  key.Binding
	NextPane   key.Binding
	PrevPane   key.Binding

	// General
	OpenLog key.Binding
	Help    key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		CloseItem: key.NewBinding(
			key.WithKeys("ctrl+w", "x"),
			key.WithHelp("ctrl+w/x", "close item"),
		),
		NextItem: key.NewBinding(
			key.WithKeys("tab", "l"),
			key.WithHelp("tab/l", "next item"),
		),
		PrevItem: key.NewBinding(
			key.WithKeys("shift+tab", "h"),
			key.WithHelp("shift+tab/h", "previous item"),
		),
		SplitRight: key.NewBinding(
			key.WithKeys("|"),
			key.WithHelp("|", "split right"),
		),
		SplitDown: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "split down"),
		),
		ClosePane: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("ctrl+x", "close pane"),
		),
		NextPane: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "next pane"),
		),
		PrevPane: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "previous pane"),
		),
		OpenLog: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "open log"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns keybindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.CloseItem, k.SplitRight, k.Help, k.Quit}
}

// FullHelp returns keybindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.CloseItem, k.NextItem, k.PrevItem},                            // Items
		{k.SplitRight, k.SplitDown, k.ClosePane, k.NextPane, k.PrevPane}, // Panes
		{k.OpenLog, k.Help, k.Quit},                                      // General
	}
}

// bindings pairs each action with the field that triggers it.
func (k *KeyMap) bindings() []struct {
	name    action.Name
	binding *key.Binding
} {
	return []struct {
		name    action.Name
		binding *key.Binding
	}{
		{action.CloseActivePaneItem, &k.CloseItem},
		{action.ActivateNextItem, &k.NextItem},
		{action.ActivatePrevItem, &k.PrevItem},
		{action.SplitRight, &k.SplitRight},
		{action.SplitDown, &k.SplitDown},
		{action.ClosePane, &k.ClosePane},
		{action.FocusNextPane, &k.NextPane},
		{action.FocusPrevPane, &k.PrevPane},
		{action.OpenLog, &k.OpenLog},
		{action.Quit, &k.Quit},
	}
}

// Action returns the action bound to msg.
func (k KeyMap) Action(msg tea.KeyMsg) (action.Action, bool) {
	for _, b := range k.bindings() {
		if key.Matches(msg, *b.binding) {
			return action.Action{Name: b.name}, true
		}
	}
	return action.Action{}, false
}

// Rebind replaces the keys of the named actions, keeping their help text
// description. Keys are bubbletea key strings such as "ctrl+w".
func (k *KeyMap) Rebind(overrides map[string][]string) error {
	for name, keys := range overrides {
		if len(keys) == 0 {
			return fmt.Errorf("keys for %s: at least one key required", name)
		}
		b := k.lookup(action.Name(name))
		if b == nil {
			return fmt.Errorf("keys: unknown action %q", name)
		}
		desc := b.Help().Desc
		*b = key.NewBinding(
			key.WithKeys(keys...),
			key.WithHelp(keys[0], desc),
		)
	}
	return nil
}

// lookup ignores case because viper lowercases map keys read from config.
func (k *KeyMap) lookup(name action.Name) *key.Binding {
	for _, b := range k.bindings() {
		if strings.EqualFold(string(b.name), string(name)) {
			return b.binding
		}
	}
	return nil
}
