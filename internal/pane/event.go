package pane

import "fmt"

// EventKind names an item-level change within a pane.
type EventKind string

const (
	ItemAdded     EventKind = "item_added"
	ItemActivated EventKind = "item_activated"
	ItemClosed    EventKind = "item_closed"
)

// Event is published whenever a pane's items or active item change.
type Event struct {
	PaneID ID
	Kind   EventKind
	Index  int
	Title  string
}

func (e Event) String() string {
	return fmt.Sprintf("pane %d %s #%d %q", e.PaneID, e.Kind, e.Index, e.Title)
}
