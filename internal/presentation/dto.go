package presentation

import (
	"github.com/zjrosen/panekit/internal/registry"
	"github.com/zjrosen/panekit/internal/workspace"
)

// WorkspaceDTO is the JSON form of a workspace snapshot.
type WorkspaceDTO struct {
	ID         string  `json:"id"`
	ActivePane int     `json:"active_pane"`
	Layout     NodeDTO `json:"layout"`
}

// NodeDTO is either a pane or a split.
type NodeDTO struct {
	Type        string    `json:"type"` // "pane" or "split"
	Orientation string    `json:"orientation,omitempty"`
	Pane        *PaneDTO  `json:"pane,omitempty"`
	Children    []NodeDTO `json:"children,omitempty"`
}

// PaneDTO describes one pane. ActiveItem is -1 when the pane is empty.
type PaneDTO struct {
	ID         int       `json:"id"`
	ActiveItem int       `json:"active_item"`
	Items      []ItemDTO `json:"items"`
}

// ItemDTO describes one pane item.
type ItemDTO struct {
	Title string  `json:"title"`
	Kind  string  `json:"kind"`
	Entry *uint64 `json:"entry,omitempty"`
}

// RegistrationDTO pairs a model kind with the item kind built for it.
type RegistrationDTO struct {
	ModelKind string `json:"model_kind"`
	ItemKind  string `json:"item_kind"`
}

// FromSnapshot converts a workspace snapshot.
func FromSnapshot(s workspace.Snapshot) WorkspaceDTO {
	return WorkspaceDTO{
		ID:         s.WorkspaceID,
		ActivePane: int(s.ActivePane),
		Layout:     fromNode(s.Root),
	}
}

func fromNode(n workspace.NodeSnapshot) NodeDTO {
	if n.Split != nil {
		children := make([]NodeDTO, len(n.Split.Children))
		for i, c := range n.Split.Children {
			children[i] = fromNode(c)
		}
		return NodeDTO{Type: "split", Orientation: n.Split.Orientation.String(), Children: children}
	}
	if n.Pane == nil {
		return NodeDTO{Type: "pane"}
	}
	items := make([]ItemDTO, len(n.Pane.Items))
	for i, it := range n.Pane.Items {
		items[i] = ItemDTO{Title: it.Title, Kind: it.Kind}
		if it.HasEntry {
			entry := uint64(it.Entry)
			items[i].Entry = &entry
		}
	}
	return NodeDTO{Type: "pane", Pane: &PaneDTO{
		ID:         int(n.Pane.ID),
		ActiveItem: n.Pane.Active,
		Items:      items,
	}}
}

// FromRegistrations converts registry registrations.
func FromRegistrations(regs []registry.Registration) []RegistrationDTO {
	dtos := make([]RegistrationDTO, len(regs))
	for i, r := range regs {
		dtos[i] = RegistrationDTO{ModelKind: r.ModelKind.String(), ItemKind: r.ItemKind.String()}
	}
	return dtos
}
