package workspace

import (
	"context"

	"github.com/zjrosen/panekit/internal/pane"
	"github.com/zjrosen/panekit/internal/project"
	"github.com/zjrosen/panekit/internal/registry"
)

// Snapshot is a read-only copy of the pane tree, safe to use off the update
// loop.
type Snapshot struct {
	WorkspaceID string
	ActivePane  pane.ID
	Root        NodeSnapshot
}

// NodeSnapshot is exactly one of a pane or a split.
type NodeSnapshot struct {
	Pane  *PaneSnapshot
	Split *SplitSnapshot
}

// SplitSnapshot mirrors pane.Split.
type SplitSnapshot struct {
	Orientation pane.Orientation
	Children    []NodeSnapshot
}

// PaneSnapshot mirrors a pane. Active is -1 for an empty pane.
type PaneSnapshot struct {
	ID     pane.ID
	Active int
	Items  []ItemSnapshot
}

// ItemSnapshot describes one pane item.
type ItemSnapshot struct {
	Title    string
	Kind     string
	Entry    project.EntryID
	HasEntry bool
}

// Panes returns the panes in depth-first order.
func (s Snapshot) Panes() []PaneSnapshot {
	var out []PaneSnapshot
	var visit func(NodeSnapshot)
	visit = func(n NodeSnapshot) {
		switch {
		case n.Pane != nil:
			out = append(out, *n.Pane)
		case n.Split != nil:
			for _, c := range n.Split.Children {
				visit(c)
			}
		}
	}
	visit(s.Root)
	return out
}

// FindPane returns the pane with id.
func (s Snapshot) FindPane(id pane.ID) (PaneSnapshot, bool) {
	for _, p := range s.Panes() {
		if p.ID == id {
			return p, true
		}
	}
	return PaneSnapshot{}, false
}

// Snapshot copies the current tree.
func (w *Workspace) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := w.updates.submitAndWait(ctx, "snapshot", func(context.Context) error {
		snap = Snapshot{
			WorkspaceID: w.id,
			ActivePane:  w.activePaneID,
			Root:        w.snapshotNode(w.tree.Root()),
		}
		return nil
	})
	return snap, err
}

func (w *Workspace) snapshotNode(n pane.Node) NodeSnapshot {
	switch n := n.(type) {
	case *pane.Pane:
		ps := &PaneSnapshot{ID: n.ID(), Active: n.ActiveIndex()}
		for _, it := range n.Items() {
			is := ItemSnapshot{Title: it.Title(), Kind: registry.KindOf(it).String()}
			if pi, ok := w.registry.ToProjectItem(it); ok {
				is.Entry, is.HasEntry = pi.ProjectItem().EntryID()
			}
			ps.Items = append(ps.Items, is)
		}
		return NodeSnapshot{Pane: ps}
	case *pane.Split:
		ss := &SplitSnapshot{Orientation: n.Orientation}
		for _, c := range n.Children {
			ss.Children = append(ss.Children, w.snapshotNode(c))
		}
		return NodeSnapshot{Split: ss}
	default:
		return NodeSnapshot{}
	}
}
