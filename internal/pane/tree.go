package pane

import (
	"errors"
	"fmt"
)

// Tree errors.
var (
	ErrPaneNotFound    = errors.New("pane not found")
	ErrDuplicatePaneID = errors.New("pane id already in tree")
	ErrLastPane        = errors.New("cannot remove the last pane")
)

// Orientation is the axis along which a split lays out its children.
type Orientation int

const (
	Horizontal Orientation = iota // children side by side
	Vertical                      // children stacked
)

func (o Orientation) String() string {
	switch o {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	default:
		return fmt.Sprintf("orientation(%d)", int(o))
	}
}

// Node is either a *Pane leaf or a *Split.
type Node interface {
	node()
}

// Split arranges its children along one axis.
type Split struct {
	Orientation Orientation
	Children    []Node
}

func (*Split) node() {}

// Tree is the layout of panes in a workspace.
type Tree struct {
	root Node
}

// NewTree creates a tree holding a single pane.
func NewTree(root *Pane) *Tree {
	return &Tree{root: root}
}

// Root returns the root node.
func (t *Tree) Root() Node {
	return t.root
}

// FindPane returns the pane with the given id, searching split children
// depth-first in order.
func (t *Tree) FindPane(id ID) (*Pane, bool) {
	p := findPane(t.root, id)
	return p, p != nil
}

func findPane(n Node, id ID) *Pane {
	switch n := n.(type) {
	case *Pane:
		if n.id == id {
			return n
		}
	case *Split:
		for _, child := range n.Children {
			if p := findPane(child, id); p != nil {
				return p
			}
		}
	}
	return nil
}

// Walk visits every node depth-first, pre-order. Returning false from fn
// skips the node's children.
func (t *Tree) Walk(fn func(n Node, depth int) bool) {
	walk(t.root, 0, fn)
}

func walk(n Node, depth int, fn func(Node, int) bool) {
	if !fn(n, depth) {
		return
	}
	if s, ok := n.(*Split); ok {
		for _, child := range s.Children {
			walk(child, depth+1, fn)
		}
	}
}

// Panes returns every pane in depth-first order.
func (t *Tree) Panes() []*Pane {
	var out []*Pane
	t.Walk(func(n Node, _ int) bool {
		if p, ok := n.(*Pane); ok {
			out = append(out, p)
		}
		return true
	})
	return out
}

// Split places newPane next to the pane target along orientation. When
// target's parent already splits along the same axis, newPane is inserted
// right after target in that split; otherwise target is replaced by a new
// two-child split. newPane's id must not already be in the tree.
func (t *Tree) Split(target ID, newPane *Pane, orientation Orientation) error {
	if _, exists := t.FindPane(newPane.id); exists {
		return fmt.Errorf("%w: %d", ErrDuplicatePaneID, newPane.id)
	}
	replaced, ok := splitNode(t.root, nil, target, newPane, orientation)
	if !ok {
		return fmt.Errorf("%w: %d", ErrPaneNotFound, target)
	}
	if replaced != nil {
		t.root = replaced
	}
	return nil
}

// splitNode returns a replacement for n when n itself had to become a split.
func splitNode(n Node, parent *Split, target ID, newPane *Pane, o Orientation) (Node, bool) {
	switch n := n.(type) {
	case *Pane:
		if n.id != target {
			return nil, false
		}
		if parent != nil && parent.Orientation == o {
			for i, child := range parent.Children {
				if child == Node(n) {
					parent.Children = insertAt(parent.Children, i+1, newPane)
					return nil, true
				}
			}
		}
		return &Split{Orientation: o, Children: []Node{n, newPane}}, true
	case *Split:
		for i := 0; i < len(n.Children); i++ {
			replacement, ok := splitNode(n.Children[i], n, target, newPane, o)
			if !ok {
				continue
			}
			if replacement != nil {
				n.Children[i] = replacement
			}
			return nil, true
		}
	}
	return nil, false
}

func insertAt(nodes []Node, i int, n Node) []Node {
	nodes = append(nodes, nil)
	copy(nodes[i+1:], nodes[i:])
	nodes[i] = n
	return nodes
}

// Remove deletes the pane with the given id. A split left with one child
// is replaced by that child. The last pane cannot be removed.
func (t *Tree) Remove(id ID) error {
	if p, ok := t.root.(*Pane); ok {
		if p.id == id {
			return ErrLastPane
		}
		return fmt.Errorf("%w: %d", ErrPaneNotFound, id)
	}
	next, ok := removeNode(t.root, id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrPaneNotFound, id)
	}
	t.root = next
	return nil
}

// removeNode returns what should stand in n's place after removal.
func removeNode(n Node, id ID) (Node, bool) {
	s, ok := n.(*Split)
	if !ok {
		return n, false
	}
	for i, child := range s.Children {
		if p, ok := child.(*Pane); ok {
			if p.id != id {
				continue
			}
			s.Children = append(s.Children[:i], s.Children[i+1:]...)
			return collapse(s), true
		}
		replacement, ok := removeNode(child, id)
		if !ok {
			continue
		}
		s.Children[i] = replacement
		return collapse(s), true
	}
	return n, false
}

func collapse(s *Split) Node {
	if len(s.Children) == 1 {
		return s.Children[0]
	}
	return s
}

// Neighbor returns the pane that should take focus after id is removed:
// the next pane in depth-first order, or the previous one when id is last.
func (t *Tree) Neighbor(id ID) (*Pane, bool) {
	panes := t.Panes()
	for i, p := range panes {
		if p.id != id {
			continue
		}
		if i+1 < len(panes) {
			return panes[i+1], true
		}
		if i > 0 {
			return panes[i-1], true
		}
		return nil, false
	}
	return nil, false
}
