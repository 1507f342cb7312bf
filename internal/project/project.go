// Package project defines the contract between the workspace and the backing
// project: turning external locators into project paths and loading the
// model behind a path.
//
// Models are plain Go values implementing Item. Their dynamic type is their
// kind; the workspace never switches on concrete model types itself.
package project

import (
	"context"
	"fmt"
	"path"
)

// EntryID identifies a project entry (usually a file) for as long as the
// project is open. Two models with the same EntryID represent the same
// backing resource.
type EntryID uint64

func (id EntryID) String() string {
	return fmt.Sprintf("entry-%d", id)
}

// WorktreeID identifies one root directory of a project.
type WorktreeID string

// Path is a project-internal address: a worktree plus a slash-separated path
// relative to the worktree root.
type Path struct {
	Worktree WorktreeID
	Rel      string
}

// NewPath builds a Path, cleaning rel into slash form.
func NewPath(worktree WorktreeID, rel string) Path {
	return Path{Worktree: worktree, Rel: path.Clean("/" + rel)[1:]}
}

func (p Path) String() string {
	return string(p.Worktree) + ":" + p.Rel
}

// Base returns the last element of the relative path.
func (p Path) Base() string {
	if p.Rel == "" {
		return "."
	}
	return path.Base(p.Rel)
}

// Item is a handle to loaded domain data. EntryID reports false for content
// without a durable identity, such as an untitled buffer.
type Item interface {
	EntryID() (EntryID, bool)
}

// Project resolves locators and loads models. Both calls may block on I/O
// and must honor ctx cancellation.
type Project interface {
	// ResolveAbsPath maps an absolute filesystem path into the project.
	// Failures are *ResolutionError.
	ResolveAbsPath(ctx context.Context, abs string) (Path, error)
	// Open loads (or returns the already loaded) model for p.
	// Failures are *LoadError.
	Open(ctx context.Context, p Path) (Item, error)
}
