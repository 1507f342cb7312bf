package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/zjrosen/panekit/internal/project"
)

// Worktree is the single worktree id used by FakeProject.
const Worktree project.WorktreeID = "wt-test"

// fileData holds one fake file.
type fileData struct {
	abs      string
	text     string
	entry    project.EntryID
	hasEntry bool
}

// LoadGate holds a FakeProject load open until Release is called.
type LoadGate struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

// Entered is closed once a load reaches the gate.
func (g *LoadGate) Entered() <-chan struct{} {
	return g.entered
}

// Release lets the gated load (and later loads) through.
func (g *LoadGate) Release() {
	g.once.Do(func() { close(g.release) })
}

// FakeProject is an in-memory project.Project. Files are keyed by absolute
// path; each file resolves to Worktree plus the path without its leading
// slash. Open returns the same model for a path every time, like a project
// that keeps models alive while they are referenced.
type FakeProject struct {
	mu      sync.Mutex
	files   map[string]*fileData
	byRel   map[string]*fileData
	models  map[project.Path]project.Item
	gates   map[string]*LoadGate
	loads   map[string]int
	entries project.EntryID
}

var _ project.Project = (*FakeProject)(nil)

// NewFakeProject creates an empty fake project.
func NewFakeProject() *FakeProject {
	return &FakeProject{
		files:  make(map[string]*fileData),
		byRel:  make(map[string]*fileData),
		models: make(map[project.Path]project.Item),
		gates:  make(map[string]*LoadGate),
		loads:  make(map[string]int),
	}
}

// WithFile adds a file with a fresh entry id. Entry ids are assigned in
// insertion order starting at 1.
func (f *FakeProject) WithFile(abs, text string) *FakeProject {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries++
	f.add(&fileData{abs: abs, text: text, entry: f.entries, hasEntry: true})
	return f
}

// WithUntrackedFile adds a file whose model has no entry id.
func (f *FakeProject) WithUntrackedFile(abs, text string) *FakeProject {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.add(&fileData{abs: abs, text: text})
	return f
}

func (f *FakeProject) add(fd *fileData) {
	f.files[fd.abs] = fd
	f.byRel[relOf(fd.abs)] = fd
}

// Gate installs a gate on abs: loads of it block until the gate is released
// or the load's context ends.
func (f *FakeProject) Gate(abs string) *LoadGate {
	f.mu.Lock()
	defer f.mu.Unlock()
	g := &LoadGate{entered: make(chan struct{}), release: make(chan struct{})}
	f.gates[abs] = g
	return g
}

// Loads returns how many times abs finished loading.
func (f *FakeProject) Loads(abs string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loads[abs]
}

// EntryFor returns the entry id assigned to abs.
func (f *FakeProject) EntryFor(abs string) (project.EntryID, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fd, ok := f.files[abs]
	if !ok || !fd.hasEntry {
		return 0, false
	}
	return fd.entry, true
}

// ResolveAbsPath implements project.Project.
func (f *FakeProject) ResolveAbsPath(ctx context.Context, abs string) (project.Path, error) {
	if err := ctx.Err(); err != nil {
		return project.Path{}, &project.ResolutionError{Locator: abs, Err: err}
	}
	f.mu.Lock()
	_, ok := f.files[abs]
	f.mu.Unlock()
	if !ok {
		return project.Path{}, &project.ResolutionError{Locator: abs, Err: project.ErrNotFound}
	}
	return project.NewPath(Worktree, relOf(abs)), nil
}

// Open implements project.Project.
func (f *FakeProject) Open(ctx context.Context, p project.Path) (project.Item, error) {
	f.mu.Lock()
	fd, ok := f.byRel[p.Rel]
	var gate *LoadGate
	if ok {
		gate = f.gates[fd.abs]
	}
	f.mu.Unlock()

	if !ok || p.Worktree != Worktree {
		return nil, &project.LoadError{Path: p, Err: project.ErrNotFound}
	}

	if gate != nil {
		select {
		case <-gate.entered:
		default:
			close(gate.entered)
		}
		select {
		case <-gate.release:
		case <-ctx.Done():
			return nil, &project.LoadError{Path: p, Err: ctx.Err()}
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, &project.LoadError{Path: p, Err: err}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads[fd.abs]++
	if m, ok := f.models[p]; ok {
		return m, nil
	}
	var m project.Item
	if fd.hasEntry {
		m = project.NewBuffer(p, fd.entry, fd.text, "UTF-8")
	} else {
		m = project.NewUntitledBuffer(fd.text)
	}
	f.models[p] = m
	return m, nil
}

func relOf(abs string) string {
	return strings.TrimPrefix(abs, "/")
}

// MustPath resolves abs or panics. For table setup only.
func (f *FakeProject) MustPath(abs string) project.Path {
	p, err := f.ResolveAbsPath(context.Background(), abs)
	if err != nil {
		panic(fmt.Sprintf("testutil: %v", err))
	}
	return p
}
