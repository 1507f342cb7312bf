package fsproject

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/panekit/internal/project"
	"github.com/zjrosen/panekit/internal/pubsub"
)

func writeFile(t *testing.T, root, rel string, data []byte) string {
	t.Helper()
	abs := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
	require.NoError(t, os.WriteFile(abs, data, 0o644))
	return abs
}

func newProject(t *testing.T, cfg Config) *Project {
	t.Helper()
	p, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{})
	require.ErrorIs(t, err, ErrNoRoots)

	dir := t.TempDir()
	_, err = New(Config{Roots: []string{dir}, Exclusions: []string{"[unclosed"}})
	require.ErrorIs(t, err, ErrInvalidPattern)

	file := writeFile(t, dir, "a.txt", []byte("a"))
	_, err = New(Config{Roots: []string{file}})
	require.Error(t, err)

	_, err = New(Config{Roots: []string{filepath.Join(dir, "missing")}})
	require.Error(t, err)
}

func TestResolveAbsPath(t *testing.T) {
	dir := t.TempDir()
	abs := writeFile(t, dir, "src/main.go", []byte("package main\n"))
	p := newProject(t, Config{Roots: []string{dir}})

	got, err := p.ResolveAbsPath(context.Background(), abs)
	require.NoError(t, err)
	assert.Equal(t, p.Worktrees()[0].ID, got.Worktree)
	assert.Equal(t, "src/main.go", got.Rel)

	back, err := p.AbsPath(got)
	require.NoError(t, err)
	assert.Equal(t, abs, back)
}

func TestResolveAbsPath_Failures(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".git/config", []byte("[core]\n"))
	p := newProject(t, Config{Roots: []string{dir}, Exclusions: []string{"**/.git"}})
	ctx := context.Background()

	tests := []struct {
		name    string
		locator string
	}{
		{"missing file", filepath.Join(dir, "nope.txt")},
		{"outside worktree", filepath.Join(t.TempDir(), "x.txt")},
		{"relative", "relative/path.txt"},
		{"excluded", filepath.Join(dir, ".git", "config")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.ResolveAbsPath(ctx, tt.locator)
			var resErr *project.ResolutionError
			require.ErrorAs(t, err, &resErr)
			assert.Equal(t, tt.locator, resErr.Locator)
			assert.ErrorIs(t, err, project.ErrNotFound)
		})
	}
}

func TestResolveAbsPath_Cancelled(t *testing.T) {
	dir := t.TempDir()
	abs := writeFile(t, dir, "a.txt", []byte("a"))
	p := newProject(t, Config{Roots: []string{dir}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.ResolveAbsPath(ctx, abs)
	require.ErrorIs(t, err, context.Canceled)
}

func TestResolveAbsPath_NestedRootsPreferDeepest(t *testing.T) {
	outer := t.TempDir()
	inner := filepath.Join(outer, "vendor", "lib")
	abs := writeFile(t, inner, "lib.go", []byte("package lib\n"))
	p := newProject(t, Config{Roots: []string{outer, inner}})

	got, err := p.ResolveAbsPath(context.Background(), abs)
	require.NoError(t, err)
	assert.Equal(t, p.Worktrees()[1].ID, got.Worktree)
	assert.Equal(t, "lib.go", got.Rel)
}

func TestOpen_ClassifiesContent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.txt", []byte("hello\nworld\n"))
	writeFile(t, dir, "README.md", []byte("# Title\n\nBody.\n"))
	writeFile(t, dir, "image.png", []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01"))
	p := newProject(t, Config{Roots: []string{dir}})
	ctx := context.Background()

	open := func(rel string) project.Item {
		t.Helper()
		path, err := p.ResolveAbsPath(ctx, filepath.Join(dir, rel))
		require.NoError(t, err)
		model, err := p.Open(ctx, path)
		require.NoError(t, err)
		return model
	}

	buf, ok := open("notes.txt").(*project.Buffer)
	require.True(t, ok)
	assert.Equal(t, "hello\nworld\n", buf.Text())
	assert.NotEmpty(t, buf.Charset())

	doc, ok := open("README.md").(*project.Document)
	require.True(t, ok)
	assert.Contains(t, doc.Source(), "# Title")

	blob, ok := open("image.png").(*project.Blob)
	require.True(t, ok)
	assert.Equal(t, "image/png", blob.MimeType())
}

func TestOpen_StableEntryAndCachedModel(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", []byte("a"))
	writeFile(t, dir, "b.txt", []byte("b"))
	p := newProject(t, Config{Roots: []string{dir}})
	ctx := context.Background()

	pa, err := p.ResolveAbsPath(ctx, filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	pb, err := p.ResolveAbsPath(ctx, filepath.Join(dir, "b.txt"))
	require.NoError(t, err)

	a1, err := p.Open(ctx, pa)
	require.NoError(t, err)
	a2, err := p.Open(ctx, pa)
	require.NoError(t, err)
	b, err := p.Open(ctx, pb)
	require.NoError(t, err)

	assert.Same(t, a1, a2)
	ida, ok := a1.EntryID()
	require.True(t, ok)
	idb, ok := b.EntryID()
	require.True(t, ok)
	assert.NotEqual(t, ida, idb)

	// Reloading after invalidation keeps the entry id.
	p.Invalidate(ctx, filepath.Join(dir, "a.txt"))
	a3, err := p.Open(ctx, pa)
	require.NoError(t, err)
	assert.NotSame(t, a1, a3)
	id3, _ := a3.EntryID()
	assert.Equal(t, ida, id3)
}

func TestOpen_ConcurrentCallersShareModel(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "shared.txt", []byte("shared"))
	p := newProject(t, Config{Roots: []string{dir}})
	ctx := context.Background()
	path, err := p.ResolveAbsPath(ctx, filepath.Join(dir, "shared.txt"))
	require.NoError(t, err)

	const callers = 16
	results := make([]project.Item, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			model, err := p.Open(ctx, path)
			assert.NoError(t, err)
			results[i] = model
		}()
	}
	wg.Wait()

	for _, r := range results[1:] {
		assert.Same(t, results[0], r)
	}
}

func TestOpen_Errors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	abs := writeFile(t, dir, "gone.txt", []byte("x"))
	p := newProject(t, Config{Roots: []string{dir}})
	ctx := context.Background()
	wt := p.Worktrees()[0].ID

	_, err := p.Open(ctx, project.NewPath(wt, "sub"))
	var loadErr *project.LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.ErrorIs(t, err, project.ErrIsDirectory)

	path, err := p.ResolveAbsPath(ctx, abs)
	require.NoError(t, err)
	require.NoError(t, os.Remove(abs))
	_, err = p.Open(ctx, path)
	require.ErrorAs(t, err, &loadErr)
	assert.ErrorIs(t, err, project.ErrNotFound)

	_, err = p.Open(ctx, project.NewPath("unknown", "a.txt"))
	assert.ErrorIs(t, err, project.ErrNotFound)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = p.Open(cancelled, project.NewPath(wt, "a.txt"))
	require.ErrorAs(t, err, &loadErr)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewUntitled(t *testing.T) {
	p := newProject(t, Config{Roots: []string{t.TempDir()}})
	buf := p.NewUntitled("scratch")
	_, ok := buf.EntryID()
	assert.False(t, ok)
	assert.Equal(t, "scratch", buf.Text())
}

func TestWatch_InvalidatesChangedModels(t *testing.T) {
	dir := t.TempDir()
	abs := writeFile(t, dir, "live.txt", []byte("v1"))
	events := pubsub.NewBroker[any]()
	defer events.Close()

	p := newProject(t, Config{
		Roots:         []string{dir},
		Watch:         true,
		WatchDebounce: 20 * time.Millisecond,
		Events:        events,
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub := events.Subscribe(ctx)
	require.NoError(t, p.Start(ctx))

	path, err := p.ResolveAbsPath(ctx, abs)
	require.NoError(t, err)
	first, err := p.Open(ctx, path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(abs, []byte("v2"), 0o644))

	select {
	case ev := <-sub:
		assert.Equal(t, pubsub.ProjectEvent, ev.Type)
		inv, ok := ev.Payload.(ModelInvalidated)
		require.True(t, ok)
		assert.Equal(t, path, inv.Path)
	case <-time.After(5 * time.Second):
		t.Fatal("no invalidation event")
	}

	second, err := p.Open(ctx, path)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, "v2", second.(*project.Buffer).Text())
}
