// Package fsproject is a project.Project backed by directories on the local
// filesystem. Each configured root becomes a worktree; files are loaded into
// Buffer, Document or Blob models depending on their content and cached
// until they change on disk or expire.
package fsproject

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/panekit/internal/cachemanager"
	"github.com/zjrosen/panekit/internal/log"
	"github.com/zjrosen/panekit/internal/project"
	"github.com/zjrosen/panekit/internal/pubsub"
	"github.com/zjrosen/panekit/internal/tracing"
	"github.com/zjrosen/panekit/internal/watcher"
)

// Configuration errors.
var (
	ErrNoRoots        = errors.New("at least one root directory is required")
	ErrInvalidPattern = errors.New("invalid exclusion pattern")
)

// Config configures a Project.
type Config struct {
	// Roots are the directories opened as worktrees.
	Roots []string
	// Exclusions are doublestar patterns, relative to a worktree root, for
	// paths that must never resolve. A path is excluded when it or any of
	// its parent directories matches.
	Exclusions []string
	// CacheTTL is how long an unused model stays loaded. Zero means
	// cachemanager.DefaultExpiration.
	CacheTTL time.Duration
	// Watch enables invalidation of cached models on disk changes.
	Watch         bool
	WatchDebounce time.Duration
	// Events receives ModelInvalidated notifications. Optional.
	Events pubsub.Publisher[any]
	// Tracer records resolve/load spans. Optional.
	Tracer trace.Tracer
}

// Worktree is one root directory of the project.
type Worktree struct {
	ID   project.WorktreeID
	Root string
}

// ModelInvalidated is published when a cached model is dropped because its
// file changed on disk.
type ModelInvalidated struct {
	Path project.Path
}

type cacheKey string

// Project implements project.Project over local directories.
type Project struct {
	worktrees  []Worktree
	exclusions []string
	ttl        time.Duration
	events     pubsub.Publisher[any]
	tracer     trace.Tracer

	mu        sync.Mutex
	entries   map[project.Path]project.EntryID
	nextEntry project.EntryID

	models *cachemanager.ReadThroughCache[cacheKey, project.Item, project.Path]

	watchCfg *watcher.Config
	watcher  *watcher.Watcher
}

var _ project.Project = (*Project)(nil)

// New opens the configured roots. Roots must be existing directories.
func New(cfg Config) (*Project, error) {
	if len(cfg.Roots) == 0 {
		return nil, ErrNoRoots
	}
	for _, pattern := range cfg.Exclusions {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, pattern)
		}
	}

	p := &Project{
		exclusions: cfg.Exclusions,
		ttl:        cfg.CacheTTL,
		events:     cfg.Events,
		tracer:     cfg.Tracer,
		entries:    make(map[project.Path]project.EntryID),
		nextEntry:  1,
	}
	if p.ttl <= 0 {
		p.ttl = cachemanager.DefaultExpiration
	}
	if p.tracer == nil {
		p.tracer = noop.NewTracerProvider().Tracer("fsproject")
	}

	for _, root := range cfg.Roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("resolving root %s: %w", root, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("opening root %s: %w", abs, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("opening root %s: not a directory", abs)
		}
		p.worktrees = append(p.worktrees, Worktree{
			ID:   project.WorktreeID(uuid.NewString()),
			Root: abs,
		})
	}

	backing := cachemanager.NewInMemoryCacheManager[cacheKey, project.Item]("models", p.ttl, cachemanager.DefaultCleanupInterval)
	p.models = cachemanager.NewReadThroughCache[cacheKey, project.Item, project.Path](backing, p.load, false)

	if cfg.Watch {
		roots := make([]string, 0, len(p.worktrees))
		for _, wt := range p.worktrees {
			roots = append(roots, wt.Root)
		}
		wc := watcher.DefaultConfig(roots...)
		if cfg.WatchDebounce > 0 {
			wc.DebounceDur = cfg.WatchDebounce
		}
		wc.Ignore = p.isExcludedAbs
		p.watchCfg = &wc
	}

	log.Info(log.CatProject, "project opened", "worktrees", len(p.worktrees), "exclusions", len(p.exclusions))
	return p, nil
}

// Worktrees returns the project's worktrees in configuration order.
func (p *Project) Worktrees() []Worktree {
	out := make([]Worktree, len(p.worktrees))
	copy(out, p.worktrees)
	return out
}

// ResolveAbsPath maps an absolute path into the worktree with the deepest
// matching root.
func (p *Project) ResolveAbsPath(ctx context.Context, abs string) (project.Path, error) {
	ctx, span := p.tracer.Start(ctx, tracing.SpanProjectResolve, trace.WithAttributes(attribute.String(tracing.AttrLocator, abs)))
	defer span.End()

	fail := func(err error) (project.Path, error) {
		span.RecordError(err)
		log.Debug(log.CatProject, "resolve failed", "locator", abs, "error", err)
		return project.Path{}, &project.ResolutionError{Locator: abs, Err: err}
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	if !filepath.IsAbs(abs) {
		return fail(fmt.Errorf("%w: path is not absolute", project.ErrNotFound))
	}
	abs = filepath.Clean(abs)

	wt, rel, ok := p.locate(abs)
	if !ok {
		return fail(fmt.Errorf("%w: outside every worktree", project.ErrNotFound))
	}
	if p.isExcluded(rel) {
		return fail(fmt.Errorf("%w: excluded", project.ErrNotFound))
	}
	if _, err := os.Stat(abs); err != nil {
		return fail(classify(err))
	}

	resolved := project.NewPath(wt.ID, rel)
	span.SetAttributes(attribute.String(tracing.AttrProjectPath, resolved.String()))
	return resolved, nil
}

// Open returns the model for path, loading it on first use.
func (p *Project) Open(ctx context.Context, path project.Path) (project.Item, error) {
	ctx, span := p.tracer.Start(ctx, tracing.SpanProjectLoad, trace.WithAttributes(attribute.String(tracing.AttrProjectPath, path.String())))
	defer span.End()

	if err := ctx.Err(); err != nil {
		return nil, &project.LoadError{Path: path, Err: err}
	}
	if _, ok := p.worktree(path.Worktree); !ok {
		return nil, &project.LoadError{Path: path, Err: fmt.Errorf("%w: unknown worktree", project.ErrNotFound)}
	}
	if p.isExcluded(path.Rel) {
		return nil, &project.LoadError{Path: path, Err: fmt.Errorf("%w: excluded", project.ErrNotFound)}
	}

	model, err := p.models.GetWithRefresh(ctx, cacheKey(path.String()), path, p.ttl)
	if err != nil {
		span.RecordError(err)
		var loadErr *project.LoadError
		if errors.As(err, &loadErr) {
			return nil, loadErr
		}
		return nil, &project.LoadError{Path: path, Err: err}
	}
	return model, nil
}

// NewUntitled creates an in-memory buffer with no entry id.
func (p *Project) NewUntitled(text string) *project.Buffer {
	return project.NewUntitledBuffer(text)
}

// AbsPath converts a project path back to a filesystem path.
func (p *Project) AbsPath(path project.Path) (string, error) {
	wt, ok := p.worktree(path.Worktree)
	if !ok {
		return "", fmt.Errorf("%w: unknown worktree %s", project.ErrNotFound, path.Worktree)
	}
	return filepath.Join(wt.Root, filepath.FromSlash(path.Rel)), nil
}

// Invalidate drops cached models for the given absolute paths so the next
// Open reloads them from disk.
func (p *Project) Invalidate(ctx context.Context, absPaths ...string) {
	for _, abs := range absPaths {
		wt, rel, ok := p.locate(filepath.Clean(abs))
		if !ok {
			continue
		}
		path := project.NewPath(wt.ID, rel)
		p.models.Forget(ctx, cacheKey(path.String()))
		log.Debug(log.CatProject, "model invalidated", "path", path)
		if p.events != nil {
			p.events.Publish(pubsub.ProjectEvent, ModelInvalidated{Path: path})
		}
	}
}

// Start begins watching the worktrees when watching is enabled. The watch
// stops when ctx ends or Close is called.
func (p *Project) Start(ctx context.Context) error {
	if p.watchCfg == nil {
		return nil
	}
	w, err := watcher.New(*p.watchCfg)
	if err != nil {
		return err
	}
	changes, err := w.Start()
	if err != nil {
		_ = w.Stop()
		return err
	}
	p.mu.Lock()
	p.watcher = w
	p.mu.Unlock()

	go func() {
		for {
			select {
			case <-ctx.Done():
				_ = w.Stop()
				return
			case batch, ok := <-changes:
				if !ok {
					return
				}
				log.Debug(log.CatWatcher, "worktree changed", "paths", len(batch))
				p.Invalidate(ctx, batch...)
			}
		}
	}()
	return nil
}

// Close stops the watcher, if any.
func (p *Project) Close() error {
	p.mu.Lock()
	w := p.watcher
	p.watcher = nil
	p.mu.Unlock()
	if w == nil {
		return nil
	}
	return w.Stop()
}

// load reads path from disk. It runs behind the read-through cache.
func (p *Project) load(ctx context.Context, path project.Path) (project.Item, error) {
	abs, err := p.AbsPath(path)
	if err != nil {
		return nil, &project.LoadError{Path: path, Err: err}
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, &project.LoadError{Path: path, Err: classify(err)}
	}
	if info.IsDir() {
		return nil, &project.LoadError{Path: path, Err: project.ErrIsDirectory}
	}
	if err := ctx.Err(); err != nil {
		return nil, &project.LoadError{Path: path, Err: err}
	}
	data, err := os.ReadFile(abs) //nolint:gosec // G304: path is inside a configured worktree
	if err != nil {
		return nil, &project.LoadError{Path: path, Err: classify(err)}
	}

	model := classifyContent(path, p.entryFor(path), data)
	log.Debug(log.CatProject, "model loaded", "path", path, "kind", fmt.Sprintf("%T", model), "bytes", len(data))
	return model, nil
}

// entryFor returns the stable entry id for path, allocating one on first use.
func (p *Project) entryFor(path project.Path) project.EntryID {
	p.mu.Lock()
	defer p.mu.Unlock()
	if id, ok := p.entries[path]; ok {
		return id
	}
	id := p.nextEntry
	p.nextEntry++
	p.entries[path] = id
	return id
}

func (p *Project) worktree(id project.WorktreeID) (Worktree, bool) {
	for _, wt := range p.worktrees {
		if wt.ID == id {
			return wt, true
		}
	}
	return Worktree{}, false
}

// locate finds the worktree with the deepest root containing abs.
func (p *Project) locate(abs string) (Worktree, string, bool) {
	var (
		best    Worktree
		bestRel string
		found   bool
	)
	for _, wt := range p.worktrees {
		rel, err := filepath.Rel(wt.Root, abs)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		if !found || len(wt.Root) > len(best.Root) {
			best, bestRel, found = wt, filepath.ToSlash(rel), true
		}
	}
	if bestRel == "." {
		bestRel = ""
	}
	return best, bestRel, found
}

// isExcluded reports whether rel or one of its parents matches an exclusion.
func (p *Project) isExcluded(rel string) bool {
	if len(p.exclusions) == 0 || rel == "" {
		return false
	}
	for candidate := rel; candidate != "." && candidate != "/" && candidate != ""; candidate = path.Dir(candidate) {
		for _, pattern := range p.exclusions {
			if ok, _ := doublestar.Match(pattern, candidate); ok {
				return true
			}
		}
	}
	return false
}

func (p *Project) isExcludedAbs(abs string) bool {
	_, rel, ok := p.locate(filepath.Clean(abs))
	return ok && p.isExcluded(rel)
}

// classify maps filesystem errors onto the project error taxonomy.
func classify(err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %w", project.ErrNotFound, err)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %w", project.ErrPermissionDenied, err)
	default:
		return fmt.Errorf("%w: %w", project.ErrIO, err)
	}
}
