package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zjrosen/panekit/internal/config"
	"github.com/zjrosen/panekit/internal/fsproject"
	"github.com/zjrosen/panekit/internal/item"
	"github.com/zjrosen/panekit/internal/items"
	"github.com/zjrosen/panekit/internal/log"
	"github.com/zjrosen/panekit/internal/pubsub"
	"github.com/zjrosen/panekit/internal/registry"
	"github.com/zjrosen/panekit/internal/tracing"
	"github.com/zjrosen/panekit/internal/workspace"
)

// environment is one running workspace with everything it depends on.
type environment struct {
	tracing   *tracing.Provider
	events    *pubsub.Broker[any]
	project   *fsproject.Project
	registry  *registry.Registry
	workspace *workspace.Workspace
	cancel    context.CancelFunc
}

// newEnvironment wires tracing, the filesystem project, the item registry
// and a started workspace. roots override c.Roots when non-empty.
func newEnvironment(ctx context.Context, c config.Config, roots []string) (*environment, error) {
	resolved, err := resolveRoots(c.Roots, roots)
	if err != nil {
		return nil, err
	}

	tp, err := tracing.NewProvider(c.Tracing)
	if err != nil {
		return nil, fmt.Errorf("initializing tracing: %w", err)
	}

	events := pubsub.NewBroker[any]()
	proj, err := fsproject.New(fsproject.Config{
		Roots:         resolved,
		Exclusions:    c.FileScanExclusions,
		CacheTTL:      c.CacheTTL,
		Watch:         c.Watch,
		WatchDebounce: c.WatchDebounce,
		Events:        events,
		Tracer:        tp.Tracer(),
	})
	if err != nil {
		events.Close()
		_ = tp.Shutdown(context.Background())
		return nil, fmt.Errorf("opening project: %w", err)
	}

	reg := registry.Default()
	items.RegisterAll(reg, c.Items)

	ws := workspace.New(proj,
		workspace.WithRegistry(reg),
		workspace.WithEvents(events),
		workspace.WithTracer(tp.Tracer()),
		workspace.WithQueueCapacity(c.QueueCapacity),
	)

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	env := &environment{
		tracing:   tp,
		events:    events,
		project:   proj,
		registry:  reg,
		workspace: ws,
		cancel:    cancel,
	}
	if err := ws.Start(runCtx); err != nil {
		env.Close()
		return nil, fmt.Errorf("starting workspace: %w", err)
	}
	if err := proj.Start(runCtx); err != nil {
		// The workspace still works without live reload.
		log.Warn(log.CatWatcher, "file watching disabled", "error", err)
	}
	return env, nil
}

// openArg opens a command-line path, relative to the working directory.
func (e *environment) openArg(ctx context.Context, arg string) (item.ProjectItem, error) {
	abs, err := filepath.Abs(arg)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", arg, err)
	}
	it, err := e.workspace.OpenAbsPath(ctx, abs)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", arg, err)
	}
	return it, nil
}

// Close stops the workspace, the watcher and the tracer, in that order.
func (e *environment) Close() {
	e.workspace.Close()
	e.cancel()
	_ = e.project.Close()
	e.events.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := e.tracing.Shutdown(ctx); err != nil {
		log.Warn(log.CatConfig, "tracing shutdown failed", "error", err)
	}
}

// resolveRoots picks flag roots over configured roots, falling back to the
// working directory, and makes them absolute.
func resolveRoots(configured, flagged []string) ([]string, error) {
	roots := configured
	if len(flagged) > 0 {
		roots = flagged
	}
	if len(roots) == 0 {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting current directory: %w", err)
		}
		roots = []string{wd}
	}
	out := make([]string, 0, len(roots))
	for _, r := range roots {
		abs, err := filepath.Abs(r)
		if err != nil {
			return nil, fmt.Errorf("resolving root %s: %w", r, err)
		}
		out = append(out, abs)
	}
	return out, nil
}
