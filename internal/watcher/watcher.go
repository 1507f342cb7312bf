// Package watcher watches project roots and reports debounced batches of
// changed file paths.
package watcher

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zjrosen/panekit/internal/log"
)

// Watcher monitors directory trees and emits the set of paths that changed
// once activity has been quiet for the debounce interval.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	roots     []string
	debounce  time.Duration
	ignore    func(path string) bool
	onChange  chan []string
	done      chan struct{}
	stopOnce  sync.Once
}

// Config holds watcher configuration options.
type Config struct {
	Roots       []string
	DebounceDur time.Duration
	// Ignore reports paths (files or directories) that should not be watched
	// or reported. Optional.
	Ignore func(path string) bool
}

// DefaultConfig returns sensible defaults for the watcher.
func DefaultConfig(roots ...string) Config {
	return Config{
		Roots:       roots,
		DebounceDur: 250 * time.Millisecond,
	}
}

// New creates a watcher. Nothing is watched until Start.
func New(cfg Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	ignore := cfg.Ignore
	if ignore == nil {
		ignore = func(string) bool { return false }
	}
	return &Watcher{
		fsWatcher: fsw,
		roots:     cfg.Roots,
		debounce:  cfg.DebounceDur,
		ignore:    ignore,
		onChange:  make(chan []string, 1),
		done:      make(chan struct{}),
	}, nil
}

// Start watches every directory under each root and returns the channel
// that receives changed-path batches.
func (w *Watcher) Start() (<-chan []string, error) {
	for _, root := range w.roots {
		if err := w.addTree(root); err != nil {
			return nil, err
		}
	}
	go w.loop()
	return w.onChange, nil
}

// Stop terminates the watcher and releases resources. Safe to call twice.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.fsWatcher.Close()
	})
	return err
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return fmt.Errorf("watching directory %s: %w", root, err)
			}
			// Unreadable subdirectories are skipped, not fatal.
			return fs.SkipDir
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.ignore(path) {
			return fs.SkipDir
		}
		if err := w.fsWatcher.Add(path); err != nil {
			return fmt.Errorf("watching directory %s: %w", path, err)
		}
		return nil
	})
}

// loop collects relevant events and flushes them after the debounce interval.
func (w *Watcher) loop() {
	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		pending = make(map[string]struct{})
	)

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !w.isRelevantEvent(event) {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				// New directories need their own watch.
				if info, err := os.Lstat(event.Name); err == nil && info.IsDir() {
					_ = w.addTree(event.Name)
				}
			}
			pending[event.Name] = struct{}{}

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			if len(pending) == 0 {
				continue
			}
			batch := make([]string, 0, len(pending))
			for p := range pending {
				batch = append(batch, p)
			}
			sort.Strings(batch)
			clear(pending)

			select {
			case w.onChange <- batch:
			default:
				log.Warn(log.CatWatcher, "dropped change batch, consumer is behind", "paths", len(batch))
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.ErrorErr(log.CatWatcher, "fsnotify error", err)

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// isRelevantEvent keeps content changes and removals on paths not ignored.
func (w *Watcher) isRelevantEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	return !w.ignore(event.Name)
}
