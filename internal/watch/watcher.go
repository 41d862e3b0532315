// Package watch re-runs work when bundle descriptors, manifests or Java
// sources change below a project root.
package watch

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/standardbeagle/dsrefs/internal/debug"
)

// EventType is the collapsed kind of change seen for a path in one batch
type EventType int

const (
	EventCreate EventType = iota
	EventWrite
	EventRemove
	EventRename
)

func (t EventType) String() string {
	switch t {
	case EventCreate:
		return "create"
	case EventWrite:
		return "write"
	case EventRemove:
		return "remove"
	case EventRename:
		return "rename"
	}
	return "unknown"
}

// Event is one changed path in a batch
type Event struct {
	Path string
	Type EventType
}

// DefaultDebounce is used when Options.Debounce is not positive
const DefaultDebounce = 300 * time.Millisecond

// Options controls what is watched.
type Options struct {
	Debounce time.Duration
	// Skip filters paths relative to the root, slash separated. A skipped
	// directory is not watched.
	Skip func(rel string, isDir bool) bool
	// Relevant selects the files whose changes trigger a batch; default
	// IsRelevant.
	Relevant func(path string) bool
}

// IsRelevant reports whether a change to path can alter search results:
// component descriptors, manifests, bundle archives and Java sources.
func IsRelevant(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml", ".java", ".jar", ".zip":
		return true
	}
	return strings.EqualFold(filepath.Base(path), "MANIFEST.MF")
}

// Watcher monitors a directory tree and delivers debounced batches of changes
type Watcher struct {
	root    string
	opts    Options
	watcher *fsnotify.Watcher

	pending map[string]EventType

	eventsProcessed atomic.Int64
	batches         atomic.Int64
}

// New creates a watcher for root. Nothing is watched until Run.
func New(root string, opts Options) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Relevant == nil {
		opts.Relevant = IsRelevant
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		root:    abs,
		opts:    opts,
		watcher: w,
		pending: make(map[string]EventType),
	}, nil
}

// Run watches until ctx is done, calling onBatch from the calling goroutine
// with the sorted changes of each quiet period. Pending changes are dropped
// on shutdown. The underlying watcher is closed when Run returns.
func (w *Watcher) Run(ctx context.Context, onBatch func(context.Context, []Event)) error {
	defer w.watcher.Close()

	debug.LogIndexing("Starting file watcher for directory: %s\n", w.root)
	if err := w.addWatches(w.root); err != nil {
		return fmt.Errorf("failed to add watches starting from %s: %w", w.root, err)
	}

	timer := time.NewTimer(w.opts.Debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if w.handleEvent(event) {
				timer.Reset(w.opts.Debounce)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("WARNING: file watcher error: %v", err)

		case <-timer.C:
			if batch := w.drain(); len(batch) > 0 {
				w.batches.Add(1)
				debug.LogIndexing("Processing %d debounced file events\n", len(batch))
				onBatch(ctx, batch)
			}
		}
	}
}

// EventsProcessed returns how many relevant events were recorded
func (w *Watcher) EventsProcessed() int64 { return w.eventsProcessed.Load() }

// Batches returns how many batches were delivered
func (w *Watcher) Batches() int64 { return w.batches.Load() }

// addWatches recursively adds watches to all relevant directories
func (w *Watcher) addWatches(root string) error {
	// Track visited directories to prevent infinite loops from symlink cycles
	visitedDirs := make(map[string]bool)

	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil // Skip errors, continue walking
		}
		if !d.IsDir() {
			return nil
		}

		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return nil // Skip symlinks that can't be resolved
		}
		if visitedDirs[realPath] {
			return filepath.SkipDir
		}
		visitedDirs[realPath] = true

		if w.skip(path, true) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			log.Printf("WARNING: failed to add watch for %s: %v", path, err)
		}
		return nil
	})
}

func (w *Watcher) skip(path string, isDir bool) bool {
	if w.opts.Skip == nil {
		return false
	}
	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == "." {
		return false
	}
	return w.opts.Skip(filepath.ToSlash(rel), isDir)
}

// handleEvent records a single fsnotify event and reports whether it was
// relevant
func (w *Watcher) handleEvent(event fsnotify.Event) bool {
	path := event.Name
	debug.LogIndexing("FileWatcher: received event %v for path %s\n", event.Op, path)

	info, err := os.Stat(path)
	if err == nil && info.IsDir() {
		// New directories are watched, and may already hold files
		if event.Op&fsnotify.Create != 0 && !w.skip(path, true) {
			if err := w.addWatches(path); err != nil {
				log.Printf("WARNING: failed to add watch for new directory %s: %v", path, err)
			}
		}
		return false
	}

	eventType, ok := classify(event.Op)
	if !ok || w.skip(path, false) || !w.opts.Relevant(path) {
		return false
	}

	w.pending[path] = collapse(w.pending[path], eventType, w.hasPending(path))
	w.eventsProcessed.Add(1)
	return true
}

func (w *Watcher) hasPending(path string) bool {
	_, ok := w.pending[path]
	return ok
}

// drain returns the pending events sorted by path and resets the batch
func (w *Watcher) drain() []Event {
	if len(w.pending) == 0 {
		return nil
	}
	out := make([]Event, 0, len(w.pending))
	for path, t := range w.pending {
		out = append(out, Event{Path: path, Type: t})
	}
	w.pending = make(map[string]EventType)
	sort.Slice(out, func(a, b int) bool { return out[a].Path < out[b].Path })
	return out
}

func classify(op fsnotify.Op) (EventType, bool) {
	switch {
	case op&fsnotify.Create != 0:
		return EventCreate, true
	case op&fsnotify.Write != 0:
		return EventWrite, true
	case op&fsnotify.Remove != 0:
		return EventRemove, true
	case op&fsnotify.Rename != 0:
		return EventRename, true
	}
	return 0, false
}

// collapse merges a new event into the one already pending for a path. A
// file created in this batch stays a create while it is written.
func collapse(prev, next EventType, pending bool) EventType {
	if pending && prev == EventCreate && next == EventWrite {
		return EventCreate
	}
	return next
}
