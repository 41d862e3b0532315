package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/standardbeagle/dsrefs/internal/cache"
	"github.com/standardbeagle/dsrefs/internal/debug"
	"github.com/standardbeagle/dsrefs/internal/descriptor"
	"github.com/standardbeagle/dsrefs/internal/watch"

	"github.com/urfave/cli/v2"
)

func watchCommand(c *cli.Context) error {
	if c.NArg() < 1 {
		return errors.New("usage: dsrefs watch <pattern>")
	}

	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	defer setupDebug(c, cfg)()

	q, err := queryFromFlags(c, cfg)
	if err != nil {
		return err
	}
	q.Pattern = c.Args().First()

	ws, err := openWorkspace(c.Context, cfg, cache.NewContentCache[*descriptor.Document](0))
	if err != nil {
		return err
	}
	rerun := func(ctx context.Context) {
		q.Scope = ws.scope
		if _, err := runSearch(c, ws, q, c.Bool("json")); err != nil && ctx.Err() == nil {
			log.Printf("ERROR: search failed: %v", err)
		}
	}
	rerun(c.Context)

	w, err := watch.New(cfg.Project.Root, watch.Options{
		Debounce: time.Duration(cfg.Index.WatchDebounceMs) * time.Millisecond,
		Skip:     cfg.BundleFilter().SkipRel,
	})
	if err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}
	fmt.Fprintf(c.App.ErrWriter, "Watching %s for changes (Ctrl+C to stop)\n", cfg.Project.Root)
	defer func() {
		stats := ws.docs.Stats()
		debug.LogSearch("Descriptor cache: %d entries, %.0f%% hit rate\n", stats.Entries, stats.HitRate*100)
	}()

	return w.Run(c.Context, func(ctx context.Context, batch []watch.Event) {
		fmt.Fprintf(c.App.ErrWriter, "\n%d files changed, searching again\n", len(batch))

		next, err := refresh(ctx, ws, batch)
		if err != nil {
			if ctx.Err() == nil {
				log.Printf("ERROR: failed to reload workspace: %v", err)
			}
			return
		}
		ws = next
		rerun(ctx)
	})
}

// refresh rebuilds what a batch invalidates: the source index when Java
// sources changed, otherwise only the bundle list. Parsed descriptors are
// dropped once files disappear so removed bundles do not linger in the cache.
func refresh(ctx context.Context, ws *workspace, batch []watch.Event) (*workspace, error) {
	if filesRemoved(batch) {
		ws.docs.Clear()
	}
	if sourcesChanged(batch) {
		return openWorkspace(ctx, ws.cfg, ws.docs)
	}
	return discover(ws.cfg, ws.index, ws.docs)
}

func sourcesChanged(batch []watch.Event) bool {
	for _, e := range batch {
		if strings.EqualFold(filepath.Ext(e.Path), ".java") {
			return true
		}
	}
	return false
}

func filesRemoved(batch []watch.Event) bool {
	for _, e := range batch {
		if e.Type == watch.EventRemove || e.Type == watch.EventRename {
			return true
		}
	}
	return false
}
