package main

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/standardbeagle/dsrefs/internal/bundle"
	"github.com/standardbeagle/dsrefs/internal/cache"
	"github.com/standardbeagle/dsrefs/internal/config"
	"github.com/standardbeagle/dsrefs/internal/debug"
	"github.com/standardbeagle/dsrefs/internal/descriptor"
	"github.com/standardbeagle/dsrefs/internal/javaindex"
	"github.com/standardbeagle/dsrefs/internal/search"
)

// workspace is everything a command needs to run queries
type workspace struct {
	cfg    *config.Config
	index  *javaindex.Index
	engine *search.Engine
	scope  *search.Scope
	docs   *cache.ContentCache[*descriptor.Document]
}

// openWorkspace indexes the Java sources and discovers the bundles of cfg.
// docs may carry parsed descriptors over from a previous workspace.
func openWorkspace(ctx context.Context, cfg *config.Config, docs *cache.ContentCache[*descriptor.Document]) (*workspace, error) {
	idx, err := buildIndex(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return discover(cfg, idx, docs)
}

func buildIndex(ctx context.Context, cfg *config.Config) (*javaindex.Index, error) {
	start := time.Now()

	var roots []string
	for _, root := range cfg.SourceRoots() {
		if !javaindex.IsSourceRoot(root) {
			log.Printf("WARNING: source root %s is not a directory or source archive, skipping", root)
			continue
		}
		roots = append(roots, root)
	}

	idx, err := javaindex.Build(ctx, javaindex.Options{
		Roots:         roots,
		Include:       cfg.Index.Include,
		Exclude:       cfg.SourceExclude(),
		Workers:       cfg.Index.Workers,
		PlatformTypes: cfg.Index.PlatformTypes,
		MaxFileSize:   cfg.Index.MaxFileSize,
		MaxFileCount:  cfg.Index.MaxFileCount,
		Ignore:        cfg.SourceFilter().Ignored,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to index Java sources: %w", err)
	}
	debug.LogIndexing("Indexed %d types in %v\n", idx.Len(), time.Since(start))
	return idx, nil
}

// discover finds the bundles below the project root and derives the scope
func discover(cfg *config.Config, idx *javaindex.Index, docs *cache.ContentCache[*descriptor.Document]) (*workspace, error) {
	bundles, err := bundle.DiscoverWith(cfg.Project.Root, cfg.Workspace.Bundles, cfg.BundleFilter().SkipRel)
	if err != nil {
		return nil, err
	}
	debug.LogSearch("Discovered %d bundle candidates\n", len(bundles))

	engine := search.NewEngine(idx, bundles)
	engine.SetDocumentCache(docs)
	return &workspace{
		cfg:    cfg,
		index:  idx,
		engine: engine,
		scope:  scopeFor(cfg.Project.Root, cfg.Include, bundles),
		docs:   docs,
	}, nil
}

// scopeFor keeps the bundles whose root relative path matches an include
// pattern; no patterns keeps every bundle.
func scopeFor(root string, include, bundles []string) *search.Scope {
	if len(include) == 0 {
		return search.NewScope(bundles...)
	}
	var in []string
	for _, b := range bundles {
		rel, err := filepath.Rel(root, b)
		if err != nil {
			continue
		}
		rel = filepath.ToSlash(rel)
		for _, pattern := range include {
			if matched, err := doublestar.Match(pattern, rel); err == nil && matched {
				in = append(in, b)
				break
			}
		}
	}
	return search.NewScope(in...)
}

// progressFor reports each scanned bundle on stderr in verbose mode
func progressFor(verbose bool, report func(string)) search.Progress {
	if !verbose {
		return nil
	}
	return search.NewTracker(report)
}
