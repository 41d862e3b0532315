package javaindex

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/dsrefs/internal/debug"
	"github.com/standardbeagle/dsrefs/internal/errors"
	"github.com/standardbeagle/dsrefs/internal/security"
	"github.com/standardbeagle/dsrefs/internal/types"
)

// Options controls which Java sources are indexed.
type Options struct {
	Roots         []string // directories, or jar/zip archives holding .java entries
	Include       []string // doublestar patterns relative to a root; default **/*.java
	Exclude       []string
	Workers       int  // parallel parsers; default GOMAXPROCS
	PlatformTypes bool // seed the index with PlatformTypes
	MaxFileSize   int64
	MaxFileCount  int
	// Ignore, when set, drops directory entries by absolute path on top of
	// Exclude, e.g. paths matched by .gitignore.
	Ignore func(path string, isDir bool) bool
	// ValidationThresholdKB is the size above which a source is screened
	// for binary content before parsing; default security.DefaultThresholdKB.
	ValidationThresholdKB int64
}

// DefaultInclude matches every Java source below a root.
var DefaultInclude = []string{"**/*.java"}

type sourceFile struct {
	path    string
	content []byte
}

// Build scans the roots, parses every matching source in parallel and returns
// the populated index. Files that fail to parse are logged and skipped; only
// cancellation aborts the build.
func Build(ctx context.Context, opts Options) (*Index, error) {
	if len(opts.Include) == 0 {
		opts.Include = DefaultInclude
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = types.DefaultMaxFileSize
	}
	if opts.MaxFileCount <= 0 {
		opts.MaxFileCount = types.DefaultMaxFileCount
	}
	if opts.ValidationThresholdKB <= 0 {
		opts.ValidationThresholdKB = security.DefaultThresholdKB
	}

	files, err := collectSources(ctx, opts)
	if err != nil {
		return nil, err
	}
	debug.LogIndexing("Collected %d Java sources from %d roots\n", len(files), len(opts.Roots))

	parsed, err := parseAll(ctx, files, opts.Workers)
	if err != nil {
		return nil, err
	}

	idx := New()
	for _, ts := range parsed {
		idx.Add(ts...)
	}
	if opts.PlatformTypes {
		idx.AddPlatformTypes()
	}
	debug.LogIndexing("Indexed %d types\n", idx.Len())
	return idx, nil
}

// collectSources reads all matching files, dropping byte-identical copies
// (a source folder and its source jar usually coexist in a workspace).
func collectSources(ctx context.Context, opts Options) ([]sourceFile, error) {
	var files []sourceFile
	seen := make(map[uint64]string)
	validator := security.NewFileValidator(opts.ValidationThresholdKB)

	add := func(path string, content []byte) error {
		if err := ctx.Err(); err != nil {
			return errors.NewCanceledError("source scan", err)
		}
		if len(files) >= opts.MaxFileCount {
			return nil
		}
		hash := xxhash.Sum64(content)
		if prev, dup := seen[hash]; dup {
			debug.LogIndexing("Skipping %s, identical to %s\n", path, prev)
			return nil
		}
		seen[hash] = path
		files = append(files, sourceFile{path: path, content: content})
		return nil
	}

	for _, root := range opts.Roots {
		info, err := os.Stat(root)
		if err != nil {
			log.Printf("WARNING: source root %s: %v", root, err)
			continue
		}
		if info.IsDir() {
			err = scanDir(root, opts, validator, add)
		} else {
			err = scanArchive(root, opts, validator, add)
		}
		if err != nil {
			if errors.IsCanceled(err) {
				return nil, err
			}
			log.Printf("WARNING: source root %s: %v", root, err)
		}
	}
	return files, nil
}

func scanDir(root string, opts Options, validator *security.FileValidator, add func(string, []byte) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if rel != "." && (matchAny(opts.Exclude, rel) || ignored(opts, path, true)) {
				return filepath.SkipDir
			}
			return nil
		}
		if !matchAny(opts.Include, rel) || matchAny(opts.Exclude, rel) || ignored(opts, path, false) {
			return nil
		}
		if info, infoErr := d.Info(); infoErr == nil && info.Size() > opts.MaxFileSize {
			debug.LogIndexing("Skipping %s, %d bytes exceeds limit\n", path, info.Size())
			return nil
		}
		if err := validator.ValidateLargeFile(path); err != nil {
			log.Printf("WARNING: skipping %s: %v", path, err)
			return nil
		}
		content, readErr := os.ReadFile(path)
		if readErr != nil {
			log.Printf("WARNING: failed to read %s: %v", path, readErr)
			return nil
		}
		return add(path, content)
	})
}

func scanArchive(archive string, opts Options, validator *security.FileValidator, add func(string, []byte) error) error {
	zr, err := zip.OpenReader(archive)
	if err != nil {
		return fmt.Errorf("not a source archive: %w", err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !matchAny(opts.Include, f.Name) || matchAny(opts.Exclude, f.Name) {
			continue
		}
		if int64(f.UncompressedSize64) > opts.MaxFileSize {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			log.Printf("WARNING: failed to open %s!/%s: %v", archive, f.Name, err)
			continue
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			log.Printf("WARNING: failed to read %s!/%s: %v", archive, f.Name, err)
			continue
		}
		if err := validator.ValidateContent(content); err != nil {
			log.Printf("WARNING: skipping %s!/%s: %v", archive, f.Name, err)
			continue
		}
		if err := add(archive+"!/"+f.Name, content); err != nil {
			return err
		}
	}
	return nil
}

func ignored(opts Options, path string, isDir bool) bool {
	return opts.Ignore != nil && opts.Ignore(path, isDir)
}

func matchAny(patterns []string, path string) bool {
	for _, pattern := range patterns {
		if matched, err := doublestar.Match(pattern, path); err == nil && matched {
			return true
		}
	}
	return false
}

// parseAll extracts types with one parser per worker. Results come back in
// file order so the index is deterministic.
func parseAll(ctx context.Context, files []sourceFile, workers int) ([][]*types.TypeSymbol, error) {
	results := make([][]*types.TypeSymbol, len(files))
	jobs := make(chan int)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(jobs)
		for n := range files {
			select {
			case jobs <- n:
			case <-gctx.Done():
				return nil
			}
		}
		return nil
	})

	var mu sync.Mutex
	var failures []error
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			extractor, err := NewExtractor()
			if err != nil {
				return err
			}
			defer extractor.Close()

			for n := range jobs {
				ts, err := extractor.Extract(files[n].path, files[n].content)
				if err != nil {
					mu.Lock()
					failures = append(failures, err)
					mu.Unlock()
					continue
				}
				results[n] = ts
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.NewCanceledError("source parse", err)
	}

	sort.Slice(failures, func(a, b int) bool { return failures[a].Error() < failures[b].Error() })
	for _, f := range failures {
		log.Printf("WARNING: %v", f)
	}
	return results, nil
}

// IsSourceRoot reports whether path is a directory or archive Build can scan.
func IsSourceRoot(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if info.IsDir() {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".jar" || ext == ".zip"
}
