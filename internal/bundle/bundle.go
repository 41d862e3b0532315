// Package bundle locates OSGi bundles and the component descriptors their
// manifests declare.
package bundle

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/standardbeagle/dsrefs/internal/debug"
	"github.com/standardbeagle/dsrefs/internal/errors"
	"github.com/standardbeagle/dsrefs/internal/types"
)

// Manifest headers and locations.
const (
	ManifestPath           = "META-INF/MANIFEST.MF"
	HeaderSymbolicName     = "Bundle-SymbolicName"
	HeaderVersion          = "Bundle-Version"
	HeaderServiceComponent = "Service-Component"
)

var trace = debug.Option("search")

// Bundle is a bundle directory or bundle jar.
type Bundle struct {
	Location     string
	SymbolicName string
	Version      string
	Manifest     Manifest

	archive bool
}

// Open reads the manifest of the bundle at location, which may be a bundle
// directory, a jar, or the manifest file itself. Locations without a manifest
// or without a symbolic name yield an error matching errors.ErrNotBundle.
func Open(location string) (*Bundle, error) {
	if filepath.Base(location) == "MANIFEST.MF" && filepath.Base(filepath.Dir(location)) == "META-INF" {
		location = filepath.Dir(filepath.Dir(location))
	}
	info, err := os.Stat(location)
	if err != nil {
		return nil, errors.NewManifestError(location, err)
	}

	b := &Bundle{Location: location, archive: !info.IsDir()}
	raw, err := b.ReadFile(ManifestPath)
	if err != nil {
		if os.IsNotExist(err) || err == fs.ErrNotExist {
			return nil, errors.NewManifestError(location, errors.ErrNotBundle)
		}
		return nil, errors.NewManifestError(location, err)
	}

	m, err := ParseManifest(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.NewManifestError(location, err)
	}
	name, ok := m.Get(HeaderSymbolicName)
	if !ok {
		return nil, errors.NewManifestError(location, errors.ErrNotBundle)
	}
	if i := strings.IndexByte(name, ';'); i >= 0 {
		name = name[:i]
	}
	b.SymbolicName = strings.TrimSpace(name)
	b.Version, _ = m.Get(HeaderVersion)
	b.Manifest = m
	return b, nil
}

// IsArchive reports whether the bundle is a jar.
func (b *Bundle) IsArchive() bool { return b.archive }

func (b *Bundle) String() string {
	return b.SymbolicName
}

// Resource names a file of the bundle for display: the file path for
// directory bundles, jar!/entry for archives.
func (b *Bundle) Resource(name string) string {
	if b.archive {
		return b.Location + "!/" + name
	}
	return filepath.Join(b.Location, filepath.FromSlash(name))
}

// ServiceComponents returns the Service-Component header elements, or nil
// when the header is absent.
func (b *Bundle) ServiceComponents() []string {
	header, ok := b.Manifest.Get(HeaderServiceComponent)
	if !ok {
		return nil
	}
	var out []string
	for _, element := range strings.Split(header, ",") {
		if element = strings.TrimSpace(element); element != "" {
			out = append(out, element)
		}
	}
	return out
}

// Descriptor is a component descriptor file of a bundle.
type Descriptor struct {
	Bundle   *Bundle
	Path     string // bundle relative, slash separated
	Resource string
}

// Read returns the descriptor content.
func (d Descriptor) Read() ([]byte, error) {
	return d.Bundle.ReadFile(d.Path)
}

// Descriptors resolves the Service-Component header to descriptor files.
// A literal element names one file; a '*' in the last segment selects the
// files of that folder whose names match it. Missing files and folders are
// traced and skipped. Results keep header order without duplicates.
func (b *Bundle) Descriptors() ([]Descriptor, error) {
	elements := b.ServiceComponents()
	if elements == nil {
		trace.Tracef("No Service-Component header in bundle: %s", b.Location)
		return nil, nil
	}

	var entries []string
	if b.archive {
		var err error
		if entries, err = b.archiveEntries(); err != nil {
			return nil, errors.NewManifestError(b.Location, err)
		}
	}

	seen := make(map[string]bool)
	var out []Descriptor
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			out = append(out, Descriptor{Bundle: b, Path: name, Resource: b.Resource(name)})
		}
	}

	for _, element := range elements {
		clean := strings.TrimPrefix(path.Clean("/"+element), "/")
		folder, last := path.Split(clean)
		folder = strings.TrimSuffix(folder, "/")

		if !strings.Contains(last, "*") {
			if b.exists(clean, entries) {
				add(clean)
			} else {
				trace.Tracef("Descriptor file does not exist: %s", b.Resource(clean))
			}
			continue
		}

		names, err := b.list(folder, entries)
		if err != nil {
			trace.TraceError("Descriptor folder does not exist: "+b.Resource(folder), err)
			continue
		}
		glob := escapeFilename(last)
		for _, name := range names {
			if matched, err := doublestar.Match(glob, name); err == nil && matched {
				add(path.Join(folder, name))
			}
		}
	}
	return out, nil
}

// escapeFilename keeps '*' as the only wildcard of a filename filter.
func escapeFilename(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '?', '[', ']', '{', '}', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (b *Bundle) exists(name string, entries []string) bool {
	if b.archive {
		for _, e := range entries {
			if e == name {
				return true
			}
		}
		return false
	}
	info, err := os.Stat(filepath.Join(b.Location, filepath.FromSlash(name)))
	return err == nil && !info.IsDir()
}

// list returns the sorted file names directly inside folder.
func (b *Bundle) list(folder string, entries []string) ([]string, error) {
	if !b.archive {
		dirEntries, err := os.ReadDir(filepath.Join(b.Location, filepath.FromSlash(folder)))
		if err != nil {
			return nil, err
		}
		var names []string
		for _, e := range dirEntries {
			if !e.IsDir() {
				names = append(names, e.Name())
			}
		}
		return names, nil
	}

	prefix := ""
	if folder != "" {
		prefix = folder + "/"
	}
	found := folder == ""
	var names []string
	for _, e := range entries {
		rest, ok := strings.CutPrefix(e, prefix)
		if !ok || rest == "" {
			continue
		}
		found = true
		if !strings.Contains(rest, "/") {
			names = append(names, rest)
		}
	}
	if !found {
		return nil, fs.ErrNotExist
	}
	sort.Strings(names)
	return names, nil
}

func (b *Bundle) archiveEntries() ([]string, error) {
	zr, err := zip.OpenReader(b.Location)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		if !strings.HasSuffix(f.Name, "/") {
			names = append(names, f.Name)
		}
	}
	return names, nil
}

// ReadFile reads a bundle relative file.
func (b *Bundle) ReadFile(name string) ([]byte, error) {
	if !b.archive {
		p := filepath.Join(b.Location, filepath.FromSlash(name))
		if info, err := os.Stat(p); err == nil && info.Size() > types.DefaultMaxFileSize {
			return nil, fmt.Errorf("%s exceeds %d bytes", p, types.DefaultMaxFileSize)
		}
		return os.ReadFile(p)
	}

	zr, err := zip.OpenReader(b.Location)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		if f.UncompressedSize64 > types.DefaultMaxFileSize {
			return nil, fmt.Errorf("%s!/%s exceeds %d bytes", b.Location, name, types.DefaultMaxFileSize)
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fs.ErrNotExist
}

// DefaultPatterns find bundle directories by their manifest, and jars.
var DefaultPatterns = []string{"**/" + ManifestPath, "**/*.jar"}

// Discover walks root and returns the sorted bundle locations matched by
// patterns, which are relative to root. Manifest matches yield their bundle directory.
// Candidates are not opened; non-bundle jars are filtered when searched.
func Discover(root string, patterns, exclude []string) ([]string, error) {
	return DiscoverWith(root, patterns, func(rel string, _ bool) bool {
		return matchAny(exclude, rel)
	})
}

// DiscoverWith is Discover with a caller supplied skip predicate. skip gets
// the slash separated path relative to root; a skipped directory is not entered.
func DiscoverWith(root string, patterns []string, skip func(rel string, isDir bool) bool) ([]string, error) {
	if skip == nil {
		skip = func(string, bool) bool { return false }
	}
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	seen := make(map[string]bool)
	var out []string

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == root {
				return err
			}
			trace.TraceError("Unable to read "+p, err)
			return nil
		}
		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if rel != "." && skip(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if skip(rel, false) || !matchAny(patterns, rel) {
			return nil
		}

		location := p
		if path.Base(rel) == "MANIFEST.MF" && path.Base(path.Dir(rel)) == "META-INF" {
			location = filepath.Dir(filepath.Dir(p))
		}
		if !seen[location] {
			seen[location] = true
			out = append(out, location)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to discover bundles in %s: %w", root, err)
	}
	sort.Strings(out)
	return out, nil
}

func matchAny(patterns []string, name string) bool {
	for _, pattern := range patterns {
		if matched, err := doublestar.Match(pattern, name); err == nil && matched {
			return true
		}
	}
	return false
}
