package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"
)

// PathFilter decides which paths below the project root are skipped by bundle
// discovery and source indexing: configured exclusions plus .gitignore rules.
type PathFilter struct {
	root      string
	exclude   []string
	gitignore *ignore.GitIgnore
}

// NewPathFilter builds a filter rooted at root. When respectGitignore is set
// the root .gitignore is loaded; a missing file means no rules.
func NewPathFilter(root string, exclude []string, respectGitignore bool) *PathFilter {
	f := &PathFilter{root: filepath.Clean(root), exclude: exclude}
	if respectGitignore {
		f.gitignore = loadGitignore(root)
	}
	return f
}

// loadGitignore compiles the root .gitignore, nil when absent or empty
func loadGitignore(root string) *ignore.GitIgnore {
	content, err := os.ReadFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}

	var patterns []string
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	if len(patterns) == 0 {
		return nil
	}
	return ignore.CompileIgnoreLines(patterns...)
}

// SkipRel reports whether the slash separated path relative to the root is
// filtered out.
func (f *PathFilter) SkipRel(rel string, isDir bool) bool {
	if f == nil || rel == "" || rel == "." {
		return false
	}
	for _, pattern := range f.exclude {
		if matched, err := doublestar.Match(pattern, rel); err == nil && matched {
			return true
		}
	}
	return f.ignored(rel, isDir)
}

// Ignored applies only the .gitignore rules to an absolute path. Paths
// outside the root are never ignored.
func (f *PathFilter) Ignored(path string, isDir bool) bool {
	if f == nil || f.gitignore == nil {
		return false
	}
	rel, err := filepath.Rel(f.root, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return false
	}
	return f.ignored(filepath.ToSlash(rel), isDir)
}

func (f *PathFilter) ignored(rel string, isDir bool) bool {
	if f.gitignore == nil {
		return false
	}
	if isDir {
		// directory-only rules such as "bin/" need the trailing slash
		return f.gitignore.MatchesPath(rel) || f.gitignore.MatchesPath(rel+"/")
	}
	return f.gitignore.MatchesPath(rel)
}

// BundleFilter returns the filter applied to bundle discovery.
func (c *Config) BundleFilter() *PathFilter {
	return NewPathFilter(c.Project.Root, c.BundleExclude(), c.Index.RespectGitignore)
}

// SourceFilter returns the filter applied to source indexing.
func (c *Config) SourceFilter() *PathFilter {
	return NewPathFilter(c.Project.Root, c.SourceExclude(), c.Index.RespectGitignore)
}
