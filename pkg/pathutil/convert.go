// Package pathutil provides utilities for converting between absolute and relative paths.
//
// Bundles, descriptors and sources are tracked by absolute path. User-facing
// output uses paths relative to the project root for readability; this
// package is the conversion layer between the two.
package pathutil

import (
	"path/filepath"
	"strings"

	"github.com/standardbeagle/dsrefs/internal/search"
	"github.com/standardbeagle/dsrefs/internal/types"
)

// ArchiveSeparator splits an archive path from the entry inside it
const ArchiveSeparator = "!/"

// ToRelative converts an absolute path to relative based on a root directory.
// Falls back to the original path if conversion fails or path is already relative.
// Archive entry paths keep their entry part.
//
// Examples:
//   - ToRelative("/work/bundles/a/OSGI-INF/c.xml", "/work") → "bundles/a/OSGI-INF/c.xml"
//   - ToRelative("/work/plugins/a.jar!/OSGI-INF/c.xml", "/work") → "plugins/a.jar!/OSGI-INF/c.xml"
//   - ToRelative("/other/c.xml", "/work") → "/other/c.xml" (outside root)
func ToRelative(absPath, rootDir string) string {
	if archive, entry, ok := strings.Cut(absPath, ArchiveSeparator); ok {
		return ToRelative(archive, rootDir) + ArchiveSeparator + entry
	}

	// Handle empty inputs
	if absPath == "" || rootDir == "" {
		return absPath
	}

	// If path is already relative, return as-is
	if !filepath.IsAbs(absPath) {
		return absPath
	}

	absPath = filepath.Clean(absPath)
	rootDir = filepath.Clean(rootDir)

	relPath, err := filepath.Rel(rootDir, absPath)
	if err != nil {
		// Conversion failed (e.g., different drives on Windows) - return absolute
		return absPath
	}

	// A path outside the root is clearer in absolute form
	if relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return absPath
	}

	return relPath
}

// RelativeMatches returns a copy of matches with resources relative to rootDir.
func RelativeMatches(matches []types.Match, rootDir string) []types.Match {
	if len(matches) == 0 {
		return matches
	}

	converted := make([]types.Match, len(matches))
	copy(converted, matches)
	for i := range converted {
		converted[i].Resource = ToRelative(converted[i].Resource, rootDir)
	}
	return converted
}

// RelativeReports returns a copy of reports with resources relative to rootDir.
func RelativeReports(reports []search.ComponentReport, rootDir string) []search.ComponentReport {
	if len(reports) == 0 {
		return reports
	}

	converted := make([]search.ComponentReport, len(reports))
	copy(converted, reports)
	for i := range converted {
		converted[i].Resource = ToRelative(converted[i].Resource, rootDir)
	}
	return converted
}
