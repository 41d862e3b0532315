package pathutil

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/standardbeagle/dsrefs/internal/search"
	"github.com/standardbeagle/dsrefs/internal/types"
)

func TestToRelative(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("Unix paths")
	}

	tests := []struct {
		name     string
		absPath  string
		rootDir  string
		expected string
	}{
		{"bundle descriptor", "/work/bundles/a/OSGI-INF/c.xml", "/work", "bundles/a/OSGI-INF/c.xml"},
		{"archive entry", "/work/plugins/a.jar!/OSGI-INF/c.xml", "/work", "plugins/a.jar!/OSGI-INF/c.xml"},
		{"archive outside root", "/opt/a.jar!/OSGI-INF/c.xml", "/work", "/opt/a.jar!/OSGI-INF/c.xml"},
		{"same directory", "/work", "/work", "."},
		{"outside root", "/other/c.xml", "/work", "/other/c.xml"},
		{"dot-dot prefixed name inside root", "/work/..hidden/c.xml", "/work", "..hidden/c.xml"},
		{"already relative", "bundles/a/c.xml", "/work", "bundles/a/c.xml"},
		{"empty root", "/work/c.xml", "", "/work/c.xml"},
		{"empty path", "", "/work", ""},
		{"unclean paths", "/work/./bundles/../c.xml", "/work/", "c.xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToRelative(tt.absPath, tt.rootDir); got != tt.expected {
				t.Errorf("ToRelative(%q, %q) = %q, want %q", tt.absPath, tt.rootDir, got, tt.expected)
			}
		})
	}
}

func TestRelativeMatches(t *testing.T) {
	root := filepath.FromSlash("/work")
	matches := []types.Match{
		{Resource: filepath.FromSlash("/work/b/OSGI-INF/c.xml"), Line: 3, Kind: types.MatchBind},
	}

	converted := RelativeMatches(matches, root)
	if converted[0].Resource != filepath.FromSlash("b/OSGI-INF/c.xml") {
		t.Errorf("unexpected resource %q", converted[0].Resource)
	}
	if converted[0].Line != 3 || converted[0].Kind != types.MatchBind {
		t.Errorf("other fields changed: %+v", converted[0])
	}
	if matches[0].Resource != filepath.FromSlash("/work/b/OSGI-INF/c.xml") {
		t.Error("original slice was modified")
	}

	if got := RelativeMatches(nil, root); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}

func TestRelativeReports(t *testing.T) {
	root := filepath.FromSlash("/work")
	reports := []search.ComponentReport{{Resource: filepath.FromSlash("/work/b/c.xml"), Name: "greeter"}}

	converted := RelativeReports(reports, root)
	if converted[0].Resource != filepath.FromSlash("b/c.xml") || converted[0].Name != "greeter" {
		t.Errorf("unexpected report %+v", converted[0])
	}
	if reports[0].Resource != filepath.FromSlash("/work/b/c.xml") {
		t.Error("original slice was modified")
	}
}
