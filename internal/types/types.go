package types

import "fmt"

// Common system-wide constants
const (
	DefaultMaxFileSize = 10 * 1024 * 1024 // 10MB per source or descriptor file
	// Rationale: descriptors are tiny and Java sources rarely exceed a few
	// hundred KB; anything larger is generated code not worth indexing.

	DefaultMaxFileCount = 50000 // Maximum Java sources indexed in a single build
)

// SourceLocation identifies where a symbol was declared.
type SourceLocation struct {
	Path   string // file path, or archive path joined with "!/" and the entry name
	Line   int    // 1-based
	Column int    // 1-based
	Offset int    // byte offset in the file
}

func (l SourceLocation) String() string {
	if l.Path == "" {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", l.Path, l.Line, l.Column)
}
