package search

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/standardbeagle/dsrefs/internal/types"
)

// LimitTo restricts which occurrences a query looks for.
type LimitTo int

const (
	References LimitTo = iota
	AllOccurrences
	Declarations
	Implementors
)

var limitToNames = [...]string{"references", "all", "declarations", "implementors"}

func (l LimitTo) String() string {
	if l >= 0 && int(l) < len(limitToNames) {
		return limitToNames[l]
	}
	return fmt.Sprintf("LimitTo(%d)", int(l))
}

// ParseLimitTo accepts the names printed by LimitTo.String, case-insensitively.
func ParseLimitTo(s string) (LimitTo, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "all_occurrences" || s == "all-occurrences" {
		return AllOccurrences, nil
	}
	for i, name := range limitToNames {
		if name == s {
			return LimitTo(i), nil
		}
	}
	return 0, fmt.Errorf("unknown limit %q", s)
}

// searchesReferences reports whether descriptors can hold what l asks for.
func (l LimitTo) searchesReferences() bool {
	return l == References || l == AllOccurrences
}

// SearchFor is the kind of Java element a pattern query targets.
type SearchFor int

const (
	Unknown SearchFor = iota
	Type
	Class
	ClassAndInterface
	ClassAndEnum
	Interface
	InterfaceAndAnnotation
	Method
	Field
	Constructor
	Package
)

var searchForNames = [...]string{
	"unknown", "type", "class", "class_and_interface", "class_and_enum",
	"interface", "interface_and_annotation", "method", "field", "constructor", "package",
}

func (s SearchFor) String() string {
	if s >= 0 && int(s) < len(searchForNames) {
		return searchForNames[s]
	}
	return fmt.Sprintf("SearchFor(%d)", int(s))
}

// ParseSearchFor accepts the names printed by SearchFor.String. Dashes may
// stand in for underscores.
func ParseSearchFor(s string) (SearchFor, error) {
	s = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for i, name := range searchForNames {
		if name == s {
			return SearchFor(i), nil
		}
	}
	return 0, fmt.Errorf("unknown element kind %q", s)
}

// implementations reports whether s can match an implementation class.
func (s SearchFor) implementations() bool {
	switch s {
	case Unknown, Type, Class, ClassAndInterface, ClassAndEnum:
		return true
	}
	return false
}

// interfaces reports whether s can match a provided or referenced interface.
func (s SearchFor) interfaces() bool {
	return s.implementations() || s == Interface || s == InterfaceAndAnnotation
}

// methods reports whether s can match a callback method.
func (s SearchFor) methods() bool {
	return s == Unknown || s == Method
}

// Scope is the set of bundle locations a query covers.
type Scope struct {
	locations map[string]bool
}

// NewScope builds a scope from bundle locations. Locations are compared
// after filepath.Abs and filepath.Clean.
func NewScope(locations ...string) *Scope {
	s := &Scope{locations: make(map[string]bool, len(locations))}
	for _, l := range locations {
		s.locations[normalize(l)] = true
	}
	return s
}

// Contains reports whether the bundle at location is in scope.
func (s *Scope) Contains(location string) bool {
	return s != nil && s.locations[normalize(location)]
}

// Len returns the number of locations in scope.
func (s *Scope) Len() int {
	if s == nil {
		return 0
	}
	return len(s.locations)
}

// Locations returns the scope's locations, sorted.
func (s *Scope) Locations() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.locations))
	for l := range s.locations {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

func normalize(location string) string {
	if abs, err := filepath.Abs(location); err == nil {
		return abs
	}
	return filepath.Clean(location)
}

// Query describes one search. Either Element is set, and only that symbol
// matches, or Pattern holds text compared with names of SearchFor kind.
type Query struct {
	LimitTo       LimitTo
	Element       types.Element
	Pattern       string
	SearchFor     SearchFor
	CaseSensitive bool
	Scope         *Scope
}

func (q Query) String() string {
	if q.Element != nil {
		return fmt.Sprintf("%s of %s %s", q.LimitTo, q.Element.ElementKind(), describe(q.Element))
	}
	return fmt.Sprintf("%s of %s %q", q.LimitTo, q.SearchFor, q.Pattern)
}

// describe renders an element the way matches name their target.
func describe(el types.Element) string {
	switch e := el.(type) {
	case *types.TypeSymbol:
		return e.QualifiedName()
	case *types.MethodSymbol:
		return e.String()
	case nil:
		return ""
	default:
		return el.Name()
	}
}
