// Package javaindex is the symbol database the resolver queries: Java type
// declarations extracted from workspace sources plus a few platform types.
package javaindex

import (
	"sort"
	"strings"
	"sync"

	"github.com/hbollon/go-edlib"

	"github.com/standardbeagle/dsrefs/internal/signature"
	"github.com/standardbeagle/dsrefs/internal/types"
)

// Index maps qualified and binary type names to type symbols.
// It is safe for concurrent use; the search treats it as a snapshot.
type Index struct {
	mu       sync.RWMutex
	byName   map[string][]*types.TypeSymbol
	bySimple map[string][]*types.TypeSymbol
	all      []*types.TypeSymbol
}

// New creates an empty index.
func New() *Index {
	return &Index{
		byName:   make(map[string][]*types.TypeSymbol),
		bySimple: make(map[string][]*types.TypeSymbol),
	}
}

// Add registers t and its member types under their qualified and binary names.
func (i *Index) Add(ts ...*types.TypeSymbol) {
	i.mu.Lock()
	defer i.mu.Unlock()
	for _, t := range ts {
		i.add(t)
	}
}

func (i *Index) add(t *types.TypeSymbol) {
	qualified := t.QualifiedName()
	i.byName[qualified] = append(i.byName[qualified], t)
	if binary := t.BinaryName(); binary != qualified {
		i.byName[binary] = append(i.byName[binary], t)
	}
	i.bySimple[t.SimpleName] = append(i.bySimple[t.SimpleName], t)
	i.all = append(i.all, t)
	for _, m := range t.Members {
		m.Enclosing = t
		i.add(m)
	}
}

// Len returns the number of indexed types, member types included.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.all)
}

// Types returns every indexed type sorted by qualified name.
func (i *Index) Types() []*types.TypeSymbol {
	i.mu.RLock()
	out := make([]*types.TypeSymbol, len(i.all))
	copy(out, i.all)
	i.mu.RUnlock()

	sort.SliceStable(out, func(a, b int) bool {
		return out[a].QualifiedName() < out[b].QualifiedName()
	})
	return out
}

// LookupType returns the types registered under a qualified or binary name.
func (i *Index) LookupType(name string) []*types.TypeSymbol {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.byName[name]
}

// BySimpleName returns every type with the given simple name.
func (i *Index) BySimpleName(name string) []*types.TypeSymbol {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.bySimple[name]
}

func (i *Index) has(name string) bool {
	return len(i.LookupType(name)) > 0
}

// ResolveName resolves name as it would be read inside scope and returns the
// candidate qualified names. Array dimensions are kept. Resolved scopes and
// primitives yield the name unchanged. Nil means the name is unknown.
func (i *Index) ResolveName(scope *types.TypeSymbol, name string) []string {
	base, dims := signature.SplitArray(signature.Erase(name))
	if base == "" {
		return nil
	}
	if signature.IsPrimitive(base) || scope == nil || scope.Resolved {
		return []string{signature.WithDims(base, dims)}
	}

	candidates := i.resolveBase(scope, base)
	for n := range candidates {
		candidates[n] = signature.WithDims(candidates[n], dims)
	}
	return candidates
}

func (i *Index) resolveBase(scope *types.TypeSymbol, name string) []string {
	if head, rest, dotted := strings.Cut(name, "."); dotted {
		// Outer.Inner relative to an import, or a qualified name
		if outer := i.resolveSimple(scope, head); len(outer) > 0 {
			var out []string
			for _, o := range outer {
				if q := o + "." + rest; i.has(q) {
					out = append(out, q)
				}
			}
			if len(out) > 0 {
				return out
			}
		}
		return []string{name}
	}
	return i.resolveSimple(scope, name)
}

// resolveSimple follows the Java scoping order: member types, single-type
// imports, the same package, on-demand imports, java.lang.
func (i *Index) resolveSimple(scope *types.TypeSymbol, name string) []string {
	for t := scope; t != nil; t = t.Enclosing {
		if t.SimpleName == name {
			return []string{t.QualifiedName()}
		}
		for _, m := range t.Members {
			if m.SimpleName == name {
				return []string{m.QualifiedName()}
			}
		}
	}

	imports := scope.Outermost().Imports
	for _, imp := range imports {
		if !imp.OnDemand && !imp.Static && signature.SimpleName(imp.Path) == name {
			return []string{imp.Path}
		}
	}

	if scope.Package != "" {
		if q := scope.Package + "." + name; i.has(q) {
			return []string{q}
		}
	} else if i.has(name) {
		return []string{name}
	}

	var onDemand []string
	for _, imp := range imports {
		if imp.OnDemand && !imp.Static {
			if q := imp.Path + "." + name; i.has(q) {
				onDemand = append(onDemand, q)
			}
		}
	}
	if len(onDemand) > 0 {
		return onDemand
	}

	if q := "java.lang." + name; javaLang[name] || i.has(q) {
		return []string{q}
	}
	return nil
}

// Suggest returns up to max qualified names whose simple names are close to
// the simple name of name, closest first.
func (i *Index) Suggest(name string, max int) []string {
	want := signature.SimpleName(signature.SourceName(name))
	if want == "" || max <= 0 {
		return nil
	}
	threshold := len(want) / 3
	if threshold < 2 {
		threshold = 2
	}

	type scored struct {
		name     string
		distance int
	}
	var hits []scored

	i.mu.RLock()
	for simple, ts := range i.bySimple {
		distance := edlib.LevenshteinDistance(strings.ToLower(want), strings.ToLower(simple))
		if distance > threshold {
			continue
		}
		for _, t := range ts {
			hits = append(hits, scored{name: t.QualifiedName(), distance: distance})
		}
	}
	i.mu.RUnlock()

	sort.Slice(hits, func(a, b int) bool {
		if hits[a].distance != hits[b].distance {
			return hits[a].distance < hits[b].distance
		}
		return hits[a].name < hits[b].name
	})
	if len(hits) > max {
		hits = hits[:max]
	}
	out := make([]string, len(hits))
	for n, h := range hits {
		out[n] = h.name
	}
	return out
}

// javaLang holds java.lang types that resolve without an index entry
var javaLang = map[string]bool{
	"Object": true, "String": true, "Integer": true, "Long": true, "Short": true,
	"Byte": true, "Character": true, "Boolean": true, "Double": true, "Float": true,
	"Number": true, "Void": true, "Class": true, "Enum": true, "Record": true,
	"Comparable": true, "CharSequence": true, "Iterable": true, "Runnable": true,
	"AutoCloseable": true, "Cloneable": true, "Throwable": true, "Exception": true,
	"RuntimeException": true, "Error": true, "Thread": true, "StringBuilder": true,
}
