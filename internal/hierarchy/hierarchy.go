// Package hierarchy walks Java type hierarchies held by a symbol index.
package hierarchy

import (
	"iter"

	"github.com/standardbeagle/dsrefs/internal/debug"
	"github.com/standardbeagle/dsrefs/internal/signature"
	"github.com/standardbeagle/dsrefs/internal/types"
)

var trace = debug.Option("hierarchy")

// Index is the symbol database the walker queries. It is treated as a stable
// snapshot for the duration of a call.
type Index interface {
	// LookupType returns the types registered under a qualified or binary name.
	LookupType(name string) []*types.TypeSymbol
	// ResolveName resolves a possibly simple name in the import context of
	// scope to candidate qualified names.
	ResolveName(scope *types.TypeSymbol, name string) []string
}

// Walk yields start and then its superclasses, most derived first.
// The walk ends at the first superclass that is absent or cannot be resolved.
// Lookups happen lazily, so a consumer that stops early triggers no more.
func Walk(idx Index, start *types.TypeSymbol) iter.Seq[*types.TypeSymbol] {
	return func(yield func(*types.TypeSymbol) bool) {
		seen := make(map[*types.TypeSymbol]bool)
		for t := start; t != nil; t = Superclass(idx, t) {
			if seen[t] {
				trace.Tracef("Cycle in hierarchy of %s at %s", start, t)
				return
			}
			seen[t] = true
			if !yield(t) {
				return
			}
		}
	}
}

// Superclass returns the direct superclass of t, or nil when it has none or
// it cannot be found.
func Superclass(idx Index, t *types.TypeSymbol) *types.TypeSymbol {
	if t == nil || t.Superclass == "" {
		return nil
	}
	return ResolveType(idx, t, t.Superclass)
}

// ResolveType finds the type a name refers to from inside scope. Type
// arguments are erased. Names of resolved scopes are looked up as they are;
// otherwise they are resolved against the scope's imports first and the
// first candidate wins.
func ResolveType(idx Index, scope *types.TypeSymbol, name string) *types.TypeSymbol {
	erased := signature.Erase(name)
	if erased == "" {
		return nil
	}

	if scope == nil || scope.Resolved {
		return first(idx.LookupType(erased))
	}

	candidates := idx.ResolveName(scope, erased)
	if len(candidates) == 0 {
		trace.Tracef("Unable to resolve %s in the context of %s", erased, scope)
		return nil
	}
	t := first(idx.LookupType(candidates[0]))
	if t == nil {
		trace.Tracef("Type %s not found in index", candidates[0])
	}
	return t
}

// QualifyName renders name as a qualified type name from inside scope, keeping
// array dimensions. ok is false when the name cannot be resolved, in which
// case the erased name is returned unchanged.
func QualifyName(idx Index, scope *types.TypeSymbol, name string) (qualified string, ok bool) {
	erased := signature.Erase(name)
	base, dims := signature.SplitArray(erased)
	if signature.IsPrimitive(base) || scope == nil || scope.Resolved {
		return erased, true
	}
	candidates := idx.ResolveName(scope, base)
	if len(candidates) == 0 {
		return erased, false
	}
	return signature.WithDims(candidates[0], dims), true
}

// Supertypes returns the resolvable direct supertypes of t: the superclass
// followed by the implemented or extended interfaces.
func Supertypes(idx Index, t *types.TypeSymbol) []*types.TypeSymbol {
	var out []*types.TypeSymbol
	if s := Superclass(idx, t); s != nil {
		out = append(out, s)
	}
	for _, iface := range t.Interfaces {
		if s := ResolveType(idx, t, iface); s != nil {
			out = append(out, s)
		}
	}
	return out
}

// IsAssignable reports whether a value of type from can be assigned to the
// type named target, by walking superclasses and superinterfaces of from.
// Every type is assignable to java.lang.Object.
func IsAssignable(idx Index, target string, from *types.TypeSymbol) bool {
	target = signature.SourceName(signature.Erase(target))
	if target == signature.Object {
		return true
	}
	if from == nil {
		return false
	}

	seen := make(map[*types.TypeSymbol]bool)
	queue := []*types.TypeSymbol{from}
	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]
		if seen[t] {
			continue
		}
		seen[t] = true
		if t.QualifiedName() == target {
			return true
		}
		queue = append(queue, Supertypes(idx, t)...)
	}
	return false
}

func first(ts []*types.TypeSymbol) *types.TypeSymbol {
	if len(ts) == 0 {
		return nil
	}
	return ts[0]
}
