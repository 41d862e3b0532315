package callback

import (
	"github.com/standardbeagle/dsrefs/internal/debug"
	"github.com/standardbeagle/dsrefs/internal/hierarchy"
	"github.com/standardbeagle/dsrefs/internal/signature"
	"github.com/standardbeagle/dsrefs/internal/types"
)

var trace = debug.Option("resolver")

// Candidate is a method that satisfied a rule of the kind's ladder.
type Candidate struct {
	Method *types.MethodSymbol
	Rank   int
	Rule   string
}

// Visible reports whether a method declared in declaring can be invoked as a
// callback of mostDerived. Methods of the most derived type always qualify;
// inherited ones must not be private, and package-private ones must share
// the most derived type's package.
func Visible(declaring, mostDerived *types.TypeSymbol, flags types.Flags) bool {
	if declaring == mostDerived {
		return true
	}
	if flags.IsPrivate() {
		return false
	}
	if flags.IsPackageDefault() && declaring.Package != mostDerived.Package {
		return false
	}
	return true
}

// Resolver finds callback methods by walking an implementation class and its
// superclasses. It only reads the index.
type Resolver struct {
	idx hierarchy.Index
}

// NewResolver creates a resolver over idx.
func NewResolver(idx hierarchy.Index) *Resolver {
	return &Resolver{idx: idx}
}

// Resolve returns the method the runtime would call for spec on impl, or nil.
func (r *Resolver) Resolve(impl *types.TypeSymbol, spec Spec) *types.MethodSymbol {
	c, ok := r.ResolveCandidate(impl, spec)
	if !ok {
		return nil
	}
	return c.Method
}

// ResolveCandidate is Resolve with the winning rank. A rank 0 match ends the
// walk at once; otherwise the lowest rank anywhere in the hierarchy wins and
// ties go to the first method found, most derived type first.
func (r *Resolver) ResolveCandidate(impl *types.TypeSymbol, spec Spec) (Candidate, bool) {
	name := spec.MethodName()
	ladder := Ladder(spec.Kind)
	if impl == nil || name == "" || ladder == nil {
		return Candidate{}, false
	}

	ref := newReference(r.idx, spec.ReferenceInterface)
	var best Candidate
	found := false

	for t := range hierarchy.Walk(r.idx, impl) {
		for _, m := range t.MethodsNamed(name) {
			if signature.Erase(m.ReturnType) != signature.Void {
				continue
			}
			if !Visible(t, impl, m.Flags) {
				trace.Tracef("Skipping %s, not visible from %s", m, impl)
				continue
			}

			c := &call{
				params:     r.parameterTypes(m),
				reference:  ref.name,
				assignable: ref.assignableTo,
			}
			rule, ok := rank(ladder, c)
			if !ok || (found && rule.Rank >= best.Rank) {
				continue
			}
			best = Candidate{Method: m, Rank: rule.Rank, Rule: rule.Description}
			found = true
			if rule.Rank == 0 {
				return best, true
			}
		}
	}

	if !found {
		trace.Tracef("No %s method %s on %s", spec.Kind, name, impl)
	}
	return best, found
}

// parameterTypes erases the method's parameter types and qualifies them in
// the declaring type's context. Names that cannot be resolved stay as
// written and fail to match anything qualified.
func (r *Resolver) parameterTypes(m *types.MethodSymbol) []string {
	params := make([]string, len(m.ParameterTypes))
	for i, p := range m.ParameterTypes {
		if m.Resolved() {
			params[i] = signature.Erase(p)
			continue
		}
		q, ok := hierarchy.QualifyName(r.idx, m.Declaring, p)
		if !ok {
			trace.Tracef("Unable to resolve parameter type %s of %s", p, m)
		}
		params[i] = q
	}
	return params
}

// reference is the reference interface of a bind, unbind or updated callback.
// Its type symbol is looked up on first use.
type reference struct {
	idx      hierarchy.Index
	name     string
	sym      *types.TypeSymbol
	looked   bool
	verdicts map[string]bool
}

func newReference(idx hierarchy.Index, name string) *reference {
	return &reference{
		idx:      idx,
		name:     signature.SourceName(signature.Erase(name)),
		verdicts: make(map[string]bool),
	}
}

// assignableTo reports whether the reference interface can be passed to a
// parameter of type param.
func (r *reference) assignableTo(param string) bool {
	if r.name == "" {
		return false
	}
	if v, ok := r.verdicts[param]; ok {
		return v
	}
	if !r.looked {
		r.looked = true
		r.sym = lookup(r.idx, r.name)
		if r.sym == nil {
			trace.Tracef("Reference interface %s not found in index", r.name)
		}
	}
	v := r.sym != nil && hierarchy.IsAssignable(r.idx, param, r.sym)
	r.verdicts[param] = v
	return v
}

func lookup(idx hierarchy.Index, name string) *types.TypeSymbol {
	if ts := idx.LookupType(name); len(ts) > 0 {
		return ts[0]
	}
	return nil
}
