package callback

import (
	"slices"

	"github.com/standardbeagle/dsrefs/internal/signature"
)

// call is the erased, resolved view of one candidate method checked against
// a ladder.
type call struct {
	params     []string
	reference  string
	assignable func(param string) bool
}

func (c *call) single(name string) bool {
	return len(c.params) == 1 && c.params[0] == name
}

func (c *call) pair(first func(string) bool, second string) bool {
	return len(c.params) == 2 && first(c.params[0]) && c.params[1] == second
}

func (c *call) allIn(allowed ...string) bool {
	if len(c.params) < 2 {
		return false
	}
	for _, p := range c.params {
		if !slices.Contains(allowed, p) {
			return false
		}
	}
	return true
}

func (c *call) isReference(param string) bool {
	return param == c.reference
}

// Rule is one step of a rank ladder.
type Rule struct {
	Rank        int
	Description string
	match       func(c *call) bool
}

// ladders hold the rules per kind in evaluation order; the first rule that
// matches a method gives its rank. Rank 0 ends the search.
var (
	activateLadder = []Rule{
		{0, "single ComponentContext", func(c *call) bool { return c.single(signature.ComponentContext) }},
		{2, "single Map", func(c *call) bool { return c.single(signature.Map) }},
		{3, "ComponentContext, BundleContext or Map parameters", func(c *call) bool {
			return c.allIn(signature.ComponentContext, signature.BundleContext, signature.Map)
		}},
		{4, "no parameters", func(c *call) bool { return len(c.params) == 0 }},
	}

	deactivateLadder = []Rule{
		{0, "single ComponentContext", func(c *call) bool { return c.single(signature.ComponentContext) }},
		{2, "single Map", func(c *call) bool { return c.single(signature.Map) }},
		{3, "single int", func(c *call) bool { return c.single(signature.Int) }},
		{4, "single Integer", func(c *call) bool { return c.single(signature.Integer) }},
		{5, "ComponentContext, BundleContext, Map, int or Integer parameters", func(c *call) bool {
			return c.allIn(signature.ComponentContext, signature.BundleContext, signature.Map, signature.Int, signature.Integer)
		}},
		{6, "no parameters", func(c *call) bool { return len(c.params) == 0 }},
	}

	bindLadder = []Rule{
		{0, "single ServiceReference", func(c *call) bool { return c.single(signature.ServiceReference) }},
		{1, "single reference interface", func(c *call) bool { return len(c.params) == 1 && c.isReference(c.params[0]) }},
		{2, "single supertype of the reference interface", func(c *call) bool {
			return len(c.params) == 1 && c.assignable(c.params[0])
		}},
		{3, "reference interface and Map", func(c *call) bool { return c.pair(c.isReference, signature.Map) }},
		{4, "supertype of the reference interface and Map", func(c *call) bool {
			return c.pair(c.assignable, signature.Map)
		}},
	}

	updatedLadder = append(slices.Clip(bindLadder),
		Rule{5, "single Map", func(c *call) bool { return c.single(signature.Map) }},
	)
)

// Ladder returns the rules for kind in evaluation order.
func Ladder(kind Kind) []Rule {
	switch kind {
	case Activate, Modified:
		return activateLadder
	case Deactivate:
		return deactivateLadder
	case Bind, Unbind:
		return bindLadder
	case Updated:
		return updatedLadder
	default:
		return nil
	}
}

// rank returns the rank of the first matching rule.
func rank(ladder []Rule, c *call) (Rule, bool) {
	for _, r := range ladder {
		if r.match(c) {
			return r, true
		}
	}
	return Rule{}, false
}
