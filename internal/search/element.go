package search

import (
	"fmt"
	"strings"

	"github.com/standardbeagle/dsrefs/internal/errors"
	"github.com/standardbeagle/dsrefs/internal/hierarchy"
	"github.com/standardbeagle/dsrefs/internal/types"
)

// ParseElement looks up the element named by text: a qualified type name
// (com.example.Foo, member types as Outer.Inner or Outer$Inner) or a method
// of a type (com.example.Foo#bind or com.example.Foo#bind(Log, Map)). A
// parameter list is needed only to choose between overloads.
func ParseElement(idx hierarchy.Index, text string) (types.Element, error) {
	text = strings.TrimSpace(text)
	typeName, member, hasMember := strings.Cut(text, "#")

	t := hierarchy.ResolveType(idx, nil, typeName)
	if t == nil {
		err := fmt.Errorf("type %s not found", typeName)
		if s, ok := idx.(Suggester); ok {
			if names := s.Suggest(typeName, maxSuggestions); len(names) > 0 {
				err = fmt.Errorf("type %s not found, did you mean %s?", typeName, strings.Join(names, ", "))
			}
		}
		return nil, errors.NewSearchError(text, err)
	}
	if !hasMember {
		return t, nil
	}

	name, params, hasParams := parseMember(member)
	candidates := t.MethodsNamed(name)
	if hasParams {
		var filtered []*types.MethodSymbol
		for _, m := range candidates {
			if paramsEqual(m.ParameterTypes, params) {
				filtered = append(filtered, m)
			}
		}
		candidates = filtered
	}

	switch len(candidates) {
	case 0:
		return nil, errors.NewSearchError(text, fmt.Errorf("method %s not declared by %s", member, t))
	case 1:
		return candidates[0], nil
	default:
		overloads := make([]string, len(candidates))
		for i, m := range candidates {
			overloads[i] = m.String()
		}
		return nil, errors.NewSearchError(text, fmt.Errorf("ambiguous method %s: %s", member, strings.Join(overloads, "; ")))
	}
}

// parseMember splits name(A, B) into the name and parameter types.
func parseMember(member string) (name string, params []string, hasParams bool) {
	open := strings.IndexByte(member, '(')
	if open < 0 || !strings.HasSuffix(member, ")") {
		return strings.TrimSpace(member), nil, false
	}
	name = strings.TrimSpace(member[:open])
	inner := strings.TrimSpace(member[open+1 : len(member)-1])
	if inner == "" {
		return name, nil, true
	}

	depth, start := 0, 0
	for i, r := range inner {
		switch r {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				params = append(params, strings.TrimSpace(inner[start:i]))
				start = i + 1
			}
		}
	}
	params = append(params, strings.TrimSpace(inner[start:]))
	return name, params, true
}

func paramsEqual(declared, wanted []string) bool {
	if len(declared) != len(wanted) {
		return false
	}
	for i := range declared {
		if paramKey(declared[i]) != paramKey(wanted[i]) {
			return false
		}
	}
	return true
}
