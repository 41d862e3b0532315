// Package pattern matches Java type and method names against the text
// patterns of a search query.
package pattern

import (
	"strings"
	"unicode"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/standardbeagle/dsrefs/internal/signature"
	"github.com/standardbeagle/dsrefs/internal/types"
)

// Mode is how pattern text is compared with a name.
type Mode int

const (
	Exact Mode = iota
	Wildcard
	CamelCase
)

func (m Mode) String() string {
	switch m {
	case Exact:
		return "exact"
	case Wildcard:
		return "pattern"
	case CamelCase:
		return "camelcase"
	default:
		return "unknown"
	}
}

// ClassifyMode picks the match mode for text: Wildcard when it contains * or
// ?, CamelCase when it is a valid camel-case abbreviation, else Exact.
func ClassifyMode(text string) Mode {
	if strings.ContainsAny(text, "*?") {
		return Wildcard
	}
	if ValidCamelCase(text) {
		return CamelCase
	}
	return Exact
}

// HasParameterList reports whether text ends in a parenthesized parameter
// list, that is its last '(' comes before its first ')'.
func HasParameterList(text string) bool {
	left := strings.LastIndexByte(text, '(')
	right := strings.IndexByte(text, ')')
	return left >= 0 && right >= 0 && left < right
}

// Pattern is a compiled query pattern.
type Pattern struct {
	Text          string
	Mode          Mode
	CaseSensitive bool
	// Simple is set when the pattern has no qualifier; only simple names are compared.
	Simple bool
	// IgnoreParams compares method names without their parameter lists.
	IgnoreParams bool

	compact string // Text without whitespace
	glob    string // escaped doublestar pattern for Wildcard
}

// Compile builds a pattern. Whitespace in text is not significant.
func Compile(text string, caseSensitive, ignoreParams bool) *Pattern {
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)

	p := &Pattern{
		Text:          text,
		Mode:          ClassifyMode(compact),
		CaseSensitive: caseSensitive,
		IgnoreParams:  ignoreParams,
		compact:       compact,
	}

	head := compact
	if i := strings.IndexByte(head, '('); i >= 0 {
		head = head[:i]
	}
	p.Simple = !signature.IsQualified(head)

	if p.Mode == Wildcard {
		p.glob = escapeGlob(compact)
		if !caseSensitive {
			p.glob = strings.ToLower(p.glob)
		}
	}
	return p
}

// escapeGlob leaves * and ? as the only metacharacters.
func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '[', ']', '{', '}', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// MatchName compares the pattern with a rendered name.
func (p *Pattern) MatchName(name string) bool {
	switch p.Mode {
	case Wildcard:
		if !p.CaseSensitive {
			name = strings.ToLower(name)
		}
		matched, err := doublestar.Match(p.glob, name)
		return err == nil && matched

	case CamelCase:
		if camelCaseMatch([]rune(p.compact), []rune(name)) {
			return true
		}
		if p.CaseSensitive {
			return strings.HasPrefix(name, p.compact)
		}
		return strings.HasPrefix(strings.ToLower(name), strings.ToLower(p.compact))

	default:
		if p.CaseSensitive {
			return name == p.compact
		}
		return strings.EqualFold(name, p.compact)
	}
}

// MatchType compares the pattern with a type's simple name, or with its
// qualified name when the pattern is qualified.
func (p *Pattern) MatchType(t *types.TypeSymbol) bool {
	if t == nil {
		return false
	}
	if p.Simple {
		return p.MatchName(t.SimpleName)
	}
	return p.MatchName(t.QualifiedName())
}

// MatchMethod compares the pattern with a method. Unless parameters are
// ignored the method renders as name(T1,T2), once with the parameter types
// as declared and once with resolved, which are the qualified names of the
// same parameters. Qualified patterns see the declaring type's qualified
// name in front.
func (p *Pattern) MatchMethod(m *types.MethodSymbol, resolved []string) bool {
	if m == nil {
		return false
	}
	for _, rendered := range p.renderings(m, resolved) {
		if !p.Simple && m.Declaring != nil {
			rendered = m.Declaring.QualifiedName() + "." + rendered
		}
		if p.MatchName(rendered) {
			return true
		}
	}
	return false
}

func (p *Pattern) renderings(m *types.MethodSymbol, resolved []string) []string {
	if p.IgnoreParams {
		return []string{m.MethodName}
	}

	declared := make([]string, len(m.ParameterTypes))
	for i, t := range m.ParameterTypes {
		declared[i] = signature.Erase(t)
	}
	lists := [][]string{declared}
	if len(resolved) == len(declared) {
		lists = append(lists, resolved)
	}

	var out []string
	for _, params := range lists {
		out = append(out, m.MethodName+"("+signature.Join(params)+")")
		if m.Flags.IsVarargs() && len(params) > 0 {
			last := len(params) - 1
			varargs := append(append([]string(nil), params[:last]...), strings.TrimSuffix(params[last], "[]")+"...")
			out = append(out, m.MethodName+"("+signature.Join(varargs)+")")
		}
	}
	return out
}
