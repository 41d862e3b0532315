// Package signature handles Java type names as they appear in source and in
// component descriptors: erasure, qualifiers and array dimensions.
package signature

import "strings"

// Well-known type names the callback ladders test against.
const (
	Void             = "void"
	Int              = "int"
	Object           = "java.lang.Object"
	Integer          = "java.lang.Integer"
	Map              = "java.util.Map"
	ComponentContext = "org.osgi.service.component.ComponentContext"
	BundleContext    = "org.osgi.framework.BundleContext"
	ServiceReference = "org.osgi.framework.ServiceReference"
)

var primitives = map[string]bool{
	"boolean": true,
	"byte":    true,
	"char":    true,
	"short":   true,
	"int":     true,
	"long":    true,
	"float":   true,
	"double":  true,
	"void":    true,
}

// IsPrimitive reports whether name is a primitive type keyword (void included).
func IsPrimitive(name string) bool {
	return primitives[name]
}

// Erase drops type arguments and whitespace from a type name and renders
// varargs as an array: "Map<String, List<X>> []" becomes "Map[]".
func Erase(name string) string {
	var b strings.Builder
	depth := 0
	for _, r := range name {
		switch {
		case r == '<':
			depth++
		case r == '>':
			if depth > 0 {
				depth--
			}
		case depth > 0:
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
		default:
			b.WriteRune(r)
		}
	}
	erased := b.String()
	if strings.HasSuffix(erased, "...") {
		erased = strings.TrimSuffix(erased, "...") + "[]"
	}
	return erased
}

// SplitArray returns the element type name and the number of array dimensions.
func SplitArray(name string) (string, int) {
	dims := 0
	for strings.HasSuffix(name, "[]") {
		name = strings.TrimSuffix(name, "[]")
		dims++
	}
	return name, dims
}

// WithDims appends dims array brackets to name.
func WithDims(name string, dims int) string {
	if dims == 0 {
		return name
	}
	return name + strings.Repeat("[]", dims)
}

// SimpleName returns the last segment of a dotted name.
func SimpleName(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}

// Qualifier returns everything before the last dot, or "".
func Qualifier(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	return ""
}

// IsQualified reports whether name carries a qualifier.
func IsQualified(name string) bool {
	return strings.IndexByte(name, '.') >= 0
}

// SourceName converts a binary name (pkg.Outer$Inner) to its source form.
func SourceName(name string) string {
	return strings.ReplaceAll(name, "$", ".")
}

// Join renders a parameter list without spaces: "A,B[],C".
func Join(params []string) string {
	return strings.Join(params, ",")
}
