package types

import "strings"

// Flags holds Java modifier bits for types and methods.
type Flags uint16

const (
	FlagPublic Flags = 1 << iota
	FlagProtected
	FlagPrivate
	FlagStatic
	FlagAbstract
	FlagFinal
	FlagDefault // interface default method
	FlagVarargs
	FlagSynchronized
	FlagNative
)

// IsPrivate reports whether the private modifier is set.
func (f Flags) IsPrivate() bool { return f&FlagPrivate != 0 }

// IsPublic reports whether the public modifier is set.
func (f Flags) IsPublic() bool { return f&FlagPublic != 0 }

// IsProtected reports whether the protected modifier is set.
func (f Flags) IsProtected() bool { return f&FlagProtected != 0 }

// IsPackageDefault reports whether no access modifier is set.
func (f Flags) IsPackageDefault() bool {
	return f&(FlagPublic|FlagProtected|FlagPrivate) == 0
}

// IsVarargs reports whether the last parameter is variable arity.
func (f Flags) IsVarargs() bool { return f&FlagVarargs != 0 }

// modifierFlags maps Java modifier keywords to flag bits
var modifierFlags = map[string]Flags{
	"public":       FlagPublic,
	"protected":    FlagProtected,
	"private":      FlagPrivate,
	"static":       FlagStatic,
	"abstract":     FlagAbstract,
	"final":        FlagFinal,
	"default":      FlagDefault,
	"synchronized": FlagSynchronized,
	"native":       FlagNative,
}

// ParseModifier returns the flag for a Java modifier keyword, or 0.
func ParseModifier(keyword string) Flags {
	return modifierFlags[keyword]
}

// ElementKind distinguishes the Java elements a query can target.
type ElementKind int

const (
	ElementType ElementKind = iota
	ElementMethod
)

func (k ElementKind) String() string {
	switch k {
	case ElementType:
		return "type"
	case ElementMethod:
		return "method"
	default:
		return "unknown"
	}
}

// Element is a resolved Java symbol that can be searched for by identity.
type Element interface {
	ElementKind() ElementKind
	// Name returns the element's simple name.
	Name() string
}

// TypeKind is the declaration form of a type.
type TypeKind int

const (
	KindClass TypeKind = iota
	KindInterface
	KindEnum
	KindRecord
	KindAnnotation
)

var typeKindStrings = [...]string{"class", "interface", "enum", "record", "annotation"}

func (k TypeKind) String() string {
	if int(k) < len(typeKindStrings) {
		return typeKindStrings[k]
	}
	return "unknown"
}

// Import is a single import declaration of a compilation unit.
type Import struct {
	Path     string // e.g. "java.util.Map" or "java.util" for on-demand imports
	OnDemand bool   // import p.*;
	Static   bool
}

// TypeSymbol is a type in the symbol index and the unit of a hierarchy walk.
//
// Source types are unresolved: Superclass, Interfaces and method signatures
// hold names as written and must be resolved against the type's imports.
// Resolved types (platform stubs, hand-built symbols) carry qualified names.
type TypeSymbol struct {
	SimpleName string
	Package    string
	Enclosing  *TypeSymbol
	Kind       TypeKind
	Flags      Flags

	Superclass string   // as written, may include type arguments; "" when absent
	Interfaces []string // as written

	Imports  []Import
	Methods  []*MethodSymbol
	Members  []*TypeSymbol
	Resolved bool

	Location SourceLocation
}

// ElementKind implements Element.
func (t *TypeSymbol) ElementKind() ElementKind { return ElementType }

// Name implements Element.
func (t *TypeSymbol) Name() string { return t.SimpleName }

// TypeName returns the name of the type inside its package, with member types
// separated by dots (Outer.Inner).
func (t *TypeSymbol) TypeName() string {
	if t.Enclosing == nil {
		return t.SimpleName
	}
	return t.Enclosing.TypeName() + "." + t.SimpleName
}

// QualifiedName returns the fully qualified dotted name (pkg.Outer.Inner).
func (t *TypeSymbol) QualifiedName() string {
	if t.Package == "" {
		return t.TypeName()
	}
	return t.Package + "." + t.TypeName()
}

// BinaryName returns the name the runtime uses (pkg.Outer$Inner).
func (t *TypeSymbol) BinaryName() string {
	name := t.SimpleName
	for enc := t.Enclosing; enc != nil; enc = enc.Enclosing {
		name = enc.SimpleName + "$" + name
	}
	if t.Package == "" {
		return name
	}
	return t.Package + "." + name
}

// Outermost returns the top-level type declaring t (t itself when top-level).
func (t *TypeSymbol) Outermost() *TypeSymbol {
	for t.Enclosing != nil {
		t = t.Enclosing
	}
	return t
}

// AddMethod appends m and sets its declaring type.
func (t *TypeSymbol) AddMethod(m *MethodSymbol) *MethodSymbol {
	m.Declaring = t
	t.Methods = append(t.Methods, m)
	return m
}

// MethodsNamed returns the declared methods with the given name.
func (t *TypeSymbol) MethodsNamed(name string) []*MethodSymbol {
	var out []*MethodSymbol
	for _, m := range t.Methods {
		if m.MethodName == name {
			out = append(out, m)
		}
	}
	return out
}

func (t *TypeSymbol) String() string {
	return t.QualifiedName()
}

// MethodSymbol is a method declared by a TypeSymbol.
type MethodSymbol struct {
	MethodName     string
	ReturnType     string   // as written
	ParameterTypes []string // as written, varargs rendered as T[]
	ParameterNames []string
	Flags          Flags
	Declaring      *TypeSymbol

	Location SourceLocation
}

// ElementKind implements Element.
func (m *MethodSymbol) ElementKind() ElementKind { return ElementMethod }

// Name implements Element.
func (m *MethodSymbol) Name() string { return m.MethodName }

// Resolved reports whether the method's signature holds qualified names.
func (m *MethodSymbol) Resolved() bool {
	return m.Declaring != nil && m.Declaring.Resolved
}

func (m *MethodSymbol) String() string {
	var b strings.Builder
	if m.Declaring != nil {
		b.WriteString(m.Declaring.QualifiedName())
		b.WriteByte('.')
	}
	b.WriteString(m.MethodName)
	b.WriteByte('(')
	b.WriteString(strings.Join(m.ParameterTypes, ", "))
	b.WriteByte(')')
	return b.String()
}
