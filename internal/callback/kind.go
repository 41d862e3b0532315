// Package callback resolves the Java method a Declarative Services runtime
// would invoke for a lifecycle or reference callback declared in a component
// descriptor.
package callback

import "fmt"

// Kind is the category of a callback, each with its own rank ladder.
type Kind int

const (
	Activate Kind = iota
	Deactivate
	Modified
	Bind
	Unbind
	Updated
)

var kindNames = [...]string{"activate", "deactivate", "modified", "bind", "unbind", "updated"}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind maps a descriptor attribute name to its kind.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), true
		}
	}
	return 0, false
}

// DefaultMethod returns the method name used when the descriptor omits one.
// Only activate and deactivate have a default.
func (k Kind) DefaultMethod() string {
	switch k {
	case Activate:
		return "activate"
	case Deactivate:
		return "deactivate"
	default:
		return ""
	}
}

// IsReference reports whether the kind belongs to a reference element and
// needs a reference interface.
func (k Kind) IsReference() bool {
	return k == Bind || k == Unbind || k == Updated
}

// Spec is a callback declared in a component descriptor.
type Spec struct {
	Kind               Kind
	Method             string // declared name, "" when absent
	ReferenceInterface string // bind, unbind and updated only
}

// MethodName returns the declared method name or the kind's default.
func (s Spec) MethodName() string {
	if s.Method != "" {
		return s.Method
	}
	return s.Kind.DefaultMethod()
}

func (s Spec) String() string {
	if s.Kind.IsReference() {
		return fmt.Sprintf("%s %s(%s)", s.Kind, s.MethodName(), s.ReferenceInterface)
	}
	return fmt.Sprintf("%s %s", s.Kind, s.MethodName())
}
