package types

import "fmt"

// MatchKind names the descriptor construct a match was found in.
type MatchKind string

const (
	MatchImplementation     MatchKind = "implementation"
	MatchProvide            MatchKind = "provide"
	MatchReferenceInterface MatchKind = "reference-interface"
	MatchActivate           MatchKind = "activate"
	MatchModified           MatchKind = "modified"
	MatchDeactivate         MatchKind = "deactivate"
	MatchBind               MatchKind = "bind"
	MatchUnbind             MatchKind = "unbind"
	MatchUpdated            MatchKind = "updated"
)

// Match is a single reference found in a component descriptor.
// Offset and Length count characters, not bytes.
type Match struct {
	Resource string    `json:"resource"`
	Bundle   string    `json:"bundle,omitempty"`
	Offset   int       `json:"offset"`
	Length   int       `json:"length"`
	Line     int       `json:"line"`
	Column   int       `json:"column"`
	Kind     MatchKind `json:"kind"`
	Text     string    `json:"text"`
	Target   string    `json:"target,omitempty"` // the matched Java element
}

func (m Match) String() string {
	return fmt.Sprintf("%s:%d:%d: %s %q", m.Resource, m.Line, m.Column, m.Kind, m.Text)
}
