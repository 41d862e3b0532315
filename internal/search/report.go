package search

import (
	"context"

	"github.com/standardbeagle/dsrefs/internal/descriptor"
)

// CallbackReport is the outcome of resolving one declared callback.
type CallbackReport struct {
	Kind      string `json:"kind"`
	Method    string `json:"method"`
	Reference string `json:"reference,omitempty"`
	Declared  bool   `json:"declared"`
	Line      int    `json:"line"`
	Column    int    `json:"column"`

	// Resolved is the chosen method, empty when nothing qualified.
	Resolved string `json:"resolved,omitempty"`
	Rank     int    `json:"rank"`
	Rule     string `json:"rule,omitempty"`
}

// ComponentReport describes how the callbacks of one component resolve.
type ComponentReport struct {
	Bundle         string           `json:"bundle"`
	Resource       string           `json:"resource"`
	Name           string           `json:"name,omitempty"`
	Implementation string           `json:"implementation"`
	Found          bool             `json:"found"`
	Suggestions    []string         `json:"suggestions,omitempty"`
	Callbacks      []CallbackReport `json:"callbacks"`
}

// Unresolved counts the callbacks that did not resolve.
func (r ComponentReport) Unresolved() int {
	n := 0
	for _, c := range r.Callbacks {
		if c.Resolved == "" {
			n++
		}
	}
	return n
}

// Resolve reports, for every component in scope, which method each declared
// or default callback resolves to. Unresolved callbacks have rank -1.
// Cancellation behaves as in Search.
func (e *Engine) Resolve(ctx context.Context, scope *Scope, progress Progress) ([]ComponentReport, error) {
	e.skipped = nil
	if scope.Len() == 0 {
		return nil, nil
	}
	if progress == nil {
		progress = NopProgress{}
	}

	var reports []ComponentReport
	err := e.scan(ctx, scope, progress, func(f *file) error {
		for _, c := range f.doc.Components {
			if c.Implementation.Present {
				reports = append(reports, e.resolveComponent(f, c))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reports, nil
}

func (e *Engine) resolveComponent(f *file, c *descriptor.Component) ComponentReport {
	impl := e.lookupType(c.Implementation.Value)
	report := ComponentReport{
		Bundle:         f.bundle.SymbolicName,
		Resource:       f.descriptor.Resource,
		Name:           c.Name.Value,
		Implementation: c.Implementation.Value,
		Found:          impl != nil,
	}
	if impl == nil {
		if s, ok := e.idx.(Suggester); ok {
			report.Suggestions = s.Suggest(c.Implementation.Value, maxSuggestions)
		}
	}

	for _, s := range callbackSites(c) {
		line, column := f.doc.Position(s.span.Offset)
		cb := CallbackReport{
			Kind:      s.spec.Kind.String(),
			Method:    s.spec.MethodName(),
			Reference: s.spec.ReferenceInterface,
			Declared:  s.declared,
			Line:      line,
			Column:    column,
			Rank:      -1,
		}
		if candidate, ok := e.resolver.ResolveCandidate(impl, s.spec); ok {
			cb.Resolved = candidate.Method.String()
			cb.Rank = candidate.Rank
			cb.Rule = candidate.Rule
		}
		report.Callbacks = append(report.Callbacks, cb)
	}
	return report
}
