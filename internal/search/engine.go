// Package search finds references to Java types and methods inside the
// Declarative Services component descriptors of a set of bundles.
package search

import (
	"context"
	"fmt"
	"log"

	"github.com/standardbeagle/dsrefs/internal/bundle"
	"github.com/standardbeagle/dsrefs/internal/cache"
	"github.com/standardbeagle/dsrefs/internal/callback"
	"github.com/standardbeagle/dsrefs/internal/debug"
	"github.com/standardbeagle/dsrefs/internal/descriptor"
	"github.com/standardbeagle/dsrefs/internal/errors"
	"github.com/standardbeagle/dsrefs/internal/hierarchy"
	"github.com/standardbeagle/dsrefs/internal/pattern"
	"github.com/standardbeagle/dsrefs/internal/signature"
	"github.com/standardbeagle/dsrefs/internal/types"
)

var trace = debug.Option("search")

// maxSuggestions bounds the names traced for an unresolved class
const maxSuggestions = 3

// Suggester is implemented by indexes that can propose names close to an
// unresolved one.
type Suggester interface {
	Suggest(name string, max int) []string
}

// Engine searches the descriptors of a fixed list of bundles. The index is
// treated as a snapshot and only read.
type Engine struct {
	idx      hierarchy.Index
	bundles  []string
	resolver *callback.Resolver
	docs     *cache.ContentCache[*descriptor.Document]

	// skipped holds the read failures of the last scan
	skipped []error
}

// NewEngine creates an engine over the bundles at the given locations, in
// the order they will be searched.
func NewEngine(idx hierarchy.Index, bundles []string) *Engine {
	return &Engine{
		idx:      idx,
		bundles:  append([]string(nil), bundles...),
		resolver: callback.NewResolver(idx),
	}
}

// SetDocumentCache makes the engine reuse parsed descriptors whose content
// did not change. The cache may be shared by successive engines.
func (e *Engine) SetDocumentCache(docs *cache.ContentCache[*descriptor.Document]) {
	e.docs = docs
}

// Skipped returns the bundles and descriptors the last Search or Resolve
// could not read, as an *errors.MultiError, or nil when nothing was
// skipped. Locations that are not bundles are not failures.
func (e *Engine) Skipped() error {
	return errors.NewMultiError(e.skipped).ErrorOrNil()
}

// Bundles returns the bundle locations the engine searches.
func (e *Engine) Bundles() []string {
	return append([]string(nil), e.bundles...)
}

// Search reports every descriptor reference matching q to req. Queries that
// descriptors cannot answer (declarations, fields, packages and so on) and
// empty scopes return nil without reporting anything.
//
// Matches of one descriptor file are reported together once the file is
// done: either all of them or, when ctx is already canceled, none. A
// canceled ctx stops the search at the next bundle or file and returns an
// error matching errors.ErrCanceled.
func (e *Engine) Search(ctx context.Context, q Query, req Requestor, progress Progress) error {
	trace.Tracef("Query: %s", q)
	e.skipped = nil

	m, err := compile(q)
	if err != nil || m == nil {
		return err
	}
	if q.Scope.Len() == 0 {
		trace.Tracef("Empty search scope")
		return nil
	}
	if progress == nil {
		progress = NopProgress{}
	}

	return e.scan(ctx, q.Scope, progress, func(f *file) error {
		var found []types.Match
		for _, c := range f.doc.Components {
			found = append(found, e.searchComponent(f, c, m)...)
		}
		debug.LogSearch("%d matches in %s\n", len(found), f.descriptor.Resource)
		if len(found) == 0 {
			return nil
		}

		if err := ctx.Err(); err != nil {
			return errors.NewCanceledError("match report", err)
		}
		for _, match := range found {
			req.ReportMatch(match)
		}
		return nil
	})
}

// matcher decides which descriptor constructs a query looks at and whether
// a resolved symbol matches.
type matcher struct {
	element types.Element
	pattern *pattern.Pattern

	implementations bool
	interfaces      bool
	methods         bool
}

// compile returns a nil matcher for queries descriptors cannot answer.
func compile(q Query) (*matcher, error) {
	if !q.LimitTo.searchesReferences() {
		trace.Tracef("Unsupported limit: %s", q.LimitTo)
		return nil, nil
	}

	if q.Element != nil {
		switch q.Element.ElementKind() {
		case types.ElementType:
			return &matcher{element: q.Element, implementations: true, interfaces: true}, nil
		case types.ElementMethod:
			return &matcher{element: q.Element, methods: true}, nil
		default:
			trace.Tracef("Unsupported element: %s", q.Element.ElementKind())
			return nil, nil
		}
	}

	if q.Pattern == "" {
		return nil, errors.NewSearchError(q.Pattern, fmt.Errorf("empty pattern"))
	}

	m := &matcher{
		implementations: q.SearchFor.implementations(),
		interfaces:      q.SearchFor.interfaces(),
		methods:         q.SearchFor.methods(),
	}
	if !m.implementations && !m.interfaces && !m.methods {
		trace.Tracef("Unsupported element kind: %s", q.SearchFor)
		return nil, nil
	}

	ignoreParams := false
	if m.methods {
		ignoreParams = !pattern.HasParameterList(q.Pattern)
	}
	m.pattern = pattern.Compile(q.Pattern, q.CaseSensitive, ignoreParams)
	return m, nil
}

func (m *matcher) matchType(t *types.TypeSymbol) bool {
	if t == nil {
		return false
	}
	if m.element != nil {
		el, ok := m.element.(*types.TypeSymbol)
		return ok && sameType(el, t)
	}
	return m.pattern.MatchType(t)
}

func (m *matcher) matchMethod(idx hierarchy.Index, method *types.MethodSymbol) bool {
	if method == nil {
		return false
	}
	if m.element != nil {
		el, ok := m.element.(*types.MethodSymbol)
		return ok && sameMethod(el, method)
	}
	var resolved []string
	if !m.pattern.IgnoreParams {
		resolved = resolvedParams(idx, method)
	}
	return m.pattern.MatchMethod(method, resolved)
}

func sameType(a, b *types.TypeSymbol) bool {
	return a == b || a.QualifiedName() == b.QualifiedName()
}

// sameMethod compares declaring types, names and erased parameter simple
// names, so a resolved element equals the source method it was built from.
func sameMethod(a, b *types.MethodSymbol) bool {
	if a == b {
		return true
	}
	if a.MethodName != b.MethodName || len(a.ParameterTypes) != len(b.ParameterTypes) {
		return false
	}
	if a.Declaring == nil || b.Declaring == nil || !sameType(a.Declaring, b.Declaring) {
		return false
	}
	for i := range a.ParameterTypes {
		if paramKey(a.ParameterTypes[i]) != paramKey(b.ParameterTypes[i]) {
			return false
		}
	}
	return true
}

func paramKey(param string) string {
	base, dims := signature.SplitArray(signature.Erase(param))
	return signature.WithDims(signature.SimpleName(signature.SourceName(base)), dims)
}

// resolvedParams qualifies the method's parameter types in the context of
// its declaring type. Names that cannot be resolved stay as written.
func resolvedParams(idx hierarchy.Index, m *types.MethodSymbol) []string {
	out := make([]string, len(m.ParameterTypes))
	for i, p := range m.ParameterTypes {
		out[i], _ = hierarchy.QualifyName(idx, m.Declaring, p)
	}
	return out
}

// file is a parsed descriptor of a bundle.
type file struct {
	bundle     *bundle.Bundle
	descriptor bundle.Descriptor
	doc        *descriptor.Document
}

func (f *file) match(kind types.MatchKind, span descriptor.Span, target string) types.Match {
	line, column := f.doc.Position(span.Offset)
	return types.Match{
		Resource: f.descriptor.Resource,
		Bundle:   f.bundle.SymbolicName,
		Offset:   span.Offset,
		Length:   span.Length,
		Line:     line,
		Column:   column,
		Kind:     kind,
		Text:     f.doc.Text(span),
		Target:   target,
	}
}

// scan calls visit for every parsed descriptor of the bundles in scope.
// Unreadable bundles and descriptors are logged, recorded and skipped.
func (e *Engine) scan(ctx context.Context, scope *Scope, progress Progress, visit func(*file) error) error {
	progress.BeginTask("Searching component descriptors", len(e.bundles))
	defer progress.Done()

	for _, location := range e.bundles {
		if err := ctx.Err(); err != nil {
			return errors.NewCanceledError("bundle scan", err)
		}
		if !scope.Contains(location) {
			trace.Tracef("Project out of scope: %s", location)
			progress.Worked(1)
			continue
		}

		progress.SubTask(location)
		if err := e.scanBundle(ctx, location, visit); err != nil {
			return err
		}
		progress.Worked(1)
	}
	return nil
}

func (e *Engine) scanBundle(ctx context.Context, location string, visit func(*file) error) error {
	b, err := bundle.Open(location)
	if err != nil {
		if errors.IsNotBundle(err) {
			trace.TraceError("Non-bundle model: "+location, err)
		} else {
			log.Printf("ERROR: Unable to open bundle: %v", err)
			e.skipped = append(e.skipped, err)
		}
		return nil
	}

	descriptors, err := b.Descriptors()
	if err != nil {
		log.Printf("ERROR: Unable to list component descriptors: %v", err)
		e.skipped = append(e.skipped, err)
		return nil
	}

	for _, d := range descriptors {
		if err := ctx.Err(); err != nil {
			return errors.NewCanceledError("descriptor scan", err)
		}

		doc, err := e.load(d)
		if err != nil {
			log.Printf("ERROR: Error loading component descriptor file: %v", err)
			e.skipped = append(e.skipped, err)
			continue
		}
		if len(doc.Components) == 0 {
			trace.Tracef("No component definition found in file: %s", d.Resource)
			continue
		}
		if err := visit(&file{bundle: b, descriptor: d, doc: doc}); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) load(d bundle.Descriptor) (*descriptor.Document, error) {
	content, err := d.Read()
	if err != nil {
		return nil, errors.NewDescriptorError("read", d.Resource, err)
	}
	if doc, ok := e.docs.Get(d.Resource, content); ok {
		return doc, nil
	}
	doc, err := descriptor.Parse(content)
	if err != nil {
		return nil, errors.NewDescriptorError("parse", d.Resource, err)
	}
	e.docs.Put(d.Resource, content, doc)
	return doc, nil
}

// searchComponent collects the matches of one component in document order
// of the constructs: implementation, provided interfaces, reference
// interfaces, then callbacks.
func (e *Engine) searchComponent(f *file, c *descriptor.Component, m *matcher) []types.Match {
	if !c.Implementation.Present {
		trace.Tracef("No component implementation found in file: %s", f.descriptor.Resource)
		return nil
	}
	impl := e.lookupType(c.Implementation.Value)

	var out []types.Match
	if m.implementations && m.matchType(impl) {
		out = append(out, f.match(types.MatchImplementation, c.Implementation.Span, impl.QualifiedName()))
	}

	if m.interfaces {
		for _, provide := range c.Provides {
			if t := e.lookupType(provide.Value); m.matchType(t) {
				out = append(out, f.match(types.MatchProvide, provide.Span, t.QualifiedName()))
			}
		}
		for _, ref := range c.References {
			if !ref.Interface.Present {
				continue
			}
			if t := e.lookupType(ref.Interface.Value); m.matchType(t) {
				out = append(out, f.match(types.MatchReferenceInterface, ref.Interface.Span, t.QualifiedName()))
			}
		}
	}

	if m.methods {
		for _, s := range callbackSites(c) {
			method := e.resolver.Resolve(impl, s.spec)
			if m.matchMethod(e.idx, method) {
				out = append(out, f.match(s.kind, s.span, method.String()))
			}
		}
	}
	return out
}

// lookupType finds a class named in a descriptor. Misses are traced with
// suggestions when the index offers them.
func (e *Engine) lookupType(name string) *types.TypeSymbol {
	if name == "" {
		return nil
	}
	t := hierarchy.ResolveType(e.idx, nil, signature.SourceName(name))
	if t == nil && trace.Enabled() {
		if s, ok := e.idx.(Suggester); ok {
			trace.Tracef("Type not found: %s (did you mean %v?)", name, s.Suggest(name, maxSuggestions))
		} else {
			trace.Tracef("Type not found: %s", name)
		}
	}
	return t
}

// site is a callback declared by a component and where to report it.
type site struct {
	spec callback.Spec
	kind types.MatchKind
	span descriptor.Span
	// declared is false for default activate and deactivate methods, which
	// are reported at the component tag
	declared bool
}

var matchKinds = map[callback.Kind]types.MatchKind{
	callback.Activate:   types.MatchActivate,
	callback.Deactivate: types.MatchDeactivate,
	callback.Modified:   types.MatchModified,
	callback.Bind:       types.MatchBind,
	callback.Unbind:     types.MatchUnbind,
	callback.Updated:    types.MatchUpdated,
}

// callbackSites lists the callbacks of c: activate, modified, deactivate,
// then bind, unbind and updated of every reference with an interface. An
// empty attribute counts as absent, so activate and deactivate fall back to
// their default names.
func callbackSites(c *descriptor.Component) []site {
	var out []site
	lifecycle := func(kind callback.Kind, attr descriptor.Attr, optional bool) {
		switch {
		case attr.Present && attr.Value != "":
			out = append(out, site{spec: callback.Spec{Kind: kind, Method: attr.Value}, kind: matchKinds[kind], span: attr.Span, declared: true})
		case !optional:
			out = append(out, site{spec: callback.Spec{Kind: kind}, kind: matchKinds[kind], span: c.Tag})
		}
	}
	lifecycle(callback.Activate, c.Activate, false)
	lifecycle(callback.Modified, c.Modified, true)
	lifecycle(callback.Deactivate, c.Deactivate, false)

	for _, ref := range c.References {
		if !ref.Interface.Present || ref.Interface.Value == "" {
			trace.Tracef("No reference interface specified: %s", ref.Name.Value)
			continue
		}
		for _, rc := range []struct {
			kind callback.Kind
			attr descriptor.Attr
		}{
			{callback.Bind, ref.Bind},
			{callback.Unbind, ref.Unbind},
			{callback.Updated, ref.Updated},
		} {
			if !rc.attr.Present || rc.attr.Value == "" {
				continue
			}
			out = append(out, site{
				spec:     callback.Spec{Kind: rc.kind, Method: rc.attr.Value, ReferenceInterface: ref.Interface.Value},
				kind:     matchKinds[rc.kind],
				span:     rc.attr.Span,
				declared: true,
			})
		}
	}
	return out
}
