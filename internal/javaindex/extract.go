package javaindex

import (
	"fmt"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"

	"github.com/standardbeagle/dsrefs/internal/debug"
	"github.com/standardbeagle/dsrefs/internal/errors"
	"github.com/standardbeagle/dsrefs/internal/types"
)

// Extractor turns Java compilation units into type symbols.
// An Extractor owns a tree-sitter parser and must not be shared between goroutines.
type Extractor struct {
	parser *tree_sitter.Parser
}

// NewExtractor creates an extractor with the Java grammar loaded.
func NewExtractor() (*Extractor, error) {
	parser := tree_sitter.NewParser()
	language := tree_sitter.NewLanguage(tree_sitter_java.Language())
	if err := parser.SetLanguage(language); err != nil {
		parser.Close()
		return nil, fmt.Errorf("failed to load java grammar: %w", err)
	}
	return &Extractor{parser: parser}, nil
}

// Close releases the parser.
func (e *Extractor) Close() {
	if e.parser != nil {
		e.parser.Close()
		e.parser = nil
	}
}

// Extract parses one compilation unit and returns its top-level types.
// Member types hang off their enclosing type's Members.
func (e *Extractor) Extract(path string, content []byte) (result []*types.TypeSymbol, err error) {
	defer func() {
		if r := recover(); r != nil {
			debug.LogIndexing("TREE-SITTER PANIC in file %s: %v\n", path, r)
			result = nil
			err = errors.NewParseError(path, 0, 0, fmt.Errorf("parser panic: %v", r))
		}
	}()

	// tree-sitter may touch the buffer through CGO, parse a private copy
	buf := make([]byte, len(content))
	copy(buf, content)

	tree := e.parser.Parse(buf, nil)
	if tree == nil {
		return nil, errors.NewParseError(path, 0, 0, fmt.Errorf("no syntax tree produced"))
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		debug.LogIndexing("Syntax errors in %s, indexing what parsed\n", path)
	}

	u := &unit{path: path, content: buf}
	for i := uint(0); i < root.NamedChildCount(); i++ {
		child := root.NamedChild(i)
		switch child.Kind() {
		case "package_declaration":
			u.pkg = u.packageName(child)
		case "import_declaration":
			u.imports = append(u.imports, u.importDecl(child))
		}
	}
	for i := uint(0); i < root.NamedChildCount(); i++ {
		if t := u.typeDecl(root.NamedChild(i), nil); t != nil {
			result = append(result, t)
		}
	}
	return result, nil
}

// unit carries the per-file state of one extraction
type unit struct {
	path    string
	content []byte
	pkg     string
	imports []types.Import
}

func (u *unit) text(n *tree_sitter.Node) string {
	if n == nil {
		return ""
	}
	return string(u.content[n.StartByte():n.EndByte()])
}

func (u *unit) location(n *tree_sitter.Node) types.SourceLocation {
	pos := n.StartPosition()
	return types.SourceLocation{
		Path:   u.path,
		Line:   int(pos.Row) + 1,
		Column: int(pos.Column) + 1,
		Offset: int(n.StartByte()),
	}
}

func (u *unit) packageName(n *tree_sitter.Node) string {
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		if k := child.Kind(); k == "scoped_identifier" || k == "identifier" {
			return u.text(child)
		}
	}
	return ""
}

func (u *unit) importDecl(n *tree_sitter.Node) types.Import {
	var imp types.Import
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		switch child.Kind() {
		case "static":
			imp.Static = true
		case "asterisk":
			imp.OnDemand = true
		case "scoped_identifier", "identifier":
			imp.Path = u.text(child)
		}
	}
	return imp
}

var typeDeclKinds = map[string]types.TypeKind{
	"class_declaration":           types.KindClass,
	"interface_declaration":       types.KindInterface,
	"enum_declaration":            types.KindEnum,
	"record_declaration":          types.KindRecord,
	"annotation_type_declaration": types.KindAnnotation,
}

func (u *unit) typeDecl(n *tree_sitter.Node, enclosing *types.TypeSymbol) *types.TypeSymbol {
	kind, ok := typeDeclKinds[n.Kind()]
	if !ok {
		return nil
	}
	name := u.text(n.ChildByFieldName("name"))
	if name == "" {
		return nil
	}

	t := &types.TypeSymbol{
		SimpleName: name,
		Package:    u.pkg,
		Enclosing:  enclosing,
		Kind:       kind,
		Imports:    u.imports,
		Location:   u.location(n),
	}

	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		switch child.Kind() {
		case "modifiers":
			t.Flags = u.modifiers(child)
		case "superclass":
			// superclass → "extends" → type
			for j := uint(0); j < child.NamedChildCount(); j++ {
				t.Superclass = u.typeText(child.NamedChild(j))
			}
		case "super_interfaces", "extends_interfaces":
			// super_interfaces → "implements" → type_list → type*
			for j := uint(0); j < child.NamedChildCount(); j++ {
				list := child.NamedChild(j)
				if list.Kind() != "type_list" {
					continue
				}
				for k := uint(0); k < list.NamedChildCount(); k++ {
					t.Interfaces = append(t.Interfaces, u.typeText(list.NamedChild(k)))
				}
			}
		}
	}
	if enclosing != nil && enclosing.Kind == types.KindInterface && t.Flags&types.FlagPrivate == 0 {
		t.Flags |= types.FlagPublic | types.FlagStatic
	}

	if body := n.ChildByFieldName("body"); body != nil {
		u.body(body, t)
	}
	return t
}

func (u *unit) body(body *tree_sitter.Node, t *types.TypeSymbol) {
	for i := uint(0); i < body.NamedChildCount(); i++ {
		child := body.NamedChild(i)
		switch child.Kind() {
		case "method_declaration":
			t.AddMethod(u.method(child, t))
		case "enum_body_declarations":
			u.body(child, t)
		default:
			if member := u.typeDecl(child, t); member != nil {
				t.Members = append(t.Members, member)
			}
		}
	}
}

func (u *unit) method(n *tree_sitter.Node, declaring *types.TypeSymbol) *types.MethodSymbol {
	m := &types.MethodSymbol{
		MethodName: u.text(n.ChildByFieldName("name")),
		ReturnType: u.typeText(n.ChildByFieldName("type")),
		Location:   u.location(n),
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		if child := n.Child(i); child.Kind() == "modifiers" {
			m.Flags = u.modifiers(child)
		}
	}
	if dims := n.ChildByFieldName("dimensions"); dims != nil {
		m.ReturnType += u.dimensions(dims)
	}

	// interface members without an access modifier are public
	if declaring.Kind == types.KindInterface || declaring.Kind == types.KindAnnotation {
		if m.Flags&types.FlagPrivate == 0 {
			m.Flags |= types.FlagPublic
		}
	}

	params := n.ChildByFieldName("parameters")
	if params == nil {
		return m
	}
	for i := uint(0); i < params.NamedChildCount(); i++ {
		p := params.NamedChild(i)
		switch p.Kind() {
		case "formal_parameter":
			typ := u.typeText(p.ChildByFieldName("type"))
			if dims := p.ChildByFieldName("dimensions"); dims != nil {
				typ += u.dimensions(dims)
			}
			m.ParameterTypes = append(m.ParameterTypes, typ)
			m.ParameterNames = append(m.ParameterNames, u.text(p.ChildByFieldName("name")))
		case "spread_parameter":
			var typ, name string
			for j := uint(0); j < p.NamedChildCount(); j++ {
				c := p.NamedChild(j)
				switch c.Kind() {
				case "modifiers":
				case "variable_declarator":
					name = u.text(c.ChildByFieldName("name"))
				default:
					if typ == "" {
						typ = u.typeText(c)
					}
				}
			}
			m.ParameterTypes = append(m.ParameterTypes, typ+"[]")
			m.ParameterNames = append(m.ParameterNames, name)
			m.Flags |= types.FlagVarargs
		}
	}
	return m
}

func (u *unit) modifiers(n *tree_sitter.Node) types.Flags {
	var flags types.Flags
	for i := uint(0); i < n.ChildCount(); i++ {
		flags |= types.ParseModifier(n.Child(i).Kind())
	}
	return flags
}

// typeText renders a type node without annotations or whitespace.
func (u *unit) typeText(n *tree_sitter.Node) string {
	if n == nil {
		return ""
	}
	if n.ChildCount() == 0 {
		return u.text(n)
	}
	var b strings.Builder
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		switch child.Kind() {
		case "annotation", "marker_annotation":
			continue
		}
		b.WriteString(u.typeText(child))
	}
	return b.String()
}

func (u *unit) dimensions(n *tree_sitter.Node) string {
	return strings.Repeat("[]", strings.Count(u.text(n), "["))
}
