// Package descriptor reads Declarative Services component descriptors and
// keeps the position of every attribute value so matches can be reported
// against the raw document.
package descriptor

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"
)

// Element and attribute names of the component model.
const (
	ElementComponent      = "component"
	ElementImplementation = "implementation"
	ElementService        = "service"
	ElementProvide        = "provide"
	ElementReference      = "reference"

	AttrName       = "name"
	AttrClass      = "class"
	AttrInterface  = "interface"
	AttrActivate   = "activate"
	AttrDeactivate = "deactivate"
	AttrModified   = "modified"
	AttrBind       = "bind"
	AttrUnbind     = "unbind"
	AttrUpdated    = "updated"
)

// Span is a region of the document, counted in characters.
type Span struct {
	Offset int
	Length int
}

// End returns the offset just past the span.
func (s Span) End() int { return s.Offset + s.Length }

// Attr is an attribute value and the span of its raw text between the quotes.
type Attr struct {
	Value   string
	Span    Span
	Present bool
}

// Reference is a reference element of a component.
type Reference struct {
	Name      Attr
	Interface Attr
	Bind      Attr
	Unbind    Attr
	Updated   Attr
	Span      Span // tag name
}

// Component is one component element.
type Component struct {
	// Tag spans the qualified tag name right after '<'.
	Tag    Span
	Prefix string

	Name       Attr
	Activate   Attr
	Deactivate Attr
	Modified   Attr

	Implementation Attr
	Provides       []Attr
	References     []*Reference
}

// QualifiedTag returns the tag name as written, prefix included.
func (c *Component) QualifiedTag() string {
	if c.Prefix == "" {
		return ElementComponent
	}
	return c.Prefix + ":" + ElementComponent
}

// Document is a parsed descriptor.
type Document struct {
	Components []*Component

	content    []byte
	lineStarts []int // character offset of every line start
}

// Parse reads a descriptor. Every component element is returned, whatever
// its namespace and depth. Malformed XML is an error.
func Parse(content []byte) (*Document, error) {
	content = bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))
	doc := &Document{content: content}
	doc.indexLines()

	p := &parser{doc: doc}
	d := xml.NewDecoder(bytes.NewReader(content))
	// content is read as UTF-8 whatever the declaration says
	d.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) { return input, nil }

	for {
		start := d.InputOffset()
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("malformed descriptor: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			p.start(t, content[start:d.InputOffset()], int(start))
		case xml.EndElement:
			p.end(t)
		}
	}
	return doc, nil
}

// Position converts a character offset to a 1-based line and column.
func (d *Document) Position(offset int) (line, column int) {
	i := sort.Search(len(d.lineStarts), func(i int) bool { return d.lineStarts[i] > offset }) - 1
	if i < 0 {
		i = 0
	}
	return i + 1, offset - d.lineStarts[i] + 1
}

// Text returns the document text covered by span.
func (d *Document) Text(span Span) string {
	runes := []rune(string(d.content))
	if span.Offset < 0 || span.End() > len(runes) {
		return ""
	}
	return string(runes[span.Offset:span.End()])
}

func (d *Document) indexLines() {
	d.lineStarts = []int{0}
	offset := 0
	for _, r := range string(d.content) {
		offset++
		if r == '\n' {
			d.lineStarts = append(d.lineStarts, offset)
		}
	}
}

// chars converts a byte offset into a character offset.
func (d *Document) chars(byteOffset int) int {
	return utf8.RuneCount(d.content[:byteOffset])
}

type parser struct {
	doc       *Document
	current   *Component
	depth     int
	compDepth int
}

func (p *parser) start(el xml.StartElement, raw []byte, offset int) {
	p.depth++
	tag := scanTag(raw)

	if el.Name.Local == ElementComponent && p.current == nil {
		c := &Component{Tag: p.tagSpan(tag, offset)}
		if i := strings.IndexByte(tag.name, ':'); i >= 0 {
			c.Prefix = tag.name[:i]
		}
		c.Name = p.attr(el, tag, offset, AttrName)
		c.Activate = p.attr(el, tag, offset, AttrActivate)
		c.Deactivate = p.attr(el, tag, offset, AttrDeactivate)
		c.Modified = p.attr(el, tag, offset, AttrModified)
		p.current = c
		p.compDepth = p.depth
		p.doc.Components = append(p.doc.Components, c)
		return
	}
	if p.current == nil {
		return
	}

	switch el.Name.Local {
	case ElementImplementation:
		p.current.Implementation = p.attr(el, tag, offset, AttrClass)
	case ElementProvide:
		if a := p.attr(el, tag, offset, AttrInterface); a.Present {
			p.current.Provides = append(p.current.Provides, a)
		}
	case ElementReference:
		p.current.References = append(p.current.References, &Reference{
			Name:      p.attr(el, tag, offset, AttrName),
			Interface: p.attr(el, tag, offset, AttrInterface),
			Bind:      p.attr(el, tag, offset, AttrBind),
			Unbind:    p.attr(el, tag, offset, AttrUnbind),
			Updated:   p.attr(el, tag, offset, AttrUpdated),
			Span:      p.tagSpan(tag, offset),
		})
	}
}

func (p *parser) end(xml.EndElement) {
	if p.current != nil && p.depth == p.compDepth {
		p.current = nil
	}
	p.depth--
}

func (p *parser) tagSpan(tag rawTag, offset int) Span {
	begin := p.doc.chars(offset + tag.nameOffset)
	end := p.doc.chars(offset + tag.nameOffset + len(tag.name))
	return Span{Offset: begin, Length: end - begin}
}

// attr returns the unprefixed attribute name with its decoded value.
func (p *parser) attr(el xml.StartElement, tag rawTag, offset int, name string) Attr {
	for _, a := range el.Attr {
		if a.Name.Space != "" || a.Name.Local != name {
			continue
		}
		out := Attr{Value: a.Value, Present: true}
		if v, ok := tag.values[name]; ok {
			begin := p.doc.chars(offset + v[0])
			end := p.doc.chars(offset + v[1])
			out.Span = Span{Offset: begin, Length: end - begin}
		}
		return out
	}
	return Attr{}
}

// rawTag is what scanTag finds in the raw text of a start tag. Offsets are
// bytes from the '<'.
type rawTag struct {
	name       string
	nameOffset int
	values     map[string][2]int
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// scanTag locates the tag name and the raw value of every unprefixed
// attribute in a start tag the decoder already accepted.
func scanTag(raw []byte) rawTag {
	tag := rawTag{nameOffset: 1, values: make(map[string][2]int)}
	i := 1
	for i < len(raw) && !isSpace(raw[i]) && raw[i] != '/' && raw[i] != '>' {
		i++
	}
	tag.name = string(raw[1:i])

	for i < len(raw) {
		for i < len(raw) && isSpace(raw[i]) {
			i++
		}
		if i >= len(raw) || raw[i] == '/' || raw[i] == '>' {
			break
		}
		nameStart := i
		for i < len(raw) && raw[i] != '=' && !isSpace(raw[i]) {
			i++
		}
		name := string(raw[nameStart:i])
		for i < len(raw) && (isSpace(raw[i]) || raw[i] == '=') {
			i++
		}
		if i >= len(raw) {
			break
		}
		quote := raw[i]
		i++
		valueStart := i
		for i < len(raw) && raw[i] != quote {
			i++
		}
		if !strings.Contains(name, ":") {
			tag.values[name] = [2]int{valueStart, i}
		}
		i++
	}
	return tag
}
