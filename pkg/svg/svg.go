// Package svg provides the minimal element tree the treemap renderer emits
// into, plus its serialization to SVG markup.
//
// The renderer only needs four capabilities from this package: create an
// element, append a child, set a string attribute, and create a text node.
// It never reads back from the document. Attribute order is preserved as
// set, so the same sequence of emission calls always serializes to
// byte-identical output.
package svg

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Namespace is the XML namespace declared on the root element.
const Namespace = "http://www.w3.org/2000/svg"

// Version is the SVG format version declared on the root element.
const Version = "1.1"

// Attr is a single string attribute on an element.
type Attr struct {
	Key   string
	Value string
}

// Element is a node in the output document: either a tagged element with
// attributes and children, or a text node (Tag empty, text set).
type Element struct {
	Tag      string
	attrs    []Attr
	children []*Element
	text     string
}

// NewElement creates an element with the given tag and no attributes.
func NewElement(tag string) *Element {
	return &Element{Tag: tag}
}

// NewText creates a text node. The content is escaped at serialization
// time, so callers may pass raw strings.
func NewText(content string) *Element {
	return &Element{text: content}
}

// Append adds children under e in order.
func (e *Element) Append(children ...*Element) {
	e.children = append(e.children, children...)
}

// SetAttr sets a named attribute. Setting an existing key replaces its
// value in place; new keys append, keeping serialization order stable.
func (e *Element) SetAttr(key, value string) {
	for i := range e.attrs {
		if e.attrs[i].Key == key {
			e.attrs[i].Value = value
			return
		}
	}
	e.attrs = append(e.attrs, Attr{Key: key, Value: value})
}

// Attr returns the value of a named attribute and whether it is set.
func (e *Element) Attr(key string) (string, bool) {
	for _, a := range e.attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// Attrs returns the element's attributes in serialization order.
func (e *Element) Attrs() []Attr {
	return e.attrs
}

// Children returns the element's children in document order.
func (e *Element) Children() []*Element {
	return e.children
}

// IsText reports whether e is a text node.
func (e *Element) IsText() bool { return e.Tag == "" }

// Text returns the content of a text node, or the empty string for tagged
// elements.
func (e *Element) Text() string { return e.text }

// Document is a complete SVG document: a root <svg> element sized to the
// requested canvas dimensions.
type Document struct {
	root *Element
}

// NewDocument creates a document whose root carries the canvas size along
// with the namespace and version markers.
func NewDocument(width, height float64) *Document {
	root := NewElement("svg")
	root.SetAttr("xmlns", Namespace)
	root.SetAttr("version", Version)
	root.SetAttr("width", FormatNumber(width))
	root.SetAttr("height", FormatNumber(height))
	return &Document{root: root}
}

// Root returns the document's root element.
func (d *Document) Root() *Element {
	return d.root
}

// Bytes serializes the document to SVG markup.
func (d *Document) Bytes() []byte {
	var buf bytes.Buffer
	writeElement(&buf, d.root, 0)
	return buf.Bytes()
}

// WriteTo serializes the document to w.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(d.Bytes())
	return int64(n), err
}

// String returns the serialized markup. Mainly useful in tests.
func (d *Document) String() string {
	return string(d.Bytes())
}

func writeElement(buf *bytes.Buffer, e *Element, depth int) {
	indent := strings.Repeat("  ", depth)

	if e.IsText() {
		buf.WriteString(Escape(e.text))
		return
	}

	fmt.Fprintf(buf, "%s<%s", indent, e.Tag)
	for _, a := range e.attrs {
		fmt.Fprintf(buf, ` %s="%s"`, a.Key, Escape(a.Value))
	}

	if len(e.children) == 0 {
		buf.WriteString("/>\n")
		return
	}

	// Text-only elements render inline so labels stay on one line.
	if len(e.children) == 1 && e.children[0].IsText() {
		buf.WriteString(">")
		writeElement(buf, e.children[0], 0)
		fmt.Fprintf(buf, "</%s>\n", e.Tag)
		return
	}

	buf.WriteString(">\n")
	for _, c := range e.children {
		writeElement(buf, c, depth+1)
	}
	fmt.Fprintf(buf, "%s</%s>\n", indent, e.Tag)
}

// Escape escapes s for embedding in markup, both as attribute value and
// text content.
func Escape(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// FormatNumber formats a coordinate or dimension with the shortest exact
// decimal representation, keeping output deterministic across renders.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
