// Package model gives access to a live HTML document tree. It wraps the
// golang.org/x/net/html node tree with the handful of primitives the edit
// history needs: finding nodes by locator, computing locators, swapping one
// node for another and turning nodes into standalone markup and back.
package model

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrDetached is returned when an operation needs a node that is attached to
// the document, but the node has no parent.
var ErrDetached = errors.New("node is not attached to the document")

// A Document is a parsed HTML document. The tree is mutable: nodes are
// replaced in place, and every node handed out by the document stays valid
// for as long as the document lives.
type Document struct {
	root *html.Node
}

// NewDocument wraps an already parsed tree. The root must be a document
// node, as returned by html.Parse.
func NewDocument(root *html.Node) (*Document, error) {
	if root == nil || root.Type != html.DocumentNode {
		return nil, errors.New("root must be a document node")
	}
	return &Document{root: root}, nil
}

// Parse reads a full HTML document from r.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return &Document{root: root}, nil
}

// ParseString is like Parse, for a document held in a string.
func ParseString(markup string) (*Document, error) {
	return Parse(strings.NewReader(markup))
}

// Root returns the document node.
func (d *Document) Root() *html.Node {
	return d.root
}

// Body returns the <body> element, or nil if the document has none.
func (d *Document) Body() *html.Node {
	return findFirst(d.root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == atom.Body
	})
}

// ElementByID returns the first element whose id attribute equals id.
func (d *Document) ElementByID(id string) *html.Node {
	return findFirst(d.root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && Attr(n, "id") == id
	})
}

// Contains reports whether n is part of this document's tree.
func (d *Document) Contains(n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == d.root {
			return true
		}
	}
	return false
}

// Render writes the whole document as HTML to w.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// String returns the document rendered as HTML.
func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

// Replace puts incoming at the position of outgoing and detaches outgoing.
// outgoing must be attached to the document and incoming must be detached.
func (d *Document) Replace(outgoing, incoming *html.Node) error {
	if outgoing == nil || incoming == nil {
		return errors.New("replace needs two nodes")
	}
	parent := outgoing.Parent
	if parent == nil || !d.Contains(parent) {
		return ErrDetached
	}
	if incoming.Parent != nil || incoming.PrevSibling != nil || incoming.NextSibling != nil {
		return errors.New("replacement node is already attached")
	}
	parent.InsertBefore(incoming, outgoing)
	parent.RemoveChild(outgoing)
	return nil
}

// Attr returns the value of the attribute key on n, or "" if it is absent.
func Attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// SetAttr sets the attribute key on n, replacing any previous value.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// TextContent returns the concatenated text of n and its descendants.
func TextContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	if match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}
