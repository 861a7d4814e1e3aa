package model

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// A fragment is a single node that is not attached to any tree. Commands
// hold fragments while they are out of the document, and snapshots of
// fragments are what gets persisted.

// ParseFragment parses markup into a fragment, as if it was the content of
// the context element. When context is nil, markup is parsed as content of
// <body>.
//
// The result is always a single node: markup made of exactly one element
// gives that element, anything else (text, several siblings, nothing at
// all) is wrapped in a <span>.
func (d *Document) ParseFragment(markup string, context *html.Node) (*html.Node, error) {
	return ParseFragment(markup, context)
}

// ParseFragment is the document independent form of Document.ParseFragment.
func ParseFragment(markup string, context *html.Node) (*html.Node, error) {
	if context == nil || context.Type != html.ElementNode {
		context = NewElement(atom.Body)
	} else {
		// The parser only looks at the context's name and namespace; a bare
		// copy keeps it from touching the live tree.
		context = &html.Node{
			Type:      html.ElementNode,
			DataAtom:  context.DataAtom,
			Data:      context.Data,
			Namespace: context.Namespace,
		}
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return nil, fmt.Errorf("parse fragment: %w", err)
	}
	if len(nodes) == 1 && nodes[0].Type == html.ElementNode {
		return nodes[0], nil
	}
	span := NewElement(atom.Span)
	for _, n := range nodes {
		span.AppendChild(n)
	}
	return span, nil
}

// NewElement creates a detached, empty element.
func NewElement(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
		Attr:     attrs,
	}
}

// NewText creates a detached text node.
func NewText(text string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: text}
}

// Clone returns a deep copy of n that is not attached to anything.
func Clone(n *html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	if n.Attr != nil {
		c.Attr = make([]html.Attribute, len(n.Attr))
		copy(c.Attr, n.Attr)
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.AppendChild(Clone(child))
	}
	return c
}

// Markup renders a standalone clone of n, the way n would appear as the only
// child of a trivial parent.
func (d *Document) Markup(n *html.Node) (string, error) {
	return Markup(n)
}

// Markup is the document independent form of Document.Markup.
func Markup(n *html.Node) (string, error) {
	if n == nil {
		return "", errors.New("no node to render")
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, Clone(n)); err != nil {
		return "", fmt.Errorf("render fragment: %w", err)
	}
	return buf.String(), nil
}
