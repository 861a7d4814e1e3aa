package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// PathTo computes the locator of the element n: a CSS selector chain from
// the <html> element down to n, in which every step below <html> is pinned
// with :nth-child. Evaluated against the same tree, the locator matches n
// and nothing else.
//
// The locator depends on the position of n and of its ancestors, so it has
// to be computed against the tree in the state it will be evaluated in.
func (d *Document) PathTo(n *html.Node) (string, error) {
	if n == nil || n.Type != html.ElementNode {
		return "", errors.New("locator needs an element node")
	}
	if !d.Contains(n) {
		return "", ErrDetached
	}
	var steps []string
	for p := n; p != nil && p.Type == html.ElementNode; p = p.Parent {
		steps = append(steps, locatorStep(p))
	}
	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}
	return strings.Join(steps, " > "), nil
}

func locatorStep(n *html.Node) string {
	tag := n.Data
	if tag != strings.ToLower(tag) {
		// Foreign elements keep their camel case names, which CSS type
		// selectors never match.
		tag = "*"
	}
	if n.Parent == nil || n.Parent.Type != html.ElementNode {
		return tag
	}
	return tag + ":nth-child(" + strconv.Itoa(elementIndex(n)) + ")"
}

// elementIndex returns the 1-based position of n among its parent's element
// children.
func elementIndex(n *html.Node) int {
	idx := 1
	for s := n.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type == html.ElementNode {
			idx++
		}
	}
	return idx
}

// Find returns every node of the document matching locator, in document
// order. Any CSS selector is accepted, not only the ones built by PathTo.
func (d *Document) Find(locator string) ([]*html.Node, error) {
	sel, err := cascadia.Compile(locator)
	if err != nil {
		return nil, fmt.Errorf("compile locator %q: %w", locator, err)
	}
	return sel.MatchAll(d.root), nil
}

// FindOne is like Find, but returns nil unless exactly one node matches.
func (d *Document) FindOne(locator string) *html.Node {
	matches, err := d.Find(locator)
	if err != nil || len(matches) != 1 {
		return nil
	}
	return matches[0]
}
