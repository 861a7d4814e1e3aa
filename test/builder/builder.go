// Package builder builds small HTML documents for tests and looks nodes up
// in them.
package builder

import (
	"strings"

	"github.com/cozy/mixmaster-go/model"
	"golang.org/x/net/html"
)

// Doc parses a document whose <body> holds the given markup, concatenated.
// It panics on error, since it is only used with literal test inputs.
func Doc(body ...string) *model.Document {
	d, err := model.ParseString("<!DOCTYPE html><html><head></head><body>" +
		strings.Join(body, "") + "</body></html>")
	if err != nil {
		panic(err)
	}
	return d
}

// Reparse renders d and parses the result into a brand new document, like a
// page being saved and loaded again.
func Reparse(d *model.Document) *model.Document {
	out, err := model.ParseString(d.String())
	if err != nil {
		panic(err)
	}
	return out
}

// Node returns the single node of d matching the CSS selector sel, and
// panics if there is not exactly one.
func Node(d *model.Document, sel string) *html.Node {
	matches, err := d.Find(sel)
	if err != nil {
		panic(err)
	}
	if len(matches) != 1 {
		panic("selector " + sel + " does not match exactly one node")
	}
	return matches[0]
}

// Fragment parses markup into a detached node, in <body> context.
func Fragment(markup string) *html.Node {
	n, err := model.ParseFragment(markup, nil)
	if err != nil {
		panic(err)
	}
	return n
}

// Body renders the content of the <body> element of d, which is what most
// tests compare.
func Body(d *model.Document) string {
	body := d.Body()
	if body == nil {
		return ""
	}
	var sb strings.Builder
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&sb, c)
	}
	return sb.String()
}
