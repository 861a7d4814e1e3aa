package mixmaster

import (
	"github.com/cozy/mixmaster-go/model"
	"golang.org/x/net/html"
)

// Selection is a Focus holding at most one element.
type Selection struct {
	primary *html.Node
}

// Select focuses n.
func (s *Selection) Select(n *html.Node) {
	s.primary = n
}

// SelectLocator focuses the single element of doc matching locator, and
// reports whether there was one.
func (s *Selection) SelectLocator(doc *model.Document, locator string) bool {
	n := doc.FindOne(locator)
	if n == nil {
		return false
	}
	s.primary = n
	return true
}

// PrimaryElement is a method of the Focus interface.
func (s *Selection) PrimaryElement() *html.Node {
	return s.primary
}

// Unfocus is a method of the Focus interface.
func (s *Selection) Unfocus() {
	s.primary = nil
}
