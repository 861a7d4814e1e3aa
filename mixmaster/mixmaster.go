// Package mixmaster puts the edit history to work on a document: it deletes
// and replaces the focused element, undoes and redoes edits, and keeps the
// history inside the document itself so that it survives saving the page.
package mixmaster

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cozy/mixmaster-go/effect"
	"github.com/cozy/mixmaster-go/history"
	"github.com/cozy/mixmaster-go/model"
	"github.com/cozy/mixmaster-go/transform"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Default option values.
const (
	DefaultHistoryElementID = "mixmaster-serialized-history-v1"
	DefaultDeletedClass     = "mixmaster-deleted"
	DefaultMaxHTMLLength    = 1000
)

// Command names.
const (
	NameDeletion    = "deletion"
	NameReplacement = "replacement"
)

// ErrNoFocus is returned by operations on the focused element when nothing
// is focused.
var ErrNoFocus = errors.New("no element is focused")

// Focus is the user's current selection.
type Focus interface {
	history.Focuser
	// PrimaryElement returns the focused element, or nil.
	PrimaryElement() *html.Node
}

// Options configures a MixMaster. The zero value is usable.
type Options struct {
	// Focus is the selection; without one, the focused-element operations
	// fail with ErrNoFocus.
	Focus Focus
	// Reporter receives history announcements.
	Reporter history.Reporter
	// Transitions draws effects; nil draws nothing.
	Transitions effect.Transitioner
	// Sanitize runs replacement markup through a UGC policy first.
	Sanitize bool
	// HistoryElementID is the id of the element holding the saved history.
	HistoryElementID string
	// DeletedClass is the class of the placeholder left by deletions.
	DeletedClass string
	// MaxHTMLLength caps the markup sent to the edit dialog.
	MaxHTMLLength int
	Logger        *zap.Logger
}

// MixMaster edits a document through an undoable history.
type MixMaster struct {
	doc     *model.Document
	history *history.History
	effects *effect.Observer
	focus   Focus
	policy  *bluemonday.Policy
	opts    Options
	logger  *zap.Logger
}

// New creates a MixMaster editing doc, with an empty history.
func New(doc *model.Document, opts Options) *MixMaster {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.HistoryElementID == "" {
		opts.HistoryElementID = DefaultHistoryElementID
	}
	if opts.DeletedClass == "" {
		opts.DeletedClass = DefaultDeletedClass
	}
	if opts.MaxHTMLLength <= 0 {
		opts.MaxHTMLLength = DefaultMaxHTMLLength
	}
	m := &MixMaster{
		doc:    doc,
		focus:  opts.Focus,
		opts:   opts,
		logger: opts.Logger,
	}
	if opts.Sanitize {
		m.policy = bluemonday.UGCPolicy()
	}
	m.effects = effect.NewObserver(opts.Transitions, opts.Logger)
	hopts := []history.Option{
		history.WithEffects(m.effects),
		history.WithLogger(opts.Logger),
	}
	if opts.Focus != nil {
		hopts = append(hopts, history.WithFocus(opts.Focus))
	}
	if opts.Reporter != nil {
		hopts = append(hopts, history.WithReporter(opts.Reporter))
	}
	m.history = history.New(doc, hopts...)
	return m
}

// Document returns the edited document.
func (m *MixMaster) Document() *model.Document { return m.doc }

// History returns the edit history.
func (m *MixMaster) History() *history.History { return m.history }

// Effects returns the observer drawing transitions.
func (m *MixMaster) Effects() *effect.Observer { return m.effects }

// Undo reverts the latest edit.
func (m *MixMaster) Undo() error { return m.history.Undo() }

// Redo reapplies the latest undone edit.
func (m *MixMaster) Redo() error { return m.history.Redo() }

// SerializeHistory returns the history as JSON.
func (m *MixMaster) SerializeHistory() (string, error) {
	return m.history.SerializeHistory()
}

// DeserializeHistory replaces the history with one saved by
// SerializeHistory.
func (m *MixMaster) DeserializeHistory(data string) error {
	return m.history.DeserializeHistory(data)
}

// SaveHistoryToDOM stores the history in a hidden element at the end of
// <body>, replacing any history stored before.
func (m *MixMaster) SaveHistoryToDOM() error {
	m.removeHistoryElement()
	data, err := m.SerializeHistory()
	if err != nil {
		return err
	}
	body := m.doc.Body()
	if body == nil {
		return errors.New("document has no body")
	}
	el := model.NewElement(atom.Div,
		html.Attribute{Key: "id", Val: m.opts.HistoryElementID},
		html.Attribute{Key: "style", Val: "display: none;"},
	)
	el.AppendChild(model.NewText(data))
	body.AppendChild(el)
	m.logger.Debug("history saved", zap.Int("bytes", len(data)))
	return nil
}

// LoadHistoryFromDOM restores the history stored by SaveHistoryToDOM, if
// the document holds one. The element itself is left in place.
func (m *MixMaster) LoadHistoryFromDOM() error {
	el := m.doc.ElementByID(m.opts.HistoryElementID)
	if el == nil {
		return nil
	}
	return m.DeserializeHistory(model.TextContent(el))
}

func (m *MixMaster) removeHistoryElement() {
	for {
		el := m.doc.ElementByID(m.opts.HistoryElementID)
		if el == nil || el.Parent == nil {
			return
		}
		el.Parent.RemoveChild(el)
	}
}

// CheckReload parses markup, the page as saved, the way it will be parsed
// when loaded again, and restores the history saved in it. It fails when the
// parser rebuilds the tree differently from how it was edited, for instance
// when a <div> was put inside a <p>, in which case saving markup would lose
// the history. The returned error wraps a *transform.AmbiguousLocatorError.
func (m *MixMaster) CheckReload(markup string) error {
	doc, err := model.ParseString(markup)
	if err != nil {
		return err
	}
	reloaded := New(doc, Options{
		HistoryElementID: m.opts.HistoryElementID,
		DeletedClass:     m.opts.DeletedClass,
		Logger:           m.logger,
	})
	if err := reloaded.LoadHistoryFromDOM(); err != nil {
		return fmt.Errorf("history does not survive reloading: %w", err)
	}
	return nil
}

// HTMLToNode turns user supplied markup into a detached node, parsed as if
// it was inside context. Empty markup gives an empty <span>, and markup that
// does not start with a tag is wrapped in one.
func (m *MixMaster) HTMLToNode(markup string, context *html.Node) (*html.Node, error) {
	if m.policy != nil {
		markup = m.policy.Sanitize(markup)
	}
	if markup == "" {
		return model.NewElement(atom.Span), nil
	}
	if markup[0] != '<' {
		markup = "<span>" + markup + "</span>"
	}
	return m.doc.ParseFragment(markup, context)
}

// DeleteFocusedElement replaces the focused element with an empty
// placeholder. A placeholder, rather than nothing, keeps a spot in the tree
// that undoing can put the element back to.
func (m *MixMaster) DeleteFocusedElement() error {
	el := m.focused()
	if el == nil {
		return ErrNoFocus
	}
	placeholder := model.NewElement(placeholderTag(el.Parent), html.Attribute{Key: "class", Val: m.opts.DeletedClass})
	return m.history.Run(transform.NewReplaceCommand(m.doc, NameDeletion, el, placeholder))
}

// placeholderTag picks a placeholder element that parent accepts as a
// child. A <span> anywhere in a table, or in a <select>, is moved elsewhere
// by the parser once the page is loaded again.
func placeholderTag(parent *html.Node) atom.Atom {
	if parent == nil || parent.Type != html.ElementNode || parent.Namespace != "" {
		return atom.Span
	}
	switch parent.DataAtom {
	case atom.Table:
		return atom.Tbody
	case atom.Tbody, atom.Thead, atom.Tfoot:
		return atom.Tr
	case atom.Tr:
		return atom.Td
	case atom.Colgroup:
		return atom.Col
	case atom.Ul, atom.Ol, atom.Menu:
		return atom.Li
	case atom.Dl:
		return atom.Dd
	case atom.Select, atom.Optgroup, atom.Datalist:
		return atom.Option
	}
	return atom.Span
}

// ReplaceElement replaces el with the given markup and returns the new node.
// No transition is drawn: the caller is expected to animate the new node
// itself.
func (m *MixMaster) ReplaceElement(el *html.Node, markup string) (*html.Node, error) {
	if el == nil {
		return nil, errors.New("no element to replace")
	}
	incoming, err := m.HTMLToNode(markup, el.Parent)
	if err != nil {
		return nil, err
	}
	prev := m.effects.Enabled()
	m.effects.SetEnabled(false)
	defer m.effects.SetEnabled(prev)
	if err := m.history.Run(transform.NewReplaceCommand(m.doc, NameReplacement, el, incoming)); err != nil {
		return nil, err
	}
	return incoming, nil
}

// ReplaceFocusedElement is ReplaceElement on the focused element.
func (m *MixMaster) ReplaceFocusedElement(markup string) (*html.Node, error) {
	el := m.focused()
	if el == nil {
		return nil, ErrNoFocus
	}
	return m.ReplaceElement(el, markup)
}

// InfoURLForFocused returns the MDN reference page for the focused
// element's tag.
func (m *MixMaster) InfoURLForFocused() (string, bool) {
	el := m.focused()
	if el == nil {
		return "", false
	}
	return fmt.Sprintf("https://developer.mozilla.org/en/HTML/Element/%s", strings.ToLower(el.Data)), true
}

func (m *MixMaster) focused() *html.Node {
	if m.focus == nil {
		return nil
	}
	return m.focus.PrimaryElement()
}
