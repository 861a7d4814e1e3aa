// Package transform implements document edits as commands: first-class,
// reversible values that can be executed, undone, saved and rebuilt against
// a later copy of the document.
package transform

import "golang.org/x/net/html"

// Command objects represent an atomic, reversible change of a document.
//
// A command is either executed or not. Execute is only valid on a command
// that is not executed, Undo only on one that is, and only executed commands
// can be serialized. Calling them out of order is a programming error and
// fails with an *InvalidStateError or a *PreconditionError.
type Command interface {
	Observable

	// Name is a short label for the edit, like "replacement" or "deletion".
	Name() string

	// Executed reports whether the command is currently applied.
	Executed() bool

	// Execute applies the command to the document.
	Execute() error

	// Undo reverts a previous Execute.
	Undo() error

	// Serialize snapshots an executed command into a Record, from which an
	// equivalent command can be rebuilt once the in-memory nodes are gone.
	Serialize() (Record, error)
}

// Tree is what commands need from the document they edit. *model.Document
// implements it.
type Tree interface {
	// Find returns every node matching locator.
	Find(locator string) ([]*html.Node, error)
	// Replace puts incoming at the position of the attached node outgoing,
	// and detaches outgoing.
	Replace(outgoing, incoming *html.Node) error
	// Markup renders a standalone clone of n.
	Markup(n *html.Node) (string, error)
	// PathTo computes a locator for the attached element n.
	PathTo(n *html.Node) (string, error)
	// ParseFragment parses markup into a detached node, in the context of
	// the given element.
	ParseFragment(markup string, context *html.Node) (*html.Node, error)
}
