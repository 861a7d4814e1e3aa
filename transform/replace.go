package transform

import (
	"fmt"

	"golang.org/x/net/html"
)

// Record is the serialized form of an executed ReplaceCommand.
//
// The node that was put into the document is still there when the record is
// read back, so it is saved as a locator. The node that was taken out is
// gone with the process that removed it, so it is saved as markup.
type Record struct {
	Name         string `json:"name"`
	Locator      string `json:"locator"`
	SnapshotHTML string `json:"snapshotHTML"`
}

// ReplaceCommand replaces one node of the document with another.
type ReplaceCommand struct {
	Emitter

	name     string
	tree     Tree
	outgoing *html.Node
	incoming *html.Node
	executed bool

	// locator is the durable address the command was rebuilt from. Unlike
	// the node references above, it is only meaningful against the document
	// state it was computed for.
	locator string
}

// NewReplaceCommand is the constructor of ReplaceCommand.
//
// outgoing must be an element of tree, and incoming a detached fragment that
// takes its place when the command is executed.
func NewReplaceCommand(tree Tree, name string, outgoing, incoming *html.Node) *ReplaceCommand {
	return &ReplaceCommand{name: name, tree: tree, outgoing: outgoing, incoming: incoming}
}

// ReplaceCommandFromRecord rebuilds an executed ReplaceCommand from its
// serialized form. The node matching the record's locator becomes the
// incoming node, and the snapshot is parsed into a fresh outgoing fragment.
func ReplaceCommandFromRecord(tree Tree, rec Record) (*ReplaceCommand, error) {
	matches, err := tree.Find(rec.Locator)
	if err != nil {
		return nil, &AmbiguousLocatorError{Locator: rec.Locator, Err: err}
	}
	if len(matches) != 1 {
		return nil, &AmbiguousLocatorError{Locator: rec.Locator, Matches: len(matches)}
	}
	incoming := matches[0]
	outgoing, err := tree.ParseFragment(rec.SnapshotHTML, incoming.Parent)
	if err != nil {
		return nil, fmt.Errorf("rebuild %s: %w", rec.Name, err)
	}
	return &ReplaceCommand{
		name:     rec.Name,
		tree:     tree,
		outgoing: outgoing,
		incoming: incoming,
		executed: true,
		locator:  rec.Locator,
	}, nil
}

// Name is a method of the Command interface.
func (c *ReplaceCommand) Name() string { return c.name }

// Executed is a method of the Command interface.
func (c *ReplaceCommand) Executed() bool { return c.executed }

// Outgoing returns the node replaced by the command.
func (c *ReplaceCommand) Outgoing() *html.Node { return c.outgoing }

// Incoming returns the node put in place by the command.
func (c *ReplaceCommand) Incoming() *html.Node { return c.incoming }

// Locator returns the locator the command was rebuilt from, or "" for a
// command built from live nodes.
func (c *ReplaceCommand) Locator() string { return c.locator }

// Execute is a method of the Command interface.
func (c *ReplaceCommand) Execute() error {
	if c.executed {
		return &InvalidStateError{Command: c.name, Op: "execute", Reason: "already executed"}
	}
	if err := c.swap(c.outgoing, c.incoming); err != nil {
		return fmt.Errorf("execute %s: %w", c.name, err)
	}
	c.executed = true
	return nil
}

// Undo is a method of the Command interface.
func (c *ReplaceCommand) Undo() error {
	if !c.executed {
		return &InvalidStateError{Command: c.name, Op: "undo", Reason: "not yet executed"}
	}
	if err := c.swap(c.incoming, c.outgoing); err != nil {
		return fmt.Errorf("undo %s: %w", c.name, err)
	}
	c.executed = false
	return nil
}

func (c *ReplaceCommand) swap(from, to *html.Node) error {
	c.Emit(BeforeReplace, from)
	if err := c.tree.Replace(from, to); err != nil {
		return err
	}
	c.Emit(AfterReplace, to)
	return nil
}

// Serialize is a method of the Command interface.
func (c *ReplaceCommand) Serialize() (Record, error) {
	if !c.executed {
		return Record{}, &PreconditionError{Command: c.name, Reason: "only executed commands can be serialized"}
	}
	locator, err := c.tree.PathTo(c.incoming)
	if err != nil {
		return Record{}, fmt.Errorf("serialize %s: %w", c.name, err)
	}
	snapshot, err := c.tree.Markup(c.outgoing)
	if err != nil {
		return Record{}, fmt.Errorf("serialize %s: %w", c.name, err)
	}
	return Record{Name: c.name, Locator: locator, SnapshotHTML: snapshot}, nil
}

var _ Command = &ReplaceCommand{}
