// Package history keeps the undo and redo stacks of a document's edits, and
// saves them in a form that survives the document being saved and loaded
// again.
package history

import (
	"encoding/json"
	"fmt"

	"github.com/cozy/mixmaster-go/effect"
	"github.com/cozy/mixmaster-go/transform"
	"go.uber.org/zap"
)

// Focuser is the part of the selection the history has to deal with: the
// focus is dropped whenever the document changes under it.
type Focuser interface {
	Unfocus()
}

// Rebuilder turns a record back into an executed command against the
// current state of the document.
type Rebuilder func(rec transform.Record) (transform.Command, error)

// History is an undo/redo stack of commands.
//
// The undo stack, bottom to top, holds exactly the edits applied to the
// document, in the order they were applied. Running a new command always
// empties the redo stack: history does not branch.
//
// A History is not safe for concurrent use, and must not be used from
// within a command's event listeners.
type History struct {
	undoStack []transform.Command
	redoStack []transform.Command

	effects  *effect.Observer
	focus    Focuser
	reporter Reporter
	rebuild  Rebuilder
	logger   *zap.Logger
}

// Option configures a History.
type Option func(*History)

// WithEffects sets the observer that draws transitions around commands.
func WithEffects(o *effect.Observer) Option {
	return func(h *History) { h.effects = o }
}

// WithFocus sets the focus to drop before every change.
func WithFocus(f Focuser) Option {
	return func(h *History) { h.focus = f }
}

// WithReporter sets where status announcements go.
func WithReporter(r Reporter) Option {
	return func(h *History) { h.reporter = r }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(h *History) { h.logger = l }
}

// WithRebuilder overrides how commands are rebuilt from records.
func WithRebuilder(r Rebuilder) Option {
	return func(h *History) { h.rebuild = r }
}

// New creates an empty history for the document tree.
func New(tree transform.Tree, opts ...Option) *History {
	h := &History{
		rebuild: func(rec transform.Record) (transform.Command, error) {
			return transform.ReplaceCommandFromRecord(tree, rec)
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.effects == nil {
		h.effects = effect.NewObserver(nil, h.logger)
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	return h
}

// Effects returns the observer drawing transitions for this history.
func (h *History) Effects() *effect.Observer {
	return h.effects
}

// UndoDepth returns the number of commands that can be undone.
func (h *History) UndoDepth() int { return len(h.undoStack) }

// RedoDepth returns the number of commands that can be redone.
func (h *History) RedoDepth() int { return len(h.redoStack) }

// Reset forgets every command. The document is left as it is.
func (h *History) Reset() {
	h.undoStack = nil
	h.redoStack = nil
}

// Run executes cmd and records it as the latest edit. If cmd fails, the
// history is left as it was.
func (h *History) Run(cmd transform.Command) error {
	h.unfocus()
	redo := h.redoStack
	h.undoStack = append(h.undoStack, cmd)
	h.redoStack = nil
	unobserve := h.effects.Observe(cmd)
	if err := cmd.Execute(); err != nil {
		unobserve()
		h.undoStack = h.undoStack[:len(h.undoStack)-1]
		h.redoStack = redo
		return err
	}
	h.logger.Debug("command applied", zap.String("command", cmd.Name()), zap.Int("depth", len(h.undoStack)))
	h.announce(VerbApplied, cmd)
	return nil
}

// Undo reverts the latest edit. With nothing to undo, it only says so.
func (h *History) Undo() error {
	if len(h.undoStack) == 0 {
		h.announce(VerbNothingToUndo, nil)
		return nil
	}
	h.unfocus()
	cmd, err := h.undo()
	if err != nil {
		return err
	}
	h.announce(VerbReverted, cmd)
	return nil
}

// Redo reapplies the latest undone edit. With nothing to redo, it only says
// so.
func (h *History) Redo() error {
	if len(h.redoStack) == 0 {
		h.announce(VerbNothingToRedo, nil)
		return nil
	}
	h.unfocus()
	cmd, err := h.redo()
	if err != nil {
		return err
	}
	h.announce(VerbReapplied, cmd)
	return nil
}

// undo moves the top of the undo stack to the redo stack and undoes it.
func (h *History) undo() (transform.Command, error) {
	n := len(h.undoStack) - 1
	cmd := h.undoStack[n]
	h.undoStack = h.undoStack[:n]
	h.redoStack = append(h.redoStack, cmd)
	if err := cmd.Undo(); err != nil {
		h.redoStack = h.redoStack[:len(h.redoStack)-1]
		h.undoStack = append(h.undoStack, cmd)
		return nil, err
	}
	return cmd, nil
}

// redo moves the top of the redo stack to the undo stack and executes it.
func (h *History) redo() (transform.Command, error) {
	n := len(h.redoStack) - 1
	cmd := h.redoStack[n]
	h.redoStack = h.redoStack[:n]
	h.undoStack = append(h.undoStack, cmd)
	if err := cmd.Execute(); err != nil {
		h.undoStack = h.undoStack[:len(h.undoStack)-1]
		h.redoStack = append(h.redoStack, cmd)
		return nil, err
	}
	return cmd, nil
}

func (h *History) unfocus() {
	if h.focus != nil {
		h.focus.Unfocus()
	}
}

// quiet turns effects off and returns a function restoring the previous
// setting.
func (h *History) quiet() func() {
	prev := h.effects.Enabled()
	h.effects.SetEnabled(false)
	return func() { h.effects.SetEnabled(prev) }
}

// Serialize snapshots the undo stack, most recent edit first.
//
// Each command can only be snapshotted against the document as it was right
// after the command ran, so the stack is undone from the top, one record at
// a time, then redone. The document and both stacks end up as they were.
func (h *History) Serialize() ([]transform.Record, error) {
	defer h.quiet()()

	records := make([]transform.Record, 0, len(h.undoStack))
	undone := 0
	var err error
	for len(h.undoStack) > 0 {
		cmd := h.undoStack[len(h.undoStack)-1]
		var rec transform.Record
		if rec, err = cmd.Serialize(); err != nil {
			break
		}
		if _, err = h.undo(); err != nil {
			break
		}
		records = append(records, rec)
		undone++
	}
	for i := 0; i < undone; i++ {
		if _, rerr := h.redo(); rerr != nil {
			return nil, fmt.Errorf("restore history after serializing: %w", rerr)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("serialize history: %w", err)
	}
	return records, nil
}

// Deserialize replaces both stacks with commands rebuilt from records, as
// produced by Serialize.
//
// Each record was taken with the more recent edits rolled back, so records
// are rebuilt and undone in order, most recent first, then all redone. If
// any record cannot be rebuilt, the document and the previous stacks are
// restored and the error is returned.
func (h *History) Deserialize(records []transform.Record) error {
	defer h.quiet()()

	prevUndo, prevRedo := h.undoStack, h.redoStack
	h.undoStack, h.redoStack = nil, nil

	for i, rec := range records {
		cmd, err := h.rebuild(rec)
		if err == nil {
			h.effects.Observe(cmd)
			h.undoStack = append(h.undoStack, cmd)
			_, err = h.undo()
		}
		if err != nil {
			for len(h.redoStack) > 0 {
				if _, rerr := h.redo(); rerr != nil {
					h.logger.Error("cannot roll back partial history", zap.Error(rerr))
					break
				}
			}
			h.undoStack, h.redoStack = prevUndo, prevRedo
			return fmt.Errorf("deserialize record %d: %w", i, err)
		}
	}
	for range records {
		if _, err := h.redo(); err != nil {
			return fmt.Errorf("deserialize history: %w", err)
		}
	}
	h.logger.Debug("history restored", zap.Int("depth", len(h.undoStack)))
	return nil
}

// SerializeHistory is Serialize, encoded as a JSON array.
func (h *History) SerializeHistory() (string, error) {
	records, err := h.Serialize()
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("encode history: %w", err)
	}
	return string(data), nil
}

// DeserializeHistory decodes a JSON array produced by SerializeHistory and
// passes it to Deserialize.
func (h *History) DeserializeHistory(data string) error {
	var records []transform.Record
	if err := json.Unmarshal([]byte(data), &records); err != nil {
		return fmt.Errorf("decode history: %w", err)
	}
	return h.Deserialize(records)
}
