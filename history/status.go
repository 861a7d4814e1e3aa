package history

import "github.com/cozy/mixmaster-go/transform"

// Verb says what just happened to the history.
type Verb string

// Verbs reported by a History.
const (
	VerbApplied       Verb = "applied"
	VerbReverted      Verb = "reverted"
	VerbReapplied     Verb = "reapplied"
	VerbNothingToUndo Verb = "nothing to undo"
	VerbNothingToRedo Verb = "nothing to redo"
)

// Announcement is a status update after Run, Undo or Redo. Command is the
// name of the command concerned, empty when there was nothing to do.
type Announcement struct {
	Verb    Verb
	Command string
}

// Reporter displays announcements. How they are worded and shown is up to
// the reporter.
type Reporter interface {
	Announce(a Announcement)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(a Announcement)

// Announce is a method of the Reporter interface.
func (f ReporterFunc) Announce(a Announcement) { f(a) }

func (h *History) announce(verb Verb, cmd transform.Command) {
	if h.reporter == nil {
		return
	}
	a := Announcement{Verb: verb}
	if cmd != nil {
		a.Command = cmd.Name()
	}
	h.reporter.Announce(a)
}
