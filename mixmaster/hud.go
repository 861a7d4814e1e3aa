package mixmaster

import (
	"html"
	"strings"

	"github.com/cozy/mixmaster-go/history"
	"go.uber.org/zap"
)

// HUD is a history.Reporter rendering the latest announcement as the
// markup of an overlay.
type HUD struct {
	overlay string
	logger  *zap.Logger
}

// NewHUD creates an empty HUD. Announcements are also logged at info level
// when logger is not nil.
func NewHUD(logger *zap.Logger) *HUD {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HUD{logger: logger}
}

// Announce is a method of the history.Reporter interface.
func (h *HUD) Announce(a history.Announcement) {
	h.overlay = "<span>" + html.EscapeString(Describe(a)) + "</span>"
	h.logger.Info(string(a.Verb), zap.String("command", a.Command))
}

// Overlay returns the markup of the latest announcement.
func (h *HUD) Overlay() string {
	return h.overlay
}

// Describe words an announcement for people.
func Describe(a history.Announcement) string {
	switch a.Verb {
	case history.VerbNothingToUndo:
		return "Nothing left to undo!"
	case history.VerbNothingToRedo:
		return "Nothing left to redo!"
	}
	verb := string(a.Verb)
	if verb != "" {
		verb = strings.ToUpper(verb[:1]) + verb[1:]
	}
	return verb + " " + a.Command + "."
}
