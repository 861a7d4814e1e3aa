// Package effect decorates commands with visual transitions. Transitions
// are cosmetic: they run around a command's execution, and nothing they do
// or fail to do has any bearing on the command or on the edit history.
package effect

import (
	"fmt"

	"github.com/cozy/mixmaster-go/transform"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// TagColorAlpha is the opacity of the tag colour applied to a node that was
// just put into the document.
const TagColorAlpha = 0.25

// Transitioner draws transitions. It is the only thing the observer knows
// about rendering.
type Transitioner interface {
	// Overlay captures what n looks like, right before it leaves the tree.
	Overlay(n *html.Node) (Overlay, error)
}

// Overlay is a captured picture of a node that is about to be replaced.
type Overlay interface {
	// HighlightAndFade tints n with its tag colour at the given opacity,
	// resizes the overlay to n and fades it out.
	HighlightAndFade(n *html.Node, alpha float64) error
}

// Observer arms transitions on commands. It can be disabled as a whole, for
// instance while the history replays its stacks, without unhooking it from
// the commands it observes.
type Observer struct {
	transitions Transitioner
	logger      *zap.Logger
	enabled     bool
}

// NewObserver creates an enabled observer drawing with t. A nil logger
// disables logging.
func NewObserver(t Transitioner, logger *zap.Logger) *Observer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Observer{transitions: t, logger: logger, enabled: true}
}

// SetEnabled turns transitions on or off.
func (o *Observer) SetEnabled(enabled bool) {
	o.enabled = enabled
}

// Enabled reports whether transitions are on.
func (o *Observer) Enabled() bool {
	return o.enabled
}

// Observe hooks the observer to cmd. Every time cmd replaces a node while
// the observer is enabled, the outgoing node is captured and the incoming
// node highlighted once the replacement is done. The returned function
// unhooks the observer from cmd.
func (o *Observer) Observe(cmd transform.Observable) (cancel func()) {
	var pending func()
	off := cmd.On(transform.BeforeReplace, func(outgoing *html.Node) {
		if pending != nil {
			// The previous replacement failed before reaching its
			// after-replace event.
			pending()
			pending = nil
		}
		if !o.enabled || o.transitions == nil {
			return
		}
		var overlay Overlay
		if err := o.guard("capture", func() (err error) {
			overlay, err = o.transitions.Overlay(outgoing)
			return err
		}); err != nil || overlay == nil {
			return
		}
		pending = cmd.Once(transform.AfterReplace, func(incoming *html.Node) {
			pending = nil
			_ = o.guard("highlight", func() error {
				return overlay.HighlightAndFade(incoming, TagColorAlpha)
			})
		})
	})
	return func() {
		off()
		if pending != nil {
			pending()
			pending = nil
		}
	}
}

// guard runs fn, turning panics into errors, and logs whatever went wrong.
func (o *Observer) guard(stage string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		if err != nil {
			o.logger.Warn("transition failed", zap.String("stage", stage), zap.Error(err))
		}
	}()
	return fn()
}
