package effect

import (
	"errors"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// ErrGone is returned when the node a transition should be drawn on is no
// longer part of a tree.
var ErrGone = errors.New("node to animate no longer exists")

// Transition describes one highlight drawn by a LogTransitioner.
type Transition struct {
	From  string
	To    string
	Alpha float64
}

// LogTransitioner is a headless Transitioner: it has no screen to draw on,
// so it logs every transition at debug level and keeps the list of what it
// would have drawn.
type LogTransitioner struct {
	logger *zap.Logger
	drawn  []Transition
}

// NewLogTransitioner creates a LogTransitioner. A nil logger disables
// logging.
func NewLogTransitioner(logger *zap.Logger) *LogTransitioner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogTransitioner{logger: logger}
}

// Overlay is a method of the Transitioner interface.
func (t *LogTransitioner) Overlay(n *html.Node) (Overlay, error) {
	if n == nil || n.Parent == nil {
		return nil, ErrGone
	}
	return &logOverlay{t: t, from: describe(n)}, nil
}

// Drawn returns the transitions drawn so far, oldest first.
func (t *LogTransitioner) Drawn() []Transition {
	return t.drawn
}

type logOverlay struct {
	t    *LogTransitioner
	from string
}

func (o *logOverlay) HighlightAndFade(n *html.Node, alpha float64) error {
	if n == nil || n.Parent == nil {
		return ErrGone
	}
	tr := Transition{From: o.from, To: describe(n), Alpha: alpha}
	o.t.drawn = append(o.t.drawn, tr)
	o.t.logger.Debug("transition",
		zap.String("from", tr.From),
		zap.String("to", tr.To),
		zap.Float64("alpha", alpha))
	return nil
}

// describe names a node the way a tag colour legend would: tag, then id.
func describe(n *html.Node) string {
	if n.Type != html.ElementNode {
		return "#text"
	}
	for _, a := range n.Attr {
		if a.Key == "id" {
			return n.Data + "#" + a.Val
		}
	}
	return n.Data
}
