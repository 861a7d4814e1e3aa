package mixmaster

import (
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// DialogRequest is the message sent to the edit dialog when it opens.
type DialogRequest struct {
	Title        string `json:"title"`
	Instructions string `json:"instructions"`
	StartHTML    string `json:"startHTML"`
	BaseURI      string `json:"baseURI"`
}

// DialogMessage is a message sent back by the edit dialog.
type DialogMessage struct {
	Msg     string `json:"msg"`
	EndHTML string `json:"endHTML"`
}

// ComposeRequest builds the request opening the edit dialog on the focused
// element. Markup that is empty or too long to edit comfortably is replaced
// by a notice.
func (m *MixMaster) ComposeRequest(baseURI string) (*DialogRequest, error) {
	el := m.focused()
	if el == nil {
		return nil, ErrNoFocus
	}
	start, err := m.doc.Markup(el)
	if err != nil {
		return nil, err
	}
	if len(start) == 0 || len(start) > m.opts.MaxHTMLLength {
		start = fmt.Sprintf("<span>The HTML source for your selected "+
			"<code>&lt;%s&gt;</code> element could make your head explode.</span>",
			strings.ToLower(el.Data))
	}
	return &DialogRequest{
		Title: "Compose A Replacement",
		Instructions: "<span>When you're done composing your replacement HTML, " +
			"press the <strong>Ok</strong> button.</span>",
		StartHTML: start,
		BaseURI:   baseURI,
	}, nil
}

// HandleDialogMessage applies a message from the edit dialog opened on el.
// An "ok" message replaces el with the edited markup and returns the new
// node; any other message closes the dialog without changes, and returns
// nil.
func (m *MixMaster) HandleDialogMessage(el *html.Node, data string) (*html.Node, error) {
	if data == "" || data[0] != '{' {
		return nil, nil
	}
	var msg DialogMessage
	if err := json.Unmarshal([]byte(data), &msg); err != nil {
		return nil, fmt.Errorf("decode dialog message: %w", err)
	}
	if msg.Msg != "ok" {
		m.logger.Debug("dialog dismissed", zap.String("msg", msg.Msg))
		return nil, nil
	}
	// The dialog may have turned spaces into non-breaking ones.
	markup := strings.ReplaceAll(msg.EndHTML, "\u00a0", " ")
	return m.ReplaceElement(el, markup)
}

// EncodeRequest is a convenience that marshals a request for sending.
func EncodeRequest(req *DialogRequest) (string, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode dialog request: %w", err)
	}
	return string(data), nil
}
