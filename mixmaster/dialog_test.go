package mixmaster

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/cozy/mixmaster-go/test/builder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposeRequest(t *testing.T) {
	m, sel, _ := newMixMaster(t, Options{MaxHTMLLength: 30})
	d := m.Document()

	_, err := m.ComposeRequest("http://example.com/")
	assert.ErrorIs(t, err, ErrNoFocus)

	sel.Select(builder.Node(d, "#title"))
	req, err := m.ComposeRequest("http://example.com/")
	require.NoError(t, err)
	assert.Equal(t, "Compose A Replacement", req.Title)
	assert.Equal(t, `<h1 id="title">Hello</h1>`, req.StartHTML)
	assert.Equal(t, "http://example.com/", req.BaseURI)

	// too long to edit
	sel.Select(builder.Node(d, "#intro"))
	req, err = m.ComposeRequest("")
	require.NoError(t, err)
	assert.Contains(t, req.StartHTML, "<code>&lt;p&gt;</code>")

	data, err := EncodeRequest(req)
	require.NoError(t, err)
	var decoded map[string]string
	require.NoError(t, json.Unmarshal([]byte(data), &decoded))
	assert.Equal(t, req.StartHTML, decoded["startHTML"])
}

func TestHandleDialogMessage(t *testing.T) {
	m, _, hud := newMixMaster(t, Options{})
	d := m.Document()
	title := builder.Node(d, "#title")

	// not for us
	n, err := m.HandleDialogMessage(title, "hello")
	require.NoError(t, err)
	assert.Nil(t, n)

	// cancelled
	n, err = m.HandleDialogMessage(title, `{"msg":"nevermind"}`)
	require.NoError(t, err)
	assert.Nil(t, n)
	assert.Equal(t, page, builder.Body(d))

	_, err = m.HandleDialogMessage(title, `{"msg":`)
	assert.Error(t, err)

	n, err = m.HandleDialogMessage(title, `{"msg":"ok","endHTML":"<h1>New\u00a0title</h1>"}`)
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.True(t, strings.HasPrefix(builder.Body(d), `<h1>New title</h1>`))
	assert.Equal(t, "<span>Applied replacement.</span>", hud.Overlay())

	require.NoError(t, m.Undo())
	assert.Equal(t, page, builder.Body(d))
}
