package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cozy/mixmaster-go/internal/config"
	"github.com/cozy/mixmaster-go/transform"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	original = `<h1 id="title">Hello</h1><p id="intro">Some text.</p>`
	saved    = `<div id="mixmaster-serialized-history-v1" style="display: none;">`
)

func setup(t *testing.T) (string, *cobra.Command, *bytes.Buffer) {
	t.Helper()
	logger = zap.NewNop()
	cfg = config.DefaultConfig()
	t.Cleanup(func() {
		outPath = ""
		undoSteps = 1
	})

	path := filepath.Join(t.TempDir(), "page.html")
	writePage(t, path, original)

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	return path, cmd, &out
}

func writePage(t *testing.T, path, body string) {
	t.Helper()
	markup := "<!DOCTYPE html><html><head></head><body>" + body + "</body></html>"
	require.NoError(t, os.WriteFile(path, []byte(markup), 0o644))
}

func body(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	s := string(data)
	start := strings.Index(s, "<body>")
	end := strings.Index(s, "</body>")
	require.True(t, start >= 0 && end > start, s)
	return s[start+len("<body>") : end]
}

func TestEditAndUndo(t *testing.T) {
	path, cmd, out := setup(t)

	require.NoError(t, runReplace(cmd, []string{path, "#title", `<h1 id="title">Bye</h1>`}))
	assert.Equal(t, "Applied replacement.\n", out.String())
	assert.True(t, strings.HasPrefix(body(t, path), `<h1 id="title">Bye</h1><p id="intro">Some text.</p>`+saved))

	out.Reset()
	require.NoError(t, runDelete(cmd, []string{path, "#intro"}))
	assert.Equal(t, "Applied deletion.\n", out.String())
	assert.True(t, strings.HasPrefix(body(t, path), `<h1 id="title">Bye</h1><span class="mixmaster-deleted"></span>`+saved))

	out.Reset()
	require.NoError(t, runHistory(cmd, []string{path}))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "1\tdeletion\thtml > body:nth-child(2) > span:nth-child(2)\t<p id=\"intro\">Some text.</p>", lines[0])
	assert.Equal(t, "2\treplacement\thtml > body:nth-child(2) > h1:nth-child(1)\t<h1 id=\"title\">Hello</h1>", lines[1])

	out.Reset()
	undoSteps = 2
	require.NoError(t, runUndo(cmd, []string{path}))
	assert.Equal(t, "Reverted deletion.\nReverted replacement.\n", out.String())
	assert.Equal(t, original+saved+"[]</div>", body(t, path))

	out.Reset()
	undoSteps = 1
	require.NoError(t, runUndo(cmd, []string{path}))
	assert.Equal(t, "Nothing left to undo!\n", out.String())
}

func TestEditToOut(t *testing.T) {
	path, cmd, _ := setup(t)
	outPath = filepath.Join(filepath.Dir(path), "remixed.html")

	require.NoError(t, runDelete(cmd, []string{path, "h1"}))
	assert.Equal(t, original, body(t, path))
	assert.Contains(t, body(t, outPath), `<span class="mixmaster-deleted"></span>`)
}

func TestAmbiguousLocator(t *testing.T) {
	path, cmd, _ := setup(t)

	err := runDelete(cmd, []string{path, "h1, p"})
	var ambiguous *transform.AmbiguousLocatorError
	require.True(t, errors.As(err, &ambiguous))
	assert.Equal(t, 2, ambiguous.Matches)

	err = runDelete(cmd, []string{path, "table"})
	require.True(t, errors.As(err, &ambiguous))
	assert.Equal(t, 0, ambiguous.Matches)
	assert.Equal(t, original, body(t, path))
}

func TestScript(t *testing.T) {
	path, cmd, out := setup(t)
	script := filepath.Join(filepath.Dir(path), "edits.yaml")
	require.NoError(t, os.WriteFile(script, []byte(`steps:
  - op: replace
    locator: "#title"
    html: "<h1 id=\"title\">Remixed</h1>"
  - op: delete
    locator: "#intro"
  - op: undo
  - op: redo
  - op: undo
`), 0o644))

	require.NoError(t, runScript(cmd, []string{path, script}))
	assert.Equal(t, "Applied replacement.\nApplied deletion.\nReverted deletion.\nReapplied deletion.\nReverted deletion.\n", out.String())
	assert.True(t, strings.HasPrefix(body(t, path), `<h1 id="title">Remixed</h1><p id="intro">Some text.</p>`+saved))

	// the history saved by the script is picked up by later commands
	out.Reset()
	require.NoError(t, runUndo(cmd, []string{path}))
	assert.Equal(t, "Reverted replacement.\n", out.String())
	assert.True(t, strings.HasPrefix(body(t, path), original+saved))
}

func TestScriptFailureLeavesPage(t *testing.T) {
	path, cmd, _ := setup(t)
	script := filepath.Join(filepath.Dir(path), "edits.yaml")
	require.NoError(t, os.WriteFile(script, []byte("steps:\n  - op: delete\n    locator: h1\n  - op: explode\n"), 0o644))

	err := runScript(cmd, []string{path, script})
	assert.ErrorContains(t, err, `step 2 (explode): unknown op "explode"`)
	assert.Equal(t, original, body(t, path))

	_, err = LoadScript(filepath.Join(filepath.Dir(path), "missing.yaml"))
	assert.ErrorContains(t, err, "read script")
}

func TestDeleteTableRowAndReopen(t *testing.T) {
	path, cmd, out := setup(t)
	const table = `<table><tbody><tr id="r"><td>x</td></tr><tr><td>y</td></tr></tbody></table>`
	writePage(t, path, table)

	require.NoError(t, runDelete(cmd, []string{path, "#r"}))
	assert.True(t, strings.HasPrefix(body(t, path),
		`<table><tbody><tr class="mixmaster-deleted"></tr><tr><td>y</td></tr></tbody></table>`+saved))

	out.Reset()
	require.NoError(t, runHistory(cmd, []string{path}))
	assert.Equal(t, "1\tdeletion\thtml > body:nth-child(2) > table:nth-child(1) > tbody:nth-child(1) > tr:nth-child(1)\t<tr id=\"r\"><td>x</td></tr>\n", out.String())

	out.Reset()
	require.NoError(t, runUndo(cmd, []string{path}))
	assert.Equal(t, "Reverted deletion.\n", out.String())
	assert.Equal(t, table+saved+"[]</div>", body(t, path))
}

func TestRefuseUnreloadableEdit(t *testing.T) {
	path, cmd, _ := setup(t)
	const para = `<p>a <span id="s">x</span> b</p>`
	writePage(t, path, para)

	err := runReplace(cmd, []string{path, "#s", `<div>y</div>`})
	var ambiguous *transform.AmbiguousLocatorError
	require.True(t, errors.As(err, &ambiguous), "%v", err)
	assert.ErrorContains(t, err, "refusing to write")
	assert.Equal(t, para, body(t, path))

	// the page is still usable
	require.NoError(t, runReplace(cmd, []string{path, "#s", `<em>y</em>`}))
	assert.True(t, strings.HasPrefix(body(t, path), `<p>a <em>y</em> b</p>`+saved))
}
