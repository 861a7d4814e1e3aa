package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathTo(t *testing.T) {
	d := doc(
		`<p>one</p>`,
		`text`,
		`<div><span>a</span><!-- note --><span id="target">b</span></div>`,
		`<svg><foreignObject id="fo"></foreignObject></svg>`,
	)

	path := func(sel, expected string) {
		n := node(d, sel)
		locator, err := d.PathTo(n)
		require.NoError(t, err)
		assert.Equal(t, expected, locator)

		matches, err := d.Find(locator)
		require.NoError(t, err)
		if assert.Len(t, matches, 1, locator) {
			assert.Same(t, n, matches[0])
		}
	}

	path("html", "html")
	path("body", "html > body:nth-child(2)")
	path("p", "html > body:nth-child(2) > p:nth-child(1)")
	// text and comment siblings do not count
	path("#target", "html > body:nth-child(2) > div:nth-child(2) > span:nth-child(2)")
	// foreign elements are matched by position only
	path("#fo", "html > body:nth-child(2) > svg:nth-child(3) > *:nth-child(1)")
}

func TestPathToErrors(t *testing.T) {
	d := doc(`<p>one</p>`)

	_, err := d.PathTo(fragment(`<p>detached</p>`))
	assert.Error(t, err)

	_, err = d.PathTo(node(d, "p").FirstChild)
	assert.EqualError(t, err, "locator needs an element node")

	_, err = d.PathTo(nil)
	assert.Error(t, err)
}

func TestFind(t *testing.T) {
	d := doc(`<ul><li>a</li><li>b</li></ul><p>x</p>`)

	matches, err := d.Find("li")
	require.NoError(t, err)
	assert.Len(t, matches, 2)

	matches, err = d.Find("table")
	require.NoError(t, err)
	assert.Empty(t, matches)

	_, err = d.Find("li[")
	assert.Error(t, err)

	assert.Nil(t, d.FindOne("li"))
	assert.NotNil(t, d.FindOne("p"))
}
