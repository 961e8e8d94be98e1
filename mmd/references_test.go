package mmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLabelFoldsAndStrips(t *testing.T) {
	assert.Equal(t, "myref", normalizeLabel("My Ref!"))
	assert.Equal(t, "a.b-c_d", normalizeLabel("A.B-C_D"))
	assert.Equal(t, normalizeLabel("foo bar"), normalizeLabel("FOO   BAR"))
}

func TestNormalizeMetaKeyCollapsesWhitespace(t *testing.T) {
	assert.Equal(t, "authorname", normalizeMetaKey("Author Name"))
	assert.Equal(t, "author", normalizeMetaKey(" author "))
}

func TestAssetPathDedupedByURL(t *testing.T) {
	rt := newReferenceTables()
	rt.collectAsset("http://example.com/a.png")
	first := rt.Assets["http://example.com/a.png"]
	require.NotEmpty(t, first)

	rt.collectAsset("http://example.com/a.png")
	assert.Equal(t, first, rt.Assets["http://example.com/a.png"], "the same URL must not mint a second UUID")

	rt.collectAsset("http://example.com/b.png")
	assert.NotEqual(t, first, rt.Assets["http://example.com/b.png"])
}

func TestAssetPathIgnoresLocalPaths(t *testing.T) {
	rt := newReferenceTables()
	rt.collectAsset("images/local.png")
	assert.Empty(t, rt.Assets["images/local.png"])
	_, ok := rt.Assets["images/local.png"]
	assert.False(t, ok)
}

func TestFootnoteUsageCounting(t *testing.T) {
	d := parseString(t, "a note[^fn] used twice[^fn].\n\n[^fn]: the footnote body\n")
	note, ok := d.References.Footnotes[normalizeLabel("fn")]
	require.True(t, ok)
	assert.Equal(t, 2, note.Used)
}

func TestFirstDefinitionWinsOnDuplicateLabel(t *testing.T) {
	d := parseString(t, "[^dup]: first body\n\n[^dup]: second body\n")
	note, ok := d.References.Footnotes[normalizeLabel("dup")]
	require.True(t, ok)
	assert.Contains(t, d.TokenText(note.Block), "first body")
}
