package mmd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseString(t *testing.T, src string) *Document {
	t.Helper()
	d := New().Silent().ParseBytes([]byte(src), "test.md")
	require.False(t, d.HasFatalError(), "unexpected fatal error: %v", d.FatalError)
	return d
}

// findFirst walks every container in the tree -- blocks and pair spans
// alike -- looking for the first node of kind. walkContainers (not
// walkBlocks, which only ever visits block-kind nodes) is what lets this
// find inline pair kinds like KindPairEmphasis/KindPairStrong, not just
// block structure.
func findFirst(d *Document, kind TokenKind) NodeIndex {
	var found NodeIndex = NilIndex
	walkContainers(d, d.Root, func(idx NodeIndex) {
		if found != NilIndex {
			return
		}
		if d.arena.At(idx).Kind == kind {
			found = idx
		}
	})
	return found
}

func TestParseHeadingLevels(t *testing.T) {
	d := parseString(t, "# One\n\n## Two\n\n###### Six\n")
	h1 := findFirst(d, KindBlockHeading1)
	h2 := findFirst(d, KindBlockHeading2)
	h6 := findFirst(d, KindBlockHeading6)
	assert.NotEqual(t, NilIndex, h1)
	assert.NotEqual(t, NilIndex, h2)
	assert.NotEqual(t, NilIndex, h6)
	assert.Equal(t, 1, d.arena.At(h1).Kind.HeadingLevel())
	assert.Equal(t, 6, d.arena.At(h6).Kind.HeadingLevel())
}

func TestParseParagraphAndEmphasis(t *testing.T) {
	d := parseString(t, "Some *em* and **strong** text.\n")
	p := findFirst(d, KindBlockParagraph)
	require.NotEqual(t, NilIndex, p)
	assert.NotEqual(t, NilIndex, findFirst(d, KindPairEmphasis))
}

func TestStrongFromAdjacentEmphasis(t *testing.T) {
	// "**bold**" lexes as four single-char star tokens; the outer two mate
	// with each other and the inner two mate with each other, and
	// coalesceEmphasis recognizes the inner pair touching the outer pair on
	// both sides and grafts all four into one KindPairStrong instead of a
	// lone KindPairEmphasis.
	d := parseString(t, "This is **bold**.\n")
	assert.NotEqual(t, NilIndex, findFirst(d, KindPairStrong))
}

func TestBlockquoteRecursiveReparse(t *testing.T) {
	// appendAndReduce re-lexes the de-prefixed quote body as its own
	// document fragment, so emphasis inside a blockquote still resolves.
	d := parseString(t, "> a *quoted* line\n> second line\n")
	bq := findFirst(d, KindBlockQuote)
	require.NotEqual(t, NilIndex, bq)
	assert.NotEqual(t, NilIndex, findFirst(d, KindPairEmphasis))
}

func TestListLooseTight(t *testing.T) {
	tight := parseString(t, "* one\n* two\n")
	loose := parseString(t, "* one\n\n* two\n")

	tl := findFirst(tight, KindBlockListBulleted)
	ll := findFirst(loose, KindBlockListBulleted)
	require.NotEqual(t, NilIndex, tl)
	require.NotEqual(t, NilIndex, ll)
	assert.False(t, tight.arena.At(tl).CanOpen, "tight list should not carry the loose bit")
	assert.True(t, loose.arena.At(ll).CanOpen, "blank line between items should mark the list loose")
}

func TestMetadataBlockGroupsWholeRun(t *testing.T) {
	d := parseString(t, "Title: My Doc\nAuthor: Someone\n\nBody text.\n")
	meta := findFirst(d, KindBlockMeta)
	require.NotEqual(t, NilIndex, meta)
	assert.Equal(t, "My Doc", d.BufferSettings[normalizeMetaKey("Title")])
	assert.Equal(t, "Someone", d.BufferSettings[normalizeMetaKey("Author")])

	// the whole preamble is one meta block, not one block per key
	var metaBlocks int
	walkBlocks(d, d.Root, func(idx NodeIndex) {
		if d.arena.At(idx).Kind == KindBlockMeta {
			metaBlocks++
		}
	})
	assert.Equal(t, 1, metaBlocks)
}

func TestReferenceTableLinkAndUsage(t *testing.T) {
	d := parseString(t, "See [a link][ref].\n\n[ref]: http://example.com/ \"Title\"\n")
	require.NotNil(t, d.References)
	link, ok := d.References.Links[normalizeLabel("ref")]
	require.True(t, ok, "expected the def-link to be collected")
	assert.Equal(t, "http://example.com/", link.URL)
}

func TestParseIsResilientToPanics(t *testing.T) {
	// even a pathological or malformed input should degrade to recorded
	// errors rather than propagate a panic out of ParseBytes.
	d := New().Silent().ParseBytes([]byte(strings.Repeat("*", 5000)), "path.md")
	assert.False(t, d.HasFatalError())
}
