package mmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestMateSymmetry checks that pairing only ever produces symmetric mate
// links: whenever a opens b, b's mate is a, matching token_pairs.c's
// invariant that a mated pair is mated from both sides or neither.
func TestMateSymmetry(t *testing.T) {
	d := parseString(t, "*one* and **two** and _three_ and `code` done.\n")
	for i := 0; i < d.arena.Len(); i++ {
		idx := NodeIndex(i)
		m := d.arena.At(idx).Mate
		if m == NilIndex {
			continue
		}
		assert.Equal(t, idx, d.arena.At(m).Mate, "mate link for node %d is not symmetric", i)
	}
}

func TestUnmatchedDelimiterStaysLiteral(t *testing.T) {
	// a lone "*" with no closing partner should never become a pair.
	d := parseString(t, "just a * lone star\n")
	assert.Equal(t, NilIndex, findFirst(d, KindPairEmphasis))
}

func TestEmphasisRequiresMatchingRunLength(t *testing.T) {
	// "*a**b*" -- every star is its own single-char token, so the middle
	// "**" is one closer immediately followed by one opener rather than a
	// single two-char run. The stack matcher pairs *a* and *b* separately;
	// neither of the middle stars is adjacent to a same-side mate of its
	// own kind, so coalesceEmphasis leaves them as two plain
	// KindPairEmphasis spans rather than combining them into one strong
	// span.
	d := parseString(t, "*a**b*\n")
	em := findFirst(d, KindPairEmphasis)
	assert.NotEqual(t, NilIndex, em)
	assert.Equal(t, NilIndex, findFirst(d, KindPairStrong))
}

func TestLargeStackThresholdStaysBounded(t *testing.T) {
	// a pathological run of thousands of unmatched openers must not hang;
	// this is a smoke test for kLargeStackThreshold, not a timing assertion.
	src := ""
	for i := 0; i < kLargeStackThreshold*3; i++ {
		src += "*word "
	}
	d := parseString(t, src)
	assert.False(t, d.HasFatalError())
}

func TestPairingTableOrderBracketBeforeEmphasis(t *testing.T) {
	// bracketPairTable runs before emphasisPairTable, so a link span
	// prunes into one KindPairBracketLink container before the emphasis
	// table ever sees the text inside it.
	d := parseString(t, "[*link text*](http://example.com)\n")
	link := findFirst(d, KindPairBracketLink)
	assert.NotEqual(t, NilIndex, link)
}
