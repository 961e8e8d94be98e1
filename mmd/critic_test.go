package mmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func acceptText(t *testing.T, src string) string {
	t.Helper()
	buf := NewBuffer([]byte(src))
	Accept(buf)
	return buf.String()
}

func rejectText(t *testing.T, src string) string {
	t.Helper()
	buf := NewBuffer([]byte(src))
	Reject(buf)
	return buf.String()
}

func TestCriticAcceptAddition(t *testing.T) {
	assert.Equal(t, "keep this", acceptText(t, "keep {++this++}"))
}

func TestCriticRejectAddition(t *testing.T) {
	assert.Equal(t, "keep ", rejectText(t, "keep {++this++}"))
}

func TestCriticAcceptDeletion(t *testing.T) {
	assert.Equal(t, "keep ", acceptText(t, "keep {--this--}"))
}

func TestCriticRejectDeletion(t *testing.T) {
	assert.Equal(t, "keep this", rejectText(t, "keep {--this--}"))
}

func TestCriticHighlightSurvivesBothActions(t *testing.T) {
	assert.Equal(t, "keep this", acceptText(t, "keep {==this==}"))
	assert.Equal(t, "keep this", rejectText(t, "keep {==this==}"))
}

func TestCriticCommentDroppedByBothActions(t *testing.T) {
	assert.Equal(t, "keep ", acceptText(t, "keep {>>a comment<<}"))
	assert.Equal(t, "keep ", rejectText(t, "keep {>>a comment<<}"))
}

func TestCriticSubstitutionAcceptKeepsNew(t *testing.T) {
	assert.Equal(t, "the new word", acceptText(t, "the {~~old~>new~~} word"))
}

func TestCriticSubstitutionRejectKeepsOld(t *testing.T) {
	assert.Equal(t, "the old word", rejectText(t, "the {~~old~>new~~} word"))
}

func TestCriticEscapedMarkerIsLiteral(t *testing.T) {
	// an escaped opening brace must survive as plain text, not a marker.
	assert.Equal(t, "a \\{ plain brace", acceptText(t, "a \\{ plain brace"))
}

func TestCriticMalformedSubstitutionLeftLiteral(t *testing.T) {
	// a substitution missing its divider never closes, so its markers are
	// never erased by either action.
	src := "{~~no divider here~~}"
	assert.Equal(t, src, acceptText(t, src))
	assert.Equal(t, src, rejectText(t, src))
}

func TestCriticNestedAnnotations(t *testing.T) {
	// a comment nested inside an addition: accept keeps the addition's
	// text but still drops the nested comment entirely.
	assert.Equal(t, "keep outer ", acceptText(t, "keep {++outer {>>note<<}++}"))
}
