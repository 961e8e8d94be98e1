package mmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestTrie(t *testing.T, words ...string) *acTrie {
	t.Helper()
	trie := newACTrie()
	for i, w := range words {
		trie.insert(w, i+1)
	}
	trie.prepare()
	return trie
}

func TestAhoCorasickFindsAllOccurrences(t *testing.T) {
	trie := buildTestTrie(t, "he", "she", "his", "hers")
	src := []byte("ushers")
	matches := trie.search(src, 0, len(src))
	assert.NotEmpty(t, matches)

	var found []string
	for _, m := range matches {
		found = append(found, string(src[m.Start:m.Start+m.Len]))
	}
	assert.Contains(t, found, "she")
	assert.Contains(t, found, "he")
	assert.Contains(t, found, "hers")
}

func TestFilterLeftmostLongestDropsOverlaps(t *testing.T) {
	trie := buildTestTrie(t, "he", "she", "his", "hers")
	src := []byte("ushers")
	filtered := filterLeftmostLongest(trie.search(src, 0, len(src)))
	require.Len(t, filtered, 1)
	assert.Equal(t, "she", string(src[filtered[0].Start:filtered[0].Start+filtered[0].Len]))
}

func TestFilterLeftmostLongestKeepsDisjointMatches(t *testing.T) {
	trie := buildTestTrie(t, "ab", "cd")
	src := []byte("xxabxxcdxx")
	filtered := filterLeftmostLongest(trie.search(src, 0, len(src)))
	require.Len(t, filtered, 2)
	assert.Equal(t, "ab", string(src[filtered[0].Start:filtered[0].Start+filtered[0].Len]))
	assert.Equal(t, "cd", string(src[filtered[1].Start:filtered[1].Start+filtered[1].Len]))
}

func TestAhoCorasickNoMatch(t *testing.T) {
	trie := buildTestTrie(t, "zzz")
	src := []byte("nothing here")
	assert.Empty(t, trie.search(src, 0, len(src)))
}
