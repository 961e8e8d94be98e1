package mmd

// acNoChild marks the absence of a transition out of a trie node, the Go
// analogue of a 0-valued size_t child slot meaning "no such state" in the
// original's trie_node.child[256] array — using -1 instead of 0 since 0 is
// a legitimate node index here (the root).
const acNoChild = -1

// acNode is one state of the trie: per-byte transitions, which pattern (if
// any) terminates here, that pattern's length, and the Aho-Corasick
// failure link used to fall back to the longest proper suffix that is
// also a trie prefix.
type acNode struct {
	child     [256]int32
	matchType int // 0 = non-terminal
	length    int
	fail      int32
}

func newACNode() acNode {
	n := acNode{fail: 0}
	for i := range n.child {
		n.child[i] = acNoChild
	}
	return n
}

// acTrie is an index-addressed Aho-Corasick automaton. Node 0 is always
// the root. A trie is built once per use (critic-markup accept/reject
// constructs one per invocation) and discarded; nothing about it is
// shared across parses.
type acTrie struct {
	nodes []acNode
}

func newACTrie() *acTrie {
	t := &acTrie{nodes: make([]acNode, 0, 32)}
	t.nodes = append(t.nodes, newACNode())
	return t
}

// insert adds key to the trie, creating new states as needed, and marks
// the terminal state with matchType (must be > 0; 0 means "no match").
func (t *acTrie) insert(key string, matchType int) {
	cur := int32(0)
	for i := 0; i < len(key); i++ {
		c := key[i]
		next := t.nodes[cur].child[c]
		if next == acNoChild {
			t.nodes = append(t.nodes, newACNode())
			next = int32(len(t.nodes) - 1)
			t.nodes[cur].child[c] = next
		}
		cur = next
	}
	t.nodes[cur].matchType = matchType
	t.nodes[cur].length = len(key)
}

// prepare computes every node's failure link by breadth-first traversal:
// a depth-1 node's failure link is always the root; every deeper node's
// is found by following its parent's failure link forward on the same
// byte until a valid transition exists (or the root is reached). This is
// the standard construction and produces exactly the table the original's
// DFS-with-path-buffer approach does, one node at a time rather than by
// literal suffix comparison.
func (t *acTrie) prepare() {
	queue := make([]int32, 0, len(t.nodes))
	root := &t.nodes[0]
	for c := 0; c < 256; c++ {
		child := root.child[c]
		if child == acNoChild {
			root.child[c] = 0
			continue
		}
		t.nodes[child].fail = 0
		queue = append(queue, child)
	}

	for qi := 0; qi < len(queue); qi++ {
		cur := queue[qi]
		for c := 0; c < 256; c++ {
			child := t.nodes[cur].child[c]
			if child == acNoChild {
				t.nodes[cur].child[c] = t.nodes[t.nodes[cur].fail].child[c]
				continue
			}
			t.nodes[child].fail = t.nodes[t.nodes[cur].fail].child[c]
			// a node whose failure link points back to itself (only
			// possible for the root's own self-loop) is reset to root.
			if t.nodes[child].fail == child {
				t.nodes[child].fail = 0
			}
			queue = append(queue, child)
		}
	}
}

// acMatch is one occurrence the search found.
type acMatch struct {
	Start     int
	Len       int
	MatchType int
}

// search scans source[start:start+length] and returns every match the
// trie recognizes, in ascending order of match end, without any overlap
// filtering — callers that need leftmost-longest semantics call
// filterLeftmostLongest on the result.
func (t *acTrie) search(source []byte, start, length int) []acMatch {
	var matches []acMatch
	cur := int32(0)
	end := start + length
	for i := start; i < end; i++ {
		cur = t.nodes[cur].child[source[i]]
		for s := cur; s != 0; s = t.nodes[s].fail {
			if t.nodes[s].matchType != 0 {
				l := t.nodes[s].length
				matches = append(matches, acMatch{Start: i - l + 1, Len: l, MatchType: t.nodes[s].matchType})
			}
		}
	}
	return matches
}

// filterLeftmostLongest enforces 4.9's leftmost-longest, non-overlapping
// rule: matches are sorted by start, then for each accepted match any
// later match that starts inside it is dropped, and any earlier
// unresolved match subsumed by a later, longer one starting at the same
// place is dropped in its favor.
func filterLeftmostLongest(matches []acMatch) []acMatch {
	if len(matches) == 0 {
		return nil
	}
	sorted := append([]acMatch(nil), matches...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && (sorted[j-1].Start > sorted[j].Start ||
			(sorted[j-1].Start == sorted[j].Start && sorted[j-1].Len < sorted[j].Len)); j-- {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
		}
	}

	var out []acMatch
	nextFree := -1
	for _, m := range sorted {
		if m.Start < nextFree {
			continue // starts inside the previous accepted match
		}
		out = append(out, m)
		nextFree = m.Start + m.Len
	}
	return out
}
