package mmd

import "sort"

// CriticAction selects which side of a critic-markup annotation the
// accept/reject pass keeps.
type CriticAction int

const (
	// CriticAccept keeps additions/highlights and the "new" half of a
	// substitution, dropping deletions, comments, and all markers.
	CriticAccept CriticAction = iota
	// CriticReject keeps deletions and the "old" half of a substitution,
	// dropping additions, comments, and all markers.
	CriticReject
)

// criticLiterals lists the entries of the trie 4.9 builds: a literal byte
// pattern and the lexical kind it should tokenize as. The seven escaped
// forms share KindText as their match type, mirroring the original's
// CM_PLAIN_TEXT: matching them keeps the pairing pass from ever treating
// an escaped brace/tilde/etc. as a structural marker, without running a
// separate substitution pass that would shift offsets.
var criticLiterals = []struct {
	lit  string
	kind TokenKind
}{
	{"{++", KindCriticAddOpen},
	{"++}", KindCriticAddClose},
	{"{--", KindCriticDelOpen},
	{"--}", KindCriticDelClose},
	{"{~~", KindCriticSubOpen},
	{"~>", KindCriticSubDivider},
	{"~~}", KindCriticSubClose},
	{"{==", KindCriticHiOpen},
	{"==}", KindCriticHiClose},
	{"{>>", KindCriticComOpen},
	{"<<}", KindCriticComClose},
	{`\{`, KindText},
	{`\}`, KindText},
	{`\+`, KindText},
	{`\-`, KindText},
	{`\~`, KindText},
	{`\>`, KindText},
	{`\=`, KindText},
}

func buildCriticTrie() (*acTrie, []TokenKind) {
	t := newACTrie()
	kinds := make([]TokenKind, len(criticLiterals)+1) // matchType is 1-indexed
	for i, lit := range criticLiterals {
		t.insert(lit.lit, i+1)
		kinds[i+1] = lit.kind
	}
	t.prepare()
	return t, kinds
}

// criticSimplePairTable pairs the four two-sided annotation kinds whose
// pairing is a plain open/close match; substitution spans (three-part,
// with a dividing "~>") are handled separately by matchSubPairs since a
// single open/close table entry cannot express a three-token span.
var criticSimplePairTable = []pairRule{
	{KindCriticAddOpen, KindCriticAddClose, KindPairCriticAdd, pairAllowEmpty | pairPruneMatch},
	{KindCriticDelOpen, KindCriticDelClose, KindPairCriticDel, pairAllowEmpty | pairPruneMatch},
	{KindCriticHiOpen, KindCriticHiClose, KindPairCriticHi, pairAllowEmpty | pairPruneMatch},
	{KindCriticComOpen, KindCriticComClose, KindPairCriticCom, pairAllowEmpty | pairPruneMatch},
}

// tokenizeCritic builds a standalone arena over source[start:start+length]
// whose children are one token per Aho-Corasick match plus one KindText
// token per unmatched gap, exactly covering the scanned range the same
// way the main lexer's flushText discipline does.
func tokenizeCritic(source []byte, start, length int) (*Arena, NodeIndex) {
	trie, kinds := buildCriticTrie()
	matches := filterLeftmostLongest(trie.search(source, start, length))

	a := NewArena()
	root := a.New(KindBlockDocument, start, length)

	last := start
	for _, m := range matches {
		if m.Start > last {
			a.AppendChild(root, a.New(KindText, last, m.Start-last))
		}
		tok := a.New(kinds[m.MatchType], m.Start, m.Len)
		setCriticOpenClose(a.At(tok))
		a.AppendChild(root, tok)
		last = m.Start + m.Len
	}
	if end := start + length; last < end {
		a.AppendChild(root, a.New(KindText, last, end-last))
	}
	return a, root
}

func setCriticOpenClose(t *Token) {
	switch t.Kind {
	case KindCriticAddOpen, KindCriticDelOpen, KindCriticSubOpen, KindCriticHiOpen, KindCriticComOpen:
		t.CanOpen = true
	case KindCriticAddClose, KindCriticDelClose, KindCriticHiClose, KindCriticComClose:
		t.CanClose = true
	case KindCriticSubDivider:
		t.CanOpen, t.CanClose = true, true
	case KindCriticSubClose:
		t.CanClose = true
	}
}

// matchSubPairs prunes every well-formed {~~ old ~> new ~~} triple found
// among container's children into one KindPairCriticSub wrapper, scanning
// forward with a small stack of pending opens and, for each open, the
// nearest divider seen after it; a close with no divider since its
// matching open is left unmatched (malformed substitution markup is left
// as literal text, matching the pairing engine's general unmatched-stays-
// literal contract).
func matchSubPairs(a *Arena, container NodeIndex) {
	type pending struct {
		open    NodeIndex
		divider NodeIndex
	}
	var stack []pending

	for _, idx := range a.ChildSlice(container) {
		switch a.At(idx).Kind {
		case KindCriticSubOpen:
			stack = append(stack, pending{open: idx, divider: NilIndex})
		case KindCriticSubDivider:
			if len(stack) > 0 {
				stack[len(stack)-1].divider = idx
			}
		case KindCriticSubClose:
			for s := len(stack) - 1; s >= 0; s-- {
				if stack[s].divider == NilIndex {
					continue
				}
				a.SetMate(stack[s].open, idx)
				a.ReplaceRange(container, stack[s].open, idx, KindPairCriticSub)
				stack = stack[:s]
				break
			}
		}
	}
}

// AcceptReject runs 4.9 end to end over buf[start:start+length]: tokenize
// with the critic trie, pair the result, then erase the losing side of
// every annotation by walking the token tree backward (so earlier byte
// offsets stay valid as later ones are erased) and applying action.
func AcceptReject(buf *Buffer, start, length int, action CriticAction) {
	source := buf.Bytes()
	a, root := tokenizeCritic(source, start, length)
	applyPairTableArena(a, root, criticSimplePairTable)
	matchSubPairs(a, root)

	var erasures [][2]int
	erase := func(s, l int) { erasures = append(erasures, [2]int{s, l}) }

	walkCriticChildrenBackward(a, root, action, erase)

	// Erasures must apply in descending start order so an earlier erase
	// never shifts the offset of one still waiting to run; the tree walk
	// above visits children in roughly that order already (backward
	// top-level, recursing immediately into each node before moving to
	// its predecessor) but nested recursion can still interleave, so sort
	// explicitly rather than rely on visit order.
	sort.Slice(erasures, func(i, j int) bool { return erasures[i][0] > erasures[j][0] })
	for _, e := range erasures {
		buf.Erase(e[0], e[1])
	}
}

// AcceptRange and RejectRange are the convenience entry points matching
// the original's mmd_critic_markup_accept_range/reject_range.
func AcceptRange(buf *Buffer, start, length int) { AcceptReject(buf, start, length, CriticAccept) }
func RejectRange(buf *Buffer, start, length int) { AcceptReject(buf, start, length, CriticReject) }

// Accept and Reject apply over the whole buffer.
func Accept(buf *Buffer) { AcceptRange(buf, 0, buf.Len()) }
func Reject(buf *Buffer) { RejectRange(buf, 0, buf.Len()) }

// AcceptCriticMarkup and RejectCriticMarkup run 4.9's accept/reject pass
// over the document's own source buffer, in place. Callers that want this
// must run it before Parse, since it rewrites the buffer a parse's token
// offsets already point into; calling it on an already-parsed Document
// would leave the arena referencing stale offsets.
func (d *Document) AcceptCriticMarkup() { Accept(d.buffer) }
func (d *Document) RejectCriticMarkup() { Reject(d.buffer) }

func walkCriticChildrenBackward(a *Arena, container NodeIndex, action CriticAction, erase func(int, int)) {
	children := a.ChildSlice(container)
	for i := len(children) - 1; i >= 0; i-- {
		applyCriticNode(a, children[i], action, erase)
	}
}

func applyCriticNode(a *Arena, idx NodeIndex, action CriticAction, erase func(int, int)) {
	t := a.At(idx)
	switch t.Kind {
	case KindPairCriticDel:
		if action == CriticAccept {
			erase(t.Start, t.Len)
		} else {
			stripMarkers(a, idx, action, erase)
		}
	case KindPairCriticAdd:
		if action == CriticAccept {
			stripMarkers(a, idx, action, erase)
		} else {
			erase(t.Start, t.Len)
		}
	case KindPairCriticHi:
		stripMarkers(a, idx, action, erase)
	case KindPairCriticCom:
		erase(t.Start, t.Len)
	case KindPairCriticSub:
		applySub(a, idx, action, erase)
	default:
		if t.Child != NilIndex {
			walkCriticChildrenBackward(a, idx, action, erase)
		}
	}
}

// stripMarkers erases a pair's opening and closing marker tokens (its
// first and last child) while recursing into whatever sits between them,
// so nested annotations (a comment inside an addition, say) still get
// resolved.
func stripMarkers(a *Arena, pair NodeIndex, action CriticAction, erase func(int, int)) {
	t := a.At(pair)
	if t.Child == NilIndex {
		return
	}
	open := a.At(t.Child)
	erase(open.Start, open.Len)

	for c := a.At(t.Child).Next; c != NilIndex; {
		ct := a.At(c)
		if ct.Next == NilIndex {
			erase(ct.Start, ct.Len) // closing marker
			break
		}
		applyCriticNode(a, c, action, erase)
		c = ct.Next
	}
}

// applySub handles a {~~ old ~> new ~~} span: accept keeps "new" (after
// the divider) and drops "old" plus every marker; reject keeps "old"
// (before the divider) and drops "new" plus every marker.
func applySub(a *Arena, pair NodeIndex, action CriticAction, erase func(int, int)) {
	t := a.At(pair)
	if t.Child == NilIndex {
		return
	}
	open := a.At(t.Child)
	erase(open.Start, open.Len)

	keepAfterDivider := action == CriticAccept
	seenDivider := false
	for c := a.At(t.Child).Next; c != NilIndex; {
		ct := a.At(c)
		isLast := ct.Next == NilIndex
		switch {
		case ct.Kind == KindCriticSubDivider:
			erase(ct.Start, ct.Len)
			seenDivider = true
		case isLast:
			erase(ct.Start, ct.Len) // closing marker
		case seenDivider != keepAfterDivider:
			erase(ct.Start, ct.Len)
		default:
			applyCriticNode(a, c, action, erase)
		}
		c = ct.Next
	}
}
