package mmd

// TokenKind is a single enumeration spanning the lexical, line, block, pair,
// and marker kind universes described in the data model. The ranges are
// value-disjoint so a switch over TokenKind never has to consult more than
// one table to know which universe a value belongs to.
type TokenKind int

const (
	KindNone TokenKind = iota

	// --- lexical tokens (produced by the DFA lexer) ---
	lexicalBegin
	KindText          // run of plain, non-special characters
	KindDigits        // run of digits, possibly an enumerator
	KindNewline       // "\n"
	KindLineBreak     // trailing 2+ spaces + newline
	KindSpaceRun      // run of non-indent spaces
	KindIndentSpace   // 4-space indent unit
	KindIndentTab     // run of tabs
	KindStar          // "*"
	KindUnderscore    // "_"
	KindBacktick      // run of backticks (runs of 3+ at line start/end are fence kinds)
	KindTilde         // run of "~"
	KindCaret         // "^"
	KindHash          // run of 1-6 "#"
	KindDollar        // "$" or "$$"
	KindBackslash     // "\"
	KindEquals        // run of "="
	KindHyphen        // run of "-"
	KindColon         // ":"
	KindPipe          // "|"
	KindLAngle        // "<"
	KindRAngle        // ">"
	KindLBracket      // "["
	KindRBracket      // "]"
	KindLParen        // "("
	KindRParen        // ")"
	KindLBrace        // "{"
	KindRBrace        // "}"
	KindBang          // "!"
	KindPlus          // "+"
	KindQuoteSingle   // "'"
	KindQuoteDouble   // `"`
	KindFootnoteOpen  // "[^"
	KindCiteOpen      // "[#"
	KindGlossOpen     // "[?"
	KindAbbrevOpen    // "[>"
	KindCommentOpen   // "<!--"
	KindCommentClose  // "-->"
	KindMathOpenSnglD // "$" (single, math context)
	KindMathOpenDblD  // "$$"
	KindFenceStart3   // opening fence, 3 backticks
	KindFenceStart4   // opening fence, 4 backticks
	KindFenceStart5   // opening fence, 5 backticks
	KindFence3        // closing/body fence, 3 backticks
	KindFence4        // closing/body fence, 4 backticks
	KindFence5        // closing/body fence, 5 backticks
	KindTOCMarker     // "{{TOC}}"
	KindCriticAddOpen    // "{++"
	KindCriticAddClose   // "++}"
	KindCriticDelOpen    // "{--"
	KindCriticDelClose   // "--}"
	KindCriticSubOpen    // "{~~"
	KindCriticSubDivider // "~>"
	KindCriticSubClose   // "~~}"
	KindCriticHiOpen     // "{=="
	KindCriticHiClose    // "==}"
	KindCriticComOpen    // "{>>"
	KindCriticComClose   // "<<}"
	KindAutolink         // bare "scheme://..." URL (AutoLink extension)
	lexicalEnd

	// --- line kinds (assigned by the classifier) ---
	lineBegin
	KindLineEmpty
	KindLinePlain
	KindLineATX1
	KindLineATX2
	KindLineATX3
	KindLineATX4
	KindLineATX5
	KindLineATX6
	KindLineSetext1
	KindLineSetext2
	KindLineHR
	KindLineTOC
	KindLineYAML
	KindLineBlockquote
	KindLineHTML
	KindLineBulleted
	KindLineEnumerated
	KindLineDefLink
	KindLineDefFootnote
	KindLineDefCitation
	KindLineDefGlossary
	KindLineDefAbbreviation
	KindLineDefinition
	KindLineMeta
	KindLineTable
	KindLineTableSeparator
	KindLineFenceStart3
	KindLineFenceStart4
	KindLineFenceStart5
	KindLineFence3
	KindLineFence4
	KindLineFence5
	KindLineStartComment
	KindLineStopComment
	KindLineIndentedTab
	KindLineIndentedSpace
	KindLineContinuation
	KindLineFallback
	lineEnd

	// --- block kinds (produced by the grammar) ---
	blockBegin
	KindBlockDocument
	KindBlockHeading1
	KindBlockHeading2
	KindBlockHeading3
	KindBlockHeading4
	KindBlockHeading5
	KindBlockHeading6
	KindBlockHR
	KindBlockTOC
	KindBlockYAML
	KindBlockQuote
	KindBlockDefLink
	KindBlockDefFootnote
	KindBlockDefCitation
	KindBlockDefGlossary
	KindBlockDefAbbreviation
	KindBlockDefinitionTerm
	KindBlockDefinitionDetail
	KindBlockDefinitionList
	KindBlockFenced
	KindBlockIndentedCode
	KindBlockListBulleted
	KindBlockListEnumerated
	KindBlockListItem
	KindBlockMeta
	KindBlockParagraph
	KindBlockTable
	KindBlockTableRow
	KindBlockTableSeparator
	KindBlockTableCell
	KindBlockHTML
	KindBlockComment
	blockEnd

	// --- pair kinds (produced by the pairing engine / coalescer) ---
	pairBegin
	KindPairCriticAdd
	KindPairCriticDel
	KindPairCriticSub
	KindPairCriticHi
	KindPairCriticCom
	KindPairComment
	KindPairBracketLink
	KindPairBracketImage
	KindPairBracketFootnote
	KindPairBracketCitation
	KindPairBracketGlossary
	KindPairBracketAbbrev
	KindPairParen
	KindPairAngle
	KindPairDoubleBrace
	KindPairMathInline
	KindPairMathDisplay
	KindPairEmphasis   // single "*"/"_"
	KindPairStrong     // coalesced double emphasis
	KindPairCode       // backtick span
	KindPairQuoteDouble
	KindPairQuoteSingle
	KindPairSuperscript
	KindPairSubscript
	KindPairRawFilter
	pairEnd

	// --- marker kinds (non-pairing structural markers rewritten in place) ---
	markerBegin
	KindMarkerListBullet
	KindMarkerListEnumerator
	KindMarkerSetext
	KindMarkerApostrophe
	KindMarkerEnDash
	markerEnd
)

func (k TokenKind) IsLexical() bool { return k > lexicalBegin && k < lexicalEnd }
func (k TokenKind) IsLine() bool    { return k > lineBegin && k < lineEnd }
func (k TokenKind) IsBlock() bool   { return k > blockBegin && k < blockEnd }
func (k TokenKind) IsPair() bool    { return k > pairBegin && k < pairEnd }
func (k TokenKind) IsMarker() bool  { return k > markerBegin && k < markerEnd }

// HeadingLevel returns 1-6 for a heading block kind, or 0 otherwise.
func (k TokenKind) HeadingLevel() int {
	if k >= KindBlockHeading1 && k <= KindBlockHeading6 {
		return int(k-KindBlockHeading1) + 1
	}
	return 0
}

// IsPreformatted reports whether a block kind holds verbatim text that the
// pairing engine must skip entirely (fenced code, indented code, raw HTML).
func (k TokenKind) IsPreformatted() bool {
	switch k {
	case KindBlockFenced, KindBlockIndentedCode, KindBlockHTML:
		return true
	}
	return false
}

// NodeIndex addresses a Token inside an Arena. The zero value addresses the
// first token allocated, so it is a valid index; use NilIndex for "no node".
type NodeIndex int32

// NilIndex represents the absence of a node, standing in for a nil pointer
// in a pointer-free, arena-plus-index tree.
const NilIndex NodeIndex = -1

// Token is a node in the parse tree. Fields mirror the data model: a node's
// byte range is always a subrange of its parent's, siblings form a doubly
// linked chain with an O(1)-append tail cached on the head node, and mate
// records the opener/closer partner assigned by the pairing engine.
type Token struct {
	Kind  TokenKind
	Start int
	Len   int

	Child NodeIndex // first child, or NilIndex
	Next  NodeIndex // next sibling, or NilIndex
	Prev  NodeIndex // previous sibling, or NilIndex
	Tail  NodeIndex // cached on the head-of-chain node: last sibling

	Mate NodeIndex // paired partner after the pairing engine runs, or NilIndex

	CanOpen   bool
	CanClose  bool
	Unmatched bool
}

// End returns the exclusive end byte offset of the token's range.
func (t Token) End() int { return t.Start + t.Len }

// Arena is a pool of Tokens addressed by NodeIndex. The arena is owned by an
// Engine's Document and reclaimed en masse on reset; individual node
// removal is a no-op by design (see Arena.Reset).
type Arena struct {
	nodes []Token
}

// NewArena returns an empty arena with room for a modest document.
func NewArena() *Arena {
	return &Arena{nodes: make([]Token, 0, 256)}
}

// New allocates a fresh, childless, unmated token and returns its index.
func (a *Arena) New(kind TokenKind, start, length int) NodeIndex {
	idx := NodeIndex(len(a.nodes))
	a.nodes = append(a.nodes, Token{
		Kind: kind, Start: start, Len: length,
		Child: NilIndex, Next: NilIndex, Prev: NilIndex, Tail: NilIndex,
		Mate: NilIndex, CanOpen: false, CanClose: false, Unmatched: true,
	})
	return idx
}

// At returns a pointer to the token at idx for in-place mutation. Callers
// must not retain the pointer across further arena allocations (append may
// reallocate the backing slice).
func (a *Arena) At(idx NodeIndex) *Token {
	if idx == NilIndex {
		return nil
	}
	return &a.nodes[idx]
}

// Len reports how many tokens the arena has allocated.
func (a *Arena) Len() int { return len(a.nodes) }

// Reset drops all tokens, retaining the underlying capacity for reuse.
func (a *Arena) Reset() { a.nodes = a.nodes[:0] }

// AppendChild appends child as the new last child of parent in O(1) using
// the cached tail pointer on the head of the child chain.
func (a *Arena) AppendChild(parent, child NodeIndex) {
	p := a.At(parent)
	if p.Child == NilIndex {
		p.Child = child
		a.At(child).Tail = child
		return
	}
	head := a.At(p.Child)
	tail := a.At(head.Tail)
	tail.Next = child
	a.At(child).Prev = head.Tail
	head.Tail = child
}

// Children calls f for every direct child of parent, in order, stopping
// early if f returns false.
func (a *Arena) Children(parent NodeIndex, f func(NodeIndex) bool) {
	for c := a.At(parent).Child; c != NilIndex; c = a.At(c).Next {
		if !f(c) {
			return
		}
	}
}

// ChildSlice materializes the child chain of parent as a slice of indices.
func (a *Arena) ChildSlice(parent NodeIndex) []NodeIndex {
	var out []NodeIndex
	a.Children(parent, func(idx NodeIndex) bool {
		out = append(out, idx)
		return true
	})
	return out
}

// ReplaceRange removes the sibling run [first, last] (inclusive, both must
// belong to the same chain) and replaces it with a single new container
// token of kind, whose children become the removed run. This implements
// "prune-match": grafting a pair and everything between it back into the
// chain as one node. Returns the index of the new container.
func (a *Arena) ReplaceRange(parent, first, last NodeIndex, containerKind TokenKind) NodeIndex {
	firstTok, lastTok := a.At(first), a.At(last)
	before, after := firstTok.Prev, lastTok.Next

	container := a.New(containerKind, firstTok.Start, lastTok.End()-firstTok.Start)
	c := a.At(container)
	c.Child = first
	a.At(first).Prev = NilIndex
	a.At(last).Next = NilIndex
	a.At(first).Tail = last

	c.Next = after
	c.Prev = before
	if before != NilIndex {
		a.At(before).Next = container
	} else {
		a.At(parent).Child = container
	}
	if after != NilIndex {
		a.At(after).Prev = container
	}
	// Fix up the head-of-chain tail cache on the parent's new child chain.
	if headIdx := a.At(parent).Child; headIdx != NilIndex {
		head := a.At(headIdx)
		tail := head.Tail
		if tail == NilIndex || tail == first || tail == last {
			// Walk to find the real tail; cheap relative to the scan the
			// pairing engine already does over this chain.
			cur := headIdx
			for a.At(cur).Next != NilIndex {
				cur = a.At(cur).Next
			}
			head.Tail = cur
		}
	}
	return container
}

// SetMate records a symmetric pairing between x and y: x.Mate == y and
// y.Mate == x.
func (a *Arena) SetMate(x, y NodeIndex) {
	a.At(x).Mate = y
	a.At(y).Mate = x
	a.At(x).Unmatched = false
	a.At(y).Unmatched = false
}
