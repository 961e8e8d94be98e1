package mmd

// coalesceEmphasis is the pass the star/underscore rows of emphasisPairTable
// (pairing.go) defer to: applyPairTableArena mates KindStar/KindUnderscore
// tokens by setting .Mate without grafting them into a container, because
// whether a mated pair stands alone or combines with a touching neighbor
// into a strong span can't be decided until the whole delimiter run has
// been mated. This mirrors pair_emphasis_tokens in the original C source,
// which walks the flat, already-mated token chain and checks whether an
// opener's very next sibling is itself a mated opener of the same kind
// whose own mate immediately precedes this opener's mate -- a touching
// adjacent opener pair whose closers also touch -- grafting both pairs into
// one strong span instead of two separate emphasis spans when that holds.
func coalesceEmphasis(d *Document) {
	walkContainers(d, d.Root, func(container NodeIndex) {
		coalesceChildren(d, container)
	})
}

// coalesceChildren makes one left-to-right pass over container's direct
// children, grafting every still-flat matched KindStar/KindUnderscore
// opener (and its mate) into a KindPairEmphasis or KindPairStrong
// container. It walks live sibling pointers rather than a pre-fetched
// slice because each graft rewrites the chain it is scanning.
func coalesceChildren(d *Document, container NodeIndex) {
	a := d.arena
	c := a.At(container).Child
	if k := a.At(container).Kind; (k == KindPairEmphasis || k == KindPairStrong) && c != NilIndex {
		// an already-grafted span: its first child is the opener that
		// produced it, still mated to its closer, so start past it.
		c = a.At(c).Next
	}
	for c != NilIndex {
		tok := a.At(c)
		if !isEmphasisDelimiter(tok.Kind) || tok.Mate == NilIndex || !tok.CanOpen {
			c = tok.Next
			continue
		}
		mateIdx := tok.Mate
		if a.At(mateIdx).Start < tok.Start {
			// the closing side of a pair whose opener already consumed it.
			c = tok.Next
			continue
		}

		kind := KindPairEmphasis
		if innerOpen, innerClose, ok := strongInnerPair(a, c, mateIdx); ok {
			kind = KindPairStrong
			// The inner pair is absorbed whole into the strong span. Clear
			// its mate so the recursive walk into the new container (see
			// walkContainers in pairing.go) doesn't re-pair it into a
			// redundant nested emphasis around the same content.
			a.At(innerOpen).Mate = NilIndex
			a.At(innerClose).Mate = NilIndex
		}
		newContainer := a.ReplaceRange(container, c, mateIdx, kind)
		c = a.At(newContainer).Next
	}
}

// strongInnerPair reports whether openIdx (mated to closeIdx) is the outer
// half of a strong span: its very next sibling must be a second mated
// opener of the same delimiter kind, touching with no gap, whose own mate
// in turn touches closeIdx with no gap on the other side. This restates the
// original's t->next->mate == closer->prev condition in terms of byte
// adjacency rather than sibling-pointer identity, which is equivalent here
// since mated tokens in a flat, unpruned chain are still in source order.
func strongInnerPair(a *Arena, openIdx, closeIdx NodeIndex) (NodeIndex, NodeIndex, bool) {
	open, close := a.At(openIdx), a.At(closeIdx)
	next := open.Next
	if next == NilIndex || next == closeIdx {
		return NilIndex, NilIndex, false
	}
	nt := a.At(next)
	if nt.Kind != open.Kind || !nt.CanOpen || nt.Mate == NilIndex || nt.Mate == closeIdx {
		return NilIndex, NilIndex, false
	}
	if open.End() != nt.Start {
		return NilIndex, NilIndex, false
	}
	innerClose := a.At(nt.Mate)
	if innerClose.End() != close.Start {
		return NilIndex, NilIndex, false
	}
	return next, nt.Mate, true
}

func isEmphasisDelimiter(k TokenKind) bool {
	return k == KindStar || k == KindUnderscore
}
