package mmd

import "unicode"

// resolveDelimiters walks every block in the document (skipping
// preformatted ones) and assigns CanOpen/CanClose on each lexical child
// token, implementing the ambidextrous per-kind rules of 4.5. It runs
// once, before the pairing engine, since the pairing tables only consult
// these two booleans plus Kind — they never recompute them.
func resolveDelimiters(d *Document) {
	walkBlocks(d, d.Root, func(block NodeIndex) {
		resolveChildren(d, block)
	})
}

// walkBlocks calls f for every block-kind descendant of root (root
// itself included when it is a block), skipping into preformatted
// blocks' contents without recursing further (they have no delimiters to
// resolve).
func walkBlocks(d *Document, root NodeIndex, f func(NodeIndex)) {
	t := d.arena.At(root)
	if t.Kind.IsBlock() {
		f(root)
		if t.Kind.IsPreformatted() {
			return
		}
	}
	d.arena.Children(root, func(c NodeIndex) bool {
		ct := d.arena.At(c)
		if ct.Kind.IsBlock() {
			walkBlocks(d, c, f)
		}
		return true
	})
}

func resolveChildren(d *Document, block NodeIndex) {
	buf := d.buffer.Bytes()
	d.arena.Children(block, func(c NodeIndex) bool {
		tok := d.arena.At(c)
		switch tok.Kind {
		case KindStar, KindUnderscore:
			resolveStarUnderscore(buf, tok, tok.Kind == KindUnderscore)
		case KindBacktick:
			tok.CanOpen, tok.CanClose = true, true
		case KindQuoteSingle:
			resolveSingleQuote(buf, tok)
		case KindQuoteDouble:
			tok.CanOpen = precededByWhitespaceOrNone(buf, tok.Start)
			tok.CanClose = !tok.CanOpen
		case KindHyphen:
			if tok.Len == 1 && isDigit(prevRuneAt(buf, tok.Start)) && isDigit(runeAt(buf, tok.End())) {
				tok.CanOpen, tok.CanClose = false, false // en-dash: not a pairing delimiter
			}
		case KindMathOpenSnglD, KindMathOpenDblD:
			tok.CanOpen = followedByNonSpace(buf, tok.End())
			tok.CanClose = precededByNonSpace(buf, tok.Start)
		case KindCaret, KindTilde:
			tok.CanOpen = followedByNonSpace(buf, tok.End())
			tok.CanClose = precededByNonSpace(buf, tok.Start)
		case KindLBracket, KindFootnoteOpen, KindCiteOpen, KindGlossOpen, KindAbbrevOpen,
			KindLParen, KindLAngle, KindCommentOpen,
			KindCriticAddOpen, KindCriticDelOpen, KindCriticSubOpen, KindCriticHiOpen, KindCriticComOpen:
			tok.CanOpen, tok.CanClose = true, false
		case KindRBracket, KindRParen, KindRAngle, KindCommentClose,
			KindCriticAddClose, KindCriticDelClose, KindCriticHiClose, KindCriticComClose:
			tok.CanOpen, tok.CanClose = false, true
		case KindCriticSubDivider, KindCriticSubClose:
			tok.CanOpen, tok.CanClose = false, true
		case KindLBrace:
			tok.CanOpen, tok.CanClose = true, false
		case KindRBrace:
			tok.CanOpen, tok.CanClose = false, true
		}
		return true
	})
}

// resolveStarUnderscore implements the intraword flanking rule of 4.5 for
// a single '*'/'_' delimiter token: its ability to open is governed by
// whether non-whitespace follows it, its ability to close by whether
// non-whitespace precedes it, with the additional constraint that an
// intraword position (alphanumeric on both sides) blocks underscore
// from opening, matching CommonMark's left/right-flanking delimiter rule
// generalized to the MultiMarkdown pairing-engine setting. Operating on
// boundary runes only (never tok.Len) is what lets this run unchanged now
// that KindStar/KindUnderscore are lexed one character at a time rather
// than as whole runs (see lexer.go).
func resolveStarUnderscore(buf []byte, tok *Token, isUnderscore bool) {
	before := prevRuneAt(buf, tok.Start)
	after := runeAt(buf, tok.End())

	beforeWS := isWhitespaceOrNone(before)
	afterWS := isWhitespaceOrNone(after)
	beforeAlnum := isAlnum(before)
	afterAlnum := isAlnum(after)

	canOpen := !afterWS && !(isPunct(after) && !beforeWS && !isPunct(before))
	canClose := !beforeWS && !(isPunct(before) && !afterWS && !isPunct(after))

	if beforeAlnum && afterAlnum && isUnderscore {
		// intraword underscore never opens, so foo_bar_foo never
		// emphasizes; '*' has no such restriction.
		canOpen = false
	}

	tok.CanOpen = canOpen
	tok.CanClose = canClose
}

func isWhitespaceOrNone(r rune) bool {
	return r == utf8RuneError || unicode.IsSpace(r)
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isPunct(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}

func isDigit(r rune) bool { return unicode.IsDigit(r) }

const utf8RuneError = '�'

func precededByNonSpace(buf []byte, pos int) bool {
	r := prevRuneAt(buf, pos)
	return r != utf8RuneError && !unicode.IsSpace(r)
}

func followedByNonSpace(buf []byte, pos int) bool {
	r := runeAt(buf, pos)
	return r != utf8RuneError && !unicode.IsSpace(r)
}

func precededByWhitespaceOrNone(buf []byte, pos int) bool {
	r := prevRuneAt(buf, pos)
	return r == utf8RuneError || unicode.IsSpace(r) || isPunct(r)
}

// resolveSingleQuote implements "a lone ' between alphanumerics becomes
// an apostrophe (never paired); possessive x's is detected and demoted".
func resolveSingleQuote(buf []byte, tok *Token) {
	before := prevRuneAt(buf, tok.Start)
	after := runeAt(buf, tok.End())
	if isAlnum(before) && isAlnum(after) {
		tok.CanOpen, tok.CanClose = false, false
		return
	}
	if isAlnum(before) && (after == 's' || after == 'S') {
		tok.CanOpen, tok.CanClose = false, false
		return
	}
	tok.CanOpen = isWhitespaceOrNone(before) || isPunct(before)
	tok.CanClose = !tok.CanOpen
}
