package mmd

// pairFlags are the three per-pair-kind behaviors the pairing engine
// consults once a candidate opener/closer match is found, grounded on
// token_pairs.h's PAIRING_ALLOW_EMPTY / PAIRING_MATCH_LENGTH /
// PAIRING_PRUNE_MATCH flags.
type pairFlags uint8

const (
	pairAllowEmpty pairFlags = 1 << iota
	pairMatchLength
	pairPruneMatch
)

// pairRule maps one (open kind, close kind) combination to the pair kind
// it produces, plus that combination's flags.
type pairRule struct {
	open, close TokenKind
	result      TokenKind
	flags       pairFlags
}

// pairingTables holds the four ordered tables 4.6 describes. They run in
// order because later tables must not see delimiters already consumed by
// an earlier one (e.g. emphasis must not reach inside an unresolved
// bracket span).
type pairingTables struct {
	tables [][]pairRule
}

// kLargeStackThreshold bounds how far back a closer searches for its
// opener, avoiding quadratic blowup on pathological inputs with very
// deep nesting of the same delimiter kind.
const kLargeStackThreshold = 1000

func defaultPairingTables() *pairingTables {
	return &pairingTables{tables: [][]pairRule{
		criticPairTable,
		commentPairTable,
		bracketPairTable,
		emphasisPairTable,
	}}
}

var criticPairTable = []pairRule{
	{KindCriticAddOpen, KindCriticAddClose, KindPairCriticAdd, pairAllowEmpty | pairPruneMatch},
	{KindCriticDelOpen, KindCriticDelClose, KindPairCriticDel, pairAllowEmpty | pairPruneMatch},
	{KindCriticHiOpen, KindCriticHiClose, KindPairCriticHi, pairAllowEmpty | pairPruneMatch},
	{KindCriticComOpen, KindCriticComClose, KindPairCriticCom, pairAllowEmpty | pairPruneMatch},
	{KindCriticSubOpen, KindCriticSubDivider, KindPairCriticSub, pairAllowEmpty | pairPruneMatch},
	{KindCriticSubDivider, KindCriticSubClose, KindPairCriticSub, pairAllowEmpty | pairPruneMatch},
	{KindCriticSubOpen, KindCriticSubClose, KindPairCriticSub, pairAllowEmpty | pairPruneMatch},
}

var commentPairTable = []pairRule{
	{KindCommentOpen, KindCommentClose, KindPairComment, pairAllowEmpty | pairPruneMatch},
}

var bracketPairTable = []pairRule{
	{KindLBracket, KindRBracket, KindPairBracketLink, pairAllowEmpty | pairPruneMatch},
	{KindFootnoteOpen, KindRBracket, KindPairBracketFootnote, pairAllowEmpty | pairPruneMatch},
	{KindCiteOpen, KindRBracket, KindPairBracketCitation, pairAllowEmpty | pairPruneMatch},
	{KindGlossOpen, KindRBracket, KindPairBracketGlossary, pairAllowEmpty | pairPruneMatch},
	{KindAbbrevOpen, KindRBracket, KindPairBracketAbbrev, pairAllowEmpty | pairPruneMatch},
	{KindLParen, KindRParen, KindPairParen, pairAllowEmpty | pairPruneMatch},
	{KindLAngle, KindRAngle, KindPairAngle, pairPruneMatch},
	{KindLBrace, KindRBrace, KindPairDoubleBrace, pairAllowEmpty | pairPruneMatch},
	{KindMathOpenSnglD, KindMathOpenSnglD, KindPairMathInline, pairMatchLength | pairPruneMatch},
	{KindMathOpenDblD, KindMathOpenDblD, KindPairMathDisplay, pairMatchLength | pairPruneMatch},
}

// KindStar/KindUnderscore deliberately omit pairPruneMatch: each '*'/'_' is
// its own token (see classify in lexer.go), so pruning the instant a pair
// mates would immediately nest two touching single-char pairs instead of
// leaving them flat siblings. coalesceEmphasis (emphasis.go) needs them flat
// to tell a strong span (two adjacent mated pairs) from a lone emphasis span,
// and is the pass that grafts KindPairEmphasis/KindPairStrong containers for
// these two kinds.
var emphasisPairTable = []pairRule{
	{KindStar, KindStar, KindPairEmphasis, pairMatchLength},
	{KindUnderscore, KindUnderscore, KindPairEmphasis, pairMatchLength},
	{KindBacktick, KindBacktick, KindPairCode, pairAllowEmpty | pairMatchLength | pairPruneMatch},
	{KindQuoteDouble, KindQuoteDouble, KindPairQuoteDouble, pairAllowEmpty | pairPruneMatch},
	{KindQuoteSingle, KindQuoteSingle, KindPairQuoteSingle, pairAllowEmpty | pairPruneMatch},
	{KindCaret, KindCaret, KindPairSuperscript, pairAllowEmpty | pairPruneMatch},
	{KindTilde, KindTilde, KindPairSubscript, pairAllowEmpty | pairPruneMatch},
}

func lookupPair(table []pairRule, openKind, closeKind TokenKind) (pairRule, bool) {
	for _, r := range table {
		if r.open == openKind && r.close == closeKind {
			return r, true
		}
	}
	return pairRule{}, false
}

// runPairingTables applies each of the four tables in order across the
// whole document, recursing into every container (block or pair) that
// is not preformatted, so later tables see containers the earlier
// tables produced.
func runPairingTables(d *Document, tables *pairingTables) {
	for _, table := range tables.tables {
		walkContainers(d, d.Root, func(container NodeIndex) {
			applyPairTable(d, container, table)
		})
	}
}

// walkContainers calls f once for every descendant of root (root
// included) that has at least one child, skipping recursion into
// preformatted blocks entirely (they hold no delimiters to pair).
func walkContainers(d *Document, root NodeIndex, f func(NodeIndex)) {
	t := d.arena.At(root)
	if t.Kind.IsBlock() && t.Kind.IsPreformatted() {
		return
	}
	if t.Child != NilIndex {
		f(root)
	}
	d.arena.Children(root, func(c NodeIndex) bool {
		ct := d.arena.At(c)
		if ct.Child != NilIndex || ct.Kind.IsBlock() {
			walkContainers(d, c, f)
		}
		return true
	})
}

// applyPairTable runs one single-stack left-to-right pass over
// container's children using table, mating and (where the rule calls
// for it) pruning matches into new containers grafted in container's
// place.
func applyPairTable(d *Document, container NodeIndex, table []pairRule) {
	applyPairTableArena(d.arena, container, table)
}

// applyPairTableArena is applyPairTable's arena-only core, factored out so
// the critic-markup sub-parser (which builds its own throwaway Arena with
// no owning Document) can reuse the exact same matching logic as the main
// pipeline's bracket/emphasis/critic tables.
func applyPairTableArena(a *Arena, container NodeIndex, table []pairRule) {
	children := a.ChildSlice(container)
	var stack []NodeIndex

	for _, idx := range children {
		tok := a.At(idx)
		if tok.Mate != NilIndex {
			continue
		}
		matched := false
		if tok.CanClose {
			lo := 0
			if len(stack) > kLargeStackThreshold {
				lo = len(stack) - kLargeStackThreshold
			}
			for s := len(stack) - 1; s >= lo; s-- {
				openIdx := stack[s]
				openTok := a.At(openIdx)
				rule, ok := lookupPair(table, openTok.Kind, tok.Kind)
				if !ok {
					continue
				}
				if rule.flags&pairAllowEmpty == 0 && openTok.Next == idx {
					continue
				}
				if rule.flags&pairMatchLength != 0 && openTok.Len != tok.Len {
					continue
				}
				a.SetMate(openIdx, idx)
				stack = stack[:s]
				if rule.flags&pairPruneMatch != 0 {
					a.ReplaceRange(container, openIdx, idx, rule.result)
				}
				matched = true
				break
			}
		}
		if !matched && tok.CanOpen {
			stack = append(stack, idx)
		}
	}
}
