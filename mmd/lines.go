package mmd

import "strings"

// classifyLines walks the whole buffer and appends one KindLine* token per
// physical line as a child of doc.linesRoot, per the top-level document
// metadata rules (4.3): metadata recognition starts enabled unless
// NoMetadata is set.
func (doc *Document) classifyLines() {
	doc.classifyLinesRange(0, doc.buffer.Len(), doc.linesRoot, doc.Engine.hasExtension(ExtNoMetadata) == false)
}

// classifyLinesRange is the range-scoped version classifyLines wraps, and
// is also the primitive blockquote/list-item reparsing uses to
// re-classify a stripped-and-appended sub-range of the same shared buffer
// (see appendAndReduce in grammar.go). Keying scans by line-token index
// rather than position lets recursive calls coexist with the top-level
// pass in the same doc.lineScans map.
func (doc *Document) classifyLinesRange(start, length int, linesRoot NodeIndex, allowMetaInit bool) {
	buf := doc.buffer.Bytes()
	n := start + length
	if n > len(buf) {
		n = len(buf)
	}
	allowMeta := allowMetaInit
	inYAML := false
	var pendingPlain NodeIndex = NilIndex // most recent KindLinePlain, for setext lookback

	lineStart := start
	for lineStart <= n {
		lineEnd := lineStart
		for lineEnd < n && buf[lineEnd] != '\n' {
			lineEnd++
		}
		hasNewline := lineEnd < n
		raw := string(buf[lineStart:lineEnd])

		indentLevel, rest, blank := measureIndent(raw)

		var scan lineScan
		switch {
		case blank:
			scan = lineScan{kind: KindLineEmpty}
			if indentLevel > 0 {
				// an indented-then-empty line disables metadata for the
				// rest of the document, per 4.3.
				allowMeta = false
			}
		case indentLevel >= 1:
			if strings.HasPrefix(raw, "\t") {
				scan = lineScan{kind: KindLineIndentedTab, content: rest, level: indentLevel}
			} else {
				scan = lineScan{kind: KindLineIndentedSpace, content: rest, level: indentLevel}
			}
		default:
			scan = scanLine(rest, doc.Engine.hasExtension(ExtNotes), allowMeta, inYAML)
			if scan.kind == KindLineYAML {
				inYAML = !inYAML
			}
			if allowMeta && !isMetaPreambleKind(scan.kind) {
				// first non-meta, non-yaml, non-continuation line ends the
				// metadata preamble for the rest of the document.
				allowMeta = false
			}
		}

		// setext lookback: a plain line followed immediately by a run of
		// '=' or '-' becomes a setext heading; the marker line itself is
		// retagged so the grammar can consume it as a single reduction.
		if pendingPlain != NilIndex {
			tok := doc.arena.At(pendingPlain)
			prevScan := doc.lineScans[pendingPlain]
			switch {
			case scan.kind == KindLinePlain && setextUnderlineEq.MatchString(rest):
				tok.Kind = KindLineSetext1
				prevScan.kind = KindLineSetext1
				scan = lineScan{kind: KindMarkerSetext, content: rest}
			case (scan.kind == KindLinePlain || scan.kind == KindLineHR) && setextUnderlineDash.MatchString(rest):
				tok.Kind = KindLineSetext2
				prevScan.kind = KindLineSetext2
				scan = lineScan{kind: KindMarkerSetext, content: rest}
			}
			// the grammar dispatches on lineScans, not on the token's Kind.
			doc.lineScans[pendingPlain] = prevScan
			pendingPlain = NilIndex
		}

		lineTok := doc.arena.New(scan.kind, lineStart, lineEnd-lineStart)
		t := doc.arena.At(lineTok)
		t.CanOpen, t.CanClose = false, false
		doc.lineScans[lineTok] = scan
		doc.arena.AppendChild(linesRoot, lineTok)

		lex(doc.arena, buf, lineStart, lineEnd-lineStart, lineTok)

		if scan.kind == KindLinePlain && hasNewline {
			pendingPlain = lineTok
		}

		if !hasNewline {
			break
		}
		lineStart = lineEnd + 1
		if lineStart >= n {
			break
		}
	}
}

func isMetaPreambleKind(k TokenKind) bool {
	return k == KindLineMeta || k == KindLineYAML || k == KindLineContinuation || k == KindLineEmpty
}

// measureIndent reports the indent level (groups of 4 columns; a tab counts
// as advancing to the next 4-column stop) and the remaining text after all
// leading whitespace is consumed.
func measureIndent(s string) (level int, rest string, blank bool) {
	cols := 0
	i := 0
	for i < len(s) {
		switch s[i] {
		case ' ':
			cols++
			i++
			continue
		case '\t':
			cols += 4 - (cols % 4)
			i++
			continue
		}
		break
	}
	rest = s[i:]
	return cols / 4, rest, rest == ""
}
