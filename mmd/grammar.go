package mmd

import "strings"

// reduceBlocks is the LALR-style block grammar: it walks the line
// children of linesRoot left to right, reducing each recognized run of
// lines to one block token appended under blockRoot. Recursion protects
// against pathological nesting the same way the teacher's parseMany/
// parseOne recursion does, except here the guard is a shared depth
// counter rather than call-stack recursion alone, since list items and
// blockquotes recurse back into reduceBlocks.
func reduceBlocks(d *Document, linesRoot, blockRoot NodeIndex, depth *int) {
	if *depth >= d.Engine.MaxParseDepth {
		// exceeding the recursion cap aborts this subtree silently and
		// surfaces no error, per 4.4.
		return
	}
	*depth++
	defer func() { *depth-- }()

	lines := d.arena.ChildSlice(linesRoot)
	i, n := 0, len(lines)
	for i < n {
		lt := lines[i]
		scan := d.lineScans[lt]

		switch {
		case scan.kind == KindLineEmpty:
			i++

		case scan.kind >= KindLineATX1 && scan.kind <= KindLineATX6:
			level := int(scan.kind-KindLineATX1) + 1
			d.arena.AppendChild(blockRoot, adoptSingle(d.arena, KindBlockHeading1+TokenKind(level-1), lt))
			i++

		case scan.kind == KindLineSetext1 || scan.kind == KindLineSetext2:
			level := 1
			if scan.kind == KindLineSetext2 {
				level = 2
			}
			// the marker line (the run of =/-) was pushed as the next
			// line with kind KindMarkerSetext during classification; it
			// contributes no content, just extends the block's span.
			end := lt
			if i+1 < n {
				end = lines[i+1]
			}
			blk := adoptSingle(d.arena, KindBlockHeading1+TokenKind(level-1), lt)
			d.arena.At(blk).Len = d.arena.At(end).End() - d.arena.At(blk).Start
			d.arena.AppendChild(blockRoot, blk)
			i += 2

		case scan.kind == KindLineHR:
			d.arena.AppendChild(blockRoot, adoptSingle(d.arena, KindBlockHR, lt))
			i++

		case scan.kind == KindLineTOC:
			d.arena.AppendChild(blockRoot, adoptSingle(d.arena, KindBlockTOC, lt))
			i++

		case scan.kind == KindLineYAML:
			j := i + 1
			for j < n && d.lineScans[lines[j]].kind != KindLineYAML {
				j++
			}
			if j < n {
				for _, body := range lines[i+1 : j] {
					d.recordYAMLLine(d.TokenText(body))
				}
				d.arena.AppendChild(blockRoot, concatLines(d.arena, KindBlockYAML, lines[i:j+1]))
				i = j + 1
			} else {
				// unterminated YAML fence: treat the rest as plain text.
				d.arena.AppendChild(blockRoot, concatLines(d.arena, KindBlockParagraph, lines[i:n]))
				i = n
			}

		case scan.kind == KindLineBlockquote:
			j := i
			for j < n && d.lineScans[lines[j]].kind == KindLineBlockquote {
				j++
			}
			d.arena.AppendChild(blockRoot, d.reduceBlockquote(lines[i:j], depth))
			i = j

		case scan.kind == KindLineDefLink:
			d.arena.AppendChild(blockRoot, adoptSingle(d.arena, KindBlockDefLink, lt))
			i++
		case scan.kind == KindLineDefFootnote:
			i = d.reduceDefinitionRun(blockRoot, lines, i, n, KindBlockDefFootnote, depth)
		case scan.kind == KindLineDefCitation:
			d.arena.AppendChild(blockRoot, adoptSingle(d.arena, KindBlockDefCitation, lt))
			i++
		case scan.kind == KindLineDefGlossary:
			d.arena.AppendChild(blockRoot, adoptSingle(d.arena, KindBlockDefGlossary, lt))
			i++
		case scan.kind == KindLineDefAbbreviation:
			d.arena.AppendChild(blockRoot, adoptSingle(d.arena, KindBlockDefAbbreviation, lt))
			i++

		case scan.kind == KindLineFenceStart3 || scan.kind == KindLineFenceStart4 || scan.kind == KindLineFenceStart5:
			j := i + 1
			openLevel := fenceStartLevel(scan.kind)
			for j < n && !isClosingFence(d.lineScans[lines[j]].kind, openLevel) {
				j++
			}
			end := j
			if end >= n {
				end = n - 1
			}
			d.arena.AppendChild(blockRoot, concatLines(d.arena, KindBlockFenced, lines[i:end+1]))
			i = end + 1

		case scan.kind == KindLineIndentedTab || scan.kind == KindLineIndentedSpace:
			j := i
			lastNonEmpty := i
			for j < n {
				k := d.lineScans[lines[j]].kind
				if k == KindLineIndentedTab || k == KindLineIndentedSpace {
					lastNonEmpty = j
					j++
					continue
				}
				if k == KindLineEmpty {
					j++
					continue
				}
				break
			}
			// trailing empties stripped, per 4.4.
			d.arena.AppendChild(blockRoot, concatLines(d.arena, KindBlockIndentedCode, lines[i:lastNonEmpty+1]))
			i = lastNonEmpty + 1

		case scan.kind == KindLineBulleted || scan.kind == KindLineEnumerated:
			j, list := d.reduceList(lines, i, n, depth)
			d.arena.AppendChild(blockRoot, list)
			i = j

		case scan.kind == KindLineMeta:
			j := i
			var key string
			var valueParts []string
			flush := func() {
				if key != "" {
					d.BufferSettings[key] = strings.Join(valueParts, " ")
				}
			}
			for j < n {
				k := d.lineScans[lines[j]].kind
				if k == KindLineMeta {
					flush()
					key = d.lineScans[lines[j]].label
					valueParts = []string{d.lineScans[lines[j]].content}
					j++
					continue
				}
				if k == KindLineContinuation {
					valueParts = append(valueParts, d.lineScans[lines[j]].content)
					j++
					continue
				}
				break
			}
			flush()
			d.arena.AppendChild(blockRoot, concatLines(d.arena, KindBlockMeta, lines[i:j]))
			i = j

		case scan.kind == KindLineDefinition:
			// a stray definition line with no preceding term: treat as a
			// one-line definition-list detail with an empty term.
			detail := adoptSingle(d.arena, KindBlockDefinitionDetail, lt)
			dl := d.arena.New(KindBlockDefinitionList, d.arena.At(lt).Start, d.arena.At(lt).Len)
			d.arena.AppendChild(dl, detail)
			d.arena.AppendChild(blockRoot, dl)
			i++

		case scan.kind == KindLineTable || scan.kind == KindLineTableSeparator:
			j := i
			for j < n {
				k := d.lineScans[lines[j]].kind
				if k != KindLineTable && k != KindLineTableSeparator {
					break
				}
				j++
			}
			d.arena.AppendChild(blockRoot, d.reduceTable(lines[i:j]))
			i = j

		case scan.kind == KindLineStartComment:
			j := i
			for j < n && d.lineScans[lines[j]].kind != KindLineStopComment {
				j++
			}
			if j < n {
				d.arena.AppendChild(blockRoot, concatLines(d.arena, KindBlockComment, lines[i:j+1]))
				i = j + 1
			} else {
				d.arena.AppendChild(blockRoot, concatLines(d.arena, KindBlockComment, lines[i:n]))
				i = n
			}

		case scan.kind == KindLineHTML:
			j := i + 1
			for j < n && d.lineScans[lines[j]].kind != KindLineEmpty {
				j++
			}
			d.arena.AppendChild(blockRoot, concatLines(d.arena, KindBlockHTML, lines[i:j]))
			i = j

		default:
			// PARA: consume a run of plain/fallback/definition-less lines
			// until a blank line or a line kind that starts a new block.
			j := i
			for j < n && isParagraphContinuation(d.lineScans[lines[j]].kind) {
				j++
			}
			if j == i {
				j = i + 1 // always make progress
			}
			// definition_block: a paragraph immediately followed by one
			// or more definition lines becomes a definition list instead.
			if j < n && d.lineScans[lines[j]].kind == KindLineDefinition {
				k := j
				for k < n && d.lineScans[lines[k]].kind == KindLineDefinition {
					k++
				}
				term := concatLines(d.arena, KindBlockDefinitionTerm, lines[i:j])
				dl := d.arena.New(KindBlockDefinitionList, d.arena.At(term).Start, 0)
				d.arena.AppendChild(dl, term)
				for _, detailLine := range lines[j:k] {
					d.arena.AppendChild(dl, adoptSingle(d.arena, KindBlockDefinitionDetail, detailLine))
				}
				d.arena.At(dl).Len = d.arena.At(lines[k-1]).End() - d.arena.At(dl).Start
				d.arena.AppendChild(blockRoot, dl)
				i = k
				continue
			}
			para := concatLines(d.arena, KindBlockParagraph, lines[i:j])
			if isHTMLFirstLine(d, lines[i]) {
				d.arena.At(para).Kind = KindBlockHTML
			}
			d.arena.AppendChild(blockRoot, para)
			i = j
		}
	}
}

// adoptSingle wraps a single line token's already-lexed children in a new
// block container spanning the same byte range. The original LINE-kind
// wrapper is discarded (nothing still points to it), so the pairing
// engine and resolver see only the block kind plus its lexical content,
// never an intervening non-block layer.
func adoptSingle(a *Arena, kind TokenKind, lineTok NodeIndex) NodeIndex {
	lt := a.At(lineTok)
	container := a.New(kind, lt.Start, lt.Len)
	a.At(container).Child = lt.Child
	return container
}

// concatLines builds one block container whose children are the
// concatenation of every given line's lexical children, back to back,
// with a synthetic newline token spliced between consecutive lines so
// verbatim line breaks survive (lex() itself never emits a token for the
// newline a line was split on, since it scans only [lineStart, lineEnd)).
func concatLines(a *Arena, kind TokenKind, lineToks []NodeIndex) NodeIndex {
	if len(lineToks) == 0 {
		return a.New(kind, 0, 0)
	}
	first := a.At(lineToks[0])
	last := a.At(lineToks[len(lineToks)-1])
	container := a.New(kind, first.Start, last.End()-first.Start)

	var headOfChain, prevTail NodeIndex = NilIndex, NilIndex
	appendChain := func(head, tail NodeIndex) {
		if headOfChain == NilIndex {
			headOfChain = head
			a.At(container).Child = head
		} else {
			a.At(prevTail).Next = head
			a.At(head).Prev = prevTail
		}
		prevTail = tail
	}

	for idx, lt := range lineToks {
		ltTok := a.At(lt)
		if ltTok.Child != NilIndex {
			head := ltTok.Child
			tail := a.At(head).Tail
			appendChain(head, tail)
		}
		if idx < len(lineToks)-1 {
			nl := a.New(KindNewline, ltTok.End(), 1)
			appendChain(nl, nl)
		}
	}
	if headOfChain != NilIndex {
		a.At(headOfChain).Tail = prevTail
	}
	return container
}

func fenceStartLevel(k TokenKind) int {
	switch k {
	case KindLineFenceStart3:
		return 3
	case KindLineFenceStart4:
		return 4
	default:
		return 5
	}
}

func isClosingFence(k TokenKind, openLevel int) bool {
	switch k {
	case KindLineFence3:
		return openLevel <= 3
	case KindLineFence4:
		return openLevel <= 4
	case KindLineFence5:
		return openLevel <= 5
	}
	return false
}

func isParagraphContinuation(k TokenKind) bool {
	switch k {
	case KindLineEmpty, KindLineATX1, KindLineATX2, KindLineATX3, KindLineATX4, KindLineATX5, KindLineATX6,
		KindLineSetext1, KindLineSetext2, KindLineHR, KindLineTOC, KindLineYAML, KindLineBlockquote,
		KindLineBulleted, KindLineEnumerated, KindLineDefLink, KindLineDefFootnote, KindLineDefCitation,
		KindLineDefGlossary, KindLineDefAbbreviation, KindLineDefinition, KindLineMeta,
		KindLineFenceStart3, KindLineFenceStart4, KindLineFenceStart5, KindLineIndentedTab, KindLineIndentedSpace,
		KindLineStartComment, KindLineHTML:
		return false
	}
	return true
}

func isHTMLFirstLine(d *Document, lineTok NodeIndex) bool {
	scan := d.lineScans[lineTok]
	return scan.kind == KindLineHTML
}

// reduceDefinitionRun handles def-footnote lines, which (unlike the other
// def-* kinds) commonly continue onto following indented lines the same
// way a list item's body does.
func (d *Document) reduceDefinitionRun(blockRoot NodeIndex, lines []NodeIndex, i, n int, kind TokenKind, depth *int) int {
	j := i + 1
	for j < n {
		k := d.lineScans[lines[j]].kind
		if k == KindLineIndentedTab || k == KindLineIndentedSpace {
			j++
			continue
		}
		break
	}
	d.arena.AppendChild(blockRoot, concatLines(d.arena, kind, lines[i:j]))
	return j
}

// reduceBlockquote strips the leading '>' from each contributing line
// (already done at scan time into scan.content) and re-parses the
// dedented text as an independent run of blocks, appending the stripped
// text to the end of the shared buffer so the recursive classify/reduce
// pass gets its own valid, contiguous byte range without disturbing any
// offset already recorded by a token elsewhere in the arena.
func (d *Document) reduceBlockquote(lines []NodeIndex, depth *int) NodeIndex {
	first, last := d.arena.At(lines[0]), d.arena.At(lines[len(lines)-1])
	container := d.arena.New(KindBlockQuote, first.Start, last.End()-first.Start)

	var body strings.Builder
	for idx, lt := range lines {
		body.WriteString(d.lineScans[lt].content)
		if idx < len(lines)-1 {
			body.WriteByte('\n')
		}
	}
	childRoot := d.appendAndReduce(body.String(), depth)
	d.arena.At(container).Child = d.arena.At(childRoot).Child
	return container
}

// appendAndReduce appends text to the end of the shared buffer, classifies
// and reduces it as a standalone run of lines, and returns a throwaway
// KindBlockDocument container holding the resulting blocks as children
// (the caller typically adopts .Child directly and discards the wrapper).
func (d *Document) appendAndReduce(text string, depth *int) NodeIndex {
	offset := d.buffer.Len()
	d.buffer.AppendString(text)
	subLines := d.arena.New(KindBlockDocument, offset, len(text))
	d.classifyLinesRange(offset, len(text), subLines, false)
	subRoot := d.arena.New(KindBlockDocument, offset, len(text))
	reduceBlocks(d, subLines, subRoot, depth)
	return subRoot
}
