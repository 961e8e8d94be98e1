package mmd

// reduceTable builds a KindBlockTable from a run of table/table-separator
// lines. Per 4.4, cells are split from each row's own already-lexed
// children on unescaped KindPipe tokens after the row block is assembled,
// rather than by re-lexing cell text, so cell content keeps the original
// byte offsets the pairing engine and resolver expect.
func (d *Document) reduceTable(lines []NodeIndex) NodeIndex {
	first := d.arena.At(lines[0])
	last := d.arena.At(lines[len(lines)-1])
	table := d.arena.New(KindBlockTable, first.Start, last.End()-first.Start)

	for _, lt := range lines {
		scan := d.lineScans[lt]
		kind := KindBlockTableRow
		if scan.kind == KindLineTableSeparator {
			kind = KindBlockTableSeparator
		}
		row := adoptSingle(d.arena, kind, lt)
		splitRowIntoCells(d.arena, row)
		d.arena.AppendChild(table, row)
	}
	return table
}

// splitRowIntoCells partitions row's existing lexical child chain into
// KindBlockTableCell containers at each unescaped KindPipe token. A pipe
// immediately preceded by a KindBackslash token is escaped and stays
// inside its cell instead of dividing it. A pipe at the very start or end
// of the row is a divider, not an empty leading/trailing cell, per 4.4.
func splitRowIntoCells(a *Arena, row NodeIndex) {
	head := a.At(row).Child
	if head == NilIndex {
		return
	}

	var cellStart, cellEnd NodeIndex = NilIndex, NilIndex
	var cells []NodeIndex
	prevKind := KindNone

	flush := func(stopBefore NodeIndex) {
		if cellStart == NilIndex {
			return
		}
		a.At(cellStart).Prev = NilIndex
		if cellEnd != NilIndex {
			a.At(cellEnd).Next = NilIndex
		}
		a.At(cellStart).Tail = cellEnd
		container := a.New(KindBlockTableCell, a.At(cellStart).Start, a.At(cellEnd).End()-a.At(cellStart).Start)
		a.At(container).Child = cellStart
		cells = append(cells, container)
		cellStart, cellEnd = NilIndex, NilIndex
	}

	cur := head
	for cur != NilIndex {
		next := a.At(cur).Next
		tok := a.At(cur)
		if tok.Kind == KindPipe && prevKind != KindBackslash {
			flush(cur)
		} else {
			if cellStart == NilIndex {
				cellStart = cur
			}
			cellEnd = cur
		}
		prevKind = tok.Kind
		cur = next
	}
	flush(NilIndex)

	a.At(row).Child = NilIndex
	for _, c := range cells {
		a.AppendChild(row, c)
	}
}
