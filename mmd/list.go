package mmd

import "strings"

// reduceList consumes a run of bulleted or enumerated lines (and their
// continuations) starting at lines[i], producing one KindBlockListBulleted
// or KindBlockListEnumerated container. Per 4.4, "list becomes loose when
// any item contains a paragraph"; looseness is recorded on the list
// token's CanOpen field, which otherwise has no meaning for a block-kind
// token (see DESIGN.md for this repurposing).
func (d *Document) reduceList(lines []NodeIndex, i, n int, depth *int) (int, NodeIndex) {
	family := d.lineScans[lines[i]].kind
	first := d.arena.At(lines[i])
	start := i
	var items []NodeIndex
	loose := false

	for i < n && d.lineScans[lines[i]].kind == family {
		item, next, itemLoose := d.reduceListItem(lines, i, n, depth)
		items = append(items, item)
		loose = loose || itemLoose
		i = next
		// a blank line between list items does not by itself continue the
		// list; only a following bulleted/enumerated line of the same
		// family does.
		for i < n && d.lineScans[lines[i]].kind == KindLineEmpty {
			if i+1 < n && d.lineScans[lines[i+1]].kind == family {
				loose = true
				i++
				continue
			}
			break
		}
	}

	kind := KindBlockListBulleted
	if family == KindLineEnumerated {
		kind = KindBlockListEnumerated
	}
	var lastEnd int
	if i > start {
		lastEnd = d.arena.At(lines[i-1]).End()
	} else {
		lastEnd = first.End()
	}
	list := d.arena.New(kind, first.Start, lastEnd-first.Start)
	d.arena.At(list).CanOpen = loose
	for _, it := range items {
		d.arena.AppendChild(list, it)
	}
	return i, list
}

// reduceListItem consumes one item's bullet/enumerator line plus any
// immediately following indented continuation and blank lines, re-parses
// the dedented body, and reattaches the original bullet token as the
// item's first child per 4.4's grammar invariant.
func (d *Document) reduceListItem(lines []NodeIndex, i, n int, depth *int) (NodeIndex, int, bool) {
	bulletLineIdx := lines[i]
	scan := d.lineScans[bulletLineIdx]
	bulletLine := d.arena.At(bulletLineIdx)

	var bodyLines []string
	bodyLines = append(bodyLines, scan.content)

	j := i + 1
	blankRun := 0
	sawParagraphBreak := false
	for j < n {
		k := d.lineScans[lines[j]].kind
		switch {
		case k == KindLineIndentedTab || k == KindLineIndentedSpace:
			if blankRun > 0 {
				sawParagraphBreak = true
			}
			blankRun = 0
			bodyLines = append(bodyLines, d.lineScans[lines[j]].content)
			j++
		case k == KindLineEmpty:
			blankRun++
			bodyLines = append(bodyLines, "")
			j++
		default:
			goto doneScan
		}
	}
doneScan:
	// trailing blank lines absorbed speculatively but not consumed by this
	// item belong to whatever follows; drop them back.
	for len(bodyLines) > 0 && bodyLines[len(bodyLines)-1] == "" && blankRun > 0 {
		bodyLines = bodyLines[:len(bodyLines)-1]
		j--
		blankRun--
	}

	body := strings.Join(bodyLines, "\n")
	bodyRoot := d.appendAndReduce(body, depth)

	marker := bulletLine.Child
	if marker != NilIndex {
		mt := d.arena.At(marker)
		if scan.kind == KindLineBulleted {
			mt.Kind = KindMarkerListBullet
		} else {
			mt.Kind = KindMarkerListEnumerator
		}
		mt.Next, mt.Prev = NilIndex, NilIndex
		mt.Tail = marker
	}

	item := d.arena.New(KindBlockListItem, bulletLine.Start, 0)
	if j-1 >= i {
		d.arena.At(item).Len = d.arena.At(lines[j-1]).End() - bulletLine.Start
	}
	it := d.arena.At(item)
	it.Child = marker

	bodyHead := d.arena.At(bodyRoot).Child
	switch {
	case marker != NilIndex && bodyHead != NilIndex:
		tail := d.arena.At(bodyHead).Tail
		d.arena.At(marker).Next = bodyHead
		d.arena.At(bodyHead).Prev = marker
		d.arena.At(marker).Tail = tail
	case marker == NilIndex:
		it.Child = bodyHead
	}

	return item, j, sawParagraphBreak
}
