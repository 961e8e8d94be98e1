package mmd

import (
	"regexp"
	"strings"
)

// Scanners are the small regex-based recognizers the line classifier
// consults once the leading token kind has narrowed the candidates down,
// the same division of labor go-org's lexFn table uses (match a regexp,
// report kind plus the submatches the parser will need later).
var (
	atxRegexp          = regexp.MustCompile(`^(#{1,6})(\s+(.*?))?\s*#*\s*$`)
	setextUnderlineEq  = regexp.MustCompile(`^=+\s*$`)
	setextUnderlineDash = regexp.MustCompile(`^-+\s*$`)
	horizontalRuleRegexp = regexp.MustCompile(`^([*\-_])(\s*\1){2,}\s*$`)
	tocMarkerRegexp     = regexp.MustCompile(`^\{\{TOC\}\}\s*$`)
	yamlFenceRegexp     = regexp.MustCompile(`^(---|\.\.\.)\s*$`)
	blockquoteRegexp    = regexp.MustCompile(`^>\s?(.*)$`)
	htmlBlockStartRegexp = regexp.MustCompile(`(?i)^<(!--|/?[a-z][a-z0-9]*)\b`)
	fenceStartRegexp    = regexp.MustCompile("^(```+|~~~+)\\s*(.*)$")
	unorderedListRegexp = regexp.MustCompile(`^([*+\-])(\s+(.*)|$)`)
	orderedListRegexp   = regexp.MustCompile(`^(\d+)[.)](\s+(.*)|$)`)
	definitionLineRegexp = regexp.MustCompile(`^:\s+(.*)$`)
	metaLineRegexp      = regexp.MustCompile(`^([A-Za-z][\w \t-]*):\s*(.*)$`)
	metaContinuationRegexp = regexp.MustCompile(`^(\s{2,}|\t)\S`)
	tableRowHasPipe     = regexp.MustCompile(`\|`)
	tableSeparatorRegexp = regexp.MustCompile(`^\s*\|?\s*:?-+:?\s*(\|\s*:?-+:?\s*)*\|?\s*$`)

	defLinkRegexp  = regexp.MustCompile(`^\[([^\]]+)\]:\s*(.+)$`)
	defFootRegexp  = regexp.MustCompile(`^\[\^([^\]]+)\]:\s*(.*)$`)
	defCiteRegexp  = regexp.MustCompile(`^\[#([^\]]+)\]:\s*(.*)$`)
	defGlossRegexp = regexp.MustCompile(`^\[\?([^\]]+)\]:\s*(.*)$`)
	defAbbrRegexp  = regexp.MustCompile(`^\[>([^\]]+)\]:\s*(.*)$`)
)

// lineScan is the result of classifying one physical line.
type lineScan struct {
	kind    TokenKind
	level   int    // ATX level, fence run length, blockquote depth, etc.
	label   string // normalized label for def-* lines
	content string // remaining text after the marker was stripped
	marker  string // literal marker text (bullet char, fence run, ...)
}

// scanLine assigns exactly one line kind to rest (the line's text after
// indent-stripping), consulting Notes/metadata-allowed state from the
// caller. It does not itself decide "indented" or "empty" — the caller
// (classifyLines) handles those before ever calling scanLine.
func scanLine(rest string, notesExt, allowMeta, inYAML bool) lineScan {
	switch {
	case rest == "":
		return lineScan{kind: KindLineEmpty}
	case tocMarkerRegexp.MatchString(rest):
		return lineScan{kind: KindLineTOC}
	case inYAML && yamlFenceRegexp.MatchString(rest):
		return lineScan{kind: KindLineYAML, content: rest}
	case allowMeta && yamlFenceRegexp.MatchString(rest) && rest == "---":
		return lineScan{kind: KindLineYAML, content: rest}
	}

	if m := atxRegexp.FindStringSubmatch(rest); m != nil {
		level := len(m[1])
		if level >= 1 && level <= 6 {
			return lineScan{kind: KindLineATX1 + TokenKind(level-1), level: level, content: m[3]}
		}
	}

	if m := fenceStartRegexp.FindStringSubmatch(rest); m != nil {
		n := len(m[1])
		switch {
		case n >= 5:
			return lineScan{kind: KindLineFenceStart5, level: n, content: m[2], marker: m[1]}
		case n == 4:
			return lineScan{kind: KindLineFenceStart4, level: n, content: m[2], marker: m[1]}
		default:
			return lineScan{kind: KindLineFenceStart3, level: n, content: m[2], marker: m[1]}
		}
	}

	if horizontalRuleRegexp.MatchString(rest) {
		return lineScan{kind: KindLineHR}
	}

	if strings.HasPrefix(rest, "<!--") {
		return lineScan{kind: KindLineStartComment, content: rest}
	}
	if strings.Contains(rest, "-->") {
		return lineScan{kind: KindLineStopComment, content: rest}
	}
	if htmlBlockStartRegexp.MatchString(rest) {
		return lineScan{kind: KindLineHTML, content: rest}
	}

	if m := blockquoteRegexp.FindStringSubmatch(rest); m != nil {
		return lineScan{kind: KindLineBlockquote, content: m[1]}
	}

	if notesExt {
		if m := defFootRegexp.FindStringSubmatch(rest); m != nil {
			return lineScan{kind: KindLineDefFootnote, label: normalizeLabel(m[1]), content: m[2]}
		}
		if m := defCiteRegexp.FindStringSubmatch(rest); m != nil {
			return lineScan{kind: KindLineDefCitation, label: normalizeLabel(m[1]), content: m[2]}
		}
		if m := defGlossRegexp.FindStringSubmatch(rest); m != nil {
			return lineScan{kind: KindLineDefGlossary, label: normalizeLabel(m[1]), content: m[2]}
		}
		if m := defAbbrRegexp.FindStringSubmatch(rest); m != nil {
			return lineScan{kind: KindLineDefAbbreviation, label: normalizeLabel(m[1]), content: m[2]}
		}
	}
	if m := defLinkRegexp.FindStringSubmatch(rest); m != nil {
		return lineScan{kind: KindLineDefLink, label: normalizeLabel(m[1]), content: m[2]}
	}

	if m := unorderedListRegexp.FindStringSubmatch(rest); m != nil {
		return lineScan{kind: KindLineBulleted, marker: m[1], content: m[3]}
	}
	if m := orderedListRegexp.FindStringSubmatch(rest); m != nil {
		return lineScan{kind: KindLineEnumerated, marker: m[1], content: m[3]}
	}

	if m := definitionLineRegexp.FindStringSubmatch(rest); m != nil {
		return lineScan{kind: KindLineDefinition, content: m[1]}
	}

	if allowMeta {
		if m := metaLineRegexp.FindStringSubmatch(rest); m != nil {
			return lineScan{kind: KindLineMeta, label: normalizeMetaKey(m[1]), content: m[2]}
		}
		if metaContinuationRegexp.MatchString(rest) {
			return lineScan{kind: KindLineContinuation, content: strings.TrimLeft(rest, " \t")}
		}
	}

	if tableRowHasPipe.MatchString(rest) {
		if tableSeparatorRegexp.MatchString(rest) {
			return lineScan{kind: KindLineTableSeparator, content: rest}
		}
		return lineScan{kind: KindLineTable, content: rest}
	}

	return lineScan{kind: KindLinePlain, content: rest}
}
