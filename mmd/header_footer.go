package mmd

import "strings"

// scanPreambleMetadata runs a lightweight, throwaway version of the line
// classifier's metadata recognition directly over raw bytes, for the two
// call sites that need metadata values before the real tokenizer has run
// at all: the transcluder (for a "transclude base" override) and
// applyHeaderFooter (for "mmd_header"/"mmd_footer"). It stops at the first
// blank or non-meta line, exactly like the real preamble rule in 4.3, and
// never touches doc.lineScans or the arena.
func scanPreambleMetadata(buf []byte) map[string]string {
	out := map[string]string{}
	lines := strings.Split(string(buf), "\n")
	var key string
	var valueParts []string
	flush := func() {
		if key != "" {
			out[key] = strings.Join(valueParts, " ")
		}
	}
	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			break
		}
		if m := metaLineRegexp.FindStringSubmatch(line); m != nil {
			flush()
			key = normalizeMetaKey(m[1])
			valueParts = []string{m[2]}
			continue
		}
		if metaContinuationRegexp.MatchString(line) && key != "" {
			valueParts = append(valueParts, strings.TrimLeft(line, " \t"))
			continue
		}
		break
	}
	flush()
	return out
}

// applyHeaderFooter implements SUPPLEMENTED FEATURES item 1: an
// "mmd_header" metadata value is spliced onto the very front of the
// buffer and "mmd_footer" onto the very end, before tokenizing begins, so
// both pass through the normal block grammar like any other content.
// Splicing happens once, directly on d.buffer, ahead of classifyLines.
func (d *Document) applyHeaderFooter() {
	meta := scanPreambleMetadata(d.buffer.Bytes())
	if header, ok := meta["mmd_header"]; ok && header != "" {
		d.buffer.Prepend([]byte(header + "\n\n"))
	}
	if footer, ok := meta["mmd_footer"]; ok && footer != "" {
		d.buffer.Append([]byte("\n\n" + footer))
	}
}
