package mmd

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/net/html"
)

// Link is one entry of the Links table: a def-link's URL, optional title,
// and any trailing {key=value ...} attributes.
type Link struct {
	Label      string
	URL        string
	Title      string
	Attributes map[string]string
}

// Note is one entry of the Footnotes/Citations/Glossary/Abbreviations
// tables: the label, the defining block's token (so a backend can render
// its content subtree), and how many times it was referenced.
type Note struct {
	Label string
	Block NodeIndex
	Used  int
}

// ReferenceTables holds everything 4.8's post-reduction pass collects,
// keyed by normalized label. It is rebuilt once per parse and never
// mutated afterward.
type ReferenceTables struct {
	Links         map[string]*Link
	Footnotes     map[string]*Note
	Citations     map[string]*Note
	Glossary      map[string]*Note
	Abbreviations map[string]*Note
	Assets        map[string]string // source URL -> UUIDv4-derived asset path
}

func newReferenceTables() *ReferenceTables {
	return &ReferenceTables{
		Links:         map[string]*Link{},
		Footnotes:     map[string]*Note{},
		Citations:     map[string]*Note{},
		Glossary:      map[string]*Note{},
		Abbreviations: map[string]*Note{},
		Assets:        map[string]string{},
	}
}

var (
	linkAttrsRegexp = regexp.MustCompile(`\{([^{}]*)\}\s*$`)
	linkAttrRegexp  = regexp.MustCompile(`([A-Za-z_-][A-Za-z0-9_-]*)=("([^"]*)"|(\S+))`)
	linkTitleRegexp = regexp.MustCompile(`^(\S+)(\s+"([^"]*)")?\s*$`)
	remoteURLRegexp = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*://`)
)

// collect walks d.Root once, filling every table from the definition
// blocks the grammar emitted (one Link/Note per KindBlockDef* block) and
// from the usage pair nodes the pairing engine produced (to tally Used),
// then assigns asset paths for every remote URL it saw along the way.
func (rt *ReferenceTables) collect(d *Document) {
	walkBlocks(d, d.Root, func(block NodeIndex) {
		t := d.arena.At(block)
		switch t.Kind {
		case KindBlockDefLink:
			rt.collectLink(d, block)
		case KindBlockDefFootnote:
			rt.collectNote(d, rt.Footnotes, block, defFootRegexp)
		case KindBlockDefCitation:
			rt.collectNote(d, rt.Citations, block, defCiteRegexp)
		case KindBlockDefGlossary:
			rt.collectNote(d, rt.Glossary, block, defGlossRegexp)
		case KindBlockDefAbbreviation:
			rt.collectNote(d, rt.Abbreviations, block, defAbbrRegexp)
		}
	})

	walkContainers(d, d.Root, func(container NodeIndex) {
		// a definition block's own leading label pair ("[^fn]" in
		// "[^fn]: ...") defines the label; it is not a usage of it.
		skipLabel := false
		switch d.arena.At(container).Kind {
		case KindBlockDefLink, KindBlockDefFootnote, KindBlockDefCitation, KindBlockDefGlossary, KindBlockDefAbbreviation:
			skipLabel = true
		}
		d.arena.Children(container, func(c NodeIndex) bool {
			if skipLabel && d.arena.At(c).Kind.IsPair() {
				skipLabel = false
				return true
			}
			switch d.arena.At(c).Kind {
			case KindPairBracketFootnote:
				rt.markUsed(rt.Footnotes, rt.usageLabel(d, c))
			case KindPairBracketCitation:
				rt.markUsed(rt.Citations, rt.usageLabel(d, c))
			case KindPairBracketGlossary:
				rt.markUsed(rt.Glossary, rt.usageLabel(d, c))
			case KindPairBracketAbbrev:
				rt.markUsed(rt.Abbreviations, rt.usageLabel(d, c))
			case KindPairBracketLink, KindPairBracketImage:
				rt.collectAsset(rt.linkTarget(d, c))
			}
			return true
		})
	})
}

// usageLabel extracts the normalized label out of a usage node's inner
// text, e.g. "[^note]" -> "note".
func (rt *ReferenceTables) usageLabel(d *Document, usage NodeIndex) string {
	text := d.TokenText(usage)
	text = strings.TrimPrefix(text, "[")
	text = strings.TrimSuffix(text, "]")
	text = strings.TrimLeft(text, "^#?>")
	return normalizeLabel(text)
}

// linkTarget best-effort extracts an inline link's destination, e.g.
// "[text](http://example.com/x.png)" -> the URL. Reference-style usages
// ("[text][label]") resolve through rt.Links instead.
func (rt *ReferenceTables) linkTarget(d *Document, usage NodeIndex) string {
	full := d.TokenText(usage)
	// the bracket pair spans only "[text]"; an inline "(url)" destination
	// follows it directly in the source.
	if buf, end := d.buffer.Bytes(), d.arena.At(usage).End(); end < len(buf) && buf[end] == '(' {
		if j := bytes.IndexByte(buf[end:], ')'); j > 0 {
			full += string(buf[end : end+j+1])
		}
	}
	if m := regexp.MustCompile(`\(([^)]*)\)\s*$`).FindStringSubmatch(full); m != nil {
		if parts := linkTitleRegexp.FindStringSubmatch(strings.TrimSpace(m[1])); parts != nil {
			return parts[1]
		}
	}
	label := rt.usageLabel(d, usage)
	if link, ok := rt.Links[label]; ok {
		return link.URL
	}
	return ""
}

func (rt *ReferenceTables) markUsed(table map[string]*Note, label string) {
	if note, ok := table[label]; ok {
		note.Used++
	}
}

// collectLink parses a KindBlockDefLink block's literal text directly
// (the grammar never tokenizes def-link interiors further, since their
// grammar is a one-off regex rather than the run-level lexer's business)
// per "[label]: url \"title\" {key=value ...}".
func (rt *ReferenceTables) collectLink(d *Document, block NodeIndex) {
	text := strings.TrimRight(d.TokenText(block), "\n")
	m := defLinkRegexp.FindStringSubmatch(text)
	if m == nil {
		return
	}
	label := normalizeLabel(html.UnescapeString(m[1]))
	rest := m[2]

	attrs := map[string]string{}
	if am := linkAttrsRegexp.FindStringSubmatch(rest); am != nil {
		rest = strings.TrimSpace(rest[:len(rest)-len(am[0])])
		for _, kv := range linkAttrRegexp.FindAllStringSubmatch(am[1], -1) {
			val := kv[3]
			if val == "" {
				val = kv[4]
			}
			attrs[kv[1]] = val
		}
	}

	link := &Link{Label: label, Attributes: attrs}
	if tm := linkTitleRegexp.FindStringSubmatch(strings.TrimSpace(rest)); tm != nil {
		link.URL = tm[1]
		link.Title = tm[3]
	} else {
		link.URL = strings.TrimSpace(rest)
	}
	rt.Links[label] = link
	rt.collectAsset(link.URL)
}

// collectNote handles the four label-plus-content def-blocks uniformly:
// the label comes from re-matching the block's first line against the
// same regexp the line classifier used, and the content is the whole
// block's token subtree (a backend walks it the same way it would a
// paragraph's).
func (rt *ReferenceTables) collectNote(d *Document, table map[string]*Note, block NodeIndex, labelRe *regexp.Regexp) {
	firstLine := strings.SplitN(d.TokenText(block), "\n", 2)[0]
	m := labelRe.FindStringSubmatch(firstLine)
	if m == nil {
		return
	}
	label := normalizeLabel(m[1])
	if _, exists := table[label]; exists {
		// first definition wins, matching the metadata-shadowing rule's
		// spirit: later redefinitions of the same label are ignored.
		return
	}
	table[label] = &Note{Label: label, Block: block}
}

// collectAsset assigns url a stable UUIDv4-derived path the first time it
// is seen, deduplicating by URL exactly as the original's asset stack
// does. Local (non-scheme) paths are left alone.
func (rt *ReferenceTables) collectAsset(url string) {
	if url == "" || !remoteURLRegexp.MatchString(url) {
		return
	}
	if _, ok := rt.Assets[url]; ok {
		return
	}
	rt.Assets[url] = assetPathFor(url)
}

// assetPathFor mints a UUIDv4-derived local path for a remote asset URL,
// preserving the URL's extension when it has one recognizable trailing
// dotted suffix, so a packaging backend can still guess a content type.
func assetPathFor(url string) string {
	ext := ""
	if i := strings.LastIndexByte(url, '.'); i >= 0 && i > strings.LastIndexByte(url, '/') {
		ext = url[i:]
		if len(ext) > 8 {
			ext = ""
		}
	}
	return uuid.New().String() + ext
}

// normalizeLabel implements 4.8's label-normalization rule: lowercase
// ASCII, drop everything outside [A-Za-z0-9_.-], collapse runs of
// dropped characters to nothing (not to a single separator — adjacent
// punctuation simply vanishes, matching the original's label_from_string).
func normalizeLabel(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '.', r == '-':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// normalizeMetaKey lowercases and strips whitespace from a metadata key,
// so keys differing only in case or whitespace share a BufferSettings slot
// ("Author Name" and "authorname" both become "authorname").
func normalizeMetaKey(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if r == ' ' || r == '\t' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

var yamlKeyValueRegexp = regexp.MustCompile(`^([A-Za-z_][\w-]*)\s*:\s*(.*)$`)

// recordYAMLLine scans one line of a YAML metadata block for a top-level
// "key: value" pair and records it in BufferSettings, the same shape the
// MMD-header metadata lines populate. Nested YAML structure (lists, maps)
// is left as literal text in the value, since the parse core does not
// embed a YAML library (see DESIGN.md).
func (d *Document) recordYAMLLine(text string) {
	m := yamlKeyValueRegexp.FindStringSubmatch(text)
	if m == nil {
		return
	}
	d.BufferSettings[normalizeMetaKey(m[1])] = strings.TrimSpace(m[2])
}
