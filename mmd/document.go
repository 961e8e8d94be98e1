// Package mmd implements the MultiMarkdown parse pipeline: a lexer, line
// classifier, block grammar, ambidextrous delimiter resolver, pairing
// engine, emphasis coalescer, reference-table collector, critic-markup
// sub-parser, and transcluder, all operating over a single arena of
// Token nodes addressed by NodeIndex.
//
// You probably want to start with something like this:
//
//	doc := mmd.New().Parse(strings.NewReader("Your MultiMarkdown input"), "./")
//	html, err := doc.Write(htmlWriter)
package mmd

import "strings"

// Position represents the location of a node in the source text, computed
// lazily from byte offsets only when an error or export backend needs it —
// the hot parsing path never tracks line/column itself.
type Position struct {
	StartLine   int
	StartColumn int
	EndLine     int
	EndColumn   int
}

// Get returns the value for key in the document's BufferSettings (its
// MMD-header metadata), falling back to the Engine's DefaultSettings if
// key is absent from both, the same two-tier lookup go-org's
// Document.Get uses for BufferSettings vs. DefaultSettings.
func (d *Document) Get(key string) string {
	if v, ok := d.BufferSettings[key]; ok {
		return v
	}
	if v, ok := d.Engine.DefaultSettings[key]; ok {
		return v
	}
	return ""
}

// GetOption returns the value associated with an export option key inside
// the "options" metadata field, e.g. "toc:2 smart:t". Returns "nil" and
// logs a warning if the option is not set anywhere, matching the
// teacher's GetOption contract for missing export settings.
func (d *Document) GetOption(key string) string {
	get := func(settings map[string]string) string {
		for _, field := range strings.Fields(settings["options"]) {
			if strings.HasPrefix(field, key+":") {
				return field[len(key)+1:]
			}
		}
		return ""
	}
	value := get(d.BufferSettings)
	if value == "" {
		value = get(d.Engine.DefaultSettings)
	}
	if value == "" {
		value = "nil"
		d.Log.Printf("missing value for export option %s", key)
	}
	return value
}

// TokenText returns the literal source text a token's byte range covers.
func (d *Document) TokenText(idx NodeIndex) string {
	if idx == NilIndex {
		return ""
	}
	t := d.arena.At(idx)
	return d.buffer.Substring(t.Start, t.Len)
}
