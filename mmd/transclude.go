package mmd

import (
	"path/filepath"
	"regexp"
	"strings"
)

// transcludeMarkerRegexp matches {{filename}} sites, excluding {{TOC}}
// which the lexer treats as a structural marker of its own. The interior
// is capped well under 1000 bytes per 4.10's "scan for occurrences whose
// interior length is under 1000 bytes".
var transcludeMarkerRegexp = regexp.MustCompile(`\{\{([^{}]{1,999})\}\}`)

// transcludeManifest accumulates every file transclude() actually read,
// de-duplicated, for tooling that wants to know a document's full
// dependency set (e.g. a packaging backend bundling transcluded assets).
type transcludeManifest struct {
	Files []string
	seen  map[string]bool
}

func (m *transcludeManifest) record(path string) {
	if m.seen == nil {
		m.seen = map[string]bool{}
	}
	if m.seen[path] {
		return
	}
	m.seen[path] = true
	m.Files = append(m.Files, path)
}

// transclude runs 4.10's algorithm over buf in place: every {{file}} site
// is replaced with the named file's contents (recursively transcluded in
// turn), its own metadata block and BOM stripped first. active is the set
// of absolute paths currently being expanded on the current call stack,
// used to detect cycles; a cyclic reference is replaced with empty text
// rather than erroring, matching "the token is replaced with empty text".
//
// dir is overridden by this buffer's own "transclude base" metadata, if it
// declares one (4.10 step 2), before any site in buf is resolved against
// it. The preamble is scanned directly off the raw bytes with
// scanPreambleMetadata, since this runs ahead of tokenization.
func transclude(e *Engine, buf *Buffer, dir string, manifest *transcludeManifest, active map[string]bool) {
	if base, ok := scanPreambleMetadata(buf.Bytes())["transcludebase"]; ok && base != "" {
		dir = base
	}

	text := buf.String()
	out := transcludeMarkerRegexp.ReplaceAllStringFunc(text, func(match string) string {
		if match == "{{TOC}}" {
			return match
		}
		inner := match[2 : len(match)-2]
		return resolveTransclusion(e, inner, dir, manifest, active)
	})
	if out != text {
		buf.ReplaceRange(0, buf.Len(), []byte(out))
	}
}

func resolveTransclusion(e *Engine, inner, dir string, manifest *transcludeManifest, active map[string]bool) string {
	name := rewriteWildcardExtension(strings.TrimSpace(inner), e)

	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}
	abs := absPath(path)

	if active[abs] {
		return "" // cycle: replaced with empty text
	}

	data, err := e.ReadFile(path)
	if err != nil {
		if e.Log != nil {
			e.Log.Printf("transclude: could not read %q: %v", path, err)
		}
		return "" // failed read substitutes empty content silently, per spec 5
	}

	manifest.record(abs)
	nested := map[string]bool{abs: true}
	for k := range active {
		nested[k] = true
	}

	sub := NewBuffer(stripBOM(data))
	transclude(e, sub, dirOf(path), manifest, nested)
	stripLeadingMetadataBlock(sub)

	return sub.String()
}

// rewriteWildcardExtension implements the ".* remapped per target format"
// rule, using the format recorded by Engine.SetTranscludeFormat (the
// Writer passed to Write later is not consulted). With no format set, or
// any format other than HTML/LaTeX/Beamer/Memoir, ".*" falls back to
// ".txt", the "other" case in 4.10's table.
func rewriteWildcardExtension(name string, e *Engine) string {
	if !strings.HasSuffix(name, ".*") {
		return name
	}
	ext := ".txt"
	switch e.transcludeFormatHint {
	case FormatHTML:
		ext = ".html"
	case FormatLaTeX, FormatBeamer, FormatMemoir:
		ext = ".tex"
	}
	return strings.TrimSuffix(name, ".*") + ext
}

// dirOf returns the directory a relative transclusion path should resolve
// against: the directory containing path, or "." if path has none.
func dirOf(path string) string {
	if path == "" {
		return "."
	}
	return filepath.Dir(path)
}

// absPath returns path's absolute form for cycle-stack comparison,
// falling back to the original string if it cannot be resolved (e.g. the
// working directory is unavailable).
func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// stripLeadingMetadataBlock removes an included file's own MMD-header
// metadata block from its content before splicing, per 4.10 step 4: a
// transcluded file's title/author/etc. are not meant to leak into the
// including document's own metadata pass.
func stripLeadingMetadataBlock(buf *Buffer) {
	meta := scanPreambleMetadata(buf.Bytes())
	if len(meta) == 0 {
		return
	}
	text := buf.String()
	lines := strings.SplitAfter(text, "\n")
	i := 0
	for i < len(lines) {
		trimmed := strings.TrimRight(lines[i], "\r\n")
		if trimmed == "" {
			i++
			break
		}
		if !metaLineRegexp.MatchString(trimmed) && !metaContinuationRegexp.MatchString(trimmed) {
			break
		}
		i++
	}
	buf.ReplaceRange(0, buf.Len(), []byte(strings.Join(lines[i:], "")))
}
