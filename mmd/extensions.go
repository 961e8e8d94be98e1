package mmd

// Extension is a single bit in the Engine's extension bitset, gating
// grammar and resolver decisions the way Configuration.Compatibility-style
// flags do in the teacher, generalized to the full MultiMarkdown set.
type Extension uint32

const (
	ExtCompatibility Extension = 1 << iota // disables most extensions below
	ExtCriticMarkup
	ExtNotes // footnote/citation/glossary/abbreviation def-lines
	ExtSmart // typographic substitutions (quotes, dashes, ellipses)
	ExtNoMetadata
	ExtNoLabels
	ExtTransclude
	ExtTables
	ExtRawFilter
	ExtAutoLink
)

// ExtensionSet is a bitset of Extensions.
type ExtensionSet uint32

// DefaultExtensions enables the full MultiMarkdown feature set.
const DefaultExtensions ExtensionSet = ExtensionSet(
	ExtCriticMarkup | ExtNotes | ExtSmart | ExtTransclude | ExtTables | ExtRawFilter | ExtAutoLink,
)

// Has reports whether e is present in the set.
func (s ExtensionSet) Has(e Extension) bool { return s&ExtensionSet(e) != 0 }

// With returns a copy of s with e enabled.
func (s ExtensionSet) With(e Extension) ExtensionSet { return s | ExtensionSet(e) }

// Without returns a copy of s with e disabled.
func (s ExtensionSet) Without(e Extension) ExtensionSet { return s &^ ExtensionSet(e) }

// hasExtension applies the Compatibility override: when Compatibility is
// set, every extension except the bare request for Compatibility itself
// reads as disabled, matching "Compatibility (disable most extensions)".
func (e *Engine) hasExtension(ext Extension) bool {
	if ext == ExtCompatibility {
		return e.Extensions.Has(ExtCompatibility)
	}
	if e.Extensions.Has(ExtCompatibility) {
		return false
	}
	return e.Extensions.Has(ext)
}
