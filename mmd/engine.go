package mmd

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
)

// Format enumerates the backend targets a Writer may claim to produce.
// Only the traversal contract (Writer) lives in this module — the actual
// emitters are external collaborators per spec scope.
type Format int

const (
	FormatHTML Format = iota
	FormatLaTeX
	FormatBeamer
	FormatMemoir
	FormatOPML
	FormatODT
	FormatFODT
	FormatEPUB
	FormatTextBundle
)

func (f Format) String() string {
	switch f {
	case FormatHTML:
		return "html"
	case FormatLaTeX:
		return "latex"
	case FormatBeamer:
		return "beamer"
	case FormatMemoir:
		return "memoir"
	case FormatOPML:
		return "opml"
	case FormatODT:
		return "odt"
	case FormatFODT:
		return "fodt"
	case FormatEPUB:
		return "epub"
	case FormatTextBundle:
		return "textbundle"
	default:
		return "unknown"
	}
}

// Writer is the traversal contract a backend emitter implements to turn a
// parsed Document into text output (HTML, LaTeX, ...). This module ships
// no concrete Writer; it only defines the contract the parse core promises
// to a backend: a fully resolved Document with populated reference tables.
type Writer interface {
	Format() Format
	Write(doc *Document) (string, error)
}

// DataWriter is the Writer analogue for packaging formats (EPUB/ODT/
// TextBundle) that produce an in-memory binary blob rather than text.
type DataWriter interface {
	Format() Format
	WriteData(doc *Document) ([]byte, error)
}

// Engine holds the configuration an embedder sets once and reuses across
// parses: extension flags, language, I/O hooks, and the pairing tables
// (shared, read-only once built). This generalizes the teacher's
// Configuration the same way Document generalizes its Document.
type Engine struct {
	Extensions      ExtensionSet
	Language        string
	DefaultSettings map[string]string
	Log             *log.Logger
	ReadFile        func(filename string) ([]byte, error)
	ResolveAsset    func(url string) string // not called by the reference-table pass; asset paths always come from assetPathFor

	MaxParseDepth  int
	MaxExportDepth int

	// transcludeFormatHint lets SetTranscludeFormat tell the transcluder
	// which extension a trailing ".*" in a transclusion target should
	// resolve to; it has no effect on Write/WriteData's own format choice.
	transcludeFormatHint Format

	pairTables *pairingTables
}

// SetTranscludeFormat records which output format's extension convention
// a trailing ".*" transclusion target should resolve to (4.10: html ->
// .html; latex/beamer/memoir -> .tex; anything else -> .txt).
func (e *Engine) SetTranscludeFormat(f Format) *Engine {
	e.transcludeFormatHint = f
	return e
}

// New returns an Engine with the full extension set enabled and sane
// defaults, mirroring org.New()'s "(hopefully) sane defaults" doc comment.
func New() *Engine {
	return &Engine{
		Extensions:      DefaultExtensions,
		DefaultSettings: map[string]string{},
		Log:             log.New(os.Stderr, "mmd: ", 0),
		ReadFile:        os.ReadFile,
		MaxParseDepth:   1000,
		MaxExportDepth:  1000,
		// no format hint yet: a trailing ".*" resolves to ".txt" until
		// SetTranscludeFormat is called.
		transcludeFormatHint: Format(-1),
		pairTables:           defaultPairingTables(),
	}
}

// Silent disables all logging of warnings during parsing.
func (e *Engine) Silent() *Engine {
	e.Log = log.New(io.Discard, "", 0)
	return e
}

// SetLanguage records the short language code used by locale-sensitive
// backends (e.g. smart-quote style). The core itself does not branch on it.
func (e *Engine) SetLanguage(short string) *Engine {
	e.Language = short
	return e
}

// Reset is a no-op placeholder for API symmetry with the external
// interface contract ("engine-reset"): an Engine carries no per-parse
// state of its own (that all lives on Document), so there is nothing to
// drop. Kept as a method so embedders following the Create/.../reset/free
// lifecycle have a call to make.
func (e *Engine) Reset() {}

// Document contains one parse's results: the source buffer, the token
// arena, the resolved reference tables, and any structured errors.
type Document struct {
	*Engine
	Path string

	buffer    *Buffer
	arena     *Arena
	linesRoot NodeIndex
	Root      NodeIndex // KindBlockDocument

	// lineScans records the scanLine result for every line token created
	// anywhere in the document (top-level and every recursive re-parse of
	// blockquote/list-item content), keyed by the line token's
	// own arena index rather than by position, since recursive reparses
	// interleave their own line tokens with the top-level ones.
	lineScans map[NodeIndex]lineScan

	// BufferSettings holds metadata key/value pairs collected from the
	// document's MMD-header metadata block, keyed by normalizeMetaKey.
	BufferSettings map[string]string

	References *ReferenceTables
	Errors     []*ParseError
	FatalError *ParseError

	Pos Position
}

// Parse reads input fully, then parses it into a Document. Errors are
// stored on Document.Errors rather than returned, so callers can chain
// Parse directly into Write the way the teacher's API does.
func (e *Engine) Parse(input io.Reader, path string) *Document {
	data, err := io.ReadAll(input)
	if err != nil {
		d := e.newDocument(path, nil)
		d.AddFatalError(ErrorTypeIO, "could not read input", Position{}, NilIndex, err)
		return d
	}
	return e.ParseBytes(data, path)
}

// ParseBytes is the entry point used when the caller already has the whole
// document in memory (the common case: "input must be fully buffered").
func (e *Engine) ParseBytes(data []byte, path string) (d *Document) {
	data = stripBOM(data)
	d = e.newDocument(path, data)
	defer func() {
		if recovered := recover(); recovered != nil {
			d.AddFatalError(ErrorTypeInvalidStructure, "parse panic", d.Pos, NilIndex, fmt.Errorf("recovered from panic: %v", recovered))
		}
	}()

	if e.hasExtension(ExtTransclude) {
		manifest := &transcludeManifest{}
		transclude(e, d.buffer, dirOf(path), manifest, map[string]bool{absPath(path): true})
	}
	d.applyHeaderFooter()

	d.linesRoot = d.arena.New(KindBlockDocument, 0, d.buffer.Len())
	d.classifyLines()
	d.Root = d.arena.New(KindBlockDocument, 0, d.buffer.Len())
	depth := 0
	reduceBlocks(d, d.linesRoot, d.Root, &depth)

	resolveDelimiters(d)
	runPairingTables(d, e.pairTables)
	coalesceEmphasis(d)

	d.References = newReferenceTables()
	d.References.collect(d)

	d.Pos = Position{StartLine: 1, StartColumn: 1, EndLine: countLines(data), EndColumn: 1}
	return d
}

// ParseSubstring re-parses buf[start:start+length] as a standalone
// document fragment sharing no state with any prior parse. It is exposed
// for the external interface contract; internal blockquote/list-item
// reparsing does not use it (see appendAndReduce in grammar.go).
func (e *Engine) ParseSubstring(buf []byte, start, length int) NodeIndex {
	sub := e.ParseBytes(append([]byte(nil), buf[start:start+length]...), "")
	return sub.Root
}

func (e *Engine) newDocument(path string, data []byte) *Document {
	buf := NewBuffer(data)
	return &Document{
		Engine:         e,
		Path:           path,
		buffer:         buf,
		arena:          NewArena(),
		linesRoot:      0,
		lineScans:      map[NodeIndex]lineScan{},
		BufferSettings: map[string]string{},
	}
}

func stripBOM(b []byte) []byte {
	return bytes.TrimPrefix(b, []byte{0xEF, 0xBB, 0xBF})
}

func countLines(b []byte) int {
	n := 1
	for _, c := range b {
		if c == '\n' {
			n++
		}
	}
	return n
}

// Write exports a parsed Document through w. Matches org.Document.Write's
// recover-into-error contract.
func (d *Document) Write(w Writer) (out string, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("could not write output: %s", recovered)
		}
	}()
	if d.HasFatalError() {
		return "", d.FatalError
	}
	return w.Write(d)
}

// WriteData is the DataWriter analogue of Write for packaging formats.
func (d *Document) WriteData(w DataWriter) (out []byte, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("could not write output: %s", recovered)
		}
	}()
	if d.HasFatalError() {
		return nil, d.FatalError
	}
	return w.WriteData(d)
}

// Convert is the all-in-one external interface entry: buffer + extensions
// + format (embodied by w) + language -> output.
func Convert(e *Engine, input []byte, path string, w Writer) (string, error) {
	return e.ParseBytes(input, path).Write(w)
}

// ConvertToData is the packaging-format analogue of Convert.
func ConvertToData(e *Engine, input []byte, path string, w DataWriter) ([]byte, error) {
	return e.ParseBytes(input, path).WriteData(w)
}

// ConvertToFile writes the result of ConvertToData to disk.
func ConvertToFile(e *Engine, input []byte, path string, w DataWriter, outPath string) error {
	blob, err := ConvertToData(e, input, path, w)
	if err != nil {
		return err
	}
	return os.WriteFile(outPath, blob, 0o644)
}
