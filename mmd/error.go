package mmd

import (
	"fmt"
	"io"
)

// ErrorType represents the kind of error that occurred, extended from the
// teacher's set with transclusion and recursion-limit values. The parse
// pipeline records neither of those two: a depth overrun stops descending
// silently, and a failed transclusion is only logged.
type ErrorType string

const (
	ErrorTypeInvalidSyntax    ErrorType = "invalid_syntax"
	ErrorTypeUnexpectedToken  ErrorType = "unexpected_token"
	ErrorTypeInvalidStructure ErrorType = "invalid_structure"
	ErrorTypeDuplicateNode    ErrorType = "duplicate_node"
	ErrorTypeMissingNode      ErrorType = "missing_node"
	ErrorTypeValidation       ErrorType = "validation_error"
	ErrorTypeTokenization     ErrorType = "tokenization_error"
	ErrorTypeIO               ErrorType = "io_error"
	ErrorTypeRecursionLimit   ErrorType = "recursion_limit"
	ErrorTypeTransclusion     ErrorType = "transclusion_error"
)

// ParseError is a structured error with detailed position information. It
// provides precise location tracking for syntax and parsing errors, the
// same shape as the teacher's ParseError but keyed by NodeIndex into the
// arena rather than holding a standalone line-oriented token copy.
type ParseError struct {
	Type    ErrorType
	Message string
	File    string

	StartLine int
	EndLine   int
	StartCol  int
	EndCol    int

	Token   NodeIndex // the offending token, or NilIndex
	Context string    // additional context or suggestion

	Cause error
}

// Error implements the error interface with a formatted message.
func (e *ParseError) Error() string {
	location := e.locationString()
	msg := e.Message
	if location != "" {
		msg = location + ": " + msg
	}
	if e.Context != "" {
		msg += " (hint: " + e.Context + ")"
	}
	return msg
}

// Unwrap returns the underlying cause for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// locationString formats the position information for display.
func (e *ParseError) locationString() string {
	var loc string
	if e.File != "" {
		loc = e.File + ":"
	}
	if e.StartLine == e.EndLine {
		if e.StartCol == e.EndCol {
			loc += fmt.Sprintf("%d:%d", e.StartLine, e.StartCol)
		} else {
			loc += fmt.Sprintf("%d:%d-%d", e.StartLine, e.StartCol, e.EndCol)
		}
	} else {
		loc += fmt.Sprintf("%d:%d-%d:%d", e.StartLine, e.StartCol, e.EndLine, e.EndCol)
	}
	return loc
}

// String provides a detailed string representation including all fields.
func (e *ParseError) String() string {
	s := fmt.Sprintf("%s (type: %s)", e.Error(), e.Type)
	if e.Cause != nil {
		s += fmt.Sprintf("\n  caused by: %v", e.Cause)
	}
	return s
}

// NewParseError creates a new ParseError from the given components.
func NewParseError(typ ErrorType, message, file string, pos Position, tok NodeIndex, cause error) *ParseError {
	return &ParseError{
		Type:      typ,
		Message:   message,
		File:      file,
		StartLine: pos.StartLine,
		EndLine:   pos.EndLine,
		StartCol:  pos.StartColumn,
		EndCol:    pos.EndColumn,
		Token:     tok,
		Cause:     cause,
	}
}

// AddError adds a new parsing error to the document with detailed position
// info. The document still parses to completion and produces output
// afterward; this is for the "degrades gracefully" non-fatal case.
func (d *Document) AddError(typ ErrorType, message string, pos Position, tok NodeIndex, cause error) {
	d.Errors = append(d.Errors, NewParseError(typ, message, d.Path, pos, tok, cause))
}

// HasErrors returns true if the document contains any parsing errors.
func (d *Document) HasErrors() bool {
	return len(d.Errors) > 0
}

// HasFatalError returns true if the document has a fatal error that
// prevented successful parsing.
func (d *Document) HasFatalError() bool {
	return d.FatalError != nil
}

// AddFatalError sets a fatal error that prevents successful parsing. Only
// the first fatal error is kept as FatalError; later ones still land in
// Errors for visibility.
func (d *Document) AddFatalError(typ ErrorType, message string, pos Position, tok NodeIndex, cause error) {
	err := NewParseError(typ, message, d.Path, pos, tok, cause)
	if d.FatalError == nil {
		d.FatalError = err
	}
	d.Errors = append(d.Errors, err)
}

// WriteErrors writes all document errors to the provided writer, one per
// line.
func (d *Document) WriteErrors(w io.Writer) error {
	for _, err := range d.Errors {
		if _, writeErr := fmt.Fprintln(w, err.Error()); writeErr != nil {
			return writeErr
		}
	}
	return nil
}

// ErrorCount returns the number of parsing errors in the document.
func (d *Document) ErrorCount() int {
	return len(d.Errors)
}

// GetErrorByType returns all errors of the specified type.
func (d *Document) GetErrorByType(typ ErrorType) []*ParseError {
	result := make([]*ParseError, 0)
	for _, err := range d.Errors {
		if err.Type == typ {
			result = append(result, err)
		}
	}
	return result
}

// positionOf computes a Position for a byte range by scanning the buffer
// up to each endpoint, the teacher's calculatePosition walk generalized
// from a per-line token offset to an arbitrary byte span.
func (d *Document) positionOf(start, length int) Position {
	buf := d.buffer.Bytes()
	walk := func(upto int) (int, int) {
		line, col := 1, 1
		if upto > len(buf) {
			upto = len(buf)
		}
		for i := 0; i < upto; i++ {
			if buf[i] == '\n' {
				line++
				col = 1
			} else {
				col++
			}
		}
		return line, col
	}
	startLine, startCol := walk(start)
	endLine, endCol := walk(start + length)
	return Position{StartLine: startLine, StartColumn: startCol, EndLine: endLine, EndColumn: endCol}
}

// positionOfToken is a convenience wrapper around positionOf for a token
// already resolved to an arena index.
func (d *Document) positionOfToken(idx NodeIndex) Position {
	if idx == NilIndex {
		return Position{}
	}
	t := d.arena.At(idx)
	return d.positionOf(t.Start, t.Len)
}
