// Package diag defines the error taxonomy shared by the header generation
// pipeline. Every error is fatal for the header being generated.
package diag

import (
	"errors"
	"fmt"

	"github.com/mvp-joe/autoheaders/internal/source"
)

// ParseError reports source text the C parser rejects after shim substitution.
type ParseError struct {
	Pos     source.LineCol
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d, column %d: %s", e.Pos.Line, e.Pos.Col, e.Message)
}

// AnnotationError reports conflicting or malformed annotations and
// contradictory visibility signals.
type AnnotationError struct {
	Pos     source.LineCol
	Message string
	// Related points at the other half of a conflict, if any.
	Related *source.LineCol
}

func (e *AnnotationError) Error() string {
	msg := fmt.Sprintf("annotation error at line %d, column %d: %s", e.Pos.Line, e.Pos.Col, e.Message)
	if e.Related != nil {
		msg += fmt.Sprintf(" (see line %d, column %d)", e.Related.Line, e.Related.Col)
	}
	return msg
}

// ConfigurationError reports a header that cannot be produced with the
// current configuration, such as a public header with no guard name.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Message
}

// Position returns the source location carried by err, if any.
func Position(err error) (source.LineCol, bool) {
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return parseErr.Pos, true
	}
	var annErr *AnnotationError
	if errors.As(err, &annErr) {
		return annErr.Pos, true
	}
	return source.LineCol{}, false
}

// IsGenerationError reports whether err belongs to the generation taxonomy
// rather than to I/O or the command line.
func IsGenerationError(err error) bool {
	var parseErr *ParseError
	var annErr *AnnotationError
	var cfgErr *ConfigurationError
	return errors.As(err, &parseErr) || errors.As(err, &annErr) || errors.As(err, &cfgErr)
}
