package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a SchemaDiffError.
type Kind string

const (
	KindParse         Kind = "parse_error"
	KindComparison    Kind = "comparison_error"
	KindInvalidFormat Kind = "invalid_format"
	KindIO            Kind = "io_error"
	KindJSON          Kind = "json_error"
	KindProtobuf      Kind = "protobuf_error"
)

// SchemaDiffError is the typed failure returned by analyzers and the
// components built around them.
type SchemaDiffError struct {
	Kind       Kind   `json:"kind"`
	Message    string `json:"message"`
	Format     string `json:"format,omitempty"`
	underlying error
}

func (e *SchemaDiffError) Error() string {
	msg := e.Message
	if e.Format != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Format)
	}
	if e.underlying != nil {
		return fmt.Sprintf("%s: %v", msg, e.underlying)
	}
	return msg
}

func (e *SchemaDiffError) Unwrap() error {
	return e.underlying
}

// Is reports whether target is a SchemaDiffError of the same kind, so
// errors.Is(err, ErrParse) matches every parse failure regardless of message.
func (e *SchemaDiffError) Is(target error) bool {
	t, ok := target.(*SchemaDiffError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for use with errors.Is.
var (
	ErrParse         = &SchemaDiffError{Kind: KindParse, Message: "parse error"}
	ErrComparison    = &SchemaDiffError{Kind: KindComparison, Message: "comparison error"}
	ErrInvalidFormat = &SchemaDiffError{Kind: KindInvalidFormat, Message: "invalid format"}
	ErrIO            = &SchemaDiffError{Kind: KindIO, Message: "io error"}
	ErrJSON          = &SchemaDiffError{Kind: KindJSON, Message: "json error"}
	ErrProtobuf      = &SchemaDiffError{Kind: KindProtobuf, Message: "protobuf error"}
)

// New creates a new SchemaDiffError
func New(kind Kind, message string) *SchemaDiffError {
	return &SchemaDiffError{
		Kind:    kind,
		Message: message,
	}
}

// Wrap wraps an error with a kind and additional context
func Wrap(err error, kind Kind, message string) *SchemaDiffError {
	return &SchemaDiffError{
		Kind:       kind,
		Message:    message,
		underlying: err,
	}
}

// Parse wraps a document parser failure for the given format.
func Parse(format string, err error) *SchemaDiffError {
	return &SchemaDiffError{
		Kind:       KindParse,
		Message:    "failed to parse schema",
		Format:     format,
		underlying: err,
	}
}

// WithFormat returns a copy of the error tagged with a schema format.
func (e *SchemaDiffError) WithFormat(format string) *SchemaDiffError {
	return &SchemaDiffError{
		Kind:       e.Kind,
		Message:    e.Message,
		Format:     format,
		underlying: e.underlying,
	}
}

// IsSchemaDiffError returns the first SchemaDiffError in err's chain.
func IsSchemaDiffError(err error) (*SchemaDiffError, bool) {
	var se *SchemaDiffError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// KindOf returns the kind of the outermost SchemaDiffError in err's chain,
// or the empty kind when there is none.
func KindOf(err error) Kind {
	if se, ok := IsSchemaDiffError(err); ok {
		return se.Kind
	}
	return ""
}
