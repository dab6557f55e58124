package protocol

import "fmt"

// ParseError reports a single inbound line that could not be interpreted.
// It never ends a session; the line is logged and dropped.
type ParseError struct {
	Kind    ParseErrorKind
	Line    string // the offending line
	Value   string // the field that failed, if any
	Message string
}

// ParseErrorKind categorizes parsing errors.
type ParseErrorKind int

const (
	// ErrKindEmptyLine indicates a blank line reached the parser.
	ErrKindEmptyLine ParseErrorKind = iota
	// ErrKindMalformedEntity indicates a POKEMON line without index, name and species.
	ErrKindMalformedEntity
	// ErrKindInvalidIndex indicates a storage index that is not a non-negative integer.
	ErrKindInvalidIndex
)

// Error implements the error interface.
func (e *ParseError) Error() string {
	switch e.Kind {
	case ErrKindEmptyLine:
		return "empty line"
	case ErrKindMalformedEntity:
		return fmt.Sprintf("malformed POKEMON line %q: %s", e.Line, e.Message)
	case ErrKindInvalidIndex:
		return fmt.Sprintf("invalid storage index '%s' in %q", e.Value, e.Line)
	default:
		return fmt.Sprintf("parse error: %q", e.Line)
	}
}

func newEmptyLineError() error {
	return &ParseError{Kind: ErrKindEmptyLine}
}

func newMalformedEntityError(line, msg string) error {
	return &ParseError{Kind: ErrKindMalformedEntity, Line: line, Message: msg}
}

func newInvalidIndexError(line, value string) error {
	return &ParseError{Kind: ErrKindInvalidIndex, Line: line, Value: value}
}
