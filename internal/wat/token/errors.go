package token

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a lexing/parsing failure.
type Kind byte

const (
	Tokenization Kind = iota
	UnexpectedToken
	MissingPunctuation
	UnknownKeyword
	ValueOutOfRange
	DuplicateDeclaration
	InvalidIdentifier
)

func (k Kind) String() string {
	switch k {
	case Tokenization:
		return "tokenization"
	case UnexpectedToken:
		return "unexpected token"
	case MissingPunctuation:
		return "missing punctuation"
	case UnknownKeyword:
		return "unknown keyword"
	case ValueOutOfRange:
		return "value out of range"
	case DuplicateDeclaration:
		return "duplicate declaration"
	case InvalidIdentifier:
		return "invalid identifier"
	}
	return "unknown"
}

// ParseError is fatal: parse errors have no recovery path. It
// wraps with github.com/pkg/errors so a %+v format on a propagated error
// prints the Go call stack where it was raised, in addition to the WAT
// source Context.
type ParseError struct {
	Kind    Kind
	Context Context
	Message string
	cause   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Context, e.Kind, e.Message)
}

func (e *ParseError) Unwrap() error { return e.cause }

// NewParseError builds a fatal ParseError at ctx, stack-decorated via
// pkg/errors so callers that print "%+v" see where it originated.
func NewParseError(ctx Context, kind Kind, format string, args ...interface{}) *ParseError {
	msg := fmt.Sprintf(format, args...)
	return &ParseError{
		Kind:    kind,
		Context: ctx,
		Message: msg,
		cause:   errors.WithStack(fmt.Errorf("%s", msg)),
	}
}
