// Package aushapeerr defines the error taxonomy shared by every layer of
// the converter: a small Kind enum plus an Error type that wraps an
// underlying cause with github.com/pkg/errors, so callers retain a stack
// trace while still being able to switch on Kind.
package aushapeerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies why an operation failed. Kinds 1-3 and 8 are sticky on
// a Converter (every later call fails the same way); kinds 4-7 are
// recovered at the event boundary (see internal/convbuf).
type Kind int

const (
	// InvalidArgument: a public entry point received a contract violation.
	InvalidArgument Kind = iota + 1
	// InvalidState: called in the wrong lifecycle phase.
	InvalidState
	// AllocationFailure: a grow/append/copy failed.
	AllocationFailure
	// ParserFailure: the underlying log parser rejected input or returned
	// unexpected results.
	ParserFailure
	// InvalidExecve: the execve aggregator rejected a record.
	InvalidExecve
	// InvalidPath: the path aggregator found a missing/duplicate index or
	// malformed item=.
	InvalidPath
	// RepeatedRecord: a single/unique collector received a duplicate type.
	RepeatedRecord
	// OutputWriteFailure: the sink's write failed terminally.
	OutputWriteFailure
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid argument"
	case InvalidState:
		return "invalid state"
	case AllocationFailure:
		return "allocation failure"
	case ParserFailure:
		return "parser failure"
	case InvalidExecve:
		return "Invalid execve record sequence encountered"
	case InvalidPath:
		return "invalid path record sequence encountered"
	case RepeatedRecord:
		return "repeated record"
	case OutputWriteFailure:
		return "output write failure"
	default:
		return fmt.Sprintf("unknown error kind %d", int(k))
	}
}

// Sticky reports whether errors of this kind are terminal for the
// Converter that produced them, rather than recoverable at the event
// boundary.
func (k Kind) Sticky() bool {
	switch k {
	case InvalidArgument, InvalidState, AllocationFailure, OutputWriteFailure:
		return true
	default:
		return false
	}
}

// Error pairs a Kind with a wrapped cause.
type Error struct {
	Kind  Kind
	cause error
}

func (e *Error) Error() string {
	if e.cause == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.cause)
}

// Unwrap exposes the wrapped cause to errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.cause
}

// New builds a Kind-tagged error from a message, in the style of
// errors.New, with a stack trace attached.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, cause: errors.New(message)}
}

// Newf is New with fmt.Sprintf-style formatting.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, cause: errors.Errorf(format, args...)}
}

// Wrap attaches kind and a stack trace to an existing error, in the style
// of github.com/pkg/errors.Wrap. Returns nil if err is nil.
func Wrap(err error, kind Kind, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, cause: errors.Wrap(err, message)}
}

// KindOf extracts the Kind of err if it is (or wraps) an *Error, and
// reports whether one was found.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
