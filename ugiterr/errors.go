// Package ugiterr defines the closed error taxonomy from spec.md §7:
// IoError, NotFound, Corrupt, UnknownName and InvalidInput. Every L1-L6
// package returns these (wrapped with github.com/pkg/errors for context
// and a stack trace) instead of panicking.
//
// The teacher codebase (noms) takes the opposite approach in its `d`
// package: d.Chk.NoError(err) panics on any unexpected error, and
// d.Exp.* panics a typed d.UsageError that only gets turned back into a
// clean error at the `d.Try` boundary around main. spec.md §9 calls
// this out by name as the thing to redesign away from; ugit keeps a
// trimmed d package (see package d) for the CLI's own top-level panic
// recovery, but the engine itself never uses it.
package ugiterr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind is one of the five taxonomy members from spec.md §7.
type Kind int

const (
	// IoError wraps an underlying filesystem failure.
	IoError Kind = iota
	// NotFound means an object or ref was required but absent.
	NotFound
	// Corrupt means stored bytes could not be interpreted as their
	// claimed kind: unreadable header, kind mismatch, malformed tree
	// line, non-hex ref contents.
	Corrupt
	// UnknownName means the name resolver exhausted every strategy.
	UnknownName
	// InvalidInput means the caller supplied something the format
	// cannot represent, e.g. a tree entry name containing whitespace.
	InvalidInput
)

func (k Kind) String() string {
	switch k {
	case IoError:
		return "IoError"
	case NotFound:
		return "NotFound"
	case Corrupt:
		return "Corrupt"
	case UnknownName:
		return "UnknownName"
	case InvalidInput:
		return "InvalidInput"
	default:
		return "Unknown"
	}
}

// Error is a taxonomy member plus context. It implements error and
// supports errors.Cause/errors.Unwrap so github.com/pkg/errors's
// wrapping helpers keep working across it.
type Error struct {
	kind    Kind
	msg     string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.kind, e.msg, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.msg)
}

// Unwrap exposes the wrapped cause to errors.Is/errors.As and to
// github.com/pkg/errors's Cause().
func (e *Error) Unwrap() error { return e.cause }

// Cause implements the github.com/pkg/errors causer interface.
func (e *Error) Cause() error { return e.cause }

// Kind returns the taxonomy member of e.
func (e *Error) Kind() Kind { return e.kind }

// New builds a taxonomy error with a formatted message and no cause.
func New(kind Kind, format string, args ...interface{}) error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Wrap builds a taxonomy error that carries cause as context. If cause
// is nil, Wrap returns nil, so call sites can write
// `return ugiterr.Wrap(ugiterr.IoError, err, "writing %s", path)` right
// after an `if err != nil` is known to be unnecessary-but-harmless.
func Wrap(kind Kind, cause error, format string, args ...interface{}) error {
	if cause == nil {
		return nil
	}
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...), cause: errors.WithStack(cause)}
}

// Is reports whether err is (or wraps) a taxonomy error of the given
// kind.
func Is(err error, kind Kind) bool {
	for err != nil {
		if te, ok := err.(*Error); ok {
			return te.kind == kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
