// Package errs classifies pipeline failures so callers can map them to exit
// codes and HTTP statuses without string matching.
package errs

import (
	"errors"
	"fmt"
)

type Kind string

const (
	Config     Kind = "config"
	Network    Kind = "network"
	Validation Kind = "validation"
	DataFormat Kind = "data_format"
	IO         Kind = "io"
)

// Error carries a failure class, the operation that produced it, and the
// underlying cause (optional).
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New wraps err with a kind and operation name.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Newf builds a classified error from a format string.
func Newf(kind Kind, op string, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of the outermost classified error in err's chain,
// or "" when no *Error is present.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err's chain contains a classified error of kind k.
func IsKind(err error, k Kind) bool {
	return KindOf(err) == k
}
