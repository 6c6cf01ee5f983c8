package repository

import (
	"fmt"

	"github.com/go-faster/errors"
)

// Kind is a sentinel naming a category of repository failure.
type Kind interface {
	error
	isKind()
}

type kind struct{ s string }

func (k kind) Error() string { return k.s }
func (k kind) isKind()       {}

// NewKind creates a new error kind.
func NewKind(name string) Kind { return kind{s: name} }

var (
	// ErrConflict is reported when storage rejects a write because a
	// uniqueness or integrity constraint would be violated.
	ErrConflict = NewKind("STORAGE_CONFLICT")
	// ErrInvalid is reported when an entity fails its own validation on save.
	ErrInvalid = NewKind("INVALID_ENTITY")
)

// Error carries a kind, the operation that failed and the underlying cause.
// errors.Is matches both the kind and anything in the cause chain.
type Error struct {
	kind Kind
	op   string
	err  error
}

// Conflict wraps a storage cause as ErrConflict.
func Conflict(op string, cause error) *Error {
	return &Error{kind: ErrConflict, op: op, err: cause}
}

// Invalid wraps a validation cause as ErrInvalid.
func Invalid(op string, cause error) *Error {
	return &Error{kind: ErrInvalid, op: op, err: cause}
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.err != nil:
		return fmt.Sprintf("%s: %s: %v", e.op, e.kind, e.err)
	default:
		return fmt.Sprintf("%s: %s", e.op, e.kind)
	}
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error { return e.err }

// Is matches the kind sentinel or the wrapped cause.
func (e *Error) Is(target error) bool {
	if e == nil || target == nil {
		return e == nil && target == nil
	}
	if e.kind != nil && errors.Is(e.kind, target) {
		return true
	}
	return e.err != nil && errors.Is(e.err, target)
}

// Kind returns the error kind.
func (e *Error) Kind() Kind { return e.kind }

// Op returns the failed operation.
func (e *Error) Op() string { return e.op }

// IsConflict reports whether err is a storage conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsInvalid reports whether err is an entity validation failure.
func IsInvalid(err error) bool {
	return errors.Is(err, ErrInvalid)
}
