// Package apperr defines the error taxonomy shared by the repository,
// service and handler layers.  Every failure carries a Kind so that the
// HTTP layer can choose a status code without string matching, plus the
// operation and entity it is attributable to.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error.
type Kind int

const (
	// KindValidation marks a missing or malformed input.
	KindValidation Kind = iota + 1
	// KindConflict marks an occupied coordinate, a duplicate booking or a
	// stale write detected by an optimistic check.
	KindConflict
	// KindNotFound marks an unknown identifier.
	KindNotFound
	// KindDependency marks an unavailable collaborator (store, broker, clock).
	KindDependency
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindDependency:
		return "dependency"
	}
	return "unknown"
}

// Error is the concrete error type returned by the engine.
type Error struct {
	Kind   Kind
	Op     string // operation, e.g. "moveWorkstation"
	Entity string // entity kind, e.g. "workstation"
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	s := e.Msg
	if e.Entity != "" {
		s = e.Entity + ": " + s
	}
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Err }

// Validation builds a KindValidation error.
func Validation(op, entity, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Op: op, Entity: entity, Msg: fmt.Sprintf(format, args...)}
}

// Conflict builds a KindConflict error.
func Conflict(op, entity, format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Op: op, Entity: entity, Msg: fmt.Sprintf(format, args...)}
}

// NotFound builds a KindNotFound error for the given id.
func NotFound(op, entity string, id any) *Error {
	return &Error{Kind: KindNotFound, Op: op, Entity: entity, Msg: fmt.Sprintf("id %v not found", id)}
}

// Dependency wraps a collaborator failure.
func Dependency(op, entity string, err error) *Error {
	return &Error{Kind: KindDependency, Op: op, Entity: entity, Msg: "dependency unavailable", Err: err}
}

// KindOf reports the Kind of err, or 0 when err does not carry one.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func IsValidation(err error) bool { return KindOf(err) == KindValidation }
func IsConflict(err error) bool   { return KindOf(err) == KindConflict }
func IsNotFound(err error) bool   { return KindOf(err) == KindNotFound }
func IsDependency(err error) bool { return KindOf(err) == KindDependency }

// WithOp returns a copy of err re-attributed to op when err is an *Error.
// Other errors are wrapped as dependency failures so nothing leaves the
// engine without a Kind.
func WithOp(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		cp := *e
		cp.Op = op
		return &cp
	}
	return Dependency(op, "", err)
}
