package gowick

import (
	"context"
	"errors"
	"fmt"
)

// ============================================================
// Errors
// ============================================================

// ErrorClass groups failures by how a caller should react to them.
type ErrorClass int

const (
	// ClassUnknown is reported for errors that did not originate here.
	ClassUnknown ErrorClass = iota
	// ClassDeclaration covers orbital-space registration mistakes.
	ClassDeclaration
	// ClassParse covers malformed textual input.
	ClassParse
	// ClassCapability covers requests the engine cannot fulfil.
	ClassCapability
	// ClassState covers misuse of an object in its current state.
	ClassState
)

// String returns the string representation of ErrorClass
func (c ErrorClass) String() string {
	switch c {
	case ClassDeclaration:
		return "declaration"
	case ClassParse:
		return "parse"
	case ClassCapability:
		return "capability"
	case ClassState:
		return "state"
	default:
		return "unknown"
	}
}

var (
	ErrDuplicateSpace   = errors.New("duplicate orbital space")
	ErrUnknownSpace     = errors.New("unknown orbital space")
	ErrParse            = errors.New("parse error")
	ErrRankNotSupported = errors.New("rank not supported")
	ErrInvalidState     = errors.New("invalid state")
)

func classOfSentinel(err error) ErrorClass {
	switch {
	case errors.Is(err, ErrDuplicateSpace), errors.Is(err, ErrUnknownSpace):
		return ClassDeclaration
	case errors.Is(err, ErrParse):
		return ClassParse
	case errors.Is(err, ErrRankNotSupported), errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return ClassCapability
	case errors.Is(err, ErrInvalidState):
		return ClassState
	}
	return ClassUnknown
}

// Error is the error type returned by every fallible operation in the
// package. Err is always one of the package sentinels.
type Error struct {
	Class ErrorClass
	Op    string
	Err   error
	Msg   string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("gowick: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("gowick: %s: %v: %s", e.Op, e.Err, e.Msg)
}

// Unwrap returns the underlying sentinel
func (e *Error) Unwrap() error { return e.Err }

func newError(sentinel error, op, format string, args ...interface{}) *Error {
	return &Error{
		Class: classOfSentinel(sentinel),
		Op:    op,
		Err:   sentinel,
		Msg:   fmt.Sprintf(format, args...),
	}
}

// ClassOf reports the class of err, looking through wrapping.
func ClassOf(err error) ErrorClass {
	if err == nil {
		return ClassUnknown
	}
	var we *Error
	if errors.As(err, &we) {
		return we.Class
	}
	return classOfSentinel(err)
}

func IsDeclaration(err error) bool { return err != nil && ClassOf(err) == ClassDeclaration }
func IsParse(err error) bool       { return err != nil && ClassOf(err) == ClassParse }
func IsCapability(err error) bool  { return err != nil && ClassOf(err) == ClassCapability }
func IsState(err error) bool       { return err != nil && ClassOf(err) == ClassState }
