package core

import (
	"errors"
	"fmt"
)

var (
	ErrSchemaNotFound        = errors.New("table not found")
	ErrSchemaDrift           = errors.New("schema drift")
	ErrTypeMismatch          = errors.New("type mismatch")
	ErrParse                 = errors.New("parse error")
	ErrNotFound              = errors.New("primary key not found")
	ErrDuplicateKey          = errors.New("duplicate primary key")
	ErrFormWriteForbidden    = errors.New("write forbidden on form table")
	ErrUnknownDayStatus      = errors.New("unknown day status")
	ErrUnrecognizedDayLetter = errors.New("unrecognized day letter")
	ErrConsistencyViolation  = errors.New("consistency violation")
	ErrInvalidModSlot        = errors.New("invalid mod slot")
	ErrUnknownCommand        = errors.New("unknown command")
	ErrBadArgument           = errors.New("bad argument")
	ErrBusy                  = errors.New("store busy")
)

// Error wraps a sentinel error with additional context.
type Error struct {
	err     error  // The underlying sentinel error
	context string // Additional error context
}

func (e *Error) Error() string {
	if e.context == "" {
		return e.err.Error()
	}
	return fmt.Sprintf("%s: %s", e.err.Error(), e.context)
}

// Unwrap implements the errors.Unwrap interface for compatibility with errors.Is/As.
func (e *Error) Unwrap() error {
	return e.err
}

// Kind returns the sentinel the error wraps.
func (e *Error) Kind() error {
	return e.err
}

// newError creates a new error of the given kind with context.
func newError(kind error, format string, args ...any) *Error {
	return &Error{
		err:     kind,
		context: fmt.Sprintf(format, args...),
	}
}
