package core

// error_messages.go maps failures to messages an office user can act on.
//
// # Error Codes Reference
//
// Codes are grouped by category. Typed failures are matched with errors.Is
// against the package sentinels; storage errors that arrive as plain driver
// text are matched by substring.
//
// # Schema Errors (SCH001-SCH099)
//
//	SCH001 - Table not found: no table of that name is registered
//	SCH002 - Schema drift: sheet column count differs from the schema
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Type mismatch: a value failed its field's type check
//	VAL002 - Parse error: a JSON cell could not be decoded
//
// # Record Errors (REC001-REC099)
//
//	REC001 - Not found: no record with that id
//	REC002 - Duplicate key: two rows share one key
//	REC003 - Form write: forms only accept submissions
//
// # Attendance Errors (ATT001-ATT099)
//
//	ATT001 - Unknown day status
//	ATT002 - Unrecognized A/B day letter
//	ATT003 - Consistency violation: references or matchings disagree
//	ATT004 - Invalid mod slot
//
// # Dispatcher Errors (RPC001-RPC099)
//
//	RPC001 - Unknown command or verb
//	RPC002 - Bad argument
//	RPC003 - Busy: another operation holds the store
//
// # Storage Errors (DB001-DB099)
//
//	DB001 - Connection refused
//	DB002 - Connection reset
//	DB003 - Timeout
//	DB004 - Deadlock
//
// # Default Error (ERR000)
//
// Fallback when nothing matches. Check the server log for the original error.

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// kindMessage maps a sentinel error to its user message.
type kindMessage struct {
	kind error
	msg  UserMessage
}

// kindMessages is checked first, in order, with errors.Is.
var kindMessages = []kindMessage{
	{ErrSchemaNotFound, UserMessage{
		Message: "Table not found",
		Action:  "Verify the table name is correct",
		Code:    "SCH001",
	}},
	{ErrSchemaDrift, UserMessage{
		Message: "The sheet's columns no longer match the table definition",
		Action:  "Rebuild the table headers or restore the missing columns",
		Code:    "SCH002",
	}},
	{ErrTypeMismatch, UserMessage{
		Message: "A value has the wrong type for its field",
		Action:  "Check the field types of this table",
		Code:    "VAL001",
	}},
	{ErrParse, UserMessage{
		Message: "A stored value could not be read",
		Action:  "Fix the malformed cell in the sheet",
		Code:    "VAL002",
	}},
	{ErrNotFound, UserMessage{
		Message: "Record not found",
		Action:  "Reload the table; the record may have been deleted",
		Code:    "REC001",
	}},
	{ErrDuplicateKey, UserMessage{
		Message: "Two rows share the same id",
		Action:  "Remove the duplicate row from the sheet",
		Code:    "REC002",
	}},
	{ErrFormWriteForbidden, UserMessage{
		Message: "Form tables only accept submissions",
		Action:  "Submit through the form instead",
		Code:    "REC003",
	}},
	{ErrUnknownDayStatus, UserMessage{
		Message: "An attendance day has an unknown status",
		Action:  "Use one of ignore, doit, isdone, doreset, isreset",
		Code:    "ATT001",
	}},
	{ErrUnrecognizedDayLetter, UserMessage{
		Message: "An attendance day is neither an A nor a B day",
		Action:  "Set the day's letter to A or B",
		Code:    "ATT002",
	}},
	{ErrConsistencyViolation, UserMessage{
		Message: "The attendance data is inconsistent",
		Action:  "Fix the reported matching or log entry and try again",
		Code:    "ATT003",
	}},
	{ErrInvalidModSlot, UserMessage{
		Message: "Invalid mod",
		Action:  "Mods run from 1A to 10A and 1B to 10B",
		Code:    "ATT004",
	}},
	{ErrUnknownCommand, UserMessage{
		Message: "Unknown command",
		Action:  "Check the request path",
		Code:    "RPC001",
	}},
	{ErrBadArgument, UserMessage{
		Message: "Invalid request argument",
		Action:  "Check the request payload",
		Code:    "RPC002",
	}},
	{ErrBusy, UserMessage{
		Message: "Another operation is in progress",
		Action:  "Please wait a moment and try again",
		Code:    "RPC003",
	}},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps storage error text (case-insensitive) to user messages.
// The first matching pattern wins.
var errorPatterns = []errorPattern{
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to the data store",
			Action:  "Please try again in a few moments",
			Code:    "DB001",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Data store connection was interrupted",
			Action:  "Please try again",
			Code:    "DB002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Please try again later",
			Code:    "DB003",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Please try again later",
			Code:    "DB003",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Data store was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB004",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Sentinel kinds are checked first, then storage text patterns. If nothing
// matches, a generic fallback with code ERR000 is returned.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, km := range kindMessages {
		if errors.Is(err, km.kind) {
			return km.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific code rather than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-friendly message.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
