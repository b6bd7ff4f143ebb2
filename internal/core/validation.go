package core

// validation.go checks client-supplied records against a table schema before
// any row is written, so a caller sees every problem at once instead of the
// first codec failure.

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ValidationError represents a single validation error for a field.
type ValidationError struct {
	Field   string // Field/column name
	Value   string // The invalid value
	Message string // Human-readable error message
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// ValidationResult contains the result of validating a record.
type ValidationResult struct {
	Valid  bool              // True if all validations passed
	Errors []ValidationError // List of validation errors (empty if Valid)
}

// Err returns nil for a valid result, otherwise an ErrTypeMismatch listing
// every problem.
func (r ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Error()
	}
	return newError(ErrTypeMismatch, "%s", strings.Join(msgs, "; "))
}

// ValidateRecord checks that every field of rec is known to the schema and
// serializes under its field type. Missing fields are allowed; they are
// written blank.
func ValidateRecord(info TableInfo, rec Record) ValidationResult {
	result := ValidationResult{Valid: true}

	names := make([]string, 0, len(rec))
	for name := range rec {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if info.FieldIndex(name) >= 0 || (name == "id" && info.IsForm) {
			continue
		}
		v := rec[name]
		result.Valid = false
		result.Errors = append(result.Errors, ValidationError{
			Field:   name,
			Value:   toText(v),
			Message: fmt.Sprintf("unknown field for table %s", info.Name),
		})
	}

	for _, f := range info.Fields {
		v, ok := rec[f.Name]
		if !ok {
			continue
		}
		if _, err := f.Serialize(v); err != nil {
			result.Valid = false
			msg := err.Error()
			var e *Error
			if errors.As(err, &e) {
				msg = e.context
			}
			result.Errors = append(result.Errors, ValidationError{
				Field:   f.Name,
				Value:   toText(v),
				Message: msg,
			})
		}
	}

	return result
}
