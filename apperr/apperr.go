// Package apperr is the error taxonomy shared by the repo and the HTTP
// layer. Expected outcomes (validation, not-found, conflict) carry a
// machine-checkable kind so callers can map them without string matching;
// everything else is internal.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindInternal   Kind = "internal"
)

// FieldError is one violated input field. Validation failures always carry
// the complete list, never just the first violation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	Err     error // wrapped cause, internal only
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the kind; unclassified errors are internal.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// FieldsOf returns the violation list of a validation error, nil otherwise.
func FieldsOf(err error) []FieldError {
	var ae *Error
	if errors.As(err, &ae) && ae.Kind == KindValidation {
		return ae.Fields
	}
	return nil
}

func Validation(fields []FieldError) error {
	return &Error{Kind: KindValidation, Message: "validation failed", Fields: fields}
}

func NotFound(entity string) error {
	return &Error{Kind: KindNotFound, Message: entity + " not found"}
}

func Conflict(msg string) error {
	return &Error{Kind: KindConflict, Message: msg}
}

func Conflictf(format string, args ...any) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func Internal(msg string, err error) error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}
