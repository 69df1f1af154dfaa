// Package apperror defines the operational error kinds surfaced by the booking engine.
package apperror

import (
	"errors"
	"fmt"
)

// Kind is a stable machine-readable error category
type Kind string

const (
	KindNotFound     Kind = "NotFound"
	KindInvalidSlot  Kind = "InvalidSlot"
	KindSlotTaken    Kind = "SlotTaken"
	KindForbidden    Kind = "Forbidden"
	KindInvalidState Kind = "InvalidState"
	KindValidation   Kind = "Validation"
	KindInternal     Kind = "Internal"
)

// Error carries a Kind, a human message and an optional cause
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// New creates an Error of the given kind
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an Error of the given kind around a cause
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same Kind, so kind sentinels work with errors.Is
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Message == "" {
		return e.Kind == t.Kind
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

// Kind sentinels for errors.Is checks
var (
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrInvalidSlot  = &Error{Kind: KindInvalidSlot}
	ErrSlotTaken    = &Error{Kind: KindSlotTaken}
	ErrForbidden    = &Error{Kind: KindForbidden}
	ErrInvalidState = &Error{Kind: KindInvalidState}
	ErrValidation   = &Error{Kind: KindValidation}
)

// KindOf returns the kind of the first *Error in the chain, or KindInternal
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// MessageOf returns the user-facing message, hiding infrastructure details
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "Something went wrong"
}
