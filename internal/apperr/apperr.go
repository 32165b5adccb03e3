// Package apperr defines the error taxonomy shared by the service and
// store layers. The HTTP boundary maps kinds to status codes; the core
// never formats responses itself.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	// KindNotFound means the referenced item or reservation does not exist.
	KindNotFound Kind = iota
	// KindValidation means the input was malformed.
	KindValidation
	// KindConflict means admitting or debiting would violate the
	// quantity invariant.
	KindConflict
	// KindInvalidState means the operation is not valid for the
	// reservation's current lifecycle state.
	KindInvalidState
	// KindInternal means a data-consistency or infrastructure failure,
	// not a business-rule rejection.
	KindInternal
)

// Error is a kinded error with a client-facing message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// NotFound builds a not-found error.
func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Validation builds a validation error.
func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Conflict builds a quantity-conflict error.
func Conflict(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// InvalidState builds a lifecycle-state error.
func InvalidState(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidState, Message: fmt.Sprintf(format, args...)}
}

// Internal builds an internal consistency error.
func Internal(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInternal, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the kind from err, unwrapping as needed. Errors that
// carry no kind are classified as internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
