package errors

import (
	"errors"
)

// Sentinels matched by handlers with errors.Is. Anything else is a 500.
var (
	// ErrNotFound indicates a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrAccessDenied indicates the user doesn't have permission
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidInput indicates invalid input data
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates missing or invalid authentication
	ErrUnauthorized = errors.New("unauthorized")

	// ErrConflict indicates a conflict with existing data
	ErrConflict = errors.New("conflict")
)

// Wrap attaches a user-facing message to a sentinel. The message is what
// handlers render, the sentinel is what they match on.
func Wrap(sentinel error, message string) error {
	return &DetailError{Detail: message, Kind: sentinel}
}

// DetailError carries the text returned to API clients.
type DetailError struct {
	Detail string
	Kind   error
}

func (e *DetailError) Error() string {
	return e.Detail
}

func (e *DetailError) Unwrap() error {
	return e.Kind
}

// Detail returns the client-facing message of err when one was attached.
func Detail(err error) (string, bool) {
	var de *DetailError
	if errors.As(err, &de) {
		return de.Detail, true
	}
	return "", false
}
