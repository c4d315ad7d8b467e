package geocoding

import (
	"errors"
	"fmt"
)

// ErrorKind tells apart the ways a reverse geocoding request can fail.
type ErrorKind string

const (
	// KindTransport means the request never produced a response (DNS, reset, timeout, cancellation).
	KindTransport ErrorKind = "transport"
	// KindService means the provider answered but reported a failure.
	KindService ErrorKind = "service"
	// KindParse means the response body did not have the expected shape.
	KindParse ErrorKind = "parse"
)

// Common errors wrapped by provider failures.
var (
	ErrEmptyResponse = errors.New("provider returned empty response")
	ErrNoAddress     = errors.New("provider response has no address")
	ErrNoResult      = errors.New("provider found no address for the coordinates")
	ErrUnauthorized  = errors.New("provider rejected the credential")
)

// Error is a classified reverse geocoding failure.
type Error struct {
	Kind       ErrorKind
	Provider   string
	StatusCode int // StatusCode is the HTTP status for service errors, zero otherwise.
	Err        error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s error", e.Provider, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}

	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind carried by err, and false if err is not a classified *Error.
func KindOf(err error) (ErrorKind, bool) {
	var geoErr *Error
	if errors.As(err, &geoErr) {
		return geoErr.Kind, true
	}

	return "", false
}

func transportError(provider string, err error) *Error {
	return &Error{Kind: KindTransport, Provider: provider, Err: err}
}

func serviceError(provider string, status int, err error) *Error {
	return &Error{Kind: KindService, Provider: provider, StatusCode: status, Err: err}
}

func parseError(provider string, err error) *Error {
	return &Error{Kind: KindParse, Provider: provider, Err: err}
}
