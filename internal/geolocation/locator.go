// Package geolocation describes where a resolution gets its coordinate from.
//
// Positions are acquired by the client device. The service only sees the outcome of that
// acquisition: either a coordinate or one of the four failure reasons of the browser
// geolocation API.
package geolocation

import (
	"context"
	"errors"
	"fmt"

	"github.com/UnknownOlympus/locator/internal/models"
)

// Locator yields the current position of the device driving a resolution.
type Locator interface {
	CurrentPosition(ctx context.Context) (models.Coordinates, error)
}

// Reason enumerates why a position could not be acquired.
type Reason string

const (
	ReasonPermissionDenied    Reason = "permission-denied"
	ReasonPositionUnavailable Reason = "position-unavailable"
	ReasonTimeout             Reason = "timeout"
	ReasonUnknown             Reason = "unknown"
)

// Browser geolocation API error codes (GeolocationPositionError.code).
const (
	CodePermissionDenied    = 1
	CodePositionUnavailable = 2
	CodeTimeout             = 3
)

// ErrInvalidCoordinates is wrapped when a reported point is outside the WGS84 ranges.
var ErrInvalidCoordinates = errors.New("coordinates out of range")

// AcquisitionError is returned by a Locator that failed to produce a position.
type AcquisitionError struct {
	Reason  Reason
	Message string // Message is the platform-supplied detail, if any.
	Err     error
}

func (e *AcquisitionError) Error() string {
	msg := "position acquisition failed: " + string(e.Reason)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}

	return msg
}

func (e *AcquisitionError) Unwrap() error {
	return e.Err
}

// ReasonFromCode maps a browser geolocation error code to a Reason.
// Codes outside the three defined by the platform are reported as unknown.
func ReasonFromCode(code int) Reason {
	switch code {
	case CodePermissionDenied:
		return ReasonPermissionDenied
	case CodePositionUnavailable:
		return ReasonPositionUnavailable
	case CodeTimeout:
		return ReasonTimeout
	default:
		return ReasonUnknown
	}
}

// Classify returns the acquisition reason carried by err.
// A context deadline counts as a timeout; anything else unrecognised is unknown.
func Classify(err error) Reason {
	var acqErr *AcquisitionError
	switch {
	case errors.As(err, &acqErr):
		return acqErr.Reason
	case errors.Is(err, context.DeadlineExceeded):
		return ReasonTimeout
	default:
		return ReasonUnknown
	}
}
