package service

import (
	"errors"
	"fmt"

	"github.com/UnknownOlympus/locator/internal/geocoding"
	"github.com/UnknownOlympus/locator/internal/geolocation"
)

// Reason classifies why a resolution ended in failure.
type Reason string

const (
	ReasonPermissionDenied    Reason = "permission-denied"
	ReasonPositionUnavailable Reason = "position-unavailable"
	ReasonTimeout             Reason = "timeout"
	ReasonUnknown             Reason = "unknown"
	ReasonTransportError      Reason = "transport-error"
	ReasonServiceError        Reason = "service-error"
	ReasonParseError          Reason = "parse-error"
)

// lookupFailedMessage is shown for every failure past coordinate acquisition.
// The detail is logged instead.
const lookupFailedMessage = "The location lookup failed. Please fill in the address manually."

var userMessages = map[Reason]string{
	ReasonPermissionDenied:    "User denied the request for Geolocation.",
	ReasonPositionUnavailable: "Location information is unavailable.",
	ReasonTimeout:             "The request to get user location timed out.",
	ReasonUnknown:             "An unknown error occurred.",
}

// Failure is the terminal error of a resolution.
type Failure struct {
	Reason Reason
	Err    error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("location resolution failed: %s: %v", f.Reason, f.Err)
	}

	return "location resolution failed: " + string(f.Reason)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Message returns the text to show the user.
func (f *Failure) Message() string {
	if msg, ok := userMessages[f.Reason]; ok {
		return msg
	}

	return lookupFailedMessage
}

// Acquisition reports whether the failure happened while acquiring the coordinate.
func (f *Failure) Acquisition() bool {
	_, ok := userMessages[f.Reason]

	return ok
}

// AsFailure extracts the *Failure from err.
func AsFailure(err error) (*Failure, bool) {
	var failure *Failure
	if errors.As(err, &failure) {
		return failure, true
	}

	return nil, false
}

var acquisitionReasons = map[geolocation.Reason]Reason{
	geolocation.ReasonPermissionDenied:    ReasonPermissionDenied,
	geolocation.ReasonPositionUnavailable: ReasonPositionUnavailable,
	geolocation.ReasonTimeout:             ReasonTimeout,
	geolocation.ReasonUnknown:             ReasonUnknown,
}

func acquisitionFailure(err error) *Failure {
	reason, ok := acquisitionReasons[geolocation.Classify(err)]
	if !ok {
		reason = ReasonUnknown
	}

	return &Failure{Reason: reason, Err: err}
}

// lookupFailure classifies a provider error. Errors a provider did not classify
// are treated as service errors.
func lookupFailure(err error) *Failure {
	kind, _ := geocoding.KindOf(err)

	switch kind {
	case geocoding.KindTransport:
		return &Failure{Reason: ReasonTransportError, Err: err}
	case geocoding.KindParse:
		return &Failure{Reason: ReasonParseError, Err: err}
	default:
		return &Failure{Reason: ReasonServiceError, Err: err}
	}
}
