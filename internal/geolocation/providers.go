package geolocation

import (
	"context"
	"fmt"

	"github.com/UnknownOlympus/locator/internal/models"
)

// Static always reports the same position. Used by the CLI where the operator passes
// the coordinate explicitly.
type Static struct {
	coords models.Coordinates
}

// NewStatic returns a Locator fixed at coords.
func NewStatic(coords models.Coordinates) *Static {
	return &Static{coords: coords}
}

// CurrentPosition returns the fixed position, or position-unavailable if it is out of range.
func (s *Static) CurrentPosition(ctx context.Context) (models.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return models.Coordinates{}, &AcquisitionError{Reason: Classify(err), Err: err}
	}
	if !s.coords.Valid() {
		return models.Coordinates{}, &AcquisitionError{
			Reason: ReasonPositionUnavailable,
			Err:    fmt.Errorf("%w: lat=%f lon=%f", ErrInvalidCoordinates, s.coords.Latitude, s.coords.Longitude),
		}
	}

	return s.coords, nil
}

// Report is the outcome of a client-side acquisition, as posted by the browser.
// Exactly one of Position and Failure is expected to be set.
type Report struct {
	Position *models.Coordinates
	Failure  *ReportedFailure
}

// ReportedFailure mirrors GeolocationPositionError.
type ReportedFailure struct {
	Code    int
	Message string
}

// Reported replays the outcome of a client-side acquisition.
type Reported struct {
	report Report
}

// NewReported returns a Locator that replays report.
func NewReported(report Report) *Reported {
	return &Reported{report: report}
}

// CurrentPosition returns the reported position or converts the reported failure.
func (r *Reported) CurrentPosition(ctx context.Context) (models.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return models.Coordinates{}, &AcquisitionError{Reason: Classify(err), Err: err}
	}

	if r.report.Failure != nil {
		return models.Coordinates{}, &AcquisitionError{
			Reason:  ReasonFromCode(r.report.Failure.Code),
			Message: r.report.Failure.Message,
		}
	}

	if r.report.Position == nil {
		return models.Coordinates{}, &AcquisitionError{Reason: ReasonUnknown, Message: "no position reported"}
	}

	return NewStatic(*r.report.Position).CurrentPosition(ctx)
}
