package geocoding

import (
	"context"

	"github.com/UnknownOlympus/locator/internal/models"
)

// Provider is an interface that defines a method for reverse geocoding a point.
// The ReverseGeocode method takes a context and coordinates as input,
// and returns the address found at that point or a classified *Error.
type Provider interface {
	ReverseGeocode(ctx context.Context, coords models.Coordinates) (*models.Address, error)
}
