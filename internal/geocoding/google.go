package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/UnknownOlympus/locator/internal/models"
	"googlemaps.github.io/maps"
)

// GoogleProvider is a struct that holds the client for Google Maps API
// and a logger for logging purposes. It is used to interact with the
// Google Maps reverse geocoding service.
type GoogleProvider struct {
	client GoogleAPIClient // client is the Google Maps API client
	log    *slog.Logger    // log is the logger for logging operations
}

type GoogleAPIClient interface {
	ReverseGeocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// NewGoogleProvider wraps a Google Maps client.
func NewGoogleProvider(client GoogleAPIClient, log *slog.Logger) *GoogleProvider {
	return &GoogleProvider{client: client, log: log}
}

// ReverseGeocode looks up the address at coords using the Google Maps Geocoding API.
// Attributes are taken from the first result's address components.
func (gp *GoogleProvider) ReverseGeocode(ctx context.Context, coords models.Coordinates) (*models.Address, error) {
	name := string(ProviderTypeGoogle)
	gp.log.DebugContext(ctx, "Reverse geocoding using Google Maps", "lat", coords.Latitude, "lon", coords.Longitude)

	req := maps.GeocodingRequest{LatLng: &maps.LatLng{Lat: coords.Latitude, Lng: coords.Longitude}}
	results, err := gp.client.ReverseGeocode(ctx, &req)
	if err != nil {
		return nil, classifyGoogleError(err)
	}

	if len(results) == 0 {
		return nil, serviceError(name, 0, ErrNoResult)
	}

	result := results[0]
	address := &models.Address{DisplayName: result.FormattedAddress}
	for _, component := range result.AddressComponents {
		switch {
		case hasType(component, "administrative_area_level_1"):
			address.Region = component.LongName
		case hasType(component, "administrative_area_level_2"):
			address.Locality = component.LongName
		case hasType(component, "neighborhood"), hasType(component, "sublocality"):
			if address.Neighbourhood == "" {
				address.Neighbourhood = component.LongName
			}
		case hasType(component, "route"):
			address.Road = component.LongName
		}
	}

	return address, nil
}

func hasType(component maps.AddressComponent, kind string) bool {
	return slices.Contains(component.Types, kind)
}

// maxStatusBody caps how much of an error response is kept for logging.
const maxStatusBody = 512

// HTTPStatusError is a non-2xx response from the Google Maps API.
type HTTPStatusError struct {
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("google API returned status %d: %s", e.StatusCode, e.Body)
}

// statusTransport fails non-2xx responses. The maps client decodes any body it gets,
// so without it an HTML error page would surface as a JSON syntax error.
type statusTransport struct {
	base http.RoundTripper
}

func (t statusTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxStatusBody))
		return nil, &HTTPStatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return resp, nil
}

// NewGoogleHTTPClient returns the HTTP client handed to the maps client. A zero timeout
// means no timeout.
func NewGoogleHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: statusTransport{base: http.DefaultTransport},
	}
}

// classifyGoogleError sorts client errors: HTTP error statuses and non-OK API statuses
// are service errors, failed round trips are transport errors, and undecodable bodies
// are parse errors.
func classifyGoogleError(err error) *Error {
	name := string(ProviderTypeGoogle)
	wrapped := fmt.Errorf("failed to reverse geocode: %w", err)

	var (
		statusErr *HTTPStatusError
		urlErr    *url.Error
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &statusErr):
		if statusErr.StatusCode == http.StatusUnauthorized || statusErr.StatusCode == http.StatusForbidden {
			wrapped = fmt.Errorf("%w: %w", ErrUnauthorized, wrapped)
		}
		return serviceError(name, statusErr.StatusCode, wrapped)
	case errors.As(err, &urlErr), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return transportError(name, wrapped)
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		return parseError(name, wrapped)
	default:
		return serviceError(name, 0, wrapped)
	}
}
