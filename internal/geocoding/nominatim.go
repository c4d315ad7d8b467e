package geocoding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/UnknownOlympus/locator/internal/models"
	"golang.org/x/time/rate"
)

// Endpoints of the Nominatim-compatible reverse geocoding services.
const (
	NominatimBaseURL = "https://nominatim.openstreetmap.org/reverse"
	MapsCoBaseURL    = "https://geocode.maps.co/reverse"
)

// DefaultUserAgent identifies the service to providers. Nominatim usage policy requires it.
const DefaultUserAgent = "Locator-Service/1.0 (https://github.com/UnknownOlympus/locator)"

// NominatimProvider reverse geocodes through a Nominatim-compatible API.
// Both the public OpenStreetMap instance and geocode.maps.co speak this protocol.
type NominatimProvider struct {
	client    HTTPClient    // HTTP client for making requests
	name      string        // Provider name used in errors and logs
	baseURL   string        // Base URL of the reverse endpoint
	apiKey    string        // API key, empty for keyless instances
	userAgent string        // userAgent is required by Nominatim usage policy
	log       *slog.Logger  // Logger for logging operations
	limiter   *rate.Limiter // Client-side rate limiter
}

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// NominatimOptions configures a NominatimProvider.
type NominatimOptions struct {
	Name      string        // Name is the provider name reported in errors, defaults to "nominatim".
	BaseURL   string        // BaseURL of the reverse endpoint, defaults to NominatimBaseURL.
	APIKey    string        // APIKey is sent as the api_key query parameter when set.
	UserAgent string        // UserAgent defaults to DefaultUserAgent.
	Limiter   *rate.Limiter // Limiter defaults to one request per second.
}

// nominatimResponse represents the JSON response of the reverse endpoint.
type nominatimResponse struct {
	DisplayName string            `json:"display_name"`
	Address     *nominatimAddress `json:"address"`
	Error       json.RawMessage   `json:"error"`
}

type nominatimAddress struct {
	County        string `json:"county"`
	Neighbourhood string `json:"neighbourhood"`
	State         string `json:"state"`
	Road          string `json:"road"`
}

// NewNominatimProvider creates a provider for the public OpenStreetMap Nominatim API.
func NewNominatimProvider(rateLimit int, timeout time.Duration, log *slog.Logger) *NominatimProvider {
	return NewNominatimProviderWithClient(&http.Client{Timeout: timeout}, NominatimOptions{
		Name:    string(ProviderTypeNominatim),
		BaseURL: NominatimBaseURL,
		Limiter: newLimiter(rateLimit),
	}, log)
}

// NewMapsCoProvider creates a provider for geocode.maps.co, which requires an API key.
func NewMapsCoProvider(apiKey string, rateLimit int, timeout time.Duration, log *slog.Logger) *NominatimProvider {
	return NewNominatimProviderWithClient(&http.Client{Timeout: timeout}, NominatimOptions{
		Name:    string(ProviderTypeMapsCo),
		BaseURL: MapsCoBaseURL,
		APIKey:  apiKey,
		Limiter: newLimiter(rateLimit),
	}, log)
}

// NewNominatimProviderWithClient creates a provider with a custom HTTP client.
// Useful for testing with mocked HTTP clients.
func NewNominatimProviderWithClient(client HTTPClient, opts NominatimOptions, log *slog.Logger) *NominatimProvider {
	if opts.Name == "" {
		opts.Name = string(ProviderTypeNominatim)
	}
	if opts.BaseURL == "" {
		opts.BaseURL = NominatimBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Limiter == nil {
		opts.Limiter = newLimiter(1)
	}

	return &NominatimProvider{
		client:    client,
		name:      opts.Name,
		baseURL:   opts.BaseURL,
		apiKey:    opts.APIKey,
		userAgent: opts.UserAgent,
		log:       log,
		limiter:   opts.Limiter,
	}
}

func newLimiter(perSecond int) *rate.Limiter {
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}

	return rate.NewLimiter(rate.Limit(perSecond), perSecond)
}

// ReverseGeocode converts coordinates into an address with a single request.
// Failures are returned as *Error; nothing is retried.
func (np *NominatimProvider) ReverseGeocode(ctx context.Context, coords models.Coordinates) (*models.Address, error) {
	if err := np.limiter.Wait(ctx); err != nil {
		return nil, transportError(np.name, fmt.Errorf("rate limit exceeded: %w", err))
	}

	np.log.DebugContext(ctx, "Reverse geocoding", "provider", np.name,
		"lat", coords.Latitude, "lon", coords.Longitude)

	reqURL, err := url.Parse(np.baseURL)
	if err != nil {
		return nil, transportError(np.name, fmt.Errorf("failed to parse base URL: %w", err))
	}

	query := reqURL.Query()
	query.Set("lat", strconv.FormatFloat(coords.Latitude, 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(coords.Longitude, 'f', -1, 64))
	query.Set("format", "jsonv2")
	query.Set("addressdetails", "1")
	if np.apiKey != "" {
		query.Set("api_key", np.apiKey)
	}
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, transportError(np.name, fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("User-Agent", np.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := np.client.Do(req)
	if err != nil {
		return nil, transportError(np.name, fmt.Errorf("failed to execute reverse geocoding request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		np.log.ErrorContext(ctx, "Reverse geocoding API error",
			"provider", np.name, "status", resp.StatusCode, "body", string(body))

		cause := fmt.Errorf("%s API returned status %d: %s", np.name, resp.StatusCode, string(body))
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			cause = fmt.Errorf("%w: %w", ErrUnauthorized, cause)
		}
		return nil, serviceError(np.name, resp.StatusCode, cause)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(np.name, fmt.Errorf("failed to read response body: %w", err))
	}

	np.log.DebugContext(ctx, "Reverse geocoding raw response", "provider", np.name, "body", string(body))

	if len(bytes.TrimSpace(body)) == 0 {
		return nil, parseError(np.name, ErrEmptyResponse)
	}

	var result nominatimResponse
	if err = json.Unmarshal(body, &result); err != nil {
		np.log.ErrorContext(ctx, "Failed to parse reverse geocoding response",
			"provider", np.name, "error", err, "body", string(body))
		return nil, parseError(np.name, fmt.Errorf("failed to decode %s response: %w", np.name, err))
	}

	if msg, ok := errorMessage(result.Error); ok {
		return nil, serviceError(np.name, resp.StatusCode, fmt.Errorf("%w: %s", ErrNoResult, msg))
	}

	if result.Address == nil {
		return nil, parseError(np.name, ErrNoAddress)
	}

	return &models.Address{
		Locality:      result.Address.County,
		Neighbourhood: result.Address.Neighbourhood,
		Region:        result.Address.State,
		Road:          result.Address.Road,
		DisplayName:   result.DisplayName,
	}, nil
}

// errorMessage extracts the text of an "error" member, which Nominatim sends either as a
// plain string or as an object with a message.
func errorMessage(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", false
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text, true
	}

	var detail struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &detail); err == nil && detail.Message != "" {
		return detail.Message, true
	}

	return string(raw), true
}
