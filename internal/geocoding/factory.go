package geocoding

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"googlemaps.github.io/maps"
)

// ProviderType represents the type of reverse geocoding provider.
type ProviderType string

const (
	// ProviderTypeMapsCo represents the geocode.maps.co API.
	ProviderTypeMapsCo ProviderType = "mapsco"
	// ProviderTypeNominatim represents OpenStreetMap Nominatim.
	ProviderTypeNominatim ProviderType = "nominatim"
	// ProviderTypeGoogle represents Google Maps geocoding provider.
	ProviderTypeGoogle ProviderType = "google"
)

// ProviderConfig holds configuration for creating a reverse geocoding provider.
type ProviderConfig struct {
	Type      ProviderType  // Type of provider to create
	APIKey    string        // API key (required by maps.co and Google)
	BaseURL   string        // BaseURL overrides the endpoint of Nominatim-compatible providers
	RateLimit int           // Rate limit for requests per second
	Timeout   time.Duration // Timeout of the underlying HTTP client
	Logger    *slog.Logger  // Logger for the provider
}

// NewProvider creates a reverse geocoding provider based on the provided configuration.
//
// Supported provider types:
// - "mapsco": geocode.maps.co (requires API key)
// - "nominatim": OpenStreetMap Nominatim API (free, no API key required)
// - "google": Google Maps Geocoding API (requires API key)
//
// Returns an error if the provider type is unsupported or if provider creation fails.
func NewProvider(config ProviderConfig) (Provider, error) {
	switch config.Type {
	case ProviderTypeMapsCo:
		return newMapsCoProvider(config)
	case ProviderTypeNominatim:
		return newNominatimProvider(config)
	case ProviderTypeGoogle:
		return newGoogleProvider(config)
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", config.Type)
	}
}

func newMapsCoProvider(config ProviderConfig) (Provider, error) {
	if config.APIKey == "" {
		return nil, errors.New("API key is required for maps.co provider")
	}

	provider := NewMapsCoProvider(config.APIKey, config.RateLimit, config.Timeout, config.Logger)
	if config.BaseURL != "" {
		provider.baseURL = config.BaseURL
	}

	return provider, nil
}

// newNominatimProvider creates a Nominatim provider. A key is passed through when set,
// for self-hosted instances behind an authenticating proxy.
func newNominatimProvider(config ProviderConfig) (Provider, error) {
	if config.RateLimit == 0 {
		config.RateLimit = 1
		config.Logger.Warn("Rate limit for Nominatim API not set, set a default value", "value", config.RateLimit)
	}

	provider := NewNominatimProvider(config.RateLimit, config.Timeout, config.Logger)
	provider.apiKey = config.APIKey
	if config.BaseURL != "" {
		provider.baseURL = config.BaseURL
	}

	return provider, nil
}

// newGoogleProvider creates a Google Maps reverse geocoding provider.
func newGoogleProvider(config ProviderConfig) (Provider, error) {
	if config.APIKey == "" {
		return nil, errors.New("API key is required for Google provider")
	}

	clientOpts := []maps.ClientOption{
		maps.WithAPIKey(config.APIKey),
	}

	if config.RateLimit > 0 {
		clientOpts = append(clientOpts, maps.WithRateLimit(config.RateLimit))
	}

	clientOpts = append(clientOpts, maps.WithHTTPClient(NewGoogleHTTPClient(config.Timeout)))

	client, err := maps.NewClient(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
	}

	return NewGoogleProvider(client, config.Logger), nil
}
