package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/locator/internal/geocoding"
	"github.com/UnknownOlympus/locator/internal/geolocation"
	"github.com/UnknownOlympus/locator/internal/matching"
	"github.com/UnknownOlympus/locator/internal/metrics"
	"github.com/UnknownOlympus/locator/internal/models"
)

// errNoLocator is reported as an unknown acquisition failure.
var errNoLocator = errors.New("no locator supplied")

// Resolver turns the current position of a device into form-ready address fields.
// It holds no per-resolution state and is safe for concurrent use.
type Resolver struct {
	log          *slog.Logger       // Logger for logging service activities
	provider     geocoding.Provider // Reverse geocoding provider
	providerName string             // Name of the provider for metrics labeling
	metrics      *metrics.Metrics   // Metrics for tracking service performance
}

// Request describes one resolution.
type Request struct {
	Locator    geolocation.Locator // Locator yields the coordinate to resolve.
	Candidates []string            // Candidates are the allowed region values, in display order.
	Observer   Observer            // Observer is optional.
}

// resolution is the state of a single Resolve call.
type resolution struct {
	state    State
	observer Observer
}

func (r *resolution) enter(state State) {
	r.state = state
	if r.observer != nil {
		r.observer.OnState(state)
	}
}

// NewResolver creates a new instance of Resolver.
// It takes a logger, a reverse geocoding provider, the provider name
// for metrics and metrics for monitoring.
func NewResolver(
	log *slog.Logger,
	provider geocoding.Provider,
	providerName string,
	metrics *metrics.Metrics,
) *Resolver {
	return &Resolver{
		log:          log,
		provider:     provider,
		providerName: providerName,
		metrics:      metrics,
	}
}

// Resolve acquires a coordinate, reverse geocodes it and matches the region name
// against req.Candidates.
//
// Each step runs only after the previous one succeeded, and the first failure ends the
// resolution: the returned error is then always a *Failure. An empty candidate list is
// not a failure; the result simply has no MatchedRegion.
func (rs *Resolver) Resolve(ctx context.Context, req Request) (*models.ResolvedLocation, error) {
	run := &resolution{state: StateIdle, observer: req.Observer}

	rs.metrics.InFlight.Inc()
	defer rs.metrics.InFlight.Dec()

	run.enter(StateAcquiringCoordinate)
	if req.Locator == nil {
		return nil, rs.fail(ctx, run, acquisitionFailure(errNoLocator))
	}

	coords, err := req.Locator.CurrentPosition(ctx)
	if err != nil {
		return nil, rs.fail(ctx, run, acquisitionFailure(err))
	}

	run.enter(StateFetchingAddress)
	rs.log.DebugContext(ctx, "Coordinate acquired", "lat", coords.Latitude, "lon", coords.Longitude)

	startTime := time.Now()
	address, err := rs.provider.ReverseGeocode(ctx, coords)
	duration := time.Since(startTime).Seconds()
	rs.metrics.RequestSeconds.WithLabelValues(rs.providerName).Observe(duration)

	if err == nil && address == nil {
		err = &geocoding.Error{Kind: geocoding.KindParse, Provider: rs.providerName, Err: geocoding.ErrNoAddress}
	}

	if err != nil {
		kind, ok := geocoding.KindOf(err)
		if !ok {
			kind = "unclassified"
		}
		rs.metrics.ProviderErrors.WithLabelValues(rs.providerName, string(kind)).Inc()

		return nil, rs.fail(ctx, run, lookupFailure(err))
	}

	run.enter(StateResolving)

	result := &models.ResolvedLocation{
		Locality:      address.Locality,
		Neighbourhood: address.Neighbourhood,
		Region:        address.Region,
		Road:          address.Road,
		DisplayName:   address.DisplayName,
	}
	region, ok := matching.Select(address.Region, req.Candidates)
	if ok {
		result.MatchedRegion = &region
	} else {
		rs.log.DebugContext(ctx, "No candidates to match region against", "region", address.Region)
	}

	run.enter(StateDone)
	rs.metrics.Resolutions.WithLabelValues("success").Inc()
	rs.log.DebugContext(ctx, "Location resolved",
		"locality", result.Locality,
		"region", address.Region,
		"matched_region", region)

	return result, nil
}

// fail finishes a resolution with failure. The underlying error is logged here
// so that callers only need to show Failure.Message.
func (rs *Resolver) fail(ctx context.Context, run *resolution, failure *Failure) *Failure {
	failedIn := run.state
	run.enter(StateDone)
	rs.metrics.Resolutions.WithLabelValues(string(failure.Reason)).Inc()

	if failure.Acquisition() {
		rs.log.WarnContext(ctx, "Could not acquire coordinate", "reason", failure.Reason, "error", failure.Err)
	} else {
		rs.log.ErrorContext(ctx, "Location lookup failed",
			"state", failedIn.String(),
			"reason", failure.Reason,
			"provider", rs.providerName,
			"error", failure.Err)
	}

	return failure
}
