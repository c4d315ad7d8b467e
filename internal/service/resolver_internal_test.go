package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/UnknownOlympus/locator/internal/geocoding"
	"github.com/UnknownOlympus/locator/internal/geolocation"
	"github.com/UnknownOlympus/locator/internal/metrics"
	"github.com/UnknownOlympus/locator/internal/models"
	"github.com/UnknownOlympus/locator/test/mocks"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	states []State
}

func (r *recorder) OnState(state State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, state)
}

func newTestResolver(t *testing.T) (*Resolver, *mocks.Provider, *metrics.Metrics) {
	t.Helper()

	provider := mocks.NewProvider(t)
	appMetrics := metrics.NewMetrics(prometheus.NewRegistry())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewResolver(logger, provider, "mapsco", appMetrics), provider, appMetrics
}

func ptr(s string) *string { return &s }

func TestResolve_Success(t *testing.T) {
	resolver, provider, appMetrics := newTestResolver(t)
	ctx := t.Context()
	coords := models.Coordinates{Latitude: 40.0, Longitude: -75.0}
	locator := mocks.NewLocator(t)
	obs := &recorder{}

	locator.On("CurrentPosition", ctx).Return(coords, nil).Once()
	provider.On("ReverseGeocode", ctx, coords).Return(&models.Address{
		Locality:      "Philadelphia",
		Neighbourhood: "Old City",
		Region:        "Pennsylvania",
	}, nil).Once()

	got, err := resolver.Resolve(ctx, Request{
		Locator:    locator,
		Candidates: []string{"Pennsylvania", "New York"},
		Observer:   obs,
	})

	require.NoError(t, err)
	want := &models.ResolvedLocation{
		Locality:      "Philadelphia",
		Neighbourhood: "Old City",
		MatchedRegion: ptr("Pennsylvania"),
		Region:        "Pennsylvania",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Resolve() mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, []State{StateAcquiringCoordinate, StateFetchingAddress, StateResolving, StateDone}, obs.states)
	assert.InDelta(t, 1, testutil.ToFloat64(appMetrics.Resolutions.WithLabelValues("success")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(appMetrics.InFlight), 0)
}

func TestResolve_EmptyCandidates(t *testing.T) {
	resolver, provider, _ := newTestResolver(t)
	ctx := t.Context()
	coords := models.Coordinates{Latitude: 48.7, Longitude: 9.1}

	provider.On("ReverseGeocode", ctx, coords).Return(&models.Address{
		Locality: "Stuttgart",
		Region:   "Baden-Württemberg",
	}, nil).Once()

	got, err := resolver.Resolve(ctx, Request{Locator: geolocation.NewStatic(coords)})

	require.NoError(t, err)
	assert.Nil(t, got.MatchedRegion)
	assert.Equal(t, "Stuttgart", got.Locality)
	assert.Equal(t, "Baden-Württemberg", got.Region)
}

func TestResolve_MatchesApproximateRegion(t *testing.T) {
	resolver, provider, _ := newTestResolver(t)
	ctx := t.Context()
	coords := models.Coordinates{Latitude: -31.4, Longitude: -64.18}

	provider.On("ReverseGeocode", ctx, coords).Return(&models.Address{
		Locality: "Capital",
		Region:   "Provincia de Córdoba",
	}, nil).Once()

	got, err := resolver.Resolve(ctx, Request{
		Locator:    geolocation.NewStatic(coords),
		Candidates: []string{"Buenos Aires", "Córdoba", "Provincia de Buenos Aires"},
	})

	require.NoError(t, err)
	require.NotNil(t, got.MatchedRegion)
	// "Provincia de " is shared with the third candidate only.
	assert.Equal(t, "Provincia de Buenos Aires", *got.MatchedRegion)
}

func TestResolve_AcquisitionFailures(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		reason  Reason
		message string
	}{
		{
			name:    "permission denied",
			err:     &geolocation.AcquisitionError{Reason: geolocation.ReasonPermissionDenied},
			reason:  ReasonPermissionDenied,
			message: "User denied the request for Geolocation.",
		},
		{
			name:    "position unavailable",
			err:     &geolocation.AcquisitionError{Reason: geolocation.ReasonPositionUnavailable},
			reason:  ReasonPositionUnavailable,
			message: "Location information is unavailable.",
		},
		{
			name:    "timeout",
			err:     &geolocation.AcquisitionError{Reason: geolocation.ReasonTimeout},
			reason:  ReasonTimeout,
			message: "The request to get user location timed out.",
		},
		{
			name:    "deadline from the platform",
			err:     context.DeadlineExceeded,
			reason:  ReasonTimeout,
			message: "The request to get user location timed out.",
		},
		{
			name:    "unknown",
			err:     assert.AnError,
			reason:  ReasonUnknown,
			message: "An unknown error occurred.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// The provider mock has no expectations: any network call fails the test.
			resolver, _, appMetrics := newTestResolver(t)
			ctx := t.Context()
			locator := mocks.NewLocator(t)
			obs := &recorder{}

			locator.On("CurrentPosition", ctx).Return(models.Coordinates{}, tt.err).Once()

			got, err := resolver.Resolve(ctx, Request{Locator: locator, Candidates: []string{"Texas"}, Observer: obs})

			require.Nil(t, got)
			failure, ok := AsFailure(err)
			require.True(t, ok)
			assert.Equal(t, tt.reason, failure.Reason)
			assert.Equal(t, tt.message, failure.Message())
			assert.True(t, failure.Acquisition())
			require.ErrorIs(t, err, tt.err)
			assert.Equal(t, []State{StateAcquiringCoordinate, StateDone}, obs.states)
			assert.InDelta(t, 1, testutil.ToFloat64(appMetrics.Resolutions.WithLabelValues(string(tt.reason))), 0)
		})
	}
}

func TestResolve_NilLocator(t *testing.T) {
	resolver, _, _ := newTestResolver(t)

	_, err := resolver.Resolve(t.Context(), Request{})

	failure, ok := AsFailure(err)
	require.True(t, ok)
	assert.Equal(t, ReasonUnknown, failure.Reason)
}

func TestResolve_LookupFailures(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		reason Reason
		kind   string
	}{
		{
			name:   "service error",
			err:    &geocoding.Error{Kind: geocoding.KindService, Provider: "mapsco", StatusCode: 500},
			reason: ReasonServiceError,
			kind:   "service",
		},
		{
			name:   "transport error",
			err:    &geocoding.Error{Kind: geocoding.KindTransport, Provider: "mapsco", Err: assert.AnError},
			reason: ReasonTransportError,
			kind:   "transport",
		},
		{
			name:   "parse error",
			err:    &geocoding.Error{Kind: geocoding.KindParse, Provider: "mapsco", Err: geocoding.ErrNoAddress},
			reason: ReasonParseError,
			kind:   "parse",
		},
		{
			name:   "provider returns no address",
			err:    nil,
			reason: ReasonParseError,
			kind:   "parse",
		},
		{
			name:   "unclassified error",
			err:    assert.AnError,
			reason: ReasonServiceError,
			kind:   "unclassified",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver, provider, appMetrics := newTestResolver(t)
			ctx := t.Context()
			coords := models.Coordinates{Latitude: 40.0, Longitude: -75.0}
			obs := &recorder{}

			provider.On("ReverseGeocode", ctx, coords).Return(nil, tt.err).Once()

			got, err := resolver.Resolve(ctx, Request{
				Locator:    geolocation.NewStatic(coords),
				Candidates: []string{"Pennsylvania"},
				Observer:   obs,
			})

			require.Nil(t, got)
			failure, ok := AsFailure(err)
			require.True(t, ok)
			assert.Equal(t, tt.reason, failure.Reason)
			assert.False(t, failure.Acquisition())
			assert.Equal(t, lookupFailedMessage, failure.Message())
			assert.NotContains(t, failure.Message(), "500")
			// Resolving is never entered, so the selector never ran.
			assert.Equal(t, []State{StateAcquiringCoordinate, StateFetchingAddress, StateDone}, obs.states)
			assert.InDelta(t, 1, testutil.ToFloat64(appMetrics.ProviderErrors.WithLabelValues("mapsco", tt.kind)), 0)
			provider.AssertNumberOfCalls(t, "ReverseGeocode", 1)
		})
	}
}

func TestResolve_ConcurrentInvocationsAreIndependent(t *testing.T) {
	resolver, provider, appMetrics := newTestResolver(t)
	ctx := t.Context()

	provider.On("ReverseGeocode", ctx, mock.AnythingOfType("models.Coordinates")).
		Return(func(_ context.Context, coords models.Coordinates) (*models.Address, error) {
			if coords.Latitude > 0 {
				return &models.Address{Locality: "North", Region: "New York"}, nil
			}
			return &models.Address{Locality: "South", Region: "Buenos Aires"}, nil
		})

	candidates := []string{"Buenos Aires", "New York"}
	var wg sync.WaitGroup
	results := make([]*models.ResolvedLocation, 20)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			lat := 40.7
			if i%2 == 1 {
				lat = -34.6
			}
			res, err := resolver.Resolve(ctx, Request{
				Locator:    geolocation.NewStatic(models.Coordinates{Latitude: lat, Longitude: -60}),
				Candidates: candidates,
			})
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}
	wg.Wait()

	for i, res := range results {
		require.NotNil(t, res)
		if i%2 == 0 {
			assert.Equal(t, "New York", *res.MatchedRegion)
		} else {
			assert.Equal(t, "Buenos Aires", *res.MatchedRegion)
		}
	}
	assert.InDelta(t, 20, testutil.ToFloat64(appMetrics.Resolutions.WithLabelValues("success")), 0)
}

func TestFailure_Error(t *testing.T) {
	failure := &Failure{Reason: ReasonServiceError, Err: assert.AnError}
	assert.Equal(t, "location resolution failed: service-error: "+assert.AnError.Error(), failure.Error())

	bare := &Failure{Reason: ReasonTimeout}
	assert.Equal(t, "location resolution failed: timeout", bare.Error())

	_, ok := AsFailure(assert.AnError)
	assert.False(t, ok)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "acquiring-coordinate", StateAcquiringCoordinate.String())
	assert.Equal(t, "fetching-address", StateFetchingAddress.String())
	assert.Equal(t, "resolving", StateResolving.String())
	assert.Equal(t, "done", StateDone.String())
	assert.Equal(t, "invalid", State(42).String())

	var seen []State
	ObserverFunc(func(s State) { seen = append(seen, s) }).OnState(StateDone)
	assert.Equal(t, []State{StateDone}, seen)
}
