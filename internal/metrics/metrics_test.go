package metrics_test

import (
	"testing"

	"github.com/UnknownOlympus/locator/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)

	m.Resolutions.WithLabelValues("success").Inc()
	m.ProviderErrors.WithLabelValues("mapsco", "service").Inc()
	m.RequestSeconds.WithLabelValues("mapsco").Observe(0.2)
	m.InFlight.Inc()

	count, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Resolutions.WithLabelValues("success")), 0)

	assert.Panics(t, func() { metrics.NewMetrics(reg) }, "registering twice must fail")
}
