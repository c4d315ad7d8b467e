package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Resolutions    *prometheus.CounterVec
	ProviderErrors *prometheus.CounterVec
	RequestSeconds *prometheus.HistogramVec
	InFlight       prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Resolutions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "locator_resolutions_total",
			Help: "Total number of location resolutions by outcome.",
		}, []string{"outcome"}),
		ProviderErrors: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "locator_provider_errors_total",
			Help: "Total number of errors received from the reverse geocoding provider.",
		}, []string{"provider", "kind"}),
		RequestSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "locator_provider_request_duration_seconds",
			Help:    "Duration of requests to the reverse geocoding provider.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		InFlight: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "locator_resolutions_in_flight",
			Help: "Current number of resolutions being processed.",
		}),
	}
}
