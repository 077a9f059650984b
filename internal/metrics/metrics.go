package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for the coordinator.
// Each registry owns its prometheus.Registry so tests can build several.
type MetricsRegistry struct {
	Registry *prometheus.Registry

	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight *prometheus.GaugeVec

	// Cache Metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Business Metrics
	VolunteersCreatedTotal   prometheus.Counter
	VolunteersCompletedTotal prometheus.Counter
	ReconciliationsTotal     *prometheus.CounterVec
	GeocodeLookupsTotal      *prometheus.CounterVec
	NotificationsTotal       *prometheus.CounterVec
	SSESubscribers           prometheus.Gauge
	ReconcileJobDuration     prometheus.Histogram
}

// NewMetricsRegistry initializes and returns a new MetricsRegistry with all metrics
func NewMetricsRegistry() *MetricsRegistry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &MetricsRegistry{
		Registry: reg,

		// HTTP Metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mayday_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mayday_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "mayday_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		// Cache Metrics
		CacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mayday_cache_hits_total",
				Help: "Total cache hits by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),
		CacheMissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mayday_cache_misses_total",
				Help: "Total cache misses by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),

		// Business Metrics
		VolunteersCreatedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "mayday_volunteers_created_total",
				Help: "Total volunteer assignments created",
			},
		),
		VolunteersCompletedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "mayday_volunteers_completed_total",
				Help: "Total volunteer assignments transitioned to completed",
			},
		),
		ReconciliationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mayday_status_reconciliations_total",
				Help: "User status reconciliations by result (changed, unchanged, override, missing, error)",
			},
			[]string{"result"},
		),
		GeocodeLookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mayday_geocode_lookups_total",
				Help: "Geocoding lookups by kind and result",
			},
			[]string{"kind", "result"},
		),
		NotificationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mayday_notifications_total",
				Help: "Notifications handed to a sink, by sink and result",
			},
			[]string{"sink", "result"},
		),
		SSESubscribers: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "mayday_sse_subscribers",
				Help: "Current number of connected server-sent event listeners",
			},
		),
		ReconcileJobDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "mayday_reconcile_job_duration_seconds",
				Help:    "Reconciliation sweep execution time in seconds",
				Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
			},
		),
	}
}

// The helpers below are nil-safe so components can run without metrics in tests.

func (m *MetricsRegistry) RecordReconciliation(result string) {
	if m == nil {
		return
	}
	m.ReconciliationsTotal.WithLabelValues(result).Inc()
}

func (m *MetricsRegistry) RecordVolunteersCreated(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.VolunteersCreatedTotal.Add(float64(n))
}

func (m *MetricsRegistry) RecordVolunteersCompleted(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.VolunteersCompletedTotal.Add(float64(n))
}

func (m *MetricsRegistry) RecordGeocode(kind, result string) {
	if m == nil {
		return
	}
	m.GeocodeLookupsTotal.WithLabelValues(kind, result).Inc()
}

func (m *MetricsRegistry) RecordNotification(sink, result string) {
	if m == nil {
		return
	}
	m.NotificationsTotal.WithLabelValues(sink, result).Inc()
}

func (m *MetricsRegistry) RecordCache(pattern string, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHitsTotal.WithLabelValues(pattern).Inc()
		return
	}
	m.CacheMissesTotal.WithLabelValues(pattern).Inc()
}

func (m *MetricsRegistry) RecordReconcileJob(d time.Duration) {
	if m == nil {
		return
	}
	m.ReconcileJobDuration.Observe(d.Seconds())
}
