package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the control plane.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	externalErrors  *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	authOutcomes    *prometheus.CounterVec
	pixCharges      *prometheus.CounterVec
	eventsIngested  *prometheus.CounterVec
	requestsTotal   *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "edgeadmin_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edgeadmin_external_errors_total",
				Help: "Total errors from external services.",
			},
			[]string{"service"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edgeadmin_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edgeadmin_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		authOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edgeadmin_auth_resolutions_total",
				Help: "Token resolutions by verification path and outcome.",
			},
			[]string{"path", "outcome"},
		),
		pixCharges: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edgeadmin_pix_charges_total",
				Help: "PIX charges generated by key type.",
			},
			[]string{"key_type"},
		),
		eventsIngested: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edgeadmin_traffic_events_total",
				Help: "Traffic events accepted and flushed by the ingest queue.",
			},
			[]string{"stage"},
		),
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edgeadmin_requests_total",
				Help: "Total requests processed.",
			},
			[]string{"status"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrAuthOutcome counts one token resolution. Path is "hosted",
// "local" or "synthetic"; outcome is "success" or "failure".
func (m *Metrics) IncrAuthOutcome(path, outcome string) {
	m.authOutcomes.WithLabelValues(path, outcome).Inc()
}

// IncrPixCharge counts one generated charge by detected key type.
func (m *Metrics) IncrPixCharge(keyType string) {
	m.pixCharges.WithLabelValues(keyType).Inc()
}

// AddEventsQueued counts events accepted into the ingest queue.
func (m *Metrics) AddEventsQueued(n int) {
	m.eventsIngested.WithLabelValues("queued").Add(float64(n))
}

// AddEventsFlushed counts events written out by the ingest queue.
func (m *Metrics) AddEventsFlushed(n int) {
	m.eventsIngested.WithLabelValues("flushed").Add(float64(n))
}

// AddEventsDropped counts events lost to a full queue or failed flush.
func (m *Metrics) AddEventsDropped(n int) {
	m.eventsIngested.WithLabelValues("dropped").Add(float64(n))
}

// IncrRequest increments the request counter with a status label.
func (m *Metrics) IncrRequest(status string) {
	m.requestsTotal.WithLabelValues(status).Inc()
}

// AuthActivity returns cumulative resolution counts per path, for the
// superadmin platform overview.
func (m *Metrics) AuthActivity() map[string]float64 {
	return map[string]float64{
		"hostedSuccess":    getCounterValue(m.authOutcomes, "hosted", "success"),
		"hostedFailure":    getCounterValue(m.authOutcomes, "hosted", "failure"),
		"localSuccess":     getCounterValue(m.authOutcomes, "local", "success"),
		"localFailure":     getCounterValue(m.authOutcomes, "local", "failure"),
		"syntheticSuccess": getCounterValue(m.authOutcomes, "synthetic", "success"),
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for given labels.
func getCounterValue(cv *prometheus.CounterVec, labels ...string) float64 {
	counter := cv.WithLabelValues(labels...)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
