// Package metrics collects Prometheus metrics for route builds and the
// descriptor server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Build statuses.
const (
	StatusOK      = "ok"
	StatusInvalid = "invalid"
	StatusError   = "error"
)

// Config configures the metrics set.
type Config struct {
	// Namespace is the metrics namespace (default: "rrbuilder").
	Namespace string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: a new registry, so independent Metrics never collide.
	Registry *prometheus.Registry
}

// Option configures the metrics set.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "rrbuilder",
		Buckets:   prometheus.DefBuckets,
	}
}

// Metrics holds the collectors. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	registry *prometheus.Registry

	buildsTotal     *prometheus.CounterVec
	buildDuration   prometheus.Histogram
	descriptors     prometheus.Gauge
	manifestChanges prometheus.Counter
	watchClients    prometheus.Gauge
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// New creates and registers the metrics set.
//
// Metrics collected:
//   - rrbuilder_builds_total: Counter of builds by status (ok, invalid, error)
//   - rrbuilder_build_duration_seconds: Histogram of build duration
//   - rrbuilder_descriptors: Gauge of descriptors in the last good build
//   - rrbuilder_manifest_changes_total: Counter of detected manifest changes
//   - rrbuilder_watch_clients: Gauge of connected watch websockets
//   - rrbuilder_http_requests_total: Counter of HTTP requests by route and code
//   - rrbuilder_http_request_duration_seconds: Histogram of HTTP latency by route
func New(opts ...Option) *Metrics {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.Registry == nil {
		config.Registry = prometheus.NewRegistry()
	}
	if config.Buckets == nil {
		config.Buckets = prometheus.DefBuckets
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		registry: config.Registry,

		buildsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "builds_total",
			Help:        "Total number of route tree builds",
			ConstLabels: config.ConstLabels,
		}, []string{"status"}),

		buildDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "build_duration_seconds",
			Help:        "Route tree build duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		descriptors: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Name:        "descriptors",
			Help:        "Number of route descriptors in the last successful build",
			ConstLabels: config.ConstLabels,
		}),

		manifestChanges: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "manifest_changes_total",
			Help:        "Total number of detected manifest changes",
			ConstLabels: config.ConstLabels,
		}),

		watchClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Name:        "watch_clients",
			Help:        "Number of connected watch websockets",
			ConstLabels: config.ConstLabels,
		}),

		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "http_requests_total",
			Help:        "Total HTTP requests by route pattern and status code",
			ConstLabels: config.ConstLabels,
		}, []string{"route", "code"}),

		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"route"}),
	}
}

// Registry returns the registry the metrics are registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordBuild records one build. descriptors is only applied for StatusOK.
func (m *Metrics) RecordBuild(status string, duration time.Duration, descriptors int) {
	if m == nil {
		return
	}
	m.buildsTotal.WithLabelValues(status).Inc()
	m.buildDuration.Observe(duration.Seconds())
	if status == StatusOK {
		m.descriptors.Set(float64(descriptors))
	}
}

// RecordManifestChange counts a detected manifest change.
func (m *Metrics) RecordManifestChange() {
	if m == nil {
		return
	}
	m.manifestChanges.Inc()
}

// WatchClientConnected increments the watch client gauge.
func (m *Metrics) WatchClientConnected() {
	if m == nil {
		return
	}
	m.watchClients.Inc()
}

// WatchClientDisconnected decrements the watch client gauge.
func (m *Metrics) WatchClientDisconnected() {
	if m == nil {
		return
	}
	m.watchClients.Dec()
}

// Middleware records request counts and latency labeled by the chi route
// pattern, so path parameters do not explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
