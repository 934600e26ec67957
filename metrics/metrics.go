// Package metrics holds the Prometheus collectors exported by the spog gateway.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Upstream outcomes recorded by ObserveUpstream
const (
	OutcomeOK        = "ok"
	OutcomeStatus    = "status"
	OutcomeTransport = "transport"
	OutcomeDecode    = "decode"
	OutcomeURL       = "url"
)

// Metrics represents the collection of all Prometheus metrics.
// All observe helpers are safe to call on a nil *Metrics.
type Metrics struct {
	registry *prometheus.Registry

	// Standard metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Gateway metrics
	UpstreamRequests   *prometheus.CounterVec
	EnrichmentFailures prometheus.Counter
	VexQueryDuration   prometheus.Histogram
	PackagesReturned   prometheus.Histogram
	VexDocuments       prometheus.Gauge
}

// NewMetrics creates all collectors and registers them on a private registry
func NewMetrics() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	m.UpstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spog_upstream_requests_total",
			Help: "Requests sent to the SBOM backend by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"},
	)

	m.EnrichmentFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "spog_enrichment_failures_total",
			Help: "VEX queries that failed while enriching a package",
		},
	)

	m.VexQueryDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "spog_vex_query_duration_seconds",
			Help:    "Duration of single VEX index queries in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		},
	)

	m.PackagesReturned = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "spog_packages_returned",
			Help:    "Canonical packages returned per search",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)

	m.VexDocuments = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "spog_vex_documents",
			Help: "Documents held by the current VEX index",
		},
	)

	m.registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.UpstreamRequests,
		m.EnrichmentFailures,
		m.VexQueryDuration,
		m.PackagesReturned,
		m.VexDocuments,
	)

	return m
}

// Registry exposes the registry for gathering in tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the HTTP handler serving this registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and durations for every fiber route
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}
		path := c.Route().Path

		m.HTTPRequestsTotal.WithLabelValues(c.Method(), path, strconv.Itoa(status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Method(), path).Observe(time.Since(start).Seconds())
		return err
	}
}

// ObserveUpstream counts one SBOM backend request
func (m *Metrics) ObserveUpstream(endpoint, outcome string) {
	if m == nil {
		return
	}
	m.UpstreamRequests.WithLabelValues(endpoint, outcome).Inc()
}

// IncEnrichmentFailure counts one failed VEX query
func (m *Metrics) IncEnrichmentFailure() {
	if m == nil {
		return
	}
	m.EnrichmentFailures.Inc()
}

// ObserveVexQuery records the duration of one VEX query
func (m *Metrics) ObserveVexQuery(d time.Duration) {
	if m == nil {
		return
	}
	m.VexQueryDuration.Observe(d.Seconds())
}

// ObservePackages records the size of one search response
func (m *Metrics) ObservePackages(n int) {
	if m == nil {
		return
	}
	m.PackagesReturned.Observe(float64(n))
}

// SetVexDocuments records the size of the index after a rebuild
func (m *Metrics) SetVexDocuments(n int) {
	if m == nil {
		return
	}
	m.VexDocuments.Set(float64(n))
}
