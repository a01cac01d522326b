// Package gatemetrics exposes Prometheus counters and histograms for the
// auth gateway, registered on their own listener the same way the teacher
// codebase separates its metrics server from the main request path.
package gatemetrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every gauge/counter/histogram the auth gateway publishes.
type Metrics struct {
	registry      *prometheus.Registry
	authTotal     *prometheus.CounterVec
	validateSecs  *prometheus.HistogramVec
	presignTotal  *prometheus.CounterVec
	registrySize  prometheus.Gauge
}

// New builds a Metrics instance with its own registry, mirroring the
// teacher's pattern of a dedicated metrics server rather than the default
// global registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		authTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "sigv4gate",
			Subsystem: "auth",
			Name:      "requests_total",
			Help:      "Total authentication attempts by outcome.",
		}, []string{"result"}),
		validateSecs: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sigv4gate",
			Subsystem: "auth",
			Name:      "validate_duration_seconds",
			Help:      "Time spent validating a SigV4 request signature.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"mode"}),
		presignTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "sigv4gate",
			Subsystem: "presign",
			Name:      "issued_total",
			Help:      "Total pre-signed URLs issued by outcome.",
		}, []string{"result"}),
		registrySize: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: "sigv4gate",
			Subsystem: "registry",
			Name:      "credentials",
			Help:      "Number of credentials currently loaded in the registry.",
		}),
	}
	return m
}

// ObserveAuthResult increments the outcome counter. result is "success" or
// an auth.ErrorKind.String() value.
func (m *Metrics) ObserveAuthResult(result string) {
	m.authTotal.WithLabelValues(result).Inc()
}

// ObserveValidateDuration records how long a signature check took. mode is
// "header" or "presigned".
func (m *Metrics) ObserveValidateDuration(mode string, d time.Duration) {
	m.validateSecs.WithLabelValues(mode).Observe(d.Seconds())
}

// ObservePresignResult increments the presign-issuance outcome counter.
func (m *Metrics) ObservePresignResult(result string) {
	m.presignTotal.WithLabelValues(result).Inc()
}

// SetRegistrySize reports the current credential count.
func (m *Metrics) SetRegistrySize(n int) {
	m.registrySize.Set(float64(n))
}

// Handler returns the /metrics HTTP handler for this instance's registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
