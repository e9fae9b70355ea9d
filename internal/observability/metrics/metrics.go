package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	EmailStatusSent    = "sent"
	EmailStatusFailed  = "failed"
	EmailStatusDropped = "dropped"
)

// Metrics captures request and email delivery health signals.
type Metrics struct {
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	emailDeliveries *prometheus.CounterVec
	emailRetries    prometheus.Counter
}

var (
	metricsOnce sync.Once
	metrics     *Metrics
)

// Config carries const labels applied to every series.
type Config struct {
	ServiceName string
	Environment string
}

// Default returns the singleton metrics registry on the default registerer.
func Default() *Metrics {
	return WithConfig(Config{})
}

// WithConfig returns the singleton metrics registry using config labels.
func WithConfig(cfg Config) *Metrics {
	metricsOnce.Do(func() {
		metrics = New(prometheus.DefaultRegisterer, cfg)
	})
	return metrics
}

// ResetForTest resets the singleton so tests can register against a fresh registry.
func ResetForTest() {
	metricsOnce = sync.Once{}
	metrics = nil
}

func New(registerer prometheus.Registerer, cfg Config) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "teamspace"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "teamspace_http_requests_total",
		Help:        "HTTP requests by method, route, and status.",
		ConstLabels: constLabels,
	}, []string{"method", "route", "status"})
	httpDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "teamspace_http_request_duration_seconds",
		Help:        "HTTP request latency by route.",
		Buckets:     prometheus.DefBuckets,
		ConstLabels: constLabels,
	}, []string{"method", "route"})
	emailDeliveries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "teamspace_email_deliveries_total",
		Help:        "Email dispatch outcomes by template and status.",
		ConstLabels: constLabels,
	}, []string{"template", "status"})
	emailRetries := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "teamspace_email_retries_total",
		Help:        "Email send attempts beyond the first.",
		ConstLabels: constLabels,
	})

	registerer.MustRegister(httpRequests, httpDuration, emailDeliveries, emailRetries)

	return &Metrics{
		httpRequests:    httpRequests,
		httpDuration:    httpDuration,
		emailDeliveries: emailDeliveries,
		emailRetries:    emailRetries,
	}
}

// IncHTTPRequest counts one finished request.
func (m *Metrics) IncHTTPRequest(method, route, status string) {
	if m == nil || m.httpRequests == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, status).Inc()
}

// ObserveHTTPDuration records request latency in seconds.
func (m *Metrics) ObserveHTTPDuration(method, route string, duration time.Duration) {
	if m == nil || m.httpDuration == nil {
		return
	}
	m.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// IncEmailDelivery counts one email dispatch outcome.
func (m *Metrics) IncEmailDelivery(template, status string) {
	if m == nil || m.emailDeliveries == nil {
		return
	}
	m.emailDeliveries.WithLabelValues(template, status).Inc()
}

// IncEmailRetry counts a retried send attempt.
func (m *Metrics) IncEmailRetry() {
	if m == nil || m.emailRetries == nil {
		return
	}
	m.emailRetries.Inc()
}
