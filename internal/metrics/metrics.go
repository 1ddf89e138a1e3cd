package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "chartserver"

// Metrics exposes Prometheus collectors for HTTP traffic, chart rendering and uploads.
type Metrics struct {
	gatherer prometheus.Gatherer

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	renderDuration  *prometheus.HistogramVec
	uploads         *prometheus.CounterVec
	uploadBytes     *prometheus.CounterVec
}

// New registers the collectors with reg. Tests pass a fresh registry.
func New(reg *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{
		gatherer: reg,
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "HTTP requests by route and status code.",
			},
			[]string{"route", "code"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency by route.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		renderDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "render_duration_seconds",
				Help:      "Time spent rendering charts.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"type", "status"},
		),
		uploads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "uploads_total",
				Help:      "Object uploads by kind and outcome.",
			},
			[]string{"kind", "status"},
		),
		uploadBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upload_bytes_total",
				Help:      "Bytes successfully uploaded by kind.",
			},
			[]string{"kind"},
		),
	}

	for _, c := range []prometheus.Collector{m.requests, m.requestDuration, m.renderDuration, m.uploads, m.uploadBytes} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(route string, code int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.requestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// ObserveRender records one renderer call.
func (m *Metrics) ObserveRender(chartType string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	m.renderDuration.WithLabelValues(chartType, outcome(err)).Observe(duration.Seconds())
}

// ObserveUpload records one storage call. Bytes are counted only on success.
func (m *Metrics) ObserveUpload(kind string, size int, err error) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(kind, outcome(err)).Inc()
	if err == nil {
		m.uploadBytes.WithLabelValues(kind).Add(float64(size))
	}
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
