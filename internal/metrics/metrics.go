// Package metrics holds the Prometheus collectors of the service.
// Collectors are registered on the registry passed to New, so tests and
// parallel servers never share global state.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	gatherer prometheus.Gatherer

	// HTTP
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestsInFlight prometheus.Gauge

	// Business
	URLsCreatedTotal    prometheus.Counter
	URLsDeletedTotal    prometheus.Counter
	RedirectsTotal      prometheus.Counter
	ClicksRecordedTotal prometheus.Counter
	ActiveURLs          prometheus.Gauge
}

func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		gatherer: reg,

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
		),

		URLsCreatedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "urls_created_total",
				Help: "Total number of URLs created",
			},
		),
		URLsDeletedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "urls_deleted_total",
				Help: "Total number of URLs deleted",
			},
		),
		RedirectsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "redirects_total",
				Help: "Total number of successful redirects",
			},
		),
		ClicksRecordedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "clicks_recorded_total",
				Help: "Total number of clicks recorded without a redirect",
			},
		),
		ActiveURLs: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "active_urls",
				Help: "Number of stored URLs",
			},
		),
	}
}

func (m *Metrics) RecordURLCreated() {
	m.URLsCreatedTotal.Inc()
	m.ActiveURLs.Inc()
}

func (m *Metrics) RecordURLDeleted() {
	m.URLsDeletedTotal.Inc()
	m.ActiveURLs.Dec()
}

func (m *Metrics) RecordRedirect() {
	m.RedirectsTotal.Inc()
}

func (m *Metrics) RecordClick() {
	m.ClicksRecordedTotal.Inc()
}

// Handler exposes the collected metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
