// Package metrics holds the Prometheus collectors of the service. A nil
// *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	AuthorizationDecisions *prometheus.CounterVec
	MenuCacheEvents        *prometheus.CounterVec
	MenuResolveDuration    prometheus.Histogram

	InsumoStock *prometheus.GaugeVec
}

// NewMetrics creates and registers every collector on registry.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "registry_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "registry_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		AuthorizationDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "registry_authorization_decisions_total",
				Help: "Capability checks by resource and outcome",
			},
			[]string{"resource", "action", "outcome"},
		),
		MenuCacheEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "registry_menu_cache_events_total",
				Help: "Menu authorization cache hits, misses, invalidations and skipped stale writes",
			},
			[]string{"event"},
		),
		MenuResolveDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "registry_menu_resolve_duration_seconds",
				Help:    "Time spent resolving a user's menu tree from the store",
				Buckets: prometheus.DefBuckets,
			},
		),
		InsumoStock: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "registry_insumo_stock",
				Help: "Last known stock of an insumo",
			},
			[]string{"empresa_id", "insumo_id"},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.AuthorizationDecisions,
		m.MenuCacheEvents,
		m.MenuResolveDuration,
		m.InsumoStock,
	)
	return m
}

func (m *Metrics) ObserveRequest(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(seconds)
}

func (m *Metrics) Decision(resource, action string, allowed bool) {
	if m == nil {
		return
	}
	outcome := "denied"
	if allowed {
		outcome = "allowed"
	}
	m.AuthorizationDecisions.WithLabelValues(resource, action, outcome).Inc()
}

func (m *Metrics) CacheEvent(event string) {
	if m == nil {
		return
	}
	m.MenuCacheEvents.WithLabelValues(event).Inc()
}

func (m *Metrics) ObserveResolve(seconds float64) {
	if m == nil {
		return
	}
	m.MenuResolveDuration.Observe(seconds)
}

// Handler exposes the registry in the Prometheus text format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) SetStock(empresaID, insumoID, stock int64) {
	if m == nil {
		return
	}
	m.InsumoStock.WithLabelValues(strconv.FormatInt(empresaID, 10), strconv.FormatInt(insumoID, 10)).Set(float64(stock))
}
