package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "listmatch"

// Metrics holds the routing counters. Each instance owns its registry so
// tests and multiple services never collide on registration.
type Metrics struct {
	registry *prometheus.Registry

	ListingsTotal     *prometheus.CounterVec
	CacheLookupsTotal *prometheus.CounterVec
	ProductsLoaded    prometheus.Gauge
	HTTPRequestsTotal *prometheus.CounterVec
}

// NewMetrics creates and registers all collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ListingsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "listings_total",
				Help:      "Listings routed, by outcome (matched or unmatched).",
			},
			[]string{"outcome"},
		),
		CacheLookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_lookups_total",
				Help:      "Routing cache lookups, by result (hit or miss).",
			},
			[]string{"result"},
		),
		ProductsLoaded: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "products_loaded",
				Help:      "Products in the loaded catalog.",
			},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests, by route and status code.",
			},
			[]string{"route", "code"},
		),
	}

	m.registry.MustRegister(
		m.ListingsTotal,
		m.CacheLookupsTotal,
		m.ProductsLoaded,
		m.HTTPRequestsTotal,
		collectors.NewGoCollector(),
	)
	return m
}

// ObserveListing counts one routed listing.
func (m *Metrics) ObserveListing(outcome string) {
	m.ListingsTotal.WithLabelValues(outcome).Inc()
}

// ObserveCacheLookup counts one routing cache lookup.
func (m *Metrics) ObserveCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookupsTotal.WithLabelValues(result).Inc()
}

// SetProductsLoaded records the catalog size.
func (m *Metrics) SetProductsLoaded(n int) {
	m.ProductsLoaded.Set(float64(n))
}

// ObserveHTTPRequest counts one served request.
func (m *Metrics) ObserveHTTPRequest(route, code string) {
	m.HTTPRequestsTotal.WithLabelValues(route, code).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
