// Package metrics holds Prometheus instruments that are used across sitekit.
// All collectors are registered with the global registry, so importing this
// package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RouteDecisions counts Domain Router outcomes by kind
	// (pass, slug, hostname).
	RouteDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "route_decisions_total",
			Help: "Domain router decisions by kind.",
		}, []string{"kind"})

	ResolveTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "site_resolve_total",
			Help: "Site resolutions by entry point and outcome.",
		}, []string{"via", "outcome"})

	ResolveFallbackTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "site_resolve_fallback_total",
			Help: "Resolutions that fell back to the minimal page projection.",
		})

	ResolveDefaultPagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "site_resolve_default_pages_total",
			Help: "Pages served from curated defaults, by page key.",
		}, []string{"page"})

	ResolveDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "site_resolve_duration_seconds",
			Help:    "Wall time of one site resolution.",
			Buckets: prometheus.DefBuckets,
		}, []string{"via"})

	PageRenderTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "page_render_total",
			Help: "Page renders by template and outcome (ok, lookup_error, exec_error).",
		}, []string{"template", "outcome"})

	VisitorRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "visitor_requests_total",
			Help: "Inbound requests by device class and bot flag.",
		}, []string{"device", "bot"})
)

func init() {
	prometheus.MustRegister(
		RouteDecisions,
		ResolveTotal,
		ResolveFallbackTotal,
		ResolveDefaultPagesTotal,
		ResolveDuration,
		PageRenderTotal,
		VisitorRequests,
	)
}
