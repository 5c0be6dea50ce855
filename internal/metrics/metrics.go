// Package metrics holds Prometheus instruments used across the gateway.
// All collectors are registered with the global registry, so importing
// this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ActiveTenants = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_tenants",
			Help: "Number of tenant branding records currently cached.",
		})

	TenantLoadTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tenant_load_total",
			Help: "Cumulative number of tenant lookups that hit the database and succeeded.",
		})

	TenantLoadErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tenant_load_errors_total",
			Help: "Cumulative number of tenant lookups that failed (not-found excluded).",
		})

	TenantEvictTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tenant_evict_total",
			Help: "Cumulative number of tenants evicted from the cache.",
		})

	// RedirectTotal counts terminal guard decisions.  Reasons:
	// business_not_found, tenant_entry, tenant_signup, tenant_path,
	// login_required, role_mismatch, login_forward, lookup_failed.
	RedirectTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guard_redirect_total",
			Help: "Cumulative number of guard redirects by reason.",
		},
		[]string{"reason"},
	)

	AuthRefreshFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "auth_refresh_failures_total",
			Help: "Cumulative number of session refreshes degraded to anonymous.",
		})

	UpstreamErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "upstream_errors_total",
			Help: "Cumulative number of proxy round trips that failed.",
		})
)

func init() {
	prometheus.MustRegister(
		ActiveTenants,
		TenantLoadTotal,
		TenantLoadErrorsTotal,
		TenantEvictTotal,
		RedirectTotal,
		AuthRefreshFailuresTotal,
		UpstreamErrorsTotal,
	)
}
