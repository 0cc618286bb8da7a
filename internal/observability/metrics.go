package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and gauges for the service.
type Metrics struct {
	UsersCreated prometheus.Counter
	UsersUpdated prometheus.Counter
	UsersDeleted prometheus.Counter

	// ResolverRequests counts geolocation lookups by outcome={success,error}.
	ResolverRequests *prometheus.CounterVec

	// UpstreamReachable is 1 while the last connectivity probe succeeded.
	UpstreamReachable prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the default Prometheus
// registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.UsersCreated,
		m.UsersUpdated,
		m.UsersDeleted,
		m.ResolverRequests,
		m.UpstreamReachable,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid "already
// registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		UsersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "user_geo",
			Name:      "users_created_total",
			Help:      "Total user records created.",
		}),
		UsersUpdated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "user_geo",
			Name:      "users_updated_total",
			Help:      "Total user records updated.",
		}),
		UsersDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "user_geo",
			Name:      "users_deleted_total",
			Help:      "Total user records deleted.",
		}),
		ResolverRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "user_geo",
			Name:      "resolver_requests_total",
			Help:      "Geolocation resolver requests by outcome.",
		}, []string{"outcome"}),
		UpstreamReachable: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "user_geo",
			Name:      "upstream_reachable",
			Help:      "1 when the last geolocation upstream probe succeeded.",
		}),
	}
}
