package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the Bithra collectors exposed on /metrics.
	Registry = prometheus.NewRegistry()

	HTTPInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "bithra",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bithra",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bithra",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "route"},
	)

	ReferralsTracked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bithra",
			Subsystem: "referral",
			Name:      "tracked_total",
			Help:      "Referral track attempts by outcome.",
		},
		[]string{"outcome"},
	)

	CommissionHalalas = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "bithra",
			Subsystem: "referral",
			Name:      "commission_halalas_total",
			Help:      "Referral commission credited to wallets, in halalas.",
		},
	)

	Backings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bithra",
			Subsystem: "project",
			Name:      "backings_total",
			Help:      "Project backings by category.",
		},
		[]string{"category"},
	)

	NegotiationsExpired = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "bithra",
			Subsystem: "negotiation",
			Name:      "expired_total",
			Help:      "Negotiations closed by the expiry job.",
		},
	)

	JobRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bithra",
			Subsystem: "jobs",
			Name:      "runs_total",
			Help:      "Scheduled job runs by job and result.",
		},
		[]string{"job", "success"},
	)
)

func init() {
	Registry.MustRegister(
		HTTPInFlight,
		HTTPRequests,
		HTTPDuration,
		ReferralsTracked,
		CommissionHalalas,
		Backings,
		NegotiationsExpired,
		JobRuns,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler exposes the registered collectors.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
