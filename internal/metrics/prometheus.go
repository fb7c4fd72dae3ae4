package metrics

import (
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusSink implements Sink with the Prometheus client library.
// Registration errors are logged, never propagated.
type PrometheusSink struct {
	requestsTotal    *prometheus.CounterVec
	tokensTotal      *prometheus.CounterVec
	upstreamTotal    *prometheus.CounterVec
	upstreamDuration prometheus.Histogram
}

func NewPrometheusSink(reg prometheus.Registerer) *PrometheusSink {
	s := &PrometheusSink{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tracking_init_requests_total",
			Help: "Total number of tracking-init requests by outcome.",
		}, []string{"outcome"}),
		tokensTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tracking_init_tokens_total",
			Help: "Tracking tokens issued by kind and by where the value came from.",
		}, []string{"kind", "source"}),
		upstreamTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tracking_init_upstream_requests_total",
			Help: "Storefront API calls by status class.",
		}, []string{"status_class"}),
		upstreamDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tracking_init_upstream_duration_seconds",
			Help:    "Latency of the Storefront API call in seconds.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}),
	}

	s.register(reg, s.requestsTotal, "tracking_init_requests_total")
	s.register(reg, s.tokensTotal, "tracking_init_tokens_total")
	s.register(reg, s.upstreamTotal, "tracking_init_upstream_requests_total")
	s.register(reg, s.upstreamDuration, "tracking_init_upstream_duration_seconds")
	return s
}

// register tolerates a collector that is already registered (e.g. a second
// sink on the default registry) by reusing the existing one.
func (s *PrometheusSink) register(reg prometheus.Registerer, c prometheus.Collector, name string) {
	if reg == nil {
		return
	}
	err := reg.Register(c)
	if err == nil {
		return
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		switch existing := are.ExistingCollector.(type) {
		case *prometheus.CounterVec:
			switch name {
			case "tracking_init_requests_total":
				s.requestsTotal = existing
			case "tracking_init_tokens_total":
				s.tokensTotal = existing
			case "tracking_init_upstream_requests_total":
				s.upstreamTotal = existing
			}
		case prometheus.Histogram:
			s.upstreamDuration = existing
		}
		return
	}
	slog.Warn("metrics: failed to register collector", "name", name, "error", err)
}

func (s *PrometheusSink) RequestCompleted(outcome string) {
	s.requestsTotal.WithLabelValues(outcome).Inc()
}

func (s *PrometheusSink) TokenResolved(kind, source string) {
	s.tokensTotal.WithLabelValues(kind, source).Inc()
}

func (s *PrometheusSink) UpstreamCompleted(statusClass string, d time.Duration) {
	s.upstreamTotal.WithLabelValues(statusClass).Inc()
	s.upstreamDuration.Observe(d.Seconds())
}
