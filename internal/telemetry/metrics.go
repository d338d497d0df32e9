package telemetry

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	GenerationRequests = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "postgen_generation_requests_total", Help: "Generation proxy calls by kind and outcome"}, []string{"kind", "outcome"})
	RunnerInvocations  = prometheus.NewCounter(prometheus.CounterOpts{Name: "postgen_runner_invocations_total", Help: "Scheduled post runner sweeps"})
	RunnerPosts        = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "postgen_runner_posts_total", Help: "Scheduled posts handled by the runner by outcome"}, []string{"outcome"})
	PublisherBreaker   = prometheus.NewGauge(prometheus.GaugeOpts{Name: "postgen_publisher_breaker_open", Help: "1 while the publisher circuit breaker is open"})
	RateLimitRejects   = prometheus.NewCounter(prometheus.CounterOpts{Name: "postgen_rate_limit_rejects_total", Help: "Requests rejected by the rate limiter"})
)

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeSkipped = "skipped"
)

// Handler exposes the /metrics handler with a singleton registry.
func Handler() http.Handler {
	once.Do(func() {
		prometheus.MustRegister(
			GenerationRequests,
			RunnerInvocations,
			RunnerPosts,
			PublisherBreaker,
			RateLimitRejects,
		)
	})
	return promhttp.Handler()
}

// ObserveGeneration counts one generation call.
func ObserveGeneration(kind string, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	GenerationRequests.WithLabelValues(kind, outcome).Inc()
}
