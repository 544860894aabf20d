package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15, 30, 60},
		},
		[]string{"route", "method"},
	)

	AIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_requests_total",
			Help: "Total number of upstream generation calls by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)
	AIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_request_duration_seconds",
			Help:    "Upstream generation call duration in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30},
		},
		[]string{"provider"},
	)

	KeySelectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "key_selections_total",
			Help: "Credential selections by credential name",
		},
		[]string{"key"},
	)
	KeyFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "key_failures_total",
			Help: "Failed attempts recorded against a credential",
		},
		[]string{"key"},
	)

	ResearchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "research_requests_total",
			Help: "Research requests by output type and result",
		},
		[]string{"type", "result"},
	)
	ResearchAttempts = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "research_attempts",
			Help:    "Upstream attempts needed per research request",
			Buckets: []float64{1, 2, 3, 4, 6, 8, 12},
		},
	)
	ModelDowngradesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "model_downgrades_total",
			Help: "Research requests served by the fallback model",
		},
	)

	GovernorThrottlesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "governor_throttles_total",
			Help: "Admissions delayed because the request counter exceeded the ceiling",
		},
	)
	GovernorRequestCount = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "governor_request_count",
			Help: "Current value of the soft rate counter",
		},
	)
)

var initOnce sync.Once

// InitMetrics registers all collectors with the default registry. Safe to call repeatedly.
func InitMetrics() {
	initOnce.Do(func() {
		prometheus.MustRegister(HTTPRequestsTotal)
		prometheus.MustRegister(HTTPRequestDuration)
		prometheus.MustRegister(AIRequestsTotal)
		prometheus.MustRegister(AIRequestDuration)
		prometheus.MustRegister(KeySelectionsTotal)
		prometheus.MustRegister(KeyFailuresTotal)
		prometheus.MustRegister(ResearchTotal)
		prometheus.MustRegister(ResearchAttempts)
		prometheus.MustRegister(ModelDowngradesTotal)
		prometheus.MustRegister(GovernorThrottlesTotal)
		prometheus.MustRegister(GovernorRequestCount)
	})
}

// HTTPMetricsMiddleware records Prometheus metrics for each request.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		dur := time.Since(start).Seconds()
		var route string
		if rc := chi.RouteContext(r.Context()); rc != nil {
			route = rc.RoutePattern()
		}
		if route == "" {
			route = r.URL.Path
		}
		HTTPRequestsTotal.WithLabelValues(route, r.Method, http.StatusText(ww.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(dur)
	})
}

// ObserveAIRequest records one upstream call.
func ObserveAIRequest(provider, outcome string, dur time.Duration) {
	AIRequestsTotal.WithLabelValues(provider, outcome).Inc()
	AIRequestDuration.WithLabelValues(provider).Observe(dur.Seconds())
}

func KeySelected(name string) { KeySelectionsTotal.WithLabelValues(name).Inc() }

func KeyFailed(name string) { KeyFailuresTotal.WithLabelValues(name).Inc() }

// ObserveResearch records the result of a research request.
func ObserveResearch(outputType, result string, attempts int, downgraded bool) {
	ResearchTotal.WithLabelValues(outputType, result).Inc()
	if attempts > 0 {
		ResearchAttempts.Observe(float64(attempts))
	}
	if downgraded {
		ModelDowngradesTotal.Inc()
	}
}

func GovernorThrottled() { GovernorThrottlesTotal.Inc() }

func SetGovernorCount(n int) { GovernorRequestCount.Set(float64(n)) }
