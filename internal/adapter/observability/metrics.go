package observability

import (
	"net/http"
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
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"route", "method"},
	)

	AIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_requests_total",
			Help: "Total number of AI requests by provider, operation, and outcome",
		},
		[]string{"provider", "operation", "outcome"},
	)
	AIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_request_duration_seconds",
			Help:    "AI request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"provider", "operation"},
	)
	AITokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_tokens_total",
			Help: "Total tokens exchanged with AI providers",
		},
		[]string{"provider", "direction"},
	)

	RunsStartedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pipeline_runs_started_total",
			Help: "Total number of ranking runs started",
		},
	)
	RunsCompletedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pipeline_runs_completed_total",
			Help: "Total number of ranking runs completed",
		},
	)
	RunsFailedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pipeline_runs_failed_total",
			Help: "Total number of ranking runs failed",
		},
	)
	RunsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pipeline_runs_in_flight",
			Help: "Number of ranking runs currently processing",
		},
	)
	BatchesProcessedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pipeline_batches_processed_total",
			Help: "Total number of candidate batches processed",
		},
	)
	CandidatesProcessedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_candidates_processed_total",
			Help: "Candidates processed by stage and outcome (ok or fallback)",
		},
		[]string{"stage", "outcome"},
	)

	// Score distributions observed at run completion.
	FinalScoreHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "candidate_final_score",
			Help:    "Distribution of final candidate scores ([0,100])",
			Buckets: []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
	)
	AlgoScoreHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "candidate_algo_score",
			Help:    "Distribution of rule-based pre-scores ([0,100])",
			Buckets: []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
	)
)

func InitMetrics() {
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(AIRequestsTotal)
	prometheus.MustRegister(AIRequestDuration)
	prometheus.MustRegister(AITokensTotal)
	prometheus.MustRegister(RunsStartedTotal)
	prometheus.MustRegister(RunsCompletedTotal)
	prometheus.MustRegister(RunsFailedTotal)
	prometheus.MustRegister(RunsInFlight)
	prometheus.MustRegister(BatchesProcessedTotal)
	prometheus.MustRegister(CandidatesProcessedTotal)
	prometheus.MustRegister(FinalScoreHistogram)
	prometheus.MustRegister(AlgoScoreHistogram)
}

// HTTPMetricsMiddleware records Prometheus metrics for each request.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		dur := time.Since(start).Seconds()
		// Route pattern may be unavailable outside chi router; guard nil
		var route string
		if rc := chi.RouteContext(r.Context()); rc != nil {
			route = rc.RoutePattern()
		}
		if route == "" {
			route = r.URL.Path
		}
		method := r.Method
		status := ww.Status()
		HTTPRequestsTotal.WithLabelValues(route, method, http.StatusText(status)).Inc()
		HTTPRequestDuration.WithLabelValues(route, method).Observe(dur)
	})
}

// StartRun marks a run as started and in flight.
func StartRun() {
	RunsStartedTotal.Inc()
	RunsInFlight.Inc()
}

// CompleteRun marks a run as finished successfully.
func CompleteRun() {
	RunsInFlight.Dec()
	RunsCompletedTotal.Inc()
}

// FailRun marks a run as finished with a fatal error.
func FailRun() {
	RunsInFlight.Dec()
	RunsFailedTotal.Inc()
}

// ObserveCandidate records one candidate passing a pipeline stage.
func ObserveCandidate(stage string, fallback bool) {
	outcome := "ok"
	if fallback {
		outcome = "fallback"
	}
	CandidatesProcessedTotal.WithLabelValues(stage, outcome).Inc()
}

// ObserveAIRequest records one chat completion round trip.
func ObserveAIRequest(provider, operation string, err error, dur time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	AIRequestsTotal.WithLabelValues(provider, operation, outcome).Inc()
	AIRequestDuration.WithLabelValues(provider, operation).Observe(dur.Seconds())
}

// ObserveAITokens records prompt and completion token counts for a call.
func ObserveAITokens(provider string, promptTokens, completionTokens int) {
	if promptTokens > 0 {
		AITokensTotal.WithLabelValues(provider, "prompt").Add(float64(promptTokens))
	}
	if completionTokens > 0 {
		AITokensTotal.WithLabelValues(provider, "completion").Add(float64(completionTokens))
	}
}

// ObserveScores records the score distributions of a completed run.
func ObserveScores(algo, final int) {
	if algo >= 0 && algo <= 100 {
		AlgoScoreHistogram.Observe(float64(algo))
	}
	if final >= 0 && final <= 100 {
		FinalScoreHistogram.Observe(float64(final))
	}
}
