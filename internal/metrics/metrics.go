// Package metrics provides Prometheus metrics collection for the pack planner.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestDuration tracks HTTP request duration by method, path, and status code.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status_code"},
	)

	// HTTPRequestTotal tracks total HTTP requests by method, path, and status code.
	HTTPRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)

	// PlanRunsTotal tracks total planning runs by outcome.
	PlanRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pack_plan_runs_total",
			Help: "Total number of pack planning runs",
		},
		[]string{"status"},
	)

	// PlanDuration tracks planning run duration.
	PlanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pack_plan_duration_seconds",
			Help:    "Pack planning run duration in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		},
	)

	// PacksPerPlan tracks how many packs each planning run produced.
	PacksPerPlan = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pack_plan_packs",
			Help:    "Number of packs produced per planning run",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250},
		},
	)
)

// Handler exposes the default Prometheus registry over HTTP.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware wraps next with HTTP request metrics collection.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		duration := time.Since(start).Seconds()
		statusCode := strconv.Itoa(rec.status)
		HTTPRequestDuration.WithLabelValues(r.Method, r.URL.Path, statusCode).Observe(duration)
		HTTPRequestTotal.WithLabelValues(r.Method, r.URL.Path, statusCode).Inc()
	})
}

// RecordPlanRun records metrics for one planning run.
func RecordPlanRun(duration time.Duration, status string, packs int) {
	PlanDuration.Observe(duration.Seconds())
	PlanRunsTotal.WithLabelValues(status).Inc()
	if packs > 0 {
		PacksPerPlan.Observe(float64(packs))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
