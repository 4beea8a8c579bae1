package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "permit_tracker",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern and status.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "permit_tracker",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

var (
	UserSyncTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "permit_tracker",
			Name:      "user_sync_total",
			Help:      "Identity syncs by outcome (created, refreshed, failed).",
		},
		[]string{"result"},
	)

	UploadedBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "permit_tracker",
			Name:      "object_uploaded_bytes_total",
			Help:      "Bytes accepted through the upload endpoint.",
		},
	)

	ObjectOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "permit_tracker",
			Name:      "object_operations_total",
			Help:      "Object store operations by kind and outcome.",
		},
		[]string{"operation", "result"},
	)
)

// Metrics records request counts and latency. The route label is chi's
// matched pattern, so ids never end up in label values.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
