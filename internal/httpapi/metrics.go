package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// httpMetrics holds the request-count and duration instruments,
// registered against the global delegating provider at package init —
// they start recording for real once telemetry.Init runs, and are
// harmless no-ops before that, the same "register early, export later"
// shape the teacher's dolt storage backend uses for its own counters.
var httpMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

func init() {
	m := otel.Meter("github.com/civictrack/civictrackd/httpapi")
	httpMetrics.requests, _ = m.Int64Counter("civictrack.http.requests",
		metric.WithDescription("HTTP requests served"),
		metric.WithUnit("{request}"),
	)
	httpMetrics.duration, _ = m.Float64Histogram("civictrack.http.request.duration",
		metric.WithDescription("HTTP request duration"),
		metric.WithUnit("ms"),
	)
}

// statusRecorder captures the status code written so metrics middleware
// can label requests by outcome.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// metricsMiddleware records one request-count increment and one
// duration observation per request, labeled by method and the chi
// route pattern (not the raw path, so /tickets/{id} doesn't explode
// cardinality per ticket ID).
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		pattern := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			pattern = rctx.RoutePattern()
		}
		attrs := attribute.NewSet(
			attribute.String("method", r.Method),
			attribute.String("route", pattern),
			attribute.Int("status", rec.status),
		)
		httpMetrics.requests.Add(r.Context(), 1, metric.WithAttributeSet(attrs))
		httpMetrics.duration.Record(r.Context(), float64(time.Since(start).Milliseconds()), metric.WithAttributeSet(attrs))
	})
}
