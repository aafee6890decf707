package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/ombliss-yoga/internal/metrics"
)

// unmatchedRoute labels requests chi could not route, so scanners hitting
// random paths cannot blow up the label cardinality.
const unmatchedRoute = "unmatched"

// Metrics records request count and latency per chi route pattern
// ("/classes/{id}", not "/classes/65f0...").
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := wrap(w)

		next.ServeHTTP(wrapped, r)

		route := unmatchedRoute
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}

		metrics.HTTPRequestsTotal.WithLabelValues(
			r.Method,
			route,
			strconv.Itoa(wrapped.statusCode),
		).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(r.Method, route).
			Observe(time.Since(start).Seconds())
	})
}
