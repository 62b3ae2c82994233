package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"namelease/internal/platform/metrics"
)

// Latency records per-route request duration and status counts. Routes are
// reported by chi pattern, not raw path, so /domains/{name} stays one series
// regardless of how many names exist.
func Latency(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m == nil {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			done := m.TrackInFlight()
			rec := &statusRecorder{ResponseWriter: w}

			next.ServeHTTP(rec, r)

			done()
			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}
			m.ObserveRequest(r.Method, route, rec.status, start)
		})
	}
}
