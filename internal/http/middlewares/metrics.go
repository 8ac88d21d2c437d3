package middlewares

import (
	"net/http"
	"strings"
	"time"

	"github.com/kjun-ai/authgate/internal/metrics"
)

// WithMetrics instrumenta requests con contadores, latencia e inflight.
func WithMetrics() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			method := strings.ToUpper(r.Method)
			path := metrics.NormalizePath(r.URL.Path)

			done := metrics.TrackInflight(method, path)
			start := time.Now()
			rec := newRecorder(w)
			defer func() {
				done()
				metrics.ObserveHTTP(method, path, rec.status, time.Since(start))
			}()

			next.ServeHTTP(rec, r)
		})
	}
}
