package middleware

import (
	"net/http"
	"time"

	"github.com/tokeley/researchlog/internal/metrics"
)

// Prometheus records request duration and count labelled by chi route pattern,
// so /blog/{id} is one series regardless of id.
func Prometheus(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := wrapWriter(w)
		next.ServeHTTP(sw, r)
		if r.URL.Path == "/metrics" {
			return
		}
		metrics.RecordRequest(r.Method, routePattern(r), sw.status, time.Since(start).Seconds())
	})
}
