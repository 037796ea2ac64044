package providers

import (
	"net/http"
	"snapshotd/internal/structures"
	"time"
)

// unmatchedEndpoint labels requests to paths no route is registered for, so
// scanners cannot grow the label set without bound.
const unmatchedEndpoint = "unmatched"

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// MetricsMiddleware records a request counter and duration per
// "METHOD /path" of the registered routes.
func MetricsMiddleware(metrics MetricsProviderInterface, routes []structures.Route, next http.Handler) http.Handler {
	known := make(map[string]struct{}, len(routes))
	for _, route := range routes {
		known[route.Url] = struct{}{}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		endpoint := unmatchedEndpoint
		if _, ok := known[r.URL.Path]; ok {
			endpoint = r.Method + " " + r.URL.Path
		}
		metrics.IncRequestsTotal(endpoint, sw.status)
		metrics.ObserveRequestDuration(endpoint, time.Since(start))
	})
}
