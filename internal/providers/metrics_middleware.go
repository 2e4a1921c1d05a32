package providers

import (
	"net/http"
	"time"
)

// responseRecorder captures the status code written by a handler. It does
// not implement http.Hijacker, which is why the websocket watch endpoint is
// mounted outside the instrumented mux.
type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (w *responseRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseRecorder) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *responseRecorder) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// MetricsMiddleware counts and times every API request. The endpoint label
// is the bare path; history and usage query strings would otherwise blow up
// the label cardinality, and the route table has no path parameters.
func MetricsMiddleware(metrics MetricsProviderInterface, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		metrics.IncRequestsTotal(r.URL.Path, rec.status)
		metrics.ObserveRequestDuration(r.URL.Path, time.Since(start))
	})
}
