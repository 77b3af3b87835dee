package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/choretracker/choretracker/internal/metrics"
)

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
	bytes       int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.statusCode = code
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.wroteHeader = true
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += n
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Metrics returns a middleware that records Prometheus metrics.
func Metrics() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := newResponseWriter(w)

			metrics.ActiveRequests.Inc()
			defer metrics.ActiveRequests.Dec()

			next.ServeHTTP(rw, r)

			metrics.RecordRequest(r.Method, normalizePath(r.URL.Path), rw.statusCode, time.Since(start))
		})
	}
}

// knownRoots are the first path segments served by the API.
var knownRoots = map[string]bool{
	"users":       true,
	"chores":      true,
	"assignments": true,
	"statistics":  true,
}

// normalizePath collapses numeric path segments so metric labels stay
// bounded. Unknown prefixes fold into "/other".
func normalizePath(path string) string {
	switch path {
	case "/", "/health", "/healthz", "/ready", "/metrics", "/docs", "/redoc", "/openapi.json":
		return path
	}

	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) == 0 || !knownRoots[segments[0]] || len(segments) > 3 {
		return "/other"
	}
	for i, seg := range segments {
		if i > 0 && isDigits(seg) {
			segments[i] = "{id}"
		}
	}
	return "/" + strings.Join(segments, "/")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
