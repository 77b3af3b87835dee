package middleware

import (
	"net/http"
	"time"

	"github.com/choretracker/choretracker/pkg/logger"
)

// RequestLogger returns a middleware that logs one line per completed request.
func RequestLogger(log *logger.Logger) Middleware {
	if log == nil {
		log = logger.Nop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := newResponseWriter(w)

			next.ServeHTTP(rw, r)

			keyvals := []interface{}{
				"method", r.Method,
				"path", r.URL.Path,
				"status", rw.statusCode,
				"bytes", rw.bytes,
				"duration_ms", time.Since(start).Milliseconds(),
				"client_ip", extractClientIP(r, false),
				"correlation_id", GetCorrelationID(r.Context()),
			}
			switch {
			case rw.statusCode >= http.StatusInternalServerError:
				log.Error("request completed", keyvals...)
			case rw.statusCode >= http.StatusBadRequest:
				log.Warn("request completed", keyvals...)
			default:
				log.Info("request completed", keyvals...)
			}
		})
	}
}
