package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/choretracker/choretracker/internal/problem"
	"github.com/choretracker/choretracker/pkg/logger"
)

// Recovery returns a middleware that turns a handler panic into an internal
// error envelope. The panic value and stack are logged, never returned.
func Recovery(responder *problem.Responder, log *logger.Logger) Middleware {
	if log == nil {
		log = logger.Nop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				log.Error("panic recovered",
					"panic", fmt.Sprint(rec),
					"path", r.URL.Path,
					"correlation_id", GetCorrelationID(r.Context()),
					"stack", string(debug.Stack()),
				)
				responder.Write(w, r, problem.Internal(fmt.Errorf("panic: %v", rec)))
			}()

			next.ServeHTTP(w, r)
		})
	}
}
