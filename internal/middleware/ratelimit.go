package middleware

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/choretracker/choretracker/internal/metrics"
	"github.com/choretracker/choretracker/internal/problem"
	"github.com/choretracker/choretracker/internal/ratelimit"
	"github.com/choretracker/choretracker/pkg/logger"
)

// DefaultBypassPaths are never rate limited.
func DefaultBypassPaths() []string {
	return []string{"/health", "/healthz", "/ready", "/docs", "/redoc", "/openapi.json", "/metrics"}
}

// RateLimitConfig holds configuration for the rate limit middleware.
type RateLimitConfig struct {
	BypassPaths []string // Exact paths that skip admission control
	Disabled    bool     // Test mode: every request is admitted untouched
}

// RateLimit returns a middleware that runs admission control before the
// handler. Denied requests get a rate-limit envelope and a Retry-After header
// and never reach the handler.
func RateLimit(limiter ratelimit.Limiter, responder *problem.Responder, log *logger.Logger, cfg RateLimitConfig) Middleware {
	bypass := make(map[string]bool, len(cfg.BypassPaths))
	for _, p := range cfg.BypassPaths {
		bypass[p] = true
	}
	if log == nil {
		log = logger.Nop()
	}

	return func(next http.Handler) http.Handler {
		if cfg.Disabled {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if bypass[r.URL.Path] {
				metrics.RecordRateLimit(metrics.OutcomeBypassed)
				next.ServeHTTP(w, r)
				return
			}

			identifier := GetClientIP(r.Context())
			if identifier == "" {
				identifier = extractClientIP(r, false)
			}

			result, err := limiter.Allow(r.Context(), identifier)
			if err != nil {
				// Fail open: a limiter failure must not take the API down.
				log.Warn("rate limiter unavailable", "error", err, "client_ip", identifier)
				next.ServeHTTP(w, r)
				return
			}

			setRateLimitHeaders(w, result)

			if !result.Allowed {
				retry := result.RetrySeconds()
				w.Header().Set("Retry-After", strconv.Itoa(retry))

				var detail string
				if result.Triggered {
					metrics.RecordRateLimit(metrics.OutcomeBlocked)
					detail = fmt.Sprintf("Rate limit exceeded. Blocked for %d seconds", retry)
					log.Warn("client blocked", "client_ip", identifier, "retry_after", retry,
						"correlation_id", GetCorrelationID(r.Context()))
				} else {
					metrics.RecordRateLimit(metrics.OutcomeDenied)
					detail = fmt.Sprintf("Rate limit exceeded. Try again in %d seconds", retry)
				}

				responder.Write(w, r, problem.RateLimited(detail))
				return
			}

			metrics.RecordRateLimit(metrics.OutcomeAllowed)
			next.ServeHTTP(w, r)
		})
	}
}

// setRateLimitHeaders sets the rate limit headers on the response.
func setRateLimitHeaders(w http.ResponseWriter, result *ratelimit.Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
}
