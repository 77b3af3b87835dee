package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/choretracker/choretracker/internal/problem"
	"github.com/google/uuid"
)

const (
	// HeaderXCorrelationID is the header name for the correlation id.
	HeaderXCorrelationID = problem.HeaderCorrelationID
	// HeaderXForwardedFor is the header name for forwarded client addresses.
	HeaderXForwardedFor = "X-Forwarded-For"
)

// UnknownClient is the shared bucket for clients with no usable address.
const UnknownClient = "unknown"

// CorrelationID returns a middleware that assigns exactly one correlation id
// to each request. A well-formed UUID in X-Correlation-ID is propagated;
// anything else is replaced by a fresh UUID. The id is echoed in the
// response header and stored in the request context.
func CorrelationID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := parseCorrelationID(r.Header.Get(HeaderXCorrelationID))
			if !ok {
				id = uuid.NewString()
			}

			w.Header().Set(HeaderXCorrelationID, id)
			ctx := context.WithValue(r.Context(), CorrelationIDKey, id)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func parseCorrelationID(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", false
	}
	return id.String(), true
}

// ClientIP returns a middleware that resolves the client identifier and
// stores it in context. With trustProxy the first X-Forwarded-For entry
// wins; otherwise the connection address is used.
func ClientIP(trustProxy bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), ClientIPKey, extractClientIP(r, trustProxy))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractClientIP resolves the client identifier for r.
func extractClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get(HeaderXForwardedFor); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if clientIP := strings.TrimSpace(first); clientIP != "" {
				return clientIP
			}
		}
	}

	if ip := extractIPFromAddr(r.RemoteAddr); ip != "" {
		return ip
	}
	return UnknownClient
}

// extractIPFromAddr extracts the IP address from an address string (host:port or just host).
func extractIPFromAddr(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return strings.TrimSpace(addr)
	}
	return host
}
