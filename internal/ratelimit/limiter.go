// Package ratelimit provides per-client admission control over a sliding
// window with temporary blocks once a client reaches its limit.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrRateLimitExceeded is returned when the rate limit is exceeded.
var ErrRateLimitExceeded = errors.New("rate limit exceeded")

// ErrInvalidConfig is returned when a limiter is built from a non-positive setting.
var ErrInvalidConfig = errors.New("invalid rate limit config")

// Result contains the outcome of a rate limit check.
type Result struct {
	Allowed      bool          // Whether the request is admitted
	Remaining    int           // Remaining requests in the current window
	Limit        int           // The configured limit
	ResetAfter   time.Duration // Time until the oldest request leaves the window
	RetryAfter   time.Duration // Time until the block expires (denied only)
	BlockedUntil time.Time     // Zero unless the client is blocked
	Triggered    bool          // True when this call started the block
}

// RetrySeconds returns RetryAfter rounded up to whole seconds, never below one.
func (r *Result) RetrySeconds() int {
	secs := int(math.Ceil(r.RetryAfter.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return secs
}

// Limiter defines the rate limiting interface.
type Limiter interface {
	// Allow checks if a request from the given identifier is admitted.
	Allow(ctx context.Context, identifier string) (*Result, error)

	// Reset clears the window and block state for an identifier.
	Reset(ctx context.Context, identifier string) error

	// Clear drops the state of every identifier.
	Clear()

	// Close releases any resources held by the limiter.
	Close() error
}

// Config holds rate limiter configuration.
type Config struct {
	MaxRequests   int           // Requests admitted per window
	Window        time.Duration // Sliding window length
	BlockDuration time.Duration // Lockout after the limit is reached
}

// DefaultConfig returns a default configuration.
func DefaultConfig() Config {
	return Config{
		MaxRequests:   100,
		Window:        time.Minute,
		BlockDuration: 5 * time.Minute,
	}
}

// Validate reports the first non-positive setting.
func (c Config) Validate() error {
	switch {
	case c.MaxRequests <= 0:
		return fmt.Errorf("%w: max requests must be positive, got %d", ErrInvalidConfig, c.MaxRequests)
	case c.Window <= 0:
		return fmt.Errorf("%w: window must be positive, got %s", ErrInvalidConfig, c.Window)
	case c.BlockDuration <= 0:
		return fmt.Errorf("%w: block duration must be positive, got %s", ErrInvalidConfig, c.BlockDuration)
	}
	return nil
}
