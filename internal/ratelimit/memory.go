package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Clock returns the current time.
type Clock func() time.Time

// Option configures a MemoryLimiter.
type Option func(*MemoryLimiter)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(clock Clock) Option {
	return func(m *MemoryLimiter) {
		m.now = clock
	}
}

// WithCleanupInterval overrides how often idle entries are swept.
// A non-positive interval disables the background sweep.
func WithCleanupInterval(d time.Duration) Option {
	return func(m *MemoryLimiter) {
		m.cleanupInterval = d
	}
}

// MemoryLimiter implements an in-memory sliding window rate limiter with
// block escalation. State is process-local and lost on restart.
type MemoryLimiter struct {
	config          Config
	now             Clock
	cleanupInterval time.Duration
	entries         sync.Map // map[string]*entry

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// entry holds the window and block state for a single identifier.
// Block state takes precedence over the window while it is active.
type entry struct {
	mu           sync.Mutex
	timestamps   []time.Time
	blockedUntil time.Time
}

// NewMemoryLimiter creates a new in-memory rate limiter.
func NewMemoryLimiter(cfg Config, opts ...Option) (*MemoryLimiter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &MemoryLimiter{
		config:          cfg,
		now:             time.Now,
		cleanupInterval: cfg.Window,
		done:            make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.cleanupInterval > 0 {
		m.wg.Add(1)
		go m.cleanupLoop()
	}

	return m, nil
}

// Config returns the limiter configuration.
func (m *MemoryLimiter) Config() Config {
	return m.config
}

// Allow checks if a request from the given identifier is admitted at the
// limiter's current time.
func (m *MemoryLimiter) Allow(ctx context.Context, identifier string) (*Result, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	return m.AllowAt(identifier, m.now()), nil
}

// AllowAt runs the admission check for identifier at the given instant.
func (m *MemoryLimiter) AllowAt(identifier string, now time.Time) *Result {
	entryVal, _ := m.entries.LoadOrStore(identifier, &entry{
		timestamps: make([]time.Time, 0, min(m.config.MaxRequests, 64)),
	})
	e := entryVal.(*entry)

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.blockedUntil.IsZero() {
		if now.Before(e.blockedUntil) {
			// A repeat hit during a block leaves blockedUntil as it is.
			return &Result{
				Allowed:      false,
				Remaining:    0,
				Limit:        m.config.MaxRequests,
				RetryAfter:   e.blockedUntil.Sub(now),
				BlockedUntil: e.blockedUntil,
			}
		}
		// Expired block: the client starts over with an empty window.
		e.blockedUntil = time.Time{}
		e.timestamps = e.timestamps[:0]
	}

	e.timestamps = pruneBefore(e.timestamps, now.Add(-m.config.Window))

	count := len(e.timestamps)
	if count >= m.config.MaxRequests {
		e.blockedUntil = now.Add(m.config.BlockDuration)
		return &Result{
			Allowed:      false,
			Remaining:    0,
			Limit:        m.config.MaxRequests,
			RetryAfter:   m.config.BlockDuration,
			BlockedUntil: e.blockedUntil,
			Triggered:    true,
		}
	}

	e.timestamps = append(e.timestamps, now)

	return &Result{
		Allowed:    true,
		Remaining:  m.config.MaxRequests - count - 1,
		Limit:      m.config.MaxRequests,
		ResetAfter: e.timestamps[0].Add(m.config.Window).Sub(now),
	}
}

// pruneBefore drops timestamps at or before cutoff. The slice is kept in
// insertion order so the first surviving index bounds the rest.
func pruneBefore(timestamps []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(timestamps) && !timestamps[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return timestamps
	}
	return append(timestamps[:0], timestamps[i:]...)
}

// Reset clears the rate limit state for an identifier.
func (m *MemoryLimiter) Reset(ctx context.Context, identifier string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	m.entries.Delete(identifier)
	return nil
}

// Clear drops the state of every identifier.
func (m *MemoryLimiter) Clear() {
	m.entries.Range(func(key, _ any) bool {
		m.entries.Delete(key)
		return true
	})
}

// Len returns the number of tracked identifiers.
func (m *MemoryLimiter) Len() int {
	n := 0
	m.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Close stops the background sweep.
func (m *MemoryLimiter) Close() error {
	m.closeOnce.Do(func() {
		close(m.done)
	})
	m.wg.Wait()
	return nil
}

func (m *MemoryLimiter) cleanupLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.cleanup(m.now())
		}
	}
}

// cleanup removes identifiers whose window is empty and that are not blocked.
func (m *MemoryLimiter) cleanup(now time.Time) {
	cutoff := now.Add(-m.config.Window)

	m.entries.Range(func(key, value any) bool {
		e := value.(*entry)
		e.mu.Lock()

		if now.Before(e.blockedUntil) {
			e.mu.Unlock()
			return true
		}
		if !e.blockedUntil.IsZero() {
			e.blockedUntil = time.Time{}
			e.timestamps = e.timestamps[:0]
		}

		e.timestamps = pruneBefore(e.timestamps, cutoff)
		empty := len(e.timestamps) == 0
		e.mu.Unlock()

		if empty {
			m.entries.CompareAndDelete(key, e)
		}
		return true
	})
}
