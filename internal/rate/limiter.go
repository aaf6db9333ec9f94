// Package rate implements the sliding-window request counter behind the
// form and API rate limiters. State is process-local and in-memory; it
// resets with the process.
package rate

import (
	"sync"
	"time"
)

// Config holds limiter tuning parameters. Clock is overridable for
// deterministic tests and defaults to time.Now.
type Config struct {
	Window      time.Duration
	MaxRequests int
	Clock       func() time.Time
}

// Result is the admission decision for one check. When Allowed is false,
// ResetAt is the instant the oldest counted request leaves the window and
// a slot frees; when Allowed is true it is the end of the window opening
// now.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Limiter admits at most MaxRequests per key inside any rolling window of
// length Window. After any Check, every retained timestamp lies within
// (now-Window, now] and, when the check was allowed, the retained count
// never exceeds MaxRequests.
type Limiter struct {
	mu   sync.Mutex
	cfg  Config
	hits map[string][]time.Time
}

// New creates a Limiter. Window and MaxRequests must be positive.
func New(cfg Config) *Limiter {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Limiter{
		cfg:  cfg,
		hits: make(map[string][]time.Time),
	}
}

// Check records and admits a request for key, or denies it with the
// computed reset time.
func (l *Limiter) Check(key string) Result {
	now := l.cfg.Clock()
	windowStart := now.Add(-l.cfg.Window)

	l.mu.Lock()
	defer l.mu.Unlock()

	retained := l.hits[key][:0]
	for _, ts := range l.hits[key] {
		if ts.After(windowStart) {
			retained = append(retained, ts)
		}
	}

	if len(retained) >= l.cfg.MaxRequests {
		l.hits[key] = retained
		return Result{
			Allowed:   false,
			Remaining: 0,
			ResetAt:   retained[0].Add(l.cfg.Window),
		}
	}

	retained = append(retained, now)
	l.hits[key] = retained
	return Result{
		Allowed:   true,
		Remaining: l.cfg.MaxRequests - len(retained),
		ResetAt:   now.Add(l.cfg.Window),
	}
}

// Reset drops all recorded requests for key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.hits, key)
}

// Prune removes keys whose every recorded request has left the window.
// Callers with long-lived limiters run it periodically to bound memory.
func (l *Limiter) Prune() {
	now := l.cfg.Clock()
	windowStart := now.Add(-l.cfg.Window)

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, hits := range l.hits {
		live := false
		for _, ts := range hits {
			if ts.After(windowStart) {
				live = true
				break
			}
		}
		if !live {
			delete(l.hits, key)
		}
	}
}
