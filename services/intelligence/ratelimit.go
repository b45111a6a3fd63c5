package ai

import (
	"sync"
	"time"
)

const (
	// DefaultCallsPerMinute is the model call quota when none is configured.
	DefaultCallsPerMinute = 15

	defaultRateWindow = time.Minute
)

// RateLimiter is a sliding-window quota gate for language-model calls. One
// instance is shared by the classifier and the composer so both draw from
// the same quota.
//
// RateLimiter is safe for concurrent use.
type RateLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	calls  []time.Time
	now    func() time.Time
}

// NewRateLimiter returns a limiter allowing at most limit calls per window.
// Non-positive arguments fall back to 15 calls per minute.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = DefaultCallsPerMinute
	}
	if window <= 0 {
		window = defaultRateWindow
	}
	return &RateLimiter{limit: limit, window: window, now: time.Now}
}

// Allow reports whether another call fits in the current window and, if so,
// records it. Timestamps older than the window are evicted on every call.
func (r *RateLimiter) Allow() bool {
	if r == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.prune(now)
	if len(r.calls) >= r.limit {
		return false
	}
	r.calls = append(r.calls, now)
	return true
}

// Remaining returns how many calls the current window still admits. A nil
// limiter admits none.
func (r *RateLimiter) Remaining() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prune(r.now())
	return r.limit - len(r.calls)
}

func (r *RateLimiter) prune(now time.Time) {
	cutoff := now.Add(-r.window)
	valid := r.calls[:0]
	for _, t := range r.calls {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}
	r.calls = valid
}
