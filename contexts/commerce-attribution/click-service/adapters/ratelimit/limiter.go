package ratelimit

import (
	"sync"
	"time"
)

// FixedWindowLimiter counts requests per key in fixed wall-clock windows.
// The window map is pruned lazily as keys roll over; the redirect path is
// the only caller so the per-request cost stays one map lookup.
type FixedWindowLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	now     func() time.Time
	buckets map[string]bucket
}

type bucket struct {
	windowStart time.Time
	count       int
}

func NewFixedWindowLimiter(limit int, window time.Duration) *FixedWindowLimiter {
	if limit <= 0 {
		limit = 120
	}
	if window <= 0 {
		window = time.Minute
	}
	return &FixedWindowLimiter{
		limit:   limit,
		window:  window,
		now:     time.Now,
		buckets: make(map[string]bucket),
	}
}

// SetNow pins the clock for deterministic tests.
func (l *FixedWindowLimiter) SetNow(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}

func (l *FixedWindowLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	windowStart := now.Truncate(l.window)

	entry, exists := l.buckets[key]
	if !exists || entry.windowStart.Before(windowStart) {
		l.buckets[key] = bucket{windowStart: windowStart, count: 1}
		return true
	}
	if entry.count >= l.limit {
		return false
	}
	entry.count++
	l.buckets[key] = entry
	return true
}
