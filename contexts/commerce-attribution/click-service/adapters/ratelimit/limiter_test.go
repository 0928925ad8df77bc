package ratelimit

import (
	"testing"
	"time"
)

func TestAllowCountsPerKeyWithinWindow(t *testing.T) {
	limiter := NewFixedWindowLimiter(2, time.Minute)
	now := time.Date(2024, 5, 1, 12, 0, 10, 0, time.UTC)
	limiter.SetNow(func() time.Time { return now })

	if !limiter.Allow("203.0.113.7") || !limiter.Allow("203.0.113.7") {
		t.Fatalf("requests under the limit must pass")
	}
	if limiter.Allow("203.0.113.7") {
		t.Fatalf("request over the limit must be rejected")
	}
	if !limiter.Allow("198.51.100.9") {
		t.Fatalf("limits are per key")
	}
}

func TestWindowRollOverResetsTheCount(t *testing.T) {
	limiter := NewFixedWindowLimiter(1, time.Minute)
	now := time.Date(2024, 5, 1, 12, 0, 59, 0, time.UTC)
	limiter.SetNow(func() time.Time { return now })

	if !limiter.Allow("203.0.113.7") {
		t.Fatalf("first request must pass")
	}
	if limiter.Allow("203.0.113.7") {
		t.Fatalf("second request in the same window must be rejected")
	}

	now = now.Add(2 * time.Second)
	if !limiter.Allow("203.0.113.7") {
		t.Fatalf("new window must reset the count")
	}
}

func TestZeroConfigFallsBackToDefaults(t *testing.T) {
	limiter := NewFixedWindowLimiter(0, 0)
	if limiter.limit != 120 || limiter.window != time.Minute {
		t.Fatalf("unexpected defaults: limit=%d window=%v", limiter.limit, limiter.window)
	}
}
