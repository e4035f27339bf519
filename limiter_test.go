package blogcms

import (
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func newTestLimiter(t *testing.T, every time.Duration, burst int) *LoginLimiter {
	t.Helper()
	l := NewLoginLimiter(rate.Every(every), burst)
	t.Cleanup(l.Stop)
	return l
}

// fail records a failed login if the IP still has an attempt left.
func fail(l *LoginLimiter, ip string) bool {
	if !l.Check(ip) {
		return false
	}
	l.Record(ip)
	return true
}

func TestLoginLimiterBlocksAfterMax(t *testing.T) {
	limiter := newTestLimiter(t, time.Hour, 2)
	ip := "203.0.113.10"

	if !fail(limiter, ip) {
		t.Fatalf("expected first attempt to be allowed")
	}
	if !fail(limiter, ip) {
		t.Fatalf("expected second attempt to be allowed")
	}
	if fail(limiter, ip) {
		t.Fatalf("expected third attempt to be blocked")
	}
}

func TestLoginLimiterRefills(t *testing.T) {
	limiter := newTestLimiter(t, 100*time.Millisecond, 1)
	ip := "203.0.113.20"

	if !fail(limiter, ip) {
		t.Fatalf("expected first attempt to be allowed")
	}
	if fail(limiter, ip) {
		t.Fatalf("expected second attempt to be blocked")
	}

	time.Sleep(250 * time.Millisecond)
	if !fail(limiter, ip) {
		t.Fatalf("expected attempt after refill to be allowed")
	}
}

func TestLoginLimiterIsPerIP(t *testing.T) {
	limiter := newTestLimiter(t, time.Hour, 1)

	if !fail(limiter, "203.0.113.30") {
		t.Fatalf("expected first ip to be allowed")
	}
	if !fail(limiter, "203.0.113.31") {
		t.Fatalf("expected second ip to be allowed independently")
	}
	if fail(limiter, "203.0.113.30") {
		t.Fatalf("expected first ip to be blocked after max")
	}
}

func TestLoginLimiterCheckDoesNotConsume(t *testing.T) {
	limiter := newTestLimiter(t, time.Hour, 2)
	ip := "203.0.113.40"

	for i := 0; i < 5; i++ {
		if !limiter.Check(ip) {
			t.Fatalf("check %d: expected attempt to be available", i)
		}
	}

	limiter.Record(ip)
	if !limiter.Check(ip) {
		t.Fatalf("expected one attempt left after a single failure")
	}
	limiter.Record(ip)
	if limiter.Check(ip) {
		t.Fatalf("expected ip to be blocked after two failures")
	}
}

func TestPerMinute(t *testing.T) {
	if got, want := PerMinute(60), rate.Limit(1); got != want {
		t.Fatalf("PerMinute(60) = %v, want %v", got, want)
	}
	if got := PerMinute(0); got != 0 {
		t.Fatalf("PerMinute(0) = %v, want 0", got)
	}
}

func TestLoginLimiterStopIsIdempotent(t *testing.T) {
	limiter := NewLoginLimiter(rate.Every(time.Second), 1)
	limiter.Stop()
	limiter.Stop()
}
