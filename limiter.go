package blogcms

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LoginLimiter rate-limits failed login attempts per IP address with a token
// bucket per client.
type LoginLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
	stop     chan struct{}
	once     sync.Once
}

// NewLoginLimiter creates a LoginLimiter refilling at limit with room for
// burst attempts. Idle buckets are dropped every minute until Stop is called.
func NewLoginLimiter(limit rate.Limit, burst int) *LoginLimiter {
	l := &LoginLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
		burst:    burst,
		stop:     make(chan struct{}),
	}
	go l.cleanup(time.Minute)
	return l
}

// PerMinute converts an attempts-per-minute setting into a rate.Limit.
func PerMinute(n int) rate.Limit {
	return rate.Limit(float64(n) / 60.0)
}

func (l *LoginLimiter) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case now := <-ticker.C:
			l.mu.Lock()
			for ip, lim := range l.limiters {
				if lim.TokensAt(now) >= float64(l.burst) {
					delete(l.limiters, ip)
				}
			}
			l.mu.Unlock()
		}
	}
}

// Stop ends the background cleanup.
func (l *LoginLimiter) Stop() {
	l.once.Do(func() { close(l.stop) })
}

func (l *LoginLimiter) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.limiters[ip]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[ip] = lim
	}
	return lim
}

// Check returns true if the IP has an attempt left. It does not consume one;
// call Record after a failed login.
func (l *LoginLimiter) Check(ip string) bool {
	return l.get(ip).Tokens() >= 1
}

// Record consumes one attempt for the IP.
func (l *LoginLimiter) Record(ip string) {
	l.get(ip).Allow()
}
