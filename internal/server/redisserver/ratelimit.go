package redisserver

import (
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// limiterIdleTTL is how long an IP's limiter is kept after its last command.
const limiterIdleTTL = 10 * time.Minute

// ipLimiter keeps one token bucket per client IP.
type ipLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*ipEntry
	limit     rate.Limit
	burst     int
	lastSweep time.Time
}

type ipEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// newIPLimiter returns a limiter allowing perSecond commands per IP, with a
// burst of one second's worth. A non-positive rate disables limiting.
func newIPLimiter(perSecond float64) *ipLimiter {
	if perSecond <= 0 {
		return nil
	}
	return &ipLimiter{
		limiters:  make(map[string]*ipEntry),
		limit:     rate.Limit(perSecond),
		burst:     int(math.Max(1, math.Ceil(perSecond))),
		lastSweep: time.Now(),
	}
}

// allow reports whether ip may run another command now.
func (l *ipLimiter) allow(ip string) bool {
	if l == nil {
		return true
	}

	now := time.Now()
	l.mu.Lock()
	e, ok := l.limiters[ip]
	if !ok {
		e = &ipEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[ip] = e
	}
	e.lastSeen = now
	if now.Sub(l.lastSweep) > limiterIdleTTL {
		l.sweep(now)
	}
	l.mu.Unlock()

	return e.limiter.AllowN(now, 1)
}

// sweep drops limiters of IPs idle for longer than limiterIdleTTL.
// Caller holds l.mu.
func (l *ipLimiter) sweep(now time.Time) {
	for ip, e := range l.limiters {
		if now.Sub(e.lastSeen) > limiterIdleTTL {
			delete(l.limiters, ip)
		}
	}
	l.lastSweep = now
}

func (l *ipLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}
