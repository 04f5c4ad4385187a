package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type client struct {
	lim  *rate.Limiter
	seen time.Time
}

// Limiter keeps one token bucket per key (client IP). Buckets idle longer than
// idleTTL are dropped by Sweep.
type Limiter struct {
	mu      sync.Mutex
	m       map[string]*client
	rps     rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time
}

func New(rps float64, burst int, idleTTL time.Duration) *Limiter {
	return &Limiter{
		m:       make(map[string]*client),
		rps:     rate.Limit(rps),
		burst:   burst,
		idleTTL: idleTTL,
		now:     time.Now,
	}
}

// Allow returns true if one token can be consumed for key.
func (l *Limiter) Allow(key string) bool {
	now := l.now()

	l.mu.Lock()
	c, ok := l.m[key]
	if !ok {
		c = &client{lim: rate.NewLimiter(l.rps, l.burst)}
		l.m[key] = c
	}
	c.seen = now
	l.mu.Unlock()

	return c.lim.AllowN(now, 1)
}

// Sweep removes idle buckets and returns how many were dropped.
func (l *Limiter) Sweep() int {
	if l.idleTTL <= 0 {
		return 0
	}
	cutoff := l.now().Add(-l.idleTTL)

	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for k, c := range l.m {
		if c.seen.Before(cutoff) {
			delete(l.m, k)
			n++
		}
	}
	return n
}

func (l *Limiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.m)
}
