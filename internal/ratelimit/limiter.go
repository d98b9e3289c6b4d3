package ratelimit

import (
	"sync"
	"time"
)

// Limiter is a per-key token bucket. All keys share one rate and burst.
type Limiter struct {
	mu      sync.Mutex
	rate    float64
	burst   float64
	buckets map[string]*bucket
}

type bucket struct {
	tokens float64
	last   time.Time
}

func NewLimiter(rps float64, burst int) *Limiter {
	return &Limiter{
		rate:    rps,
		burst:   float64(burst),
		buckets: make(map[string]*bucket),
	}
}

// Allow returns true if the request is allowed, false if rate limited.
// A limiter with a non-positive rate or burst allows everything.
func (l *Limiter) Allow(key string, now time.Time) bool {
	if l == nil || key == "" || l.rate <= 0 || l.burst <= 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.burst, last: now}
		l.buckets[key] = b
	}

	elapsed := now.Sub(b.last).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}
	b.tokens += elapsed * l.rate
	if b.tokens > l.burst {
		b.tokens = l.burst
	}
	b.last = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// Sweep drops buckets idle long enough to have refilled completely and
// returns how many were removed.
func (l *Limiter) Sweep(now time.Time) int {
	if l == nil || l.rate <= 0 {
		return 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	full := time.Duration(l.burst / l.rate * float64(time.Second))
	removed := 0
	for key, b := range l.buckets {
		if now.Sub(b.last) >= full {
			delete(l.buckets, key)
			removed++
		}
	}
	return removed
}

// Len reports how many keys are tracked.
func (l *Limiter) Len() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
