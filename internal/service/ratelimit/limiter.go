package ratelimit

import (
	"sync"
	"time"
)

// pruneThreshold is the bucket count past which Allow discards idle buckets.
const pruneThreshold = 4096

// idleAfter is how long a bucket can sit untouched before pruning removes it.
const idleAfter = 10 * time.Minute

type bucket struct {
	tokens     float64
	capacity   float64
	refillRate float64 // tokens per second
	last       time.Time
}

// Limiter throttles inbound requests with one token bucket per key. Keys are
// typically client address plus endpoint, so each caller gets an independent
// budget per route.
type Limiter struct {
	mu sync.Mutex
	m  map[string]*bucket
}

func New() *Limiter { return &Limiter{m: make(map[string]*bucket)} }

// Allow consumes one token for key if available. A new key starts with a full
// bucket of the given capacity, refilling continuously at refillPerSec.
func (l *Limiter) Allow(key string, capacity, refillPerSec float64) bool {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.m[key]
	if !ok {
		if len(l.m) >= pruneThreshold {
			l.prune(now)
		}
		b = &bucket{tokens: capacity, capacity: capacity, refillRate: refillPerSec, last: now}
		l.m[key] = b
	}

	elapsed := now.Sub(b.last).Seconds()
	if elapsed > 0 {
		b.tokens += elapsed * b.refillRate
		if b.tokens > b.capacity {
			b.tokens = b.capacity
		}
		b.last = now
	}

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// prune drops buckets that have not been touched recently. Caller holds mu.
func (l *Limiter) prune(now time.Time) {
	for key, b := range l.m {
		if now.Sub(b.last) > idleAfter {
			delete(l.m, key)
		}
	}
}
