package ratelimit

import (
	"sync"
	"time"
)

// TokenBucket is an alternative admission policy: each key holds a
// bucket of capacity tokens refilled at a steady rate. Unlike
// SlidingWindow it permits short bursts up to capacity after idle
// periods. Kept exported so the admission policy can be swapped.
type TokenBucket struct {
	mu       sync.Mutex
	capacity float64
	refill   float64 // tokens per second
	buckets  map[string]*bucket
	now      func() time.Time
}

type bucket struct {
	tokens float64
	last   time.Time
}

// NewTokenBucket creates a limiter with the given capacity per key,
// refilled evenly over the window.
func NewTokenBucket(capacity int, window time.Duration) *TokenBucket {
	return &TokenBucket{
		capacity: float64(capacity),
		refill:   float64(capacity) / window.Seconds(),
		buckets:  make(map[string]*bucket),
		now:      time.Now,
	}
}

func (l *TokenBucket) get(key string, now time.Time) *bucket {
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.capacity, last: now}
		l.buckets[key] = b
		return b
	}
	elapsed := now.Sub(b.last).Seconds()
	b.tokens += elapsed * l.refill
	if b.tokens > l.capacity {
		b.tokens = l.capacity
	}
	b.last = now
	return b
}

// Allow reports whether a request for key is admitted, consuming a token
// if so.
func (l *TokenBucket) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.get(key, l.now())
	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// Remaining returns the whole tokens left for key.
func (l *TokenBucket) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return int(l.get(key, l.now()).tokens)
}

// ResetTime returns how long until key regains a full token. Zero when a
// token is already available.
func (l *TokenBucket) ResetTime(key string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.get(key, l.now())
	if b.tokens >= 1 {
		return 0
	}
	deficit := 1 - b.tokens
	return time.Duration(deficit / l.refill * float64(time.Second))
}
