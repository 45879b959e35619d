// Package ratelimit provides per-key admission control for session
// creation. SlidingWindow is the wired policy; TokenBucket is an
// exported alternative with the same surface.
package ratelimit

import (
	"sync"
	"time"
)

// SlidingWindow is an in-memory sliding window rate limiter. It tracks
// request timestamps per key and allows up to maxRequests within a
// rolling window. Safe for concurrent use.
type SlidingWindow struct {
	mu         sync.Mutex
	maxReqs    int
	window     time.Duration
	timestamps map[string][]time.Time
	now        func() time.Time
}

// NewSlidingWindow creates a limiter allowing maxRequests per key per window.
func NewSlidingWindow(maxRequests int, window time.Duration) *SlidingWindow {
	return &SlidingWindow{
		maxReqs:    maxRequests,
		window:     window,
		timestamps: make(map[string][]time.Time),
		now:        time.Now,
	}
}

// prune drops timestamps outside the current window. Caller holds mu.
func (l *SlidingWindow) prune(key string, now time.Time) {
	cutoff := now.Add(-l.window)
	kept := l.timestamps[key][:0]
	for _, ts := range l.timestamps[key] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) == 0 {
		delete(l.timestamps, key)
	} else {
		l.timestamps[key] = kept
	}
}

// Allow reports whether a request for key is admitted, recording it if so.
func (l *SlidingWindow) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.prune(key, now)

	if len(l.timestamps[key]) < l.maxReqs {
		l.timestamps[key] = append(l.timestamps[key], now)
		return true
	}
	return false
}

// Remaining returns how many requests key may still make in the window.
func (l *SlidingWindow) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.prune(key, l.now())
	if n := l.maxReqs - len(l.timestamps[key]); n > 0 {
		return n
	}
	return 0
}

// ResetTime returns how long until the oldest recorded request for key
// leaves the window. Zero when the key has no recorded requests.
func (l *SlidingWindow) ResetTime(key string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.prune(key, now)
	ts := l.timestamps[key]
	if len(ts) == 0 {
		return 0
	}
	if d := ts[0].Add(l.window).Sub(now); d > 0 {
		return d
	}
	return 0
}
