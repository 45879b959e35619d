package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeClock lets tests advance time deterministically.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestWindow(maxReqs int, window time.Duration) (*SlidingWindow, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	l := NewSlidingWindow(maxReqs, window)
	l.now = clock.now
	return l, clock
}

func TestSlidingWindowAllowsUpToLimit(t *testing.T) {
	l, _ := newTestWindow(3, time.Hour)

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("1.2.3.4"), "request %d", i)
	}
	assert.False(t, l.Allow("1.2.3.4"))
	assert.Equal(t, 0, l.Remaining("1.2.3.4"))
}

func TestSlidingWindowKeysIndependent(t *testing.T) {
	l, _ := newTestWindow(1, time.Hour)

	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"))
}

func TestSlidingWindowExpiry(t *testing.T) {
	l, clock := newTestWindow(2, time.Minute)

	assert.True(t, l.Allow("k"))
	clock.advance(30 * time.Second)
	assert.True(t, l.Allow("k"))
	assert.False(t, l.Allow("k"))

	// first request leaves the window
	clock.advance(31 * time.Second)
	assert.Equal(t, 1, l.Remaining("k"))
	assert.True(t, l.Allow("k"))
	assert.False(t, l.Allow("k"))
}

func TestSlidingWindowResetTime(t *testing.T) {
	l, clock := newTestWindow(1, time.Minute)

	assert.Equal(t, time.Duration(0), l.ResetTime("k"))

	l.Allow("k")
	clock.advance(20 * time.Second)
	assert.Equal(t, 40*time.Second, l.ResetTime("k"))

	clock.advance(41 * time.Second)
	assert.Equal(t, time.Duration(0), l.ResetTime("k"))
}

// A denied request must not consume capacity: denials while the window
// is full never push the reset time further out.
func TestSlidingWindowDenialsDoNotExtendWindow(t *testing.T) {
	l, clock := newTestWindow(1, time.Minute)

	assert.True(t, l.Allow("k"))
	for i := 0; i < 5; i++ {
		clock.advance(time.Second)
		assert.False(t, l.Allow("k"))
	}
	// reset still measured from the single admitted request
	assert.Equal(t, 55*time.Second, l.ResetTime("k"))
}

func TestTokenBucketBurstThenRefill(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	l := NewTokenBucket(2, time.Minute) // refills 2 tokens/min
	l.now = clock.now

	assert.True(t, l.Allow("k"))
	assert.True(t, l.Allow("k"))
	assert.False(t, l.Allow("k"))
	assert.Equal(t, 0, l.Remaining("k"))

	// half the window refills one token
	clock.advance(30 * time.Second)
	assert.True(t, l.Allow("k"))
	assert.False(t, l.Allow("k"))
}

func TestTokenBucketResetTime(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	l := NewTokenBucket(1, time.Minute)
	l.now = clock.now

	assert.Equal(t, time.Duration(0), l.ResetTime("k"))
	l.Allow("k")
	assert.InDelta(t, time.Minute.Seconds(), l.ResetTime("k").Seconds(), 0.001)

	clock.advance(30 * time.Second)
	assert.InDelta(t, (30 * time.Second).Seconds(), l.ResetTime("k").Seconds(), 0.001)
}
