// Package bus is the in-process pub/sub that routes workflow events to
// WebSocket connections. Each session can have multiple listeners
// (multiple browser tabs); the last 100 events per session are kept for
// late joiners.
package bus

import (
	"log/slog"
	"sync"
)

const maxHistory = 100

// Listener receives one event. A non-nil error marks the listener dead;
// it is removed during the publish that observed the failure.
type Listener func(Event) error

// Subscription identifies a registered listener so it can be removed.
type Subscription struct {
	fn Listener
}

// Bus fans events out to per-session listener sets. Delivery is
// synchronous on the publisher's goroutine; a per-session delivery lock
// keeps concurrent publishers (the workflow goroutine and the cancel
// endpoint) delivering in the same order events land in history.
type Bus struct {
	mu        sync.Mutex
	listeners map[string]map[*Subscription]struct{}
	history   map[string][]Event
	delivery  map[string]*sync.Mutex
}

func New() *Bus {
	return &Bus{
		listeners: make(map[string]map[*Subscription]struct{}),
		history:   make(map[string][]Event),
		delivery:  make(map[string]*sync.Mutex),
	}
}

// Subscribe registers a listener for a session's events.
func (b *Bus) Subscribe(sessionID string, fn Listener) *Subscription {
	sub, _ := b.SubscribeWithHistory(sessionID, fn)
	return sub
}

// SubscribeWithHistory registers a listener and snapshots the retained
// history in one critical section, so no event can fall between the
// snapshot and the subscription. An event in flight when this runs may
// show up both in the snapshot and live; nothing is lost.
func (b *Bus) SubscribeWithHistory(sessionID string, fn Listener) (*Subscription, []Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &Subscription{fn: fn}
	if b.listeners[sessionID] == nil {
		b.listeners[sessionID] = make(map[*Subscription]struct{})
	}
	b.listeners[sessionID][sub] = struct{}{}
	slog.Debug("Event bus subscribe", "session_id", sessionID, "total_listeners", len(b.listeners[sessionID]))

	hist := b.history[sessionID]
	out := make([]Event, len(hist))
	copy(out, hist)
	return sub, out
}

// Unsubscribe removes a listener. Safe to call with an already-removed
// subscription.
func (b *Bus) Unsubscribe(sessionID string, sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	set := b.listeners[sessionID]
	delete(set, sub)
	if len(set) == 0 {
		delete(b.listeners, sessionID)
	}
}

// Publish appends the event to the session's history and delivers it to
// every listener. Listeners that return an error are dropped. The
// history append and the deliveries happen inside one per-session
// delivery critical section, so listeners see history order even with
// concurrent publishers.
func (b *Bus) Publish(sessionID string, ev Event) {
	lock := b.deliveryLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	b.mu.Lock()
	hist := append(b.history[sessionID], ev)
	if len(hist) > maxHistory {
		hist = hist[len(hist)-maxHistory:]
	}
	b.history[sessionID] = hist

	subs := make([]*Subscription, 0, len(b.listeners[sessionID]))
	for sub := range b.listeners[sessionID] {
		subs = append(subs, sub)
	}
	b.mu.Unlock()

	var dead []*Subscription
	for _, sub := range subs {
		if err := sub.fn(ev); err != nil {
			slog.Warn("Event listener failed", "session_id", sessionID, "error", err)
			dead = append(dead, sub)
		}
	}
	for _, sub := range dead {
		b.Unsubscribe(sessionID, sub)
	}
}

func (b *Bus) deliveryLock(sessionID string) *sync.Mutex {
	b.mu.Lock()
	defer b.mu.Unlock()

	lock := b.delivery[sessionID]
	if lock == nil {
		lock = &sync.Mutex{}
		b.delivery[sessionID] = lock
	}
	return lock
}

// History returns a copy of the retained events for a session, oldest
// first.
func (b *Bus) History(sessionID string) []Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	hist := b.history[sessionID]
	out := make([]Event, len(hist))
	copy(out, hist)
	return out
}

// Callback returns a publish function bound to one session. This is the
// bridge handed to workflow nodes.
func (b *Bus) Callback(sessionID string) func(Event) {
	return func(ev Event) {
		b.Publish(sessionID, ev)
	}
}

// Cleanup drops all listeners and history for a session.
func (b *Bus) Cleanup(sessionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.listeners, sessionID)
	delete(b.history, sessionID)
	delete(b.delivery, sessionID)
}
