package workflow

import (
	"context"
	"sync"
)

// CancelRegistry tracks the cancel function of every running workflow
// so the API layer can stop a session by id.
type CancelRegistry struct {
	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

func NewCancelRegistry() *CancelRegistry {
	return &CancelRegistry{cancels: make(map[string]context.CancelFunc)}
}

// Register derives a cancellable context for a session and remembers
// its cancel function until Release.
func (r *CancelRegistry) Register(parent context.Context, sessionID string) context.Context {
	ctx, cancel := context.WithCancel(parent)
	r.mu.Lock()
	r.cancels[sessionID] = cancel
	r.mu.Unlock()
	return ctx
}

// Cancel stops the session's workflow. Returns false when the session
// is not running.
func (r *CancelRegistry) Cancel(sessionID string) bool {
	r.mu.Lock()
	cancel, ok := r.cancels[sessionID]
	delete(r.cancels, sessionID)
	r.mu.Unlock()
	if ok {
		cancel()
	}
	return ok
}

// Release drops the registration once the workflow finishes. The
// context is cancelled to free its resources.
func (r *CancelRegistry) Release(sessionID string) {
	r.Cancel(sessionID)
}

// Running reports whether the session has an active workflow.
func (r *CancelRegistry) Running(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.cancels[sessionID]
	return ok
}
