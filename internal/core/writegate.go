package core

import (
	"context"
	"sync"
	"time"
)

// WriteGate serializes access to the row store.
// Every table operation is a read-everything, mutate, write-back sequence with
// no isolation, so only one request or job may run at a time. Callers that
// cannot get the gate within maxWait receive ErrBusy.
type WriteGate struct {
	semaphore chan struct{}
	maxWait   time.Duration

	mu      sync.RWMutex
	holder  string
	since   time.Time
	waiting int
}

// NewWriteGate creates a gate. A zero maxWait defaults to 30 seconds.
func NewWriteGate(maxWait time.Duration) *WriteGate {
	if maxWait <= 0 {
		maxWait = 30 * time.Second
	}
	return &WriteGate{
		semaphore: make(chan struct{}, 1),
		maxWait:   maxWait,
	}
}

// Acquire blocks until the gate is free, the wait times out or ctx is done.
// op names the holder for Status.
func (g *WriteGate) Acquire(ctx context.Context, op string) error {
	g.mu.Lock()
	g.waiting++
	g.mu.Unlock()
	defer func() {
		g.mu.Lock()
		g.waiting--
		g.mu.Unlock()
	}()

	waitCtx, cancel := context.WithTimeout(ctx, g.maxWait)
	defer cancel()

	select {
	case g.semaphore <- struct{}{}:
		g.mu.Lock()
		g.holder = op
		g.since = time.Now()
		g.mu.Unlock()
		return nil

	case <-waitCtx.Done():
		// Check if original context was cancelled vs timeout
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return newError(ErrBusy, "waited %s for %q", g.maxWait, g.Holder())
	}
}

// Release frees the gate. Must be called exactly once per successful Acquire.
func (g *WriteGate) Release() {
	g.mu.Lock()
	g.holder = ""
	g.since = time.Time{}
	g.mu.Unlock()

	<-g.semaphore
}

// Holder returns the operation holding the gate, or "".
func (g *WriteGate) Holder() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.holder
}

// WaitForDrain blocks until the gate is free or ctx is cancelled.
// Used during shutdown so a running batch finishes its writes.
func (g *WriteGate) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		if g.Holder() == "" && len(g.semaphore) == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// WriteGateStatus is a snapshot of the gate.
type WriteGateStatus struct {
	Holder  string    `json:"holder,omitempty"`
	Since   time.Time `json:"since,omitempty"`
	Waiting int       `json:"waiting"`
}

// Status returns the current gate state for monitoring.
func (g *WriteGate) Status() WriteGateStatus {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return WriteGateStatus{Holder: g.holder, Since: g.since, Waiting: g.waiting}
}
