package core

import (
	"sync"
	"time"
)

// IDGenerator issues strictly increasing ids based on the millisecond clock.
// When the clock has not moved past the last issued id, the last id plus one
// is issued instead. Ids are unique only within a single writer process.
type IDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewIDGenerator creates a generator reading the given clock.
// A nil clock uses time.Now.
func NewIDGenerator(now func() time.Time) *IDGenerator {
	if now == nil {
		now = time.Now
	}
	return &IDGenerator{now: now}
}

// Next returns the next id.
func (g *IDGenerator) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now().UnixMilli()
	if ms <= g.last {
		g.last++
	} else {
		g.last = ms
	}
	idsIssued.Inc()
	return g.last
}

// Last returns the most recently issued id, or 0.
func (g *IDGenerator) Last() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last
}
