package core

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Session caches opened tables for the duration of one request or job.
// Opening a table verifies its column count once; concurrent opens of the
// same table share that check.
type Session struct {
	store RowStore
	ids   *IDGenerator
	now   func() time.Time

	sfg    singleflight.Group
	mu     sync.Mutex
	tables map[string]*Table
}

// NewSession creates a Session over store.
func NewSession(store RowStore, ids *IDGenerator, now func() time.Time) *Session {
	if now == nil {
		now = time.Now
	}
	return &Session{
		store:  store,
		ids:    ids,
		now:    now,
		tables: make(map[string]*Table),
	}
}

// Table returns the table registered under name, opening it on first use.
func (s *Session) Table(ctx context.Context, name string) (*Table, error) {
	if t := s.cached(name); t != nil {
		return t, nil
	}

	v, err, _ := s.sfg.Do(name, func() (any, error) {
		// Double-check after singleflight barrier.
		if t := s.cached(name); t != nil {
			return t, nil
		}
		info, err := Lookup(name)
		if err != nil {
			return nil, err
		}
		t := NewTable(info, s.store, s.ids, s.now)
		if err := t.verify(ctx); err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.tables[name] = t
		s.mu.Unlock()
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Table), nil
}

func (s *Session) cached(name string) *Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tables[name]
}
