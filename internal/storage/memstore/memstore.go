// Package memstore is an in-process row store. It backs tests and the
// "memory" storage driver.
package memstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrRowOutOfRange is returned when a row index does not exist.
var ErrRowOutOfRange = errors.New("row index out of range")

// Store keeps sheets as slices of rows. Rows are copied on the way in and
// out, so callers never share backing arrays with the store.
type Store struct {
	mu     sync.RWMutex
	sheets map[string][][]any
}

// New creates an empty Store.
func New() *Store {
	return &Store{sheets: make(map[string][][]any)}
}

// Seed replaces a sheet's rows. Intended for tests and fixtures.
func (s *Store) Seed(sheet string, rows [][]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := make([][]any, len(rows))
	for i, r := range rows {
		cp[i] = copyRow(r)
	}
	s.sheets[sheet] = cp
}

// GetAllRows returns every row of the sheet, header first.
func (s *Store) GetAllRows(ctx context.Context, sheet string) ([][]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.sheets[sheet]
	out := make([][]any, len(rows))
	for i, r := range rows {
		out[i] = copyRow(r)
	}
	return out, nil
}

// AppendRow adds a row at the end of the sheet, creating the sheet if needed.
func (s *Store) AppendRow(ctx context.Context, sheet string, row []any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sheets[sheet] = append(s.sheets[sheet], copyRow(row))
	return nil
}

// UpdateRow overwrites the row at rowIndex.
func (s *Store) UpdateRow(ctx context.Context, sheet string, rowIndex int, row []any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.sheets[sheet]
	if rowIndex < 0 || rowIndex >= len(rows) {
		return fmt.Errorf("%w: sheet %s row %d of %d", ErrRowOutOfRange, sheet, rowIndex, len(rows))
	}
	rows[rowIndex] = copyRow(row)
	return nil
}

// DeleteRow removes the row at rowIndex, shifting later rows up.
func (s *Store) DeleteRow(ctx context.Context, sheet string, rowIndex int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.sheets[sheet]
	if rowIndex < 0 || rowIndex >= len(rows) {
		return fmt.Errorf("%w: sheet %s row %d of %d", ErrRowOutOfRange, sheet, rowIndex, len(rows))
	}
	s.sheets[sheet] = append(rows[:rowIndex:rowIndex], rows[rowIndex+1:]...)
	return nil
}

// GetColumnCount returns the width of the header row, or 0 for an empty sheet.
func (s *Store) GetColumnCount(ctx context.Context, sheet string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.sheets[sheet]
	if len(rows) == 0 {
		return 0, nil
	}
	return len(rows[0]), nil
}

// Sheets returns the names of every sheet holding at least one row.
func (s *Store) Sheets() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.sheets))
	for name, rows := range s.sheets {
		if len(rows) > 0 {
			out = append(out, name)
		}
	}
	return out
}

func copyRow(r []any) []any {
	if r == nil {
		return nil
	}
	out := make([]any, len(r))
	copy(out, r)
	return out
}
