// Package csvstore keeps each sheet as a CSV file in one directory.
//
// Every cell is written as text. Dates are written in RFC 3339 with
// millisecond precision and read back as strings; the field codec parses
// them. Each mutation rewrites the whole file through a temp file and a
// rename, so a crash never leaves a half-written sheet behind.
package csvstore

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ErrRowOutOfRange is returned when a row index does not exist.
var ErrRowOutOfRange = errors.New("row index out of range")

// ErrInvalidSheet is returned for a sheet name that is not a plain file name.
var ErrInvalidSheet = errors.New("invalid sheet name")

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// Store reads and writes <dir>/<sheet>.csv.
type Store struct {
	dir string
	mu  sync.RWMutex
}

// New creates a Store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("csvstore: create %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory holding the sheet files.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(sheet string) (string, error) {
	if sheet == "" || filepath.Base(sheet) != sheet || strings.Contains(sheet, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidSheet, sheet)
	}
	return filepath.Join(s.dir, sheet+".csv"), nil
}

// GetAllRows returns every row of the sheet, header first. A missing file is
// an empty sheet.
func (s *Store) GetAllRows(ctx context.Context, sheet string) ([][]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, err := s.read(sheet)
	if err != nil {
		return nil, err
	}
	out := make([][]any, len(records))
	for i, rec := range records {
		row := make([]any, len(rec))
		for j, cell := range rec {
			row[j] = cell
		}
		out[i] = row
	}
	return out, nil
}

// AppendRow adds a row at the end of the sheet.
func (s *Store) AppendRow(ctx context.Context, sheet string, row []any) error {
	return s.mutate(ctx, sheet, func(records [][]string) ([][]string, error) {
		return append(records, encodeRow(row)), nil
	})
}

// UpdateRow overwrites the row at rowIndex.
func (s *Store) UpdateRow(ctx context.Context, sheet string, rowIndex int, row []any) error {
	return s.mutate(ctx, sheet, func(records [][]string) ([][]string, error) {
		if rowIndex < 0 || rowIndex >= len(records) {
			return nil, fmt.Errorf("%w: sheet %s row %d of %d", ErrRowOutOfRange, sheet, rowIndex, len(records))
		}
		records[rowIndex] = encodeRow(row)
		return records, nil
	})
}

// DeleteRow removes the row at rowIndex.
func (s *Store) DeleteRow(ctx context.Context, sheet string, rowIndex int) error {
	return s.mutate(ctx, sheet, func(records [][]string) ([][]string, error) {
		if rowIndex < 0 || rowIndex >= len(records) {
			return nil, fmt.Errorf("%w: sheet %s row %d of %d", ErrRowOutOfRange, sheet, rowIndex, len(records))
		}
		return append(records[:rowIndex], records[rowIndex+1:]...), nil
	})
}

// GetColumnCount returns the width of the header row, or 0 for an empty sheet.
func (s *Store) GetColumnCount(ctx context.Context, sheet string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, err := s.read(sheet)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}
	return len(records[0]), nil
}

func (s *Store) mutate(ctx context.Context, sheet string, fn func([][]string) ([][]string, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read(sheet)
	if err != nil {
		return err
	}
	records, err = fn(records)
	if err != nil {
		return err
	}
	return s.write(sheet, records)
}

func (s *Store) read(sheet string) ([][]string, error) {
	path, err := s.path(sheet)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("csvstore: open %s: %w", sheet, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // rows may be shorter than the header
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csvstore: read %s: %w", sheet, err)
	}
	return records, nil
}

func (s *Store) write(sheet string, records [][]string) error {
	path, err := s.path(sheet)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, "."+sheet+"-*.csv")
	if err != nil {
		return fmt.Errorf("csvstore: temp file for %s: %w", sheet, err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	w := csv.NewWriter(tmp)
	if err := w.WriteAll(records); err != nil {
		tmp.Close()
		return fmt.Errorf("csvstore: write %s: %w", sheet, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("csvstore: close %s: %w", sheet, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("csvstore: replace %s: %w", sheet, err)
	}
	return nil
}

func encodeRow(row []any) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		out[i] = encodeCell(cell)
	}
	return out
}

func encodeCell(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(c, 10)
	case int:
		return strconv.Itoa(c)
	case bool:
		return strconv.FormatBool(c)
	case time.Time:
		return c.Format(timeLayout)
	default:
		return fmt.Sprint(c)
	}
}
