package pgstore

import (
	"context"
	"errors"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

func TestQueries(t *testing.T) {
	tests := []struct {
		name     string
		build    func() (string, []any, error)
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "select rows",
			build:    func() (string, []any, error) { return selectRowsQuery("tutors") },
			wantSQL:  "SELECT cells FROM sheet_rows WHERE sheet = $1 ORDER BY position",
			wantArgs: []any{"tutors"},
		},
		{
			name:     "next position",
			build:    func() (string, []any, error) { return nextPositionQuery("tutors") },
			wantSQL:  "SELECT COALESCE(MAX(position) + 1, 0) FROM sheet_rows WHERE sheet = $1",
			wantArgs: []any{"tutors"},
		},
		{
			name:     "shift after delete",
			build:    func() (string, []any, error) { return shiftQuery("tutors", 3) },
			wantSQL:  "UPDATE sheet_rows SET position = position - 1 WHERE (sheet = $1 AND position > $2)",
			wantArgs: []any{"tutors", 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := tt.build()
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			if sql != tt.wantSQL {
				t.Errorf("sql = %q, want %q", sql, tt.wantSQL)
			}
			if !reflect.DeepEqual(args, tt.wantArgs) {
				t.Errorf("args = %v, want %v", args, tt.wantArgs)
			}
		})
	}
}

func TestCellsRoundTrip(t *testing.T) {
	when := time.Date(2024, 9, 2, 8, 0, 0, 0, time.UTC)

	raw, err := encodeCells([]any{float64(17), "Ada", true, nil, when})
	if err != nil {
		t.Fatalf("encodeCells: %v", err)
	}
	cells, err := decodeCells([]byte(raw))
	if err != nil {
		t.Fatalf("decodeCells: %v", err)
	}

	want := []any{float64(17), "Ada", true, nil, "2024-09-02T08:00:00Z"}
	if !reflect.DeepEqual(cells, want) {
		t.Errorf("cells = %#v, want %#v", cells, want)
	}
}

func TestEncodeNilRow(t *testing.T) {
	raw, err := encodeCells(nil)
	if err != nil {
		t.Fatalf("encodeCells: %v", err)
	}
	if raw != "[]" {
		t.Errorf("encodeCells(nil) = %q, want []", raw)
	}
}

// TestStore_Postgres runs against a live database when
// TUTORADMIN_TEST_DATABASE_URL is set.
func TestStore_Postgres(t *testing.T) {
	url := os.Getenv("TUTORADMIN_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TUTORADMIN_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	s := New(pool)
	if err := s.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}

	sheet := "pgstore_test_" + time.Now().Format("150405.000000")
	t.Cleanup(func() {
		pool.Exec(context.Background(), "DELETE FROM sheet_rows WHERE sheet = $1", sheet)
	})

	if n, _ := s.GetColumnCount(ctx, sheet); n != 0 {
		t.Errorf("empty sheet column count = %d, want 0", n)
	}

	for _, row := range [][]any{{"id", "name"}, {float64(1), "a"}, {float64(2), "b"}, {float64(3), "c"}} {
		if err := s.AppendRow(ctx, sheet, row); err != nil {
			t.Fatalf("AppendRow: %v", err)
		}
	}
	if err := s.UpdateRow(ctx, sheet, 3, []any{float64(3), "C"}); err != nil {
		t.Fatalf("UpdateRow: %v", err)
	}
	if err := s.DeleteRow(ctx, sheet, 1); err != nil {
		t.Fatalf("DeleteRow: %v", err)
	}

	rows, err := s.GetAllRows(ctx, sheet)
	if err != nil {
		t.Fatalf("GetAllRows: %v", err)
	}
	want := [][]any{{"id", "name"}, {float64(2), "b"}, {float64(3), "C"}}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("rows = %v, want %v", rows, want)
	}

	if n, _ := s.GetColumnCount(ctx, sheet); n != 2 {
		t.Errorf("column count = %d, want 2", n)
	}
	if err := s.UpdateRow(ctx, sheet, 9, []any{"x"}); !errors.Is(err, ErrRowOutOfRange) {
		t.Errorf("UpdateRow error = %v, want ErrRowOutOfRange", err)
	}
}
