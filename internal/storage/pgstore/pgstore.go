// Package pgstore keeps sheets in a PostgreSQL table, one row per sheet row.
//
//	sheet_rows(sheet text, position int, cells jsonb)
//
// position is the row index within the sheet; the header row has position 0.
// cells is a JSON array, so every cell comes back as string, float64, bool
// or nil. Dates are stored as RFC 3339 strings.
package pgstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrRowOutOfRange is returned when a row index does not exist.
var ErrRowOutOfRange = errors.New("row index out of range")

const tableName = "sheet_rows"

// schemaSQL creates the backing table. The key is deferrable so DeleteRow can
// shift positions down in a single statement.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS sheet_rows (
    sheet    TEXT    NOT NULL,
    position INTEGER NOT NULL,
    cells    JSONB   NOT NULL,
    PRIMARY KEY (sheet, position) DEFERRABLE INITIALLY DEFERRED
)`

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// DB is the subset of *pgxpool.Pool the store uses.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements the row store contract on PostgreSQL.
type Store struct {
	db DB
}

// New creates a Store. Call EnsureSchema before first use.
func New(db DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the backing table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("pgstore: create schema: %w", err)
	}
	return nil
}

// GetAllRows returns every row of the sheet ordered by position.
func (s *Store) GetAllRows(ctx context.Context, sheet string) ([][]any, error) {
	query, args, err := selectRowsQuery(sheet)
	if err != nil {
		return nil, errorSQLBuild(err)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgstore: read %s: %w", sheet, err)
	}
	defer rows.Close()

	var out [][]any
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("pgstore: scan %s: %w", sheet, err)
		}
		cells, err := decodeCells(raw)
		if err != nil {
			return nil, fmt.Errorf("pgstore: decode %s row %d: %w", sheet, len(out), err)
		}
		out = append(out, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgstore: read %s: %w", sheet, err)
	}
	return out, nil
}

// AppendRow adds a row after the last position of the sheet.
func (s *Store) AppendRow(ctx context.Context, sheet string, row []any) error {
	cells, err := encodeCells(row)
	if err != nil {
		return err
	}

	return s.inTx(ctx, sheet, func(tx pgx.Tx) error {
		query, args, err := nextPositionQuery(sheet)
		if err != nil {
			return errorSQLBuild(err)
		}
		var next int
		if err := tx.QueryRow(ctx, query, args...).Scan(&next); err != nil {
			return fmt.Errorf("pgstore: next position in %s: %w", sheet, err)
		}

		query, args, err = psql.Insert(tableName).
			Columns("sheet", "position", "cells").
			Values(sheet, next, cells).
			ToSql()
		if err != nil {
			return errorSQLBuild(err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("pgstore: append to %s: %w", sheet, err)
		}
		return nil
	})
}

// UpdateRow overwrites the row at rowIndex.
func (s *Store) UpdateRow(ctx context.Context, sheet string, rowIndex int, row []any) error {
	cells, err := encodeCells(row)
	if err != nil {
		return err
	}

	query, args, err := psql.Update(tableName).
		Set("cells", cells).
		Where(sq.Eq{"sheet": sheet, "position": rowIndex}).
		ToSql()
	if err != nil {
		return errorSQLBuild(err)
	}

	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("pgstore: update %s row %d: %w", sheet, rowIndex, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: sheet %s row %d", ErrRowOutOfRange, sheet, rowIndex)
	}
	return nil
}

// DeleteRow removes the row at rowIndex and shifts later rows up by one.
func (s *Store) DeleteRow(ctx context.Context, sheet string, rowIndex int) error {
	return s.inTx(ctx, sheet, func(tx pgx.Tx) error {
		query, args, err := psql.Delete(tableName).
			Where(sq.Eq{"sheet": sheet, "position": rowIndex}).
			ToSql()
		if err != nil {
			return errorSQLBuild(err)
		}
		tag, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("pgstore: delete %s row %d: %w", sheet, rowIndex, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: sheet %s row %d", ErrRowOutOfRange, sheet, rowIndex)
		}

		query, args, err = shiftQuery(sheet, rowIndex)
		if err != nil {
			return errorSQLBuild(err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("pgstore: shift %s rows after %d: %w", sheet, rowIndex, err)
		}
		return nil
	})
}

// GetColumnCount returns the width of the header row, or 0 for an empty sheet.
func (s *Store) GetColumnCount(ctx context.Context, sheet string) (int, error) {
	query, args, err := psql.Select("jsonb_array_length(cells)").
		From(tableName).
		Where(sq.Eq{"sheet": sheet, "position": 0}).
		ToSql()
	if err != nil {
		return 0, errorSQLBuild(err)
	}

	var n int
	err = s.db.QueryRow(ctx, query, args...).Scan(&n)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("pgstore: column count of %s: %w", sheet, err)
	}
	return n, nil
}

// inTx runs fn in a transaction holding a per-sheet advisory lock.
func (s *Store) inTx(ctx context.Context, sheet string, fn func(pgx.Tx) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("pgstore: begin: %w", err)
	}
	defer tx.Rollback(ctx) // no-op after commit

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", sheet); err != nil {
		return fmt.Errorf("pgstore: lock %s: %w", sheet, err)
	}
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("pgstore: commit: %w", err)
	}
	return nil
}

func selectRowsQuery(sheet string) (string, []any, error) {
	return psql.Select("cells").
		From(tableName).
		Where(sq.Eq{"sheet": sheet}).
		OrderBy("position").
		ToSql()
}

func nextPositionQuery(sheet string) (string, []any, error) {
	return psql.Select("COALESCE(MAX(position) + 1, 0)").
		From(tableName).
		Where(sq.Eq{"sheet": sheet}).
		ToSql()
}

func shiftQuery(sheet string, rowIndex int) (string, []any, error) {
	return psql.Update(tableName).
		Set("position", sq.Expr("position - 1")).
		Where(sq.And{sq.Eq{"sheet": sheet}, sq.Gt{"position": rowIndex}}).
		ToSql()
}

func encodeCells(row []any) (string, error) {
	if row == nil {
		row = []any{}
	}
	b, err := json.Marshal(row)
	if err != nil {
		return "", fmt.Errorf("pgstore: encode row: %w", err)
	}
	return string(b), nil
}

func decodeCells(raw []byte) ([]any, error) {
	var cells []any
	if err := json.Unmarshal(raw, &cells); err != nil {
		return nil, err
	}
	return cells, nil
}

func errorSQLBuild(err error) error {
	return fmt.Errorf("pgstore: failed to build sql query, %w", err)
}
