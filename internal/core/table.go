package core

import (
	"context"
	"fmt"
	"time"
)

// Table binds a schema to a row store.
// A Table is not safe for concurrent use; callers serialize access through
// the service's write gate.
type Table struct {
	info  TableInfo
	store RowStore
	ids   *IDGenerator
	now   func() time.Time

	checked bool // column count verified against the schema
}

// NewTable creates a Table. A nil clock uses time.Now.
func NewTable(info TableInfo, store RowStore, ids *IDGenerator, now func() time.Time) *Table {
	if now == nil {
		now = time.Now
	}
	return &Table{info: info, store: store, ids: ids, now: now}
}

// Info returns the table schema.
func (t *Table) Info() TableInfo {
	return t.info
}

// Name returns the table name.
func (t *Table) Name() string {
	return t.info.Name
}

// verify checks the stored column count against the schema once per Table.
func (t *Table) verify(ctx context.Context) error {
	if t.checked {
		return nil
	}
	n, err := t.store.GetColumnCount(ctx, t.info.Sheet)
	if err != nil {
		return fmt.Errorf("table %s: column count: %w", t.info.Name, err)
	}
	if n != len(t.info.Fields) {
		return newError(ErrSchemaDrift, "table %s has %d columns, schema expects %d", t.info.Name, n, len(t.info.Fields))
	}
	t.checked = true
	return nil
}

// rows loads every stored row, header included.
func (t *Table) rows(ctx context.Context) ([][]any, error) {
	if err := t.verify(ctx); err != nil {
		return nil, err
	}
	rows, err := t.store.GetAllRows(ctx, t.info.Sheet)
	if err != nil {
		return nil, fmt.Errorf("table %s: read rows: %w", t.info.Name, err)
	}
	return rows, nil
}

// RetrieveAll returns every record keyed by its stringified id.
func (t *Table) RetrieveAll(ctx context.Context) (RecordCollection, error) {
	rows, err := t.rows(ctx)
	if err != nil {
		return nil, err
	}

	out := make(RecordCollection, len(rows))
	for i := 1; i < len(rows); i++ {
		rec, err := t.decode(rows[i])
		if err != nil {
			return nil, fmt.Errorf("table %s row %d: %w", t.info.Name, i+1, err)
		}
		key := Key(rec.ID())
		if _, dup := out[key]; dup {
			return nil, newError(ErrDuplicateKey, "duplicate primary key %s in table %s", key, t.info.Name)
		}
		out[key] = rec
	}
	return out, nil
}

// Find returns the record with the given id.
func (t *Table) Find(ctx context.Context, id int64) (Record, error) {
	all, err := t.RetrieveAll(ctx)
	if err != nil {
		return nil, err
	}
	rec, ok := all[Key(id)]
	if !ok {
		return nil, newError(ErrNotFound, "primary key %d not found in table %s", id, t.info.Name)
	}
	return rec, nil
}

// Create appends a record. A date of -1 is stamped with the current time
// and an id of -1 is replaced by a freshly issued id. The returned record is
// what RetrieveAll will yield for the new row.
func (t *Table) Create(ctx context.Context, rec Record) (Record, error) {
	if t.info.IsForm {
		return nil, newError(ErrFormWriteForbidden, "create on form table %s", t.info.Name)
	}
	if err := t.verify(ctx); err != nil {
		return nil, err
	}

	out := rec.Clone()
	if out.Date() == UnsetDate {
		out["date"] = t.now().UnixMilli()
	}
	if out.ID() == -1 {
		out["id"] = float64(t.ids.Next())
	}
	return t.append(ctx, out)
}

// Submit appends a submission to a form table, stamping the date when unset.
func (t *Table) Submit(ctx context.Context, rec Record) (Record, error) {
	if !t.info.IsForm {
		return nil, newError(ErrBadArgument, "table %s does not accept form submissions", t.info.Name)
	}
	if err := t.verify(ctx); err != nil {
		return nil, err
	}

	out := rec.Clone()
	delete(out, "id")
	if out.Date() == UnsetDate {
		out["date"] = t.now().UnixMilli()
	}
	return t.append(ctx, out)
}

func (t *Table) append(ctx context.Context, rec Record) (Record, error) {
	row, err := t.encode(rec)
	if err != nil {
		return nil, fmt.Errorf("table %s: %w", t.info.Name, err)
	}
	if err := t.store.AppendRow(ctx, t.info.Sheet, row); err != nil {
		return nil, fmt.Errorf("table %s: append row: %w", t.info.Name, err)
	}
	return t.decode(row)
}

// Update overwrites the row whose primary key equals rec's id.
func (t *Table) Update(ctx context.Context, rec Record) error {
	if t.info.IsForm {
		return newError(ErrFormWriteForbidden, "update on form table %s", t.info.Name)
	}
	rows, err := t.rows(ctx)
	if err != nil {
		return err
	}
	pos, err := t.locate(rows, rec.ID())
	if err != nil {
		return err
	}
	row, err := t.encode(rec)
	if err != nil {
		return fmt.Errorf("table %s: %w", t.info.Name, err)
	}
	if err := t.store.UpdateRow(ctx, t.info.Sheet, pos, row); err != nil {
		return fmt.Errorf("table %s: update row: %w", t.info.Name, err)
	}
	return nil
}

// UpdateAll overwrites many rows using a single primary key index.
// Every record is encoded before any row is written. An empty table is a no-op.
func (t *Table) UpdateAll(ctx context.Context, recs []Record) error {
	if t.info.IsForm {
		return newError(ErrFormWriteForbidden, "update on form table %s", t.info.Name)
	}
	rows, err := t.rows(ctx)
	if err != nil {
		return err
	}
	if len(rows) <= 1 {
		return nil
	}

	index, err := t.index(rows)
	if err != nil {
		return err
	}

	type write struct {
		pos int
		row []any
	}
	writes := make([]write, 0, len(recs))
	for _, rec := range recs {
		positions := index[rec.ID()]
		switch {
		case len(positions) == 0:
			return newError(ErrNotFound, "primary key %d not found in table %s", rec.ID(), t.info.Name)
		case len(positions) > 1:
			return newError(ErrDuplicateKey, "duplicate primary key %d in table %s", rec.ID(), t.info.Name)
		}
		row, err := t.encode(rec)
		if err != nil {
			return fmt.Errorf("table %s: %w", t.info.Name, err)
		}
		writes = append(writes, write{pos: positions[0], row: row})
	}

	for _, w := range writes {
		if err := t.store.UpdateRow(ctx, t.info.Sheet, w.pos, w.row); err != nil {
			return fmt.Errorf("table %s: update row %d: %w", t.info.Name, w.pos+1, err)
		}
	}
	return nil
}

// Delete removes the row with the given id.
func (t *Table) Delete(ctx context.Context, id int64) error {
	if t.info.IsForm {
		return newError(ErrFormWriteForbidden, "delete on form table %s", t.info.Name)
	}
	rows, err := t.rows(ctx)
	if err != nil {
		return err
	}
	pos, err := t.locate(rows, id)
	if err != nil {
		return err
	}
	if err := t.store.DeleteRow(ctx, t.info.Sheet, pos); err != nil {
		return fmt.Errorf("table %s: delete row: %w", t.info.Name, err)
	}
	return nil
}

// RebuildHeaders overwrites the header row with the schema's field names,
// writing it when the sheet is empty.
func (t *Table) RebuildHeaders(ctx context.Context) error {
	cols := t.info.Columns()
	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c
	}

	rows, err := t.store.GetAllRows(ctx, t.info.Sheet)
	if err != nil {
		return fmt.Errorf("table %s: read rows: %w", t.info.Name, err)
	}
	if len(rows) == 0 {
		err = t.store.AppendRow(ctx, t.info.Sheet, header)
	} else {
		err = t.store.UpdateRow(ctx, t.info.Sheet, 0, header)
	}
	if err != nil {
		return fmt.Errorf("table %s: write header: %w", t.info.Name, err)
	}
	t.checked = false
	return nil
}

// locate finds the single row position holding id by scanning the key column.
func (t *Table) locate(rows [][]any, id int64) (int, error) {
	key := t.info.Fields[0]
	found := -1
	for i := 1; i < len(rows); i++ {
		if len(rows[i]) == 0 {
			continue
		}
		v, err := key.Parse(rows[i][0])
		if err != nil {
			return -1, fmt.Errorf("table %s row %d: %w", t.info.Name, i+1, err)
		}
		if asInt(v) != id {
			continue
		}
		if found >= 0 {
			return -1, newError(ErrDuplicateKey, "duplicate primary key %d in table %s", id, t.info.Name)
		}
		found = i
	}
	if found < 0 {
		return -1, newError(ErrNotFound, "primary key %d not found in table %s", id, t.info.Name)
	}
	return found, nil
}

// index maps each primary key to the row positions holding it.
func (t *Table) index(rows [][]any) (map[int64][]int, error) {
	key := t.info.Fields[0]
	out := make(map[int64][]int, len(rows))
	for i := 1; i < len(rows); i++ {
		if len(rows[i]) == 0 {
			continue
		}
		v, err := key.Parse(rows[i][0])
		if err != nil {
			return nil, fmt.Errorf("table %s row %d: %w", t.info.Name, i+1, err)
		}
		id := asInt(v)
		out[id] = append(out[id], i)
	}
	return out, nil
}

// decode parses a stored row. Missing trailing cells are treated as blank.
func (t *Table) decode(row []any) (Record, error) {
	rec := make(Record, len(t.info.Fields)+1)
	for i, f := range t.info.Fields {
		var raw any = ""
		if i < len(row) && row[i] != nil {
			raw = row[i]
		}
		v, err := f.Parse(raw)
		if err != nil {
			return nil, err
		}
		rec[f.Name] = v
	}
	if t.info.IsForm {
		rec["id"] = rec["date"]
	}
	return rec, nil
}

// encode serializes a record in column order. Missing fields are written blank.
func (t *Table) encode(rec Record) ([]any, error) {
	row := make([]any, len(t.info.Fields))
	for i, f := range t.info.Fields {
		v, ok := rec[f.Name]
		if !ok {
			v = f.zero()
		}
		cell, err := f.Serialize(v)
		if err != nil {
			return nil, err
		}
		row[i] = cell
	}
	return row, nil
}
