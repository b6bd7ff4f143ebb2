package core

import (
	"context"
	"strconv"
)

// RowStore is the narrow storage contract the table engine depends on.
// Row 0 of every sheet is the header row; rowIndex always indexes the slice
// returned by GetAllRows. Cells are nil, string, float64, bool or time.Time.
type RowStore interface {
	GetAllRows(ctx context.Context, sheet string) ([][]any, error)
	AppendRow(ctx context.Context, sheet string, row []any) error
	UpdateRow(ctx context.Context, sheet string, rowIndex int, row []any) error
	DeleteRow(ctx context.Context, sheet string, rowIndex int) error
	GetColumnCount(ctx context.Context, sheet string) (int, error)
}

// FieldType represents the in-memory type of a column.
type FieldType int

const (
	FieldBool FieldType = iota
	FieldNumber
	FieldString
	FieldDate
	FieldJSON
)

func (t FieldType) String() string {
	switch t {
	case FieldBool:
		return "boolean"
	case FieldNumber:
		return "number"
	case FieldString:
		return "string"
	case FieldDate:
		return "date"
	case FieldJSON:
		return "json"
	default:
		return "value"
	}
}

// Field defines a single column of a table.
type Field struct {
	Name       string    `json:"name"`                 // Column header name
	Type       FieldType `json:"type"`                 // In-memory type
	EnumValues []string  `json:"enumValues,omitempty"` // Allowed values for string fields (optional)
}

// TableInfo is the schema of one table.
// Field order is the physical column order in storage.
type TableInfo struct {
	Name   string  `json:"name"`   // Lookup key: "tutors"
	Sheet  string  `json:"sheet"`  // Backing sheet identifier
	Fields []Field `json:"fields"` // Ordered columns
	IsForm bool    `json:"isForm"` // Append-only submissions keyed by date
}

// Columns returns the header names in storage order.
func (t TableInfo) Columns() []string {
	cols := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		cols[i] = f.Name
	}
	return cols
}

// FieldIndex returns the position of a named field, or -1.
func (t TableInfo) FieldIndex(name string) int {
	for i, f := range t.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Record maps field names to typed values.
// Numbers are float64, dates are int64 epoch milliseconds (-1 when unset),
// JSON fields hold whatever encoding/json decodes.
type Record map[string]any

// RecordCollection is keyed by the stringified record id.
type RecordCollection map[string]Record

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// ID returns the record id, or -1 when it is missing or not numeric.
func (r Record) ID() int64 {
	return r.Int("id")
}

// Date returns the record date in epoch milliseconds, or -1.
func (r Record) Date() int64 {
	return r.Int("date")
}

// Int returns a numeric field as int64, or -1 when it is missing or not numeric.
func (r Record) Int(name string) int64 {
	return asInt(r[name])
}

func asInt(v any) int64 {
	switch v := v.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return -1
	}
}

// Str returns a string field, or "" when it is missing.
func (r Record) Str(name string) string {
	s, _ := r[name].(string)
	return s
}

// Bool returns a boolean field, or false when it is missing.
func (r Record) Bool(name string) bool {
	b, _ := r[name].(bool)
	return b
}

// Ref returns a reference field as a NullID.
func (r Record) Ref(name string) NullID {
	return NullIDFrom(r.Int(name))
}

// NullID is an optional record reference. The storage form of an unset
// reference is -1.
type NullID struct {
	ID    int64
	Valid bool
}

// NullIDFrom converts a stored reference into a NullID.
func NullIDFrom(v int64) NullID {
	if v < 0 {
		return NullID{}
	}
	return NullID{ID: v, Valid: true}
}

// Stored returns the storage form of the reference.
func (n NullID) Stored() int64 {
	if !n.Valid {
		return -1
	}
	return n.ID
}

// Key returns the id formatted as a collection key.
func Key(id int64) string {
	return strconv.FormatInt(id, 10)
}
