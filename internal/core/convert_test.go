package core

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

// ----------------------------------------------------------------------------
// Parse Tests
// ----------------------------------------------------------------------------

func TestFieldParse(t *testing.T) {
	when := time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		field   Field
		raw     any
		want    any
		wantErr error
	}{
		// Blank cells
		{name: "blank bool", field: Field{Name: "b", Type: FieldBool}, raw: "", want: false},
		{name: "blank number", field: Field{Name: "n", Type: FieldNumber}, raw: "  ", want: float64(0)},
		{name: "nil string", field: Field{Name: "s", Type: FieldString}, raw: nil, want: ""},
		{name: "blank date", field: Field{Name: "d", Type: FieldDate}, raw: "", want: UnsetDate},
		{name: "blank json", field: Field{Name: "j", Type: FieldJSON}, raw: "", want: nil},

		// Booleans
		{name: "native true", field: Field{Name: "b", Type: FieldBool}, raw: true, want: true},
		{name: "text TRUE", field: Field{Name: "b", Type: FieldBool}, raw: "TRUE", want: true},
		{name: "text no", field: Field{Name: "b", Type: FieldBool}, raw: "no", want: false},
		{name: "nonzero number", field: Field{Name: "b", Type: FieldBool}, raw: float64(2), want: true},

		// Numbers
		{name: "native number", field: Field{Name: "n", Type: FieldNumber}, raw: float64(12), want: float64(12)},
		{name: "numeric text", field: Field{Name: "n", Type: FieldNumber}, raw: "-4.5", want: -4.5},
		{name: "scientific text", field: Field{Name: "n", Type: FieldNumber}, raw: "1e3", want: float64(1000)},
		{name: "non numeric text", field: Field{Name: "grade", Type: FieldNumber}, raw: "ten", wantErr: ErrTypeMismatch},
		{name: "bool as number", field: Field{Name: "n", Type: FieldNumber}, raw: true, wantErr: ErrTypeMismatch},

		// Strings
		{name: "plain string", field: Field{Name: "s", Type: FieldString}, raw: "Ada", want: "Ada"},
		{name: "number as string", field: Field{Name: "s", Type: FieldString}, raw: float64(7), want: "7"},
		{name: "whitespace string kept", field: Field{Name: "s", Type: FieldString}, raw: "  ", want: "  "},

		// Dates
		{name: "native time", field: Field{Name: "d", Type: FieldDate}, raw: when, want: when.UnixMilli()},
		{name: "rfc3339 text", field: Field{Name: "d", Type: FieldDate}, raw: "2024-03-05T14:30:00Z", want: when.UnixMilli()},
		{name: "millis text", field: Field{Name: "d", Type: FieldDate}, raw: "1709649000000", want: int64(1709649000000)},
		{name: "integral float", field: Field{Name: "d", Type: FieldDate}, raw: float64(1709649000000), want: int64(1709649000000)},
		{name: "garbage date", field: Field{Name: "d", Type: FieldDate}, raw: "next tuesday", wantErr: ErrTypeMismatch},

		// JSON
		{name: "json list", field: Field{Name: "j", Type: FieldJSON}, raw: `[1,2]`, want: []any{float64(1), float64(2)}},
		{name: "json object", field: Field{Name: "j", Type: FieldJSON}, raw: `{"a":"b"}`, want: map[string]any{"a": "b"}},
		{name: "broken json", field: Field{Name: "j", Type: FieldJSON}, raw: `{"a":`, wantErr: ErrParse},
		{name: "json from number", field: Field{Name: "j", Type: FieldJSON}, raw: float64(3), wantErr: ErrTypeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.field.Parse(tt.raw)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Parse(%v) error = %v, want %v", tt.raw, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%v) unexpected error: %v", tt.raw, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%v) = %#v, want %#v", tt.raw, got, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// Serialize Tests
// ----------------------------------------------------------------------------

func TestFieldSerialize(t *testing.T) {
	status := Field{Name: "status", Type: FieldString, EnumValues: []string{"unsent", "finalized"}}

	tests := []struct {
		name    string
		field   Field
		value   any
		want    any
		wantErr error
	}{
		{name: "bool", field: Field{Name: "b", Type: FieldBool}, value: true, want: true},
		{name: "int number", field: Field{Name: "n", Type: FieldNumber}, value: int64(5), want: float64(5)},
		{name: "nil number", field: Field{Name: "n", Type: FieldNumber}, value: nil, wantErr: ErrTypeMismatch},
		{name: "text number", field: Field{Name: "n", Type: FieldNumber}, value: "x", wantErr: ErrTypeMismatch},
		{name: "string", field: Field{Name: "s", Type: FieldString}, value: "hi", want: "hi"},
		{name: "enum member", field: status, value: "finalized", want: "finalized"},
		{name: "enum blank", field: status, value: "", want: ""},
		{name: "enum outsider", field: status, value: "maybe", wantErr: ErrTypeMismatch},
		{name: "unset date", field: Field{Name: "d", Type: FieldDate}, value: UnsetDate, want: ""},
		{name: "nil date", field: Field{Name: "d", Type: FieldDate}, value: nil, want: ""},
		{name: "json", field: Field{Name: "j", Type: FieldJSON}, value: []any{"1 0"}, want: `["1 0"]`},
		{name: "json nil", field: Field{Name: "j", Type: FieldJSON}, value: nil, want: "null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.field.Serialize(tt.value)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Serialize(%v) error = %v, want %v", tt.value, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Serialize(%v) unexpected error: %v", tt.value, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Serialize(%v) = %#v, want %#v", tt.value, got, tt.want)
			}
		})
	}
}

func TestFieldSerializeDate(t *testing.T) {
	f := Field{Name: "dateOfAttendance", Type: FieldDate}
	ms := time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC).UnixMilli()

	cell, err := f.Serialize(ms)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	tm, ok := cell.(time.Time)
	if !ok {
		t.Fatalf("Serialize returned %T, want time.Time", cell)
	}
	if tm.UnixMilli() != ms {
		t.Errorf("Serialize = %d ms, want %d", tm.UnixMilli(), ms)
	}
}

// Values the serializer produced must parse back to the value that produced them.
func TestFieldRoundTrip(t *testing.T) {
	values := []struct {
		field Field
		value any
	}{
		{Field{Name: "b", Type: FieldBool}, true},
		{Field{Name: "n", Type: FieldNumber}, 3.25},
		{Field{Name: "s", Type: FieldString}, "Grace Hopper"},
		{Field{Name: "s", Type: FieldString}, " "},
		{Field{Name: "s", Type: FieldString}, "\t"},
		{Field{Name: "s", Type: FieldString}, ""},
		{Field{Name: "d", Type: FieldDate}, int64(1725235200000)},
		{Field{Name: "d", Type: FieldDate}, UnsetDate},
		{Field{Name: "j", Type: FieldJSON}, map[string]any{"19967": []any{"1 0", "3 45"}}},
	}

	for _, v := range values {
		t.Run(v.field.Type.String(), func(t *testing.T) {
			cell, err := v.field.Serialize(v.value)
			if err != nil {
				t.Fatalf("Serialize: %v", err)
			}
			got, err := v.field.Parse(cell)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if !reflect.DeepEqual(got, v.value) {
				t.Errorf("round trip = %#v, want %#v", got, v.value)
			}
		})
	}
}

func TestMismatchMessageNamesField(t *testing.T) {
	_, err := Field{Name: "grade", Type: FieldNumber}.Parse("tenth")
	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("error %v is not *Error", err)
	}
	want := `value "tenth" failed the type validation for field name "grade" (want number)`
	if e.context != want {
		t.Errorf("context = %q, want %q", e.context, want)
	}
}
