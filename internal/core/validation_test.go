package core

import (
	"errors"
	"testing"
)

func TestValidateRecord(t *testing.T) {
	tests := []struct {
		name       string
		info       TableInfo
		rec        Record
		wantValid  bool
		wantFields []string
	}{
		{
			name:      "valid partial record",
			info:      lessonsInfo,
			rec:       Record{"id": float64(-1), "subject": "Art", "status": "open"},
			wantValid: true,
		},
		{
			name:       "unknown fields are reported in name order",
			info:       lessonsInfo,
			rec:        Record{"zeta": 1, "alpha": 2},
			wantFields: []string{"alpha", "zeta"},
		},
		{
			name:       "bad enum and bad number",
			info:       lessonsInfo,
			rec:        Record{"minutes": "lots", "status": "pending"},
			wantFields: []string{"minutes", "status"},
		},
		{
			name:      "id is accepted on forms",
			info:      lessonFormInfo,
			rec:       Record{"id": float64(5), "date": int64(5), "subject": "x"},
			wantValid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateRecord(tt.info, tt.rec)
			if res.Valid != tt.wantValid {
				t.Fatalf("Valid = %v, want %v (errors %v)", res.Valid, tt.wantValid, res.Errors)
			}
			if len(res.Errors) != len(tt.wantFields) {
				t.Fatalf("got %d errors, want %d: %v", len(res.Errors), len(tt.wantFields), res.Errors)
			}
			for i, f := range tt.wantFields {
				if res.Errors[i].Field != f {
					t.Errorf("error %d field = %q, want %q", i, res.Errors[i].Field, f)
				}
			}
			if err := res.Err(); tt.wantValid != (err == nil) {
				t.Errorf("Err() = %v", err)
			} else if err != nil && !errors.Is(err, ErrTypeMismatch) {
				t.Errorf("Err() = %v, want ErrTypeMismatch", err)
			}
		})
	}
}
