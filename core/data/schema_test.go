package data

import (
	"strings"
	"testing"

	"github.com/mirprodev/machinelearning/pkg/errors"
)

func TestNewSchema(t *testing.T) {
	tests := []struct {
		name    string
		cols    []Column
		wantErr string
	}{
		{
			name: "valid schema",
			cols: []Column{
				{Name: "a", Type: Numeric()},
				{Name: "b", Type: Text()},
				{Name: "c", Type: Vector(KindNumeric, 4)},
			},
		},
		{
			name:    "empty column name",
			cols:    []Column{{Name: "", Type: Numeric()}},
			wantErr: "column name must not be empty",
		},
		{
			name:    "invalid column type",
			cols:    []Column{{Name: "a"}},
			wantErr: "column type is invalid",
		},
		{
			name: "duplicate column name",
			cols: []Column{
				{Name: "a", Type: Numeric()},
				{Name: "a", Type: Text()},
			},
			wantErr: "duplicate column name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSchema(tt.cols...)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("NewSchema() error = %v", err)
				}
				if s.Len() != len(tt.cols) {
					t.Errorf("Len() = %d, want %d", s.Len(), len(tt.cols))
				}
				return
			}
			if err == nil {
				t.Fatal("NewSchema() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestSchemaFindColumn(t *testing.T) {
	s := MustSchema(
		Column{Name: "x", Type: Numeric()},
		Column{Name: "y", Type: Text()},
	)

	idx, ok := s.FindColumn("y")
	if !ok || idx != 1 {
		t.Errorf("FindColumn(y) = (%d, %t), want (1, true)", idx, ok)
	}
	if _, ok := s.FindColumn("z"); ok {
		t.Error("FindColumn(z) should not resolve")
	}
}

func TestSchemaEqual(t *testing.T) {
	a := MustSchema(Column{Name: "x", Type: Numeric()}, Column{Name: "y", Type: Text()})
	b := MustSchema(Column{Name: "x", Type: Numeric()}, Column{Name: "y", Type: Text()})
	c := MustSchema(Column{Name: "x", Type: Numeric()}, Column{Name: "y", Type: Bool()})
	d := MustSchema(Column{Name: "x", Type: Numeric()})

	if !a.Equal(b) {
		t.Error("schemas with identical names and types should be equal")
	}
	if a.Equal(c) {
		t.Error("schemas with different types should not be equal")
	}
	if a.Equal(d) {
		t.Error("schemas with different lengths should not be equal")
	}
	if a.Equal(nil) {
		t.Error("non-nil schema should not equal nil")
	}
}

func TestSchemaEqualIgnoresMetadata(t *testing.T) {
	a := MustSchema(Column{Name: "x", Type: Numeric(), Metadata: Metadata{"is_normalized": BoolValue(true)}})
	b := MustSchema(Column{Name: "x", Type: Numeric()})

	if !a.Equal(b) {
		t.Error("metadata must not participate in schema equality")
	}
}

func TestSchemaMetadataIsolation(t *testing.T) {
	meta := Metadata{"slot_names": TextVectorValue([]string{"a", "b"})}
	s := MustSchema(Column{Name: "x", Type: Vector(KindNumeric, 2), Metadata: meta})

	// Mutating the caller's map after construction must not leak into the
	// schema.
	meta["slot_names"] = TextValue("mutated")
	got := s.Column(0).Metadata["slot_names"]
	if _, err := got.TextVector(); err != nil {
		t.Errorf("schema metadata was mutated through the caller's map: %v", err)
	}
}

func TestSchemaString(t *testing.T) {
	s := MustSchema(
		Column{Name: "x", Type: Numeric()},
		Column{Name: "v", Type: Vector(KindText, 3)},
	)
	want := "[x:numeric, v:vector<text,3>]"
	if got := s.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestMustSchemaPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustSchema should panic on invalid input")
		}
	}()
	MustSchema(Column{Name: "", Type: Numeric()})
}

func TestNewSchemaErrorTypes(t *testing.T) {
	_, err := NewSchema(Column{Name: "a", Type: Numeric()}, Column{Name: "a", Type: Numeric()})
	var dupErr *errors.DuplicateColumnError
	if !errors.As(err, &dupErr) {
		t.Fatalf("error should be castable to *DuplicateColumnError, got %v", err)
	}
	if dupErr.Name != "a" {
		t.Errorf("Name = %q, want %q", dupErr.Name, "a")
	}
}
