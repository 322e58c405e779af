package data

import (
	"strings"

	"github.com/mirprodev/machinelearning/pkg/errors"
)

// Metadata maps a kind string (e.g. "slot_names", "is_normalized") to a
// typed value. Metadata attached to a schema is copied at construction and
// never mutated afterwards.
type Metadata map[string]Value

// Clone returns a copy of the metadata map.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v.Clone()
	}
	return out
}

// Column describes one column of a schema.
type Column struct {
	Name     string
	Type     ColumnType
	Metadata Metadata
}

// Schema is an immutable ordered list of uniquely named columns. Once built
// it is safe to share read-only across any number of cursors.
type Schema struct {
	cols   []Column
	byName map[string]int
}

// NewSchema builds a schema from the given columns. Names must be non-empty
// and unique; types must be valid.
func NewSchema(cols ...Column) (*Schema, error) {
	byName := make(map[string]int, len(cols))
	owned := make([]Column, len(cols))
	for i, c := range cols {
		if c.Name == "" {
			return nil, errors.NewValidationError("columns", "column name must not be empty", i)
		}
		if !c.Type.IsValid() {
			return nil, errors.NewValidationError("columns", "column type is invalid", c.Name)
		}
		if _, dup := byName[c.Name]; dup {
			return nil, errors.NewDuplicateColumnError("NewSchema", c.Name)
		}
		byName[c.Name] = i
		owned[i] = Column{Name: c.Name, Type: c.Type, Metadata: c.Metadata.Clone()}
	}
	return &Schema{cols: owned, byName: byName}, nil
}

// MustSchema is NewSchema that panics on error. Intended for tests and
// static schemas.
func MustSchema(cols ...Column) *Schema {
	s, err := NewSchema(cols...)
	if err != nil {
		panic(err)
	}
	return s
}

// Len returns the number of columns.
func (s *Schema) Len() int { return len(s.cols) }

// Column returns the column at index i.
func (s *Schema) Column(i int) Column { return s.cols[i] }

// FindColumn returns the index of the named column.
func (s *Schema) FindColumn(name string) (int, bool) {
	i, ok := s.byName[name]
	return i, ok
}

// ColumnNames returns the column names in order.
func (s *Schema) ColumnNames() []string {
	names := make([]string, len(s.cols))
	for i, c := range s.cols {
		names[i] = c.Name
	}
	return names
}

// Equal reports whether two schemas have the same column names and types in
// the same order. Metadata is not compared.
func (s *Schema) Equal(o *Schema) bool {
	if s == o {
		return true
	}
	if s == nil || o == nil || len(s.cols) != len(o.cols) {
		return false
	}
	for i := range s.cols {
		if s.cols[i].Name != o.cols[i].Name || s.cols[i].Type != o.cols[i].Type {
			return false
		}
	}
	return true
}

// String renders the schema as "name:type, ...".
func (s *Schema) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, c := range s.cols {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(c.Name)
		sb.WriteByte(':')
		sb.WriteString(c.Type.String())
	}
	sb.WriteByte(']')
	return sb.String()
}
