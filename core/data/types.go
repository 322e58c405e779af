// Package data provides the schema-bound, lazily evaluated columnar data
// model: schemas, column types and values, the DataView and RowCursor
// contracts, column bindings for row-to-row transforms, and in-memory and
// matrix-backed source views.
//
// A DataView is a re-iterable, schema-described sequence of rows. Rows are
// never materialized eagerly; consumers open a RowCursor bound to the set of
// columns they will actually read (the active set) and pull rows one at a
// time. Schemas, types and bindings are immutable once built and safe to
// share across concurrently running cursors.
package data

import (
	"fmt"
)

// Kind identifies the item kind of a column value.
type Kind uint8

const (
	// KindInvalid is the zero Kind; it never appears in a valid schema.
	KindInvalid Kind = iota
	// KindNumeric is a float64 value.
	KindNumeric
	// KindText is a string value.
	KindText
	// KindBool is a boolean value.
	KindBool
	// KindKey is an unsigned categorical index (dictionary-encoded id).
	KindKey
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindText:
		return "text"
	case KindBool:
		return "bool"
	case KindKey:
		return "key"
	default:
		return "invalid"
	}
}

// ColumnType is the closed tagged union of supported column types: a scalar
// of some Kind, or a fixed- or unknown-size vector of a Kind. The zero value
// is invalid. ColumnType is comparable; two types are interchangeable exactly
// when they are ==.
type ColumnType struct {
	kind   Kind
	vector bool
	// size is the vector length; 0 means unknown. Always 0 for scalars.
	size int
}

// Numeric returns the scalar numeric type.
func Numeric() ColumnType { return ColumnType{kind: KindNumeric} }

// Text returns the scalar text type.
func Text() ColumnType { return ColumnType{kind: KindText} }

// Bool returns the scalar boolean type.
func Bool() ColumnType { return ColumnType{kind: KindBool} }

// Key returns the scalar key (categorical index) type.
func Key() ColumnType { return ColumnType{kind: KindKey} }

// Vector returns a vector type with the given item kind. size 0 means the
// length is unknown or varies per row.
func Vector(item Kind, size int) ColumnType {
	if size < 0 {
		size = 0
	}
	return ColumnType{kind: item, vector: true, size: size}
}

// Kind returns the item kind: the scalar kind itself, or the element kind of
// a vector.
func (t ColumnType) Kind() Kind { return t.kind }

// IsVector reports whether the type is a vector type.
func (t ColumnType) IsVector() bool { return t.vector }

// Size returns the vector length, 0 if unknown. Scalars return 0.
func (t ColumnType) Size() int { return t.size }

// IsValid reports whether the type is one of the supported kinds.
func (t ColumnType) IsValid() bool {
	return t.kind >= KindNumeric && t.kind <= KindKey
}

// ItemType returns the scalar type of a vector's slots. For scalars it
// returns the type itself. This is the slot type used for transposed access.
func (t ColumnType) ItemType() ColumnType {
	return ColumnType{kind: t.kind}
}

// Equal reports whether t and o describe the same type.
func (t ColumnType) Equal(o ColumnType) bool { return t == o }

// String renders the type, e.g. "numeric", "vector<text,?>", "vector<numeric,16>".
func (t ColumnType) String() string {
	if !t.vector {
		return t.kind.String()
	}
	if t.size == 0 {
		return fmt.Sprintf("vector<%s,?>", t.kind)
	}
	return fmt.Sprintf("vector<%s,%d>", t.kind, t.size)
}
