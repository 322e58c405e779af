package data

import (
	"fmt"
	"strings"

	"github.com/mirprodev/machinelearning/pkg/errors"
)

// Value is the tagged union carrying one cell of a column. The zero Value is
// invalid. Values are created through the typed constructors and read back
// through the typed accessors, which fail with a TypeMismatchError when the
// requested kind does not match the stored one.
type Value struct {
	typ ColumnType

	num  float64
	text string
	b    bool
	key  uint64

	numVec  []float64
	textVec []string
	boolVec []bool
	keyVec  []uint64
}

// NumericValue wraps a float64.
func NumericValue(v float64) Value { return Value{typ: Numeric(), num: v} }

// TextValue wraps a string.
func TextValue(v string) Value { return Value{typ: Text(), text: v} }

// BoolValue wraps a bool.
func BoolValue(v bool) Value { return Value{typ: Bool(), b: v} }

// KeyValue wraps a categorical index.
func KeyValue(v uint64) Value { return Value{typ: Key(), key: v} }

// NumericVectorValue wraps a numeric vector. The slice is taken over, not
// copied; callers must not mutate it afterwards.
func NumericVectorValue(v []float64) Value {
	return Value{typ: Vector(KindNumeric, len(v)), numVec: v}
}

// TextVectorValue wraps a text vector.
func TextVectorValue(v []string) Value {
	return Value{typ: Vector(KindText, len(v)), textVec: v}
}

// BoolVectorValue wraps a boolean vector.
func BoolVectorValue(v []bool) Value {
	return Value{typ: Vector(KindBool, len(v)), boolVec: v}
}

// KeyVectorValue wraps a key vector.
func KeyVectorValue(v []uint64) Value {
	return Value{typ: Vector(KindKey, len(v)), keyVec: v}
}

// Type returns the value's column type.
func (v Value) Type() ColumnType { return v.typ }

// IsValid reports whether the value carries one of the supported kinds.
func (v Value) IsValid() bool { return v.typ.IsValid() }

func (v Value) mismatch(op string, want ColumnType) error {
	return errors.NewTypeMismatchError(op, "", want.String(), v.typ.String())
}

// Numeric returns the float64 payload.
func (v Value) Numeric() (float64, error) {
	if v.typ != Numeric() {
		return 0, v.mismatch("Value.Numeric", Numeric())
	}
	return v.num, nil
}

// Text returns the string payload.
func (v Value) Text() (string, error) {
	if v.typ != Text() {
		return "", v.mismatch("Value.Text", Text())
	}
	return v.text, nil
}

// Bool returns the boolean payload.
func (v Value) Bool() (bool, error) {
	if v.typ != Bool() {
		return false, v.mismatch("Value.Bool", Bool())
	}
	return v.b, nil
}

// Key returns the categorical index payload.
func (v Value) Key() (uint64, error) {
	if v.typ != Key() {
		return 0, v.mismatch("Value.Key", Key())
	}
	return v.key, nil
}

// NumericVector returns the numeric vector payload. The returned slice must
// be treated as read-only.
func (v Value) NumericVector() ([]float64, error) {
	if !v.typ.vector || v.typ.kind != KindNumeric {
		return nil, v.mismatch("Value.NumericVector", Vector(KindNumeric, 0))
	}
	return v.numVec, nil
}

// TextVector returns the text vector payload.
func (v Value) TextVector() ([]string, error) {
	if !v.typ.vector || v.typ.kind != KindText {
		return nil, v.mismatch("Value.TextVector", Vector(KindText, 0))
	}
	return v.textVec, nil
}

// BoolVector returns the boolean vector payload.
func (v Value) BoolVector() ([]bool, error) {
	if !v.typ.vector || v.typ.kind != KindBool {
		return nil, v.mismatch("Value.BoolVector", Vector(KindBool, 0))
	}
	return v.boolVec, nil
}

// KeyVector returns the key vector payload.
func (v Value) KeyVector() ([]uint64, error) {
	if !v.typ.vector || v.typ.kind != KindKey {
		return nil, v.mismatch("Value.KeyVector", Vector(KindKey, 0))
	}
	return v.keyVec, nil
}

// valueOps is the per-kind behavior table. The table is resolved once by
// kind tag; there is no reflection on the value path.
type valueOps struct {
	equal  func(a, b *Value) bool
	clone  func(dst, src *Value)
	render func(v *Value) string
}

var scalarOps = [...]valueOps{
	KindNumeric: {
		equal:  func(a, b *Value) bool { return a.num == b.num },
		clone:  func(dst, src *Value) { dst.num = src.num },
		render: func(v *Value) string { return fmt.Sprintf("%g", v.num) },
	},
	KindText: {
		equal:  func(a, b *Value) bool { return a.text == b.text },
		clone:  func(dst, src *Value) { dst.text = src.text },
		render: func(v *Value) string { return fmt.Sprintf("%q", v.text) },
	},
	KindBool: {
		equal:  func(a, b *Value) bool { return a.b == b.b },
		clone:  func(dst, src *Value) { dst.b = src.b },
		render: func(v *Value) string { return fmt.Sprintf("%t", v.b) },
	},
	KindKey: {
		equal:  func(a, b *Value) bool { return a.key == b.key },
		clone:  func(dst, src *Value) { dst.key = src.key },
		render: func(v *Value) string { return fmt.Sprintf("#%d", v.key) },
	},
}

var vectorOps = [...]valueOps{
	KindNumeric: {
		equal: func(a, b *Value) bool { return sliceEqual(a.numVec, b.numVec) },
		clone: func(dst, src *Value) { dst.numVec = append([]float64(nil), src.numVec...) },
		render: func(v *Value) string {
			return renderVec(len(v.numVec), func(i int) string { return fmt.Sprintf("%g", v.numVec[i]) })
		},
	},
	KindText: {
		equal: func(a, b *Value) bool { return sliceEqual(a.textVec, b.textVec) },
		clone: func(dst, src *Value) { dst.textVec = append([]string(nil), src.textVec...) },
		render: func(v *Value) string {
			return renderVec(len(v.textVec), func(i int) string { return fmt.Sprintf("%q", v.textVec[i]) })
		},
	},
	KindBool: {
		equal: func(a, b *Value) bool { return sliceEqual(a.boolVec, b.boolVec) },
		clone: func(dst, src *Value) { dst.boolVec = append([]bool(nil), src.boolVec...) },
		render: func(v *Value) string {
			return renderVec(len(v.boolVec), func(i int) string { return fmt.Sprintf("%t", v.boolVec[i]) })
		},
	},
	KindKey: {
		equal: func(a, b *Value) bool { return sliceEqual(a.keyVec, b.keyVec) },
		clone: func(dst, src *Value) { dst.keyVec = append([]uint64(nil), src.keyVec...) },
		render: func(v *Value) string {
			return renderVec(len(v.keyVec), func(i int) string { return fmt.Sprintf("#%d", v.keyVec[i]) })
		},
	},
}

func (v Value) ops() *valueOps {
	if !v.typ.IsValid() {
		return nil
	}
	if v.typ.vector {
		return &vectorOps[v.typ.kind]
	}
	return &scalarOps[v.typ.kind]
}

// Equal reports whether two values have the same type and payload.
func (v Value) Equal(o Value) bool {
	if v.typ != o.typ {
		return false
	}
	ops := v.ops()
	if ops == nil {
		return true
	}
	return ops.equal(&v, &o)
}

// Clone returns a deep copy; vector payloads get their own backing arrays.
// Cursors that buffer rows across MoveNext boundaries clone values so later
// advances cannot alias earlier rows.
func (v Value) Clone() Value {
	ops := v.ops()
	if ops == nil {
		return v
	}
	out := Value{typ: v.typ}
	ops.clone(&out, &v)
	return out
}

// String renders the value for diagnostics.
func (v Value) String() string {
	ops := v.ops()
	if ops == nil {
		return "<invalid>"
	}
	return ops.render(&v)
}

func sliceEqual[T comparable](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func renderVec(n int, at func(int) string) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(at(i))
	}
	sb.WriteByte(']')
	return sb.String()
}
