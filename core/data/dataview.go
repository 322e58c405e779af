package data

import (
	"math/rand"

	"github.com/mirprodev/machinelearning/pkg/errors"
)

// ColumnPredicate reports whether the column at the given index is needed by
// a consumer. It is evaluated against the schema of the view a cursor is
// requested from.
type ColumnPredicate func(col int) bool

// AllColumns activates every column.
func AllColumns(int) bool { return true }

// NoColumns activates no column.
func NoColumns(int) bool { return false }

// ColumnsByName builds a predicate activating exactly the named columns of
// the schema. An unknown name is a configuration error.
func ColumnsByName(s *Schema, names ...string) (ColumnPredicate, error) {
	wanted := make(map[int]bool, len(names))
	for _, name := range names {
		idx, ok := s.FindColumn(name)
		if !ok {
			return nil, errors.NewNameNotFoundError("ColumnsByName", name, s.ColumnNames())
		}
		wanted[idx] = true
	}
	return func(col int) bool { return wanted[col] }, nil
}

// ColumnsByIndex builds a predicate activating exactly the given indices.
func ColumnsByIndex(indices ...int) ColumnPredicate {
	wanted := make(map[int]bool, len(indices))
	for _, i := range indices {
		wanted[i] = true
	}
	return func(col int) bool { return wanted[col] }
}

// ActiveSet is the materialized form of a ColumnPredicate over one schema:
// a boolean mask recording which columns a cursor will serve getters for.
type ActiveSet []bool

// NewActiveSet evaluates pred over n columns. A nil predicate activates
// everything.
func NewActiveSet(n int, pred ColumnPredicate) ActiveSet {
	a := make(ActiveSet, n)
	for i := range a {
		a[i] = pred == nil || pred(i)
	}
	return a
}

// IsActive reports whether column i is in the set. Out-of-range indices are
// inactive.
func (a ActiveSet) IsActive(i int) bool {
	return i >= 0 && i < len(a) && a[i]
}

// Count returns the number of active columns.
func (a ActiveSet) Count() int {
	n := 0
	for _, v := range a {
		if v {
			n++
		}
	}
	return n
}

// Predicate returns a ColumnPredicate view of the set.
func (a ActiveSet) Predicate() ColumnPredicate {
	return a.IsActive
}

// Getter fills dst with the current row's value for the column it was bound
// to. A Getter is valid only between its cursor's creation and Close, and
// only while the cursor is positioned on a row.
type Getter func(dst *Value) error

// RowCursor is a single-pass, stateful iterator over a data view's rows,
// bound to an active column set at creation.
//
// Lifecycle: created, advanced by MoveNext zero or more times, closed.
// MoveNext returns false when the sequence is exhausted or a row-level
// failure occurred; Err distinguishes the two. Close is idempotent and safe
// to call without exhausting the sequence. A cursor is exclusively owned by
// one consumer; concurrent MoveNext or getter calls on the same cursor are
// not allowed.
type RowCursor interface {
	// Schema returns the schema of the rows this cursor yields.
	Schema() *Schema

	// MoveNext advances to the next row.
	MoveNext() bool

	// Position returns the ordinal of the current row in the view's
	// storage order, or -1 before the first MoveNext.
	Position() int64

	// IsColumnActive reports whether the column was activated at creation.
	IsColumnActive(col int) bool

	// Getter returns the accessor for an active column. Requesting an
	// inactive column is a contract violation (InactiveColumnError).
	Getter(col int) (Getter, error)

	// Err returns the first row-level failure encountered, if any.
	Err() error

	// Close releases per-getter resources. Idempotent.
	Close() error
}

// DataView is a lazily evaluated, schema-described, re-iterable sequence of
// rows.
//
// rng controls row order randomization: nil means deterministic storage
// order, and a non-nil rng is honored only when CanShuffle reports true.
type DataView interface {
	// Schema describes the rows of this view.
	Schema() *Schema

	// RowCount returns the number of rows when it is known cheaply.
	RowCount() (int64, bool)

	// CanShuffle reports whether the view can yield rows in randomized
	// order.
	CanShuffle() bool

	// GetRowCursor returns a cursor over the view's rows serving exactly
	// the columns selected by needed.
	GetRowCursor(needed ColumnPredicate, rng *rand.Rand) (RowCursor, error)

	// GetRowCursorSet returns up to n cursors that jointly cover the
	// view's rows: every row appears on exactly one returned cursor
	// exactly once. Views that cannot partition return a single cursor.
	GetRowCursorSet(needed ColumnPredicate, n int, rng *rand.Rand) ([]RowCursor, error)
}

// TypedGetter returns the getter for col after checking that the column's
// declared type is want. A mismatch fails with a TypeMismatchError; the
// cursor remains usable for other columns.
func TypedGetter(cur RowCursor, col int, want ColumnType) (Getter, error) {
	s := cur.Schema()
	if col < 0 || col >= s.Len() {
		return nil, errors.NewValidationError("col", "column index out of range", col)
	}
	c := s.Column(col)
	if c.Type != want {
		return nil, errors.NewTypeMismatchError("TypedGetter", c.Name, want.String(), c.Type.String())
	}
	return cur.Getter(col)
}

// CloseAll closes every cursor, running all Close calls even when some fail,
// and returns the combined error.
func CloseAll(cursors []RowCursor) error {
	var err error
	for _, c := range cursors {
		if c == nil {
			continue
		}
		err = errors.CombineErrors(err, c.Close())
	}
	return err
}
