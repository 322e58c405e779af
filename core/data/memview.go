package data

import (
	"math/rand"

	"github.com/mirprodev/machinelearning/pkg/errors"
)

// InMemoryView is a DataView over rows held in memory. It supports shuffled
// cursoring and genuine cursor-set partitioning (round-robin over the row
// order).
type InMemoryView struct {
	schema *Schema
	rows   [][]Value
}

// NewInMemoryView validates that every row matches the schema's width and
// column types. Rows are taken over, not copied.
func NewInMemoryView(schema *Schema, rows [][]Value) (*InMemoryView, error) {
	if schema == nil {
		return nil, errors.NewValidationError("schema", "schema must not be nil", nil)
	}
	for i, row := range rows {
		if len(row) != schema.Len() {
			return nil, errors.NewValidationError("rows", "row width does not match schema", i)
		}
		for j, v := range row {
			if v.Type() != schema.Column(j).Type {
				return nil, errors.NewTypeMismatchError("NewInMemoryView",
					schema.Column(j).Name, schema.Column(j).Type.String(), v.Type().String())
			}
		}
	}
	return &InMemoryView{schema: schema, rows: rows}, nil
}

// Schema implements DataView.
func (v *InMemoryView) Schema() *Schema { return v.schema }

// RowCount implements DataView. Always known.
func (v *InMemoryView) RowCount() (int64, bool) { return int64(len(v.rows)), true }

// CanShuffle implements DataView. Rows are randomly accessible.
func (v *InMemoryView) CanShuffle() bool { return true }

// GetRowCursor implements DataView.
func (v *InMemoryView) GetRowCursor(needed ColumnPredicate, rng *rand.Rand) (RowCursor, error) {
	return newMemCursor(v, v.rowOrder(rng), NewActiveSet(v.schema.Len(), needed)), nil
}

// GetRowCursorSet implements DataView. Rows are assigned to cursors round
// robin over the (possibly shuffled) row order, so the union of all cursors
// yields every row exactly once.
func (v *InMemoryView) GetRowCursorSet(needed ColumnPredicate, n int, rng *rand.Rand) ([]RowCursor, error) {
	if n <= 0 {
		return nil, errors.NewValidationError("n", "cursor count must be positive", n)
	}
	if n > len(v.rows) {
		n = len(v.rows)
	}
	if n <= 1 {
		cur, err := v.GetRowCursor(needed, rng)
		if err != nil {
			return nil, err
		}
		return []RowCursor{cur}, nil
	}

	order := v.rowOrder(rng)
	active := NewActiveSet(v.schema.Len(), needed)
	cursors := make([]RowCursor, n)
	for i := 0; i < n; i++ {
		var part []int
		for j := i; j < len(order); j += n {
			part = append(part, order[j])
		}
		cursors[i] = newMemCursor(v, part, active)
	}
	return cursors, nil
}

func (v *InMemoryView) rowOrder(rng *rand.Rand) []int {
	if rng != nil {
		return rng.Perm(len(v.rows))
	}
	order := make([]int, len(v.rows))
	for i := range order {
		order[i] = i
	}
	return order
}

type memCursor struct {
	view   *InMemoryView
	order  []int
	active ActiveSet

	step   int // next index into order
	cur    int // physical index of the current row, -1 before first MoveNext
	closed bool
}

func newMemCursor(v *InMemoryView, order []int, active ActiveSet) *memCursor {
	return &memCursor{view: v, order: order, active: active, cur: -1}
}

func (c *memCursor) Schema() *Schema { return c.view.schema }

func (c *memCursor) MoveNext() bool {
	if c.closed || c.step >= len(c.order) {
		c.cur = -1
		return false
	}
	c.cur = c.order[c.step]
	c.step++
	return true
}

func (c *memCursor) Position() int64 {
	if c.cur < 0 {
		return -1
	}
	return int64(c.cur)
}

func (c *memCursor) IsColumnActive(col int) bool { return c.active.IsActive(col) }

func (c *memCursor) Getter(col int) (Getter, error) {
	if !c.active.IsActive(col) {
		name := ""
		if col >= 0 && col < c.view.schema.Len() {
			name = c.view.schema.Column(col).Name
		}
		return nil, errors.NewInactiveColumnError("InMemoryView.Getter", name, col)
	}
	return func(dst *Value) error {
		if c.closed {
			return errors.ErrCursorClosed
		}
		if c.cur < 0 {
			return errors.ErrNoCurrentRow
		}
		*dst = c.view.rows[c.cur][col]
		return nil
	}, nil
}

func (c *memCursor) Err() error { return nil }

func (c *memCursor) Close() error {
	c.closed = true
	return nil
}
