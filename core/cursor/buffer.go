// Package cursor reconciles physical and logical cursor counts: Consolidate
// merges N independently advancing cursors into one pull stream, Split
// fans one physical cursor out to N logical cursors. Both preserve the
// global invariant that every physical row is yielded by exactly one logical
// cursor exactly once.
package cursor

import (
	"github.com/mirprodev/machinelearning/core/data"
	"github.com/mirprodev/machinelearning/pkg/errors"
)

// bufferedRow is one materialized row: the physical position plus the values
// of the active columns, indexed by column. Inactive slots stay zero.
type bufferedRow struct {
	pos  int64
	vals []data.Value
}

// activeGetters builds the per-column getters of cur's active set, indexed
// by column (nil for inactive columns).
func activeGetters(cur data.RowCursor) ([]data.Getter, data.ActiveSet, error) {
	s := cur.Schema()
	active := make(data.ActiveSet, s.Len())
	getters := make([]data.Getter, s.Len())
	for i := 0; i < s.Len(); i++ {
		if !cur.IsColumnActive(i) {
			continue
		}
		active[i] = true
		g, err := cur.Getter(i)
		if err != nil {
			return nil, nil, err
		}
		getters[i] = g
	}
	return getters, active, nil
}

// readRow materializes the current row. Values are cloned so the row stays
// valid after the source cursor advances.
func readRow(cur data.RowCursor, getters []data.Getter) (bufferedRow, error) {
	row := bufferedRow{pos: cur.Position(), vals: make([]data.Value, len(getters))}
	var v data.Value
	for i, g := range getters {
		if g == nil {
			continue
		}
		if err := g(&v); err != nil {
			return bufferedRow{}, err
		}
		row.vals[i] = v.Clone()
	}
	return row, nil
}

// rowDock serves getters over a cursor's current buffered row. It is the
// shared row-holding half of the consolidated and split cursor types.
type rowDock struct {
	schema *data.Schema
	active data.ActiveSet
	op     string

	row    bufferedRow
	valid  bool
	closed bool
}

func (d *rowDock) set(row bufferedRow) {
	d.row = row
	d.valid = true
}

func (d *rowDock) invalidate() {
	d.valid = false
}

func (d *rowDock) position() int64 {
	if !d.valid {
		return -1
	}
	return d.row.pos
}

func (d *rowDock) getter(col int) (data.Getter, error) {
	if !d.active.IsActive(col) {
		name := ""
		if col >= 0 && col < d.schema.Len() {
			name = d.schema.Column(col).Name
		}
		return nil, errors.NewInactiveColumnError(d.op, name, col)
	}
	return func(dst *data.Value) error {
		if d.closed {
			return errors.ErrCursorClosed
		}
		if !d.valid {
			return errors.ErrNoCurrentRow
		}
		*dst = d.row.vals[col]
		return nil
	}, nil
}
