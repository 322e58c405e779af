package data

import (
	"fmt"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/mirprodev/machinelearning/core/parallel"
	"github.com/mirprodev/machinelearning/pkg/errors"
)

// MatrixView adapts a gonum matrix to the DataView contract: every column is
// scalar numeric, every row is randomly accessible.
type MatrixView struct {
	m      mat.Matrix
	schema *Schema
}

// NewMatrixView wraps m. names labels the columns; a nil names generates
// "x0", "x1", ... The matrix is shared, not copied, and must not be mutated
// while cursors are open.
func NewMatrixView(m mat.Matrix, names []string) (*MatrixView, error) {
	if m == nil {
		return nil, errors.NewValidationError("m", "matrix must not be nil", nil)
	}
	_, c := m.Dims()
	if names == nil {
		names = make([]string, c)
		for j := range names {
			names[j] = fmt.Sprintf("x%d", j)
		}
	}
	if len(names) != c {
		return nil, errors.NewValidationError("names", "name count does not match matrix columns", len(names))
	}
	cols := make([]Column, c)
	for j, name := range names {
		cols[j] = Column{Name: name, Type: Numeric()}
	}
	schema, err := NewSchema(cols...)
	if err != nil {
		return nil, err
	}
	return &MatrixView{m: m, schema: schema}, nil
}

// Schema implements DataView.
func (v *MatrixView) Schema() *Schema { return v.schema }

// RowCount implements DataView.
func (v *MatrixView) RowCount() (int64, bool) {
	r, _ := v.m.Dims()
	return int64(r), true
}

// CanShuffle implements DataView.
func (v *MatrixView) CanShuffle() bool { return true }

// GetRowCursor implements DataView.
func (v *MatrixView) GetRowCursor(needed ColumnPredicate, rng *rand.Rand) (RowCursor, error) {
	return newMatCursor(v, v.rowOrder(rng), NewActiveSet(v.schema.Len(), needed)), nil
}

// GetRowCursorSet implements DataView.
func (v *MatrixView) GetRowCursorSet(needed ColumnPredicate, n int, rng *rand.Rand) ([]RowCursor, error) {
	if n <= 0 {
		return nil, errors.NewValidationError("n", "cursor count must be positive", n)
	}
	r, _ := v.m.Dims()
	if n > r {
		n = r
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
		cursors[i] = newMatCursor(v, part, active)
	}
	return cursors, nil
}

func (v *MatrixView) rowOrder(rng *rand.Rand) []int {
	r, _ := v.m.Dims()
	if rng != nil {
		return rng.Perm(r)
	}
	order := make([]int, r)
	for i := range order {
		order[i] = i
	}
	return order
}

type matCursor struct {
	view   *MatrixView
	order  []int
	active ActiveSet

	step   int
	cur    int
	closed bool
}

func newMatCursor(v *MatrixView, order []int, active ActiveSet) *matCursor {
	return &matCursor{view: v, order: order, active: active, cur: -1}
}

func (c *matCursor) Schema() *Schema { return c.view.schema }

func (c *matCursor) MoveNext() bool {
	if c.closed || c.step >= len(c.order) {
		c.cur = -1
		return false
	}
	c.cur = c.order[c.step]
	c.step++
	return true
}

func (c *matCursor) Position() int64 {
	if c.cur < 0 {
		return -1
	}
	return int64(c.cur)
}

func (c *matCursor) IsColumnActive(col int) bool { return c.active.IsActive(col) }

func (c *matCursor) Getter(col int) (Getter, error) {
	if !c.active.IsActive(col) {
		name := ""
		if col >= 0 && col < c.view.schema.Len() {
			name = c.view.schema.Column(col).Name
		}
		return nil, errors.NewInactiveColumnError("MatrixView.Getter", name, col)
	}
	return func(dst *Value) error {
		if c.closed {
			return errors.ErrCursorClosed
		}
		if c.cur < 0 {
			return errors.ErrNoCurrentRow
		}
		*dst = NumericValue(c.view.m.At(c.cur, col))
		return nil
	}, nil
}

func (c *matCursor) Err() error { return nil }

func (c *matCursor) Close() error {
	c.closed = true
	return nil
}

// InMemoryFromMatrix copies a matrix into an InMemoryView. Row conversion is
// parallelized for large matrices.
func InMemoryFromMatrix(m mat.Matrix, names []string) (*InMemoryView, error) {
	mv, err := NewMatrixView(m, names)
	if err != nil {
		return nil, err
	}
	r, c := m.Dims()
	rows := make([][]Value, r)
	parallel.ParallelizeWithThreshold(r, 1024, func(start, end int) {
		for i := start; i < end; i++ {
			row := make([]Value, c)
			for j := 0; j < c; j++ {
				row[j] = NumericValue(m.At(i, j))
			}
			rows[i] = row
		}
	})
	return NewInMemoryView(mv.schema, rows)
}

// ToMatrix materializes the named scalar numeric columns of a view into a
// dense matrix, in the view's storage order. With no names, every scalar
// numeric column is taken. Views with a known row count are read through a
// parallel cursor set; cursor positions place each row at its storage
// ordinal, so the caller sees a deterministic result regardless of the read
// topology.
func ToMatrix(dv DataView, names ...string) (*mat.Dense, error) {
	s := dv.Schema()
	if len(names) == 0 {
		for i := 0; i < s.Len(); i++ {
			if s.Column(i).Type == Numeric() {
				names = append(names, s.Column(i).Name)
			}
		}
	}
	if len(names) == 0 {
		return nil, errors.ErrEmptyData
	}
	cols := make([]int, len(names))
	for i, name := range names {
		idx, ok := s.FindColumn(name)
		if !ok {
			return nil, errors.NewNameNotFoundError("ToMatrix", name, s.ColumnNames())
		}
		if t := s.Column(idx).Type; t != Numeric() {
			return nil, errors.NewTypeRejectedError("ToMatrix", name, t.String(), "only scalar numeric columns can be materialized into a matrix")
		}
		cols[i] = idx
	}
	pred := ColumnsByIndex(cols...)

	count, known := dv.RowCount()
	if !known {
		return toMatrixSequential(dv, pred, cols)
	}
	if count == 0 {
		return nil, errors.ErrEmptyData
	}
	dense := mat.NewDense(int(count), len(cols), nil)

	cursors, err := dv.GetRowCursorSet(pred, runtime.NumCPU(), nil)
	if err != nil {
		return nil, err
	}
	var g errgroup.Group
	for _, cur := range cursors {
		cur := cur
		g.Go(func() (err error) {
			defer errors.Recover(&err, "data.ToMatrix")
			defer func() { err = errors.CombineErrors(err, cur.Close()) }()
			getters := make([]Getter, len(cols))
			for i, col := range cols {
				getter, err := cur.Getter(col)
				if err != nil {
					return err
				}
				getters[i] = getter
			}
			var v Value
			for cur.MoveNext() {
				pos := int(cur.Position())
				for i, get := range getters {
					if err := get(&v); err != nil {
						return err
					}
					x, err := v.Numeric()
					if err != nil {
						return err
					}
					dense.Set(pos, i, x)
				}
			}
			return cur.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return dense, nil
}

func toMatrixSequential(dv DataView, pred ColumnPredicate, cols []int) (*mat.Dense, error) {
	cur, err := dv.GetRowCursor(pred, nil)
	if err != nil {
		return nil, err
	}
	defer cur.Close()

	getters := make([]Getter, len(cols))
	for i, col := range cols {
		g, err := cur.Getter(col)
		if err != nil {
			return nil, err
		}
		getters[i] = g
	}
	var rows []float64
	var v Value
	n := 0
	for cur.MoveNext() {
		for _, get := range getters {
			if err := get(&v); err != nil {
				return nil, err
			}
			x, err := v.Numeric()
			if err != nil {
				return nil, err
			}
			rows = append(rows, x)
		}
		n++
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, errors.ErrEmptyData
	}
	return mat.NewDense(n, len(cols), rows), nil
}
