// Package preprocessing provides fitted data-view transformations. Fitting
// streams the input through a parallel cursor set; transforming is lazy,
// returning a transform that computes scaled columns as rows are pulled.
package preprocessing

import (
	"math"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mirprodev/machinelearning/core/data"
	"github.com/mirprodev/machinelearning/core/model"
	"github.com/mirprodev/machinelearning/pkg/errors"
	"github.com/mirprodev/machinelearning/transform"
)

// scaledSuffix names the columns a fitted scaler appends.
const scaledSuffix = "_std"

// StandardScaler standardizes numeric columns to mean 0 and standard
// deviation 1. Transform appends "<col>_std" columns; the inputs pass
// through untouched.
type StandardScaler struct {
	model.BaseEstimator

	// Columns are the fitted column names, in fit order.
	Columns []string

	// Mean holds the per-column means learned by Fit.
	Mean []float64

	// Scale holds the per-column standard deviations learned by Fit.
	Scale []float64

	// WithMean controls whether the mean is subtracted (default true).
	WithMean bool

	// WithStd controls whether values are divided by the standard
	// deviation (default true).
	WithStd bool
}

// NewStandardScaler creates a scaler for the given columns. With no columns,
// Fit takes every scalar numeric column of the fitted view.
func NewStandardScaler(withMean, withStd bool, columns ...string) *StandardScaler {
	return &StandardScaler{WithMean: withMean, WithStd: withStd, Columns: columns}
}

// NewStandardScalerDefault creates a scaler with default settings.
func NewStandardScalerDefault(columns ...string) *StandardScaler {
	return NewStandardScaler(true, true, columns...)
}

// Fit learns per-column mean and standard deviation by streaming dv through
// a parallel cursor set and merging per-cursor partial sums.
func (s *StandardScaler) Fit(dv data.DataView) error {
	const op = "StandardScaler.Fit"
	schema := dv.Schema()

	columns := s.Columns
	if len(columns) == 0 {
		for i := 0; i < schema.Len(); i++ {
			if schema.Column(i).Type == data.Numeric() {
				columns = append(columns, schema.Column(i).Name)
			}
		}
	}
	if len(columns) == 0 {
		return errors.ErrEmptyData
	}
	indices := make([]int, len(columns))
	for i, name := range columns {
		idx, ok := schema.FindColumn(name)
		if !ok {
			return errors.NewNameNotFoundError(op, name, schema.ColumnNames())
		}
		if t := schema.Column(idx).Type; t != data.Numeric() {
			return errors.NewTypeRejectedError(op, name, t.String(), "standardization requires a scalar numeric column")
		}
		indices[i] = idx
	}

	cursors, err := dv.GetRowCursorSet(data.ColumnsByIndex(indices...), runtime.NumCPU(), nil)
	if err != nil {
		return err
	}

	var (
		mu    sync.Mutex
		count int64
		sum   = make([]float64, len(indices))
		sumSq = make([]float64, len(indices))
	)
	var g errgroup.Group
	for _, cur := range cursors {
		cur := cur
		g.Go(func() (err error) {
			defer errors.Recover(&err, op)
			defer func() { err = errors.CombineErrors(err, cur.Close()) }()

			getters := make([]data.Getter, len(indices))
			for i, idx := range indices {
				getter, err := cur.Getter(idx)
				if err != nil {
					return err
				}
				getters[i] = getter
			}

			n := int64(0)
			pSum := make([]float64, len(indices))
			pSumSq := make([]float64, len(indices))
			var v data.Value
			for cur.MoveNext() {
				for i, get := range getters {
					if err := get(&v); err != nil {
						return err
					}
					x, err := v.Numeric()
					if err != nil {
						return err
					}
					pSum[i] += x
					pSumSq[i] += x * x
				}
				n++
			}
			if err := cur.Err(); err != nil {
				return err
			}

			mu.Lock()
			count += n
			for i := range indices {
				sum[i] += pSum[i]
				sumSq[i] += pSumSq[i]
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if count == 0 {
		return errors.ErrEmptyData
	}

	s.Columns = columns
	s.Mean = make([]float64, len(indices))
	s.Scale = make([]float64, len(indices))
	for i := range indices {
		if s.WithMean {
			s.Mean[i] = sum[i] / float64(count)
		}
		if s.WithStd {
			// One-pass variance: E[x^2] - mean^2, clamped against
			// rounding below zero.
			mean := sum[i] / float64(count)
			variance := sumSq[i]/float64(count) - mean*mean
			if variance < 0 {
				variance = 0
			}
			s.Scale[i] = math.Sqrt(variance)
			if math.Abs(s.Scale[i]) < 1e-8 {
				s.Scale[i] = 1.0
			}
		} else {
			s.Scale[i] = 1.0
		}
	}
	s.SetFitted()
	return nil
}

// Transform returns a lazy view over dv appending one standardized column
// per fitted column. Column resolution happens against dv's schema, so a
// view missing a fitted column fails with a configuration error.
func (s *StandardScaler) Transform(dv data.DataView) (data.DataView, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("StandardScaler", "Transform")
	}
	cols := make([]transform.ColumnMapping, len(s.Columns))
	for i, name := range s.Columns {
		scale := 1.0 / s.Scale[i]
		offset := -s.Mean[i] / s.Scale[i]
		cols[i] = transform.ColumnMapping{
			Name:   name + scaledSuffix,
			Source: name,
			Comp:   transform.Affine(scale, offset),
		}
	}
	return transform.New(dv, cols)
}

// FitTransform runs Fit then Transform on the same view.
func (s *StandardScaler) FitTransform(dv data.DataView) (data.DataView, error) {
	if err := s.Fit(dv); err != nil {
		return nil, err
	}
	return s.Transform(dv)
}

var _ model.Transformer = (*StandardScaler)(nil)
