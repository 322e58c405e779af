// Package transform provides the row-to-row mapping layer of the pipeline:
// a Transform wraps a source data view, appends columns computed per row
// from declared source columns, and negotiates cursor parallelism with the
// source. Transforms are data views themselves, so they chain; reading the
// last transform's cursor pulls rows lazily through the whole chain.
package transform

import (
	"strings"

	"github.com/mirprodev/machinelearning/core/data"
)

// Releaser frees resources acquired while constructing a column getter. A
// nil Releaser is a no-op. Each registered releaser runs exactly once when
// the owning cursor is closed.
type Releaser func() error

// Computation is the per-column capability of a transform: a stateless
// per-row function from one source column to one new column, plus its type
// contract. Implementations must be safe for concurrent use by independent
// cursors.
type Computation interface {
	// OutputType derives the produced column type from the resolved
	// source type. Called once at bind time.
	OutputType(src data.ColumnType) data.ColumnType

	// Validate returns a non-empty rejection reason when the source type
	// violates the computation's input contract.
	Validate(src data.ColumnType) string

	// NewGetter binds the computation to one cursor's source getter. The
	// returned releaser, if non-nil, is run when the cursor closes.
	NewGetter(src data.Getter, srcType data.ColumnType) (data.Getter, Releaser, error)
}

// mapComputation adapts a pure per-row function to Computation.
type mapComputation struct {
	outputType func(data.ColumnType) data.ColumnType
	validate   func(data.ColumnType) string
	fn         func(src, dst *data.Value) error
	describe   func(sourceName string) (*ExportedExpression, bool)
}

// MapValues builds a Computation from a pure per-row function. validate may
// be nil to accept any source type.
func MapValues(outputType func(data.ColumnType) data.ColumnType, validate func(data.ColumnType) string, fn func(src, dst *data.Value) error) Computation {
	return &mapComputation{outputType: outputType, validate: validate, fn: fn}
}

func (m *mapComputation) OutputType(src data.ColumnType) data.ColumnType {
	return m.outputType(src)
}

func (m *mapComputation) Validate(src data.ColumnType) string {
	if m.validate == nil {
		return ""
	}
	return m.validate(src)
}

func (m *mapComputation) NewGetter(src data.Getter, _ data.ColumnType) (data.Getter, Releaser, error) {
	var buf data.Value
	getter := func(dst *data.Value) error {
		if err := src(&buf); err != nil {
			return err
		}
		return m.fn(&buf, dst)
	}
	return getter, nil, nil
}

func (m *mapComputation) Describe(sourceName string) (*ExportedExpression, bool) {
	if m.describe == nil {
		return nil, false
	}
	return m.describe(sourceName)
}

func requireScalar(want data.Kind) func(data.ColumnType) string {
	return func(src data.ColumnType) string {
		if src.IsVector() || src.Kind() != want {
			return "requires a scalar " + want.String() + " column"
		}
		return ""
	}
}

// UpperCase returns a text-to-text computation mapping each value to its
// upper-case form.
func UpperCase() Computation {
	return &mapComputation{
		outputType: func(data.ColumnType) data.ColumnType { return data.Text() },
		validate:   requireScalar(data.KindText),
		fn: func(src, dst *data.Value) error {
			s, err := src.Text()
			if err != nil {
				return err
			}
			*dst = data.TextValue(strings.ToUpper(s))
			return nil
		},
		describe: func(sourceName string) (*ExportedExpression, bool) {
			return &ExportedExpression{Op: "upper", Inputs: []string{sourceName}}, true
		},
	}
}

// Affine returns a numeric computation producing src*scale + offset.
func Affine(scale, offset float64) Computation {
	return &mapComputation{
		outputType: func(data.ColumnType) data.ColumnType { return data.Numeric() },
		validate:   requireScalar(data.KindNumeric),
		fn: func(src, dst *data.Value) error {
			x, err := src.Numeric()
			if err != nil {
				return err
			}
			*dst = data.NumericValue(x*scale + offset)
			return nil
		},
		describe: func(sourceName string) (*ExportedExpression, bool) {
			return &ExportedExpression{
				Op:     "affine",
				Inputs: []string{sourceName},
				Attrs:  map[string]interface{}{"scale": scale, "offset": offset},
			}, true
		},
	}
}
