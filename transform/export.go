package transform

import (
	"github.com/mirprodev/machinelearning/pkg/errors"
)

// ExportedExpression is the language-neutral description of how an output
// column is computed, consumed by export collaborators (ONNX, PFA). Only the
// shape is defined here; correctness of the exported graph is the
// collaborator's concern.
type ExportedExpression struct {
	Op     string
	Inputs []string
	Attrs  map[string]interface{}
}

// Describer is optionally implemented by a Computation that can express
// itself as an exported expression.
type Describer interface {
	Describe(sourceName string) (*ExportedExpression, bool)
}

// DescribeColumn returns the exported expression for an output column.
// Pass-through columns are the source's concern and report false. An added
// column whose computation cannot describe itself reports false and raises a
// ColumnDroppedWarning: the export collaborator drops the column instead of
// failing the export.
func (t *Transform) DescribeColumn(out int) (*ExportedExpression, bool) {
	isSource, idx := t.bindings.MapColumnIndex(out)
	if isSource {
		return nil, false
	}
	bc := t.bindings.BoundColumn(idx)
	sourceName := t.bindings.InputSchema().Column(bc.SourceIndex).Name
	if d, ok := t.comps[idx].(Describer); ok {
		if expr, ok := d.Describe(sourceName); ok {
			return expr, true
		}
	}
	errors.Warn(errors.NewColumnDroppedWarning(bc.Name, "computation has no exported representation"))
	return nil, false
}
