package data

import (
	"fmt"

	"github.com/mirprodev/machinelearning/pkg/errors"
)

// ColumnSpec declares one column a transform adds: an output name, the input
// column it is computed from, and the output type. An empty Source is a
// shorthand for a source named like the output; persisted bindings always
// carry an explicit source.
type ColumnSpec struct {
	Name   string
	Source string
	Type   ColumnType
}

// BoundColumn is a ColumnSpec after name resolution against the input
// schema.
type BoundColumn struct {
	Name        string
	Type        ColumnType
	SourceIndex int
	SourceType  ColumnType
	// SlotType is the scalar item type for transposed (per-slot) access
	// when the source is a vector; nil for scalar sources.
	SlotType *ColumnType
}

// TypeValidator inspects a resolved source type and returns a non-empty
// rejection reason when the transform's input-type contract does not accept
// it. A nil validator accepts everything.
type TypeValidator func(src ColumnType) string

// ColumnBindings maps a transform's virtual output schema onto physical
// source columns. The output schema re-exposes every input column verbatim
// at its original index and appends the newly added columns after them.
//
// Bindings are immutable once created and safe to share across cursors. The
// input schema is shared, not owned.
type ColumnBindings struct {
	input  *Schema
	bound  []BoundColumn
	output *Schema
}

// NewColumnBindings resolves specs against input. It fails with a
// NameNotFoundError when a declared source name is absent, with a
// TypeRejectedError when validate rejects a resolved source type, and with a
// DuplicateColumnError when an output name collides with an input column or
// another spec. All of these abort pipeline construction; none is retried.
func NewColumnBindings(input *Schema, specs []ColumnSpec, validate TypeValidator) (*ColumnBindings, error) {
	const op = "NewColumnBindings"
	if input == nil {
		return nil, errors.NewValidationError("input", "input schema must not be nil", nil)
	}

	bound := make([]BoundColumn, len(specs))
	outCols := make([]Column, 0, input.Len()+len(specs))
	for i := 0; i < input.Len(); i++ {
		outCols = append(outCols, input.Column(i))
	}
	seen := make(map[string]bool, len(specs))

	for i, spec := range specs {
		if spec.Name == "" {
			return nil, errors.NewValidationError("specs", "output column name must not be empty", i)
		}
		if _, clash := input.FindColumn(spec.Name); clash || seen[spec.Name] {
			return nil, errors.NewDuplicateColumnError(op, spec.Name)
		}
		seen[spec.Name] = true

		source := spec.Source
		if source == "" {
			source = spec.Name
		}
		srcIdx, ok := input.FindColumn(source)
		if !ok {
			return nil, errors.NewNameNotFoundError(op, source, input.ColumnNames())
		}
		srcType := input.Column(srcIdx).Type
		if validate != nil {
			if reason := validate(srcType); reason != "" {
				return nil, errors.NewTypeRejectedError(op, source, srcType.String(), reason)
			}
		}
		if !spec.Type.IsValid() {
			return nil, errors.NewValidationError("specs", "output column type is invalid", spec.Name)
		}

		bc := BoundColumn{
			Name:        spec.Name,
			Type:        spec.Type,
			SourceIndex: srcIdx,
			SourceType:  srcType,
		}
		if srcType.IsVector() {
			slot := srcType.ItemType()
			bc.SlotType = &slot
		}
		bound[i] = bc
		outCols = append(outCols, Column{Name: spec.Name, Type: spec.Type})
	}

	output, err := NewSchema(outCols...)
	if err != nil {
		return nil, err
	}
	return &ColumnBindings{input: input, bound: bound, output: output}, nil
}

// InputSchema returns the shared input schema.
func (b *ColumnBindings) InputSchema() *Schema { return b.input }

// OutputSchema returns the derived output schema: input columns verbatim,
// new columns appended.
func (b *ColumnBindings) OutputSchema() *Schema { return b.output }

// NewColumnCount returns the number of newly added columns.
func (b *ColumnBindings) NewColumnCount() int { return len(b.bound) }

// BoundColumn returns the i-th newly added column.
func (b *ColumnBindings) BoundColumn(i int) BoundColumn { return b.bound[i] }

// MapColumnIndex maps an output column index to its physical realization:
// (true, sourceIndex) for a pass-through column, (false, newColumnIndex)
// for an added column. O(1); out-of-range indices panic.
func (b *ColumnBindings) MapColumnIndex(out int) (isSource bool, idx int) {
	if out < 0 || out >= b.output.Len() {
		panic(fmt.Sprintf("data: output column index %d out of range [0,%d)", out, b.output.Len()))
	}
	if out < b.input.Len() {
		return true, out
	}
	return false, out - b.input.Len()
}

// GetDependencies pushes an "is this output column needed" predicate down to
// the input schema: pass-through columns mark their own source index, added
// columns mark their declared source dependency. O(active columns).
func (b *ColumnBindings) GetDependencies(pred ColumnPredicate) ColumnPredicate {
	active := make([]bool, b.input.Len())
	for out := 0; out < b.output.Len(); out++ {
		if pred != nil && !pred(out) {
			continue
		}
		isSource, idx := b.MapColumnIndex(out)
		if isSource {
			active[idx] = true
		} else {
			active[b.bound[idx].SourceIndex] = true
		}
	}
	return func(src int) bool {
		return src >= 0 && src < len(active) && active[src]
	}
}
