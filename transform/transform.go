package transform

import (
	"io"
	"math/rand"
	"runtime"

	"github.com/mirprodev/machinelearning/core/cursor"
	"github.com/mirprodev/machinelearning/core/data"
	"github.com/mirprodev/machinelearning/pkg/errors"
	"github.com/mirprodev/machinelearning/pkg/log"
)

// ParallelPreference declares how a transform wants its cursors built.
// The topology decision itself lives in decideParallel, not in the
// transform.
type ParallelPreference int

const (
	// NoPreference defers to the source and the runtime.
	NoPreference ParallelPreference = iota
	// PreferSingle always requests one source cursor.
	PreferSingle
	// PreferParallel requests a parallel source cursor set, consolidated
	// behind one logical cursor on GetRowCursor.
	PreferParallel
)

// parallelRowThreshold is the smallest known row count for which
// NoPreference resolves to a parallel topology.
const parallelRowThreshold = 4096

// ColumnMapping declares one column a Transform adds. An empty Source means
// the source column shares the output name.
type ColumnMapping struct {
	Name   string
	Source string
	Comp   Computation
}

// Transform is a row-to-row mapping data view: the source's columns pass
// through verbatim and the mapped columns are appended. A Transform computes
// nothing until a cursor is pulled, holds no per-row state, and is safe to
// share across concurrent cursors.
type Transform struct {
	source   data.DataView
	bindings *data.ColumnBindings
	comps    []Computation
	pref     ParallelPreference
	logger   log.Logger
}

// Option configures a Transform.
type Option func(*Transform)

// WithParallelPreference sets the cursor topology preference.
func WithParallelPreference(p ParallelPreference) Option {
	return func(t *Transform) { t.pref = p }
}

// WithLogger sets the logger used for cursor topology diagnostics.
func WithLogger(l log.Logger) Option {
	return func(t *Transform) { t.logger = l }
}

// New binds cols against source's schema. Unresolvable source names, source
// types rejected by a computation's Validate, and duplicate output names are
// configuration errors that abort construction.
func New(source data.DataView, cols []ColumnMapping, opts ...Option) (*Transform, error) {
	const op = "transform.New"
	if source == nil {
		return nil, errors.NewValidationError("source", "source data view must not be nil", nil)
	}
	input := source.Schema()

	specs := make([]data.ColumnSpec, len(cols))
	comps := make([]Computation, len(cols))
	for i, cm := range cols {
		if cm.Comp == nil {
			return nil, errors.NewValidationError("cols", "column computation must not be nil", cm.Name)
		}
		sourceName := cm.Source
		if sourceName == "" {
			sourceName = cm.Name
		}
		srcIdx, ok := input.FindColumn(sourceName)
		if !ok {
			return nil, errors.NewNameNotFoundError(op, sourceName, input.ColumnNames())
		}
		srcType := input.Column(srcIdx).Type
		if reason := cm.Comp.Validate(srcType); reason != "" {
			return nil, errors.NewTypeRejectedError(op, sourceName, srcType.String(), reason)
		}
		specs[i] = data.ColumnSpec{Name: cm.Name, Source: cm.Source, Type: cm.Comp.OutputType(srcType)}
		comps[i] = cm.Comp
	}

	bindings, err := data.NewColumnBindings(input, specs, nil)
	if err != nil {
		return nil, err
	}
	t := &Transform{
		source:   source,
		bindings: bindings,
		comps:    comps,
		logger:   log.GetLogger(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Load rebinds a transform from its persisted column pairs, re-resolving
// source names against source's current schema. comp supplies the
// computation for each loaded column by output name.
func Load(r io.Reader, source data.DataView, comp func(name string) Computation, opts ...Option) (*Transform, error) {
	pairs, err := data.ReadColumnPairs(r)
	if err != nil {
		return nil, err
	}
	input := source.Schema()
	cols := make([]ColumnMapping, len(pairs))
	for i, pair := range pairs {
		c := comp(pair.Name)
		if c == nil {
			return nil, errors.NewDecodeError("transform.Load",
				"no computation registered for persisted column "+pair.Name, nil)
		}
		cols[i] = ColumnMapping{Name: pair.Name, Source: pair.Source, Comp: c}
		if _, ok := input.FindColumn(pair.Source); !ok {
			return nil, errors.NewDecodeError("transform.Load",
				"persisted source column "+pair.Source+" is missing from the current input schema", nil)
		}
	}
	return New(source, cols, opts...)
}

// Save persists the transform's column bindings.
func (t *Transform) Save(w io.Writer) error {
	_, err := t.bindings.WriteTo(w)
	return err
}

// Bindings returns the transform's column bindings.
func (t *Transform) Bindings() *data.ColumnBindings { return t.bindings }

// Source returns the wrapped data view.
func (t *Transform) Source() data.DataView { return t.source }

// Schema implements data.DataView.
func (t *Transform) Schema() *data.Schema { return t.bindings.OutputSchema() }

// RowCount implements data.DataView. A row-to-row mapping preserves the
// source's row count.
func (t *Transform) RowCount() (int64, bool) { return t.source.RowCount() }

// CanShuffle implements data.DataView. Shuffling is delegated to the source.
func (t *Transform) CanShuffle() bool { return t.source.CanShuffle() }

// GetRowCursor implements data.DataView. The needed-columns predicate is
// evaluated over the output schema and pushed down to the source through the
// bindings, so the source materializes only what active output columns
// depend on.
func (t *Transform) GetRowCursor(needed data.ColumnPredicate, rng *rand.Rand) (data.RowCursor, error) {
	active := data.NewActiveSet(t.Schema().Len(), needed)
	srcNeeded := t.bindings.GetDependencies(active.Predicate())
	if rng != nil && !t.CanShuffle() {
		rng = nil
	}

	if !decideParallel(t.pref, t.source) {
		src, err := t.source.GetRowCursor(srcNeeded, rng)
		if err != nil {
			return nil, err
		}
		t.logTopology(1, rng != nil, active)
		return newOutputCursor(t, src, active)
	}

	n := parallelCursorCount(t.source)
	srcCursors, err := t.source.GetRowCursorSet(srcNeeded, n, rng)
	if err != nil {
		return nil, err
	}
	wrapped := make([]data.RowCursor, len(srcCursors))
	for i, sc := range srcCursors {
		oc, err := newOutputCursor(t, sc, active)
		if err != nil {
			werr := data.CloseAll(wrapped[:i])
			return nil, errors.CombineErrors(err, errors.CombineErrors(werr, data.CloseAll(srcCursors[i:])))
		}
		wrapped[i] = oc
	}
	t.logTopology(len(wrapped), rng != nil, active)
	return cursor.Consolidate(wrapped)
}

// GetRowCursorSet implements data.DataView. When the source can serve only
// one cursor but the transform prefers parallelism, the single source cursor
// is split into n logical cursors by round-robin row interleaving.
func (t *Transform) GetRowCursorSet(needed data.ColumnPredicate, n int, rng *rand.Rand) ([]data.RowCursor, error) {
	if n <= 0 {
		return nil, errors.NewValidationError("n", "cursor count must be positive", n)
	}
	active := data.NewActiveSet(t.Schema().Len(), needed)
	srcNeeded := t.bindings.GetDependencies(active.Predicate())
	if rng != nil && !t.CanShuffle() {
		rng = nil
	}

	srcCursors, err := t.source.GetRowCursorSet(srcNeeded, n, rng)
	if err != nil {
		return nil, err
	}
	if len(srcCursors) == 1 && n > 1 && t.pref == PreferParallel {
		split, err := cursor.Split(srcCursors[0], n)
		if err != nil {
			return nil, errors.CombineErrors(err, srcCursors[0].Close())
		}
		srcCursors = split
	}

	out := make([]data.RowCursor, len(srcCursors))
	for i, sc := range srcCursors {
		oc, err := newOutputCursor(t, sc, active)
		if err != nil {
			werr := data.CloseAll(out[:i])
			return nil, errors.CombineErrors(err, errors.CombineErrors(werr, data.CloseAll(srcCursors[i:])))
		}
		out[i] = oc
	}
	t.logTopology(len(out), rng != nil, active)
	return out, nil
}

func (t *Transform) logTopology(cursors int, shuffled bool, active data.ActiveSet) {
	t.logger.Debug("cursor topology selected",
		log.ComponentKey, "transform",
		log.OperationKey, "get_row_cursor",
		log.CursorCountKey, cursors,
		log.ParallelKey, cursors > 1,
		log.ShuffledKey, shuffled,
		log.ActiveColumnsKey, active.Count(),
	)
}

// decideParallel resolves a transform's preference against the source's
// capabilities.
func decideParallel(pref ParallelPreference, source data.DataView) bool {
	switch pref {
	case PreferParallel:
		return true
	case PreferSingle:
		return false
	default:
		count, known := source.RowCount()
		return known && count >= parallelRowThreshold
	}
}

// parallelCursorCount picks how many source cursors to request: the CPU
// count, bounded by the known row count.
func parallelCursorCount(source data.DataView) int {
	n := runtime.NumCPU()
	if count, known := source.RowCount(); known && count < int64(n) {
		n = int(count)
	}
	if n < 1 {
		n = 1
	}
	return n
}
