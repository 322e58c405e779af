// Standard attribute keys for data-view pipeline operations.
//
// Using these keys consistently enables structured filtering of logs across
// schema binding, cursor construction and transform execution. The keys
// follow a hierarchical naming convention (e.g. "data.rows",
// "cursor.count").

package log

// Operation context.
const (
	// OperationKey specifies the pipeline operation being performed.
	// Standard values: "bind", "get_row_cursor", "get_row_cursor_set",
	// "consolidate", "split", "fit", "transform".
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	// Examples: "data", "cursor", "transform", "preprocessing".
	ComponentKey = "ml.component"

	// TransformKey identifies the transform or estimator type.
	// Examples: "Transform", "StandardScaler".
	TransformKey = "ml.transform"
)

// Data shape.
const (
	// RowsKey is the number of rows read or produced.
	RowsKey = "data.rows"

	// ColumnsKey is the number of columns in a schema.
	ColumnsKey = "data.columns"

	// ActiveColumnsKey is the number of columns in a cursor's active set.
	ActiveColumnsKey = "data.active_columns"

	// ColumnKey names a single column involved in an operation.
	ColumnKey = "data.column"
)

// Cursor topology.
const (
	// CursorCountKey is the number of physical or logical cursors in play.
	CursorCountKey = "cursor.count"

	// ParallelKey reports whether a parallel/consolidating topology was
	// chosen over a single cursor.
	ParallelKey = "cursor.parallel"

	// ShuffledKey reports whether row order randomization was honored.
	ShuffledKey = "cursor.shuffled"
)

// Performance.
const (
	// DurationMsKey records the execution time of an operation in
	// milliseconds.
	DurationMsKey = "perf.duration_ms"
)
