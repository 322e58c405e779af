// Package machinelearning provides a lazy, schema-bound data-view execution
// core for Go, designed for streaming feature pipelines and backend inference
// services.
//
// Data flows through immutable views: a view exposes a Schema and hands out
// row cursors scoped to the columns a consumer declares it needs. Transforms
// compose views instead of materializing them, so a pipeline of appended
// columns costs only the work of the columns actually read.
//
// # Features
//
// - Lazy Evaluation: columns are computed only when a cursor reads them
// - Column Pushdown: dependency analysis activates only required inputs
// - CPU Parallelism: cursor sets split and consolidate work across cores
// - Robust Error Handling: structured errors with stack traces
// - Binary Persistence: column bindings round-trip through io.Writer/Reader
//
// # Quick Start
//
// Append an uppercased column to an in-memory view and read it back:
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/mirprodev/machinelearning/core/data"
//	    "github.com/mirprodev/machinelearning/transform"
//	)
//
//	func main() {
//	    schema := data.MustSchema(data.Column{Name: "name", Type: data.Text()})
//	    view, err := data.NewInMemoryView(schema, [][]data.Value{
//	        {data.TextValue("ada")},
//	        {data.TextValue("grace")},
//	    })
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    t, err := transform.New(view, []transform.ColumnMapping{
//	        {Name: "name_upper", Source: "name", Comp: transform.UpperCase()},
//	    })
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    cur, err := t.GetRowCursor(data.AllColumns, nil)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer cur.Close()
//
//	    upper, _ := cur.Getter(1)
//	    var v data.Value
//	    for cur.MoveNext() {
//	        if err := upper(&v); err != nil {
//	            log.Fatal(err)
//	        }
//	        fmt.Println(v.String())
//	    }
//	}
//
// # Package Layout
//
// - core/data: schemas, column types, values, views, cursors, bindings
// - core/cursor: cursor consolidation and splitting for parallel readers
// - transform: lazy row-to-row column transforms over any view
// - preprocessing: fitted transformers such as StandardScaler
// - core/model: estimator state and model persistence
// - pkg/errors, pkg/log: structured errors and logging used throughout
package machinelearning
