package cursor

import (
	"sync"

	"github.com/mirprodev/machinelearning/core/data"
	"github.com/mirprodev/machinelearning/pkg/errors"
)

// Split fans src out to n logical cursors. Rows are assigned round robin on
// the physical row ordinal, a rule fixed for the lifetime of the split. The
// logical cursors may be consumed from different goroutines, each advancing
// independently; the physical MoveNext is the shared critical section and is
// serialized internally. A logical cursor that needs its next row drives the
// physical cursor itself, parking rows owned by siblings in their queues, so
// it never waits on a sibling making no progress.
//
// src is owned by the returned cursors: the physical cursor is closed when
// the last logical cursor is closed. n == 1 returns src unchanged.
func Split(src data.RowCursor, n int) ([]data.RowCursor, error) {
	if n <= 0 {
		return nil, errors.NewValidationError("n", "cursor count must be positive", n)
	}
	if n == 1 {
		return []data.RowCursor{src}, nil
	}
	getters, active, err := activeGetters(src)
	if err != nil {
		return nil, err
	}
	st := &splitState{
		src:     src,
		getters: getters,
		n:       n,
		queues:  make([][]bufferedRow, n),
		closed:  make([]bool, n),
		open:    n,
	}
	out := make([]data.RowCursor, n)
	for i := 0; i < n; i++ {
		out[i] = &splitCursor{
			state: st,
			id:    i,
			dock:  rowDock{schema: src.Schema(), active: active, op: "Split.Getter"},
		}
	}
	return out, nil
}

type splitState struct {
	mu      sync.Mutex
	src     data.RowCursor
	getters []data.Getter
	n       int

	next      int64 // next physical ordinal to assign an owner
	queues    [][]bufferedRow
	closed    []bool
	open      int
	exhausted bool
	err       error

	srcClosed   bool
	srcCloseErr error
}

// nextFor returns the next row owned by logical cursor id, advancing the
// physical cursor as needed. Rows owned by abandoned (closed) siblings are
// dropped.
func (st *splitState) nextFor(id int) (bufferedRow, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	for {
		if q := st.queues[id]; len(q) > 0 {
			row := q[0]
			st.queues[id] = q[1:]
			return row, true
		}
		if st.exhausted {
			return bufferedRow{}, false
		}
		if !st.src.MoveNext() {
			st.exhausted = true
			st.err = st.src.Err()
			continue
		}
		row, err := readRow(st.src, st.getters)
		if err != nil {
			st.exhausted = true
			st.err = err
			continue
		}
		owner := int(st.next % int64(st.n))
		st.next++
		if owner == id {
			return row, true
		}
		if !st.closed[owner] {
			st.queues[owner] = append(st.queues[owner], row)
		}
	}
}

func (st *splitState) lastErr() error {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.err
}

// closeOne marks a logical cursor closed; the physical cursor is closed
// exactly once, when the last logical cursor goes.
func (st *splitState) closeOne(id int) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.closed[id] {
		return nil
	}
	st.closed[id] = true
	st.queues[id] = nil
	st.open--
	if st.open == 0 && !st.srcClosed {
		st.srcClosed = true
		st.srcCloseErr = st.src.Close()
		return st.srcCloseErr
	}
	return nil
}

type splitCursor struct {
	state *splitState
	id    int
	dock  rowDock

	closeErr error
}

func (c *splitCursor) Schema() *data.Schema { return c.dock.schema }

func (c *splitCursor) MoveNext() bool {
	if c.dock.closed {
		return false
	}
	row, ok := c.state.nextFor(c.id)
	if !ok {
		c.dock.invalidate()
		return false
	}
	c.dock.set(row)
	return true
}

func (c *splitCursor) Position() int64 { return c.dock.position() }

func (c *splitCursor) IsColumnActive(col int) bool { return c.dock.active.IsActive(col) }

func (c *splitCursor) Getter(col int) (data.Getter, error) { return c.dock.getter(col) }

func (c *splitCursor) Err() error { return c.state.lastErr() }

func (c *splitCursor) Close() error {
	if c.dock.closed {
		return c.closeErr
	}
	c.dock.closed = true
	c.dock.invalidate()
	c.closeErr = c.state.closeOne(c.id)
	return c.closeErr
}
