package cursor

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/mirprodev/machinelearning/core/data"
	"github.com/mirprodev/machinelearning/pkg/errors"
)

// consolidateBuffer is the channel depth between the pumps and the consumer.
const consolidateBuffer = 64

// Consolidate merges the given cursors into one logical cursor. Each input
// is pumped by its own goroutine into a shared channel; the merged ordering
// is the arrival order, which is internally consistent but unrelated to
// storage order. Every input row appears exactly once. Inputs must share a
// schema and active set and are owned by the consolidated cursor from this
// point on: closing it closes them.
//
// A single input is returned unchanged.
func Consolidate(cursors []data.RowCursor) (data.RowCursor, error) {
	if len(cursors) == 0 {
		return nil, errors.NewValidationError("cursors", "at least one cursor is required", 0)
	}
	if len(cursors) == 1 {
		return cursors[0], nil
	}
	schema := cursors[0].Schema()
	for _, cur := range cursors[1:] {
		if !schema.Equal(cur.Schema()) {
			return nil, errors.NewValidationError("cursors", "all cursors must share one schema", cur.Schema().String())
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)
	ch := make(chan bufferedRow, consolidateBuffer)

	var active data.ActiveSet
	for _, cur := range cursors {
		cur := cur
		getters, a, err := activeGetters(cur)
		if err != nil {
			cancel()
			return nil, err
		}
		if active == nil {
			active = a
		}
		g.Go(func() (err error) {
			defer errors.Recover(&err, "cursor.Consolidate.pump")
			for cur.MoveNext() {
				row, rerr := readRow(cur, getters)
				if rerr != nil {
					return rerr
				}
				select {
				case ch <- row:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return cur.Err()
		})
	}

	c := &consolidated{
		dock:   rowDock{schema: schema, active: active, op: "Consolidate.Getter"},
		inputs: cursors,
		ch:     ch,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go func() {
		c.pumpErr = g.Wait()
		close(ch)
		close(c.done)
	}()
	return c, nil
}

type consolidated struct {
	dock   rowDock
	inputs []data.RowCursor
	ch     chan bufferedRow
	cancel context.CancelFunc

	// done is closed after pumpErr is set; reads of pumpErr happen after
	// <-done.
	done    chan struct{}
	pumpErr error

	err      error
	closeErr error
}

func (c *consolidated) Schema() *data.Schema { return c.dock.schema }

func (c *consolidated) MoveNext() bool {
	if c.dock.closed {
		return false
	}
	row, ok := <-c.ch
	if !ok {
		<-c.done
		if c.pumpErr != nil && !errors.Is(c.pumpErr, context.Canceled) {
			c.err = c.pumpErr
		}
		c.dock.invalidate()
		return false
	}
	c.dock.set(row)
	return true
}

func (c *consolidated) Position() int64 { return c.dock.position() }

func (c *consolidated) IsColumnActive(col int) bool { return c.dock.active.IsActive(col) }

func (c *consolidated) Getter(col int) (data.Getter, error) { return c.dock.getter(col) }

func (c *consolidated) Err() error { return c.err }

// Close stops the pumps and closes the input cursors. Safe to call before
// exhaustion and more than once.
func (c *consolidated) Close() error {
	if c.dock.closed {
		return c.closeErr
	}
	c.dock.closed = true
	c.dock.invalidate()
	c.cancel()
	// Pumps unblock via the canceled context even when the consumer never
	// drains the channel.
	<-c.done
	c.closeErr = data.CloseAll(c.inputs)
	return c.closeErr
}
