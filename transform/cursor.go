package transform

import (
	"github.com/mirprodev/machinelearning/core/data"
	"github.com/mirprodev/machinelearning/pkg/errors"
)

// outputCursor serves a Transform's output schema over one source cursor.
// Pass-through getters forward to the source; getters for added columns are
// constructed eagerly for active columns only, each closing over the source
// getter of its declared dependency.
type outputCursor struct {
	t      *Transform
	src    data.RowCursor
	active data.ActiveSet

	// newGetters is indexed by bound-column index; nil for inactive
	// columns.
	newGetters []data.Getter
	releasers  []Releaser

	closed   bool
	closeErr error
}

func newOutputCursor(t *Transform, src data.RowCursor, active data.ActiveSet) (data.RowCursor, error) {
	c := &outputCursor{
		t:          t,
		src:        src,
		active:     active,
		newGetters: make([]data.Getter, t.bindings.NewColumnCount()),
	}
	inLen := t.bindings.InputSchema().Len()
	for i := 0; i < t.bindings.NewColumnCount(); i++ {
		if !active.IsActive(inLen + i) {
			continue
		}
		bc := t.bindings.BoundColumn(i)
		srcGetter, err := src.Getter(bc.SourceIndex)
		if err != nil {
			cerr := c.Close()
			return nil, errors.CombineErrors(err, cerr)
		}
		getter, release, err := t.comps[i].NewGetter(srcGetter, bc.SourceType)
		if err != nil {
			cerr := c.Close()
			return nil, errors.CombineErrors(err, cerr)
		}
		c.newGetters[i] = getter
		if release != nil {
			c.releasers = append(c.releasers, release)
		}
	}
	return c, nil
}

func (c *outputCursor) Schema() *data.Schema { return c.t.Schema() }

func (c *outputCursor) MoveNext() bool {
	if c.closed {
		return false
	}
	return c.src.MoveNext()
}

func (c *outputCursor) Position() int64 { return c.src.Position() }

func (c *outputCursor) IsColumnActive(col int) bool { return c.active.IsActive(col) }

func (c *outputCursor) Getter(col int) (data.Getter, error) {
	if !c.active.IsActive(col) {
		name := ""
		if s := c.t.Schema(); col >= 0 && col < s.Len() {
			name = s.Column(col).Name
		}
		return nil, errors.NewInactiveColumnError("Transform.Getter", name, col)
	}
	isSource, idx := c.t.bindings.MapColumnIndex(col)
	if isSource {
		// Dependency pushdown guarantees the source column is active on
		// the inner cursor.
		return c.src.Getter(idx)
	}
	return c.newGetters[idx], nil
}

func (c *outputCursor) Err() error { return c.src.Err() }

// Close runs every registered release callback exactly once, last registered
// first, then closes the source cursor. A failing releaser does not stop the
// rest from running. Idempotent.
func (c *outputCursor) Close() error {
	if c.closed {
		return c.closeErr
	}
	c.closed = true
	var err error
	for i := len(c.releasers) - 1; i >= 0; i-- {
		err = errors.CombineErrors(err, c.releasers[i]())
	}
	c.releasers = nil
	c.closeErr = errors.CombineErrors(err, c.src.Close())
	return c.closeErr
}
