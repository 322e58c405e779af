package data

import (
	"math/rand"
	"testing"

	"github.com/mirprodev/machinelearning/pkg/errors"
)

func memViewFixture(t *testing.T, rows int) *InMemoryView {
	t.Helper()
	schema := MustSchema(
		Column{Name: "id", Type: Key()},
		Column{Name: "score", Type: Numeric()},
	)
	data := make([][]Value, rows)
	for i := range data {
		data[i] = []Value{KeyValue(uint64(i)), NumericValue(float64(i) * 10)}
	}
	v, err := NewInMemoryView(schema, data)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestNewInMemoryViewValidation(t *testing.T) {
	schema := MustSchema(Column{Name: "x", Type: Numeric()})

	if _, err := NewInMemoryView(nil, nil); err == nil {
		t.Error("nil schema should be rejected")
	}
	if _, err := NewInMemoryView(schema, [][]Value{{NumericValue(1), NumericValue(2)}}); err == nil {
		t.Error("row wider than schema should be rejected")
	}
	_, err := NewInMemoryView(schema, [][]Value{{TextValue("no")}})
	var mismatch *errors.TypeMismatchError
	if !errors.As(err, &mismatch) {
		t.Errorf("error = %v, want *TypeMismatchError", err)
	}
}

func TestInMemoryViewCursorIteration(t *testing.T) {
	v := memViewFixture(t, 3)
	cur, err := v.GetRowCursor(AllColumns, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer cur.Close()

	if cur.Position() != -1 {
		t.Errorf("Position() before MoveNext = %d, want -1", cur.Position())
	}

	score, err := cur.Getter(1)
	if err != nil {
		t.Fatal(err)
	}

	var got []float64
	var val Value
	for cur.MoveNext() {
		if err := score(&val); err != nil {
			t.Fatal(err)
		}
		x, err := val.Numeric()
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, x)
	}
	if cur.Err() != nil {
		t.Fatal(cur.Err())
	}
	want := []float64{0, 10, 20}
	if len(got) != len(want) {
		t.Fatalf("yielded %d rows, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %g, want %g", i, got[i], want[i])
		}
	}
	if cur.Position() != -1 {
		t.Errorf("Position() after exhaustion = %d, want -1", cur.Position())
	}
}

func TestInMemoryViewInactiveColumn(t *testing.T) {
	v := memViewFixture(t, 2)
	cur, err := v.GetRowCursor(ColumnsByIndex(0), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer cur.Close()

	if !cur.IsColumnActive(0) || cur.IsColumnActive(1) {
		t.Error("active set should contain exactly column 0")
	}
	_, err = cur.Getter(1)
	var inactive *errors.InactiveColumnError
	if !errors.As(err, &inactive) {
		t.Fatalf("error = %v, want *InactiveColumnError", err)
	}
	if inactive.Column != "score" || inactive.Index != 1 {
		t.Errorf("inactive = %q index %d", inactive.Column, inactive.Index)
	}
}

func TestInMemoryViewGetterContract(t *testing.T) {
	v := memViewFixture(t, 1)
	cur, err := v.GetRowCursor(AllColumns, nil)
	if err != nil {
		t.Fatal(err)
	}
	getter, err := cur.Getter(0)
	if err != nil {
		t.Fatal(err)
	}

	var val Value
	if err := getter(&val); !errors.Is(err, errors.ErrNoCurrentRow) {
		t.Errorf("getter before MoveNext = %v, want ErrNoCurrentRow", err)
	}
	if !cur.MoveNext() {
		t.Fatal("MoveNext() = false on non-empty view")
	}
	if err := getter(&val); err != nil {
		t.Errorf("getter on positioned cursor = %v", err)
	}
	if err := cur.Close(); err != nil {
		t.Fatal(err)
	}
	if err := getter(&val); !errors.Is(err, errors.ErrCursorClosed) {
		t.Errorf("getter after Close = %v, want ErrCursorClosed", err)
	}
	if cur.MoveNext() {
		t.Error("MoveNext() after Close should return false")
	}
	// Close is idempotent.
	if err := cur.Close(); err != nil {
		t.Errorf("second Close() = %v", err)
	}
}

func TestInMemoryViewShuffleDeterminism(t *testing.T) {
	v := memViewFixture(t, 20)
	if !v.CanShuffle() {
		t.Fatal("InMemoryView should support shuffling")
	}

	readOrder := func(seed int64) []int64 {
		cur, err := v.GetRowCursor(AllColumns, rand.New(rand.NewSource(seed)))
		if err != nil {
			t.Fatal(err)
		}
		defer cur.Close()
		var order []int64
		for cur.MoveNext() {
			order = append(order, cur.Position())
		}
		return order
	}

	a := readOrder(7)
	b := readOrder(7)
	c := readOrder(8)

	if len(a) != 20 {
		t.Fatalf("shuffled cursor yielded %d rows, want 20", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed produced different orders at %d: %d vs %d", i, a[i], b[i])
		}
	}
	same := true
	for i := range a {
		if a[i] != c[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced an identical order")
	}

	// Shuffling permutes; it never drops or repeats rows.
	seen := make(map[int64]bool, len(a))
	for _, pos := range a {
		if seen[pos] {
			t.Fatalf("row %d yielded twice", pos)
		}
		seen[pos] = true
	}
}

func TestInMemoryViewCursorSetCoverage(t *testing.T) {
	v := memViewFixture(t, 11)
	for _, n := range []int{1, 2, 5, 16} {
		cursors, err := v.GetRowCursorSet(AllColumns, n, nil)
		if err != nil {
			t.Fatal(err)
		}
		seen := make(map[int64]int)
		for _, cur := range cursors {
			for cur.MoveNext() {
				seen[cur.Position()]++
			}
		}
		if err := CloseAll(cursors); err != nil {
			t.Fatal(err)
		}
		if len(seen) != 11 {
			t.Errorf("n=%d: covered %d rows, want 11", n, len(seen))
		}
		for pos, count := range seen {
			if count != 1 {
				t.Errorf("n=%d: row %d yielded %d times", n, pos, count)
			}
		}
	}
}

func TestInMemoryViewCursorSetValidation(t *testing.T) {
	v := memViewFixture(t, 3)
	_, err := v.GetRowCursorSet(AllColumns, 0, nil)
	var validationErr *errors.ValidationError
	if !errors.As(err, &validationErr) {
		t.Errorf("error = %v, want *ValidationError", err)
	}
}

func TestInMemoryViewRowCount(t *testing.T) {
	v := memViewFixture(t, 5)
	count, known := v.RowCount()
	if !known || count != 5 {
		t.Errorf("RowCount() = (%d, %t), want (5, true)", count, known)
	}
}
