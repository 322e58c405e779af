package errors

import (
	"fmt"
	"strings"
	"testing"
)

func TestNameNotFoundError(t *testing.T) {
	tests := []struct {
		name      string
		available []string
		wantMsg   string
	}{
		{
			name:      "with available columns",
			available: []string{"a", "b"},
			wantMsg:   `ml: Bind: source column "missing" not found in input schema (available: a, b)`,
		},
		{
			name:    "without available columns",
			wantMsg: `ml: Bind: source column "missing" not found in input schema`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewNameNotFoundError("Bind", "missing", tt.available)
			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}

			var nameErr *NameNotFoundError
			if !As(err, &nameErr) {
				t.Fatal("error should be castable to *NameNotFoundError")
			}
			if nameErr.Name != "missing" {
				t.Errorf("Name = %q", nameErr.Name)
			}

			formatted := fmt.Sprintf("%+v", err)
			if !strings.Contains(formatted, "errors_test.go") {
				t.Error("expected stack trace to contain test file name")
			}
		})
	}
}

func TestTypeRejectedError(t *testing.T) {
	err := NewTypeRejectedError("Bind", "features", "text", "requires numeric input")
	want := `ml: Bind: source column "features" has unsupported type text: requires numeric input`
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
	var rejErr *TypeRejectedError
	if !As(err, &rejErr) {
		t.Error("error should be castable to *TypeRejectedError")
	}
}

func TestDuplicateColumnError(t *testing.T) {
	err := NewDuplicateColumnError("NewSchema", "x")
	want := `ml: NewSchema: duplicate column name "x"`
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("n", "cursor count must be positive", -1)
	want := `ml: validation failed for parameter "n": cursor count must be positive (got: -1)`
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
}

func TestDecodeError(t *testing.T) {
	inner := New("unexpected EOF")
	err := NewDecodeError("ReadColumnPairs", "truncated column count", inner)
	if !strings.Contains(err.Error(), "cannot decode persisted bindings") {
		t.Errorf("Error() = %v", err)
	}
	if !Is(err, inner) {
		t.Error("DecodeError should unwrap to its cause")
	}

	bare := NewDecodeError("ReadColumnPairs", "column count must be positive", nil)
	want := "ml: ReadColumnPairs: cannot decode persisted bindings: column count must be positive"
	if bare.Error() != want {
		t.Errorf("Error() = %v, want %v", bare.Error(), want)
	}
}

func TestInactiveColumnError(t *testing.T) {
	err := NewInactiveColumnError("Getter", "score", 3)
	var inactiveErr *InactiveColumnError
	if !As(err, &inactiveErr) {
		t.Fatal("error should be castable to *InactiveColumnError")
	}
	if inactiveErr.Index != 3 || inactiveErr.Column != "score" {
		t.Errorf("fields = %+v", inactiveErr)
	}
	if !strings.Contains(err.Error(), "needed-columns predicate") {
		t.Errorf("Error() = %v", err)
	}
}

func TestTypeMismatchError(t *testing.T) {
	named := NewTypeMismatchError("TypedGetter", "score", "text", "numeric")
	want := `ml: TypedGetter: column "score" has type numeric, requested text`
	if named.Error() != want {
		t.Errorf("Error() = %v, want %v", named.Error(), want)
	}

	anon := NewTypeMismatchError("Value.Numeric", "", "numeric", "text")
	want = "ml: Value.Numeric: value has type text, requested numeric"
	if anon.Error() != want {
		t.Errorf("Error() = %v, want %v", anon.Error(), want)
	}
}

func TestNotFittedError(t *testing.T) {
	err := NewNotFittedError("StandardScaler", "Transform")
	if !strings.Contains(err.Error(), "not fitted yet") {
		t.Errorf("Error() = %v", err)
	}
}

func TestWarningHandler(t *testing.T) {
	var captured []error
	SetWarningHandler(func(w error) { captured = append(captured, w) })
	defer SetWarningHandler(func(w error) {})

	warning := NewColumnDroppedWarning("blob", "no exported representation")
	Warn(warning)

	if len(captured) != 1 {
		t.Fatalf("captured %d warnings, want 1", len(captured))
	}
	if !strings.Contains(captured[0].Error(), `column "blob" dropped from export`) {
		t.Errorf("warning = %v", captured[0])
	}
}

func TestZerologWarnFuncTakesPriority(t *testing.T) {
	var viaHandler, viaZerolog int
	SetWarningHandler(func(error) { viaHandler++ })
	SetZerologWarnFunc(func(error) { viaZerolog++ })
	defer func() {
		SetWarningHandler(func(error) {})
		SetZerologWarnFunc(nil)
	}()

	Warn(NewColumnDroppedWarning("c", "r"))
	if viaZerolog != 1 || viaHandler != 0 {
		t.Errorf("zerolog=%d handler=%d, want the zerolog hook to win", viaZerolog, viaHandler)
	}
}

func TestCombineErrors(t *testing.T) {
	a := New("first")
	b := New("second")

	if got := CombineErrors(nil, nil); got != nil {
		t.Errorf("CombineErrors(nil, nil) = %v", got)
	}
	if got := CombineErrors(a, nil); !Is(got, a) {
		t.Errorf("CombineErrors(a, nil) = %v", got)
	}
	if got := CombineErrors(nil, b); !Is(got, b) {
		t.Errorf("CombineErrors(nil, b) = %v", got)
	}
	both := CombineErrors(a, b)
	if !Is(both, a) {
		t.Errorf("combined error should keep the primary: %v", both)
	}
}

func TestWrapPreservesType(t *testing.T) {
	err := NewNameNotFoundError("Bind", "x", nil)
	wrapped := Wrap(err, "while building pipeline")

	var nameErr *NameNotFoundError
	if !As(wrapped, &nameErr) {
		t.Error("wrapping should preserve the concrete error type")
	}
	if !strings.Contains(wrapped.Error(), "while building pipeline") {
		t.Errorf("Error() = %v", wrapped)
	}
}
