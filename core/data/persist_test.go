package data

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/mirprodev/machinelearning/pkg/errors"
)

func persistInput() *Schema {
	return MustSchema(
		Column{Name: "text", Type: Text()},
		Column{Name: "features", Type: Vector(KindNumeric, 4)},
		Column{Name: "tokens", Type: Vector(KindText, 0)},
	)
}

func identityType(_ string, src ColumnType) (ColumnType, error) { return src, nil }

func TestBindingsRoundTrip(t *testing.T) {
	input := persistInput()
	orig, err := NewColumnBindings(input, []ColumnSpec{
		{Name: "upper", Source: "text", Type: Text()},
		{Name: "scaled", Source: "features", Type: Vector(KindNumeric, 4)},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	written, err := orig.WriteTo(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if written != int64(buf.Len()) {
		t.Errorf("WriteTo reported %d bytes, buffer has %d", written, buf.Len())
	}

	loaded, err := LoadColumnBindings(&buf, input, identityType, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !loaded.OutputSchema().Equal(orig.OutputSchema()) {
		t.Errorf("loaded output schema = %s, want %s", loaded.OutputSchema(), orig.OutputSchema())
	}
	for i := 0; i < orig.NewColumnCount(); i++ {
		if loaded.BoundColumn(i).SourceIndex != orig.BoundColumn(i).SourceIndex {
			t.Errorf("column %d source index = %d, want %d",
				i, loaded.BoundColumn(i).SourceIndex, orig.BoundColumn(i).SourceIndex)
		}
	}
}

func TestBindingsPersistExplicitSource(t *testing.T) {
	// Every persisted entry carries an explicit source name, even when the
	// output is derived from a column it could plausibly shadow.
	input := MustSchema(Column{Name: "score", Type: Numeric()})
	b, err := NewColumnBindings(input, []ColumnSpec{
		{Name: "scaled", Source: "score", Type: Numeric()},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if _, err := b.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	pairs, err := ReadColumnPairs(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if len(pairs) != 1 || pairs[0].Name != "scaled" || pairs[0].Source != "score" {
		t.Errorf("pairs = %+v", pairs)
	}
}

func TestReadColumnPairsRejectsAbsentSource(t *testing.T) {
	// Outputs are appended after the input columns, so an entry without a
	// source name could never re-bind: it would either name a missing column
	// or collide with an input. Such entries fail at decode time.
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, uint32(1)); err != nil {
		t.Fatal(err)
	}
	writeUvarintString(&buf, "score")
	buf.WriteByte(0)

	_, err := ReadColumnPairs(bytes.NewReader(buf.Bytes()))
	var decodeErr *errors.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("ReadColumnPairs() error = %v, want DecodeError", err)
	}

	input := MustSchema(Column{Name: "score", Type: Numeric()})
	identity := func(_ string, src ColumnType) (ColumnType, error) { return src, nil }
	if _, err := LoadColumnBindings(bytes.NewReader(buf.Bytes()), input, identity, nil); !errors.As(err, &decodeErr) {
		t.Fatalf("LoadColumnBindings() error = %v, want DecodeError", err)
	}
}

func writeUvarintString(buf *bytes.Buffer, s string) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], uint64(len(s)))
	buf.Write(tmp[:n])
	buf.WriteString(s)
}

func TestReadColumnPairsDecodeErrors(t *testing.T) {
	valid := func() *bytes.Buffer {
		var buf bytes.Buffer
		binary.Write(&buf, binary.LittleEndian, uint32(1))
		writeUvarintString(&buf, "out")
		buf.WriteByte(1)
		writeUvarintString(&buf, "src")
		return &buf
	}

	tests := []struct {
		name    string
		corrupt func() []byte
	}{
		{
			name:    "empty stream",
			corrupt: func() []byte { return nil },
		},
		{
			name: "zero column count",
			corrupt: func() []byte {
				var buf bytes.Buffer
				binary.Write(&buf, binary.LittleEndian, uint32(0))
				return buf.Bytes()
			},
		},
		{
			name: "oversized column count",
			corrupt: func() []byte {
				var buf bytes.Buffer
				binary.Write(&buf, binary.LittleEndian, uint32(maxPersistedColumns+1))
				return buf.Bytes()
			},
		},
		{
			name: "truncated output name",
			corrupt: func() []byte {
				b := valid().Bytes()
				return b[:6]
			},
		},
		{
			name: "missing presence byte",
			corrupt: func() []byte {
				var buf bytes.Buffer
				binary.Write(&buf, binary.LittleEndian, uint32(1))
				writeUvarintString(&buf, "out")
				return buf.Bytes()
			},
		},
		{
			name: "invalid presence byte",
			corrupt: func() []byte {
				var buf bytes.Buffer
				binary.Write(&buf, binary.LittleEndian, uint32(1))
				writeUvarintString(&buf, "out")
				buf.WriteByte(7)
				return buf.Bytes()
			},
		},
		{
			name: "truncated source name",
			corrupt: func() []byte {
				b := valid().Bytes()
				return b[:len(b)-2]
			},
		},
		{
			name: "empty output name",
			corrupt: func() []byte {
				var buf bytes.Buffer
				binary.Write(&buf, binary.LittleEndian, uint32(1))
				writeUvarintString(&buf, "")
				buf.WriteByte(0)
				return buf.Bytes()
			},
		},
		{
			name: "oversized name length",
			corrupt: func() []byte {
				var buf bytes.Buffer
				binary.Write(&buf, binary.LittleEndian, uint32(1))
				var tmp [binary.MaxVarintLen64]byte
				n := binary.PutUvarint(tmp[:], uint64(maxPersistedNameLen+1))
				buf.Write(tmp[:n])
				return buf.Bytes()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadColumnPairs(bytes.NewReader(tt.corrupt()))
			if err == nil {
				t.Fatal("expected decode error, got nil")
			}
			var decodeErr *errors.DecodeError
			if !errors.As(err, &decodeErr) {
				t.Errorf("error = %v, want *DecodeError", err)
			}
		})
	}
}

func TestLoadColumnBindingsMissingSource(t *testing.T) {
	input := persistInput()
	orig, err := NewColumnBindings(input, []ColumnSpec{
		{Name: "upper", Source: "text", Type: Text()},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if _, err := orig.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}

	// Load against a schema that no longer has the persisted source.
	narrow := MustSchema(Column{Name: "features", Type: Vector(KindNumeric, 4)})
	_, err = LoadColumnBindings(&buf, narrow, identityType, nil)
	var decodeErr *errors.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("error = %v, want *DecodeError", err)
	}
}

func TestProperty_BindingsRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	input := persistInput()
	nameGen := gen.RegexMatch(`[a-z][a-z0-9_]{0,15}`)

	properties.Property("persisted bindings re-resolve to the same columns", prop.ForAll(
		func(names []string) bool {
			sources := input.ColumnNames()
			specs := make([]ColumnSpec, 0, len(names))
			seen := map[string]bool{}
			for i, name := range names {
				if name == "" || seen[name] {
					return true // duplicate outputs are a construction error, not a round-trip case
				}
				if _, clash := input.FindColumn(name); clash {
					return true
				}
				seen[name] = true
				src := sources[i%len(sources)]
				specs = append(specs, ColumnSpec{Name: name, Source: src, Type: input.Column(i % len(sources)).Type})
			}
			if len(specs) == 0 {
				return true
			}
			orig, err := NewColumnBindings(input, specs, nil)
			if err != nil {
				return false
			}
			var buf bytes.Buffer
			if _, err := orig.WriteTo(&buf); err != nil {
				return false
			}
			loaded, err := LoadColumnBindings(&buf, input, identityType, nil)
			if err != nil {
				return false
			}
			if !loaded.OutputSchema().Equal(orig.OutputSchema()) {
				return false
			}
			for i := 0; i < orig.NewColumnCount(); i++ {
				if loaded.BoundColumn(i).SourceIndex != orig.BoundColumn(i).SourceIndex {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(4, nameGen),
	))

	properties.TestingRun(t)
}

func TestBindingsWriteToByteCount(t *testing.T) {
	input := persistInput()
	for cols := 1; cols <= 3; cols++ {
		specs := make([]ColumnSpec, cols)
		for i := range specs {
			specs[i] = ColumnSpec{
				Name:   fmt.Sprintf("out%d", i),
				Source: input.Column(i).Name,
				Type:   input.Column(i).Type,
			}
		}
		b, err := NewColumnBindings(input, specs, nil)
		if err != nil {
			t.Fatal(err)
		}
		var buf bytes.Buffer
		written, err := b.WriteTo(&buf)
		if err != nil {
			t.Fatal(err)
		}
		if written != int64(buf.Len()) {
			t.Errorf("cols=%d: WriteTo reported %d bytes, wrote %d", cols, written, buf.Len())
		}
	}
}
