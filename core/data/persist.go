package data

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/mirprodev/machinelearning/pkg/errors"
)

// Persisted binding format: a uint32 little-endian column count, then for
// each added column an output name, a source presence byte (always 1), and
// the source name. Strings are uvarint length-prefixed UTF-8. Every entry
// carries an explicit source: outputs are appended after the input columns,
// so an output never shares an input's name and an absent source could
// never resolve.

// ColumnPair is one persisted (output, source) entry.
type ColumnPair struct {
	Name   string
	Source string
}

// maxPersistedColumns bounds the decoded count so a corrupt stream cannot
// drive huge allocations.
const maxPersistedColumns = 1 << 20

const maxPersistedNameLen = 1 << 16

// WriteTo serializes the bindings' added columns. Only names are persisted;
// source indices and types are re-resolved against the current input schema
// at load time.
func (b *ColumnBindings) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var written int64

	if err := binary.Write(bw, binary.LittleEndian, uint32(len(b.bound))); err != nil {
		return written, errors.Wrap(err, "write column count")
	}
	written += 4

	var buf [binary.MaxVarintLen64]byte
	writeString := func(s string) error {
		n := binary.PutUvarint(buf[:], uint64(len(s)))
		if _, err := bw.Write(buf[:n]); err != nil {
			return err
		}
		written += int64(n)
		if _, err := bw.WriteString(s); err != nil {
			return err
		}
		written += int64(len(s))
		return nil
	}

	for _, bc := range b.bound {
		if err := writeString(bc.Name); err != nil {
			return written, errors.Wrap(err, "write output name")
		}
		source := b.input.Column(bc.SourceIndex).Name
		if err := bw.WriteByte(1); err != nil {
			return written, errors.Wrap(err, "write source presence")
		}
		written++
		if err := writeString(source); err != nil {
			return written, errors.Wrap(err, "write source name")
		}
	}
	if err := bw.Flush(); err != nil {
		return written, errors.Wrap(err, "flush bindings")
	}
	return written, nil
}

// ReadColumnPairs decodes the persisted binding entries. Corrupt data (zero
// count, oversized count or name, truncated stream) fails with a DecodeError.
func ReadColumnPairs(r io.Reader) ([]ColumnPair, error) {
	const op = "ReadColumnPairs"
	br := bufio.NewReader(r)

	var count uint32
	if err := binary.Read(br, binary.LittleEndian, &count); err != nil {
		return nil, errors.NewDecodeError(op, "truncated column count", err)
	}
	if count == 0 {
		return nil, errors.NewDecodeError(op, "column count must be positive", nil)
	}
	if count > maxPersistedColumns {
		return nil, errors.NewDecodeError(op, "column count exceeds sanity limit", nil)
	}

	readString := func(what string) (string, error) {
		n, err := binary.ReadUvarint(br)
		if err != nil {
			return "", errors.NewDecodeError(op, "truncated "+what+" length", err)
		}
		if n > maxPersistedNameLen {
			return "", errors.NewDecodeError(op, what+" length exceeds sanity limit", nil)
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(br, buf); err != nil {
			return "", errors.NewDecodeError(op, "truncated "+what, err)
		}
		return string(buf), nil
	}

	pairs := make([]ColumnPair, count)
	for i := range pairs {
		name, err := readString("output name")
		if err != nil {
			return nil, err
		}
		if name == "" {
			return nil, errors.NewDecodeError(op, "empty output name", nil)
		}
		presence, err := br.ReadByte()
		if err != nil {
			return nil, errors.NewDecodeError(op, "truncated source presence", err)
		}
		if presence != 1 {
			return nil, errors.NewDecodeError(op, "entry is missing an explicit source name", nil)
		}
		source, err := readString("source name")
		if err != nil {
			return nil, err
		}
		if source == "" {
			return nil, errors.NewDecodeError(op, "empty source name", nil)
		}
		pairs[i] = ColumnPair{Name: name, Source: source}
	}
	return pairs, nil
}

// LoadColumnBindings reads persisted entries and re-binds them against the
// current input schema. outputType derives each added column's type from its
// resolved source type. A source name missing from the schema is a fatal
// load error.
func LoadColumnBindings(r io.Reader, input *Schema, outputType func(name string, src ColumnType) (ColumnType, error), validate TypeValidator) (*ColumnBindings, error) {
	const op = "LoadColumnBindings"
	pairs, err := ReadColumnPairs(r)
	if err != nil {
		return nil, err
	}

	specs := make([]ColumnSpec, len(pairs))
	for i, pair := range pairs {
		srcIdx, ok := input.FindColumn(pair.Source)
		if !ok {
			return nil, errors.NewDecodeError(op,
				"persisted source column "+pair.Source+" is missing from the current input schema", nil)
		}
		outType, err := outputType(pair.Name, input.Column(srcIdx).Type)
		if err != nil {
			return nil, err
		}
		specs[i] = ColumnSpec{Name: pair.Name, Source: pair.Source, Type: outType}
	}
	return NewColumnBindings(input, specs, validate)
}
