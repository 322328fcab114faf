// Package binblock decodes fixed-layout binary blocks into named fields.
// A block is described by an ordered Layout of fields; the order defines
// the byte offsets and is fixed per format, never rearranged at runtime.
package binblock

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Kind identifies the wire type of a field.
type Kind int

const (
	// Pad marks bytes that are skipped without decoding.
	Pad Kind = iota
	Int8
	Uint8
	Int16
	Uint16
	Int32
	Uint32
	Int64
	Uint64
	Float32
	Float64
	// Bytes is a fixed-length raw byte string.
	Bytes
)

func (k Kind) String() string {
	switch k {
	case Pad:
		return "pad"
	case Int8:
		return "i8"
	case Uint8:
		return "u8"
	case Int16:
		return "i16"
	case Uint16:
		return "u16"
	case Int32:
		return "i32"
	case Uint32:
		return "u32"
	case Int64:
		return "i64"
	case Uint64:
		return "u64"
	case Float32:
		return "f32"
	case Float64:
		return "f64"
	case Bytes:
		return "bytes"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Field is one entry of a block layout. Name is empty for padding.
// Len is the byte length of Pad and Bytes fields and ignored otherwise.
type Field struct {
	Name string
	Kind Kind
	Len  int
}

// Size returns the number of bytes the field occupies on disk.
func (f Field) Size() int {
	switch f.Kind {
	case Pad, Bytes:
		return f.Len
	case Int8, Uint8:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	case Int64, Uint64, Float64:
		return 8
	default:
		return 0
	}
}

// Layout is an ordered sequence of fields describing one binary block.
type Layout []Field

// Size returns the total byte width of the block, padding included.
func (l Layout) Size() int {
	n := 0
	for _, f := range l {
		n += f.Size()
	}
	return n
}

// Offset returns the byte offset of the named field within the block.
func (l Layout) Offset(name string) (int, bool) {
	off := 0
	for _, f := range l {
		if f.Name == name {
			return off, true
		}
		off += f.Size()
	}
	return 0, false
}

// Value is a decoded field tagged with its wire kind.
type Value struct {
	Kind  Kind
	Value any
}

// Record maps field names to decoded values. Padding fields never
// appear in a record.
type Record map[string]Value

// Int returns the named field as an int64. Layouts are package
// constants, so a missing or non-integer field is a programming error;
// Int returns 0 in that case.
func (rec Record) Int(name string) int64 {
	v, ok := rec[name]
	if !ok {
		return 0
	}
	switch t := v.Value.(type) {
	case int8:
		return int64(t)
	case int16:
		return int64(t)
	case int32:
		return int64(t)
	case int64:
		return t
	case uint8:
		return int64(t)
	case uint16:
		return int64(t)
	case uint32:
		return int64(t)
	case uint64:
		return int64(t)
	default:
		return 0
	}
}

// Float returns the named field as a float64, or 0 when absent.
func (rec Record) Float(name string) float64 {
	v, ok := rec[name]
	if !ok {
		return 0
	}
	switch t := v.Value.(type) {
	case float32:
		return float64(t)
	case float64:
		return t
	default:
		return 0
	}
}

// Bytes returns the raw bytes of a Bytes field, or nil when absent.
func (rec Record) Bytes(name string) []byte {
	v, ok := rec[name]
	if !ok {
		return nil
	}
	b, _ := v.Value.([]byte)
	return b
}

// Lookup returns the named value and whether it is present.
func (rec Record) Lookup(name string) (Value, bool) {
	v, ok := rec[name]
	return v, ok
}

// Read decodes one block from r using the given byte order. It consumes
// exactly l.Size() bytes; a shorter stream is an error wrapping
// io.ErrUnexpectedEOF and no record is returned.
func Read(r io.Reader, l Layout, order binary.ByteOrder) (Record, error) {
	size := l.Size()
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("read %d-byte block: %w", size, err)
	}
	return decode(buf, l, order), nil
}

// ReadAt seeks rs to the absolute offset off, then reads one block.
func ReadAt(rs io.ReadSeeker, l Layout, off int64, order binary.ByteOrder) (Record, error) {
	if _, err := rs.Seek(off, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek to %d: %w", off, err)
	}
	return Read(rs, l, order)
}

func decode(buf []byte, l Layout, order binary.ByteOrder) Record {
	rec := make(Record, len(l))
	off := 0
	for _, f := range l {
		n := f.Size()
		if f.Name == "" || f.Kind == Pad {
			off += n
			continue
		}
		b := buf[off : off+n]
		var v any
		switch f.Kind {
		case Int8:
			v = int8(b[0])
		case Uint8:
			v = b[0]
		case Int16:
			v = int16(order.Uint16(b))
		case Uint16:
			v = order.Uint16(b)
		case Int32:
			v = int32(order.Uint32(b))
		case Uint32:
			v = order.Uint32(b)
		case Int64:
			v = int64(order.Uint64(b))
		case Uint64:
			v = order.Uint64(b)
		case Float32:
			v = math.Float32frombits(order.Uint32(b))
		case Float64:
			v = math.Float64frombits(order.Uint64(b))
		case Bytes:
			raw := make([]byte, n)
			copy(raw, b)
			v = raw
		}
		rec[f.Name] = Value{Kind: f.Kind, Value: v}
		off += n
	}
	return rec
}
