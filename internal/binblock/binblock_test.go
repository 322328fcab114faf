package binblock

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"
)

var testLayout = Layout{
	{Name: "a", Kind: Int16},
	{Kind: Pad, Len: 2},
	{Name: "b", Kind: Float32},
}

func TestLayoutSize(t *testing.T) {
	t.Parallel()
	if got := testLayout.Size(); got != 8 {
		t.Errorf("Size() = %d, want 8", got)
	}
	off, ok := testLayout.Offset("b")
	if !ok || off != 4 {
		t.Errorf("Offset(b) = %d,%v, want 4,true", off, ok)
	}
	if _, ok := testLayout.Offset("missing"); ok {
		t.Error("Offset(missing) should not be found")
	}
}

func TestRead(t *testing.T) {
	t.Parallel()
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint16(buf[0:], uint16(0xfffe)) // -2
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(1.5))
	extra := append(append([]byte{}, buf...), 0x7f)

	r := bytes.NewReader(extra)
	rec, err := Read(r, testLayout, binary.LittleEndian)
	if err != nil {
		t.Fatal(err)
	}
	if got := rec.Int("a"); got != -2 {
		t.Errorf("a = %d, want -2", got)
	}
	if got := rec.Float("b"); got != 1.5 {
		t.Errorf("b = %v, want 1.5", got)
	}
	if _, ok := rec.Lookup(""); ok {
		t.Error("padding must not appear in the record")
	}
	if len(rec) != 2 {
		t.Errorf("record has %d fields, want 2", len(rec))
	}

	// The cursor advanced by exactly the block size.
	next, err := r.ReadByte()
	if err != nil {
		t.Fatal(err)
	}
	if next != 0x7f {
		t.Errorf("next byte = %#x, want 0x7f", next)
	}
}

func TestReadShort(t *testing.T) {
	t.Parallel()
	buf := make([]byte, 7) // one byte short
	_, err := Read(bytes.NewReader(buf), testLayout, binary.LittleEndian)
	if err == nil {
		t.Fatal("expected error on truncated block")
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("error = %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestReadEmpty(t *testing.T) {
	t.Parallel()
	_, err := Read(bytes.NewReader(nil), testLayout, binary.LittleEndian)
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("error = %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestReadAt(t *testing.T) {
	t.Parallel()
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint16(buf[8:], 7)
	binary.LittleEndian.PutUint32(buf[12:], math.Float32bits(2.25))

	rec, err := ReadAt(bytes.NewReader(buf), testLayout, 8, binary.LittleEndian)
	if err != nil {
		t.Fatal(err)
	}
	if got := rec.Int("a"); got != 7 {
		t.Errorf("a = %d, want 7", got)
	}
	if got := rec.Float("b"); got != 2.25 {
		t.Errorf("b = %v, want 2.25", got)
	}
}

func TestReadBigEndian(t *testing.T) {
	t.Parallel()
	layout := Layout{{Name: "v", Kind: Uint32}}
	buf := []byte{0x00, 0x00, 0x01, 0x00}
	rec, err := Read(bytes.NewReader(buf), layout, binary.BigEndian)
	if err != nil {
		t.Fatal(err)
	}
	if got := rec.Int("v"); got != 256 {
		t.Errorf("v = %d, want 256", got)
	}
}

func TestReadBytesField(t *testing.T) {
	t.Parallel()
	layout := Layout{
		{Name: "name", Kind: Bytes, Len: 4},
		{Name: "flag", Kind: Uint8},
	}
	rec, err := Read(bytes.NewReader([]byte{'a', 'b', ' ', ' ', 1}), layout, binary.LittleEndian)
	if err != nil {
		t.Fatal(err)
	}
	if got := rec.Bytes("name"); !bytes.Equal(got, []byte("ab  ")) {
		t.Errorf("name = %q, want \"ab  \"", got)
	}
	if got := rec.Int("flag"); got != 1 {
		t.Errorf("flag = %d, want 1", got)
	}
}
