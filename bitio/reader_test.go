package bitio

import (
	"bytes"
	"io"
	"testing"

	"github.com/dsnet/huffzip/internal/testutil"
)

func TestReaderFixed(t *testing.T) {
	vectors := []struct {
		input  string
		reads  []int // widths to read in sequence
		wants  []int64
	}{
		{
			input: "1 0 1 0 0*4",
			reads: []int{1, 1, 1, 1},
			wants: []int64{1, 0, 1, 0},
		},
		{
			input: "101 10 0*3",
			reads: []int{3, 2},
			wants: []int64{5, 2},
		},
		{
			input: "11111111",
			reads: []int{8},
			wants: []int64{255},
		},
		{
			input: "H16:1234",
			reads: []int{16},
			wants: []int64{0x1234},
		},
	}

	for i, v := range vectors {
		data := testutil.MustDecodeBitGen(v.input)
		br := NewReader(bytes.NewReader(data))
		for j, width := range v.reads {
			got, err := br.ReadFixed(width)
			if err != nil {
				t.Errorf("test %d.%d, ReadFixed error: %v", i, j, err)
				continue
			}
			if got != v.wants[j] {
				t.Errorf("test %d.%d, ReadFixed(%d) = %d, want %d", i, j, width, got, v.wants[j])
			}
		}
	}
}

func TestReaderFixedErrors(t *testing.T) {
	br := NewReader(bytes.NewReader(nil))
	if _, err := br.ReadFixed(-1); err != ErrInvalidWidth {
		t.Errorf("ReadFixed(-1) = %v, want ErrInvalidWidth", err)
	}
	if _, err := br.ReadFixed(65); err != ErrInvalidWidth {
		t.Errorf("ReadFixed(65) = %v, want ErrInvalidWidth", err)
	}
}

func TestWriterReaderRoundTrip(t *testing.T) {
	values := []struct {
		value int64
		width int
	}{
		{0, 1}, {1, 1}, {5, 3}, {255, 8}, {0x1234, 16}, {0, 4}, {0, 0},
		{0x7fffffffffffffff, 64},
	}

	var buf bytes.Buffer
	bw := NewWriter(&buf)
	for _, v := range values {
		if err := bw.WriteFixed(v.value, v.width); err != nil {
			t.Fatalf("WriteFixed(%d, %d) error: %v", v.value, v.width, err)
		}
	}
	if err := bw.Flush(); err != nil {
		t.Fatalf("Flush error: %v", err)
	}

	br := NewReader(bytes.NewReader(buf.Bytes()))
	for _, v := range values {
		got, err := br.ReadFixed(v.width)
		if err != nil {
			t.Fatalf("ReadFixed(%d) error: %v", v.width, err)
		}
		if got != v.value {
			t.Errorf("ReadFixed(%d) = %d, want %d", v.width, got, v.value)
		}
	}
}

func TestWriterReaderVariableRoundTrip(t *testing.T) {
	values := []uint64{1, 2, 3, 4, 255, 256, 1 << 20, 1<<63 - 1}

	var buf bytes.Buffer
	bw := NewWriter(&buf)
	for _, v := range values {
		if _, err := bw.WriteVariable(v, 6); err != nil {
			t.Fatalf("WriteVariable(%d, 6) error: %v", v, err)
		}
	}
	if err := bw.Flush(); err != nil {
		t.Fatalf("Flush error: %v", err)
	}

	br := NewReader(bytes.NewReader(buf.Bytes()))
	for _, v := range values {
		got, _, err := br.ReadVariable(6)
		if err != nil {
			t.Fatalf("ReadVariable(6) error: %v", err)
		}
		if got != v {
			t.Errorf("ReadVariable(6) = %d, want %d", got, v)
		}
	}
}

func TestReaderUnread(t *testing.T) {
	var buf bytes.Buffer
	bw := NewWriter(&buf)
	bw.WriteFixed(0x5, 3) // 101
	bw.WriteFixed(0x1, 1) // 1
	bw.Flush()

	br := NewReader(bytes.NewReader(buf.Bytes()))
	v, err := br.ReadFixed(3)
	if err != nil || v != 0x5 {
		t.Fatalf("first ReadFixed = %d, %v, want 5, nil", v, err)
	}
	if err := br.Unread(3); err != nil {
		t.Fatalf("Unread(3) error: %v", err)
	}
	if br.Position() != 0 {
		t.Fatalf("Position after Unread = %d, want 0", br.Position())
	}
	v, err = br.ReadFixed(3)
	if err != nil || v != 0x5 {
		t.Fatalf("re-ReadFixed = %d, %v, want 5, nil", v, err)
	}

	if err := br.Unread(4); err != ErrUnreadTooMany {
		t.Fatalf("Unread(4) after a 3-bit read = %v, want ErrUnreadTooMany", err)
	}
}

func TestReaderVariableTooNarrowUnreadsLengthField(t *testing.T) {
	var buf bytes.Buffer
	bw := NewWriter(&buf)
	// A length field of 64 can never arise from a real WriteVariable call
	// (the widest k for a nonzero uint64 is 63), but a malformed or
	// adversarial stream can still spell it out when ldMaxWidth=7 leaves
	// room for it; construct that field by hand to exercise the guard.
	bw.WriteFixed(64, 7)
	bw.Flush()

	br := NewReader(bytes.NewReader(buf.Bytes()))
	before := br.Position()
	_, _, err := br.ReadVariable(7)
	if err != ErrValueTypeTooNarrow {
		t.Fatalf("ReadVariable = %v, want ErrValueTypeTooNarrow", err)
	}
	if br.Position() != before {
		t.Fatalf("Position after failed ReadVariable = %d, want %d (length field unread)", br.Position(), before)
	}
}

func TestReaderSyntheticEOFByte(t *testing.T) {
	br := NewReader(bytes.NewReader([]byte{0xff}))
	if _, err := br.ReadFixed(8); err != nil {
		t.Fatalf("first ReadFixed error: %v", err)
	}
	v, err := br.ReadFixed(8)
	if err != nil {
		t.Fatalf("synthetic-byte ReadFixed error: %v", err)
	}
	if v != 0 {
		t.Fatalf("synthetic-byte value = %d, want 0", v)
	}
	if _, err := br.ReadFixed(1); err != ErrUnexpectedEOF {
		t.Fatalf("past-synthetic-byte ReadFixed = %v, want ErrUnexpectedEOF", err)
	}
}

func TestReaderSkip(t *testing.T) {
	var buf bytes.Buffer
	bw := NewWriter(&buf)
	bw.WriteFixed(0, 4)
	bw.WriteFixed(0xa, 4)
	bw.Flush()

	br := NewReader(bytes.NewReader(buf.Bytes()))
	if err := br.Skip(4); err != nil {
		t.Fatalf("Skip error: %v", err)
	}
	v, err := br.ReadFixed(4)
	if err != nil || v != 0xa {
		t.Fatalf("ReadFixed after Skip = %d, %v, want 10, nil", v, err)
	}
}

func TestReaderBools(t *testing.T) {
	var buf bytes.Buffer
	bw := NewWriter(&buf)
	bits := []bool{true, false, true, true, false}
	for _, b := range bits {
		bw.WriteBool(b)
	}
	bw.Flush()

	br := NewReader(bytes.NewReader(buf.Bytes()))
	for i, want := range bits {
		got, err := br.ReadBool()
		if err != nil {
			t.Fatalf("ReadBool %d error: %v", i, err)
		}
		if got != want {
			t.Errorf("ReadBool %d = %v, want %v", i, got, want)
		}
	}
}

func TestReaderFlushDiscardsPartialByte(t *testing.T) {
	var buf bytes.Buffer
	bw := NewWriter(&buf)
	bw.WriteFixed(1, 4)
	bw.Flush()
	bw.WriteFixed(0xab, 8)
	bw.Flush()

	br := NewReader(bytes.NewReader(buf.Bytes()))
	if _, err := br.ReadFixed(4); err != nil {
		t.Fatalf("ReadFixed error: %v", err)
	}
	br.Flush()
	v, err := br.ReadFixed(8)
	if err != nil || v != 0xab {
		t.Fatalf("ReadFixed after Flush = %d, %v, want 0xab, nil", v, err)
	}
}

func TestReaderUnderlyingError(t *testing.T) {
	br := NewReader(errReader{})
	if _, err := br.ReadFixed(8); err != errBoom {
		t.Fatalf("ReadFixed with failing source = %v, want %v", err, errBoom)
	}
}

var errBoom = io.ErrClosedPipe

type errReader struct{}

func (errReader) Read(p []byte) (int, error) { return 0, errBoom }
