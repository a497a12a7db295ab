package nbt

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

func TestWriteInt(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.WriteInt("x", 12345)

	data := buf.Bytes()
	if data[0] != TagInt {
		t.Fatalf("expected tag type %d, got %d", TagInt, data[0])
	}
	// skip tag(1) + name_len(2) + name(1) = 4 bytes
	val := int32(binary.BigEndian.Uint32(data[4:8]))
	if val != 12345 {
		t.Fatalf("expected 12345, got %d", val)
	}
}

func TestWriteByteArray(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.WriteByteArray("ba", []byte{1, 2, 3})

	data := buf.Bytes()
	if data[0] != TagByteArray {
		t.Fatalf("expected tag type %d, got %d", TagByteArray, data[0])
	}
	// tag(1) + name_len(2) + name(2) = 5, then length(4) + data(3)
	arrLen := int32(binary.BigEndian.Uint32(data[5:9]))
	if arrLen != 3 {
		t.Fatalf("expected array length 3, got %d", arrLen)
	}
	if !bytes.Equal(data[9:12], []byte{1, 2, 3}) {
		t.Fatalf("expected [1,2,3], got %v", data[9:12])
	}
}

func TestWriteString(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.WriteString("s", "hello")

	data := buf.Bytes()
	if data[0] != TagString {
		t.Fatalf("expected tag type %d, got %d", TagString, data[0])
	}
	// tag(1) + name_len(2) + name(1) = 4, then string_len(2) + string(5)
	strLen := binary.BigEndian.Uint16(data[4:6])
	if strLen != 5 {
		t.Fatalf("expected string length 5, got %d", strLen)
	}
	if string(data[6:11]) != "hello" {
		t.Fatalf("expected 'hello', got %q", string(data[6:11]))
	}
}

func TestWriteLong(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.WriteLong("L", 0x123456789ABCDEF0)

	data := buf.Bytes()
	if data[0] != TagLong {
		t.Fatalf("expected tag type %d, got %d", TagLong, data[0])
	}
	val := int64(binary.BigEndian.Uint64(data[4:12]))
	if val != 0x123456789ABCDEF0 {
		t.Fatalf("expected 0x123456789ABCDEF0, got 0x%X", val)
	}
}

func TestWriteDoubleList(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.WriteDoubleList("h", []float64{0.5, -1.25})

	data := buf.Bytes()
	if data[0] != TagList {
		t.Fatalf("expected list tag, got %d", data[0])
	}
	// tag(1) + name_len(2) + name(1) = 4, then elem_type(1) + count(4)
	if data[4] != TagDouble {
		t.Fatalf("expected elem type %d, got %d", TagDouble, data[4])
	}
	if count := int32(binary.BigEndian.Uint32(data[5:9])); count != 2 {
		t.Fatalf("expected count 2, got %d", count)
	}
	v0 := math.Float64frombits(binary.BigEndian.Uint64(data[9:17]))
	v1 := math.Float64frombits(binary.BigEndian.Uint64(data[17:25]))
	if v0 != 0.5 || v1 != -1.25 {
		t.Fatalf("expected [0.5,-1.25], got [%v,%v]", v0, v1)
	}
	if len(data) != 25 {
		t.Fatalf("expected 25 bytes, got %d", len(data))
	}
}

func TestNestedCompound(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	w.BeginCompound("")
	w.BeginCompound("Heightmap")
	w.WriteInt("Width", 3)
	w.WriteDouble("Scale", 1)
	w.EndCompound()
	w.EndCompound()

	if w.Err() != nil {
		t.Fatalf("unexpected error: %v", w.Err())
	}

	data := buf.Bytes()
	if data[0] != TagCompound {
		t.Fatal("expected outer compound")
	}
	if data[3] != TagCompound {
		t.Fatal("expected inner compound")
	}
	if data[len(data)-1] != TagEnd || data[len(data)-2] != TagEnd {
		t.Fatal("expected two end tags at end")
	}
}

type failWriter struct{ n int }

var errFull = errors.New("disk full")

func (f *failWriter) Write(p []byte) (int, error) {
	if f.n <= 0 {
		return 0, errFull
	}
	f.n--
	return len(p), nil
}

func TestWriterErrorIsSticky(t *testing.T) {
	fw := &failWriter{n: 2}
	w := NewWriter(fw)
	w.BeginCompound("root")
	w.WriteInt("a", 1)
	w.WriteInt("b", 2)

	if !errors.Is(w.Err(), errFull) {
		t.Fatalf("expected errFull, got %v", w.Err())
	}
}

func TestWriteBool(t *testing.T) {
	for _, tt := range []struct {
		v    bool
		want byte
	}{{true, 1}, {false, 0}} {
		var buf bytes.Buffer
		w := NewWriter(&buf)
		w.WriteBool("e", tt.v)

		data := buf.Bytes()
		// tag(1) + name_len(2) + name(1) + payload(1)
		if len(data) != 5 || data[0] != TagByte || data[4] != tt.want {
			t.Fatalf("WriteBool(%v) = %v", tt.v, data)
		}
	}
}

func TestWriteStringTooLong(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.WriteString("s", string(make([]byte, math.MaxUint16+1)))
	if w.Err() == nil {
		t.Fatal("expected error for oversized string")
	}
	w.WriteInt("after", 1)
	// tag(1) + name_len(2) + name(1); nothing after the failure
	if buf.Len() != 4 {
		t.Fatalf("expected 4 bytes written, got %d", buf.Len())
	}
}
