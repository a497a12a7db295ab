// Package nbt encodes the subset of the Named Binary Tag format used to
// export heightmaps to voxel-game tooling.
//
// Output is uncompressed big-endian NBT; callers wrap the destination in
// gzip when the consumer expects a compressed file.
package nbt

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Tag type IDs.
const (
	TagEnd       byte = 0
	TagByte      byte = 1
	TagInt       byte = 3
	TagLong      byte = 4
	TagDouble    byte = 6
	TagByteArray byte = 7
	TagString    byte = 8
	TagList      byte = 9
	TagCompound  byte = 10
)

// Writer streams tags to an io.Writer. The first error, from the destination
// or from an unencodable value, stops all further output and is kept for Err.
type Writer struct {
	dst     io.Writer
	scratch [8]byte
	err     error
}

func NewWriter(dst io.Writer) *Writer {
	return &Writer{dst: dst}
}

// Err reports the first failure, if any.
func (w *Writer) Err() error {
	return w.err
}

func (w *Writer) fail(format string, args ...any) {
	if w.err == nil {
		w.err = fmt.Errorf("nbt: "+format, args...)
	}
}

func (w *Writer) raw(p []byte) {
	if w.err != nil || len(p) == 0 {
		return
	}
	_, w.err = w.dst.Write(p)
}

// fixed writes the low n bytes of v, most significant first.
func (w *Writer) fixed(v uint64, n int) {
	binary.BigEndian.PutUint64(w.scratch[:], v)
	w.raw(w.scratch[8-n:])
}

// text writes a length-prefixed modified-UTF-8 string. Heightmap names are
// plain ASCII, so Go strings are written as-is.
func (w *Writer) text(s string) {
	if len(s) > math.MaxUint16 {
		w.fail("string of %d bytes exceeds %d", len(s), math.MaxUint16)
		return
	}
	w.fixed(uint64(len(s)), 2)
	w.raw([]byte(s))
}

func (w *Writer) count(n int) {
	if n > math.MaxInt32 {
		w.fail("length %d exceeds int32", n)
		return
	}
	w.fixed(uint64(n), 4)
}

func (w *Writer) header(tag byte, name string) {
	w.raw([]byte{tag})
	w.text(name)
}

// BeginCompound opens a compound; the root compound is named "".
func (w *Writer) BeginCompound(name string) {
	w.header(TagCompound, name)
}

// EndCompound closes the innermost open compound.
func (w *Writer) EndCompound() {
	w.raw([]byte{TagEnd})
}

// WriteBool stores v as a byte tag, 1 or 0.
func (w *Writer) WriteBool(name string, v bool) {
	w.header(TagByte, name)
	var b byte
	if v {
		b = 1
	}
	w.raw([]byte{b})
}

func (w *Writer) WriteInt(name string, v int32) {
	w.header(TagInt, name)
	w.fixed(uint64(uint32(v)), 4)
}

func (w *Writer) WriteLong(name string, v int64) {
	w.header(TagLong, name)
	w.fixed(uint64(v), 8)
}

func (w *Writer) WriteDouble(name string, v float64) {
	w.header(TagDouble, name)
	w.fixed(math.Float64bits(v), 8)
}

func (w *Writer) WriteByteArray(name string, v []byte) {
	w.header(TagByteArray, name)
	w.count(len(v))
	w.raw(v)
}

func (w *Writer) WriteString(name, v string) {
	w.header(TagString, name)
	w.text(v)
}

// BeginList writes the header of a list holding n elements of type elem.
// The caller writes the n unnamed payloads that follow.
func (w *Writer) BeginList(name string, elem byte, n int) {
	w.header(TagList, name)
	w.raw([]byte{elem})
	w.count(n)
}

// WriteDoubleList writes v as a list of doubles in a single write.
func (w *Writer) WriteDoubleList(name string, v []float64) {
	w.BeginList(name, TagDouble, len(v))
	payload := make([]byte, 8*len(v))
	for i, f := range v {
		binary.BigEndian.PutUint64(payload[8*i:], math.Float64bits(f))
	}
	w.raw(payload)
}
