package protocol

import "math"

// WireType is the low three bits of a field tag.
type WireType uint32

const (
	WireVarint  WireType = 0 // unsigned varint
	WireFixed64 WireType = 1 // 8 bytes, little-endian
	WireBytes   WireType = 2 // length-delimited
	WireFixed32 WireType = 5 // 4 bytes, little-endian
)

// String returns the string representation of the wire type.
func (wt WireType) String() string {
	switch wt {
	case WireVarint:
		return "Varint"
	case WireFixed64:
		return "Fixed64"
	case WireBytes:
		return "Bytes"
	case WireFixed32:
		return "Fixed32"
	default:
		return "Unknown"
	}
}

// Encoder is a binary encoder that appends protobuf-framed fields to an
// internal buffer. Zero-valued scalars are omitted, matching proto3.
type Encoder struct {
	buf []byte
}

// NewEncoder creates a new encoder with a default initial capacity.
func NewEncoder() *Encoder {
	return &Encoder{
		buf: make([]byte, 0, 256),
	}
}

// NewEncoderWithCap creates a new encoder with the specified initial capacity.
func NewEncoderWithCap(cap int) *Encoder {
	return &Encoder{
		buf: make([]byte, 0, cap),
	}
}

// Reset resets the encoder to empty state, reusing the underlying buffer.
func (e *Encoder) Reset() {
	e.buf = e.buf[:0]
}

// Bytes returns the encoded bytes. The returned slice is valid until
// the next call to Reset or any Write method.
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// Len returns the number of bytes currently encoded.
func (e *Encoder) Len() int {
	return len(e.buf)
}

// WriteUvarint appends a bare unsigned varint (no tag).
func (e *Encoder) WriteUvarint(v uint64) {
	for v >= 0x80 {
		e.buf = append(e.buf, byte(v)|0x80)
		v >>= 7
	}
	e.buf = append(e.buf, byte(v))
}

// WriteTag appends a field tag.
func (e *Encoder) WriteTag(field uint32, wt WireType) {
	e.WriteUvarint(uint64(field)<<3 | uint64(wt))
}

// WriteVarintField appends a tagged varint field. Omitted when v == 0.
func (e *Encoder) WriteVarintField(field uint32, v uint64) {
	if v == 0 {
		return
	}
	e.WriteTag(field, WireVarint)
	e.WriteUvarint(v)
}

// WriteBoolField appends a tagged bool field. Omitted when false.
func (e *Encoder) WriteBoolField(field uint32, v bool) {
	if !v {
		return
	}
	e.WriteTag(field, WireVarint)
	e.buf = append(e.buf, 0x01)
}

// WriteStringField appends a tagged, length-prefixed UTF-8 string field.
// Omitted when empty.
func (e *Encoder) WriteStringField(field uint32, s string) {
	if s == "" {
		return
	}
	e.WriteTag(field, WireBytes)
	e.WriteUvarint(uint64(len(s)))
	e.buf = append(e.buf, s...)
}

// WriteBytesField appends a tagged, length-prefixed bytes field.
// Omitted when empty.
func (e *Encoder) WriteBytesField(field uint32, b []byte) {
	if len(b) == 0 {
		return
	}
	e.WriteTag(field, WireBytes)
	e.WriteUvarint(uint64(len(b)))
	e.buf = append(e.buf, b...)
}

// WriteDoubleField appends a tagged IEEE 754 double field, little-endian.
// Omitted when zero.
func (e *Encoder) WriteDoubleField(field uint32, v float64) {
	if v == 0 {
		return
	}
	e.WriteTag(field, WireFixed64)
	bits := math.Float64bits(v)
	e.buf = append(e.buf,
		byte(bits), byte(bits>>8), byte(bits>>16), byte(bits>>24),
		byte(bits>>32), byte(bits>>40), byte(bits>>48), byte(bits>>56))
}

// WriteStringElement appends one occurrence of a repeated string field.
// Unlike WriteStringField, empty strings are still written: omitting an
// element would silently drop it from the sequence.
func (e *Encoder) WriteStringElement(field uint32, s string) {
	e.WriteTag(field, WireBytes)
	e.WriteUvarint(uint64(len(s)))
	e.buf = append(e.buf, s...)
}

// WriteMessageField appends a tagged, length-prefixed sub-message whose body
// is produced by fn. Always emitted, even when the body is empty: message
// presence is meaningful for oneof payloads.
func (e *Encoder) WriteMessageField(field uint32, fn func(*Encoder)) {
	sub := NewEncoder()
	fn(sub)
	e.WriteTag(field, WireBytes)
	e.WriteUvarint(uint64(sub.Len()))
	e.buf = append(e.buf, sub.buf...)
}
