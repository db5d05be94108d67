package protocol

import (
	"errors"
	"io"
	"math"
	"unicode/utf8"
)

// MaxMessageSize is the largest envelope the codec will decode (10 MB).
// Matches the limit enforced by the server side of the protocol.
const MaxMessageSize = 10 * 1024 * 1024

// Common decoding errors.
var (
	ErrVarintOverflow  = errors.New("protocol: varint overflow")
	ErrInvalidUTF8     = errors.New("protocol: string field is not valid UTF-8")
	ErrMessageTooLarge = errors.New("protocol: message exceeds size limit")
	ErrInvalidWireType = errors.New("protocol: invalid wire type")
)

// Decoder is a single-pass binary decoder over a byte buffer.
// Truncated input surfaces as io.ErrUnexpectedEOF; callers treat any decode
// error as "drop this message".
type Decoder struct {
	buf []byte
	pos int
}

// NewDecoder creates a new decoder from the given byte slice.
func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf}
}

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int {
	return len(d.buf) - d.pos
}

// EOF returns true if all bytes have been read.
func (d *Decoder) EOF() bool {
	return d.pos >= len(d.buf)
}

// ReadUvarint reads a bare unsigned varint.
func (d *Decoder) ReadUvarint() (uint64, error) {
	var v uint64
	var shift uint

	for {
		if d.pos >= len(d.buf) {
			return 0, io.ErrUnexpectedEOF
		}
		b := d.buf[d.pos]
		d.pos++
		v |= uint64(b&0x7F) << shift
		if b < 0x80 {
			return v, nil
		}
		shift += 7
		if shift >= 64 {
			return 0, ErrVarintOverflow
		}
	}
}

// ReadTag reads a field tag, returning the field number and wire type.
func (d *Decoder) ReadTag() (uint32, WireType, error) {
	tag, err := d.ReadUvarint()
	if err != nil {
		return 0, 0, err
	}
	return uint32(tag >> 3), WireType(tag & 0x7), nil
}

// SkipField advances past one field value of the given wire type.
// Used for forward compatibility: unknown field numbers are skipped,
// not rejected.
func (d *Decoder) SkipField(wt WireType) error {
	switch wt {
	case WireVarint:
		_, err := d.ReadUvarint()
		return err
	case WireFixed64:
		return d.skip(8)
	case WireBytes:
		length, err := d.ReadUvarint()
		if err != nil {
			return err
		}
		if length > uint64(d.Remaining()) {
			return io.ErrUnexpectedEOF
		}
		return d.skip(int(length))
	case WireFixed32:
		return d.skip(4)
	default:
		return ErrInvalidWireType
	}
}

func (d *Decoder) skip(n int) error {
	if d.pos+n > len(d.buf) {
		return io.ErrUnexpectedEOF
	}
	d.pos += n
	return nil
}

// VarintField reads a varint field value. A mismatched wire type is
// skipped and yields the zero value.
func (d *Decoder) VarintField(wt WireType) (uint64, error) {
	if wt != WireVarint {
		return 0, d.SkipField(wt)
	}
	return d.ReadUvarint()
}

// BoolField reads a bool field value (any non-zero varint is true).
func (d *Decoder) BoolField(wt WireType) (bool, error) {
	v, err := d.VarintField(wt)
	return v != 0, err
}

// Uint32Field reads a varint field truncated to 32 bits.
func (d *Decoder) Uint32Field(wt WireType) (uint32, error) {
	v, err := d.VarintField(wt)
	return uint32(v), err
}

// DoubleField reads an IEEE 754 double field, little-endian.
func (d *Decoder) DoubleField(wt WireType) (float64, error) {
	if wt != WireFixed64 {
		return 0, d.SkipField(wt)
	}
	if d.pos+8 > len(d.buf) {
		return 0, io.ErrUnexpectedEOF
	}
	b := d.buf[d.pos:]
	bits := uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
	d.pos += 8
	return math.Float64frombits(bits), nil
}

// StringField reads a length-prefixed UTF-8 string field.
// Invalid UTF-8 fails the decode.
func (d *Decoder) StringField(wt WireType) (string, error) {
	if wt != WireBytes {
		return "", d.SkipField(wt)
	}
	b, err := d.readLen()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", ErrInvalidUTF8
	}
	return string(b), nil
}

// BytesField reads a length-prefixed bytes field.
// Returns a copy of the bytes (safe to retain).
func (d *Decoder) BytesField(wt WireType) ([]byte, error) {
	if wt != WireBytes {
		return nil, d.SkipField(wt)
	}
	b, err := d.readLen()
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

// MessageField reads a length-prefixed sub-message and returns a decoder
// positioned over its body. The sub-decoder shares the parent's buffer.
func (d *Decoder) MessageField(wt WireType) (*Decoder, error) {
	if wt != WireBytes {
		if err := d.SkipField(wt); err != nil {
			return nil, err
		}
		return NewDecoder(nil), nil
	}
	b, err := d.readLen()
	if err != nil {
		return nil, err
	}
	return NewDecoder(b), nil
}

// readLen reads a varint length prefix and returns that many bytes as a
// view into the decoder's buffer.
func (d *Decoder) readLen() ([]byte, error) {
	length, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	if length > uint64(d.Remaining()) {
		return nil, io.ErrUnexpectedEOF
	}
	if length > MaxMessageSize {
		return nil, ErrMessageTooLarge
	}
	n := int(length)
	b := d.buf[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}
