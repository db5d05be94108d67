package protocol

import (
	"errors"
	"io"
	"testing"
)

func TestFieldRoundTrip(t *testing.T) {
	e := NewEncoder()
	e.WriteVarintField(1, 12345)
	e.WriteBoolField(2, true)
	e.WriteStringField(3, "hello world")
	e.WriteBytesField(4, []byte{0xDE, 0xAD, 0xBE, 0xEF})
	e.WriteDoubleField(5, 0.25)

	d := NewDecoder(e.Bytes())

	field, wt, err := d.ReadTag()
	if err != nil || field != 1 || wt != WireVarint {
		t.Fatalf("tag 1 = (%d, %v, %v), want (1, Varint, nil)", field, wt, err)
	}
	if v, err := d.VarintField(wt); err != nil || v != 12345 {
		t.Errorf("VarintField = %d, %v; want 12345, nil", v, err)
	}

	field, wt, _ = d.ReadTag()
	if field != 2 {
		t.Fatalf("tag = %d, want 2", field)
	}
	if v, err := d.BoolField(wt); err != nil || !v {
		t.Errorf("BoolField = %v, %v; want true, nil", v, err)
	}

	field, wt, _ = d.ReadTag()
	if field != 3 || wt != WireBytes {
		t.Fatalf("tag 3 = (%d, %v), want (3, Bytes)", field, wt)
	}
	if s, err := d.StringField(wt); err != nil || s != "hello world" {
		t.Errorf("StringField = %q, %v; want \"hello world\", nil", s, err)
	}

	field, wt, _ = d.ReadTag()
	if field != 4 {
		t.Fatalf("tag = %d, want 4", field)
	}
	if b, err := d.BytesField(wt); err != nil || len(b) != 4 || b[0] != 0xDE {
		t.Errorf("BytesField = %x, %v; want deadbeef, nil", b, err)
	}

	field, wt, _ = d.ReadTag()
	if field != 5 || wt != WireFixed64 {
		t.Fatalf("tag 5 = (%d, %v), want (5, Fixed64)", field, wt)
	}
	if v, err := d.DoubleField(wt); err != nil || v != 0.25 {
		t.Errorf("DoubleField = %v, %v; want 0.25, nil", v, err)
	}

	if !d.EOF() {
		t.Errorf("decoder has %d bytes left, want 0", d.Remaining())
	}
}

func TestZeroValuesOmitted(t *testing.T) {
	e := NewEncoder()
	e.WriteVarintField(1, 0)
	e.WriteBoolField(2, false)
	e.WriteStringField(3, "")
	e.WriteBytesField(4, nil)
	e.WriteDoubleField(5, 0)

	if e.Len() != 0 {
		t.Errorf("zero-valued scalars encoded %d bytes, want 0", e.Len())
	}
}

func TestSkipField(t *testing.T) {
	e := NewEncoder()
	e.WriteVarintField(1, 300)
	e.WriteStringField(2, "skipped")
	e.WriteDoubleField(3, 1.5)
	e.WriteVarintField(4, 7)

	d := NewDecoder(e.Bytes())
	for i := 0; i < 3; i++ {
		_, wt, err := d.ReadTag()
		if err != nil {
			t.Fatalf("ReadTag() error: %v", err)
		}
		if err := d.SkipField(wt); err != nil {
			t.Fatalf("SkipField() error: %v", err)
		}
	}

	field, wt, err := d.ReadTag()
	if err != nil || field != 4 {
		t.Fatalf("tag after skips = (%d, %v), want field 4", field, err)
	}
	if v, err := d.VarintField(wt); err != nil || v != 7 {
		t.Errorf("VarintField = %d, %v; want 7, nil", v, err)
	}
}

func TestWireTypeMismatchSkips(t *testing.T) {
	// Field 1 encoded as a string, read as a varint: the value is skipped
	// and the zero value returned, without corrupting the stream.
	e := NewEncoder()
	e.WriteStringField(1, "not a number")
	e.WriteVarintField(2, 42)

	d := NewDecoder(e.Bytes())
	_, wt, _ := d.ReadTag()
	v, err := d.VarintField(wt)
	if err != nil || v != 0 {
		t.Fatalf("mismatched VarintField = %d, %v; want 0, nil", v, err)
	}

	field, wt, _ := d.ReadTag()
	if field != 2 {
		t.Fatalf("stream desynced: tag = %d, want 2", field)
	}
	if v, err := d.VarintField(wt); err != nil || v != 42 {
		t.Errorf("VarintField = %d, %v; want 42, nil", v, err)
	}
}

func TestTruncatedInput(t *testing.T) {
	e := NewEncoder()
	e.WriteStringField(1, "some payload data")
	full := e.Bytes()

	for _, cut := range []int{1, 3, len(full) - 1} {
		d := NewDecoder(full[:cut])
		_, wt, err := d.ReadTag()
		if err == nil {
			_, err = d.StringField(wt)
		}
		if !errors.Is(err, io.ErrUnexpectedEOF) {
			t.Errorf("cut at %d: err = %v, want io.ErrUnexpectedEOF", cut, err)
		}
	}
}

func TestInvalidUTF8(t *testing.T) {
	e := NewEncoder()
	e.WriteTag(1, WireBytes)
	e.WriteUvarint(2)
	e.buf = append(e.buf, 0xFF, 0xFE)

	d := NewDecoder(e.Bytes())
	_, wt, _ := d.ReadTag()
	if _, err := d.StringField(wt); !errors.Is(err, ErrInvalidUTF8) {
		t.Errorf("err = %v, want ErrInvalidUTF8", err)
	}
}

func TestMessageField(t *testing.T) {
	e := NewEncoder()
	e.WriteMessageField(1, func(sub *Encoder) {
		sub.WriteVarintField(1, 9)
		sub.WriteStringField(2, "nested")
	})
	e.WriteVarintField(2, 11)

	d := NewDecoder(e.Bytes())
	_, wt, _ := d.ReadTag()
	sub, err := d.MessageField(wt)
	if err != nil {
		t.Fatalf("MessageField() error: %v", err)
	}

	_, swt, _ := sub.ReadTag()
	if v, err := sub.VarintField(swt); err != nil || v != 9 {
		t.Errorf("nested varint = %d, %v; want 9, nil", v, err)
	}
	_, swt, _ = sub.ReadTag()
	if s, err := sub.StringField(swt); err != nil || s != "nested" {
		t.Errorf("nested string = %q, %v; want \"nested\", nil", s, err)
	}

	// Parent stream continues after the sub-message
	field, wt, _ := d.ReadTag()
	if field != 2 {
		t.Fatalf("parent tag = %d, want 2", field)
	}
	if v, err := d.VarintField(wt); err != nil || v != 11 {
		t.Errorf("parent varint = %d, %v; want 11, nil", v, err)
	}
}
