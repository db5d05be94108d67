// Package protocol implements the binary wire protocol spoken between the
// console client and the remote agent.
//
// Every WebSocket binary frame carries exactly one serialized Envelope. The
// encoding is protobuf wire compatible but hand-written: no reflection, no
// generated code, direct byte manipulation.
//
// # Wire Format
//
// A field is framed by a tag varint:
//
//	tag = (fieldNumber << 3) | wireType
//
// Supported wire types:
//
//   - 0 (varint): unsigned base-128 integers, little-endian group order
//   - 1 (fixed64): IEEE 754 doubles, little-endian
//   - 2 (length-delimited): strings, bytes, sub-messages, repeated messages
//   - 5 (fixed32): reserved, skipped on decode
//
// Scalars at their zero value (0, false, "") are omitted on encode, per
// proto3 convention; decoders treat an absent field as its zero value.
// Integers are unsigned throughout — the protocol has no zig-zag encoding,
// and the few conceptually signed values (monitor offsets, exit codes) are
// carried as two's-complement uint32.
//
// # Envelope
//
// The Envelope wraps routing metadata and exactly one payload variant:
//
//	1  id         string  opaque correlation ID
//	2  sessionId  string  server-side session route
//	21..83        payload (oneof, see field constants)
//
// The field-number table is part of the wire contract and must match the
// remote agent exactly. Decoding is single-pass and tolerant: unknown field
// numbers are skipped by wire-type-appropriate advance, and malformed input
// (truncated buffer, invalid UTF-8) fails the whole decode — callers drop
// the message and take no further action.
//
// # Usage
//
//	env := protocol.NewMouseMove(sessionID, 0.5, 0.25)
//	data := env.Marshal()
//
//	decoded, err := protocol.DecodeEnvelope(data)
//	if err != nil {
//	    // drop the message; the connection stays up
//	}
//	switch p := decoded.Payload.(type) {
//	case *protocol.DesktopFrame:
//	    // hand to the video pipeline
//	}
package protocol

// Version is bumped on breaking wire changes.
const Version = 1
