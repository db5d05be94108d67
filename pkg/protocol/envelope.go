package protocol

import "errors"

// Envelope-level field numbers. This table is part of the wire contract and
// must match the remote agent bit-for-bit; a mismatch is a silent protocol
// break, not a recoverable error.
const (
	fieldID        = 1
	fieldSessionID = 2

	FieldSessionOffer        = 21
	FieldSessionEnd          = 24
	FieldConsentResponse     = 26
	FieldTerminalData        = 30
	FieldTerminalResize      = 31
	FieldInputEvent          = 40
	FieldScreenInfo          = 41
	FieldMonitorSwitch       = 42
	FieldFileTransferRequest = 50
	FieldFileTransferAck     = 51
	FieldFileList            = 53
	FieldFileListRequest     = 54
	FieldChatMessage         = 60
	FieldClipboardData       = 61
	FieldCommandRequest      = 70
	FieldCommandResponse     = 71
	FieldDesktopFrame        = 80
	FieldPing                = 81
	FieldPong                = 82
	FieldQualitySettings     = 83
)

// ErrEnvelopeTooLarge is returned when the input exceeds MaxMessageSize
// before any field is examined.
var ErrEnvelopeTooLarge = errors.New("protocol: envelope exceeds size limit")

// Payload is one typed envelope payload variant (the oneof).
type Payload interface {
	// payloadField returns the envelope-level field number for this variant.
	payloadField() uint32

	// encodeBody writes the variant's fields into e.
	encodeBody(e *Encoder)
}

// Envelope is the top-level wire message: routing metadata plus exactly one
// payload variant. Envelopes are created per send and discarded after
// serialization; nothing here is retained.
type Envelope struct {
	ID        string
	SessionID string
	Payload   Payload
}

// Marshal serializes the envelope to wire bytes.
func (env *Envelope) Marshal() []byte {
	e := NewEncoder()
	e.WriteStringField(fieldID, env.ID)
	e.WriteStringField(fieldSessionID, env.SessionID)
	if env.Payload != nil {
		e.WriteMessageField(env.Payload.payloadField(), env.Payload.encodeBody)
	}
	return e.Bytes()
}

// DecodeEnvelope decodes one envelope from data.
//
// Unknown field numbers are skipped; a known payload field with an
// unexpected wire type is likewise skipped. Any structural error (truncated
// buffer, invalid UTF-8, oversized input) fails the whole decode — the
// caller drops the message and takes no further action.
func DecodeEnvelope(data []byte) (*Envelope, error) {
	if len(data) > MaxMessageSize {
		return nil, ErrEnvelopeTooLarge
	}

	env := &Envelope{}
	d := NewDecoder(data)

	for !d.EOF() {
		field, wt, err := d.ReadTag()
		if err != nil {
			return nil, err
		}

		switch field {
		case fieldID:
			env.ID, err = d.StringField(wt)
		case fieldSessionID:
			env.SessionID, err = d.StringField(wt)
		default:
			if wt == WireBytes && knownPayloadField(field) {
				var sub *Decoder
				sub, err = d.MessageField(wt)
				if err != nil {
					return nil, err
				}
				var p Payload
				p, err = decodePayload(field, sub)
				if p != nil {
					// Last known payload wins, matching proto3
					// oneof semantics.
					env.Payload = p
				}
			} else {
				err = d.SkipField(wt)
			}
		}
		if err != nil {
			return nil, err
		}
	}

	return env, nil
}

// knownPayloadField reports whether field is a payload variant this codec
// understands. Unknown variants are skipped for forward compatibility.
func knownPayloadField(field uint32) bool {
	switch field {
	case FieldSessionOffer, FieldSessionEnd, FieldConsentResponse,
		FieldTerminalData, FieldTerminalResize,
		FieldInputEvent, FieldScreenInfo, FieldMonitorSwitch,
		FieldFileTransferRequest, FieldFileTransferAck,
		FieldFileList, FieldFileListRequest,
		FieldChatMessage, FieldClipboardData,
		FieldCommandRequest, FieldCommandResponse,
		FieldDesktopFrame, FieldPing, FieldPong, FieldQualitySettings:
		return true
	}
	return false
}

// decodePayload dispatches a payload body to its variant decoder.
func decodePayload(field uint32, d *Decoder) (Payload, error) {
	switch field {
	case FieldSessionOffer:
		return decodeSessionOffer(d)
	case FieldSessionEnd:
		return decodeSessionEnd(d)
	case FieldConsentResponse:
		return decodeConsentResponse(d)
	case FieldTerminalData:
		return decodeTerminalData(d)
	case FieldTerminalResize:
		return decodeTerminalResize(d)
	case FieldInputEvent:
		return decodeInputEvent(d)
	case FieldScreenInfo:
		return decodeScreenInfo(d)
	case FieldMonitorSwitch:
		return decodeMonitorSwitch(d)
	case FieldFileTransferRequest:
		return decodeFileTransferRequest(d)
	case FieldFileTransferAck:
		return decodeFileTransferAck(d)
	case FieldFileList:
		return decodeFileList(d)
	case FieldFileListRequest:
		return decodeFileListRequest(d)
	case FieldChatMessage:
		return decodeChatMessage(d)
	case FieldClipboardData:
		return decodeClipboardData(d)
	case FieldCommandRequest:
		return decodeCommandRequest(d)
	case FieldCommandResponse:
		return decodeCommandResponse(d)
	case FieldDesktopFrame:
		return decodeDesktopFrame(d)
	case FieldPing:
		return decodePing(d)
	case FieldPong:
		return decodePong(d)
	case FieldQualitySettings:
		return decodeQualitySettings(d)
	}
	return nil, nil
}
