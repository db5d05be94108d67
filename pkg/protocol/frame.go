package protocol

// FrameCodec identifies how a DesktopFrame's payload is encoded.
type FrameCodec uint32

const (
	CodecJPEG FrameCodec = 0 // complete JPEG image per frame
	CodecH264 FrameCodec = 1 // H.264 Annex-B access unit
)

// String returns the string representation of the codec.
func (c FrameCodec) String() string {
	switch c {
	case CodecJPEG:
		return "JPEG"
	case CodecH264:
		return "H264"
	default:
		return "Unknown"
	}
}

// DesktopFrame is one screen frame from the agent. The Data buffer is owned
// by the decode pipeline for the duration of a single decode call and must
// not be retained across frames.
type DesktopFrame struct {
	Width      uint32
	Height     uint32
	Data       []byte
	Sequence   uint32
	Quality    uint32
	Codec      FrameCodec
	IsKeyframe bool
}

func (*DesktopFrame) payloadField() uint32 { return FieldDesktopFrame }

func (m *DesktopFrame) encodeBody(e *Encoder) {
	e.WriteVarintField(1, uint64(m.Width))
	e.WriteVarintField(2, uint64(m.Height))
	e.WriteBytesField(3, m.Data)
	e.WriteVarintField(4, uint64(m.Sequence))
	e.WriteVarintField(5, uint64(m.Quality))
	e.WriteVarintField(6, uint64(m.Codec))
	e.WriteBoolField(7, m.IsKeyframe)
}

func decodeDesktopFrame(d *Decoder) (*DesktopFrame, error) {
	m := &DesktopFrame{}
	for !d.EOF() {
		field, wt, err := d.ReadTag()
		if err != nil {
			return nil, err
		}
		switch field {
		case 1:
			m.Width, err = d.Uint32Field(wt)
		case 2:
			m.Height, err = d.Uint32Field(wt)
		case 3:
			m.Data, err = d.BytesField(wt)
		case 4:
			m.Sequence, err = d.Uint32Field(wt)
		case 5:
			m.Quality, err = d.Uint32Field(wt)
		case 6:
			var v uint32
			v, err = d.Uint32Field(wt)
			m.Codec = FrameCodec(v)
		case 7:
			m.IsKeyframe, err = d.BoolField(wt)
		default:
			err = d.SkipField(wt)
		}
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}
