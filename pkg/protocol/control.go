package protocol

// Ping carries the sender's wall clock so the peer can echo it back.
// TimestampMs is Unix milliseconds and needs the full 64 bits.
type Ping struct {
	TimestampMs uint64
}

func (*Ping) payloadField() uint32 { return FieldPing }

func (m *Ping) encodeBody(e *Encoder) {
	e.WriteVarintField(1, m.TimestampMs)
}

func decodePing(d *Decoder) (*Ping, error) {
	m := &Ping{}
	for !d.EOF() {
		field, wt, err := d.ReadTag()
		if err != nil {
			return nil, err
		}
		switch field {
		case 1:
			m.TimestampMs, err = d.VarintField(wt)
		default:
			err = d.SkipField(wt)
		}
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Pong echoes a Ping's timestamp; RTT = now - TimestampMs.
type Pong struct {
	TimestampMs uint64
}

func (*Pong) payloadField() uint32 { return FieldPong }

func (m *Pong) encodeBody(e *Encoder) {
	e.WriteVarintField(1, m.TimestampMs)
}

func decodePong(d *Decoder) (*Pong, error) {
	m := &Pong{}
	for !d.EOF() {
		field, wt, err := d.ReadTag()
		if err != nil {
			return nil, err
		}
		switch field {
		case 1:
			m.TimestampMs, err = d.VarintField(wt)
		default:
			err = d.SkipField(wt)
		}
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

// QualitySettings is a quality directive sent to the agent's encoder.
type QualitySettings struct {
	Quality     uint32
	MaxFps      uint32
	BitrateKbps uint32
}

func (*QualitySettings) payloadField() uint32 { return FieldQualitySettings }

func (m *QualitySettings) encodeBody(e *Encoder) {
	e.WriteVarintField(1, uint64(m.Quality))
	e.WriteVarintField(2, uint64(m.MaxFps))
	e.WriteVarintField(3, uint64(m.BitrateKbps))
}

func decodeQualitySettings(d *Decoder) (*QualitySettings, error) {
	m := &QualitySettings{}
	for !d.EOF() {
		field, wt, err := d.ReadTag()
		if err != nil {
			return nil, err
		}
		switch field {
		case 1:
			m.Quality, err = d.Uint32Field(wt)
		case 2:
			m.MaxFps, err = d.Uint32Field(wt)
		case 3:
			m.BitrateKbps, err = d.Uint32Field(wt)
		default:
			err = d.SkipField(wt)
		}
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}
