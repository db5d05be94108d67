package protocol

// TerminalData carries raw terminal bytes in either direction.
type TerminalData struct {
	Data []byte
}

func (*TerminalData) payloadField() uint32 { return FieldTerminalData }

func (m *TerminalData) encodeBody(e *Encoder) {
	e.WriteBytesField(1, m.Data)
}

func decodeTerminalData(d *Decoder) (*TerminalData, error) {
	m := &TerminalData{}
	for !d.EOF() {
		field, wt, err := d.ReadTag()
		if err != nil {
			return nil, err
		}
		switch field {
		case 1:
			m.Data, err = d.BytesField(wt)
		default:
			err = d.SkipField(wt)
		}
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

// TerminalResize tells the agent the viewer's terminal geometry changed.
type TerminalResize struct {
	Cols uint32
	Rows uint32
}

func (*TerminalResize) payloadField() uint32 { return FieldTerminalResize }

func (m *TerminalResize) encodeBody(e *Encoder) {
	e.WriteVarintField(1, uint64(m.Cols))
	e.WriteVarintField(2, uint64(m.Rows))
}

func decodeTerminalResize(d *Decoder) (*TerminalResize, error) {
	m := &TerminalResize{}
	for !d.EOF() {
		field, wt, err := d.ReadTag()
		if err != nil {
			return nil, err
		}
		switch field {
		case 1:
			m.Cols, err = d.Uint32Field(wt)
		case 2:
			m.Rows, err = d.Uint32Field(wt)
		default:
			err = d.SkipField(wt)
		}
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}
