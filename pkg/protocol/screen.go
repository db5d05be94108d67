package protocol

// MonitorInfo describes one attached display on the agent side.
// X and Y are desktop-space offsets and may be negative for monitors left
// of or above the primary; they travel as two's-complement uint32.
type MonitorInfo struct {
	Index       uint32
	Name        string
	Width       uint32
	Height      uint32
	Primary     bool
	X           int32
	Y           int32
	ScaleFactor float64
}

func (m *MonitorInfo) encodeBody(e *Encoder) {
	e.WriteVarintField(1, uint64(m.Index))
	e.WriteStringField(2, m.Name)
	e.WriteVarintField(3, uint64(m.Width))
	e.WriteVarintField(4, uint64(m.Height))
	e.WriteBoolField(5, m.Primary)
	e.WriteVarintField(6, uint64(uint32(m.X)))
	e.WriteVarintField(7, uint64(uint32(m.Y)))
	e.WriteDoubleField(8, m.ScaleFactor)
}

func decodeMonitorInfo(d *Decoder) (MonitorInfo, error) {
	var m MonitorInfo
	for !d.EOF() {
		field, wt, err := d.ReadTag()
		if err != nil {
			return m, err
		}
		switch field {
		case 1:
			m.Index, err = d.Uint32Field(wt)
		case 2:
			m.Name, err = d.StringField(wt)
		case 3:
			m.Width, err = d.Uint32Field(wt)
		case 4:
			m.Height, err = d.Uint32Field(wt)
		case 5:
			m.Primary, err = d.BoolField(wt)
		case 6:
			var v uint32
			v, err = d.Uint32Field(wt)
			m.X = int32(v)
		case 7:
			var v uint32
			v, err = d.Uint32Field(wt)
			m.Y = int32(v)
		case 8:
			m.ScaleFactor, err = d.DoubleField(wt)
		default:
			err = d.SkipField(wt)
		}
		if err != nil {
			return m, err
		}
	}
	return m, nil
}

// ScreenInfo reports the agent's monitor topology and which monitor is
// currently being streamed.
type ScreenInfo struct {
	Monitors      []MonitorInfo
	ActiveMonitor uint32
}

func (*ScreenInfo) payloadField() uint32 { return FieldScreenInfo }

func (m *ScreenInfo) encodeBody(e *Encoder) {
	for i := range m.Monitors {
		mon := &m.Monitors[i]
		e.WriteMessageField(1, mon.encodeBody)
	}
	e.WriteVarintField(2, uint64(m.ActiveMonitor))
}

func decodeScreenInfo(d *Decoder) (*ScreenInfo, error) {
	m := &ScreenInfo{}
	for !d.EOF() {
		field, wt, err := d.ReadTag()
		if err != nil {
			return nil, err
		}
		switch field {
		case 1:
			var sub *Decoder
			sub, err = d.MessageField(wt)
			if err != nil {
				return nil, err
			}
			var mon MonitorInfo
			mon, err = decodeMonitorInfo(sub)
			if err != nil {
				return nil, err
			}
			m.Monitors = append(m.Monitors, mon)
		case 2:
			m.ActiveMonitor, err = d.Uint32Field(wt)
		default:
			err = d.SkipField(wt)
		}
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

// MonitorSwitch asks the agent to stream a different monitor.
type MonitorSwitch struct {
	MonitorIndex uint32
}

func (*MonitorSwitch) payloadField() uint32 { return FieldMonitorSwitch }

func (m *MonitorSwitch) encodeBody(e *Encoder) {
	e.WriteVarintField(1, uint64(m.MonitorIndex))
}

func decodeMonitorSwitch(d *Decoder) (*MonitorSwitch, error) {
	m := &MonitorSwitch{}
	for !d.EOF() {
		field, wt, err := d.ReadTag()
		if err != nil {
			return nil, err
		}
		switch field {
		case 1:
			m.MonitorIndex, err = d.Uint32Field(wt)
		default:
			err = d.SkipField(wt)
		}
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}
