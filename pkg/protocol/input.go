package protocol

// InputEvent wraps exactly one input member (its own oneof). Pointer
// coordinates are normalized [0,1] fractions of the currently displayed
// frame surface, so the agent can map them to whatever resolution it is
// streaming at.
type InputEvent struct {
	Event InputMember
}

// InputMember is one concrete input variant inside an InputEvent.
type InputMember interface {
	inputField() uint32
	encodeBody(e *Encoder)
}

func (*InputEvent) payloadField() uint32 { return FieldInputEvent }

func (m *InputEvent) encodeBody(e *Encoder) {
	if m.Event != nil {
		e.WriteMessageField(m.Event.inputField(), m.Event.encodeBody)
	}
}

func decodeInputEvent(d *Decoder) (*InputEvent, error) {
	m := &InputEvent{}
	for !d.EOF() {
		field, wt, err := d.ReadTag()
		if err != nil {
			return nil, err
		}
		if wt != WireBytes || field < 1 || field > 4 {
			if err := d.SkipField(wt); err != nil {
				return nil, err
			}
			continue
		}
		sub, err := d.MessageField(wt)
		if err != nil {
			return nil, err
		}
		var member InputMember
		switch field {
		case 1:
			member, err = decodeMouseMove(sub)
		case 2:
			member, err = decodeMouseButton(sub)
		case 3:
			member, err = decodeMouseScroll(sub)
		case 4:
			member, err = decodeKeyEvent(sub)
		}
		if err != nil {
			return nil, err
		}
		m.Event = member
	}
	return m, nil
}

// MouseMove is a pointer position update.
type MouseMove struct {
	X float64
	Y float64
}

func (*MouseMove) inputField() uint32 { return 1 }

func (m *MouseMove) encodeBody(e *Encoder) {
	e.WriteDoubleField(1, m.X)
	e.WriteDoubleField(2, m.Y)
}

func decodeMouseMove(d *Decoder) (*MouseMove, error) {
	m := &MouseMove{}
	for !d.EOF() {
		field, wt, err := d.ReadTag()
		if err != nil {
			return nil, err
		}
		switch field {
		case 1:
			m.X, err = d.DoubleField(wt)
		case 2:
			m.Y, err = d.DoubleField(wt)
		default:
			err = d.SkipField(wt)
		}
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

// MouseButton is one physical button transition (press or release).
type MouseButton struct {
	Button  uint32
	Pressed bool
	X       float64
	Y       float64
}

func (*MouseButton) inputField() uint32 { return 2 }

func (m *MouseButton) encodeBody(e *Encoder) {
	e.WriteVarintField(1, uint64(m.Button))
	e.WriteBoolField(2, m.Pressed)
	e.WriteDoubleField(3, m.X)
	e.WriteDoubleField(4, m.Y)
}

func decodeMouseButton(d *Decoder) (*MouseButton, error) {
	m := &MouseButton{}
	for !d.EOF() {
		field, wt, err := d.ReadTag()
		if err != nil {
			return nil, err
		}
		switch field {
		case 1:
			m.Button, err = d.Uint32Field(wt)
		case 2:
			m.Pressed, err = d.BoolField(wt)
		case 3:
			m.X, err = d.DoubleField(wt)
		case 4:
			m.Y, err = d.DoubleField(wt)
		default:
			err = d.SkipField(wt)
		}
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

// MouseScroll is a wheel delta at a pointer position.
type MouseScroll struct {
	DX float64
	DY float64
	X  float64
	Y  float64
}

func (*MouseScroll) inputField() uint32 { return 3 }

func (m *MouseScroll) encodeBody(e *Encoder) {
	e.WriteDoubleField(1, m.DX)
	e.WriteDoubleField(2, m.DY)
	e.WriteDoubleField(3, m.X)
	e.WriteDoubleField(4, m.Y)
}

func decodeMouseScroll(d *Decoder) (*MouseScroll, error) {
	m := &MouseScroll{}
	for !d.EOF() {
		field, wt, err := d.ReadTag()
		if err != nil {
			return nil, err
		}
		switch field {
		case 1:
			m.DX, err = d.DoubleField(wt)
		case 2:
			m.DY, err = d.DoubleField(wt)
		case 3:
			m.X, err = d.DoubleField(wt)
		case 4:
			m.Y, err = d.DoubleField(wt)
		default:
			err = d.SkipField(wt)
		}
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

// KeyEvent is one key transition; key-down and key-up are distinct events.
type KeyEvent struct {
	KeyCode uint32
	Pressed bool
	Ctrl    bool
	Alt     bool
	Shift   bool
	Meta    bool
}

func (*KeyEvent) inputField() uint32 { return 4 }

func (m *KeyEvent) encodeBody(e *Encoder) {
	e.WriteVarintField(1, uint64(m.KeyCode))
	e.WriteBoolField(2, m.Pressed)
	e.WriteBoolField(3, m.Ctrl)
	e.WriteBoolField(4, m.Alt)
	e.WriteBoolField(5, m.Shift)
	e.WriteBoolField(6, m.Meta)
}

func decodeKeyEvent(d *Decoder) (*KeyEvent, error) {
	m := &KeyEvent{}
	for !d.EOF() {
		field, wt, err := d.ReadTag()
		if err != nil {
			return nil, err
		}
		switch field {
		case 1:
			m.KeyCode, err = d.Uint32Field(wt)
		case 2:
			m.Pressed, err = d.BoolField(wt)
		case 3:
			m.Ctrl, err = d.BoolField(wt)
		case 4:
			m.Alt, err = d.BoolField(wt)
		case 5:
			m.Shift, err = d.BoolField(wt)
		case 6:
			m.Meta, err = d.BoolField(wt)
		default:
			err = d.SkipField(wt)
		}
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}
