package protocol

// CommandRequest asks the agent to run one command.
type CommandRequest struct {
	Command     string
	Args        []string
	WorkingDir  string
	TimeoutSecs uint32
}

func (*CommandRequest) payloadField() uint32 { return FieldCommandRequest }

func (m *CommandRequest) encodeBody(e *Encoder) {
	e.WriteStringField(1, m.Command)
	for _, arg := range m.Args {
		e.WriteStringElement(2, arg)
	}
	e.WriteStringField(3, m.WorkingDir)
	e.WriteVarintField(4, uint64(m.TimeoutSecs))
}

func decodeCommandRequest(d *Decoder) (*CommandRequest, error) {
	m := &CommandRequest{}
	for !d.EOF() {
		field, wt, err := d.ReadTag()
		if err != nil {
			return nil, err
		}
		switch field {
		case 1:
			m.Command, err = d.StringField(wt)
		case 2:
			var arg string
			arg, err = d.StringField(wt)
			if err == nil {
				m.Args = append(m.Args, arg)
			}
		case 3:
			m.WorkingDir, err = d.StringField(wt)
		case 4:
			m.TimeoutSecs, err = d.Uint32Field(wt)
		default:
			err = d.SkipField(wt)
		}
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

// CommandResponse reports the result of a CommandRequest. ExitCode may be
// negative (signal death); it travels as two's-complement uint32.
type CommandResponse struct {
	ExitCode int32
	Stdout   string
	Stderr   string
	TimedOut bool
}

func (*CommandResponse) payloadField() uint32 { return FieldCommandResponse }

func (m *CommandResponse) encodeBody(e *Encoder) {
	e.WriteVarintField(1, uint64(uint32(m.ExitCode)))
	e.WriteStringField(2, m.Stdout)
	e.WriteStringField(3, m.Stderr)
	e.WriteBoolField(4, m.TimedOut)
}

func decodeCommandResponse(d *Decoder) (*CommandResponse, error) {
	m := &CommandResponse{}
	for !d.EOF() {
		field, wt, err := d.ReadTag()
		if err != nil {
			return nil, err
		}
		switch field {
		case 1:
			var v uint32
			v, err = d.Uint32Field(wt)
			m.ExitCode = int32(v)
		case 2:
			m.Stdout, err = d.StringField(wt)
		case 3:
			m.Stderr, err = d.StringField(wt)
		case 4:
			m.TimedOut, err = d.BoolField(wt)
		default:
			err = d.SkipField(wt)
		}
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}
