package protocol

// SessionOffer carries an SDP offer used when a peer-to-peer transport is
// being negotiated for the session.
type SessionOffer struct {
	SDP         string
	SessionType string
}

func (*SessionOffer) payloadField() uint32 { return FieldSessionOffer }

func (m *SessionOffer) encodeBody(e *Encoder) {
	e.WriteStringField(1, m.SDP)
	e.WriteStringField(2, m.SessionType)
}

func decodeSessionOffer(d *Decoder) (*SessionOffer, error) {
	m := &SessionOffer{}
	for !d.EOF() {
		field, wt, err := d.ReadTag()
		if err != nil {
			return nil, err
		}
		switch field {
		case 1:
			m.SDP, err = d.StringField(wt)
		case 2:
			m.SessionType, err = d.StringField(wt)
		default:
			err = d.SkipField(wt)
		}
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

// SessionEnd terminates the session. Sent by the client on intentional
// disconnect and by the server when the session is torn down.
type SessionEnd struct {
	Reason string
}

func (*SessionEnd) payloadField() uint32 { return FieldSessionEnd }

func (m *SessionEnd) encodeBody(e *Encoder) {
	e.WriteStringField(1, m.Reason)
}

func decodeSessionEnd(d *Decoder) (*SessionEnd, error) {
	m := &SessionEnd{}
	for !d.EOF() {
		field, wt, err := d.ReadTag()
		if err != nil {
			return nil, err
		}
		switch field {
		case 1:
			m.Reason, err = d.StringField(wt)
		default:
			err = d.SkipField(wt)
		}
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ConsentResponse reports whether the remote user granted the session.
type ConsentResponse struct {
	Granted bool
	Reason  string
}

func (*ConsentResponse) payloadField() uint32 { return FieldConsentResponse }

func (m *ConsentResponse) encodeBody(e *Encoder) {
	e.WriteBoolField(1, m.Granted)
	e.WriteStringField(2, m.Reason)
}

func decodeConsentResponse(d *Decoder) (*ConsentResponse, error) {
	m := &ConsentResponse{}
	for !d.EOF() {
		field, wt, err := d.ReadTag()
		if err != nil {
			return nil, err
		}
		switch field {
		case 1:
			m.Granted, err = d.BoolField(wt)
		case 2:
			m.Reason, err = d.StringField(wt)
		default:
			err = d.SkipField(wt)
		}
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}
