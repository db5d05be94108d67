package protocol

// ChatMessage is an in-session chat line.
type ChatMessage struct {
	SenderID   string
	SenderName string
	Content    string
}

func (*ChatMessage) payloadField() uint32 { return FieldChatMessage }

func (m *ChatMessage) encodeBody(e *Encoder) {
	e.WriteStringField(1, m.SenderID)
	e.WriteStringField(2, m.SenderName)
	e.WriteStringField(3, m.Content)
}

func decodeChatMessage(d *Decoder) (*ChatMessage, error) {
	m := &ChatMessage{}
	for !d.EOF() {
		field, wt, err := d.ReadTag()
		if err != nil {
			return nil, err
		}
		switch field {
		case 1:
			m.SenderID, err = d.StringField(wt)
		case 2:
			m.SenderName, err = d.StringField(wt)
		case 3:
			m.Content, err = d.StringField(wt)
		default:
			err = d.SkipField(wt)
		}
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ClipboardData syncs clipboard text between viewer and agent.
type ClipboardData struct {
	Text string
}

func (*ClipboardData) payloadField() uint32 { return FieldClipboardData }

func (m *ClipboardData) encodeBody(e *Encoder) {
	e.WriteStringField(1, m.Text)
}

func decodeClipboardData(d *Decoder) (*ClipboardData, error) {
	m := &ClipboardData{}
	for !d.EOF() {
		field, wt, err := d.ReadTag()
		if err != nil {
			return nil, err
		}
		switch field {
		case 1:
			m.Text, err = d.StringField(wt)
		default:
			err = d.SkipField(wt)
		}
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}
