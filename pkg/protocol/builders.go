package protocol

import "github.com/google/uuid"

// Outbound envelope constructors. These are pure: given a session ID and
// typed parameters they produce one ready-to-marshal Envelope with a fresh
// correlation ID. Rate limiting (the 8 ms mouse-move gate) is the caller's
// responsibility.

func newEnvelope(sessionID string, p Payload) *Envelope {
	return &Envelope{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Payload:   p,
	}
}

// NewMouseMove builds a pointer-position input envelope. x and y are
// normalized [0,1] fractions of the displayed frame surface.
func NewMouseMove(sessionID string, x, y float64) *Envelope {
	return newEnvelope(sessionID, &InputEvent{Event: &MouseMove{X: x, Y: y}})
}

// NewMouseButton builds a button press/release input envelope.
func NewMouseButton(sessionID string, button uint32, pressed bool, x, y float64) *Envelope {
	return newEnvelope(sessionID, &InputEvent{Event: &MouseButton{
		Button:  button,
		Pressed: pressed,
		X:       x,
		Y:       y,
	}})
}

// NewMouseScroll builds a scroll-wheel input envelope.
func NewMouseScroll(sessionID string, dx, dy, x, y float64) *Envelope {
	return newEnvelope(sessionID, &InputEvent{Event: &MouseScroll{
		DX: dx,
		DY: dy,
		X:  x,
		Y:  y,
	}})
}

// NewKeyEvent builds a key press/release input envelope. Key-down and
// key-up are distinct envelopes.
func NewKeyEvent(sessionID string, keyCode uint32, pressed, ctrl, alt, shift, meta bool) *Envelope {
	return newEnvelope(sessionID, &InputEvent{Event: &KeyEvent{
		KeyCode: keyCode,
		Pressed: pressed,
		Ctrl:    ctrl,
		Alt:     alt,
		Shift:   shift,
		Meta:    meta,
	}})
}

// NewTerminalData builds a raw terminal bytes envelope.
func NewTerminalData(sessionID string, data []byte) *Envelope {
	return newEnvelope(sessionID, &TerminalData{Data: data})
}

// NewTerminalResize builds a terminal geometry envelope.
func NewTerminalResize(sessionID string, cols, rows uint32) *Envelope {
	return newEnvelope(sessionID, &TerminalResize{Cols: cols, Rows: rows})
}

// NewChatMessage builds a chat envelope.
func NewChatMessage(sessionID, senderID, senderName, content string) *Envelope {
	return newEnvelope(sessionID, &ChatMessage{
		SenderID:   senderID,
		SenderName: senderName,
		Content:    content,
	})
}

// NewClipboardData builds a clipboard sync envelope.
func NewClipboardData(sessionID, text string) *Envelope {
	return newEnvelope(sessionID, &ClipboardData{Text: text})
}

// NewCommandRequest builds a remote command envelope.
func NewCommandRequest(sessionID, command string, args []string, workingDir string, timeoutSecs uint32) *Envelope {
	return newEnvelope(sessionID, &CommandRequest{
		Command:     command,
		Args:        args,
		WorkingDir:  workingDir,
		TimeoutSecs: timeoutSecs,
	})
}

// NewFileListRequest builds a directory listing request envelope.
func NewFileListRequest(sessionID, path string) *Envelope {
	return newEnvelope(sessionID, &FileListRequest{Path: path})
}

// NewFileTransferRequest builds a transfer negotiation envelope.
func NewFileTransferRequest(sessionID, fileName, filePath string, fileSize uint64, upload bool, transferID string) *Envelope {
	return newEnvelope(sessionID, &FileTransferRequest{
		FileName:   fileName,
		FilePath:   filePath,
		FileSize:   fileSize,
		Upload:     upload,
		TransferID: transferID,
	})
}

// NewMonitorSwitch builds a monitor selection envelope.
func NewMonitorSwitch(sessionID string, monitorIndex uint32) *Envelope {
	return newEnvelope(sessionID, &MonitorSwitch{MonitorIndex: monitorIndex})
}

// NewPing builds a latency probe envelope.
func NewPing(sessionID string, timestampMs uint64) *Envelope {
	return newEnvelope(sessionID, &Ping{TimestampMs: timestampMs})
}

// NewPong builds a latency probe reply, echoing the probe's timestamp.
func NewPong(sessionID string, timestampMs uint64) *Envelope {
	return newEnvelope(sessionID, &Pong{TimestampMs: timestampMs})
}

// NewQualitySettings builds a quality directive envelope.
func NewQualitySettings(sessionID string, quality, maxFps, bitrateKbps uint32) *Envelope {
	return newEnvelope(sessionID, &QualitySettings{
		Quality:     quality,
		MaxFps:      maxFps,
		BitrateKbps: bitrateKbps,
	})
}

// NewSessionEnd builds the intentional-close envelope sent before tearing
// down the socket.
func NewSessionEnd(sessionID, reason string) *Envelope {
	return newEnvelope(sessionID, &SessionEnd{Reason: reason})
}
