package protocol

import (
	"errors"
	"io"
	"math"
	"reflect"
	"testing"
)

// roundTrip marshals env and decodes it back, failing the test on any
// mismatch.
func roundTrip(t *testing.T, env *Envelope) *Envelope {
	t.Helper()

	decoded, err := DecodeEnvelope(env.Marshal())
	if err != nil {
		t.Fatalf("DecodeEnvelope() error: %v", err)
	}
	if !reflect.DeepEqual(env, decoded) {
		t.Fatalf("round trip mismatch:\n got %#v\nwant %#v", decoded, env)
	}
	return decoded
}

func TestEnvelopeRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		payload Payload
	}{
		{"terminal_data", &TerminalData{Data: []byte{0x1B, '[', 'H'}}},
		{"terminal_resize", &TerminalResize{Cols: 120, Rows: 40}},
		{"session_offer", &SessionOffer{SDP: "v=0\r\no=- 0 0 IN IP4 0.0.0.0", SessionType: "desktop"}},
		{"session_end", &SessionEnd{Reason: "user_disconnect"}},
		{"consent_granted", &ConsentResponse{Granted: true}},
		{"consent_denied", &ConsentResponse{Reason: "user declined"}},
		{"mouse_move", &InputEvent{Event: &MouseMove{X: 0.5, Y: 0.25}}},
		{"mouse_button", &InputEvent{Event: &MouseButton{Button: 2, Pressed: true, X: 0.1, Y: 0.9}}},
		{"mouse_scroll", &InputEvent{Event: &MouseScroll{DX: -1, DY: 3, X: 0.5, Y: 0.5}}},
		{"key_event", &InputEvent{Event: &KeyEvent{KeyCode: 65, Pressed: true, Ctrl: true, Shift: true}}},
		{"screen_info", &ScreenInfo{
			Monitors: []MonitorInfo{
				{Index: 0, Name: "DP-1", Width: 2560, Height: 1440, Primary: true, ScaleFactor: 1.5},
				{Index: 1, Name: "HDMI-1", Width: 1920, Height: 1080, X: -1920, Y: 360, ScaleFactor: 1},
			},
			ActiveMonitor: 1,
		}},
		{"monitor_switch", &MonitorSwitch{MonitorIndex: 1}},
		{"chat", &ChatMessage{SenderID: "u-7", SenderName: "ops", Content: "rebooting now"}},
		{"clipboard", &ClipboardData{Text: "pasted text"}},
		{"command_request", &CommandRequest{
			Command:     "systemctl",
			Args:        []string{"restart", "nginx"},
			WorkingDir:  "/srv",
			TimeoutSecs: 30,
		}},
		{"command_response", &CommandResponse{ExitCode: -9, Stderr: "killed", TimedOut: true}},
		{"file_list_request", &FileListRequest{Path: "/var/log"}},
		{"file_list", &FileList{
			Path: "/var/log",
			Entries: []FileEntry{
				{Name: "syslog", Size: 4096, ModifiedEpochSecs: 1700000000, Permissions: "-rw-r-----"},
				{Name: "nginx", IsDirectory: true, Permissions: "drwxr-x---"},
			},
		}},
		{"file_transfer_request", &FileTransferRequest{
			FileName:   "report.pdf",
			FilePath:   "/home/user/report.pdf",
			FileSize:   1 << 20,
			Upload:     true,
			TransferID: "t-42",
		}},
		{"file_transfer_ack", &FileTransferAck{
			TransferID:   "t-42",
			Accepted:     true,
			PresignedURL: "https://storage.example.com/t-42?sig=abc",
		}},
		{"desktop_frame_jpeg", &DesktopFrame{
			Width:    1920,
			Height:   1080,
			Data:     []byte{0xFF, 0xD8, 0xFF, 0xE0},
			Sequence: 1234,
			Quality:  75,
		}},
		{"desktop_frame_h264", &DesktopFrame{
			Width:      1280,
			Height:     720,
			Data:       []byte{0, 0, 0, 1, 0x67},
			Sequence:   1,
			Codec:      CodecH264,
			IsKeyframe: true,
		}},
		{"ping", &Ping{TimestampMs: 1700000000123}},
		{"pong", &Pong{TimestampMs: 1700000000123}},
		{"quality", &QualitySettings{Quality: 95, MaxFps: 30, BitrateKbps: 8000}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			roundTrip(t, &Envelope{ID: "m-1", SessionID: "s-1", Payload: tc.payload})
		})
	}
}

func TestEnvelopeZeroDefaults(t *testing.T) {
	// Proto3 omits zero-valued scalars on the wire; they must come back
	// as zero values, not decode failures.
	tests := []struct {
		name    string
		payload Payload
	}{
		{"empty_resize", &TerminalResize{}},
		{"zero_frame", &DesktopFrame{}},
		{"origin_move", &InputEvent{Event: &MouseMove{}}},
		{"released_key", &InputEvent{Event: &KeyEvent{KeyCode: 27}}},
		{"zero_quality", &QualitySettings{}},
		{"empty_file_list", &FileList{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			roundTrip(t, &Envelope{ID: "m-2", SessionID: "s-2", Payload: tc.payload})
		})
	}
}

func TestEnvelopeBoundaryVarints(t *testing.T) {
	for _, seq := range []uint32{0, 127, 128, 16383, math.MaxInt32} {
		env := &Envelope{
			ID:        "m-3",
			SessionID: "s-3",
			Payload:   &DesktopFrame{Sequence: seq, Data: []byte{1}},
		}
		roundTrip(t, env)
	}
}

func TestEnvelopeNoPayload(t *testing.T) {
	roundTrip(t, &Envelope{ID: "m-4", SessionID: "s-4"})
}

func TestUnknownFieldsSkipped(t *testing.T) {
	env := &Envelope{ID: "m-5", SessionID: "s-5", Payload: &Ping{TimestampMs: 99}}

	// Append fields this codec has never heard of, one per wire type.
	extra := NewEncoder()
	extra.WriteVarintField(99, 12345)
	extra.WriteStringField(100, "from the future")
	extra.WriteDoubleField(101, 6.28)
	extra.WriteTag(102, WireFixed32)

	data := append(env.Marshal(), extra.Bytes()...)
	data = append(data, 1, 2, 3, 4)

	decoded, err := DecodeEnvelope(data)
	if err != nil {
		t.Fatalf("DecodeEnvelope() error: %v", err)
	}
	if !reflect.DeepEqual(env, decoded) {
		t.Errorf("unknown fields changed the result:\n got %#v\nwant %#v", decoded, env)
	}
}

func TestUnknownPayloadVariantSkipped(t *testing.T) {
	// An unmapped payload-range field number (not in the variant table)
	// decodes as an envelope with no payload.
	e := NewEncoder()
	e.WriteStringField(1, "m-6")
	e.WriteStringField(2, "s-6")
	e.WriteMessageField(47, func(sub *Encoder) {
		sub.WriteVarintField(1, 1)
	})

	decoded, err := DecodeEnvelope(e.Bytes())
	if err != nil {
		t.Fatalf("DecodeEnvelope() error: %v", err)
	}
	if decoded.ID != "m-6" || decoded.SessionID != "s-6" {
		t.Errorf("routing fields = (%q, %q), want (m-6, s-6)", decoded.ID, decoded.SessionID)
	}
	if decoded.Payload != nil {
		t.Errorf("payload = %#v, want nil", decoded.Payload)
	}
}

func TestMalformedEnvelopeFailsCleanly(t *testing.T) {
	env := &Envelope{ID: "m-7", SessionID: "s-7", Payload: &ChatMessage{Content: "hi"}}
	full := env.Marshal()

	// Truncating mid-payload must fail, never panic or return garbage.
	if _, err := DecodeEnvelope(full[:len(full)-1]); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("truncated: err = %v, want io.ErrUnexpectedEOF", err)
	}

	// A bare dangling tag fails too.
	if _, err := DecodeEnvelope([]byte{0x0A}); err == nil {
		t.Error("dangling tag decoded without error")
	}
}

func TestBuilderEndToEnd(t *testing.T) {
	env := NewMouseMove("abc", 0.5, 0.25)
	if env.ID == "" {
		t.Fatal("builder left envelope ID empty")
	}

	decoded, err := DecodeEnvelope(env.Marshal())
	if err != nil {
		t.Fatalf("DecodeEnvelope() error: %v", err)
	}
	if decoded.SessionID != "abc" {
		t.Errorf("SessionID = %q, want \"abc\"", decoded.SessionID)
	}

	ie, ok := decoded.Payload.(*InputEvent)
	if !ok {
		t.Fatalf("payload = %T, want *InputEvent", decoded.Payload)
	}
	mm, ok := ie.Event.(*MouseMove)
	if !ok {
		t.Fatalf("input member = %T, want *MouseMove", ie.Event)
	}
	if mm.X != 0.5 || mm.Y != 0.25 {
		t.Errorf("MouseMove = (%v, %v), want (0.5, 0.25)", mm.X, mm.Y)
	}
}

func TestBuildersSetRouting(t *testing.T) {
	envs := []*Envelope{
		NewMouseButton("s", 0, true, 0.5, 0.5),
		NewMouseScroll("s", 0, -3, 0.5, 0.5),
		NewKeyEvent("s", 13, true, false, false, false, false),
		NewTerminalData("s", []byte("ls\n")),
		NewTerminalResize("s", 80, 24),
		NewChatMessage("s", "u", "name", "hello"),
		NewClipboardData("s", "copied"),
		NewCommandRequest("s", "uptime", nil, "", 10),
		NewFileListRequest("s", "/tmp"),
		NewFileTransferRequest("s", "a.txt", "/tmp/a.txt", 12, true, "t-1"),
		NewMonitorSwitch("s", 2),
		NewPing("s", 17),
		NewQualitySettings("s", 50, 24, 3000),
		NewSessionEnd("s", "done"),
	}

	seen := make(map[string]bool)
	for _, env := range envs {
		if env.ID == "" || env.SessionID != "s" || env.Payload == nil {
			t.Errorf("builder produced incomplete envelope: %#v", env)
		}
		if seen[env.ID] {
			t.Errorf("duplicate envelope ID %q", env.ID)
		}
		seen[env.ID] = true

		if _, err := DecodeEnvelope(env.Marshal()); err != nil {
			t.Errorf("DecodeEnvelope(%T) error: %v", env.Payload, err)
		}
	}
}
