package protocol

import "testing"

func BenchmarkMarshalMouseMove(b *testing.B) {
	env := &Envelope{
		ID:        "bench",
		SessionID: "s-bench",
		Payload:   &InputEvent{Event: &MouseMove{X: 0.5, Y: 0.25}},
	}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = env.Marshal()
	}
}

func BenchmarkDecodeDesktopFrame(b *testing.B) {
	env := &Envelope{
		ID:        "bench",
		SessionID: "s-bench",
		Payload: &DesktopFrame{
			Width:    1920,
			Height:   1080,
			Data:     make([]byte, 64*1024),
			Sequence: 42,
			Quality:  75,
		},
	}
	data := env.Marshal()
	b.SetBytes(int64(len(data)))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := DecodeEnvelope(data); err != nil {
			b.Fatal(err)
		}
	}
}
