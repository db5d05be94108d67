package video

import (
	"testing"
	"time"
)

func TestFPSCounterWindow(t *testing.T) {
	var c fpsCounter
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	if got := c.rate(base); got != 0 {
		t.Fatalf("empty rate = %d, want 0", got)
	}

	// 30 ticks spread over one second.
	for i := 0; i < 30; i++ {
		c.tick(base.Add(time.Duration(i) * 33 * time.Millisecond))
	}
	if got := c.rate(base.Add(990 * time.Millisecond)); got != 30 {
		t.Errorf("rate = %d, want 30", got)
	}

	// Half a window later only the newer half remains.
	if got := c.rate(base.Add(1490 * time.Millisecond)); got != 15 {
		t.Errorf("rate after half window = %d, want 15", got)
	}

	// A full window of silence drains it.
	if got := c.rate(base.Add(3 * time.Second)); got != 0 {
		t.Errorf("rate after silence = %d, want 0", got)
	}
}
