package console

import (
	"testing"
	"time"
)

func TestTierFor(t *testing.T) {
	tests := []struct {
		rtt  time.Duration
		want Tier
	}{
		{10 * time.Millisecond, TierUltra},
		{49 * time.Millisecond, TierUltra},
		{50 * time.Millisecond, TierHigh},
		{99 * time.Millisecond, TierHigh},
		{100 * time.Millisecond, TierMedium},
		{199 * time.Millisecond, TierMedium},
		{200 * time.Millisecond, TierLow},
		{2 * time.Second, TierLow},
	}
	for _, tt := range tests {
		if got := tierFor(tt.rtt); got != tt.want {
			t.Errorf("tierFor(%v) = %v, want %v", tt.rtt, got, tt.want)
		}
	}
}

func TestSettingsForTiers(t *testing.T) {
	tests := []struct {
		tier                  Tier
		quality, fps, bitrate uint32
	}{
		{TierUltra, 95, 30, 8000},
		{TierHigh, 75, 30, 5000},
		{TierMedium, 50, 24, 3000},
		{TierLow, 25, 15, 1500},
	}
	for _, tt := range tests {
		q, f, b := settingsFor(tt.tier)
		if q != tt.quality || f != tt.fps || b != tt.bitrate {
			t.Errorf("settingsFor(%v) = (%d,%d,%d), want (%d,%d,%d)",
				tt.tier, q, f, b, tt.quality, tt.fps, tt.bitrate)
		}
	}
}

func TestQualityControllerEdgeTriggered(t *testing.T) {
	q := newQualityController()

	// First sample always directs.
	d, tier, changed := q.observe(30 * time.Millisecond)
	if !changed || tier != TierUltra || d == nil {
		t.Fatalf("first observe = (%v, %v, %v), want ultra directive", d, tier, changed)
	}
	if d.Quality != 95 || d.MaxFps != 30 || d.BitrateKbps != 8000 {
		t.Errorf("ultra directive = %+v", d)
	}

	// Same tier again: silent.
	if d, _, changed := q.observe(40 * time.Millisecond); changed || d != nil {
		t.Errorf("repeat observe directed: %+v", d)
	}

	// Degrade and recover both fire.
	if _, tier, changed := q.observe(300 * time.Millisecond); !changed || tier != TierLow {
		t.Errorf("degrade = (%v, %v)", tier, changed)
	}
	if _, tier, changed := q.observe(60 * time.Millisecond); !changed || tier != TierHigh {
		t.Errorf("recover = (%v, %v)", tier, changed)
	}
}

func TestQualityControllerManual(t *testing.T) {
	q := newQualityController()
	q.observe(30 * time.Millisecond)

	q.setManual()
	if q.tier() != TierManual {
		t.Fatalf("tier = %v, want manual", q.tier())
	}
	if d, _, changed := q.observe(500 * time.Millisecond); changed || d != nil {
		t.Error("manual mode issued a directive")
	}

	// Re-enabling re-issues even at the previous tier.
	q.enable()
	if _, tier, changed := q.observe(30 * time.Millisecond); !changed || tier != TierUltra {
		t.Errorf("post-enable observe = (%v, %v), want ultra directive", tier, changed)
	}
}

func TestQualityControllerResetReissues(t *testing.T) {
	q := newQualityController()
	q.observe(30 * time.Millisecond)

	// Reconnect: same RTT must direct again for the new stream.
	q.reset()
	if _, _, changed := q.observe(30 * time.Millisecond); !changed {
		t.Error("no directive after reset")
	}

	// Manual mode survives reset.
	q.setManual()
	q.reset()
	if _, _, changed := q.observe(30 * time.Millisecond); changed {
		t.Error("manual mode lost across reset")
	}
}

func TestRetryDelaySchedule(t *testing.T) {
	want := []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		15 * time.Second,
		15 * time.Second, // clamped
		15 * time.Second,
	}
	for i, w := range want {
		if got := retryDelay(i + 1); got != w {
			t.Errorf("retryDelay(%d) = %v, want %v", i+1, got, w)
		}
	}
}

func TestMouseMoveGate(t *testing.T) {
	c := &Client{}
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	if !c.allowMouseMove(base) {
		t.Fatal("first move gated")
	}
	if c.allowMouseMove(base.Add(3 * time.Millisecond)) {
		t.Error("move inside 8 ms passed")
	}
	if c.allowMouseMove(base.Add(7 * time.Millisecond)) {
		t.Error("gate reference moved by a dropped event")
	}
	if !c.allowMouseMove(base.Add(8 * time.Millisecond)) {
		t.Error("move at 8 ms gated")
	}
	if !c.allowMouseMove(base.Add(17 * time.Millisecond)) {
		t.Error("move 9 ms after last delivery gated")
	}
}
