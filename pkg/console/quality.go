package console

import (
	"time"

	"github.com/screencontrol-dev/console/pkg/protocol"
)

// Tier is an adaptive quality tier derived from the measured RTT.
type Tier uint8

const (
	TierUltra Tier = iota
	TierHigh
	TierMedium
	TierLow

	// TierManual marks operator-pinned quality. The controller stays
	// silent until automatic mode is re-enabled.
	TierManual
)

// String returns the string representation of the tier.
func (t Tier) String() string {
	switch t {
	case TierUltra:
		return "ultra"
	case TierHigh:
		return "high"
	case TierMedium:
		return "medium"
	case TierLow:
		return "low"
	case TierManual:
		return "manual"
	default:
		return "unknown"
	}
}

// tierNone is the pre-first-sample state; any first observation triggers a
// directive.
const tierNone = Tier(0xFF)

// RTT thresholds between tiers.
const (
	ultraRTTMax  = 50 * time.Millisecond
	highRTTMax   = 100 * time.Millisecond
	mediumRTTMax = 200 * time.Millisecond
)

// settingsFor returns the encoder directive for a tier.
func settingsFor(t Tier) (quality, maxFPS, bitrateKbps uint32) {
	switch t {
	case TierUltra:
		return 95, 30, 8000
	case TierHigh:
		return 75, 30, 5000
	case TierMedium:
		return 50, 24, 3000
	default:
		return 25, 15, 1500
	}
}

// tierFor maps a round-trip time onto a tier.
func tierFor(rtt time.Duration) Tier {
	switch {
	case rtt < ultraRTTMax:
		return TierUltra
	case rtt < highRTTMax:
		return TierHigh
	case rtt < mediumRTTMax:
		return TierMedium
	default:
		return TierLow
	}
}

// qualityController turns RTT samples into edge-triggered QualitySettings
// directives. Not safe for concurrent use; it lives on the client loop.
type qualityController struct {
	enabled bool
	last    Tier
}

func newQualityController() *qualityController {
	return &qualityController{enabled: true, last: tierNone}
}

// observe feeds one RTT sample. It returns a directive only when the tier
// changed since the last directive, and nothing at all in manual mode.
func (q *qualityController) observe(rtt time.Duration) (*protocol.QualitySettings, Tier, bool) {
	if !q.enabled {
		return nil, TierManual, false
	}
	t := tierFor(rtt)
	if t == q.last {
		return nil, t, false
	}
	q.last = t
	quality, fps, bitrate := settingsFor(t)
	return &protocol.QualitySettings{
		Quality:     quality,
		MaxFps:      fps,
		BitrateKbps: bitrate,
	}, t, true
}

// setManual pins quality under operator control. The tier memory is cleared
// so re-enabling always re-issues a directive.
func (q *qualityController) setManual() {
	q.enabled = false
	q.last = tierNone
}

// enable resumes automatic control. The next RTT sample issues a directive.
func (q *qualityController) enable() {
	q.enabled = true
	q.last = tierNone
}

// tier reports the current tier, TierManual when pinned.
func (q *qualityController) tier() Tier {
	if !q.enabled {
		return TierManual
	}
	return q.last
}

// reset clears the tier memory, used after a reconnect so the new stream
// gets a fresh directive. Manual mode survives reconnects.
func (q *qualityController) reset() {
	q.last = tierNone
}
