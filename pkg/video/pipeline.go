package video

import (
	"errors"
	"image"
	"image/draw"
	"log/slog"
	"time"

	"github.com/screencontrol-dev/console/pkg/protocol"
)

// Pipeline tuning constants. These encode deliberate drop-newest policies:
// saturation drops frames instead of queueing them, keeping latency bounded.
const (
	// maxJPEGInFlight bounds concurrent software JPEG decodes.
	maxJPEGInFlight = 2

	// maxDecoderQueue is the H.264 decoder pending-queue depth above
	// which submissions are skipped.
	maxDecoderQueue = 3

	// maxConsecutiveErrors is the number of consecutive H.264 decode
	// errors that permanently disables the path for this connection.
	maxConsecutiveErrors = 3
)

// State is the H.264 decoder lifecycle state.
type State uint8

const (
	StateUninitialized State = iota // waiting for the first keyframe
	StateConfigured                 // parameter sets supplied, no output yet
	StateDecoding                   // producing frames
	StateDisabled                   // three strikes; requires a reconnect
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateConfigured:
		return "Configured"
	case StateDecoding:
		return "Decoding"
	case StateDisabled:
		return "Disabled"
	default:
		return "Unknown"
	}
}

// PipelineConfig configures a Pipeline.
type PipelineConfig struct {
	// Sink receives composited frames. Required.
	Sink FrameSink

	// Dispatch runs fn on the goroutine that owns the pipeline. Decode
	// completions arrive on arbitrary goroutines and re-enter through
	// it. When nil, completions run inline (single-goroutine tests).
	Dispatch func(fn func())

	// Logger for decode failures. Defaults to slog.Default().
	Logger *slog.Logger

	// H264Factory creates the hardware decoder on the first keyframe.
	// Defaults to UnsupportedDecoderFactory.
	H264Factory DecoderFactory

	// JPEGFactory creates the software JPEG decoder. Defaults to
	// NewJPEGDecoder.
	JPEGFactory DecoderFactory

	// OnResolutionChange fires when the display surface is resized to a
	// new frame geometry.
	OnResolutionChange func(width, height int)

	// OnCodecDisabled fires once when the H.264 path is permanently
	// disabled for this connection. The host should offer a JPEG
	// fallback or a codec-unsupported notice.
	OnCodecDisabled func(err error)
}

// Pipeline demultiplexes DesktopFrame payloads by codec and turns them into
// composited frames on the sink. All methods and callbacks must run on the
// owning goroutine; cross-goroutine work re-enters via Dispatch.
type Pipeline struct {
	sink     FrameSink
	dispatch func(func())
	logger   *slog.Logger
	factory  DecoderFactory

	onResolutionChange func(int, int)
	onCodecDisabled    func(error)

	jpeg Decoder
	hw   Decoder

	state      State
	errorCount int
	cancelled  bool

	cursor        cursorState
	width, height int
	fps           fpsCounter
	now           func() time.Time

	framesDisplayed uint64
	framesDropped   uint64
}

// NewPipeline creates a pipeline for one connection.
func NewPipeline(cfg PipelineConfig) *Pipeline {
	p := &Pipeline{
		sink:               cfg.Sink,
		dispatch:           cfg.Dispatch,
		logger:             cfg.Logger,
		factory:            cfg.H264Factory,
		onResolutionChange: cfg.OnResolutionChange,
		onCodecDisabled:    cfg.OnCodecDisabled,
		now:                time.Now,
	}
	if p.dispatch == nil {
		p.dispatch = func(fn func()) { fn() }
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.factory == nil {
		p.factory = UnsupportedDecoderFactory
	}

	jpegFactory := cfg.JPEGFactory
	if jpegFactory == nil {
		jpegFactory = func(cb Callbacks) (Decoder, error) {
			return NewJPEGDecoder(cb), nil
		}
	}
	// The JPEG factory cannot fail by contract; software decode is
	// always available.
	p.jpeg, _ = jpegFactory(Callbacks{
		OnFrame: func(f Frame) {
			p.dispatch(func() { p.completeFrame(f, false) })
		},
		OnError: func(err error) {
			p.dispatch(func() {
				p.framesDropped++
				p.logger.Warn("jpeg decode failed", "error", err)
			})
		},
	})
	return p
}

// HandleFrame routes one DesktopFrame through the codec-appropriate path.
// The frame's Data buffer is only used for the duration of this call and
// the decode it starts.
func (p *Pipeline) HandleFrame(f *protocol.DesktopFrame) {
	if p.cancelled {
		return
	}

	switch f.Codec {
	case protocol.CodecJPEG:
		p.handleJPEG(f)
	case protocol.CodecH264:
		p.handleH264(f)
	default:
		p.framesDropped++
		p.logger.Warn("unknown frame codec", "codec", uint32(f.Codec))
	}
}

func (p *Pipeline) handleJPEG(f *protocol.DesktopFrame) {
	if p.jpeg.QueueDepth() >= maxJPEGInFlight {
		// Lossy latest-frame policy: drop, never queue.
		p.framesDropped++
		return
	}
	if err := p.jpeg.Decode(Chunk{Data: f.Data}); err != nil {
		p.framesDropped++
	}
}

func (p *Pipeline) handleH264(f *protocol.DesktopFrame) {
	if p.state == StateDisabled {
		p.framesDropped++
		return
	}

	if p.hw == nil {
		if !f.IsKeyframe {
			// Cannot start mid-GOP; wait for a keyframe.
			p.framesDropped++
			return
		}
		if err := p.initH264(f); err != nil {
			p.framesDropped++
			if errors.Is(err, ErrNoParameterSets) {
				// Malformed keyframe. Drop it and wait for the next
				// one; the strike counter still catches a stream that
				// never produces parameter sets.
				p.recordDecodeError(err)
				return
			}
			p.disableH264(err)
			return
		}
	}

	avcc := annexBToAVCC(f.Data)
	if len(avcc) == 0 {
		p.framesDropped++
		return
	}

	if p.hw.QueueDepth() > maxDecoderQueue {
		// Decoder saturated: drop-newest.
		p.framesDropped++
		return
	}

	if err := p.hw.Decode(Chunk{Data: avcc, Keyframe: f.IsKeyframe}); err != nil {
		p.framesDropped++
		p.recordDecodeError(err)
	}
}

// initH264 extracts SPS/PPS from the keyframe, synthesizes the avcC record,
// and brings up the hardware decoder.
func (p *Pipeline) initH264(f *protocol.DesktopFrame) error {
	sps, pps, err := extractParameterSets(f.Data)
	if err != nil {
		return err
	}

	dec, err := p.factory(Callbacks{
		OnFrame: func(frame Frame) {
			p.dispatch(func() { p.completeFrame(frame, true) })
		},
		OnError: func(err error) {
			p.dispatch(func() {
				p.framesDropped++
				p.recordDecodeError(err)
			})
		},
	})
	if err != nil {
		return err
	}

	cfg := Config{
		Codec:       codecProfile(sps),
		Width:       int(f.Width),
		Height:      int(f.Height),
		Description: buildDecoderConfig(sps, pps),
	}
	if err := dec.Configure(cfg); err != nil {
		dec.Close()
		return err
	}

	p.hw = dec
	p.state = StateConfigured
	p.logger.Info("h264 decoder configured",
		"codec", cfg.Codec, "width", cfg.Width, "height", cfg.Height)
	return nil
}

// completeFrame runs on the owning loop when a decode finishes.
func (p *Pipeline) completeFrame(f Frame, h264 bool) {
	if p.cancelled {
		f.Release()
		return
	}
	if h264 {
		if p.state == StateDisabled {
			// Late completion from a decoder the strike limit already
			// tore down.
			f.Release()
			return
		}
		// Any successful decode resets the strike counter.
		p.errorCount = 0
		p.state = StateDecoding
	}
	p.present(f.Image)
	f.Release()
}

// present composites the cursor over img and hands it to the sink.
func (p *Pipeline) present(img image.Image) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w != p.width || h != p.height {
		p.width, p.height = w, h
		if p.onResolutionChange != nil {
			p.onResolutionChange(w, h)
		}
	}

	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	drawCursor(out, p.cursor)

	p.sink.Present(out)
	p.framesDisplayed++
	p.fps.tick(p.now())
}

func (p *Pipeline) recordDecodeError(err error) {
	p.errorCount++
	p.logger.Warn("h264 decode error",
		"error", err, "consecutive", p.errorCount)
	if p.errorCount >= maxConsecutiveErrors {
		p.disableH264(err)
	}
}

// disableH264 permanently disables the H.264 path for this connection.
// Only a reconnect (Reset) re-enables it.
func (p *Pipeline) disableH264(err error) {
	if p.hw != nil {
		p.hw.Close()
		p.hw = nil
	}
	if p.state == StateDisabled {
		return
	}
	p.state = StateDisabled
	p.logger.Error("h264 path disabled", "error", err)
	if p.onCodecDisabled != nil {
		p.onCodecDisabled(err)
	}
}

// SetCursor updates the last known pointer position (normalized [0,1]).
func (p *Pipeline) SetCursor(x, y float64) {
	p.cursor = cursorState{X: x, Y: y, Visible: true}
}

// HideCursor stops compositing the cursor overlay.
func (p *Pipeline) HideCursor() {
	p.cursor.Visible = false
}

// Reset tears down the decoder for a reconnect: parameter sets are not
// assumed stable across streams, so the next keyframe reinitializes.
func (p *Pipeline) Reset() {
	if p.hw != nil {
		p.hw.Close()
		p.hw = nil
	}
	p.state = StateUninitialized
	p.errorCount = 0
}

// Close cancels the pipeline. In-flight decode completions are discarded
// without touching the sink.
func (p *Pipeline) Close() {
	p.cancelled = true
	p.jpeg.Close()
	if p.hw != nil {
		p.hw.Close()
		p.hw = nil
	}
}

// State returns the H.264 lifecycle state.
func (p *Pipeline) State() State { return p.state }

// FPS returns the number of frames displayed in the last second.
func (p *Pipeline) FPS() int { return p.fps.rate(p.now()) }

// Resolution returns the current display surface geometry.
func (p *Pipeline) Resolution() (width, height int) { return p.width, p.height }

// FramesDisplayed returns the total frames handed to the sink.
func (p *Pipeline) FramesDisplayed() uint64 { return p.framesDisplayed }

// FramesDropped returns the total frames dropped by backpressure, decode
// failure, or keyframe gating.
func (p *Pipeline) FramesDropped() uint64 { return p.framesDropped }
