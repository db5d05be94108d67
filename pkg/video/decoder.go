package video

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"sync/atomic"
)

// ErrNoHardwareDecoder is returned by the default decoder factory on
// platforms without an H.264 decode capability. The pipeline surfaces it
// through the codec-disabled callback so the host can fall back to JPEG.
var ErrNoHardwareDecoder = errors.New("video: no hardware H.264 decoder available")

// Config is the out-of-band configuration handed to a decoder before the
// first chunk.
type Config struct {
	// Codec is the profile string, e.g. "avc1.64001F".
	Codec string

	// Width and Height are the coded dimensions from the frame header.
	Width  int
	Height int

	// Description is the avcC record (H.264) or nil (JPEG).
	Description []byte
}

// Chunk is one encoded submission to a decoder.
type Chunk struct {
	Data        []byte
	Keyframe    bool
	TimestampMs uint64
}

// Frame is one decoded picture delivered through the frame callback.
// Release must be called exactly once when the picture has been consumed;
// hardware decoders use it to return the surface to their pool.
type Frame struct {
	Image   image.Image
	Release func()
}

// Callbacks receive a decoder's asynchronous output. They may be invoked
// from arbitrary goroutines; the pipeline re-dispatches onto its own loop.
type Callbacks struct {
	OnFrame func(Frame)
	OnError func(error)
}

// Decoder is the capability interface over a frame decoder. QueueDepth
// reports pending submissions so callers can apply a drop-newest policy
// instead of queueing.
type Decoder interface {
	Configure(cfg Config) error
	Decode(chunk Chunk) error
	QueueDepth() int
	Close() error
}

// DecoderFactory creates a decoder wired to the given callbacks.
type DecoderFactory func(cb Callbacks) (Decoder, error)

// UnsupportedDecoderFactory is the default H.264 factory: it always fails,
// leaving JPEG as the only working path.
func UnsupportedDecoderFactory(Callbacks) (Decoder, error) {
	return nil, ErrNoHardwareDecoder
}

// JPEGDecoder is the software implementation of the Decoder capability.
// Each submission decodes on its own goroutine; QueueDepth counts decodes
// still in flight.
type JPEGDecoder struct {
	cb       Callbacks
	inFlight atomic.Int32
	closed   atomic.Bool
}

// NewJPEGDecoder creates a software JPEG decoder.
func NewJPEGDecoder(cb Callbacks) *JPEGDecoder {
	return &JPEGDecoder{cb: cb}
}

// Configure is a no-op: JPEG needs no out-of-band configuration.
func (d *JPEGDecoder) Configure(Config) error { return nil }

// Decode decodes chunk.Data asynchronously. The chunk buffer is only read
// for the duration of the decode and never retained.
func (d *JPEGDecoder) Decode(chunk Chunk) error {
	if d.closed.Load() {
		return errors.New("video: decoder closed")
	}
	d.inFlight.Add(1)
	go func() {
		defer d.inFlight.Add(-1)
		img, err := jpeg.Decode(bytes.NewReader(chunk.Data))
		if d.closed.Load() {
			return
		}
		if err != nil {
			if d.cb.OnError != nil {
				d.cb.OnError(err)
			}
			return
		}
		if d.cb.OnFrame != nil {
			d.cb.OnFrame(Frame{Image: img, Release: func() {}})
		}
	}()
	return nil
}

// QueueDepth returns the number of decodes in flight.
func (d *JPEGDecoder) QueueDepth() int {
	return int(d.inFlight.Load())
}

// Close discards results of any in-flight decodes.
func (d *JPEGDecoder) Close() error {
	d.closed.Store(true)
	return nil
}
