package video

import (
	"image"
	"sync"
)

// FrameSink receives composited frames ready for display. Implementations
// decide what "display" means: a native canvas, a GPU surface, or an
// offscreen buffer. Present is always called from the pipeline's owning
// loop with a freshly composited image the sink may retain.
type FrameSink interface {
	Present(img *image.RGBA)
}

// ImageSink is an in-memory FrameSink retaining the most recent frame.
// Useful for headless operation, snapshots, and tests.
type ImageSink struct {
	mu   sync.Mutex
	last *image.RGBA
}

// NewImageSink creates an empty ImageSink.
func NewImageSink() *ImageSink {
	return &ImageSink{}
}

// Present stores img as the latest frame.
func (s *ImageSink) Present(img *image.RGBA) {
	s.mu.Lock()
	s.last = img
	s.mu.Unlock()
}

// Last returns the most recently presented frame, or nil.
func (s *ImageSink) Last() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}
