// Package video implements the desktop frame decode pipeline: JPEG and
// H.264 demultiplexing, Annex-B to AVCC NAL rewriting, decoder lifecycle
// with keyframe gating and bounded in-flight work, cursor compositing, and
// frame-rate accounting.
//
// The pipeline is deliberately lossy under pressure: frames that arrive
// while the decoder is saturated are dropped, never queued, so the viewer
// always renders the freshest picture the link can sustain.
//
// All pipeline state is owned by a single goroutine. Asynchronous decode
// completions re-enter through the dispatch function supplied at
// construction, which must run them on the owning loop.
package video
