// Package console implements the operator side of a remote-control session:
// a binary WebSocket connection to the session endpoint, payload dispatch to
// the video pipeline and host callbacks, RTT-driven adaptive quality, and
// resilient reconnection with bounded backoff.
//
// A Client owns a single event-loop goroutine. Every connection gets a read
// pump that feeds the loop; all protocol writes, pipeline calls, and state
// changes happen on the loop, so the rest of the package is lock-free apart
// from the stats snapshot exposed to accessors.
package console
