package console

import (
	"fmt"
	"time"
)

// StatusKind identifies the connection lifecycle phase.
type StatusKind uint8

const (
	StatusConnected StatusKind = iota
	StatusReconnecting
	StatusDisconnected
)

// String returns the string representation of the status kind.
func (k StatusKind) String() string {
	switch k {
	case StatusConnected:
		return "connected"
	case StatusReconnecting:
		return "reconnecting"
	case StatusDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Status reports the connection state to the host.
type Status struct {
	Kind StatusKind

	// Attempt is the reconnect attempt number, starting at 1.
	// Only set while reconnecting.
	Attempt int

	// NextRetry is the delay before the next dial. Only set while
	// reconnecting.
	NextRetry time.Duration

	// Reason describes why the session is disconnected. Only set when
	// disconnected.
	Reason string
}

// String renders the status for logs and the debug endpoint.
func (s Status) String() string {
	switch s.Kind {
	case StatusReconnecting:
		return fmt.Sprintf("reconnecting (attempt %d, retry in %s)", s.Attempt, s.NextRetry)
	case StatusDisconnected:
		if s.Reason != "" {
			return "disconnected: " + s.Reason
		}
		return "disconnected"
	default:
		return s.Kind.String()
	}
}
