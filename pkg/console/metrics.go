package console

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for one client.
type Metrics struct {
	framesDisplayed prometheus.Counter
	framesDropped   prometheus.Counter
	messagesDropped prometheus.Counter
	bytesReceived   prometheus.Counter
	reconnects      prometheus.Counter
	rttSeconds      prometheus.Histogram
	inputEvents     *prometheus.CounterVec
}

// NewMetrics registers the session collectors with reg. Pass
// prometheus.DefaultRegisterer outside of tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		framesDisplayed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "scconsole",
			Name:      "frames_displayed_total",
			Help:      "Total desktop frames composited and handed to the sink",
		}),
		framesDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "scconsole",
			Name:      "frames_dropped_total",
			Help:      "Total desktop frames dropped by backpressure or decode failure",
		}),
		messagesDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "scconsole",
			Name:      "messages_dropped_total",
			Help:      "Total inbound messages dropped as malformed",
		}),
		bytesReceived: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "scconsole",
			Name:      "bytes_received_total",
			Help:      "Total WebSocket payload bytes received",
		}),
		reconnects: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "scconsole",
			Name:      "reconnects_total",
			Help:      "Total reconnect attempts",
		}),
		rttSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "scconsole",
			Name:      "rtt_seconds",
			Help:      "Ping round-trip time",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.2, 0.4, 0.8, 1.6},
		}),
		inputEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scconsole",
			Name:      "input_events_total",
			Help:      "Total input events sent, by kind",
		}, []string{"kind"}),
	}
}
