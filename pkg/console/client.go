package console

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/screencontrol-dev/console/pkg/protocol"
	"github.com/screencontrol-dev/console/pkg/video"
)

const (
	// pingPeriod is the latency probe interval.
	pingPeriod = 2 * time.Second

	// mouseMoveMinInterval is the wall-clock gate between outbound
	// pointer-position events. Moves arriving faster are dropped.
	mouseMoveMinInterval = 8 * time.Millisecond

	// dialTimeout bounds one reconnect dial.
	dialTimeout = 10 * time.Second

	closedByUser = "closed by user"
)

// backoffDelays is the reconnect schedule. Attempts beyond the last entry
// keep using it.
var backoffDelays = []time.Duration{
	1 * time.Second,
	2 * time.Second,
	4 * time.Second,
	8 * time.Second,
	15 * time.Second,
}

// Config configures a Client.
type Config struct {
	// ServerURL is the ws:// or wss:// base URL of the session server.
	ServerURL string

	// SessionID identifies the session to join.
	SessionID string

	// Token is the bearer token sent in the Authorization header.
	Token string

	// Logger defaults to slog.Default(). The client derives a logger
	// carrying the session ID.
	Logger *slog.Logger

	// Sink receives composited frames. Defaults to an in-memory
	// ImageSink.
	Sink video.FrameSink

	// H264Factory creates the platform H.264 decoder. Defaults to the
	// unsupported factory, leaving JPEG as the only path.
	H264Factory video.DecoderFactory

	// Callbacks is the host surface.
	Callbacks Callbacks

	// Registerer receives the session metrics. Defaults to
	// prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer

	// Dialer defaults to websocket.DefaultDialer.
	Dialer *websocket.Dialer
}

// Stats is a point-in-time snapshot of the session, safe to read from any
// goroutine.
type Stats struct {
	Status          Status
	Monitors        []protocol.MonitorInfo
	ActiveMonitor   uint32
	Width, Height   int
	FPS             int
	LatencyMs       float64
	Tier            Tier
	FramesDisplayed uint64
	FramesDropped   uint64
}

// Client is one operator session. All protocol and pipeline state lives on
// the event loop; public methods hand work to it and never block on I/O.
type Client struct {
	cfg     Config
	logger  *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer

	tasks chan func()
	done  chan struct{}
	stop  sync.Once

	// Loop-owned state.
	conn          *websocket.Conn
	pipeline      *video.Pipeline
	quality       *qualityController
	closing       bool
	attempt       int
	lastMouseMove time.Time
	now           func() time.Time

	mu    sync.Mutex
	stats Stats
}

// Dial joins the session and starts the event loop. The initial connect is
// synchronous: a failure returns an error and no client. Later drops
// reconnect automatically with backoff.
func Dial(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.ServerURL == "" {
		return nil, errors.New("console: server URL required")
	}
	if cfg.SessionID == "" {
		return nil, errors.New("console: session ID required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Sink == nil {
		cfg.Sink = video.NewImageSink()
	}
	if cfg.Registerer == nil {
		cfg.Registerer = prometheus.DefaultRegisterer
	}
	if cfg.Dialer == nil {
		cfg.Dialer = websocket.DefaultDialer
	}

	c := &Client{
		cfg:     cfg,
		logger:  cfg.Logger.With("session_id", cfg.SessionID),
		tracer:  otel.Tracer("scconsole"),
		tasks:   make(chan func(), 64),
		done:    make(chan struct{}),
		quality: newQualityController(),
		now:     time.Now,
	}
	c.stats.Tier = tierNone

	c.pipeline = video.NewPipeline(video.PipelineConfig{
		Sink:        cfg.Sink,
		Dispatch:    c.post,
		Logger:      c.logger,
		H264Factory: cfg.H264Factory,
		OnResolutionChange: func(w, h int) {
			c.mu.Lock()
			c.stats.Width, c.stats.Height = w, h
			c.mu.Unlock()
			if cb := c.cfg.Callbacks.OnResolution; cb != nil {
				cb(w, h)
			}
		},
		OnCodecDisabled: func(err error) {
			if cb := c.cfg.Callbacks.OnCodecDisabled; cb != nil {
				cb(err)
			}
		},
	})

	conn, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}
	c.conn = conn

	// Collectors register only once a connection exists, so a failed Dial
	// can be retried against the same registerer.
	c.metrics = NewMetrics(cfg.Registerer)
	c.setStatus(Status{Kind: StatusConnected})

	go c.run()
	go c.readPump(conn)
	return c, nil
}

// post hands fn to the event loop, dropping it if the client is closed.
func (c *Client) post(fn func()) {
	select {
	case c.tasks <- fn:
	case <-c.done:
	}
}

func (c *Client) run() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case fn := <-c.tasks:
			fn()
		case <-ticker.C:
			c.sendPing()
		case <-c.done:
			return
		}
	}
}

// readPump reads the socket until it fails and feeds the loop. One pump per
// connection; a stale pump's teardown is ignored by connLost.
func (c *Client) readPump(conn *websocket.Conn) {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			c.post(func() { c.connLost(conn, err) })
			return
		}
		c.post(func() { c.handleMessage(msg) })
	}
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	ctx, span := c.tracer.Start(ctx, "console.connect", trace.WithAttributes(
		attribute.String("session.id", c.cfg.SessionID),
		attribute.Int("connect.attempt", c.attempt),
	))
	defer span.End()

	header := http.Header{}
	if c.cfg.Token != "" {
		header.Set("Authorization", "Bearer "+c.cfg.Token)
	}
	url := strings.TrimRight(c.cfg.ServerURL, "/") + "/console/" + c.cfg.SessionID

	conn, resp, err := c.cfg.Dialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "dial failed")
		return nil, fmt.Errorf("console: dial %s: %w", url, err)
	}
	span.SetStatus(codes.Ok, "")
	return conn, nil
}

// handleMessage decodes and dispatches one inbound binary message.
// Malformed messages are dropped; the stream continues.
func (c *Client) handleMessage(msg []byte) {
	c.metrics.bytesReceived.Add(float64(len(msg)))

	env, err := protocol.DecodeEnvelope(msg)
	if err != nil {
		c.metrics.messagesDropped.Inc()
		c.logger.Warn("dropping malformed message", "error", err)
		return
	}

	switch p := env.Payload.(type) {
	case *protocol.DesktopFrame:
		c.pipeline.HandleFrame(p)

	case *protocol.Ping:
		c.send(protocol.NewPong(c.cfg.SessionID, p.TimestampMs))

	case *protocol.Pong:
		c.handlePong(p)

	case *protocol.ScreenInfo:
		c.mu.Lock()
		c.stats.Monitors = p.Monitors
		c.stats.ActiveMonitor = p.ActiveMonitor
		c.mu.Unlock()
		if cb := c.cfg.Callbacks.OnScreenInfo; cb != nil {
			cb(p)
		}

	case *protocol.ChatMessage:
		if cb := c.cfg.Callbacks.OnChat; cb != nil {
			cb(p)
		}

	case *protocol.ClipboardData:
		if cb := c.cfg.Callbacks.OnClipboard; cb != nil {
			cb(p.Text)
		}

	case *protocol.CommandResponse:
		if cb := c.cfg.Callbacks.OnCommandResponse; cb != nil {
			cb(p)
		}

	case *protocol.FileList:
		if cb := c.cfg.Callbacks.OnFileList; cb != nil {
			cb(p)
		}

	case *protocol.TerminalData:
		if cb := c.cfg.Callbacks.OnTerminalData; cb != nil {
			cb(p.Data)
		}

	case *protocol.FileTransferAck:
		if cb := c.cfg.Callbacks.OnTransferAck; cb != nil {
			cb(p)
		}

	case *protocol.ConsentResponse:
		if cb := c.cfg.Callbacks.OnConsent; cb != nil {
			cb(p)
		}

	case *protocol.SessionEnd:
		c.endSession(p.Reason)

	case nil:
		// Unknown payload variant: forward compatibility, ignore.

	default:
		c.logger.Debug("ignoring payload meant for the agent",
			"payload", fmt.Sprintf("%T", p))
	}

	c.syncStats()
}

func (c *Client) handlePong(p *protocol.Pong) {
	if p.TimestampMs == 0 {
		return
	}
	rtt := c.now().Sub(time.UnixMilli(int64(p.TimestampMs)))
	if rtt < 0 {
		return
	}
	c.metrics.rttSeconds.Observe(rtt.Seconds())

	directive, tier, changed := c.quality.observe(rtt)

	c.mu.Lock()
	c.stats.LatencyMs = float64(rtt) / float64(time.Millisecond)
	if changed {
		c.stats.Tier = tier
	}
	c.mu.Unlock()

	if changed {
		c.logger.Info("quality tier changed", "tier", tier.String(), "rtt", rtt)
		c.send(protocol.NewQualitySettings(c.cfg.SessionID,
			directive.Quality, directive.MaxFps, directive.BitrateKbps))
		if cb := c.cfg.Callbacks.OnQualityTier; cb != nil {
			cb(tier)
		}
	}
}

func (c *Client) sendPing() {
	c.send(protocol.NewPing(c.cfg.SessionID, uint64(c.now().UnixMilli())))
}

// send marshals and writes one envelope on the current socket. Only ever
// called from the loop; gorilla allows a single concurrent writer.
func (c *Client) send(env *protocol.Envelope) {
	if c.conn == nil {
		return
	}
	if err := c.conn.WriteMessage(websocket.BinaryMessage, env.Marshal()); err != nil {
		c.logger.Warn("write failed", "error", err)
	}
}

// connLost runs when a read pump dies. conn identifies the pump's socket so
// teardown of an already-replaced connection is a no-op.
func (c *Client) connLost(conn *websocket.Conn, err error) {
	if conn != c.conn {
		return
	}
	c.conn = nil
	if c.closing {
		return
	}

	// A clean close from the server ends the session for good, same as
	// an explicit SessionEnd payload.
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		c.endSession("session ended")
		return
	}

	// Encoder parameter sets are not stable across streams; the next
	// connection starts clean from its first keyframe.
	c.pipeline.Reset()
	c.quality.reset()
	c.scheduleRetry(err)
}

// retryDelay maps a 1-based attempt number onto the backoff schedule,
// clamping at the last entry.
func retryDelay(attempt int) time.Duration {
	return backoffDelays[min(attempt-1, len(backoffDelays)-1)]
}

func (c *Client) scheduleRetry(err error) {
	c.attempt++
	delay := retryDelay(c.attempt)
	c.metrics.reconnects.Inc()
	c.setStatus(Status{Kind: StatusReconnecting, Attempt: c.attempt, NextRetry: delay})
	c.logger.Info("connection lost, retrying",
		"error", err, "attempt", c.attempt, "delay", delay)
	time.AfterFunc(delay, func() { c.post(c.redial) })
}

func (c *Client) redial() {
	if c.closing {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	conn, err := c.dial(ctx)
	if err != nil {
		c.scheduleRetry(err)
		return
	}
	c.conn = conn
	c.attempt = 0
	c.setStatus(Status{Kind: StatusConnected})
	c.logger.Info("reconnected")
	go c.readPump(conn)
}

// endSession handles a server-initiated end: no reconnect.
func (c *Client) endSession(reason string) {
	if reason == "" {
		reason = "session ended"
	}
	c.closing = true
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.logger.Info("session ended by server", "reason", reason)
	c.setStatus(Status{Kind: StatusDisconnected, Reason: reason})
	c.shutdown()
}

func (c *Client) shutdown() {
	c.pipeline.Close()
	c.stop.Do(func() { close(c.done) })
}

// Close ends the session intentionally: a SessionEnd envelope is sent, the
// socket closed cleanly, and no reconnect is attempted. Safe to call from
// any goroutine; it returns once the loop has stopped.
func (c *Client) Close() error {
	c.post(func() {
		if c.closing {
			return
		}
		c.closing = true
		c.send(protocol.NewSessionEnd(c.cfg.SessionID, closedByUser))
		if c.conn != nil {
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			c.conn.Close()
			c.conn = nil
		}
		c.setStatus(Status{Kind: StatusDisconnected, Reason: closedByUser})
		c.shutdown()
	})
	<-c.done
	return nil
}

// Done is closed when the session has ended, by either side.
func (c *Client) Done() <-chan struct{} { return c.done }

// Send queues an already-built envelope for transmission. Hosts composing
// payloads not covered by the typed senders go through here; throttling and
// cursor tracking are the caller's problem.
func (c *Client) Send(env *protocol.Envelope) {
	c.post(func() { c.send(env) })
}

// SendMouseMove forwards a pointer position, normalized to [0,1]. Moves
// inside the 8 ms gate are dropped; every delivered move also updates the
// local cursor overlay.
func (c *Client) SendMouseMove(x, y float64) {
	c.post(func() {
		if !c.allowMouseMove(c.now()) {
			return
		}
		c.pipeline.SetCursor(x, y)
		c.metrics.inputEvents.WithLabelValues("mouse_move").Inc()
		c.send(protocol.NewMouseMove(c.cfg.SessionID, x, y))
	})
}

// allowMouseMove applies the wall-clock mouse-move gate.
func (c *Client) allowMouseMove(now time.Time) bool {
	if now.Sub(c.lastMouseMove) < mouseMoveMinInterval {
		return false
	}
	c.lastMouseMove = now
	return true
}

// SendMouseButton forwards a button press or release.
func (c *Client) SendMouseButton(button uint32, pressed bool, x, y float64) {
	c.post(func() {
		c.metrics.inputEvents.WithLabelValues("mouse_button").Inc()
		c.send(protocol.NewMouseButton(c.cfg.SessionID, button, pressed, x, y))
	})
}

// SendMouseScroll forwards a scroll delta.
func (c *Client) SendMouseScroll(dx, dy, x, y float64) {
	c.post(func() {
		c.metrics.inputEvents.WithLabelValues("mouse_scroll").Inc()
		c.send(protocol.NewMouseScroll(c.cfg.SessionID, dx, dy, x, y))
	})
}

// SendKey forwards a key press or release with modifier state.
func (c *Client) SendKey(keyCode uint32, pressed, ctrl, alt, shift, meta bool) {
	c.post(func() {
		c.metrics.inputEvents.WithLabelValues("key").Inc()
		c.send(protocol.NewKeyEvent(c.cfg.SessionID, keyCode, pressed, ctrl, alt, shift, meta))
	})
}

// SendTerminalData forwards raw bytes to the remote terminal.
func (c *Client) SendTerminalData(data []byte) {
	c.post(func() { c.send(protocol.NewTerminalData(c.cfg.SessionID, data)) })
}

// SendTerminalResize reports the local terminal geometry.
func (c *Client) SendTerminalResize(cols, rows uint32) {
	c.post(func() { c.send(protocol.NewTerminalResize(c.cfg.SessionID, cols, rows)) })
}

// SendChat sends a chat message.
func (c *Client) SendChat(senderID, senderName, content string) {
	c.post(func() { c.send(protocol.NewChatMessage(c.cfg.SessionID, senderID, senderName, content)) })
}

// SendClipboard syncs clipboard text to the agent.
func (c *Client) SendClipboard(text string) {
	c.post(func() { c.send(protocol.NewClipboardData(c.cfg.SessionID, text)) })
}

// SendCommand runs a command on the agent; the result arrives through
// OnCommandResponse.
func (c *Client) SendCommand(command string, args []string, workingDir string, timeoutSecs uint32) {
	c.post(func() {
		c.send(protocol.NewCommandRequest(c.cfg.SessionID, command, args, workingDir, timeoutSecs))
	})
}

// RequestFileList asks the agent for a directory listing.
func (c *Client) RequestFileList(path string) {
	c.post(func() { c.send(protocol.NewFileListRequest(c.cfg.SessionID, path)) })
}

// RequestFileTransfer opens transfer negotiation; the ack with the
// presigned URL arrives through OnTransferAck.
func (c *Client) RequestFileTransfer(fileName, filePath string, fileSize uint64, upload bool, transferID string) {
	c.post(func() {
		c.send(protocol.NewFileTransferRequest(c.cfg.SessionID,
			fileName, filePath, fileSize, upload, transferID))
	})
}

// SwitchMonitor directs the agent to stream a different monitor.
func (c *Client) SwitchMonitor(index uint32) {
	c.post(func() { c.send(protocol.NewMonitorSwitch(c.cfg.SessionID, index)) })
}

// SetQuality pins the stream quality under operator control. Automatic
// adaptation stays off until EnableAutoQuality.
func (c *Client) SetQuality(quality, maxFPS, bitrateKbps uint32) {
	c.post(func() {
		c.quality.setManual()
		c.mu.Lock()
		c.stats.Tier = TierManual
		c.mu.Unlock()
		c.send(protocol.NewQualitySettings(c.cfg.SessionID, quality, maxFPS, bitrateKbps))
		if cb := c.cfg.Callbacks.OnQualityTier; cb != nil {
			cb(TierManual)
		}
	})
}

// EnableAutoQuality resumes RTT-driven adaptation; the next latency sample
// issues a directive.
func (c *Client) EnableAutoQuality() {
	c.post(func() { c.quality.enable() })
}

func (c *Client) setStatus(s Status) {
	c.mu.Lock()
	c.stats.Status = s
	c.mu.Unlock()
	if cb := c.cfg.Callbacks.OnStatus; cb != nil {
		cb(s)
	}
}

// syncStats copies loop-owned pipeline counters into the shared snapshot.
func (c *Client) syncStats() {
	fps := c.pipeline.FPS()
	displayed := c.pipeline.FramesDisplayed()
	dropped := c.pipeline.FramesDropped()

	c.mu.Lock()
	c.stats.FPS = fps
	if d := displayed - c.stats.FramesDisplayed; d > 0 {
		c.metrics.framesDisplayed.Add(float64(d))
	}
	if d := dropped - c.stats.FramesDropped; d > 0 {
		c.metrics.framesDropped.Add(float64(d))
	}
	c.stats.FramesDisplayed = displayed
	c.stats.FramesDropped = dropped
	c.mu.Unlock()
}

// Stats returns a snapshot of the session.
func (c *Client) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Monitors = append([]protocol.MonitorInfo(nil), c.stats.Monitors...)
	return s
}

// Status returns the connection state.
func (c *Client) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats.Status
}

// Monitors returns the last reported monitor topology.
func (c *Client) Monitors() []protocol.MonitorInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]protocol.MonitorInfo(nil), c.stats.Monitors...)
}

// Resolution returns the streamed frame geometry.
func (c *Client) Resolution() (width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats.Width, c.stats.Height
}

// FPS returns frames displayed over the last second.
func (c *Client) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats.FPS
}

// LatencyMs returns the last measured round-trip time in milliseconds.
func (c *Client) LatencyMs() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats.LatencyMs
}

// Tier returns the current quality tier.
func (c *Client) Tier() Tier {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats.Tier
}
