package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/screencontrol-dev/console/internal/config"
	"github.com/screencontrol-dev/console/pkg/console"
	"github.com/screencontrol-dev/console/pkg/protocol"
	"github.com/screencontrol-dev/console/pkg/transfer"
)

func connectCmd() *cobra.Command {
	var (
		configPath string
		serverURL  string
		token      string
		debugAddr  string
	)

	cmd := &cobra.Command{
		Use:   "connect <session-id>",
		Short: "Join a session as the operator",
		Long: `Join a remote-control session headlessly.

Status transitions, chat, and transfer outcomes print to stdout.
While connected, a local debug endpoint serves Prometheus metrics
on /metrics and a JSON session snapshot on /status.

Examples:
  scconsole connect 4f1c9b2e
  scconsole connect 4f1c9b2e --server wss://control.example.com
  SCCONSOLE_TOKEN=op-token scconsole connect 4f1c9b2e`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if serverURL != "" {
				cfg.ServerURL = serverURL
			}
			if token != "" {
				cfg.Token = token
			}
			if cmd.Flags().Changed("debug-addr") {
				cfg.DebugAddr = debugAddr
			}
			return runConnect(cfg, args[0])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to scconsole.json")
	cmd.Flags().StringVar(&serverURL, "server", "", "Session server URL (overrides config)")
	cmd.Flags().StringVar(&token, "token", "", "Bearer token (overrides config)")
	cmd.Flags().StringVar(&debugAddr, "debug-addr", "", "Local metrics/status address, empty to disable")

	return cmd
}

func runConnect(cfg config.Config, sessionID string) error {
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	transfers := transfer.New(transfer.Config{
		Logger: logger,
		OnEvent: func(ev transfer.Event) {
			if ev.Err != nil {
				fmt.Printf("transfer %s failed: %v\n", ev.TransferID, ev.Err)
				return
			}
			dir := "downloaded to"
			if ev.Upload {
				dir = "uploaded from"
			}
			fmt.Printf("transfer %s done, %s %s\n", ev.TransferID, dir, ev.Path)
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := console.Dial(ctx, console.Config{
		ServerURL: cfg.ServerURL,
		SessionID: sessionID,
		Token:     cfg.Token,
		Logger:    logger,
		Callbacks: console.Callbacks{
			OnStatus: func(s console.Status) {
				fmt.Println("session:", s)
			},
			OnScreenInfo: func(info *protocol.ScreenInfo) {
				for _, m := range info.Monitors {
					marker := " "
					if m.Index == info.ActiveMonitor {
						marker = "*"
					}
					fmt.Printf("%s monitor %d: %s %dx%d\n",
						marker, m.Index, m.Name, m.Width, m.Height)
				}
			},
			OnResolution: func(w, h int) {
				fmt.Printf("stream resolution: %dx%d\n", w, h)
			},
			OnChat: func(msg *protocol.ChatMessage) {
				fmt.Printf("[%s] %s\n", msg.SenderName, msg.Content)
			},
			OnQualityTier: func(tier console.Tier) {
				fmt.Println("quality tier:", tier)
			},
			OnCodecDisabled: func(err error) {
				fmt.Println("h264 disabled, using jpeg:", err)
			},
			OnTransferAck: func(ack *protocol.FileTransferAck) {
				transfers.HandleAck(ctx, ack.TransferID, ack.Accepted, ack.PresignedURL, ack.Message)
			},
		},
	})
	if err != nil {
		return err
	}

	if cfg.DebugAddr != "" {
		go serveDebug(cfg.DebugAddr, client, logger)
	}

	select {
	case <-ctx.Done():
		logger.Info("interrupt, closing session")
		client.Close()
	case <-client.Done():
	}
	return nil
}

// serveDebug exposes /metrics and /status on a local address.
func serveDebug(addr string, client *console.Client, logger *slog.Logger) {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		stats := client.Stats()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"status":           stats.Status.String(),
			"tier":             stats.Tier.String(),
			"fps":              stats.FPS,
			"latency_ms":       stats.LatencyMs,
			"width":            stats.Width,
			"height":           stats.Height,
			"frames_displayed": stats.FramesDisplayed,
			"frames_dropped":   stats.FramesDropped,
			"monitors":         len(stats.Monitors),
		})
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Info("debug endpoint listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Warn("debug endpoint stopped", "error", err)
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
