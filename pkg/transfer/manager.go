// Package transfer performs the out-of-band half of file transfers. The
// session protocol only negotiates: a FileTransferRequest goes up, a
// FileTransferAck comes back carrying a presigned URL, and the bytes
// themselves move over plain HTTP against that URL.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// ErrUnknownTransfer is returned for acks whose ID was never staged.
var ErrUnknownTransfer = errors.New("transfer: unknown transfer id")

// Event reports the outcome of one transfer.
type Event struct {
	TransferID string
	Upload     bool

	// Path is the local file involved: the source for uploads, the
	// destination for downloads.
	Path string

	// Err is nil on success. Rejected acks and HTTP failures both
	// surface here.
	Err error
}

// Config configures a Manager.
type Config struct {
	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// OnEvent receives the outcome of every staged transfer. It is
	// called from the goroutine moving the bytes.
	OnEvent func(ev Event)
}

// Manager tracks staged transfers by ID and reacts to acks.
type Manager struct {
	client  *http.Client
	logger  *slog.Logger
	onEvent func(Event)

	mu      sync.Mutex
	pending map[string]*pendingTransfer
}

type pendingTransfer struct {
	upload bool
	path   string
}

// New creates a Manager.
func New(cfg Config) *Manager {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Manager{
		client:  cfg.HTTPClient,
		logger:  cfg.Logger,
		onEvent: cfg.OnEvent,
		pending: make(map[string]*pendingTransfer),
	}
}

// StageUpload registers a local file for upload and returns the transfer ID
// plus the name and size to put in the FileTransferRequest.
func (m *Manager) StageUpload(localPath string) (id, fileName string, size uint64, err error) {
	info, err := os.Stat(localPath)
	if err != nil {
		return "", "", 0, fmt.Errorf("transfer: stat %s: %w", localPath, err)
	}
	if info.IsDir() {
		return "", "", 0, fmt.Errorf("transfer: %s is a directory", localPath)
	}

	id = uuid.NewString()
	m.mu.Lock()
	m.pending[id] = &pendingTransfer{upload: true, path: localPath}
	m.mu.Unlock()
	return id, filepath.Base(localPath), uint64(info.Size()), nil
}

// StageDownload registers a local destination for a download and returns
// the transfer ID to put in the FileTransferRequest.
func (m *Manager) StageDownload(destPath string) string {
	id := uuid.NewString()
	m.mu.Lock()
	m.pending[id] = &pendingTransfer{path: destPath}
	m.mu.Unlock()
	return id
}

// Pending reports how many transfers are staged or in flight.
func (m *Manager) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// HandleAck reacts to the server's answer for one staged transfer. Accepted
// transfers move their bytes on a new goroutine; the outcome arrives through
// OnEvent. Rejections report immediately.
func (m *Manager) HandleAck(ctx context.Context, transferID string, accepted bool, presignedURL, message string) {
	m.mu.Lock()
	p, ok := m.pending[transferID]
	delete(m.pending, transferID)
	m.mu.Unlock()

	if !ok {
		m.logger.Warn("ack for unknown transfer", "transfer_id", transferID)
		m.emit(Event{TransferID: transferID, Err: ErrUnknownTransfer})
		return
	}

	if !accepted {
		if message == "" {
			message = "rejected"
		}
		m.emit(Event{
			TransferID: transferID,
			Upload:     p.upload,
			Path:       p.path,
			Err:        fmt.Errorf("transfer: %s", message),
		})
		return
	}

	go func() {
		var err error
		if p.upload {
			err = m.put(ctx, presignedURL, p.path)
		} else {
			err = m.get(ctx, presignedURL, p.path)
		}
		if err != nil {
			m.logger.Warn("transfer failed",
				"transfer_id", transferID, "upload", p.upload, "error", err)
		}
		m.emit(Event{TransferID: transferID, Upload: p.upload, Path: p.path, Err: err})
	}()
}

// put streams the staged file to the presigned URL.
func (m *Manager) put(ctx context.Context, url, localPath string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("transfer: open %s: %w", localPath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("transfer: stat %s: %w", localPath, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, f)
	if err != nil {
		return fmt.Errorf("transfer: build request: %w", err)
	}
	req.ContentLength = info.Size()
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("transfer: put: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("transfer: put: unexpected status %s", resp.Status)
	}
	return nil
}

// get downloads the presigned URL into the staged destination, writing
// through a temp file so a failed download never leaves a partial result.
func (m *Manager) get(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("transfer: build request: %w", err)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("transfer: get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("transfer: get: unexpected status %s", resp.Status)
	}

	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".download-*")
	if err != nil {
		return fmt.Errorf("transfer: create temp: %w", err)
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("transfer: download: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("transfer: close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), destPath); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("transfer: finalize %s: %w", destPath, err)
	}
	return nil
}

func (m *Manager) emit(ev Event) {
	if m.onEvent != nil {
		m.onEvent(ev)
	}
}
