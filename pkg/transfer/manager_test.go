package transfer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type eventRecorder struct {
	mu     sync.Mutex
	events []Event
	ch     chan Event
}

func newEventRecorder() *eventRecorder {
	return &eventRecorder{ch: make(chan Event, 8)}
}

func (r *eventRecorder) record(ev Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
	r.ch <- ev
}

func (r *eventRecorder) wait(t *testing.T) Event {
	t.Helper()
	select {
	case ev := <-r.ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no transfer event")
		return Event{}
	}
}

func TestUploadPutsStagedFile(t *testing.T) {
	content := []byte("the quick brown fox")
	src := filepath.Join(t.TempDir(), "report.txt")
	if err := os.WriteFile(src, content, 0o644); err != nil {
		t.Fatal(err)
	}

	var (
		mu     sync.Mutex
		bodies [][]byte
		method string
	)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, body)
		method = r.Method
		mu.Unlock()
	}))
	defer ts.Close()

	rec := newEventRecorder()
	m := New(Config{OnEvent: rec.record})

	id, name, size, err := m.StageUpload(src)
	if err != nil {
		t.Fatalf("StageUpload: %v", err)
	}
	if name != "report.txt" || size != uint64(len(content)) {
		t.Errorf("staged (%q, %d), want (report.txt, %d)", name, size, len(content))
	}
	if m.Pending() != 1 {
		t.Errorf("Pending = %d, want 1", m.Pending())
	}

	m.HandleAck(context.Background(), id, true, ts.URL+"/put/"+id, "")

	ev := rec.wait(t)
	if ev.Err != nil {
		t.Fatalf("upload event error: %v", ev.Err)
	}
	if !ev.Upload || ev.TransferID != id {
		t.Errorf("event = %+v", ev)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(bodies) != 1 {
		t.Fatalf("server saw %d requests, want exactly 1", len(bodies))
	}
	if method != http.MethodPut {
		t.Errorf("method = %s, want PUT", method)
	}
	if !bytes.Equal(bodies[0], content) {
		t.Errorf("uploaded %q, want %q", bodies[0], content)
	}
	if m.Pending() != 0 {
		t.Errorf("Pending = %d after ack, want 0", m.Pending())
	}
}

func TestDownloadWritesDestination(t *testing.T) {
	content := []byte("binary payload \x00\x01\x02")
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(content)
	}))
	defer ts.Close()

	dest := filepath.Join(t.TempDir(), "fetched.bin")
	rec := newEventRecorder()
	m := New(Config{OnEvent: rec.record})

	id := m.StageDownload(dest)
	m.HandleAck(context.Background(), id, true, ts.URL+"/get/"+id, "")

	ev := rec.wait(t)
	if ev.Err != nil {
		t.Fatalf("download event error: %v", ev.Err)
	}
	if ev.Upload || ev.Path != dest {
		t.Errorf("event = %+v", ev)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("reading destination: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("downloaded %q, want %q", got, content)
	}
}

func TestRejectedAckFailsWithoutHTTP(t *testing.T) {
	requests := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer ts.Close()

	src := filepath.Join(t.TempDir(), "f.txt")
	os.WriteFile(src, []byte("x"), 0o644)

	rec := newEventRecorder()
	m := New(Config{OnEvent: rec.record})

	id, _, _, err := m.StageUpload(src)
	if err != nil {
		t.Fatal(err)
	}
	m.HandleAck(context.Background(), id, false, ts.URL, "quota exceeded")

	ev := rec.wait(t)
	if ev.Err == nil || ev.Err.Error() != "transfer: quota exceeded" {
		t.Errorf("event error = %v, want rejection message", ev.Err)
	}
	if requests != 0 {
		t.Errorf("rejected ack still made %d HTTP requests", requests)
	}
}

func TestHTTPFailureEmitsError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()

	dest := filepath.Join(t.TempDir(), "never.bin")
	rec := newEventRecorder()
	m := New(Config{OnEvent: rec.record})

	id := m.StageDownload(dest)
	m.HandleAck(context.Background(), id, true, ts.URL, "")

	ev := rec.wait(t)
	if ev.Err == nil {
		t.Fatal("500 download reported success")
	}
	if _, err := os.Stat(dest); !errors.Is(err, os.ErrNotExist) {
		t.Error("failed download left a file behind")
	}
}

func TestUnknownTransferAck(t *testing.T) {
	rec := newEventRecorder()
	m := New(Config{OnEvent: rec.record})

	m.HandleAck(context.Background(), "no-such-id", true, "http://unused.invalid", "")

	ev := rec.wait(t)
	if !errors.Is(ev.Err, ErrUnknownTransfer) {
		t.Errorf("event error = %v, want ErrUnknownTransfer", ev.Err)
	}
}
