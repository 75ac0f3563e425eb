package ipc

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/1broseidon/monitormemory/internal/arrangement"
	"github.com/1broseidon/monitormemory/internal/daemon"
	"github.com/1broseidon/monitormemory/internal/reconcile"
)

type fakeController struct {
	mu         sync.Mutex
	paused     bool
	live       arrangement.Arrangement
	captureErr error
	captures   int
	reconciles int
}

func (f *fakeController) Status() daemon.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return daemon.Status{
		Paused:      f.paused,
		LastOutcome: "unchanged",
		LastCycle:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Attempts:    3,
		Uptime:      "1m0s",
	}
}

func (f *fakeController) Capture() (arrangement.Arrangement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.captures++
	if f.captureErr != nil {
		return nil, f.captureErr
	}
	return f.live, nil
}

func (f *fakeController) SetPaused(paused bool) {
	f.mu.Lock()
	f.paused = paused
	f.mu.Unlock()
}

func (f *fakeController) ReconcileNow() (reconcile.Outcome, error) {
	f.mu.Lock()
	f.reconciles++
	f.mu.Unlock()
	return reconcile.Outcome{Kind: reconcile.Applied, Changed: 2}, nil
}

func (f *fakeController) Monitors() (arrangement.Arrangement, error) {
	return f.live, nil
}

func startServer(t *testing.T, ctrl Controller) *Client {
	t.Helper()
	// Unix socket paths are length limited; keep it short.
	dir, err := os.MkdirTemp("", "mm-ipc")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	srv, err := NewServer(ctrl, filepath.Join(dir, "s.sock"))
	if err != nil {
		t.Fatalf("NewServer() error: %v", err)
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	t.Cleanup(srv.Stop)
	return NewClientAt(srv.SocketPath())
}

func TestServer_Commands(t *testing.T) {
	ctrl := &fakeController{live: arrangement.Arrangement{
		{DeviceName: "DP-1", DisplayName: "Dell U2720Q", Geometry: arrangement.Geometry{Width: 1440, Height: 2560, Position: arrangement.Point{X: -1440}, Rotation: arrangement.Rotate90}},
	}}
	client := startServer(t, ctrl)

	status, err := client.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus() error: %v", err)
	}
	if !status.DaemonRunning || status.Attempts != 3 || status.LastCycle != "2026-01-02T03:04:05Z" {
		t.Fatalf("GetStatus() = %+v", status)
	}

	if err := client.SetPaused(true); err != nil {
		t.Fatalf("SetPaused(true) error: %v", err)
	}
	if status, _ := client.GetStatus(); !status.Paused {
		t.Fatal("daemon not paused after PAUSE")
	}
	if err := client.SetPaused(false); err != nil {
		t.Fatalf("SetPaused(false) error: %v", err)
	}
	if status, _ := client.GetStatus(); status.Paused {
		t.Fatal("daemon still paused after RESUME")
	}

	monitors, err := client.GetMonitors()
	if err != nil {
		t.Fatalf("GetMonitors() error: %v", err)
	}
	want := MonitorInfo{Device: "DP-1", Name: "Dell U2720Q", X: -1440, Width: 1440, Height: 2560, Rotation: 1}
	if len(monitors.Monitors) != 1 || monitors.Monitors[0] != want {
		t.Fatalf("GetMonitors() = %+v, want [%+v]", monitors.Monitors, want)
	}

	result, err := client.Reconcile()
	if err != nil {
		t.Fatalf("Reconcile() error: %v", err)
	}
	if result.Outcome != "applied" || result.Changed != 2 {
		t.Fatalf("Reconcile() = %+v", result)
	}

	if _, err := client.Capture(); err != nil {
		t.Fatalf("Capture() error: %v", err)
	}
	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()
	if ctrl.captures != 1 || ctrl.reconciles != 1 {
		t.Fatalf("captures=%d reconciles=%d, want 1 each", ctrl.captures, ctrl.reconciles)
	}
}

func TestServer_ErrorsReachClient(t *testing.T) {
	ctrl := &fakeController{captureErr: errors.New("no monitors with complete geometry")}
	client := startServer(t, ctrl)

	_, err := client.Capture()
	if err == nil {
		t.Fatal("Capture() succeeded, want error")
	}
	if !strings.Contains(err.Error(), "no monitors") {
		t.Fatalf("Capture() error = %v, want the daemon's message", err)
	}

	if _, err := client.sendRequest(&Request{Command: "BOGUS"}); err == nil {
		t.Fatal("unknown command succeeded")
	}
}

func TestClient_NoDaemon(t *testing.T) {
	client := NewClientAt(filepath.Join(t.TempDir(), "missing.sock"))
	if err := client.Ping(); err == nil {
		t.Fatal("Ping() succeeded without a daemon")
	}
}
