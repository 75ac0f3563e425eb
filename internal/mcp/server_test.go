package mcp

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/1broseidon/monitormemory/internal/ipc"
	"github.com/1broseidon/monitormemory/internal/store"
)

type fakeDaemon struct {
	paused     bool
	reconciled int
	err        error
}

func (f *fakeDaemon) GetStatus() (*ipc.StatusData, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &ipc.StatusData{Paused: f.paused, LastOutcome: "unchanged", DaemonRunning: true}, nil
}

func (f *fakeDaemon) GetMonitors() (*ipc.MonitorsData, error) {
	return &ipc.MonitorsData{Monitors: []ipc.MonitorInfo{{Device: "DP-1", Name: "Dell U2720Q", Width: 2560, Height: 1440}}}, nil
}

func (f *fakeDaemon) Capture() (*ipc.MonitorsData, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.GetMonitors()
}

func (f *fakeDaemon) SetPaused(paused bool) error {
	f.paused = paused
	return nil
}

func (f *fakeDaemon) Reconcile() (*ipc.ReconcileData, error) {
	f.reconciled++
	return &ipc.ReconcileData{Outcome: "applied", Changed: 1}, nil
}

func newTestServer(t *testing.T, content string) (*Server, *fakeDaemon) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.txt")
	if content != "" {
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	d := &fakeDaemon{}
	return NewServer(d, store.New(path)), d
}

func TestHandleSetPausedAndStatus(t *testing.T) {
	s, d := newTestServer(t, "")
	ctx := context.Background()

	if _, out, err := s.handleSetPaused(ctx, nil, SetPausedInput{Paused: true}); err != nil || !out.Paused {
		t.Fatalf("handleSetPaused() = %+v, %v", out, err)
	}
	if !d.paused {
		t.Fatal("daemon was not paused")
	}

	_, status, err := s.handleGetStatus(ctx, nil, GetStatusInput{})
	if err != nil {
		t.Fatalf("handleGetStatus() error: %v", err)
	}
	if !status.Paused || status.LastOutcome != "unchanged" {
		t.Fatalf("handleGetStatus() = %+v", status)
	}
}

func TestHandleReconcile(t *testing.T) {
	s, d := newTestServer(t, "")

	_, out, err := s.handleReconcile(context.Background(), nil, ReconcileInput{})
	if err != nil {
		t.Fatalf("handleReconcile() error: %v", err)
	}
	if out.Outcome != "applied" || out.Changed != 1 || d.reconciled != 1 {
		t.Fatalf("handleReconcile() = %+v (calls %d)", out, d.reconciled)
	}
}

func TestHandleCapture_PropagatesDaemonError(t *testing.T) {
	s, d := newTestServer(t, "")
	d.err = errors.New("failed to connect to daemon")

	if _, _, err := s.handleCapture(context.Background(), nil, CaptureInput{}); err == nil {
		t.Fatal("handleCapture() succeeded, want error")
	}
}

func TestHandleListArrangements(t *testing.T) {
	content := "Old,1920,1080,0,0,0\n\nNew,1080,1920,0,0,1\nOther,1920,1080,1080,0,0\n\n"
	s, _ := newTestServer(t, content)

	tests := []struct {
		name      string
		limit     int
		wantCount int
	}{
		{"all", 0, 2},
		{"limited", 1, 1},
		{"limit above total", 5, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, out, err := s.handleListArrangements(context.Background(), nil, ListArrangementsInput{Limit: tt.limit})
			if err != nil {
				t.Fatalf("handleListArrangements() error: %v", err)
			}
			if out.Total != 2 || len(out.Arrangements) != tt.wantCount {
				t.Fatalf("got total=%d count=%d, want total=2 count=%d", out.Total, len(out.Arrangements), tt.wantCount)
			}
			first := out.Arrangements[0]
			if first.Rank != 0 || len(first.Monitors) != 2 || first.Monitors[0].Name != "New" || first.Monitors[0].Rotation != 1 {
				t.Fatalf("most recent arrangement should come first, got %+v", first)
			}
		})
	}

	if _, _, err := s.handleListArrangements(context.Background(), nil, ListArrangementsInput{Limit: -1}); err == nil {
		t.Fatal("negative limit accepted")
	}
}

func TestHandleListArrangements_EmptyStore(t *testing.T) {
	s, _ := newTestServer(t, "")

	_, out, err := s.handleListArrangements(context.Background(), nil, ListArrangementsInput{})
	if err != nil {
		t.Fatalf("handleListArrangements() error: %v", err)
	}
	if out.Total != 0 || out.Arrangements == nil {
		t.Fatalf("expected an empty, non-nil list, got %+v", out)
	}
}

func TestNewServer_RegistersTools(t *testing.T) {
	s, _ := newTestServer(t, "")
	if s.mcpServer == nil {
		t.Fatal("mcp server not created")
	}
}
