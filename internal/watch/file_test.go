package watch

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFile_NotifiesOnWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "MonitorRotationMemory")
	path := filepath.Join(dir, "config.txt")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	events := make(chan struct{}, 16)
	errc := make(chan error, 1)
	go func() {
		errc <- File(ctx, path, logger, func() { events <- struct{}{} })
	}()

	// The watcher creates the directory before it starts watching.
	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, err := os.Stat(dir); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("watched directory was not created")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// Keep writing until the watcher is registered and reports.
	timeout := time.After(2 * time.Second)
	for done := false; !done; {
		if err := os.WriteFile(path, []byte("A,1,1,0,0,0\n\n"), 0644); err != nil {
			t.Fatalf("write: %v", err)
		}
		select {
		case <-events:
			done = true
		case <-time.After(20 * time.Millisecond):
		case <-timeout:
			t.Fatal("no notification for a write to the watched file")
		}
	}

	cancel()
	if err := <-errc; err != nil {
		t.Fatalf("File() error: %v", err)
	}
	if !strings.Contains(logs.String(), "arrangement file changed") {
		t.Fatalf("change was not logged through the given logger, got %q", logs.String())
	}
}

func TestFile_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.txt")

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	notified := make(chan struct{}, 16)
	go func() {
		time.Sleep(50 * time.Millisecond)
		_ = os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0644)
	}()

	if err := File(ctx, path, nil, func() { notified <- struct{}{} }); err != nil {
		t.Fatalf("File() error: %v", err)
	}
	if len(notified) != 0 {
		t.Fatal("write to a sibling file triggered a notification")
	}
}
