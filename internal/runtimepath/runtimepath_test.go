package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestDir_UsesXDGRuntimeDirWhenSet(t *testing.T) {
	td := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", td)

	got, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}
	if got != td {
		t.Fatalf("Dir() = %q, want %q", got, td)
	}
}

func TestDir_FallbacksWhenXDGRuntimeDirMissing(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uid-based runtime dirs are unix only")
	}
	t.Setenv("XDG_RUNTIME_DIR", "")

	got, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}
	if got == "" {
		t.Fatal("Dir() returned empty path")
	}

	wantRun := fmt.Sprintf("/run/user/%d", os.Getuid())
	wantTmp := filepath.Join(os.TempDir(), fmt.Sprintf("monitormemory-runtime-%d", os.Getuid()))
	if got != wantRun && got != wantTmp {
		t.Fatalf("Dir() = %q, want %q or %q", got, wantRun, wantTmp)
	}
}

func TestSocketPath(t *testing.T) {
	td := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", td)

	socket, err := SocketPath()
	if err != nil {
		t.Fatalf("SocketPath() error: %v", err)
	}
	if socket != filepath.Join(td, "monitormemory.sock") {
		t.Fatalf("SocketPath() = %q", socket)
	}
}

func TestStorePath_UsesXDGDataHome(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("LocalAppData is resolved through the known-folder API")
	}
	td := t.TempDir()
	t.Setenv("XDG_DATA_HOME", td)

	got, err := StorePath()
	if err != nil {
		t.Fatalf("StorePath() error: %v", err)
	}
	want := filepath.Join(td, "MonitorRotationMemory", "config.txt")
	if got != want {
		t.Fatalf("StorePath() = %q, want %q", got, want)
	}
}

func TestStorePath_IgnoresRelativeXDGDataHome(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("LocalAppData is resolved through the known-folder API")
	}
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_DATA_HOME", "relative/dir")

	got, err := StorePath()
	if err != nil {
		t.Fatalf("StorePath() error: %v", err)
	}
	if !strings.HasPrefix(got, filepath.Join(home, ".local", "share")) {
		t.Fatalf("StorePath() = %q, want it under %s/.local/share", got, home)
	}
}
