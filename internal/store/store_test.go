package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/1broseidon/monitormemory/internal/arrangement"
)

func single(name string, w, h int) arrangement.Arrangement {
	return arrangement.Arrangement{{DisplayName: name, Geometry: arrangement.Geometry{Width: w, Height: h}}}
}

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "nope", "config.txt"))

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("Load() = %v, want empty", got)
	}
}

func TestAppend_CreatesDirectoryAndWritesBlock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "MonitorRotationMemory", "config.txt")
	s := New(path)

	arr := arrangement.Arrangement{
		{DeviceName: "DP-1", DisplayName: "Dell U2720Q", Geometry: arrangement.Geometry{Width: 2560, Height: 1440}},
		{DeviceName: "DP-2", DisplayName: "Dell U2720Q", Geometry: arrangement.Geometry{Width: 1440, Height: 2560, Position: arrangement.Point{X: 2560, Y: -800}, Rotation: arrangement.Rotate90}},
	}
	if err := s.Append(arr); err != nil {
		t.Fatalf("Append() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := "Dell U2720Q,2560,1440,0,0,0\nDell U2720Q,1440,2560,2560,-800,1\n\n"
	if string(data) != want {
		t.Fatalf("file = %q, want %q", data, want)
	}
}

func TestAppend_NewestLoadsFirst(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "config.txt"))

	for _, name := range []string{"first", "second", "third"} {
		if err := s.Append(single(name, 1920, 1080)); err != nil {
			t.Fatalf("Append(%s) error: %v", name, err)
		}
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	want := []string{"third", "second", "first"}
	if len(got) != len(want) {
		t.Fatalf("Load() returned %d arrangements, want %d", len(got), len(want))
	}
	for i, name := range want {
		if got[i][0].DisplayName != name {
			t.Errorf("Load()[%d] = %q, want %q", i, got[i][0].DisplayName, name)
		}
	}
}

func TestAppend_DoesNotMergeWithUnterminatedBlock(t *testing.T) {
	tests := []struct {
		name     string
		existing string
	}{
		{"no trailing newline", "Hand,800,600,0,0,0"},
		{"single trailing newline", "Hand,800,600,0,0,0\n"},
		{"crlf terminated", "Hand,800,600,0,0,0\r\n\r\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.txt")
			if err := os.WriteFile(path, []byte(tt.existing), 0644); err != nil {
				t.Fatalf("write: %v", err)
			}
			s := New(path)
			if err := s.Append(single("New", 1920, 1080)); err != nil {
				t.Fatalf("Append() error: %v", err)
			}

			got, err := s.Load()
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			if len(got) != 2 {
				t.Fatalf("Load() returned %d arrangements, want 2: %+v", len(got), got)
			}
			if got[0][0].DisplayName != "New" || got[1][0].DisplayName != "Hand" {
				t.Fatalf("unexpected order: %+v", got)
			}
		})
	}
}

func TestAppend_RejectsInvalidArrangement(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.txt")
	s := New(path)

	if err := s.Append(arrangement.Arrangement{}); err == nil {
		t.Fatal("Append(empty) succeeded, want error")
	}
	if err := s.Append(single("Dell\nU2720Q,1,1,0,0,0", 1920, 1080)); err == nil {
		t.Fatal("Append() accepted a display name with a line break")
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("file should not be created for a rejected append, stat err = %v", err)
	}
}

func TestLoad_MalformedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.txt")
	if err := os.WriteFile(path, []byte("Good,1920,1080,0,0,0\n\nBroken line\n\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := New(path).Load()
	if !errors.Is(err, arrangement.ErrMalformedConfig) {
		t.Fatalf("Load() error = %v, want ErrMalformedConfig", err)
	}
}
