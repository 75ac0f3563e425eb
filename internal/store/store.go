// Package store persists known monitor arrangements in an append-only text
// file. The file is re-read on every load; nothing is cached between calls,
// so hand edits take effect on the next reconcile.
package store

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/1broseidon/monitormemory/internal/arrangement"
	"github.com/1broseidon/monitormemory/internal/runtimepath"
)

// Store is the arrangement file at a fixed path.
type Store struct {
	path string
}

// New returns a store backed by the file at path.
func New(path string) *Store {
	return &Store{path: path}
}

// Open returns the store at the per-user default location.
func Open() (*Store, error) {
	path, err := runtimepath.StorePath()
	if err != nil {
		return nil, fmt.Errorf("resolve arrangement store path: %w", err)
	}
	return New(path), nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load parses every stored arrangement, most recently appended first.
// A missing file yields no arrangements; a malformed line fails the load.
func (s *Store) Load() ([]arrangement.Arrangement, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()

	arrs, err := arrangement.ParseAll(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	return arrs, nil
}

// Append writes a as a new block at the end of the file, creating the
// directory and file when missing. Existing content is never rewritten.
func (s *Store) Append(a arrangement.Arrangement) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("refusing to store arrangement: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create arrangement directory: %w", err)
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open %s for append: %w", s.path, err)
	}
	defer f.Close()

	lead, err := separatorNeeded(f)
	if err != nil {
		return fmt.Errorf("inspect %s: %w", s.path, err)
	}

	data := append(lead, arrangement.Serialize(a)...)
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("append to %s: %w", s.path, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", s.path, err)
	}
	return nil
}

// separatorNeeded returns the bytes that must precede a new block so it
// cannot merge with a previous, possibly truncated, one.
func separatorNeeded(f *os.File) ([]byte, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := info.Size()
	if size == 0 {
		return nil, nil
	}

	n := int64(2)
	if size < n {
		n = size
	}
	tail := make([]byte, n)
	if _, err := f.ReadAt(tail, size-n); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	tail = bytes.ReplaceAll(tail, []byte("\r"), nil)

	switch {
	case bytes.HasSuffix(tail, []byte("\n\n")):
		return nil, nil
	case size == 1 && bytes.Equal(tail, []byte("\n")):
		return nil, nil
	case bytes.HasSuffix(tail, []byte("\n")):
		return []byte("\n"), nil
	default:
		return []byte("\n\n"), nil
	}
}
