//go:build !linux && !windows

package platform

import (
	"errors"
	"runtime"

	"github.com/1broseidon/monitormemory/internal/arrangement"
)

// ErrUnsupported is returned on platforms without a display backend.
var ErrUnsupported = errors.New("display backend not available on " + runtime.GOOS)

// UnsupportedBackend fails every operation.
type UnsupportedBackend struct{}

// Open always fails with ErrUnsupported.
func Open(display string) (*UnsupportedBackend, error) {
	return nil, ErrUnsupported
}

func (UnsupportedBackend) Close() {}

func (UnsupportedBackend) Snapshot() (Snapshot, error) {
	return Snapshot{}, ErrUnsupported
}

func (UnsupportedBackend) ApplyGeometry(string, arrangement.Geometry, bool) error {
	return ErrUnsupported
}

func (UnsupportedBackend) CommitPending() error {
	return ErrUnsupported
}

func (UnsupportedBackend) DiscardPending() {}
