package platform

import (
	"context"
	"errors"
	"fmt"

	"github.com/1broseidon/monitormemory/internal/arrangement"
)

// ErrNoMonitors is returned when enumeration produced no usable monitor.
var ErrNoMonitors = errors.New("no monitors with complete geometry")

// EnumerationError reports a device the OS could not describe completely.
// The device is left out of the snapshot.
type EnumerationError struct {
	Device string
	Reason string
}

func (e *EnumerationError) Error() string {
	return fmt.Sprintf("enumerate %s: %s", e.Device, e.Reason)
}

// ApplyRejectedError reports that the OS refused a geometry change.
type ApplyRejectedError struct {
	Device string
	Reason string
}

func (e *ApplyRejectedError) Error() string {
	return fmt.Sprintf("apply geometry to %s rejected: %s", e.Device, e.Reason)
}

// Snapshot is the live monitor set as enumerated by the OS.
type Snapshot struct {
	Monitors arrangement.Arrangement
	Skipped  []*EnumerationError
}

// Snapshotter enumerates the attached monitors.
type Snapshotter interface {
	Snapshot() (Snapshot, error)
}

// Applier changes display geometry in two phases. ApplyGeometry with
// deferCommit stages a change that takes effect only at CommitPending, so a
// batch never passes through an intermediate layout. DiscardPending drops
// staged changes after a failure.
type Applier interface {
	ApplyGeometry(deviceName string, g arrangement.Geometry, deferCommit bool) error
	CommitPending() error
	DiscardPending()
}

// Backend is the full display capability used by the reconciler.
type Backend interface {
	Snapshotter
	Applier
}

// ChangeNotifier is implemented by backends that can report display
// topology changes. WatchChanges blocks until ctx is done or the event
// source fails, calling notify for every change.
type ChangeNotifier interface {
	WatchChanges(ctx context.Context, notify func()) error
}

// Closer is implemented by backends holding OS handles.
type Closer interface {
	Close()
}
