// Package testutil provides fakes shared by package tests.
package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/1broseidon/monitormemory/internal/arrangement"
	"github.com/1broseidon/monitormemory/internal/platform"
)

// ApplyCall records one ApplyGeometry invocation.
type ApplyCall struct {
	Device      string
	Geometry    arrangement.Geometry
	DeferCommit bool
}

// FakeDisplay is an in-memory display backend. Committed geometry is
// written back to the monitor list so a following Snapshot sees it.
type FakeDisplay struct {
	mu sync.Mutex

	monitors    arrangement.Arrangement
	skipped     []*platform.EnumerationError
	snapshotErr error
	reject      map[string]string
	commitErr   error

	staged   map[string]arrangement.Geometry
	applies  []ApplyCall
	commits  int
	discards int
	notify   func()
}

var (
	_ platform.Backend        = (*FakeDisplay)(nil)
	_ platform.ChangeNotifier = (*FakeDisplay)(nil)
)

// NewFakeDisplay returns a display showing monitors.
func NewFakeDisplay(monitors arrangement.Arrangement) *FakeDisplay {
	return &FakeDisplay{
		monitors: clone(monitors),
		reject:   make(map[string]string),
		staged:   make(map[string]arrangement.Geometry),
	}
}

// SetMonitors replaces the live monitors, as a hot-plug would, and fires
// the change notification when someone is watching.
func (f *FakeDisplay) SetMonitors(monitors arrangement.Arrangement) {
	f.mu.Lock()
	f.monitors = clone(monitors)
	notify := f.notify
	f.mu.Unlock()
	if notify != nil {
		notify()
	}
}

// Monitors returns the current live monitors.
func (f *FakeDisplay) Monitors() arrangement.Arrangement {
	f.mu.Lock()
	defer f.mu.Unlock()
	return clone(f.monitors)
}

// Watched reports whether WatchChanges is running.
func (f *FakeDisplay) Watched() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.notify != nil
}

// SetSkipped makes Snapshot report devices it could not describe.
func (f *FakeDisplay) SetSkipped(skipped ...*platform.EnumerationError) {
	f.mu.Lock()
	f.skipped = skipped
	f.mu.Unlock()
}

// FailSnapshot makes Snapshot return err until called again with nil.
func (f *FakeDisplay) FailSnapshot(err error) {
	f.mu.Lock()
	f.snapshotErr = err
	f.mu.Unlock()
}

// Reject makes ApplyGeometry refuse device with reason. An empty reason
// clears the rejection.
func (f *FakeDisplay) Reject(device, reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if reason == "" {
		delete(f.reject, device)
		return
	}
	f.reject[device] = reason
}

// FailCommit makes CommitPending return err.
func (f *FakeDisplay) FailCommit(err error) {
	f.mu.Lock()
	f.commitErr = err
	f.mu.Unlock()
}

// Applies returns every ApplyGeometry call so far.
func (f *FakeDisplay) Applies() []ApplyCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ApplyCall(nil), f.applies...)
}

// Commits returns the number of CommitPending calls.
func (f *FakeDisplay) Commits() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.commits
}

// Discards returns the number of DiscardPending calls.
func (f *FakeDisplay) Discards() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.discards
}

func (f *FakeDisplay) Snapshot() (platform.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.snapshotErr != nil {
		return platform.Snapshot{}, f.snapshotErr
	}
	return platform.Snapshot{
		Monitors: clone(f.monitors),
		Skipped:  append([]*platform.EnumerationError(nil), f.skipped...),
	}, nil
}

func (f *FakeDisplay) ApplyGeometry(deviceName string, g arrangement.Geometry, deferCommit bool) error {
	f.mu.Lock()
	f.applies = append(f.applies, ApplyCall{Device: deviceName, Geometry: g, DeferCommit: deferCommit})
	if reason, ok := f.reject[deviceName]; ok {
		f.mu.Unlock()
		return &platform.ApplyRejectedError{Device: deviceName, Reason: reason}
	}
	if f.index(deviceName) < 0 {
		f.mu.Unlock()
		return &platform.ApplyRejectedError{Device: deviceName, Reason: "no such device"}
	}
	f.staged[deviceName] = g
	f.mu.Unlock()

	if deferCommit {
		return nil
	}
	return f.CommitPending()
}

func (f *FakeDisplay) CommitPending() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commits++
	if f.commitErr != nil {
		return f.commitErr
	}
	for dev, g := range f.staged {
		if i := f.index(dev); i >= 0 {
			f.monitors[i].Geometry = g
		}
	}
	f.staged = make(map[string]arrangement.Geometry)
	return nil
}

func (f *FakeDisplay) DiscardPending() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.discards++
	f.staged = make(map[string]arrangement.Geometry)
}

// WatchChanges calls notify on every SetMonitors until ctx is done.
func (f *FakeDisplay) WatchChanges(ctx context.Context, notify func()) error {
	f.mu.Lock()
	if f.notify != nil {
		f.mu.Unlock()
		return errors.New("fake display already watched")
	}
	f.notify = notify
	f.mu.Unlock()

	<-ctx.Done()

	f.mu.Lock()
	f.notify = nil
	f.mu.Unlock()
	return nil
}

func (f *FakeDisplay) index(device string) int {
	for i, m := range f.monitors {
		if m.DeviceName == device {
			return i
		}
	}
	return -1
}

func clone(a arrangement.Arrangement) arrangement.Arrangement {
	if a == nil {
		return nil
	}
	return append(arrangement.Arrangement(nil), a...)
}
