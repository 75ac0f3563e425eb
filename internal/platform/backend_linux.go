//go:build linux

package platform

import (
	"context"
	"fmt"

	"github.com/1broseidon/monitormemory/internal/arrangement"
	"github.com/1broseidon/monitormemory/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// LinuxBackend wraps an X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn    *x11.Connection
	display string
}

var (
	_ Backend        = (*LinuxBackend)(nil)
	_ ChangeNotifier = (*LinuxBackend)(nil)
	_ Closer         = (*LinuxBackend)(nil)
)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection, display string) *LinuxBackend {
	return &LinuxBackend{conn: conn, display: display}
}

// Open connects to the X server named by display, or $DISPLAY when empty.
func Open(display string) (*LinuxBackend, error) {
	conn, err := x11.NewConnection(display)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return NewLinuxBackend(conn, display), nil
}

// Close closes the underlying X11 connection.
func (b *LinuxBackend) Close() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// EventLoop starts the X11 event loop (blocking).
func (b *LinuxBackend) EventLoop() {
	b.conn.EventLoop()
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil {
	if b == nil || b.conn == nil {
		return nil
	}
	return b.conn.XUtil
}

// RootWindow returns the X11 root window ID.
func (b *LinuxBackend) RootWindow() xproto.Window {
	if b == nil || b.conn == nil {
		return 0
	}
	return b.conn.Root
}

// Snapshot enumerates the active RandR outputs. Positions are relative to
// the primary output and names come from EDID.
func (b *LinuxBackend) Snapshot() (Snapshot, error) {
	outputs, skipped, err := b.conn.GetOutputs()
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{Monitors: make(arrangement.Arrangement, 0, len(outputs))}
	for _, o := range outputs {
		snap.Monitors = append(snap.Monitors, monitorFromOutput(o))
	}
	for _, s := range skipped {
		snap.Skipped = append(snap.Skipped, &EnumerationError{Device: s.Name, Reason: s.Reason})
	}
	return snap, nil
}

// ApplyGeometry stages g for the named output and, unless deferCommit is
// set, commits it immediately.
func (b *LinuxBackend) ApplyGeometry(deviceName string, g arrangement.Geometry, deferCommit bool) error {
	target := x11.Target{
		X:            g.Position.X,
		Y:            g.Position.Y,
		Width:        g.Width,
		Height:       g.Height,
		QuarterTurns: int(g.Rotation),
	}
	if err := b.conn.StageOutput(deviceName, target); err != nil {
		return &ApplyRejectedError{Device: deviceName, Reason: err.Error()}
	}
	if deferCommit {
		return nil
	}
	return b.CommitPending()
}

// CommitPending applies all staged outputs in one server grab.
func (b *LinuxBackend) CommitPending() error {
	if err := b.conn.CommitStaged(); err != nil {
		return fmt.Errorf("commit display configuration: %w", err)
	}
	return nil
}

// DiscardPending drops staged outputs. Nothing has reached the server yet.
func (b *LinuxBackend) DiscardPending() {
	b.conn.DiscardStaged()
}

// WatchChanges reports RandR change notifications.
func (b *LinuxBackend) WatchChanges(ctx context.Context, notify func()) error {
	return x11.WatchScreenChanges(ctx, b.display, notify)
}

func monitorFromOutput(o x11.Output) arrangement.Monitor {
	return arrangement.Monitor{
		DeviceName:  o.Name,
		DisplayName: o.Monitor,
		Geometry: arrangement.Geometry{
			Width:    o.Width,
			Height:   o.Height,
			Position: arrangement.Point{X: o.X, Y: o.Y},
			Rotation: arrangement.Rotation(x11.QuarterTurns(o.Rotation)),
		},
	}
}
