// Package reconcile converges the live monitor arrangement to the stored
// arrangement it matches, or records it when it has never been seen.
package reconcile

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/1broseidon/monitormemory/internal/arrangement"
	"github.com/1broseidon/monitormemory/internal/platform"
)

// ErrUnassignedTarget means a matched arrangement could not be paired with
// the live one. FindMatch and PairUp agree on shape, so this is a bug.
var ErrUnassignedTarget = errors.New("matched arrangement left a record unassigned")

// FailedError reports that the display refused the change for Device.
// Nothing was committed.
type FailedError struct {
	Device string
	Err    error
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("reconcile failed at %s: %v", e.Device, e.Err)
}

func (e *FailedError) Unwrap() error {
	return e.Err
}

// Kind classifies a successful cycle.
type Kind int

const (
	// Recorded: the live arrangement was new and has been appended.
	Recorded Kind = iota + 1
	// Applied: at least one monitor was changed.
	Applied
	// Unchanged: the live arrangement already matched.
	Unchanged
	// Paused: the cycle was suppressed.
	Paused
)

func (k Kind) String() string {
	switch k {
	case Recorded:
		return "recorded"
	case Applied:
		return "applied"
	case Unchanged:
		return "unchanged"
	case Paused:
		return "paused"
	default:
		return "unknown"
	}
}

// Outcome is the result of one reconcile cycle. Changed counts monitors
// reconfigured when Kind is Applied.
type Outcome struct {
	Kind    Kind
	Changed int
}

func (o Outcome) String() string {
	if o.Kind == Applied {
		return fmt.Sprintf("applied(%d)", o.Changed)
	}
	return o.Kind.String()
}

// Store is the persistence the engine needs.
type Store interface {
	Load() ([]arrangement.Arrangement, error)
	Append(arrangement.Arrangement) error
}

// Context holds the state shared by every reconcile entry point: the gate
// that serializes cycles and the pause flag. The pause flag is read once at
// the top of a cycle.
type Context struct {
	gate   sync.Mutex
	paused atomic.Bool
}

// NewContext returns a context with the given initial pause state.
func NewContext(paused bool) *Context {
	rc := &Context{}
	rc.paused.Store(paused)
	return rc
}

// SetPaused sets the pause flag. A cycle already running is not affected.
func (rc *Context) SetPaused(paused bool) {
	rc.paused.Store(paused)
}

// Paused reports the pause flag.
func (rc *Context) Paused() bool {
	return rc.paused.Load()
}

// Engine runs reconcile cycles against a store and a display backend.
type Engine struct {
	store   Store
	backend platform.Backend
	logger  *slog.Logger
}

// NewEngine creates an engine. A nil logger discards output.
func NewEngine(store Store, backend platform.Backend, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{store: store, backend: backend, logger: logger}
}

// Reconcile converges the display to the stored arrangement matching live,
// or records live when nothing matches. It blocks while another cycle
// holds rc.
func (e *Engine) Reconcile(rc *Context, live arrangement.Arrangement) (Outcome, error) {
	rc.gate.Lock()
	defer rc.gate.Unlock()

	if rc.Paused() {
		return Outcome{Kind: Paused}, nil
	}
	return e.reconcile(live)
}

// RunCycle enumerates the live monitors and reconciles them.
func (e *Engine) RunCycle(rc *Context) (Outcome, error) {
	rc.gate.Lock()
	defer rc.gate.Unlock()

	if rc.Paused() {
		return Outcome{Kind: Paused}, nil
	}
	live, err := e.snapshot()
	if err != nil {
		return Outcome{}, err
	}
	return e.reconcile(live)
}

// Capture appends the live arrangement to the store unconditionally. It
// ignores the pause flag.
func (e *Engine) Capture(rc *Context) (arrangement.Arrangement, error) {
	rc.gate.Lock()
	defer rc.gate.Unlock()

	live, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	if err := e.store.Append(live); err != nil {
		return nil, fmt.Errorf("capture arrangement: %w", err)
	}
	e.logger.Info("captured arrangement", "monitors", len(live))
	return live, nil
}

// Snapshot enumerates the live monitors without reconciling.
func (e *Engine) Snapshot() (arrangement.Arrangement, error) {
	return e.snapshot()
}

func (e *Engine) snapshot() (arrangement.Arrangement, error) {
	snap, err := e.backend.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("enumerate monitors: %w", err)
	}
	for _, skipped := range snap.Skipped {
		e.logger.Warn("skipping monitor", "device", skipped.Device, "reason", skipped.Reason)
	}
	if len(snap.Monitors) == 0 {
		return nil, platform.ErrNoMonitors
	}
	return snap.Monitors, nil
}

func (e *Engine) reconcile(live arrangement.Arrangement) (Outcome, error) {
	stored, err := e.store.Load()
	if err != nil {
		return Outcome{}, fmt.Errorf("load arrangements: %w", err)
	}

	target, ok := arrangement.FindMatch(live, stored)
	if !ok {
		if err := e.store.Append(live); err != nil {
			return Outcome{}, fmt.Errorf("record arrangement: %w", err)
		}
		e.logger.Info("recorded new arrangement", "monitors", len(live))
		return Outcome{Kind: Recorded}, nil
	}

	pairs, ok := arrangement.PairUp(live, target)
	if !ok {
		panic(ErrUnassignedTarget)
	}

	changed := 0
	for _, p := range pairs {
		if !p.Changed() {
			continue
		}
		e.logger.Debug("staging monitor", "device", p.Live.DeviceName, "from", p.Live.Geometry.String(), "to", p.Target.Geometry.String())
		if err := e.backend.ApplyGeometry(p.Live.DeviceName, p.Target.Geometry, true); err != nil {
			e.backend.DiscardPending()
			return Outcome{}, &FailedError{Device: p.Live.DeviceName, Err: err}
		}
		changed++
	}
	if changed == 0 {
		return Outcome{Kind: Unchanged}, nil
	}

	if err := e.backend.CommitPending(); err != nil {
		return Outcome{}, fmt.Errorf("commit %d staged monitors: %w", changed, err)
	}
	e.logger.Info("applied arrangement", "changed", changed)
	return Outcome{Kind: Applied, Changed: changed}, nil
}
