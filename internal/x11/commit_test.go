package x11

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/BurntSushi/xgb/randr"
)

// recordingOps logs every request and fails the first one equal to failOn.
type recordingOps struct {
	failOn string
	failed bool
	calls  []string
}

func (o *recordingOps) do(call string) error {
	o.calls = append(o.calls, call)
	if call == o.failOn && !o.failed {
		o.failed = true
		return errors.New("BadMatch")
	}
	return nil
}

func (o *recordingOps) SetCrtc(p Placement) error {
	if p.Mode == 0 {
		return o.do(fmt.Sprintf("off %d", p.Crtc))
	}
	return o.do(fmt.Sprintf("set %d@%d,%d", p.Crtc, p.X, p.Y))
}

func (o *recordingOps) SetScreenSize(width, height int) error {
	return o.do(fmt.Sprintf("size %dx%d", width, height))
}

func rotateRightMonitorPlan() Plan {
	staged := map[randr.Crtc]Placement{
		2: {Crtc: 2, Outputs: []randr.Output{20}, Mode: 100, Rotation: randr.RotationRotate90, X: -1080, Y: -420, Width: 1080, Height: 1920},
	}
	return PlanLayout(sideBySide(), 0, 0, staged)
}

func TestCommitPlan(t *testing.T) {
	tests := []struct {
		name      string
		failOn    string
		wantCalls []string
		wantErr   string
	}{
		{
			name:   "success",
			failOn: "",
			wantCalls: []string{
				"off 1", "off 2", "size 3000x1920", "set 1@1080,420", "set 2@0,0",
			},
		},
		{
			name:   "configure fails after another crtc was applied",
			failOn: "set 2@0,0",
			wantCalls: []string{
				"off 1", "off 2", "size 3000x1920", "set 1@1080,420", "set 2@0,0",
				"off 1", "size 3840x1080", "set 1@0,0", "set 2@1920,0",
			},
			wantErr: "failed to configure crtc 2",
		},
		{
			name:   "resize fails",
			failOn: "size 3000x1920",
			wantCalls: []string{
				"off 1", "off 2", "size 3000x1920",
				"set 1@0,0", "set 2@1920,0",
			},
			wantErr: "failed to resize screen",
		},
		{
			name:   "disable fails",
			failOn: "off 2",
			wantCalls: []string{
				"off 1", "off 2",
				"set 1@0,0",
			},
			wantErr: "failed to disable crtc 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ops := &recordingOps{failOn: tt.failOn}
			plan := rotateRightMonitorPlan()

			err := commitPlan(ops, sideBySide(), 3840, 1080, plan, plan.ScreenWidth, plan.ScreenHeight)

			if !reflect.DeepEqual(ops.calls, tt.wantCalls) {
				t.Fatalf("requests:\n got  %v\n want %v", ops.calls, tt.wantCalls)
			}
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("commitPlan() error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("commitPlan() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestCommitPlan_NewCrtcIsSwitchedOffAgain(t *testing.T) {
	current := sideBySide()[:1]
	staged := map[randr.Crtc]Placement{
		2: {Crtc: 2, Outputs: []randr.Output{20}, Mode: 100, Rotation: randr.RotationRotate0, X: 1920, Y: 0, Width: 1920, Height: 1080},
		3: {Crtc: 3, Outputs: []randr.Output{30}, Mode: 100, Rotation: randr.RotationRotate0, X: 3840, Y: 0, Width: 1920, Height: 1080},
	}
	plan := PlanLayout(current, 0, 0, staged)
	ops := &recordingOps{failOn: "set 3@3840,0"}

	err := commitPlan(ops, current, 1920, 1080, plan, plan.ScreenWidth, plan.ScreenHeight)
	if err == nil {
		t.Fatal("commitPlan() succeeded, want error")
	}

	want := []string{
		"size 5760x1080", "set 2@1920,0", "set 3@3840,0",
		"off 2", "size 1920x1080",
	}
	if !reflect.DeepEqual(ops.calls, want) {
		t.Fatalf("requests:\n got  %v\n want %v", ops.calls, want)
	}
}

func TestCommitPlan_ReportsRollbackFailures(t *testing.T) {
	ops := &recordingOps{failOn: "size 3000x1920"}
	plan := rotateRightMonitorPlan()
	restore := &failingRestore{recordingOps: ops}

	err := commitPlan(restore, sideBySide(), 3840, 1080, plan, plan.ScreenWidth, plan.ScreenHeight)
	if err == nil {
		t.Fatal("commitPlan() succeeded, want error")
	}
	if !strings.Contains(err.Error(), "failed to resize screen") || !strings.Contains(err.Error(), "rollback: restore crtc 2") {
		t.Fatalf("error should carry the cause and the rollback failure, got %v", err)
	}
}

// failingRestore rejects restoring crtc 2 to its old position.
type failingRestore struct {
	*recordingOps
}

func (f *failingRestore) SetCrtc(p Placement) error {
	if err := f.recordingOps.SetCrtc(p); err != nil {
		return err
	}
	if p.Crtc == 2 && p.Mode != 0 && p.X == 1920 {
		return errors.New("BadValue")
	}
	return nil
}
