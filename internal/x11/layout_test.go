package x11

import (
	"testing"

	"github.com/BurntSushi/xgb/randr"
)

func sideBySide() []Placement {
	return []Placement{
		{Crtc: 1, Outputs: []randr.Output{10}, Mode: 100, Rotation: randr.RotationRotate0, X: 0, Y: 0, Width: 1920, Height: 1080},
		{Crtc: 2, Outputs: []randr.Output{20}, Mode: 100, Rotation: randr.RotationRotate0, X: 1920, Y: 0, Width: 1920, Height: 1080},
	}
}

func TestPlanLayout_RotateAndMoveLeft(t *testing.T) {
	staged := map[randr.Crtc]Placement{
		2: {Crtc: 2, Outputs: []randr.Output{20}, Mode: 100, Rotation: randr.RotationRotate90, X: -1080, Y: -420, Width: 1080, Height: 1920},
	}

	plan := PlanLayout(sideBySide(), 0, 0, staged)

	if plan.ScreenWidth != 3000 || plan.ScreenHeight != 1920 {
		t.Fatalf("screen = %dx%d, want 3000x1920", plan.ScreenWidth, plan.ScreenHeight)
	}
	if got := plan.Final[0]; got.X != 1080 || got.Y != 420 {
		t.Errorf("primary moved to %d,%d, want 1080,420", got.X, got.Y)
	}
	if got := plan.Final[1]; got.X != 0 || got.Y != 0 || got.Rotation != randr.RotationRotate90 {
		t.Errorf("rotated crtc = %+v, want at 0,0 rotated", got)
	}
	if len(plan.Changed) != 2 {
		t.Fatalf("changed = %d crtcs, want 2 (translation moves the primary too)", len(plan.Changed))
	}
}

func TestPlanLayout_IdenticalStageChangesNothing(t *testing.T) {
	staged := map[randr.Crtc]Placement{
		2: {Crtc: 2, Outputs: []randr.Output{20}, Mode: 100, Rotation: randr.RotationRotate0, X: 1920, Y: 0, Width: 1920, Height: 1080},
	}

	plan := PlanLayout(sideBySide(), 0, 0, staged)

	if len(plan.Changed) != 0 {
		t.Fatalf("changed = %+v, want none", plan.Changed)
	}
	if plan.ScreenWidth != 3840 || plan.ScreenHeight != 1080 {
		t.Fatalf("screen = %dx%d, want 3840x1080", plan.ScreenWidth, plan.ScreenHeight)
	}
}

func TestPlanLayout_StagedPositionsAreRelativeToOrigin(t *testing.T) {
	current := []Placement{
		{Crtc: 1, Mode: 100, Rotation: randr.RotationRotate0, X: 1920, Y: 0, Width: 1920, Height: 1080},
		{Crtc: 2, Mode: 100, Rotation: randr.RotationRotate0, X: 0, Y: 0, Width: 1920, Height: 1080},
	}
	ox, oy := originOf(current, 1)
	if ox != 1920 || oy != 0 {
		t.Fatalf("originOf() = %d,%d, want 1920,0", ox, oy)
	}

	staged := map[randr.Crtc]Placement{
		2: {Crtc: 2, Mode: 100, Rotation: randr.RotationRotate0, X: -1920, Y: 0, Width: 1920, Height: 1080},
	}
	if plan := PlanLayout(current, ox, oy, staged); len(plan.Changed) != 0 {
		t.Fatalf("changed = %+v, want none", plan.Changed)
	}
}

func TestOriginOf_NoPrimaryUsesTopLeft(t *testing.T) {
	placements := []Placement{
		{Crtc: 1, X: 500, Y: 0},
		{Crtc: 2, X: 0, Y: 300},
		{Crtc: 3, X: 100, Y: 0},
	}
	if x, y := originOf(placements, 0); x != 100 || y != 0 {
		t.Fatalf("originOf() = %d,%d, want 100,0", x, y)
	}
}

func TestQuarterTurns(t *testing.T) {
	for q := 0; q < 4; q++ {
		if got := QuarterTurns(RotationBits(q)); got != q {
			t.Errorf("QuarterTurns(RotationBits(%d)) = %d", q, got)
		}
	}
	if got := QuarterTurns(randr.RotationRotate270 | randr.RotationReflectX); got != 3 {
		t.Errorf("reflection bits should be ignored, got %d", got)
	}
}
