package x11

import (
	"sort"

	"github.com/BurntSushi/xgb/randr"
)

const (
	rotationMask = randr.RotationRotate0 | randr.RotationRotate90 | randr.RotationRotate180 | randr.RotationRotate270
	reflectMask  = randr.RotationReflectX | randr.RotationReflectY
)

// Placement is one enabled CRTC. Width and Height are the size on the
// desktop, after rotation.
type Placement struct {
	Crtc     randr.Crtc
	Outputs  []randr.Output
	Mode     randr.Mode
	Rotation uint16
	X, Y     int
	Width    int
	Height   int
}

func (p Placement) sameConfig(o Placement) bool {
	return p.X == o.X && p.Y == o.Y && p.Mode == o.Mode && p.Rotation == o.Rotation
}

// Plan is the screen layout produced by merging staged placements into the
// current one.
type Plan struct {
	// Final holds every enabled CRTC in screen coordinates.
	Final []Placement
	// Changed is the subset of Final that must be reconfigured.
	Changed []Placement

	ScreenWidth  int
	ScreenHeight int
}

// PlanLayout merges staged into current. current is in screen coordinates;
// staged positions are relative to (originX, originY), the screen position
// of the primary output. The merged layout is translated so its top-left
// corner sits at 0,0, as X requires.
func PlanLayout(current []Placement, originX, originY int, staged map[randr.Crtc]Placement) Plan {
	before := make(map[randr.Crtc]Placement, len(current))
	final := make([]Placement, 0, len(current)+len(staged))
	for _, cur := range current {
		before[cur.Crtc] = cur
		if s, ok := staged[cur.Crtc]; ok {
			s.X += originX
			s.Y += originY
			final = append(final, s)
			continue
		}
		final = append(final, cur)
	}

	var extra []Placement
	for crtc, s := range staged {
		if _, ok := before[crtc]; ok {
			continue
		}
		s.X += originX
		s.Y += originY
		extra = append(extra, s)
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i].Crtc < extra[j].Crtc })
	final = append(final, extra...)

	plan := Plan{Final: final}
	if len(final) == 0 {
		return plan
	}

	minX, minY := final[0].X, final[0].Y
	for _, p := range final[1:] {
		minX = min(minX, p.X)
		minY = min(minY, p.Y)
	}
	for i := range final {
		final[i].X -= minX
		final[i].Y -= minY
		plan.ScreenWidth = max(plan.ScreenWidth, final[i].X+final[i].Width)
		plan.ScreenHeight = max(plan.ScreenHeight, final[i].Y+final[i].Height)

		if prev, ok := before[final[i].Crtc]; !ok || !prev.sameConfig(final[i]) {
			plan.Changed = append(plan.Changed, final[i])
		}
	}
	return plan
}

// originOf returns the screen position that relative coordinates are
// measured from: the primary CRTC, or the top-left-most one when there is
// no primary.
func originOf(placements []Placement, primary randr.Crtc) (int, int) {
	if len(placements) == 0 {
		return 0, 0
	}
	best := placements[0]
	for _, p := range placements {
		if primary != 0 && p.Crtc == primary {
			return p.X, p.Y
		}
		if p.Y < best.Y || (p.Y == best.Y && p.X < best.X) {
			best = p
		}
	}
	return best.X, best.Y
}

// QuarterTurns converts RandR rotation bits to counterclockwise quarter
// turns in 0..3.
func QuarterTurns(rotation uint16) int {
	switch rotation & rotationMask {
	case randr.RotationRotate90:
		return 1
	case randr.RotationRotate180:
		return 2
	case randr.RotationRotate270:
		return 3
	default:
		return 0
	}
}

// RotationBits is the inverse of QuarterTurns.
func RotationBits(quarterTurns int) uint16 {
	switch quarterTurns {
	case 1:
		return randr.RotationRotate90
	case 2:
		return randr.RotationRotate180
	case 3:
		return randr.RotationRotate270
	default:
		return randr.RotationRotate0
	}
}
