package x11

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
)

// screenOps are the server requests a commit is made of.
type screenOps interface {
	SetCrtc(p Placement) error
	SetScreenSize(width, height int) error
}

// commitPlan reconfigures the changed CRTCs of plan on a screen of
// width x height. Enabled CRTCs are disabled first so none lies outside the
// screen while it is resized. When a step fails, every CRTC touched so far
// is put back to its placement in current and the screen gets its old size
// again, so a failed commit leaves no output switched off.
func commitPlan(ops screenOps, current []Placement, oldWidth, oldHeight int, plan Plan, width, height int) error {
	before := make(map[randr.Crtc]Placement, len(current))
	for _, p := range current {
		before[p.Crtc] = p
	}

	var (
		disabled []Placement
		applied  []randr.Crtc
		resized  bool
	)
	rollback := func(cause error) error {
		errs := []error{cause}
		for _, crtc := range applied {
			if err := ops.SetCrtc(disabledPlacement(crtc)); err != nil {
				errs = append(errs, fmt.Errorf("rollback: disable crtc %d: %w", crtc, err))
			}
		}
		if resized {
			if err := ops.SetScreenSize(oldWidth, oldHeight); err != nil {
				errs = append(errs, fmt.Errorf("rollback: resize screen to %dx%d: %w", oldWidth, oldHeight, err))
			}
		}
		for _, p := range disabled {
			if err := ops.SetCrtc(p); err != nil {
				errs = append(errs, fmt.Errorf("rollback: restore crtc %d: %w", p.Crtc, err))
			}
		}
		return errors.Join(errs...)
	}

	for _, p := range plan.Changed {
		old, ok := before[p.Crtc]
		if !ok {
			continue
		}
		if err := ops.SetCrtc(disabledPlacement(p.Crtc)); err != nil {
			return rollback(fmt.Errorf("failed to disable crtc %d: %w", p.Crtc, err))
		}
		disabled = append(disabled, old)
	}

	if err := ops.SetScreenSize(width, height); err != nil {
		return rollback(fmt.Errorf("failed to resize screen to %dx%d: %w", width, height, err))
	}
	resized = width != oldWidth || height != oldHeight

	for _, p := range plan.Changed {
		if err := ops.SetCrtc(p); err != nil {
			return rollback(fmt.Errorf("failed to configure crtc %d: %w", p.Crtc, err))
		}
		applied = append(applied, p.Crtc)
	}
	return nil
}

func disabledPlacement(crtc randr.Crtc) Placement {
	return Placement{Crtc: crtc, Rotation: randr.RotationRotate0}
}

// serverOps sends commit steps to the X server.
type serverOps struct {
	c         *Connection
	timestamp xproto.Timestamp
}

func (o serverOps) SetCrtc(p Placement) error {
	return o.c.setCrtc(o.timestamp, p)
}

func (o serverOps) SetScreenSize(width, height int) error {
	mmW, mmH := o.c.physicalSize(width, height)
	return randr.SetScreenSizeChecked(o.c.XUtil.Conn(), o.c.Root, uint16(width), uint16(height), mmW, mmH).Check()
}
