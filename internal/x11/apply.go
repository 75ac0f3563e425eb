package x11

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
)

// ErrOutputNotFound is returned when no enabled output has the given name.
var ErrOutputNotFound = errors.New("output not found or not enabled")

// Target is the requested geometry for one output. X and Y are relative to
// the primary output; Width and Height are the rotated size.
type Target struct {
	X, Y         int
	Width        int
	Height       int
	QuarterTurns int
}

// StageOutput validates t against what the output supports and records it
// for the next CommitStaged. Nothing is sent to the server.
func (c *Connection) StageOutput(name string, t Target) error {
	conn := c.XUtil.Conn()

	resources, err := randr.GetScreenResourcesCurrent(conn, c.Root).Reply()
	if err != nil {
		return fmt.Errorf("failed to get screen resources: %w", err)
	}

	var (
		info *randr.GetOutputInfoReply
		id   randr.Output
	)
	for _, out := range resources.Outputs {
		oi, err := randr.GetOutputInfo(conn, out, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		if string(oi.Name) == name && oi.Connection == randr.ConnectionConnected && oi.Crtc != 0 {
			info, id = oi, out
			break
		}
	}
	if info == nil {
		return fmt.Errorf("%s: %w", name, ErrOutputNotFound)
	}

	crtcInfo, err := randr.GetCrtcInfo(conn, info.Crtc, resources.ConfigTimestamp).Reply()
	if err != nil {
		return fmt.Errorf("failed to get crtc for %s: %w", name, err)
	}

	rotation := RotationBits(t.QuarterTurns)
	if crtcInfo.Rotations&rotation == 0 {
		return fmt.Errorf("%s does not support rotation by %d degrees", name, t.QuarterTurns*90)
	}

	// Modes are listed unrotated.
	modeW, modeH := t.Width, t.Height
	if t.QuarterTurns%2 == 1 {
		modeW, modeH = modeH, modeW
	}
	mode, ok := pickMode(resources.Modes, info.Modes, crtcInfo.Mode, modeW, modeH)
	if !ok {
		return fmt.Errorf("%s has no %dx%d mode", name, modeW, modeH)
	}

	c.mu.Lock()
	c.staged[info.Crtc] = Placement{
		Crtc:     info.Crtc,
		Outputs:  outputsFor(crtcInfo.Outputs, id),
		Mode:     mode,
		Rotation: rotation | (crtcInfo.Rotation & reflectMask),
		X:        t.X,
		Y:        t.Y,
		Width:    t.Width,
		Height:   t.Height,
	}
	c.mu.Unlock()
	return nil
}

// DiscardStaged forgets every staged change.
func (c *Connection) DiscardStaged() {
	c.mu.Lock()
	c.staged = make(map[randr.Crtc]Placement)
	c.mu.Unlock()
}

// CommitStaged applies every staged change as one screen reconfiguration.
// The server is grabbed for the duration so clients never observe a
// partially applied layout.
func (c *Connection) CommitStaged() error {
	c.mu.Lock()
	staged := c.staged
	c.staged = make(map[randr.Crtc]Placement)
	c.mu.Unlock()

	if len(staged) == 0 {
		return nil
	}

	conn := c.XUtil.Conn()
	if err := xproto.GrabServerChecked(conn).Check(); err != nil {
		return fmt.Errorf("failed to grab server: %w", err)
	}
	defer xproto.UngrabServerChecked(conn).Check()

	resources, err := randr.GetScreenResourcesCurrent(conn, c.Root).Reply()
	if err != nil {
		return fmt.Errorf("failed to get screen resources: %w", err)
	}
	current, primary, err := c.activePlacements(resources)
	if err != nil {
		return err
	}
	ox, oy := originOf(current, primary)
	plan := PlanLayout(current, ox, oy, staged)
	if len(plan.Changed) == 0 {
		return nil
	}

	sizeRange, err := randr.GetScreenSizeRange(conn, c.Root).Reply()
	if err != nil {
		return fmt.Errorf("failed to get screen size range: %w", err)
	}
	if plan.ScreenWidth > int(sizeRange.MaxWidth) || plan.ScreenHeight > int(sizeRange.MaxHeight) {
		return fmt.Errorf("layout needs a %dx%d screen, server maximum is %dx%d",
			plan.ScreenWidth, plan.ScreenHeight, sizeRange.MaxWidth, sizeRange.MaxHeight)
	}
	width := max(plan.ScreenWidth, int(sizeRange.MinWidth))
	height := max(plan.ScreenHeight, int(sizeRange.MinHeight))

	geom, err := xproto.GetGeometry(conn, xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return fmt.Errorf("failed to get screen size: %w", err)
	}

	ops := serverOps{c: c, timestamp: resources.ConfigTimestamp}
	return commitPlan(ops, current, int(geom.Width), int(geom.Height), plan, width, height)
}

func (c *Connection) setCrtc(configTimestamp xproto.Timestamp, p Placement) error {
	reply, err := randr.SetCrtcConfig(c.XUtil.Conn(), p.Crtc, xproto.TimeCurrentTime, configTimestamp,
		int16(p.X), int16(p.Y), p.Mode, p.Rotation, p.Outputs).Reply()
	if err != nil {
		return err
	}
	if reply.Status != randr.SetConfigSuccess {
		return fmt.Errorf("server returned status %d", reply.Status)
	}
	return nil
}

// physicalSize keeps the screen DPI reported at connection time.
func (c *Connection) physicalSize(width, height int) (uint32, uint32) {
	screen := xproto.Setup(c.XUtil.Conn()).DefaultScreen(c.XUtil.Conn())
	if screen.WidthInPixels == 0 || screen.HeightInPixels == 0 {
		// 96 DPI
		return uint32(width * 254 / 960), uint32(height * 254 / 960)
	}
	mmW := width * int(screen.WidthInMillimeters) / int(screen.WidthInPixels)
	mmH := height * int(screen.HeightInMillimeters) / int(screen.HeightInPixels)
	return uint32(mmW), uint32(mmH)
}

// pickMode finds a mode of the requested unrotated size among the output's
// modes, preferring the one currently in use.
func pickMode(all []randr.ModeInfo, supported []randr.Mode, current randr.Mode, width, height int) (randr.Mode, bool) {
	sizes := make(map[randr.Mode][2]int, len(all))
	for _, m := range all {
		sizes[randr.Mode(m.Id)] = [2]int{int(m.Width), int(m.Height)}
	}
	fits := func(m randr.Mode) bool {
		s, ok := sizes[m]
		return ok && s[0] == width && s[1] == height
	}

	if current != 0 && fits(current) {
		return current, true
	}
	for _, m := range supported {
		if fits(m) {
			return m, true
		}
	}
	return 0, false
}

// outputsFor keeps the CRTC's current output list, making sure id is on it.
func outputsFor(current []randr.Output, id randr.Output) []randr.Output {
	for _, o := range current {
		if o == id {
			return current
		}
	}
	return append(append([]randr.Output(nil), current...), id)
}
