package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
)

// Output is a connected RandR output driving an enabled CRTC.
type Output struct {
	ID   randr.Output
	Crtc randr.Crtc
	// Name is the connector name, e.g. "DP-1".
	Name string
	// Monitor is the EDID monitor name, or Name when EDID is unavailable.
	Monitor string
	Primary bool

	// Position relative to the primary output.
	X, Y     int
	Width    int
	Height   int
	Rotation uint16
}

// SkippedOutput is a connected, enabled output whose geometry could not be
// read.
type SkippedOutput struct {
	Name   string
	Reason string
}

// GetOutputs retrieves all active outputs using XRandR, in the server's
// output order.
func (c *Connection) GetOutputs() ([]Output, []SkippedOutput, error) {
	conn := c.XUtil.Conn()

	resources, err := randr.GetScreenResourcesCurrent(conn, c.Root).Reply()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	primary := c.primaryOutput()
	edidAtom := c.atom("EDID")

	var (
		outputs []Output
		skipped []SkippedOutput
	)
	for _, id := range resources.Outputs {
		info, err := randr.GetOutputInfo(conn, id, resources.ConfigTimestamp).Reply()
		if err != nil {
			skipped = append(skipped, SkippedOutput{Name: fmt.Sprintf("output %d", id), Reason: err.Error()})
			continue
		}
		// Disconnected or disabled outputs are not part of the desktop.
		if info.Connection != randr.ConnectionConnected || info.Crtc == 0 {
			continue
		}
		name := string(info.Name)

		crtcInfo, err := randr.GetCrtcInfo(conn, info.Crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			skipped = append(skipped, SkippedOutput{Name: name, Reason: err.Error()})
			continue
		}
		if crtcInfo.Mode == 0 || crtcInfo.Width == 0 || crtcInfo.Height == 0 {
			skipped = append(skipped, SkippedOutput{Name: name, Reason: "crtc has no mode"})
			continue
		}

		monitor := MonitorName(c.outputEDID(id, edidAtom))
		if monitor == "" {
			monitor = name
		}

		outputs = append(outputs, Output{
			ID:       id,
			Crtc:     info.Crtc,
			Name:     name,
			Monitor:  monitor,
			Primary:  id == primary,
			X:        int(crtcInfo.X),
			Y:        int(crtcInfo.Y),
			Width:    int(crtcInfo.Width),
			Height:   int(crtcInfo.Height),
			Rotation: crtcInfo.Rotation,
		})
	}

	placements := make([]Placement, len(outputs))
	var primaryCrtc randr.Crtc
	for i, o := range outputs {
		placements[i] = Placement{Crtc: o.Crtc, X: o.X, Y: o.Y}
		if o.Primary {
			primaryCrtc = o.Crtc
		}
	}
	ox, oy := originOf(placements, primaryCrtc)
	for i := range outputs {
		outputs[i].X -= ox
		outputs[i].Y -= oy
	}

	return outputs, skipped, nil
}

// activePlacements lists every enabled CRTC in screen coordinates together
// with the CRTC of the primary output.
func (c *Connection) activePlacements(resources *randr.GetScreenResourcesCurrentReply) ([]Placement, randr.Crtc, error) {
	conn := c.XUtil.Conn()

	var placements []Placement
	for _, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(conn, crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			return nil, 0, fmt.Errorf("failed to get crtc %d: %w", crtc, err)
		}
		if info.Mode == 0 || len(info.Outputs) == 0 {
			continue
		}
		placements = append(placements, Placement{
			Crtc:     crtc,
			Outputs:  info.Outputs,
			Mode:     info.Mode,
			Rotation: info.Rotation,
			X:        int(info.X),
			Y:        int(info.Y),
			Width:    int(info.Width),
			Height:   int(info.Height),
		})
	}

	var primaryCrtc randr.Crtc
	if primary := c.primaryOutput(); primary != 0 {
		if info, err := randr.GetOutputInfo(conn, primary, resources.ConfigTimestamp).Reply(); err == nil {
			primaryCrtc = info.Crtc
		}
	}
	return placements, primaryCrtc, nil
}

func (c *Connection) primaryOutput() randr.Output {
	reply, err := randr.GetOutputPrimary(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return 0
	}
	return reply.Output
}

func (c *Connection) atom(name string) xproto.Atom {
	reply, err := xproto.InternAtom(c.XUtil.Conn(), true, uint16(len(name)), name).Reply()
	if err != nil {
		return 0
	}
	return reply.Atom
}

func (c *Connection) outputEDID(id randr.Output, atom xproto.Atom) []byte {
	if atom == 0 {
		return nil
	}
	// 64 32-bit units covers the 128-byte base block plus one extension.
	reply, err := randr.GetOutputProperty(c.XUtil.Conn(), id, atom, xproto.AtomAny, 0, 64, false, false).Reply()
	if err != nil || reply.Format != 8 {
		return nil
	}
	return reply.Data
}
