// Package arrangement models a physical monitor arrangement: the set of
// attached displays with their size, position and rotation, plus the text
// format used to persist arrangements and the name-based matching heuristic
// used to recognise an arrangement that was seen before.
package arrangement

import (
	"fmt"
	"strings"
)

// Rotation is a display orientation. The numeric values are the codes written
// to the arrangement file.
type Rotation int

const (
	RotateNone Rotation = iota
	Rotate90
	Rotate180
	Rotate270
)

// Valid reports whether r is one of the four supported orientations.
func (r Rotation) Valid() bool {
	return r >= RotateNone && r <= Rotate270
}

// Portrait reports whether r swaps width and height relative to the panel's
// native mode.
func (r Rotation) Portrait() bool {
	return r == Rotate90 || r == Rotate270
}

func (r Rotation) String() string {
	switch r {
	case RotateNone:
		return "none"
	case Rotate90:
		return "90"
	case Rotate180:
		return "180"
	case Rotate270:
		return "270"
	default:
		return fmt.Sprintf("Rotation(%d)", int(r))
	}
}

// Point is a coordinate on the virtual desktop canvas.
type Point struct {
	X int
	Y int
}

// Geometry is everything the reconciler may change on a monitor.
// Width and Height are in the current orientation.
type Geometry struct {
	Width    int
	Height   int
	Position Point
	Rotation Rotation
}

func (g Geometry) String() string {
	return fmt.Sprintf("%dx%d%+d%+d rot=%s", g.Width, g.Height, g.Position.X, g.Position.Y, g.Rotation)
}

// Monitor is one physical display in an arrangement.
type Monitor struct {
	// DeviceName is the transient identifier assigned by the OS. It is unique
	// within one live enumeration and is never persisted.
	DeviceName string
	// DisplayName is the product name. Stable across sessions but not unique:
	// two monitors of the same model share it.
	DisplayName string
	Geometry
}

// Arrangement is an ordered list of monitors in enumeration order.
type Arrangement []Monitor

// DisplayNames returns the display names in order.
func (a Arrangement) DisplayNames() []string {
	names := make([]string, len(a))
	for i, m := range a {
		names[i] = m.DisplayName
	}
	return names
}

// Validate checks the structure of a live or stored arrangement.
func (a Arrangement) Validate() error {
	if len(a) == 0 {
		return fmt.Errorf("arrangement has no monitors")
	}
	seen := make(map[string]struct{}, len(a))
	for i, m := range a {
		if strings.TrimSpace(m.DisplayName) == "" {
			return fmt.Errorf("monitor %d: display name is empty", i)
		}
		if strings.ContainsAny(m.DisplayName, "\r\n") {
			return fmt.Errorf("monitor %d: display name %q contains a line break", i, m.DisplayName)
		}
		if m.Width <= 0 || m.Height <= 0 {
			return fmt.Errorf("monitor %d (%s): size %dx%d must be positive", i, m.DisplayName, m.Width, m.Height)
		}
		if !m.Rotation.Valid() {
			return fmt.Errorf("monitor %d (%s): invalid rotation %d", i, m.DisplayName, int(m.Rotation))
		}
		if m.DeviceName == "" {
			continue
		}
		if _, dup := seen[m.DeviceName]; dup {
			return fmt.Errorf("monitor %d: duplicate device name %q", i, m.DeviceName)
		}
		seen[m.DeviceName] = struct{}{}
	}
	return nil
}

// Equal reports whether a and b hold the same persisted fields in the same
// order. Device names are ignored since they are never stored.
func Equal(a, b Arrangement) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].DisplayName != b[i].DisplayName || a[i].Geometry != b[i].Geometry {
			return false
		}
	}
	return true
}
