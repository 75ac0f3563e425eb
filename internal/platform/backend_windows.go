//go:build windows

package platform

import (
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/1broseidon/monitormemory/internal/arrangement"
)

var (
	user32                       = windows.NewLazySystemDLL("user32.dll")
	procEnumDisplayDevicesW      = user32.NewProc("EnumDisplayDevicesW")
	procEnumDisplaySettingsExW   = user32.NewProc("EnumDisplaySettingsExW")
	procChangeDisplaySettingsExW = user32.NewProc("ChangeDisplaySettingsExW")
)

const (
	enumCurrentSettings = 0xFFFFFFFF

	eddGetDeviceInterfaceName = 0x00000001

	displayDeviceAttachedToDesktop = 0x00000001

	dmPosition           = 0x00000020
	dmDisplayOrientation = 0x00000080
	dmPelsWidth          = 0x00080000
	dmPelsHeight         = 0x00100000
	dmGeometryFields     = dmPosition | dmDisplayOrientation | dmPelsWidth | dmPelsHeight

	cdsUpdateRegistry = 0x00000001
	cdsNoReset        = 0x10000000

	dispChangeSuccessful = 0
)

// displayDevice mirrors DISPLAY_DEVICEW.
type displayDevice struct {
	cb           uint32
	DeviceName   [32]uint16
	DeviceString [128]uint16
	StateFlags   uint32
	DeviceID     [128]uint16
	DeviceKey    [128]uint16
}

// devMode mirrors DEVMODEW with the display variant of its unions.
type devMode struct {
	DeviceName         [32]uint16
	SpecVersion        uint16
	DriverVersion      uint16
	Size               uint16
	DriverExtra        uint16
	Fields             uint32
	PositionX          int32
	PositionY          int32
	DisplayOrientation uint32
	DisplayFixedOutput uint32
	Color              int16
	Duplex             int16
	YResolution        int16
	TTOption           int16
	Collate            int16
	FormName           [32]uint16
	LogPixels          uint16
	BitsPerPel         uint32
	PelsWidth          uint32
	PelsHeight         uint32
	DisplayFlags       uint32
	DisplayFrequency   uint32
	ICMMethod          uint32
	ICMIntent          uint32
	MediaType          uint32
	DitherType         uint32
	Reserved1          uint32
	Reserved2          uint32
	PanningWidth       uint32
	PanningHeight      uint32
}

// WindowsBackend drives display settings through user32. Staged changes
// are written to the registry with CDS_NORESET and applied together by a
// final ChangeDisplaySettingsEx call.
type WindowsBackend struct {
	staged stagedDevices
}

var (
	_ Backend        = (*WindowsBackend)(nil)
	_ ChangeNotifier = (*WindowsBackend)(nil)
)

// Open returns the Windows backend. display is ignored.
func Open(display string) (*WindowsBackend, error) {
	return &WindowsBackend{}, nil
}

// Close is a no-op; the backend holds no handles.
func (b *WindowsBackend) Close() {}

// Snapshot enumerates display adapters attached to the desktop and the
// first monitor on each. Positions are relative to the primary display.
func (b *WindowsBackend) Snapshot() (Snapshot, error) {
	var snap Snapshot

	for i := uint32(0); ; i++ {
		adapter := displayDevice{cb: uint32(unsafe.Sizeof(displayDevice{}))}
		if !enumDisplayDevices(nil, i, &adapter, 0) {
			break
		}
		if adapter.StateFlags&displayDeviceAttachedToDesktop == 0 {
			continue
		}
		deviceName := windows.UTF16ToString(adapter.DeviceName[:])

		monitor := displayDevice{cb: uint32(unsafe.Sizeof(displayDevice{}))}
		if !enumDisplayDevices(&adapter.DeviceName[0], 0, &monitor, eddGetDeviceInterfaceName) {
			snap.Skipped = append(snap.Skipped, &EnumerationError{Device: deviceName, Reason: "no monitor attached to adapter"})
			continue
		}

		mode, err := currentSettings(deviceName)
		if err != nil {
			snap.Skipped = append(snap.Skipped, &EnumerationError{Device: deviceName, Reason: err.Error()})
			continue
		}
		if mode.Fields&dmGeometryFields != dmGeometryFields {
			snap.Skipped = append(snap.Skipped, &EnumerationError{Device: deviceName, Reason: "display settings lack position, size or orientation"})
			continue
		}

		snap.Monitors = append(snap.Monitors, arrangement.Monitor{
			DeviceName:  deviceName,
			DisplayName: windows.UTF16ToString(monitor.DeviceString[:]),
			Geometry: arrangement.Geometry{
				Width:    int(mode.PelsWidth),
				Height:   int(mode.PelsHeight),
				Position: arrangement.Point{X: int(mode.PositionX), Y: int(mode.PositionY)},
				Rotation: arrangement.Rotation(mode.DisplayOrientation),
			},
		})
	}

	return snap, nil
}

// ApplyGeometry writes g for deviceName. With deferCommit the change is
// written to the registry and takes effect at CommitPending.
func (b *WindowsBackend) ApplyGeometry(deviceName string, g arrangement.Geometry, deferCommit bool) error {
	mode, err := currentSettings(deviceName)
	if err != nil {
		return &ApplyRejectedError{Device: deviceName, Reason: err.Error()}
	}
	mode.PelsWidth = uint32(g.Width)
	mode.PelsHeight = uint32(g.Height)
	mode.PositionX = int32(g.Position.X)
	mode.PositionY = int32(g.Position.Y)
	mode.DisplayOrientation = uint32(g.Rotation)
	mode.Fields |= dmGeometryFields

	flags := uint32(cdsUpdateRegistry)
	if deferCommit {
		flags |= cdsNoReset
	}

	name, err := windows.UTF16PtrFromString(deviceName)
	if err != nil {
		return &ApplyRejectedError{Device: deviceName, Reason: err.Error()}
	}
	if deferCommit {
		// Marked before the call: a failed write may still have reached the
		// registry.
		b.staged.add(deviceName)
	}
	if ret := changeDisplaySettings(name, &mode, flags); ret != dispChangeSuccessful {
		return &ApplyRejectedError{Device: deviceName, Reason: dispChangeReason(ret)}
	}
	return nil
}

// CommitPending applies every change written with CDS_NORESET. When the
// commit fails the staged devices are reset to their current settings.
func (b *WindowsBackend) CommitPending() error {
	staged := b.staged.take()
	if ret := changeDisplaySettings(nil, nil, 0); ret != dispChangeSuccessful {
		resetStaged(staged)
		return fmt.Errorf("commit display configuration: %s", dispChangeReason(ret))
	}
	return nil
}

// DiscardPending overwrites the staged registry settings with the current
// ones, so a later commit cannot apply them.
func (b *WindowsBackend) DiscardPending() {
	resetStaged(b.staged.take())
}

func resetStaged(devices []string) {
	for _, deviceName := range devices {
		mode, err := currentSettings(deviceName)
		if err != nil {
			continue
		}
		name, err := windows.UTF16PtrFromString(deviceName)
		if err != nil {
			continue
		}
		changeDisplaySettings(name, &mode, cdsUpdateRegistry|cdsNoReset)
	}
}

func currentSettings(deviceName string) (devMode, error) {
	name, err := windows.UTF16PtrFromString(deviceName)
	if err != nil {
		return devMode{}, err
	}
	mode := devMode{Size: uint16(unsafe.Sizeof(devMode{}))}
	r, _, _ := procEnumDisplaySettingsExW.Call(
		uintptr(unsafe.Pointer(name)),
		uintptr(enumCurrentSettings),
		uintptr(unsafe.Pointer(&mode)),
		0,
	)
	if r == 0 {
		return devMode{}, errors.New("EnumDisplaySettingsEx failed")
	}
	return mode, nil
}

func enumDisplayDevices(device *uint16, index uint32, out *displayDevice, flags uint32) bool {
	r, _, _ := procEnumDisplayDevicesW.Call(
		uintptr(unsafe.Pointer(device)),
		uintptr(index),
		uintptr(unsafe.Pointer(out)),
		uintptr(flags),
	)
	return r != 0
}

func changeDisplaySettings(deviceName *uint16, mode *devMode, flags uint32) int32 {
	r, _, _ := procChangeDisplaySettingsExW.Call(
		uintptr(unsafe.Pointer(deviceName)),
		uintptr(unsafe.Pointer(mode)),
		0,
		uintptr(flags),
		0,
	)
	return int32(r)
}

func dispChangeReason(code int32) string {
	switch code {
	case 1:
		return "restart required"
	case -1:
		return "display driver failed the mode"
	case -2:
		return "graphics mode not supported"
	case -3:
		return "unable to write settings to the registry"
	case -4:
		return "invalid flags"
	case -5:
		return "invalid parameter"
	case -6:
		return "settings conflict with another display"
	case -7:
		return "settings not supported by the system"
	default:
		return fmt.Sprintf("ChangeDisplaySettingsEx returned %d", code)
	}
}
