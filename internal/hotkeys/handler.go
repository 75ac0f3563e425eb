// Package hotkeys binds global X11 key sequences to daemon commands.
package hotkeys

import (
	"fmt"
	"log"
	"sync"

	"github.com/1broseidon/monitormemory/internal/arrangement"
	"github.com/1broseidon/monitormemory/internal/platform"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Commands are the user actions bound to hotkeys.
type Commands interface {
	Capture() (arrangement.Arrangement, error)
	SetPaused(paused bool)
	Paused() bool
}

// x11Accessor is an optional interface for backends that expose X11 internals.
type x11Accessor interface {
	XUtil() *xgbutil.XUtil
	RootWindow() xproto.Window
}

// Handler manages global keyboard shortcuts
type Handler struct {
	xu   *xgbutil.XUtil
	root xproto.Window
	cmds Commands
}

var ignoreModsOnce sync.Once

// NewHandler creates a new hotkey handler. backend must expose its X11
// connection.
func NewHandler(backend any, cmds Commands) (*Handler, error) {
	accessor, ok := backend.(x11Accessor)
	if !ok || accessor.XUtil() == nil {
		return nil, fmt.Errorf("global hotkeys need an X11 backend")
	}
	xu := accessor.XUtil()

	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})

	return &Handler{
		xu:   xu,
		root: accessor.RootWindow(),
		cmds: cmds,
	}, nil
}

// RegisterCapture binds keySequence to recording the live arrangement.
// Failures are shown to the user since they pressed the key.
func (h *Handler) RegisterCapture(keySequence string) error {
	if err := h.RegisterFunc(keySequence, func() {
		arr, err := h.cmds.Capture()
		if err != nil {
			log.Printf("Capture failed: %v", err)
			if msgErr := platform.ShowMessage("Capture failed", err.Error()); msgErr != nil {
				log.Printf("Failed to show message: %v", msgErr)
			}
			return
		}
		log.Printf("Captured arrangement of %d monitor(s)", len(arr))
	}); err != nil {
		return fmt.Errorf("failed to register capture hotkey: %w", err)
	}
	return nil
}

// RegisterPauseToggle binds keySequence to flipping the pause flag.
func (h *Handler) RegisterPauseToggle(keySequence string) error {
	if err := h.RegisterFunc(keySequence, func() {
		paused := !h.cmds.Paused()
		h.cmds.SetPaused(paused)
		log.Printf("Automatic reconcile paused: %v", paused)
	}); err != nil {
		return fmt.Errorf("failed to register pause hotkey: %w", err)
	}
	return nil
}

// RegisterFunc registers an arbitrary hotkey callback.
func (h *Handler) RegisterFunc(keySequence string, callback func()) error {
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
