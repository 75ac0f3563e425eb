package x11

import (
	"context"
	"errors"
	"fmt"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
)

// WatchScreenChanges calls notify for every RandR screen, CRTC or output
// change until ctx is done. It uses its own connection so the hotkey event
// loop is left alone.
func WatchScreenChanges(ctx context.Context, display string, notify func()) error {
	conn, err := xgb.NewConnDisplay(display)
	if err != nil {
		return fmt.Errorf("failed to open event connection: %w", err)
	}
	if err := randr.Init(conn); err != nil {
		conn.Close()
		return fmt.Errorf("randr init failed: %w", err)
	}

	root := xproto.Setup(conn).DefaultScreen(conn).Root
	mask := uint16(randr.NotifyMaskScreenChange | randr.NotifyMaskCrtcChange | randr.NotifyMaskOutputChange)
	if err := randr.SelectInputChecked(conn, root, mask).Check(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to select randr events: %w", err)
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}
		conn.Close()
	}()

	for {
		ev, xerr := conn.WaitForEvent()
		if ev == nil && xerr == nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.New("x11 event connection closed")
		}
		if xerr != nil {
			continue
		}
		switch ev.(type) {
		case randr.ScreenChangeNotifyEvent, randr.NotifyEvent:
			notify()
		}
	}
}
