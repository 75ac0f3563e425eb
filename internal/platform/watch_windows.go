//go:build windows

package platform

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"
)

const displayWatchClass = "MonitorMemoryDisplayWatch"

var (
	watchClassOnce sync.Once
	watchClassName *uint16
	watchClassErr  error

	watchersMu sync.Mutex
	watchers   = make(map[win.HWND]func())
)

// registerWatchClass registers the window class used by WatchChanges.
func registerWatchClass() error {
	watchClassOnce.Do(func() {
		watchClassName, watchClassErr = windows.UTF16PtrFromString(displayWatchClass)
		if watchClassErr != nil {
			return
		}
		wc := win.WNDCLASSEX{
			LpfnWndProc:   windows.NewCallback(displayWatchProc),
			HInstance:     win.GetModuleHandle(nil),
			LpszClassName: watchClassName,
		}
		wc.CbSize = uint32(unsafe.Sizeof(wc))
		if win.RegisterClassEx(&wc) == 0 {
			watchClassErr = fmt.Errorf("RegisterClassEx: %w", windows.GetLastError())
		}
	})
	return watchClassErr
}

func displayWatchProc(hwnd, msg, wParam, lParam uintptr) uintptr {
	switch uint32(msg) {
	case win.WM_DISPLAYCHANGE:
		watchersMu.Lock()
		notify := watchers[win.HWND(hwnd)]
		watchersMu.Unlock()
		if notify != nil {
			notify()
		}
		return 0
	case win.WM_CLOSE:
		win.DestroyWindow(win.HWND(hwnd))
		return 0
	case win.WM_DESTROY:
		win.PostQuitMessage(0)
		return 0
	}
	return win.DefWindowProc(win.HWND(hwnd), uint32(msg), wParam, lParam)
}

// WatchChanges calls notify for every WM_DISPLAYCHANGE. The window is a
// hidden top-level one: message-only windows do not receive broadcasts.
func (b *WindowsBackend) WatchChanges(ctx context.Context, notify func()) error {
	if err := registerWatchClass(); err != nil {
		return err
	}

	created := make(chan win.HWND, 1)
	done := make(chan error, 1)
	go func() {
		// Window messages are delivered to the creating thread.
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		hwnd := win.CreateWindowEx(0, watchClassName, watchClassName, win.WS_OVERLAPPED,
			0, 0, 0, 0, 0, 0, win.GetModuleHandle(nil), nil)
		if hwnd == 0 {
			done <- fmt.Errorf("CreateWindowEx: %w", windows.GetLastError())
			return
		}
		watchersMu.Lock()
		watchers[hwnd] = notify
		watchersMu.Unlock()
		defer func() {
			watchersMu.Lock()
			delete(watchers, hwnd)
			watchersMu.Unlock()
		}()
		created <- hwnd

		var msg win.MSG
		for {
			switch win.GetMessage(&msg, 0, 0, 0) {
			case 0:
				done <- nil
				return
			case -1:
				win.DestroyWindow(hwnd)
				done <- errors.New("GetMessage failed")
				return
			}
			win.TranslateMessage(&msg)
			win.DispatchMessage(&msg)
		}
	}()

	var hwnd win.HWND
	select {
	case err := <-done:
		return err
	case hwnd = <-created:
	}

	select {
	case <-ctx.Done():
		win.PostMessage(hwnd, win.WM_CLOSE, 0, 0)
		<-done
		return nil
	case err := <-done:
		if err == nil {
			err = errors.New("display message loop ended")
		}
		return err
	}
}
