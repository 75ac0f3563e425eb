//go:build windows

package platform

import (
	"fmt"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"
)

// OpenFile opens path with its associated application.
func OpenFile(path string) error {
	verb, err := windows.UTF16PtrFromString("open")
	if err != nil {
		return err
	}
	file, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return err
	}
	if !win.ShellExecute(0, verb, file, nil, nil, win.SW_SHOWNORMAL) {
		return fmt.Errorf("ShellExecute %s failed", path)
	}
	return nil
}

// ShowMessage shows a modal error box.
func ShowMessage(title, text string) error {
	caption, err := windows.UTF16PtrFromString(title)
	if err != nil {
		return err
	}
	body, err := windows.UTF16PtrFromString(text)
	if err != nil {
		return err
	}
	win.MessageBox(0, body, caption, win.MB_OK|win.MB_ICONERROR)
	return nil
}
