//go:build linux

package platform

import (
	"fmt"
	"os/exec"
)

// OpenFile opens path with the desktop's default handler.
func OpenFile(path string) error {
	cmd := exec.Command("xdg-open", path)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("xdg-open %s: %w", path, err)
	}
	go cmd.Wait()
	return nil
}

// ShowMessage shows a desktop notification.
func ShowMessage(title, text string) error {
	if err := exec.Command("notify-send", "--app-name=monitormemory", title, text).Run(); err != nil {
		return fmt.Errorf("notify-send: %w", err)
	}
	return nil
}
