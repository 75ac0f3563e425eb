//go:build windows

package runtimepath

import (
	"fmt"

	"golang.org/x/sys/windows"
)

func localAppDataDir() (string, error) {
	path, err := windows.KnownFolderPath(windows.FOLDERID_LocalAppData, 0)
	if err != nil {
		return "", fmt.Errorf("failed to resolve LocalAppData: %w", err)
	}
	return path, nil
}
