//go:build !windows

package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
)

// localAppDataDir follows the XDG base directory spec for user data.
func localAppDataDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" && filepath.IsAbs(dataHome) {
		return dataHome, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share"), nil
}
