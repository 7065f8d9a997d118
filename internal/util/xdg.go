package util

import (
	"fmt"
	"os"
	"path/filepath"
)

const appName = "factoryvision"

// GetXDGDataDir returns the XDG data directory for factoryvision.
// It respects XDG_DATA_HOME if set, otherwise falls back to ~/.local/share/factoryvision
func GetXDGDataDir() (string, error) {
	return xdgDir("XDG_DATA_HOME", ".local", "share")
}

// GetXDGConfigDir returns the XDG config directory for factoryvision.
// It respects XDG_CONFIG_HOME if set, otherwise falls back to ~/.config/factoryvision
func GetXDGConfigDir() (string, error) {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

func xdgDir(env string, fallback ...string) (string, error) {
	if home := os.Getenv(env); home != "" {
		return filepath.Join(home, appName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	parts := append([]string{homeDir}, fallback...)
	return filepath.Join(append(parts, appName)...), nil
}
