package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Dir returns the checkctl config directory under the user config base.
// On Linux this typically resolves to $XDG_CONFIG_HOME/checkctl; on macOS
// to ~/Library/Application Support/checkctl; and on Windows to
// %AppData%/checkctl. Falls back to HOME when UserConfigDir is unavailable.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil || strings.TrimSpace(base) == "" {
		if home, herr := os.UserHomeDir(); herr == nil {
			base = home
		} else {
			return "", errors.New("cannot determine config directory")
		}
	}
	return filepath.Join(base, "checkctl"), nil
}

// Path returns the config file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}
