// Package paths resolves the configuration and data directories used by the
// fundiary command.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// appName names the per-user directories.
const appName = "fundiary"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "FUNDIARY_CONFIG_DIR"
	EnvDataDir   = "FUNDIARY_DATA_DIR"
)

// platformDir is swapped out by tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the per-user configuration directory:
// $XDG_CONFIG_HOME/fundiary or ~/.config/fundiary on Linux, and the
// os.UserConfigDir location elsewhere.
func DefaultConfigDir() (string, error) {
	return userDir("XDG_CONFIG_HOME", ".config")
}

// DefaultDataDir returns the per-user data directory:
// $XDG_DATA_HOME/fundiary or ~/.local/share/fundiary on Linux, and the
// os.UserConfigDir location elsewhere.
func DefaultDataDir() (string, error) {
	return userDir("XDG_DATA_HOME", ".local", "share")
}

// userDir resolves appName under an XDG base directory on Linux, falling
// back to home-relative parts when the variable is unset.
func userDir(xdgVar string, homeParts ...string) (string, error) {
	if runtime.GOOS != "linux" {
		base, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(base, appName), nil
	}
	if base := os.Getenv(xdgVar); base != "" {
		return filepath.Join(base, appName), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append(append([]string{home}, homeParts...), appName)...), nil
}

// firstAbs returns the absolute form of the first non-empty candidate, or
// the fallback when all are empty.
func firstAbs(fallback func() (string, error), candidates ...string) (string, error) {
	for _, c := range candidates {
		if c != "" {
			return filepath.Abs(c)
		}
	}
	return fallback()
}

// ResolveConfigDir picks the configuration directory from the flag, then
// FUNDIARY_CONFIG_DIR, then DefaultConfigDir.
func ResolveConfigDir(flag string) (string, error) {
	return firstAbs(DefaultConfigDir, flag, os.Getenv(EnvConfigDir))
}

// ResolveDataDir picks the data directory from the flag, then the config
// file value, then FUNDIARY_DATA_DIR, then DefaultDataDir.
func ResolveDataDir(flag, configValue string) (string, error) {
	return firstAbs(DefaultDataDir, flag, configValue, os.Getenv(EnvDataDir))
}

// ConfigFile returns the config.yaml path inside configDir.
func ConfigFile(configDir string) string {
	return filepath.Join(configDir, "config.yaml")
}
