package core

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName is the application name used in config and data directory paths.
const AppName = "imgen"

// ConfigFileName is the name of the config file inside the config directory.
const ConfigFileName = "config.yaml"

// HistoryFileName is the name of the generation history database.
const HistoryFileName = "history.db"

// GetConfigDirectory returns the platform-specific config directory.
// This is a pure function based on runtime.GOOS and environment variables.
//
// Paths by platform:
//   - Windows: %APPDATA%\imgen
//   - Linux/macOS: $XDG_CONFIG_HOME/imgen, falling back to ~/.config/imgen
//
// Returns "" when none of the variables are set. Does NOT create the directory.
func GetConfigDirectory() string {
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, AppName)
		}
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".config", AppName)
	}
	return ""
}

// GetConfigFilePath returns the default config file path, or "" if the
// config directory is unknown.
func GetConfigFilePath() string {
	dir := GetConfigDirectory()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, ConfigFileName)
}

// GetDataDirectory returns the platform-specific data directory for the
// generation history.
//
// Paths by platform:
//   - Windows: %LOCALAPPDATA%\imgen (or %APPDATA%\imgen)
//   - Linux/macOS: $XDG_DATA_HOME/imgen, falling back to ~/.local/share/imgen
//
// Does NOT create the directory - callers should use EnsureDataDirectory for that.
func GetDataDirectory() string {
	if runtime.GOOS == "windows" {
		for _, key := range []string{"LOCALAPPDATA", "APPDATA"} {
			if dir := os.Getenv(key); dir != "" {
				return filepath.Join(dir, AppName)
			}
		}
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home cannot be determined
		return "." + AppName
	}
	return filepath.Join(home, ".local", "share", AppName)
}

// EnsureDataDirectory creates dir (or the default data directory when dir is
// empty) if it doesn't exist. Returns the directory path.
func EnsureDataDirectory(dir string) (string, error) {
	if dir == "" {
		dir = GetDataDirectory()
	}
	err := os.MkdirAll(dir, 0700) // Secure permissions: owner read/write/execute only
	if err != nil {
		return "", err
	}
	return dir, nil
}
