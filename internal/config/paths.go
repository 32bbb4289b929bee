package config

import (
	"os"
	"path/filepath"
)

// UserConfigPath returns the path to the user-level config file,
// following the XDG Base Directory Specification:
//   - Linux: ~/.config/devrun/config.yml
//   - macOS: ~/Library/Application Support/devrun/config.yml
//   - Windows: %APPDATA%\devrun\config.yml
func UserConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "devrun", "config.yml"), nil
}

// ProjectConfigPath returns the path to the project-level config file,
// always .devrun/config.yml relative to the current directory.
func ProjectConfigPath() string {
	return filepath.Join(".devrun", "config.yml")
}

// ProjectConfigDir returns the path to the project-level config directory.
func ProjectConfigDir() string {
	return ".devrun"
}

// StateDir returns the directory for devrun's own state (run history).
// Respects XDG_STATE_HOME, defaulting to ~/.local/state/devrun.
func StateDir() (string, error) {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "devrun"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "state", "devrun"), nil
}

// HistoryDBPath resolves the run-history database path, honoring the
// history_db config override.
func (c *Configuration) HistoryDBPath() (string, error) {
	if c.HistoryDB != "" {
		return c.HistoryDB, nil
	}
	stateDir, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(stateDir, "history.db"), nil
}
