// Package paths resolves where checkin keeps its files.
//
// Two layouts are supported:
//
//   - Home layout: everything under ~/.checkin/ (config.json, logs/)
//   - XDG layout: config under XDG_CONFIG_HOME/checkin, logs under
//     XDG_STATE_HOME/checkin/logs
//
// Resolution order:
//  1. If ~/.checkin/ exists → home layout
//  2. If any XDG variable is set → XDG layout, unset variables take their defaults
//  3. Otherwise → home layout
package paths

import (
	"os"
	"path/filepath"
	"sync"
)

const appName = "checkin"

var (
	mu     sync.Mutex
	cached *layout
)

type layout struct {
	configDir string
	stateDir  string
	home      bool
}

func resolve() (*layout, error) {
	mu.Lock()
	defer mu.Unlock()

	if cached != nil {
		return cached, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	homeDir := filepath.Join(home, "."+appName)
	if info, err := os.Stat(homeDir); err == nil && info.IsDir() {
		cached = &layout{configDir: homeDir, stateDir: homeDir, home: true}
		return cached, nil
	}

	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	xdgState := os.Getenv("XDG_STATE_HOME")
	if xdgConfig != "" || xdgState != "" {
		if xdgConfig == "" {
			xdgConfig = filepath.Join(home, ".config")
		}
		if xdgState == "" {
			xdgState = filepath.Join(home, ".local", "state")
		}
		cached = &layout{
			configDir: filepath.Join(xdgConfig, appName),
			stateDir:  filepath.Join(xdgState, appName),
		}
		return cached, nil
	}

	cached = &layout{configDir: homeDir, stateDir: homeDir, home: true}
	return cached, nil
}

// ConfigDir returns the directory holding config.json.
func ConfigDir() (string, error) {
	l, err := resolve()
	if err != nil {
		return "", err
	}
	return l.configDir, nil
}

// StateDir returns the directory for transient state such as logs.
func StateDir() (string, error) {
	l, err := resolve()
	if err != nil {
		return "", err
	}
	return l.stateDir, nil
}

// ConfigFilePath returns the full path to config.json.
func ConfigFilePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LogsDir returns the directory for log files.
func LogsDir() (string, error) {
	dir, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "logs"), nil
}

// IsHomeLayout reports whether everything lives under ~/.checkin/.
func IsHomeLayout() bool {
	l, err := resolve()
	if err != nil {
		return true
	}
	return l.home
}

// Reset clears the cached resolution. Tests only.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	cached = nil
}
