// Package config resolves filesystem paths and user settings for the viewer.
package config

import (
	"os"
	"path/filepath"
)

// Config holds base paths used by the viewer.
type Config struct {
	Base string
}

// Default returns a Config rooted at $XDG_CONFIG_HOME/tkmviewer, falling
// back to ~/.config/tkmviewer.
func Default() Config {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		base = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return Config{
		Base: filepath.Join(base, "tkmviewer"),
	}
}

// SettingsPath returns the TOML settings file path.
func (c Config) SettingsPath() string {
	return filepath.Join(c.Base, "settings.toml")
}

// LogPath returns the default log file path used when file logging is enabled.
func (c Config) LogPath() string {
	return filepath.Join(c.Base, "logs", "tkmviewer.log")
}
