package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Load reads configuration from standard locations with environment overrides.
// Search order: ~/.craterc, $XDG_CONFIG_HOME/crate/config.toml, ~/.config/crate/config.toml
func Load() (*Config, error) {
	cfg := &Config{}

	// Try loading from file
	path := findConfigFile()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	// Apply defaults, then environment variable overrides
	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)

	return cfg, nil
}

// LoadFrom reads configuration from a specific file path.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// DefaultPath returns the path new config files are written to.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".craterc"
	}
	return filepath.Join(home, ".craterc")
}

// findConfigFile returns the first existing config file path.
func findConfigFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	paths := []string{
		filepath.Join(home, ".craterc"),
	}

	// XDG_CONFIG_HOME or default
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	paths = append(paths, filepath.Join(xdgConfig, "crate", "config.toml"))

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	// Library
	if v := os.Getenv("CRATE_LIBRARY_DIR"); v != "" {
		cfg.Library.Dir = v
	}
	if v := os.Getenv("CRATE_LIBRARY_STRICT"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Library.Strict = b
		}
	}
	if v := os.Getenv("CRATE_LIBRARY_EXTENSIONS"); v != "" {
		cfg.Library.Extensions = strings.Split(v, ",")
	}

	// Playback
	if v := os.Getenv("CRATE_PLAYBACK_SAMPLE_RATE"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Playback.SampleRate = i
		}
	}
	if v := os.Getenv("CRATE_PLAYBACK_SKIP_UNPLAYABLE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Playback.SkipUnplayable = b
		}
	}

	// TUI
	if v := os.Getenv("CRATE_TUI_THEME"); v != "" {
		cfg.TUI.Theme = v
	}
	if v := os.Getenv("CRATE_TUI_REFRESH_INTERVAL"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.TUI.RefreshInterval = i
		}
	}

	// Log
	if v := os.Getenv("CRATE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("CRATE_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
}
