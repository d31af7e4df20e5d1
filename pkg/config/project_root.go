package config

import (
	"os"
	"path/filepath"
	"strings"
)

// UserConfigPath returns ~/.lattice/config.yaml, or "" without a home
// directory.
func UserConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.Getenv("HOME")
	}
	if strings.TrimSpace(home) == "" {
		return ""
	}
	return filepath.Join(home, ".lattice", "config.yaml")
}

// ProjectConfigPath returns ./.lattice/config.yaml.
func ProjectConfigPath() string {
	return filepath.Join(".", ".lattice", "config.yaml")
}

// LogPath returns the configured log path with ~ expanded.
func (c *Config) LogPath() string {
	return ExpandHome(c.Logging.Path)
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if path == "~" {
		if home, err := os.UserHomeDir(); err == nil && strings.TrimSpace(home) != "" {
			return home
		}
		return path
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil && strings.TrimSpace(home) != "" {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
