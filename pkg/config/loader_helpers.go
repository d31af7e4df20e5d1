package config

import (
	"os"

	"gopkg.in/yaml.v3"

	lerrors "github.com/odvcencio/lattice/pkg/errors"
)

// loadAndMerge loads a YAML file and merges it into the config. A missing
// file is returned unwrapped so callers can test it with os.IsNotExist.
func loadAndMerge(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return err
		}
		return lerrors.Wrap(err, lerrors.ErrCodeConfigLoad, "read config").WithContext("path", path)
	}

	var override Config
	if err := yaml.Unmarshal(data, &override); err != nil {
		return lerrors.Wrap(err, lerrors.ErrCodeConfigParse, "parse config").WithContext("path", path)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return lerrors.Wrap(err, lerrors.ErrCodeConfigParse, "parse config").WithContext("path", path)
	}

	mergeConfigs(cfg, &override, raw)
	return nil
}

// mergeConfigs merges override into base. Zero values only win when the
// key was present in the file.
func mergeConfigs(base, override *Config, raw map[string]any) {
	if override == nil {
		return
	}

	if override.UI.FrameInterval != 0 {
		base.UI.FrameInterval = override.UI.FrameInterval
	}
	if override.UI.HoverFocus != "" {
		base.UI.HoverFocus = override.UI.HoverFocus
	}
	if fieldSet(raw, "ui", "scroll_off") {
		base.UI.ScrollOff = override.UI.ScrollOff
	}
	if override.UI.MaxConcurrentOps != 0 {
		base.UI.MaxConcurrentOps = override.UI.MaxConcurrentOps
	}
	if override.UI.Theme != "" {
		base.UI.Theme = override.UI.Theme
	}

	// An empty string in the file disables a shortcut.
	if fieldSet(raw, "keys", "help") {
		base.Keys.Help = override.Keys.Help
	}
	if fieldSet(raw, "keys", "launcher") {
		base.Keys.Launcher = override.Keys.Launcher
	}
	if fieldSet(raw, "keys", "overview") {
		base.Keys.Overview = override.Keys.Overview
	}
	if fieldSet(raw, "keys", "quit") {
		base.Keys.Quit = override.Keys.Quit
	}

	if base.Apps == nil {
		base.Apps = map[string]AppConfig{}
	}
	for id, app := range override.Apps {
		base.Apps[id] = mergeAppConfig(base.Apps[id], app)
	}

	if override.Logging.Path != "" {
		base.Logging.Path = override.Logging.Path
	}
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if fieldSet(raw, "bus", "enabled") {
		base.Bus.Enabled = override.Bus.Enabled
	}
	if override.Bus.URL != "" {
		base.Bus.URL = override.Bus.URL
	}
	if override.Bus.SubjectPrefix != "" {
		base.Bus.SubjectPrefix = override.Bus.SubjectPrefix
	}
	if override.Bus.RatePerSecond != 0 {
		base.Bus.RatePerSecond = override.Bus.RatePerSecond
	}

	if fieldSet(raw, "telemetry", "metrics_addr") {
		base.Telemetry.MetricsAddr = override.Telemetry.MetricsAddr
	}
	if fieldSet(raw, "telemetry", "trace") {
		base.Telemetry.Trace = override.Telemetry.Trace
	}
}

func mergeAppConfig(base, override AppConfig) AppConfig {
	if override.QuitPolicy != "" {
		base.QuitPolicy = override.QuitPolicy
	}
	if override.IdleTimeout != 0 {
		base.IdleTimeout = override.IdleTimeout
	}
	if override.SuspendPolicy != "" {
		base.SuspendPolicy = override.SuspendPolicy
	}
	return base
}

func fieldSet(raw map[string]any, path ...string) bool {
	if len(path) == 0 || raw == nil {
		return false
	}
	current := any(raw)
	for _, key := range path {
		m, ok := current.(map[string]any)
		if !ok {
			return false
		}
		val, ok := m[key]
		if !ok {
			return false
		}
		current = val
	}
	return true
}
