// Package config loads lattice configuration: built-in defaults, then the
// user file, then the project file, then LATTICE_* environment overrides,
// then validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	lerrors "github.com/odvcencio/lattice/pkg/errors"
	"github.com/odvcencio/lattice/pkg/ui/terminal"
)

// Default configuration values exported for documentation and validation
const (
	DefaultFrameInterval    = 16 * time.Millisecond
	DefaultHoverFocus       = HoverWhenUnfocused
	DefaultScrollOff        = 2
	DefaultMaxConcurrentOps = 32
	DefaultTheme            = "auto"
	DefaultLogLevel         = "info"
	DefaultSubjectPrefix    = "lattice"
	DefaultBusRate          = 200.0
	DefaultNATSURL          = "nats://localhost:4222"
)

// Hover focus modes.
const (
	HoverNever         = "never"
	HoverAlways        = "always"
	HoverWhenUnfocused = "when_unfocused"
)

// Quit policies.
const (
	QuitSleep      = "sleep"
	QuitOnIdle     = "quit_on_idle"
	QuitOnExit     = "quit_on_exit"
	SuspendDefault = "suspend"
	AlwaysActive   = "always_active"
	QuitOnSuspend  = "quit_on_suspend"
)

var (
	hoverModes   = []string{HoverNever, HoverAlways, HoverWhenUnfocused}
	themes       = []string{"auto", "dark", "ansi", "mono"}
	quitPolicies = []string{QuitSleep, QuitOnIdle, QuitOnExit}
	suspendModes = []string{SuspendDefault, AlwaysActive, QuitOnSuspend}
	logLevels    = []string{"debug", "info", "warn", "error"}
)

// Config represents the complete lattice configuration
type Config struct {
	UI        UIConfig             `yaml:"ui"`
	Keys      KeyConfig            `yaml:"keys"`
	Apps      map[string]AppConfig `yaml:"apps"`
	Logging   LoggingConfig        `yaml:"logging"`
	Bus       BusConfig            `yaml:"bus"`
	Telemetry TelemetryConfig      `yaml:"telemetry"`
}

// UIConfig tunes the runtime loop and input handling.
type UIConfig struct {
	FrameInterval    time.Duration `yaml:"frame_interval"`
	HoverFocus       string        `yaml:"hover_focus"`
	ScrollOff        int           `yaml:"scroll_off"`
	MaxConcurrentOps int           `yaml:"max_concurrent_ops"`
	Theme            string        `yaml:"theme"`
}

// KeyConfig binds the orchestrator's global shortcuts. An empty binding
// disables the shortcut.
type KeyConfig struct {
	Help     string `yaml:"help"`
	Launcher string `yaml:"launcher"`
	Overview string `yaml:"overview"`
	Quit     string `yaml:"quit"`
}

// AppConfig overrides an application's lifecycle policies.
type AppConfig struct {
	QuitPolicy    string        `yaml:"quit_policy"`
	IdleTimeout   time.Duration `yaml:"idle_timeout"`
	SuspendPolicy string        `yaml:"suspend_policy"`
}

// LoggingConfig places the JSONL log.
type LoggingConfig struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// BusConfig controls mirroring pub/sub events to NATS.
type BusConfig struct {
	Enabled       bool    `yaml:"enabled"`
	URL           string  `yaml:"url"`
	SubjectPrefix string  `yaml:"subject_prefix"`
	RatePerSecond float64 `yaml:"rate_per_second"`
}

// TelemetryConfig exposes metrics and traces.
type TelemetryConfig struct {
	MetricsAddr string `yaml:"metrics_addr"`
	Trace       bool   `yaml:"trace"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		UI: UIConfig{
			FrameInterval:    DefaultFrameInterval,
			HoverFocus:       DefaultHoverFocus,
			ScrollOff:        DefaultScrollOff,
			MaxConcurrentOps: DefaultMaxConcurrentOps,
			Theme:            DefaultTheme,
		},
		Keys: KeyConfig{
			Help:     "?",
			Launcher: "ctrl+o",
			Overview: "ctrl+t",
			Quit:     "ctrl+q",
		},
		Apps: map[string]AppConfig{},
		Logging: LoggingConfig{
			Path:  filepath.Join("~", ".lattice", "lattice.log"),
			Level: DefaultLogLevel,
		},
		Bus: BusConfig{
			URL:           defaultNATSURL(),
			SubjectPrefix: DefaultSubjectPrefix,
			RatePerSecond: DefaultBusRate,
		},
	}
}

func defaultNATSURL() string {
	if v := strings.TrimSpace(os.Getenv("NATS_URL")); v != "" {
		return v
	}
	return DefaultNATSURL
}

// Load loads configuration from default locations with proper precedence
func Load() (*Config, error) {
	cfg := DefaultConfig()

	if path := UserConfigPath(); path != "" {
		if err := loadAndMerge(cfg, path); err != nil && !os.IsNotExist(err) {
			return nil, err
		}
	}
	if err := loadAndMerge(cfg, ProjectConfigPath()); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific file path over the
// defaults. A missing file is an error.
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := loadAndMerge(cfg, path); err != nil {
		return nil, err
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies LATTICE_* environment variables.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("LATTICE_FRAME_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return envError("LATTICE_FRAME_INTERVAL", v, err)
		}
		cfg.UI.FrameInterval = d
	}
	if v := os.Getenv("LATTICE_HOVER_FOCUS"); v != "" {
		cfg.UI.HoverFocus = v
	}
	if v := os.Getenv("LATTICE_SCROLL_OFF"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return envError("LATTICE_SCROLL_OFF", v, err)
		}
		cfg.UI.ScrollOff = n
	}
	if v := os.Getenv("LATTICE_MAX_CONCURRENT_OPS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return envError("LATTICE_MAX_CONCURRENT_OPS", v, err)
		}
		cfg.UI.MaxConcurrentOps = n
	}
	if v := os.Getenv("LATTICE_THEME"); v != "" {
		cfg.UI.Theme = v
	}
	if v := os.Getenv("LATTICE_LOG_PATH"); v != "" {
		cfg.Logging.Path = v
	}
	if v := os.Getenv("LATTICE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if val, ok := envBool("LATTICE_BUS_ENABLED"); ok {
		cfg.Bus.Enabled = val
	}
	if v := os.Getenv("LATTICE_BUS_URL"); v != "" {
		cfg.Bus.URL = v
	}
	if v := os.Getenv("LATTICE_METRICS_ADDR"); v != "" {
		cfg.Telemetry.MetricsAddr = v
	}
	if val, ok := envBool("LATTICE_TRACE"); ok {
		cfg.Telemetry.Trace = val
	}
	return nil
}

func envError(key, value string, err error) error {
	return lerrors.Wrap(err, lerrors.ErrCodeConfigParse, "bad environment override").
		WithContext("var", key).
		WithContext("value", value)
}

func envBool(key string) (bool, bool) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return false, false
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	}
	return false, false
}

// Validate checks every field and returns the first problem as a
// CONFIG_INVALID error.
func (c *Config) Validate() error {
	if c.UI.FrameInterval < time.Millisecond {
		return invalid("ui.frame_interval", c.UI.FrameInterval, "must be at least 1ms")
	}
	if !oneOf(c.UI.HoverFocus, hoverModes) {
		return invalid("ui.hover_focus", c.UI.HoverFocus, "must be one of "+strings.Join(hoverModes, ", "))
	}
	if c.UI.ScrollOff < 0 {
		return invalid("ui.scroll_off", c.UI.ScrollOff, "must not be negative")
	}
	if c.UI.MaxConcurrentOps < 1 {
		return invalid("ui.max_concurrent_ops", c.UI.MaxConcurrentOps, "must be at least 1")
	}
	if !oneOf(c.UI.Theme, themes) {
		return invalid("ui.theme", c.UI.Theme, "must be one of "+strings.Join(themes, ", "))
	}

	keys := []struct{ name, binding string }{
		{"keys.help", c.Keys.Help},
		{"keys.launcher", c.Keys.Launcher},
		{"keys.overview", c.Keys.Overview},
		{"keys.quit", c.Keys.Quit},
	}
	for _, k := range keys {
		if k.binding == "" {
			continue
		}
		if _, err := terminal.ParseBinding(k.binding); err != nil {
			return invalid(k.name, k.binding, err.Error())
		}
	}

	for id, app := range c.Apps {
		key := "apps." + id
		if app.QuitPolicy != "" && !oneOf(app.QuitPolicy, quitPolicies) {
			return invalid(key+".quit_policy", app.QuitPolicy, "must be one of "+strings.Join(quitPolicies, ", "))
		}
		if app.QuitPolicy == QuitOnIdle && app.IdleTimeout <= 0 {
			return invalid(key+".idle_timeout", app.IdleTimeout, "quit_on_idle needs a positive idle_timeout")
		}
		if app.SuspendPolicy != "" && !oneOf(app.SuspendPolicy, suspendModes) {
			return invalid(key+".suspend_policy", app.SuspendPolicy, "must be one of "+strings.Join(suspendModes, ", "))
		}
	}

	if !oneOf(c.Logging.Level, logLevels) {
		return invalid("logging.level", c.Logging.Level, "must be one of "+strings.Join(logLevels, ", "))
	}

	if c.Bus.Enabled {
		if strings.TrimSpace(c.Bus.URL) == "" {
			return invalid("bus.url", c.Bus.URL, "required when the bus is enabled")
		}
		if c.Bus.RatePerSecond <= 0 {
			return invalid("bus.rate_per_second", c.Bus.RatePerSecond, "must be positive")
		}
		if strings.TrimSpace(c.Bus.SubjectPrefix) == "" {
			return invalid("bus.subject_prefix", c.Bus.SubjectPrefix, "required when the bus is enabled")
		}
	}
	return nil
}

func invalid(key string, value any, reason string) error {
	return lerrors.New(lerrors.ErrCodeConfigInvalid, fmt.Sprintf("%s %s", key, reason)).
		WithContext("value", value)
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

// App returns the policy overrides for id.
func (c *Config) App(id string) (AppConfig, bool) {
	a, ok := c.Apps[id]
	return a, ok
}
