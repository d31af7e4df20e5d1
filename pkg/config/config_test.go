package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	lerrors "github.com/odvcencio/lattice/pkg/errors"
	"github.com/odvcencio/lattice/pkg/config"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.UI.FrameInterval != 16*time.Millisecond {
		t.Errorf("frame interval = %v", cfg.UI.FrameInterval)
	}
	if cfg.Keys.Quit != "ctrl+q" {
		t.Errorf("quit key = %q", cfg.Keys.Quit)
	}
}

func TestLoadHierarchy(t *testing.T) {
	home := t.TempDir()
	project := t.TempDir()
	t.Setenv("HOME", home)

	writeFile(t, filepath.Join(home, ".lattice", "config.yaml"), `
ui:
  scroll_off: 4
  theme: mono
apps:
  jobs:
    quit_policy: quit_on_idle
    idle_timeout: 5m
`)
	writeFile(t, filepath.Join(project, ".lattice", "config.yaml"), `
ui:
  theme: dark
keys:
  help: ""
apps:
  jobs:
    suspend_policy: always_active
`)

	oldWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldWD) })
	if err := os.Chdir(project); err != nil {
		t.Fatalf("chdir project: %v", err)
	}

	t.Setenv("LATTICE_FRAME_INTERVAL", "33ms")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load returned error: %v", err)
	}
	if cfg.UI.ScrollOff != 4 {
		t.Errorf("expected user scroll_off, got %d", cfg.UI.ScrollOff)
	}
	if cfg.UI.Theme != "dark" {
		t.Errorf("expected project theme override, got %s", cfg.UI.Theme)
	}
	if cfg.UI.FrameInterval != 33*time.Millisecond {
		t.Errorf("expected env frame interval, got %v", cfg.UI.FrameInterval)
	}
	if cfg.Keys.Help != "" {
		t.Errorf("an explicit empty binding should disable help, got %q", cfg.Keys.Help)
	}
	jobs, ok := cfg.App("jobs")
	if !ok {
		t.Fatal("jobs app config missing")
	}
	if jobs.QuitPolicy != config.QuitOnIdle || jobs.IdleTimeout != 5*time.Minute || jobs.SuspendPolicy != config.AlwaysActive {
		t.Errorf("per-app settings should merge across files: %+v", jobs)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"hover mode", func(c *config.Config) { c.UI.HoverFocus = "sometimes" }},
		{"negative scroll_off", func(c *config.Config) { c.UI.ScrollOff = -1 }},
		{"zero ops", func(c *config.Config) { c.UI.MaxConcurrentOps = 0 }},
		{"tiny frame", func(c *config.Config) { c.UI.FrameInterval = time.Microsecond }},
		{"theme", func(c *config.Config) { c.UI.Theme = "neon" }},
		{"key", func(c *config.Config) { c.Keys.Launcher = "ctrl+" }},
		{"idle without timeout", func(c *config.Config) {
			c.Apps["x"] = config.AppConfig{QuitPolicy: config.QuitOnIdle}
		}},
		{"suspend policy", func(c *config.Config) {
			c.Apps["x"] = config.AppConfig{SuspendPolicy: "hibernate"}
		}},
		{"log level", func(c *config.Config) { c.Logging.Level = "trace" }},
		{"bus rate", func(c *config.Config) {
			c.Bus.Enabled = true
			c.Bus.RatePerSecond = 0
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !lerrors.IsCode(err, lerrors.ErrCodeConfigInvalid) {
				t.Errorf("expected CONFIG_INVALID, got %v", err)
			}
		})
	}
}

func TestLoadFromPathErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := config.LoadFromPath(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("missing explicit path should fail")
	}

	bad := filepath.Join(dir, "bad.yaml")
	writeFile(t, bad, "ui: [unclosed")
	_, err := config.LoadFromPath(bad)
	if !lerrors.IsCode(err, lerrors.ErrCodeConfigParse) {
		t.Errorf("expected CONFIG_PARSE, got %v", err)
	}

	t.Setenv("LATTICE_SCROLL_OFF", "lots")
	good := filepath.Join(dir, "good.yaml")
	writeFile(t, good, "ui:\n  theme: mono\n")
	_, err = config.LoadFromPath(good)
	if !lerrors.IsCode(err, lerrors.ErrCodeConfigParse) {
		t.Errorf("bad env override should be CONFIG_PARSE, got %v", err)
	}
}

func TestEnvOverrideBusEnabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "bus:\n  url: nats://bus:4222\n")
	t.Setenv("LATTICE_BUS_ENABLED", "true")

	cfg, err := config.LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if !cfg.Bus.Enabled || cfg.Bus.URL != "nats://bus:4222" {
		t.Errorf("bus = %+v", cfg.Bus)
	}
}

func TestWatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "ui:\n  theme: dark\n")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got := make(chan *config.Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- config.Watch(ctx, path, func(cfg *config.Config, err error) {
			if err == nil {
				got <- cfg
			}
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	writeFile(t, path, "ui:\n  theme: mono\n")

	select {
	case cfg := <-got:
		if cfg.UI.Theme != "mono" {
			t.Errorf("reloaded theme = %q, want mono", cfg.UI.Theme)
		}
	case <-ctx.Done():
		t.Fatal("watch did not report the change")
	}
	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch returned %v", err)
	}
}

func TestSaveRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := config.DefaultConfig()
	cfg.UI.Theme = "mono"
	cfg.UI.FrameInterval = 40 * time.Millisecond
	cfg.Keys.Help = ""
	cfg.Apps["jobs"] = config.AppConfig{QuitPolicy: config.QuitOnIdle, IdleTimeout: 90 * time.Second}

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := config.LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if got.UI.Theme != "mono" || got.UI.FrameInterval != 40*time.Millisecond {
		t.Errorf("ui = %+v", got.UI)
	}
	if got.Keys.Help != "" {
		t.Errorf("help key = %q, want disabled", got.Keys.Help)
	}
	if app := got.Apps["jobs"]; app.QuitPolicy != config.QuitOnIdle || app.IdleTimeout != 90*time.Second {
		t.Errorf("jobs policy = %+v", app)
	}
}

func TestSaveRejectsInvalid(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.UI.Theme = "neon"
	err := cfg.Save(filepath.Join(t.TempDir(), "config.yaml"))
	if !lerrors.IsCode(err, lerrors.ErrCodeConfigInvalid) {
		t.Fatalf("Save = %v, want CONFIG_INVALID", err)
	}
}
