package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/odvcencio/lattice/pkg/bus"
	"github.com/odvcencio/lattice/pkg/config"
	lerrors "github.com/odvcencio/lattice/pkg/errors"
	"github.com/odvcencio/lattice/pkg/logging"
	"github.com/odvcencio/lattice/pkg/telemetry"
	"github.com/odvcencio/lattice/pkg/ui/apps"
	"github.com/odvcencio/lattice/pkg/ui/backend/tcell"
	"github.com/odvcencio/lattice/pkg/ui/command"
	"github.com/odvcencio/lattice/pkg/ui/demo"
	"github.com/odvcencio/lattice/pkg/ui/host"
	"github.com/odvcencio/lattice/pkg/ui/theme"
)

// inboundBuffer is the capacity of the channel external events (bus
// messages and config reloads) take into the host loop.
const inboundBuffer = 64

type runOptions struct {
	configPath  string
	app         string
	root        string
	theme       string
	logLevel    string
	jobs        int
	bus         bool
	metricsAddr string
	trace       bool
}

// isTerminal is swapped in tests.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// loadConfig reads the configuration and returns it with the file that
// settings should be saved to and watched.
func loadConfig(opts *runOptions) (*config.Config, string, error) {
	if opts.configPath != "" {
		path := config.ExpandHome(opts.configPath)
		cfg, err := config.LoadFromPath(path)
		return cfg, path, err
	}
	cfg, err := config.Load()
	return cfg, config.UserConfigPath(), err
}

// applyFlags layers command line overrides over cfg and revalidates.
func applyFlags(cfg *config.Config, opts *runOptions) error {
	if opts.theme != "" {
		cfg.UI.Theme = opts.theme
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if opts.bus {
		cfg.Bus.Enabled = true
	}
	if opts.metricsAddr != "" {
		cfg.Telemetry.MetricsAddr = opts.metricsAddr
	}
	if opts.trace {
		cfg.Telemetry.Trace = true
	}
	return cfg.Validate()
}

func run(ctx context.Context, opts *runOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if !isTerminal() {
		return lerrors.New(lerrors.ErrCodeNotTerminal, "lattice needs an interactive terminal").
			WithUserMessage("lattice draws a full-screen interface and needs a terminal on stdin and stdout.").
			WithRemediation("run it directly in a terminal rather than through a pipe",
				"use `lattice apps` or `lattice config` for non-interactive output")
	}

	cfg, cfgPath, err := loadConfig(opts)
	if err != nil {
		return withExitCode(err, exitConfig)
	}
	if err := applyFlags(cfg, opts); err != nil {
		return withExitCode(err, exitConfig)
	}

	logger, err := logging.Open(cfg.LogPath())
	if err != nil {
		return withExitCode(err, exitIOErr)
	}
	defer logger.Close()
	if level, err := logging.ParseLevel(cfg.Logging.Level); err == nil {
		logger.SetMinLevel(level)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := telemetry.NewMetrics()
	if addr := cfg.Telemetry.MetricsAddr; addr != "" {
		srv, err := serveMetrics(addr, metrics, logger)
		if err != nil {
			return withExitCode(err, exitIOErr)
		}
		defer shutdownServer(srv)
	}
	if cfg.Telemetry.Trace {
		shutdown, err := startTracing(cfg.LogPath() + ".traces")
		if err != nil {
			logger.Warn(logging.CategoryLifecycle, "trace_disabled", "could not start tracing", map[string]any{"error": err.Error()})
		} else {
			defer shutdown()
		}
	}

	inbound := make(chan command.Event, inboundBuffer)
	mirror, closeBus, err := connectBus(ctx, cfg, logger, metrics, inbound)
	if err != nil {
		return withExitCode(err, exitIOErr)
	}
	defer closeBus()

	orch := apps.New(apps.Options{
		Config:  cfg,
		Theme:   theme.Named(cfg.UI.Theme),
		Logger:  logger,
		Metrics: metrics,
		Mirror:  mirror,
	})
	root, err := filepath.Abs(config.ExpandHome(opts.root))
	if err != nil {
		return lerrors.Wrap(err, lerrors.ErrCodeInvalidInput, "resolve explorer root").WithContext("root", opts.root)
	}
	orch.Register(apps.LoadingSpec())
	for _, sp := range demo.Specs(demo.Options{
		Root:       os.DirFS(root),
		RootName:   filepath.Base(root),
		Config:     cfg,
		ConfigPath: cfgPath,
		Jobs:       opts.jobs,
	}) {
		orch.Register(sp)
	}
	if err := orch.Start(command.AppID(opts.app), nil); err != nil {
		return withExitCode(err, exitUsage)
	}

	if cfgPath != "" {
		go watchConfig(ctx, cfgPath, logger, inbound)
	}

	be, err := tcell.New()
	if err != nil {
		return lerrors.Wrap(err, lerrors.ErrCodeBackendInit, "open terminal")
	}
	logger.Info(logging.CategoryLifecycle, "startup", "lattice starting", map[string]any{
		"app": opts.app, "config": cfgPath, "bus": cfg.Bus.Enabled, "version": version,
	})
	err = host.New(host.Config{
		Backend:       be,
		Orchestrator:  orch,
		FrameInterval: cfg.UI.FrameInterval,
		Inbound:       inbound,
		Logger:        logger,
	}).Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// connectBus builds the pub/sub mirror when the bus is enabled and feeds
// inbound subjects into events. The returned func releases the connection.
func connectBus(ctx context.Context, cfg *config.Config, logger *logging.Logger, metrics *telemetry.Metrics, events chan<- command.Event) (*apps.Mirror, func(), error) {
	if !cfg.Bus.Enabled {
		return nil, func() {}, nil
	}
	bcfg := bus.DefaultConfig()
	bcfg.URL = cfg.Bus.URL
	nb, err := bus.NewNATSBus(bcfg)
	if err != nil {
		return nil, nil, err
	}
	mirror := apps.NewMirror(nb, apps.MirrorOptions{
		Prefix:        cfg.Bus.SubjectPrefix,
		RatePerSecond: cfg.Bus.RatePerSecond,
		Logger:        logger,
		Metrics:       metrics,
	})
	sub, err := mirror.Subscribe(ctx, events)
	if err != nil {
		nb.Close()
		return nil, nil, err
	}
	logger.Info(logging.CategoryBus, "connected", "mirroring events", map[string]any{
		"url": cfg.Bus.URL, "prefix": cfg.Bus.SubjectPrefix,
	})
	return mirror, func() {
		_ = sub.Unsubscribe()
		_ = nb.Close()
	}, nil
}

// watchConfig forwards reloaded configuration to the applications.
func watchConfig(ctx context.Context, path string, logger *logging.Logger, events chan<- command.Event) {
	err := config.Watch(ctx, path, func(cfg *config.Config, err error) {
		if err != nil {
			logger.Warn(logging.CategoryConfig, "reload_failed", "config reload failed", map[string]any{"error": err.Error()})
			return
		}
		select {
		case events <- command.Event{Topic: demo.TopicConfigReloaded, Payload: cfg, Source: "config"}:
			logger.Info(logging.CategoryConfig, "reloaded", "config reloaded", map[string]any{"path": path})
		default:
			logger.Warn(logging.CategoryConfig, "reload_dropped", "inbound queue full", nil)
		}
	})
	if err != nil {
		logger.Warn(logging.CategoryConfig, "watch_failed", "not watching config", map[string]any{"path": path, "error": err.Error()})
	}
}

// startTracing installs a span exporter writing to path.
func startTracing(path string) (func(), error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	tp, err := telemetry.NewTracerProvider("lattice", f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = tp.Shutdown(ctx)
		closeQuietly(f)
	}, nil
}

func closeQuietly(c io.Closer) {
	_ = c.Close()
}
