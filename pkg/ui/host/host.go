// Package host connects an orchestrator to a terminal backend. It owns the
// only goroutine that touches application state: input, poll ticks and
// inbound bus events are funneled into one select loop, and the screen is
// redrawn whenever any of them changed something.
package host

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/odvcencio/lattice/pkg/config"
	lerrors "github.com/odvcencio/lattice/pkg/errors"
	"github.com/odvcencio/lattice/pkg/logging"
	"github.com/odvcencio/lattice/pkg/ui/apps"
	"github.com/odvcencio/lattice/pkg/ui/backend"
	"github.com/odvcencio/lattice/pkg/ui/command"
	"github.com/odvcencio/lattice/pkg/ui/render"
	"github.com/odvcencio/lattice/pkg/ui/terminal"
)

// DefaultEventBuffer is the capacity of the input queue between the
// backend's reader and the loop.
const DefaultEventBuffer = 128

// Config configures a Host.
type Config struct {
	Backend      backend.Backend
	Orchestrator *apps.Orchestrator
	// FrameInterval is the poll cadence. Zero uses the config default.
	FrameInterval time.Duration
	// Inbound carries events from an external bus, if any.
	Inbound     <-chan command.Event
	EventBuffer int
	Logger      *logging.Logger
}

// Host runs the event loop.
type Host struct {
	backend backend.Backend
	orch    *apps.Orchestrator
	frame   time.Duration
	inbound <-chan command.Event
	events  chan terminal.Event
	log     *logging.Logger
	buf     *render.Buffer
}

// New creates a Host from cfg.
func New(cfg Config) *Host {
	size := cfg.EventBuffer
	if size <= 0 {
		size = DefaultEventBuffer
	}
	frame := cfg.FrameInterval
	if frame <= 0 {
		frame = config.DefaultFrameInterval
	}
	return &Host{
		backend: cfg.Backend,
		orch:    cfg.Orchestrator,
		frame:   frame,
		inbound: cfg.Inbound,
		events:  make(chan terminal.Event, size),
		log:     cfg.Logger,
	}
}

// Run initializes the backend and loops until an application quits or ctx
// is cancelled. The backend is restored before Run returns.
func (h *Host) Run(ctx context.Context) error {
	if h.backend == nil || h.orch == nil {
		return lerrors.New(lerrors.ErrCodeInvalidInput, "host needs a backend and an orchestrator")
	}
	if err := h.backend.Init(); err != nil {
		return lerrors.Wrap(err, lerrors.ErrCodeBackendInit, "init terminal backend")
	}
	h.backend.HideCursor()
	w, hgt := h.backend.Size()
	h.buf = render.NewBuffer(w, hgt)

	ctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		h.pump(gctx)
		return nil
	})
	g.Go(func() error {
		defer cancel()
		// Fini unblocks the reader's pending PollEvent.
		defer h.backend.Fini()
		return h.loop(gctx)
	})
	return g.Wait()
}

// pump forwards backend events until the context ends.
func (h *Host) pump(ctx context.Context) {
	for {
		ev := h.backend.PollEvent()
		if ev == nil {
			if ctx.Err() != nil {
				return
			}
			continue
		}
		select {
		case h.events <- ev:
		case <-ctx.Done():
			return
		}
	}
}

func (h *Host) loop(ctx context.Context) error {
	ticker := time.NewTicker(h.frame)
	defer ticker.Stop()

	h.log.Info(logging.CategoryLifecycle, "host_started", "event loop started",
		map[string]any{"frame_interval": h.frame.String()})
	dirty := true
	for {
		if dirty {
			h.draw()
			dirty = false
		}
		if h.orch.Quitting() {
			h.log.Info(logging.CategoryLifecycle, "host_stopped", "quit requested", nil)
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-h.events:
			dirty = h.handle(ev) || dirty
			dirty = h.drain() || dirty
		case now := <-ticker.C:
			dirty = h.orch.Poll(now) || dirty
		case ev := <-h.inbound:
			h.orch.Inject(ev)
			dirty = true
		}
	}
}

// drain handles every queued input event before the next frame.
func (h *Host) drain() bool {
	dirty := false
	for {
		select {
		case ev := <-h.events:
			dirty = h.handle(ev) || dirty
		default:
			return dirty
		}
	}
}

func (h *Host) handle(ev terminal.Event) bool {
	if r, ok := ev.(terminal.ResizeEvent); ok {
		h.buf.Resize(r.Width, r.Height)
		h.buf.MarkAllDirty()
		h.backend.Sync()
		h.log.Debug(logging.CategoryRender, "resize", "terminal resized",
			map[string]any{"width": r.Width, "height": r.Height})
	}
	return h.orch.HandleEvent(ev)
}

func (h *Host) draw() {
	h.orch.Render(h.buf)
	h.buf.Flush(h.backend)
}
