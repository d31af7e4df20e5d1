package apps

import (
	"time"

	"github.com/odvcencio/lattice/pkg/config"
	lerrors "github.com/odvcencio/lattice/pkg/errors"
	"github.com/odvcencio/lattice/pkg/logging"
	"github.com/odvcencio/lattice/pkg/telemetry"
	"github.com/odvcencio/lattice/pkg/ui/command"
	"github.com/odvcencio/lattice/pkg/ui/layout"
	"github.com/odvcencio/lattice/pkg/ui/render"
	"github.com/odvcencio/lattice/pkg/ui/runtime"
	"github.com/odvcencio/lattice/pkg/ui/terminal"
	"github.com/odvcencio/lattice/pkg/ui/theme"
)

// maxSettleIterations bounds the broadcast and navigate loop.
const maxSettleIterations = 5

// Options configures an Orchestrator.
type Options struct {
	Config  *config.Config
	Theme   *theme.Theme
	Logger  *logging.Logger
	Metrics *telemetry.Metrics
	// Mirror copies every broadcast event to an external bus.
	Mirror *Mirror
	Now    func() time.Time
}

type entry struct {
	spec       Spec
	handle     Handle
	state      Lifecycle
	lastActive time.Time
	// left is when the application last went to the background.
	left time.Time
	// suspended is set while a suspend hook awaits its resume.
	suspended bool
}

// AppInfo is a row of the overview.
type AppInfo struct {
	ID         command.AppID
	Title      string
	State      Lifecycle
	LastActive time.Time
	Active     bool
}

// Orchestrator owns every application runtime. Like a Runtime it is driven
// from a single goroutine.
type Orchestrator struct {
	opts Options
	cfg  *config.Config
	log  *logging.Logger

	entries map[command.AppID]*entry
	order   []command.AppID
	active  command.AppID

	keys     globalKeys
	global   *runtime.Runtime[*globalState, GlobalMsg]
	composer render.Composer
	inbound  []command.Event

	quit  bool
	dirty bool
}

// globalKeys holds the configurable shortcuts. A nil entry is disabled.
type globalKeys struct {
	help, launcher, overview, quit *terminal.Binding
}

func parseKey(s string) *terminal.Binding {
	if s == "" {
		return nil
	}
	b, err := terminal.ParseBinding(s)
	if err != nil {
		return nil
	}
	return &b
}

// New creates an orchestrator. Applications are added with Register and
// the first one is shown by Start.
func New(opts Options) *Orchestrator {
	if opts.Config == nil {
		opts.Config = config.DefaultConfig()
	}
	if opts.Theme == nil {
		opts.Theme = theme.Named(opts.Config.UI.Theme)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	cfg := opts.Config
	o := &Orchestrator{
		opts:    opts,
		cfg:     cfg,
		log:     opts.Logger,
		entries: make(map[command.AppID]*entry),
		keys: globalKeys{
			help:     parseKey(cfg.Keys.Help),
			launcher: parseKey(cfg.Keys.Launcher),
			overview: parseKey(cfg.Keys.Overview),
			quit:     parseKey(cfg.Keys.Quit),
		},
		dirty: true,
	}
	o.global = runtime.New[*globalState, GlobalMsg](&globalApp{o: o}, nil, o.runtimeOptions("global"))
	return o
}

// Register adds an application identity. Policies found in the config's
// apps section override the spec's own.
func (o *Orchestrator) Register(spec Spec) {
	if c, ok := o.cfg.Apps[string(spec.ID)]; ok {
		spec.Quit, spec.Suspend = PolicyFromConfig(c)
	}
	if spec.Title == "" {
		spec.Title = string(spec.ID)
	}
	if _, ok := o.entries[spec.ID]; !ok {
		o.order = append(o.order, spec.ID)
	}
	o.entries[spec.ID] = &entry{spec: spec}
}

func (o *Orchestrator) runtimeOptions(id command.AppID) runtime.Options {
	loading := command.AppID("")
	if _, ok := o.entries[LoadingAppID]; ok {
		loading = LoadingAppID
	}
	return runtime.Options{
		ID:         id,
		Theme:      o.opts.Theme,
		HoverFocus: o.cfg.UI.HoverFocus,
		Loading:    loading,
		Logger:     o.log.For(string(id)),
		Metrics:    o.opts.Metrics,
		Now:        o.opts.Now,

		MaxConcurrentOps: o.cfg.UI.MaxConcurrentOps,
	}
}

// Start creates eager applications in the background and navigates to
// initial.
func (o *Orchestrator) Start(initial command.AppID, params any) error {
	if _, ok := o.entries[initial]; !ok {
		return lerrors.New(lerrors.ErrCodeAppUnknown, "initial application is not registered").
			WithContext("app", string(initial))
	}
	for _, id := range o.order {
		e := o.entries[id]
		if e.spec.Eager && id != initial && e.spec.Quit.Kind != QuitOnExit {
			o.create(e, nil)
		}
	}
	o.navigate(runtime.Navigation{Target: initial, Params: params, Restart: true})
	o.settle()
	return nil
}

// Active returns the id of the application receiving input.
func (o *Orchestrator) Active() command.AppID {
	return o.active
}

// Lifecycle returns the state of id.
func (o *Orchestrator) Lifecycle(id command.AppID) Lifecycle {
	if e, ok := o.entries[id]; ok {
		return e.state
	}
	return NotCreated
}

// LastActive returns when id last became active.
func (o *Orchestrator) LastActive(id command.AppID) time.Time {
	if e, ok := o.entries[id]; ok {
		return e.lastActive
	}
	return time.Time{}
}

// Handle returns the live runtime of id.
func (o *Orchestrator) Handle(id command.AppID) (Handle, bool) {
	e, ok := o.entries[id]
	if !ok || !e.state.Live() {
		return nil, false
	}
	return e.handle, true
}

// Apps lists every registered application in registration order.
func (o *Orchestrator) Apps() []AppInfo {
	out := make([]AppInfo, 0, len(o.order))
	for _, id := range o.order {
		e := o.entries[id]
		out = append(out, AppInfo{
			ID:         id,
			Title:      e.spec.Title,
			State:      e.state,
			LastActive: e.lastActive,
			Active:     id == o.active,
		})
	}
	return out
}

// Quitting reports whether the host loop should stop.
func (o *Orchestrator) Quitting() bool {
	return o.quit
}

// RequestQuit stops the host loop without confirmation.
func (o *Orchestrator) RequestQuit() {
	o.quit = true
}

// GlobalModalOpen reports whether a global modal traps input.
func (o *Orchestrator) GlobalModalOpen() bool {
	return o.global.State().modal != modalNone
}

func (o *Orchestrator) activeHandle() Handle {
	e, ok := o.entries[o.active]
	if !ok || e.state != Running {
		panic("apps: active application " + string(o.active) + " has no runtime")
	}
	return e.handle
}

// live iterates live entries, active first, then in registration order.
func (o *Orchestrator) live() []*entry {
	out := make([]*entry, 0, len(o.order))
	if e, ok := o.entries[o.active]; ok && e.state.Live() {
		out = append(out, e)
	}
	for _, id := range o.order {
		e := o.entries[id]
		if id != o.active && e.state.Live() {
			out = append(out, e)
		}
	}
	return out
}

// HandleEvent routes one input event and settles. It reports whether a
// redraw is needed.
func (o *Orchestrator) HandleEvent(ev terminal.Event) bool {
	switch ev := ev.(type) {
	case terminal.KeyEvent:
		o.HandleKey(ev)
	case terminal.MouseEvent:
		if o.GlobalModalOpen() {
			o.global.HandleMouse(ev)
		} else {
			o.activeHandle().HandleMouse(ev)
		}
	case terminal.PasteEvent:
		if o.GlobalModalOpen() {
			o.global.HandlePaste(ev.Text)
		} else {
			o.activeHandle().HandlePaste(ev.Text)
		}
	case terminal.ResizeEvent:
		o.dirty = true
	}
	o.settle()
	return o.takeDirty()
}

// HandleKey applies the input priority: global modal, raw capture, global
// shortcuts, focus cycling, then the active application.
func (o *Orchestrator) HandleKey(ev terminal.KeyEvent) {
	if o.GlobalModalOpen() {
		o.modalKey(ev)
		return
	}
	active := o.activeHandle()
	if active.CapturesRawInput() {
		active.HandleKey(ev)
		return
	}
	if msg, ok := o.shortcut(ev); ok {
		o.global.Send(msg)
		return
	}
	switch {
	case ev.Key == terminal.KeyTab && ev.Mods == 0:
		active.FocusNext()
	case ev.Key == terminal.KeyBacktab:
		active.FocusPrev()
	default:
		active.HandleKey(ev)
	}
}

// shortcut tests the global shortcuts in fixed order.
func (o *Orchestrator) shortcut(ev terminal.KeyEvent) (GlobalMsg, bool) {
	for _, s := range []struct {
		key  *terminal.Binding
		kind modalKind
	}{
		{o.keys.help, modalHelp},
		{o.keys.launcher, modalLauncher},
		{o.keys.overview, modalOverview},
		{o.keys.quit, modalQuit},
	} {
		if s.key != nil && s.key.Matches(ev) {
			return GlobalMsg{Kind: globalOpen, Modal: s.kind}, true
		}
	}
	return GlobalMsg{}, false
}

// modalKey routes a key while a global modal is open: focus cycling, then
// the focused element and its popup, then Escape closes the modal, then the
// modal's hotkeys. The modal consumes every key.
func (o *Orchestrator) modalKey(ev terminal.KeyEvent) {
	switch {
	case ev.Key == terminal.KeyTab && ev.Mods == 0:
		o.global.FocusNext()
	case ev.Key == terminal.KeyBacktab:
		o.global.FocusPrev()
	case o.global.HandleFocusedKey(ev):
	case ev.Is(terminal.KeyEscape):
		o.global.Send(GlobalMsg{Kind: globalClose})
	default:
		o.global.HandleShortcut(ev)
	}
	o.dirty = true
}

// Inject queues an event from outside the process for the next broadcast.
func (o *Orchestrator) Inject(ev command.Event) {
	o.inbound = append(o.inbound, ev)
	o.settle()
}

// Poll ticks every live application, evicts idle ones, and settles.
func (o *Orchestrator) Poll(now time.Time) bool {
	o.opts.Metrics.ObservePoll()
	for _, e := range o.live() {
		if e.handle.Poll(now) {
			o.dirty = true
		}
	}
	if o.global.Poll(now) {
		o.dirty = true
	}
	o.evictIdle(now)
	o.settle()
	return o.takeDirty()
}

func (o *Orchestrator) evictIdle(now time.Time) {
	for _, id := range o.order {
		e := o.entries[id]
		if e.state != Background || e.spec.Quit.Kind != QuitOnIdle {
			continue
		}
		if idle := now.Sub(e.left); idle >= e.spec.Quit.IdleTimeout {
			o.log.Info(logging.CategoryLifecycle, "idle_evicted", "idle application destroyed",
				map[string]any{"app": string(id), "idle": idle.String()})
			o.destroy(e)
		}
	}
}

func (o *Orchestrator) takeDirty() bool {
	dirty := o.dirty
	o.dirty = false
	for _, e := range o.live() {
		if e.handle.TakeDirty() && e.state == Running {
			dirty = true
		}
	}
	if o.global.TakeDirty() {
		dirty = true
	}
	return dirty
}

// Render composes the active application under the header and any global
// modal, then reconciles focus for whichever surface took input.
func (o *Orchestrator) Render(buf *render.Buffer) {
	start := o.opts.Now()
	active := o.activeHandle()

	appSheets := active.Frame()
	sheets := make([]render.Sheet, 0, len(appSheets)+2)
	for _, s := range appSheets {
		s.Surface = insetSurface{Surface: s.Surface, top: headerHeight}
		sheets = append(sheets, s)
	}
	for i, s := range o.global.Frame() {
		if i == 0 {
			s.Kind = render.GlobalUI
		} else {
			s.Kind = render.GlobalModal
		}
		sheets = append(sheets, s)
	}

	top := o.composer.Compose(buf, sheets)
	active.Reconcile(top >= 0 && top < len(appSheets))
	o.global.Reconcile(top >= len(appSheets))
	o.settle()

	o.opts.Metrics.ObserveFrame(o.opts.Now().Sub(start))
}

// insetSurface places a surface's layers below the header.
type insetSurface struct {
	render.Surface
	top int
}

func (s insetSurface) LayerBox(i int, screen layout.Rect) (layout.Rect, bool) {
	return s.Surface.LayerBox(i, screen.Inset(s.top, 0, 0, 0))
}
