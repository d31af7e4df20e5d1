package runtime

import (
	"context"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/odvcencio/lattice/pkg/logging"
	"github.com/odvcencio/lattice/pkg/ui/command"
	"github.com/odvcencio/lattice/pkg/ui/element"
	"github.com/odvcencio/lattice/pkg/ui/layout"
	"github.com/odvcencio/lattice/pkg/ui/render"
	"github.com/odvcencio/lattice/pkg/ui/widgetstate"
)

// maxFocusHistory bounds the remembered focus ids per layer.
const maxFocusHistory = 16

// Runtime owns one application's state and everything derived from it. All
// methods must be called from a single goroutine; only deferred operations
// run elsewhere, and they talk back through channels.
type Runtime[S, Msg any] struct {
	app   Application[S, Msg]
	state S
	opts  Options
	log   *logging.Logger

	renderer *render.Renderer[Msg]
	composer render.Composer

	focused element.FocusID
	history map[int][]element.FocusID
	// restoring is set when focus was lost to a rebuild rather than by
	// request, until history yields a replacement.
	restoring bool

	subs   []command.Subscription[Msg]
	keys   []command.Keyboard[Msg]
	topics []command.Subscribe[Msg]
	timers map[string]time.Time

	ops     []*op[Msg]
	sets    []*taskSet[Msg]
	limiter *semaphore.Weighted
	ctx     context.Context
	cancel context.CancelFunc

	outbox []command.Event
	nav    *Navigation
	quit   bool
	dirty  bool

	hover     layout.Rect
	hovering  bool
	hoverExit func() Msg

	viewports map[string][2]int
	destroyed bool
}

// New creates the application's state through Init and executes the
// returned command.
func New[S, Msg any](app Application[S, Msg], params any, opts Options) *Runtime[S, Msg] {
	opts = opts.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	r := &Runtime[S, Msg]{
		app:       app,
		opts:      opts,
		log:       opts.Logger,
		renderer:  render.NewRenderer[Msg](opts.Theme),
		history:   make(map[int][]element.FocusID),
		timers:    make(map[string]time.Time),
		ctx:       ctx,
		cancel:    cancel,
		viewports: make(map[string][2]int),
		dirty:     true,
	}
	if opts.MaxConcurrentOps > 0 {
		r.limiter = semaphore.NewWeighted(int64(opts.MaxConcurrentOps))
	}
	state, cmd := app.Init(params)
	r.state = state
	r.refreshSubscriptions()
	r.exec(cmd)
	r.log.Info(logging.CategoryLifecycle, "created", "application created", map[string]any{"title": app.Title()})
	return r
}

// ID returns the id the runtime was created under.
func (r *Runtime[S, Msg]) ID() command.AppID {
	return r.opts.ID
}

// State returns the application state.
func (r *Runtime[S, Msg]) State() S {
	return r.state
}

// Title returns the application's static title.
func (r *Runtime[S, Msg]) Title() string {
	return r.app.Title()
}

// Status returns the dynamic status line, if the application has one.
func (r *Runtime[S, Msg]) Status() string {
	if s, ok := r.app.(Statuser[S]); ok {
		return s.Status(r.state)
	}
	return ""
}

// CapturesRawInput reports whether global shortcuts must be skipped.
func (r *Runtime[S, Msg]) CapturesRawInput() bool {
	if c, ok := r.app.(RawInputCapturer[S]); ok {
		return c.CapturesRawInput(r.state)
	}
	return false
}

// Focused returns the focused id, or "" when nothing is focused.
func (r *Runtime[S, Msg]) Focused() element.FocusID {
	return r.focused
}

// Renderer exposes the registries filled by the last frame.
func (r *Runtime[S, Msg]) Renderer() *render.Renderer[Msg] {
	return r.renderer
}

// Send feeds msg to Update as if an input binding produced it.
func (r *Runtime[S, Msg]) Send(msg Msg) {
	r.apply(msg)
}

// Shortcuts lists the keyboard subscriptions that carry a description.
func (r *Runtime[S, Msg]) Shortcuts() []Shortcut {
	out := make([]Shortcut, 0, len(r.keys))
	for _, k := range r.keys {
		if k.Description == "" {
			continue
		}
		out = append(out, Shortcut{Key: k.Key.String(), Description: k.Description})
	}
	return out
}

// TakePublishes drains events published since the last call.
func (r *Runtime[S, Msg]) TakePublishes() []command.Event {
	out := r.outbox
	r.outbox = nil
	return out
}

// TakeNavigation returns and clears the pending navigation request. When
// several were issued the last one wins.
func (r *Runtime[S, Msg]) TakeNavigation() (Navigation, bool) {
	if r.nav == nil {
		return Navigation{}, false
	}
	n := *r.nav
	r.nav = nil
	return n, true
}

// QuitRequested reports whether the application issued Quit.
func (r *Runtime[S, Msg]) QuitRequested() bool {
	return r.quit
}

// Deliver routes a published event to matching Subscribe handlers. It
// reports whether any handler produced a message.
func (r *Runtime[S, Msg]) Deliver(ev command.Event) bool {
	if r.destroyed {
		return false
	}
	handled := false
	// Updates may replace r.topics; iterate the set current at delivery.
	for _, s := range slices.Clone(r.topics) {
		if s.Topic != ev.Topic || s.Handler == nil {
			continue
		}
		if m, ok := s.Handler(ev.Payload); ok {
			r.apply(m)
			handled = true
		}
	}
	return handled
}

// Suspend runs the suspend hook.
func (r *Runtime[S, Msg]) Suspend() {
	if s, ok := r.app.(Suspender[S, Msg]); ok {
		r.exec(s.OnSuspend(r.state))
	}
	r.clearHover()
}

// Resume runs the resume hook.
func (r *Runtime[S, Msg]) Resume() {
	if s, ok := r.app.(Suspender[S, Msg]); ok {
		r.exec(s.OnResume(r.state))
	}
	r.dirty = true
}

// Destroy cancels every outstanding operation and drops all scheduling
// state. The runtime must not be used afterwards.
func (r *Runtime[S, Msg]) Destroy() {
	if r.destroyed {
		return
	}
	r.destroyed = true
	r.cancel()
	for _, s := range r.sets {
		s.finish()
	}
	r.ops = nil
	r.sets = nil
	r.timers = map[string]time.Time{}
	r.opts.Metrics.SetPending(string(r.opts.ID), 0)
	r.log.Info(logging.CategoryLifecycle, "destroyed", "application destroyed", nil)
}

// TakeDirty reports whether anything changed since the last call.
func (r *Runtime[S, Msg]) TakeDirty() bool {
	d := r.dirty
	r.dirty = false
	return d
}

// apply runs one update and everything it asks for.
func (r *Runtime[S, Msg]) apply(msg Msg) {
	if r.destroyed {
		return
	}
	cmd := r.app.Update(r.state, msg)
	r.refreshSubscriptions()
	r.exec(cmd)
	r.dirty = true
}

func (r *Runtime[S, Msg]) exec(cmd command.Command[Msg]) {
	for _, c := range command.Flatten(cmd) {
		switch c := c.(type) {
		case command.Quit[Msg]:
			r.quit = true
			r.log.Info(logging.CategoryLifecycle, "quit", "application requested quit", nil)
		case command.NavigateTo[Msg]:
			r.nav = &Navigation{Target: c.Target}
		case command.StartApp[Msg]:
			r.nav = &Navigation{Target: c.Target, Params: c.Params, Restart: true}
		case command.Publish[Msg]:
			r.publish(c.Topic, c.Payload)
		case command.Perform[Msg]:
			r.perform(c)
		case command.PerformParallel[Msg]:
			r.startSet(c)
		case command.SetFocus[Msg]:
			r.setFocus(c.ID)
		case command.ClearFocus[Msg]:
			r.blur()
		default:
			panic(fmt.Sprintf("runtime: unknown command %T", c))
		}
	}
}

func (r *Runtime[S, Msg]) publish(topic string, payload any) {
	r.outbox = append(r.outbox, command.Event{Topic: topic, Payload: payload, Source: r.opts.ID})
}

// refreshSubscriptions replaces the subscription set from the current
// state. Timers keep their last fire time when their identity survives.
func (r *Runtime[S, Msg]) refreshSubscriptions() {
	r.subs = r.app.Subscriptions(r.state)
	r.keys = r.keys[:0]
	r.topics = r.topics[:0]
	for _, s := range r.subs {
		switch s := s.(type) {
		case command.Keyboard[Msg]:
			r.keys = append(r.keys, s)
		case command.Subscribe[Msg]:
			r.topics = append(r.topics, s)
		}
	}

	now := r.opts.Now()
	live := command.TimerKeys(r.subs)
	for _, key := range live {
		if _, ok := r.timers[key]; !ok {
			r.timers[key] = now
		}
	}
	for key := range r.timers {
		if !containsValue(live, key) {
			delete(r.timers, key)
		}
	}
}

func containsValue(m map[int]string, v string) bool {
	for _, s := range m {
		if s == v {
			return true
		}
	}
	return false
}

// resolve applies an input outcome. Widget events go to the state's
// auto-dispatch and the owning entry maps any change to a message.
func (r *Runtime[S, Msg]) resolve(out element.Outcome[Msg]) bool {
	switch {
	case out.HasMsg:
		r.apply(out.Msg)
		return true
	case out.Widget != nil:
		return r.dispatchWidget(*out.Widget)
	}
	return false
}

func (r *Runtime[S, Msg]) dispatchWidget(ev element.WidgetEvent) bool {
	d, ok := any(r.state).(widgetstate.Dispatcher)
	if !ok {
		return false
	}
	res := d.DispatchWidget(ev)
	if !res.Handled {
		return false
	}
	r.dirty = true
	if !res.Changed {
		return true
	}
	entry, ok := r.renderer.Focus.Entry(ev.ID)
	if ok && entry.OnChange != nil {
		if m, ok := entry.OnChange(res.Change); ok {
			r.apply(m)
		}
	}
	return true
}

// setFocus moves focus to id. The old entry's popup closes and its blur
// fires, then the new entry's focus fires, when they are registered.
func (r *Runtime[S, Msg]) setFocus(id element.FocusID) {
	if id == r.focused {
		return
	}
	if id == "" {
		r.blur()
		return
	}
	r.restoring = false
	old := r.focused
	r.closePopup(old)
	if e, ok := r.renderer.Focus.Entry(old); ok && e.OnBlur != nil {
		r.apply(e.OnBlur())
	}
	r.focused = id
	r.remember(id)
	r.dirty = true
	r.log.Debug(logging.CategoryFocus, "focus", "focus moved", map[string]any{"from": string(old), "to": string(id)})
	if e, ok := r.renderer.Focus.Entry(id); ok && e.OnFocus != nil {
		r.apply(e.OnFocus())
	}
}

// blur clears focus after closing the focused entry's popup and firing its
// blur binding.
func (r *Runtime[S, Msg]) blur() {
	r.restoring = false
	if r.focused == "" {
		return
	}
	r.closePopup(r.focused)
	e, ok := r.renderer.Focus.Entry(r.focused)
	r.focused = ""
	r.dirty = true
	if ok && e.OnBlur != nil {
		r.apply(e.OnBlur())
	}
}

// remember records id as the newest focus of the active layer.
func (r *Runtime[S, Msg]) remember(id element.FocusID) {
	depth := r.renderer.Focus.Depth()
	h := slices.DeleteFunc(r.history[depth], func(x element.FocusID) bool { return x == id })
	h = append(h, id)
	if len(h) > maxFocusHistory {
		h = h[len(h)-maxFocusHistory:]
	}
	r.history[depth] = h
}

// FocusNext moves focus forward within the active layer.
func (r *Runtime[S, Msg]) FocusNext() bool {
	id, ok := r.renderer.Focus.Next(r.focused)
	if !ok {
		return false
	}
	r.setFocus(id)
	return true
}

// FocusPrev moves focus backward within the active layer.
func (r *Runtime[S, Msg]) FocusPrev() bool {
	id, ok := r.renderer.Focus.Prev(r.focused)
	if !ok {
		return false
	}
	r.setFocus(id)
	return true
}
