package apps

import (
	"context"

	"go.opentelemetry.io/otel/trace"

	lerrors "github.com/odvcencio/lattice/pkg/errors"
	"github.com/odvcencio/lattice/pkg/logging"
	"github.com/odvcencio/lattice/pkg/telemetry"
	"github.com/odvcencio/lattice/pkg/ui/command"
	"github.com/odvcencio/lattice/pkg/ui/runtime"
)

// settle alternates broadcasting and navigation until a round produces no
// navigation. Broadcasting first lets a background surface observe events
// published in the same tick before control moves to or from it.
func (o *Orchestrator) settle() {
	iterations := 0
	for range maxSettleIterations {
		iterations++
		o.broadcast()
		n, ok := o.takeNavigation()
		if !ok {
			break
		}
		o.navigate(n)
	}
	o.opts.Metrics.Settled(iterations)
	o.checkQuit()
}

// broadcast delivers every pending publish to every live application,
// including the publisher. Local events are also mirrored; injected ones
// are not. Events published while delivering wait for the next round.
func (o *Orchestrator) broadcast() {
	var local []command.Event
	for _, e := range o.live() {
		local = append(local, e.handle.TakePublishes()...)
	}
	local = append(local, o.global.TakePublishes()...)
	for _, ev := range local {
		o.opts.Mirror.Publish(context.Background(), ev)
	}

	events := append(o.inbound, local...)
	o.inbound = nil
	if len(events) == 0 {
		return
	}
	targets := o.live()
	for _, ev := range events {
		o.log.Debug(logging.CategoryBus, "broadcast", "event broadcast",
			map[string]any{"topic": ev.Topic, "source": string(ev.Source)})
		for _, e := range targets {
			if e.state.Live() && e.handle.Deliver(ev) {
				o.dirty = true
			}
		}
		if o.global.Deliver(ev) {
			o.dirty = true
		}
	}
}

// takeNavigation returns one pending request, looking at the global UI,
// then the active application, then the rest in registration order. Other
// requests stay pending for the next round.
func (o *Orchestrator) takeNavigation() (runtime.Navigation, bool) {
	if n, ok := o.global.TakeNavigation(); ok {
		return n, true
	}
	for _, e := range o.live() {
		if n, ok := e.handle.TakeNavigation(); ok {
			return n, true
		}
	}
	return runtime.Navigation{}, false
}

func (o *Orchestrator) checkQuit() {
	if o.global.QuitRequested() {
		o.quit = true
	}
	for _, e := range o.live() {
		if e.handle.QuitRequested() {
			o.quit = true
		}
	}
}

// navigate moves the active slot to n.Target. The outgoing application is
// transitioned per its policies; the incoming one is created, recreated or
// resumed as needed.
func (o *Orchestrator) navigate(n runtime.Navigation) {
	in, ok := o.entries[n.Target]
	if !ok {
		err := lerrors.New(lerrors.ErrCodeAppUnknown, "navigation to unregistered application ignored").
			WithContext("target", string(n.Target))
		o.log.Error(logging.CategoryNavigation, "app_unknown", err.Error(),
			map[string]any{"target": string(n.Target), "code": string(err.Code)})
		return
	}
	_, span := telemetry.StartSpan(context.Background(), "navigate",
		trace.WithAttributes(telemetry.AttrApp.String(string(o.active)), telemetry.AttrTarget.String(string(n.Target))))
	defer span.End()

	from := o.active
	if n.Target == from && !n.Restart {
		return
	}
	if out, ok := o.entries[from]; ok && from != n.Target && out.state == Running {
		o.leave(out)
	}

	switch {
	case n.Restart || !in.state.Live():
		if in.state.Live() {
			o.destroy(in)
		}
		o.create(in, n.Params)
	case in.suspended:
		in.handle.Resume()
		in.suspended = false
	}
	in.state = Running
	in.lastActive = o.opts.Now()
	o.active = n.Target
	o.dirty = true

	o.opts.Metrics.Navigated(string(n.Target))
	o.opts.Metrics.Transition(string(n.Target), Running.String())
	o.log.Info(logging.CategoryNavigation, "navigate", "active application changed",
		map[string]any{"from": string(from), "to": string(n.Target), "restart": n.Restart})
}

// leave applies the outgoing application's quit and suspend policies.
func (o *Orchestrator) leave(e *entry) {
	if e.spec.Quit.Kind == QuitOnExit {
		o.destroy(e)
		return
	}
	e.left = o.opts.Now()
	switch e.spec.Suspend {
	case QuitOnSuspend:
		o.destroy(e)
	case AlwaysActive:
		e.state = Background
		o.opts.Metrics.Transition(string(e.spec.ID), Background.String())
	default:
		e.handle.Suspend()
		e.suspended = true
		e.state = Background
		o.opts.Metrics.Transition(string(e.spec.ID), Background.String())
	}
}

func (o *Orchestrator) create(e *entry, params any) {
	e.handle = e.spec.Factory(params, o.runtimeOptions(e.spec.ID))
	e.suspended = false
	e.state = Background
	e.left = o.opts.Now()
}

func (o *Orchestrator) destroy(e *entry) {
	if e.handle != nil {
		e.handle.Destroy()
	}
	e.handle = nil
	e.suspended = false
	e.state = Dead
	o.opts.Metrics.Transition(string(e.spec.ID), Dead.String())
}
