package runtime

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/odvcencio/lattice/pkg/logging"
	"github.com/odvcencio/lattice/pkg/telemetry"
	"github.com/odvcencio/lattice/pkg/ui/command"
)

// op is a deferred operation. Its goroutine sends exactly once on a channel
// with room for one value, so it never blocks on a runtime that stopped
// polling.
type op[Msg any] struct {
	name string
	done chan Msg
}

// taskSet coordinates one PerformParallel. Slots are written only by the
// polling goroutine as each wrapper's channel is drained.
type taskSet[Msg any] struct {
	id         string
	names      []string
	combine    func(int, any) Msg
	onComplete command.AppID
	results    []chan any
	slots      []any
	filled     []bool
	remaining  int
	cancel     context.CancelFunc
	span       trace.Span
}

func (s *taskSet[Msg]) finish() {
	s.cancel()
	s.span.End()
}

// run acquires one of this runtime's slots and then calls fn. A cancelled
// context abandons the operation without sending.
func (r *Runtime[S, Msg]) run(ctx context.Context, fn func(context.Context)) {
	lim := r.limiter
	go func() {
		if lim != nil {
			if err := lim.Acquire(ctx, 1); err != nil {
				return
			}
			defer lim.Release(1)
		}
		fn(ctx)
	}()
}

func (r *Runtime[S, Msg]) perform(p command.Perform[Msg]) {
	if p.Op == nil {
		return
	}
	o := &op[Msg]{name: p.Name, done: make(chan Msg, 1)}
	r.ops = append(r.ops, o)
	r.run(r.ctx, func(ctx context.Context) {
		o.done <- p.Op(ctx)
	})
	r.reportPending()
}

// startSet requests the loading surface, announces the set, and spawns one
// wrapper per task.
func (r *Runtime[S, Msg]) startSet(p command.PerformParallel[Msg]) {
	id := ulid.Make().String()
	names := make([]string, len(p.Tasks))
	for i, t := range p.Tasks {
		names[i] = t.Name
	}

	loading := p.Config.Loading
	if loading == "" {
		loading = r.opts.Loading
	}
	if loading != "" {
		r.nav = &Navigation{Target: loading}
	}
	r.publish(command.TopicTaskSetStarted, command.TaskSetStarted{
		SetID:       id,
		Origin:      r.opts.ID,
		Title:       p.Config.Title,
		Names:       names,
		Cancellable: p.Config.Cancellable,
	})

	onComplete := p.Config.OnComplete
	if onComplete == "" {
		onComplete = r.opts.ID
	}
	ctx, cancel := context.WithCancel(r.ctx)
	ctx, span := telemetry.StartSpan(ctx, "task_set",
		trace.WithAttributes(
			telemetry.AttrApp.String(string(r.opts.ID)),
			telemetry.AttrTaskSet.String(id),
			telemetry.AttrTaskCount.Int(len(p.Tasks)),
		))
	set := &taskSet[Msg]{
		id:         id,
		names:      names,
		combine:    p.Combine,
		onComplete: onComplete,
		results:    make([]chan any, len(p.Tasks)),
		slots:      make([]any, len(p.Tasks)),
		filled:     make([]bool, len(p.Tasks)),
		remaining:  len(p.Tasks),
		cancel:     cancel,
		span:       span,
	}
	for i, t := range p.Tasks {
		ch := make(chan any, 1)
		set.results[i] = ch
		r.run(ctx, func(ctx context.Context) {
			tctx, tspan := telemetry.StartSpan(ctx, "task",
				trace.WithAttributes(telemetry.AttrTaskName.String(t.Name)))
			defer tspan.End()
			var result any
			if t.Run != nil {
				result = t.Run(tctx)
			}
			ch <- result
		})
	}
	r.sets = append(r.sets, set)

	r.opts.Metrics.TaskSet(string(r.opts.ID), "started")
	r.log.Info(logging.CategoryScheduler, "task_set_started", "parallel task set started",
		map[string]any{"set": id, "tasks": names, "loading": string(loading)})
	r.reportPending()
}

// Pending returns how many deferred operations and unfinished tasks remain.
func (r *Runtime[S, Msg]) Pending() int {
	n := len(r.ops)
	for _, s := range r.sets {
		n += s.remaining
	}
	return n
}

func (r *Runtime[S, Msg]) reportPending() {
	r.opts.Metrics.SetPending(string(r.opts.ID), r.Pending())
}

// Poll performs one cooperative tick: a single non-blocking readiness check
// of every deferred operation and task wrapper, then timers. It reports
// whether anything was delivered to Update.
func (r *Runtime[S, Msg]) Poll(now time.Time) bool {
	if r.destroyed {
		return false
	}
	before := r.dirty
	r.dirty = false

	r.pollOps()
	r.pollSets()
	r.pollTimers(now)

	delivered := r.dirty
	r.dirty = r.dirty || before
	return delivered
}

func (r *Runtime[S, Msg]) pollOps() {
	if len(r.ops) == 0 {
		return
	}
	var ready []Msg
	kept := r.ops[:0]
	for _, o := range r.ops {
		select {
		case m := <-o.done:
			ready = append(ready, m)
			r.log.Debug(logging.CategoryScheduler, "op_ready", "operation ready", map[string]any{"op": o.name})
		default:
			kept = append(kept, o)
		}
	}
	clear(r.ops[len(kept):])
	r.ops = kept
	// Updates below may enqueue more operations onto r.ops.
	for _, m := range ready {
		r.opts.Metrics.OpCompleted(string(r.opts.ID), "perform")
		r.apply(m)
	}
	if len(ready) > 0 {
		r.reportPending()
	}
}

func (r *Runtime[S, Msg]) pollSets() {
	if len(r.sets) == 0 {
		return
	}
	var complete []*taskSet[Msg]
	for _, s := range r.sets {
		for i, ch := range s.results {
			if s.filled[i] {
				continue
			}
			select {
			case v := <-ch:
				s.slots[i] = v
				s.filled[i] = true
				s.remaining--
				r.publish(command.TopicTaskDone, command.TaskDone{SetID: s.id, Index: i, Name: s.names[i]})
				r.opts.Metrics.OpCompleted(string(r.opts.ID), "task")
			default:
			}
		}
		if s.remaining == 0 {
			complete = append(complete, s)
		}
	}
	for _, s := range complete {
		r.completeSet(s)
	}
	r.reportPending()
}

// completeSet consumes a finished coordinator exactly once: index-ordered
// delivery, then the completion navigation, then purge.
func (r *Runtime[S, Msg]) completeSet(s *taskSet[Msg]) {
	r.sets = removeSet(r.sets, s)
	if s.combine != nil {
		for i, v := range s.slots {
			r.apply(s.combine(i, v))
		}
	}
	r.publish(command.TopicTaskSetDone, command.TaskSetDone{SetID: s.id, Count: len(s.slots)})
	r.nav = &Navigation{Target: s.onComplete}
	s.span.SetStatus(codes.Ok, "")
	s.finish()
	clear(s.slots)
	s.results = nil

	r.opts.Metrics.TaskSet(string(r.opts.ID), "done")
	r.log.Info(logging.CategoryScheduler, "task_set_done", "parallel task set delivered",
		map[string]any{"set": s.id, "count": len(s.names), "next": string(s.onComplete)})
}

func removeSet[Msg any](sets []*taskSet[Msg], s *taskSet[Msg]) []*taskSet[Msg] {
	for i, x := range sets {
		if x == s {
			return append(sets[:i], sets[i+1:]...)
		}
	}
	return sets
}

// pollTimers fires every due timer from the subscription set current at the
// start of the tick.
func (r *Runtime[S, Msg]) pollTimers(now time.Time) {
	if len(r.timers) == 0 {
		return
	}
	subs := r.subs
	keys := command.TimerKeys(subs)
	var fired []Msg
	for i, s := range subs {
		t, ok := s.(command.Timer[Msg])
		if !ok || t.Interval <= 0 {
			continue
		}
		key := keys[i]
		last, ok := r.timers[key]
		if !ok {
			continue
		}
		if now.Sub(last) >= t.Interval {
			r.timers[key] = now
			fired = append(fired, t.Msg)
		}
	}
	for _, m := range fired {
		r.opts.Metrics.OpCompleted(string(r.opts.ID), "timer")
		r.apply(m)
	}
}
