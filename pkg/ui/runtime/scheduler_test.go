package runtime

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odvcencio/lattice/pkg/telemetry"
	"github.com/odvcencio/lattice/pkg/ui/command"
)

// pollUntil ticks the runtime until cond holds or a second passes.
func pollUntil(t *testing.T, r *Runtime[*fakeState, string], cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not reached")
		}
		r.Poll(time.Now())
		time.Sleep(time.Millisecond)
	}
}

func TestPerformDeliversResult(t *testing.T) {
	app := &fakeApp{update: func(s *fakeState, msg string) command.Command[string] {
		if msg == "load" {
			return command.Perform[string]{Name: "load", Op: func(context.Context) string { return "loaded" }}
		}
		return nil
	}}
	r := New[*fakeState, string](app, nil, Options{ID: "p"})
	defer r.Destroy()

	r.Send("load")
	assert.Equal(t, 1, r.Pending())
	pollUntil(t, r, func() bool { return r.Pending() == 0 })
	assert.Equal(t, []string{"load", "loaded"}, r.State().got)
}

func TestPerformChainsFollowUps(t *testing.T) {
	app := &fakeApp{update: func(s *fakeState, msg string) command.Command[string] {
		switch msg {
		case "start":
			return command.Perform[string]{Op: func(context.Context) string { return "step1" }}
		case "step1":
			return command.Perform[string]{Op: func(context.Context) string { return "step2" }}
		}
		return nil
	}}
	r := New[*fakeState, string](app, nil, Options{ID: "p"})
	defer r.Destroy()

	r.Send("start")
	pollUntil(t, r, func() bool { return len(r.State().got) == 3 })
	assert.Equal(t, []string{"start", "step1", "step2"}, r.State().got)
}

// gatedTasks builds tasks that finish only when their gate is closed.
func gatedTasks(names ...string) ([]command.Task, []chan struct{}) {
	gates := make([]chan struct{}, len(names))
	tasks := make([]command.Task, len(names))
	for i, name := range names {
		gate := make(chan struct{})
		gates[i] = gate
		tasks[i] = command.Task{Name: name, Run: func(ctx context.Context) any {
			select {
			case <-gate:
				return i * 10
			case <-ctx.Done():
				return nil
			}
		}}
	}
	return tasks, gates
}

func TestParallelStartEffects(t *testing.T) {
	tasks, gates := gatedTasks("x", "y", "z")
	defer func() {
		for _, g := range gates {
			close(g)
		}
	}()
	app := &fakeApp{update: func(s *fakeState, msg string) command.Command[string] {
		if msg != "run" {
			return nil
		}
		return command.PerformParallel[string]{
			Tasks:   tasks,
			Config:  command.ParallelConfig{Title: "work", OnComplete: "screen", Cancellable: true},
			Combine: func(i int, v any) string { return fmt.Sprint(i) },
		}
	}}
	r := New[*fakeState, string](app, nil, Options{ID: "origin", Loading: "loading"})
	defer r.Destroy()

	r.Send("run")

	nav, ok := r.TakeNavigation()
	require.True(t, ok)
	assert.Equal(t, command.AppID("loading"), nav.Target)

	pubs := r.TakePublishes()
	require.Len(t, pubs, 1)
	assert.Equal(t, command.TopicTaskSetStarted, pubs[0].Topic)
	started, ok := pubs[0].Payload.(command.TaskSetStarted)
	require.True(t, ok)
	assert.Equal(t, []string{"x", "y", "z"}, started.Names)
	assert.Equal(t, command.AppID("origin"), started.Origin)
	assert.True(t, started.Cancellable)
	assert.NotEmpty(t, started.SetID)

	assert.Equal(t, 3, r.Pending())
}

func TestParallelDeliversInIndexOrder(t *testing.T) {
	tasks, gates := gatedTasks("x", "y", "z")
	app := &fakeApp{update: func(s *fakeState, msg string) command.Command[string] {
		if msg != "run" {
			return nil
		}
		return command.PerformParallel[string]{
			Tasks:  tasks,
			Config: command.ParallelConfig{OnComplete: "screen"},
			Combine: func(i int, v any) string {
				return fmt.Sprintf("r%d=%v", i, v)
			},
		}
	}}
	r := New[*fakeState, string](app, nil, Options{ID: "origin", Loading: "loading"})
	defer r.Destroy()

	r.Send("run")
	r.TakeNavigation()
	r.TakePublishes()

	// Finish out of order; nothing may be delivered before the last one.
	var done []int
	for _, i := range []int{2, 0} {
		close(gates[i])
		pollUntil(t, r, func() bool { return r.Pending() == 3-len(done)-1 })
		done = append(done, i)
		assert.Equal(t, []string{"run"}, r.State().got)
		_, navigated := r.TakeNavigation()
		assert.False(t, navigated)
	}
	pubs := r.TakePublishes()
	require.Len(t, pubs, 2)
	assert.Equal(t, command.TaskDone{SetID: pubs[0].Payload.(command.TaskDone).SetID, Index: 2, Name: "z"}, pubs[0].Payload)

	close(gates[1])
	pollUntil(t, r, func() bool { return r.Pending() == 0 })

	assert.Equal(t, []string{"run", "r0=0", "r1=10", "r2=20"}, r.State().got)
	nav, ok := r.TakeNavigation()
	require.True(t, ok)
	assert.Equal(t, Navigation{Target: "screen"}, nav)

	topics := []string{}
	for _, p := range r.TakePublishes() {
		topics = append(topics, p.Topic)
	}
	assert.Equal(t, []string{command.TopicTaskDone, command.TopicTaskSetDone}, topics)

	// The coordinator is purged: further ticks deliver nothing.
	r.Poll(time.Now())
	assert.Len(t, r.State().got, 4)
	_, ok = r.TakeNavigation()
	assert.False(t, ok)
}

func TestParallelCompletionDefaultsToOrigin(t *testing.T) {
	app := &fakeApp{update: func(s *fakeState, msg string) command.Command[string] {
		if msg != "run" {
			return nil
		}
		return command.PerformParallel[string]{
			Tasks:   []command.Task{{Name: "only", Run: func(context.Context) any { return "v" }}},
			Combine: func(i int, v any) string { return v.(string) },
		}
	}}
	r := New[*fakeState, string](app, nil, Options{ID: "origin"})
	defer r.Destroy()

	r.Send("run")
	_, ok := r.TakeNavigation()
	assert.False(t, ok, "no loading surface configured")
	pollUntil(t, r, func() bool { return r.Pending() == 0 })

	nav, ok := r.TakeNavigation()
	require.True(t, ok)
	assert.Equal(t, command.AppID("origin"), nav.Target)
	assert.Equal(t, []string{"run", "v"}, r.State().got)
}

func TestTimersFireOnInterval(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now := base
	app := &fakeApp{subs: func(*fakeState) []command.Subscription[string] {
		return []command.Subscription[string]{
			command.Timer[string]{Interval: time.Second, Msg: "tick"},
			command.Timer[string]{ID: "slow", Interval: 3 * time.Second, Msg: "slow"},
		}
	}}
	r := New[*fakeState, string](app, nil, Options{ID: "t", Now: func() time.Time { return now }})
	defer r.Destroy()

	assert.False(t, r.Poll(base.Add(500*time.Millisecond)))
	assert.True(t, r.Poll(base.Add(time.Second)))
	assert.False(t, r.Poll(base.Add(1500*time.Millisecond)))
	r.Poll(base.Add(2 * time.Second))
	r.Poll(base.Add(3 * time.Second))

	assert.Equal(t, []string{"tick", "tick", "tick", "slow"}, r.State().got)
}

func TestTimerDroppedWithSubscription(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	app := &fakeApp{
		update: func(s *fakeState, msg string) command.Command[string] { return nil },
		subs: func(s *fakeState) []command.Subscription[string] {
			if len(s.got) > 0 {
				return nil
			}
			return []command.Subscription[string]{command.Timer[string]{Interval: time.Second, Msg: "tick"}}
		},
	}
	r := New[*fakeState, string](app, nil, Options{ID: "t", Now: func() time.Time { return base }})
	defer r.Destroy()

	r.Poll(base.Add(time.Second))
	r.Poll(base.Add(2 * time.Second))
	assert.Equal(t, []string{"tick"}, r.State().got)
}

func TestDestroyCancelsOperations(t *testing.T) {
	started := make(chan struct{})
	cancelled := make(chan struct{})
	app := &fakeApp{init: func(*fakeState) command.Command[string] {
		return command.Perform[string]{Op: func(ctx context.Context) string {
			close(started)
			<-ctx.Done()
			close(cancelled)
			return "late"
		}}
	}}
	r := New[*fakeState, string](app, nil, Options{ID: "d", Metrics: telemetry.NewMetrics()})
	<-started

	r.Destroy()
	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("operation context was not cancelled")
	}
	assert.False(t, r.Poll(time.Now()))
	assert.Equal(t, 0, r.Pending())
	assert.Empty(t, r.State().got)
}

func TestBlockedOperationDoesNotStarveOtherRuntimes(t *testing.T) {
	stuck := &fakeApp{init: func(*fakeState) command.Command[string] {
		return command.Perform[string]{Name: "forever", Op: func(ctx context.Context) string {
			<-ctx.Done()
			return "never"
		}}
	}}
	a := New[*fakeState, string](stuck, nil, Options{ID: "a", MaxConcurrentOps: 1})
	defer a.Destroy()

	ready := &fakeApp{init: func(*fakeState) command.Command[string] {
		return command.Perform[string]{Name: "ready", Op: func(context.Context) string { return "go" }}
	}}
	b := New[*fakeState, string](ready, nil, Options{ID: "b", MaxConcurrentOps: 1})
	defer b.Destroy()

	pollUntil(t, b, func() bool { return b.Pending() == 0 })
	assert.Equal(t, []string{"go"}, b.State().got)

	a.Poll(time.Now())
	assert.Equal(t, 1, a.Pending(), "the blocked operation stays pending")
}

func TestOperationsQueueBehindOwnLimit(t *testing.T) {
	gate := make(chan struct{})
	app := &fakeApp{update: func(s *fakeState, msg string) command.Command[string] {
		switch msg {
		case "both":
			return command.Sequence[string](
				command.Perform[string]{Name: "slow", Op: func(context.Context) string { <-gate; return "slow" }},
				command.Perform[string]{Name: "fast", Op: func(context.Context) string { return "fast" }},
			)
		}
		return nil
	}}
	r := New[*fakeState, string](app, nil, Options{ID: "q", MaxConcurrentOps: 1})
	defer r.Destroy()

	r.Send("both")
	assert.Equal(t, 2, r.Pending())
	close(gate)
	pollUntil(t, r, func() bool { return r.Pending() == 0 })
	assert.ElementsMatch(t, []string{"both", "slow", "fast"}, r.State().got)
}
