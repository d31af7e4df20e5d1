package demo

import (
	"context"
	"fmt"
	"time"

	"github.com/odvcencio/lattice/pkg/ui/command"
	"github.com/odvcencio/lattice/pkg/ui/element"
	"github.com/odvcencio/lattice/pkg/ui/runtime"
	"github.com/odvcencio/lattice/pkg/ui/theme"
	"github.com/odvcencio/lattice/pkg/ui/widgetstate"
)

const idResults element.FocusID = "jobs.results"

// DefaultJobs is the task count of one run when none is configured.
const DefaultJobs = 5

type jobsKind int

const (
	jobsRun jobsKind = iota
	jobsResult
	jobsCancel
	jobsClear
)

type jobsMsg struct {
	kind  jobsKind
	index int
	res   jobResult
}

type jobResult struct {
	Name      string
	Took      time.Duration
	Cancelled bool
}

type jobsState struct {
	widgetstate.Store
	runs      int
	running   bool
	cancel    context.CancelFunc
	results   []jobResult
	cancelled bool
}

// Jobs starts a set of simulated build steps in parallel. While they run
// the loading screen shows their progress; cancelling there stops every
// step that has not finished yet.
type Jobs struct {
	Count int
	// Step scales each task's duration. Zero uses 300ms.
	Step time.Duration
}

func (j *Jobs) Title() string { return "Jobs" }

func (j *Jobs) Init(any) (*jobsState, command.Command[jobsMsg]) {
	return &jobsState{}, nil
}

func (j *Jobs) count() int {
	if j.Count > 0 {
		return j.Count
	}
	return DefaultJobs
}

func (j *Jobs) step() time.Duration {
	if j.Step > 0 {
		return j.Step
	}
	return 300 * time.Millisecond
}

func (j *Jobs) Update(s *jobsState, msg jobsMsg) command.Command[jobsMsg] {
	switch msg.kind {
	case jobsRun:
		if s.running {
			return nil
		}
		return j.start(s)
	case jobsResult:
		s.results = append(s.results, msg.res)
		if len(s.results) == j.count() {
			s.finish()
		}
	case jobsCancel:
		if s.running && s.cancel != nil {
			s.cancel()
			s.cancelled = true
		}
	case jobsClear:
		if !s.running {
			s.results = nil
			s.Forget(idResults)
		}
	}
	return nil
}

func (s *jobsState) finish() {
	s.running = false
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (j *Jobs) start(s *jobsState) command.Command[jobsMsg] {
	s.runs++
	s.running = true
	s.cancelled = false
	s.results = nil
	s.Forget(idResults)

	runCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	tasks := make([]command.Task, j.count())
	for i := range tasks {
		name := fmt.Sprintf("step %d", i+1)
		wait := time.Duration(i+1) * j.step()
		tasks[i] = command.Task{Name: name, Run: func(ctx context.Context) any {
			started := time.Now()
			select {
			case <-time.After(wait):
				return jobResult{Name: name, Took: time.Since(started)}
			case <-runCtx.Done():
			case <-ctx.Done():
			}
			return jobResult{Name: name, Took: time.Since(started), Cancelled: true}
		}}
	}
	return command.PerformParallel[jobsMsg]{
		Tasks:  tasks,
		Config: command.ParallelConfig{Title: fmt.Sprintf("Build #%d", s.runs), Cancellable: true},
		Combine: func(i int, v any) jobsMsg {
			res, _ := v.(jobResult)
			return jobsMsg{kind: jobsResult, index: i, res: res}
		},
	}
}

func (j *Jobs) View(s *jobsState) []element.Layer[jobsMsg] {
	items := make([]element.ListItem, len(s.results))
	for i, r := range s.results {
		item := element.ListItem{Label: r.Name, Detail: r.Took.Round(time.Millisecond).String(), Role: theme.RoleSuccess}
		if r.Cancelled {
			item.Detail = "cancelled"
			item.Role = theme.RoleWarning
		}
		items[i] = item
	}
	list := widgetstate.ListOf[jobsMsg](&s.Store, idResults, items)
	list.Empty = "press r to start a build"

	summary := element.Styled[jobsMsg](j.summary(s), theme.RoleMuted)
	body := element.Column[jobsMsg](
		summary,
		element.Boxed[jobsMsg]("Results", list),
		element.Row[jobsMsg](
			element.NewButton[jobsMsg]("jobs.run", "Run (r)", jobsMsg{kind: jobsRun}),
			element.Gap[jobsMsg](1),
			element.NewButton[jobsMsg]("jobs.clear", "Clear (c)", jobsMsg{kind: jobsClear}),
		),
	)
	return []element.Layer[jobsMsg]{element.Fill[jobsMsg](element.Pad[jobsMsg](body, 0, 1))}
}

func (j *Jobs) summary(s *jobsState) string {
	switch {
	case s.running:
		return fmt.Sprintf("build #%d running", s.runs)
	case s.runs == 0:
		return "no builds yet"
	case s.cancelled:
		return fmt.Sprintf("build #%d cancelled", s.runs)
	}
	return fmt.Sprintf("build #%d finished %d steps", s.runs, len(s.results))
}

func (j *Jobs) Subscriptions(s *jobsState) []command.Subscription[jobsMsg] {
	return []command.Subscription[jobsMsg]{
		command.Key("r", jobsMsg{kind: jobsRun}, "run a build"),
		command.Key("c", jobsMsg{kind: jobsClear}, "clear results"),
		command.Subscribe[jobsMsg]{Topic: command.TopicTaskSetCancel, Handler: func(p any) (jobsMsg, bool) {
			c, ok := p.(command.TaskSetCancel)
			if !ok || c.Origin != JobsID {
				return jobsMsg{}, false
			}
			return jobsMsg{kind: jobsCancel}, true
		}},
	}
}

func (j *Jobs) Status(s *jobsState) string {
	return j.summary(s)
}

var (
	_ runtime.Application[*jobsState, jobsMsg] = (*Jobs)(nil)
	_ runtime.Statuser[*jobsState]             = (*Jobs)(nil)
)
