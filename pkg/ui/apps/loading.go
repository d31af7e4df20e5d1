package apps

import (
	"fmt"
	"slices"
	"time"

	"github.com/odvcencio/lattice/pkg/ui/command"
	"github.com/odvcencio/lattice/pkg/ui/element"
	"github.com/odvcencio/lattice/pkg/ui/layout"
	"github.com/odvcencio/lattice/pkg/ui/theme"
)

// LoadingAppID is the built-in surface shown while a task set runs.
const LoadingAppID command.AppID = "loading"

// LoadingSpec registers the loading surface. It is created eagerly so it
// sees the start of the first task set.
func LoadingSpec() Spec {
	return Spec{
		ID:      LoadingAppID,
		Title:   "Working",
		Factory: Define[*loadingState, loadingMsg](loadingApp{}),
		Eager:   true,
		Hidden:  true,
	}
}

var spinner = []rune("⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏")

type loadingSet struct {
	command.TaskSetStarted
	done      []bool
	cancelled bool
}

func (s *loadingSet) finished() int {
	n := 0
	for _, d := range s.done {
		if d {
			n++
		}
	}
	return n
}

type loadingState struct {
	sets  []*loadingSet
	frame int
}

func (s *loadingState) find(id string) *loadingSet {
	for _, set := range s.sets {
		if set.SetID == id {
			return set
		}
	}
	return nil
}

type loadingMsg struct {
	started *command.TaskSetStarted
	done    *command.TaskDone
	setDone *command.TaskSetDone
	cancel  bool
	spin    bool
}

type loadingApp struct{}

func (loadingApp) Title() string { return "Working" }

func (loadingApp) Init(any) (*loadingState, command.Command[loadingMsg]) {
	return &loadingState{}, nil
}

func (loadingApp) Status(s *loadingState) string {
	if len(s.sets) == 0 {
		return ""
	}
	set := s.sets[len(s.sets)-1]
	return fmt.Sprintf("%d/%d done", set.finished(), len(set.Names))
}

func (loadingApp) Update(s *loadingState, msg loadingMsg) command.Command[loadingMsg] {
	switch {
	case msg.spin:
		s.frame = (s.frame + 1) % len(spinner)
	case msg.started != nil:
		s.sets = append(s.sets, &loadingSet{
			TaskSetStarted: *msg.started,
			done:           make([]bool, len(msg.started.Names)),
		})
	case msg.done != nil:
		if set := s.find(msg.done.SetID); set != nil && msg.done.Index < len(set.done) {
			set.done[msg.done.Index] = true
		}
	case msg.setDone != nil:
		s.sets = slices.DeleteFunc(s.sets, func(set *loadingSet) bool { return set.SetID == msg.setDone.SetID })
	case msg.cancel:
		var cmds []command.Command[loadingMsg]
		for _, set := range s.sets {
			if !set.Cancellable || set.cancelled {
				continue
			}
			set.cancelled = true
			cmds = append(cmds, command.Publish[loadingMsg]{
				Topic:   command.TopicTaskSetCancel,
				Payload: command.TaskSetCancel{SetID: set.SetID, Origin: set.Origin},
			})
		}
		return command.Sequence(cmds...)
	}
	return nil
}

func (loadingApp) Subscriptions(s *loadingState) []command.Subscription[loadingMsg] {
	subs := []command.Subscription[loadingMsg]{
		command.Subscribe[loadingMsg]{Topic: command.TopicTaskSetStarted, Handler: func(p any) (loadingMsg, bool) {
			v, ok := p.(command.TaskSetStarted)
			return loadingMsg{started: &v}, ok
		}},
		command.Subscribe[loadingMsg]{Topic: command.TopicTaskDone, Handler: func(p any) (loadingMsg, bool) {
			v, ok := p.(command.TaskDone)
			return loadingMsg{done: &v}, ok
		}},
		command.Subscribe[loadingMsg]{Topic: command.TopicTaskSetDone, Handler: func(p any) (loadingMsg, bool) {
			v, ok := p.(command.TaskSetDone)
			return loadingMsg{setDone: &v}, ok
		}},
	}
	if len(s.sets) > 0 {
		subs = append(subs, command.Timer[loadingMsg]{ID: "spin", Interval: 100 * time.Millisecond, Msg: loadingMsg{spin: true}})
	}
	if slices.ContainsFunc(s.sets, func(set *loadingSet) bool { return set.Cancellable && !set.cancelled }) {
		subs = append(subs, command.Key("esc", loadingMsg{cancel: true}, "cancel"))
	}
	return subs
}

func (loadingApp) View(s *loadingState) []element.Layer[loadingMsg] {
	if len(s.sets) == 0 {
		return []element.Layer[loadingMsg]{element.Fill[loadingMsg](element.Styled[loadingMsg]("Nothing running.", theme.RoleMuted))}
	}
	var rows []element.Element[loadingMsg]
	height := 2
	for _, set := range s.sets {
		title := set.Title
		if title == "" {
			title = "Working"
		}
		head := fmt.Sprintf("%c %s", spinner[s.frame], title)
		if set.cancelled {
			head += " (cancelling)"
		}
		rows = append(rows,
			element.Styled[loadingMsg](head, theme.RoleTitle),
			&element.Progress[loadingMsg]{
				Ratio: float64(set.finished()) / float64(max(len(set.Names), 1)),
				Label: fmt.Sprintf("%d/%d", set.finished(), len(set.Names)),
				Role:  theme.RoleProgressFill,
			},
		)
		for i, name := range set.Names {
			mark, role := "○", theme.RoleMuted
			if set.done[i] {
				mark, role = "●", theme.RoleSuccess
			}
			rows = append(rows, element.Styled[loadingMsg](fmt.Sprintf("  %s %s", mark, name), role))
		}
		if set.Cancellable && !set.cancelled {
			rows = append(rows, element.Styled[loadingMsg]("esc to cancel", theme.RoleMuted))
		}
		rows = append(rows, element.Gap[loadingMsg](1))
		height += len(set.Names) + 4
	}
	box := element.Boxed[loadingMsg]("Working", element.Pad[loadingMsg](element.Column[loadingMsg](rows...), 0, 1))
	return []element.Layer[loadingMsg]{{Content: box, Align: layout.AlignCenter, Width: 48, Height: min(height, 24)}}
}
