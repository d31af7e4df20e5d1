package demo

import (
	"fmt"
	"time"

	"github.com/odvcencio/lattice/pkg/ui/command"
	"github.com/odvcencio/lattice/pkg/ui/element"
	"github.com/odvcencio/lattice/pkg/ui/runtime"
	"github.com/odvcencio/lattice/pkg/ui/theme"
)

// TopicCounterChanged carries the new count as an int.
const TopicCounterChanged = "counter.changed"

// autoInterval is how often the counter ticks while auto mode is on.
const autoInterval = 500 * time.Millisecond

type counterMsg int

const (
	counterInc counterMsg = iota
	counterDec
	counterToggleAuto
	counterTick
	counterAskReset
	counterReset
	counterKeep
)

type counterState struct {
	count     int
	auto      bool
	confirm   bool
	suspended bool
}

// Counter counts key presses and timer ticks. Resetting asks for
// confirmation in a modal layer.
type Counter struct{}

func (c *Counter) Title() string { return "Counter" }

func (c *Counter) Init(params any) (*counterState, command.Command[counterMsg]) {
	s := &counterState{}
	if n, ok := params.(int); ok {
		s.count = n
	}
	return s, nil
}

func (c *Counter) Update(s *counterState, msg counterMsg) command.Command[counterMsg] {
	before := s.count
	switch msg {
	case counterInc, counterTick:
		s.count++
	case counterDec:
		s.count--
	case counterToggleAuto:
		s.auto = !s.auto
	case counterAskReset:
		s.confirm = true
		return command.SetFocus[counterMsg]{ID: "counter.keep"}
	case counterReset:
		s.confirm = false
		s.count = 0
	case counterKeep:
		s.confirm = false
		return command.ClearFocus[counterMsg]{}
	}
	if s.count == before {
		return nil
	}
	return command.Publish[counterMsg]{Topic: TopicCounterChanged, Payload: s.count}
}

func (c *Counter) View(s *counterState) []element.Layer[counterMsg] {
	role := theme.RoleAccent
	if s.count < 0 {
		role = theme.RoleError
	}
	body := element.Column[counterMsg](
		element.Rich[counterMsg](
			element.Span{Text: "count ", Role: theme.RoleMuted},
			element.Span{Text: fmt.Sprint(s.count), Role: role, Bold: true},
		),
		element.Gap[counterMsg](1),
		element.Row[counterMsg](
			element.NewButton[counterMsg]("counter.dec", " - ", counterDec),
			element.Gap[counterMsg](1),
			element.NewButton[counterMsg]("counter.inc", " + ", counterInc),
			element.Gap[counterMsg](1),
			element.NewButton[counterMsg]("counter.auto", autoLabel(s.auto), counterToggleAuto),
		),
		element.Gap[counterMsg](1),
		element.Styled[counterMsg]("+/- count · a auto · r reset", theme.RoleMuted),
	)
	layers := []element.Layer[counterMsg]{
		element.Fill[counterMsg](element.Boxed[counterMsg]("Counter", element.Pad[counterMsg](body, 1, 2))),
	}
	if s.confirm {
		dialog := element.Column[counterMsg](
			element.Label[counterMsg](fmt.Sprintf("Reset %d to zero?", s.count)),
			element.Gap[counterMsg](1),
			element.Row[counterMsg](
				element.NewButton[counterMsg]("counter.reset", "Reset", counterReset),
				element.Gap[counterMsg](2),
				element.NewButton[counterMsg]("counter.keep", "Keep", counterKeep),
			),
		)
		layers = append(layers, element.Modal[counterMsg](element.Boxed[counterMsg]("Reset", element.Pad[counterMsg](dialog, 0, 1)), 30, 8))
	}
	return layers
}

func autoLabel(on bool) string {
	if on {
		return "auto: on"
	}
	return "auto: off"
}

func (c *Counter) Subscriptions(s *counterState) []command.Subscription[counterMsg] {
	if s.confirm {
		return []command.Subscription[counterMsg]{
			command.Key("y", counterReset, "confirm reset"),
			command.Key("n", counterKeep, "keep count"),
		}
	}
	subs := []command.Subscription[counterMsg]{
		command.Key("+", counterInc, "increment"),
		command.Key("-", counterDec, "decrement"),
		command.Key("a", counterToggleAuto, "toggle auto increment"),
		command.Key("r", counterAskReset, "reset"),
	}
	if s.auto && !s.suspended {
		subs = append(subs, command.Timer[counterMsg]{ID: "auto", Interval: autoInterval, Msg: counterTick})
	}
	return subs
}

func (c *Counter) Status(s *counterState) string {
	if s.auto {
		return fmt.Sprintf("%d (auto)", s.count)
	}
	return fmt.Sprint(s.count)
}

// Auto mode pauses while the counter is in the background.
func (c *Counter) OnSuspend(s *counterState) command.Command[counterMsg] {
	s.suspended = true
	return nil
}

func (c *Counter) OnResume(s *counterState) command.Command[counterMsg] {
	s.suspended = false
	return nil
}

var (
	_ runtime.Application[*counterState, counterMsg] = (*Counter)(nil)
	_ runtime.Statuser[*counterState]                = (*Counter)(nil)
	_ runtime.Suspender[*counterState, counterMsg]   = (*Counter)(nil)
)
