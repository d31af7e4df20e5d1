package command

import (
	"fmt"
	"time"

	"github.com/odvcencio/lattice/pkg/ui/terminal"
)

// Subscription declares an input source an application wants routed to it.
// The list is recomputed from state after every update and replaces the
// previous one wholesale.
type Subscription[Msg any] interface {
	isSubscription(Msg)
}

// Keyboard maps a key chord to a message when no focused element consumed
// the key. Description is shown in the help overlay.
type Keyboard[Msg any] struct {
	Key         terminal.Binding
	Msg         Msg
	Description string
}

func (Keyboard[Msg]) isSubscription(Msg) {}

// Key builds a keyboard subscription from a binding string such as
// "ctrl+r". It panics on a malformed binding.
func Key[Msg any](binding string, msg Msg, description string) Keyboard[Msg] {
	return Keyboard[Msg]{Key: terminal.MustBinding(binding), Msg: msg, Description: description}
}

// Subscribe receives published payloads on Topic. Returning false drops
// the event.
type Subscribe[Msg any] struct {
	Topic   string
	Handler func(payload any) (Msg, bool)
}

func (Subscribe[Msg]) isSubscription(Msg) {}

// Timer emits Msg every Interval. ID keeps a timer's schedule stable when
// the subscription list is rebuilt; without one the interval and position
// among same-interval timers identify it.
type Timer[Msg any] struct {
	ID       string
	Interval time.Duration
	Msg      Msg
}

func (Timer[Msg]) isSubscription(Msg) {}

// TimerKeys returns a stable identity for each timer in subs, in order.
func TimerKeys[Msg any](subs []Subscription[Msg]) map[int]string {
	keys := make(map[int]string)
	seen := make(map[time.Duration]int)
	for i, s := range subs {
		t, ok := s.(Timer[Msg])
		if !ok {
			continue
		}
		if t.ID != "" {
			keys[i] = "id:" + t.ID
			continue
		}
		keys[i] = fmt.Sprintf("every:%s#%d", t.Interval, seen[t.Interval])
		seen[t.Interval]++
	}
	return keys
}
