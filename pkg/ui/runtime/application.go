// Package runtime drives one application: it routes input through the
// registries its renderer fills, interprets commands, and polls deferred work
// once per tick on the caller's goroutine.
package runtime

import (
	"time"

	"github.com/odvcencio/lattice/pkg/config"
	"github.com/odvcencio/lattice/pkg/logging"
	"github.com/odvcencio/lattice/pkg/telemetry"
	"github.com/odvcencio/lattice/pkg/ui/command"
	"github.com/odvcencio/lattice/pkg/ui/element"
	"github.com/odvcencio/lattice/pkg/ui/theme"
)

// Application is the contract every screen implements. S is normally a
// pointer so Update can mutate it in place.
type Application[S, Msg any] interface {
	Init(params any) (S, command.Command[Msg])
	Update(state S, msg Msg) command.Command[Msg]
	View(state S) []element.Layer[Msg]
	Subscriptions(state S) []command.Subscription[Msg]
	Title() string
}

// Statuser supplies a dynamic status line for the header.
type Statuser[S any] interface {
	Status(state S) string
}

// Suspender is notified when the orchestrator moves the application to and
// from the background.
type Suspender[S, Msg any] interface {
	OnSuspend(state S) command.Command[Msg]
	OnResume(state S) command.Command[Msg]
}

// RawInputCapturer lets an application bypass global shortcuts, for example
// while recording a key binding.
type RawInputCapturer[S any] interface {
	CapturesRawInput(state S) bool
}

// Navigation is a pending request to switch the active application.
type Navigation struct {
	Target command.AppID
	Params any
	// Restart recreates the target with Params even if it is alive.
	Restart bool
}

// Shortcut describes a keyboard subscription for the help overlay.
type Shortcut struct {
	Key         string
	Description string
}

// Options configures a Runtime.
type Options struct {
	ID    command.AppID
	Theme *theme.Theme
	// HoverFocus is one of the config hover modes.
	HoverFocus string
	// Loading is shown while a task set without its own loading target
	// runs. Empty disables the navigation.
	Loading command.AppID
	// MaxConcurrentOps bounds this runtime's running operations. Other
	// runtimes never compete for its slots. Negative means unbounded.
	MaxConcurrentOps int
	Logger           *logging.Logger
	Metrics          *telemetry.Metrics
	Now              func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Theme == nil {
		o.Theme = theme.Dark()
	}
	if o.HoverFocus == "" {
		o.HoverFocus = config.DefaultHoverFocus
	}
	if o.MaxConcurrentOps == 0 {
		o.MaxConcurrentOps = config.DefaultMaxConcurrentOps
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}
