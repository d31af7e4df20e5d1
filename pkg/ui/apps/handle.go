package apps

import (
	"time"

	"github.com/odvcencio/lattice/pkg/ui/command"
	"github.com/odvcencio/lattice/pkg/ui/render"
	"github.com/odvcencio/lattice/pkg/ui/runtime"
	"github.com/odvcencio/lattice/pkg/ui/terminal"
)

// Handle is the type-erased view of one running application. Every
// *runtime.Runtime satisfies it whatever its state and message types.
type Handle interface {
	ID() command.AppID
	Title() string
	Status() string
	CapturesRawInput() bool
	Shortcuts() []runtime.Shortcut

	HandleKey(ev terminal.KeyEvent) bool
	HandleMouse(ev terminal.MouseEvent) bool
	HandlePaste(text string) bool
	FocusNext() bool
	FocusPrev() bool

	Poll(now time.Time) bool
	Pending() int
	Deliver(ev command.Event) bool
	TakePublishes() []command.Event
	TakeNavigation() (runtime.Navigation, bool)
	QuitRequested() bool
	TakeDirty() bool

	Frame() []render.Sheet
	Reconcile(interactive bool)

	Suspend()
	Resume()
	Destroy()
}

var _ Handle = (*runtime.Runtime[struct{}, struct{}])(nil)

// Factory creates a fresh application instance.
type Factory func(params any, opts runtime.Options) Handle

// Define adapts an application to a Factory.
func Define[S, Msg any](app runtime.Application[S, Msg]) Factory {
	return func(params any, opts runtime.Options) Handle {
		return runtime.New(app, params, opts)
	}
}

// Spec registers one application identity.
type Spec struct {
	ID      command.AppID
	Title   string
	Factory Factory
	Quit    QuitPolicy
	Suspend SuspendPolicy
	// Eager creates the application in the background at startup so it
	// sees events published before anyone navigates to it.
	Eager bool
	// Hidden keeps the application out of the launcher.
	Hidden bool
}
