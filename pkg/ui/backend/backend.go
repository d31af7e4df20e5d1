// Package backend is the seam between the renderer and a terminal. The
// tcell backend drives real terminals; sim wraps it around a simulation
// screen for tests.
package backend

import "github.com/odvcencio/lattice/pkg/ui/terminal"

// Backend paints cells and produces input events. PollEvent runs on its
// own goroutine; every other method is called from the host loop.
type Backend interface {
	// Init enters the alternate screen and raw mode.
	Init() error
	// Fini restores the terminal. PollEvent returns nil afterwards.
	Fini()

	Size() (width, height int)

	// SetContent stages one cell; nothing reaches the terminal until Show.
	SetContent(x, y int, mainc rune, comb []rune, style Style)
	Show()
	Clear()
	// Sync makes the next Show repaint every cell.
	Sync()

	HideCursor()
	SetCursorPos(x, y int)

	PollEvent() terminal.Event
	PostEvent(ev terminal.Event) error

	Beep()
}
