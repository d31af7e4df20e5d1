// Package terminal provides terminal event types used throughout the UI.
package terminal

// Event represents a terminal input event.
type Event interface {
	eventMarker()
}

// Modifier is a bitset of held modifier keys.
type Modifier uint8

const (
	ModShift Modifier = 1 << iota
	ModCtrl
	ModAlt
)

// Has reports whether every bit in m2 is set in m.
func (m Modifier) Has(m2 Modifier) bool {
	return m&m2 == m2
}

// KeyEvent represents a key press.
type KeyEvent struct {
	Key  Key
	Rune rune
	Mods Modifier
}

func (KeyEvent) eventMarker() {}

// Char builds a KeyEvent for a printable rune.
func Char(r rune) KeyEvent {
	return KeyEvent{Key: KeyRune, Rune: r}
}

// Press builds a KeyEvent for a special key.
func Press(k Key, mods ...Modifier) KeyEvent {
	ev := KeyEvent{Key: k}
	for _, m := range mods {
		ev.Mods |= m
	}
	return ev
}

// Is reports whether the event is the given special key with no modifiers
// other than shift.
func (e KeyEvent) Is(k Key) bool {
	return e.Key == k && e.Mods&^ModShift == 0
}

// IsRune reports whether the event is the given printable rune.
func (e KeyEvent) IsRune(r rune) bool {
	return e.Key == KeyRune && e.Rune == r && e.Mods&(ModCtrl|ModAlt) == 0
}

// ResizeEvent indicates terminal size changed.
type ResizeEvent struct {
	Width  int
	Height int
}

func (ResizeEvent) eventMarker() {}

// MouseEvent represents a mouse input event.
type MouseEvent struct {
	X, Y   int
	Button MouseButton
	Action MouseAction
	Mods   Modifier
}

func (MouseEvent) eventMarker() {}

// PasteEvent represents bracketed paste content.
type PasteEvent struct {
	Text string
}

func (PasteEvent) eventMarker() {}

// MouseButton identifies which mouse button was involved.
type MouseButton int

const (
	MouseNone MouseButton = iota
	MouseLeft
	MouseMiddle
	MouseRight
	MouseWheelUp
	MouseWheelDown
)

// MouseAction identifies what happened with the mouse.
type MouseAction int

const (
	MousePress MouseAction = iota
	MouseRelease
	MouseMove
)

// Key represents special keys.
type Key int

const (
	KeyNone Key = iota
	KeyRune     // Regular character
	KeyEnter
	KeyBackspace
	KeyTab
	KeyBacktab
	KeyEscape
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyDelete
	KeyInsert
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
)
