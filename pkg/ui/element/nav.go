package element

import "github.com/odvcencio/lattice/pkg/ui/terminal"

// Nav is a navigation intent decoded from a key.
type Nav int

const (
	NavNone Nav = iota
	NavUp
	NavDown
	NavLeft
	NavRight
	NavPageUp
	NavPageDown
	NavHome
	NavEnd
	NavSelect // enter
	NavToggle // space
	NavExtendUp
	NavExtendDown
	// NavCancel closes an open popup. It is never decoded from a key; the
	// runtime sends it when Escape reaches an open dropdown.
	NavCancel
)

var navNames = map[Nav]string{
	NavNone:       "none",
	NavUp:         "up",
	NavDown:       "down",
	NavLeft:       "left",
	NavRight:      "right",
	NavPageUp:     "pageup",
	NavPageDown:   "pagedown",
	NavHome:       "home",
	NavEnd:        "end",
	NavSelect:     "select",
	NavToggle:     "toggle",
	NavExtendUp:   "extend-up",
	NavExtendDown: "extend-down",
	NavCancel:     "cancel",
}

func (n Nav) String() string {
	if s, ok := navNames[n]; ok {
		return s
	}
	return "unknown"
}

// NavFromKey decodes a key press into a navigation intent.
func NavFromKey(ev terminal.KeyEvent) (Nav, bool) {
	shift := ev.Mods.Has(terminal.ModShift)
	switch ev.Key {
	case terminal.KeyUp:
		if shift {
			return NavExtendUp, true
		}
		return NavUp, true
	case terminal.KeyDown:
		if shift {
			return NavExtendDown, true
		}
		return NavDown, true
	case terminal.KeyLeft:
		return NavLeft, true
	case terminal.KeyRight:
		return NavRight, true
	case terminal.KeyPageUp:
		return NavPageUp, true
	case terminal.KeyPageDown:
		return NavPageDown, true
	case terminal.KeyHome:
		return NavHome, true
	case terminal.KeyEnd:
		return NavEnd, true
	case terminal.KeyEnter:
		return NavSelect, true
	case terminal.KeyRune:
		if ev.Rune == ' ' && ev.Mods&^terminal.ModShift == 0 {
			return NavToggle, true
		}
	}
	return NavNone, false
}

// Step moves index by one navigation intent within [0, count), using page
// as the page size. Intents that do not move a cursor return index unchanged.
func Step(n Nav, index, count, page int) int {
	if count <= 0 {
		return 0
	}
	page = max(1, page)
	switch n {
	case NavUp, NavExtendUp:
		index--
	case NavDown, NavExtendDown:
		index++
	case NavPageUp:
		index -= page
	case NavPageDown:
		index += page
	case NavHome:
		index = 0
	case NavEnd:
		index = count - 1
	}
	return min(max(index, 0), count-1)
}
