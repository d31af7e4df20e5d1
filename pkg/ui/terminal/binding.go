package terminal

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

var keyNames = map[Key]string{
	KeyEnter:     "enter",
	KeyBackspace: "backspace",
	KeyTab:       "tab",
	KeyBacktab:   "backtab",
	KeyEscape:    "esc",
	KeyUp:        "up",
	KeyDown:      "down",
	KeyLeft:      "left",
	KeyRight:     "right",
	KeyHome:      "home",
	KeyEnd:       "end",
	KeyPageUp:    "pgup",
	KeyPageDown:  "pgdown",
	KeyDelete:    "delete",
	KeyInsert:    "insert",
	KeyF1:        "f1",
	KeyF2:        "f2",
	KeyF3:        "f3",
	KeyF4:        "f4",
	KeyF5:        "f5",
	KeyF6:        "f6",
	KeyF7:        "f7",
	KeyF8:        "f8",
	KeyF9:        "f9",
	KeyF10:       "f10",
	KeyF11:       "f11",
	KeyF12:       "f12",
}

var namedKeys = func() map[string]Key {
	m := make(map[string]Key, len(keyNames)+3)
	for k, name := range keyNames {
		m[name] = k
	}
	m["escape"] = KeyEscape
	m["return"] = KeyEnter
	m["space"] = KeyRune
	return m
}()

// Binding identifies a key chord independent of how it was typed.
// Bindings are comparable and used as map keys for keyboard subscriptions.
type Binding struct {
	Key  Key
	Rune rune
	Mods Modifier
}

// BindingOf normalizes a key event into a binding. Shift is folded into the
// rune for printable keys so "?" matches regardless of reported modifiers.
func BindingOf(ev KeyEvent) Binding {
	b := Binding{Key: ev.Key, Rune: ev.Rune, Mods: ev.Mods}
	if ev.Key == KeyRune {
		b.Mods &^= ModShift
	} else {
		b.Rune = 0
	}
	if ev.Key == KeyBacktab {
		b.Mods &^= ModShift
	}
	return b
}

// Matches reports whether the event triggers this binding.
func (b Binding) Matches(ev KeyEvent) bool {
	return BindingOf(ev) == b
}

// String renders the binding in the same form ParseBinding accepts.
func (b Binding) String() string {
	var parts []string
	if b.Mods.Has(ModCtrl) {
		parts = append(parts, "ctrl")
	}
	if b.Mods.Has(ModAlt) {
		parts = append(parts, "alt")
	}
	if b.Mods.Has(ModShift) {
		parts = append(parts, "shift")
	}
	switch {
	case b.Key == KeyRune && b.Rune == ' ':
		parts = append(parts, "space")
	case b.Key == KeyRune:
		parts = append(parts, string(b.Rune))
	default:
		name, ok := keyNames[b.Key]
		if !ok {
			name = fmt.Sprintf("key(%d)", int(b.Key))
		}
		parts = append(parts, name)
	}
	return strings.Join(parts, "+")
}

// ParseBinding parses strings such as "q", "?", "ctrl+o", "shift+tab", "f1".
func ParseBinding(s string) (Binding, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Binding{}, fmt.Errorf("empty key binding")
	}
	var b Binding
	tokens := strings.Split(s, "+")
	// A trailing "+" means the plus key itself.
	if strings.HasSuffix(s, "++") || s == "+" {
		tokens = append(tokens[:len(tokens)-2], "+")
	}
	for i, tok := range tokens {
		last := i == len(tokens)-1
		lower := strings.ToLower(tok)
		if !last {
			switch lower {
			case "ctrl", "c":
				b.Mods |= ModCtrl
			case "alt", "meta", "m":
				b.Mods |= ModAlt
			case "shift", "s":
				b.Mods |= ModShift
			default:
				return Binding{}, fmt.Errorf("unknown modifier %q in %q", tok, s)
			}
			continue
		}
		if k, ok := namedKeys[lower]; ok && utf8.RuneCountInString(tok) > 1 {
			b.Key = k
			if lower == "space" {
				b.Rune = ' '
			}
			continue
		}
		if utf8.RuneCountInString(tok) != 1 {
			return Binding{}, fmt.Errorf("unknown key %q in %q", tok, s)
		}
		r, _ := utf8.DecodeRuneInString(tok)
		b.Key = KeyRune
		b.Rune = r
	}
	if b.Key == KeyTab && b.Mods.Has(ModShift) {
		b.Key = KeyBacktab
		b.Mods &^= ModShift
	}
	if b.Key == KeyRune {
		b.Mods &^= ModShift
	}
	return b, nil
}

// MustBinding is ParseBinding for package-level defaults; it panics on error.
func MustBinding(s string) Binding {
	b, err := ParseBinding(s)
	if err != nil {
		panic(err)
	}
	return b
}
