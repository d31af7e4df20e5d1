package widgetstate

import (
	"unicode"

	"github.com/odvcencio/lattice/pkg/ui/element"
	"github.com/odvcencio/lattice/pkg/ui/terminal"
)

// TextInput is a single-line editable value. Cursor counts runes.
type TextInput struct {
	Value  string
	Cursor int
}

// Set replaces the value and moves the cursor to the end.
func (t *TextInput) Set(value string) {
	t.Value = value
	t.Cursor = len([]rune(value))
}

func (t *TextInput) handle(ev element.WidgetEvent) Result {
	if ev.Action != element.WidgetKey {
		return Unhandled()
	}
	return t.key(ev.Key)
}

// key applies an editing key. Enter submits the current value.
func (t *TextInput) key(key terminal.KeyEvent) Result {
	runes := []rune(t.Value)
	t.Cursor = min(max(t.Cursor, 0), len(runes))
	ctrl := key.Mods.Has(terminal.ModCtrl)

	switch key.Key {
	case terminal.KeyEnter:
		return Changed(element.WidgetChange{Value: t.Value, Submitted: true})

	case terminal.KeyBackspace:
		if t.Cursor == 0 {
			return Handled()
		}
		start := t.Cursor - 1
		if ctrl || key.Mods.Has(terminal.ModAlt) {
			start = wordLeft(runes, t.Cursor)
		}
		return t.replace(runes, start, t.Cursor, nil)

	case terminal.KeyDelete:
		if t.Cursor >= len(runes) {
			return Handled()
		}
		return t.replace(runes, t.Cursor, t.Cursor+1, nil)

	case terminal.KeyLeft:
		if ctrl {
			t.Cursor = wordLeft(runes, t.Cursor)
		} else if t.Cursor > 0 {
			t.Cursor--
		}
		return Handled()

	case terminal.KeyRight:
		if ctrl {
			t.Cursor = wordRight(runes, t.Cursor)
		} else if t.Cursor < len(runes) {
			t.Cursor++
		}
		return Handled()

	case terminal.KeyHome:
		t.Cursor = 0
		return Handled()

	case terminal.KeyEnd:
		t.Cursor = len(runes)
		return Handled()

	case terminal.KeyRune:
		if key.Mods.Has(terminal.ModAlt) {
			return Unhandled()
		}
		if ctrl {
			return t.control(runes, key.Rune)
		}
		return t.replace(runes, t.Cursor, t.Cursor, []rune{key.Rune})
	}

	return Unhandled()
}

// control handles the readline-style chords.
func (t *TextInput) control(runes []rune, r rune) Result {
	switch unicode.ToLower(r) {
	case 'a':
		t.Cursor = 0
		return Handled()
	case 'e':
		t.Cursor = len(runes)
		return Handled()
	case 'u':
		return t.replace(runes, 0, t.Cursor, nil)
	case 'k':
		return t.replace(runes, t.Cursor, len(runes), nil)
	case 'w':
		return t.replace(runes, wordLeft(runes, t.Cursor), t.Cursor, nil)
	}
	return Unhandled()
}

// replace swaps runes[from:to] for insert and reports the new value.
func (t *TextInput) replace(runes []rune, from, to int, insert []rune) Result {
	out := make([]rune, 0, len(runes)-(to-from)+len(insert))
	out = append(out, runes[:from]...)
	out = append(out, insert...)
	out = append(out, runes[to:]...)
	before := t.Value
	t.Value = string(out)
	t.Cursor = from + len(insert)
	if t.Value == before {
		return Handled()
	}
	return Changed(element.WidgetChange{Value: t.Value})
}

func wordLeft(runes []rune, pos int) int {
	for pos > 0 && unicode.IsSpace(runes[pos-1]) {
		pos--
	}
	for pos > 0 && !unicode.IsSpace(runes[pos-1]) {
		pos--
	}
	return pos
}

func wordRight(runes []rune, pos int) int {
	for pos < len(runes) && !unicode.IsSpace(runes[pos]) {
		pos++
	}
	for pos < len(runes) && unicode.IsSpace(runes[pos]) {
		pos++
	}
	return pos
}

// Autocomplete is a text input with a suggestion popup. Highlight indexes
// the filtered suggestions the painter showed.
type Autocomplete struct {
	TextInput
	Open      bool
	Highlight int
}

func (a *Autocomplete) handle(ev element.WidgetEvent) Result {
	switch ev.Action {
	case element.WidgetPick:
		a.Set(ev.Text)
		a.Open = false
		a.Highlight = 0
		return Changed(element.WidgetChange{Value: a.Value, Index: ev.Index, Submitted: true})

	case element.WidgetNav:
		return a.nav(ev.Nav, ev.Count)

	case element.WidgetKey:
		if !a.Open && ev.Key.Is(terminal.KeyDown) && ev.Count > 0 {
			a.Open = true
			a.Highlight = 0
			return Handled()
		}
		r := a.key(ev.Key)
		if r.Changed && !r.Change.Submitted {
			a.Open = true
			a.Highlight = 0
		}
		if r.Changed && r.Change.Submitted {
			a.Open = false
		}
		return r
	}
	return Unhandled()
}

func (a *Autocomplete) nav(n element.Nav, count int) Result {
	switch n {
	case element.NavCancel:
		if !a.Open {
			return Unhandled()
		}
		a.Open = false
		return Handled()
	case element.NavUp, element.NavDown, element.NavPageUp, element.NavPageDown:
		if count == 0 {
			return Unhandled()
		}
		a.Open = true
		a.Highlight = element.Step(n, a.Highlight, count, 5)
		return Handled()
	}
	return Unhandled()
}
