package render

import (
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/mattn/go-runewidth"

	"github.com/odvcencio/lattice/pkg/ui/backend"
	"github.com/odvcencio/lattice/pkg/ui/element"
	"github.com/odvcencio/lattice/pkg/ui/fuzzy"
	"github.com/odvcencio/lattice/pkg/ui/layout"
	"github.com/odvcencio/lattice/pkg/ui/registry"
	"github.com/odvcencio/lattice/pkg/ui/terminal"
	"github.com/odvcencio/lattice/pkg/ui/theme"
)

// fieldBox draws the optional border and label of a one-line field and
// returns the rect left for the value.
func (f *frame[Msg]) fieldBox(area layout.Rect, label string, bordered, focused bool) layout.Rect {
	row := area.Row(0)
	if bordered && area.Height >= 3 {
		border := f.style(theme.RoleBorder)
		if focused {
			border = f.style(theme.RoleBorderFocus)
		}
		f.buf.DrawBox(layout.NewRect(area.X, area.Y, area.Width, 3), border)
		row = layout.NewRect(area.X+1, area.Y+1, area.Width-2, 1)
	}
	if label != "" {
		w := f.buf.SetStringClipped(row.X, row.Y, label+": ", row.Width, f.style(theme.RoleMuted))
		row = row.Inset(0, 0, 0, w)
	}
	return row
}

// paintEditable draws a text value with a cursor, scrolled horizontally so
// the cursor stays visible.
func (f *frame[Msg]) paintEditable(row layout.Rect, value string, cursor int, placeholder string, mask rune, focused bool) {
	if row.Empty() {
		return
	}
	runes := []rune(value)
	if mask != 0 {
		runes = []rune(strings.Repeat(string(mask), len(runes)))
	}
	cursor = min(max(cursor, 0), len(runes))
	normal := f.style(theme.RoleNormal)

	if len(runes) == 0 && !focused {
		f.buf.SetStringClipped(row.X, row.Y, placeholder, row.Width, f.style(theme.RolePlaceholder))
		return
	}

	// Scroll so the cursor column fits.
	start := 0
	for runewidth.StringWidth(string(runes[start:cursor])) >= row.Width && start < cursor {
		start++
	}
	x := row.X
	for i := start; i < len(runes) && x < row.X+row.Width; i++ {
		style := normal
		if focused && i == cursor {
			style = f.style(theme.RoleFocus)
		}
		f.buf.Set(x, row.Y, runes[i], style)
		x += max(1, runewidth.RuneWidth(runes[i]))
	}
	if focused && cursor == len(runes) && x < row.X+row.Width {
		f.buf.Set(x, row.Y, ' ', f.style(theme.RoleFocus))
	}
}

func (f *frame[Msg]) paintInput(n *element.Input[Msg], area layout.Rect) {
	focused := f.focused(n.Focus)
	row := f.fieldBox(area, n.Label, n.Bordered, focused)
	f.paintEditable(row, n.Value, n.Cursor, n.Placeholder, n.Mask, focused)

	f.addFocus(registry.FocusEntry[Msg]{
		ID:      n.Focus,
		Rect:    area,
		OnFocus: n.OnFocus,
		OnBlur:  n.OnBlur,
		Translate: func(ev terminal.KeyEvent) element.Outcome[Msg] {
			if o, ok := onKey(&n.Bindings, ev); ok {
				return o
			}
			return element.Dispatch[Msg](element.WidgetEvent{ID: n.Focus, Action: element.WidgetKey, Key: ev})
		},
		OnChange: textChange(n.OnChange, n.OnSubmit),
	})
	f.addHover(area, &n.Bindings)
}

// textChange maps a text widget change to the change or submit binding.
func textChange[Msg any](onChange, onSubmit func(string) Msg) func(element.WidgetChange) (Msg, bool) {
	return func(ch element.WidgetChange) (Msg, bool) {
		var zero Msg
		switch {
		case ch.Submitted && onSubmit != nil:
			return onSubmit(ch.Value), true
		case !ch.Submitted && onChange != nil:
			return onChange(ch.Value), true
		}
		return zero, false
	}
}

func (f *frame[Msg]) paintSelect(n *element.Select[Msg], area layout.Rect) {
	focused := f.focused(n.Focus)
	row := f.fieldBox(area, n.Label, n.Bordered, focused)
	current := ""
	if n.Selected >= 0 && n.Selected < len(n.Options) {
		current = n.Options[n.Selected]
	}
	arrow := theme.Symbols.DropdownShut
	if n.Open {
		arrow = theme.Symbols.DropdownOpen
	}
	style := f.style(theme.RoleNormal)
	if focused {
		style = f.style(theme.RoleFocus)
	}
	arrowW := runewidth.StringWidth(arrow) + 1
	f.buf.Fill(row, ' ', style)
	f.buf.SetStringClipped(row.X, row.Y, current, row.Width-arrowW, style)
	if row.Width > arrowW {
		f.buf.SetString(row.X+row.Width-arrowW+1, row.Y, arrow, style)
	}

	count := len(n.Options)
	nav := func(v element.Nav) element.Outcome[Msg] {
		if n.OnNavigate != nil {
			return element.Emit(n.OnNavigate(v))
		}
		return element.Dispatch[Msg](element.WidgetEvent{ID: n.Focus, Action: element.WidgetNav, Nav: v, Count: count})
	}
	pick := func(i int) element.Outcome[Msg] {
		if n.OnNavigate == nil && n.Focus != "" {
			return element.Dispatch[Msg](element.WidgetEvent{ID: n.Focus, Action: element.WidgetPick, Index: i, Count: count})
		}
		if n.OnChange != nil {
			return element.Emit(n.OnChange(i))
		}
		return element.Outcome[Msg]{}
	}
	if n.Open && count > 0 {
		f.openDropdown(registry.Dropdown[Msg]{
			Owner:      n.Focus,
			Anchor:     row,
			Options:    n.Options,
			Highlight:  n.Highlight,
			Selected:   n.Selected,
			OnSelect:   pick,
			OnNavigate: nav,
		})
	}

	f.addFocus(registry.FocusEntry[Msg]{
		ID:      n.Focus,
		Rect:    area,
		OnFocus: n.OnFocus,
		OnBlur:  n.OnBlur,
		Translate: func(ev terminal.KeyEvent) element.Outcome[Msg] {
			if o, ok := onKey(&n.Bindings, ev); ok {
				return o
			}
			if v, ok := element.NavFromKey(ev); ok {
				return nav(v)
			}
			return element.Outcome[Msg]{}
		},
		OnChange: func(ch element.WidgetChange) (Msg, bool) {
			var zero Msg
			if n.OnChange != nil && ch.Submitted {
				return n.OnChange(ch.Index), true
			}
			return zero, false
		},
	})
	f.addClick(row, func() element.Outcome[Msg] { return nav(element.NavToggle) })
	f.addHover(area, &n.Bindings)
}

func (f *frame[Msg]) paintAutocomplete(n *element.Autocomplete[Msg], area layout.Rect) {
	focused := f.focused(n.Focus)
	row := f.fieldBox(area, n.Label, n.Bordered, focused)
	f.paintEditable(row, n.Value, n.Cursor, n.Placeholder, 0, focused)

	limit := n.Limit
	if limit <= 0 {
		limit = registry.MaxDropdownRows * 2
	}
	matches := fuzzy.Texts(fuzzy.Rank(n.Value, n.Suggestions, limit))
	count := len(matches)
	highlight := min(max(n.Highlight, 0), max(count-1, 0))

	pick := func(i int) element.Outcome[Msg] {
		if i < 0 || i >= count {
			return element.Outcome[Msg]{}
		}
		if n.Focus == "" {
			if n.OnSelect == nil {
				return element.Outcome[Msg]{}
			}
			return element.Emit(n.OnSelect(matches[i]))
		}
		return element.Dispatch[Msg](element.WidgetEvent{
			ID: n.Focus, Action: element.WidgetPick, Index: i, Text: matches[i], Count: count,
		})
	}
	if n.Open && count > 0 {
		f.openDropdown(registry.Dropdown[Msg]{
			Owner:     n.Focus,
			Anchor:    row,
			Options:   matches,
			Highlight: highlight,
			Selected:  -1,
			OnSelect:  pick,
			OnNavigate: func(v element.Nav) element.Outcome[Msg] {
				switch v {
				case element.NavSelect:
					return pick(highlight)
				case element.NavUp, element.NavDown, element.NavPageUp, element.NavPageDown, element.NavCancel:
					return element.Dispatch[Msg](element.WidgetEvent{
						ID: n.Focus, Action: element.WidgetNav, Nav: v, Count: count,
					})
				}
				// Space and cursor keys keep editing the text.
				return element.Outcome[Msg]{}
			},
		})
	}

	f.addFocus(registry.FocusEntry[Msg]{
		ID:      n.Focus,
		Rect:    area,
		OnFocus: n.OnFocus,
		OnBlur:  n.OnBlur,
		Translate: func(ev terminal.KeyEvent) element.Outcome[Msg] {
			if o, ok := onKey(&n.Bindings, ev); ok {
				return o
			}
			return element.Dispatch[Msg](element.WidgetEvent{ID: n.Focus, Action: element.WidgetKey, Key: ev, Count: count})
		},
		OnChange: textChange(n.OnChange, n.OnSelect),
	})
	f.addHover(area, &n.Bindings)
}

func (f *frame[Msg]) paintColorPicker(n *element.ColorPicker[Msg], area layout.Rect) {
	focused := f.focused(n.Focus)
	current := n.Color.Colorful()
	h, s, l := current.Hsl()

	title := n.Label
	if title == "" {
		title = "Color"
	}
	f.buf.SetStringClipped(area.X, area.Y, title+" "+current.Hex(), area.Width, f.style(theme.RoleTitle))

	bars := []struct {
		name string
		ch   element.Channel
		at   func(t float64) colorful.Color
		pos  float64
	}{
		{"H", element.ChannelHue, func(t float64) colorful.Color { return colorful.Hsl(t*360, 1, 0.5) }, h / 360},
		{"S", element.ChannelSaturation, func(t float64) colorful.Color { return colorful.Hsl(h, t, l) }, s},
		{"L", element.ChannelLightness, func(t float64) colorful.Color { return colorful.Hsl(h, s, t) }, l},
	}
	for i, bar := range bars {
		y := area.Y + 1 + i
		if y >= area.Y+area.Height {
			break
		}
		label := "  " + bar.name + " "
		style := f.style(theme.RoleMuted)
		if bar.ch == n.Channel {
			label = theme.Symbols.Arrow + " " + bar.name + " "
			if focused {
				style = f.style(theme.RoleAccent)
			}
		}
		x := area.X + f.buf.SetString(area.X, y, label, style)
		width := area.X + area.Width - x
		if width <= 0 {
			continue
		}
		marker := min(int(bar.pos*float64(width)), width-1)
		for col := 0; col < width; col++ {
			t := float64(col) / float64(max(width-1, 1))
			cell := backend.DefaultStyle().Background(backend.FromColorful(bar.at(t)))
			ch := ' '
			if col == marker {
				ch = '┃'
				cell = cell.Foreground(backend.ColorRGB(255, 255, 255))
			}
			f.buf.Set(x+col, y, ch, cell)
		}
	}

	swatch := layout.NewRect(area.X, area.Y+4, area.Width, min(3, max(0, area.Height-5)))
	f.buf.Fill(swatch, ' ', backend.DefaultStyle().Background(backend.FromColorful(current)))
	if area.Height >= 8 {
		f.buf.SetStringClipped(area.X, area.Y+7, "←/→ adjust  ↑/↓ channel", area.Width, f.style(theme.RoleMuted))
	}

	f.addFocus(registry.FocusEntry[Msg]{
		ID:      n.Focus,
		Rect:    area,
		OnFocus: n.OnFocus,
		OnBlur:  n.OnBlur,
		Translate: func(ev terminal.KeyEvent) element.Outcome[Msg] {
			if o, ok := onKey(&n.Bindings, ev); ok {
				return o
			}
			v, ok := element.NavFromKey(ev)
			if !ok {
				return element.Outcome[Msg]{}
			}
			if n.OnNavigate != nil {
				return element.Emit(n.OnNavigate(v))
			}
			return element.Dispatch[Msg](element.WidgetEvent{ID: n.Focus, Action: element.WidgetNav, Nav: v})
		},
		OnChange: func(ch element.WidgetChange) (Msg, bool) {
			var zero Msg
			if n.OnChange == nil {
				return zero, false
			}
			c, err := colorful.Hex(ch.Value)
			if err != nil {
				return zero, false
			}
			return n.OnChange(backend.FromColorful(c)), true
		},
	})
	f.addHover(area, &n.Bindings)
}
