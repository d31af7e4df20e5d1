package render

import (
	"fmt"

	"github.com/mattn/go-runewidth"

	"github.com/odvcencio/lattice/pkg/ui/element"
	"github.com/odvcencio/lattice/pkg/ui/layout"
	"github.com/odvcencio/lattice/pkg/ui/registry"
	"github.com/odvcencio/lattice/pkg/ui/terminal"
	"github.com/odvcencio/lattice/pkg/ui/theme"
)

// paint lowers one element into area.
func (f *frame[Msg]) paint(el element.Element[Msg], area layout.Rect) {
	if el == nil || area.Empty() {
		return
	}
	switch n := el.(type) {
	case *element.Empty[Msg]:
	case *element.Text[Msg]:
		f.paintText(n, area)
	case *element.Button[Msg]:
		f.paintButton(n, area)
	case *element.Flex[Msg]:
		f.paintFlex(n, area)
	case *element.Padded[Msg]:
		f.paint(n.Child, area.Inset(n.Top, n.Right, n.Bottom, n.Left))
	case *element.Panel[Msg]:
		f.paintPanel(n, area)
	case *element.Stack[Msg]:
		f.paintStack(n, area)
	case *element.List[Msg]:
		f.paintList(n, area)
	case *element.Input[Msg]:
		f.paintInput(n, area)
	case *element.Tree[Msg]:
		f.paintTree(n, area)
	case *element.TableTree[Msg]:
		f.paintTableTree(n, area)
	case *element.Scroll[Msg]:
		f.paintScroll(n, area)
	case *element.Select[Msg]:
		f.paintSelect(n, area)
	case *element.Autocomplete[Msg]:
		f.paintAutocomplete(n, area)
	case *element.FileBrowser[Msg]:
		f.paintFileBrowser(n, area)
	case *element.ColorPicker[Msg]:
		f.paintColorPicker(n, area)
	case *element.Progress[Msg]:
		f.paintProgress(n, area)
	}
}

func (f *frame[Msg]) paintText(n *element.Text[Msg], area layout.Rect) {
	var rows [][]element.Span
	for _, line := range spanLines(n.Spans) {
		if n.Wrap {
			rows = append(rows, wrapSpans(line, area.Width)...)
		} else {
			rows = append(rows, line)
		}
	}
	for y, row := range rows {
		if y >= area.Height {
			break
		}
		x := area.X + alignOffset(n.Align, spansWidth(row), area.Width)
		limit := area.X + area.Width
		for _, s := range row {
			style := f.style(s.Role)
			if s.Bold {
				style = style.Bold(true)
			}
			x += f.buf.SetStringClipped(x, area.Y+y, s.Text, limit-x, style)
		}
	}
}

func (f *frame[Msg]) paintButton(n *element.Button[Msg], area layout.Rect) {
	focused := f.focused(n.Focus)
	border := f.style(theme.RoleBorder)
	label := f.style(theme.RoleNormal)
	switch {
	case n.Disabled:
		border, label = f.style(theme.RoleDisabled), f.style(theme.RoleDisabled)
	case focused:
		border, label = f.style(theme.RoleBorderFocus), f.style(theme.RoleFocus)
	}

	text := n.Label
	if area.Height >= 3 {
		f.buf.DrawBox(area, border)
		inner := area.Shrink(1)
		w := min(runewidth.StringWidth(text), inner.Width)
		x := inner.X + alignOffset(element.AlignCenter, w, inner.Width)
		f.buf.SetStringClipped(x, inner.Y+inner.Height/2, text, inner.Width, label)
	} else {
		text = "[ " + text + " ]"
		w := min(runewidth.StringWidth(text), area.Width)
		x := area.X + alignOffset(element.AlignCenter, w, area.Width)
		f.buf.SetStringClipped(x, area.Y, text, area.Width, label)
	}

	if n.Disabled {
		return
	}
	press := func() element.Outcome[Msg] { return element.EmitFn(n.OnPress) }
	f.addFocus(registry.FocusEntry[Msg]{
		ID:      n.Focus,
		Rect:    area,
		OnFocus: n.OnFocus,
		OnBlur:  n.OnBlur,
		Translate: func(ev terminal.KeyEvent) element.Outcome[Msg] {
			if o, ok := onKey(&n.Bindings, ev); ok {
				return o
			}
			if ev.Is(terminal.KeyEnter) || ev.IsRune(' ') {
				return press()
			}
			return element.Outcome[Msg]{}
		},
	})
	if n.OnPress != nil {
		f.addClick(area, press)
	}
	f.addHover(area, &n.Bindings)
}

func (f *frame[Msg]) paintFlex(n *element.Flex[Msg], area layout.Rect) {
	if len(n.Children) == 0 {
		return
	}
	constraints := make([]layout.Constraint, 0, len(n.Children)*2)
	for i, c := range n.Children {
		if i > 0 && n.Gap > 0 {
			constraints = append(constraints, layout.Length(n.Gap))
		}
		constraints = append(constraints, element.ConstraintOf[Msg](c))
	}
	rects := layout.Split(area, n.Axis, constraints)
	step := 1
	if n.Gap > 0 {
		step = 2
	}
	for i, c := range n.Children {
		f.paint(c, rects[i*step])
	}
}

func (f *frame[Msg]) paintPanel(n *element.Panel[Msg], area layout.Rect) {
	border := f.style(theme.RoleBorder)
	if n.Highlight || (f.r.focused != "" && containsFocus[Msg](n.Child, f.r.focused)) {
		border = f.style(theme.RoleBorderFocus)
	}
	f.buf.DrawBox(area, border)
	if n.Title != "" && area.Width > 4 {
		f.buf.SetStringClipped(area.X+2, area.Y, " "+n.Title+" ", area.Width-4, f.style(theme.RoleTitle))
	}
	f.paint(n.Child, area.Shrink(1))
}

func (f *frame[Msg]) paintStack(n *element.Stack[Msg], area layout.Rect) {
	for i, l := range n.Layers {
		box := layout.Align(area, l.Align, l.Width, l.Height)
		if l.Dim {
			f.buf.Dim(area)
		}
		if i > 0 {
			f.buf.ClearRect(box)
		}
		f.paint(l.Content, box)
	}
}

func (f *frame[Msg]) paintScroll(n *element.Scroll[Msg], area layout.Rect) {
	f.reportViewport(n.Focus, area, n.OnViewport)
	content := n.ContentHeight
	if content <= 0 {
		if c := element.ConstraintOf[Msg](n.Child); c.Kind == layout.KindLength {
			content = c.Value
		} else {
			content = area.Height
		}
	}
	offset := layout.ClampOffset(n.Offset, content, area.Height)
	inner := area
	if content > area.Height && area.Width > 1 {
		inner.Width--
		f.paintScrollbar(layout.NewRect(area.X+area.Width-1, area.Y, 1, area.Height), offset, content)
	}

	f.addFocus(registry.FocusEntry[Msg]{
		ID:        n.Focus,
		Rect:      area,
		OnFocus:   n.OnFocus,
		OnBlur:    n.OnBlur,
		Translate: f.translator(&n.Bindings, n.OnNavigate, content),
	})
	f.addScroll(area, func(delta int) element.Outcome[Msg] {
		switch {
		case n.OnScroll != nil:
			return element.Emit(n.OnScroll(delta))
		case n.OnNavigate != nil:
			return element.Emit(n.OnNavigate(deltaNav(delta)))
		case n.Focus != "":
			return element.Dispatch[Msg](element.WidgetEvent{
				ID: n.Focus, Action: element.WidgetScroll, Delta: delta, Count: content,
			})
		}
		return element.Outcome[Msg]{}
	})
	f.addHover(area, &n.Bindings)

	f.buf.PushClip(inner)
	f.paint(n.Child, layout.NewRect(inner.X, inner.Y-offset, inner.Width, content))
	f.buf.PopClip()
}

func (f *frame[Msg]) paintScrollbar(track layout.Rect, offset, count int) {
	if track.Height <= 0 || count <= track.Height {
		return
	}
	thumb := max(1, track.Height*track.Height/count)
	pos := 0
	if count > track.Height {
		pos = offset * (track.Height - thumb) / (count - track.Height)
	}
	style := f.style(theme.RoleScrollbar)
	for y := 0; y < track.Height; y++ {
		sym := theme.Symbols.ScrollTrack
		if y >= pos && y < pos+thumb {
			sym = theme.Symbols.ScrollThumb
		}
		f.buf.SetString(track.X, track.Y+y, sym, style)
	}
}

func (f *frame[Msg]) paintProgress(n *element.Progress[Msg], area layout.Rect) {
	ratio := min(max(n.Ratio, 0), 1)
	x := area.X
	limit := area.X + area.Width
	if n.Label != "" {
		x += f.buf.SetStringClipped(x, area.Y, n.Label+" ", area.Width, f.style(n.Role))
	}
	pct := " " + percent(ratio)
	barW := limit - x - runewidth.StringWidth(pct)
	if barW > 0 {
		filled := int(ratio * float64(barW))
		for i := 0; i < barW; i++ {
			if i < filled {
				f.buf.SetString(x+i, area.Y, theme.Symbols.ProgressFill, f.style(theme.RoleProgressFill))
			} else {
				f.buf.SetString(x+i, area.Y, theme.Symbols.ProgressRest, f.style(theme.RoleProgressEmpty))
			}
		}
		x += barW
	}
	f.buf.SetStringClipped(x, area.Y, pct, limit-x, f.style(theme.RoleMuted))
}

func (f *frame[Msg]) paintDropdowns(drops *registry.Dropdowns[Msg], screen layout.Rect) {
	if drops == nil {
		return
	}
	surface := f.style(theme.RoleDropdown)
	for _, d := range drops.All() {
		popup := d.Popup(screen)
		if popup.Empty() {
			continue
		}
		f.buf.Fill(popup, ' ', surface)
		f.buf.DrawBox(popup, f.style(theme.RoleBorderFocus))
		inner := popup.Shrink(1)
		first := d.Window()
		for row := 0; row < inner.Height; row++ {
			i := first + row
			if i >= len(d.Options) {
				break
			}
			style := surface
			if i == d.Highlight {
				style = f.style(theme.RoleFocus)
				f.buf.Fill(inner.Row(row), ' ', style)
			}
			prefix := "  "
			if i == d.Selected {
				prefix = theme.Symbols.Check + " "
			}
			f.buf.SetStringClipped(inner.X, inner.Y+row, prefix+d.Options[i], inner.Width, style)
		}
	}
}

// onKey runs the element's raw key binding.
func onKey[Msg any](b *element.Bindings[Msg], ev terminal.KeyEvent) (element.Outcome[Msg], bool) {
	if b.OnKey == nil {
		return element.Outcome[Msg]{}, false
	}
	if m, ok := b.OnKey(ev); ok {
		return element.Emit(m), true
	}
	return element.Outcome[Msg]{}, false
}

// translator builds the key handler shared by navigable kinds: the raw key
// binding first, then the navigate binding, then auto-dispatch.
func (f *frame[Msg]) translator(b *element.Bindings[Msg], nav func(element.Nav) Msg, count int) func(terminal.KeyEvent) element.Outcome[Msg] {
	id := b.Focus
	return func(ev terminal.KeyEvent) element.Outcome[Msg] {
		if o, ok := onKey(b, ev); ok {
			return o
		}
		if nav != nil {
			if n, ok := element.NavFromKey(ev); ok {
				return element.Emit(nav(n))
			}
			return element.Outcome[Msg]{}
		}
		return element.Dispatch[Msg](element.WidgetEvent{ID: id, Action: element.WidgetKey, Key: ev, Count: count})
	}
}

func deltaNav(delta int) element.Nav {
	if delta < 0 {
		return element.NavUp
	}
	return element.NavDown
}

func percent(r float64) string {
	return fmt.Sprintf("%3d%%", int(r*100+0.5))
}

// containsFocus reports whether id is focusable somewhere under el.
func containsFocus[Msg any](el element.Element[Msg], id element.FocusID) bool {
	switch n := el.(type) {
	case nil:
		return false
	case element.Bindable[Msg]:
		if n.Bind().Focus == id {
			return true
		}
		if s, ok := n.(*element.Scroll[Msg]); ok {
			return containsFocus[Msg](s.Child, id)
		}
	case *element.Flex[Msg]:
		for _, c := range n.Children {
			if containsFocus[Msg](c, id) {
				return true
			}
		}
	case *element.Padded[Msg]:
		return containsFocus[Msg](n.Child, id)
	case *element.Panel[Msg]:
		return containsFocus[Msg](n.Child, id)
	case *element.Stack[Msg]:
		for _, l := range n.Layers {
			if containsFocus[Msg](l.Content, id) {
				return true
			}
		}
	}
	return false
}
