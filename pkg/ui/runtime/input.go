package runtime

import (
	"github.com/odvcencio/lattice/pkg/config"
	"github.com/odvcencio/lattice/pkg/logging"
	"github.com/odvcencio/lattice/pkg/ui/element"
	"github.com/odvcencio/lattice/pkg/ui/layout"
	"github.com/odvcencio/lattice/pkg/ui/registry"
	"github.com/odvcencio/lattice/pkg/ui/terminal"
)

// HandleKey routes a key press: open popups take navigation keys, Escape
// blurs a focused element, then the focused element translates the key,
// then keyboard subscriptions. It reports whether the key was consumed.
func (r *Runtime[S, Msg]) HandleKey(ev terminal.KeyEvent) bool {
	if r.destroyed {
		return false
	}
	r.opts.Metrics.Input("key")

	if r.popupKey(ev) {
		return true
	}
	if r.focused != "" && ev.Is(terminal.KeyEscape) {
		r.log.Debug(logging.CategoryFocus, "escape", "escape cleared focus", map[string]any{"id": string(r.focused)})
		r.blur()
		return true
	}
	if r.focusedKey(ev) {
		return true
	}
	return r.HandleShortcut(ev)
}

// HandleFocusedKey offers a key to the focused element's popup and then to
// the element itself. Escape does not blur and subscriptions are not
// consulted.
func (r *Runtime[S, Msg]) HandleFocusedKey(ev terminal.KeyEvent) bool {
	if r.destroyed {
		return false
	}
	r.opts.Metrics.Input("key")
	return r.popupKey(ev) || r.focusedKey(ev)
}

// HandleShortcut matches a key against the keyboard subscriptions only.
func (r *Runtime[S, Msg]) HandleShortcut(ev terminal.KeyEvent) bool {
	if r.destroyed {
		return false
	}
	for _, k := range r.keys {
		if k.Key.Matches(ev) {
			r.apply(k.Msg)
			return true
		}
	}
	return false
}

func (r *Runtime[S, Msg]) popupKey(ev terminal.KeyEvent) bool {
	d, ok := r.activeDropdown()
	if !ok || d.OnNavigate == nil {
		return false
	}
	nav, isNav := element.NavFromKey(ev)
	if ev.Is(terminal.KeyEscape) {
		nav, isNav = element.NavCancel, true
	}
	return isNav && r.resolve(d.OnNavigate(nav))
}

func (r *Runtime[S, Msg]) focusedKey(ev terminal.KeyEvent) bool {
	e, ok := r.renderer.Focus.Entry(r.focused)
	return ok && e.Translate != nil && r.resolve(e.Translate(ev))
}

// HandlePaste types pasted text into the focused element one rune at a time.
func (r *Runtime[S, Msg]) HandlePaste(text string) bool {
	if r.focused == "" {
		return false
	}
	handled := false
	for _, ch := range text {
		ev := terminal.Char(ch)
		switch ch {
		case '\n', '\r':
			continue
		case '\t':
			ev = terminal.Char(' ')
		}
		if e, ok := r.renderer.Focus.Entry(r.focused); ok && e.Translate != nil {
			handled = r.resolve(e.Translate(ev)) || handled
		}
	}
	return handled
}

// activeDropdown is the popup owned by the focused element. Popups whose
// owner lost focus take no keys.
func (r *Runtime[S, Msg]) activeDropdown() (registry.Dropdown[Msg], bool) {
	if r.focused == "" {
		return registry.Dropdown[Msg]{}, false
	}
	return r.renderer.Dropdowns.For(r.focused)
}

// closePopup cancels the popup owned by id, if one is open.
func (r *Runtime[S, Msg]) closePopup(id element.FocusID) {
	if id == "" {
		return
	}
	if d, ok := r.renderer.Dropdowns.For(id); ok && d.OnNavigate != nil {
		r.resolve(d.OnNavigate(element.NavCancel))
	}
}

func (r *Runtime[S, Msg]) screen() layout.Rect {
	w, h := r.renderer.Interaction.Size()
	return layout.NewRect(0, 0, w, h)
}

// HandleMouse routes a pointer event through the registries of the last
// frame. It reports whether anything reacted.
func (r *Runtime[S, Msg]) HandleMouse(ev terminal.MouseEvent) bool {
	if r.destroyed {
		return false
	}
	r.opts.Metrics.Input("mouse")

	switch {
	case ev.Button == terminal.MouseWheelUp || ev.Button == terminal.MouseWheelDown:
		return r.wheel(ev)
	case ev.Button == terminal.MouseLeft && ev.Action == terminal.MousePress:
		return r.click(ev.X, ev.Y)
	case ev.Action == terminal.MouseMove:
		return r.move(ev.X, ev.Y)
	}
	return false
}

func (r *Runtime[S, Msg]) wheel(ev terminal.MouseEvent) bool {
	delta := 1
	key := terminal.Press(terminal.KeyDown)
	if ev.Button == terminal.MouseWheelUp {
		delta = -1
		key = terminal.Press(terminal.KeyUp)
	}
	if e, ok := r.renderer.Focus.Entry(r.focused); ok && e.Rect.Contains(ev.X, ev.Y) {
		return r.HandleKey(key)
	}
	if t, ok := r.renderer.Interaction.ScrollAt(ev.X, ev.Y); ok && t.Scroll != nil {
		return r.resolve(t.Scroll(delta))
	}
	return false
}

// click resolves focus first and the click action second. Popups sit above
// everything, so a click on one never reaches the layer beneath.
func (r *Runtime[S, Msg]) click(x, y int) bool {
	screen := r.screen()
	drops := r.renderer.Dropdowns
	if d, idx, ok := drops.HitTest(screen, x, y); ok {
		if d.OnSelect != nil {
			r.resolve(d.OnSelect(idx))
		}
		return true
	}
	if drops.Covers(screen, x, y) {
		return true
	}

	handled := false
	if e, ok := r.renderer.Focus.At(x, y); ok {
		r.setFocus(e.ID)
		handled = true
	} else if r.focused != "" {
		r.blur()
		handled = true
	}
	if t, ok := r.renderer.Interaction.ClickAt(x, y); ok && t.Click != nil {
		handled = r.resolve(t.Click()) || handled
	}
	return handled
}

// move applies focus-on-hover and fires hover enter and exit bindings.
func (r *Runtime[S, Msg]) move(x, y int) bool {
	handled := false
	if e, ok := r.renderer.Focus.At(x, y); ok && e.ID != r.focused {
		switch r.opts.HoverFocus {
		case config.HoverAlways:
			r.setFocus(e.ID)
			handled = true
		case config.HoverWhenUnfocused:
			if r.focused == "" {
				r.setFocus(e.ID)
				handled = true
			}
		}
	}

	t, ok := r.renderer.Interaction.HoverAt(x, y)
	if ok && r.hovering && t.Rect == r.hover {
		return handled
	}
	if r.hovering {
		exit := r.hoverExit
		r.clearHover()
		if exit != nil {
			r.apply(exit())
			handled = true
		}
	}
	if ok {
		r.hovering = true
		r.hover = t.Rect
		r.hoverExit = t.HoverExit
		if t.Hover != nil {
			r.apply(t.Hover())
			handled = true
		}
	}
	return handled
}

func (r *Runtime[S, Msg]) clearHover() {
	r.hovering = false
	r.hover = layout.ZeroRect
	r.hoverExit = nil
}
