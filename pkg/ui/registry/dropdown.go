package registry

import (
	"github.com/mattn/go-runewidth"

	"github.com/odvcencio/lattice/pkg/ui/element"
	"github.com/odvcencio/lattice/pkg/ui/layout"
)

// MaxDropdownRows caps how many options a popup shows at once.
const MaxDropdownRows = 8

// Dropdown is an open popup recorded while painting its owner. The renderer
// paints it in a final overlay pass.
type Dropdown[Msg any] struct {
	Owner     element.FocusID
	Anchor    layout.Rect
	Options   []string
	Highlight int
	Selected  int
	// OnSelect resolves a pick of option i.
	OnSelect func(i int) element.Outcome[Msg]
	// OnNavigate resolves a navigation key aimed at the popup.
	OnNavigate func(nav element.Nav) element.Outcome[Msg]
}

// Popup returns the rect the popup occupies on a screen: below the anchor
// when it fits, otherwise above it, clipped to the screen.
func (d Dropdown[Msg]) Popup(screen layout.Rect) layout.Rect {
	rows := min(len(d.Options), MaxDropdownRows)
	if rows == 0 {
		return layout.ZeroRect
	}
	h := rows + 2
	w := max(d.Anchor.Width, 4)
	for _, opt := range d.Options {
		w = max(w, runewidth.StringWidth(opt)+4)
	}
	w = min(w, screen.Width)
	x := min(d.Anchor.X, screen.X+screen.Width-w)
	x = max(x, screen.X)
	y := d.Anchor.Y + d.Anchor.Height
	if y+h > screen.Y+screen.Height && d.Anchor.Y-h >= screen.Y {
		y = d.Anchor.Y - h
	}
	return layout.NewRect(x, y, w, h).Intersection(screen)
}

// Window returns the first visible option index so the highlight stays in
// view.
func (d Dropdown[Msg]) Window() int {
	rows := min(len(d.Options), MaxDropdownRows)
	if rows == 0 {
		return 0
	}
	first := 0
	if d.Highlight >= rows {
		first = d.Highlight - rows + 1
	}
	return layout.ClampOffset(first, len(d.Options), rows)
}

// OptionAt maps a point inside the popup to an option index.
func (d Dropdown[Msg]) OptionAt(screen layout.Rect, x, y int) (int, bool) {
	popup := d.Popup(screen)
	inner := popup.Shrink(1)
	if !inner.Contains(x, y) {
		return 0, false
	}
	i := d.Window() + (y - inner.Y)
	if i < 0 || i >= len(d.Options) {
		return 0, false
	}
	return i, true
}

// Dropdowns records the popups opened during a frame.
type Dropdowns[Msg any] struct {
	open []Dropdown[Msg]
}

// NewDropdowns creates an empty dropdown registry.
func NewDropdowns[Msg any]() *Dropdowns[Msg] {
	return &Dropdowns[Msg]{}
}

// Open records a popup. A second popup for the same owner replaces the first.
func (r *Dropdowns[Msg]) Open(d Dropdown[Msg]) {
	for i := range r.open {
		if d.Owner != "" && r.open[i].Owner == d.Owner {
			r.open[i] = d
			return
		}
	}
	r.open = append(r.open, d)
}

// All returns the open popups in the order they were recorded.
func (r *Dropdowns[Msg]) All() []Dropdown[Msg] {
	return r.open
}

// Len returns the number of open popups.
func (r *Dropdowns[Msg]) Len() int {
	return len(r.open)
}

// Top returns the most recently opened popup.
func (r *Dropdowns[Msg]) Top() (Dropdown[Msg], bool) {
	if len(r.open) == 0 {
		return Dropdown[Msg]{}, false
	}
	return r.open[len(r.open)-1], true
}

// For returns the popup owned by id.
func (r *Dropdowns[Msg]) For(id element.FocusID) (Dropdown[Msg], bool) {
	for _, d := range r.open {
		if d.Owner == id {
			return d, true
		}
	}
	return Dropdown[Msg]{}, false
}

// HitTest finds the popup option under a point, topmost popup first.
func (r *Dropdowns[Msg]) HitTest(screen layout.Rect, x, y int) (Dropdown[Msg], int, bool) {
	for i := len(r.open) - 1; i >= 0; i-- {
		d := r.open[i]
		if idx, ok := d.OptionAt(screen, x, y); ok {
			return d, idx, true
		}
	}
	return Dropdown[Msg]{}, 0, false
}

// Covers reports whether any popup occupies the point.
func (r *Dropdowns[Msg]) Covers(screen layout.Rect, x, y int) bool {
	for _, d := range r.open {
		if d.Popup(screen).Contains(x, y) {
			return true
		}
	}
	return false
}

// Clear closes every popup.
func (r *Dropdowns[Msg]) Clear() {
	r.open = r.open[:0]
}
