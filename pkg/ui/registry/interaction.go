package registry

import (
	"github.com/odvcencio/lattice/pkg/ui/element"
	"github.com/odvcencio/lattice/pkg/ui/layout"
)

// TargetKind separates the hit grids. A click target and a scroll target may
// cover the same cell without shadowing each other.
type TargetKind int

const (
	TargetClick TargetKind = iota
	TargetScroll
	TargetHover
	targetKinds
)

// Target is a mouse-reachable rectangle.
type Target[Msg any] struct {
	Kind TargetKind
	Rect layout.Rect
	// Click resolves a left click.
	Click func() element.Outcome[Msg]
	// Scroll resolves a wheel step: -1 up, +1 down.
	Scroll func(delta int) element.Outcome[Msg]
	// Hover and HoverExit fire on pointer enter and leave.
	Hover     func() Msg
	HoverExit func() Msg
}

// Interaction maps screen cells to mouse targets. Within a kind, targets
// added later win the cells they share with earlier ones.
type Interaction[Msg any] struct {
	width   int
	height  int
	grids   [targetKinds][]int32
	targets []Target[Msg]
}

// NewInteraction creates a registry covering a width x height screen.
func NewInteraction[Msg any](width, height int) *Interaction[Msg] {
	r := &Interaction[Msg]{}
	r.Resize(width, height)
	return r
}

// Resize updates the grid dimensions and clears it.
func (r *Interaction[Msg]) Resize(width, height int) {
	if width == r.width && height == r.height {
		r.Clear()
		return
	}
	r.width = width
	r.height = height
	size := width * height
	for k := range r.grids {
		if size <= 0 {
			r.grids[k] = nil
			continue
		}
		r.grids[k] = make([]int32, size)
	}
	r.Clear()
}

// Size returns the grid dimensions.
func (r *Interaction[Msg]) Size() (int, int) {
	return r.width, r.height
}

// Clear removes every target.
func (r *Interaction[Msg]) Clear() {
	for k := range r.grids {
		grid := r.grids[k]
		for i := range grid {
			grid[i] = -1
		}
	}
	r.targets = r.targets[:0]
}

// Len returns how many targets were added since the last Clear.
func (r *Interaction[Msg]) Len() int {
	return len(r.targets)
}

// Add records a target over its rect, clipped to the screen.
func (r *Interaction[Msg]) Add(t Target[Msg]) {
	if t.Kind < 0 || t.Kind >= targetKinds || r.width <= 0 || r.height <= 0 {
		return
	}
	bounds := t.Rect.Intersection(layout.NewRect(0, 0, r.width, r.height))
	if bounds.Empty() {
		return
	}
	id := int32(len(r.targets))
	r.targets = append(r.targets, t)

	grid := r.grids[t.Kind]
	for y := bounds.Y; y < bounds.Y+bounds.Height; y++ {
		row := y * r.width
		for x := bounds.X; x < bounds.X+bounds.Width; x++ {
			grid[row+x] = id
		}
	}
}

// AddClick registers a click target.
func (r *Interaction[Msg]) AddClick(rect layout.Rect, click func() element.Outcome[Msg]) {
	r.Add(Target[Msg]{Kind: TargetClick, Rect: rect, Click: click})
}

// AddScroll registers a scroll target.
func (r *Interaction[Msg]) AddScroll(rect layout.Rect, scroll func(delta int) element.Outcome[Msg]) {
	r.Add(Target[Msg]{Kind: TargetScroll, Rect: rect, Scroll: scroll})
}

// AddHover registers hover enter/exit bindings.
func (r *Interaction[Msg]) AddHover(rect layout.Rect, hover, exit func() Msg) {
	if hover == nil && exit == nil {
		return
	}
	r.Add(Target[Msg]{Kind: TargetHover, Rect: rect, Hover: hover, HoverExit: exit})
}

// At returns the topmost target of kind at the point.
func (r *Interaction[Msg]) At(kind TargetKind, x, y int) (Target[Msg], bool) {
	if kind < 0 || kind >= targetKinds || x < 0 || y < 0 || x >= r.width || y >= r.height {
		return Target[Msg]{}, false
	}
	grid := r.grids[kind]
	if grid == nil {
		return Target[Msg]{}, false
	}
	idx := grid[y*r.width+x]
	if idx < 0 || int(idx) >= len(r.targets) {
		return Target[Msg]{}, false
	}
	return r.targets[idx], true
}

// ClickAt returns the click target at the point.
func (r *Interaction[Msg]) ClickAt(x, y int) (Target[Msg], bool) {
	return r.At(TargetClick, x, y)
}

// ScrollAt returns the scroll target at the point.
func (r *Interaction[Msg]) ScrollAt(x, y int) (Target[Msg], bool) {
	return r.At(TargetScroll, x, y)
}

// HoverAt returns the hover target at the point.
func (r *Interaction[Msg]) HoverAt(x, y int) (Target[Msg], bool) {
	return r.At(TargetHover, x, y)
}
