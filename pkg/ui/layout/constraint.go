package layout

import "fmt"

// ConstraintKind identifies how a child claims space along an axis.
type ConstraintKind int

const (
	// KindLength claims exactly N cells (clipped to what is left).
	KindLength ConstraintKind = iota
	// KindMin claims at least N cells and absorbs leftover space when no
	// Fill sibling exists.
	KindMin
	// KindFill shares the remainder proportionally to its weight.
	KindFill
)

// Constraint describes how much of the parent's axis a child wants.
type Constraint struct {
	Kind  ConstraintKind
	Value int
}

// Length claims a fixed number of cells.
func Length(n int) Constraint { return Constraint{Kind: KindLength, Value: max(0, n)} }

// Min claims at least n cells.
func Min(n int) Constraint { return Constraint{Kind: KindMin, Value: max(0, n)} }

// Fill claims a weighted share of the remaining space.
func Fill(weight int) Constraint { return Constraint{Kind: KindFill, Value: max(1, weight)} }

func (c Constraint) String() string {
	switch c.Kind {
	case KindLength:
		return fmt.Sprintf("Length(%d)", c.Value)
	case KindMin:
		return fmt.Sprintf("Min(%d)", c.Value)
	default:
		return fmt.Sprintf("Fill(%d)", c.Value)
	}
}

// Axis selects the direction children are stacked along.
type Axis int

const (
	Vertical   Axis = iota // children stacked top to bottom (column)
	Horizontal             // children placed left to right (row)
)

// Sizes distributes total cells among constraints. Length entries are served
// first, then Min entries, then Fill entries share what remains by weight with
// the rounding remainder going to the last Fill. With no Fill entries, Min
// entries split any leftover evenly.
func Sizes(total int, constraints []Constraint) []int {
	sizes := make([]int, len(constraints))
	remaining := max(0, total)

	for i, c := range constraints {
		if c.Kind == KindLength {
			sizes[i] = min(c.Value, remaining)
			remaining -= sizes[i]
		}
	}
	var mins []int
	for i, c := range constraints {
		if c.Kind == KindMin {
			sizes[i] = min(c.Value, remaining)
			remaining -= sizes[i]
			mins = append(mins, i)
		}
	}

	weight := 0
	lastFill := -1
	for i, c := range constraints {
		if c.Kind == KindFill {
			weight += c.Value
			lastFill = i
		}
	}
	if weight > 0 {
		pool := remaining
		for i, c := range constraints {
			if c.Kind != KindFill {
				continue
			}
			share := pool * c.Value / weight
			if i == lastFill {
				share = remaining
			}
			sizes[i] = share
			remaining -= share
		}
		return sizes
	}

	if len(mins) > 0 && remaining > 0 {
		each := remaining / len(mins)
		for j, i := range mins {
			extra := each
			if j == len(mins)-1 {
				extra = remaining - each*(len(mins)-1)
			}
			sizes[i] += extra
		}
	}
	return sizes
}

// Split divides area along axis according to constraints.
func Split(area Rect, axis Axis, constraints []Constraint) []Rect {
	total := area.Height
	if axis == Horizontal {
		total = area.Width
	}
	sizes := Sizes(total, constraints)
	rects := make([]Rect, len(sizes))
	offset := 0
	for i, size := range sizes {
		if axis == Horizontal {
			rects[i] = Rect{X: area.X + offset, Y: area.Y, Width: size, Height: area.Height}
		} else {
			rects[i] = Rect{X: area.X, Y: area.Y + offset, Width: area.Width, Height: size}
		}
		offset += size
	}
	return rects
}

// Alignment positions a box inside a larger area.
type Alignment int

const (
	AlignFill Alignment = iota
	AlignCenter
	AlignTopLeft
	AlignTop
	AlignTopRight
	AlignLeft
	AlignRight
	AlignBottomLeft
	AlignBottom
	AlignBottomRight
)

// Align places a w x h box inside area. Non-positive sizes mean "full extent"
// along that axis; sizes larger than the area are clipped.
func Align(area Rect, a Alignment, w, h int) Rect {
	if a == AlignFill {
		return area
	}
	if w <= 0 || w > area.Width {
		w = area.Width
	}
	if h <= 0 || h > area.Height {
		h = area.Height
	}
	x := area.X + (area.Width-w)/2
	y := area.Y + (area.Height-h)/2
	switch a {
	case AlignTopLeft, AlignLeft, AlignBottomLeft:
		x = area.X
	case AlignTopRight, AlignRight, AlignBottomRight:
		x = area.X + area.Width - w
	}
	switch a {
	case AlignTopLeft, AlignTop, AlignTopRight:
		y = area.Y
	case AlignBottomLeft, AlignBottom, AlignBottomRight:
		y = area.Y + area.Height - h
	}
	return Rect{X: x, Y: y, Width: w, Height: h}
}

// ClampOffset keeps a scroll offset inside [0, count-viewport].
func ClampOffset(offset, count, viewport int) int {
	if count <= viewport {
		return 0
	}
	return clamp(offset, 0, count-viewport)
}
