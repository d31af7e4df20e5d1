// Package render lowers element trees onto a cell buffer and fills the
// focus, interaction and dropdown registries as a side effect.
package render

import (
	"github.com/mattn/go-runewidth"

	"github.com/odvcencio/lattice/pkg/ui/backend"
	"github.com/odvcencio/lattice/pkg/ui/layout"
)

// Cell represents a single character cell in the buffer. A zero Rune marks
// the trailing half of a wide character.
type Cell struct {
	Rune  rune
	Style backend.Style
}

// Buffer is a 2D grid of cells. Painters write to the buffer, then the
// buffer is flushed to the backend. Writes honor the current clip rect and
// changed cells are tracked for partial redraws.
type Buffer struct {
	cells  []Cell
	width  int
	height int
	clips  []layout.Rect

	dirty      []bool
	dirtyCount int
}

// NewBuffer creates a buffer with the given dimensions.
func NewBuffer(w, h int) *Buffer {
	b := &Buffer{}
	b.Resize(w, h)
	return b
}

// Size returns the buffer dimensions.
func (b *Buffer) Size() (w, h int) {
	return b.width, b.height
}

// Bounds returns the full buffer rect.
func (b *Buffer) Bounds() layout.Rect {
	return layout.NewRect(0, 0, b.width, b.height)
}

// Resize changes the buffer dimensions. Content is discarded and every cell
// is marked dirty.
func (b *Buffer) Resize(w, h int) {
	w, h = max(0, w), max(0, h)
	if w == b.width && h == b.height && b.cells != nil {
		return
	}
	b.width, b.height = w, h
	b.cells = make([]Cell, w*h)
	b.dirty = make([]bool, w*h)
	b.clips = b.clips[:0]
	b.Clear()
	b.MarkAllDirty()
}

// PushClip restricts writes to r intersected with the current clip.
func (b *Buffer) PushClip(r layout.Rect) {
	b.clips = append(b.clips, r.Intersection(b.Clip()))
}

// PopClip restores the previous clip.
func (b *Buffer) PopClip() {
	if len(b.clips) > 0 {
		b.clips = b.clips[:len(b.clips)-1]
	}
}

// Clip returns the rect writes are currently restricted to.
func (b *Buffer) Clip() layout.Rect {
	if len(b.clips) == 0 {
		return b.Bounds()
	}
	return b.clips[len(b.clips)-1]
}

// Clear fills the buffer with spaces and default style, ignoring the clip.
func (b *Buffer) Clear() {
	blank := Cell{Rune: ' ', Style: backend.DefaultStyle()}
	for i := range b.cells {
		if b.cells[i] != blank {
			b.cells[i] = blank
			b.markDirty(i)
		}
	}
}

// ClearRect fills a rect with spaces and default style.
func (b *Buffer) ClearRect(r layout.Rect) {
	b.Fill(r, ' ', backend.DefaultStyle())
}

// Get returns the cell at position (x, y), or a blank cell out of bounds.
func (b *Buffer) Get(x, y int) Cell {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return Cell{Rune: ' ', Style: backend.DefaultStyle()}
	}
	return b.cells[y*b.width+x]
}

// Set writes a rune at (x, y). Wide runes also claim the next cell.
func (b *Buffer) Set(x, y int, r rune, s backend.Style) {
	if !b.Clip().Contains(x, y) {
		return
	}
	b.put(x, y, Cell{Rune: r, Style: s})
	if runewidth.RuneWidth(r) == 2 && b.Clip().Contains(x+1, y) {
		b.put(x+1, y, Cell{Style: s})
	}
}

func (b *Buffer) put(x, y int, c Cell) {
	idx := y*b.width + x
	if b.cells[idx] != c {
		b.cells[idx] = c
		b.markDirty(idx)
	}
}

// SetString writes s starting at (x, y) and returns the number of columns
// advanced. Zero-width runes are dropped.
func (b *Buffer) SetString(x, y int, s string, style backend.Style) int {
	col := 0
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		b.Set(x+col, y, r, style)
		col += w
	}
	return col
}

// SetStringClipped writes s truncated to width columns.
func (b *Buffer) SetStringClipped(x, y int, s string, width int, style backend.Style) int {
	if width <= 0 {
		return 0
	}
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, "…")
	}
	return b.SetString(x, y, s, style)
}

// Fill fills a rect with a rune and style.
func (b *Buffer) Fill(r layout.Rect, ch rune, s backend.Style) {
	r = r.Intersection(b.Clip())
	for y := r.Y; y < r.Y+r.Height; y++ {
		for x := r.X; x < r.X+r.Width; x++ {
			b.put(x, y, Cell{Rune: ch, Style: s})
		}
	}
}

// Restyle replaces the style of every cell in r, keeping the runes.
func (b *Buffer) Restyle(r layout.Rect, s backend.Style) {
	r = r.Intersection(b.Clip())
	for y := r.Y; y < r.Y+r.Height; y++ {
		for x := r.X; x < r.X+r.Width; x++ {
			c := b.cells[y*b.width+x]
			c.Style = s
			b.put(x, y, c)
		}
	}
}

// Dim darkens every cell in r.
func (b *Buffer) Dim(r layout.Rect) {
	r = r.Intersection(b.Clip())
	for y := r.Y; y < r.Y+r.Height; y++ {
		for x := r.X; x < r.X+r.Width; x++ {
			c := b.cells[y*b.width+x]
			c.Style = c.Style.Dimmed()
			b.put(x, y, c)
		}
	}
}

// DrawBox draws a rounded border around r.
func (b *Buffer) DrawBox(r layout.Rect, s backend.Style) {
	if r.Width < 2 || r.Height < 2 {
		return
	}
	right, bottom := r.X+r.Width-1, r.Y+r.Height-1
	b.Set(r.X, r.Y, '╭', s)
	b.Set(right, r.Y, '╮', s)
	b.Set(r.X, bottom, '╰', s)
	b.Set(right, bottom, '╯', s)
	for x := r.X + 1; x < right; x++ {
		b.Set(x, r.Y, '─', s)
		b.Set(x, bottom, '─', s)
	}
	for y := r.Y + 1; y < bottom; y++ {
		b.Set(r.X, y, '│', s)
		b.Set(right, y, '│', s)
	}
}

func (b *Buffer) markDirty(idx int) {
	if !b.dirty[idx] {
		b.dirty[idx] = true
		b.dirtyCount++
	}
}

// MarkAllDirty forces the next flush to write every cell.
func (b *Buffer) MarkAllDirty() {
	for i := range b.dirty {
		b.dirty[i] = true
	}
	b.dirtyCount = len(b.dirty)
}

// ClearDirty resets all dirty flags.
func (b *Buffer) ClearDirty() {
	clear(b.dirty)
	b.dirtyCount = 0
}

// IsDirty reports whether any cell changed since the last flush.
func (b *Buffer) IsDirty() bool {
	return b.dirtyCount > 0
}

// DirtyCount returns the number of dirty cells.
func (b *Buffer) DirtyCount() int {
	return b.dirtyCount
}

// ForEachDirtyCell calls fn for each dirty cell in row-major order.
func (b *Buffer) ForEachDirtyCell(fn func(x, y int, cell Cell)) {
	if b.dirtyCount == 0 {
		return
	}
	for idx, d := range b.dirty {
		if d {
			fn(idx%b.width, idx/b.width, b.cells[idx])
		}
	}
}

// Flush writes dirty cells to the backend and shows them. When more than
// half the screen changed every cell is rewritten in order instead.
func (b *Buffer) Flush(be backend.Backend) {
	put := func(x, y int, c Cell) {
		if c.Rune == 0 {
			return
		}
		be.SetContent(x, y, c.Rune, nil, c.Style)
	}
	if b.dirtyCount > len(b.cells)/2 {
		for idx, c := range b.cells {
			put(idx%b.width, idx/b.width, c)
		}
	} else {
		b.ForEachDirtyCell(put)
	}
	b.ClearDirty()
	be.Show()
}

// Text returns the buffer content as lines, for tests and debugging.
func (b *Buffer) Text() string {
	out := make([]rune, 0, (b.width+1)*b.height)
	for y := 0; y < b.height; y++ {
		if y > 0 {
			out = append(out, '\n')
		}
		for x := 0; x < b.width; x++ {
			if r := b.cells[y*b.width+x].Rune; r != 0 {
				out = append(out, r)
			}
		}
	}
	return string(out)
}
