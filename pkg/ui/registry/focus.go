// Package registry holds the per-frame lookup tables the renderer fills while
// painting: focusable entries by layer, mouse targets by cell and open
// dropdown popups. Everything here is rebuilt from scratch every frame.
package registry

import (
	"github.com/odvcencio/lattice/pkg/ui/element"
	"github.com/odvcencio/lattice/pkg/ui/layout"
	"github.com/odvcencio/lattice/pkg/ui/terminal"
)

// FocusEntry describes one focusable node as painted this frame.
type FocusEntry[Msg any] struct {
	ID   element.FocusID
	Rect layout.Rect
	// Translate turns a key press into an outcome while focused.
	Translate func(terminal.KeyEvent) element.Outcome[Msg]
	OnFocus   func() Msg
	OnBlur    func() Msg
	// OnChange maps an auto-dispatched change to an application message.
	OnChange func(element.WidgetChange) (Msg, bool)
}

type focusLayer[Msg any] struct {
	depth   int
	entries []FocusEntry[Msg]
}

// Focus is a stack of focus layers. Only the top layer is navigable, which
// is how modal layers trap focus.
type Focus[Msg any] struct {
	layers []focusLayer[Msg]
}

// NewFocus creates an empty focus registry.
func NewFocus[Msg any]() *Focus[Msg] {
	return &Focus[Msg]{}
}

// PushLayer opens a new active layer for the layer at depth.
func (f *Focus[Msg]) PushLayer(depth int) {
	f.layers = append(f.layers, focusLayer[Msg]{depth: depth})
}

// PopLayer discards the active layer.
func (f *Focus[Msg]) PopLayer() {
	if len(f.layers) > 0 {
		f.layers = f.layers[:len(f.layers)-1]
	}
}

// Depth returns the depth of the active layer, or -1 when there is none.
func (f *Focus[Msg]) Depth() int {
	if len(f.layers) == 0 {
		return -1
	}
	return f.layers[len(f.layers)-1].depth
}

// Register adds an entry to the active layer. Registering an id that is
// already present in the layer replaces it in place.
func (f *Focus[Msg]) Register(entry FocusEntry[Msg]) {
	if entry.ID == "" {
		return
	}
	if len(f.layers) == 0 {
		f.PushLayer(0)
	}
	top := &f.layers[len(f.layers)-1]
	for i := range top.entries {
		if top.entries[i].ID == entry.ID {
			top.entries[i] = entry
			return
		}
	}
	top.entries = append(top.entries, entry)
}

// Entries returns the active layer's entries in registration order.
func (f *Focus[Msg]) Entries() []FocusEntry[Msg] {
	if len(f.layers) == 0 {
		return nil
	}
	return f.layers[len(f.layers)-1].entries
}

// Len returns the number of entries in the active layer.
func (f *Focus[Msg]) Len() int {
	return len(f.Entries())
}

// Next returns the entry after current in the active layer, wrapping.
// An unknown or empty current starts from the first entry.
func (f *Focus[Msg]) Next(current element.FocusID) (element.FocusID, bool) {
	entries := f.Entries()
	if len(entries) == 0 {
		return "", false
	}
	i := indexOf(entries, current)
	if i < 0 {
		return entries[0].ID, true
	}
	return entries[(i+1)%len(entries)].ID, true
}

// Prev returns the entry before current in the active layer, wrapping.
// An unknown or empty current starts from the last entry.
func (f *Focus[Msg]) Prev(current element.FocusID) (element.FocusID, bool) {
	entries := f.Entries()
	if len(entries) == 0 {
		return "", false
	}
	i := indexOf(entries, current)
	if i < 0 {
		return entries[len(entries)-1].ID, true
	}
	return entries[(i-1+len(entries))%len(entries)].ID, true
}

// At returns the active-layer entry under the point. Later registrations
// win where rects overlap.
func (f *Focus[Msg]) At(x, y int) (FocusEntry[Msg], bool) {
	entries := f.Entries()
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Rect.Contains(x, y) {
			return entries[i], true
		}
	}
	return FocusEntry[Msg]{}, false
}

// Contains reports whether id was registered in any layer this frame.
func (f *Focus[Msg]) Contains(id element.FocusID) bool {
	_, ok := f.Entry(id)
	return ok
}

// Entry looks an id up, searching from the active layer down.
func (f *Focus[Msg]) Entry(id element.FocusID) (FocusEntry[Msg], bool) {
	if id == "" {
		return FocusEntry[Msg]{}, false
	}
	for l := len(f.layers) - 1; l >= 0; l-- {
		for _, e := range f.layers[l].entries {
			if e.ID == id {
				return e, true
			}
		}
	}
	return FocusEntry[Msg]{}, false
}

// Clear drops every layer.
func (f *Focus[Msg]) Clear() {
	f.layers = f.layers[:0]
}

func indexOf[Msg any](entries []FocusEntry[Msg], id element.FocusID) int {
	if id == "" {
		return -1
	}
	for i, e := range entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}
