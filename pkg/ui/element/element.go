// Package element defines the immutable UI tree applications describe each
// frame. Nodes are plain data: they carry layout hints and optional message
// bindings but never behave on their own. The renderer lowers them onto cells.
package element

import (
	"github.com/odvcencio/lattice/pkg/ui/layout"
	"github.com/odvcencio/lattice/pkg/ui/terminal"
)

// FocusID names a focusable node. It is the only identity a node has and it
// survives rebuilds and sibling reordering.
type FocusID string

// Element is one node of the UI tree for a single frame. The set of
// implementations is closed; the renderer switches over the concrete kinds.
// A node built for one message type never satisfies Element for another.
type Element[Msg any] interface {
	base() *Base[Msg]
}

// Base carries the fields every kind shares and ties the kind to Msg.
type Base[Msg any] struct {
	// Size overrides DefaultConstraint when set.
	Size *layout.Constraint
}

func (b *Base[Msg]) base() *Base[Msg] { return b }

// Sized returns a copy of c usable as Base.Size.
func Sized(c layout.Constraint) *layout.Constraint { return &c }

// WithSize sets an explicit constraint on any element and returns it.
func WithSize[Msg any, E Element[Msg]](e E, c layout.Constraint) E {
	e.base().Size = Sized(c)
	return e
}

// Send returns a binding that always produces m.
func Send[Msg any](m Msg) func() Msg {
	return func() Msg { return m }
}

// WidgetAction is the kind of widget-level event.
type WidgetAction int

const (
	// WidgetKey carries a key press for the focused widget.
	WidgetKey WidgetAction = iota
	// WidgetPick selects the option or row at Index.
	WidgetPick
	// WidgetScroll moves the widget's viewport by Delta.
	WidgetScroll
	// WidgetNav carries a decoded navigation intent, usually aimed at an
	// open popup.
	WidgetNav
)

// WidgetEvent is an input event addressed to a self-managed widget. It is
// handled by the application state's auto-dispatch rather than by Update.
type WidgetEvent struct {
	ID     FocusID
	Action WidgetAction
	Key    terminal.KeyEvent
	Nav    Nav
	Index  int
	Delta  int
	// Text is the picked value for widgets whose options are derived at
	// paint time, such as filtered suggestions.
	Text string
	// Count is the number of options the painter showed.
	Count int
}

// WidgetChange reports what an auto-dispatched event changed, so the
// widget's change binding can turn it into an application message.
type WidgetChange struct {
	ID        FocusID
	Value     string
	Index     int
	Submitted bool
}

// Outcome is what an input binding resolved to: an application message, a
// widget event for auto-dispatch, or nothing.
type Outcome[Msg any] struct {
	Msg    Msg
	HasMsg bool
	Widget *WidgetEvent
}

// Emit wraps an application message.
func Emit[Msg any](m Msg) Outcome[Msg] {
	return Outcome[Msg]{Msg: m, HasMsg: true}
}

// EmitFn wraps an optional binding; a nil binding yields no outcome.
func EmitFn[Msg any](fn func() Msg) Outcome[Msg] {
	if fn == nil {
		return Outcome[Msg]{}
	}
	return Emit(fn())
}

// Dispatch wraps a widget event.
func Dispatch[Msg any](ev WidgetEvent) Outcome[Msg] {
	return Outcome[Msg]{Widget: &ev}
}

// Handled reports whether the outcome carries anything.
func (o Outcome[Msg]) Handled() bool {
	return o.HasMsg || o.Widget != nil
}

// Layer is one sheet in a front-to-back stack. Layers after the first in an
// application's view are modal: only the topmost receives input.
type Layer[Msg any] struct {
	Content Element[Msg]
	Align   layout.Alignment
	// Dim darkens everything painted beneath this layer.
	Dim bool
	// Width and Height size aligned boxes; zero means the full extent.
	Width, Height int
}

// Fill is a full-screen layer with no dimming.
func Fill[Msg any](content Element[Msg]) Layer[Msg] {
	return Layer[Msg]{Content: content, Align: layout.AlignFill}
}

// Modal builds a centered, dimming layer of the given size.
func Modal[Msg any](content Element[Msg], w, h int) Layer[Msg] {
	return Layer[Msg]{Content: content, Align: layout.AlignCenter, Dim: true, Width: w, Height: h}
}
