// Package widgetstate holds the state of self-managed widgets. An
// application embeds a Store in its state; the runtime routes widget events
// to it and maps the resulting changes through the element's change binding.
package widgetstate

import (
	"github.com/odvcencio/lattice/pkg/ui/element"
)

// Dispatcher is implemented by application states that accept
// auto-dispatched widget events. Embedding a Store satisfies it.
type Dispatcher interface {
	DispatchWidget(ev element.WidgetEvent) Result
}

// Result reports what a widget did with an event.
type Result struct {
	// Handled means the event was consumed.
	Handled bool
	// Changed means Change describes a new value worth reporting.
	Changed bool
	Change  element.WidgetChange
}

// Handled returns a result indicating the event was consumed.
func Handled() Result {
	return Result{Handled: true}
}

// Unhandled returns a result indicating the event was not consumed.
func Unhandled() Result {
	return Result{}
}

// Changed returns a handled result carrying a change.
func Changed(ch element.WidgetChange) Result {
	return Result{Handled: true, Changed: true, Change: ch}
}

// widget is one piece of managed state.
type widget interface {
	handle(ev element.WidgetEvent) Result
}

// Store keys widget state by focus id. The zero value is ready to use.
type Store struct {
	widgets map[element.FocusID]widget
}

// DispatchWidget implements Dispatcher.
func (s *Store) DispatchWidget(ev element.WidgetEvent) Result {
	w, ok := s.widgets[ev.ID]
	if !ok {
		return Unhandled()
	}
	r := w.handle(ev)
	if r.Changed {
		r.Change.ID = ev.ID
	}
	return r
}

// Has reports whether id has state.
func (s *Store) Has(id element.FocusID) bool {
	_, ok := s.widgets[id]
	return ok
}

// Forget drops the state for id.
func (s *Store) Forget(id element.FocusID) {
	delete(s.widgets, id)
}

func lookup[W widget](s *Store, id element.FocusID, create func() W) W {
	if s.widgets == nil {
		s.widgets = make(map[element.FocusID]widget)
	}
	if w, ok := s.widgets[id].(W); ok {
		return w
	}
	w := create()
	s.widgets[id] = w
	return w
}

// Text returns the text input state for id, creating it if needed.
func (s *Store) Text(id element.FocusID) *TextInput {
	return lookup(s, id, func() *TextInput { return &TextInput{} })
}

// List returns the list state for id.
func (s *Store) List(id element.FocusID) *List {
	return lookup(s, id, func() *List { return &List{} })
}

// Select returns the select state for id.
func (s *Store) Select(id element.FocusID) *Select {
	return lookup(s, id, func() *Select { return &Select{} })
}

// Scroll returns the scroll state for id.
func (s *Store) Scroll(id element.FocusID) *Scroll {
	return lookup(s, id, func() *Scroll { return &Scroll{} })
}

// Autocomplete returns the autocomplete state for id.
func (s *Store) Autocomplete(id element.FocusID) *Autocomplete {
	return lookup(s, id, func() *Autocomplete { return &Autocomplete{} })
}

// Color returns the color picker state for id.
func (s *Store) Color(id element.FocusID) *Color {
	return lookup(s, id, func() *Color { return NewColor(0, 0, 0.5) })
}

// Resizer is implemented by states that want the painted size of their
// self-managed widgets. Embedding a Store satisfies it.
type Resizer interface {
	WidgetResized(id element.FocusID, width, height int)
}

// WidgetResized implements Resizer. Lists learn their page size and scroll
// wrappers their viewport height.
func (s *Store) WidgetResized(id element.FocusID, _, height int) {
	switch w := s.widgets[id].(type) {
	case *List:
		w.Page = height
	case *Scroll:
		w.Viewport = height
	}
}
