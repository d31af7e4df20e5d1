package widgetstate

import (
	"github.com/odvcencio/lattice/pkg/ui/element"
)

// The builders below return elements wired to the store's state for id.
// Callers add labels and change bindings before returning them from View.

// Input builds a self-managed text input.
func Input[Msg any](s *Store, id element.FocusID) *element.Input[Msg] {
	t := s.Text(id)
	e := &element.Input[Msg]{Value: t.Value, Cursor: t.Cursor}
	e.Focus = id
	return e
}

// ListOf builds a self-managed list over items.
func ListOf[Msg any](s *Store, id element.FocusID, items []element.ListItem) *element.List[Msg] {
	l := s.List(id)
	l.Selected = min(max(l.Selected, 0), max(len(items)-1, 0))
	e := &element.List[Msg]{Items: items, Selected: l.Selected, Offset: l.Offset}
	e.Focus = id
	return e
}

// SelectOf builds a self-managed select over options.
func SelectOf[Msg any](s *Store, id element.FocusID, options []string) *element.Select[Msg] {
	st := s.Select(id)
	st.Selected = min(max(st.Selected, 0), max(len(options)-1, 0))
	e := &element.Select[Msg]{
		Options:   options,
		Selected:  st.Selected,
		Open:      st.Open,
		Highlight: st.Highlight,
	}
	e.Focus = id
	return e
}

// ScrollOf builds a self-managed scroll wrapper.
func ScrollOf[Msg any](s *Store, id element.FocusID, child element.Element[Msg], contentHeight int) *element.Scroll[Msg] {
	st := s.Scroll(id)
	e := &element.Scroll[Msg]{Child: child, ContentHeight: contentHeight, Offset: st.Offset}
	e.Focus = id
	return e
}

// AutocompleteOf builds a self-managed autocomplete over suggestions.
func AutocompleteOf[Msg any](s *Store, id element.FocusID, suggestions []string) *element.Autocomplete[Msg] {
	a := s.Autocomplete(id)
	e := &element.Autocomplete[Msg]{
		Value:       a.Value,
		Cursor:      a.Cursor,
		Suggestions: suggestions,
		Open:        a.Open,
		Highlight:   a.Highlight,
	}
	e.Focus = id
	return e
}

// ColorPickerOf builds a self-managed color picker.
func ColorPickerOf[Msg any](s *Store, id element.FocusID) *element.ColorPicker[Msg] {
	c := s.Color(id)
	e := &element.ColorPicker[Msg]{Color: c.Backend(), Channel: c.Channel}
	e.Focus = id
	return e
}
