package widgetstate

import (
	"github.com/odvcencio/lattice/pkg/ui/element"
)

// DefaultPage is the page size used before a viewport height is known.
const DefaultPage = 10

// wheelLines is how far one wheel step scrolls a Scroll.
const wheelLines = 3

// List tracks the selection of a row widget (List, FileBrowser, TableTree).
type List struct {
	Selected int
	Offset   int
	// Page is the visible row count, fed from an OnViewport report.
	Page int
}

func (l *List) page() int {
	if l.Page > 0 {
		return l.Page
	}
	return DefaultPage
}

// Move applies a navigation intent over count rows and reports whether
// the selection changed.
func (l *List) Move(n element.Nav, count int) bool {
	next := element.Step(n, l.Selected, count, l.page())
	changed := next != l.Selected
	l.Selected = next
	return changed
}

func (l *List) handle(ev element.WidgetEvent) Result {
	switch ev.Action {
	case element.WidgetPick:
		if ev.Index < 0 || ev.Index >= ev.Count {
			return Unhandled()
		}
		if ev.Index == l.Selected {
			return Changed(element.WidgetChange{Index: ev.Index, Submitted: true})
		}
		l.Selected = ev.Index
		return Changed(element.WidgetChange{Index: ev.Index})

	case element.WidgetScroll:
		n := element.NavDown
		if ev.Delta < 0 {
			n = element.NavUp
		}
		if l.Move(n, ev.Count) {
			return Changed(element.WidgetChange{Index: l.Selected})
		}
		return Handled()

	case element.WidgetKey, element.WidgetNav:
		n := ev.Nav
		if ev.Action == element.WidgetKey {
			var ok bool
			if n, ok = element.NavFromKey(ev.Key); !ok {
				return Unhandled()
			}
		}
		switch n {
		case element.NavSelect:
			if ev.Count == 0 {
				return Unhandled()
			}
			return Changed(element.WidgetChange{Index: l.Selected, Submitted: true})
		case element.NavUp, element.NavDown, element.NavPageUp, element.NavPageDown,
			element.NavHome, element.NavEnd:
			if l.Move(n, ev.Count) {
				return Changed(element.WidgetChange{Index: l.Selected})
			}
			return Handled()
		}
	}
	return Unhandled()
}

// Select is a closed/open option picker.
type Select struct {
	Selected  int
	Open      bool
	Highlight int
}

func (s *Select) handle(ev element.WidgetEvent) Result {
	switch ev.Action {
	case element.WidgetPick:
		if ev.Index < 0 || ev.Index >= ev.Count {
			return Unhandled()
		}
		s.Selected = ev.Index
		s.Open = false
		return Changed(element.WidgetChange{Index: ev.Index, Submitted: true})

	case element.WidgetNav:
		return s.nav(ev.Nav, ev.Count)

	case element.WidgetKey:
		if n, ok := element.NavFromKey(ev.Key); ok {
			return s.nav(n, ev.Count)
		}
	}
	return Unhandled()
}

func (s *Select) nav(n element.Nav, count int) Result {
	if count == 0 {
		return Unhandled()
	}
	if !s.Open {
		switch n {
		case element.NavSelect, element.NavToggle, element.NavDown:
			s.Open = true
			s.Highlight = min(max(s.Selected, 0), count-1)
			return Handled()
		}
		return Unhandled()
	}
	switch n {
	case element.NavCancel:
		s.Open = false
		return Handled()
	case element.NavSelect, element.NavToggle:
		s.Open = false
		s.Selected = s.Highlight
		return Changed(element.WidgetChange{Index: s.Selected, Submitted: true})
	case element.NavUp, element.NavDown, element.NavPageUp, element.NavPageDown,
		element.NavHome, element.NavEnd:
		s.Highlight = element.Step(n, s.Highlight, count, 5)
		return Handled()
	}
	// Left and right fall through so a row of selects stays navigable.
	return Unhandled()
}

// Scroll is the offset of a scrollable wrapper. Count on events is the
// content height.
type Scroll struct {
	Offset int
	// Viewport is the visible height, fed from an OnViewport report.
	Viewport int
}

func (s *Scroll) maxOffset(content int) int {
	if s.Viewport > 0 {
		return max(0, content-s.Viewport)
	}
	return max(0, content-1)
}

// ScrollBy moves the offset by delta lines within content.
func (s *Scroll) ScrollBy(delta, content int) bool {
	next := min(max(s.Offset+delta, 0), s.maxOffset(content))
	changed := next != s.Offset
	s.Offset = next
	return changed
}

func (s *Scroll) handle(ev element.WidgetEvent) Result {
	page := s.Viewport
	if page <= 0 {
		page = DefaultPage
	}
	var delta int
	switch ev.Action {
	case element.WidgetScroll:
		delta = ev.Delta * wheelLines
	case element.WidgetKey, element.WidgetNav:
		n := ev.Nav
		if ev.Action == element.WidgetKey {
			var ok bool
			if n, ok = element.NavFromKey(ev.Key); !ok {
				return Unhandled()
			}
		}
		switch n {
		case element.NavUp:
			delta = -1
		case element.NavDown:
			delta = 1
		case element.NavPageUp:
			delta = -page
		case element.NavPageDown:
			delta = page
		case element.NavHome:
			delta = -s.Offset
		case element.NavEnd:
			delta = s.maxOffset(ev.Count) - s.Offset
		default:
			return Unhandled()
		}
	default:
		return Unhandled()
	}
	if s.ScrollBy(delta, ev.Count) {
		return Changed(element.WidgetChange{Index: s.Offset})
	}
	return Handled()
}
