package element

import (
	"strings"

	"github.com/odvcencio/lattice/pkg/ui/layout"
)

// ConstraintOf returns the element's explicit constraint, or its default.
func ConstraintOf[Msg any](e Element[Msg]) layout.Constraint {
	if e == nil {
		return layout.Length(0)
	}
	if s := e.base().Size; s != nil {
		return *s
	}
	return DefaultConstraint[Msg](e)
}

// DefaultConstraint maps a node kind to the constraint it takes when the
// caller gives none.
func DefaultConstraint[Msg any](e Element[Msg]) layout.Constraint {
	switch n := e.(type) {
	case nil, *Empty[Msg]:
		return layout.Length(0)
	case *Button[Msg]:
		return layout.Length(3)
	case *Text[Msg]:
		return layout.Length(n.LineCount())
	case *Panel[Msg]:
		if c := ConstraintOf[Msg](n.Child); c.Kind == layout.KindLength {
			return layout.Length(c.Value + 2)
		}
		return layout.Fill(1)
	case *Padded[Msg]:
		if c := ConstraintOf[Msg](n.Child); c.Kind == layout.KindLength {
			return layout.Length(c.Value + n.Top + n.Bottom)
		}
		return layout.Fill(1)
	case *Input[Msg]:
		return fieldHeight(n.Bordered)
	case *Select[Msg]:
		return fieldHeight(n.Bordered)
	case *Autocomplete[Msg]:
		return fieldHeight(n.Bordered)
	case *Progress[Msg]:
		return layout.Length(1)
	case *ColorPicker[Msg]:
		return layout.Length(8)
	default:
		// Flex, Stack, List, Tree, TableTree, Scroll, FileBrowser.
		return layout.Fill(1)
	}
}

func fieldHeight(bordered bool) layout.Constraint {
	if bordered {
		return layout.Length(3)
	}
	return layout.Length(1)
}

// Plain joins the text of every span.
func (t *Text[Msg]) Plain() string {
	var b strings.Builder
	for _, s := range t.Spans {
		b.WriteString(s.Text)
	}
	return b.String()
}

// LineCount is the number of hard lines in the text. Empty text still takes
// one line.
func (t *Text[Msg]) LineCount() int {
	return strings.Count(t.Plain(), "\n") + 1
}
