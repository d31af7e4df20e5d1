package element

import (
	"github.com/odvcencio/lattice/pkg/ui/layout"
	"github.com/odvcencio/lattice/pkg/ui/theme"
)

// Label is plain text in the normal role.
func Label[Msg any](text string) *Text[Msg] {
	return &Text[Msg]{Spans: []Span{{Text: text}}}
}

// Styled is text in a single role.
func Styled[Msg any](text string, role theme.Role) *Text[Msg] {
	return &Text[Msg]{Spans: []Span{{Text: text, Role: role}}}
}

// Rich builds text from spans.
func Rich[Msg any](spans ...Span) *Text[Msg] {
	return &Text[Msg]{Spans: spans}
}

// Column stacks children top to bottom.
func Column[Msg any](children ...Element[Msg]) *Flex[Msg] {
	return &Flex[Msg]{Axis: layout.Vertical, Children: children}
}

// Row places children left to right.
func Row[Msg any](children ...Element[Msg]) *Flex[Msg] {
	return &Flex[Msg]{Axis: layout.Horizontal, Children: children}
}

// Pad insets child by v rows and h columns on each side.
func Pad[Msg any](child Element[Msg], v, h int) *Padded[Msg] {
	return &Padded[Msg]{Child: child, Top: v, Bottom: v, Left: h, Right: h}
}

// Boxed wraps child in a titled panel.
func Boxed[Msg any](title string, child Element[Msg]) *Panel[Msg] {
	return &Panel[Msg]{Title: title, Child: child}
}

// NewButton builds a focusable button that sends msg when pressed.
func NewButton[Msg any](id FocusID, label string, msg Msg) *Button[Msg] {
	b := &Button[Msg]{Label: label, OnPress: Send(msg)}
	b.Focus = id
	return b
}

// Spacer is an empty node that takes a weighted share of free space.
func Spacer[Msg any]() *Empty[Msg] {
	e := &Empty[Msg]{}
	e.Size = Sized(layout.Fill(1))
	return e
}

// Gap is an empty node of fixed length.
func Gap[Msg any](n int) *Empty[Msg] {
	e := &Empty[Msg]{}
	e.Size = Sized(layout.Length(n))
	return e
}
