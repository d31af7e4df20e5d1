package element

import (
	"github.com/odvcencio/lattice/pkg/ui/backend"
	"github.com/odvcencio/lattice/pkg/ui/layout"
	"github.com/odvcencio/lattice/pkg/ui/terminal"
	"github.com/odvcencio/lattice/pkg/ui/theme"
)

// Bindings shared by focusable kinds. Every field is optional.
type Bindings[Msg any] struct {
	Focus       FocusID
	OnFocus     func() Msg
	OnBlur      func() Msg
	OnHover     func() Msg
	OnHoverExit func() Msg
	// OnKey sees every key while focused, before any built-in handling.
	// Returning false lets the key fall through.
	OnKey func(terminal.KeyEvent) (Msg, bool)
}

// Bind returns the shared bindings.
func (b *Bindings[Msg]) Bind() *Bindings[Msg] { return b }

// Bindable is implemented by every focusable kind.
type Bindable[Msg any] interface {
	Element[Msg]
	Bind() *Bindings[Msg]
}

// Empty occupies space and paints nothing.
type Empty[Msg any] struct{ Base[Msg] }

// Span is a run of text in one role.
type Span struct {
	Text string
	Role theme.Role
	Bold bool
}

// TextAlign positions text horizontally.
type TextAlign int

const (
	AlignLeft TextAlign = iota
	AlignCenter
	AlignRight
)

// Text is static or styled text. Newlines inside spans start new lines.
type Text[Msg any] struct {
	Base[Msg]
	Spans []Span
	Align TextAlign
	Wrap  bool
}

// Button is a bordered, pressable label. Enter and space press it.
type Button[Msg any] struct {
	Base[Msg]
	Bindings[Msg]
	Label    string
	OnPress  func() Msg
	Disabled bool
}

// Flex lays children out along Axis.
type Flex[Msg any] struct {
	Base[Msg]
	Axis     layout.Axis
	Children []Element[Msg]
	Gap      int
}

// Padded insets its child.
type Padded[Msg any] struct {
	Base[Msg]
	Child                    Element[Msg]
	Top, Right, Bottom, Left int
}

// Panel draws a rounded border with an optional title around its child.
type Panel[Msg any] struct {
	Base[Msg]
	Child Element[Msg]
	Title string
	// Highlight draws the border in the focus role.
	Highlight bool
}

// Stack paints its layers over the same area, first to last.
type Stack[Msg any] struct {
	Base[Msg]
	Layers []Layer[Msg]
}

// ListItem is one row of a List.
type ListItem struct {
	Label  string
	Detail string
	Role   theme.Role
	Marked bool
}

// List is a scrolling, selectable column of rows. Without OnNavigate the
// list is self-managed through widget auto-dispatch.
type List[Msg any] struct {
	Base[Msg]
	Bindings[Msg]
	Items    []ListItem
	Selected int
	Offset   int
	// OnNavigate receives navigation keys.
	OnNavigate func(Nav) Msg
	// OnSelect fires when a row is clicked or activated.
	OnSelect func(index int) Msg
	// OnViewport reports the painted width and height.
	OnViewport func(width, height int) Msg
	Empty      string
}

// Input is a single-line text field. Without OnKey it is self-managed.
type Input[Msg any] struct {
	Base[Msg]
	Bindings[Msg]
	Value       string
	Cursor      int
	Placeholder string
	Label       string
	Bordered    bool
	Mask        rune
	OnChange    func(value string) Msg
	OnSubmit    func(value string) Msg
}

// TreeRow is one visible row of a tree, already flattened by the caller.
type TreeRow struct {
	Label      string
	Depth      int
	Expandable bool
	Expanded   bool
	Marked     bool
	Role       theme.Role
}

// Tree renders flattened hierarchical rows with expand markers.
type Tree[Msg any] struct {
	Base[Msg]
	Bindings[Msg]
	Rows       []TreeRow
	Selected   int
	Offset     int
	OnNavigate func(Nav) Msg
	OnSelect   func(index int) Msg
	OnViewport func(width, height int) Msg
}

// TableColumn describes one TableTree column.
type TableColumn struct {
	Title string
	Width layout.Constraint
}

// TableRow is a tree row with one cell per column. The first cell is
// indented by depth.
type TableRow struct {
	Cells      []string
	Depth      int
	Expandable bool
	Expanded   bool
	Marked     bool
	Role       theme.Role
}

// TableTree is a tree whose rows are split into columns under a header.
type TableTree[Msg any] struct {
	Base[Msg]
	Bindings[Msg]
	Columns    []TableColumn
	Rows       []TableRow
	Selected   int
	Offset     int
	OnNavigate func(Nav) Msg
	OnSelect   func(index int) Msg
	OnViewport func(width, height int) Msg
}

// Scroll shows a vertical window of a taller child.
type Scroll[Msg any] struct {
	Base[Msg]
	Bindings[Msg]
	Child Element[Msg]
	// ContentHeight is the child's full height; zero derives it from the
	// child's Length constraint.
	ContentHeight int
	Offset        int
	OnNavigate    func(Nav) Msg
	OnScroll      func(delta int) Msg
	OnViewport    func(width, height int) Msg
}

// Select is a closed list of options behind a dropdown.
type Select[Msg any] struct {
	Base[Msg]
	Bindings[Msg]
	Options   []string
	Selected  int
	Open      bool
	Highlight int
	Label     string
	Bordered  bool
	OnChange  func(index int) Msg
	// OnNavigate receives navigation keys, including those aimed at the
	// open dropdown.
	OnNavigate func(Nav) Msg
}

// Autocomplete is a text field with fuzzy-filtered suggestions.
type Autocomplete[Msg any] struct {
	Base[Msg]
	Bindings[Msg]
	Value       string
	Cursor      int
	Suggestions []string
	Open        bool
	Highlight   int
	Limit       int
	Placeholder string
	Label       string
	Bordered    bool
	OnChange    func(value string) Msg
	OnSelect    func(value string) Msg
}

// FileEntry is one row of a FileBrowser.
type FileEntry struct {
	Name  string
	IsDir bool
	Size  int64
}

// FileBrowser lists a directory. The caller supplies the entries.
type FileBrowser[Msg any] struct {
	Base[Msg]
	Bindings[Msg]
	Dir        string
	Entries    []FileEntry
	Selected   int
	Offset     int
	OnNavigate func(Nav) Msg
	OnOpen     func(index int) Msg
	OnViewport func(width, height int) Msg
}

// Channel is the HSL channel a ColorPicker is adjusting.
type Channel int

const (
	ChannelHue Channel = iota
	ChannelSaturation
	ChannelLightness
)

// ColorPicker edits a true color along hue, saturation and lightness.
type ColorPicker[Msg any] struct {
	Base[Msg]
	Bindings[Msg]
	Color      backend.Color
	Channel    Channel
	Label      string
	OnChange   func(backend.Color) Msg
	OnNavigate func(Nav) Msg
}

// Progress is a one-line bar. Ratio is clamped to [0, 1].
type Progress[Msg any] struct {
	Base[Msg]
	Ratio float64
	Label string
	Role  theme.Role
}
