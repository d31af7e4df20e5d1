// Package tcell drives a real terminal through gdamore/tcell.
package tcell

import (
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/odvcencio/lattice/pkg/ui/backend"
	"github.com/odvcencio/lattice/pkg/ui/terminal"
)

// Backend implements backend.Backend on a tcell screen. Bracketed paste is
// collected into one PasteEvent and mouse releases are synthesized from
// the previous button state, which tcell does not report.
type Backend struct {
	screen tcell.Screen

	inPaste bool
	paste   strings.Builder
	held    terminal.MouseButton
}

// New opens the controlling terminal.
func New() (*Backend, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return &Backend{screen: screen}, nil
}

// NewWithScreen wraps an existing screen, such as a simulation screen.
func NewWithScreen(screen tcell.Screen) *Backend {
	return &Backend{screen: screen}
}

func (b *Backend) Init() error {
	if err := b.screen.Init(); err != nil {
		return err
	}
	b.screen.EnableMouse(tcell.MouseMotionEvents)
	b.screen.EnablePaste()
	return nil
}

func (b *Backend) Fini()                     { b.screen.Fini() }
func (b *Backend) Size() (width, height int) { return b.screen.Size() }
func (b *Backend) Show()                     { b.screen.Show() }
func (b *Backend) Clear()                    { b.screen.Clear() }
func (b *Backend) HideCursor()               { b.screen.HideCursor() }
func (b *Backend) SetCursorPos(x, y int)     { b.screen.ShowCursor(x, y) }
func (b *Backend) Beep()                     { _ = b.screen.Beep() }
func (b *Backend) Sync()                     { b.screen.Sync() }

func (b *Backend) SetContent(x, y int, mainc rune, comb []rune, style backend.Style) {
	b.screen.SetContent(x, y, mainc, comb, toStyle(style))
}

// PollEvent blocks until the next event the runtime understands. It
// returns nil once the screen is finalized.
func (b *Backend) PollEvent() terminal.Event {
	for {
		ev := b.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if out, ok := b.translate(ev); ok {
			return out
		}
	}
}

func (b *Backend) translate(ev tcell.Event) (terminal.Event, bool) {
	switch e := ev.(type) {
	case *tcell.EventPaste:
		if e.Start() {
			b.inPaste = true
			b.paste.Reset()
			return nil, false
		}
		b.inPaste = false
		text := b.paste.String()
		b.paste.Reset()
		return terminal.PasteEvent{Text: text}, text != ""
	case *tcell.EventKey:
		if b.inPaste {
			b.collectPaste(e)
			return nil, false
		}
		ke := fromKey(e)
		return ke, ke.Key != terminal.KeyNone
	case *tcell.EventResize:
		w, h := e.Size()
		return terminal.ResizeEvent{Width: w, Height: h}, true
	case *tcell.EventMouse:
		return b.fromMouse(e), true
	}
	return nil, false
}

func (b *Backend) collectPaste(e *tcell.EventKey) {
	switch e.Key() {
	case tcell.KeyRune:
		b.paste.WriteRune(e.Rune())
	case tcell.KeyEnter:
		b.paste.WriteRune('\n')
	case tcell.KeyTab:
		b.paste.WriteRune('\t')
	}
}

func (b *Backend) fromMouse(e *tcell.EventMouse) terminal.MouseEvent {
	x, y := e.Position()
	out := terminal.MouseEvent{X: x, Y: y, Mods: fromMods(e.Modifiers())}
	btn := fromButtons(e.Buttons())
	switch {
	case btn != terminal.MouseNone:
		out.Button, out.Action = btn, terminal.MousePress
		if btn != terminal.MouseWheelUp && btn != terminal.MouseWheelDown {
			b.held = btn
		}
	case b.held != terminal.MouseNone:
		out.Button, out.Action = b.held, terminal.MouseRelease
		b.held = terminal.MouseNone
	default:
		out.Action = terminal.MouseMove
	}
	return out
}

// PostEvent queues ev as if the terminal had produced it. A paste is
// posted as a bracketed sequence of keys. Events with no tcell equivalent
// are ignored.
func (b *Backend) PostEvent(ev terminal.Event) error {
	if p, ok := ev.(terminal.PasteEvent); ok {
		seq := []tcell.Event{tcell.NewEventPaste(true)}
		for _, r := range p.Text {
			switch r {
			case '\n':
				seq = append(seq, tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone))
			case '\t':
				seq = append(seq, tcell.NewEventKey(tcell.KeyTab, 0, tcell.ModNone))
			default:
				seq = append(seq, tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
			}
		}
		seq = append(seq, tcell.NewEventPaste(false))
		for _, tev := range seq {
			if err := b.screen.PostEvent(tev); err != nil {
				return err
			}
		}
		return nil
	}
	if tev := toEvent(ev); tev != nil {
		return b.screen.PostEvent(tev)
	}
	return nil
}

var attrs = []struct {
	mask  backend.AttrMask
	tmask tcell.AttrMask
	apply func(tcell.Style, bool) tcell.Style
}{
	{backend.AttrBold, tcell.AttrBold, tcell.Style.Bold},
	{backend.AttrItalic, tcell.AttrItalic, tcell.Style.Italic},
	{backend.AttrUnderline, tcell.AttrUnderline, func(s tcell.Style, on bool) tcell.Style { return s.Underline(on) }},
	{backend.AttrDim, tcell.AttrDim, tcell.Style.Dim},
	{backend.AttrBlink, tcell.AttrBlink, tcell.Style.Blink},
	{backend.AttrReverse, tcell.AttrReverse, tcell.Style.Reverse},
	{backend.AttrStrikeThrough, tcell.AttrStrikeThrough, tcell.Style.StrikeThrough},
}

func toStyle(s backend.Style) tcell.Style {
	fg, bg, mask := s.Decompose()
	style := tcell.StyleDefault.Foreground(toColor(fg)).Background(toColor(bg))
	for _, a := range attrs {
		if mask&a.mask != 0 {
			style = a.apply(style, true)
		}
	}
	return style
}

// FromStyle converts a tcell style back, for reading cells off a screen.
func FromStyle(ts tcell.Style) backend.Style {
	fg, bg, tmask := ts.Decompose()
	style := backend.DefaultStyle().Foreground(fromColor(fg)).Background(fromColor(bg))
	for _, a := range attrs {
		if tmask&a.tmask != 0 {
			style = style.With(a.mask, true)
		}
	}
	return style
}

func fromColor(tc tcell.Color) backend.Color {
	switch {
	case tc == tcell.ColorDefault:
		return backend.ColorDefault
	case tc&tcell.ColorIsRGB != 0:
		r, g, b := tc.RGB()
		return backend.ColorRGB(uint8(r), uint8(g), uint8(b))
	}
	return backend.Color(tc & 0xFF)
}

func toColor(c backend.Color) tcell.Color {
	switch {
	case c == backend.ColorDefault:
		return tcell.ColorDefault
	case c.IsRGB():
		r, g, b := c.RGB()
		return tcell.NewRGBColor(int32(r), int32(g), int32(b))
	}
	return tcell.PaletteColor(int(c))
}

// keys maps tcell keys to runtime keys. Order matters for the reverse
// direction: the first tcell key listed for a runtime key wins.
var keys = []struct {
	tk tcell.Key
	k  terminal.Key
}{
	{tcell.KeyUp, terminal.KeyUp},
	{tcell.KeyDown, terminal.KeyDown},
	{tcell.KeyLeft, terminal.KeyLeft},
	{tcell.KeyRight, terminal.KeyRight},
	{tcell.KeyPgUp, terminal.KeyPageUp},
	{tcell.KeyPgDn, terminal.KeyPageDown},
	{tcell.KeyHome, terminal.KeyHome},
	{tcell.KeyEnd, terminal.KeyEnd},
	{tcell.KeyInsert, terminal.KeyInsert},
	{tcell.KeyDelete, terminal.KeyDelete},
	{tcell.KeyBackspace2, terminal.KeyBackspace},
	{tcell.KeyBackspace, terminal.KeyBackspace},
	{tcell.KeyTab, terminal.KeyTab},
	{tcell.KeyBacktab, terminal.KeyBacktab},
	{tcell.KeyEnter, terminal.KeyEnter},
	{tcell.KeyEscape, terminal.KeyEscape},
	{tcell.KeyF1, terminal.KeyF1},
	{tcell.KeyF2, terminal.KeyF2},
	{tcell.KeyF3, terminal.KeyF3},
	{tcell.KeyF4, terminal.KeyF4},
	{tcell.KeyF5, terminal.KeyF5},
	{tcell.KeyF6, terminal.KeyF6},
	{tcell.KeyF7, terminal.KeyF7},
	{tcell.KeyF8, terminal.KeyF8},
	{tcell.KeyF9, terminal.KeyF9},
	{tcell.KeyF10, terminal.KeyF10},
	{tcell.KeyF11, terminal.KeyF11},
	{tcell.KeyF12, terminal.KeyF12},
}

var (
	fromTcell = map[tcell.Key]terminal.Key{}
	toTcell   = map[terminal.Key]tcell.Key{}
)

func init() {
	for _, e := range keys {
		fromTcell[e.tk] = e.k
		if _, ok := toTcell[e.k]; !ok {
			toTcell[e.k] = e.tk
		}
	}
}

var mods = []struct {
	tm tcell.ModMask
	m  terminal.Modifier
}{
	{tcell.ModShift, terminal.ModShift},
	{tcell.ModCtrl, terminal.ModCtrl},
	{tcell.ModAlt, terminal.ModAlt},
	{tcell.ModMeta, terminal.ModAlt},
}

func fromMods(tm tcell.ModMask) terminal.Modifier {
	var out terminal.Modifier
	for _, e := range mods {
		if tm&e.tm != 0 {
			out |= e.m
		}
	}
	return out
}

func toMods(m terminal.Modifier) tcell.ModMask {
	var out tcell.ModMask
	for _, e := range mods[:3] {
		if m.Has(e.m) {
			out |= e.tm
		}
	}
	return out
}

// fromKey folds tcell's dedicated ctrl+letter keys into rune chords.
// Backspace, tab, enter and escape share codes with ctrl+h/i/m/[ and are
// looked up first.
func fromKey(e *tcell.EventKey) terminal.KeyEvent {
	m := fromMods(e.Modifiers())
	k := e.Key()
	if k == tcell.KeyRune {
		return terminal.KeyEvent{Key: terminal.KeyRune, Rune: e.Rune(), Mods: m}
	}
	if key, ok := fromTcell[k]; ok {
		return terminal.KeyEvent{Key: key, Mods: m}
	}
	if k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ {
		return terminal.KeyEvent{Key: terminal.KeyRune, Rune: rune('a' + int(k-tcell.KeyCtrlA)), Mods: m | terminal.ModCtrl}
	}
	return terminal.KeyEvent{Key: terminal.KeyNone, Mods: m}
}

var buttons = []struct {
	mask tcell.ButtonMask
	b    terminal.MouseButton
}{
	{tcell.WheelUp, terminal.MouseWheelUp},
	{tcell.WheelDown, terminal.MouseWheelDown},
	{tcell.Button1, terminal.MouseLeft},
	{tcell.Button2, terminal.MouseMiddle},
	{tcell.Button3, terminal.MouseRight},
}

func fromButtons(mask tcell.ButtonMask) terminal.MouseButton {
	for _, e := range buttons {
		if mask&e.mask != 0 {
			return e.b
		}
	}
	return terminal.MouseNone
}

func toButtons(b terminal.MouseButton) tcell.ButtonMask {
	for _, e := range buttons {
		if e.b == b {
			return e.mask
		}
	}
	return tcell.ButtonNone
}

func toEvent(ev terminal.Event) tcell.Event {
	switch e := ev.(type) {
	case terminal.ResizeEvent:
		return tcell.NewEventResize(e.Width, e.Height)
	case terminal.KeyEvent:
		if e.Key == terminal.KeyRune {
			if e.Mods.Has(terminal.ModCtrl) && e.Rune >= 'a' && e.Rune <= 'z' {
				return tcell.NewEventKey(tcell.KeyCtrlA+tcell.Key(e.Rune-'a'), 0, toMods(e.Mods))
			}
			return tcell.NewEventKey(tcell.KeyRune, e.Rune, toMods(e.Mods))
		}
		k, ok := toTcell[e.Key]
		if !ok {
			return nil
		}
		return tcell.NewEventKey(k, 0, toMods(e.Mods))
	case terminal.MouseEvent:
		btn := tcell.ButtonNone
		if e.Action == terminal.MousePress {
			btn = toButtons(e.Button)
		}
		return tcell.NewEventMouse(e.X, e.Y, btn, toMods(e.Mods))
	}
	return nil
}

var _ backend.Backend = (*Backend)(nil)
