package backend

import "github.com/lucasb-eyer/go-colorful"

// Color is a terminal color. Values 0-255 index the palette; true colors
// carry a marker bit above the packed RGB channels.
type Color int32

const (
	ColorDefault Color = -1
	ColorBlack   Color = 0
	ColorRed     Color = 1
	ColorGreen   Color = 2
	ColorYellow  Color = 3
	ColorBlue    Color = 4
	ColorMagenta Color = 5
	ColorCyan    Color = 6
	ColorWhite   Color = 7

	ColorBrightBlack   Color = 8
	ColorBrightRed     Color = 9
	ColorBrightGreen   Color = 10
	ColorBrightYellow  Color = 11
	ColorBrightBlue    Color = 12
	ColorBrightMagenta Color = 13
	ColorBrightCyan    Color = 14
	ColorBrightWhite   Color = 15
)

const rgbFlag = 0x01000000

// ColorRGB creates a true color from RGB components.
func ColorRGB(r, g, b uint8) Color {
	return Color(int32(r)<<16 | int32(g)<<8 | int32(b) | rgbFlag)
}

// FromColorful converts c, clamped to gamut, to a true color.
func FromColorful(c colorful.Color) Color {
	r, g, b := c.Clamped().RGB255()
	return ColorRGB(r, g, b)
}

// IsRGB reports whether c is a true color.
func (c Color) IsRGB() bool {
	return c&rgbFlag != 0
}

// RGB returns the channels of a true color, or zeros for palette colors.
func (c Color) RGB() (r, g, b uint8) {
	if !c.IsRGB() {
		return 0, 0, 0
	}
	return uint8((c >> 16) & 0xFF), uint8((c >> 8) & 0xFF), uint8(c & 0xFF)
}

// Colorful returns c for color math. Palette colors map to black.
func (c Color) Colorful() colorful.Color {
	r, g, b := c.RGB()
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}

// Hex formats a true color as #rrggbb and returns "" for palette colors.
func (c Color) Hex() string {
	if !c.IsRGB() {
		return ""
	}
	return c.Colorful().Hex()
}

// AttrMask is a set of text attributes.
type AttrMask uint32

const (
	AttrBold AttrMask = 1 << iota
	AttrBlink
	AttrReverse
	AttrUnderline
	AttrDim
	AttrItalic
	AttrStrikeThrough
)

// Style combines foreground, background colors and attributes. The zero
// value paints black on black; start from DefaultStyle.
type Style struct {
	fg    Color
	bg    Color
	attrs AttrMask
}

// DefaultStyle returns default colors with no attributes.
func DefaultStyle() Style {
	return Style{fg: ColorDefault, bg: ColorDefault}
}

func (s Style) Foreground(c Color) Style {
	s.fg = c
	return s
}

func (s Style) Background(c Color) Style {
	s.bg = c
	return s
}

// With sets or clears the attributes in mask.
func (s Style) With(mask AttrMask, on bool) Style {
	if on {
		s.attrs |= mask
	} else {
		s.attrs &^= mask
	}
	return s
}

func (s Style) Bold(on bool) Style          { return s.With(AttrBold, on) }
func (s Style) Italic(on bool) Style        { return s.With(AttrItalic, on) }
func (s Style) Dim(on bool) Style           { return s.With(AttrDim, on) }
func (s Style) Underline(on bool) Style     { return s.With(AttrUnderline, on) }
func (s Style) Reverse(on bool) Style       { return s.With(AttrReverse, on) }
func (s Style) Blink(on bool) Style         { return s.With(AttrBlink, on) }
func (s Style) StrikeThrough(on bool) Style { return s.With(AttrStrikeThrough, on) }

func (s Style) Attributes() AttrMask { return s.attrs }
func (s Style) FG() Color            { return s.fg }
func (s Style) BG() Color            { return s.bg }

// Decompose returns the foreground, background, and attributes.
func (s Style) Decompose() (fg, bg Color, attrs AttrMask) {
	return s.fg, s.bg, s.attrs
}

// Dimmed is the style of content underneath a dimming modal: the dim
// attribute is set and true colors are blended halfway to black.
func (s Style) Dimmed() Style {
	s.attrs |= AttrDim
	s.fg = dimColor(s.fg)
	s.bg = dimColor(s.bg)
	return s
}

func dimColor(c Color) Color {
	if !c.IsRGB() {
		return c
	}
	return FromColorful(c.Colorful().BlendRgb(colorful.Color{}, 0.5))
}
