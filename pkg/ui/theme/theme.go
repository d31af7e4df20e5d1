// Package theme provides the palette painters draw with.
// Elements name a Role; the active Theme maps roles to concrete styles.
package theme

import (
	"github.com/muesli/termenv"

	"github.com/odvcencio/lattice/pkg/ui/backend"
)

// Role is a semantic style slot.
type Role int

const (
	RoleNormal Role = iota
	RoleMuted
	RoleAccent
	RoleTitle
	RoleSuccess
	RoleWarning
	RoleError
	RoleInfo
	RoleBorder
	RoleBorderFocus
	RoleSelection
	RoleFocus
	RoleDisabled
	RoleHeader
	RolePlaceholder
	RoleProgressFill
	RoleProgressEmpty
	RoleDropdown
	RoleScrollbar
)

// Theme defines the complete visual language for the UI.
type Theme struct {
	Name string

	Background backend.Style
	Surface    backend.Style // modal boxes and dropdowns

	TextPrimary backend.Style
	TextMuted   backend.Style
	Placeholder backend.Style
	Disabled    backend.Style

	Accent backend.Style
	Title  backend.Style
	Header backend.Style

	Success backend.Style
	Warning backend.Style
	Error   backend.Style
	Info    backend.Style

	Border      backend.Style
	BorderFocus backend.Style
	Selection   backend.Style
	Focus       backend.Style

	ProgressFill  backend.Style
	ProgressEmpty backend.Style
	Scrollbar     backend.Style
}

// Style resolves a role to a concrete style.
func (t *Theme) Style(r Role) backend.Style {
	switch r {
	case RoleMuted:
		return t.TextMuted
	case RoleAccent:
		return t.Accent
	case RoleTitle:
		return t.Title
	case RoleSuccess:
		return t.Success
	case RoleWarning:
		return t.Warning
	case RoleError:
		return t.Error
	case RoleInfo:
		return t.Info
	case RoleBorder:
		return t.Border
	case RoleBorderFocus:
		return t.BorderFocus
	case RoleSelection:
		return t.Selection
	case RoleFocus:
		return t.Focus
	case RoleDisabled:
		return t.Disabled
	case RoleHeader:
		return t.Header
	case RolePlaceholder:
		return t.Placeholder
	case RoleProgressFill:
		return t.ProgressFill
	case RoleProgressEmpty:
		return t.ProgressEmpty
	case RoleDropdown:
		return t.Surface
	case RoleScrollbar:
		return t.Scrollbar
	default:
		return t.TextPrimary
	}
}

// Dark returns the true-color dark theme.
func Dark() *Theme {
	base := backend.DefaultStyle()
	return &Theme{
		Name:       "dark",
		Background: base,
		Surface:    base.Background(backend.ColorRGB(32, 32, 40)).Foreground(backend.ColorRGB(240, 238, 232)),

		TextPrimary: base.Foreground(backend.ColorRGB(240, 238, 232)),
		TextMuted:   base.Foreground(backend.ColorRGB(130, 128, 120)),
		Placeholder: base.Foreground(backend.ColorRGB(100, 98, 92)).Italic(true),
		Disabled:    base.Foreground(backend.ColorRGB(80, 80, 80)),

		Accent: base.Foreground(backend.ColorRGB(255, 183, 77)),
		Title:  base.Foreground(backend.ColorRGB(255, 200, 100)).Bold(true),
		Header: base.Background(backend.ColorRGB(22, 22, 28)).Foreground(backend.ColorRGB(240, 238, 232)),

		Success: base.Foreground(backend.ColorRGB(134, 239, 172)),
		Warning: base.Foreground(backend.ColorRGB(255, 138, 101)),
		Error:   base.Foreground(backend.ColorRGB(255, 110, 90)).Bold(true),
		Info:    base.Foreground(backend.ColorRGB(77, 182, 172)),

		Border:      base.Foreground(backend.ColorRGB(70, 70, 84)),
		BorderFocus: base.Foreground(backend.ColorRGB(255, 183, 77)),
		Selection:   base.Background(backend.ColorRGB(60, 60, 80)).Foreground(backend.ColorRGB(255, 255, 255)),
		Focus:       base.Background(backend.ColorRGB(255, 183, 77)).Foreground(backend.ColorRGB(12, 12, 16)),

		ProgressFill:  base.Foreground(backend.ColorRGB(79, 195, 247)),
		ProgressEmpty: base.Foreground(backend.ColorRGB(50, 50, 60)),
		Scrollbar:     base.Foreground(backend.ColorRGB(100, 100, 110)),
	}
}

// ANSI returns a theme restricted to the 16 base colors.
func ANSI() *Theme {
	base := backend.DefaultStyle()
	return &Theme{
		Name:       "ansi",
		Background: base,
		Surface:    base.Background(backend.ColorBlack).Foreground(backend.ColorWhite),

		TextPrimary: base,
		TextMuted:   base.Foreground(backend.ColorBrightBlack),
		Placeholder: base.Foreground(backend.ColorBrightBlack).Italic(true),
		Disabled:    base.Foreground(backend.ColorBrightBlack),

		Accent: base.Foreground(backend.ColorYellow),
		Title:  base.Foreground(backend.ColorBrightYellow).Bold(true),
		Header: base.Reverse(true),

		Success: base.Foreground(backend.ColorGreen),
		Warning: base.Foreground(backend.ColorYellow),
		Error:   base.Foreground(backend.ColorRed).Bold(true),
		Info:    base.Foreground(backend.ColorCyan),

		Border:      base.Foreground(backend.ColorBrightBlack),
		BorderFocus: base.Foreground(backend.ColorYellow),
		Selection:   base.Reverse(true),
		Focus:       base.Background(backend.ColorYellow).Foreground(backend.ColorBlack),

		ProgressFill:  base.Foreground(backend.ColorCyan),
		ProgressEmpty: base.Foreground(backend.ColorBrightBlack),
		Scrollbar:     base.Foreground(backend.ColorBrightBlack),
	}
}

// Mono returns an attribute-only theme for terminals without color.
func Mono() *Theme {
	base := backend.DefaultStyle()
	return &Theme{
		Name:       "mono",
		Background: base,
		Surface:    base,

		TextPrimary: base,
		TextMuted:   base.Dim(true),
		Placeholder: base.Dim(true),
		Disabled:    base.Dim(true),

		Accent: base.Bold(true),
		Title:  base.Bold(true).Underline(true),
		Header: base.Reverse(true),

		Success: base,
		Warning: base.Bold(true),
		Error:   base.Bold(true),
		Info:    base,

		Border:      base,
		BorderFocus: base.Bold(true),
		Selection:   base.Reverse(true),
		Focus:       base.Reverse(true).Bold(true),

		ProgressFill:  base,
		ProgressEmpty: base.Dim(true),
		Scrollbar:     base.Dim(true),
	}
}

// ForProfile picks the richest theme the color profile can display.
func ForProfile(p termenv.Profile) *Theme {
	switch p {
	case termenv.TrueColor, termenv.ANSI256:
		return Dark()
	case termenv.ANSI:
		return ANSI()
	default:
		return Mono()
	}
}

// Detect inspects the environment (NO_COLOR, TERM, COLORTERM) and returns a
// matching theme.
func Detect() *Theme {
	return ForProfile(termenv.EnvColorProfile())
}

// Named resolves a configured theme name. "auto" and unknown names detect.
func Named(name string) *Theme {
	switch name {
	case "dark":
		return Dark()
	case "ansi":
		return ANSI()
	case "mono":
		return Mono()
	default:
		return Detect()
	}
}

// Symbols provides consistent iconography.
var Symbols = struct {
	Arrow        string
	Check        string
	Cross        string
	Dot          string
	Expanded     string
	Collapsed    string
	Leaf         string
	Folder       string
	File         string
	Marked       string
	Unmarked     string
	DropdownOpen string
	DropdownShut string
	ProgressFill string
	ProgressPart string
	ProgressRest string
	ScrollThumb  string
	ScrollTrack  string
	Spinner      []string

	BorderTopLeft     string
	BorderTopRight    string
	BorderBottomLeft  string
	BorderBottomRight string
	BorderHorizontal  string
	BorderVertical    string
}{
	Arrow:        "›",
	Check:        "✓",
	Cross:        "✗",
	Dot:          "·",
	Expanded:     "▾",
	Collapsed:    "▸",
	Leaf:         " ",
	Folder:       "▸",
	File:         "·",
	Marked:       "●",
	Unmarked:     "○",
	DropdownOpen: "▴",
	DropdownShut: "▾",
	ProgressFill: "█",
	ProgressPart: "▌",
	ProgressRest: "░",
	ScrollThumb:  "█",
	ScrollTrack:  "│",
	Spinner:      []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},

	BorderTopLeft:     "╭",
	BorderTopRight:    "╮",
	BorderBottomLeft:  "╰",
	BorderBottomRight: "╯",
	BorderHorizontal:  "─",
	BorderVertical:    "│",
}
