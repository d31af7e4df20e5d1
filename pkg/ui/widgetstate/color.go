package widgetstate

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/odvcencio/lattice/pkg/ui/backend"
	"github.com/odvcencio/lattice/pkg/ui/element"
)

// Color holds a picker's value in HSL so repeated adjustments do not drift
// through RGB rounding.
type Color struct {
	H, S, L float64
	Channel element.Channel
}

// NewColor returns picker state for the given hue (degrees), saturation
// and lightness.
func NewColor(h, s, l float64) *Color {
	c := &Color{}
	c.setHSL(h, s, l)
	return c
}

// FromBackend returns picker state matching c.
func FromBackend(c backend.Color) *Color {
	h, s, l := c.Colorful().Hsl()
	return NewColor(h, s, l)
}

func (c *Color) setHSL(h, s, l float64) {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	c.H = h
	c.S = min(max(s, 0), 1)
	c.L = min(max(l, 0), 1)
}

// Colorful returns the current value.
func (c *Color) Colorful() colorful.Color {
	return colorful.Hsl(c.H, c.S, c.L).Clamped()
}

// Backend returns the current value as a true color.
func (c *Color) Backend() backend.Color {
	return backend.FromColorful(c.Colorful())
}

// Hex returns the current value as #rrggbb.
func (c *Color) Hex() string {
	return c.Colorful().Hex()
}

// Adjust moves the active channel by steps. Hue wraps; saturation and
// lightness clamp.
func (c *Color) Adjust(steps int) {
	switch c.Channel {
	case element.ChannelHue:
		c.setHSL(c.H+float64(steps)*5, c.S, c.L)
	case element.ChannelSaturation:
		c.setHSL(c.H, c.S+float64(steps)*0.05, c.L)
	case element.ChannelLightness:
		c.setHSL(c.H, c.S, c.L+float64(steps)*0.05)
	}
}

func (c *Color) handle(ev element.WidgetEvent) Result {
	if ev.Action != element.WidgetNav {
		return Unhandled()
	}
	before := c.Hex()
	switch ev.Nav {
	case element.NavUp:
		c.Channel = element.Channel((int(c.Channel) + 2) % 3)
		return Handled()
	case element.NavDown:
		c.Channel = element.Channel((int(c.Channel) + 1) % 3)
		return Handled()
	case element.NavLeft:
		c.Adjust(-1)
	case element.NavRight:
		c.Adjust(1)
	case element.NavPageUp:
		c.Adjust(6)
	case element.NavPageDown:
		c.Adjust(-6)
	case element.NavSelect:
		return Changed(element.WidgetChange{Value: before, Submitted: true})
	default:
		return Unhandled()
	}
	if c.Hex() == before {
		return Handled()
	}
	return Changed(element.WidgetChange{Value: c.Hex()})
}
