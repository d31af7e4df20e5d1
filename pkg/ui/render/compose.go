package render

import (
	"github.com/odvcencio/lattice/pkg/ui/layout"
)

// LayerKind ranks a layer for input isolation.
type LayerKind int

const (
	AppContent LayerKind = iota
	AppModal
	GlobalUI
	GlobalModal
)

func (k LayerKind) String() string {
	switch k {
	case AppContent:
		return "app-content"
	case AppModal:
		return "app-modal"
	case GlobalUI:
		return "global-ui"
	case GlobalModal:
		return "global-modal"
	default:
		return "unknown"
	}
}

// priority orders layer kinds for the registration pass.
func (k LayerKind) priority() int {
	switch k {
	case GlobalModal:
		return 3
	case AppModal:
		return 2
	case GlobalUI:
		return 1
	default:
		return 0
	}
}

// Surface is one message domain's view of the frame. Each runtime and the
// orchestrator's own chrome are surfaces; Compose interleaves their layers
// without knowing their message types.
type Surface interface {
	// LayerCount is how many layers the surface contributes this frame.
	LayerCount() int
	// LayerBox places layer i on the screen and reports whether it dims
	// what is beneath it.
	LayerBox(i int, screen layout.Rect) (box layout.Rect, dim bool)
	// PaintLayer paints layer i into box without touching registries.
	PaintLayer(buf *Buffer, i int, box layout.Rect)
	// ClearRegistries empties the surface's registries and sizes them.
	ClearRegistries(width, height int)
	// RegisterLayer re-renders layer i into the registries. Cells written
	// during registration are discarded.
	RegisterLayer(scratch *Buffer, i int, box layout.Rect)
	// PaintDropdowns paints popups recorded in the registries.
	PaintDropdowns(buf *Buffer, screen layout.Rect)
}

// Sheet places one surface layer in the composed stack.
type Sheet struct {
	Surface Surface
	Index   int
	Kind    LayerKind
	// Interactive marks a GlobalUI sheet as eligible for input.
	Interactive bool
}

func (s Sheet) interactive() bool {
	return s.Kind != GlobalUI || s.Interactive
}

// Composer runs the two-pass layered render. It keeps a scratch buffer for
// the registration pass between frames.
type Composer struct {
	scratch *Buffer
}

// Compose paints sheets bottom to top, then clears every surface's
// registries and re-registers only the topmost interactive sheet. It returns
// the index of that sheet, or -1 if none is interactive.
func (c *Composer) Compose(buf *Buffer, sheets []Sheet) int {
	screen := buf.Bounds()
	globalModal := false
	for _, s := range sheets {
		if s.Kind == GlobalModal {
			globalModal = true
			break
		}
	}

	buf.Clear()
	for _, s := range sheets {
		if s.Kind == GlobalUI && globalModal {
			continue
		}
		box, dim := s.Surface.LayerBox(s.Index, screen)
		if dim {
			buf.Dim(screen)
		}
		if s.Kind == AppModal || s.Kind == GlobalModal {
			buf.ClearRect(box)
		}
		s.Surface.PaintLayer(buf, s.Index, box)
	}

	seen := make(map[Surface]bool, len(sheets))
	for _, s := range sheets {
		if !seen[s.Surface] {
			seen[s.Surface] = true
			s.Surface.ClearRegistries(screen.Width, screen.Height)
		}
	}

	top := topInteractive(sheets, globalModal)
	if top < 0 {
		return -1
	}
	if c.scratch == nil {
		c.scratch = NewBuffer(screen.Width, screen.Height)
	}
	c.scratch.Resize(screen.Width, screen.Height)
	s := sheets[top]
	box, _ := s.Surface.LayerBox(s.Index, screen)
	s.Surface.RegisterLayer(c.scratch, s.Index, box)
	s.Surface.PaintDropdowns(buf, screen)
	return top
}

// topInteractive picks the sheet that receives input: the highest priority
// kind wins, and within a kind the last sheet wins.
func topInteractive(sheets []Sheet, globalModal bool) int {
	best, bestPri := -1, -1
	for i, s := range sheets {
		if !s.interactive() {
			continue
		}
		if s.Kind == GlobalUI && globalModal {
			continue
		}
		if p := s.Kind.priority(); p >= bestPri {
			best, bestPri = i, p
		}
	}
	return best
}
