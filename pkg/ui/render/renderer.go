package render

import (
	"strconv"

	"github.com/odvcencio/lattice/pkg/ui/backend"
	"github.com/odvcencio/lattice/pkg/ui/element"
	"github.com/odvcencio/lattice/pkg/ui/layout"
	"github.com/odvcencio/lattice/pkg/ui/registry"
	"github.com/odvcencio/lattice/pkg/ui/theme"
)

// Viewport is a size report requested by an OnViewport binding.
type Viewport[Msg any] struct {
	// Key identifies the reporting node across frames: its focus id, or
	// its paint order when it has none.
	Key           string
	Width, Height int
	// Report is nil when the node only carries a focus id.
	Report func(width, height int) Msg
}

// Renderer paints one message domain's layers and owns its registries.
// It implements Surface.
type Renderer[Msg any] struct {
	Theme       *theme.Theme
	Focus       *registry.Focus[Msg]
	Interaction *registry.Interaction[Msg]
	Dropdowns   *registry.Dropdowns[Msg]

	layers    []element.Layer[Msg]
	focused   element.FocusID
	viewports []Viewport[Msg]
	composer  Composer
}

// NewRenderer creates a renderer with empty registries.
func NewRenderer[Msg any](th *theme.Theme) *Renderer[Msg] {
	if th == nil {
		th = theme.Dark()
	}
	return &Renderer[Msg]{
		Theme:       th,
		Focus:       registry.NewFocus[Msg](),
		Interaction: registry.NewInteraction[Msg](0, 0),
		Dropdowns:   registry.NewDropdowns[Msg](),
	}
}

// SetFrame installs the layers to paint this frame and the focus id used
// for highlighting.
func (r *Renderer[Msg]) SetFrame(layers []element.Layer[Msg], focused element.FocusID) {
	r.layers = layers
	r.focused = focused
	r.viewports = r.viewports[:0]
}

// Viewports returns the size reports collected by the last visual pass.
func (r *Renderer[Msg]) Viewports() []Viewport[Msg] {
	return r.viewports
}

// Sheets describes the installed layers for Compose: the first is app
// content and every later layer is an app modal.
func (r *Renderer[Msg]) Sheets() []Sheet {
	sheets := make([]Sheet, len(r.layers))
	for i := range r.layers {
		kind := AppModal
		if i == 0 {
			kind = AppContent
		}
		sheets[i] = Sheet{Surface: r, Index: i, Kind: kind}
	}
	return sheets
}

// Render paints layers onto buf with full input isolation. It is the
// single-surface form of Compose.
func (r *Renderer[Msg]) Render(buf *Buffer, layers []element.Layer[Msg], focused element.FocusID) {
	r.SetFrame(layers, focused)
	r.composer.Compose(buf, r.Sheets())
}

// LayerCount implements Surface.
func (r *Renderer[Msg]) LayerCount() int {
	return len(r.layers)
}

// LayerBox implements Surface.
func (r *Renderer[Msg]) LayerBox(i int, screen layout.Rect) (layout.Rect, bool) {
	if i < 0 || i >= len(r.layers) {
		return layout.ZeroRect, false
	}
	l := r.layers[i]
	return layout.Align(screen, l.Align, l.Width, l.Height), l.Dim
}

// PaintLayer implements Surface. Popups opened by the layer are painted
// right after it so higher layers cover them.
func (r *Renderer[Msg]) PaintLayer(buf *Buffer, i int, box layout.Rect) {
	if i < 0 || i >= len(r.layers) {
		return
	}
	f := &frame[Msg]{r: r, buf: buf, layer: i, drops: registry.NewDropdowns[Msg]()}
	f.paint(r.layers[i].Content, box)
	f.paintDropdowns(f.drops, buf.Bounds())
}

// ClearRegistries implements Surface.
func (r *Renderer[Msg]) ClearRegistries(width, height int) {
	r.Focus.Clear()
	r.Interaction.Resize(width, height)
	r.Dropdowns.Clear()
}

// RegisterLayer implements Surface.
func (r *Renderer[Msg]) RegisterLayer(scratch *Buffer, i int, box layout.Rect) {
	if i < 0 || i >= len(r.layers) {
		return
	}
	r.Focus.PushLayer(i)
	f := &frame[Msg]{r: r, buf: scratch, layer: i, register: true, drops: r.Dropdowns}
	f.paint(r.layers[i].Content, box)
}

// PaintDropdowns implements Surface.
func (r *Renderer[Msg]) PaintDropdowns(buf *Buffer, screen layout.Rect) {
	f := &frame[Msg]{r: r, buf: buf}
	f.paintDropdowns(r.Dropdowns, screen)
}

// frame is one traversal of a layer, either visual or registering.
type frame[Msg any] struct {
	r        *Renderer[Msg]
	buf      *Buffer
	layer    int
	register bool
	drops    *registry.Dropdowns[Msg]
	anon     int
}

func (f *frame[Msg]) style(role theme.Role) backend.Style {
	return f.r.Theme.Style(role)
}

func (f *frame[Msg]) focused(id element.FocusID) bool {
	return id != "" && id == f.r.focused
}

// visible clips a rect to the current clip.
func (f *frame[Msg]) visible(rect layout.Rect) (layout.Rect, bool) {
	v := rect.Intersection(f.buf.Clip())
	return v, !v.Empty()
}

func (f *frame[Msg]) addFocus(e registry.FocusEntry[Msg]) {
	if !f.register || e.ID == "" {
		return
	}
	rect, ok := f.visible(e.Rect)
	if !ok {
		return
	}
	e.Rect = rect
	f.r.Focus.Register(e)
}

func (f *frame[Msg]) addClick(rect layout.Rect, click func() element.Outcome[Msg]) {
	if !f.register || click == nil {
		return
	}
	if v, ok := f.visible(rect); ok {
		f.r.Interaction.AddClick(v, click)
	}
}

func (f *frame[Msg]) addScroll(rect layout.Rect, scroll func(int) element.Outcome[Msg]) {
	if !f.register || scroll == nil {
		return
	}
	if v, ok := f.visible(rect); ok {
		f.r.Interaction.AddScroll(v, scroll)
	}
}

func (f *frame[Msg]) addHover(rect layout.Rect, b *element.Bindings[Msg]) {
	if !f.register || (b.OnHover == nil && b.OnHoverExit == nil) {
		return
	}
	if v, ok := f.visible(rect); ok {
		f.r.Interaction.AddHover(v, b.OnHover, b.OnHoverExit)
	}
}

func (f *frame[Msg]) openDropdown(d registry.Dropdown[Msg]) {
	if f.drops != nil {
		f.drops.Open(d)
	}
}

// reportViewport records the size of a scrolling node during the visual
// pass. Focusable nodes are recorded even without an OnViewport binding so
// self-managed state can learn its page size.
func (f *frame[Msg]) reportViewport(id element.FocusID, area layout.Rect, report func(int, int) Msg) {
	if f.register || (report == nil && id == "") {
		return
	}
	key := string(id)
	if key == "" {
		key = strconv.Itoa(f.layer) + "#" + strconv.Itoa(f.anon)
		f.anon++
	}
	f.r.viewports = append(f.r.viewports, Viewport[Msg]{
		Key: key, Width: area.Width, Height: area.Height, Report: report,
	})
}
