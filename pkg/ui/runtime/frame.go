package runtime

import (
	"github.com/odvcencio/lattice/pkg/logging"
	"github.com/odvcencio/lattice/pkg/ui/element"
	"github.com/odvcencio/lattice/pkg/ui/render"
	"github.com/odvcencio/lattice/pkg/ui/widgetstate"
)

// Frame rebuilds the view from the current state and returns the sheets to
// compose. The first sheet is app content and the rest are app modals.
func (r *Runtime[S, Msg]) Frame() []render.Sheet {
	layers := r.app.View(r.state)
	r.renderer.SetFrame(layers, r.focused)
	return r.renderer.Sheets()
}

// Render paints the application alone onto buf and reconciles afterwards.
func (r *Runtime[S, Msg]) Render(buf *render.Buffer) {
	sheets := r.Frame()
	top := r.composer.Compose(buf, sheets)
	r.Reconcile(top >= 0)
}

// Reconcile runs after a frame is composed. Viewport sizes that changed are
// reported, and when the runtime owned the registration pass, a focused id
// that vanished is dropped and replaced from the layer's history.
func (r *Runtime[S, Msg]) Reconcile(interactive bool) {
	r.reportViewports()
	if interactive {
		r.reconcileFocus()
	}
}

func (r *Runtime[S, Msg]) reportViewports() {
	resizer, _ := any(r.state).(widgetstate.Resizer)
	for _, v := range r.renderer.Viewports() {
		size := [2]int{v.Width, v.Height}
		if last, ok := r.viewports[v.Key]; ok && last == size {
			continue
		}
		r.viewports[v.Key] = size
		if resizer != nil {
			resizer.WidgetResized(element.FocusID(v.Key), v.Width, v.Height)
			r.dirty = true
		}
		if v.Report != nil {
			r.apply(v.Report(v.Width, v.Height))
		}
	}
}

func (r *Runtime[S, Msg]) reconcileFocus() {
	focus := r.renderer.Focus
	if r.focused != "" {
		if focus.Contains(r.focused) {
			return
		}
		r.log.Debug(logging.CategoryFocus, "dangling", "focused element vanished", map[string]any{"id": string(r.focused)})
		r.focused = ""
		r.restoring = true
		r.dirty = true
	}
	if !r.restoring {
		return
	}
	h := r.history[focus.Depth()]
	for i := len(h) - 1; i >= 0; i-- {
		if focus.Contains(h[i]) {
			r.setFocus(h[i])
			return
		}
	}
}
