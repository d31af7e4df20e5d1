package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odvcencio/lattice/pkg/ui/backend/sim"
	"github.com/odvcencio/lattice/pkg/ui/element"
	"github.com/odvcencio/lattice/pkg/ui/layout"
)

type msg string

func click(t *testing.T, r *Renderer[msg], x, y int) (element.Outcome[msg], bool) {
	t.Helper()
	target, ok := r.Interaction.ClickAt(x, y)
	if !ok {
		return element.Outcome[msg]{}, false
	}
	return target.Click(), true
}

func TestRenderer_TopLayerIsolation(t *testing.T) {
	buf := NewBuffer(40, 12)
	r := NewRenderer[msg](nil)

	base := element.Column[msg](element.NewButton[msg]("a", "Base", "a"))
	modal := element.NewButton[msg]("b", "Modal", "b")

	r.Render(buf, []element.Layer[msg]{element.Fill[msg](base)}, "")
	_, ok := click(t, r, 1, 1)
	require.True(t, ok, "base button should be clickable without a modal")

	r.Render(buf, []element.Layer[msg]{
		element.Fill[msg](base),
		element.Modal[msg](modal, 10, 3),
	}, "")

	_, ok = click(t, r, 1, 1)
	assert.False(t, ok, "lower layer must not receive clicks")
	assert.Equal(t, 1, r.Focus.Len())
	assert.True(t, r.Focus.Contains("b"))
	assert.False(t, r.Focus.Contains("a"))

	out, ok := click(t, r, 20, 5)
	require.True(t, ok)
	assert.True(t, out.HasMsg)
	assert.Equal(t, msg("b"), out.Msg)

	// The base stays visible under the modal.
	assert.Contains(t, buf.Text(), "Base")
	assert.Contains(t, buf.Text(), "Modal")
}

// fakeSurface records which layers were registered.
type fakeSurface struct {
	name       string
	layers     int
	registered []int
	cleared    int
}

func (s *fakeSurface) LayerCount() int { return s.layers }
func (s *fakeSurface) LayerBox(i int, screen layout.Rect) (layout.Rect, bool) {
	return screen.Row(i), false
}
func (s *fakeSurface) PaintLayer(buf *Buffer, i int, box layout.Rect) {
	buf.SetString(box.X, box.Y, s.name, buf.Get(0, 0).Style)
}
func (s *fakeSurface) ClearRegistries(int, int) { s.cleared++ }
func (s *fakeSurface) RegisterLayer(_ *Buffer, i int, _ layout.Rect) {
	s.registered = append(s.registered, i)
}
func (s *fakeSurface) PaintDropdowns(*Buffer, layout.Rect) {}

func TestCompose_Priority(t *testing.T) {
	tests := []struct {
		name   string
		kinds  []LayerKind
		header bool
		want   int
	}{
		{"content only", []LayerKind{AppContent}, false, 0},
		{"app modal wins", []LayerKind{AppContent, AppModal}, false, 1},
		{"passive header skipped", []LayerKind{AppContent, GlobalUI}, false, 0},
		{"interactive header", []LayerKind{AppContent, GlobalUI}, true, 1},
		{"app modal beats header", []LayerKind{AppContent, AppModal, GlobalUI}, true, 1},
		{"global modal beats all", []LayerKind{AppContent, GlobalModal, AppModal, GlobalUI}, true, 1},
		{"last modal of a kind", []LayerKind{AppContent, AppModal, AppModal}, false, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := NewBuffer(20, 6)
			surfaces := make([]*fakeSurface, len(tt.kinds))
			sheets := make([]Sheet, len(tt.kinds))
			for i, k := range tt.kinds {
				surfaces[i] = &fakeSurface{name: k.String(), layers: 1}
				sheets[i] = Sheet{Surface: surfaces[i], Kind: k, Interactive: tt.header}
			}
			var c Composer
			got := c.Compose(buf, sheets)
			assert.Equal(t, tt.want, got)
			for i, s := range surfaces {
				assert.Equal(t, 1, s.cleared, "surface %d registries cleared once", i)
				if i == tt.want {
					assert.Equal(t, []int{0}, s.registered)
				} else {
					assert.Empty(t, s.registered)
				}
			}
		})
	}
}

func TestCompose_GlobalModalHidesGlobalUI(t *testing.T) {
	buf := NewBuffer(20, 3)
	content := &fakeSurface{name: "content", layers: 1}
	header := &fakeSurface{name: "header", layers: 1}
	modal := &fakeSurface{name: "modal", layers: 1}
	var c Composer
	c.Compose(buf, []Sheet{
		{Surface: content, Kind: AppContent},
		{Surface: header, Kind: GlobalUI, Interactive: true},
		{Surface: modal, Kind: GlobalModal},
	})
	text := buf.Text()
	assert.NotContains(t, text, "header")
	assert.Contains(t, text, "modal")
}

func TestRenderer_ManagedRowClickDispatchesPick(t *testing.T) {
	buf := NewBuffer(20, 5)
	r := NewRenderer[msg](nil)
	list := &element.List[msg]{Items: []element.ListItem{{Label: "one"}, {Label: "two"}}}
	list.Focus = "list"
	r.Render(buf, []element.Layer[msg]{element.Fill[msg](list)}, "")

	out, ok := click(t, r, 2, 1)
	require.True(t, ok)
	require.NotNil(t, out.Widget)
	assert.Equal(t, element.WidgetPick, out.Widget.Action)
	assert.Equal(t, 1, out.Widget.Index)
	assert.Equal(t, element.FocusID("list"), out.Widget.ID)
}

func TestRenderer_AppManagedRowClickEmits(t *testing.T) {
	buf := NewBuffer(20, 5)
	r := NewRenderer[msg](nil)
	list := &element.List[msg]{
		Items:      []element.ListItem{{Label: "one"}, {Label: "two"}},
		OnNavigate: func(n element.Nav) msg { return msg("nav:" + n.String()) },
		OnSelect:   func(i int) msg { return msg([]string{"one", "two"}[i]) },
	}
	list.Focus = "list"
	r.Render(buf, []element.Layer[msg]{element.Fill[msg](list)}, "list")

	out, ok := click(t, r, 2, 1)
	require.True(t, ok)
	assert.True(t, out.HasMsg)
	assert.Equal(t, msg("two"), out.Msg)
}

func TestRenderer_ViewportReportedOnce(t *testing.T) {
	buf := NewBuffer(30, 10)
	r := NewRenderer[msg](nil)
	list := &element.List[msg]{OnViewport: func(w, h int) msg { return "vp" }}
	list.Focus = "items"
	r.Render(buf, []element.Layer[msg]{element.Fill[msg](element.Boxed[msg]("Items", list))}, "")

	vps := r.Viewports()
	require.Len(t, vps, 1)
	assert.Equal(t, "items", vps[0].Key)
	assert.Equal(t, 28, vps[0].Width)
	assert.Equal(t, 8, vps[0].Height)
}

func TestRenderer_AutocompleteOpensFilteredDropdown(t *testing.T) {
	buf := NewBuffer(30, 12)
	r := NewRenderer[msg](nil)
	ac := &element.Autocomplete[msg]{
		Value:       "ap",
		Cursor:      2,
		Suggestions: []string{"banana", "grape", "apple"},
		Open:        true,
	}
	ac.Focus = "fruit"
	r.Render(buf, []element.Layer[msg]{element.Fill[msg](element.Column[msg](ac))}, "fruit")

	d, ok := r.Dropdowns.For("fruit")
	require.True(t, ok)
	require.NotEmpty(t, d.Options)
	assert.Equal(t, "apple", d.Options[0])
	assert.NotContains(t, d.Options, "banana")
	assert.Contains(t, buf.Text(), "apple")

	out := d.OnSelect(0)
	require.NotNil(t, out.Widget)
	assert.Equal(t, element.WidgetPick, out.Widget.Action)
	assert.Equal(t, "apple", out.Widget.Text)
}

func TestRenderer_InputPlaceholder(t *testing.T) {
	buf := NewBuffer(20, 1)
	r := NewRenderer[msg](nil)
	in := &element.Input[msg]{Placeholder: "search…"}
	in.Focus = "q"
	r.Render(buf, []element.Layer[msg]{element.Fill[msg](in)}, "")
	assert.True(t, strings.HasPrefix(buf.Text(), "search…"))

	r.Render(buf, []element.Layer[msg]{element.Fill[msg](in)}, "q")
	assert.NotContains(t, buf.Text(), "search")
}

func TestRenderer_GoldenPanel(t *testing.T) {
	screen := sim.New(20, 4)
	require.NoError(t, screen.Init())
	t.Cleanup(screen.Fini)

	buf := NewBuffer(20, 4)
	r := NewRenderer[msg](nil)
	r.Render(buf, []element.Layer[msg]{
		element.Fill[msg](element.Boxed[msg]("Title", element.Label[msg]("hello"))),
	}, "")
	buf.Flush(screen)

	want := strings.Join([]string{
		"╭─ Title ──────────╮",
		"│hello             │",
		"│                  │",
		"╰──────────────────╯",
	}, "\n")
	if diff, ok := screen.CompareGolden(want); !ok {
		t.Fatalf("frame mismatch:\n%s", diff)
	}
}
