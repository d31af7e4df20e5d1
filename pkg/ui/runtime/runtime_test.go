package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odvcencio/lattice/pkg/config"
	"github.com/odvcencio/lattice/pkg/ui/command"
	"github.com/odvcencio/lattice/pkg/ui/element"
	"github.com/odvcencio/lattice/pkg/ui/render"
	"github.com/odvcencio/lattice/pkg/ui/terminal"
	"github.com/odvcencio/lattice/pkg/ui/widgetstate"
)

type fakeState struct {
	widgetstate.Store
	got   []string
	modal bool
	param any
}

// fakeApp is an application assembled from optional hooks. Msg is a plain
// string so tests can assert on the update log.
type fakeApp struct {
	init   func(s *fakeState) command.Command[string]
	update func(s *fakeState, msg string) command.Command[string]
	view   func(s *fakeState) []element.Layer[string]
	subs   func(s *fakeState) []command.Subscription[string]
}

func (a *fakeApp) Init(params any) (*fakeState, command.Command[string]) {
	s := &fakeState{param: params}
	if a.init != nil {
		return s, a.init(s)
	}
	return s, nil
}

func (a *fakeApp) Update(s *fakeState, msg string) command.Command[string] {
	s.got = append(s.got, msg)
	if a.update != nil {
		return a.update(s, msg)
	}
	return nil
}

func (a *fakeApp) View(s *fakeState) []element.Layer[string] {
	if a.view != nil {
		return a.view(s)
	}
	return []element.Layer[string]{element.Fill[string](element.Label[string]("empty"))}
}

func (a *fakeApp) Subscriptions(s *fakeState) []command.Subscription[string] {
	if a.subs != nil {
		return a.subs(s)
	}
	return nil
}

func (a *fakeApp) Title() string { return "fake" }

func button(id, label string) *element.Button[string] {
	b := element.NewButton[string](element.FocusID(id), label, "press-"+id)
	b.OnBlur = element.Send("blur-" + id)
	return b
}

// twoButtons stacks buttons a (rows 0-2) and b (rows 3-5), with an optional
// modal holding button m.
func twoButtons(s *fakeState) []element.Layer[string] {
	layers := []element.Layer[string]{
		element.Fill[string](element.Column[string](button("a", "A"), button("b", "B"), element.Spacer[string]())),
	}
	if s.modal {
		layers = append(layers, element.Modal[string](button("m", "M"), 10, 3))
	}
	return layers
}

func newRuntime(t *testing.T, app *fakeApp, opts Options) (*Runtime[*fakeState, string], *render.Buffer) {
	t.Helper()
	if opts.ID == "" {
		opts.ID = "fake"
	}
	r := New[*fakeState, string](app, nil, opts)
	t.Cleanup(r.Destroy)
	buf := render.NewBuffer(20, 10)
	r.Render(buf)
	return r, buf
}

func TestFocusCycling(t *testing.T) {
	r, _ := newRuntime(t, &fakeApp{view: twoButtons}, Options{})

	require.True(t, r.FocusNext())
	start := r.Focused()
	assert.Equal(t, element.FocusID("a"), start)

	n := r.Renderer().Focus.Len()
	for range n {
		r.FocusNext()
	}
	assert.Equal(t, start, r.Focused(), "cycling |F| times returns to start")

	r.FocusNext()
	r.FocusPrev()
	assert.Equal(t, start, r.Focused(), "next then prev is identity")

	r.FocusPrev()
	assert.Equal(t, element.FocusID("b"), r.Focused(), "prev wraps")
}

func TestKeyRouting(t *testing.T) {
	app := &fakeApp{
		view: twoButtons,
		subs: func(*fakeState) []command.Subscription[string] {
			return []command.Subscription[string]{
				command.Key("x", "sub-x", "do x"),
				command.Key("enter", "sub-enter", ""),
			}
		},
	}
	r, _ := newRuntime(t, app, Options{})

	assert.True(t, r.HandleKey(terminal.Press(terminal.KeyEnter)), "unfocused enter reaches subscriptions")
	r.FocusNext()
	assert.True(t, r.HandleKey(terminal.Press(terminal.KeyEnter)))
	assert.True(t, r.HandleKey(terminal.Char('x')))
	assert.False(t, r.HandleKey(terminal.Char('z')))

	assert.Equal(t, []string{"sub-enter", "press-a", "sub-x"}, r.State().got)
	assert.Equal(t, []Shortcut{{Key: "x", Description: "do x"}}, r.Shortcuts())
}

func TestEscapeBlursBeforeSubscriptions(t *testing.T) {
	app := &fakeApp{
		view: twoButtons,
		subs: func(*fakeState) []command.Subscription[string] {
			return []command.Subscription[string]{command.Key("esc", "sub-esc", "")}
		},
	}
	r, _ := newRuntime(t, app, Options{})
	r.FocusNext()

	assert.True(t, r.HandleKey(terminal.Press(terminal.KeyEscape)))
	assert.Equal(t, element.FocusID(""), r.Focused())
	assert.Equal(t, []string{"blur-a"}, r.State().got)

	assert.True(t, r.HandleKey(terminal.Press(terminal.KeyEscape)))
	assert.Equal(t, []string{"blur-a", "sub-esc"}, r.State().got)
}

func TestClickResolvesFocusThenAction(t *testing.T) {
	r, buf := newRuntime(t, &fakeApp{view: twoButtons}, Options{HoverFocus: config.HoverNever})

	assert.True(t, r.HandleMouse(terminal.MouseEvent{X: 2, Y: 4, Button: terminal.MouseLeft}))
	assert.Equal(t, element.FocusID("b"), r.Focused())
	assert.Equal(t, []string{"press-b"}, r.State().got)

	r.Render(buf)
	assert.True(t, r.HandleMouse(terminal.MouseEvent{X: 2, Y: 8, Button: terminal.MouseLeft}))
	assert.Equal(t, element.FocusID(""), r.Focused(), "clicking nothing focusable clears focus")
	assert.Equal(t, []string{"press-b", "blur-b"}, r.State().got)
}

func TestLayerIsolation(t *testing.T) {
	r, buf := newRuntime(t, &fakeApp{
		init: func(s *fakeState) command.Command[string] {
			s.modal = true
			return nil
		},
		view: twoButtons,
	}, Options{HoverFocus: config.HoverNever})
	r.Render(buf)

	focus := r.Renderer().Focus
	assert.True(t, focus.Contains("m"))
	assert.False(t, focus.Contains("a"))
	assert.False(t, focus.Contains("b"))

	assert.False(t, r.HandleMouse(terminal.MouseEvent{X: 1, Y: 1, Button: terminal.MouseLeft}),
		"a click only the base layer covers must do nothing")
	assert.Empty(t, r.State().got)

	assert.True(t, r.HandleMouse(terminal.MouseEvent{X: 8, Y: 4, Button: terminal.MouseLeft}))
	assert.Equal(t, []string{"press-m"}, r.State().got)
}

func TestHoverFocusModes(t *testing.T) {
	tests := []struct {
		mode      string
		preFocus  bool
		wantFocus element.FocusID
	}{
		{config.HoverNever, false, ""},
		{config.HoverAlways, false, "b"},
		{config.HoverAlways, true, "b"},
		{config.HoverWhenUnfocused, false, "b"},
		{config.HoverWhenUnfocused, true, "a"},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			r, _ := newRuntime(t, &fakeApp{view: twoButtons}, Options{HoverFocus: tt.mode})
			if tt.preFocus {
				r.FocusNext()
			}
			r.HandleMouse(terminal.MouseEvent{X: 1, Y: 4, Action: terminal.MouseMove})
			assert.Equal(t, tt.wantFocus, r.Focused())
		})
	}
}

func TestHoverEnterExit(t *testing.T) {
	app := &fakeApp{view: func(*fakeState) []element.Layer[string] {
		b := button("a", "A")
		b.OnHover = element.Send("enter")
		b.OnHoverExit = element.Send("exit")
		return []element.Layer[string]{element.Fill[string](element.Column[string](b, element.Spacer[string]()))}
	}}
	r, _ := newRuntime(t, app, Options{HoverFocus: config.HoverNever})

	r.HandleMouse(terminal.MouseEvent{X: 1, Y: 1, Action: terminal.MouseMove})
	r.HandleMouse(terminal.MouseEvent{X: 2, Y: 1, Action: terminal.MouseMove})
	r.HandleMouse(terminal.MouseEvent{X: 2, Y: 7, Action: terminal.MouseMove})

	assert.Equal(t, []string{"enter", "exit"}, r.State().got)
}

func TestWheelOverFocusedBecomesKeys(t *testing.T) {
	app := &fakeApp{view: func(*fakeState) []element.Layer[string] {
		l := &element.List[string]{
			Items:      []element.ListItem{{Label: "one"}, {Label: "two"}},
			OnNavigate: func(n element.Nav) string { return "nav-" + n.String() },
		}
		l.Focus = "list"
		return []element.Layer[string]{element.Fill[string](l)}
	}}
	r, _ := newRuntime(t, app, Options{HoverFocus: config.HoverNever})
	r.FocusNext()

	r.HandleMouse(terminal.MouseEvent{X: 1, Y: 1, Button: terminal.MouseWheelDown})
	r.HandleMouse(terminal.MouseEvent{X: 1, Y: 1, Button: terminal.MouseWheelUp})
	assert.Equal(t, []string{"nav-down", "nav-up"}, r.State().got)
}

func TestDanglingFocusRestoresFromHistory(t *testing.T) {
	app := &fakeApp{
		view: twoButtons,
		update: func(s *fakeState, msg string) command.Command[string] {
			switch msg {
			case "open":
				s.modal = true
			case "close":
				s.modal = false
			}
			return nil
		},
	}
	r, buf := newRuntime(t, app, Options{HoverFocus: config.HoverNever})
	r.FocusNext()
	r.FocusNext()
	require.Equal(t, element.FocusID("b"), r.Focused())

	r.Send("open")
	r.Render(buf)
	assert.Equal(t, element.FocusID(""), r.Focused(), "b is not in the modal layer")

	r.Send("close")
	r.Render(buf)
	assert.Equal(t, element.FocusID("b"), r.Focused(), "restored from the base layer history")
}

func TestExplicitBlurIsNotRestored(t *testing.T) {
	r, buf := newRuntime(t, &fakeApp{view: twoButtons}, Options{HoverFocus: config.HoverNever})
	r.FocusNext()
	r.HandleKey(terminal.Press(terminal.KeyEscape))
	r.Render(buf)
	assert.Equal(t, element.FocusID(""), r.Focused())
}

func TestWidgetAutoDispatch(t *testing.T) {
	app := &fakeApp{view: func(s *fakeState) []element.Layer[string] {
		in := widgetstate.Input[string](&s.Store, "name")
		in.OnChange = func(v string) string { return "name:" + v }
		in.OnSubmit = func(v string) string { return "submit:" + v }
		return []element.Layer[string]{element.Fill[string](element.Column[string](in, element.Spacer[string]()))}
	}}
	r, buf := newRuntime(t, app, Options{})
	r.FocusNext()

	r.HandleKey(terminal.Char('h'))
	r.Render(buf)
	r.HandlePaste("i\n")
	r.Render(buf)
	r.HandleKey(terminal.Press(terminal.KeyEnter))

	assert.Equal(t, "hi", r.State().Text("name").Value)
	assert.Equal(t, []string{"name:h", "name:hi", "submit:hi"}, r.State().got)
}

func TestCommandsFromUpdate(t *testing.T) {
	app := &fakeApp{
		view: twoButtons,
		update: func(s *fakeState, msg string) command.Command[string] {
			switch msg {
			case "go":
				return command.Sequence[string](
					command.Publish[string]{Topic: "greet", Payload: "hi"},
					command.NavigateTo[string]{Target: "other"},
					command.SetFocus[string]{ID: "b"},
				)
			case "restart":
				return command.StartApp[string]{Target: "other", Params: 7}
			case "stop":
				return command.Batch[string]{Commands: []command.Command[string]{
					command.Quit[string]{},
					command.Publish[string]{Topic: "never"},
				}}
			}
			return nil
		},
	}
	r, _ := newRuntime(t, app, Options{})

	r.Send("go")
	assert.Equal(t, []command.Event{{Topic: "greet", Payload: "hi", Source: "fake"}}, r.TakePublishes())
	assert.Empty(t, r.TakePublishes())
	nav, ok := r.TakeNavigation()
	require.True(t, ok)
	assert.Equal(t, Navigation{Target: "other"}, nav)
	_, ok = r.TakeNavigation()
	assert.False(t, ok)
	assert.Equal(t, element.FocusID("b"), r.Focused())

	r.Send("restart")
	nav, _ = r.TakeNavigation()
	assert.Equal(t, Navigation{Target: "other", Params: 7, Restart: true}, nav)

	r.Send("stop")
	assert.True(t, r.QuitRequested())
	assert.Empty(t, r.TakePublishes(), "nothing after Quit runs")
}

func TestDeliverRoutesTopics(t *testing.T) {
	app := &fakeApp{subs: func(*fakeState) []command.Subscription[string] {
		return []command.Subscription[string]{
			command.Subscribe[string]{Topic: "greet", Handler: func(p any) (string, bool) {
				s, ok := p.(string)
				return "got-" + s, ok
			}},
		}
	}}
	r, _ := newRuntime(t, app, Options{})

	assert.True(t, r.Deliver(command.Event{Topic: "greet", Payload: "hi"}))
	assert.False(t, r.Deliver(command.Event{Topic: "greet", Payload: 3}))
	assert.False(t, r.Deliver(command.Event{Topic: "other", Payload: "hi"}))
	assert.Equal(t, []string{"got-hi"}, r.State().got)
}

func TestViewportReportsAreDeduplicated(t *testing.T) {
	app := &fakeApp{view: func(*fakeState) []element.Layer[string] {
		l := &element.List[string]{
			Items:      []element.ListItem{{Label: "one"}},
			OnViewport: func(w, h int) string { return "viewport" },
		}
		return []element.Layer[string]{element.Fill[string](l)}
	}}
	r, buf := newRuntime(t, app, Options{})
	r.Render(buf)
	r.Render(buf)
	assert.Equal(t, []string{"viewport"}, r.State().got)

	buf.Resize(30, 12)
	r.Render(buf)
	assert.Equal(t, []string{"viewport", "viewport"}, r.State().got)
}

type suspendingApp struct {
	fakeApp
	suspended, resumed int
}

func (a *suspendingApp) OnSuspend(*fakeState) command.Command[string] {
	a.suspended++
	return nil
}

func (a *suspendingApp) OnResume(*fakeState) command.Command[string] {
	a.resumed++
	return command.Publish[string]{Topic: "resumed"}
}

func (a *suspendingApp) Status(s *fakeState) string { return "ok" }

func TestOptionalHooks(t *testing.T) {
	app := &suspendingApp{}
	r := New[*fakeState, string](app, "params", Options{ID: "s"})
	defer r.Destroy()

	assert.Equal(t, "params", r.State().param)
	assert.Equal(t, "ok", r.Status())
	assert.False(t, r.CapturesRawInput())

	r.Suspend()
	r.Resume()
	assert.Equal(t, 1, app.suspended)
	assert.Equal(t, 1, app.resumed)
	assert.Len(t, r.TakePublishes(), 1)
}

func TestPopupClosesWhenOwnerLosesFocus(t *testing.T) {
	app := &fakeApp{view: func(s *fakeState) []element.Layer[string] {
		sel := widgetstate.SelectOf[string](&s.Store, "color", []string{"red", "green", "blue"})
		list := widgetstate.ListOf[string](&s.Store, "items", []element.ListItem{{Label: "one"}, {Label: "two"}, {Label: "three"}})
		return []element.Layer[string]{element.Fill[string](element.Column[string](sel, list))}
	}}
	r, buf := newRuntime(t, app, Options{})
	require.True(t, r.FocusNext())
	require.Equal(t, element.FocusID("color"), r.Focused())

	r.HandleKey(terminal.Press(terminal.KeyDown))
	r.Render(buf)
	require.True(t, r.State().Select("color").Open)

	require.True(t, r.FocusNext())
	assert.Equal(t, element.FocusID("items"), r.Focused())
	assert.False(t, r.State().Select("color").Open)

	r.Render(buf)
	r.HandleKey(terminal.Press(terminal.KeyDown))
	assert.Equal(t, 1, r.State().List("items").Selected)
	assert.Equal(t, 0, r.State().Select("color").Highlight)
}
