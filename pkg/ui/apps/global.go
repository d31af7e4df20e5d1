package apps

import (
	"fmt"
	"time"

	"github.com/odvcencio/lattice/pkg/ui/command"
	"github.com/odvcencio/lattice/pkg/ui/element"
	"github.com/odvcencio/lattice/pkg/ui/fuzzy"
	"github.com/odvcencio/lattice/pkg/ui/layout"
	"github.com/odvcencio/lattice/pkg/ui/runtime"
	"github.com/odvcencio/lattice/pkg/ui/theme"
	"github.com/odvcencio/lattice/pkg/ui/widgetstate"
)

// headerHeight is the number of rows the header takes from applications.
const headerHeight = 1

type modalKind int

const (
	modalNone modalKind = iota
	modalHelp
	modalLauncher
	modalOverview
	modalQuit
)

type globalKind int

const (
	globalOpen globalKind = iota
	globalClose
	globalTick
	globalConfirmQuit
	globalSwitch
	globalLaunch
)

// GlobalMsg is the message type of the orchestrator's own chrome.
type GlobalMsg struct {
	Kind   globalKind
	Modal  modalKind
	Target command.AppID
	Text   string
}

type globalState struct {
	widgetstate.Store
	modal modalKind
	now   time.Time
}

const (
	idHelp     element.FocusID = "global.help"
	idLauncher element.FocusID = "global.launcher"
	idOverview element.FocusID = "global.overview"
	idQuitYes  element.FocusID = "global.quit.yes"
	idQuitNo   element.FocusID = "global.quit.no"
)

// globalApp draws the header and the global modals. It reads the
// orchestrator's table but never mutates it; navigation and quitting go
// through commands like any other application.
type globalApp struct {
	o *Orchestrator
}

func (g *globalApp) Title() string { return "lattice" }

func (g *globalApp) Init(any) (*globalState, command.Command[GlobalMsg]) {
	return &globalState{now: g.o.opts.Now()}, nil
}

func (g *globalApp) Update(s *globalState, msg GlobalMsg) command.Command[GlobalMsg] {
	switch msg.Kind {
	case globalTick:
		s.now = g.o.opts.Now()
	case globalOpen:
		if s.modal == msg.Modal {
			return nil
		}
		s.modal = msg.Modal
		for _, id := range []element.FocusID{idHelp, idLauncher, idOverview} {
			s.Forget(id)
		}
		return command.SetFocus[GlobalMsg]{ID: g.initialFocus(msg.Modal)}
	case globalClose:
		s.modal = modalNone
		return command.ClearFocus[GlobalMsg]{}
	case globalConfirmQuit:
		s.modal = modalNone
		return command.Quit[GlobalMsg]{}
	case globalSwitch:
		s.modal = modalNone
		return command.Sequence[GlobalMsg](
			command.ClearFocus[GlobalMsg]{},
			command.NavigateTo[GlobalMsg]{Target: msg.Target},
		)
	case globalLaunch:
		id, ok := g.launchTarget(msg.Text)
		if !ok {
			return nil
		}
		s.modal = modalNone
		return command.Sequence[GlobalMsg](
			command.ClearFocus[GlobalMsg]{},
			command.NavigateTo[GlobalMsg]{Target: id},
		)
	}
	return nil
}

func (g *globalApp) initialFocus(m modalKind) element.FocusID {
	switch m {
	case modalHelp:
		return idHelp
	case modalLauncher:
		return idLauncher
	case modalOverview:
		return idOverview
	case modalQuit:
		return idQuitNo
	}
	return ""
}

func (g *globalApp) Subscriptions(s *globalState) []command.Subscription[GlobalMsg] {
	subs := []command.Subscription[GlobalMsg]{
		command.Timer[GlobalMsg]{ID: "clock", Interval: time.Second, Msg: GlobalMsg{Kind: globalTick}},
	}
	if s.modal == modalQuit {
		subs = append(subs,
			command.Key("y", GlobalMsg{Kind: globalConfirmQuit}, "quit"),
			command.Key("n", GlobalMsg{Kind: globalClose}, "stay"),
		)
	}
	return subs
}

func (g *globalApp) View(s *globalState) []element.Layer[GlobalMsg] {
	layers := []element.Layer[GlobalMsg]{g.header(s)}
	switch s.modal {
	case modalHelp:
		layers = append(layers, g.help(s))
	case modalLauncher:
		layers = append(layers, g.launcher(s))
	case modalOverview:
		layers = append(layers, g.overview(s))
	case modalQuit:
		layers = append(layers, g.quitConfirm())
	}
	return layers
}

func (g *globalApp) header(s *globalState) element.Layer[GlobalMsg] {
	title, status := "", ""
	if e, ok := g.o.entries[g.o.active]; ok && e.state == Running {
		title, status = e.handle.Title(), e.handle.Status()
	}
	row := element.Row[GlobalMsg](
		element.Rich[GlobalMsg](
			element.Span{Text: " " + title + " ", Role: theme.RoleHeader, Bold: true},
			element.Span{Text: " " + status, Role: theme.RoleMuted},
		),
		element.Spacer[GlobalMsg](),
		element.Styled[GlobalMsg](s.now.Format("15:04:05")+" ", theme.RoleMuted),
	)
	return element.Layer[GlobalMsg]{Content: row, Align: layout.AlignTop, Height: headerHeight}
}

func (g *globalApp) help(s *globalState) element.Layer[GlobalMsg] {
	keys := g.o.cfg.Keys
	var items []element.ListItem
	add := func(key, desc string, role theme.Role) {
		if key != "" {
			items = append(items, element.ListItem{Label: fmt.Sprintf("%-12s", key), Detail: desc, Role: role})
		}
	}
	add(keys.Help, "show this help", theme.RoleAccent)
	add(keys.Launcher, "launch an application", theme.RoleAccent)
	add(keys.Overview, "running applications", theme.RoleAccent)
	add(keys.Quit, "quit", theme.RoleAccent)
	add("tab", "next field", theme.RoleAccent)
	add("shift+tab", "previous field", theme.RoleAccent)
	if e, ok := g.o.entries[g.o.active]; ok && e.state == Running {
		for _, sc := range e.handle.Shortcuts() {
			add(sc.Key, sc.Description, theme.RoleNormal)
		}
	}
	list := widgetstate.ListOf[GlobalMsg](&s.Store, idHelp, items)
	return element.Modal[GlobalMsg](element.Boxed[GlobalMsg]("Help", list), 50, min(len(items)+2, 20))
}

func (g *globalApp) launchable() []Spec {
	var out []Spec
	for _, id := range g.o.order {
		if sp := g.o.entries[id].spec; !sp.Hidden {
			out = append(out, sp)
		}
	}
	return out
}

func (g *globalApp) launchTarget(text string) (command.AppID, bool) {
	specs := g.launchable()
	titles := make([]string, len(specs))
	for i, sp := range specs {
		titles[i] = sp.Title
	}
	m := fuzzy.Rank(text, titles, 1)
	if len(m) == 0 {
		return "", false
	}
	return specs[m[0].Index].ID, true
}

func (g *globalApp) launcher(s *globalState) element.Layer[GlobalMsg] {
	var titles []string
	for _, sp := range g.launchable() {
		titles = append(titles, sp.Title)
	}
	ac := widgetstate.AutocompleteOf[GlobalMsg](&s.Store, idLauncher, titles)
	ac.Placeholder = "application"
	ac.Bordered = true
	ac.OnSelect = func(v string) GlobalMsg { return GlobalMsg{Kind: globalLaunch, Text: v} }
	return element.Layer[GlobalMsg]{
		Content: element.Boxed[GlobalMsg]("Launch", ac),
		Align:   layout.AlignTop,
		Dim:     true,
		Width:   50,
		Height:  5,
	}
}

func (g *globalApp) overview(s *globalState) element.Layer[GlobalMsg] {
	apps := g.o.Apps()
	now := g.o.opts.Now()
	items := make([]element.ListItem, len(apps))
	ids := make([]command.AppID, len(apps))
	for i, a := range apps {
		detail := a.State.String()
		if !a.LastActive.IsZero() {
			detail += " · " + now.Sub(a.LastActive).Truncate(time.Second).String() + " ago"
		}
		role := theme.RoleNormal
		switch {
		case a.Active:
			role = theme.RoleAccent
		case !a.State.Live():
			role = theme.RoleMuted
		}
		items[i] = element.ListItem{Label: a.Title, Detail: detail, Role: role, Marked: a.Active}
		ids[i] = a.ID
	}
	list := widgetstate.ListOf[GlobalMsg](&s.Store, idOverview, items)
	list.OnSelect = func(i int) GlobalMsg { return GlobalMsg{Kind: globalSwitch, Target: ids[i]} }
	return element.Modal[GlobalMsg](element.Boxed[GlobalMsg]("Applications", list), 60, min(len(items)+2, 20))
}

func (g *globalApp) quitConfirm() element.Layer[GlobalMsg] {
	body := element.Column[GlobalMsg](
		element.Label[GlobalMsg]("Quit lattice?"),
		element.Gap[GlobalMsg](1),
		element.Row[GlobalMsg](
			element.NewButton(idQuitYes, "Yes (y)", GlobalMsg{Kind: globalConfirmQuit}),
			element.Gap[GlobalMsg](2),
			element.NewButton(idQuitNo, "No (n)", GlobalMsg{Kind: globalClose}),
		),
	)
	return element.Modal[GlobalMsg](element.Boxed[GlobalMsg]("Quit", element.Pad[GlobalMsg](body, 0, 1)), 34, 8)
}

var _ runtime.Application[*globalState, GlobalMsg] = (*globalApp)(nil)
