package demo

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/odvcencio/lattice/pkg/config"
	"github.com/odvcencio/lattice/pkg/ui/command"
	"github.com/odvcencio/lattice/pkg/ui/element"
	"github.com/odvcencio/lattice/pkg/ui/layout"
	"github.com/odvcencio/lattice/pkg/ui/runtime"
	"github.com/odvcencio/lattice/pkg/ui/theme"
	"github.com/odvcencio/lattice/pkg/ui/widgetstate"
)

// Topics around configuration changes. Both carry a *config.Config.
const (
	TopicConfigReloaded = "config.reloaded"
	TopicSettingsSaved  = "settings.saved"
)

const (
	idTheme     element.FocusID = "settings.theme"
	idHover     element.FocusID = "settings.hover"
	idFrame     element.FocusID = "settings.frame"
	idScrollOff element.FocusID = "settings.scrolloff"
	idOverview  element.FocusID = "settings.overview"
	idSave      element.FocusID = "settings.save"
)

var (
	themeNames = []string{"auto", "dark", "ansi", "mono"}
	hoverModes = []string{config.HoverNever, config.HoverAlways, config.HoverWhenUnfocused}
)

type settingsKind int

const (
	settingsTheme settingsKind = iota
	settingsHover
	settingsFrame
	settingsScrollOff
	settingsSave
	settingsSaved
	settingsReloaded
)

type settingsMsg struct {
	kind  settingsKind
	index int
	text  string
	err   error
	cfg   *config.Config
}

type settingsState struct {
	widgetstate.Store
	cfg     config.Config
	changed bool
	saving  bool
	invalid map[element.FocusID]string
	notice  string
	failed  bool
}

// Settings edits a copy of the configuration and writes it back to disk.
// Saved files are picked up by the config watcher like any other edit.
type Settings struct {
	Config *config.Config
	Path   string
}

func (a *Settings) Title() string { return "Settings" }

func (a *Settings) Init(any) (*settingsState, command.Command[settingsMsg]) {
	s := &settingsState{invalid: make(map[element.FocusID]string)}
	a.load(s, a.Config)
	return s, nil
}

// load copies cfg into the form and resets every field.
func (a *Settings) load(s *settingsState, cfg *config.Config) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	s.cfg = *cfg
	s.changed = false
	clear(s.invalid)
	s.Select(idTheme).Selected = max(slices.Index(themeNames, cfg.UI.Theme), 0)
	s.Select(idHover).Selected = max(slices.Index(hoverModes, cfg.UI.HoverFocus), 0)
	s.Text(idFrame).Set(cfg.UI.FrameInterval.String())
	s.Text(idScrollOff).Set(strconv.Itoa(cfg.UI.ScrollOff))
}

func (a *Settings) Update(s *settingsState, msg settingsMsg) command.Command[settingsMsg] {
	switch msg.kind {
	case settingsTheme:
		s.cfg.UI.Theme = themeNames[msg.index]
		s.changed = true
	case settingsHover:
		s.cfg.UI.HoverFocus = hoverModes[msg.index]
		s.changed = true
	case settingsFrame:
		d, err := time.ParseDuration(msg.text)
		if err != nil || d < time.Millisecond {
			s.invalid[idFrame] = "a duration of at least 1ms, like 16ms"
			return nil
		}
		delete(s.invalid, idFrame)
		s.cfg.UI.FrameInterval = d
		s.changed = true
	case settingsScrollOff:
		n, err := strconv.Atoi(msg.text)
		if err != nil || n < 0 {
			s.invalid[idScrollOff] = "a whole number, 0 or more"
			return nil
		}
		delete(s.invalid, idScrollOff)
		s.cfg.UI.ScrollOff = n
		s.changed = true
	case settingsSave:
		return a.save(s)
	case settingsSaved:
		s.saving = false
		if msg.err != nil {
			s.notice, s.failed = msg.err.Error(), true
			return nil
		}
		s.changed = false
		s.notice, s.failed = "saved to "+a.Path, false
		saved := s.cfg
		return command.Publish[settingsMsg]{Topic: TopicSettingsSaved, Payload: &saved}
	case settingsReloaded:
		if s.changed || s.saving {
			s.notice, s.failed = "config changed on disk; save to overwrite", false
			return nil
		}
		a.load(s, msg.cfg)
		s.notice, s.failed = "reloaded from disk", false
	}
	return nil
}

func (a *Settings) save(s *settingsState) command.Command[settingsMsg] {
	switch {
	case s.saving:
		return nil
	case a.Path == "":
		s.notice, s.failed = "no config file to save to", true
		return nil
	case len(s.invalid) > 0:
		s.notice, s.failed = "fix the highlighted fields first", true
		return nil
	}
	s.saving = true
	cfg, path := s.cfg, a.Path
	return command.Perform[settingsMsg]{
		Name: "save settings",
		Op: func(context.Context) settingsMsg {
			return settingsMsg{kind: settingsSaved, err: cfg.Save(path)}
		},
	}
}

func (a *Settings) View(s *settingsState) []element.Layer[settingsMsg] {
	themeSel := widgetstate.SelectOf[settingsMsg](&s.Store, idTheme, themeNames)
	themeSel.Label = "theme"
	themeSel.Bordered = true
	themeSel.OnChange = func(i int) settingsMsg { return settingsMsg{kind: settingsTheme, index: i} }

	hoverSel := widgetstate.SelectOf[settingsMsg](&s.Store, idHover, hoverModes)
	hoverSel.Label = "hover focus"
	hoverSel.Bordered = true
	hoverSel.OnChange = func(i int) settingsMsg { return settingsMsg{kind: settingsHover, index: i} }

	frame := widgetstate.Input[settingsMsg](&s.Store, idFrame)
	frame.Label = "frame interval"
	frame.Bordered = true
	frame.OnChange = func(v string) settingsMsg { return settingsMsg{kind: settingsFrame, text: v} }

	scrollOff := widgetstate.Input[settingsMsg](&s.Store, idScrollOff)
	scrollOff.Label = "scroll off"
	scrollOff.Bordered = true
	scrollOff.OnChange = func(v string) settingsMsg { return settingsMsg{kind: settingsScrollOff, text: v} }

	lines := a.overviewLines(s)
	overview := widgetstate.ScrollOf[settingsMsg](&s.Store, idOverview, element.Column[settingsMsg](lines...), len(lines))

	save := element.NewButton[settingsMsg](idSave, "Save (ctrl+s)", settingsMsg{kind: settingsSave})
	save.Disabled = s.saving

	form := element.Column[settingsMsg](
		element.Row[settingsMsg](themeSel, element.Gap[settingsMsg](1), hoverSel),
		element.Row[settingsMsg](frame, element.Gap[settingsMsg](1), scrollOff),
		a.problems(s),
		element.WithSize[settingsMsg](element.Boxed[settingsMsg]("Current configuration", overview), layout.Fill(1)),
		element.Row[settingsMsg](save, element.Gap[settingsMsg](2), a.noticeText(s)),
	)
	return []element.Layer[settingsMsg]{element.Fill[settingsMsg](element.Pad[settingsMsg](form, 0, 1))}
}

func (a *Settings) problems(s *settingsState) element.Element[settingsMsg] {
	var spans []element.Span
	for _, id := range []element.FocusID{idFrame, idScrollOff} {
		if msg, ok := s.invalid[id]; ok {
			if len(spans) > 0 {
				spans = append(spans, element.Span{Text: " · "})
			}
			spans = append(spans, element.Span{Text: fmt.Sprintf("%s: %s", id, msg), Role: theme.RoleError})
		}
	}
	if len(spans) == 0 {
		return element.Gap[settingsMsg](1)
	}
	return element.Rich[settingsMsg](spans...)
}

func (a *Settings) noticeText(s *settingsState) element.Element[settingsMsg] {
	role := theme.RoleMuted
	switch {
	case s.failed:
		role = theme.RoleError
	case s.changed:
		return element.Styled[settingsMsg]("unsaved changes", theme.RoleWarning)
	}
	return element.Styled[settingsMsg](s.notice, role)
}

// overviewLines lists the effective values that the form does not edit.
func (a *Settings) overviewLines(s *settingsState) []element.Element[settingsMsg] {
	c := s.cfg
	row := func(k, v string) element.Element[settingsMsg] {
		return element.Rich[settingsMsg](
			element.Span{Text: fmt.Sprintf("%-24s", k), Role: theme.RoleMuted},
			element.Span{Text: v},
		)
	}
	out := []element.Element[settingsMsg]{
		row("keys.help", c.Keys.Help),
		row("keys.launcher", c.Keys.Launcher),
		row("keys.overview", c.Keys.Overview),
		row("keys.quit", c.Keys.Quit),
		row("ui.max_concurrent_ops", strconv.Itoa(c.UI.MaxConcurrentOps)),
		row("logging.path", c.Logging.Path),
		row("logging.level", c.Logging.Level),
		row("bus.enabled", strconv.FormatBool(c.Bus.Enabled)),
		row("bus.url", c.Bus.URL),
		row("bus.subject_prefix", c.Bus.SubjectPrefix),
		row("telemetry.metrics_addr", c.Telemetry.MetricsAddr),
		row("telemetry.trace", strconv.FormatBool(c.Telemetry.Trace)),
	}
	ids := make([]string, 0, len(c.Apps))
	for id := range c.Apps {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		p := c.Apps[id]
		v := p.QuitPolicy
		if p.IdleTimeout > 0 {
			v += " after " + p.IdleTimeout.String()
		}
		if p.SuspendPolicy != "" {
			v += ", " + p.SuspendPolicy
		}
		out = append(out, row("apps."+id, v))
	}
	return out
}

func (a *Settings) Subscriptions(*settingsState) []command.Subscription[settingsMsg] {
	return []command.Subscription[settingsMsg]{
		command.Key("ctrl+s", settingsMsg{kind: settingsSave}, "save settings"),
		command.Subscribe[settingsMsg]{Topic: TopicConfigReloaded, Handler: func(p any) (settingsMsg, bool) {
			cfg, ok := p.(*config.Config)
			return settingsMsg{kind: settingsReloaded, cfg: cfg}, ok && cfg != nil
		}},
	}
}

func (a *Settings) Status(s *settingsState) string {
	switch {
	case s.saving:
		return "saving…"
	case s.changed:
		return "unsaved changes"
	}
	return ""
}

var (
	_ runtime.Application[*settingsState, settingsMsg] = (*Settings)(nil)
	_ runtime.Statuser[*settingsState]                 = (*Settings)(nil)
)
