package demo

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odvcencio/lattice/pkg/config"
	"github.com/odvcencio/lattice/pkg/ui/apps"
	"github.com/odvcencio/lattice/pkg/ui/command"
	"github.com/odvcencio/lattice/pkg/ui/element"
	"github.com/odvcencio/lattice/pkg/ui/render"
	"github.com/odvcencio/lattice/pkg/ui/runtime"
	"github.com/odvcencio/lattice/pkg/ui/terminal"
	"github.com/odvcencio/lattice/pkg/ui/theme"
)

func newOrchestrator(t *testing.T, specs ...apps.Spec) *apps.Orchestrator {
	t.Helper()
	o := apps.New(apps.Options{Config: config.DefaultConfig(), Theme: theme.Mono()})
	o.Register(apps.LoadingSpec())
	for _, sp := range specs {
		o.Register(sp)
	}
	return o
}

func screen(o *apps.Orchestrator) string {
	buf := render.NewBuffer(80, 24)
	o.Render(buf)
	return buf.Text()
}

func runtimeOf[S, Msg any](t *testing.T, o *apps.Orchestrator, id command.AppID) *runtime.Runtime[S, Msg] {
	t.Helper()
	h, ok := o.Handle(id)
	require.True(t, ok, "%s is not live", id)
	r, ok := h.(*runtime.Runtime[S, Msg])
	require.True(t, ok)
	return r
}

// pollUntil polls o until cond holds or a second passes.
func pollUntil(t *testing.T, o *apps.Orchestrator, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		require.True(t, time.Now().Before(deadline), "condition never held")
		o.Poll(time.Now())
		time.Sleep(time.Millisecond)
	}
}

// perform runs a deferred operation inline.
func perform[Msg any](t *testing.T, cmd command.Command[Msg]) Msg {
	t.Helper()
	p, ok := cmd.(command.Perform[Msg])
	require.True(t, ok, "expected Perform, got %T", cmd)
	return p.Op(context.Background())
}

func TestSpecs(t *testing.T) {
	specs := Specs(Options{})
	require.Len(t, specs, 4)
	ids := []command.AppID{specs[0].ID, specs[1].ID, specs[2].ID, specs[3].ID}
	assert.Equal(t, []command.AppID{CounterID, ExplorerID, JobsID, SettingsID}, ids)
	assert.Equal(t, apps.QuitOnExit, specs[3].Quit.Kind)
}

func TestCounterKeysAndReset(t *testing.T) {
	o := newOrchestrator(t, Specs(Options{})[0])
	require.NoError(t, o.Start(CounterID, nil))
	h, _ := o.Handle(CounterID)

	o.HandleEvent(terminal.Char('+'))
	o.HandleEvent(terminal.Char('+'))
	o.HandleEvent(terminal.Char('-'))
	o.HandleEvent(terminal.Char('+'))
	assert.Equal(t, "2", h.Status())

	o.HandleEvent(terminal.Char('r'))
	assert.Contains(t, screen(o), "Reset 2 to zero?")
	o.HandleEvent(terminal.Char('+'))
	assert.Equal(t, "2", h.Status(), "the modal swallows counter keys")

	o.HandleEvent(terminal.Char('y'))
	assert.Equal(t, "0", h.Status())
	assert.NotContains(t, screen(o), "Reset")
}

func TestCounterResetCancelledFromButton(t *testing.T) {
	o := newOrchestrator(t, Specs(Options{})[0])
	require.NoError(t, o.Start(CounterID, 7))
	r := runtimeOf[*counterState, counterMsg](t, o, CounterID)

	o.HandleEvent(terminal.Char('r'))
	assert.Equal(t, element.FocusID("counter.keep"), r.Focused())
	screen(o)
	o.HandleEvent(terminal.Press(terminal.KeyEnter))
	assert.False(t, r.State().confirm)
	assert.Equal(t, 7, r.State().count)
}

func TestCounterAutoTimerPausesWhileSuspended(t *testing.T) {
	c := &Counter{}
	s, _ := c.Init(nil)
	hasTimer := func() bool {
		for _, sub := range c.Subscriptions(s) {
			if _, ok := sub.(command.Timer[counterMsg]); ok {
				return true
			}
		}
		return false
	}

	assert.False(t, hasTimer())
	c.Update(s, counterToggleAuto)
	assert.True(t, hasTimer())
	c.OnSuspend(s)
	assert.False(t, hasTimer())
	c.OnResume(s)
	assert.True(t, hasTimer())

	cmd := c.Update(s, counterTick)
	pub, ok := cmd.(command.Publish[counterMsg])
	require.True(t, ok)
	assert.Equal(t, TopicCounterChanged, pub.Topic)
	assert.Equal(t, 1, pub.Payload)
	assert.Equal(t, "1 (auto)", c.Status(s))
}

func testTree() fstest.MapFS {
	return fstest.MapFS{
		"readme.md":     {Data: []byte("# hi")},
		"src/main.go":   {Data: []byte("package main")},
		"src/lib/a.go":  {Data: []byte("package lib")},
		"docs/guide.md": {Data: []byte("guide")},
	}
}

func names(entries []element.FileEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

func TestExplorerNavigatesFolders(t *testing.T) {
	e := &Explorer{Root: testTree(), RootName: "root", ScrollOff: 1}
	s, cmd := e.Init(nil)
	e.Update(s, perform(t, cmd))
	assert.Equal(t, []string{"docs", "src", "readme.md"}, names(s.entries))
	assert.Equal(t, []string{".", "docs", "src"}, s.folders.Visible(), "the root starts expanded")

	cmd = e.Update(s, explorerMsg{kind: explorerOpen, index: 1})
	require.NotNil(t, cmd)
	assert.True(t, s.loading)
	e.Update(s, perform(t, cmd))
	assert.Equal(t, "src", s.dir)
	assert.Equal(t, []string{"..", "lib", "main.go"}, names(s.entries))
	sel, _ := s.folders.Selected()
	assert.Equal(t, "src", sel)

	cmd = e.Update(s, explorerMsg{kind: explorerOpen, index: 2})
	pub, ok := cmd.(command.Publish[explorerMsg])
	require.True(t, ok)
	assert.Equal(t, "src/main.go", pub.Payload)

	cmd = e.Update(s, explorerMsg{kind: explorerOpen, index: 0})
	e.Update(s, perform(t, cmd))
	assert.Equal(t, ".", s.dir)
}

func TestExplorerFolderTreeDrivesListing(t *testing.T) {
	e := &Explorer{Root: testTree()}
	s, cmd := e.Init(nil)
	e.Update(s, perform(t, cmd))

	cmd = e.Update(s, explorerMsg{kind: explorerFolderNav, nav: element.NavDown})
	e.Update(s, perform(t, cmd))
	assert.Equal(t, "docs", s.dir)
	assert.Equal(t, []string{"..", "guide.md"}, names(s.entries))

	// A stale listing for a folder already left is dropped.
	e.Update(s, explorerMsg{kind: explorerListed, dir: ".", entries: nil})
	assert.Equal(t, []string{"..", "guide.md"}, names(s.entries))

	cmd = e.Update(s, explorerMsg{kind: explorerFolderNav, nav: element.NavUp})
	e.Update(s, perform(t, cmd))
	assert.Equal(t, ".", s.dir)
	assert.Nil(t, e.Update(s, explorerMsg{kind: explorerFolderNav, nav: element.NavUp}), "already at the top")
}

func TestExplorerFindSelectsEntry(t *testing.T) {
	e := &Explorer{Root: testTree()}
	s, cmd := e.Init(nil)
	e.Update(s, perform(t, cmd))

	cmd = e.Update(s, explorerMsg{kind: explorerFind, text: "readme.md"})
	assert.Equal(t, command.SetFocus[explorerMsg]{ID: idFiles}, cmd)
	assert.Equal(t, 2, s.List(idFiles).Selected)
	assert.Nil(t, e.Update(s, explorerMsg{kind: explorerFind, text: "missing"}))
}

func TestExplorerRendersThroughOrchestrator(t *testing.T) {
	o := newOrchestrator(t, Specs(Options{Root: testTree(), RootName: "root"})...)
	require.NoError(t, o.Start(ExplorerID, nil))
	r := runtimeOf[*explorerState, explorerMsg](t, o, ExplorerID)
	pollUntil(t, o, func() bool { return !r.State().loading })

	out := screen(o)
	assert.Contains(t, out, "Folders")
	assert.Contains(t, out, "readme.md")
	assert.Contains(t, out, "root")
}

func TestJobsCompleteThroughLoading(t *testing.T) {
	o := newOrchestrator(t, apps.Spec{ID: JobsID, Factory: apps.Define[*jobsState, jobsMsg](&Jobs{Count: 3, Step: time.Millisecond})})
	require.NoError(t, o.Start(JobsID, nil))

	o.HandleEvent(terminal.Char('r'))
	assert.Equal(t, apps.LoadingAppID, o.Active())
	pollUntil(t, o, func() bool { return o.Active() == JobsID })

	s := runtimeOf[*jobsState, jobsMsg](t, o, JobsID).State()
	require.Len(t, s.results, 3)
	for i, res := range s.results {
		assert.Equal(t, "step "+string(rune('1'+i)), res.Name, "results arrive in task order")
		assert.False(t, res.Cancelled)
	}
	assert.False(t, s.running)
	assert.Contains(t, screen(o), "build #1 finished 3 steps")
}

func TestJobsCancelFromLoadingScreen(t *testing.T) {
	o := newOrchestrator(t, apps.Spec{ID: JobsID, Factory: apps.Define[*jobsState, jobsMsg](&Jobs{Count: 2, Step: time.Hour})})
	require.NoError(t, o.Start(JobsID, nil))

	o.HandleEvent(terminal.Char('r'))
	require.Equal(t, apps.LoadingAppID, o.Active())
	o.HandleEvent(terminal.Press(terminal.KeyEscape))
	pollUntil(t, o, func() bool { return o.Active() == JobsID })

	s := runtimeOf[*jobsState, jobsMsg](t, o, JobsID).State()
	require.Len(t, s.results, 2)
	for _, res := range s.results {
		assert.True(t, res.Cancelled)
	}
	assert.Equal(t, "build #1 cancelled", (&Jobs{}).summary(s))
}

func TestJobsIgnoresOtherOrigins(t *testing.T) {
	j := &Jobs{}
	s, _ := j.Init(nil)
	for _, sub := range j.Subscriptions(s) {
		if ps, ok := sub.(command.Subscribe[jobsMsg]); ok {
			_, ok := ps.Handler(command.TaskSetCancel{SetID: "x", Origin: "other"})
			assert.False(t, ok)
			_, ok = ps.Handler(command.TaskSetCancel{SetID: "x", Origin: JobsID})
			assert.True(t, ok)
		}
	}
}

func TestSettingsValidatesAndSaves(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	a := &Settings{Config: config.DefaultConfig(), Path: path}
	s, _ := a.Init(nil)
	assert.Equal(t, "16ms", s.Text(idFrame).Value)

	a.Update(s, settingsMsg{kind: settingsTheme, index: 3})
	a.Update(s, settingsMsg{kind: settingsFrame, text: "soon"})
	assert.Contains(t, s.invalid, idFrame)
	assert.Nil(t, a.Update(s, settingsMsg{kind: settingsSave}))
	assert.True(t, s.failed)

	a.Update(s, settingsMsg{kind: settingsFrame, text: "40ms"})
	assert.Equal(t, "unsaved changes", a.Status(s))
	done := perform(t, a.Update(s, settingsMsg{kind: settingsSave}))
	assert.Equal(t, "saving…", a.Status(s))

	cmd := a.Update(s, done)
	pub, ok := cmd.(command.Publish[settingsMsg])
	require.True(t, ok)
	assert.Equal(t, TopicSettingsSaved, pub.Topic)
	assert.False(t, s.changed)

	saved, err := config.LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "mono", saved.UI.Theme)
	assert.Equal(t, 40*time.Millisecond, saved.UI.FrameInterval)
}

func TestSettingsReloadKeepsUnsavedEdits(t *testing.T) {
	a := &Settings{Config: config.DefaultConfig()}
	s, _ := a.Init(nil)

	disk := config.DefaultConfig()
	disk.UI.Theme = "dark"
	a.Update(s, settingsMsg{kind: settingsReloaded, cfg: disk})
	assert.Equal(t, "dark", s.cfg.UI.Theme)
	assert.Equal(t, 1, s.Select(idTheme).Selected)

	a.Update(s, settingsMsg{kind: settingsScrollOff, text: "5"})
	disk.UI.Theme = "ansi"
	a.Update(s, settingsMsg{kind: settingsReloaded, cfg: disk})
	assert.Equal(t, "dark", s.cfg.UI.Theme)
	assert.Equal(t, 5, s.cfg.UI.ScrollOff)
	assert.True(t, strings.HasPrefix(s.notice, "config changed on disk"))
}

func TestSettingsWithoutPathRefusesToSave(t *testing.T) {
	a := &Settings{}
	s, _ := a.Init(nil)
	assert.Nil(t, a.Update(s, settingsMsg{kind: settingsSave}))
	assert.True(t, s.failed)
}

func TestSettingsRendersThroughOrchestrator(t *testing.T) {
	o := newOrchestrator(t, Specs(Options{})...)
	require.NoError(t, o.Start(SettingsID, nil))
	out := screen(o)
	assert.Contains(t, out, "Current configuration")
	assert.Contains(t, out, "keys.quit")
}
