// Package demo holds the applications the lattice binary ships with. Each
// one exercises a different part of the runtime and doubles as a worked
// example of the application contract.
package demo

import (
	"io/fs"

	"github.com/odvcencio/lattice/pkg/config"
	"github.com/odvcencio/lattice/pkg/ui/apps"
	"github.com/odvcencio/lattice/pkg/ui/command"
)

// Application ids.
const (
	CounterID  command.AppID = "counter"
	ExplorerID command.AppID = "explorer"
	JobsID     command.AppID = "jobs"
	SettingsID command.AppID = "settings"
)

// Options configures the demo applications.
type Options struct {
	// Root is the file tree the explorer browses.
	Root fs.FS
	// RootName labels Root in the explorer.
	RootName string
	// Config is edited by the settings application.
	Config *config.Config
	// ConfigPath is where settings are saved. Empty disables saving.
	ConfigPath string
	// Jobs is the number of tasks one jobs run starts.
	Jobs int
}

// Specs returns the demo registrations in launcher order.
func Specs(opts Options) []apps.Spec {
	if opts.Config == nil {
		opts.Config = config.DefaultConfig()
	}
	if opts.RootName == "" {
		opts.RootName = "."
	}
	return []apps.Spec{
		{ID: CounterID, Title: "Counter", Factory: apps.Define[*counterState, counterMsg](&Counter{})},
		{ID: ExplorerID, Title: "Explorer", Factory: apps.Define[*explorerState, explorerMsg](&Explorer{
			Root:      opts.Root,
			RootName:  opts.RootName,
			ScrollOff: opts.Config.UI.ScrollOff,
		})},
		{ID: JobsID, Title: "Jobs", Factory: apps.Define[*jobsState, jobsMsg](&Jobs{Count: opts.Jobs})},
		{
			ID:      SettingsID,
			Title:   "Settings",
			Factory: apps.Define[*settingsState, settingsMsg](&Settings{Config: opts.Config, Path: opts.ConfigPath}),
			Quit:    apps.QuitPolicy{Kind: apps.QuitOnExit},
		},
	}
}
