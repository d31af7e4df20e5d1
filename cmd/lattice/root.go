package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/odvcencio/lattice/pkg/ui/apps"
	"github.com/odvcencio/lattice/pkg/ui/demo"
)

// Version information, set via ldflags.
var (
	version   = "0.1.0-dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func newRootCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:          "lattice",
		Short:        "Reactive terminal applications with a shared orchestrator",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start on the counter
  lattice

  # Browse a directory with the explorer
  lattice --app explorer --root ~/src

  # Mirror published events to NATS
  lattice --bus --metrics-addr 127.0.0.1:9464
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}
	cmd.SilenceErrors = true

	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", "", "config file (default: ~/.lattice/config.yaml over ./.lattice/config.yaml)")
	f.StringVar(&opts.app, "app", string(demo.CounterID), "application to start on")
	f.StringVar(&opts.root, "root", ".", "directory the explorer browses")
	f.StringVar(&opts.theme, "theme", "", "theme override (auto, dark, ansi, mono)")
	f.StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	f.IntVar(&opts.jobs, "jobs", demo.DefaultJobs, "tasks started by one jobs run")
	f.BoolVar(&opts.bus, "bus", false, "mirror published events to the configured NATS server")
	f.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	f.BoolVar(&opts.trace, "trace", false, "export navigation and task spans to a file next to the log")

	cmd.AddCommand(newAppsCmd())
	cmd.AddCommand(newConfigCmd(opts))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func newAppsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apps",
		Short: "List the bundled applications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printApps(cmd.OutOrStdout(), demo.Specs(demo.Options{}))
		},
	}
}

func printApps(w io.Writer, specs []apps.Spec) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tQUIT POLICY")
	for _, sp := range specs {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", sp.ID, sp.Title, sp.Quit.Kind)
	}
	return tw.Flush()
}

func newConfigCmd(opts *runOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(opts)
			if err != nil {
				return withExitCode(err, exitConfig)
			}
			data, err := cfg.Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVar(&opts.configPath, "config", "", "config file to read instead of the default locations")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "lattice %s (commit %s, built %s)\n", version, commit, buildDate)
		},
	}
}
