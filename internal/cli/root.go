// Package cli implements the panewatch command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"pkt.systems/pslog"

	"github.com/theirongolddev/panewatch/internal/config"
	"github.com/theirongolddev/panewatch/internal/output"
)

// Build information, set via ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// ExitError ends the process with Code. Reason, when set, is printed to
// stderr.
type ExitError struct {
	Code   int
	Reason string
}

func (e *ExitError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

type rootOptions struct {
	configPath string
	jsonOutput bool

	interval   int
	maxHistory int
	display    string
	beep       bool
	errExit    bool
	chgExit    bool
	noWrap     bool
	zen        bool
	verbose    int
	session    string
	latest     bool
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	cmd, _ := newRootCmd()
	return cmd
}

func newRootCmd() (*cobra.Command, *rootOptions) {
	o := &rootOptions{}
	root := &cobra.Command{
		Use:   "panewatch [flags] [COMMAND...]",
		Short: "Run shell commands on an interval in a tiled terminal dashboard",
		Long: `panewatch runs shell commands periodically and shows their output in
panes you can split, resize and navigate. Arguments after the flags become
the command of the first pane.

Examples:
  panewatch -n 2 'df -h'            # watch disk usage every 2 seconds
  panewatch -d diff-line kubectl get pods
  panewatch --latest                # reopen the last saved session`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(cmd, o, strings.Join(args, " "))
		},
	}
	root.Flags().SetInterspersed(false)

	root.PersistentFlags().StringVar(&o.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	root.PersistentFlags().BoolVar(&o.jsonOutput, "json", false, "print results as JSON")

	f := root.Flags()
	f.IntVarP(&o.interval, "interval", "n", config.DefaultInterval, "seconds between runs")
	f.BoolVarP(&o.beep, "beep", "b", false, "ring the bell when a command exits non-zero")
	f.BoolVarP(&o.errExit, "err-exit", "e", false, "quit when a command exits non-zero")
	f.BoolVarP(&o.chgExit, "chg-exit", "g", false, "quit when the output of a command changes")
	f.IntVarP(&o.maxHistory, "max-history", "m", config.DefaultMaxHistory, "outputs kept per pane")
	f.BoolVarP(&o.noWrap, "no-wrap", "w", false, "truncate long lines instead of wrapping")
	f.BoolVarP(&o.zen, "zen", "z", false, "hide pane borders and the status line")
	f.StringVarP(&o.display, "display", "d", config.DefaultDisplay, "display mode for new panes")
	f.CountVarP(&o.verbose, "verbose", "v", "raise log verbosity (repeatable)")
	f.StringVar(&o.session, "session", "", "load a saved session on start")
	f.BoolVar(&o.latest, "latest", false, "load the newest saved session on start")
	root.MarkFlagsMutuallyExclusive("session", "latest")

	root.AddCommand(newSessionsCmd(o))
	root.AddCommand(newConfigCmd(o))
	root.AddCommand(newVersionCmd(o))
	return root, o
}

// Execute runs the command line and returns the process exit status.
func Execute(ctx context.Context, args []string) int {
	return execute(ctx, args, os.Stdin, os.Stdout, os.Stderr)
}

func execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root, o := newRootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var exit *ExitError
	if errors.As(err, &exit) {
		if exit.Reason != "" {
			fmt.Fprintln(root.ErrOrStderr(), exit.Reason)
		}
		return exit.Code
	}

	pslog.Ctx(ctx).Debug("command failed", "err", err)
	if o.jsonOutput {
		output.PrintError(root.OutOrStdout(), err, true)
	} else {
		output.PrintError(root.ErrOrStderr(), err, false)
	}
	return 1
}

// flags returns the command-line overrides the user actually gave.
func (o *rootOptions) flags(cmd *cobra.Command) config.Flags {
	f := config.Flags{
		Beep:    o.beep,
		ErrExit: o.errExit,
		ChgExit: o.chgExit,
		NoWrap:  o.noWrap,
		Zen:     o.zen,
		Verbose: o.verbose,
	}
	changed := cmd.Flags().Changed
	if changed("interval") {
		f.Interval = &o.interval
	}
	if changed("max-history") {
		f.MaxHistory = &o.maxHistory
	}
	if changed("display") {
		f.Display = &o.display
	}
	return f
}

// configFile is the config path in effect.
func (o *rootOptions) configFile() string {
	if o.configPath != "" {
		return config.ExpandHome(o.configPath)
	}
	return config.DefaultPath()
}

// loadConfig reads the config file, applies the flags given on cmd and
// validates the result.
func (o *rootOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(o.configFile())
	if err != nil {
		return nil, output.NewCLIError("failed to load config").
			WithCause(err).
			WithHint(output.HintConfigInvalid)
	}
	if cmd != nil {
		cfg = config.MergeFlags(cfg, o.flags(cmd))
	}
	if err := cfg.Validate(); err != nil {
		return nil, output.NewCLIError("invalid configuration").
			WithCause(err).
			WithHint(output.HintConfigInvalid)
	}
	return cfg, nil
}

func (o *rootOptions) formatter(cmd *cobra.Command) *output.Formatter {
	return output.New(
		output.WithFormat(output.DetectFormat(o.jsonOutput)),
		output.WithWriter(cmd.OutOrStdout()),
	)
}

func goPlatform() string {
	return fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)
}
