package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/panewatch/internal/config"
	"github.com/theirongolddev/panewatch/internal/output"
	"github.com/theirongolddev/panewatch/internal/tui/dashboard"
)

func newConfigCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and create the configuration file",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.loadConfig(nil)
			if err != nil {
				return err
			}
			f := o.formatter(cmd)
			if f.IsJSON() {
				return f.JSON(cfg)
			}
			return config.Print(cfg, cmd.OutOrStdout())
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.CreateDefault(o.configFile())
			if err != nil {
				return output.NewCLIError("failed to create config").WithCause(err)
			}
			return o.formatter(cmd).Output(&configPathResult{Path: path, Created: true})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the configuration file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.formatter(cmd).Output(&configPathResult{Path: o.configFile()})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "keys",
		Short: "List rebindable actions and their keys",
		Long: `List every dashboard action with the keys bound to it. Rebind actions
in the [keys] table of the config file, for example:

  [keys]
  kill = ["x", "ctrl+w"]`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.loadConfig(nil)
			if err != nil {
				return err
			}
			km, err := dashboard.NewKeyMap(cfg.Keys)
			if err != nil {
				return output.NewCLIError("invalid key bindings").
					WithCause(err).
					WithHint(output.HintConfigInvalid)
			}
			res := &keysResult{}
			for _, name := range dashboard.ActionNames() {
				b, _ := km.Binding(name)
				res.Actions = append(res.Actions, keyAction{
					Action: name,
					Keys:   b.Keys(),
					Help:   b.Help().Desc,
				})
			}
			return o.formatter(cmd).Output(res)
		},
	})
	return cmd
}

type configPathResult struct {
	Path    string `json:"path"`
	Created bool   `json:"created,omitempty"`
}

func (r *configPathResult) Text(w io.Writer) error {
	if r.Created {
		_, err := fmt.Fprintf(w, "Created %s\n", r.Path)
		return err
	}
	_, err := fmt.Fprintln(w, r.Path)
	return err
}

func (r *configPathResult) JSON() any { return r }

type keyAction struct {
	Action string   `json:"action"`
	Keys   []string `json:"keys"`
	Help   string   `json:"help"`
}

type keysResult struct {
	Actions []keyAction `json:"actions"`
}

func (r *keysResult) Text(w io.Writer) error {
	tbl := output.NewTable("ACTION", "KEYS", "DESCRIPTION")
	for _, a := range r.Actions {
		tbl.AddRow(a.Action, strings.Join(a.Keys, " "), a.Help)
	}
	return tbl.Render(w)
}

func (r *keysResult) JSON() any { return r }
