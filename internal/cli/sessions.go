package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/panewatch/internal/output"
	"github.com/theirongolddev/panewatch/internal/session"
)

func newSessionsCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sessions",
		Aliases: []string{"session"},
		Short:   "Manage saved dashboard sessions",
		Long: `List, inspect and delete sessions saved from the dashboard.

Sessions are saved with s (or S to pick a name) and reopened with l, L,
--session NAME or --latest.`,
	}
	cmd.AddCommand(newSessionsListCmd(o))
	cmd.AddCommand(newSessionsShowCmd(o))
	cmd.AddCommand(newSessionsDeleteCmd(o))
	return cmd
}

func (o *rootOptions) store() (*session.Store, error) {
	cfg, err := o.loadConfig(nil)
	if err != nil {
		return nil, err
	}
	return session.NewStore(cfg.SessionsDir), nil
}

// SessionListResult is the output of sessions list.
type SessionListResult struct {
	Sessions []session.SavedSession `json:"sessions"`
	Count    int                    `json:"count"`
}

func (r *SessionListResult) Text(w io.Writer) error {
	if r.Count == 0 {
		fmt.Fprintln(w, "No saved sessions")
		fmt.Fprintf(w, "  Hint: %s\n", output.HintNoSessions)
		return nil
	}
	tbl := output.NewTable("NAME", "SAVED", "PANES", "COMMANDS")
	for _, s := range r.Sessions {
		tbl.AddRow(s.Name, s.SavedAt.Local().Format(time.DateTime), fmt.Sprint(s.Panes), fmt.Sprint(s.Commands))
	}
	return tbl.Render(w)
}

func (r *SessionListResult) JSON() any { return r }

func newSessionsListCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved sessions, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := o.store()
			if err != nil {
				return err
			}
			sessions, err := store.List()
			if err != nil {
				return err
			}
			if sessions == nil {
				sessions = []session.SavedSession{}
			}
			return o.formatter(cmd).Output(&SessionListResult{Sessions: sessions, Count: len(sessions)})
		},
	}
}

// SessionShowResult is the output of sessions show.
type SessionShowResult struct {
	State *session.SessionState `json:"session"`
	Path  string                `json:"path"`
}

func (r *SessionShowResult) Text(w io.Writer) error {
	st := r.State
	fmt.Fprintf(w, "Session: %s\n", st.Name)
	fmt.Fprintf(w, "  ID:       %s\n", st.ID)
	fmt.Fprintf(w, "  Saved:    %s\n", st.SavedAt.Local().Format(time.DateTime))
	fmt.Fprintf(w, "  File:     %s\n", r.Path)
	fmt.Fprintf(w, "  Commands: %s\n", output.CountStr(len(st.Commands), "command", "commands"))
	if len(st.Commands) == 0 {
		return nil
	}
	fmt.Fprintln(w)
	tbl := output.NewTable("PANE", "STATE", "EVERY", "DISPLAY", "COMMAND")
	for _, c := range st.Commands {
		every := fmt.Sprintf("%ds", c.Interval)
		if c.IntervalMS > 0 {
			every = (time.Duration(c.IntervalMS) * time.Millisecond).String()
		}
		tbl.AddRow(fmt.Sprint(c.Pane), c.State.Label(), every, c.Display, c.Exec)
	}
	return tbl.Render(w)
}

func (r *SessionShowResult) JSON() any { return r }

func newSessionsShowCmd(o *rootOptions) *cobra.Command {
	var asYAML bool
	cmd := &cobra.Command{
		Use:   "show NAME",
		Short: "Show a saved session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := o.store()
			if err != nil {
				return err
			}
			st, err := store.Load(args[0])
			if err != nil {
				if errors.Is(err, session.ErrNotFound) {
					return output.SessionNotFoundError(args[0], err)
				}
				return err
			}
			if asYAML {
				return session.ExportYAML(cmd.OutOrStdout(), st)
			}
			return o.formatter(cmd).Output(&SessionShowResult{State: st, Path: store.Path(args[0])})
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print the session as YAML")
	return cmd
}

// SessionDeleteResult is the output of sessions delete.
type SessionDeleteResult struct {
	Name    string `json:"name"`
	Deleted bool   `json:"deleted"`
}

func (r *SessionDeleteResult) Text(w io.Writer) error {
	_, err := fmt.Fprintf(w, "Deleted session %q\n", r.Name)
	return err
}

func (r *SessionDeleteResult) JSON() any { return r }

func newSessionsDeleteCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "delete NAME",
		Aliases: []string{"rm"},
		Short:   "Delete a saved session",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := o.store()
			if err != nil {
				return err
			}
			if err := store.Delete(args[0]); err != nil {
				if errors.Is(err, session.ErrNotFound) {
					return output.SessionNotFoundError(args[0], err)
				}
				return err
			}
			return o.formatter(cmd).Output(&SessionDeleteResult{Name: args[0], Deleted: true})
		},
	}
}
