package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"
)

type versionResult struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

func (r *versionResult) Text(w io.Writer) error {
	fmt.Fprintf(w, "panewatch version %s\n", r.Version)
	fmt.Fprintf(w, "  commit:    %s\n", r.Commit)
	fmt.Fprintf(w, "  built:     %s\n", r.BuildDate)
	fmt.Fprintf(w, "  go:        %s\n", r.GoVersion)
	_, err := fmt.Fprintf(w, "  platform:  %s\n", r.Platform)
	return err
}

func (r *versionResult) JSON() any { return r }

func newVersionCmd(o *rootOptions) *cobra.Command {
	var short bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if short && !o.jsonOutput {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), Version)
				return err
			}
			return o.formatter(cmd).Output(&versionResult{
				Version:   Version,
				Commit:    Commit,
				BuildDate: Date,
				GoVersion: runtime.Version(),
				Platform:  goPlatform(),
			})
		},
	}
	cmd.Flags().BoolVarP(&short, "short", "s", false, "print only the version number")
	return cmd
}
