package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"examsathi/internal/session"
	"examsathi/internal/ui"
)

var errUnhealthy = errors.New("server is not healthy")

func newHealthCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check whether the inference server is up",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := newController(cmd, opts)
			if err != nil {
				return err
			}
			ctrl.CheckHealth(cmd.Context())

			s := ctrl.Snapshot()
			out := cmd.OutOrStdout()
			fmt.Fprint(out, ui.StatusLine(s))
			fmt.Fprint(out, ui.ErrorPanel(s))
			if s.ServerStatus != session.StatusHealthy {
				return errUnhealthy
			}
			return nil
		},
	}
}
