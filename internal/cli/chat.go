package cli

import (
	"github.com/spf13/cobra"

	"examsathi/internal/ui"
)

func newChatCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive question session (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, opts)
		},
	}
}

func runChat(cmd *cobra.Command, opts *rootOptions) error {
	ctrl, err := newController(cmd, opts)
	if err != nil {
		return err
	}

	term := ui.NewTerminal(ctrl, cmd.InOrStdin(), cmd.OutOrStdout())
	return term.Run(cmd.Context())
}
