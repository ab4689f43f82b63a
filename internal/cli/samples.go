package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"examsathi/internal/ui"
)

func newSamplesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "samples",
		Short: "List the sample questions",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), ui.Samples())
		},
	}
}
