package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"examsathi/internal/session"
	"examsathi/internal/ui"
)

var errAskFailed = errors.New("the question could not be answered")

func newAskCmd(opts *rootOptions) *cobra.Command {
	var sample int

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask one question and print the answer",
		Long:  "Ask one question and print the answer. Without arguments the question is read from stdin.",
		RunE: func(cmd *cobra.Command, args []string) error {
			question, err := readQuestion(cmd, args, sample)
			if err != nil {
				return err
			}

			ctrl, err := newController(cmd, opts)
			if err != nil {
				return err
			}
			ctrl.SetQuestion(question)
			ctrl.AskQuestion(cmd.Context())

			s := ctrl.Snapshot()
			fmt.Fprint(cmd.OutOrStdout(), ui.Outcome(s))
			if s.Error != "" {
				return errAskFailed
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&sample, "sample", "s", 0, "ask sample question n (see examsathi samples)")
	return cmd
}

func readQuestion(cmd *cobra.Command, args []string, sample int) (string, error) {
	if sample != 0 {
		q, ok := session.Sample(sample)
		if !ok {
			return "", fmt.Errorf("choose a sample between 1 and %d", len(session.SampleQuestions))
		}
		return q, nil
	}
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read question: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}
