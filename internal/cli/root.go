package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"examsathi/internal/apiclient"
	"examsathi/internal/config"
	"examsathi/internal/logger"
	"examsathi/internal/session"
)

// Version is set at build time with -ldflags "-X examsathi/internal/cli.Version=...".
var Version = "dev"

type rootOptions struct {
	configPath string
	apiURL     string
	timeout    time.Duration
	verbose    bool
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "examsathi",
		Short:         "Ask exam preparation questions to the ExamSathi AI server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ~/.config/examsathi/config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.apiURL, "api-url", "", "inference server base URL")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 0, "request timeout, 0 waits indefinitely")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging to stderr")

	cmd.AddCommand(newChatCmd(opts))
	cmd.AddCommand(newAskCmd(opts))
	cmd.AddCommand(newHealthCmd(opts))
	cmd.AddCommand(newSamplesCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	logger.Sync()

	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// resolveSettings merges the config file, environment and flags. Flags win.
func resolveSettings(cmd *cobra.Command, opts *rootOptions) (*config.ClientConfig, error) {
	cfg, err := config.LoadClient(opts.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("api-url") {
		cfg.APIURL = opts.apiURL
	}
	if flags.Changed("timeout") {
		if opts.timeout < 0 {
			return nil, fmt.Errorf("--timeout must not be negative")
		}
		cfg.RequestTimeout = opts.timeout
	}
	if opts.verbose {
		cfg.LogLevel = "debug"
	}

	if err := logger.Init("development", cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	return cfg, nil
}

func newController(cmd *cobra.Command, opts *rootOptions) (*session.Controller, error) {
	cfg, err := resolveSettings(cmd, opts)
	if err != nil {
		return nil, err
	}
	return session.NewController(apiclient.NewClient(cfg.RequestTimeout), cfg.APIURL), nil
}
