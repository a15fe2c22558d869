package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

type rootFlags struct {
	config  string
	verbose bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           "demandforecaster",
		Short:         "Forecast monthly product demand from sales transactions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if flags.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
	}
	root.PersistentFlags().StringVarP(&flags.config, "config", "c", "", "yaml config file")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		forecastCmd(flags),
		periodCmd(flags),
	)
	return root
}

// Execute runs the command line with the given arguments
func Execute(ctx context.Context, args []string) error {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetErr(os.Stderr)
	return root.ExecuteContext(ctx)
}
