package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	verbose  bool
	manifest string
	logger   *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{logger: slog.New(slog.DiscardHandler)}

	cmd := &cobra.Command{
		Use:   "presenter-cli",
		Short: "Render records through presentation decorators",
		Long: `presenter-cli loads decorator manifests (YAML or JSON), decorates records
read from data files and prints the composed JSON.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if opts.verbose {
				level = slog.LevelDebug
			}
			opts.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			slog.SetDefault(opts.logger)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringVarP(&opts.manifest, "manifest", "m", "presenters", "Manifest file or directory")

	cmd.AddCommand(
		newRenderCmd(opts),
		newDecoratorsCmd(opts),
		newSchemaCmd(opts),
	)
	return cmd
}
