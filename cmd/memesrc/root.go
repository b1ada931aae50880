package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/memesrc/memesrc-functions/internal/logging"
)

type commandContext struct {
	verbose bool
	logger  *zap.Logger
}

func (c *commandContext) log() *zap.Logger {
	if c.logger == nil {
		c.logger = logging.NewConsole(c.verbose)
	}
	return c.logger
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "memesrc",
		Short:         "memeSRC function tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&ctx.verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(newLocateCommand())
	rootCmd.AddCommand(newExtractCommand(ctx))
	rootCmd.AddCommand(newTallyCommand())

	return rootCmd
}
