package main

import (
	"strings"

	"github.com/spf13/cobra"

	"bulwark/internal/runner"
)

func newProtectCommand(ctx *commandContext) *cobra.Command {
	var only string

	cmd := &cobra.Command{
		Use:   "protect <increment>",
		Short: "Rebuild recovery layers for consolidated monthly archives",
		Long: `Protect discovers the volume chunks of the given increment tag (YYMMDD)
under each monthly folder's destination, consolidates them, and builds par2
recovery sets per group plus an archive-wide layer. Archives already
consolidated by an earlier run are picked up from the working subdirectory,
so a failed or interrupted protection phase can be rerun on its own.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeRun(cmd, ctx, runner.Options{
				Task:      runner.TaskProtect,
				Increment: strings.TrimSpace(args[0]),
				Only:      only,
			})
		},
	}

	cmd.Flags().StringVar(&only, "only", "", "Restrict the rebuild to a single archive name")
	return cmd
}
