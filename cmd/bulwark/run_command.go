package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"bulwark/internal/logging"
	"bulwark/internal/runner"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var skip []int
	var increment string

	cmd := &cobra.Command{
		Use:   "run <daily|weekly|monthly>",
		Short: "Execute a backup run for the named policy",
		Long: `Run commits tracked repositories, compresses each of the policy's folders
into an encrypted split archive on the backup volume, and verifies the
result. Monthly runs additionally build par2 recovery layers over the
consolidated archives.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"daily", "weekly", "monthly"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeRun(cmd, ctx, runner.Options{
				Task:      runner.TaskArchive,
				Policy:    strings.ToLower(strings.TrimSpace(args[0])),
				Skip:      skip,
				Increment: increment,
			})
		},
	}

	cmd.Flags().IntSliceVar(&skip, "skip", nil, "1-based folder positions to leave out of this run")
	cmd.Flags().StringVar(&increment, "increment", "", "Date tag (YYMMDD) stamped into archive names; defaults to today")
	return cmd
}

// executeRun wires a configured runner to the terminal: structured logs go
// to the configured outputs, the report is rendered to stdout, and SIGINT or
// SIGTERM cancels the run between units of work.
func executeRun(cmd *cobra.Command, ctx *commandContext, opts runner.Options) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	report, runErr := runner.New(cfg, logger).Run(signalCtx, opts)
	renderRunReport(cmd.OutOrStdout(), report)
	return runErr
}
