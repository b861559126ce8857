package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"bulwark/internal/protection"
)

func newPlanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "plan <chunks>",
		Short: "Preview the protection plan for a chunk count",
		Long: `Plan shows how an archive of the given chunk count would be protected:
the strategy tier, the par2 parameters, and the simulated group table. No
files are touched; the command works entirely from the count.`,
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			total, err := strconv.Atoi(args[0])
			if err != nil || total < 1 {
				return fmt.Errorf("chunk count must be a positive integer, got %q", args[0])
			}

			strategy := protection.SelectStrategy(total)
			spans := protection.PartitionSpans(total, strategy)

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			for _, line := range renderSectionHeader("Protection Plan", colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out, renderStatusLine("Chunks", statusInfo, strconv.Itoa(total), colorize))
			fmt.Fprintln(out, renderStatusLine("Tier", statusInfo, strategy.Tier.String(), colorize))
			fmt.Fprintln(out, renderStatusLine("Partitioning", statusInfo, partitioningLabel(strategy), colorize))
			fmt.Fprintln(out, renderStatusLine("Group params", statusInfo, strategy.Params.String(), colorize))
			overall := "none"
			if strategy.BuildOverallLayer {
				overall = strategy.OverallParams.String()
			}
			fmt.Fprintln(out, renderStatusLine("Overall layer", statusInfo, overall, colorize))
			fmt.Fprintln(out)

			rows := make([][]string, 0, len(spans))
			for i, span := range spans {
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					fmt.Sprintf("%04d-%04d", span.Start, span.End),
					strconv.Itoa(span.Len()),
				})
			}
			table := renderTable(
				[]string{"Group", "Range", "Chunks"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignRight},
			)
			fmt.Fprintln(out, table)
			return nil
		},
	}
}

func partitioningLabel(strategy protection.Strategy) string {
	switch {
	case strategy.Direct:
		return "single direct group"
	case strategy.UseSlidingWindow:
		return fmt.Sprintf("sliding window %d/%d", strategy.WindowSize, strategy.WindowSlide)
	default:
		return fmt.Sprintf("fixed buckets of %d", strategy.GroupSize)
	}
}
