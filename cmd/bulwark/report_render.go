package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"bulwark/internal/runner"
)

// renderRunReport prints the human-readable summary a run ends with. It is
// rendering only; the command's exit status comes from the run error itself.
func renderRunReport(out io.Writer, report *runner.RunReport) {
	if report == nil {
		return
	}
	colorize := shouldColorize(out)

	for _, line := range renderSectionHeader("Run Summary", colorize) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out, renderStatusLine("Policy", statusInfo, report.Policy, colorize))
	fmt.Fprintln(out, renderStatusLine("Increment", statusInfo, report.Increment, colorize))
	fmt.Fprintln(out, renderStatusLine("Duration", statusInfo, reportDuration(report.Duration), colorize))

	outcomeKind := statusOK
	outcomeText := fmt.Sprintf("%d processed, %d failed", report.Processed(), report.Failed())
	switch {
	case report.Err != nil:
		outcomeKind = statusError
		outcomeText = report.Err.Error()
	case report.Failed() > 0:
		outcomeKind = statusWarn
	}
	fmt.Fprintln(out, renderStatusLine("Outcome", outcomeKind, outcomeText, colorize))

	if len(report.Folders) > 0 {
		fmt.Fprintln(out)
		for _, line := range renderSectionHeader("Archives", colorize) {
			fmt.Fprintln(out, line)
		}
		rows := make([][]string, 0, len(report.Folders))
		for _, folder := range report.Folders {
			rows = append(rows, []string{
				folder.Folder,
				folder.Archive,
				reportDuration(folder.Duration),
				folderStatus(folder),
			})
		}
		table := renderTable(
			[]string{"Folder", "Archive", "Duration", "Status"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
		)
		fmt.Fprintln(out, table)
	}

	if len(report.Archives) > 0 {
		fmt.Fprintln(out)
		for _, line := range renderSectionHeader("Protection", colorize) {
			fmt.Fprintln(out, line)
		}
		rows := make([][]string, 0, len(report.Archives))
		for _, outcome := range report.Archives {
			rows = append(rows, protectionRow(outcome))
		}
		table := renderTable(
			[]string{"Archive", "Chunks", "Groups", "Failed", "Duration", "Status"},
			rows,
			[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft},
		)
		fmt.Fprintln(out, table)
	}
}

func folderStatus(folder runner.FolderResult) string {
	switch {
	case folder.Skipped:
		return "skipped"
	case folder.Err != nil:
		return "failed"
	default:
		return "ok"
	}
}

func protectionRow(outcome runner.ArchiveOutcome) []string {
	report := outcome.Report
	if report == nil {
		return []string{"", "", "", "", "", "failed"}
	}

	groups := len(report.Groups)
	if report.Overall != nil {
		groups++
	}
	status := "ok"
	switch {
	case outcome.Err != nil:
		status = "failed"
	case report.Skipped():
		status = "skipped"
	case report.FailedGroups() > 0:
		status = "failed"
	}
	return []string{
		report.Archive,
		strconv.Itoa(report.ChunkCount),
		strconv.Itoa(groups),
		strconv.Itoa(report.FailedGroups()),
		reportDuration(report.Duration),
		status,
	}
}

func reportDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d <= 0 {
		return "0s"
	}
	return d.String()
}
