package runner

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"bulwark/internal/config"
	"bulwark/internal/logging"
	"bulwark/internal/notifications"
	"bulwark/internal/protection"
	"bulwark/internal/services"
)

// runProtectTask builds recovery layers for each folder's consolidated
// monthly archive. Unlike the archive task, one archive's failure does not
// abort the others; every archive gets its chance and the report carries
// the failures.
func (r *Runner) runProtectTask(ctx context.Context, logger *slog.Logger, folders []config.Folder, only string, report *RunReport) error {
	if len(folders) == 0 {
		logger.Info("no folders configured for protection",
			logging.String(logging.FieldEventType, "folders_missing"),
		)
		return nil
	}

	only = strings.TrimSpace(only)
	matched := false
	for _, folder := range folders {
		if only != "" && folder.Name != only {
			continue
		}
		matched = true

		if err := ctx.Err(); err != nil {
			return services.Wrap(services.ErrTimeout, "runner", "protect archives", "run interrupted", err)
		}

		baseDir := r.protectBase(r.cfg.DestPath(folder), folder.Name, report.Increment)
		archiveReport, err := r.processor.ProcessArchive(ctx, baseDir, folder.Name, report.Increment)
		report.Archives = append(report.Archives, ArchiveOutcome{Report: archiveReport, Err: err})
		if err != nil {
			r.notifyError(ctx, logger, err, "protecting "+folder.Name)
			continue
		}
		if archiveReport.Skipped() {
			continue
		}

		groups := len(archiveReport.Groups)
		if archiveReport.Overall != nil {
			groups++
		}
		r.publish(ctx, logger, notifications.EventProtectionCompleted, notifications.Payload{
			"archive": folder.Name,
			"groups":  strconv.Itoa(groups),
			"chunks":  strconv.Itoa(archiveReport.ChunkCount),
			"failed":  strconv.Itoa(archiveReport.FailedGroups()),
		})
	}

	if only != "" && !matched {
		return services.Wrap(services.ErrValidation, "runner", "select archive",
			fmt.Sprintf("no monthly folder named %q", only), nil)
	}
	return nil
}

// protectBase picks the directory chunks are discovered in. Fresh archives
// sit in the destination bucket; archives from earlier runs were already
// consolidated into the working subdirectory, so re-protection looks there
// when the bucket itself holds no matching chunks.
func (r *Runner) protectBase(destDir, archive, increment string) string {
	if chunks, err := protection.DiscoverChunks(destDir, archive, increment); err == nil && len(chunks) > 0 {
		return destDir
	}
	name := strings.TrimSpace(r.cfg.Protection.ConsolidationDir)
	if name == "" {
		name = protection.DefaultConsolidationDir
	}
	consolidated := filepath.Join(destDir, name)
	if chunks, err := protection.DiscoverChunks(consolidated, archive, increment); err == nil && len(chunks) > 0 {
		return consolidated
	}
	return destDir
}
