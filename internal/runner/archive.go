package runner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"bulwark/internal/config"
	"bulwark/internal/logging"
	"bulwark/internal/services"
	"bulwark/internal/services/sevenzip"
)

// runArchiveTask snapshots tracked repositories, then compresses each policy
// folder into an encrypted split archive. A folder failure aborts the run;
// the next scheduled run picks the remaining folders up once the fault is
// resolved.
func (r *Runner) runArchiveTask(ctx context.Context, logger *slog.Logger, policy config.Policy, opts Options, report *RunReport) error {
	if len(policy.Folders) == 0 {
		logger.Info("no folders configured for policy",
			logging.String(logging.FieldEventType, "folders_missing"),
		)
		return nil
	}

	for _, position := range opts.Skip {
		if position < 1 || position > len(policy.Folders) {
			return services.Wrap(services.ErrValidation, "runner", "validate skip positions",
				fmt.Sprintf("position %d out of range 1..%d", position, len(policy.Folders)), nil)
		}
	}

	if err := r.commitRepos(ctx, logger); err != nil {
		return err
	}

	password, err := r.archivePassword()
	if err != nil {
		return err
	}

	for index, folder := range policy.Folders {
		if err := ctx.Err(); err != nil {
			return services.Wrap(services.ErrTimeout, "runner", "archive folders", "run interrupted", err)
		}
		if slices.Contains(opts.Skip, index+1) {
			logger.Info("folder skipped",
				logging.String("folder", folder.Name),
				logging.Int("position", index+1),
				logging.String(logging.FieldEventType, "folder_skipped"),
			)
			report.Folders = append(report.Folders, FolderResult{Folder: folder.Name, Skipped: true})
			continue
		}
		result := r.archiveFolder(ctx, logger, policy, folder, report.Increment, password)
		report.Folders = append(report.Folders, result)
		if result.Err != nil {
			r.notifyError(ctx, logger, result.Err, "archiving "+folder.Name)
			return result.Err
		}
	}

	if r.shouldProtect(report.Policy) {
		return r.runProtectTask(ctx, logger, policy.Folders, "", report)
	}
	return nil
}

// shouldProtect reports whether the archive run chains into recovery builds.
// Only monthly FULL archives get a protection layer.
func (r *Runner) shouldProtect(policyName string) bool {
	return r.cfg.Protection.Enabled && policyName == "monthly"
}

// commitRepos commits pending changes in every tracked repository so the
// archives capture a clean snapshot. A commit failure aborts the run before
// any archive work starts.
func (r *Runner) commitRepos(ctx context.Context, logger *slog.Logger) error {
	for _, repo := range r.cfg.Git.Repos {
		expanded, err := config.ExpandPath(repo)
		if err != nil {
			return services.Wrap(services.ErrConfiguration, "runner", "resolve repository path", repo, err)
		}
		committed, err := r.committer.CommitAll(ctx, expanded)
		if err != nil {
			return services.Wrap(services.ErrExternalTool, "runner", "commit repository", expanded, err)
		}
		if committed {
			logger.Info("repository committed",
				logging.String("repo", expanded),
				logging.String(logging.FieldEventType, "repo_committed"),
			)
		} else {
			logger.Debug("repository clean", logging.String("repo", expanded))
		}
	}
	return nil
}

func (r *Runner) archiveFolder(ctx context.Context, logger *slog.Logger, policy config.Policy, folder config.Folder, increment, password string) FolderResult {
	started := time.Now()
	result := FolderResult{Folder: folder.Name}

	source, err := config.ExpandPath(folder.Source)
	if err == nil {
		_, err = os.Stat(source)
	}
	if err != nil {
		result.Err = services.Wrap(services.ErrConfiguration, "runner", "resolve source",
			fmt.Sprintf("folder %q source %q is not accessible", folder.Name, folder.Source), err)
		result.Duration = time.Since(started)
		return result
	}

	destDir := r.cfg.DestPath(folder)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		result.Err = services.Wrap(services.ErrTransient, "runner", "prepare destination", destDir, err)
		result.Duration = time.Since(started)
		return result
	}

	archiveName := fmt.Sprintf("%s %s %s.7z", increment, policy.Type, folder.Name)
	result.Archive = archiveName
	destination := filepath.Join(destDir, archiveName)

	logger.Info("archive started",
		logging.String("folder", folder.Name),
		logging.String(logging.FieldArchive, archiveName),
		logging.String(logging.FieldEventType, "archive_started"),
	)

	err = r.archiver.Create(ctx, sevenzip.CreateRequest{
		Destination:      destination,
		Source:           source,
		Password:         password,
		CompressionLevel: r.cfg.Archive.CompressionLevel,
		VolumeSize:       r.cfg.Archive.VolumeSize,
		Exclude:          folder.Exclude,
	})
	if err != nil {
		result.Err = services.Wrap(services.ErrExternalTool, "runner", "create archive", archiveName, err)
		result.Duration = time.Since(started)
		logging.ErrorWithContext(logger, "archive failed", "archive_failed",
			logging.String("folder", folder.Name),
			logging.String(logging.FieldArchive, archiveName),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "inspect the 7z output carried in the error"),
			logging.String(logging.FieldImpact, "run aborted; remaining folders not archived"),
		)
		return result
	}

	if r.cfg.Archive.Verify {
		if err := r.archiver.Verify(ctx, destination+sevenzip.FirstVolumeSuffix, password); err != nil {
			result.Err = services.Wrap(services.ErrExternalTool, "runner", "verify archive", archiveName, err)
			result.Duration = time.Since(started)
			logging.ErrorWithContext(logger, "archive verification failed", "verify_failed",
				logging.String("folder", folder.Name),
				logging.String(logging.FieldArchive, archiveName),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "the archive may be corrupt; recheck the volume before rerunning"),
				logging.String(logging.FieldImpact, "run aborted; remaining folders not archived"),
			)
			return result
		}
	}

	result.Duration = time.Since(started)
	logger.Info("archive completed",
		logging.String("folder", folder.Name),
		logging.String(logging.FieldArchive, archiveName),
		logging.Duration("duration", result.Duration),
		logging.String(logging.FieldEventType, "archive_completed"),
	)
	return result
}
