package protection

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"bulwark/internal/logging"
	"bulwark/internal/services"
	"bulwark/internal/services/par2"
)

// GroupOutcome records the result of one recovery set build.
type GroupOutcome struct {
	Name      string
	Chunks    int
	Params    par2.Params
	Artifacts int
	Duration  time.Duration
	Err       error
}

// Failed reports whether the build ended in an error.
func (o GroupOutcome) Failed() bool { return o.Err != nil }

// Builder drives par2 for staged groups and the archive-wide overall layer.
type Builder struct {
	creator par2.Creator
	logger  *slog.Logger
}

// NewBuilder constructs a Builder. A nil creator falls back to the real
// par2 CLI.
func NewBuilder(creator par2.Creator, logger *slog.Logger) *Builder {
	if creator == nil {
		creator = par2.NewCLI()
	}
	return &Builder{
		creator: creator,
		logger:  logging.NewComponentLogger(logger, "protection"),
	}
}

// BuildGroupRecovery runs par2 create inside dir for one group. The
// invocation's working directory is set explicitly; nothing here changes the
// process directory. Success is exit zero plus at least one recovery file
// with the group's base name. Exit zero with no recovery files is a warning
// outcome, not a failure: the tool's behaviour there is ambiguous and later
// groups must still run. A non-zero exit marks only this group failed.
func (b *Builder) BuildGroupRecovery(ctx context.Context, dir string, group Group, params par2.Params) GroupOutcome {
	outcome := GroupOutcome{Name: group.Name, Chunks: len(group.Chunks), Params: params}

	files := make([]string, 0, len(group.Chunks))
	for _, chunk := range group.Chunks {
		files = append(files, chunk.Name)
	}

	b.logger.Info("building recovery set",
		logging.String(logging.FieldGroup, group.Name),
		logging.Int("chunks", len(files)),
		logging.String("params", params.String()),
		logging.String(logging.FieldEventType, "group_started"),
	)

	start := time.Now()
	err := b.creator.Create(ctx, par2.CreateRequest{
		Dir:      dir,
		BaseName: group.Name,
		Files:    files,
		Params:   params,
	})
	outcome.Duration = time.Since(start)
	if err != nil {
		outcome.Err = services.Wrap(
			services.ErrExternalTool,
			"protection",
			"create recovery set",
			"par2 failed for group "+group.Name,
			err,
		)
		b.logger.Error("recovery set failed",
			logging.String(logging.FieldGroup, group.Name),
			logging.Error(err),
			logging.String(logging.FieldEventType, "group_failed"),
			logging.String(logging.FieldErrorHint, "check par2 output and free space on the backup volume"),
			logging.String(logging.FieldImpact, "group has no recovery data; later groups still run"),
		)
		return outcome
	}

	artifacts, listErr := par2.Artifacts(dir, group.Name)
	if listErr != nil {
		b.logger.Warn("unable to verify recovery artifacts",
			logging.String(logging.FieldGroup, group.Name),
			logging.Error(listErr),
			logging.String(logging.FieldEventType, "group_unverified"),
		)
		return outcome
	}
	outcome.Artifacts = len(artifacts)
	if outcome.Artifacts == 0 {
		b.logger.Warn("par2 exited cleanly but produced no recovery files",
			logging.String(logging.FieldGroup, group.Name),
			logging.String(logging.FieldEventType, "group_empty"),
			logging.String(logging.FieldErrorHint, "run par2 manually against the group directory"),
			logging.String(logging.FieldImpact, "group has no recovery data"),
		)
		return outcome
	}

	b.logger.Info("recovery set complete",
		logging.String(logging.FieldGroup, group.Name),
		logging.Int("artifacts", outcome.Artifacts),
		logging.Duration("duration", outcome.Duration),
		logging.String(logging.FieldEventType, "group_completed"),
	)
	return outcome
}

// BuildOverallRecovery builds the archive-wide layer from the volume files
// actually present in workingDir, with parameters recomputed from that
// count. Inputs match {increment}*.7z.* directly in the working directory,
// so every archive consolidated there for the increment participates and no
// staging is needed. Returns nil when nothing matches.
func (b *Builder) BuildOverallRecovery(ctx context.Context, workingDir, archive, increment string) *GroupOutcome {
	baseName := OverallBaseName(archive, increment)

	files, err := overallInputs(workingDir, increment)
	if err != nil {
		outcome := &GroupOutcome{
			Name: baseName,
			Err: services.Wrap(
				services.ErrTransient,
				"protection",
				"scan working directory",
				"Unable to list volume files for the overall layer",
				err,
			),
		}
		b.logger.Error("overall layer failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "overall_failed"),
		)
		return outcome
	}
	if len(files) == 0 {
		b.logger.Warn("no volume files found for overall layer",
			logging.String("dir", workingDir),
			logging.String(logging.FieldEventType, "overall_skipped"),
			logging.String(logging.FieldErrorHint, "expected consolidated volumes matching the increment"),
			logging.String(logging.FieldImpact, "archive has per-group protection only"),
		)
		return nil
	}

	params := OverallParams(len(files))
	outcome := &GroupOutcome{Name: baseName, Chunks: len(files), Params: params}

	b.logger.Info("building overall protection layer",
		logging.Int("files", len(files)),
		logging.String("params", params.String()),
		logging.String(logging.FieldEventType, "overall_started"),
	)

	start := time.Now()
	err = b.creator.Create(ctx, par2.CreateRequest{
		Dir:      workingDir,
		BaseName: baseName,
		Files:    files,
		Params:   params,
	})
	outcome.Duration = time.Since(start)
	if err != nil {
		outcome.Err = services.Wrap(
			services.ErrExternalTool,
			"protection",
			"create overall recovery set",
			"par2 failed for the overall layer",
			err,
		)
		b.logger.Error("overall layer failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "overall_failed"),
			logging.String(logging.FieldErrorHint, "check par2 output and free space on the backup volume"),
			logging.String(logging.FieldImpact, "archive has per-group protection only"),
		)
		return outcome
	}

	artifacts, listErr := par2.Artifacts(workingDir, baseName)
	if listErr != nil {
		b.logger.Warn("unable to verify overall artifacts",
			logging.Error(listErr),
			logging.String(logging.FieldEventType, "overall_unverified"),
		)
		return outcome
	}
	outcome.Artifacts = len(artifacts)
	if outcome.Artifacts == 0 {
		b.logger.Warn("par2 exited cleanly but produced no overall recovery files",
			logging.String(logging.FieldEventType, "overall_empty"),
			logging.String(logging.FieldErrorHint, "run par2 manually against the consolidation directory"),
			logging.String(logging.FieldImpact, "archive has per-group protection only"),
		)
		return outcome
	}

	b.logger.Info("overall protection layer complete",
		logging.Int("artifacts", outcome.Artifacts),
		logging.Duration("duration", outcome.Duration),
		logging.String(logging.FieldEventType, "overall_completed"),
	)
	return outcome
}

// overallInputs lists files in dir matching {increment}*.7z.*: prefixed with
// the increment tag and carrying a volume suffix, whatever the archive name.
func overallInputs(dir, increment string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, increment) && strings.Contains(name, ".7z.") {
			files = append(files, name)
		}
	}
	return files, nil
}
