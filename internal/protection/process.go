package protection

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bulwark/internal/fileutil"
	"bulwark/internal/logging"
	"bulwark/internal/services"
	"bulwark/internal/services/par2"
)

// DefaultConsolidationDir is the working subdirectory chunks are gathered
// into for monthly protection runs.
const DefaultConsolidationDir = "_ Month"

// ArchiveReport summarises one archive's protection run. It is returned even
// when ProcessArchive fails, describing whatever progress was made.
type ArchiveReport struct {
	Archive    string
	Increment  string
	WorkingDir string
	ChunkCount int
	Strategy   Strategy
	Groups     []GroupOutcome
	Overall    *GroupOutcome
	Cleanup    UnstageResult
	Duration   time.Duration
}

// Skipped reports whether the run found nothing to protect.
func (r *ArchiveReport) Skipped() bool { return r.ChunkCount == 0 }

// FailedGroups counts builds that ended in error, the overall layer
// included.
func (r *ArchiveReport) FailedGroups() int {
	failed := 0
	for _, outcome := range r.Groups {
		if outcome.Failed() {
			failed++
		}
	}
	if r.Overall != nil && r.Overall.Failed() {
		failed++
	}
	return failed
}

// Succeeded reports whether chunks were found and every attempted build
// completed.
func (r *ArchiveReport) Succeeded() bool {
	return !r.Skipped() && r.FailedGroups() == 0
}

// Processor orchestrates the protection pipeline for one archive increment:
// consolidation, strategy selection, partitioning, staging, per-group
// recovery builds, the overall layer, and cleanup.
type Processor struct {
	builder          *Builder
	consolidationDir string
	logger           *slog.Logger
}

// NewProcessor constructs a Processor around the given par2 creator.
// consolidationDir names the working subdirectory chunks are gathered into;
// empty selects the default.
func NewProcessor(creator par2.Creator, consolidationDir string, logger *slog.Logger) *Processor {
	name := strings.TrimSpace(consolidationDir)
	if name == "" {
		name = DefaultConsolidationDir
	}
	return &Processor{
		builder:          NewBuilder(creator, logger),
		consolidationDir: name,
		logger:           logging.NewComponentLogger(logger, "protection"),
	}
}

// ProcessArchive runs the full pipeline for one archive and increment tag.
// Groups run strictly in order and a failed group never aborts the ones
// after it; only directory-level faults return an error. Staged links are
// removed on every exit path. The context is honoured between groups, never
// mid-invocation: par2 runs over large groups are legitimately long.
func (p *Processor) ProcessArchive(ctx context.Context, baseDir, archive, increment string) (*ArchiveReport, error) {
	start := time.Now()
	ctx = services.WithArchive(ctx, archive)
	ctx = services.WithIncrement(ctx, increment)
	logger := logging.WithContext(ctx, p.logger)

	report := &ArchiveReport{Archive: archive, Increment: increment}

	chunks, err := DiscoverChunks(baseDir, archive, increment)
	if err != nil {
		report.Duration = time.Since(start)
		return report, services.Wrap(
			services.ErrTransient,
			"protection",
			"discover chunks",
			"Unable to list "+baseDir,
			err,
		)
	}
	if len(chunks) == 0 {
		logger.Info("no chunks found; nothing to protect",
			logging.String("dir", baseDir),
			logging.String(logging.FieldEventType, "chunks_missing"),
		)
		report.Duration = time.Since(start)
		return report, nil
	}
	logger.Info("chunks discovered",
		logging.Int("count", len(chunks)),
		logging.String("dir", baseDir),
	)

	workingDir, err := p.consolidate(baseDir, chunks, logger)
	if err != nil {
		report.Duration = time.Since(start)
		return report, err
	}
	report.WorkingDir = workingDir

	defer func() {
		report.Cleanup = Unstage(workingDir, logger)
		report.Duration = time.Since(start)
	}()

	chunks, err = DiscoverChunks(workingDir, archive, increment)
	if err != nil {
		return report, services.Wrap(
			services.ErrTransient,
			"protection",
			"scan working directory",
			"Unable to list consolidated chunks in "+workingDir,
			err,
		)
	}
	if len(chunks) == 0 {
		return report, services.Wrap(
			services.ErrNotFound,
			"protection",
			"consolidate chunks",
			"No chunks present in "+workingDir+" after consolidation",
			nil,
		)
	}

	report.ChunkCount = len(chunks)
	strategy := SelectStrategy(len(chunks))
	report.Strategy = strategy
	logger.Info("protection strategy selected",
		logging.Int("chunks", len(chunks)),
		logging.String("tier", strategy.Tier.String()),
		logging.String("params", strategy.Params.String()),
		logging.Bool("sliding_window", strategy.UseSlidingWindow),
		logging.Bool("overall_layer", strategy.BuildOverallLayer),
	)

	groups := Partition(chunks, strategy)
	report.Groups = make([]GroupOutcome, 0, len(groups))
	for _, group := range groups {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		dir := workingDir
		if !group.Direct {
			stagedDir, stageErr := Stage(workingDir, group, logger)
			if stageErr != nil {
				logger.Error("staging failed; group skipped",
					logging.String(logging.FieldGroup, group.Name),
					logging.Error(stageErr),
					logging.String(logging.FieldEventType, "group_failed"),
					logging.String(logging.FieldErrorHint, "check permissions on the consolidation directory"),
					logging.String(logging.FieldImpact, "group has no recovery data; later groups still run"),
				)
				report.Groups = append(report.Groups, GroupOutcome{
					Name:   group.Name,
					Chunks: len(group.Chunks),
					Params: strategy.Params,
					Err:    stageErr,
				})
				continue
			}
			dir = stagedDir
		}
		report.Groups = append(report.Groups, p.builder.BuildGroupRecovery(ctx, dir, group, strategy.Params))
	}

	if strategy.BuildOverallLayer {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Overall = p.builder.BuildOverallRecovery(ctx, workingDir, archive, increment)
	}

	logger.Info("archive protection finished",
		logging.Int("chunks", report.ChunkCount),
		logging.Int("groups", len(report.Groups)),
		logging.Int("failed", report.FailedGroups()),
		logging.Duration("duration", time.Since(start)),
		logging.String(logging.FieldEventType, "archive_protected"),
	)
	return report, nil
}

// consolidate gathers the discovered chunks into the consolidation
// subdirectory and returns the resulting working directory. When baseDir is
// itself the consolidation directory the chunks are already in place and
// nothing moves. A chunk already present at its destination is left alone,
// and individual move failures are logged and skipped; the run aborts later
// only if nothing ends up in the working directory.
func (p *Processor) consolidate(baseDir string, chunks []Chunk, logger *slog.Logger) (string, error) {
	if filepath.Base(baseDir) == p.consolidationDir {
		abs, err := filepath.Abs(baseDir)
		if err != nil {
			return "", services.Wrap(
				services.ErrTransient,
				"protection",
				"resolve working directory",
				"Unable to resolve "+baseDir,
				err,
			)
		}
		logger.Debug("base directory is already the consolidation directory",
			logging.String("dir", abs),
		)
		return abs, nil
	}

	workingDir := filepath.Join(baseDir, p.consolidationDir)
	if err := os.MkdirAll(workingDir, 0o755); err != nil {
		return "", services.Wrap(
			services.ErrTransient,
			"protection",
			"create working directory",
			"Unable to create "+workingDir,
			err,
		)
	}

	moved := 0
	for _, chunk := range chunks {
		dest := filepath.Join(workingDir, chunk.Name)
		if _, err := os.Lstat(dest); err == nil {
			logger.Debug("chunk already consolidated", logging.String("chunk", chunk.Name))
			continue
		}
		if err := fileutil.MoveFile(chunk.Path, dest); err != nil {
			logger.Error("failed to move chunk into working directory",
				logging.String("chunk", chunk.Name),
				logging.Error(err),
				logging.String(logging.FieldEventType, "consolidation_move_failed"),
				logging.String(logging.FieldErrorHint, "check free space and permissions on the backup volume"),
				logging.String(logging.FieldImpact, "chunk excluded from this protection run"),
			)
			continue
		}
		moved++
	}

	logger.Info("chunks consolidated",
		logging.Int("moved", moved),
		logging.Int("total", len(chunks)),
		logging.String("dir", workingDir),
	)
	return workingDir, nil
}
