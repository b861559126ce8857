package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"bulwark/internal/config"
	"bulwark/internal/logging"
	"bulwark/internal/notifications"
	"bulwark/internal/protection"
	"bulwark/internal/services"
	"bulwark/internal/services/gitops"
	"bulwark/internal/services/par2"
	"bulwark/internal/services/sevenzip"
)

// incrementLayout is the date tag format stamped into archive names.
const incrementLayout = "060102"

// Task selects what a run does.
type Task int

const (
	// TaskArchive compresses each configured folder into a split archive.
	TaskArchive Task = iota
	// TaskProtect builds recovery layers over consolidated monthly archives.
	TaskProtect
)

func (t Task) String() string {
	switch t {
	case TaskArchive:
		return "archive"
	case TaskProtect:
		return "protect"
	default:
		return "unknown"
	}
}

// Options configures a single run.
type Options struct {
	Task Task
	// Policy names the folder set an archive run covers: daily, weekly, or
	// monthly. Ignored by the protect task.
	Policy string
	// Skip lists 1-based folder positions excluded from an archive run.
	Skip []int
	// Increment is the YYMMDD date tag stamped into archive names and
	// matched during protection. Empty selects the current date.
	Increment string
	// Only restricts the protect task to a single archive name.
	Only string
}

// FolderResult records one folder's archive build.
type FolderResult struct {
	Folder   string
	Archive  string
	Duration time.Duration
	Skipped  bool
	Err      error
}

// ArchiveOutcome pairs a protection report with its terminal error, if any.
type ArchiveOutcome struct {
	Report *protection.ArchiveReport
	Err    error
}

// Failed reports whether the archive needs operator attention: either the
// pipeline itself errored or some recovery builds did not complete.
func (o ArchiveOutcome) Failed() bool {
	if o.Err != nil {
		return true
	}
	return o.Report != nil && !o.Report.Skipped() && !o.Report.Succeeded()
}

// RunReport summarises one run for rendering and exit status decisions. It
// is returned even when Run fails, describing whatever progress was made.
type RunReport struct {
	Task      Task
	Policy    string
	Increment string
	RunID     string
	Started   time.Time
	Duration  time.Duration
	Folders   []FolderResult
	Archives  []ArchiveOutcome
	Err       error
}

// Processed counts the units the run completed: archived folders for the
// archive task, protected archives for the protect task.
func (r *RunReport) Processed() int {
	if r.Task == TaskProtect {
		count := 0
		for _, outcome := range r.Archives {
			if outcome.Err == nil && outcome.Report != nil && outcome.Report.Succeeded() {
				count++
			}
		}
		return count
	}
	count := 0
	for _, folder := range r.Folders {
		if !folder.Skipped && folder.Err == nil {
			count++
		}
	}
	return count
}

// Failed counts failed units across both phases of the run.
func (r *RunReport) Failed() int {
	count := 0
	for _, folder := range r.Folders {
		if folder.Err != nil {
			count++
		}
	}
	for _, outcome := range r.Archives {
		if outcome.Failed() {
			count++
		}
	}
	return count
}

// Runner executes backup runs with injected collaborators.
type Runner struct {
	cfg       *config.Config
	logger    *slog.Logger
	archiver  sevenzip.Archiver
	committer gitops.Committer
	processor *protection.Processor
	notifier  notifications.Service
}

// New builds a Runner backed by the real 7z, git, and par2 tools.
func New(cfg *config.Config, logger *slog.Logger) *Runner {
	return NewWithDependencies(cfg, logger,
		sevenzip.NewCLI(sevenzip.WithBinary(cfg.SevenZipBinary())),
		gitops.NewCLI(gitops.WithBinary(cfg.GitBinary())),
		par2.NewCLI(par2.WithBinary(cfg.Par2Binary())),
		notifications.NewService(cfg),
	)
}

// NewWithDependencies injects collaborators, primarily for tests.
func NewWithDependencies(cfg *config.Config, logger *slog.Logger, archiver sevenzip.Archiver, committer gitops.Committer, creator par2.Creator, notifier notifications.Service) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{
		cfg:       cfg,
		logger:    logging.NewComponentLogger(logger, "runner"),
		archiver:  archiver,
		committer: committer,
		processor: protection.NewProcessor(creator, cfg.Protection.ConsolidationDir, logger),
		notifier:  notifier,
	}
}

// Run executes one run under the advisory run lock. The returned report is
// always non-nil and its Err field mirrors the returned error.
func (r *Runner) Run(ctx context.Context, opts Options) (*RunReport, error) {
	report := &RunReport{
		Task:    opts.Task,
		Policy:  strings.ToLower(strings.TrimSpace(opts.Policy)),
		RunID:   uuid.NewString(),
		Started: time.Now(),
	}
	fail := func(err error) (*RunReport, error) {
		report.Err = err
		report.Duration = time.Since(report.Started)
		return report, err
	}

	increment, err := resolveIncrement(opts.Increment)
	if err != nil {
		return fail(err)
	}
	report.Increment = increment

	var policy config.Policy
	switch opts.Task {
	case TaskArchive:
		found, ok := r.cfg.PolicyByName(report.Policy)
		if !ok {
			return fail(services.Wrap(services.ErrValidation, "runner", "select policy",
				fmt.Sprintf("unknown policy %q", opts.Policy), nil))
		}
		policy = found
	case TaskProtect:
		report.Policy = "protect"
		policy = r.cfg.Monthly
	default:
		return fail(services.Wrap(services.ErrValidation, "runner", "select task",
			fmt.Sprintf("unknown task %d", opts.Task), nil))
	}

	ctx = services.WithRequestID(ctx, report.RunID)
	ctx = services.WithIncrement(ctx, increment)
	ctx = services.WithPolicy(ctx, report.Policy)
	logger := logging.WithContext(ctx, r.logger)

	if err := r.cfg.EnsureDirectories(); err != nil {
		return fail(services.Wrap(services.ErrConfiguration, "runner", "prepare directories", "", err))
	}

	lock := flock.New(r.cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return fail(services.Wrap(services.ErrTransient, "runner", "acquire run lock", r.cfg.LockPath(), err))
	}
	if !locked {
		return fail(services.Wrap(services.ErrTransient, "runner", "acquire run lock",
			"another bulwark run is already in progress", nil))
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logging.WarnWithContext(logger, "release run lock failed", "lock_release_failed",
				logging.String("path", r.cfg.LockPath()),
				logging.Error(err),
				logging.String(logging.FieldImpact, "stale lock may block the next run"),
			)
		}
	}()

	logger.Info("run started",
		logging.String("task", opts.Task.String()),
		logging.String(logging.FieldEventType, "run_started"),
	)

	if err := r.preflight(logger, opts.Task); err != nil {
		r.notifyError(ctx, logger, err, "preflight")
		return fail(err)
	}

	folderCount := len(policy.Folders)
	if opts.Task == TaskProtect && strings.TrimSpace(opts.Only) != "" {
		folderCount = 1
	}
	r.publish(ctx, logger, notifications.EventRunStarted, notifications.Payload{
		"policy":  report.Policy,
		"folders": strconv.Itoa(folderCount),
	})

	var runErr error
	switch opts.Task {
	case TaskArchive:
		runErr = r.runArchiveTask(ctx, logger, policy, opts, report)
	case TaskProtect:
		runErr = r.runProtectTask(ctx, logger, policy.Folders, opts.Only, report)
	}

	logging.CleanupOldLogs(logger, r.cfg.Logging.RetentionDays, logging.RetentionTarget{
		Dir:     r.cfg.Paths.LogDir,
		Pattern: "*.log",
		Exclude: []string{filepath.Join(r.cfg.Paths.LogDir, logging.LogFileName)},
	})

	report.Duration = time.Since(report.Started)
	report.Err = runErr

	if runErr != nil {
		r.notifyError(ctx, logger, runErr, report.Policy+" run")
	}
	r.publish(ctx, logger, notifications.EventRunCompleted, notifications.Payload{
		"policy":    report.Policy,
		"processed": strconv.Itoa(report.Processed()),
		"failed":    strconv.Itoa(report.Failed()),
		"duration":  formatDuration(report.Duration),
	})

	logger.Info("run finished",
		logging.Int("processed", report.Processed()),
		logging.Int("failed", report.Failed()),
		logging.Duration("duration", report.Duration),
		logging.String(logging.FieldEventType, "run_finished"),
	)
	return report, runErr
}

func resolveIncrement(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Now().Format(incrementLayout), nil
	}
	if _, err := time.Parse(incrementLayout, value); err != nil {
		return "", services.Wrap(services.ErrValidation, "runner", "parse increment",
			fmt.Sprintf("%q is not a YYMMDD date tag", value), err)
	}
	return value, nil
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d <= 0 {
		return "0s"
	}
	return d.String()
}

func (r *Runner) publish(ctx context.Context, logger *slog.Logger, event notifications.Event, payload notifications.Payload) {
	if r.notifier == nil {
		return
	}
	if err := r.notifier.Publish(ctx, event, payload); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("run interrupted; notification skipped")
			return
		}
		logger.Debug("notification failed",
			logging.String("event", string(event)),
			logging.Error(err),
		)
	}
}

func (r *Runner) notifyError(ctx context.Context, logger *slog.Logger, err error, contextLabel string) {
	if err == nil {
		return
	}
	r.publish(ctx, logger, notifications.EventError, notifications.Payload{
		"context": contextLabel,
		"error":   err.Error(),
	})
}
