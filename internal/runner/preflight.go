package runner

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"bulwark/internal/deps"
	"bulwark/internal/logging"
	"bulwark/internal/services"
	"bulwark/internal/volume"
)

// preflight verifies the environment before any work starts: the backup
// volume is reachable and writable, the external binaries resolve, and the
// archive password is available when the task needs it.
func (r *Runner) preflight(logger *slog.Logger, task Task) error {
	failed := 0
	for _, result := range volume.RunAll(r.cfg) {
		if result.Passed {
			logger.Info("preflight check passed",
				logging.String("check", result.Name),
				logging.String("detail", result.Detail),
			)
			continue
		}
		failed++
		logging.ErrorWithContext(logger, "preflight check failed", "preflight_failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail),
			logging.String(logging.FieldErrorHint, "verify paths and mounts in the configuration"),
			logging.String(logging.FieldImpact, "run aborted before any archive work"),
		)
	}
	if failed > 0 {
		return services.Wrap(services.ErrConfiguration, "runner", "volume preflight",
			fmt.Sprintf("%d check(s) failed", failed), nil)
	}

	for _, status := range deps.CheckBinaries(deps.Requirements(r.cfg)) {
		if status.Available {
			continue
		}
		if status.Optional {
			logging.WarnWithContext(logger, "optional dependency unavailable", "dependency_missing",
				logging.String("dependency", status.Name),
				logging.String("detail", status.Detail),
			)
			continue
		}
		return services.Wrap(services.ErrConfiguration, "runner", "check dependencies",
			fmt.Sprintf("%s unavailable: %s", status.Name, status.Detail), nil)
	}

	if task == TaskArchive {
		if _, err := r.archivePassword(); err != nil {
			return err
		}
	}
	return nil
}

// archivePassword reads the archive password from the configured environment
// variable. The value is handed to 7-Zip and never logged.
func (r *Runner) archivePassword() (string, error) {
	envName := strings.TrimSpace(r.cfg.Archive.PasswordEnv)
	if envName == "" {
		return "", services.Wrap(services.ErrConfiguration, "runner", "read archive password",
			"archive.password_env is not configured", nil)
	}
	password := os.Getenv(envName)
	if password == "" {
		return "", services.Wrap(services.ErrConfiguration, "runner", "read archive password",
			fmt.Sprintf("environment variable %s is empty or unset", envName), nil)
	}
	return password, nil
}
