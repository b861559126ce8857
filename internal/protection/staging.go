package protection

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"bulwark/internal/logging"
	"bulwark/internal/services"
)

// Stage materialises the group under workingDir as a directory of symlinks
// back to the chunk files one level up. Links never own chunk bytes; they
// only present the group to par2 without copying anything. Re-staging is not
// an error: present links are kept. An individual link failure leaves that
// chunk out of the group but does not block it; only directory creation
// failure aborts.
func Stage(workingDir string, group Group, logger *slog.Logger) (string, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	groupDir := filepath.Join(workingDir, group.Name)
	if err := os.MkdirAll(groupDir, 0o755); err != nil {
		return "", services.Wrap(
			services.ErrTransient,
			"protection",
			"create staging directory",
			"Unable to create group directory "+groupDir,
			err,
		)
	}

	for _, chunk := range group.Chunks {
		linkPath := filepath.Join(groupDir, chunk.Name)
		if err := os.Symlink(filepath.Join("..", chunk.Name), linkPath); err != nil {
			if errors.Is(err, fs.ErrExist) {
				logger.Debug("staging link already present", logging.String("link", linkPath))
				continue
			}
			logger.Error("staging link failed",
				logging.String(logging.FieldGroup, group.Name),
				logging.String("chunk", chunk.Name),
				logging.Error(err),
				logging.String(logging.FieldEventType, "staging_link_failed"),
				logging.String(logging.FieldErrorHint, "check permissions on the consolidation directory"),
				logging.String(logging.FieldImpact, "chunk left out of this group's recovery set"),
			)
			continue
		}
		logger.Debug("staged chunk",
			logging.String(logging.FieldGroup, group.Name),
			logging.String("chunk", chunk.Name),
		)
	}
	return groupDir, nil
}

// UnstageError pairs a path with its removal error.
type UnstageError struct {
	Path string
	Err  error
}

// UnstageResult reports the outcome of one cleanup pass.
type UnstageResult struct {
	RemovedLinks int
	Errors       []UnstageError
}

// Unstage removes the staged chunk links under every group subdirectory of
// workingDir in one pass. An entry is removed only when it is itself a
// symlink, never by name matching, so the recovery artifacts inside the
// group directories and the chunk files beside them always survive.
// Per-entry failures are collected, not fatal.
func Unstage(workingDir string, logger *slog.Logger) UnstageResult {
	if logger == nil {
		logger = logging.NewNop()
	}

	var result UnstageResult
	entries, err := os.ReadDir(workingDir)
	if err != nil {
		result.Errors = append(result.Errors, UnstageError{Path: workingDir, Err: err})
		return result
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		groupDir := filepath.Join(workingDir, entry.Name())
		links, err := os.ReadDir(groupDir)
		if err != nil {
			result.Errors = append(result.Errors, UnstageError{Path: groupDir, Err: err})
			continue
		}
		for _, link := range links {
			if link.Type()&os.ModeSymlink == 0 {
				continue
			}
			linkPath := filepath.Join(groupDir, link.Name())
			if err := os.Remove(linkPath); err != nil {
				result.Errors = append(result.Errors, UnstageError{Path: linkPath, Err: err})
				logger.Warn("failed to remove staging link",
					logging.String("link", linkPath),
					logging.Error(err),
					logging.String(logging.FieldEventType, "unstage_failed"),
					logging.String(logging.FieldErrorHint, "check permissions on the consolidation directory"),
					logging.String(logging.FieldImpact, "stale links remain in the group directory"),
				)
				continue
			}
			result.RemovedLinks++
		}
	}

	if result.RemovedLinks > 0 {
		logger.Debug("removed staging links", logging.Int("count", result.RemovedLinks))
	}
	return result
}
