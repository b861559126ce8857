package gitops

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

var commandContext = exec.CommandContext

// CommitMessageLayout is the timestamp format used for automatic commits.
const CommitMessageLayout = "060102 15:04"

// Committer defines repository snapshot behaviour.
type Committer interface {
	CommitAll(ctx context.Context, repoDir string) (bool, error)
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// WithClock overrides the commit timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *CLI) {
		if now != nil {
			c.now = now
		}
	}
}

// CLI wraps the git command-line tool.
type CLI struct {
	binary string
	now    func() time.Time
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "git", now: time.Now}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// CommitAll stages every change in repoDir and commits it with a timestamp
// message. It returns false when the working tree was already clean.
func (c *CLI) CommitAll(ctx context.Context, repoDir string) (bool, error) {
	if strings.TrimSpace(repoDir) == "" {
		return false, errors.New("repository directory required")
	}

	if _, err := c.run(ctx, repoDir, "add", "-A"); err != nil {
		return false, fmt.Errorf("git add: %w", err)
	}

	status, err := c.run(ctx, repoDir, "status", "--porcelain")
	if err != nil {
		return false, fmt.Errorf("git status: %w", err)
	}
	if strings.TrimSpace(status) == "" {
		return false, nil
	}

	message := c.now().Format(CommitMessageLayout)
	if _, err := c.run(ctx, repoDir, "commit", "-m", message); err != nil {
		return false, fmt.Errorf("git commit: %w", err)
	}
	return true, nil
}

func (c *CLI) run(ctx context.Context, repoDir string, args ...string) (string, error) {
	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	cmd.Dir = repoDir
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("interrupted: %w", ctx.Err())
		}
		detail := strings.TrimSpace(output.String())
		if detail == "" {
			detail = "(no output)"
		}
		return "", fmt.Errorf("%w: %s", err, detail)
	}
	return output.String(), nil
}

var _ Committer = (*CLI)(nil)
