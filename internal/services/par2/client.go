package par2

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

var commandContext = exec.CommandContext

// ArtifactSuffix is the file extension par2 gives every recovery volume.
const ArtifactSuffix = ".par2"

// Params carries the redundancy settings for one create invocation.
type Params struct {
	RecoveryFiles int
	Redundancy    int
	MemoryMiB     int
}

// Args renders the parameter flags the way par2 expects them.
func (p Params) Args() []string {
	return []string{
		"-n" + strconv.Itoa(p.RecoveryFiles),
		"-r" + strconv.Itoa(p.Redundancy),
		"-u",
		"-m" + strconv.Itoa(p.MemoryMiB),
	}
}

func (p Params) String() string {
	return strings.Join(p.Args(), " ")
}

// IsZero reports whether the params are unset.
func (p Params) IsZero() bool {
	return p == Params{}
}

// CreateRequest describes one recovery set build.
type CreateRequest struct {
	// Dir is the working directory for the invocation. Input files and
	// output artifacts are resolved relative to it.
	Dir      string
	BaseName string
	Files    []string
	Params   Params
}

// Creator defines par2 recovery set creation behaviour.
type Creator interface {
	Create(ctx context.Context, req CreateRequest) error
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

// CLI wraps the par2 command-line tool.
type CLI struct {
	binary string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "par2"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Create runs par2 create in the request directory. A nil return means the
// tool exited cleanly; callers that need proof of recovery data should follow
// up with Artifacts.
func (c *CLI) Create(ctx context.Context, req CreateRequest) error {
	if req.Dir == "" {
		return errors.New("working directory required")
	}
	if strings.TrimSpace(req.BaseName) == "" {
		return errors.New("base name required")
	}
	if len(req.Files) == 0 {
		return errors.New("at least one input file required")
	}

	args := append([]string{"create"}, req.Params.Args()...)
	args = append(args, req.BaseName)
	args = append(args, req.Files...)

	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	cmd.Dir = req.Dir
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("par2 create interrupted: %w", ctx.Err())
		}
		return fmt.Errorf("par2 create failed: %w: %s", err, outputTail(output.Bytes()))
	}
	return nil
}

// Artifacts lists the recovery files a create run left in dir for the given
// base name.
func (c *CLI) Artifacts(dir, baseName string) ([]string, error) {
	return Artifacts(dir, baseName)
}

// Artifacts lists recovery files in dir whose names start with baseName.
// Name matching avoids glob patterns so archive names with special
// characters stay safe.
func Artifacts(dir, baseName string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list recovery artifacts: %w", err)
	}
	var artifacts []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, baseName) && strings.HasSuffix(name, ArtifactSuffix) {
			artifacts = append(artifacts, name)
		}
	}
	return artifacts, nil
}

func outputTail(output []byte) string {
	const limit = 2048
	trimmed := bytes.TrimSpace(output)
	if len(trimmed) > limit {
		trimmed = trimmed[len(trimmed)-limit:]
	}
	if len(trimmed) == 0 {
		return "(no output)"
	}
	return string(trimmed)
}

var _ Creator = (*CLI)(nil)
