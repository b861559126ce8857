package sevenzip

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

var commandContext = exec.CommandContext

// FirstVolumeSuffix is the extension 7z gives the first split volume.
const FirstVolumeSuffix = ".001"

// CreateRequest describes one archive build.
type CreateRequest struct {
	// Destination is the full archive path without volume suffix, e.g.
	// "/backup/Monthly/260825 FULL docs.7z". Split volumes get numeric
	// suffixes appended by the tool.
	Destination      string
	Source           string
	Password         string
	CompressionLevel int
	VolumeSize       string
	Exclude          []string
}

// Archiver defines split archive creation and verification behaviour.
type Archiver interface {
	Create(ctx context.Context, req CreateRequest) error
	Verify(ctx context.Context, firstVolume, password string) error
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

// CLI wraps the 7z command-line tool.
type CLI struct {
	binary string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "7z"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Create builds an encrypted, multithreaded, split archive. Solid mode stays
// off so individual volumes remain restorable, and header encryption hides
// the file listing.
func (c *CLI) Create(ctx context.Context, req CreateRequest) error {
	if strings.TrimSpace(req.Destination) == "" {
		return errors.New("destination path required")
	}
	if strings.TrimSpace(req.Source) == "" {
		return errors.New("source path required")
	}
	if req.Password == "" {
		return errors.New("password required")
	}
	level := req.CompressionLevel
	if level < 1 || level > 9 {
		return fmt.Errorf("compression level %d out of range", level)
	}
	volumeSize := strings.TrimSpace(req.VolumeSize)
	if volumeSize == "" {
		return errors.New("volume size required")
	}

	args := []string{
		"a", "-t7z", req.Destination, req.Source,
		"-mmt=on",
		"-mx" + strconv.Itoa(level),
		"-m0=lzma2",
		"-v" + volumeSize,
		"-mhe=on",
		"-ms=off",
		"-mf=on",
		"-p" + req.Password,
	}
	for _, pattern := range req.Exclude {
		if trimmed := strings.TrimSpace(pattern); trimmed != "" {
			args = append(args, "-xr!"+trimmed)
		}
	}

	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("archive creation interrupted: %w", ctx.Err())
		}
		return fmt.Errorf("7z create failed: %w: %s", err, outputTail(output.Bytes()))
	}
	return nil
}

// Verify tests the archive starting from its first volume.
func (c *CLI) Verify(ctx context.Context, firstVolume, password string) error {
	if strings.TrimSpace(firstVolume) == "" {
		return errors.New("archive volume path required")
	}
	if password == "" {
		return errors.New("password required")
	}

	cmd := commandContext(ctx, c.binary, "t", firstVolume, "-p"+password) //nolint:gosec
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("archive verify interrupted: %w", ctx.Err())
		}
		return fmt.Errorf("7z test failed: %w: %s", err, outputTail(output.Bytes()))
	}
	return nil
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

var _ Archiver = (*CLI)(nil)
