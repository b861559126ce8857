package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bulwark/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The backup root exists and the mount requirement is disabled, so runs can
// proceed against plain temp directories.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.BackupRoot = filepath.Join(base, "backup")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.RequireMounted = false

	for _, dir := range []string{cfgVal.Paths.BackupRoot, cfgVal.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithFolder appends a folder to the named policy (daily, weekly, monthly).
func WithFolder(policy string, folder config.Folder) ConfigOption {
	return func(b *configBuilder) {
		switch strings.ToLower(policy) {
		case "daily":
			b.cfg.Daily.Folders = append(b.cfg.Daily.Folders, folder)
		case "weekly":
			b.cfg.Weekly.Folders = append(b.cfg.Weekly.Folders, folder)
		case "monthly":
			b.cfg.Monthly.Folders = append(b.cfg.Monthly.Folders, folder)
		default:
			b.t.Fatalf("unknown policy %q", policy)
		}
	}
}

// WithPasswordEnv points archive encryption at the named environment
// variable.
func WithPasswordEnv(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Archive.PasswordEnv = name
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, the default bulwark external
// binaries are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"7z", "par2", "git"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LogDir)
}
