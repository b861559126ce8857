package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"bulwark/internal/config"
	"bulwark/internal/testsupport"
)

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, cfg *config.Config) string {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func TestCLIRunArchivesDailyFolder(t *testing.T) {
	src := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(src, "notes.txt"), 128)

	cfg := testsupport.NewConfig(t,
		testsupport.WithStubbedBinaries(),
		testsupport.WithFolder("daily", config.Folder{Name: "docs", Source: src, Dest: "Daily"}),
	)
	configPath := writeTestConfig(t, cfg)
	t.Setenv("BULWARK_PASSWORD", "hunter2")

	out, _, err := runCLI(t, []string{"run", "daily", "--increment", "260815"}, configPath)
	if err != nil {
		t.Fatalf("run daily: %v", err)
	}
	requireContains(t, out, "Run Summary")
	requireContains(t, out, "1 processed, 0 failed")
	requireContains(t, out, "260815 INCR docs.7z")
}

func TestCLIRunMonthlyReportsSkippedProtection(t *testing.T) {
	src := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(src, "report.txt"), 64)

	cfg := testsupport.NewConfig(t,
		testsupport.WithStubbedBinaries(),
		testsupport.WithFolder("monthly", config.Folder{Name: "docs", Source: src, Dest: "Monthly/docs"}),
	)
	configPath := writeTestConfig(t, cfg)
	t.Setenv("BULWARK_PASSWORD", "hunter2")

	// The stubbed 7z produces no volume files, so the chained protection
	// phase finds nothing to protect and reports the archive as skipped.
	out, _, err := runCLI(t, []string{"run", "monthly", "--increment", "260815"}, configPath)
	if err != nil {
		t.Fatalf("run monthly: %v", err)
	}
	requireContains(t, out, "260815 FULL docs.7z")
	requireContains(t, out, "Protection")
	requireContains(t, out, "skipped")
}

func TestCLIRunUnknownPolicyFails(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	configPath := writeTestConfig(t, cfg)

	_, _, err := runCLI(t, []string{"run", "hourly"}, configPath)
	if err == nil {
		t.Fatal("expected unknown policy to fail")
	}
	requireContains(t, err.Error(), "unknown policy")
}

func TestCLIProtectRebuildsConsolidatedArchive(t *testing.T) {
	src := t.TempDir()
	cfg := testsupport.NewConfig(t,
		testsupport.WithStubbedBinaries(),
		testsupport.WithFolder("monthly", config.Folder{Name: "media", Source: src, Dest: "Monthly/media"}),
	)
	configPath := writeTestConfig(t, cfg)

	destDir := filepath.Join(cfg.Paths.BackupRoot, "Monthly", "media")
	for i := 1; i <= 3; i++ {
		testsupport.WriteFile(t, filepath.Join(destDir, fmt.Sprintf("260815 FULL media.7z.%03d", i)), 64)
	}

	out, _, err := runCLI(t, []string{"protect", "260815"}, configPath)
	if err != nil {
		t.Fatalf("protect: %v", err)
	}
	requireContains(t, out, "Protection")
	requireContains(t, out, "1 processed, 0 failed")
	requireContains(t, out, "media")

	consolidated := filepath.Join(destDir, "_ Month", "260815 FULL media.7z.001")
	if _, err := os.Stat(consolidated); err != nil {
		t.Fatalf("expected chunk in consolidation directory: %v", err)
	}
}

func TestCLIPlanPreviewsPartition(t *testing.T) {
	out, _, err := runCLI(t, []string{"plan", "14"}, "")
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	requireContains(t, out, "Protection Plan")
	requireContains(t, out, "medium")
	requireContains(t, out, "fixed buckets of 5")
	requireContains(t, out, "0000-0005")
	requireContains(t, out, "0010-0014")
	requireContains(t, out, "-n16 -r15 -u -m6144")
}

func TestCLIPlanRejectsBadCount(t *testing.T) {
	_, _, err := runCLI(t, []string{"plan", "zero"}, "")
	if err == nil {
		t.Fatal("expected invalid count to fail")
	}
	requireContains(t, err.Error(), "chunk count must be a positive integer")
}

func TestCLIStatusReportsEnvironment(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	configPath := writeTestConfig(t, cfg)

	out, _, err := runCLI(t, []string{"status"}, configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Backup Volume")
	requireContains(t, out, "Dependencies")
	requireContains(t, out, "Ready (command: 7z)")
	requireContains(t, out, "Ready (command: par2)")
	requireContains(t, out, "Policies")
	requireContains(t, out, "monthly")
}
