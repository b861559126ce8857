package volume

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bulwark/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckMountpoint_Root(t *testing.T) {
	result := CheckMountpoint("test", "/")
	if !result.Passed {
		t.Fatalf("expected pass for /, got: %s", result.Detail)
	}
}

func TestCheckMountpoint_PlainDirectory(t *testing.T) {
	result := CheckMountpoint("test", t.TempDir())
	if result.Passed {
		t.Fatal("expected failure for plain directory")
	}
	if !strings.Contains(result.Detail, "not a mountpoint") {
		t.Fatalf("unexpected detail: %s", result.Detail)
	}
}

func TestCheckUsage_OK(t *testing.T) {
	result := CheckUsage("test", t.TempDir())
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	if !strings.Contains(result.Detail, "free of") {
		t.Fatalf("expected usage rendering in detail: %s", result.Detail)
	}
}

func TestCheckUsage_MissingPath(t *testing.T) {
	result := CheckUsage("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing path")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(nil); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_MinimalConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.BackupRoot = t.TempDir()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Paths.RequireMounted = false

	results := RunAll(&cfg)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for _, r := range results {
		if !r.Passed {
			t.Errorf("check %q failed: %s", r.Name, r.Detail)
		}
	}
}

func TestRunAll_RequireMounted(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.BackupRoot = t.TempDir()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Paths.RequireMounted = true

	results := RunAll(&cfg)
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	found := false
	for _, r := range results {
		if r.Name == "Backup mount" {
			found = true
			if r.Passed {
				t.Error("expected mount check to fail for a plain directory")
			}
		}
	}
	if !found {
		t.Fatal("expected mount check in results")
	}
}
