package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"bulwark/internal/config"
)

func TestLoadDefaultConfigExpandsPathsAndAppliesDefaults(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err == nil {
		t.Fatal("expected validation error when backup_root is unset")
	}
	if cfg != nil || resolved != "" || exists {
		t.Fatalf("expected nil config on validation failure, got %v %q %v", cfg, resolved, exists)
	}
	if !strings.Contains(err.Error(), "paths.backup_root") {
		t.Fatalf("expected backup_root guidance in error, got %v", err)
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "bulwark.toml")

	type payload struct {
		Paths struct {
			BackupRoot string `toml:"backup_root"`
		} `toml:"paths"`
		Archive struct {
			CompressionLevel int    `toml:"compression_level"`
			VolumeSize       string `toml:"volume_size"`
		} `toml:"archive"`
		Monthly struct {
			Folders []config.Folder `toml:"folders"`
		} `toml:"monthly"`
	}
	custom := payload{}
	custom.Paths.BackupRoot = filepath.Join(tempDir, "vault")
	custom.Archive.CompressionLevel = 7
	custom.Archive.VolumeSize = "512M"
	custom.Monthly.Folders = []config.Folder{
		{Name: "documents", Source: "~/documents", Dest: "Monthly/documents", Exclude: []string{" *.tmp ", ""}},
	}

	raw, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, raw, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be found")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.Archive.CompressionLevel != 7 {
		t.Fatalf("unexpected compression level: %d", cfg.Archive.CompressionLevel)
	}
	if cfg.Archive.VolumeSize != "512m" {
		t.Fatalf("expected volume size lowered to 512m, got %q", cfg.Archive.VolumeSize)
	}
	if cfg.Archive.PasswordEnv != "BULWARK_PASSWORD" {
		t.Fatalf("expected default password env, got %q", cfg.Archive.PasswordEnv)
	}
	if cfg.Monthly.Type != "FULL" {
		t.Fatalf("expected monthly type default FULL, got %q", cfg.Monthly.Type)
	}
	if len(cfg.Monthly.Folders) != 1 {
		t.Fatalf("expected one monthly folder, got %d", len(cfg.Monthly.Folders))
	}
	folder := cfg.Monthly.Folders[0]
	if !filepath.IsAbs(folder.Source) {
		t.Fatalf("expected source expanded to absolute path, got %q", folder.Source)
	}
	if len(folder.Exclude) != 1 || folder.Exclude[0] != "*.tmp" {
		t.Fatalf("expected trimmed exclude list, got %v", folder.Exclude)
	}
	wantDest := filepath.Join(cfg.Paths.BackupRoot, "Monthly", "documents")
	if got := cfg.DestPath(folder); got != wantDest {
		t.Fatalf("unexpected dest path: got %q want %q", got, wantDest)
	}
}

func TestLoadRejectsBadVolumeSize(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "bulwark.toml")
	content := "[paths]\nbackup_root = \"" + tempDir + "\"\n\n[archive]\nvolume_size = \"1gb\"\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, _, _, err := config.Load(configPath)
	if err == nil || !strings.Contains(err.Error(), "volume_size") {
		t.Fatalf("expected volume_size error, got %v", err)
	}
}

func TestLoadRejectsDuplicateFolderNames(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "bulwark.toml")
	content := `
[paths]
backup_root = "` + tempDir + `"

[[monthly.folders]]
name = "docs"
source = "` + tempDir + `"
dest = "Monthly"

[[monthly.folders]]
name = "Docs"
source = "` + tempDir + `"
dest = "Monthly"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, _, _, err := config.Load(configPath)
	if err == nil || !strings.Contains(err.Error(), "duplicates") {
		t.Fatalf("expected duplicate folder error, got %v", err)
	}
}

func TestPolicyByName(t *testing.T) {
	cfg := config.Default()
	cfg.Monthly.Folders = []config.Folder{{Name: "docs"}}

	policy, ok := cfg.PolicyByName("Monthly")
	if !ok {
		t.Fatal("expected monthly policy to resolve")
	}
	if len(policy.Folders) != 1 {
		t.Fatalf("unexpected folders: %v", policy.Folders)
	}
	if _, ok := cfg.PolicyByName("hourly"); ok {
		t.Fatal("expected unknown policy to be rejected")
	}
}

func TestEnsureDirectoriesCreatesLogDir(t *testing.T) {
	tempDir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(tempDir, "logs")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	info, err := os.Stat(cfg.Paths.LogDir)
	if err != nil || !info.IsDir() {
		t.Fatalf("expected log dir to exist: %v", err)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	content := string(raw)
	for _, fragment := range []string{"[paths]", "[archive]", "[protection]", "[logging]", "BULWARK_PASSWORD"} {
		if !strings.Contains(content, fragment) {
			t.Fatalf("expected sample to mention %q", fragment)
		}
	}

	var decoded map[string]any
	if err := toml.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("sample config must parse as TOML: %v", err)
	}
}
