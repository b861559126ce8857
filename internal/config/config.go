package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	BackupRoot     string `toml:"backup_root"`
	LogDir         string `toml:"log_dir"`
	RequireMounted bool   `toml:"require_mounted"`
}

// Archive contains settings for split archive creation.
type Archive struct {
	CompressionLevel int    `toml:"compression_level"`
	VolumeSize       string `toml:"volume_size"`
	PasswordEnv      string `toml:"password_env"`
	Verify           bool   `toml:"verify"`
}

// Protection contains settings for the recovery redundancy layer.
type Protection struct {
	Enabled          bool   `toml:"enabled"`
	ConsolidationDir string `toml:"consolidation_dir"`
}

// Folder describes one backup source and its destination bucket under the
// backup root.
type Folder struct {
	Name    string   `toml:"name"`
	Source  string   `toml:"source"`
	Dest    string   `toml:"dest"`
	Exclude []string `toml:"exclude"`
}

// Policy describes one scheduled run flavour: the archive label stamped into
// file names and the folders the run covers.
type Policy struct {
	Type    string   `toml:"type"`
	Folders []Folder `toml:"folders"`
}

// Git lists repositories committed before archive runs.
type Git struct {
	Repos []string `toml:"repos"`
}

// Notifications contains ntfy push notification settings.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	RunStarted     bool   `toml:"run_started"`
	RunCompleted   bool   `toml:"run_completed"`
	Protection     bool   `toml:"protection"`
	Errors         bool   `toml:"errors"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for bulwark.
//
// Configuration sections by subsystem:
//   - Paths: backup root, log directory, mount requirement
//   - Archive: 7-Zip compression, volume splitting, password source
//   - Protection: par2 recovery layer and consolidation directory
//   - Daily/Weekly/Monthly: per-policy folder lists and archive labels
//   - Git: repositories to commit before archive runs
//   - Notifications: ntfy push notification settings
//   - Logging: log format, level, and retention
type Config struct {
	Paths         Paths         `toml:"paths"`
	Archive       Archive       `toml:"archive"`
	Protection    Protection    `toml:"protection"`
	Daily         Policy        `toml:"daily"`
	Weekly        Policy        `toml:"weekly"`
	Monthly       Policy        `toml:"monthly"`
	Git           Git           `toml:"git"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/bulwark/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/bulwark/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("bulwark.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the local directories runs depend on. The backup
// root itself is never created here; it is expected to be a mounted volume
// and is checked at run time instead.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Paths.LogDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Paths.LogDir, err)
	}
	return nil
}

// Policy returns the named run policy. The second return is false when the
// name is unrecognized.
func (c *Config) PolicyByName(name string) (Policy, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "daily":
		return c.Daily, true
	case "weekly":
		return c.Weekly, true
	case "monthly":
		return c.Monthly, true
	default:
		return Policy{}, false
	}
}

// DestPath resolves a folder's destination bucket against the backup root.
// Absolute destinations are honoured as-is.
func (c *Config) DestPath(folder Folder) string {
	if filepath.IsAbs(folder.Dest) {
		return filepath.Clean(folder.Dest)
	}
	return filepath.Join(c.Paths.BackupRoot, folder.Dest)
}

// LockPath returns the advisory lock file guarding concurrent runs.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.LogDir, "bulwark.lock")
}

// Par2Binary returns the par2 executable name.
func (c *Config) Par2Binary() string {
	return "par2"
}

// SevenZipBinary returns the 7-Zip executable name.
func (c *Config) SevenZipBinary() string {
	return "7z"
}

// GitBinary returns the git executable name.
func (c *Config) GitBinary() string {
	return "git"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	sample := sampleConfig

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
