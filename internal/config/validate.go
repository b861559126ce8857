package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var volumeSizePattern = regexp.MustCompile(`^[0-9]+[bkmg]?$`)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateArchive(); err != nil {
		return err
	}
	if err := c.validatePolicy("daily", c.Daily); err != nil {
		return err
	}
	if err := c.validatePolicy("weekly", c.Weekly); err != nil {
		return err
	}
	if err := c.validatePolicy("monthly", c.Monthly); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.BackupRoot == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/bulwark/config.toml"
		}
		return fmt.Errorf("paths.backup_root is required. Edit %s (create with 'bulwark config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateArchive() error {
	if c.Archive.CompressionLevel < 1 || c.Archive.CompressionLevel > 9 {
		return errors.New("archive.compression_level must be between 1 and 9")
	}
	if !volumeSizePattern.MatchString(c.Archive.VolumeSize) {
		return fmt.Errorf("archive.volume_size %q must be digits with an optional b/k/m/g suffix", c.Archive.VolumeSize)
	}
	if c.Archive.PasswordEnv == "" {
		return errors.New("archive.password_env must be set")
	}
	return nil
}

func (c *Config) validatePolicy(section string, policy Policy) error {
	if policy.Type != "FULL" && policy.Type != "INCR" {
		return fmt.Errorf("%s.type must be FULL or INCR, got %q", section, policy.Type)
	}
	seen := make(map[string]struct{}, len(policy.Folders))
	for i, folder := range policy.Folders {
		if folder.Name == "" {
			return fmt.Errorf("%s.folders[%d].name must be set", section, i)
		}
		if strings.ContainsAny(folder.Name, "/\\") {
			return fmt.Errorf("%s.folders[%d].name must not contain path separators", section, i)
		}
		if folder.Source == "" {
			return fmt.Errorf("%s.folders[%d].source must be set", section, i)
		}
		if folder.Dest == "" {
			return fmt.Errorf("%s.folders[%d].dest must be set", section, i)
		}
		key := strings.ToLower(folder.Name)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%s.folders[%d].name %q duplicates another folder", section, i, folder.Name)
		}
		seen[key] = struct{}{}
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}
