package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeArchive(); err != nil {
		return err
	}
	c.normalizeProtection()
	if err := c.normalizePolicy("daily", &c.Daily, defaultDailyType); err != nil {
		return err
	}
	if err := c.normalizePolicy("weekly", &c.Weekly, defaultWeeklyType); err != nil {
		return err
	}
	if err := c.normalizePolicy("monthly", &c.Monthly, defaultMonthlyType); err != nil {
		return err
	}
	if err := c.normalizeGit(); err != nil {
		return err
	}
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.BackupRoot, err = expandPath(strings.TrimSpace(c.Paths.BackupRoot)); err != nil {
		return fmt.Errorf("paths.backup_root: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeArchive() error {
	if c.Archive.CompressionLevel == 0 {
		c.Archive.CompressionLevel = defaultCompressionLevel
	}
	c.Archive.VolumeSize = strings.ToLower(strings.TrimSpace(c.Archive.VolumeSize))
	if c.Archive.VolumeSize == "" {
		c.Archive.VolumeSize = defaultVolumeSize
	}
	c.Archive.PasswordEnv = strings.TrimSpace(c.Archive.PasswordEnv)
	if c.Archive.PasswordEnv == "" {
		c.Archive.PasswordEnv = defaultPasswordEnv
	}
	return nil
}

func (c *Config) normalizeProtection() {
	c.Protection.ConsolidationDir = strings.TrimSpace(c.Protection.ConsolidationDir)
	if c.Protection.ConsolidationDir == "" {
		c.Protection.ConsolidationDir = defaultConsolidationDir
	}
}

func (c *Config) normalizePolicy(section string, policy *Policy, defaultType string) error {
	policy.Type = strings.ToUpper(strings.TrimSpace(policy.Type))
	if policy.Type == "" {
		policy.Type = defaultType
	}
	for i := range policy.Folders {
		folder := &policy.Folders[i]
		folder.Name = strings.TrimSpace(folder.Name)
		folder.Dest = strings.TrimSpace(folder.Dest)

		var err error
		if folder.Source, err = expandPath(strings.TrimSpace(folder.Source)); err != nil {
			return fmt.Errorf("%s.folders[%d].source: %w", section, i, err)
		}

		excludes := make([]string, 0, len(folder.Exclude))
		for _, pattern := range folder.Exclude {
			if trimmed := strings.TrimSpace(pattern); trimmed != "" {
				excludes = append(excludes, trimmed)
			}
		}
		folder.Exclude = excludes
	}
	return nil
}

func (c *Config) normalizeGit() error {
	repos := make([]string, 0, len(c.Git.Repos))
	for i, repo := range c.Git.Repos {
		trimmed := strings.TrimSpace(repo)
		if trimmed == "" {
			continue
		}
		expanded, err := expandPath(trimmed)
		if err != nil {
			return fmt.Errorf("git.repos[%d]: %w", i, err)
		}
		repos = append(repos, expanded)
	}
	c.Git.Repos = repos
	return nil
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
