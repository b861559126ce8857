package config

const (
	defaultLogDir            = "~/.local/share/bulwark/logs"
	defaultLogRetentionDays  = 60
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultCompressionLevel  = 5
	defaultVolumeSize        = "1g"
	defaultPasswordEnv       = "BULWARK_PASSWORD"
	defaultConsolidationDir  = "_ Month"
	defaultNotifyTimeout     = 10
	defaultDailyType         = "INCR"
	defaultWeeklyType        = "INCR"
	defaultMonthlyType       = "FULL"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:         defaultLogDir,
			RequireMounted: true,
		},
		Archive: Archive{
			CompressionLevel: defaultCompressionLevel,
			VolumeSize:       defaultVolumeSize,
			PasswordEnv:      defaultPasswordEnv,
			Verify:           true,
		},
		Protection: Protection{
			Enabled:          true,
			ConsolidationDir: defaultConsolidationDir,
		},
		Daily: Policy{
			Type: defaultDailyType,
		},
		Weekly: Policy{
			Type: defaultWeeklyType,
		},
		Monthly: Policy{
			Type: defaultMonthlyType,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			RunStarted:     true,
			RunCompleted:   true,
			Protection:     true,
			Errors:         true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
