package config

const (
	defaultConfigPath       = "~/.config/recfix/config.toml"
	projectConfigName       = "recfix.toml"
	historyFileName         = "history.db"
	lockFileName            = "recfix.lock"
	defaultStateDir         = "~/.local/share/recfix"
	defaultLogDir           = "~/.local/share/recfix/logs"
	defaultLogRetentionDays = 30
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultRepairSuffix     = "_FIXED"
	defaultIndent           = "  "
	defaultPreviewIDs       = 3
	defaultBatchWorkers     = 1
	defaultWatchDebounce    = 250
	defaultHistoryRetain    = 500
)

// Environment variables that override file settings.
const (
	EnvLogLevel  = "RECFIX_LOG_LEVEL"
	EnvLogFormat = "RECFIX_LOG_FORMAT"
	EnvStateDir  = "RECFIX_STATE_DIR"
)

// Default returns a Config populated with defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Output: Output{
			RepairSuffix: defaultRepairSuffix,
			Indent:       defaultIndent,
			PreviewIDs:   defaultPreviewIDs,
		},
		Batch: Batch{
			Workers: defaultBatchWorkers,
		},
		Watch: Watch{
			DebounceMillis: defaultWatchDebounce,
		},
		History: History{
			Enabled: true,
			Retain:  defaultHistoryRetain,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
