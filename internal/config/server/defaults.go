package server

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

func GetServerDefault() BaseServerConfig {
	return BaseServerConfig{
		ShutdownTimeout: "10s",

		Log: LogServerConfig{
			Level:      "INFO",
			TimeFormat: "2006-01-02 15:04:05",
			File:       "",
			NoColor:    false,
			JSON:       false,
			NoTerminal: false,
			Rotation: LogServerRotationConfig{
				MaxSize:    128,
				MaxBackups: 5,
				MaxAge:     16,
				Compress:   false,
			},
		},
		Store: StoreServerConfig{
			Path:             defaultStorePath(),
			BusyTimeout:      "5s",
			BusyRetries:      5,
			RetryBackoff:     "25ms",
			OperationTimeout: "15s",
			PageSize:         100,
			LogLevel:         "silent",
			SlowThreshold:    "200ms",
		},
		Capture: CaptureServerConfig{
			Enabled:  true,
			Interval: "750ms",
			Dedupe:   true,
			MaxSize:  10 << 20,
		},
		Tags: TagsServerConfig{
			Normalize:    true,
			PruneOrphans: true,
		},
		Shell: ShellServerConfig{
			Hotkey:          "CommandOrControl+Shift+H",
			HideOnFocusLost: true,
		},
	}
}

func defaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "pastestore.db"
	}
	return filepath.Join(dir, "pastebox", "pastestore.db")
}

func setDefaults() {
	defaults := GetServerDefault()

	viper.SetDefault("shutdown_timeout", defaults.ShutdownTimeout)

	viper.SetDefault("log.level", defaults.Log.Level)
	viper.SetDefault("log.time_format", defaults.Log.TimeFormat)
	viper.SetDefault("log.file", defaults.Log.File)
	viper.SetDefault("log.no_color", defaults.Log.NoColor)
	viper.SetDefault("log.json", defaults.Log.JSON)
	viper.SetDefault("log.no_terminal", defaults.Log.NoTerminal)
	viper.SetDefault("log.rotation.max_size", defaults.Log.Rotation.MaxSize)
	viper.SetDefault("log.rotation.max_backups", defaults.Log.Rotation.MaxBackups)
	viper.SetDefault("log.rotation.max_age", defaults.Log.Rotation.MaxAge)
	viper.SetDefault("log.rotation.compress", defaults.Log.Rotation.Compress)

	viper.SetDefault("store.path", defaults.Store.Path)
	viper.SetDefault("store.busy_timeout", defaults.Store.BusyTimeout)
	viper.SetDefault("store.busy_retries", defaults.Store.BusyRetries)
	viper.SetDefault("store.retry_backoff", defaults.Store.RetryBackoff)
	viper.SetDefault("store.operation_timeout", defaults.Store.OperationTimeout)
	viper.SetDefault("store.page_size", defaults.Store.PageSize)
	viper.SetDefault("store.log_level", defaults.Store.LogLevel)
	viper.SetDefault("store.slow_threshold", defaults.Store.SlowThreshold)

	viper.SetDefault("capture.enabled", defaults.Capture.Enabled)
	viper.SetDefault("capture.interval", defaults.Capture.Interval)
	viper.SetDefault("capture.dedupe", defaults.Capture.Dedupe)
	viper.SetDefault("capture.max_size", defaults.Capture.MaxSize)

	viper.SetDefault("tags.normalize", defaults.Tags.Normalize)
	viper.SetDefault("tags.prune_orphans", defaults.Tags.PruneOrphans)

	viper.SetDefault("shell.hotkey", defaults.Shell.Hotkey)
	viper.SetDefault("shell.hide_on_focus_lost", defaults.Shell.HideOnFocusLost)
}
