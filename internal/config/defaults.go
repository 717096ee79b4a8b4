package config

import "github.com/spf13/viper"

func GetDefault() BaseConfig {
	return BaseConfig{
		ShutdownTimeout: "10s",

		Log: LogConfig{
			Level:      "INFO",
			TimeFormat: "2006-01-02 15:04:05",
			File:       "",
			NoColor:    false,
			JSON:       false,
			NoTerminal: false,
			Rotation: LogRotationConfig{
				MaxSize:    128,
				MaxBackups: 5,
				MaxAge:     16,
				Compress:   false,
			},
		},

		Store: StoreConfig{
			Type: "sqlite",
			SQLite: StoreSQLiteConfig{
				Path: "image_metadata.db",
			},
		},

		Extractor: ExtractorConfig{
			Type:    "exiftool",
			Command: "exiftool",
			Timeout: "30s",
		},

		Scan: ScanConfig{
			BatchSize: 100,
			Workers:   24,
			Patterns:  []string{"*.png", "*.jpg", "*.jpeg"},
		},

		Search: SearchConfig{
			DefaultKey: "Parameters",
		},
	}
}

func setDefaults() {
	defaults := GetDefault()

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

	viper.SetDefault("store.type", defaults.Store.Type)
	viper.SetDefault("store.sqlite.path", defaults.Store.SQLite.Path)

	viper.SetDefault("extractor.type", defaults.Extractor.Type)
	viper.SetDefault("extractor.command", defaults.Extractor.Command)
	viper.SetDefault("extractor.timeout", defaults.Extractor.Timeout)

	viper.SetDefault("scan.batch_size", defaults.Scan.BatchSize)
	viper.SetDefault("scan.workers", defaults.Scan.Workers)
	viper.SetDefault("scan.patterns", defaults.Scan.Patterns)

	viper.SetDefault("search.default_key", defaults.Search.DefaultKey)
}
