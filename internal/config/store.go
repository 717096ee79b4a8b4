package config

// StoreConfig holds index store configuration
type StoreConfig struct {
	Type   string            `mapstructure:"type"   yaml:"type"`
	SQLite StoreSQLiteConfig `mapstructure:"sqlite" yaml:"sqlite"`
}

// StoreSQLiteConfig holds SQLite-specific configuration
type StoreSQLiteConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}
